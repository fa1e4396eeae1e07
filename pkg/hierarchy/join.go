package hierarchy

import (
	"fmt"

	"github.com/speakeasy-api/stackmap/pkg/types"
)

// view is what a reference type is assignable to: its superclass chain and
// the transitive set of interfaces.
type view struct {
	chain      []*types.Type
	interfaces map[*types.Type]bool
}

func (t *ClassTable) view(e types.Element) (view, error) {
	v := view{interfaces: make(map[*types.Type]bool)}
	typ := e.Type
	switch {
	case typ == nil || !typ.IsReference():
		return view{}, fmt.Errorf("hierarchy: cannot join non-reference type %v", typ)
	case typ.IsArray():
		v.chain = []*types.Type{t.factory.ObjectType}
		v.interfaces[t.factory.CloneableType] = true
		v.interfaces[t.factory.SerializableType] = true
	default:
		c, ok := t.Lookup(typ)
		if !ok {
			return view{}, fmt.Errorf("%w: %s", ErrUnknownType, typ.InternalName())
		}
		if c.IsInterface {
			v.chain = []*types.Type{t.factory.ObjectType}
			if err := t.addInterfaces(v.interfaces, typ); err != nil {
				return view{}, err
			}
			break
		}
		chain, err := t.superChain(typ)
		if err != nil {
			return view{}, err
		}
		v.chain = chain
		for _, class := range chain {
			c, _ := t.Lookup(class)
			for _, itf := range c.Interfaces {
				if err := t.addInterfaces(v.interfaces, itf); err != nil {
					return view{}, err
				}
			}
		}
	}
	for _, itf := range e.Interfaces() {
		if err := t.addInterfaces(v.interfaces, itf); err != nil {
			return view{}, err
		}
	}
	return v, nil
}

// JoinElements returns the least upper bound of a and b: their least common
// superclass together with the minimal set of interfaces both implement
// that the superclass does not already implement. Arrays of references join
// their components; any other pair involving an array joins to Object,
// Cloneable and Serializable. The result does not depend on argument order.
func (t *ClassTable) JoinElements(a, b types.Element) (types.Element, error) {
	if a.Equal(b) {
		return a, nil
	}
	if a.Type != nil && b.Type != nil && a.Type.IsArray() && b.Type.IsArray() &&
		!a.HasInterfaces() && !b.HasInterfaces() {
		if joined, ok, err := t.joinArrays(a.Type, b.Type); ok || err != nil {
			return joined, err
		}
	}

	va, err := t.view(a)
	if err != nil {
		return types.Element{}, err
	}
	vb, err := t.view(b)
	if err != nil {
		return types.Element{}, err
	}

	inB := make(map[*types.Type]bool, len(vb.chain))
	for _, c := range vb.chain {
		inB[c] = true
	}
	lub := t.factory.ObjectType
	for _, c := range va.chain {
		if inB[c] {
			lub = c
			break
		}
	}

	common := make(map[*types.Type]bool)
	for itf := range va.interfaces {
		if vb.interfaces[itf] {
			common[itf] = true
		}
	}
	if len(common) == 0 {
		return types.NewElement(lub), nil
	}

	vlub, err := t.view(types.NewElement(lub))
	if err != nil {
		return types.Element{}, err
	}
	for itf := range vlub.interfaces {
		delete(common, itf)
	}
	return types.NewElement(lub, t.minimal(common)...), nil
}

// joinArrays joins two array types whose components are both references.
// It reports false when the generic rule applies.
func (t *ClassTable) joinArrays(a, b *types.Type) (types.Element, bool, error) {
	ca, cb := t.factory.ArrayElement(a), t.factory.ArrayElement(b)
	if !ca.IsReference() || !cb.IsReference() {
		return types.Element{}, false, nil
	}
	joined, err := t.JoinElements(types.NewElement(ca), types.NewElement(cb))
	if err != nil {
		return types.Element{}, false, err
	}
	return types.NewElement(t.factory.ArrayOf(t.ResolveElement(joined))), true, nil
}

// minimal drops every interface that is a superinterface of another member
// of set.
func (t *ClassTable) minimal(set map[*types.Type]bool) []*types.Type {
	redundant := make(map[*types.Type]bool)
	for itf := range set {
		supers := make(map[*types.Type]bool)
		_ = t.addInterfaces(supers, itf)
		for s := range supers {
			if s != itf {
				redundant[s] = true
			}
		}
	}
	out := make([]*types.Type, 0, len(set))
	for itf := range set {
		if !redundant[itf] {
			out = append(out, itf)
		}
	}
	return out
}

// ResolveElement collapses e to the type written to class files: an Object
// with exactly one interface becomes that interface, anything else its
// class.
func (t *ClassTable) ResolveElement(e types.Element) *types.Type {
	if e.Type == t.factory.ObjectType && len(e.Interfaces()) == 1 {
		return e.Interfaces()[0]
	}
	return e.Type
}
