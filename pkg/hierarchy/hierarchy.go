// Package hierarchy provides an in-memory class table that answers the
// subtype questions frame joins need.
package hierarchy

import (
	"errors"
	"fmt"
	"sync"

	"github.com/speakeasy-api/openapi/sequencedmap"

	"github.com/speakeasy-api/stackmap/pkg/types"
)

// ErrUnknownType is returned when a join reaches a class that was never
// defined.
var ErrUnknownType = errors.New("hierarchy: unknown type")

// Class is one entry of the table.
type Class struct {
	Type        *types.Type
	Super       *types.Type // nil only for java/lang/Object
	Interfaces  []*types.Type
	IsInterface bool
}

// ClassTable is a class hierarchy. It is safe for concurrent use.
type ClassTable struct {
	factory *types.Factory

	mu      sync.RWMutex
	classes *sequencedmap.Map[*types.Type, *Class]
}

// NewClassTable returns a table holding java/lang/Object and the two
// interfaces every array implements.
func NewClassTable(factory *types.Factory) *ClassTable {
	t := &ClassTable{
		factory: factory,
		classes: sequencedmap.New[*types.Type, *Class](),
	}
	t.classes.Set(factory.ObjectType, &Class{Type: factory.ObjectType})
	t.classes.Set(factory.CloneableType, &Class{Type: factory.CloneableType, Super: factory.ObjectType, IsInterface: true})
	t.classes.Set(factory.SerializableType, &Class{Type: factory.SerializableType, Super: factory.ObjectType, IsInterface: true})
	return t
}

// Factory returns the factory the table's types are interned in.
func (t *ClassTable) Factory() *types.Factory {
	return t.factory
}

// Define adds a class or interface. A nil super means java/lang/Object.
// Supertypes may be defined later; they are checked by Validate and when
// joining.
func (t *ClassTable) Define(class, super *types.Type, interfaces []*types.Type, isInterface bool) error {
	if class == nil || !class.IsClass() {
		return fmt.Errorf("hierarchy: cannot define %v: not a class type", class)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.classes.Get(class); ok {
		return fmt.Errorf("hierarchy: %s is already defined", class.InternalName())
	}
	if super == nil || isInterface {
		super = t.factory.ObjectType
	}
	if super == class {
		return fmt.Errorf("hierarchy: %s cannot extend itself", class.InternalName())
	}
	t.classes.Set(class, &Class{
		Type:        class,
		Super:       super,
		Interfaces:  append([]*types.Type(nil), interfaces...),
		IsInterface: isInterface,
	})
	return nil
}

// Lookup returns the entry of class.
func (t *ClassTable) Lookup(class *types.Type) (*Class, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.classes.Get(class)
}

// Classes returns all entries in definition order.
func (t *ClassTable) Classes() []*Class {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Class, 0, t.classes.Len())
	for _, c := range t.classes.All() {
		out = append(out, c)
	}
	return out
}

// Len returns the number of classes in the table.
func (t *ClassTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.classes.Len()
}

// Validate checks that every supertype is defined, that interfaces only
// list interfaces, and that there are no inheritance cycles.
func (t *ClassTable) Validate() error {
	for _, c := range t.Classes() {
		if _, err := t.superChain(c.Type); err != nil {
			return err
		}
		for _, itf := range c.Interfaces {
			ic, ok := t.Lookup(itf)
			if !ok {
				return fmt.Errorf("%w: %s implements %s", ErrUnknownType, c.Type.InternalName(), itf.InternalName())
			}
			if !ic.IsInterface {
				return fmt.Errorf("hierarchy: %s implements class %s", c.Type.InternalName(), itf.InternalName())
			}
		}
		if c.Super != nil {
			if sc, ok := t.Lookup(c.Super); ok && sc.IsInterface {
				return fmt.Errorf("hierarchy: %s extends interface %s", c.Type.InternalName(), c.Super.InternalName())
			}
		}
	}
	return nil
}

// superChain returns class followed by its superclasses up to
// java/lang/Object.
func (t *ClassTable) superChain(class *types.Type) ([]*types.Type, error) {
	limit := t.Len()
	chain := []*types.Type{class}
	for cur := class; cur != t.factory.ObjectType; {
		c, ok := t.Lookup(cur)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownType, cur.InternalName())
		}
		cur = c.Super
		chain = append(chain, cur)
		if len(chain) > limit+1 {
			return nil, fmt.Errorf("hierarchy: inheritance cycle through %s", class.InternalName())
		}
	}
	return chain, nil
}

// addInterfaces adds itf and all its superinterfaces to set.
func (t *ClassTable) addInterfaces(set map[*types.Type]bool, itf *types.Type) error {
	if set[itf] {
		return nil
	}
	c, ok := t.Lookup(itf)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownType, itf.InternalName())
	}
	set[itf] = true
	for _, super := range c.Interfaces {
		if err := t.addInterfaces(set, super); err != nil {
			return err
		}
	}
	return nil
}
