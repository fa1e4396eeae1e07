package types

import (
	"sort"
	"strings"
)

// Element is a reference type together with a set of interfaces the value is
// known to implement. It is the result shape of class hierarchy joins, where
// the least common superclass alone loses information, e.g. two unrelated
// classes implementing Runnable join to Object{Runnable}.
//
// Elements are compared structurally; they are usually freshly computed.
type Element struct {
	Type       *Type
	interfaces []*Type
}

// NewElement returns the element for t with the given interfaces, which are
// deduplicated and kept in descriptor order.
func NewElement(t *Type, interfaces ...*Type) Element {
	if len(interfaces) == 0 {
		return Element{Type: t}
	}
	set := make([]*Type, 0, len(interfaces))
	seen := make(map[*Type]struct{}, len(interfaces))
	for _, itf := range interfaces {
		if _, ok := seen[itf]; ok {
			continue
		}
		seen[itf] = struct{}{}
		set = append(set, itf)
	}
	sort.Slice(set, func(i, j int) bool { return set[i].descriptor < set[j].descriptor })
	return Element{Type: t, interfaces: set}
}

// Interfaces returns the interface set. The slice must not be modified.
func (e Element) Interfaces() []*Type {
	return e.interfaces
}

func (e Element) HasInterfaces() bool {
	return len(e.interfaces) > 0
}

// Equal reports structural equality.
func (e Element) Equal(o Element) bool {
	if e.Type != o.Type || len(e.interfaces) != len(o.interfaces) {
		return false
	}
	for i := range e.interfaces {
		if e.interfaces[i] != o.interfaces[i] {
			return false
		}
	}
	return true
}

// WithType returns a copy of e with its types replaced by fn.
func (e Element) WithType(fn func(*Type) *Type) Element {
	changed := false
	t := fn(e.Type)
	if t != e.Type {
		changed = true
	}
	interfaces := make([]*Type, len(e.interfaces))
	for i, itf := range e.interfaces {
		interfaces[i] = fn(itf)
		if interfaces[i] != itf {
			changed = true
		}
	}
	if !changed {
		return e
	}
	return NewElement(t, interfaces...)
}

func (e Element) String() string {
	if e.Type == nil {
		return "<nil>"
	}
	if len(e.interfaces) == 0 {
		return e.Type.InternalName()
	}
	names := make([]string, len(e.interfaces))
	for i, itf := range e.interfaces {
		names[i] = itf.InternalName()
	}
	return e.Type.InternalName() + "{" + strings.Join(names, ",") + "}"
}
