package frametype

import "github.com/speakeasy-api/stackmap/pkg/types"

// Hierarchy is the class hierarchy oracle consulted for reference types.
// Implementations must be safe for concurrent use and must not depend on
// argument order in JoinElements.
type Hierarchy interface {
	// JoinElements returns the least upper bound of two reference elements.
	JoinElements(a, b types.Element) (types.Element, error)

	// ResolveElement collapses an element to the single type used when the
	// value is written to a class file.
	ResolveElement(e types.Element) *types.Type
}

// InitializedNonNullReference returns the initialized reference of class or
// array type t. t must be interned; equality is by handle identity.
func InitializedNonNullReference(t *types.Type) *FrameType {
	if t == nil {
		unreachable(InvariantMissingType, "initialized reference without type")
	}
	return &FrameType{kind: KindInitializedReference, typ: t}
}

// InitializedNonNullReferenceWithInterfaces returns the initialized reference
// described by e. h resolves e to a concrete type on first use.
func InitializedNonNullReferenceWithInterfaces(e types.Element, h Hierarchy) *FrameType {
	if e.Type == nil {
		unreachable(InvariantMissingType, "initialized reference element without type")
	}
	if h == nil {
		unreachable(InvariantMissingType, "initialized reference element %s without hierarchy", e)
	}
	return &FrameType{kind: KindInitializedReferenceWithInterfaces, element: e, resolver: h}
}

// Initialized returns the frame type of an initialized value of type t: the
// primitive singleton for primitive types, Null for the null sentinel, an
// initialized reference otherwise.
func Initialized(t *types.Type) *FrameType {
	if t == nil {
		unreachable(InvariantMissingType, "initialized value without type")
	}
	if t.IsNullValue() {
		return nullType
	}
	if prim, ok := Primitive(t.Descriptor()); ok {
		return prim
	}
	return InitializedNonNullReference(t)
}

// InitializedType returns the type of an initialized value. It returns nil
// for uninitialized values and tops, and panics on the high half of a wide
// primitive. Resolving a reference with interfaces is memoized; concurrent
// first calls may each compute it.
func (f *FrameType) InitializedType(factory *types.Factory) *types.Type {
	switch f.mustKind() {
	case KindDoubleHigh, KindLongHigh:
		unreachable(InvariantWideHigh, "%s has no initialized type", f)
		return nil
	case KindNull:
		return factory.NullValueType
	case KindInitializedReference:
		return f.typ
	case KindInitializedReferenceWithInterfaces:
		return f.resolvedType()
	default:
		if f.IsPrimitive() {
			return factory.Type(f.descriptor)
		}
		return nil
	}
}

func (f *FrameType) resolvedType() *types.Type {
	if t := f.resolved.Load(); t != nil {
		return t
	}
	t := f.resolver.ResolveElement(f.element)
	if t == nil {
		unreachable(InvariantUnresolvedElement, "hierarchy could not resolve %s", f.element)
	}
	f.resolved.Store(t)
	return t
}

// InitializedElement returns the element of an initialized non-null
// reference. References without interfaces yield an element with an empty
// interface set.
func (f *FrameType) InitializedElement() (types.Element, bool) {
	switch f.kind {
	case KindInitializedReference:
		return types.NewElement(f.typ), true
	case KindInitializedReferenceWithInterfaces:
		return f.element, true
	default:
		return types.Element{}, false
	}
}
