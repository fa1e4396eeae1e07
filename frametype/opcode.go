package frametype

import (
	"github.com/speakeasy-api/stackmap"
	"github.com/speakeasy-api/stackmap/pkg/types"
)

// TypeRewriter substitutes types when code is written under a rewritten
// view of the program, e.g. after classes were merged.
type TypeRewriter interface {
	LookupType(t *types.Type) *types.Type
}

// Namer returns the output name of a type, e.g. after minification.
type Namer interface {
	InternalName(t *types.Type) string
}

// IdentityLens is a TypeRewriter and Namer that changes nothing.
type IdentityLens struct{}

func (IdentityLens) LookupType(t *types.Type) *types.Type { return t }
func (IdentityLens) InternalName(t *types.Type) string    { return t.InternalName() }

// TypeOpcode returns the verification_type_info entry for f. It panics for
// variants that have no class file representation: high halves of wide
// primitives, two-word tops, and references whose interfaces have not been
// resolved.
func (f *FrameType) TypeOpcode(rewriter TypeRewriter, namer Namer) stackmap.Code {
	switch f.mustKind() {
	case KindDoubleHigh, KindLongHigh:
		unreachable(InvariantWideHigh, "%s cannot be written", f)
	case KindTwoWord:
		unreachable(InvariantNotSerializable, "two-word top cannot be written")
	case KindInitializedReferenceWithInterfaces:
		unreachable(InvariantUnresolvedElement, "%s must be resolved before writing", f)
	case KindInitializedReference:
		rewritten := rewriter.LookupType(f.typ)
		if rewritten.IsNullValue() {
			return stackmap.Simple(stackmap.OpNull)
		}
		if rewritten.IsPrimitive() {
			return Initialized(rewritten).TypeOpcode(rewriter, namer)
		}
		return stackmap.Object(namer.InternalName(rewritten))
	case KindUninitializedNew:
		return stackmap.Uninitialized(f.label)
	}
	return stackmap.Simple(f.opcode)
}

// Map returns f with every embedded type replaced by fn. Variants without
// types, and variants whose types fn leaves unchanged, are returned as is.
func (f *FrameType) Map(fn func(*types.Type) *types.Type) *FrameType {
	switch f.kind {
	case KindInitializedReference:
		if t := fn(f.typ); t != f.typ {
			return InitializedNonNullReference(t)
		}
	case KindInitializedReferenceWithInterfaces:
		if e := f.element.WithType(fn); !e.Equal(f.element) {
			return InitializedNonNullReferenceWithInterfaces(e, f.resolver)
		}
	case KindUninitializedNew:
		if t := fn(f.typ); t != f.typ {
			return UninitializedNew(f.label, t)
		}
	}
	return f
}
