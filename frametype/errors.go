package frametype

import "fmt"

// InvariantError describes a violated lattice invariant. It is only ever
// raised as a panic value.
type InvariantError struct {
	Invariant string
	Detail    string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("frametype: invariant %q violated: %s", e.Invariant, e.Detail)
}

// Invariant names carried by InvariantError.
const (
	InvariantJoinWidth          = "join-width"
	InvariantUninitializedThis  = "uninitialized-this-join"
	InvariantWideHigh           = "wide-high-half"
	InvariantUnresolvedElement  = "unresolved-interfaces"
	InvariantNotSerializable    = "not-serializable"
	InvariantInvalidVariant     = "invalid-variant"
	InvariantMissingType        = "missing-type"
	InvariantTwoWordInLocals    = "two-word-local"
	InvariantStackUnderflow     = "stack-underflow"
	InvariantImpreciseStackSlot = "imprecise-stack-slot"
)

func unreachable(invariant, format string, args ...any) {
	panic(&InvariantError{Invariant: invariant, Detail: fmt.Sprintf(format, args...)})
}
