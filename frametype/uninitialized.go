package frametype

import (
	"fmt"
	"sync/atomic"

	"github.com/speakeasy-api/stackmap/pkg/types"
)

var labelCounter atomic.Uint64

// Label identifies an allocation site. Labels are compared by identity only;
// the name and id are for printing.
type Label struct {
	id   uint64
	name string
}

// NewLabel returns a fresh allocation site label.
func NewLabel(name string) *Label {
	return &Label{id: labelCounter.Add(1), name: name}
}

// ID returns the process-unique number of the label.
func (l *Label) ID() uint64 {
	return l.id
}

func (l *Label) Name() string {
	return l.name
}

func (l *Label) String() string {
	if l == nil {
		return "<nil>"
	}
	if l.name != "" {
		return l.name
	}
	return fmt.Sprintf("L%d", l.id)
}

// UninitializedNew returns the value produced by the allocation at label of
// an instance of t, before its constructor has run.
func UninitializedNew(label *Label, t *types.Type) *FrameType {
	if label == nil {
		unreachable(InvariantMissingType, "uninitialized value without allocation label")
	}
	if t == nil {
		unreachable(InvariantMissingType, "uninitialized value at %s without type", label)
	}
	return &FrameType{kind: KindUninitializedNew, label: label, typ: t}
}

// UninitializedLabel returns the allocation label of an uninitialized-new value.
func (f *FrameType) UninitializedLabel() (*Label, bool) {
	if f.kind != KindUninitializedNew {
		return nil, false
	}
	return f.label, true
}

// UninitializedNewType returns the allocated type of an uninitialized-new value.
func (f *FrameType) UninitializedNewType() (*types.Type, bool) {
	if f.kind != KindUninitializedNew {
		return nil, false
	}
	return f.typ, true
}

// InitializedFrameType returns the type of a slot holding other once the
// constructor call on unInit completed: slots holding the same
// uninitialized value become an initialized reference to newType, all other
// slots are unchanged.
func InitializedFrameType(unInit, other *FrameType, newType *types.Type) *FrameType {
	if unInit.IsUninitializedThis() && other.IsUninitializedThis() {
		return InitializedNonNullReference(newType)
	}
	if unInit.IsUninitializedNew() && other.IsUninitializedNew() && unInit.label == other.label {
		return InitializedNonNullReference(newType)
	}
	return other
}
