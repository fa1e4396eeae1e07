// Package frame models stack map frames: the verification types of the local
// variables and operand stack at one program point, and the merge of frames
// flowing into the same instruction.
package frame

import (
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/speakeasy-api/stackmap"
	"github.com/speakeasy-api/stackmap/frametype"
	"github.com/speakeasy-api/stackmap/pkg/types"
)

// Frame is an immutable stack map frame. Locals are sparse: an absent index
// holds top. A wide value occupies its index and the next one, holding the
// low and high half respectively. The stack holds one precise entry per
// value, wide values included.
type Frame struct {
	locals map[int]*frametype.FrameType
	stack  []*frametype.FrameType

	fingerprint atomic.Pointer[string]
}

// Slot is a local variable index with its type.
type Slot struct {
	Index int
	Type  *frametype.FrameType
}

// Empty returns a frame with no locals and an empty stack.
func Empty() *Frame {
	return &Frame{locals: map[int]*frametype.FrameType{}}
}

// Local returns the type stored at index i. Absent locals report false.
func (f *Frame) Local(i int) (*frametype.FrameType, bool) {
	t, ok := f.locals[i]
	return t, ok
}

// Locals returns the stored locals in ascending index order, high halves of
// wide values included.
func (f *Frame) Locals() []Slot {
	slots := make([]Slot, 0, len(f.locals))
	for _, i := range f.indices() {
		slots = append(slots, Slot{Index: i, Type: f.locals[i]})
	}
	return slots
}

func (f *Frame) indices() []int {
	idx := make([]int, 0, len(f.locals))
	for i := range f.locals {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}

// Stack returns a copy of the operand stack, bottom first.
func (f *Frame) Stack() []*frametype.FrameType {
	return append([]*frametype.FrameType(nil), f.stack...)
}

// StackHeight returns the number of values on the stack.
func (f *Frame) StackHeight() int {
	return len(f.stack)
}

// StackSize returns the stack depth in words.
func (f *Frame) StackSize() int {
	size := 0
	for _, t := range f.stack {
		size += t.Width()
	}
	return size
}

// LocalsCount returns the number of verification entries needed to write
// the locals: wide values count once and gaps below the highest local count
// as top.
func (f *Frame) LocalsCount() int {
	count := 0
	idx := f.indices()
	if len(idx) == 0 {
		return 0
	}
	for i := 0; i <= idx[len(idx)-1]; i++ {
		if t, ok := f.locals[i]; ok && t.IsWidePrimitiveHigh() {
			continue
		}
		count++
	}
	return count
}

// Equal reports whether f and o hold equal types in every slot.
func (f *Frame) Equal(o *Frame) bool {
	if f == o {
		return true
	}
	if len(f.locals) != len(o.locals) || len(f.stack) != len(o.stack) {
		return false
	}
	for i, t := range f.locals {
		u, ok := o.locals[i]
		if !ok || !t.Equal(u) {
			return false
		}
	}
	for i, t := range f.stack {
		if !t.Equal(o.stack[i]) {
			return false
		}
	}
	return true
}

// LocalsCodes projects the locals to verification entries. Absent indices
// below the highest local are written as top; the high half of a wide value
// is implied by its low half.
func (f *Frame) LocalsCodes(rewriter frametype.TypeRewriter, namer frametype.Namer) []stackmap.Code {
	idx := f.indices()
	if len(idx) == 0 {
		return nil
	}
	codes := make([]stackmap.Code, 0, len(idx))
	for i := 0; i <= idx[len(idx)-1]; i++ {
		t, ok := f.locals[i]
		switch {
		case !ok:
			codes = append(codes, stackmap.Simple(stackmap.OpTop))
		case t.IsWidePrimitiveHigh():
		default:
			codes = append(codes, t.TypeOpcode(rewriter, namer))
		}
	}
	return codes
}

// StackCodes projects the stack to verification entries, bottom first.
func (f *Frame) StackCodes(rewriter frametype.TypeRewriter, namer frametype.Namer) []stackmap.Code {
	codes := make([]stackmap.Code, len(f.stack))
	for i, t := range f.stack {
		codes[i] = t.TypeOpcode(rewriter, namer)
	}
	return codes
}

// MapReferenceTypes substitutes the types embedded in every slot. It returns
// f itself when fn changes nothing.
func (f *Frame) MapReferenceTypes(fn func(*types.Type) *types.Type) *Frame {
	return f.rewrite(func(t *frametype.FrameType) *frametype.FrameType { return t.Map(fn) })
}

// MarkInitialized returns the frame after the constructor call on unInit
// completed: every slot holding unInit now holds an initialized reference to
// t.
func (f *Frame) MarkInitialized(unInit *frametype.FrameType, t *types.Type) *Frame {
	if !unInit.IsUninitialized() {
		unreachable(frametype.InvariantInvalidVariant, "%s is not uninitialized", unInit)
	}
	return f.rewrite(func(slot *frametype.FrameType) *frametype.FrameType {
		return frametype.InitializedFrameType(unInit, slot, t)
	})
}

func (f *Frame) rewrite(fn func(*frametype.FrameType) *frametype.FrameType) *Frame {
	var locals map[int]*frametype.FrameType
	for i, t := range f.locals {
		u := fn(t)
		if u == t {
			continue
		}
		if locals == nil {
			locals = make(map[int]*frametype.FrameType, len(f.locals))
			for k, v := range f.locals {
				locals[k] = v
			}
		}
		locals[i] = u
	}
	var stack []*frametype.FrameType
	for i, t := range f.stack {
		u := fn(t)
		if u == t {
			continue
		}
		if stack == nil {
			stack = append([]*frametype.FrameType(nil), f.stack...)
		}
		stack[i] = u
	}
	if locals == nil && stack == nil {
		return f
	}
	if locals == nil {
		locals = f.locals
	}
	if stack == nil {
		stack = f.stack
	}
	return &Frame{locals: locals, stack: stack}
}

// Builder returns a builder initialized with the contents of f.
func (f *Frame) Builder() *Builder {
	b := NewBuilder()
	for i, t := range f.locals {
		b.locals[i] = t
	}
	b.stack = append(b.stack, f.stack...)
	return b
}

func unreachable(invariant, format string, args ...any) {
	panic(&frametype.InvariantError{Invariant: invariant, Detail: fmt.Sprintf(format, args...)})
}
