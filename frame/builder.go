package frame

import "github.com/speakeasy-api/stackmap/frametype"

// MaxLocals is the number of local variable slots a method can have. Valid
// local indices are 0 through MaxLocals-1, and a wide value needs both of
// its slots in range.
const MaxLocals = 65535

// localInRange reports whether a value of the given width fits at local i.
func localInRange(i, width int) bool {
	return i >= 0 && i <= MaxLocals-width
}

// Builder accumulates locals and stack entries for a Frame.
type Builder struct {
	locals map[int]*frametype.FrameType
	stack  []*frametype.FrameType
}

// NewBuilder creates a builder for an empty frame.
func NewBuilder() *Builder {
	return &Builder{
		locals: make(map[int]*frametype.FrameType),
		stack:  make([]*frametype.FrameType, 0, 8),
	}
}

// AppendLocal stores t after the highest local, e.g. when laying out the
// parameters of a method.
func (b *Builder) AppendLocal(t *frametype.FrameType) *Builder {
	next := 0
	for i := range b.locals {
		if i+1 > next {
			next = i + 1
		}
	}
	return b.Store(next, t)
}

// Store writes t to local i. Storing a wide low half also writes its high
// half to i+1. Overwriting one half of a wide value clears the other half.
// Storing one-word top clears the local.
func (b *Builder) Store(i int, t *frametype.FrameType) *Builder {
	switch {
	case t == nil:
		unreachable(frametype.InvariantInvalidVariant, "nil stored to local %d", i)
	case !localInRange(i, t.Width()):
		unreachable(frametype.InvariantInvalidVariant, "local index %d out of range for %s", i, t)
	case t.IsTwoWord():
		unreachable(frametype.InvariantTwoWordInLocals, "two-word top stored to local %d", i)
	case t.IsWidePrimitiveHigh():
		unreachable(frametype.InvariantWideHigh, "%s stored to local %d without its low half", t, i)
	}

	b.clear(i)
	if t.IsOneWord() {
		return b
	}
	b.locals[i] = t
	if high, ok := t.HighHalf(); ok {
		b.clear(i + 1)
		b.locals[i+1] = high
	}
	return b
}

// clear removes local i and the other half of a wide value it belongs to.
func (b *Builder) clear(i int) {
	t, ok := b.locals[i]
	if !ok {
		return
	}
	delete(b.locals, i)
	switch {
	case t.IsWidePrimitiveLow():
		delete(b.locals, i+1)
	case t.IsWidePrimitiveHigh():
		delete(b.locals, i-1)
	}
}

// Push adds t to the top of the stack. Only precise types that can start a
// value may be pushed.
func (b *Builder) Push(t *frametype.FrameType) *Builder {
	if !t.IsPrecise() {
		unreachable(frametype.InvariantImpreciseStackSlot, "%s pushed to the stack", t)
	}
	if t.IsWidePrimitiveHigh() {
		unreachable(frametype.InvariantWideHigh, "%s pushed to the stack", t)
	}
	b.stack = append(b.stack, t)
	return b
}

// Pop removes and returns the top of the stack.
// Panics if stack is empty.
func (b *Builder) Pop() *frametype.FrameType {
	if len(b.stack) == 0 {
		unreachable(frametype.InvariantStackUnderflow, "pop from empty stack")
	}
	t := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	return t
}

// Top returns the top of the stack without removing it.
func (b *Builder) Top() *frametype.FrameType {
	if len(b.stack) == 0 {
		unreachable(frametype.InvariantStackUnderflow, "top of empty stack")
	}
	return b.stack[len(b.stack)-1]
}

// Build returns the frame. The builder may be reused afterwards.
func (b *Builder) Build() *Frame {
	locals := make(map[int]*frametype.FrameType, len(b.locals))
	for i, t := range b.locals {
		locals[i] = t
	}
	return &Frame{
		locals: locals,
		stack:  append([]*frametype.FrameType(nil), b.stack...),
	}
}
