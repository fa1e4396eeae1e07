package frame

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/speakeasy-api/stackmap/frametype"
	"github.com/speakeasy-api/stackmap/pkg/types"
)

func TestStoreWide(t *testing.T) {
	f := NewBuilder().Store(0, frametype.Int()).Store(1, frametype.Double()).Build()

	if high, ok := f.Local(2); !ok || high != frametype.DoubleHigh() {
		t.Fatalf("Expected double high half at 2, got %v", high)
	}
	if f.String() != "[0:int, 1:double] []" {
		t.Errorf("Unexpected frame %s", f)
	}
	if f.LocalsCount() != 2 {
		t.Errorf("Expected 2 locals, got %d", f.LocalsCount())
	}
}

func TestStoreInvalidatesWidePairs(t *testing.T) {
	b := NewBuilder().Store(1, frametype.Long())

	// Overwriting the high half drops the low half.
	b.Store(2, frametype.Int())
	f := b.Build()
	if _, ok := f.Local(1); ok {
		t.Error("Expected low half to be cleared")
	}
	if got, _ := f.Local(2); got != frametype.Int() {
		t.Errorf("Expected int at 2, got %s", got)
	}

	// Storing a wide value over the low half of another pair clears it.
	b = NewBuilder().Store(1, frametype.Double()).Store(0, frametype.Long())
	f = b.Build()
	if f.String() != "[0:long] []" {
		t.Errorf("Unexpected frame %s", f)
	}
	if _, ok := f.Local(2); ok {
		t.Error("Expected orphaned high half to be cleared")
	}

	// Storing top clears the local.
	f = NewBuilder().Store(0, frametype.Double()).Store(0, frametype.OneWord()).Build()
	if len(f.Locals()) != 0 {
		t.Errorf("Expected no locals, got %s", f)
	}
}

func TestStoreRejectsUnstorable(t *testing.T) {
	mustPanicInvariant(t, frametype.InvariantTwoWordInLocals, func() {
		NewBuilder().Store(0, frametype.TwoWord())
	})
	mustPanicInvariant(t, frametype.InvariantWideHigh, func() {
		NewBuilder().Store(0, frametype.LongHigh())
	})
	mustPanicInvariant(t, frametype.InvariantInvalidVariant, func() {
		NewBuilder().Store(-1, frametype.Int())
	})
	mustPanicInvariant(t, frametype.InvariantInvalidVariant, func() {
		NewBuilder().Store(MaxLocals, frametype.Int())
	})
	mustPanicInvariant(t, frametype.InvariantInvalidVariant, func() {
		NewBuilder().Store(MaxLocals-1, frametype.Double())
	})
}

func TestStoreAtLastLocals(t *testing.T) {
	f := NewBuilder().Store(MaxLocals-3, frametype.Double()).Store(MaxLocals-1, frametype.Int()).Build()
	if high, ok := f.Local(MaxLocals - 2); !ok || high != frametype.DoubleHigh() {
		t.Fatalf("Expected double high half at %d, got %v", MaxLocals-2, high)
	}
	if f.LocalsCount() != MaxLocals-1 {
		t.Errorf("Expected %d locals, got %d", MaxLocals-1, f.LocalsCount())
	}
}

func TestStackOperations(t *testing.T) {
	b := NewBuilder().Push(frametype.Int()).Push(frametype.Long())
	if b.Top() != frametype.Long() {
		t.Errorf("Expected long on top, got %s", b.Top())
	}
	f := b.Build()
	if f.StackHeight() != 2 || f.StackSize() != 3 {
		t.Errorf("Expected height 2 and size 3, got %d and %d", f.StackHeight(), f.StackSize())
	}
	if b.Pop() != frametype.Long() || b.Pop() != frametype.Int() {
		t.Error("Expected values to pop in reverse order")
	}
	if f.StackHeight() != 2 {
		t.Error("Expected built frame to be unaffected by the builder")
	}

	mustPanicInvariant(t, frametype.InvariantStackUnderflow, func() { b.Pop() })
	mustPanicInvariant(t, frametype.InvariantStackUnderflow, func() { b.Top() })
	mustPanicInvariant(t, frametype.InvariantImpreciseStackSlot, func() { b.Push(frametype.OneWord()) })
	mustPanicInvariant(t, frametype.InvariantWideHigh, func() { b.Push(frametype.DoubleHigh()) })
}

func TestAppendLocal(t *testing.T) {
	e := newEnv(t)
	f := NewBuilder().
		AppendLocal(frametype.UninitializedThis()).
		AppendLocal(frametype.Long()).
		AppendLocal(frametype.InitializedNonNullReference(e.classA)).
		Build()
	if f.String() != "[0:uninitializedThis, 1:long, 3:p/A] []" {
		t.Errorf("Unexpected frame %s", f)
	}
}

func TestCodes(t *testing.T) {
	e := newEnv(t)
	f := e.frame(t, map[int]string{0: "p/A", 1: "D", 4: "null"}, "I", "uninitialized L7 p/B")

	var locals []string
	for _, c := range f.LocalsCodes(frametype.IdentityLens{}, frametype.IdentityLens{}) {
		locals = append(locals, c.String())
	}
	if diff := cmp.Diff([]string{"object p/A", "double", "top", "null"}, locals); diff != "" {
		t.Errorf("Unexpected locals (-want +got):\n%s", diff)
	}
	if f.LocalsCount() != 4 {
		t.Errorf("Expected 4 locals, got %d", f.LocalsCount())
	}

	var stack []string
	for _, c := range f.StackCodes(frametype.IdentityLens{}, frametype.IdentityLens{}) {
		stack = append(stack, c.String())
	}
	if diff := cmp.Diff([]string{"integer", "uninitialized L7"}, stack); diff != "" {
		t.Errorf("Unexpected stack (-want +got):\n%s", diff)
	}

	if len(Empty().LocalsCodes(frametype.IdentityLens{}, frametype.IdentityLens{})) != 0 {
		t.Error("Expected no codes for an empty frame")
	}
}

func TestMapReferenceTypes(t *testing.T) {
	e := newEnv(t)
	f := e.frame(t, map[int]string{0: "p/A", 1: "I"}, "p/C", "uninitialized L0 p/A")

	toB := func(typ *types.Type) *types.Type {
		if typ == e.classA {
			return e.classB
		}
		return typ
	}
	mapped := f.MapReferenceTypes(toB)
	if mapped.String() != "[0:p/B, 1:int] [p/C, uninitialized L0 p/B]" {
		t.Errorf("Unexpected mapped frame %s", mapped)
	}
	if typ, _ := mapped.Stack()[1].UninitializedNewType(); typ != e.classB {
		t.Errorf("Expected uninitialized p/B, got %s", typ)
	}

	identity := func(typ *types.Type) *types.Type { return typ }
	if f.MapReferenceTypes(identity) != f {
		t.Error("Expected unchanged frame to be returned as is")
	}
}

func TestMarkInitialized(t *testing.T) {
	e := newEnv(t)
	f := e.frame(t, map[int]string{0: "uninitializedThis", 1: "uninitialized L1 p/A", 2: "uninitialized L2 p/A"},
		"uninitialized L1 p/A", "uninitialized L1 p/A")

	newA := f.Stack()[0]
	got := f.MarkInitialized(newA, e.classA)
	if got.String() != "[0:uninitializedThis, 1:p/A, 2:uninitialized L2 p/A] [p/A, p/A]" {
		t.Errorf("Unexpected frame %s", got)
	}

	got = got.MarkInitialized(frametype.UninitializedThis(), e.classC)
	if local, _ := got.Local(0); !local.Equal(frametype.InitializedNonNullReference(e.classC)) {
		t.Errorf("Expected p/C at 0, got %s", local)
	}

	mustPanicInvariant(t, frametype.InvariantInvalidVariant, func() {
		f.MarkInitialized(frametype.Int(), e.classA)
	})
}

func TestFrameEqual(t *testing.T) {
	e := newEnv(t)
	a := e.frame(t, map[int]string{0: "p/A", 1: "J"}, "I")
	b := e.frame(t, map[int]string{0: "p/A", 1: "long"}, "int")
	c := e.frame(t, map[int]string{0: "p/A", 1: "J"}, "F")

	if !a.Equal(b) || a.Fingerprint() != b.Fingerprint() {
		t.Error("Expected equal frames with equal fingerprints")
	}
	if a.Equal(c) || a.Fingerprint() == c.Fingerprint() {
		t.Error("Expected different frames with different fingerprints")
	}
	if Empty().Fingerprint() == a.Fingerprint() {
		t.Error("Expected the empty frame to have its own fingerprint")
	}
}

func TestBuilderFromFrame(t *testing.T) {
	e := newEnv(t)
	f := e.frame(t, map[int]string{0: "I"}, "p/A")
	g := f.Builder().Store(1, frametype.Float()).Push(frametype.Null()).Build()

	if f.String() != "[0:int] [p/A]" {
		t.Errorf("Expected original frame to be unchanged, got %s", f)
	}
	if g.String() != "[0:int, 1:float] [p/A, null]" {
		t.Errorf("Unexpected frame %s", g)
	}
}
