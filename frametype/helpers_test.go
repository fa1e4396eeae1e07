package frametype

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/speakeasy-api/stackmap/pkg/types"
)

// fakeHierarchy is a single-inheritance class tree whose joins walk the
// superclass chains and intersect the interface sets.
type fakeHierarchy struct {
	factory  *types.Factory
	supers   map[*types.Type]*types.Type
	fail     error
	joins    atomic.Int32
	resolves atomic.Int32
}

func newFakeHierarchy(f *types.Factory) *fakeHierarchy {
	return &fakeHierarchy{factory: f, supers: make(map[*types.Type]*types.Type)}
}

func (h *fakeHierarchy) define(class, super *types.Type) {
	h.supers[class] = super
}

func (h *fakeHierarchy) chain(t *types.Type) []*types.Type {
	chain := []*types.Type{t}
	for t != h.factory.ObjectType {
		super, ok := h.supers[t]
		if !ok {
			return append(chain, h.factory.ObjectType)
		}
		chain = append(chain, super)
		t = super
	}
	return chain
}

func (h *fakeHierarchy) JoinElements(a, b types.Element) (types.Element, error) {
	h.joins.Add(1)
	if h.fail != nil {
		return types.Element{}, h.fail
	}
	inB := make(map[*types.Type]bool)
	for _, t := range h.chain(b.Type) {
		inB[t] = true
	}
	lub := h.factory.ObjectType
	for _, t := range h.chain(a.Type) {
		if inB[t] {
			lub = t
			break
		}
	}
	var common []*types.Type
	for _, x := range a.Interfaces() {
		for _, y := range b.Interfaces() {
			if x == y {
				common = append(common, x)
			}
		}
	}
	return types.NewElement(lub, common...), nil
}

func (h *fakeHierarchy) ResolveElement(e types.Element) *types.Type {
	h.resolves.Add(1)
	if e.Type == h.factory.ObjectType && len(e.Interfaces()) == 1 {
		return e.Interfaces()[0]
	}
	return e.Type
}

var errFakeHierarchy = errors.New("fake hierarchy failure")

// fixture holds a small class tree: A and B extend C, C extends Object.
type fixture struct {
	factory   *types.Factory
	hierarchy *fakeHierarchy
	classA    *types.Type
	classB    *types.Type
	classC    *types.Type
	runnable  *types.Type
}

func newFixture() *fixture {
	f := types.NewFactory()
	h := newFakeHierarchy(f)
	fx := &fixture{
		factory:   f,
		hierarchy: h,
		classA:    f.Type("Lp/A;"),
		classB:    f.Type("Lp/B;"),
		classC:    f.Type("Lp/C;"),
		runnable:  f.Type("Ljava/lang/Runnable;"),
	}
	h.define(fx.classA, fx.classC)
	h.define(fx.classB, fx.classC)
	h.define(fx.classC, f.ObjectType)
	return fx
}

func (fx *fixture) joiner(opts Options) *Joiner {
	opts.LogLevel = ""
	return NewJoiner(fx.hierarchy, opts)
}

// universe returns one instance of every variant family, with several
// distinct references and allocation sites.
func (fx *fixture) universe() []*FrameType {
	l1, l2 := NewLabel("L1"), NewLabel("L2")
	return []*FrameType{
		Boolean(), Byte(), Char(), Float(), Int(), Short(),
		Double(), DoubleHigh(), Long(), LongHigh(),
		Null(),
		InitializedNonNullReference(fx.classA),
		InitializedNonNullReference(fx.classB),
		InitializedNonNullReference(fx.classC),
		InitializedNonNullReference(fx.factory.ObjectType),
		InitializedNonNullReferenceWithInterfaces(types.NewElement(fx.factory.ObjectType, fx.runnable), fx.hierarchy),
		InitializedNonNullReferenceWithInterfaces(types.NewElement(fx.classC, fx.runnable), fx.hierarchy),
		UninitializedNew(l1, fx.classA),
		UninitializedNew(l2, fx.classA),
		UninitializedNew(l1, fx.classB),
		UninitializedThis(),
		OneWord(), TwoWord(),
	}
}

func mustJoin(t *testing.T, j *Joiner, a, b *FrameType) *FrameType {
	t.Helper()
	r, err := j.Join(a, b)
	if err != nil {
		t.Fatalf("Join(%s, %s) failed: %v", a, b, err)
	}
	return r
}

func mustPanicInvariant(t *testing.T, invariant string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("Expected panic for invariant %q", invariant)
		}
		ie, ok := r.(*InvariantError)
		if !ok {
			t.Fatalf("Expected *InvariantError, got %T: %v", r, r)
		}
		if ie.Invariant != invariant {
			t.Fatalf("Expected invariant %q, got %q (%s)", invariant, ie.Invariant, ie.Detail)
		}
	}()
	fn()
}
