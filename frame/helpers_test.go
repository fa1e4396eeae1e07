package frame

import (
	"testing"

	"github.com/speakeasy-api/stackmap/frametype"
	"github.com/speakeasy-api/stackmap/pkg/hierarchy"
	"github.com/speakeasy-api/stackmap/pkg/types"
)

// env holds a class table where p/A and p/B extend p/C.
type env struct {
	factory *types.Factory
	table   *hierarchy.ClassTable
	classA  *types.Type
	classB  *types.Type
	classC  *types.Type
	parser  *Parser
}

func newEnv(t *testing.T) *env {
	t.Helper()
	f := types.NewFactory()
	table := hierarchy.NewClassTable(f)
	e := &env{
		factory: f,
		table:   table,
		classA:  f.Type("Lp/A;"),
		classB:  f.Type("Lp/B;"),
		classC:  f.Type("Lp/C;"),
	}
	for _, def := range []struct{ class, super *types.Type }{
		{e.classC, nil},
		{e.classA, e.classC},
		{e.classB, e.classC},
	} {
		if err := table.Define(def.class, def.super, nil, false); err != nil {
			t.Fatalf("Define failed: %v", err)
		}
	}
	e.parser = NewParser(f, table)
	return e
}

func (e *env) merger(opts frametype.Options) *Merger {
	opts.LogLevel = ""
	return NewMerger(frametype.NewJoiner(e.table, opts))
}

func (e *env) frame(t *testing.T, locals map[int]string, stack ...string) *Frame {
	t.Helper()
	f, err := e.parser.ParseFrame(locals, stack)
	if err != nil {
		t.Fatalf("ParseFrame failed: %v", err)
	}
	return f
}

func mustPanicInvariant(t *testing.T, invariant string, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("Expected panic for invariant %q", invariant)
		}
		ie, ok := r.(*frametype.InvariantError)
		if !ok {
			t.Fatalf("Expected *frametype.InvariantError, got %T: %v", r, r)
		}
		if ie.Invariant != invariant {
			t.Fatalf("Expected invariant %q, got %q (%s)", invariant, ie.Invariant, ie.Detail)
		}
	}()
	fn()
}
