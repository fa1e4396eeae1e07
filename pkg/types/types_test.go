package types

import (
	"sync"
	"testing"
)

func TestFactoryInterns(t *testing.T) {
	f := NewFactory()

	a := f.Type("Ljava/lang/String;")
	b := f.Type("Ljava/lang/String;")
	if a != b {
		t.Error("Expected the same handle for equal descriptors")
	}

	c, err := f.FromInternalName("java/lang/String")
	if err != nil {
		t.Fatalf("FromInternalName failed: %v", err)
	}
	if c != a {
		t.Error("Expected internal name lookup to return the interned handle")
	}

	if f.ObjectType != f.Type(ObjectDescriptor) {
		t.Error("Expected ObjectType to be interned")
	}
}

func TestFactoryConcurrentIntern(t *testing.T) {
	f := NewFactory()
	results := make([]*Type, 32)

	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = f.Type("Lcom/example/Shared;")
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		if r != results[0] {
			t.Fatal("Expected every goroutine to observe the same handle")
		}
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	f := NewFactory()
	for _, d := range []string{"", "V", "Q", "L;", "Ljava.lang.String;", "Ljava/lang/String", "[[X"} {
		if _, err := f.Parse(d); err == nil {
			t.Errorf("Expected %q to be rejected", d)
		}
	}
}

func TestTypeQueries(t *testing.T) {
	f := NewFactory()
	tests := []struct {
		desc     string
		name     string
		internal string
		prim     bool
		wide     bool
		array    bool
		regs     int
	}{
		{"I", "int", "I", true, false, false, 1},
		{"J", "long", "J", true, true, false, 2},
		{"D", "double", "D", true, true, false, 2},
		{"Ljava/lang/String;", "java.lang.String", "java/lang/String", false, false, false, 1},
		{"[[I", "int[][]", "[[I", false, false, true, 1},
		{"[Ljava/lang/Object;", "java.lang.Object[]", "[Ljava/lang/Object;", false, false, true, 1},
	}
	for _, tt := range tests {
		typ := f.Type(tt.desc)
		if typ.String() != tt.name {
			t.Errorf("%s: expected name %q, got %q", tt.desc, tt.name, typ.String())
		}
		if typ.InternalName() != tt.internal {
			t.Errorf("%s: expected internal name %q, got %q", tt.desc, tt.internal, typ.InternalName())
		}
		if typ.IsPrimitive() != tt.prim || typ.IsWide() != tt.wide || typ.IsArray() != tt.array {
			t.Errorf("%s: unexpected classification", tt.desc)
		}
		if typ.RequiredRegisters() != tt.regs {
			t.Errorf("%s: expected %d registers, got %d", tt.desc, tt.regs, typ.RequiredRegisters())
		}
	}

	if f.NullValueType.String() != "null" || !f.NullValueType.IsNullValue() {
		t.Error("Expected null sentinel to print as null")
	}
}

func TestArrayHelpers(t *testing.T) {
	f := NewFactory()
	arr := f.ArrayOf(f.ObjectType)
	if arr.Descriptor() != "[Ljava/lang/Object;" {
		t.Fatalf("Unexpected array descriptor %q", arr.Descriptor())
	}
	if f.ArrayElement(arr) != f.ObjectType {
		t.Error("Expected element type to round trip")
	}
	if f.ArrayElement(f.ObjectType) != nil {
		t.Error("Expected nil element type for a class")
	}
	if f.Type("[[J").Dimensions() != 2 {
		t.Error("Expected two dimensions")
	}
}

func TestElementEquality(t *testing.T) {
	f := NewFactory()
	runnable := f.Type("Ljava/lang/Runnable;")

	a := NewElement(f.ObjectType, runnable, f.SerializableType)
	b := NewElement(f.ObjectType, f.SerializableType, runnable, runnable)
	if !a.Equal(b) {
		t.Errorf("Expected %s to equal %s", a, b)
	}
	if a.Equal(NewElement(f.ObjectType, runnable)) {
		t.Error("Expected differing interface sets to be unequal")
	}
	if got := a.String(); got != "java/lang/Object{java/io/Serializable,java/lang/Runnable}" {
		t.Errorf("Unexpected element string %q", got)
	}
}

func TestElementWithType(t *testing.T) {
	f := NewFactory()
	oldT := f.Type("Lp/Old;")
	newT := f.Type("Lp/New;")

	e := NewElement(f.ObjectType, oldT)
	mapped := e.WithType(func(t *Type) *Type {
		if t == oldT {
			return newT
		}
		return t
	})
	if !mapped.Equal(NewElement(f.ObjectType, newT)) {
		t.Errorf("Unexpected mapped element %s", mapped)
	}

	same := e.WithType(func(t *Type) *Type { return t })
	if !same.Equal(e) {
		t.Error("Expected identity mapping to keep the element")
	}
}
