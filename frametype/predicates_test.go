package frametype

import "testing"

func TestWidthConsistency(t *testing.T) {
	fx := newFixture()
	for _, x := range fx.universe() {
		if x.IsSingle() == x.IsWide() {
			t.Errorf("%s: expected IsSingle to be the negation of IsWide", x)
		}
		want := 1
		if x.IsWide() {
			want = 2
		}
		if x.Width() != want {
			t.Errorf("%s: expected width %d, got %d", x, want, x.Width())
		}
	}

	for _, x := range []*FrameType{Double(), DoubleHigh(), Long(), LongHigh(), TwoWord()} {
		if x.Width() != 2 {
			t.Errorf("%s: expected width 2", x)
		}
	}
}

func TestFamiliesAreExclusive(t *testing.T) {
	fx := newFixture()
	families := []struct {
		name string
		is   func(*FrameType) bool
	}{
		{"single-primitive", (*FrameType).IsSinglePrimitive},
		{"wide-primitive", (*FrameType).IsWidePrimitive},
		{"null", (*FrameType).IsNullType},
		{"reference", (*FrameType).IsInitializedNonNullReferenceWithoutInterfaces},
		{"reference-with-interfaces", (*FrameType).IsInitializedNonNullReferenceWithInterfaces},
		{"uninitialized-new", (*FrameType).IsUninitializedNew},
		{"uninitialized-this", (*FrameType).IsUninitializedThis},
		{"one-word", (*FrameType).IsOneWord},
		{"two-word", (*FrameType).IsTwoWord},
	}
	for _, x := range fx.universe() {
		var matched []string
		for _, fam := range families {
			if fam.is(x) {
				matched = append(matched, fam.name)
			}
		}
		if len(matched) != 1 {
			t.Errorf("%s: expected exactly one family, got %v", x, matched)
		}
	}
}

func TestPrecision(t *testing.T) {
	fx := newFixture()
	for _, x := range fx.universe() {
		imprecise := x == OneWord() || x == TwoWord()
		if x.IsPrecise() == imprecise {
			t.Errorf("%s: unexpected IsPrecise %v", x, x.IsPrecise())
		}
		p, ok := x.AsPrecise()
		if ok != !imprecise || (ok && p != x) {
			t.Errorf("%s: unexpected AsPrecise result %v, %v", x, p, ok)
		}
	}
}

func TestIntVerificationType(t *testing.T) {
	want := map[*FrameType]bool{
		Boolean(): true, Byte(): true, Char(): true, Int(): true, Short(): true,
		Float(): false, Double(): false, Long(): false, Null(): false, OneWord(): false,
	}
	for x, expected := range want {
		if x.HasIntVerificationType() != expected {
			t.Errorf("%s: expected HasIntVerificationType=%v", x, expected)
		}
	}
}

func TestReferencePredicates(t *testing.T) {
	fx := newFixture()
	ref := InitializedNonNullReference(fx.classA)
	uninit := UninitializedNew(NewLabel("L"), fx.classA)

	if !Null().IsNullType() || !Null().IsObject() || !Null().IsInitialized() || !Null().IsPrecise() {
		t.Error("Expected null to be an initialized precise object")
	}
	if !ref.IsObject() || !ref.IsInitializedReference() || ref.IsNullType() {
		t.Error("Unexpected reference classification")
	}
	if !uninit.IsObject() || uninit.IsInitialized() || !uninit.IsUninitialized() {
		t.Error("Unexpected uninitialized classification")
	}
	if OneWord().IsObject() || OneWord().IsInitialized() {
		t.Error("Expected top to be neither object nor initialized")
	}
}

func TestWideHalves(t *testing.T) {
	low, ok := DoubleHigh().LowHalf()
	if !ok || low != Double() {
		t.Errorf("Expected double low half, got %v", low)
	}
	high, ok := Long().HighHalf()
	if !ok || high != LongHigh() {
		t.Errorf("Expected long high half, got %v", high)
	}
	if _, ok := Int().HighHalf(); ok {
		t.Error("Expected int to have no halves")
	}
	if !DoubleHigh().IsWidePrimitiveHigh() || DoubleHigh().IsWidePrimitiveLow() || !DoubleHigh().IsDouble() {
		t.Error("Unexpected classification of the double high half")
	}
}

func TestInvalidVariantIsFatal(t *testing.T) {
	var zero FrameType
	mustPanicInvariant(t, InvariantInvalidVariant, func() { zero.IsWide() })
	mustPanicInvariant(t, InvariantInvalidVariant, func() { zero.IsPrecise() })

	var nilType *FrameType
	mustPanicInvariant(t, InvariantInvalidVariant, func() { nilType.Width() })
}

func TestPrimitiveLookup(t *testing.T) {
	for desc, want := range map[string]*FrameType{
		"Z": Boolean(), "B": Byte(), "C": Char(), "S": Short(),
		"I": Int(), "F": Float(), "J": Long(), "D": Double(),
	} {
		got, ok := Primitive(desc)
		if !ok || got != want {
			t.Errorf("%s: expected %s, got %v", desc, want, got)
		}
	}
	if _, ok := Primitive("V"); ok {
		t.Error("Expected void to have no frame type")
	}
}
