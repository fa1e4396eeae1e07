package frametype

func (f *FrameType) mustKind() Kind {
	if f == nil || f.kind == KindInvalid {
		unreachable(InvariantInvalidVariant, "query on an invalid frame type")
	}
	return f.kind
}

func (f *FrameType) IsBoolean() bool { return f.kind == KindBoolean }
func (f *FrameType) IsByte() bool    { return f.kind == KindByte }
func (f *FrameType) IsChar() bool    { return f.kind == KindChar }
func (f *FrameType) IsFloat() bool   { return f.kind == KindFloat }
func (f *FrameType) IsInt() bool     { return f.kind == KindInt }
func (f *FrameType) IsShort() bool   { return f.kind == KindShort }

// IsDouble reports whether f is either half of a double.
func (f *FrameType) IsDouble() bool {
	return f.kind == KindDouble || f.kind == KindDoubleHigh
}

// IsLong reports whether f is either half of a long.
func (f *FrameType) IsLong() bool {
	return f.kind == KindLong || f.kind == KindLongHigh
}

func (f *FrameType) IsSinglePrimitive() bool {
	switch f.kind {
	case KindBoolean, KindByte, KindChar, KindFloat, KindInt, KindShort:
		return true
	default:
		return false
	}
}

// IsWidePrimitive reports whether f is a half of a double or long.
func (f *FrameType) IsWidePrimitive() bool {
	return f.IsDouble() || f.IsLong()
}

func (f *FrameType) IsWidePrimitiveLow() bool {
	return f.kind == KindDouble || f.kind == KindLong
}

func (f *FrameType) IsWidePrimitiveHigh() bool {
	return f.kind == KindDoubleHigh || f.kind == KindLongHigh
}

func (f *FrameType) IsPrimitive() bool {
	return f.IsSinglePrimitive() || f.IsWidePrimitive()
}

// HasIntVerificationType reports whether f is one of the primitives the
// verifier represents as int: boolean, byte, char, int and short.
func (f *FrameType) HasIntVerificationType() bool {
	switch f.kind {
	case KindBoolean, KindByte, KindChar, KindInt, KindShort:
		return true
	default:
		return false
	}
}

func (f *FrameType) IsNullType() bool { return f.kind == KindNull }

// IsObject reports whether f is a reference, initialized or not.
func (f *FrameType) IsObject() bool {
	switch f.kind {
	case KindNull, KindInitializedReference, KindInitializedReferenceWithInterfaces,
		KindUninitializedNew, KindUninitializedThis:
		return true
	default:
		return false
	}
}

// IsInitialized reports whether f is a precise value that has passed any
// constructor it needs.
func (f *FrameType) IsInitialized() bool {
	return f.IsPrimitive() || f.IsInitializedReference()
}

// IsInitializedReference reports whether f is null or an initialized
// non-null reference.
func (f *FrameType) IsInitializedReference() bool {
	return f.IsNullType() || f.IsInitializedNonNullReference()
}

func (f *FrameType) IsInitializedNonNullReference() bool {
	return f.kind == KindInitializedReference || f.kind == KindInitializedReferenceWithInterfaces
}

func (f *FrameType) IsInitializedNonNullReferenceWithoutInterfaces() bool {
	return f.kind == KindInitializedReference
}

func (f *FrameType) IsInitializedNonNullReferenceWithInterfaces() bool {
	return f.kind == KindInitializedReferenceWithInterfaces
}

func (f *FrameType) IsUninitialized() bool {
	return f.kind == KindUninitializedNew || f.kind == KindUninitializedThis
}

func (f *FrameType) IsUninitializedNew() bool  { return f.kind == KindUninitializedNew }
func (f *FrameType) IsUninitializedThis() bool { return f.kind == KindUninitializedThis }

func (f *FrameType) IsOneWord() bool { return f.kind == KindOneWord }
func (f *FrameType) IsTwoWord() bool { return f.kind == KindTwoWord }

// IsWide reports whether f belongs to a two-word value: either half of a
// double or long, or the two-word top.
func (f *FrameType) IsWide() bool {
	switch f.mustKind() {
	case KindDouble, KindDoubleHigh, KindLong, KindLongHigh, KindTwoWord:
		return true
	default:
		return false
	}
}

// IsSingle is the negation of IsWide.
func (f *FrameType) IsSingle() bool {
	return !f.IsWide()
}

// Width returns the number of words of the value f describes.
func (f *FrameType) Width() int {
	if f.IsWide() {
		return 2
	}
	return 1
}

// IsPrecise reports whether f describes a concrete value rather than a
// lattice top.
func (f *FrameType) IsPrecise() bool {
	switch f.mustKind() {
	case KindOneWord, KindTwoWord:
		return false
	default:
		return true
	}
}

// AsPrecise returns f if it is precise.
func (f *FrameType) AsPrecise() (*FrameType, bool) {
	if !f.IsPrecise() {
		return nil, false
	}
	return f, true
}

// LowHalf returns the low half of a wide primitive.
func (f *FrameType) LowHalf() (*FrameType, bool) {
	switch f.kind {
	case KindDouble, KindLong:
		return f, true
	case KindDoubleHigh, KindLongHigh:
		return f.half, true
	default:
		return nil, false
	}
}

// HighHalf returns the high half of a wide primitive.
func (f *FrameType) HighHalf() (*FrameType, bool) {
	switch f.kind {
	case KindDouble, KindLong:
		return f.half, true
	case KindDoubleHigh, KindLongHigh:
		return f, true
	default:
		return nil, false
	}
}
