// Package frametype implements the verification type lattice used to compute
// and check JVM stack map frames.
//
// A *FrameType describes the value held by one local variable or operand
// stack slot at a program point. Primitive, null, top and uninitialized-this
// values are singletons compared by identity; reference and
// uninitialized-new values are constructed per occurrence.
package frametype

import (
	"sync/atomic"

	"github.com/speakeasy-api/stackmap"
	"github.com/speakeasy-api/stackmap/pkg/types"
)

// Kind tags the variant of a FrameType.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBoolean
	KindByte
	KindChar
	KindFloat
	KindInt
	KindShort
	KindDouble
	KindDoubleHigh
	KindLong
	KindLongHigh
	KindNull
	KindInitializedReference
	KindInitializedReferenceWithInterfaces
	KindUninitializedNew
	KindUninitializedThis
	KindOneWord
	KindTwoWord
)

func (k Kind) String() string {
	switch k {
	case KindBoolean:
		return "boolean"
	case KindByte:
		return "byte"
	case KindChar:
		return "char"
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindShort:
		return "short"
	case KindDouble:
		return "double"
	case KindDoubleHigh:
		return "double-high"
	case KindLong:
		return "long"
	case KindLongHigh:
		return "long-high"
	case KindNull:
		return "null"
	case KindInitializedReference:
		return "reference"
	case KindInitializedReferenceWithInterfaces:
		return "reference-with-interfaces"
	case KindUninitializedNew:
		return "uninitialized"
	case KindUninitializedThis:
		return "uninitializedThis"
	case KindOneWord:
		return "oneword"
	case KindTwoWord:
		return "twoword"
	default:
		return "invalid"
	}
}

// FrameType is a verifier-time type. The zero value is invalid.
type FrameType struct {
	kind Kind

	// primitives
	descriptor string
	opcode     stackmap.Opcode
	half       *FrameType // the other half of a wide primitive

	// initialized references and uninitialized-new
	typ   *types.Type
	label *Label

	// initialized references with interfaces
	element  types.Element
	resolver Hierarchy
	resolved atomic.Pointer[types.Type]
}

var (
	booleanType = &FrameType{kind: KindBoolean, descriptor: "Z", opcode: stackmap.OpInteger}
	byteType    = &FrameType{kind: KindByte, descriptor: "B", opcode: stackmap.OpInteger}
	charType    = &FrameType{kind: KindChar, descriptor: "C", opcode: stackmap.OpInteger}
	floatType   = &FrameType{kind: KindFloat, descriptor: "F", opcode: stackmap.OpFloat}
	intType     = &FrameType{kind: KindInt, descriptor: "I", opcode: stackmap.OpInteger}
	shortType   = &FrameType{kind: KindShort, descriptor: "S", opcode: stackmap.OpInteger}

	doubleType     = &FrameType{kind: KindDouble, descriptor: "D", opcode: stackmap.OpDouble}
	doubleHighType = &FrameType{kind: KindDoubleHigh, descriptor: "D"}
	longType       = &FrameType{kind: KindLong, descriptor: "J", opcode: stackmap.OpLong}
	longHighType   = &FrameType{kind: KindLongHigh, descriptor: "J"}

	nullType              = &FrameType{kind: KindNull, opcode: stackmap.OpNull}
	uninitializedThisType = &FrameType{kind: KindUninitializedThis, opcode: stackmap.OpUninitializedThis}
	oneWordType           = &FrameType{kind: KindOneWord, opcode: stackmap.OpTop}
	twoWordType           = &FrameType{kind: KindTwoWord}
)

func init() {
	doubleType.half, doubleHighType.half = doubleHighType, doubleType
	longType.half, longHighType.half = longHighType, longType
}

func Boolean() *FrameType { return booleanType }
func Byte() *FrameType    { return byteType }
func Char() *FrameType    { return charType }
func Float() *FrameType   { return floatType }
func Int() *FrameType     { return intType }
func Short() *FrameType   { return shortType }

// Double returns the low half of a double, the value used on the stack.
func Double() *FrameType { return doubleType }

// DoubleHigh returns the high half of a double. It only ever occupies the
// local slot following a Double.
func DoubleHigh() *FrameType { return doubleHighType }

func Long() *FrameType     { return longType }
func LongHigh() *FrameType { return longHighType }

func Null() *FrameType              { return nullType }
func UninitializedThis() *FrameType { return uninitializedThisType }

// OneWord returns the top of the single-word lattice.
func OneWord() *FrameType { return oneWordType }

// TwoWord returns the top of the two-word lattice.
func TwoWord() *FrameType { return twoWordType }

// Primitive returns the singleton for a primitive type descriptor.
func Primitive(descriptor string) (*FrameType, bool) {
	switch descriptor {
	case "Z":
		return booleanType, true
	case "B":
		return byteType, true
	case "C":
		return charType, true
	case "F":
		return floatType, true
	case "I":
		return intType, true
	case "S":
		return shortType, true
	case "D":
		return doubleType, true
	case "J":
		return longType, true
	default:
		return nil, false
	}
}

// Singleton returns the shared instance of a variant that carries no
// payload. Reference and uninitialized-new kinds have none.
func Singleton(k Kind) (*FrameType, bool) {
	switch k {
	case KindBoolean:
		return booleanType, true
	case KindByte:
		return byteType, true
	case KindChar:
		return charType, true
	case KindFloat:
		return floatType, true
	case KindInt:
		return intType, true
	case KindShort:
		return shortType, true
	case KindDouble:
		return doubleType, true
	case KindDoubleHigh:
		return doubleHighType, true
	case KindLong:
		return longType, true
	case KindLongHigh:
		return longHighType, true
	case KindNull:
		return nullType, true
	case KindUninitializedThis:
		return uninitializedThisType, true
	case KindOneWord:
		return oneWordType, true
	case KindTwoWord:
		return twoWordType, true
	default:
		return nil, false
	}
}

// Kind returns the variant tag.
func (f *FrameType) Kind() Kind {
	return f.kind
}

// Equal reports whether f and o denote the same lattice element. Singletons
// are equal only to themselves; references without interfaces compare the
// interned type handle; references with interfaces compare their element
// structurally; uninitialized-new compares label and type by identity.
func (f *FrameType) Equal(o *FrameType) bool {
	if f == o {
		return true
	}
	if f == nil || o == nil || f.kind != o.kind {
		return false
	}
	switch f.kind {
	case KindInitializedReference:
		return f.typ == o.typ
	case KindInitializedReferenceWithInterfaces:
		return f.element.Equal(o.element)
	case KindUninitializedNew:
		return f.label == o.label && f.typ == o.typ
	default:
		return false
	}
}

// Key is a comparable value consistent with Equal, usable as a map key.
type Key struct {
	kind    Kind
	typ     *types.Type
	label   *Label
	element string
	self    *FrameType
}

// Key returns the map key of f.
func (f *FrameType) Key() Key {
	switch f.kind {
	case KindInitializedReference:
		return Key{kind: f.kind, typ: f.typ}
	case KindInitializedReferenceWithInterfaces:
		return Key{kind: f.kind, element: f.element.String()}
	case KindUninitializedNew:
		return Key{kind: f.kind, typ: f.typ, label: f.label}
	default:
		return Key{kind: f.kind, self: f}
	}
}

func (f *FrameType) String() string {
	if f == nil {
		return "<nil>"
	}
	switch f.kind {
	case KindInitializedReference:
		return f.typ.InternalName()
	case KindInitializedReferenceWithInterfaces:
		return f.element.String()
	case KindUninitializedNew:
		return "uninitialized " + f.label.String() + " " + f.typ.InternalName()
	case KindOneWord:
		return "top"
	default:
		return f.kind.String()
	}
}
