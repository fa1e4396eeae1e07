// Package types provides interned JVM type handles.
//
// Every *Type is canonical for its descriptor within the Factory that created
// it, so handles from the same factory are compared with ==.
package types

import (
	"fmt"
	"strings"
	"sync"
)

// Descriptors of the types the factory always knows about.
const (
	ObjectDescriptor       = "Ljava/lang/Object;"
	CloneableDescriptor    = "Ljava/lang/Cloneable;"
	SerializableDescriptor = "Ljava/io/Serializable;"

	// NullDescriptor is the sentinel descriptor of the type of the null
	// constant. It is not a valid field descriptor.
	NullDescriptor = "N"
)

// Type is an interned type handle.
type Type struct {
	descriptor string
}

// Descriptor returns the field descriptor, e.g. "I" or "Ljava/lang/String;".
func (t *Type) Descriptor() string {
	return t.descriptor
}

// IsPrimitive reports whether t is one of the eight primitive types.
func (t *Type) IsPrimitive() bool {
	if len(t.descriptor) != 1 {
		return false
	}
	return strings.ContainsRune("ZBCSIFJD", rune(t.descriptor[0]))
}

// IsWide reports whether values of t occupy two slots.
func (t *Type) IsWide() bool {
	return t.descriptor == "J" || t.descriptor == "D"
}

// RequiredRegisters returns the number of local slots a value of t uses.
func (t *Type) RequiredRegisters() int {
	if t.IsWide() {
		return 2
	}
	return 1
}

func (t *Type) IsArray() bool {
	return strings.HasPrefix(t.descriptor, "[")
}

func (t *Type) IsClass() bool {
	return strings.HasPrefix(t.descriptor, "L")
}

// IsReference reports whether t is a class or array type.
func (t *Type) IsReference() bool {
	return t.IsClass() || t.IsArray()
}

// IsNullValue reports whether t is the null sentinel.
func (t *Type) IsNullValue() bool {
	return t.descriptor == NullDescriptor
}

// InternalName returns the name used by the class file format:
// "java/lang/String" for classes and the descriptor itself for arrays.
func (t *Type) InternalName() string {
	if t.IsClass() {
		return t.descriptor[1 : len(t.descriptor)-1]
	}
	return t.descriptor
}

// Dimensions returns the number of array dimensions of t.
func (t *Type) Dimensions() int {
	n := 0
	for n < len(t.descriptor) && t.descriptor[n] == '[' {
		n++
	}
	return n
}

// String returns the Java source name of t, e.g. "int[]" or "java.lang.String".
func (t *Type) String() string {
	return descriptorToJavaName(t.descriptor)
}

func descriptorToJavaName(d string) string {
	dims := 0
	for dims < len(d) && d[dims] == '[' {
		dims++
	}
	base := d[dims:]
	var name string
	switch base {
	case "Z":
		name = "boolean"
	case "B":
		name = "byte"
	case "C":
		name = "char"
	case "S":
		name = "short"
	case "I":
		name = "int"
	case "F":
		name = "float"
	case "J":
		name = "long"
	case "D":
		name = "double"
	case "V":
		name = "void"
	case NullDescriptor:
		name = "null"
	default:
		name = strings.ReplaceAll(strings.TrimSuffix(strings.TrimPrefix(base, "L"), ";"), "/", ".")
	}
	return name + strings.Repeat("[]", dims)
}

// Factory interns type handles.
type Factory struct {
	mu    sync.RWMutex
	types map[string]*Type

	ObjectType       *Type
	CloneableType    *Type
	SerializableType *Type
	NullValueType    *Type
}

// NewFactory creates a factory with the well-known types already interned.
func NewFactory() *Factory {
	f := &Factory{types: make(map[string]*Type, 64)}
	f.ObjectType = f.Type(ObjectDescriptor)
	f.CloneableType = f.Type(CloneableDescriptor)
	f.SerializableType = f.Type(SerializableDescriptor)
	f.NullValueType = f.intern(NullDescriptor)
	return f
}

// Type returns the canonical handle for descriptor. It panics if descriptor
// is malformed; use Parse for untrusted input.
func (f *Factory) Type(descriptor string) *Type {
	t, err := f.Parse(descriptor)
	if err != nil {
		panic(err)
	}
	return t
}

// Parse validates descriptor and returns its canonical handle.
func (f *Factory) Parse(descriptor string) (*Type, error) {
	if descriptor == NullDescriptor {
		return f.NullValueType, nil
	}
	if err := validateDescriptor(descriptor); err != nil {
		return nil, err
	}
	return f.intern(descriptor), nil
}

// FromInternalName returns the handle for a class file internal name.
func (f *Factory) FromInternalName(name string) (*Type, error) {
	if strings.HasPrefix(name, "[") {
		return f.Parse(name)
	}
	return f.Parse("L" + name + ";")
}

// ArrayOf returns the array type with element type t.
func (f *Factory) ArrayOf(t *Type) *Type {
	return f.intern("[" + t.descriptor)
}

// ArrayElement returns the element type of an array type, or nil.
func (f *Factory) ArrayElement(t *Type) *Type {
	if !t.IsArray() {
		return nil
	}
	return f.intern(t.descriptor[1:])
}

func (f *Factory) intern(descriptor string) *Type {
	f.mu.RLock()
	t, ok := f.types[descriptor]
	f.mu.RUnlock()
	if ok {
		return t
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if t, ok := f.types[descriptor]; ok {
		return t
	}
	t = &Type{descriptor: descriptor}
	f.types[descriptor] = t
	return t
}

func validateDescriptor(d string) error {
	base := strings.TrimLeft(d, "[")
	if len(d)-len(base) > 255 {
		return fmt.Errorf("descriptor %q has more than 255 array dimensions", d)
	}
	switch {
	case len(base) == 1 && strings.ContainsRune("ZBCSIFJD", rune(base[0])):
		return nil
	case strings.HasPrefix(base, "L") && strings.HasSuffix(base, ";") && len(base) > 2:
		name := base[1 : len(base)-1]
		if strings.ContainsAny(name, ".;[") {
			return fmt.Errorf("descriptor %q has an invalid class name", d)
		}
		return nil
	default:
		return fmt.Errorf("invalid type descriptor %q", d)
	}
}
