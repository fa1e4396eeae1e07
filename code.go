package stackmap

import (
	"encoding/binary"
	"fmt"
)

// Code is a single verification_type_info entry of a stack map frame, as
// handed to the class file writer.
type Code struct {
	v  any
	op Opcode
}

// Op returns the verification type tag.
func (c Code) Op() Opcode {
	return c.op
}

// Value returns the payload of the entry: the internal class name for
// OpObject, the allocation label for OpUninitialized, nil otherwise.
func (c Code) Value() any {
	return c.v
}

// OpString returns the string representation of the tag.
func (c Code) OpString() string {
	return c.op.String()
}

func (c Code) String() string {
	switch c.op {
	case OpObject, OpUninitialized:
		return fmt.Sprintf("%s %v", c.op, c.v)
	default:
		return c.op.String()
	}
}

// Opcode is the verification type tag. The values match the item tags of
// the StackMapTable attribute.
type Opcode int

const (
	OpTop Opcode = iota
	OpInteger
	OpFloat
	OpDouble
	OpLong
	OpNull
	OpUninitializedThis
	OpObject
	OpUninitialized
)

func (op Opcode) String() string {
	switch op {
	case OpTop:
		return "top"
	case OpInteger:
		return "integer"
	case OpFloat:
		return "float"
	case OpDouble:
		return "double"
	case OpLong:
		return "long"
	case OpNull:
		return "null"
	case OpUninitializedThis:
		return "uninitializedThis"
	case OpObject:
		return "object"
	case OpUninitialized:
		return "uninitialized"
	default:
		panic(op)
	}
}

// Simple returns the entry for a tag that carries no payload.
func Simple(op Opcode) Code {
	if op == OpObject || op == OpUninitialized {
		panic(fmt.Sprintf("stackmap: %s entry requires a payload", op))
	}
	return Code{op: op}
}

// Object returns the entry for an initialized reference of the given
// internal class name (e.g. "java/lang/String" or "[I").
func Object(internalName string) Code {
	return Code{op: OpObject, v: internalName}
}

// Uninitialized returns the entry for the result of the allocation at label.
func Uninitialized(label any) Code {
	return Code{op: OpUninitialized, v: label}
}

// ConstantPool resolves the payloads of object and uninitialized entries
// while encoding.
type ConstantPool interface {
	ClassIndex(internalName string) uint16
	LabelOffset(label any) (uint16, bool)
}

// AppendTo appends the binary verification_type_info encoding of c to b.
func (c Code) AppendTo(b []byte, pool ConstantPool) ([]byte, error) {
	b = append(b, byte(c.op))
	switch c.op {
	case OpObject:
		name, ok := c.v.(string)
		if !ok || name == "" {
			return nil, fmt.Errorf("object entry without class name: %v", c.v)
		}
		b = binary.BigEndian.AppendUint16(b, pool.ClassIndex(name))
	case OpUninitialized:
		offset, ok := pool.LabelOffset(c.v)
		if !ok {
			return nil, fmt.Errorf("no bytecode offset for allocation label %v", c.v)
		}
		b = binary.BigEndian.AppendUint16(b, offset)
	}
	return b, nil
}
