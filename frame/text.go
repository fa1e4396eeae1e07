package frame

import (
	"fmt"
	"sort"
	"strings"

	"github.com/speakeasy-api/stackmap/frametype"
	"github.com/speakeasy-api/stackmap/pkg/types"
)

// String prints the frame as "[0:int, 1:double] [java/lang/Object]". High
// halves of wide locals are implied by their low half.
func (f *Frame) String() string {
	var b strings.Builder
	b.WriteByte('[')
	first := true
	for _, slot := range f.Locals() {
		if slot.Type.IsWidePrimitiveHigh() {
			continue
		}
		if !first {
			b.WriteString(", ")
		}
		first = false
		fmt.Fprintf(&b, "%d:%s", slot.Index, slot.Type)
	}
	b.WriteString("] [")
	for i, t := range f.stack {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(t.String())
	}
	b.WriteByte(']')
	return b.String()
}

// Parser reads slot types in the form printed by FrameType.String. Labels of
// uninitialized values are resolved by name, so the same name yields the
// same allocation site across all slots parsed by one Parser.
type Parser struct {
	factory   *types.Factory
	hierarchy frametype.Hierarchy
	labels    map[string]*frametype.Label
}

// NewParser returns a parser interning types in factory. h is only needed
// to parse references with interfaces and may be nil otherwise.
func NewParser(factory *types.Factory, h frametype.Hierarchy) *Parser {
	return &Parser{
		factory:   factory,
		hierarchy: h,
		labels:    make(map[string]*frametype.Label),
	}
}

// Label returns the allocation site for name, creating it on first use.
func (p *Parser) Label(name string) *frametype.Label {
	if l, ok := p.labels[name]; ok {
		return l
	}
	l := frametype.NewLabel(name)
	p.labels[name] = l
	return l
}

var namedSlots = map[string]*frametype.FrameType{
	"boolean":           frametype.Boolean(),
	"byte":              frametype.Byte(),
	"char":              frametype.Char(),
	"short":             frametype.Short(),
	"int":               frametype.Int(),
	"float":             frametype.Float(),
	"long":              frametype.Long(),
	"double":            frametype.Double(),
	"null":              frametype.Null(),
	"uninitializedThis": frametype.UninitializedThis(),
	"top":               frametype.OneWord(),
	"oneword":           frametype.OneWord(),
	"twoword":           frametype.TwoWord(),
}

// ParseSlot parses one slot type. Accepted forms are the primitive names,
// "top", "null", "uninitializedThis", "uninitialized <label> <class>",
// type descriptors ("I", "Lp/A;", "[J"), internal class names
// ("java/lang/Object") and references with interfaces
// ("java/lang/Object{java/lang/Runnable,java/io/Serializable}").
func (p *Parser) ParseSlot(s string) (*frametype.FrameType, error) {
	s = strings.TrimSpace(s)
	if t, ok := namedSlots[s]; ok {
		return t, nil
	}
	if rest, ok := strings.CutPrefix(s, "uninitialized "); ok {
		label, class, ok := strings.Cut(strings.TrimSpace(rest), " ")
		if !ok || label == "" {
			return nil, fmt.Errorf("uninitialized slot %q: expected label and class", s)
		}
		t, err := p.parseReference(strings.TrimSpace(class))
		if err != nil {
			return nil, fmt.Errorf("uninitialized slot %q: %w", s, err)
		}
		return frametype.UninitializedNew(p.Label(label), t), nil
	}
	if open := strings.IndexByte(s, '{'); open >= 0 {
		return p.parseElement(s, open)
	}
	if len(s) == 1 {
		if prim, ok := frametype.Primitive(s); ok {
			return prim, nil
		}
	}
	t, err := p.parseReference(s)
	if err != nil {
		return nil, err
	}
	return frametype.InitializedNonNullReference(t), nil
}

func (p *Parser) parseElement(s string, open int) (*frametype.FrameType, error) {
	if !strings.HasSuffix(s, "}") {
		return nil, fmt.Errorf("slot %q: unterminated interface set", s)
	}
	if p.hierarchy == nil {
		return nil, fmt.Errorf("slot %q: interfaces require a class hierarchy", s)
	}
	base, err := p.parseReference(s[:open])
	if err != nil {
		return nil, err
	}
	var interfaces []*types.Type
	if inner := s[open+1 : len(s)-1]; inner != "" {
		for _, name := range strings.Split(inner, ",") {
			itf, err := p.parseReference(strings.TrimSpace(name))
			if err != nil {
				return nil, err
			}
			interfaces = append(interfaces, itf)
		}
	}
	return frametype.InitializedNonNullReferenceWithInterfaces(types.NewElement(base, interfaces...), p.hierarchy), nil
}

func (p *Parser) parseReference(s string) (*types.Type, error) {
	var (
		t   *types.Type
		err error
	)
	switch {
	case s == "":
		return nil, fmt.Errorf("empty type")
	case strings.HasPrefix(s, "[") || (strings.HasPrefix(s, "L") && strings.HasSuffix(s, ";")):
		t, err = p.factory.Parse(s)
	default:
		t, err = p.factory.FromInternalName(s)
	}
	if err != nil {
		return nil, err
	}
	if !t.IsReference() {
		return nil, fmt.Errorf("%s is not a reference type", s)
	}
	return t, nil
}

// ParseFrame builds a frame from slot strings: locals by index and the stack
// bottom first.
func (p *Parser) ParseFrame(locals map[int]string, stack []string) (*Frame, error) {
	indices := make([]int, 0, len(locals))
	for i := range locals {
		if !localInRange(i, 1) {
			return nil, fmt.Errorf("local %d: index out of range [0, %d)", i, MaxLocals)
		}
		indices = append(indices, i)
	}
	sort.Ints(indices)

	b := NewBuilder()
	for _, i := range indices {
		t, err := p.ParseSlot(locals[i])
		if err != nil {
			return nil, fmt.Errorf("local %d: %w", i, err)
		}
		if t.IsTwoWord() || t.IsWidePrimitiveHigh() {
			return nil, fmt.Errorf("local %d: %s cannot be stored", i, t)
		}
		if !localInRange(i, t.Width()) {
			return nil, fmt.Errorf("local %d: %s does not fit below %d", i, t, MaxLocals)
		}
		if _, taken := locals[i+1]; taken && t.IsWide() {
			return nil, fmt.Errorf("local %d: %s overlaps local %d", i, t, i+1)
		}
		b.Store(i, t)
	}
	for i, s := range stack {
		t, err := p.ParseSlot(s)
		if err != nil {
			return nil, fmt.Errorf("stack %d: %w", i, err)
		}
		if !t.IsPrecise() {
			return nil, fmt.Errorf("stack %d: %s cannot be pushed", i, t)
		}
		b.Push(t)
	}
	return b.Build(), nil
}
