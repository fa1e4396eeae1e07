package frame

import (
	"fmt"
	"sort"

	"github.com/fxamacker/cbor/v2"

	"github.com/speakeasy-api/stackmap/frametype"
	"github.com/speakeasy-api/stackmap/pkg/types"
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("frame: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// wireFrame is the CBOR form of a Frame. High halves of wide locals are not
// written; they are restored from the low half.
type wireFrame struct {
	Labels []wireLabel `cbor:"1,keyasint,omitempty"`
	Locals []wireSlot  `cbor:"2,keyasint,omitempty"`
	Stack  []wireSlot  `cbor:"3,keyasint,omitempty"`
}

type wireLabel struct {
	ID   uint64 `cbor:"1,keyasint"`
	Name string `cbor:"2,keyasint,omitempty"`
}

type wireSlot struct {
	Index      int      `cbor:"1,keyasint,omitempty"`
	Kind       uint8    `cbor:"2,keyasint"`
	Type       string   `cbor:"3,keyasint,omitempty"`
	Interfaces []string `cbor:"4,keyasint,omitempty"`
	Label      uint64   `cbor:"5,keyasint,omitempty"`
}

// Marshal serializes a frame to canonical CBOR bytes.
func Marshal(f *Frame) ([]byte, error) {
	w := wireFrame{}
	labels := make(map[*frametype.Label]bool)
	slot := func(index int, t *frametype.FrameType) wireSlot {
		s := wireSlot{Index: index, Kind: uint8(t.Kind())}
		switch t.Kind() {
		case frametype.KindInitializedReference, frametype.KindInitializedReferenceWithInterfaces:
			e, _ := t.InitializedElement()
			s.Type = e.Type.Descriptor()
			for _, itf := range e.Interfaces() {
				s.Interfaces = append(s.Interfaces, itf.Descriptor())
			}
		case frametype.KindUninitializedNew:
			label, _ := t.UninitializedLabel()
			typ, _ := t.UninitializedNewType()
			s.Type = typ.Descriptor()
			s.Label = label.ID()
			if !labels[label] {
				labels[label] = true
				w.Labels = append(w.Labels, wireLabel{ID: label.ID(), Name: label.Name()})
			}
		}
		return s
	}
	for _, l := range f.Locals() {
		if l.Type.IsWidePrimitiveHigh() {
			continue
		}
		w.Locals = append(w.Locals, slot(l.Index, l.Type))
	}
	for _, t := range f.stack {
		w.Stack = append(w.Stack, slot(0, t))
	}
	sort.Slice(w.Labels, func(i, j int) bool { return w.Labels[i].ID < w.Labels[j].ID })
	return cborEncMode.Marshal(&w)
}

// Codec decodes frames, resolving types through a factory and allocation
// labels through a table shared by every frame it decodes. A Codec is not
// safe for concurrent use.
type Codec struct {
	factory   *types.Factory
	hierarchy frametype.Hierarchy
	labels    map[uint64]*frametype.Label
}

// NewCodec returns a codec interning types in factory. h is needed only for
// references with interfaces.
func NewCodec(factory *types.Factory, h frametype.Hierarchy) *Codec {
	return &Codec{
		factory:   factory,
		hierarchy: h,
		labels:    make(map[uint64]*frametype.Label),
	}
}

// Register makes decoded frames refer to the given labels when the encoded
// label ids match, e.g. when decoding in the process that encoded.
func (c *Codec) Register(labels ...*frametype.Label) {
	for _, l := range labels {
		c.labels[l.ID()] = l
	}
}

// Unmarshal deserializes a frame from CBOR bytes.
func (c *Codec) Unmarshal(data []byte) (*Frame, error) {
	var w wireFrame
	if err := cbor.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("frame: unmarshal: %w", err)
	}
	names := make(map[uint64]string, len(w.Labels))
	for _, l := range w.Labels {
		names[l.ID] = l.Name
	}

	b := NewBuilder()
	prev := -1
	for _, s := range w.Locals {
		if s.Index <= prev {
			return nil, fmt.Errorf("frame: unmarshal: local %d out of order", s.Index)
		}
		if !localInRange(s.Index, 1) {
			return nil, fmt.Errorf("frame: unmarshal: local %d out of range [0, %d)", s.Index, MaxLocals)
		}
		t, err := c.decodeSlot(s, names)
		if err != nil {
			return nil, fmt.Errorf("frame: unmarshal local %d: %w", s.Index, err)
		}
		if t.IsTwoWord() || t.IsOneWord() {
			return nil, fmt.Errorf("frame: unmarshal local %d: %s cannot be stored", s.Index, t)
		}
		if !localInRange(s.Index, t.Width()) {
			return nil, fmt.Errorf("frame: unmarshal local %d: %s does not fit below %d", s.Index, t, MaxLocals)
		}
		b.Store(s.Index, t)
		prev = s.Index + t.Width() - 1
	}
	for i, s := range w.Stack {
		t, err := c.decodeSlot(s, names)
		if err != nil {
			return nil, fmt.Errorf("frame: unmarshal stack %d: %w", i, err)
		}
		if !t.IsPrecise() {
			return nil, fmt.Errorf("frame: unmarshal stack %d: %s cannot be pushed", i, t)
		}
		b.Push(t)
	}
	return b.Build(), nil
}

func (c *Codec) decodeSlot(s wireSlot, names map[uint64]string) (*frametype.FrameType, error) {
	kind := frametype.Kind(s.Kind)
	if t, ok := frametype.Singleton(kind); ok {
		if t.IsWidePrimitiveHigh() {
			return nil, fmt.Errorf("unexpected %s", t)
		}
		return t, nil
	}
	switch kind {
	case frametype.KindInitializedReference:
		t, err := c.reference(s.Type)
		if err != nil {
			return nil, err
		}
		return frametype.InitializedNonNullReference(t), nil
	case frametype.KindInitializedReferenceWithInterfaces:
		if c.hierarchy == nil {
			return nil, fmt.Errorf("%s: interfaces require a class hierarchy", s.Type)
		}
		t, err := c.reference(s.Type)
		if err != nil {
			return nil, err
		}
		interfaces := make([]*types.Type, len(s.Interfaces))
		for i, d := range s.Interfaces {
			if interfaces[i], err = c.reference(d); err != nil {
				return nil, err
			}
		}
		return frametype.InitializedNonNullReferenceWithInterfaces(types.NewElement(t, interfaces...), c.hierarchy), nil
	case frametype.KindUninitializedNew:
		t, err := c.reference(s.Type)
		if err != nil {
			return nil, err
		}
		name, ok := names[s.Label]
		if !ok {
			return nil, fmt.Errorf("undeclared label %d", s.Label)
		}
		return frametype.UninitializedNew(c.label(s.Label, name), t), nil
	default:
		return nil, fmt.Errorf("unknown kind %d", s.Kind)
	}
}

func (c *Codec) reference(descriptor string) (*types.Type, error) {
	t, err := c.factory.Parse(descriptor)
	if err != nil {
		return nil, err
	}
	if !t.IsReference() {
		return nil, fmt.Errorf("%s is not a reference type", descriptor)
	}
	return t, nil
}

func (c *Codec) label(id uint64, name string) *frametype.Label {
	if l, ok := c.labels[id]; ok {
		return l
	}
	l := frametype.NewLabel(name)
	c.labels[id] = l
	return l
}
