package frame

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/speakeasy-api/stackmap/frametype"
)

// Fingerprint returns a deterministic hex digest of the frame. Frames that
// are Equal have the same fingerprint; the digest is computed once per frame.
func (f *Frame) Fingerprint() string {
	if fp := f.fingerprint.Load(); fp != nil {
		return *fp
	}
	w := newCanonWriter()
	w.WriteUint(uint64(len(f.locals)))
	for _, slot := range f.Locals() {
		w.WriteUint(uint64(slot.Index))
		encodeSlot(slot.Type, w)
	}
	w.WriteUint(uint64(len(f.stack)))
	for _, t := range f.stack {
		encodeSlot(t, w)
	}
	sum := sha256.Sum256(w.Bytes())
	hex := fmt.Sprintf("%x", sum[:])
	f.fingerprint.Store(&hex)
	return hex
}

// encodeSlot writes the kind tag followed by whatever makes the value
// distinct under Equal.
func encodeSlot(t *frametype.FrameType, w *canonWriter) {
	w.WriteByte(byte(t.Kind()))
	switch t.Kind() {
	case frametype.KindInitializedReference:
		typ, _ := t.InitializedElement()
		w.WriteString(typ.Type.Descriptor())
	case frametype.KindInitializedReferenceWithInterfaces:
		e, _ := t.InitializedElement()
		w.WriteString(e.Type.Descriptor())
		w.WriteUint(uint64(len(e.Interfaces())))
		for _, itf := range e.Interfaces() {
			w.WriteString(itf.Descriptor())
		}
	case frametype.KindUninitializedNew:
		label, _ := t.UninitializedLabel()
		typ, _ := t.UninitializedNewType()
		w.WriteUint(label.ID())
		w.WriteString(typ.Descriptor())
	}
}

type canonWriter struct {
	buf []byte
}

func newCanonWriter() *canonWriter {
	return &canonWriter{buf: make([]byte, 0, 256)}
}

func (w *canonWriter) WriteByte(b byte) error {
	w.buf = append(w.buf, b)
	return nil
}

// WriteString writes s length-prefixed so adjacent strings cannot collide.
func (w *canonWriter) WriteString(s string) {
	w.WriteUint(uint64(len(s)))
	w.buf = append(w.buf, s...)
}

func (w *canonWriter) WriteUint(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

func (w *canonWriter) Bytes() []byte {
	return w.buf
}
