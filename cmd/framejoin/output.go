package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"

	"github.com/speakeasy-api/stackmap/frame"
)

const (
	colorBold  = "\x1b[1m"
	colorDim   = "\x1b[2m"
	colorReset = "\x1b[0m"
)

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// tableWriter prints merged frames as aligned slot tables.
type tableWriter struct {
	out   io.Writer
	color bool
}

func newTableWriter(out io.Writer, color bool) *tableWriter {
	return &tableWriter{out: out, color: color}
}

func (w *tableWriter) style(code, s string) string {
	if !w.color {
		return s
	}
	return code + s + colorReset
}

func (w *tableWriter) writeBlock(name string, f *frame.Frame) {
	type row struct{ slot, typ string }
	var rows []row
	for _, s := range f.Locals() {
		if s.Type.IsWidePrimitiveHigh() {
			continue
		}
		rows = append(rows, row{fmt.Sprintf("local %d", s.Index), s.Type.String()})
	}
	for i, t := range f.Stack() {
		rows = append(rows, row{fmt.Sprintf("stack %d", i), t.String()})
	}

	width := runewidth.StringWidth("slot")
	for _, r := range rows {
		if n := runewidth.StringWidth(r.slot); n > width {
			width = n
		}
	}

	fmt.Fprintf(w.out, "%s %s\n", w.style(colorBold, name), w.style(colorDim, f.Fingerprint()[:12]))
	fmt.Fprintf(w.out, "  %s  %s\n", w.style(colorBold, runewidth.FillRight("slot", width)), w.style(colorBold, "type"))
	if len(rows) == 0 {
		fmt.Fprintf(w.out, "  %s  %s\n", runewidth.FillRight("-", width), "(empty)")
	}
	for _, r := range rows {
		fmt.Fprintf(w.out, "  %s  %s\n", runewidth.FillRight(r.slot, width), r.typ)
	}
}
