// Package writer serializes a document's cross-reference table to a PDF
// byte stream: object bodies in object-number order, then either a
// classic xref section or a cross-reference stream, followed by the
// startxref/%%EOF footer.
package writer

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/benoitkugler/pdfcore/errs"
	"github.com/benoitkugler/pdfcore/object"
	"github.com/benoitkugler/pdfcore/xref"
	"github.com/benoitkugler/pdfcore/xrefstream"
)

// Writer accumulates a PDF byte stream. Its zero value is not usable;
// construct with New.
type Writer struct {
	dst     io.Writer
	written int64
	err     error
}

// New returns a Writer that appends to dst.
func New(dst io.Writer) *Writer {
	return &Writer{dst: dst}
}

func (w *Writer) bytes(b []byte) {
	if w.err != nil {
		return
	}
	n, err := w.dst.Write(b)
	w.written += int64(n)
	if err != nil {
		w.err = err
	}
}

// Written returns the number of bytes written so far.
func (w *Writer) Written() int64 { return w.written }

// WriteHeader emits the "%PDF-M.m" banner plus the conventional binary
// comment line used to signal an 8-bit-clean file to naive transfer
// tools.
func (w *Writer) WriteHeader(version string) {
	w.bytes([]byte("%PDF-" + version + "\n"))
	w.bytes([]byte("%\xe2\xe3\xcf\xd3\n"))
}

// PrepareForSave walks every reference reachable from root so that
// objects depending on other references (in particular streams whose
// content is computed lazily) materialize their byte content before
// positions are assigned. It returns the references in the order they
// should be written.
func PrepareForSave(table *xref.Table, root object.Object) []object.Reference {
	seen := make(map[object.ObjectID]bool)
	var order []object.Reference

	var walk func(o object.Object)
	walk = func(o object.Object) {
		switch v := o.(type) {
		case object.Reference:
			if seen[v.ID] {
				return
			}
			seen[v.ID] = true
			value, err := table.Resolve(v)
			if err != nil {
				return
			}
			order = append(order, v)
			walk(value)
		case *object.Dict:
			for _, k := range v.Keys() {
				walk(v.Get(k))
			}
		case *object.Stream:
			walk(v.Dict)
		case object.Array:
			for _, item := range v {
				walk(item)
			}
		}
	}
	walk(root)

	sort.Slice(order, func(i, j int) bool { return order[i].ID.Less(order[j].ID) })
	return order
}

// WriteObjects writes the "N G obj ... endobj" body for every reference
// in order, recording each one's starting byte offset into positions.
func (w *Writer) WriteObjects(table *xref.Table, order []object.Reference) (positions map[object.ObjectID]int64, err error) {
	positions = make(map[object.ObjectID]int64, len(order))
	for _, ref := range order {
		value, rErr := table.Resolve(ref)
		if rErr != nil {
			return nil, rErr
		}
		positions[ref.ID] = w.written

		w.bytes([]byte(fmt.Sprintf("%d %d obj\n", ref.ID.Number, ref.ID.Generation)))
		if s, ok := value.(*object.Stream); ok {
			w.bytes([]byte(s.Dict.PDFString()))
			w.bytes([]byte("\nstream\n"))
			w.bytes(s.Content)
			w.bytes([]byte("\nendstream"))
		} else {
			w.bytes([]byte(value.PDFString()))
		}
		w.bytes([]byte("\nendobj\n"))
	}
	if w.err != nil {
		return nil, errs.Wrap(errs.IOFailure, "Writer.WriteObjects", w.err)
	}
	return positions, nil
}

// WriteClassicXRef emits a classic "xref" section grouping object numbers
// into contiguous subsections, followed by the trailer dictionary and the
// startxref/%%EOF footer. It is the writer's fallback path when the
// document does not use cross-reference streams.
func (w *Writer) WriteClassicXRef(order []object.Reference, positions map[object.ObjectID]int64, trailerDict *object.Dict) error {
	xrefStart := w.written

	type line struct {
		num    uint32
		offset int64
		gen    uint16
		free   bool
	}
	lines := make([]line, 0, len(order)+1)
	hasObjectOne := false
	for _, ref := range order {
		if ref.ID.Number == 1 {
			hasObjectOne = true
		}
		lines = append(lines, line{num: ref.ID.Number, offset: positions[ref.ID], gen: ref.ID.Generation})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].num < lines[j].num })

	if hasObjectOne {
		lines = append([]line{{num: 0, offset: 0, gen: 65535, free: true}}, lines...)
	}

	w.bytes([]byte("xref\n"))

	i := 0
	for i < len(lines) {
		j := i
		for j+1 < len(lines) && lines[j+1].num == lines[j].num+1 {
			j++
		}
		w.bytes([]byte(fmt.Sprintf("%d %d\n", lines[i].num, j-i+1)))
		for k := i; k <= j; k++ {
			l := lines[k]
			tag := byte('n')
			if l.free {
				tag = 'f'
			}
			w.bytes([]byte(fmt.Sprintf("%010d %05d %c\r\n", l.offset, l.gen, tag)))
		}
		i = j + 1
	}

	w.bytes([]byte("trailer\n"))
	w.bytes([]byte(trailerDict.PDFString()))
	w.bytes([]byte("\n"))

	w.bytes([]byte(fmt.Sprintf("startxref\n%d\n%%%%EOF\n", xrefStart)))

	if w.err != nil {
		return errs.Wrap(errs.IOFailure, "Writer.WriteClassicXRef", w.err)
	}
	return nil
}

// WriteCrossReferenceStream emits a PDF 1.5+ cross-reference stream
// instead of a classic section, delegating the binary encoding to the
// xrefstream package.
func (w *Writer) WriteCrossReferenceStream(order []object.Reference, positions map[object.ObjectID]int64, trailerDict *object.Dict, streamObjectNumber uint32, currentWidth xrefstream.Width) error {
	entries := make([]xrefstream.Entry, 0, len(order)+1)
	for _, ref := range order {
		entries = append(entries, xrefstream.Entry{
			Type:         xrefstream.TypeInUse,
			Field2:       positions[ref.ID],
			Field3:       int64(ref.ID.Generation),
			ObjectNumber: ref.ID.Number,
		})
	}

	streamDict, payload := xrefstream.Encode(entries, int64(trailerDict.GetInteger("Prev")), currentWidth, true)
	for _, k := range trailerDict.Keys() {
		if k == "Prev" {
			continue
		}
		streamDict.SetIfAbsent(k, trailerDict.Get(k))
	}

	xrefStart := w.written
	w.bytes([]byte(fmt.Sprintf("%d 0 obj\n", streamObjectNumber)))
	w.bytes([]byte(streamDict.PDFString()))
	w.bytes([]byte("\nstream\n"))
	w.bytes(payload)
	w.bytes([]byte("\nendstream\nendobj\n"))
	w.bytes([]byte(fmt.Sprintf("startxref\n%d\n%%%%EOF\n", xrefStart)))

	if w.err != nil {
		return errs.Wrap(errs.IOFailure, "Writer.WriteCrossReferenceStream", w.err)
	}
	return nil
}

// Bytes is a convenience entry point building a complete byte stream in
// memory for table's currently-bound objects, useful in tests that do not
// need to stream to a file.
func Bytes(version string, table *xref.Table, root object.Object, trailerDict *object.Dict, useXRefStream bool, streamObjectNumber uint32) ([]byte, error) {
	var buf bytes.Buffer
	w := New(&buf)
	w.WriteHeader(version)

	order := PrepareForSave(table, root)
	positions, err := w.WriteObjects(table, order)
	if err != nil {
		return nil, err
	}

	trailerDict.Set("Size", object.Integer(table.MaxObjectNumber()+1))

	if useXRefStream {
		if err := w.WriteCrossReferenceStream(order, positions, trailerDict, streamObjectNumber, xrefstream.Width{1, 4, 2}); err != nil {
			return nil, err
		}
	} else {
		if err := w.WriteClassicXRef(order, positions, trailerDict); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
