// Package xrefstream implements the binary encoding used by PDF 1.5+
// cross-reference streams and object streams: entry packing/unpacking
// against a configurable field-width triple, PNG-Up predictor framing,
// and a standalone length-suffixed checksum (Checksum) that no other
// package in this module calls.
package xrefstream

import (
	"github.com/benoitkugler/pdfcore/errs"
	"github.com/benoitkugler/pdfcore/object"
)

// EntryType is the first field of a cross-reference stream entry.
type EntryType uint8

const (
	// TypeFree marks a free (unused) entry; field2 is the next free
	// object number, field3 the generation number the next user of this
	// slot must have.
	TypeFree EntryType = 0
	// TypeInUse marks a regular, directly-addressed object; field2 is its
	// byte offset, field3 its generation number.
	TypeInUse EntryType = 1
	// TypeCompressed marks an object embedded in an object stream;
	// field2 is the object stream's object number, field3 the object's
	// index within that stream.
	TypeCompressed EntryType = 2
)

// Entry is one decoded cross-reference stream row.
type Entry struct {
	Type         EntryType
	Field2       int64
	Field3       int64
	ObjectNumber uint32
}

// Width is the W array: byte width of each of the three fields. A zero
// width means the field is absent from the stream and the PDF default
// for that field applies.
type Width [3]int

// Size returns the width of a single packed entry.
func (w Width) Size() int { return w[0] + w[1] + w[2] }

func bufToInt64(buf []byte) int64 {
	var v int64
	for _, b := range buf {
		v = (v << 8) | int64(b)
	}
	return v
}

func int64ToBuf(v int64, width int) []byte {
	buf := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		buf[i] = byte(v)
		v >>= 8
	}
	return buf
}

// IndexRun is one (first object number, count) pair from /Index.
type IndexRun struct {
	First uint32
	Count uint32
}

// DecodeEntries walks decoded (already predictor-postprocessed and
// uncompressed) payload bytes and produces one Entry per object number
// named by index.
func DecodeEntries(payload []byte, w Width, index []IndexRun) ([]Entry, error) {
	entrySize := w.Size()
	if entrySize <= 0 {
		return nil, errs.New(errs.MalformedInput, "xrefstream.DecodeEntries", "zero-width cross-reference stream entry")
	}

	var total uint32
	for _, r := range index {
		total += r.Count
	}
	need := int(total) * entrySize
	if len(payload) < need {
		return nil, errs.Newf(errs.MalformedInput, "xrefstream.DecodeEntries", "corrupted cross-reference stream (%d < %d)", len(payload), need)
	}

	entries := make([]Entry, 0, total)
	j := 0
	for _, run := range index {
		for i := uint32(0); i < run.Count; i++ {
			off := j * entrySize
			row := payload[off : off+entrySize]

			var typ EntryType = TypeInUse
			p := 0
			if w[0] != 0 {
				typ = EntryType(row[0])
				p = w[0]
			}
			field2 := bufToInt64(row[p : p+w[1]])
			p += w[1]
			field3 := bufToInt64(row[p : p+w[2]])

			entries = append(entries, Entry{
				Type:         typ,
				Field2:       field2,
				Field3:       field3,
				ObjectNumber: run.First + i,
			})
			j++
		}
	}
	return entries, nil
}

// ParseIndex reads an /Index array into IndexRun pairs, defaulting to a
// single (0, size) run when /Index is absent, per the PDF spec's stated
// default.
func ParseIndex(arr object.Array, size int) ([]IndexRun, error) {
	if len(arr) == 0 {
		return []IndexRun{{First: 0, Count: uint32(size)}}, nil
	}
	if len(arr)%2 != 0 {
		return nil, errs.New(errs.MalformedInput, "xrefstream.ParseIndex", "corrupted /Index entry")
	}
	out := make([]IndexRun, 0, len(arr)/2)
	asInt := func(o object.Object) (int64, bool) {
		switch v := o.(type) {
		case object.Integer:
			return int64(v), true
		case object.UInteger:
			return int64(v), true
		default:
			return 0, false
		}
	}
	for i := 0; i < len(arr); i += 2 {
		first, ok1 := asInt(arr[i])
		count, ok2 := asInt(arr[i+1])
		if !ok1 || !ok2 {
			return nil, errs.New(errs.MalformedInput, "xrefstream.ParseIndex", "corrupted /Index entry")
		}
		out = append(out, IndexRun{First: uint32(first), Count: uint32(count)})
	}
	return out, nil
}

// ParseWidth reads a /W array of three non-negative integers.
func ParseWidth(arr object.Array) (Width, error) {
	var w Width
	if len(arr) < 3 {
		return w, errs.New(errs.MalformedInput, "xrefstream.ParseWidth", "corrupted /W entry: expecting array of 3 integers")
	}
	for i := 0; i < 3; i++ {
		v, ok := arr[i].(object.Integer)
		if !ok || v < 0 {
			if u, ok2 := arr[i].(object.UInteger); ok2 {
				w[i] = int(u)
				continue
			}
			return w, errs.New(errs.MalformedInput, "xrefstream.ParseWidth", "corrupted /W entry")
		}
		w[i] = int(v)
	}
	return w, nil
}

// widthFor returns the minimum byte width in {1,2,3,4} that can hold
// value, per the encoder's "never narrow" field2-widening rule.
func widthFor(value int64) int {
	switch {
	case value < 1<<8:
		return 1
	case value < 1<<16:
		return 2
	case value < 1<<24:
		return 3
	default:
		return 4
	}
}

// EncodeEntries packs entries (already sorted by ObjectNumber) into raw
// bytes using width w, grouping contiguous object numbers into
// /Index runs.
func EncodeEntries(entries []Entry, w Width) (payload []byte, index []IndexRun) {
	entrySize := w.Size()
	payload = make([]byte, 0, len(entries)*entrySize)

	var runs []IndexRun
	for i, e := range entries {
		if i == 0 || e.ObjectNumber != entries[i-1].ObjectNumber+1 {
			runs = append(runs, IndexRun{First: e.ObjectNumber, Count: 0})
		}
		runs[len(runs)-1].Count++

		if w[0] != 0 {
			payload = append(payload, byte(e.Type))
		}
		payload = append(payload, int64ToBuf(e.Field2, w[1])...)
		payload = append(payload, int64ToBuf(e.Field3, w[2])...)
	}
	return payload, runs
}

// WidenWidth computes the minimal Width that can represent every entry's
// fields without narrowing below current, per the cross-reference stream
// emission algorithm ("widen W[1]... never narrow").
func WidenWidth(entries []Entry, current Width) Width {
	out := current
	if out[0] == 0 {
		out[0] = 1
	}
	var maxPosition int64
	var maxField3 int64
	for _, e := range entries {
		if e.Field2 > maxPosition {
			maxPosition = e.Field2
		}
		if e.Field3 > maxField3 {
			maxField3 = e.Field3
		}
	}
	if need := widthFor(maxPosition); need > out[1] {
		out[1] = need
	}
	if out[1] == 0 {
		out[1] = 1
	}
	if need := widthFor(maxField3); need > out[2] {
		out[2] = need
	}
	if out[2] == 0 {
		out[2] = 1
	}
	return out
}
