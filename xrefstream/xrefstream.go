package xrefstream

import (
	"bytes"
	"compress/zlib"
	"io"

	"github.com/benoitkugler/pdfcore/errs"
	"github.com/benoitkugler/pdfcore/filter"
	"github.com/benoitkugler/pdfcore/object"
)

// Decode reads a cross-reference stream's dictionary and content; already-
// unfiltered content is NOT expected here. s's /Filter and /DecodeParms
// are applied internally via filter.TryUnfilter, since cross-reference
// streams are read before the rest of the document and must never be
// encrypted.
func Decode(s *object.Stream) (entries []Entry, prev int64, size int, err error) {
	size = s.Dict.GetInteger("Size")
	if size == 0 {
		return nil, 0, 0, errs.New(errs.MalformedInput, "xrefstream.Decode", `cross-reference stream missing /Size`)
	}

	w, err := ParseWidth(s.Dict.GetArray("W"))
	if err != nil {
		return nil, 0, 0, err
	}
	index, err := ParseIndex(s.Dict.GetArray("Index"), size)
	if err != nil {
		return nil, 0, 0, err
	}

	decoded, err := filter.TryUnfilter(s)
	if err != nil {
		return nil, 0, 0, err
	}

	entries, err = DecodeEntries(decoded, w, index)
	if err != nil {
		return nil, 0, 0, err
	}

	prevValue := int64(s.Dict.GetInteger("Prev"))

	return entries, prevValue, size, nil
}

// applyPNGUpPredictor frames data as PNG-Up (filter type 2) rows of
// rowSize bytes, each row prefixed by its filter-type byte.
func applyPNGUpPredictor(data []byte, rowSize int) []byte {
	var out bytes.Buffer
	prev := make([]byte, rowSize)
	for off := 0; off < len(data); off += rowSize {
		end := off + rowSize
		if end > len(data) {
			end = len(data)
		}
		row := data[off:end]
		out.WriteByte(2)
		for i, b := range row {
			out.WriteByte(b - prev[i])
		}
		copy(prev, row)
	}
	return out.Bytes()
}

// Encode builds a complete cross-reference stream dictionary and content
// for entries (already updated with correct object-stream field3 values
// by the caller): sort, widen W, PNG-Up predictor, FlateDecode, rebuild
// /Index, update /Size.
func Encode(entries []Entry, prevOffset int64, currentWidth Width, addFreeListHead bool) (*object.Dict, []byte) {
	sortEntriesByObjectNumber(entries)

	w := WidenWidth(entries, currentWidth)

	if addFreeListHead && (len(entries) == 0 || entries[0].ObjectNumber != 0) {
		head := Entry{Type: TypeFree, Field2: 0, Field3: 65535, ObjectNumber: 0}
		entries = append([]Entry{head}, entries...)
	}

	payload, index := EncodeEntries(entries, w)

	rowSize := w.Size()
	predicted := applyPNGUpPredictor(payload, rowSize)

	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, _ = zw.Write(predicted)
	_ = zw.Close()

	d := object.NewDict()
	d.Set("Type", object.Name("XRef"))

	var maxObjNum uint32
	for _, e := range entries {
		if e.ObjectNumber > maxObjNum {
			maxObjNum = e.ObjectNumber
		}
	}
	d.Set("Size", object.Integer(maxObjNum+1))

	wArr := object.Array{object.Integer(w[0]), object.Integer(w[1]), object.Integer(w[2])}
	d.Set("W", wArr)

	idxArr := make(object.Array, 0, len(index)*2)
	for _, run := range index {
		idxArr = append(idxArr, object.Integer(run.First), object.Integer(run.Count))
	}
	d.Set("Index", idxArr)

	if prevOffset > 0 {
		d.Set("Prev", object.Integer(prevOffset))
	}
	d.Set("Filter", object.Name(filter.FlateDecode))
	decodeParms := object.NewDict()
	decodeParms.Set("Predictor", object.Integer(12))
	decodeParms.Set("Columns", object.Integer(rowSize))
	d.Set("DecodeParms", decodeParms)
	d.Set("Length", object.Integer(buf.Len()))

	return d, buf.Bytes()
}

func sortEntriesByObjectNumber(entries []Entry) {
	// insertion sort: cross-reference sections are small relative to a
	// document's page count and are already nearly sorted after a
	// reference-table walk
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j].ObjectNumber < entries[j-1].ObjectNumber; j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}
}

// ObjectStreamHeader is one (object_number, offset_within_decoded_payload)
// pair from an object stream's prolog.
type ObjectStreamHeader struct {
	ObjectNumber uint32
	Offset       int
}

// DecodeObjectStreamHeader parses the "N1 off1 N2 off2 ..." prolog
// described by /N and /First, returning the header pairs and the raw
// payload bytes (starting at /First).
func DecodeObjectStreamHeader(s *object.Stream) ([]ObjectStreamHeader, []byte, error) {
	n := s.Dict.GetInteger("N")
	first := s.Dict.GetInteger("First")
	if n <= 0 || first <= 0 {
		return nil, nil, errs.New(errs.MalformedInput, "xrefstream.DecodeObjectStreamHeader", "object stream missing /N or /First")
	}

	decoded, err := filter.TryUnfilter(s)
	if err != nil {
		return nil, nil, err
	}
	if len(decoded) < first {
		return nil, nil, errs.New(errs.MalformedInput, "xrefstream.DecodeObjectStreamHeader", "object stream /First beyond decoded length")
	}

	prolog := decoded[:first]
	payload := decoded[first:]

	headers := make([]ObjectStreamHeader, 0, n)
	r := bytes.NewReader(prolog)
	for i := 0; i < n; i++ {
		var num, off int64
		if _, err := fscanTwoInts(r, &num, &off); err != nil {
			return nil, nil, errs.Wrap(errs.MalformedInput, "xrefstream.DecodeObjectStreamHeader", err)
		}
		headers = append(headers, ObjectStreamHeader{ObjectNumber: uint32(num), Offset: int(off)})
	}
	return headers, payload, nil
}

func fscanTwoInts(r io.ByteScanner, a, b *int64) (int, error) {
	readInt := func() (int64, error) {
		var v int64
		started := false
		for {
			c, err := r.ReadByte()
			if err != nil {
				if started {
					return v, nil
				}
				return 0, err
			}
			if c == ' ' || c == '\n' || c == '\r' || c == '\t' {
				if started {
					_ = r.UnreadByte()
					return v, nil
				}
				continue
			}
			if c < '0' || c > '9' {
				_ = r.UnreadByte()
				return v, nil
			}
			started = true
			v = v*10 + int64(c-'0')
		}
	}
	v1, err := readInt()
	if err != nil {
		return 0, err
	}
	// skip whitespace between the two numbers
	for {
		c, err := r.ReadByte()
		if err != nil {
			break
		}
		if c != ' ' && c != '\n' && c != '\r' && c != '\t' {
			_ = r.UnreadByte()
			break
		}
	}
	v2, err := readInt()
	if err != nil {
		return 0, err
	}
	*a, *b = v1, v2
	return 2, nil
}

// EncodeObjectStream builds a fresh object stream's dictionary and content
// from members, whose serialized forms are provided by the caller in
// write order.
func EncodeObjectStream(members []ObjectStreamMember, extends *object.Reference) (*object.Dict, []byte) {
	var prolog bytes.Buffer
	var payload bytes.Buffer
	offset := 0
	for _, m := range members {
		prolog.WriteString(itoa(int(m.ObjectNumber)))
		prolog.WriteByte(' ')
		prolog.WriteString(itoa(offset))
		prolog.WriteByte(' ')
		payload.Write(m.Serialized)
		offset += len(m.Serialized)
	}

	d := object.NewDict()
	d.Set("Type", object.Name("ObjStm"))
	d.Set("N", object.Integer(len(members)))
	d.Set("First", object.Integer(prolog.Len()))
	if extends != nil {
		d.Set("Extends", *extends)
	}

	raw := append(prolog.Bytes(), payload.Bytes()...)
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, _ = zw.Write(raw)
	_ = zw.Close()

	d.Set("Filter", object.Name(filter.FlateDecode))
	d.Set("Length", object.Integer(buf.Len()))

	return d, buf.Bytes()
}

// ObjectStreamMember is one object's already-serialized PDFString form,
// ready for concatenation into an object stream's payload.
type ObjectStreamMember struct {
	ObjectNumber uint32
	Serialized   []byte
}

func itoa(v int) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
