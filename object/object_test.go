package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDictInsertionOrderSurvivesRoundtrip(t *testing.T) {
	d := NewDict()
	d.Set("Type", Name("Page"))
	d.Set("Parent", NewReference(ObjectID{Number: 3, Generation: 0}))
	d.Set("MediaBox", Array{Integer(0), Integer(0), Integer(612), Integer(792)})

	assert.Equal(t, []Name{"Type", "Parent", "MediaBox"}, d.Keys())
	assert.Equal(t, "<</Type /Page/Parent 3 0 R/MediaBox [0 0 612 792]>>", d.PDFString())
}

func TestDictSetIfAbsentFirstInsertionWins(t *testing.T) {
	d := NewDict()
	d.SetIfAbsent("Count", Integer(1))
	d.SetIfAbsent("Count", Integer(2))
	assert.Equal(t, Integer(1), d.Get("Count"))
}

func TestDictSetUpdatesInPlaceWithoutReordering(t *testing.T) {
	d := NewDict()
	d.Set("A", Integer(1))
	d.Set("B", Integer(2))
	d.Set("A", Integer(99))
	assert.Equal(t, []Name{"A", "B"}, d.Keys())
	assert.Equal(t, Integer(99), d.Get("A"))
}

func TestDictDeleteRemovesKeyAndOrderSlot(t *testing.T) {
	d := NewDict()
	d.Set("A", Integer(1))
	d.Set("B", Integer(2))
	d.Set("C", Integer(3))
	d.Delete("B")
	assert.Equal(t, []Name{"A", "C"}, d.Keys())
	assert.False(t, d.Contains("B"))
}

func TestDictTypedAccessorsDefaultOnAbsentOrWrongType(t *testing.T) {
	d := NewDict()
	d.Set("N", Integer(42))
	d.Set("Wrong", Name("not-a-number"))

	tests := []struct {
		name string
		got  int
		want int
	}{
		{"present integer", d.GetInteger("N"), 42},
		{"absent key", d.GetInteger("Missing"), 0},
		{"wrong type", d.GetInteger("Wrong"), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}

	assert.Nil(t, d.GetDictionary("Missing"))
	assert.Nil(t, d.GetArray("Missing"))
}

func TestDictGetRectangleRequiresFourElements(t *testing.T) {
	d := NewDict()
	d.Set("Box", Array{Real(0), Real(0), Real(612.5), Real(792)})
	r := d.GetRectangle("Box")
	assert.Equal(t, Rectangle{Llx: 0, Lly: 0, Urx: 612.5, Ury: 792}, r)

	d.Set("Short", Array{Integer(1), Integer(2)})
	assert.Equal(t, Rectangle{}, d.GetRectangle("Short"))
}

func TestDictCloneIsDeep(t *testing.T) {
	d := NewDict()
	inner := NewDict()
	inner.Set("X", Integer(1))
	d.Set("Inner", inner)

	clone := d.Clone().(*Dict)
	clone.GetDictionary("Inner").Set("X", Integer(99))

	assert.Equal(t, Integer(1), d.GetDictionary("Inner").Get("X"))
	assert.Equal(t, Integer(99), clone.GetDictionary("Inner").Get("X"))
}

func TestObjectIDOrdering(t *testing.T) {
	tests := []struct {
		name string
		a, b ObjectID
		less bool
	}{
		{"lower number first", ObjectID{Number: 1, Generation: 0}, ObjectID{Number: 2, Generation: 0}, true},
		{"higher number not less", ObjectID{Number: 5, Generation: 0}, ObjectID{Number: 2, Generation: 0}, false},
		{"same number higher generation first", ObjectID{Number: 1, Generation: 2}, ObjectID{Number: 1, Generation: 0}, true},
		{"same number lower generation not less", ObjectID{Number: 1, Generation: 0}, ObjectID{Number: 1, Generation: 2}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.less, tt.a.Less(tt.b))
		})
	}
}

func TestNamePDFStringPadsEmptyName(t *testing.T) {
	assert.Equal(t, "/Page", Name("Page").PDFString())
	assert.Equal(t, "/ ", Name("").PDFString())
}

func TestStringDetectEncodingFromBOM(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want Encoding
	}{
		{"no BOM", []byte("hello"), RawEncoding},
		{"empty", []byte{}, RawEncoding},
		{"UTF-16BE BOM", []byte{0xFE, 0xFF, 0x00, 0x41}, UTF16BE},
		{"UTF-16LE BOM", []byte{0xFF, 0xFE, 0x41, 0x00}, UTF16LE},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectEncoding(tt.raw))
		})
	}
}

func TestStringTextDecodesUTF16BE(t *testing.T) {
	raw := append([]byte{0xFE, 0xFF}, []byte{0x00, 0x41, 0x00, 0x42}...)
	s := NewString(raw)
	txt, err := s.Text()
	assert.NoError(t, err)
	assert.Equal(t, "AB", txt)
}

func TestStringEmptyUnicodeStringAfterBOM(t *testing.T) {
	s := NewString([]byte{0xFE, 0xFF})
	txt, err := s.Text()
	assert.NoError(t, err)
	assert.Equal(t, "", txt)
}

func TestStringPDFStringEscapesSpecialCharacters(t *testing.T) {
	s := NewString([]byte(`a(b)c\d`))
	assert.Equal(t, `(a\(b\)c\\d)`, s.PDFString())
}

func TestHexStringPreservesSourceCase(t *testing.T) {
	upper := NewHexString([]byte{0xAB, 0xCD}, true)
	lower := NewHexString([]byte{0xAB, 0xCD}, false)
	assert.Equal(t, "<ABCD>", upper.PDFString())
	assert.Equal(t, "<abcd>", lower.PDFString())
}

func TestHexStringCloneIsIndependent(t *testing.T) {
	h := NewHexString([]byte{0x01, 0x02}, true)
	clone := h.Clone().(HexString)
	clone.Raw[0] = 0xFF
	assert.Equal(t, byte(0x01), h.Raw[0])
}

func TestRealPDFStringUsesFixedPrecision(t *testing.T) {
	r := Real(0.1)
	assert.Equal(t, "0.100000000000", r.PDFString())
}

func TestIntegerAndUIntegerStringers(t *testing.T) {
	assert.Equal(t, "-17", Integer(-17).String())
	assert.Equal(t, "4294967295", UInteger(4294967295).String())
}

func TestArrayPDFStringRendersNullForNilElements(t *testing.T) {
	a := Array{Integer(1), nil, Name("x")}
	assert.Equal(t, "[1 null /x]", a.PDFString())
}

func TestArrayCloneDoesNotAliasInnerValues(t *testing.T) {
	inner := NewDict()
	inner.Set("X", Integer(1))
	a := Array{inner}
	clone := a.Clone().(Array)
	clone[0].(*Dict).Set("X", Integer(2))
	assert.Equal(t, Integer(1), inner.Get("X"))
}

type stubResolver struct {
	bound map[ObjectID]Object
}

func (s stubResolver) Resolve(ref Reference) (Object, error) {
	if v, ok := s.bound[ref.ID]; ok {
		return v, nil
	}
	return Null{}, nil
}

func TestResolveReturnsDirectValueUnchanged(t *testing.T) {
	r := stubResolver{bound: map[ObjectID]Object{}}
	got, err := Resolve(r, Integer(7))
	assert.NoError(t, err)
	assert.Equal(t, Integer(7), got)
}

func TestResolveFollowsASingleReferenceHop(t *testing.T) {
	id := ObjectID{Number: 4, Generation: 0}
	r := stubResolver{bound: map[ObjectID]Object{id: Integer(99)}}
	got, err := Resolve(r, NewReference(id))
	assert.NoError(t, err)
	assert.Equal(t, Integer(99), got)
}

func TestReferenceInObjectStreamReportsCompressedMembers(t *testing.T) {
	top := NewReference(ObjectID{Number: 1, Generation: 0})
	assert.False(t, top.InObjectStream())

	streamID := ObjectID{Number: 9, Generation: 0}
	compressed := Reference{ID: ObjectID{Number: 2, Generation: 0}, ContainingStreamID: &streamID, ContainingStreamIndex: 3}
	assert.True(t, compressed.InObjectStream())
}

func TestNewDeadObjectFactoryCountsAcrossCalls(t *testing.T) {
	factory := NewDeadObjectFactory()
	first := factory()
	second := factory()
	assert.Equal(t, Integer(1), first.Get("DeadObjectCount"))
	assert.Equal(t, Integer(2), second.Get("DeadObjectCount"))
}

func TestStreamDecodedCacheRoundtrip(t *testing.T) {
	s := NewStream(NewDict(), []byte("raw"))
	_, ok := s.Decoded()
	assert.False(t, ok)

	s.SetDecoded([]byte("decoded"))
	got, ok := s.Decoded()
	assert.True(t, ok)
	assert.Equal(t, "decoded", string(got))

	s.InvalidateDecoded()
	_, ok = s.Decoded()
	assert.False(t, ok)
}

func TestStreamCloneCopiesContentIndependently(t *testing.T) {
	s := NewStream(NewDict(), []byte("abc"))
	clone := s.Clone().(*Stream)
	clone.Content[0] = 'X'
	assert.Equal(t, byte('a'), s.Content[0])
}
