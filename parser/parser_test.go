package parser

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/benoitkugler/pdfcore/lexer"
	"github.com/benoitkugler/pdfcore/object"
)

func newParser(t *testing.T, src string) *Parser {
	t.Helper()
	lx, err := lexer.New(bytes.NewReader([]byte(src)))
	assert.NoError(t, err)
	p, err := New(lx)
	assert.NoError(t, err)
	return p
}

func TestParseObjectScalars(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want object.Object
	}{
		{"null", "null", object.Null{}},
		{"true", "true", object.Boolean(true)},
		{"false", "false", object.Boolean(false)},
		{"integer", "42", object.Integer(42)},
		{"negative integer", "-42", object.Integer(-42)},
		{"real", "3.14", object.Real(3.14)},
		{"name", "/Type", object.Name("Type")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newParser(t, tt.src)
			got, err := p.ParseObject()
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseObjectDisambiguatesReferenceFromTwoIntegers(t *testing.T) {
	p := newParser(t, "12 0 R")
	got, err := p.ParseObject()
	assert.NoError(t, err)
	ref, ok := got.(object.Reference)
	assert.True(t, ok)
	assert.Equal(t, object.ObjectID{Number: 12, Generation: 0}, ref.ID)
}

func TestParseObjectTwoIntegersWithoutRStayNumeric(t *testing.T) {
	p := newParser(t, "12 0 ]")
	got, err := p.ParseObject()
	assert.NoError(t, err)
	assert.Equal(t, object.Integer(12), got)
}

func TestParseObjectArray(t *testing.T) {
	p := newParser(t, "[1 2 /Three]")
	got, err := p.ParseObject()
	assert.NoError(t, err)
	assert.Equal(t, object.Array{object.Integer(1), object.Integer(2), object.Name("Three")}, got)
}

func TestParseObjectNestedDictionary(t *testing.T) {
	p := newParser(t, "<</Type/Page/Kids[1 0 R 2 0 R]/Count 2>>")
	got, err := p.ParseObject()
	assert.NoError(t, err)
	d, ok := got.(*object.Dict)
	assert.True(t, ok)
	assert.Equal(t, object.Name("Page"), d.GetName("Type"))
	assert.Equal(t, 2, d.GetInteger("Count"))
	kids := d.GetArray("Kids")
	assert.Len(t, kids, 2)
}

func TestParseObjectDictionaryNullValueOmitted(t *testing.T) {
	p := newParser(t, "<</A null/B 1>>")
	got, err := p.ParseObject()
	assert.NoError(t, err)
	d := got.(*object.Dict)
	assert.False(t, d.Contains("A"))
	assert.Equal(t, 1, d.GetInteger("B"))
}

func TestParseObjectDictionaryDuplicateKeyFirstWins(t *testing.T) {
	p := newParser(t, "<</A 1/A 2>>")
	got, err := p.ParseObject()
	assert.NoError(t, err)
	d := got.(*object.Dict)
	assert.Equal(t, 1, d.GetInteger("A"))
}

func TestParseObjectDefinitionReadsFullIndirectObject(t *testing.T) {
	p := newParser(t, "7 0 obj\n(hello)\nendobj")
	id, obj, err := p.ParseObjectDefinition(false)
	assert.NoError(t, err)
	assert.Equal(t, object.ObjectID{Number: 7, Generation: 0}, id)
	s, ok := obj.(object.String)
	assert.True(t, ok)
	assert.Equal(t, "hello", s.String())
}

func TestParseObjectDefinitionHeaderOnlyStopsBeforeBody(t *testing.T) {
	p := newParser(t, "3 0 obj\n<< >>\nendobj")
	id, obj, err := p.ParseObjectDefinition(true)
	assert.NoError(t, err)
	assert.Equal(t, object.ObjectID{Number: 3, Generation: 0}, id)
	assert.Nil(t, obj)
}

func TestParseObjectDefinitionRejectsMissingEndobj(t *testing.T) {
	p := newParser(t, "3 0 obj\n<< >>\n")
	_, _, err := p.ParseObjectDefinition(false)
	assert.Error(t, err)
}

func TestParseObjectStreamWithDirectLength(t *testing.T) {
	p := newParser(t, "3 0 obj\n<</Length 5>>\nstream\nHELLO\nendstream\nendobj")
	_, obj, err := p.ParseObjectDefinition(false)
	assert.NoError(t, err)
	s, ok := obj.(*object.Stream)
	assert.True(t, ok)
	assert.Equal(t, "HELLO", string(s.Content))
}

func TestParseObjectStreamWithIndirectLengthRequiresResolver(t *testing.T) {
	p := newParser(t, "3 0 obj\n<</Length 8 0 R>>\nstream\nHELLO\nendstream\nendobj")
	_, _, err := p.ParseObjectDefinition(false)
	assert.Error(t, err)

	p2 := newParser(t, "3 0 obj\n<</Length 8 0 R>>\nstream\nHELLO\nendstream\nendobj")
	p2.ResolveLength = func(ref object.Reference) (int, error) { return 5, nil }
	_, obj, err := p2.ParseObjectDefinition(false)
	assert.NoError(t, err)
	s := obj.(*object.Stream)
	assert.Equal(t, "HELLO", string(s.Content))
}

func TestPeekSymbolDoesNotConsumeToken(t *testing.T) {
	p := newParser(t, "xref\n0 1\n")
	sym, err := p.PeekSymbol()
	assert.NoError(t, err)
	assert.Equal(t, lexer.XRef, sym)

	assert.NoError(t, p.SkipToken())
	sym2, err := p.PeekSymbol()
	assert.NoError(t, err)
	assert.Equal(t, lexer.Integer, sym2)
}

func TestReadClassicXRefSectionContiguousSubsection(t *testing.T) {
	src := "xref\n1 3\n0000000010 00000 n \r\n0000000020 00000 n \r\n0000000000 00001 f \r\ntrailer\n<</Size 4>>\n"
	p := newParser(t, src)
	sym, err := p.PeekSymbol()
	assert.NoError(t, err)
	assert.Equal(t, lexer.XRef, sym)
	assert.NoError(t, p.SkipToken())

	entries, trailerDict, err := p.ReadClassicXRefSection()
	assert.NoError(t, err)
	assert.Equal(t, 4, trailerDict.GetInteger("Size"))
	assert.Len(t, entries, 3)
	assert.Equal(t, uint32(1), entries[0].ObjectNumber)
	assert.Equal(t, int64(10), entries[0].Field2)
	assert.Equal(t, uint32(2), entries[1].ObjectNumber)
	assert.Equal(t, uint32(3), entries[2].ObjectNumber)
}

func TestReadClassicXRefSectionSkipsZeroOffsetInUseEntry(t *testing.T) {
	src := "xref\n0 2\n0000000000 65535 f \r\n0000000000 00000 n \r\ntrailer\n<</Size 2>>\n"
	p := newParser(t, src)
	assert.NoError(t, p.SkipToken())
	entries, _, err := p.ReadClassicXRefSection()
	assert.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFindStartXRefLocatesLastOffset(t *testing.T) {
	src := "%PDF-1.7\n...\nstartxref\n9\n%%EOF"
	off, err := FindStartXRef(bytes.NewReader([]byte(src)))
	assert.NoError(t, err)
	assert.Equal(t, int64(9), off)
}

func TestReadHeaderVersion(t *testing.T) {
	off, err := ReadHeaderVersion(bytes.NewReader([]byte("%PDF-1.5\n%...\n")))
	assert.NoError(t, err)
	assert.Equal(t, "1.5", off)
}

func TestReadHeaderVersionMissingHeaderErrors(t *testing.T) {
	_, err := ReadHeaderVersion(bytes.NewReader([]byte("not a pdf")))
	assert.Error(t, err)
}
