package lexer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newLexer(t *testing.T, src string) *Lexer {
	t.Helper()
	lx, err := New(bytes.NewReader([]byte(src)))
	assert.NoError(t, err)
	return lx
}

func TestScanNextTokenNumbers(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		sym     Symbol
		intVal  int64
		uintVal uint64
		realVal float64
	}{
		{"plain integer", "123", Integer, 123, 0, 0},
		{"negative integer", "-17", Integer, -17, 0, 0},
		{"explicit positive", "+5", Integer, 5, 0, 0},
		{"unsigned overflow of int32", "3000000000", UInteger, 0, 3000000000, 0},
		{"real value", "3.14", Real, 0, 0, 3.14},
		{"real overflowing uint32", "99999999999", Real, 0, 0, 99999999999},
		{"leading decimal point", ".5", Real, 0, 0, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lx := newLexer(t, tt.src)
			sym, err := lx.ScanNextToken()
			assert.NoError(t, err)
			assert.Equal(t, tt.sym, sym)
			switch tt.sym {
			case Integer:
				assert.Equal(t, tt.intVal, lx.IntValue())
			case UInteger:
				assert.Equal(t, tt.uintVal, lx.UIntValue())
			case Real:
				assert.Equal(t, tt.realVal, lx.RealValue())
			}
		})
	}
}

func TestScanNextTokenKeywordsAndDelimiters(t *testing.T) {
	tests := []struct {
		name string
		src  string
		sym  Symbol
	}{
		{"name", "/Type", Name},
		{"begin array", "[", BeginArray},
		{"end array", "]", EndArray},
		{"begin dict", "<<", BeginDictionary},
		{"end dict", ">>", EndDictionary},
		{"obj keyword", "obj", Obj},
		{"endobj keyword", "endobj", EndObj},
		{"stream keyword", "stream", BeginStream},
		{"xref keyword", "xref", XRef},
		{"true", "true", Boolean},
		{"null", "null", Null},
		{"unrecognized keyword", "BT", Keyword},
		{"eof on empty input", "", Eof},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lx := newLexer(t, tt.src)
			sym, err := lx.ScanNextToken()
			assert.NoError(t, err)
			assert.Equal(t, tt.sym, sym)
		})
	}
}

func TestScanNameHandlesHexEscapes(t *testing.T) {
	lx := newLexer(t, "/A#42C")
	sym, err := lx.ScanNextToken()
	assert.NoError(t, err)
	assert.Equal(t, Name, sym)
	assert.Equal(t, "ABC", lx.Token())
}

func TestScanLiteralStringEmptyBody(t *testing.T) {
	lx := newLexer(t, "()")
	sym, err := lx.ScanNextToken()
	assert.NoError(t, err)
	assert.Equal(t, String, sym)
	assert.Equal(t, "", lx.Token())
}

func TestScanLiteralStringNestedParensAndEscapes(t *testing.T) {
	lx := newLexer(t, `(a(nested)\n\)b)`)
	sym, err := lx.ScanNextToken()
	assert.NoError(t, err)
	assert.Equal(t, String, sym)
	assert.Equal(t, "a(nested)\n)b", lx.Token())
}

func TestScanLiteralStringDetectsUnicodeBOM(t *testing.T) {
	lx := newLexer(t, "(\xFE\xFF\x00A)")
	sym, err := lx.ScanNextToken()
	assert.NoError(t, err)
	assert.Equal(t, UnicodeString, sym)
}

func TestScanHexStringOddDigitCountIsZeroPadded(t *testing.T) {
	lx := newLexer(t, "<4E>")
	sym, err := lx.ScanNextToken()
	assert.NoError(t, err)
	assert.Equal(t, HexString, sym)
	assert.Equal(t, []byte{0x4E}, []byte(lx.Token()))

	lx2 := newLexer(t, "<4>")
	sym2, err := lx2.ScanNextToken()
	assert.NoError(t, err)
	assert.Equal(t, HexString, sym2)
	assert.Equal(t, []byte{0x40}, []byte(lx2.Token()))
}

func TestScanHexStringTracksUppercaseDigits(t *testing.T) {
	lx := newLexer(t, "<ABCD>")
	sym, err := lx.ScanNextToken()
	assert.NoError(t, err)
	assert.Equal(t, HexString, sym)
	assert.True(t, lx.HexUpper())

	lx2 := newLexer(t, "<abcd>")
	_, err = lx2.ScanNextToken()
	assert.NoError(t, err)
	assert.False(t, lx2.HexUpper())
}

func TestScanHexStringRejectsInvalidDigit(t *testing.T) {
	lx := newLexer(t, "<4G>")
	_, err := lx.ScanNextToken()
	assert.Error(t, err)
}

func TestStreamDataStartAndReadStream(t *testing.T) {
	src := "stream\r\nHELLO\r\nendstream"
	lx := newLexer(t, src)
	sym, err := lx.ScanNextToken()
	assert.NoError(t, err)
	assert.Equal(t, BeginStream, sym)

	offset, sawCRLF, err := lx.StreamDataStart()
	assert.NoError(t, err)
	assert.True(t, sawCRLF)
	assert.NoError(t, lx.SetPosition(offset))

	data, err := lx.ReadStream(5)
	assert.NoError(t, err)
	assert.Equal(t, "HELLO", string(data))
}

func TestStreamDataStartRejectsBareCR(t *testing.T) {
	lx := newLexer(t, "stream\rHELLO")
	_, err := lx.ScanNextToken()
	assert.NoError(t, err)
	_, _, err = lx.StreamDataStart()
	assert.Error(t, err)
}

func TestDetectBOM(t *testing.T) {
	assert.True(t, DetectBOM([]byte{0xFE, 0xFF}))
	assert.True(t, DetectBOM([]byte{0xFF, 0xFE}))
	assert.False(t, DetectBOM([]byte{0x00, 0x41}))
	assert.False(t, DetectBOM([]byte{0x00}))
}
