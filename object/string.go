package object

import (
	"encoding/hex"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// Encoding tags how a String/HexString's bytes should be interpreted,
// determined once at lex time from a leading byte-order mark.
type Encoding uint8

const (
	// RawEncoding means the bytes carry no recognized BOM; they are kept
	// as an opaque byte string.
	RawEncoding Encoding = iota
	// PDFDocEncoding tags a byte string meant to be read with PDFDocEncoding
	// (used by text strings that are not Unicode).
	PDFDocEncoding
	// UTF16BE tags a string beginning with the FE FF byte-order mark.
	UTF16BE
	// UTF16LE tags a string beginning with the FF FE byte-order mark
	// (a legacy-file accommodation; standard PDF text strings are UTF-16BE).
	UTF16LE
)

var (
	bomBE = []byte{0xFE, 0xFF}
	bomLE = []byte{0xFF, 0xFE}

	utf16BEDecoder = unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	utf16LEDecoder = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
)

// DetectEncoding inspects the first bytes of a literal or hex string body
// for a byte-order mark: FE FF -> UTF16BE, FF FE -> UTF16LE,
// otherwise RawEncoding.
func DetectEncoding(raw []byte) Encoding {
	switch {
	case len(raw) >= 2 && raw[0] == bomBE[0] && raw[1] == bomBE[1]:
		return UTF16BE
	case len(raw) >= 2 && raw[0] == bomLE[0] && raw[1] == bomLE[1]:
		return UTF16LE
	default:
		return RawEncoding
	}
}

// String represents a PDF literal string object: a byte string tagged with
// an encoding hint determined from an optional leading BOM.
type String struct {
	Raw      []byte
	Encoding Encoding
}

// NewString builds a String, auto-detecting its Encoding from a leading BOM.
// An empty body yields a zero-length string with RawEncoding.
func NewString(raw []byte) String {
	return String{Raw: raw, Encoding: DetectEncoding(raw)}
}

// Text decodes the string to a Go string using its Encoding hint.
func (s String) Text() (string, error) {
	switch s.Encoding {
	case UTF16BE:
		return utf16BEDecoder.NewDecoder().String(string(s.Raw[2:]))
	case UTF16LE:
		return utf16LEDecoder.NewDecoder().String(string(s.Raw[2:]))
	default:
		return string(s.Raw), nil
	}
}

func (s String) String() string { return string(s.Raw) }

// PDFString escapes the PDF literal-string special characters and wraps the
// result in parentheses.
func (s String) PDFString() string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`, "\r", `\r`)
	return "(" + r.Replace(string(s.Raw)) + ")"
}

func (s String) Clone() Object {
	raw := make([]byte, len(s.Raw))
	copy(raw, s.Raw)
	return String{Raw: raw, Encoding: s.Encoding}
}

// HexString represents a PDF hex string object. Upper tracks whether the
// source used uppercase hex digits, so the writer can reproduce the same
// case on round-trip. A trailing lone digit is
// implicitly zero-padded by the lexer before it reaches here.
type HexString struct {
	Raw      []byte
	Encoding Encoding
	Upper    bool
}

// NewHexString builds a HexString, auto-detecting its Encoding from a
// leading BOM, same rule as NewString.
func NewHexString(raw []byte, upper bool) HexString {
	return HexString{Raw: raw, Encoding: DetectEncoding(raw), Upper: upper}
}

func (h HexString) Text() (string, error) {
	switch h.Encoding {
	case UTF16BE:
		return utf16BEDecoder.NewDecoder().String(string(h.Raw[2:]))
	case UTF16LE:
		return utf16LEDecoder.NewDecoder().String(string(h.Raw[2:]))
	default:
		return string(h.Raw), nil
	}
}

func (h HexString) String() string { return "<" + hex.EncodeToString(h.Raw) + ">" }

// PDFString re-encodes the bytes as hex, matching the source's letter case.
func (h HexString) PDFString() string {
	enc := hex.EncodeToString(h.Raw)
	if h.Upper {
		enc = strings.ToUpper(enc)
	}
	return "<" + enc + ">"
}

func (h HexString) Clone() Object {
	raw := make([]byte, len(h.Raw))
	copy(raw, h.Raw)
	return HexString{Raw: raw, Encoding: h.Encoding, Upper: h.Upper}
}
