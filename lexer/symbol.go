// Package lexer implements the byte-level tokenizer over a seekable byte
// stream: a 16 KiB sliding window, PDF-specific whitespace/delimiter
// handling, string/hex-string/name/number/keyword recognition, and
// raw-byte stream extraction. The sliding window lets the parser visit
// object bodies out of file order - following /Prev chains, expanding
// object streams - without holding the whole document in memory.
package lexer

// Symbol names the kind of token just scanned.
type Symbol uint8

const (
	None Symbol = iota
	Eof

	Name
	Integer
	UInteger
	Real
	String         // literal string, e.g. (hello)
	HexString      // hex string, e.g. <4A4B>
	UnicodeString  // literal string whose body begins with a UTF-16 BOM
	UnicodeHexString
	Boolean
	Null

	R // the indirect-reference keyword "R"
	Obj
	EndObj
	BeginStream
	EndStream
	XRef
	Trailer
	StartXRef

	BeginArray
	EndArray
	BeginDictionary
	EndDictionary

	Comment
	Keyword // any other bare keyword (content-stream operators, etc.)
)

func (s Symbol) String() string {
	switch s {
	case None:
		return "None"
	case Eof:
		return "Eof"
	case Name:
		return "Name"
	case Integer:
		return "Integer"
	case UInteger:
		return "UInteger"
	case Real:
		return "Real"
	case String:
		return "String"
	case HexString:
		return "HexString"
	case UnicodeString:
		return "UnicodeString"
	case UnicodeHexString:
		return "UnicodeHexString"
	case Boolean:
		return "Boolean"
	case Null:
		return "Null"
	case R:
		return "R"
	case Obj:
		return "Obj"
	case EndObj:
		return "EndObj"
	case BeginStream:
		return "BeginStream"
	case EndStream:
		return "EndStream"
	case XRef:
		return "XRef"
	case Trailer:
		return "Trailer"
	case StartXRef:
		return "StartXRef"
	case BeginArray:
		return "BeginArray"
	case EndArray:
		return "EndArray"
	case BeginDictionary:
		return "BeginDictionary"
	case EndDictionary:
		return "EndDictionary"
	case Comment:
		return "Comment"
	case Keyword:
		return "Keyword"
	default:
		return "<invalid symbol>"
	}
}

// keywordSymbols maps recognized bare keywords to their specific Symbol.
// Anything else scans as Keyword.
var keywordSymbols = map[string]Symbol{
	"R":         R,
	"obj":       Obj,
	"endobj":    EndObj,
	"stream":    BeginStream,
	"endstream": EndStream,
	"xref":      XRef,
	"trailer":   Trailer,
	"startxref": StartXRef,
	"true":      Boolean,
	"false":     Boolean,
	"null":      Null,
}
