package object

import (
	"fmt"
	"strconv"
)

// Object is the tagged-sum interface implemented by every PDF value kind:
// Null, Boolean, Integer, UInteger, Real, Name, String, HexString, Array,
// Dict, Stream and Reference. Dynamic dispatch happens through a type
// switch on the concrete type, never through a class hierarchy.
type Object interface {
	fmt.Stringer

	// PDFString renders the object the way it is written to a PDF file.
	PDFString() string

	// Clone returns a deep copy, so mutating one copy never affects another
	// table's view of an imported object.
	Clone() Object
}

// Null represents the PDF null object. A dictionary entry with a Null value
// is equivalent to the entry being absent.
type Null struct{}

func (Null) String() string    { return "null" }
func (Null) PDFString() string { return "null" }
func (Null) Clone() Object     { return Null{} }

// Boolean represents a PDF boolean object.
type Boolean bool

func (b Boolean) String() string    { return strconv.FormatBool(bool(b)) }
func (b Boolean) PDFString() string { return b.String() }
func (b Boolean) Clone() Object     { return b }

// Integer represents a PDF integer object fitting in signed 32 bits.
type Integer int32

func (i Integer) String() string    { return strconv.FormatInt(int64(i), 10) }
func (i Integer) PDFString() string { return i.String() }
func (i Integer) Clone() Object     { return i }

// UInteger represents a PDF integer object that overflows signed 32 bits
// but fits in unsigned 32 bits.
type UInteger uint32

func (u UInteger) String() string    { return strconv.FormatUint(uint64(u), 10) }
func (u UInteger) PDFString() string { return u.String() }
func (u UInteger) Clone() Object     { return u }

// Real represents a PDF real (floating point) object, including integers
// that overflow even unsigned 32 bits.
type Real float64

func (r Real) String() string { return strconv.FormatFloat(float64(r), 'f', -1, 64) }

// PDFString uses a high, fixed precision: 12 digits after the decimal
// point, enough for round-tripping values such as font matrices.
func (r Real) PDFString() string { return strconv.FormatFloat(float64(r), 'f', 12, 64) }
func (r Real) Clone() Object     { return r }

// Name is a `/`-prefixed symbol. The stored value excludes the slash.
type Name string

func (n Name) String() string { return string(n) }

// PDFString writes the leading slash. An empty name writes as a bare slash
// followed by a single space so it remains a distinct token from whatever
// follows it.
func (n Name) PDFString() string {
	if len(n) == 0 {
		return "/ "
	}
	return "/" + string(n)
}
func (n Name) Clone() Object { return n }
