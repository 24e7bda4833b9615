package object

import "strings"

// Array is an ordered sequence of objects.
type Array []Object

func (a Array) String() string { return a.PDFString() }

func (a Array) PDFString() string {
	parts := make([]string, len(a))
	for i, o := range a {
		if o == nil {
			parts[i] = "null"
			continue
		}
		parts[i] = o.PDFString()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func (a Array) Clone() Object {
	out := make(Array, len(a))
	for i, o := range a {
		if o != nil {
			out[i] = o.Clone()
		}
	}
	return out
}
