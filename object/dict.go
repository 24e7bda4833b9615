package object

import "strings"

// Dict is an ordered mapping from Name to Object. Iteration order follows
// insertion order: tests and signatures depend on it surviving
// parse -> serialize -> parse. Unlike a plain Go map, a
// Dict keeps its keys in a slice alongside an index for O(1) lookup.
type Dict struct {
	keys   []Name
	values map[Name]Object
}

// NewDict returns an empty, ready-to-use Dict.
func NewDict() *Dict {
	return &Dict{values: make(map[Name]Object)}
}

// Len returns the number of entries.
func (d *Dict) Len() int {
	if d == nil {
		return 0
	}
	return len(d.keys)
}

// Contains reports whether name is present.
func (d *Dict) Contains(name Name) bool {
	if d == nil {
		return false
	}
	_, ok := d.values[name]
	return ok
}

// Get returns the value for name, or nil if absent.
func (d *Dict) Get(name Name) Object {
	if d == nil {
		return nil
	}
	return d.values[name]
}

// Set inserts or updates name -> value. Setting an existing key updates its
// value in place without moving its position;
// setting a new key appends it at the end. Setting a Null value behaves
// like setting any other value - an explicit null entry is distinct from an
// absent one at this layer; higher-level accessors treat them the same
// ("equivalent to omitting the entry entirely").
func (d *Dict) Set(name Name, value Object) {
	if d.values == nil {
		d.values = make(map[Name]Object)
	}
	if _, ok := d.values[name]; !ok {
		d.keys = append(d.keys, name)
	}
	d.values[name] = value
}

// SetIfAbsent inserts name -> value only if name is not already present,
// implementing the "first insertion wins" rule for duplicate keys
// encountered while parsing a single dictionary.
func (d *Dict) SetIfAbsent(name Name, value Object) {
	if d.Contains(name) {
		return
	}
	d.Set(name, value)
}

// Delete removes name, if present.
func (d *Dict) Delete(name Name) {
	if d == nil || !d.Contains(name) {
		return
	}
	delete(d.values, name)
	for i, k := range d.keys {
		if k == name {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order. The returned slice must not be
// mutated by the caller.
func (d *Dict) Keys() []Name {
	if d == nil {
		return nil
	}
	return d.keys
}

// --- typed accessors ---
// Integer-style accessors return a zero/default value when the key is
// absent or of the wrong type. Dictionary-style accessors return nil
// instead, matching the split between the two accessor families.

// GetInteger returns the integer value of name, or 0 if absent or not an
// Integer/UInteger.
func (d *Dict) GetInteger(name Name) int {
	switch v := d.Get(name).(type) {
	case Integer:
		return int(v)
	case UInteger:
		return int(v)
	default:
		return 0
	}
}

// GetReal returns the numeric value of name as float64, or 0 if absent.
func (d *Dict) GetReal(name Name) float64 {
	switch v := d.Get(name).(type) {
	case Real:
		return float64(v)
	case Integer:
		return float64(v)
	case UInteger:
		return float64(v)
	default:
		return 0
	}
}

// GetName returns the Name value of name, or "" if absent or not a Name.
func (d *Dict) GetName(name Name) Name {
	if v, ok := d.Get(name).(Name); ok {
		return v
	}
	return ""
}

// GetString returns the textual content of name, decoding String/HexString
// using their encoding hint. Returns "" if absent or of the wrong type.
func (d *Dict) GetString(name Name) string {
	switch v := d.Get(name).(type) {
	case String:
		s, _ := v.Text()
		return s
	case HexString:
		s, _ := v.Text()
		return s
	default:
		return ""
	}
}

// GetDictionary returns name as a *Dict, or nil if absent or not a Dict.
// Unlike GetInteger, this returns nil rather than an empty Dict, matching
// the "dictionary-style: null" accessor contract.
func (d *Dict) GetDictionary(name Name) *Dict {
	switch v := d.Get(name).(type) {
	case *Dict:
		return v
	case *Stream:
		return v.Dict
	default:
		return nil
	}
}

// GetArray returns name as an Array, or nil if absent or not an Array.
func (d *Dict) GetArray(name Name) Array {
	if v, ok := d.Get(name).(Array); ok {
		return v
	}
	return nil
}

// GetReference returns name as a Reference and true, or the zero Reference
// and false if absent or not a Reference.
func (d *Dict) GetReference(name Name) (Reference, bool) {
	v, ok := d.Get(name).(Reference)
	return v, ok
}

// Rectangle is the PDF rectangle shape: [llx lly urx ury].
type Rectangle struct{ Llx, Lly, Urx, Ury float64 }

// GetRectangle returns name decoded as a four-number array, or the zero
// Rectangle if absent or malformed.
func (d *Dict) GetRectangle(name Name) Rectangle {
	arr := d.GetArray(name)
	if len(arr) != 4 {
		return Rectangle{}
	}
	num := func(o Object) float64 {
		switch v := o.(type) {
		case Real:
			return float64(v)
		case Integer:
			return float64(v)
		case UInteger:
			return float64(v)
		default:
			return 0
		}
	}
	return Rectangle{Llx: num(arr[0]), Lly: num(arr[1]), Urx: num(arr[2]), Ury: num(arr[3])}
}

func (d *Dict) String() string { return d.PDFString() }

// PDFString writes entries in insertion order.
func (d *Dict) PDFString() string {
	var b strings.Builder
	b.WriteString("<<")
	for _, k := range d.Keys() {
		v := d.values[k]
		if v == nil {
			b.WriteString(k.PDFString())
			b.WriteString(" null")
			continue
		}
		b.WriteString(k.PDFString())
		b.WriteByte(' ')
		b.WriteString(v.PDFString())
	}
	b.WriteString(">>")
	return b.String()
}

func (d *Dict) Clone() Object {
	if d == nil {
		return (*Dict)(nil)
	}
	out := NewDict()
	for _, k := range d.keys {
		v := d.values[k]
		if v != nil {
			v = v.Clone()
		}
		out.Set(k, v)
	}
	return out
}
