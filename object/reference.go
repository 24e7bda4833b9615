package object

import "fmt"

// Reference is an indirect reference to an object living in some
// cross-reference table. Resolution is a table lookup, never a pointer
// chase - Reference itself carries no pointer to the resolved
// value; call a Resolver to dereference it.
type Reference struct {
	ID ObjectID

	// ContainingStreamID and ContainingStreamIndex are set when the
	// referenced object lives inside an object stream; both are the zero
	// value for top-level objects.
	ContainingStreamID    *ObjectID
	ContainingStreamIndex int
}

// NewReference builds a top-level Reference (not inside an object stream).
func NewReference(id ObjectID) Reference { return Reference{ID: id} }

// InObjectStream reports whether this reference designates an object
// compressed inside an object stream.
func (r Reference) InObjectStream() bool { return r.ContainingStreamID != nil }

func (r Reference) String() string { return r.ID.String() }

func (r Reference) PDFString() string {
	return fmt.Sprintf("%d %d R", r.ID.Number, r.ID.Generation)
}

func (r Reference) Clone() Object { return r }

// Resolver resolves a Reference to its bound Object. Implemented by
// xref.Table; dereferencing is idempotent and a missing backing object
// yields the document's shared dead object rather than an error.
type Resolver interface {
	Resolve(Reference) (Object, error)
}

// Resolve walks up to table's resolution and, if the result is itself a
// Reference (stale inline value pointing at another indirect object),
// follows it once more - resolution in PDF is never more than one hop deep
// in well-formed files, but this guards against a single extra layer of
// indirection without looping indefinitely.
func Resolve(r Resolver, o Object) (Object, error) {
	ref, ok := o.(Reference)
	if !ok {
		return o, nil
	}
	v, err := r.Resolve(ref)
	if err != nil {
		return nil, err
	}
	if next, ok := v.(Reference); ok {
		return r.Resolve(next)
	}
	return v, nil
}
