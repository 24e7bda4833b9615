// Package trailer models the PDF trailer chain: the dictionary plus
// cross-reference-table linkage (Prev/Next) that anchors each generation
// of a document's object graph, and the post-parse flattening/merging
// decision described for incremental updates. Each Trailer owns its own
// generation's cross-reference table rather than a single table shared
// across the whole chain, since PDF requires the chain itself - not just
// its merged fields - to survive into the in-memory model.
package trailer

import (
	"github.com/benoitkugler/pdfcore/object"
	"github.com/benoitkugler/pdfcore/xref"
	"github.com/benoitkugler/pdfcore/xrefstream"
)

// Trailer is one generation of a document's cross-reference chain.
type Trailer struct {
	Dict  *object.Dict
	Table *xref.Table

	Prev *Trailer
	Next *Trailer

	// ObjectStreams lists the object numbers of every object stream
	// registered while reading this trailer's generation.
	ObjectStreams []object.ObjectID

	IsReadOnly       bool
	IsLinearizedHint bool

	// CrossReferenceStream holds the width triple of the stream this
	// trailer was read from, if it was a cross-reference stream rather
	// than a classic xref section. A nil value means classic.
	CrossReferenceStream *CrossReferenceStreamInfo
}

// CrossReferenceStreamInfo is the sub-variant state for trailers read
// from a PDF 1.5+ cross-reference stream rather than a classic section.
type CrossReferenceStreamInfo struct {
	Entries []xrefstream.Entry
	Width   xrefstream.Width
}

// Root returns the trailer's /Root reference, if present.
func (t *Trailer) Root() (object.Reference, bool) {
	return t.Dict.GetReference("Root")
}

// PrevOffset returns the /Prev byte offset, or 0 if absent.
func (t *Trailer) PrevOffset() int64 {
	return int64(t.Dict.GetInteger("Prev"))
}

// SignaturePresence records whether a document carries a digital
// signature. Nothing in this module sets or reads it: signature detection
// walks the AcroForm field tree in the document package, which passes its
// result to Classify as a plain bool.
type SignaturePresence bool

// Chain is the full linked list of trailers for one document, newest
// first (the generation closest to EOF is Chain.Newest).
type Chain struct {
	Newest *Trailer
	Count  int
}

// Walk calls fn for every trailer from newest to oldest.
func (c *Chain) Walk(fn func(*Trailer) bool) {
	for t := c.Newest; t != nil; t = t.Prev {
		if !fn(t) {
			return
		}
	}
}

// AllCrossReferenceStream reports whether every trailer in the chain was
// read from a cross-reference stream (used by the post-parse state
// classification).
func (c *Chain) AllCrossReferenceStream() bool {
	all := true
	c.Walk(func(t *Trailer) bool {
		if t.CrossReferenceStream == nil {
			all = false
			return false
		}
		return true
	})
	return all
}

// Linearized reports whether the oldest trailer in the chain carries the
// linearization hint.
func (c *Chain) Linearized() bool {
	oldest := c.Newest
	for oldest != nil && oldest.Prev != nil {
		oldest = oldest.Prev
	}
	return oldest != nil && oldest.IsLinearizedHint
}
