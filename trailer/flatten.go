package trailer

// PostParseState classifies a freshly parsed trailer chain into one of
// the four states named by the trailer-chain component design, driving
// what Flatten should do with it.
type PostParseState int

const (
	// StateFlatten is a single trailer with no signature: discard
	// prev/next and use the trailer's table directly.
	StateFlatten PostParseState = iota
	// StateReadOnly is a single trailer with a signature, or an
	// all-cross-reference-stream chain with a signature: every trailer
	// is marked read-only and original bytes must be preserved on save.
	StateReadOnly
	// StateMergeTopmost is an unsigned, linearized, all-cross-reference
	// -stream chain of more than two trailers: the newest trailer is an
	// incremental overlay that can be merged into its predecessor.
	StateMergeTopmost
	// StateKeepAsIs leaves the chain exactly as parsed; saving produces
	// another incremental update.
	StateKeepAsIs
)

// Classify determines c's PostParseState. hasSignature must be computed
// by the caller (it requires resolving the catalog's AcroForm field tree,
// which this package cannot do without an object resolver).
func Classify(c *Chain, hasSignature bool) PostParseState {
	if c.Count == 1 {
		if hasSignature {
			return StateReadOnly
		}
		return StateFlatten
	}

	allXRefStream := c.AllCrossReferenceStream()

	if hasSignature && allXRefStream {
		return StateReadOnly
	}

	if !hasSignature && allXRefStream && c.Count > 2 && c.Linearized() {
		return StateMergeTopmost
	}

	return StateKeepAsIs
}

// Flatten discards prev/next linkage and returns the single surviving
// trailer (the newest one), per StateFlatten.
func Flatten(c *Chain) *Trailer {
	t := c.Newest
	t.Prev = nil
	t.Next = nil
	return t
}

// MarkReadOnly sets IsReadOnly on every trailer in the chain, per
// StateReadOnly.
func MarkReadOnly(c *Chain) {
	c.Walk(func(t *Trailer) bool {
		t.IsReadOnly = true
		return true
	})
}

// MergeTopmost folds the newest trailer's references into its
// predecessor: each reference either replaces a same-ID entry in the
// nearest older trailer that has one or is added to the predecessor; the
// newest trailer's object streams themselves are not carried over, per
// StateMergeTopmost. It returns the new chain head (the former
// second-from-top trailer).
func MergeTopmost(c *Chain) *Chain {
	top := c.Newest
	predecessor := top.Prev
	if predecessor == nil {
		return c
	}

	droppedStreams := map[uint32]bool{}
	for _, id := range top.ObjectStreams {
		droppedStreams[id.Number] = true
	}
	for _, ref := range top.Table.AllReferences() {
		if droppedStreams[ref.ID.Number] {
			continue
		}
		target := predecessor
		for t := predecessor; t != nil; t = t.Prev {
			if _, exists := t.Table.Lookup(ref.ID); exists {
				t.Table.Remove(ref)
				target = t
				break
			}
		}
		if value, err := top.Table.Resolve(ref); err == nil {
			target.Table.Bind(ref.ID, value)
		}
	}

	predecessor.Next = nil
	return &Chain{Newest: predecessor, Count: c.Count - 1}
}
