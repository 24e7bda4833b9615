package object

// Stream is a PDF stream object: a dictionary plus a raw byte buffer.
// Decoding ("unfiltering") and re-encoding happen in the filter package,
// which operates on the exported Content field directly - the object
// package only owns the data, not the compression logic.
type Stream struct {
	Dict    *Dict
	Content []byte // as read or written, not decoded

	// decoded caches the result of a successful unfilter pass, so repeated
	// reads don't re-run the filter chain. Populated by filter.TryUnfilter.
	decoded    []byte
	hasDecoded bool

	// ReadOnly mirrors the owning trailer's is_read_only flag:
	// a stream's buffer is mutable only when the stream is not read-only.
	ReadOnly bool
}

// NewStream wraps dict and content into a Stream with an empty decode cache.
func NewStream(dict *Dict, content []byte) *Stream {
	return &Stream{Dict: dict, Content: content}
}

// Decoded returns the cached unfiltered content and true, or (nil, false)
// if TryUnfilter has not run yet (filter.TryUnfilter populates the cache).
func (s *Stream) Decoded() ([]byte, bool) { return s.decoded, s.hasDecoded }

// SetDecoded stores the unfiltered content in the cache.
func (s *Stream) SetDecoded(b []byte) {
	s.decoded = b
	s.hasDecoded = true
}

// InvalidateDecoded clears the decode cache, e.g. after Content is replaced.
func (s *Stream) InvalidateDecoded() {
	s.decoded = nil
	s.hasDecoded = false
}

func (s *Stream) String() string { return s.PDFString() }

func (s *Stream) PDFString() string {
	return s.Dict.PDFString() + "\nstream\n<binary>\nendstream"
}

func (s *Stream) Clone() Object {
	content := make([]byte, len(s.Content))
	copy(content, s.Content)
	var dict *Dict
	if s.Dict != nil {
		dict = s.Dict.Clone().(*Dict)
	}
	return &Stream{Dict: dict, Content: content, ReadOnly: s.ReadOnly}
}
