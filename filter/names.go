// Package filter implements the stream filter pipeline: decoding the
// byte content named by a stream dictionary's /Filter and /DecodeParms
// entries, and re-applying FlateDecode for output. It operates on
// *object.Stream's exported fields directly rather than through
// object.Stream methods, to keep the object package free of a dependency
// on filter.
package filter

// Name constants for the standard PDF stream filters.
const (
	ASCII85Decode   = "ASCII85Decode"
	ASCIIHexDecode  = "ASCIIHexDecode"
	RunLengthDecode = "RunLengthDecode"
	LZWDecode       = "LZWDecode"
	FlateDecode     = "FlateDecode"
	DCTDecode       = "DCTDecode"
	CCITTFaxDecode  = "CCITTFaxDecode"
	JBIG2Decode     = "JBIG2Decode"
	JPXDecode       = "JPXDecode"
	Crypt           = "Crypt"
)

// imageFilters produce image data this package does not attempt to
// decode; TryUnfilter passes the bytes through such a filter unchanged
// and goes on with any later filters in the chain, since scope here is
// limited to PDF's generic stream filters.
var imageFilters = map[string]bool{
	DCTDecode:      true,
	CCITTFaxDecode: true,
	JBIG2Decode:    true,
	JPXDecode:      true,
}
