package filter

import (
	"bytes"
	"compress/zlib"
	"encoding/ascii85"
	"encoding/hex"
	"io"

	"github.com/benoitkugler/pdfcore/errs"
	"github.com/benoitkugler/pdfcore/object"
	"github.com/hhrutter/lzw"
)

// step is one entry of a stream's filter pipeline: a filter name paired
// with its decode parameters (possibly absent, in which case defaults
// apply).
type step struct {
	name   string
	params *object.Dict
}

// pipeline reads a stream dictionary's /Filter and /DecodeParms entries,
// normalizing the "single name" and "array of names" forms into an
// ordered list of steps.
func pipeline(dict *object.Dict) ([]step, error) {
	var names []object.Name
	switch v := dict.Get("Filter").(type) {
	case nil:
		return nil, nil
	case object.Name:
		names = []object.Name{v}
	case object.Array:
		for _, item := range v {
			n, ok := item.(object.Name)
			if !ok {
				return nil, errs.New(errs.MalformedInput, "filter.pipeline", "non-name entry in /Filter array")
			}
			names = append(names, n)
		}
	default:
		return nil, errs.New(errs.MalformedInput, "filter.pipeline", "/Filter must be a name or array of names")
	}

	var parms []object.Object
	switch v := dict.Get("DecodeParms").(type) {
	case nil:
	case *object.Dict:
		parms = []object.Object{v}
	case object.Array:
		parms = []object.Object(v)
	default:
		return nil, errs.New(errs.MalformedInput, "filter.pipeline", "/DecodeParms must be a dictionary or array")
	}

	steps := make([]step, len(names))
	for i, n := range names {
		st := step{name: string(n)}
		if i < len(parms) {
			if d, ok := parms[i].(*object.Dict); ok {
				st.params = d
			}
		}
		steps[i] = st
	}
	return steps, nil
}

func parsePredictorParams(d *object.Dict) predictorParams {
	p := defaultPredictorParams()
	if d == nil {
		return p
	}
	if d.Contains("Predictor") {
		p.predictor = d.GetInteger("Predictor")
	}
	if d.Contains("Colors") {
		p.colors = d.GetInteger("Colors")
	}
	if d.Contains("BitsPerComponent") {
		p.bpc = d.GetInteger("BitsPerComponent")
	}
	if d.Contains("Columns") {
		p.columns = d.GetInteger("Columns")
	}
	if p.colors <= 0 {
		p.colors = 1
	}
	if p.bpc <= 0 {
		p.bpc = 8
	}
	if p.columns <= 0 {
		p.columns = 1
	}
	return p
}

func decodeOne(name string, params *object.Dict, data []byte) ([]byte, error) {
	switch name {
	case FlateDecode:
		zr, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, errs.Wrap(errs.MalformedInput, "filter.decodeOne", err)
		}
		defer zr.Close()
		out, err := applyPredictor(parsePredictorParams(params), zr)
		if err != nil {
			return nil, errs.Wrap(errs.MalformedInput, "filter.decodeOne", err)
		}
		return out, nil

	case LZWDecode:
		earlyChange := true
		if params != nil && params.Contains("EarlyChange") {
			earlyChange = params.GetInteger("EarlyChange") != 0
		}
		rc := lzw.NewReader(bytes.NewReader(data), earlyChange)
		defer rc.Close()
		raw, err := io.ReadAll(rc)
		if err != nil {
			return nil, errs.Wrap(errs.MalformedInput, "filter.decodeOne", err)
		}
		return applyPredictor(parsePredictorParams(params), bytes.NewReader(raw))

	case ASCIIHexDecode:
		return decodeASCIIHex(data)

	case ASCII85Decode:
		return decodeASCII85(data)

	case RunLengthDecode:
		return decodeRunLength(data)

	default:
		if imageFilters[name] {
			return data, nil
		}
		return nil, errs.Newf(errs.UnsupportedFeature, "filter.decodeOne", "unsupported filter %q", name)
	}
}

// TryUnfilter decodes s's filter chain, caching the result on s so
// repeated calls are free. It returns the cached bytes if s already holds
// a decoded buffer (Stream.Decoded).
func TryUnfilter(s *object.Stream) ([]byte, error) {
	if cached, ok := s.Decoded(); ok {
		return cached, nil
	}

	steps, err := pipeline(s.Dict)
	if err != nil {
		return nil, err
	}

	data := s.Content
	for _, st := range steps {
		data, err = decodeOne(st.name, st.params, data)
		if err != nil {
			return nil, err
		}
	}

	s.SetDecoded(data)
	return data, nil
}

// Zip replaces s's content with a freshly FlateDecode-compressed copy of
// raw, stripping any prior /Filter and /DecodeParms to prevent
// double-filtering.
func Zip(s *object.Stream, raw []byte) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	_, _ = w.Write(raw)
	_ = w.Close()

	s.Dict.Delete("DecodeParms")
	s.Dict.Set("Filter", object.Name(FlateDecode))
	s.Content = buf.Bytes()
	s.Dict.Set("Length", object.Integer(len(s.Content)))
	s.SetDecoded(raw)
}

func decodeASCIIHex(data []byte) ([]byte, error) {
	var clean []byte
	for _, b := range data {
		if b == '>' {
			break
		}
		if b == ' ' || b == '\t' || b == '\r' || b == '\n' || b == '\f' || b == 0 {
			continue
		}
		clean = append(clean, b)
	}
	if len(clean)%2 == 1 {
		clean = append(clean, '0')
	}
	out := make([]byte, hex.DecodedLen(len(clean)))
	n, err := hex.Decode(out, clean)
	if err != nil {
		return nil, errs.Wrap(errs.MalformedInput, "filter.decodeASCIIHex", err)
	}
	return out[:n], nil
}

func decodeASCII85(data []byte) ([]byte, error) {
	end := bytes.Index(data, []byte("~>"))
	if end < 0 {
		end = len(data)
	}
	out := make([]byte, len(data))
	n, _, err := ascii85.Decode(out, data[:end], true)
	if err != nil {
		return nil, errs.Wrap(errs.MalformedInput, "filter.decodeASCII85", err)
	}
	return out[:n], nil
}

// decodeRunLength decodes the RunLengthDecode byte-oriented compression
// scheme into an in-memory buffer.
func decodeRunLength(data []byte) ([]byte, error) {
	var out bytes.Buffer
	r := bytes.NewReader(data)
	for {
		b, err := r.ReadByte()
		if err != nil {
			return out.Bytes(), nil
		}
		if b == 0x80 {
			return out.Bytes(), nil
		}
		if b < 0x80 {
			count := int(b) + 1
			chunk := make([]byte, count)
			if _, err := io.ReadFull(r, chunk); err != nil {
				return nil, errs.New(errs.MalformedInput, "filter.decodeRunLength", "missing data before EOD")
			}
			out.Write(chunk)
			continue
		}
		count := 257 - int(b)
		next, err := r.ReadByte()
		if err != nil {
			return nil, errs.New(errs.MalformedInput, "filter.decodeRunLength", "missing data before EOD")
		}
		for i := 0; i < count; i++ {
			out.WriteByte(next)
		}
	}
}
