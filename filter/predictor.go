package filter

import (
	"bytes"
	"fmt"
	"io"
)

// predictorParams mirrors the /DecodeParms entries relevant to FlateDecode
// and LZWDecode post-processing: Predictor, Colors, BitsPerComponent,
// Columns.
type predictorParams struct {
	predictor int
	colors    int
	bpc       int
	columns   int
}

func defaultPredictorParams() predictorParams {
	return predictorParams{predictor: 1, colors: 1, bpc: 8, columns: 1}
}

func (p predictorParams) rowSize() int {
	return p.bpc * p.colors * p.columns / 8
}

// applyPredictor reverses the PNG (predictor >= 10) or TIFF (predictor ==
// 2) prediction scheme applied before compression.
func applyPredictor(p predictorParams, r io.Reader) ([]byte, error) {
	if p.predictor == 0 || p.predictor == 1 {
		return io.ReadAll(r)
	}

	bytesPerPixel := (p.bpc*p.colors + 7) / 8
	rowSize := p.rowSize()
	if p.predictor != 2 {
		rowSize++
	}

	cr := make([]byte, rowSize)
	pr := make([]byte, rowSize)
	var out []byte

	for {
		_, err := io.ReadFull(r, cr)
		if err != nil {
			if err != io.EOF && err != io.ErrUnexpectedEOF {
				return nil, err
			}
			break
		}
		d, err := processRow(pr, cr, p.predictor, bytesPerPixel)
		if err != nil {
			return nil, err
		}
		out = append(out, d...)
		pr, cr = cr, pr
	}

	if rs := p.rowSize(); rs > 0 && len(out)%rs != 0 {
		return nil, fmt.Errorf("predictor postprocessing produced %d bytes, not a multiple of row size %d", len(out), rs)
	}
	return out, nil
}

func processRow(pr, cr []byte, predictor, bytesPerPixel int) ([]byte, error) {
	if predictor == 2 {
		return applyHorizontalDifference(cr, bytesPerPixel)
	}

	cdat := cr[1:]
	pdat := pr[1:]
	f := int(cr[0])

	switch f {
	case 0:
	case 1:
		for i := bytesPerPixel; i < len(cdat); i++ {
			cdat[i] += cdat[i-bytesPerPixel]
		}
	case 2:
		for i, v := range pdat {
			cdat[i] += v
		}
	case 3:
		for i := 0; i < bytesPerPixel; i++ {
			cdat[i] += pdat[i] / 2
		}
		for i := bytesPerPixel; i < len(cdat); i++ {
			cdat[i] += uint8((int(cdat[i-bytesPerPixel]) + int(pdat[i])) / 2)
		}
	case 4:
		filterPaeth(cdat, pdat, bytesPerPixel)
	default:
		return nil, fmt.Errorf("unknown PNG row filter byte %d", f)
	}
	return cdat, nil
}

func applyHorizontalDifference(row []byte, bytesPerPixel int) ([]byte, error) {
	for i := bytesPerPixel; i < len(row); i++ {
		row[i] += row[i-bytesPerPixel]
	}
	return row, nil
}

func abs32(x int32) int32 {
	m := x >> 31
	return (x ^ m) - m
}

func filterPaeth(cdat, pdat []byte, bytesPerPixel int) {
	var a, b, c, pa, pb, pc int32
	for i := 0; i < bytesPerPixel; i++ {
		a, c = 0, 0
		for j := i; j < len(cdat); j += bytesPerPixel {
			b = int32(pdat[j])
			pa = b - c
			pb = a - c
			pc = abs32(pa + pb)
			pa = abs32(pa)
			pb = abs32(pb)
			switch {
			case pa <= pb && pa <= pc:
			case pb <= pc:
				a = b
			default:
				a = c
			}
			a += int32(cdat[j])
			a &= 0xff
			cdat[j] = uint8(a)
			c = b
		}
	}
}

// applyPNGUpPredictor is the inverse of applyPredictor's decode path: it
// encodes rows with the PNG-Up filter (type 2), the scheme the
// cross-reference stream encoder uses (PNG-Up/predictor 12).
func applyPNGUpPredictor(data []byte, rowSize int) []byte {
	if rowSize <= 0 {
		return data
	}
	var out bytes.Buffer
	prev := make([]byte, rowSize)
	for off := 0; off < len(data); off += rowSize {
		end := off + rowSize
		if end > len(data) {
			end = len(data)
		}
		row := data[off:end]
		out.WriteByte(2) // PNG-Up
		for i, b := range row {
			out.WriteByte(b - prev[i])
		}
		copy(prev, row)
	}
	return out.Bytes()
}
