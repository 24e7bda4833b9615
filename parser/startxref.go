package parser

import (
	"bytes"
	"io"
	"strconv"

	"github.com/benoitkugler/pdfcore/errs"
)

// FindStartXRef scans backward from the end of rs for the last
// "startxref OFFSET %%EOF" triplet and returns OFFSET: the entry point
// into the trailer chain. It reads fixed-size chunks working backward
// from EOF until it finds "startxref" followed by a matching "%%EOF".
func FindStartXRef(rs io.ReadSeeker) (int64, error) {
	fileSize, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, errs.Wrap(errs.IOFailure, "parser.FindStartXRef", err)
	}

	return findStartXRefSkipping(rs, fileSize, 0)
}

// findStartXRefSkipping scans for the last startxref keyword, ignoring the
// last `skip` bytes of the file; FindStartXRef calls it with skip 0.
func findStartXRefSkipping(rs io.ReadSeeker, fileSize, skip int64) (int64, error) {
	var prevBuf, workBuf []byte
	bufSize := int64(512)
	if fileSize < bufSize {
		bufSize = fileSize
	}
	if bufSize <= 0 {
		return 0, errs.New(errs.MalformedInput, "parser.FindStartXRef", "empty file")
	}

	var offset int64
	for i := int64(1); offset == 0; i++ {
		seekTo := -i*bufSize - skip
		if -seekTo > fileSize {
			return 0, errs.New(errs.MalformedInput, "parser.FindStartXRef", "startxref not found")
		}
		if _, err := rs.Seek(seekTo, io.SeekEnd); err != nil {
			return 0, errs.Wrap(errs.MalformedInput, "parser.FindStartXRef", err)
		}

		curBuf := make([]byte, bufSize)
		if _, err := io.ReadFull(rs, curBuf); err != nil {
			return 0, errs.Wrap(errs.MalformedInput, "parser.FindStartXRef", err)
		}

		workBuf = append(curBuf, prevBuf...)

		j := bytes.LastIndex(workBuf, []byte("startxref"))
		if j == -1 {
			prevBuf = curBuf
			continue
		}

		p := workBuf[j+len("startxref"):]
		posEOF := bytes.Index(p, []byte("%%EOF"))
		if posEOF == -1 {
			return 0, errs.New(errs.MalformedInput, "parser.FindStartXRef", "no matching %%EOF for startxref")
		}
		p = p[:posEOF]

		parsed, err := strconv.ParseInt(string(bytes.TrimSpace(p)), 10, 64)
		if err != nil || parsed >= fileSize {
			return 0, errs.New(errs.MalformedInput, "parser.FindStartXRef", "corrupted startxref offset")
		}
		offset = parsed
	}
	return offset, nil
}

// ReadHeaderVersion reads the "%PDF-M.m" version token from the first
// line of rs.
func ReadHeaderVersion(rs io.ReadSeeker) (string, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return "", errs.Wrap(errs.IOFailure, "parser.ReadHeaderVersion", err)
	}
	buf := make([]byte, 32)
	n, err := rs.Read(buf)
	if err != nil && err != io.EOF {
		return "", errs.Wrap(errs.IOFailure, "parser.ReadHeaderVersion", err)
	}
	buf = buf[:n]

	const prefix = "%PDF-"
	idx := bytes.Index(buf, []byte(prefix))
	if idx == -1 || idx+len(prefix)+3 > len(buf) {
		return "", errs.New(errs.MalformedInput, "parser.ReadHeaderVersion", "missing %PDF- header")
	}
	return string(buf[idx+len(prefix) : idx+len(prefix)+3]), nil
}
