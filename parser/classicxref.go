package parser

import (
	"github.com/benoitkugler/pdfcore/errs"
	"github.com/benoitkugler/pdfcore/lexer"
	"github.com/benoitkugler/pdfcore/object"
	"github.com/benoitkugler/pdfcore/xrefstream"
)

// ReadClassicXRefSection reads a classic "xref" section: one or more
// subsections ("first count" followed by count fixed-width 20-byte
// entries), then the trailing "trailer" dictionary. The "xref" keyword
// itself must already be consumed. Entries are returned as
// xrefstream.Entry values so classic and cross-reference-stream sections
// feed the same downstream table-building code.
func (p *Parser) ReadClassicXRefSection() (entries []xrefstream.Entry, trailerDict *object.Dict, err error) {
	for {
		tk, err := p.tokens.Peek()
		if err != nil {
			return nil, nil, errs.Wrap(errs.IOFailure, "Parser.ReadClassicXRefSection", err)
		}
		if tk.sym == lexer.Trailer {
			_, _ = p.tokens.Next()
			break
		}

		subEntries, err := p.readClassicSubsection()
		if err != nil {
			return nil, nil, err
		}
		entries = append(entries, subEntries...)
	}

	trailerDict, err = p.parseDict()
	if err != nil {
		return nil, nil, errs.Wrap(errs.MalformedInput, "Parser.ReadClassicXRefSection", err)
	}
	return entries, trailerDict, nil
}

func (p *Parser) readClassicSubsection() ([]xrefstream.Entry, error) {
	firstTok, err := p.tokens.Next()
	if err != nil {
		return nil, errs.Wrap(errs.IOFailure, "Parser.readClassicSubsection", err)
	}
	first, ok := intTokenValue(firstTok)
	if !ok {
		return nil, errs.New(errs.MalformedInput, "Parser.readClassicSubsection", "invalid subsection start object number")
	}

	countTok, err := p.tokens.Next()
	if err != nil {
		return nil, errs.Wrap(errs.IOFailure, "Parser.readClassicSubsection", err)
	}
	count, ok := intTokenValue(countTok)
	if !ok {
		return nil, errs.New(errs.MalformedInput, "Parser.readClassicSubsection", "invalid subsection object count")
	}

	entries := make([]xrefstream.Entry, 0, count)
	for i := int64(0); i < count; i++ {
		offsetTok, err := p.tokens.Next()
		if err != nil {
			return nil, errs.Wrap(errs.IOFailure, "Parser.readClassicSubsection", err)
		}
		offset, ok := intTokenValue(offsetTok)
		if !ok {
			return nil, errs.New(errs.MalformedInput, "Parser.readClassicSubsection", "invalid entry offset")
		}

		genTok, err := p.tokens.Next()
		if err != nil {
			return nil, errs.Wrap(errs.IOFailure, "Parser.readClassicSubsection", err)
		}
		gen, ok := intTokenValue(genTok)
		if !ok {
			return nil, errs.New(errs.MalformedInput, "Parser.readClassicSubsection", "invalid entry generation")
		}

		typeTok, err := p.tokens.Next()
		if err != nil {
			return nil, errs.Wrap(errs.IOFailure, "Parser.readClassicSubsection", err)
		}
		var typ xrefstream.EntryType
		switch {
		case typeTok.sym == lexer.Keyword && typeTok.text == "n":
			typ = xrefstream.TypeInUse
		case typeTok.sym == lexer.Keyword && typeTok.text == "f":
			typ = xrefstream.TypeFree
		default:
			return nil, errs.New(errs.MalformedInput, "Parser.readClassicSubsection", `corrupt xref entry, expected "n" or "f"`)
		}

		if typ == xrefstream.TypeInUse && offset == 0 {
			continue
		}

		entries = append(entries, xrefstream.Entry{
			Type:         typ,
			Field2:       offset,
			Field3:       gen,
			ObjectNumber: uint32(first + i),
		})
	}
	return entries, nil
}

func intTokenValue(t token) (int64, bool) {
	switch t.sym {
	case lexer.Integer:
		return t.intVal, true
	case lexer.UInteger:
		return int64(t.uintVal), true
	default:
		return 0, false
	}
}
