package parser

import (
	"fmt"

	"github.com/benoitkugler/pdfcore/errs"
	"github.com/benoitkugler/pdfcore/lexer"
	"github.com/benoitkugler/pdfcore/object"
)

// LengthResolver resolves a stream dictionary's /Length entry when it is
// an indirect reference rather than a direct integer (common in PDF, since
// the length is only known once the stream is written). Parser.ParseObject
// calls it only when /Length is indirect; a Parser whose ResolveLength is
// nil treats an indirect /Length as a hard error.
type LengthResolver func(object.Reference) (int, error)

// Parser reads a single indirect object's value from a token stream: null,
// bool, integer, real, name, string, array, dictionary, stream, or
// reference. Classic cross-reference sections and their trailer
// dictionaries are read by Parser.ReadClassicXRefSection. Disambiguating a plain integer from the start of an indirect
// reference requires two tokens of lookahead ("N" vs "N G R"), provided by
// tokenStream.
type Parser struct {
	tokens *tokenStream

	// ResolveLength resolves an indirect /Length value. May be nil if the
	// caller never expects indirect lengths (e.g. parsing inside an
	// object stream, where spec forbids indirect objects as entries).
	ResolveLength LengthResolver
}

// New builds a Parser reading from lx.
func New(lx *lexer.Lexer) (*Parser, error) {
	ts, err := newTokenStream(lx)
	if err != nil {
		return nil, errs.Wrap(errs.IOFailure, "parser.New", err)
	}
	return &Parser{tokens: ts}, nil
}

// Position returns the underlying lexer's current position.
func (p *Parser) Position() int64 { return p.tokens.Position() }

// Reset repositions the parser (and its lexer) at pos.
func (p *Parser) Reset(pos int64) error { return p.tokens.Reset(pos) }

// PeekSymbol reports the symbol of the next token without consuming it,
// letting a caller tell a classic "xref" section apart from an indirect
// object definition before committing to either grammar.
func (p *Parser) PeekSymbol() (lexer.Symbol, error) {
	tk, err := p.tokens.Peek()
	if err != nil {
		return lexer.None, err
	}
	return tk.sym, nil
}

// SkipToken consumes and discards the next token, used to step over a
// keyword (such as "xref") already identified via PeekSymbol.
func (p *Parser) SkipToken() error {
	_, err := p.tokens.Next()
	return err
}

// ParseObject reads one complete object from the token stream.
func (p *Parser) ParseObject() (object.Object, error) {
	tk, err := p.tokens.Next()
	if err != nil {
		return nil, errs.Wrap(errs.IOFailure, "Parser.ParseObject", err)
	}

	switch tk.sym {
	case lexer.Eof:
		return nil, errs.New(errs.MalformedInput, "Parser.ParseObject", "unexpected end of input")
	case lexer.Null:
		return object.Null{}, nil
	case lexer.Boolean:
		return object.Boolean(tk.text == "true"), nil
	case lexer.Name:
		return object.Name(tk.text), nil
	case lexer.String:
		return object.NewString([]byte(tk.text)), nil
	case lexer.UnicodeString:
		return object.NewString([]byte(tk.text)), nil
	case lexer.HexString:
		return object.NewHexString([]byte(tk.text), tk.hexUpper), nil
	case lexer.UnicodeHexString:
		return object.NewHexString([]byte(tk.text), tk.hexUpper), nil
	case lexer.Real:
		return object.Real(tk.realVal), nil
	case lexer.BeginArray:
		return p.parseArray()
	case lexer.BeginDictionary:
		return p.parseDictOrStream()
	case lexer.Integer, lexer.UInteger:
		return p.parseNumericOrReference(tk)
	default:
		return nil, errs.Newf(errs.MalformedInput, "Parser.ParseObject", "unexpected token %s (%q)", tk.sym, tk.text)
	}
}

func (p *Parser) parseArray() (object.Array, error) {
	arr := object.Array{}
	for {
		tk, err := p.tokens.Peek()
		if err != nil {
			return nil, errs.Wrap(errs.IOFailure, "Parser.parseArray", err)
		}
		if tk.sym == lexer.EndArray {
			_, _ = p.tokens.Next()
			return arr, nil
		}
		if tk.sym == lexer.Eof {
			return nil, errs.New(errs.MalformedInput, "Parser.parseArray", "unterminated array")
		}
		obj, err := p.ParseObject()
		if err != nil {
			return nil, err
		}
		arr = append(arr, obj)
	}
}

// parseDictOrStream reads a dictionary; if immediately followed by the
// "stream" keyword, it continues on to read the stream body.
func (p *Parser) parseDictOrStream() (object.Object, error) {
	dict, err := p.parseDict()
	if err != nil {
		return nil, err
	}

	tk, err := p.tokens.Peek()
	if err != nil {
		return nil, errs.Wrap(errs.IOFailure, "Parser.parseDictOrStream", err)
	}
	if tk.sym != lexer.BeginStream {
		return dict, nil
	}
	_, _ = p.tokens.Next()
	return p.parseStreamBody(dict)
}

func (p *Parser) parseDict() (*object.Dict, error) {
	d := object.NewDict()
	for {
		tk, err := p.tokens.Peek()
		if err != nil {
			return nil, errs.Wrap(errs.IOFailure, "Parser.parseDict", err)
		}
		switch tk.sym {
		case lexer.EndDictionary:
			_, _ = p.tokens.Next()
			return d, nil
		case lexer.Eof:
			return nil, errs.New(errs.MalformedInput, "Parser.parseDict", "unterminated dictionary")
		case lexer.Name:
			_, _ = p.tokens.Next()
			key := object.Name(tk.text)
			val, err := p.ParseObject()
			if err != nil {
				return nil, err
			}
			// Specifying null as a dictionary value is equivalent to
			// omitting the entry; first insertion wins for a
			// duplicate key within the same dictionary.
			if _, isNull := val.(object.Null); !isNull {
				d.SetIfAbsent(key, val)
			}
		default:
			return nil, errs.Newf(errs.MalformedInput, "Parser.parseDict", "expected name key, got %s", tk.sym)
		}
	}
}

// parseStreamBody locates the "n g obj"-relative stream payload once the
// "stream" keyword has been consumed. /Length may be an indirect
// reference, which is resolved through p.ResolveLength.
func (p *Parser) parseStreamBody(dict *object.Dict) (*object.Stream, error) {
	lengthObj := dict.Get("Length")
	length, ok := lengthObj.(object.Integer)
	if !ok {
		ref, isRef := lengthObj.(object.Reference)
		if !isRef {
			if u, isU := lengthObj.(object.UInteger); isU {
				length = object.Integer(u)
			} else {
				return nil, errs.New(errs.MalformedInput, "Parser.parseStreamBody", "stream missing integer /Length")
			}
		} else {
			if p.ResolveLength == nil {
				return nil, errs.New(errs.MalformedInput, "Parser.parseStreamBody", "indirect /Length with no resolver available")
			}
			l, err := p.ResolveLength(ref)
			if err != nil {
				return nil, err
			}
			length = object.Integer(l)
		}
	}

	offset, _, err := p.tokens.lx.StreamDataStart()
	if err != nil {
		return nil, errs.Wrap(errs.MalformedInput, "Parser.parseStreamBody", err)
	}
	if err := p.tokens.lx.SetPosition(offset); err != nil {
		return nil, errs.Wrap(errs.IOFailure, "Parser.parseStreamBody", err)
	}

	content, err := p.tokens.lx.ReadStream(int(length))
	if err != nil {
		return nil, errs.Wrap(errs.IOFailure, "Parser.parseStreamBody", err)
	}

	if err := p.tokens.Reset(p.tokens.lx.Position()); err != nil {
		return nil, err
	}
	tk, err := p.tokens.Next()
	if err != nil {
		return nil, errs.Wrap(errs.IOFailure, "Parser.parseStreamBody", err)
	}
	if tk.sym != lexer.EndStream {
		return nil, errs.Newf(errs.MalformedInput, "Parser.parseStreamBody", "expected endstream, got %s", tk.sym)
	}

	return object.NewStream(dict, content), nil
}

// parseNumericOrReference disambiguates "123" from "123 0 R" by peeking
// two tokens ahead.
func (p *Parser) parseNumericOrReference(first token) (object.Object, error) {
	toInt := func(t token) (uint32, bool) {
		switch t.sym {
		case lexer.Integer:
			if t.intVal < 0 {
				return 0, false
			}
			return uint32(t.intVal), true
		case lexer.UInteger:
			return uint32(t.uintVal), true
		default:
			return 0, false
		}
	}

	firstVal, firstOK := toInt(first)
	if !firstOK {
		// shouldn't happen: caller only invokes this for Integer/UInteger
		return numberFromToken(first), nil
	}

	second, err := p.tokens.Peek()
	if err != nil {
		return nil, errs.Wrap(errs.IOFailure, "Parser.parseNumericOrReference", err)
	}
	genVal, genOK := toInt(second)
	if !genOK {
		return numberFromToken(first), nil
	}

	third, err := p.tokens.PeekPeek()
	if err != nil {
		return nil, errs.Wrap(errs.IOFailure, "Parser.parseNumericOrReference", err)
	}
	if third.sym != lexer.R {
		return numberFromToken(first), nil
	}

	_, _ = p.tokens.Next() // consume generation
	_, _ = p.tokens.Next() // consume "R"
	return object.NewReference(object.ObjectID{Number: firstVal, Generation: uint16(genVal)}), nil
}

func numberFromToken(t token) object.Object {
	if t.sym == lexer.UInteger {
		return object.UInteger(t.uintVal)
	}
	return object.Integer(t.intVal)
}

// ParseObjectDefinition reads a complete "n g obj ... endobj" indirect
// object declaration. headerOnly stops right after the
// header line, useful when the caller only needs to validate the object
// number before jumping to object-stream decoding.
func (p *Parser) ParseObjectDefinition(headerOnly bool) (id object.ObjectID, obj object.Object, err error) {
	numTok, err := p.tokens.Next()
	if err != nil {
		return id, nil, errs.Wrap(errs.IOFailure, "Parser.ParseObjectDefinition", err)
	}
	if numTok.sym != lexer.Integer && numTok.sym != lexer.UInteger {
		return id, nil, errs.Newf(errs.MalformedInput, "Parser.ParseObjectDefinition", "expected object number, got %s", numTok.sym)
	}
	genTok, err := p.tokens.Next()
	if err != nil {
		return id, nil, errs.Wrap(errs.IOFailure, "Parser.ParseObjectDefinition", err)
	}
	if genTok.sym != lexer.Integer && genTok.sym != lexer.UInteger {
		return id, nil, errs.Newf(errs.MalformedInput, "Parser.ParseObjectDefinition", "expected generation number, got %s", genTok.sym)
	}
	objTok, err := p.tokens.Next()
	if err != nil {
		return id, nil, errs.Wrap(errs.IOFailure, "Parser.ParseObjectDefinition", err)
	}
	if objTok.sym != lexer.Obj {
		return id, nil, errs.New(errs.MalformedInput, "Parser.ParseObjectDefinition", `expected "obj" keyword`)
	}

	num := numTok.intVal
	if numTok.sym == lexer.UInteger {
		num = int64(numTok.uintVal)
	}
	gen := genTok.intVal
	if genTok.sym == lexer.UInteger {
		gen = int64(genTok.uintVal)
	}
	id = object.ObjectID{Number: uint32(num), Generation: uint16(gen)}

	if headerOnly {
		return id, nil, nil
	}

	obj, err = p.ParseObject()
	if err != nil {
		return id, nil, err
	}

	endTok, err := p.tokens.Next()
	if err != nil {
		return id, nil, errs.Wrap(errs.IOFailure, "Parser.ParseObjectDefinition", err)
	}
	if endTok.sym != lexer.EndObj {
		return id, nil, errs.Newf(errs.MalformedInput, "Parser.ParseObjectDefinition", "expected endobj, got %s (%q)", endTok.sym, endTok.text)
	}
	return id, obj, nil
}

// String implements fmt.Stringer for diagnostics.
func (p *Parser) String() string {
	return fmt.Sprintf("Parser@%d", p.Position())
}
