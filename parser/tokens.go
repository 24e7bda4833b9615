// Package parser consumes lexer tokens and assembles indirect objects,
// trailers and cross-reference sections.
package parser

import (
	"github.com/benoitkugler/pdfcore/lexer"
)

// token is a scanned token snapshot, decoupled from the lexer's mutable
// scan state so it can be buffered for lookahead.
type token struct {
	sym      lexer.Symbol
	text     string
	intVal   int64
	uintVal  uint64
	realVal  float64
	hexUpper bool
}

// tokenStream wraps a Lexer with two tokens of lookahead, needed to
// disambiguate "123" (Integer) from "123 0 R" (Reference) without
// backtracking through the lexer itself.
type tokenStream struct {
	lx         *lexer.Lexer
	a, aa      token
	aErr, aaErr error
}

func newTokenStream(lx *lexer.Lexer) (*tokenStream, error) {
	ts := &tokenStream{lx: lx}
	ts.a, ts.aErr = ts.scan()
	ts.aa, ts.aaErr = ts.scan()
	return ts, firstErr(ts.aErr, ts.aaErr)
}

func firstErr(errs ...error) error {
	for _, e := range errs {
		if e != nil {
			return e
		}
	}
	return nil
}

func (ts *tokenStream) scan() (token, error) {
	sym, err := ts.lx.ScanNextToken()
	if err != nil {
		return token{}, err
	}
	return token{
		sym:      sym,
		text:     ts.lx.Token(),
		intVal:   ts.lx.IntValue(),
		uintVal:  ts.lx.UIntValue(),
		realVal:  ts.lx.RealValue(),
		hexUpper: ts.lx.HexUpper(),
	}, nil
}

// Peek returns the next token without consuming it.
func (ts *tokenStream) Peek() (token, error) { return ts.a, ts.aErr }

// PeekPeek returns the token after Peek, without consuming either.
func (ts *tokenStream) PeekPeek() (token, error) { return ts.aa, ts.aaErr }

// Next consumes and returns the next token.
func (ts *tokenStream) Next() (token, error) {
	t, err := ts.a, ts.aErr
	ts.a, ts.aErr = ts.aa, ts.aaErr
	ts.aa, ts.aaErr = ts.scan()
	return t, err
}

// Position returns the underlying lexer's position. The lexer has already
// scanned the two buffered lookahead tokens, so this lies past them, not
// right after the last token returned by Next.
func (ts *tokenStream) Position() int64 { return ts.lx.Position() }

// Reset repositions the underlying lexer and lookahead to pos.
func (ts *tokenStream) Reset(pos int64) error {
	if err := ts.lx.SetPosition(pos); err != nil {
		return err
	}
	ts.a, ts.aErr = ts.scan()
	ts.aa, ts.aaErr = ts.scan()
	return nil
}
