// Package logging provides the named, swappable loggers used across the
// core. Each concern (lexer, parser, xref, writer) gets its own
// *zap.SugaredLogger, defaulting to a no-op until SetLogger installs one.
package logging

import "go.uber.org/zap"

var (
	base = zap.NewNop()

	// Lexer logs token-level scanning diagnostics.
	Lexer = base.Sugar().Named("lexer")
	// Parser logs object/trailer assembly diagnostics.
	Parser = base.Sugar().Named("parser")
	// XRef logs cross-reference table and object-stream diagnostics.
	XRef = base.Sugar().Named("xref")
	// Writer logs save-path diagnostics.
	Writer = base.Sugar().Named("writer")
)

// SetLogger replaces the base logger used by all named loggers. Passing nil
// restores the no-op default. Call this once at process start; the core
// itself never mutates logger state concurrently with parsing.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	base = l
	Lexer = base.Sugar().Named("lexer")
	Parser = base.Sugar().Named("parser")
	XRef = base.Sugar().Named("xref")
	Writer = base.Sugar().Named("writer")
}
