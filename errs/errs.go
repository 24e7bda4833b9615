// Package errs defines the error taxonomy shared across the PDF core:
// lexer, parser, cross-reference, and writer failures all unwind as one
// of these kinds so callers can branch on Kind without parsing messages.
package errs

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a core error.
type Kind uint8

const (
	// MalformedInput covers bad headers, unparseable tokens, unexpected
	// symbols and stream length mismatches.
	MalformedInput Kind = iota
	// UnsupportedFeature covers unknown predictors or filter chain elements.
	UnsupportedFeature
	// IntegrityViolation covers duplicate object IDs, dangling references
	// after renumbering, and cross-reference stream width overflow.
	IntegrityViolation
	// PasswordRequired is returned when an /Encrypt dictionary is present
	// and no password was supplied.
	PasswordRequired
	// InvalidPassword is returned when a supplied password fails validation.
	InvalidPassword
	// OwnerPasswordRequired is returned when an operation requires the
	// owner password specifically.
	OwnerPasswordRequired
	// IOFailure wraps any error from the underlying byte source.
	IOFailure
)

func (k Kind) String() string {
	switch k {
	case MalformedInput:
		return "malformed input"
	case UnsupportedFeature:
		return "unsupported feature"
	case IntegrityViolation:
		return "integrity violation"
	case PasswordRequired:
		return "password required"
	case InvalidPassword:
		return "invalid password"
	case OwnerPasswordRequired:
		return "owner password required"
	case IOFailure:
		return "I/O failure"
	default:
		return "unknown error"
	}
}

// Error is the error type returned across package boundaries in this module.
// It carries a Kind so callers can react (e.g. retry with a password on
// PasswordRequired) and wraps the underlying cause with a stack trace via
// github.com/pkg/errors, so diagnostics survive the unwind to the Open entry
// point.
type Error struct {
	Kind Kind
	Op   string // the operation that failed, e.g. "parser.ParseObject"
	err  error
}

func (e *Error) Error() string {
	if e.err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.err)
}

func (e *Error) Unwrap() error { return e.err }

// New builds an Error, wrapping msg with a stack trace.
func New(kind Kind, op, msg string) *Error {
	return &Error{Kind: kind, Op: op, err: errors.New(msg)}
}

// Newf is like New but with formatting.
func Newf(kind Kind, op, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Op: op, err: errors.Errorf(format, args...)}
}

// Wrap attaches Op/Kind to an existing error, preserving its stack trace if
// it already has one (errors.Wrap is a no-op-friendly wrapper: it still adds
// a new frame either way).
func Wrap(kind Kind, op string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, err: errors.Wrap(err, op)}
}

// Is reports whether err is an *Error of the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
