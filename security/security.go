// Package security defines the hook surface a caller plugs in to handle
// encryption: this module never implements RC4/AES/key-derivation itself
// (that is out of scope), it only calls through an injected Handler at
// the two points the PDF file format requires it.
package security

import (
	"github.com/benoitkugler/pdfcore/object"
)

// PasswordResult is the outcome of validating a password against a
// document's /Encrypt dictionary.
type PasswordResult int

const (
	Invalid PasswordResult = iota
	UserPassword
	OwnerPassword
)

func (r PasswordResult) String() string {
	switch r {
	case UserPassword:
		return "UserPassword"
	case OwnerPassword:
		return "OwnerPassword"
	default:
		return "Invalid"
	}
}

// PasswordProvider is invoked when the password supplied at open time is
// rejected (Invalid), or accepted only as a user password while the
// document is being opened in Modify mode (PDF requires the owner
// password in that case). It returns a replacement password to try, or
// ok=false to give up.
type PasswordProvider func(previousResult PasswordResult) (password string, ok bool)

// Handler is the encryption hook surface the document package calls
// through. Callers supply a concrete implementation; this module never
// constructs one itself.
type Handler interface {
	// ValidatePassword checks password (possibly empty) against the
	// document's /Encrypt dictionary and ID array.
	ValidatePassword(encryptDict *object.Dict, id object.Array, password string) (PasswordResult, error)

	// EncryptDocument transforms every string and stream byte buffer
	// reachable from root in place, using the key derived during
	// ValidatePassword. Document.Save invokes it exactly once, after the
	// order in which objects are written has been fixed and before any
	// object body is written; byte offsets are assigned afterwards, as
	// each body is written, not before this call.
	EncryptDocument(encryptDict *object.Dict, root object.Object) error
}
