package crawler

import (
	"errors"
	"fmt"
)

// ErrTitleMismatch is the contract violation raised when the page returned
// for a request carries a different title than the one requested.
var ErrTitleMismatch = errors.New("returned title does not match requested title")

// MismatchError describes one title mismatch. It unwraps to ErrTitleMismatch.
type MismatchError struct {
	Requested string
	Returned  string
}

// Error implements error.
func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: requested %q, got %q", ErrTitleMismatch, e.Requested, e.Returned)
}

// Unwrap returns ErrTitleMismatch.
func (e *MismatchError) Unwrap() error {
	return ErrTitleMismatch
}
