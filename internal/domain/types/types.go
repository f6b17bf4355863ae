// Package types contains the error taxonomy and small value types shared
// across the application.
package types

import (
	"errors"
	"time"
)

// Error kinds. Every error surfaced at the request boundary should match one
// of these via errors.Is; anything else is treated as internal.
var (
	ErrNotFound   = errors.New("not found")
	ErrValidation = errors.New("validation failed")
	ErrIO         = errors.New("io failure")
	ErrParse      = errors.New("parse failure")
	// ErrPrecondition marks requests refused because a feature is switched off.
	ErrPrecondition = errors.New("precondition failed")
)

// kindError is a named sentinel that unwraps to one of the kinds above.
type kindError struct {
	msg  string
	kind error
}

func (e *kindError) Error() string { return e.msg }
func (e *kindError) Unwrap() error { return e.kind }

// Tag returns a new sentinel with its own message that still satisfies
// errors.Is(err, kind).
func Tag(kind error, msg string) error {
	return &kindError{msg: msg, kind: kind}
}

// KindOf reports which taxonomy kind err belongs to, or nil.
func KindOf(err error) error {
	for _, k := range []error{ErrNotFound, ErrValidation, ErrParse, ErrIO, ErrPrecondition} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

// Point is one bucket of a time series.
type Point struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}
