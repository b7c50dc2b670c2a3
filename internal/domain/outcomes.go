package domain

import (
	"errors"
	"fmt"
)

// Distinct non-error outcomes of the feed pipeline. They are sentinel errors
// so callers can branch with errors.Is, but each one means "nothing to
// chart", not "something broke" — the UI shows a different message for each.
var (
	// ErrEmptyFeed: the export returned zero bytes or only whitespace.
	ErrEmptyFeed = errors.New("feed is empty")
	// ErrNoUsableRows: the feed parsed but no row had the required fields.
	ErrNoUsableRows = errors.New("no usable rows in feed")
	// ErrNoValidDates: rows were present but none carried a parseable date.
	ErrNoValidDates = errors.New("no valid dates in feed rows")
)

// TransportError classifies a failed call to a collaborator (feed fetch,
// store query/write). It is surfaced to the caller as-is and never retried
// here; retry policy belongs to the transport.
type TransportError struct {
	Op     string // "feed_fetch", "feedback_write", ...
	Status int    // HTTP status when applicable, 0 otherwise
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
