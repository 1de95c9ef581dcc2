package kakaku

import (
	"errors"
	"fmt"
)

// ErrMisaligned is returned when the item name and release date cells of a
// page cannot be paired up one to one.
var ErrMisaligned = errors.New("listing cells are misaligned")

// NetworkError is a failed page download, either the transport failed (Err
// is set) or the server answered with a non-2xx status.
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %s", e.URL, e.Err.Error())
	}
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// ParseError is a row that passed the standard filter but is missing another
// required field. It aborts the extraction of its page.
type ParseError struct {
	Row  int
	Rule string
	Text string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse row %d: %s not found in %q", e.Row, e.Rule, e.Text)
}
