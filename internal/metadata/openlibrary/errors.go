package openlibrary

import (
	"errors"
	"fmt"
)

// Sentinel errors for Open Library requests.
var (
	ErrEmptyQuery  = errors.New("openlibrary: empty query")
	ErrRateLimited = errors.New("openlibrary: rate limited by server")
	ErrServer      = errors.New("openlibrary: server error")
	ErrBadResponse = errors.New("openlibrary: unexpected response")
)

// Error wraps a failed request with the operation and query.
type Error struct {
	Op    string
	Query string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("openlibrary %s %q: %v", e.Op, e.Query, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
