package cache

import (
	"errors"
	"fmt"
)

// ErrUnavailable is returned when a cache backend cannot be reached.
// Callers usually fall back to [NullCache].
var ErrUnavailable = errors.New("cache unavailable")

type unavailableError struct {
	addr string
	err  error
}

func (e *unavailableError) Error() string {
	return fmt.Sprintf("cache at %s: %v", e.addr, e.err)
}

func (e *unavailableError) Unwrap() []error { return []error{ErrUnavailable, e.err} }
