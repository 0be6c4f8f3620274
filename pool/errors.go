package pool

import (
	"errors"
	"fmt"
)

// Sentinel errors matching spec.md §4.4/§7's error taxonomy.
var (
	ErrInvalidTarget       = errors.New("pool: invalid target")
	ErrTooManyRedirections = errors.New("pool: too many redirections")
	ErrClosed              = errors.New("pool: closed")
)

// ClientError wraps a client-layer failure surfaced mid-request; the
// pool never retries it, per spec.md §4.4's supervision policy.
type ClientError struct{ Cause error }

func (e *ClientError) Error() string { return fmt.Sprintf("pool: client error: %v", e.Cause) }
func (e *ClientError) Unwrap() error { return e.Cause }
