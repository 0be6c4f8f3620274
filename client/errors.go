package client

import (
	"errors"
	"fmt"
)

// Sentinel errors matching spec.md §4.3/§7's error taxonomy.
var (
	ErrConnectionClosed      = errors.New("client: connection closed")
	ErrReadTimeout           = errors.New("client: read timeout")
	ErrWriteTimeout          = errors.New("client: write timeout")
	ErrUnexpectedInboundData = errors.New("client: unexpected inbound data while idle")
	ErrClosed                = errors.New("client: closed")
)

// ConnectFailedError wraps the cause of a failed Open.
type ConnectFailedError struct{ Cause error }

func (e *ConnectFailedError) Error() string { return fmt.Sprintf("client: connect failed: %v", e.Cause) }
func (e *ConnectFailedError) Unwrap() error  { return e.Cause }

// InvalidDataError wraps a wire-parser protocol violation.
type InvalidDataError struct{ Cause error }

func (e *InvalidDataError) Error() string { return fmt.Sprintf("client: invalid data: %v", e.Cause) }
func (e *InvalidDataError) Unwrap() error  { return e.Cause }

// SendError wraps a transport-level write failure.
type SendError struct{ Cause error }

func (e *SendError) Error() string { return fmt.Sprintf("client: send: %v", e.Cause) }
func (e *SendError) Unwrap() error  { return e.Cause }

// RecvError wraps a transport-level read failure.
type RecvError struct{ Cause error }

func (e *RecvError) Error() string { return fmt.Sprintf("client: recv: %v", e.Cause) }
func (e *RecvError) Unwrap() error  { return e.Cause }

// SetoptsError wraps a socket-option failure (e.g. setting deadlines).
type SetoptsError struct{ Cause error }

func (e *SetoptsError) Error() string { return fmt.Sprintf("client: setopts: %v", e.Cause) }
func (e *SetoptsError) Unwrap() error  { return e.Cause }
