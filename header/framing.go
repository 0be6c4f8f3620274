package header

import (
	"errors"
	"strconv"
)

// Framing describes how a message body's length is determined.
type Framing int

const (
	// FramingNone means the message carries no body.
	FramingNone Framing = iota
	// FramingFixed means the body length is given by Content-Length.
	FramingFixed
	// FramingChunked means the body uses chunked transfer-encoding.
	FramingChunked
)

var (
	// ErrContentLengthNotFound is returned by ContentLength when no
	// Content-Length header is present.
	ErrContentLengthNotFound = errors.New("header: content-length not found")
	// ErrContentLengthInvalid is returned by ContentLength when the
	// header value is not a valid non-negative integer.
	ErrContentLengthInvalid = errors.New("header: content-length invalid")
	// ErrContentLengthMultiple is returned by ContentLength when more
	// than one Content-Length header is present.
	ErrContentLengthMultiple = errors.New("header: multiple content-length headers")
	// ErrInvalidIntermediaryChunked is returned by BodyFraming when
	// "chunked" appears in Transfer-Encoding but not as the last
	// coding. RFC 7230 §3.3.3 requires the connection be closed.
	ErrInvalidIntermediaryChunked = errors.New("header: chunked transfer-encoding not last")
)

// ContentLength parses the Content-Length header, applying spec.md's
// error taxonomy: NotFound, Invalid, or Multiple.
func (s Set) ContentLength() (int64, error) {
	values := s.FindAll("Content-Length")
	switch len(values) {
	case 0:
		return 0, ErrContentLengthNotFound
	case 1:
		n, err := strconv.ParseInt(values[0], 10, 64)
		if err != nil || n < 0 {
			return 0, ErrContentLengthInvalid
		}
		return n, nil
	default:
		return 0, ErrContentLengthMultiple
	}
}

// BodyFraming applies RFC 7230 §3.3.3's precedence: a Transfer-Encoding
// ending in "chunked" wins; "chunked" anywhere else is an error; else a
// valid Content-Length; else no body. An invalid or repeated
// Content-Length is returned as ContentLength's error.
func (s Set) BodyFraming() (Framing, int64, error) {
	te := s.TransferEncoding()
	if len(te) > 0 {
		last := te[len(te)-1]
		if last == "chunked" {
			return FramingChunked, 0, nil
		}
		for _, tok := range te {
			if tok == "chunked" {
				return FramingNone, 0, ErrInvalidIntermediaryChunked
			}
		}
	}

	n, err := s.ContentLength()
	switch {
	case err == nil:
		return FramingFixed, n, nil
	case errors.Is(err, ErrContentLengthNotFound):
		return FramingNone, 0, nil
	default:
		return FramingNone, 0, err
	}
}
