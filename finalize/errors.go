package finalize

import "errors"

// ErrInvalidHeaderValue is returned when a configured default header
// value is not a valid HTTP header field value.
var ErrInvalidHeaderValue = errors.New("finalize: invalid header field value")
