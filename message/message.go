package message

import "github.com/mhttpgo/mhttp/header"

// Request is a not-yet-sent HTTP request. Target may be an absolute
// URI (scheme+host+port) or origin-form (path+query); the pool
// canonicalizes it before dispatch and rewrites it to origin-form
// before it is placed on the wire.
type Request struct {
	Method string
	Target string
	Header header.Set
	Body   []byte
}

// Internal carries out-of-band metadata the wire parser attaches to a
// Response that callers should not need to reconstruct themselves.
type Internal struct {
	// OriginalBodySize is the size of the body as it arrived on the
	// wire, before any decompression. Zero means "same as len(Body)".
	OriginalBodySize int64
}

// Response is a fully parsed HTTP response. It is produced once by
// the wire parser and never mutated afterward.
type Response struct {
	Version  string
	Status   int
	Reason   string
	Header   header.Set
	Body     []byte
	Internal Internal
}

// BodySize returns the size to report for logging: the
// pre-decompression size if the parser recorded one, else len(Body).
func (r Response) BodySize() int64 {
	if r.Internal.OriginalBodySize > 0 {
		return r.Internal.OriginalBodySize
	}
	return int64(len(r.Body))
}
