// Package header implements an ordered, case-insensitive multimap of
// HTTP header fields.
//
// Unlike [net/http.Header], a [Set] preserves insertion order and
// keeps duplicate names as distinct entries, which the request
// finalizer and wire codec both depend on (RFC 7230 §3.3.3 framing
// decisions read the header set in wire order).
//
// # Building a Set
//
//	var h header.Set
//	h = h.Append("Content-Type", "application/json")
//	h = h.Add("X-Trace-Id", "abc123") // prepended: seen first on lookup
//
// # Derived queries
//
// [Set.BodyFraming] implements the framing precedence from
// RFC 7230 §3.3.3: chunked transfer-encoding wins, then a valid
// Content-Length, then no body; an invalid or repeated
// Content-Length is an error.
package header
