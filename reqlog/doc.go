// Package reqlog implements the structured per-request log line
// spec.md §4.6 describes, plus a human-readable formatter for
// request time and body size.
//
// Every event carries a domain, an event kind, and a [github.com/google/uuid.UUID]
// request id minted once per top-level SendRequest call so every hop
// of a redirect chain (and the client that ultimately served it)
// share one correlation id.
package reqlog
