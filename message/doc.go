// Package message defines the wire-independent Request and Response
// value types shared by mhttp's client, pool, and wire codec packages.
//
// A [Request] is mutated only by the finalize step before it is sent;
// a [Response] is produced once by the wire parser and is read-only
// from that point on. Both carry a [header.Set] rather than
// [net/http.Header] to preserve field order and duplicate values.
package message
