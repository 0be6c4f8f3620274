// Package finalize applies the client-level header/host/compression/
// length fixups spec.md's RequestFinalizer describes, in the required
// order: compression, default headers, Host, Content-Length.
package finalize
