// Package wire implements the HTTP/1.1 message grammar: encoding a
// [message.Request] to bytes, and incrementally parsing a byte stream
// into a [message.Response].
//
// spec.md names this codec as a deliberately external collaborator,
// consumed through an opaque encode/parse contract; this package is
// the one concrete implementation of that contract mhttp ships,
// behind the [Parser] type so [client.Client] never depends on
// [net/http]'s own response reader.
//
// # Parsing
//
// [NewParser] returns a [Parser] with an empty internal buffer. Feed
// it chunks as they arrive from the socket:
//
//	p := wire.NewParser()
//	for {
//		resp, tail, err := p.Feed(chunk)
//		if err != nil {
//			return err // protocol violation
//		}
//		if resp != nil {
//			// resp is complete; tail holds any bytes read past the
//			// message boundary (e.g. the start of the next response,
//			// or a WebSocket frame after a 101).
//			break
//		}
//		chunk = readMore()
//	}
package wire
