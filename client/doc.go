// Package client implements the connection-oriented HTTP/1.1 client
// state machine described in spec.md §4.3: one goroutine owns a
// single TCP or TLS connection, encodes and sends one request at a
// time, and incrementally parses the response off the wire.
//
// # Task model
//
// Per spec.md's Design Notes (§9, "Per-connection task isolation"),
// a [Client] is a goroutine reachable only through
// [Client.SendRequest] and [Client.Close]; no field is safe to touch
// from outside that goroutine. A dedicated reader goroutine feeds
// bytes back to the owner over a channel so that an unsolicited push
// from the peer while idle — a protocol violation per spec.md §4.3 —
// can be detected without racing the next request.
//
// # Opening a connection
//
//	c, err := client.Open(ctx, client.Options{
//		Host: "api.example.invalid",
//		Port: 443,
//		Transport: client.Tls,
//	})
//	outcome, err := c.SendRequest(ctx, req, client.RequestOptions{})
package client
