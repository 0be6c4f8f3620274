// Package mhttp is the public surface of a small HTTP/1.1 client
// library: a connection-oriented client, a per-pool connection
// multiplexer, and an optional WebSocket upgrade hand-off, per
// spec.md §1.
//
// # Registry
//
// Pools are named process-global resources, per spec.md §3/§6's
// Registry: start one with [StartPool], send requests against it by
// name with [SendRequest], and stop it with [StopPool]. The CA bundle
// path used for TLS verification across every client is process-wide
// and set once with [SetCABundlePath].
//
//	mhttp.StartPool("default", mhttp.PoolOptions{MaxConnectionsPerKey: 4})
//	defer mhttp.StopPool("default")
//
//	outcome, err := mhttp.SendRequest(ctx, mhttp.Request{
//		Method: "GET",
//		Target: "https://api.example.invalid/widgets",
//	}, mhttp.RequestOptions{})
package mhttp
