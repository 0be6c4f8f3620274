// Package pool implements the per-key connection multiplexer
// described in spec.md §4.4: it maps a request's URI to a bounded set
// of reusable [client.Client] connections, drives the redirection
// loop across hops, and surfaces WebSocket (or other protocol)
// upgrade hand-offs untouched.
//
// # Task model
//
// A [Pool] runs a single actor goroutine that owns its two indexes
// (clients_by_key / clients_by_handle, spec.md's ClientKey↔Handle
// bijection) exclusively — no mutex guards them, because nothing but
// that goroutine ever touches them. Callers of [Pool.SendRequest] run
// their own redirection loop concurrently; they only cross into the
// actor's goroutine for the brief acquire/register round trip needed
// to reserve or return a connection slot, so many requests against
// different keys proceed fully in parallel, and requests against the
// same, already-saturated key serialize on the existing client the
// way spec.md §5 describes.
//
// # Sending a request
//
//	p, err := pool.Start("default", pool.Options{MaxConnectionsPerKey: 4}, nil)
//	outcome, err := p.SendRequest(ctx, message.Request{
//		Method: "GET",
//		Target: "http://api.example.invalid/widgets",
//	}, pool.RequestOptions{})
package pool
