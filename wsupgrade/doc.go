// Package wsupgrade implements the RFC 6455 WebSocket upgrade
// handshake as a [client.UpgradeProtocol]: request mutation, response
// validation, and connection hand-off to a minimal [Endpoint].
//
// # Usage
//
//	proto, err := wsupgrade.New(wsupgrade.Options{})
//	outcome, err := c.SendRequest(ctx, req, client.RequestOptions{Protocol: proto})
//	if outcome.Upgraded {
//		ep := outcome.Handle.(*wsupgrade.Endpoint)
//		// ep now owns the raw connection.
//	}
package wsupgrade
