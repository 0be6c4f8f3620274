package mhttp

import (
	"github.com/mhttpgo/mhttp/client"
	"github.com/mhttpgo/mhttp/header"
	"github.com/mhttpgo/mhttp/message"
	"github.com/mhttpgo/mhttp/pool"
)

// Re-exports of the types callers need without reaching into mhttp's
// internal packages directly, mirroring how the teacher's root
// package exposed its client subpackage's surface via thin wrappers.
type (
	Request         = message.Request
	Response        = message.Response
	Header          = header.Set
	HeaderPair      = header.Pair
	Outcome         = client.Outcome
	UpgradeProtocol = client.UpgradeProtocol
	ClientOptions   = client.Options
	Credentials     = client.Credentials
)

// PoolID names a pool in the process-wide registry. The zero value
// resolves to "default".
type PoolID string

const defaultPoolID PoolID = "default"

func (id PoolID) orDefault() PoolID {
	if id == "" {
		return defaultPoolID
	}
	return id
}

// PoolOptions configures a pool started with StartPool. It carries
// the ClientOptions merged into every connection the pool spawns.
type PoolOptions struct {
	ClientOptions        ClientOptions
	MaxConnectionsPerKey int
	UseNetrc             bool
}

// RequestOptions configures a single SendRequest call against the
// registry. Pool selects which named pool serves the request; the
// remaining fields are forwarded to that pool's own request options.
type RequestOptions struct {
	Pool               PoolID
	FollowRedirections *bool
	MaxNbRedirections  *int
	Protocol           UpgradeProtocol
}

func (o RequestOptions) toPoolOptions() pool.RequestOptions {
	return pool.RequestOptions{
		FollowRedirections: o.FollowRedirections,
		MaxNbRedirections:  o.MaxNbRedirections,
		Protocol:           o.Protocol,
	}
}
