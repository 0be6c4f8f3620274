package pool

import (
	"github.com/mhttpgo/mhttp/client"
)

// Options configures a Pool. ClientOptions is merged into every
// client the pool spawns, with Host/Port/Transport always overridden
// per connection from the key being satisfied.
type Options struct {
	// ClientOptions is a template, not a validated struct: Host/Port
	// are always overridden per-key before a client is opened, so
	// they are deliberately absent here and validated later, at
	// client.Open time, against the merged, key-specific values.
	ClientOptions        client.Options `validate:"-"`
	MaxConnectionsPerKey int            `validate:"gte=1"`
	UseNetrc             bool
	CABundlePath         string
}

// DefaultOptions returns the spec.md §6 documented pool defaults.
func DefaultOptions() Options {
	return Options{MaxConnectionsPerKey: 1}
}

// RequestOptions configures a single Pool.SendRequest call. A nil
// FollowRedirections or MaxNbRedirections means "use the default";
// this is distinct from an explicit zero value (spec.md §8's boundary
// case, max_nb_redirections=0, must fail fast on the first 3xx).
type RequestOptions struct {
	FollowRedirections *bool
	MaxNbRedirections  *int
	Protocol           client.UpgradeProtocol
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
