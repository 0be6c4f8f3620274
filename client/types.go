package client

import (
	"crypto/tls"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/mhttpgo/mhttp/header"
	"github.com/mhttpgo/mhttp/message"
)

// Transport is the wire transport a Client connects over.
type Transport int

const (
	Tcp Transport = iota
	Tls
)

// DefaultPort returns the transport's conventional default port,
// used by finalize.Apply and Key derivation.
func (t Transport) DefaultPort() int {
	if t == Tls {
		return 443
	}
	return 80
}

func (t Transport) String() string {
	if t == Tls {
		return "tls"
	}
	return "tcp"
}

// Key identifies a set of interchangeable connections: exact host,
// exact port, exact transport. Host is assumed already
// IDNA-normalized by the caller (the pool's URI layer).
type Key struct {
	Host      string
	Port      int
	Transport Transport
}

// Credentials is HTTP Basic auth to inject via a client's owning pool.
type Credentials struct {
	User     string
	Password string
}

// Options configures a single Client connection.
type Options struct {
	Host              string        `validate:"required"`
	Port              int           `validate:"gte=1,lte=65535"`
	Transport         Transport
	ConnectionTimeout time.Duration `validate:"gt=0"`
	ReadTimeout       time.Duration `validate:"gt=0"`
	TLSConfig         *tls.Config
	Dialer            *net.Dialer
	Header            header.Set
	Compression       bool
	// LogRequests defaults to true (spec.md §4.3); nil means "unset",
	// distinct from an explicit false, so Open can tell the two apart
	// the same way pool.RequestOptions.FollowRedirections does.
	LogRequests  *bool
	Pool         string
	Credentials  *Credentials
	CABundlePath string
	Logger       *slog.Logger
}

// DefaultOptions returns the spec.md §4.3 documented defaults.
func DefaultOptions() Options {
	logRequests := true
	return Options{
		Host:              "localhost",
		Port:              80,
		Transport:         Tcp,
		ConnectionTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		LogRequests:       &logRequests,
	}
}

// UpgradeProtocol lets a caller request that a client detect and hand
// off a protocol-switching (101) response, per spec.md §4.5/§6.
type UpgradeProtocol interface {
	// PrepareRequest mutates req to request the upgrade (e.g. the
	// WebSocket handshake headers).
	PrepareRequest(req message.Request) message.Request
	// Detect reports whether resp is a successful upgrade to this protocol.
	Detect(resp message.Response) bool
	// Validate checks resp against the handshake this protocol
	// started; a non-nil error aborts the upgrade.
	Validate(resp message.Response) error
	// Activate transfers ownership of conn (with any already-read
	// tail bytes) to the protocol and returns an opaque handle.
	Activate(conn net.Conn, tail []byte) (any, error)
}

// RequestOptions configures a single SendRequest call.
type RequestOptions struct {
	Protocol UpgradeProtocol
	// RequestID correlates a single logical request (and any
	// redirect hops a pool drives on its behalf) across log lines.
	// The zero UUID means "generate one".
	RequestID uuid.UUID
}

// Outcome is the result of a successful SendRequest: either a normal
// response, or a response plus a handle to the protocol the
// connection was handed off to.
type Outcome struct {
	Response message.Response
	Upgraded bool
	Handle   any
}
