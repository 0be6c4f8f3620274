package wsupgrade

import (
	"crypto/rand"
	"crypto/sha1"
	"encoding/base64"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/mhttpgo/mhttp/message"
)

// magicGUID is RFC 6455 §1.3's fixed accept-key salt.
const magicGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

// Sentinel errors matching spec.md §7's WebSocket taxonomy.
var (
	ErrMissingAccept = errors.New("wsupgrade: missing Sec-WebSocket-Accept")
	ErrAcceptMismatch = errors.New("wsupgrade: Sec-WebSocket-Accept mismatch")
)

// Options configures a handshake attempt.
type Options struct {
	Subprotocols []string
}

// Protocol implements client.UpgradeProtocol for the WebSocket
// upgrade handshake described in spec.md §4.5.
type Protocol struct {
	opts        Options
	nonce       [16]byte
	nonceBase64 string
}

// New generates a fresh 16-byte nonce and returns a ready-to-use Protocol.
func New(opts Options) (*Protocol, error) {
	p := &Protocol{opts: opts}
	if _, err := rand.Read(p.nonce[:]); err != nil {
		return nil, err
	}
	p.nonceBase64 = base64.StdEncoding.EncodeToString(p.nonce[:])
	return p, nil
}

// PrepareRequest appends the four upgrade headers and forces the
// method to GET, per spec.md §4.5.
func (p *Protocol) PrepareRequest(req message.Request) message.Request {
	req.Method = http.MethodGet
	req.Header = req.Header.Append("Connection", "Upgrade")
	req.Header = req.Header.Append("Upgrade", "websocket")
	req.Header = req.Header.Append("Sec-WebSocket-Version", "13")
	req.Header = req.Header.Append("Sec-WebSocket-Key", p.nonceBase64)
	if len(p.opts.Subprotocols) > 0 {
		req.Header = req.Header.Append("Sec-WebSocket-Protocol", strings.Join(p.opts.Subprotocols, " "))
	}
	return req
}

// Detect reports whether resp is a 101 Switching Protocols response.
func (p *Protocol) Detect(resp message.Response) bool {
	return resp.Status == http.StatusSwitchingProtocols
}

// ExpectedAccept computes the Sec-WebSocket-Accept value this
// handshake's nonce implies, per RFC 6455 §1.3.
func (p *Protocol) ExpectedAccept() string {
	sum := sha1.Sum([]byte(p.nonceBase64 + magicGUID))
	return base64.StdEncoding.EncodeToString(sum[:])
}

// Validate checks resp's Sec-WebSocket-Accept against ExpectedAccept.
func (p *Protocol) Validate(resp message.Response) error {
	accept, ok := resp.Header.Find("Sec-WebSocket-Accept")
	if !ok {
		return ErrMissingAccept
	}
	if accept != p.ExpectedAccept() {
		return ErrAcceptMismatch
	}
	return nil
}

// Activate hands the raw connection and any residual tail bytes to a
// new Endpoint. From this call on, the HTTP client no longer owns conn.
func (p *Protocol) Activate(conn net.Conn, tail []byte) (any, error) {
	return NewEndpoint(conn, tail), nil
}
