package finalize

import (
	"fmt"
	"strconv"

	"golang.org/x/net/http/httpguts"

	"github.com/mhttpgo/mhttp/header"
	"github.com/mhttpgo/mhttp/message"
)

// Options carries the subset of client.Options the finalizer needs.
type Options struct {
	Compression   bool
	DefaultHeader header.Set
	Host          string
	Port          int
	DefaultPort   int // 80 for Tcp, 443 for Tls
}

// Apply returns a new request with the finalizer's four steps applied
// in order: compression, default headers, Host, Content-Length. It
// never mutates req.Header's backing array.
func Apply(req message.Request, opts Options) (message.Request, error) {
	h := req.Header[:len(req.Header):len(req.Header)]

	if opts.Compression && !h.Contains("Accept-Encoding") {
		h = h.Append("Accept-Encoding", "gzip")
	}

	// Add prepends, so walk the configured defaults back to front:
	// prepending the last one first leaves the first one closest to
	// the front, matching configured order on the wire.
	for i := len(opts.DefaultHeader) - 1; i >= 0; i-- {
		p := opts.DefaultHeader[i]
		if !httpguts.ValidHeaderFieldValue(p.Value) {
			return message.Request{}, fmt.Errorf("finalize: invalid default header %q: %w", p.Name, ErrInvalidHeaderValue)
		}
		h = h.Add(p.Name, p.Value)
	}

	hostValue := opts.Host
	if opts.Port != opts.DefaultPort {
		hostValue = opts.Host + ":" + strconv.Itoa(opts.Port)
	}
	h = h.Remove("Host")
	h = h.Add("Host", hostValue)

	if len(req.Body) > 0 && !h.Contains("Content-Length") && !h.Contains("Transfer-Encoding") {
		h = h.Append("Content-Length", strconv.Itoa(len(req.Body)))
	}

	req.Header = h
	return req, nil
}
