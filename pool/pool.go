package pool

import (
	"context"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"

	"github.com/mhttpgo/mhttp/client"
	"github.com/mhttpgo/mhttp/message"
	"github.com/mhttpgo/mhttp/netrc"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// redirectRewrites lists the status codes RFC 7231 §6.4 assigns
// method/body-rewrite semantics to; other 3xx codes are returned to
// the caller as final responses rather than followed.
var redirectRewrites = map[int]bool{
	http.StatusMovedPermanently:  true, // 301
	http.StatusFound:             true, // 302
	http.StatusSeeOther:          true, // 303
	http.StatusTemporaryRedirect: true, // 307
	http.StatusPermanentRedirect: true, // 308
}

// handle pairs a live client with the key it was opened for; it also
// serves as pool.clients_by_handle's identity (pointer equality).
type handle struct {
	c   *client.Client
	key client.Key
}

type acquireReq struct {
	key   client.Key
	reply chan acquireResp
}

type acquireResp struct {
	mustOpen bool
	h        *handle
}

type registerReq struct {
	key client.Key
	h   *handle // nil if the caller's Open attempt failed
}

type exitNotice struct{ h *handle }

type stopReq struct{ reply chan struct{} }

type countReq struct {
	key   client.Key
	reply chan int
}

// Pool is a single-key-space connection multiplexer. The zero value
// is not usable; construct with Start.
type Pool struct {
	id      string
	opts    Options
	netrc   *netrc.Store
	slogger *slog.Logger

	acquireCh  chan acquireReq
	registerCh chan registerReq
	exitCh     chan exitNotice
	stopCh     chan stopReq
	countCh    chan countReq
	stopped    chan struct{}

	clientsByKey    map[client.Key][]*handle
	clientsByHandle map[*handle]client.Key
	pending         map[client.Key]int
	waiters         map[client.Key][]chan acquireResp
}

// Start validates opts, fills documented defaults, and launches the
// pool's actor goroutine. netrcStore may be nil even if opts.UseNetrc
// is set, in which case credential lookup is always a miss.
func Start(id string, opts Options, netrcStore *netrc.Store) (*Pool, error) {
	filled := DefaultOptions()
	if opts.MaxConnectionsPerKey != 0 {
		filled.MaxConnectionsPerKey = opts.MaxConnectionsPerKey
	}
	filled.ClientOptions = opts.ClientOptions
	filled.UseNetrc = opts.UseNetrc
	filled.CABundlePath = opts.CABundlePath

	if err := validate.Struct(filled); err != nil {
		return nil, err
	}

	logger := filled.ClientOptions.Logger
	if logger == nil {
		logger = slog.Default()
	}

	p := &Pool{
		id:              id,
		opts:            filled,
		netrc:           netrcStore,
		slogger:         logger,
		acquireCh:       make(chan acquireReq),
		registerCh:      make(chan registerReq),
		exitCh:          make(chan exitNotice),
		stopCh:          make(chan stopReq),
		countCh:         make(chan countReq),
		stopped:         make(chan struct{}),
		clientsByKey:    make(map[client.Key][]*handle),
		clientsByHandle: make(map[*handle]client.Key),
		pending:         make(map[client.Key]int),
		waiters:         make(map[client.Key][]chan acquireResp),
	}

	go p.run()

	return p, nil
}

// Stop closes every client the pool owns and terminates its actor
// goroutine. Idempotent.
func (p *Pool) Stop() {
	reply := make(chan struct{})
	select {
	case p.stopCh <- stopReq{reply: reply}:
		<-reply
	case <-p.stopped:
	}
}

// ConnectionCount reports how many live clients the pool currently
// holds for key. Intended for tests and diagnostics; ordinary callers
// never need to inspect the pool's indexes directly.
func (p *Pool) ConnectionCount(key client.Key) int {
	reply := make(chan int, 1)
	select {
	case p.countCh <- countReq{key: key, reply: reply}:
	case <-p.stopped:
		return 0
	}
	select {
	case n := <-reply:
		return n
	case <-p.stopped:
		return 0
	}
}

// run is the pool's actor goroutine: it is the sole mutator of
// clientsByKey/clientsByHandle, per spec.md §5's "mutated only from
// the pool's own task" invariant.
func (p *Pool) run() {
	for {
		select {
		case req := <-p.acquireCh:
			if resp, ok := p.tryAcquire(req.key); ok {
				req.reply <- resp
			} else {
				p.waiters[req.key] = append(p.waiters[req.key], req.reply)
			}

		case reg := <-p.registerCh:
			if p.pending[reg.key] > 0 {
				p.pending[reg.key]--
			}
			if reg.h != nil {
				p.clientsByKey[reg.key] = append(p.clientsByKey[reg.key], reg.h)
				p.clientsByHandle[reg.h] = reg.key
			}
			p.wake(reg.key)

		case notice := <-p.exitCh:
			if cause := notice.h.c.ExitErr(); cause != nil {
				p.slogger.Warn("pool: client exited with error, pruning",
					"pool", p.id, "host", notice.h.key.Host, "port", notice.h.key.Port, "error", cause)
			}
			key, ok := p.clientsByHandle[notice.h]
			if ok {
				delete(p.clientsByHandle, notice.h)
				list := p.clientsByKey[key]
				for i, hh := range list {
					if hh == notice.h {
						list = append(list[:i], list[i+1:]...)
						break
					}
				}
				if len(list) == 0 {
					delete(p.clientsByKey, key)
				} else {
					p.clientsByKey[key] = list
				}
			}
			p.wake(key)

		case cr := <-p.countCh:
			cr.reply <- len(p.clientsByKey[cr.key])

		case sr := <-p.stopCh:
			for _, list := range p.clientsByKey {
				for _, h := range list {
					h.c.Close()
				}
			}
			close(p.stopped)
			sr.reply <- struct{}{}
			return
		}
	}
}

// tryAcquire evaluates spec.md §4.4 step 6 against the pool's current
// state. It must only ever be called from run's goroutine.
func (p *Pool) tryAcquire(key client.Key) (acquireResp, bool) {
	existing := p.clientsByKey[key]
	if len(existing)+p.pending[key] < p.opts.MaxConnectionsPerKey {
		p.pending[key]++
		return acquireResp{mustOpen: true}, true
	}
	if len(existing) > 0 {
		return acquireResp{h: existing[rand.Intn(len(existing))]}, true
	}
	return acquireResp{}, false
}

// wake resolves as many queued waiters for key as the current state allows.
func (p *Pool) wake(key client.Key) {
	for len(p.waiters[key]) > 0 {
		resp, ok := p.tryAcquire(key)
		if !ok {
			return
		}
		w := p.waiters[key][0]
		p.waiters[key] = p.waiters[key][1:]
		w <- resp
	}
}

// monitor waits for a client's connection to terminate and reports it
// to the actor so the indexes are pruned within finite time, per
// spec.md §8 invariant 4.
func (p *Pool) monitor(h *handle) {
	<-h.c.Done()
	select {
	case p.exitCh <- exitNotice{h: h}:
	case <-p.stopped:
	}
}

// acquireClient performs spec.md §4.4 step 6: reserve or reuse a slot
// via the actor, opening a fresh connection outside the actor's
// goroutine when a reservation is granted.
func (p *Pool) acquireClient(ctx context.Context, key client.Key, creds *client.Credentials) (*handle, error) {
	reply := make(chan acquireResp, 1)
	select {
	case p.acquireCh <- acquireReq{key: key, reply: reply}:
	case <-p.stopped:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var resp acquireResp
	select {
	case resp = <-reply:
	case <-p.stopped:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if !resp.mustOpen {
		return resp.h, nil
	}

	copts := p.opts.ClientOptions
	copts.Host = key.Host
	copts.Port = key.Port
	copts.Transport = key.Transport
	copts.Pool = p.id
	copts.CABundlePath = p.opts.CABundlePath
	if creds != nil {
		copts.Credentials = creds
	}

	c, err := client.Open(ctx, copts)
	if err != nil {
		select {
		case p.registerCh <- registerReq{key: key, h: nil}:
		case <-p.stopped:
		}
		return nil, &ClientError{Cause: err}
	}

	h := &handle{c: c, key: key}
	select {
	case p.registerCh <- registerReq{key: key, h: h}:
	case <-p.stopped:
		// The actor is gone; nothing will ever prune this handle, so
		// close it here instead of leaking the connection.
		c.Close()
		return nil, ErrClosed
	}
	go p.monitor(h)

	return h, nil
}

// SendRequest implements spec.md §4.4's per-request algorithm:
// canonicalize, derive a key, acquire a client, delegate, and follow
// redirections until a final response, an upgrade, or the budget is
// exhausted.
func (p *Pool) SendRequest(ctx context.Context, req message.Request, reqOpts RequestOptions) (client.Outcome, error) {
	canonical, err := canonicalizeTarget(req.Target)
	if err != nil {
		return client.Outcome{}, ErrInvalidTarget
	}

	follow := boolOr(reqOpts.FollowRedirections, true)
	remaining := intOr(reqOpts.MaxNbRedirections, 5)
	requestID := uuid.New()

	current := req
	currentURL := canonical

	for {
		transport, ok := transportForScheme(currentURL.Scheme)
		if !ok {
			return client.Outcome{}, ErrInvalidTarget
		}

		var creds *client.Credentials
		portOverride := 0
		if p.opts.UseNetrc && p.netrc != nil {
			if entry, found := p.netrc.Lookup(currentURL.Hostname()); found {
				creds = &client.Credentials{User: entry.User, Password: entry.Password}
				portOverride = entry.PortOverride
			}
		}

		port := transport.DefaultPort()
		if portOverride != 0 {
			port = portOverride
		}
		if portStr := currentURL.Port(); portStr != "" {
			if n, err := strconv.Atoi(portStr); err == nil {
				port = n
			}
		}

		key := client.Key{Host: currentURL.Hostname(), Port: port, Transport: transport}

		h, err := p.acquireClient(ctx, key, creds)
		if err != nil {
			return client.Outcome{}, err
		}

		sendTarget := currentURL.EscapedPath()
		if sendTarget == "" {
			sendTarget = "/"
		}
		if currentURL.RawQuery != "" {
			sendTarget += "?" + currentURL.RawQuery
		}

		outReq := current
		outReq.Target = sendTarget

		outcome, err := h.c.SendRequest(ctx, outReq, client.RequestOptions{
			Protocol:  reqOpts.Protocol,
			RequestID: requestID,
		})
		if err != nil {
			return client.Outcome{}, &ClientError{Cause: err}
		}

		if outcome.Upgraded {
			return outcome, nil
		}

		status := outcome.Response.Status
		if follow && status >= 300 && status < 400 && redirectRewrites[status] {
			loc, ok := outcome.Response.Header.Find("Location")
			if !ok {
				return outcome, nil
			}
			if remaining <= 0 {
				return client.Outcome{}, ErrTooManyRedirections
			}
			remaining--

			next, err := currentURL.Parse(loc)
			if err != nil {
				return client.Outcome{}, &ClientError{Cause: err}
			}

			if status == http.StatusSeeOther {
				current.Method = http.MethodGet
				current.Body = nil
				current.Header = current.Header.Remove("Content-Length", "Transfer-Encoding")
			}
			if !sameSite(currentURL, next) {
				current.Header = current.Header.Remove("Authorization")
			}

			currentURL = next
			continue
		}

		return outcome, nil
	}
}

func canonicalizeTarget(target string) (*url.URL, error) {
	u, err := url.Parse(target)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, ErrInvalidTarget
	}
	return u, nil
}

func transportForScheme(scheme string) (client.Transport, bool) {
	switch strings.ToLower(scheme) {
	case "http", "ws":
		return client.Tcp, true
	case "https", "wss":
		return client.Tls, true
	default:
		return 0, false
	}
}

// sameSite reports whether a and b share a registrable domain, per
// RFC 7231 §6.4's implied credential-stripping rule for cross-origin
// redirect hops. Hosts publicsuffix cannot classify (IPs, single-label
// hosts used in tests) fall back to an exact host comparison.
func sameSite(a, b *url.URL) bool {
	ea, erra := publicsuffix.EffectiveTLDPlusOne(a.Hostname())
	eb, errb := publicsuffix.EffectiveTLDPlusOne(b.Hostname())
	if erra != nil || errb != nil {
		return strings.EqualFold(a.Hostname(), b.Hostname())
	}
	return strings.EqualFold(ea, eb)
}
