package client

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/mhttpgo/mhttp/finalize"
	"github.com/mhttpgo/mhttp/message"
	"github.com/mhttpgo/mhttp/reqlog"
	"github.com/mhttpgo/mhttp/wire"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Client owns one transport connection and drives it through
// request/response cycles one at a time. The zero value is not
// usable; construct with Open.
type Client struct {
	opts    Options
	conn    net.Conn
	logger  *reqlog.Logger
	slogger *slog.Logger

	requests    chan requestEnvelope
	reads       chan readResult
	readAdvance chan struct{}
	done        chan struct{}

	// upgraded is set from handle, only ever read from run's own
	// defer afterward; both happen on run's goroutine, so no
	// synchronization is needed.
	upgraded bool

	// exitErr is written once, from run's goroutine, before done is
	// closed; the happens-before edge that close(done) establishes
	// makes reading it afterward (via ExitErr) race-free.
	exitErr error
}

type requestEnvelope struct {
	ctx       context.Context
	req       message.Request
	reqOpts   RequestOptions
	requestID uuid.UUID
	reply     chan replyEnvelope
}

type replyEnvelope struct {
	outcome Outcome
	err     error
}

type readResult struct {
	data []byte
	err  error
}

// Open connects to opts.Host:opts.Port over opts.Transport, running
// the TLS handshake inline for Tls, and starts the client's goroutine.
func Open(ctx context.Context, opts Options) (*Client, error) {
	filled := DefaultOptions()
	if opts.Host != "" {
		filled.Host = opts.Host
	}
	if opts.Port != 0 {
		filled.Port = opts.Port
	}
	filled.Transport = opts.Transport
	if opts.ConnectionTimeout != 0 {
		filled.ConnectionTimeout = opts.ConnectionTimeout
	}
	if opts.ReadTimeout != 0 {
		filled.ReadTimeout = opts.ReadTimeout
	}
	filled.TLSConfig = opts.TLSConfig
	filled.Dialer = opts.Dialer
	filled.Header = opts.Header
	filled.Compression = opts.Compression
	if opts.LogRequests != nil {
		filled.LogRequests = opts.LogRequests
	}
	filled.Pool = opts.Pool
	filled.Credentials = opts.Credentials
	filled.CABundlePath = opts.CABundlePath
	filled.Logger = opts.Logger

	if err := validate.Struct(filled); err != nil {
		return nil, &ConnectFailedError{Cause: err}
	}

	dialer := filled.Dialer
	if dialer == nil {
		dialer = &net.Dialer{}
	}
	dialCtx, cancel := context.WithTimeout(ctx, filled.ConnectionTimeout)
	defer cancel()

	addr := net.JoinHostPort(filled.Host, fmt.Sprintf("%d", filled.Port))

	var conn net.Conn
	var err error
	if filled.Transport == Tls {
		tlsConf := filled.TLSConfig
		if tlsConf == nil {
			tlsConf = &tls.Config{ServerName: filled.Host}
		}
		if filled.CABundlePath != "" {
			pool, perr := loadCABundle(filled.CABundlePath)
			if perr != nil {
				return nil, &ConnectFailedError{Cause: perr}
			}
			tlsConf = tlsConf.Clone()
			tlsConf.RootCAs = pool
		}
		tlsDialer := &tls.Dialer{NetDialer: dialer, Config: tlsConf}
		conn, err = tlsDialer.DialContext(dialCtx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(dialCtx, "tcp", addr)
	}
	if err != nil {
		return nil, &ConnectFailedError{Cause: err}
	}

	logger := filled.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		opts:        filled,
		conn:        conn,
		logger:      reqlog.New(logger),
		slogger:     logger,
		requests:    make(chan requestEnvelope),
		reads:       make(chan readResult),
		readAdvance: make(chan struct{}),
		done:        make(chan struct{}),
	}

	go c.readLoop()
	go c.run()

	return c, nil
}

// loadCABundle reads a PEM bundle from path and returns a pool
// containing its certificates, per spec.md §3's CABundlePath.
func loadCABundle(path string) (*x509.CertPool, error) {
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("client: no certificates found in CA bundle %q", path)
	}
	return pool, nil
}

// SendRequest sends req over the connection and blocks until the
// response is fully parsed or an error occurs. At most one call is
// in flight per Client at a time; concurrent callers are serialized
// by the client's internal request channel.
func (c *Client) SendRequest(ctx context.Context, req message.Request, reqOpts RequestOptions) (Outcome, error) {
	requestID := reqOpts.RequestID
	if requestID == uuid.Nil {
		requestID = uuid.New()
	}

	reply := make(chan replyEnvelope, 1)
	env := requestEnvelope{
		ctx:       ctx,
		req:       req,
		reqOpts:   reqOpts,
		requestID: requestID,
		reply:     reply,
	}

	select {
	case c.requests <- env:
	case <-c.done:
		return Outcome{}, ErrClosed
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}

	select {
	case r := <-reply:
		return r.outcome, r.err
	case <-c.done:
		select {
		case r := <-reply:
			return r.outcome, r.err
		default:
			return Outcome{}, ErrClosed
		}
	}
}

// Close terminates the connection and its goroutines.
func (c *Client) Close() {
	select {
	case <-c.done:
	default:
		close(c.done)
		_ = c.conn.Close()
	}
}

// Done returns a channel closed once the client's connection has
// terminated, by either peer or local action. A pool uses this to
// prune its indexes promptly instead of discovering staleness lazily.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Key reports the connection identity this client was opened for.
func (c *Client) Key() Key {
	return Key{Host: c.opts.Host, Port: c.opts.Port, Transport: c.opts.Transport}
}

// ExitErr reports why the client terminated: nil for a graceful close
// (peer close while idle, or a Connection: close response), non-nil
// for an unrecoverable transport error. Only meaningful after Done()
// has fired.
func (c *Client) ExitErr() error {
	return c.exitErr
}

// readLoop continuously reads from the connection and forwards each
// chunk (or terminal error) to the owner goroutine. It exits after
// the first error, since the connection is then dead.
//
// After delivering each chunk it parks on readAdvance until the owner
// says it's safe to read again. This guarantees readLoop is never
// blocked inside conn.Read at the moment a caller hands the
// connection off to another owner (e.g. a WebSocket upgrade): the
// owner simply withholds the advance signal instead of releasing it.
func (c *Client) readLoop() {
	buf := make([]byte, 4096)
	for {
		n, err := c.conn.Read(buf)
		var chunk []byte
		if n > 0 {
			chunk = append([]byte(nil), buf[:n]...)
		}
		select {
		case c.reads <- readResult{data: chunk, err: err}:
		case <-c.done:
			return
		}
		if err != nil {
			return
		}

		select {
		case <-c.readAdvance:
		case <-c.done:
			return
		}
	}
}

// run is the Client's single goroutine: it owns c.conn and processes
// exactly one request at a time, per spec.md §4.3/§5.
func (c *Client) run() {
	defer func() {
		select {
		case <-c.done:
		default:
			close(c.done)
		}
		if !c.upgraded {
			_ = c.conn.Close()
		}
	}()

	for {
		select {
		case env, ok := <-c.requests:
			if !ok {
				return
			}
			terminate := c.handle(env)
			if terminate {
				return
			}

		case res := <-c.reads:
			if res.err != nil {
				// Peer closed while idle: normal termination, no
				// pending request to fail.
				if !errors.Is(res.err, io.EOF) {
					c.exitErr = classifyReadErr(res.err)
				}
				return
			}
			// Unsolicited data while passive is a fatal violation.
			c.exitErr = ErrUnexpectedInboundData
			c.slogger.Warn("client: unexpected inbound data while idle, aborting connection",
				"host", c.opts.Host, "port", c.opts.Port)
			return

		case <-c.done:
			return
		}
	}
}

// handle processes one request end-to-end and reports whether the
// connection must now be terminated.
func (c *Client) handle(env requestEnvelope) (terminate bool) {
	start := time.Now()

	finalized, err := finalize.Apply(env.req, finalize.Options{
		Compression:   c.opts.Compression,
		DefaultHeader: c.opts.Header,
		Host:          c.opts.Host,
		Port:          c.opts.Port,
		DefaultPort:   c.opts.Transport.DefaultPort(),
	})
	if err != nil {
		env.reply <- replyEnvelope{err: err}
		return false
	}

	if c.opts.Credentials != nil {
		finalized.Header = finalized.Header.AddIfMissing("Authorization", basicAuth(*c.opts.Credentials))
	}

	if env.reqOpts.Protocol != nil {
		finalized = env.reqOpts.Protocol.PrepareRequest(finalized)
	}

	encoded := wire.Encode(finalized)

	if err := c.conn.SetWriteDeadline(time.Now().Add(c.opts.ReadTimeout)); err != nil {
		c.exitErr = &SetoptsError{Cause: err}
		env.reply <- replyEnvelope{err: c.exitErr}
		return true
	}
	if _, err := c.conn.Write(encoded); err != nil {
		c.exitErr = classifyWriteErr(err)
		env.reply <- replyEnvelope{err: c.exitErr}
		return true
	}

	resp, tail, err := c.recvResponse(env.ctx)
	if err != nil {
		c.exitErr = err
		env.reply <- replyEnvelope{err: err}
		return true
	}

	if c.opts.LogRequests != nil && *c.opts.LogRequests {
		c.logger.Log(reqlog.Event{
			RequestID:    env.requestID,
			Direction:    reqlog.Outbound,
			Method:       finalized.Method,
			TargetString: finalized.Target,
			Status:       resp.Status,
			RequestTime:  time.Since(start),
			BodySize:     resp.BodySize(),
			Pool:         c.opts.Pool,
		})
	}

	if env.reqOpts.Protocol != nil && env.reqOpts.Protocol.Detect(*resp) {
		if verr := env.reqOpts.Protocol.Validate(*resp); verr != nil {
			env.reply <- replyEnvelope{err: verr}
			return true
		}
		// recvResponse returned without releasing readAdvance, so
		// readLoop is guaranteed parked here, not blocked in Read on
		// c.conn. Activate can safely take exclusive ownership.
		handle, aerr := env.reqOpts.Protocol.Activate(c.conn, tail)
		if aerr != nil {
			env.reply <- replyEnvelope{err: aerr}
			return true
		}
		c.upgraded = true
		env.reply <- replyEnvelope{outcome: Outcome{Response: *resp, Upgraded: true, Handle: handle}}
		// The protocol now owns c.conn; don't close it from run()'s
		// defer, and never release readLoop, which stays parked until
		// c.done closes and exits without touching c.conn again.
		return true
	}

	env.reply <- replyEnvelope{outcome: Outcome{Response: *resp}}

	terminate = resp.Header.HasConnectionClose()
	// Release readLoop so it resumes watching the connection, either
	// for the next response or for idle peer activity.
	select {
	case c.readAdvance <- struct{}{}:
	case <-c.done:
	}

	return terminate
}

// recvResponse drives the wire parser against c.reads until Done,
// respecting per-read deadlines and ctx cancellation.
func (c *Client) recvResponse(ctx context.Context) (*message.Response, []byte, error) {
	parser := wire.NewParser()

	for {
		if err := c.conn.SetReadDeadline(time.Now().Add(c.opts.ReadTimeout)); err != nil {
			return nil, nil, &SetoptsError{Cause: err}
		}

		select {
		case res := <-c.reads:
			if res.err != nil {
				return nil, nil, classifyReadErr(res.err)
			}
			resp, tail, perr := parser.Feed(res.data)
			if perr != nil {
				return nil, nil, &InvalidDataError{Cause: perr}
			}
			if resp != nil {
				// Don't release readAdvance: the response is done, so
				// readLoop must stay parked (not touching c.conn)
				// until handle decides whether to resume it or hand
				// the connection off to an upgrade protocol.
				return resp, tail, nil
			}
			// More needed: let readLoop fetch another chunk.
			select {
			case c.readAdvance <- struct{}{}:
			case <-ctx.Done():
				_ = c.conn.Close()
				return nil, nil, ctx.Err()
			case <-c.done:
				return nil, nil, ErrClosed
			}

		case <-ctx.Done():
			_ = c.conn.Close()
			return nil, nil, ctx.Err()

		case <-c.done:
			return nil, nil, ErrClosed
		}
	}
}

func classifyWriteErr(err error) error {
	if errors.Is(err, net.ErrClosed) || errors.Is(err, io.ErrClosedPipe) {
		return ErrConnectionClosed
	}
	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		return ErrWriteTimeout
	}
	return &SendError{Cause: err}
}

func classifyReadErr(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
		return ErrConnectionClosed
	}
	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		return ErrReadTimeout
	}
	return &RecvError{Cause: err}
}
