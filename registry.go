package mhttp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/mhttpgo/mhttp/netrc"
	"github.com/mhttpgo/mhttp/pool"
)

// ErrPoolNotFound is returned by SendRequest/StopPool when the named
// pool was never started (or was already stopped).
var ErrPoolNotFound = errors.New("mhttp: pool not found")

// ErrPoolAlreadyStarted is returned by StartPool when id is already registered.
var ErrPoolAlreadyStarted = errors.New("mhttp: pool already started")

// pools is the registry's pool-id → pool handle mapping, spec.md
// §3/§6/§9's "process name derived from its id" made concrete: the
// map key itself is the name, since Go has no OTP-style process
// registry to derive a separate name from.
var pools sync.Map // PoolID -> *pool.Pool

// caBundlePath is process-global and immutable except through
// SetCABundlePath, per spec.md §5 "Shared resources".
var caBundlePath atomic.Pointer[string]

// netrcStore is loaded once via LoadNetrc; pools with UseNetrc unset
// or false never consult it.
var netrcStore atomic.Pointer[netrc.Store]

// SetCABundlePath sets the process-wide CA bundle path used for TLS
// verification by the clients of every pool started after this call.
// Pools already started keep the path they were started with.
func SetCABundlePath(path string) {
	caBundlePath.Store(&path)
}

// LoadNetrc parses the .netrc-formatted file at path and installs it
// as the process-wide credential store consulted by pools started
// with UseNetrc: true after this call. Pools already started keep
// the store they were started with.
func LoadNetrc(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("mhttp: load netrc: %w", err)
	}
	defer f.Close()

	store, err := netrc.Parse(f)
	if err != nil {
		return fmt.Errorf("mhttp: load netrc: %w", err)
	}
	netrcStore.Store(store)
	return nil
}

// StartPool registers and launches a new pool under id. It fails if a
// pool with that id is already registered.
func StartPool(id PoolID, opts PoolOptions) error {
	name := id.orDefault()
	if _, exists := pools.Load(name); exists {
		return ErrPoolAlreadyStarted
	}

	copts := opts.ClientOptions
	if path := caBundlePath.Load(); path != nil {
		copts.CABundlePath = *path
	}

	p, err := pool.Start(string(name), pool.Options{
		ClientOptions:        copts,
		MaxConnectionsPerKey: opts.MaxConnectionsPerKey,
		UseNetrc:             opts.UseNetrc,
		CABundlePath:         copts.CABundlePath,
	}, netrcStore.Load())
	if err != nil {
		return err
	}

	if _, loaded := pools.LoadOrStore(name, p); loaded {
		p.Stop()
		return ErrPoolAlreadyStarted
	}
	return nil
}

// StopPool stops the pool registered under id and removes it from
// the registry.
func StopPool(id PoolID) error {
	name := id.orDefault()
	v, ok := pools.LoadAndDelete(name)
	if !ok {
		return ErrPoolNotFound
	}
	v.(*pool.Pool).Stop()
	return nil
}

// SendRequest resolves opts.Pool (default "default") in the registry
// and delegates the request to it.
func SendRequest(ctx context.Context, req Request, opts RequestOptions) (Outcome, error) {
	name := opts.Pool.orDefault()
	v, ok := pools.Load(name)
	if !ok {
		return Outcome{}, ErrPoolNotFound
	}
	return v.(*pool.Pool).SendRequest(ctx, req, opts.toPoolOptions())
}
