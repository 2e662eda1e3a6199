package storage

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/MrMjauh/chroma-storage/backend"
	"github.com/MrMjauh/chroma-storage/flight"
)

// Proxy fronts an object-storage backend and coalesces concurrent reads.
//
// Get calls for the same key share a single backend fetch: at most one fetch
// per key is in flight at any instant, and every caller that arrives while it
// runs receives the identical buffer or the identical error kind. Distinct
// keys never block each other. GetStream, PutBytes, and PutFile are plain
// passthroughs with no coalescing.
//
// A Proxy is safe for concurrent use. All state is scoped to the instance;
// no teardown is required.
type Proxy struct {
	backend backend.Backend
	flights *flight.Registry[[]byte]
	logger  *slog.Logger
	metrics *Metrics
	limiter *rate.Limiter
}

// New wraps an already-configured backend. Which backend to wrap is the
// caller's concern; the proxy adds no configuration of its own beyond the
// given options.
func New(b backend.Backend, opts ...Option) *Proxy {
	p := &Proxy{
		backend: b,
		flights: flight.NewRegistry[[]byte](),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(p)
	}
	return p
}

// log returns the logger, falling back to a discard logger if nil.
func (p *Proxy) log() *slog.Logger {
	if p.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return p.logger
}

// Get returns the full contents of the object at key.
//
// Concurrent calls for the same key are coalesced into one backend fetch
// whose result is shared by every caller; the returned buffer must be
// treated as immutable. Once a fetch starts it runs to completion even if
// the caller that triggered it goes away, so ctx does not bound the shared
// fetch; deadlines, if any, belong to the backend or an outer caller.
//
// There is no caching across coalescing windows: after a call settles and
// its registration is retired, the next Get for the key fetches fresh.
func (p *Proxy) Get(ctx context.Context, key string) ([]byte, error) {
	// The fetch outlives any single caller; detach it from the triggering
	// caller's cancellation so joiners are never failed by a stranger's ctx.
	fetchCtx := context.WithoutCancel(ctx)

	call, joined := p.flights.Do(key, func() ([]byte, error) {
		return p.fetch(fetchCtx, key)
	})
	if joined {
		p.metrics.joinShared()
	}

	data, err := call.Join()
	p.flights.Retire(key, call)
	if err != nil {
		// Fetch failures arrive already translated and logged at the point
		// of detection; only a contained panic needs handling here.
		if errors.Is(err, flight.ErrPanicked) {
			err = mapBackendError(err)
			if !joined {
				p.log().Error("storage fetch panicked", "key", key, "err", err)
			}
		}
		return nil, err
	}
	return data, nil
}

// fetch is the body of one coalesced computation: a single backend fetch
// drained into one buffer. Failures are translated and logged here, once,
// regardless of how many callers share the outcome.
func (p *Proxy) fetch(ctx context.Context, key string) ([]byte, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			err = mapBackendError(err)
			p.log().Error("storage fetch rejected", "key", key, "err", err)
			return nil, err
		}
	}

	start := time.Now()
	done := p.metrics.fetchStarted()

	stream, err := p.backend.GetStream(ctx, key)
	if err != nil {
		err = mapBackendError(err)
		done(time.Since(start), err)
		p.log().Error("storage fetch failed", "key", key, "err", err)
		return nil, err
	}
	defer stream.Close()

	buf, err := drainStream(stream)
	if err != nil {
		err = mapBackendError(err)
		done(time.Since(start), err)
		p.log().Error("storage read failed", "key", key, "err", err)
		return nil, err
	}

	done(time.Since(start), nil)
	p.log().Debug("storage fetch complete", "key", key, "bytes", len(buf))
	return buf, nil
}

// GetStream opens a streaming read for the object at key, bypassing
// coalescing entirely. Streaming consumers need incremental delivery, which
// is incompatible with a single shared buffer; this is a deliberate scope
// boundary, not an oversight. Each call issues its own backend fetch.
func (p *Proxy) GetStream(ctx context.Context, key string) (ByteStream, error) {
	stream, err := p.backend.GetStream(ctx, key)
	if err != nil {
		err = mapBackendError(err)
		p.log().Error("storage stream open failed", "key", key, "err", err)
		return nil, err
	}
	return stream, nil
}

// PutBytes stores data under key. Writes are forwarded verbatim with no
// coalescing or locking; concurrent writes to the same key run independently
// and their interleaving is the backend's responsibility.
func (p *Proxy) PutBytes(ctx context.Context, key string, data []byte) error {
	if err := p.backend.PutBytes(ctx, key, data); err != nil {
		p.log().Error("storage put failed", "key", key, "err", err)
		return err
	}
	return nil
}

// PutFile stores the contents of the local file at path under key. Like
// PutBytes, it is a verbatim passthrough.
func (p *Proxy) PutFile(ctx context.Context, key, path string) error {
	if err := p.backend.PutFile(ctx, key, path); err != nil {
		p.log().Error("storage put failed", "key", key, "path", path, "err", err)
		return err
	}
	return nil
}

// Warm fetches the given keys concurrently through the coalesced read path,
// discarding the buffers. It returns the first fetch error, after all
// in-flight fetches have been joined. Keys already being fetched by other
// callers are shared, not re-fetched.
func (p *Proxy) Warm(ctx context.Context, keys ...string) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, key := range keys {
		g.Go(func() error {
			_, err := p.Get(ctx, key)
			return err
		})
	}
	return g.Wait()
}
