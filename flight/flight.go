// Package flight coalesces concurrent work keyed by string.
//
// A [Registry] tracks at most one live [Call] per key. The first caller for a
// key starts the work; every caller that arrives before the call is retired
// joins it and observes the identical outcome. Unlike
// golang.org/x/sync/singleflight, calls start eagerly, remain joinable after
// they settle (until explicitly retired), and retirement is checked against
// the call's identity so a stale retire can never remove a newer call
// registered under the same key.
package flight

import (
	"errors"
	"fmt"
	"sync"
)

// ErrPanicked is wrapped into the result of a call whose function panicked.
// The panic is contained: joiners receive this error instead of deadlocking.
var ErrPanicked = errors.New("flight: call panicked")

// Call is a single execution of a function whose outcome is shared by every
// joiner. A Call settles exactly once; its result is memoized and handed out
// unchanged to any number of Join calls, before or after settlement.
type Call[V any] struct {
	done chan struct{}

	// Written once by run before done is closed, read-only afterwards.
	value V
	err   error
}

// Join blocks until the call settles and returns the shared outcome.
// On success the returned value is shared by all joiners; for slice or
// pointer results callers must treat it as immutable.
func (c *Call[V]) Join() (V, error) {
	<-c.done
	return c.value, c.err
}

// Done returns a channel that is closed once the call has settled.
func (c *Call[V]) Done() <-chan struct{} {
	return c.done
}

func (c *Call[V]) run(fn func() (V, error)) {
	defer func() {
		if r := recover(); r != nil {
			c.err = fmt.Errorf("%w: %v", ErrPanicked, r)
		}
		close(c.done)
	}()
	c.value, c.err = fn()
}

// Registry maps keys to in-flight calls. The zero value is not usable; create
// one with [NewRegistry]. A Registry holds no global state and needs no
// teardown: entries are transient, inserted on first demand and removed by
// Retire once their call has settled.
type Registry[V any] struct {
	mu    sync.Mutex
	calls map[string]*Call[V]
}

// NewRegistry returns an empty registry.
func NewRegistry[V any]() *Registry[V] {
	return &Registry[V]{calls: make(map[string]*Call[V])}
}

// Do returns the call registered under key, starting fn in its own goroutine
// when no call is in flight. joined reports whether an existing call was
// shared instead of a new one started.
//
// The lock is held only across the map lookup and insert, never while fn
// runs, so calls for distinct keys proceed fully in parallel. fn runs to
// completion once started regardless of how many callers wait on the result.
func (r *Registry[V]) Do(key string, fn func() (V, error)) (c *Call[V], joined bool) {
	r.mu.Lock()
	if c, ok := r.calls[key]; ok {
		r.mu.Unlock()
		return c, true
	}
	c = &Call[V]{done: make(chan struct{})}
	r.calls[key] = c
	r.mu.Unlock()

	go c.run(fn)
	return c, false
}

// Retire removes the entry for key only if it still refers to c, and reports
// whether an entry was removed.
//
// Joiners of the same call all retire it after settlement; the identity check
// makes every retire after the first a no-op. Without it, a slow joiner's
// retire could delete a newer call registered under the same key after the
// first retire, forcing that call's joiners into a spurious re-fetch.
func (r *Registry[V]) Retire(key string, c *Call[V]) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.calls[key]; ok && cur == c {
		delete(r.calls, key)
		return true
	}
	return false
}

// Len returns the number of in-flight (not yet retired) calls.
func (r *Registry[V]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// Contains reports whether a call is registered under key.
func (r *Registry[V]) Contains(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.calls[key]
	return ok
}
