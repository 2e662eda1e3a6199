// Package storage provides a request-coalescing proxy in front of a remote
// object-storage backend.
//
// When multiple callers concurrently request the same key, the [Proxy]
// executes exactly one backend fetch and shares its result among all of
// them, while requests for distinct keys proceed fully in parallel. Writes
// and streaming reads are forwarded to the backend unmodified.
//
// # Quick Start
//
// Wrap an already-configured backend and read through it:
//
//	p := storage.New(memory.New())
//	data, err := p.Get(ctx, "index/segment-0001")
//
// Concurrent Get calls for the same key share one fetch:
//
//	var g errgroup.Group
//	for range 16 {
//	    g.Go(func() error {
//	        _, err := p.Get(ctx, "index/segment-0001") // one backend fetch
//	        return err
//	    })
//	}
//
// # Backends
//
// The backend subpackages provide ready-made [Backend] implementations:
// memory (in-process store), http (read-only HTTP origin), and oci
// (OCI-registry-backed store). Any type satisfying [Backend] can be wrapped.
//
// # Error Classification
//
// Failures surface as one of three kinds, preserved across coalesced
// callers: [ErrNotFound], [ErrBackend], and [ErrInternal]. Classify with
// errors.Is.
package storage
