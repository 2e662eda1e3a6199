// Package memory provides an in-memory Backend for tests and lightweight
// deployments. Objects are stored in a mutex-guarded map and lost when the
// process exits.
package memory

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/MrMjauh/chroma-storage/backend"
)

// Backend is an in-memory object store.
type Backend struct {
	mu        sync.RWMutex
	objects   map[string][]byte
	chunkSize int
}

var _ backend.Backend = (*Backend)(nil)

// Option configures a Backend.
type Option func(*Backend)

// WithChunkSize sets the chunk size streams are served in. The default is
// [backend.DefaultChunkSize]; tests use small sizes to exercise multi-chunk
// reads.
func WithChunkSize(n int) Option {
	return func(b *Backend) {
		if n > 0 {
			b.chunkSize = n
		}
	}
}

// New creates an empty in-memory backend.
func New(opts ...Option) *Backend {
	b := &Backend{
		objects:   make(map[string][]byte),
		chunkSize: backend.DefaultChunkSize,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// GetStream serves a snapshot of the object at key. Each call observes the
// value as of the call; later writes do not affect open streams.
func (b *Backend) GetStream(ctx context.Context, key string) (backend.ByteStream, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", backend.ErrTransport, err)
	}

	b.mu.RLock()
	data, ok := b.objects[key]
	b.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", backend.ErrNotFound, key)
	}
	return &stream{data: data, chunkSize: b.chunkSize}, nil
}

// PutBytes stores a copy of data under key, replacing any previous object.
func (b *Backend) PutBytes(ctx context.Context, key string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", backend.ErrTransport, err)
	}

	cp := make([]byte, len(data))
	copy(cp, data)

	b.mu.Lock()
	b.objects[key] = cp
	b.mu.Unlock()
	return nil
}

// PutFile stores the contents of the local file at path under key.
func (b *Backend) PutFile(ctx context.Context, key, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", backend.ErrLocal, path, err)
	}
	return b.PutBytes(ctx, key, data)
}

// Delete removes the object at key. Missing keys are a no-op.
func (b *Backend) Delete(key string) {
	b.mu.Lock()
	delete(b.objects, key)
	b.mu.Unlock()
}

// Len returns the number of stored objects.
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.objects)
}

// stream serves a fixed byte slice in chunks. The slice is never mutated
// after Put, so no copy per chunk is needed.
type stream struct {
	data      []byte
	chunkSize int
	off       int
}

func (s *stream) Next() ([]byte, error) {
	if s.off >= len(s.data) {
		return nil, io.EOF
	}
	end := min(s.off+s.chunkSize, len(s.data))
	chunk := s.data[s.off:end]
	s.off = end
	return chunk, nil
}

func (s *stream) Close() error { return nil }
