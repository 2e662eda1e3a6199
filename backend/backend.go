// Package backend defines the object-storage collaborator contract consumed
// by the storage proxy, along with the byte-stream abstraction backends hand
// back for reads.
//
// Implementations live in the subpackages memory, http, and oci. A Backend
// must support any number of independent concurrent operations; the proxy
// relies on it for retry policy and write consistency.
package backend

import "context"

// Backend is an already-configured object-storage client. Keys are opaque
// strings identifying one logical object each.
//
// Implementations classify failures by wrapping the sentinel errors in this
// package so the proxy can translate them without knowing the transport.
type Backend interface {
	// GetStream opens a fresh byte stream for the object at key. Each call
	// is an independent fetch; streams are finite and not restartable.
	// A missing object is reported by an error wrapping ErrNotFound.
	GetStream(ctx context.Context, key string) (ByteStream, error)

	// PutBytes stores data under key, overwriting any previous object.
	PutBytes(ctx context.Context, key string, data []byte) error

	// PutFile stores the contents of the local file at path under key.
	PutFile(ctx context.Context, key, path string) error
}

// ByteStream is a finite sequence of byte chunks pulled from a backend.
type ByteStream interface {
	// Next returns the next chunk, or (nil, io.EOF) once the stream is
	// exhausted. The returned slice is only valid until the next call to
	// Next; callers that retain chunk bytes must copy them. Any other error
	// aborts the stream.
	Next() ([]byte, error)

	// Close releases the underlying transport resources. It is safe to call
	// after Next has returned an error.
	Close() error
}
