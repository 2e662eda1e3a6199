package storage

import "github.com/MrMjauh/chroma-storage/backend"

// Re-export the collaborator contracts so most consumers only import this
// package.
type (
	// Backend is an already-configured object-storage client the proxy
	// fronts. See [backend.Backend].
	Backend = backend.Backend

	// ByteStream is a finite sequence of byte chunks from a backend.
	// See [backend.ByteStream].
	ByteStream = backend.ByteStream
)
