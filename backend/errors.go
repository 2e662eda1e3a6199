package backend

import "errors"

// Sentinel errors backends wrap to classify failures. The proxy translates
// these into its caller-facing error kinds.
var (
	// ErrNotFound is wrapped when no object exists under the requested key.
	ErrNotFound = errors.New("backend: object not found")

	// ErrTransport is wrapped for transport or storage failures, transient
	// or permanent.
	ErrTransport = errors.New("backend: transport failure")

	// ErrLocal is wrapped for failures on the local side of an operation,
	// such as reading the source file of a PutFile. It must never surface
	// from a remote read stream.
	ErrLocal = errors.New("backend: local error")

	// ErrUnsupported is returned by backends that do not implement an
	// operation, such as writes on a read-only backend.
	ErrUnsupported = errors.New("backend: operation not supported")
)
