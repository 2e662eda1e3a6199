package storage

import (
	"errors"
	"fmt"

	"github.com/MrMjauh/chroma-storage/backend"
	"github.com/MrMjauh/chroma-storage/flight"
)

// Sentinel errors classifying every failure a Proxy returns.
var (
	// ErrNotFound is returned when no object exists under the requested key.
	ErrNotFound = errors.New("storage: object not found")

	// ErrBackend is returned for transport or storage failures, transient or
	// permanent. The proxy performs no retries; retry policy belongs to the
	// backend or the caller.
	ErrBackend = errors.New("storage: backend failure")

	// ErrInternal signals a state that should be unreachable, such as a
	// local-only error surfacing from a remote stream or a panic inside a
	// fetch. It indicates a programming error, not a backend condition.
	ErrInternal = errors.New("storage: internal error")
)

// mapBackendError translates a backend-level error into the proxy's
// caller-facing kinds. The backend's classification is preserved so a
// missing object is never masked as a generic failure.
func mapBackendError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrBackend), errors.Is(err, ErrInternal):
		// Already translated.
		return err
	case errors.Is(err, backend.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	case errors.Is(err, backend.ErrLocal):
		// Local-only errors have no business on a remote read path.
		return fmt.Errorf("%w: %v", ErrInternal, err)
	case errors.Is(err, flight.ErrPanicked):
		return fmt.Errorf("%w: %v", ErrInternal, err)
	default:
		return fmt.Errorf("%w: %v", ErrBackend, err)
	}
}
