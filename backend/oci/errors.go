package oci

import (
	"errors"
	"fmt"
	"os"

	"oras.land/oras-go/v2/errdef"

	"github.com/MrMjauh/chroma-storage/backend"
)

// mapORASError translates low-level ORAS errors onto the backend error
// vocabulary.
func mapORASError(err error, key string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, backend.ErrNotFound), errors.Is(err, backend.ErrTransport):
		return err
	case errors.Is(err, errdef.ErrNotFound):
		return fmt.Errorf("%w: %s", backend.ErrNotFound, key)
	default:
		return fmt.Errorf("%w: %v", backend.ErrTransport, err)
	}
}

// readLocalFile reads a put source, classifying failures as local errors.
func readLocalFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", backend.ErrLocal, path, err)
	}
	return data, nil
}
