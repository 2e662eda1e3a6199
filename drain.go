package storage

import (
	"errors"
	"io"

	"github.com/MrMjauh/chroma-storage/backend"
)

// drainStream consumes a backend byte stream into one contiguous buffer.
//
// A stream with zero chunks yields an empty buffer: the object exists and is
// empty. Any chunk error aborts the drain; bytes accumulated so far are
// discarded, never returned as a partial success.
func drainStream(s backend.ByteStream) ([]byte, error) {
	var buf []byte
	for {
		chunk, err := s.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return buf, nil
			}
			return nil, err
		}
		buf = append(buf, chunk...)
	}
}
