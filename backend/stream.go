package backend

import (
	"errors"
	"fmt"
	"io"
)

// DefaultChunkSize is the chunk size used by NewReaderStream when none is
// configured by the backend.
const DefaultChunkSize = 64 * 1024

// NewReaderStream adapts an io.ReadCloser into a ByteStream yielding chunks
// of at most chunkSize bytes. Read failures other than io.EOF are wrapped
// with ErrTransport. If chunkSize is <= 0, DefaultChunkSize is used.
func NewReaderStream(rc io.ReadCloser, chunkSize int) ByteStream {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &readerStream{rc: rc, buf: make([]byte, chunkSize)}
}

type readerStream struct {
	rc  io.ReadCloser
	buf []byte
	err error // sticky, returned once buffered bytes are drained
}

func (s *readerStream) Next() ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	for {
		n, err := s.rc.Read(s.buf)
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.err = io.EOF
			} else {
				s.err = fmt.Errorf("%w: %v", ErrTransport, err)
			}
			// A final partial chunk is delivered before the sticky error.
			if n > 0 {
				return s.buf[:n], nil
			}
			return nil, s.err
		}
		if n > 0 {
			return s.buf[:n], nil
		}
	}
}

func (s *readerStream) Close() error {
	return s.rc.Close()
}
