package backend

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderStreamChunks(t *testing.T) {
	t.Parallel()

	payload := bytes.Repeat([]byte("abc"), 100)
	s := NewReaderStream(io.NopCloser(bytes.NewReader(payload)), 64)

	var got []byte
	for {
		chunk, err := s.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		require.LessOrEqual(t, len(chunk), 64)
		got = append(got, chunk...)
	}
	assert.Equal(t, payload, got)
	require.NoError(t, s.Close())
}

func TestReaderStreamEmpty(t *testing.T) {
	t.Parallel()

	s := NewReaderStream(io.NopCloser(strings.NewReader("")), 0)
	chunk, err := s.Next()
	assert.Nil(t, chunk)
	assert.ErrorIs(t, err, io.EOF)

	// The end of stream is sticky.
	_, err = s.Next()
	assert.ErrorIs(t, err, io.EOF)
}

type failingReader struct {
	data []byte
	err  error
	done bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, r.err
	}
	r.done = true
	return copy(p, r.data), nil
}

func (r *failingReader) Close() error { return nil }

func TestReaderStreamTransportError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	s := NewReaderStream(&failingReader{data: []byte("partial"), err: cause}, 32)

	chunk, err := s.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte("partial"), chunk)

	_, err = s.Next()
	assert.ErrorIs(t, err, ErrTransport)
	assert.Contains(t, err.Error(), "connection reset")

	// The failure is sticky too.
	_, err = s.Next()
	assert.ErrorIs(t, err, ErrTransport)
}
