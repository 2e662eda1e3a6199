package oci

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"oras.land/oras-go/v2/content/memory"

	"github.com/MrMjauh/chroma-storage/backend"
)

func drain(t *testing.T, s backend.ByteStream) []byte {
	t.Helper()
	defer s.Close()

	var buf []byte
	for {
		chunk, err := s.Next()
		if errors.Is(err, io.EOF) {
			return buf
		}
		require.NoError(t, err)
		buf = append(buf, chunk...)
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b, err := New(memory.New(), WithChunkSize(8))
	require.NoError(t, err)

	payload := bytes.Repeat([]byte("object data "), 20)
	require.NoError(t, b.PutBytes(ctx, "segments/0001", payload))

	s, err := b.GetStream(ctx, "segments/0001")
	require.NoError(t, err)
	assert.Equal(t, payload, drain(t, s))
}

func TestPutGetCompressed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.New()

	writer, err := New(store, WithCompression(true))
	require.NoError(t, err)

	payload := bytes.Repeat([]byte("compressible "), 200)
	require.NoError(t, writer.PutBytes(ctx, "k", payload))

	// A reader without compression configured still decodes by media type.
	reader, err := New(store)
	require.NoError(t, err)
	s, err := reader.GetStream(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, payload, drain(t, s))
}

func TestPutIsIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b, err := New(memory.New())
	require.NoError(t, err)

	// Pushing identical content twice must not fail on existing blobs.
	require.NoError(t, b.PutBytes(ctx, "k", []byte("same")))
	require.NoError(t, b.PutBytes(ctx, "k", []byte("same")))

	s, err := b.GetStream(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("same"), drain(t, s))
}

func TestGetStreamNotFound(t *testing.T) {
	t.Parallel()

	b, err := New(memory.New())
	require.NoError(t, err)

	_, err = b.GetStream(context.Background(), "missing")
	assert.ErrorIs(t, err, backend.ErrNotFound)
	assert.Contains(t, err.Error(), "missing")
}

func TestPutFile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b, err := New(memory.New())
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "obj.bin")
	require.NoError(t, os.WriteFile(path, []byte("from disk"), 0o600))

	require.NoError(t, b.PutFile(ctx, "k", path))
	s, err := b.GetStream(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("from disk"), drain(t, s))
}

func TestPutFileMissingIsLocalError(t *testing.T) {
	t.Parallel()

	b, err := New(memory.New())
	require.NoError(t, err)

	err = b.PutFile(context.Background(), "k", filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, backend.ErrLocal)
}

func TestEmptyObject(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	b, err := New(memory.New(), WithCompression(true))
	require.NoError(t, err)

	// Empty objects are stored uncompressed even with compression on.
	require.NoError(t, b.PutBytes(ctx, "empty", nil))
	s, err := b.GetStream(ctx, "empty")
	require.NoError(t, err)
	assert.Empty(t, drain(t, s))
}

func TestTagForKeyIsStableAndDistinct(t *testing.T) {
	t.Parallel()

	assert.Equal(t, tagForKey("a/b"), tagForKey("a/b"))
	assert.NotEqual(t, tagForKey("a/b"), tagForKey("a/c"))
	assert.Regexp(t, `^k-[a-f0-9]{64}$`, tagForKey("any key at all // even odd ones"))
}
