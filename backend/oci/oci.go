// Package oci provides a Backend that stores objects as single-layer OCI
// artifacts in any ORAS target: a remote registry, an OCI layout directory,
// or an in-memory store for tests.
//
// Each object becomes a manifest tagged by a digest of its key, with the
// object bytes as the sole layer. Layers are optionally zstd-compressed on
// put; reads always honor the layer media type, so compressed and
// uncompressed objects can coexist.
package oci

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/opencontainers/go-digest"
	"github.com/opencontainers/image-spec/specs-go"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	oras "oras.land/oras-go/v2"
	"oras.land/oras-go/v2/errdef"

	"github.com/MrMjauh/chroma-storage/backend"
)

// Media types and annotations for stored objects.
const (
	// ArtifactType identifies object manifests written by this backend.
	ArtifactType = "application/vnd.chroma.storage.object.v1"

	// MediaTypeObject is the layer media type for raw object bytes.
	MediaTypeObject = "application/vnd.chroma.storage.object.v1.data"

	// MediaTypeObjectZstd is the layer media type for zstd-compressed
	// object bytes.
	MediaTypeObjectZstd = MediaTypeObject + "+zstd"

	// AnnotationKey records the original object key on the manifest.
	AnnotationKey = "vnd.chroma.storage.object.key"
)

// Backend stores objects in an ORAS target.
type Backend struct {
	target    oras.Target
	chunkSize int
	compress  bool
	encoder   *zstd.Encoder
}

var _ backend.Backend = (*Backend)(nil)

// Option configures a Backend.
type Option func(*Backend)

// WithChunkSize sets the chunk size read streams are served in.
func WithChunkSize(n int) Option {
	return func(b *Backend) {
		if n > 0 {
			b.chunkSize = n
		}
	}
}

// WithCompression enables zstd compression of object layers on put. Reads
// are unaffected: the layer media type decides decompression.
func WithCompression(enabled bool) Option {
	return func(b *Backend) {
		b.compress = enabled
	}
}

// New creates a Backend over target, typically a *remote.Repository or a
// content store from oras-go.
func New(target oras.Target, opts ...Option) (*Backend, error) {
	b := &Backend{
		target:    target,
		chunkSize: backend.DefaultChunkSize,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.compress {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, fmt.Errorf("create zstd encoder: %w", err)
		}
		b.encoder = enc
	}
	return b, nil
}

// tagForKey maps an opaque object key onto a valid OCI tag. Keys may contain
// characters tags cannot, so the tag is a digest of the key.
func tagForKey(key string) string {
	return "k-" + digest.FromString(key).Encoded()
}

// GetStream resolves the manifest tagged for key and streams its data layer.
func (b *Backend) GetStream(ctx context.Context, key string) (backend.ByteStream, error) {
	desc, err := b.target.Resolve(ctx, tagForKey(key))
	if err != nil {
		return nil, mapORASError(err, key)
	}

	manifest, err := b.fetchManifest(ctx, desc)
	if err != nil {
		return nil, mapORASError(err, key)
	}
	if len(manifest.Layers) != 1 {
		return nil, fmt.Errorf("%w: object manifest for %s has %d layers, want 1",
			backend.ErrTransport, key, len(manifest.Layers))
	}
	layer := manifest.Layers[0]

	rc, err := b.target.Fetch(ctx, layer)
	if err != nil {
		return nil, mapORASError(err, key)
	}

	if layer.MediaType == MediaTypeObjectZstd {
		dec, err := zstd.NewReader(rc)
		if err != nil {
			rc.Close()
			return nil, fmt.Errorf("%w: open zstd layer for %s: %v", backend.ErrTransport, key, err)
		}
		return &decodedStream{
			ByteStream: backend.NewReaderStream(dec.IOReadCloser(), b.chunkSize),
			blob:       rc,
		}, nil
	}

	return backend.NewReaderStream(rc, b.chunkSize), nil
}

func (b *Backend) fetchManifest(ctx context.Context, desc ocispec.Descriptor) (*ocispec.Manifest, error) {
	rc, err := b.target.Fetch(ctx, desc)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	var manifest ocispec.Manifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return nil, fmt.Errorf("decode object manifest: %w", err)
	}
	return &manifest, nil
}

// PutBytes stores data under key, replacing whatever the key's tag pointed
// at before.
func (b *Backend) PutBytes(ctx context.Context, key string, data []byte) error {
	payload := data
	mediaType := MediaTypeObject
	if b.encoder != nil && len(data) > 0 {
		payload = b.encoder.EncodeAll(data, nil)
		mediaType = MediaTypeObjectZstd
	}

	layerDesc := ocispec.Descriptor{
		MediaType: mediaType,
		Digest:    digest.FromBytes(payload),
		Size:      int64(len(payload)),
	}
	if err := b.push(ctx, layerDesc, payload); err != nil {
		return fmt.Errorf("push object layer: %w", mapORASError(err, key))
	}

	configDesc, err := b.pushEmptyConfig(ctx)
	if err != nil {
		return fmt.Errorf("push config: %w", mapORASError(err, key))
	}

	manifest := ocispec.Manifest{
		Versioned:    specs.Versioned{SchemaVersion: 2},
		MediaType:    ocispec.MediaTypeImageManifest,
		ArtifactType: ArtifactType,
		Config:       configDesc,
		Layers:       []ocispec.Descriptor{layerDesc},
		Annotations:  map[string]string{AnnotationKey: key},
	}
	raw, err := json.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("encode object manifest: %w", err)
	}
	manifestDesc := ocispec.Descriptor{
		MediaType:    ocispec.MediaTypeImageManifest,
		ArtifactType: ArtifactType,
		Digest:       digest.FromBytes(raw),
		Size:         int64(len(raw)),
	}
	if err := b.push(ctx, manifestDesc, raw); err != nil {
		return fmt.Errorf("push object manifest: %w", mapORASError(err, key))
	}

	if err := b.target.Tag(ctx, manifestDesc, tagForKey(key)); err != nil {
		return fmt.Errorf("tag object: %w", mapORASError(err, key))
	}
	return nil
}

// PutFile stores the contents of the local file at path under key.
func (b *Backend) PutFile(ctx context.Context, key, path string) error {
	data, err := readLocalFile(path)
	if err != nil {
		return err
	}
	return b.PutBytes(ctx, key, data)
}

// push writes a blob, treating an already-present blob as success.
func (b *Backend) push(ctx context.Context, desc ocispec.Descriptor, data []byte) error {
	err := b.target.Push(ctx, desc, bytes.NewReader(data))
	if err != nil && !errors.Is(err, errdef.ErrAlreadyExists) {
		return err
	}
	return nil
}

// pushEmptyConfig pushes the empty JSON config blob required by OCI manifests.
func (b *Backend) pushEmptyConfig(ctx context.Context) (ocispec.Descriptor, error) {
	config := []byte("{}")
	desc := ocispec.Descriptor{
		MediaType: ocispec.MediaTypeEmptyJSON,
		Digest:    digest.FromBytes(config),
		Size:      int64(len(config)),
	}
	if err := b.push(ctx, desc, config); err != nil {
		return ocispec.Descriptor{}, err
	}
	return desc, nil
}

// decodedStream closes both the zstd decoder chain and the underlying layer
// fetch when done.
type decodedStream struct {
	backend.ByteStream
	blob io.Closer
}

func (s *decodedStream) Close() error {
	err := s.ByteStream.Close()
	if cerr := s.blob.Close(); err == nil {
		err = cerr
	}
	return err
}
