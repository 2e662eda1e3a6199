// Package http provides a read-only Backend over a plain HTTP origin.
//
// Object keys are resolved as paths beneath a base URL; GET failures are
// classified onto the backend error vocabulary (404 → not found, other
// non-2xx statuses and transport failures → transport errors). Writes are
// not supported: origins such as CDN-fronted buckets are read paths only.
package http

import (
	"context"
	"fmt"
	nethttp "net/http"
	"net/url"
	"strings"

	"github.com/MrMjauh/chroma-storage/backend"
)

// Backend serves object reads from an HTTP origin.
type Backend struct {
	baseURL   string
	client    *nethttp.Client
	headers   nethttp.Header
	chunkSize int
}

var _ backend.Backend = (*Backend)(nil)

// Option configures a Backend.
type Option func(*Backend)

// WithClient sets the HTTP client used for requests.
func WithClient(client *nethttp.Client) Option {
	return func(b *Backend) {
		b.client = client
	}
}

// WithHeader sets a single header on each request.
func WithHeader(key, value string) Option {
	return func(b *Backend) {
		if b.headers == nil {
			b.headers = make(nethttp.Header)
		}
		b.headers.Set(key, value)
	}
}

// WithChunkSize sets the chunk size streams are served in.
func WithChunkSize(n int) Option {
	return func(b *Backend) {
		if n > 0 {
			b.chunkSize = n
		}
	}
}

// New creates a Backend rooted at baseURL. Keys are joined onto the base
// URL's path, so a backend at "https://cdn.example.com/objects" serves key
// "a/b" from "https://cdn.example.com/objects/a/b".
func New(baseURL string, opts ...Option) (*Backend, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	b := &Backend{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  nethttp.DefaultClient,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.client == nil {
		b.client = nethttp.DefaultClient
	}
	return b, nil
}

// GetStream issues a GET for the object at key.
func (b *Backend) GetStream(ctx context.Context, key string) (backend.ByteStream, error) {
	u := b.baseURL + "/" + strings.TrimLeft(key, "/")
	req, err := nethttp.NewRequestWithContext(ctx, nethttp.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", backend.ErrTransport, err)
	}
	for k, vals := range b.headers {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", backend.ErrTransport, err)
	}

	switch {
	case resp.StatusCode == nethttp.StatusNotFound, resp.StatusCode == nethttp.StatusGone:
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", backend.ErrNotFound, key)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		resp.Body.Close()
		return nil, fmt.Errorf("%w: unexpected status %d for %s", backend.ErrTransport, resp.StatusCode, key)
	}

	return backend.NewReaderStream(resp.Body, b.chunkSize), nil
}

// PutBytes is not supported; the origin is read-only.
func (b *Backend) PutBytes(ctx context.Context, key string, data []byte) error {
	return fmt.Errorf("%w: put over http", backend.ErrUnsupported)
}

// PutFile is not supported; the origin is read-only.
func (b *Backend) PutFile(ctx context.Context, key, path string) error {
	return fmt.Errorf("%w: put over http", backend.ErrUnsupported)
}
