//go:build integration

// Package integration exercises the storage proxy against a real OCI
// registry started with testcontainers.
//
// These tests require Docker. Run with: go test -tags=integration ./integration/...
package integration
