// Package filestore defines the interface for publishing rendered
// artifacts to an object storage backend.
//
// Providers (MinIO, S3-compatible servers) implement the Store interface.
// Callers depend only on this package — never on a specific provider
// package.
//
// Usage:
//
//	cfg := &filestore.Config{Endpoint: "localhost:9000", AccessKey: "...", SecretKey: "..."}
//	store, err := minio.New(ctx, cfg)
//	if err != nil { ... }
//	defer store.Close()
//
//	err = store.PutObject(ctx, "schema-docs", "prod/schema.sql", r, size, "text/plain")
package filestore

import (
	"context"
	"io"
)

// Store is the interface all artifact publishing providers implement.
type Store interface {
	// Ping verifies the storage backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any held resources.
	Close() error

	// EnsureBucket creates the bucket when it does not exist yet.
	EnsureBucket(ctx context.Context, bucket string) error

	// PutObject uploads size bytes from r to key inside bucket.
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) error
}

// Config holds all settings needed to connect to an object storage backend.
type Config struct {
	// Endpoint is the host:port of the storage server,
	// e.g. "localhost:9000" for local MinIO.
	Endpoint string `yaml:"endpoint"`

	// AccessKey is the access key ID (MinIO / S3 style).
	AccessKey string `yaml:"access_key"`

	// SecretKey is the secret access key.
	SecretKey string `yaml:"secret_key"`

	// UseSSL controls whether TLS is used for the connection.
	UseSSL bool `yaml:"use_ssl"`

	// Bucket is the bucket artifacts are published into.
	Bucket string `yaml:"bucket"`

	// Prefix is prepended to every object key, e.g. "prod".
	Prefix string `yaml:"prefix"`
}
