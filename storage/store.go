// Package storage defines the unified interface for object storage backends.
//
// All providers (the GCS JSON API, the S3-interoperability endpoint, …)
// implement the Store interface. Callers depend only on this package —
// never on a specific provider package.
//
// Usage:
//
//	cfg := storage.DefaultConfig("my-project", "keyfile.json")
//	store, err := gcs.New(ctx, cfg)
//	if err != nil { ... }
//	defer store.Close()
//
//	buckets, err := store.ListBuckets(ctx)
package storage

import (
	"context"
	"io"

	"github.com/dshimy/gcstore/storage/signer"
)

// Store is the single interface all object storage providers must implement.
type Store interface {
	// Ping verifies the storage backend is reachable with the configured
	// credentials.
	Ping(ctx context.Context) error

	// Close releases any held resources (connections, goroutines, etc.).
	Close() error

	// CreateBucket creates a bucket owned by the configured project.
	// acl may be empty for the project default.
	CreateBucket(ctx context.Context, bucket string, acl ACL) (*BucketInfo, error)

	// DeleteBucket removes an empty bucket.
	DeleteBucket(ctx context.Context, bucket string) error

	// ListBuckets returns all buckets owned by the configured project.
	ListBuckets(ctx context.Context) ([]BucketInfo, error)

	// ListObjects returns the objects in bucket that match opts.
	// Virtual directory entries (common prefixes) are included when
	// opts.Recursive is false.
	ListObjects(ctx context.Context, bucket string, opts ListOptions) ([]ObjectInfo, error)

	// GetObject opens a streaming handle to the object at key inside bucket.
	// The caller MUST call Object.Close() after reading.
	GetObject(ctx context.Context, bucket, key string) (Object, error)

	// PutObject uploads the content read from r to key inside bucket.
	PutObject(ctx context.Context, bucket, key string, r io.Reader, opts PutOptions) (*ObjectInfo, error)

	// CopyObject copies srcKey in srcBucket to dstKey in dstBucket on the
	// server side, without downloading the content.
	CopyObject(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) (*ObjectInfo, error)

	// DeleteObject removes the object at key inside bucket.
	DeleteObject(ctx context.Context, bucket, key string) error

	// StatObject returns metadata for the object at key inside bucket
	// without downloading its content.
	StatObject(ctx context.Context, bucket, key string) (*ObjectInfo, error)

	// SignedURL returns a time-limited URL authorizing one HTTP operation
	// on the object described by req, signed with the store's credentials
	// unless req carries an explicit key.
	SignedURL(req *signer.SignRequest) (string, error)
}
