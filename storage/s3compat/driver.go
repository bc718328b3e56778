// Package s3compat provides a storage.Store implementation over the
// S3-interoperability XML endpoint, authenticated with HMAC interop keys.
//
// It exists for callers that already hold interop keys instead of a
// service-account key file. Signed URLs produced by this driver use the
// SDK's query-string presigning rather than the RSA scheme, since interop
// keys cannot produce RSA signatures.
//
// Usage:
//
//	cfg := &storage.Config{
//		Provider:  storage.ProviderS3Compat,
//		Endpoint:  "storage.googleapis.com",
//		AccessKey: "GOOG1E...",
//		SecretKey: "...",
//		UseSSL:    true,
//	}
//	store, err := s3compat.New(ctx, cfg)
package s3compat

import (
	"context"
	"io"
	"net/http"
	"net/url"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/dshimy/gcstore/errs"
	"github.com/dshimy/gcstore/storage"
	"github.com/dshimy/gcstore/storage/signer"
)

// Driver is an interop-endpoint implementation of storage.Store.
// It is safe for concurrent use by multiple goroutines.
type Driver struct {
	client *miniogo.Client
	region string
}

// New connects to the interop endpoint using the provided Config and
// returns a Driver. It calls Ping to validate the connection before
// returning.
func New(ctx context.Context, cfg *storage.Config) (*Driver, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = signer.DefaultHost
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "interop access and secret keys are required")
	}

	client, err := miniogo.New(endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV2(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "failed to create interop client", err)
	}

	d := &Driver{client: client, region: cfg.Region}

	if err := d.Ping(ctx); err != nil {
		return nil, err
	}

	return d, nil
}

// --- storage.Store implementation ---

// Ping verifies the endpoint is reachable by listing buckets.
func (d *Driver) Ping(ctx context.Context) error {
	_, err := d.client.ListBuckets(ctx)
	if err != nil {
		return mapError(err, "ping failed")
	}
	return nil
}

// Close is a no-op — the SDK client holds no persistent connections.
func (d *Driver) Close() error {
	return nil
}

// CreateBucket creates a bucket. Predefined ACLs are not expressible on
// the interop endpoint and must be empty.
func (d *Driver) CreateBucket(ctx context.Context, bucket string, acl storage.ACL) (*storage.BucketInfo, error) {
	if acl != "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "predefined ACLs are not supported on the interop endpoint")
	}

	if err := d.client.MakeBucket(ctx, bucket, miniogo.MakeBucketOptions{Region: d.region}); err != nil {
		return nil, mapError(err, "failed to create bucket")
	}

	return &storage.BucketInfo{Name: bucket}, nil
}

// DeleteBucket removes an empty bucket.
func (d *Driver) DeleteBucket(ctx context.Context, bucket string) error {
	if err := d.client.RemoveBucket(ctx, bucket); err != nil {
		return mapError(err, "failed to delete bucket")
	}
	return nil
}

// ListBuckets returns all buckets accessible with the configured keys.
func (d *Driver) ListBuckets(ctx context.Context) ([]storage.BucketInfo, error) {
	raw, err := d.client.ListBuckets(ctx)
	if err != nil {
		return nil, mapError(err, "failed to list buckets")
	}

	buckets := make([]storage.BucketInfo, len(raw))
	for i, b := range raw {
		buckets[i] = storage.BucketInfo{
			Name:      b.Name,
			CreatedAt: b.CreationDate,
		}
	}
	return buckets, nil
}

// ListObjects returns objects in bucket that match opts.
func (d *Driver) ListObjects(ctx context.Context, bucket string, opts storage.ListOptions) ([]storage.ObjectInfo, error) {
	listOpts := miniogo.ListObjectsOptions{
		Prefix:     opts.Prefix,
		Recursive:  opts.Recursive,
		StartAfter: opts.PageToken,
	}

	var results []storage.ObjectInfo
	count := 0

	for obj := range d.client.ListObjects(ctx, bucket, listOpts) {
		if obj.Err != nil {
			return nil, mapError(obj.Err, "failed to list objects")
		}

		isDir := len(obj.Key) > 0 && obj.Key[len(obj.Key)-1] == '/'
		results = append(results, storage.ObjectInfo{
			Key:          obj.Key,
			Size:         obj.Size,
			ContentType:  obj.ContentType,
			ETag:         obj.ETag,
			LastModified: obj.LastModified,
			IsDir:        isDir,
		})

		count++
		if opts.Limit > 0 && count >= opts.Limit {
			break
		}
	}

	return results, nil
}

// GetObject opens a streaming handle to the object at key inside bucket.
// The caller MUST call Object.Close() after reading.
func (d *Driver) GetObject(ctx context.Context, bucket, key string) (storage.Object, error) {
	obj, err := d.client.GetObject(ctx, bucket, key, miniogo.GetObjectOptions{})
	if err != nil {
		return nil, mapError(err, "failed to get object")
	}

	stat, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, mapError(err, "failed to stat object after get")
	}

	return &object{
		ReadCloser: obj,
		info: &storage.ObjectInfo{
			Key:          key,
			Size:         stat.Size,
			ContentType:  stat.ContentType,
			ETag:         stat.ETag,
			Metadata:     stat.UserMetadata,
			LastModified: stat.LastModified,
		},
	}, nil
}

// PutObject uploads content from r to key inside bucket. Size is unknown
// up front, so the SDK streams in parts.
func (d *Driver) PutObject(ctx context.Context, bucket, key string, r io.Reader, opts storage.PutOptions) (*storage.ObjectInfo, error) {
	if opts.ACL != "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "predefined ACLs are not supported on the interop endpoint")
	}

	info, err := d.client.PutObject(ctx, bucket, key, r, -1, miniogo.PutObjectOptions{
		ContentType:  opts.ContentType,
		UserMetadata: opts.Metadata,
	})
	if err != nil {
		return nil, mapError(err, "failed to upload object")
	}

	return &storage.ObjectInfo{
		Key:          key,
		Size:         info.Size,
		ContentType:  opts.ContentType,
		ETag:         info.ETag,
		LastModified: info.LastModified,
	}, nil
}

// CopyObject copies srcKey in srcBucket to dstKey in dstBucket server-side.
func (d *Driver) CopyObject(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) (*storage.ObjectInfo, error) {
	info, err := d.client.CopyObject(ctx,
		miniogo.CopyDestOptions{Bucket: dstBucket, Object: dstKey},
		miniogo.CopySrcOptions{Bucket: srcBucket, Object: srcKey},
	)
	if err != nil {
		return nil, mapError(err, "failed to copy object")
	}

	return &storage.ObjectInfo{
		Key:          dstKey,
		Size:         info.Size,
		ETag:         info.ETag,
		LastModified: info.LastModified,
	}, nil
}

// DeleteObject removes the object at key inside bucket.
func (d *Driver) DeleteObject(ctx context.Context, bucket, key string) error {
	if err := d.client.RemoveObject(ctx, bucket, key, miniogo.RemoveObjectOptions{}); err != nil {
		return mapError(err, "failed to delete object")
	}
	return nil
}

// StatObject returns metadata for the object at key inside bucket
// without downloading its content.
func (d *Driver) StatObject(ctx context.Context, bucket, key string) (*storage.ObjectInfo, error) {
	stat, err := d.client.StatObject(ctx, bucket, key, miniogo.StatObjectOptions{})
	if err != nil {
		return nil, mapError(err, "failed to stat object")
	}

	return &storage.ObjectInfo{
		Key:          stat.Key,
		Size:         stat.Size,
		ContentType:  stat.ContentType,
		ETag:         stat.ETag,
		Metadata:     stat.UserMetadata,
		LastModified: stat.LastModified,
	}, nil
}

// SignedURL maps req onto the SDK's query-string presigning. Explicit RSA
// keys in req are rejected — RSA signing belongs to the gcs driver.
func (d *Driver) SignedURL(req *signer.SignRequest) (string, error) {
	if req == nil {
		return "", errs.New(errs.ErrKindInvalidInput, "nil sign request")
	}
	if req.PrivateKey != nil || req.GoogleAccessID != "" {
		return "", errs.New(errs.ErrKindInvalidInput, "interop presigning does not accept RSA credentials")
	}
	if req.Bucket == "" || req.Object == "" {
		return "", errs.New(errs.ErrKindInvalidInput, "bucket and object are required")
	}

	expires := req.Expires
	if expires == 0 {
		expires = signer.DefaultExpiry
	}
	if expires < 0 {
		return "", errs.New(errs.ErrKindInvalidInput, "expiration must be positive")
	}

	ctx := context.Background()
	var err error
	var u *url.URL

	switch req.Method {
	case "", http.MethodGet:
		u, err = d.client.PresignedGetObject(ctx, req.Bucket, req.Object, expires, req.Query)
	case http.MethodHead:
		u, err = d.client.PresignedHeadObject(ctx, req.Bucket, req.Object, expires, req.Query)
	case http.MethodPut:
		u, err = d.client.PresignedPutObject(ctx, req.Bucket, req.Object, expires)
	default:
		return "", errs.New(errs.ErrKindInvalidInput, "interop presigning supports GET, HEAD and PUT only")
	}
	if err != nil {
		return "", mapError(err, "failed to presign URL")
	}

	return u.String(), nil
}

// --- internal types ---

// object wraps an SDK GetObject response and exposes storage.Object.
type object struct {
	io.ReadCloser
	info *storage.ObjectInfo
}

func (o *object) Info() *storage.ObjectInfo {
	return o.info
}
