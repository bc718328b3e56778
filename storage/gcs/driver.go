// Package gcs provides a Google Cloud Storage implementation of
// storage.Store over the JSON API.
//
// Usage:
//
//	cfg := storage.DefaultConfig("my-project", "keyfile.json")
//	store, err := gcs.New(ctx, cfg)
//	if err != nil { ... }
//	defer store.Close()
//
//	buckets, err := store.ListBuckets(ctx)
package gcs

import (
	"context"
	"io"
	"net/url"
	"time"

	gstorage "google.golang.org/api/storage/v1"
	"google.golang.org/api/option"

	"github.com/dshimy/gcstore/errs"
	"github.com/dshimy/gcstore/storage"
	"github.com/dshimy/gcstore/storage/signer"
)

// Driver is a GCS JSON API implementation of storage.Store.
// It is safe for concurrent use by multiple goroutines.
type Driver struct {
	svc       *gstorage.Service
	projectID string
	signer    *signer.URLSigner
}

// New connects to GCS using the provided Config and returns a Driver.
// It calls Ping to validate the connection before returning.
//
// The service-account key referenced by the config authenticates API calls
// and doubles as the ambient signing credential for SignedURL.
func New(ctx context.Context, cfg *storage.Config) (*Driver, error) {
	if cfg.ProjectID == "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "project ID is required")
	}

	opts := []option.ClientOption{
		option.WithScopes(gstorage.DevstorageFullControlScope),
	}

	// Signing needs the raw key material; API auth only needs the client.
	// A key that authenticates but cannot sign surfaces as
	// ErrKindSigningUnavailable on the first SignedURL call.
	var cred *signer.Credential
	switch {
	case len(cfg.CredentialsJSON) > 0:
		opts = append(opts, option.WithCredentialsJSON(cfg.CredentialsJSON))
		cred, _ = signer.CredentialsFromJSON(cfg.CredentialsJSON)
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
		cred, _ = signer.CredentialsFromFile(cfg.CredentialsFile)
	}

	signerCfg := &signer.Config{}
	if cred != nil {
		signerCfg.Source = cred
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
		if u, err := url.Parse(cfg.Endpoint); err == nil && u.Host != "" {
			signerCfg.Scheme = u.Scheme
			signerCfg.Host = u.Host
		}
	}

	svc, err := gstorage.NewService(ctx, opts...)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "failed to create storage service", err)
	}

	d := &Driver{
		svc:       svc,
		projectID: cfg.ProjectID,
		signer:    signer.New(signerCfg),
	}

	if err := d.Ping(ctx); err != nil {
		return nil, err
	}

	return d, nil
}

// --- storage.Store implementation ---

// Ping verifies the service is reachable by listing a single bucket.
func (d *Driver) Ping(ctx context.Context) error {
	_, err := d.svc.Buckets.List(d.projectID).MaxResults(1).Context(ctx).Do()
	if err != nil {
		return mapError(err, "ping failed")
	}
	return nil
}

// Close is a no-op — the discovery client holds no persistent connections.
func (d *Driver) Close() error {
	return nil
}

// CreateBucket creates a bucket in the configured project.
func (d *Driver) CreateBucket(ctx context.Context, bucket string, acl storage.ACL) (*storage.BucketInfo, error) {
	call := d.svc.Buckets.Insert(d.projectID, &gstorage.Bucket{Name: bucket})
	if acl != "" {
		call = call.PredefinedAcl(acl.String())
	}

	created, err := call.Context(ctx).Do()
	if err != nil {
		return nil, mapError(err, "failed to create bucket")
	}

	info := bucketInfo(created)
	return &info, nil
}

// DeleteBucket removes an empty bucket.
func (d *Driver) DeleteBucket(ctx context.Context, bucket string) error {
	if err := d.svc.Buckets.Delete(bucket).Context(ctx).Do(); err != nil {
		return mapError(err, "failed to delete bucket")
	}
	return nil
}

// ListBuckets returns all buckets owned by the configured project.
func (d *Driver) ListBuckets(ctx context.Context) ([]storage.BucketInfo, error) {
	var buckets []storage.BucketInfo
	pageToken := ""

	for {
		call := d.svc.Buckets.List(d.projectID).Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		res, err := call.Do()
		if err != nil {
			return nil, mapError(err, "failed to list buckets")
		}
		for _, b := range res.Items {
			buckets = append(buckets, bucketInfo(b))
		}

		if pageToken = res.NextPageToken; pageToken == "" {
			break
		}
	}

	return buckets, nil
}

// ListObjects returns objects in bucket that match opts, following page
// tokens until opts.Limit or exhaustion.
func (d *Driver) ListObjects(ctx context.Context, bucket string, opts storage.ListOptions) ([]storage.ObjectInfo, error) {
	var results []storage.ObjectInfo
	pageToken := opts.PageToken

	for {
		call := d.svc.Objects.List(bucket).Context(ctx)
		if opts.Prefix != "" {
			call = call.Prefix(opts.Prefix)
		}
		if !opts.Recursive {
			call = call.Delimiter("/")
		}
		if opts.Limit > 0 {
			call = call.MaxResults(int64(opts.Limit))
		}
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		res, err := call.Do()
		if err != nil {
			return nil, mapError(err, "failed to list objects")
		}

		for _, prefix := range res.Prefixes {
			results = append(results, storage.ObjectInfo{Key: prefix, Size: -1, IsDir: true})
		}
		for _, o := range res.Items {
			results = append(results, objectInfo(o))
		}

		if opts.Limit > 0 && len(results) >= opts.Limit {
			return results[:opts.Limit], nil
		}
		if pageToken = res.NextPageToken; pageToken == "" {
			break
		}
	}

	return results, nil
}

// GetObject opens a streaming handle to the object at key inside bucket.
// The caller MUST call Object.Close() after reading.
func (d *Driver) GetObject(ctx context.Context, bucket, key string) (storage.Object, error) {
	meta, err := d.svc.Objects.Get(bucket, key).Context(ctx).Do()
	if err != nil {
		return nil, mapError(err, "failed to stat object before get")
	}

	res, err := d.svc.Objects.Get(bucket, key).Context(ctx).Download()
	if err != nil {
		return nil, mapError(err, "failed to download object")
	}

	info := objectInfo(meta)
	return &object{ReadCloser: res.Body, info: &info}, nil
}

// PutObject uploads content from r to key inside bucket.
func (d *Driver) PutObject(ctx context.Context, bucket, key string, r io.Reader, opts storage.PutOptions) (*storage.ObjectInfo, error) {
	obj := &gstorage.Object{
		Name:        key,
		ContentType: opts.ContentType,
		Metadata:    opts.Metadata,
	}

	call := d.svc.Objects.Insert(bucket, obj).Media(r)
	if opts.ACL != "" {
		call = call.PredefinedAcl(opts.ACL.String())
	}

	created, err := call.Context(ctx).Do()
	if err != nil {
		return nil, mapError(err, "failed to upload object")
	}

	info := objectInfo(created)
	return &info, nil
}

// CopyObject copies srcKey in srcBucket to dstKey in dstBucket server-side.
func (d *Driver) CopyObject(ctx context.Context, srcBucket, srcKey, dstBucket, dstKey string) (*storage.ObjectInfo, error) {
	copied, err := d.svc.Objects.Copy(srcBucket, srcKey, dstBucket, dstKey, &gstorage.Object{}).Context(ctx).Do()
	if err != nil {
		return nil, mapError(err, "failed to copy object")
	}

	info := objectInfo(copied)
	return &info, nil
}

// DeleteObject removes the object at key inside bucket.
func (d *Driver) DeleteObject(ctx context.Context, bucket, key string) error {
	if err := d.svc.Objects.Delete(bucket, key).Context(ctx).Do(); err != nil {
		return mapError(err, "failed to delete object")
	}
	return nil
}

// StatObject returns metadata for the object at key inside bucket
// without downloading its content.
func (d *Driver) StatObject(ctx context.Context, bucket, key string) (*storage.ObjectInfo, error) {
	meta, err := d.svc.Objects.Get(bucket, key).Context(ctx).Do()
	if err != nil {
		return nil, mapError(err, "failed to stat object")
	}

	info := objectInfo(meta)
	return &info, nil
}

// SignedURL builds a signed URL for req using the driver's service-account
// credential, unless req carries an explicit key.
func (d *Driver) SignedURL(req *signer.SignRequest) (string, error) {
	return d.signer.SignedURL(req)
}

// --- internal types ---

// object wraps a media download and exposes storage.Object.
type object struct {
	io.ReadCloser
	info *storage.ObjectInfo
}

func (o *object) Info() *storage.ObjectInfo {
	return o.info
}

func bucketInfo(b *gstorage.Bucket) storage.BucketInfo {
	return storage.BucketInfo{
		Name:         b.Name,
		Location:     b.Location,
		StorageClass: b.StorageClass,
		CreatedAt:    parseAPITime(b.TimeCreated),
	}
}

func objectInfo(o *gstorage.Object) storage.ObjectInfo {
	return storage.ObjectInfo{
		Key:          o.Name,
		Size:         int64(o.Size),
		ContentType:  o.ContentType,
		ETag:         o.Etag,
		MD5:          o.Md5Hash,
		Generation:   o.Generation,
		Metadata:     o.Metadata,
		LastModified: parseAPITime(o.Updated),
	}
}

// parseAPITime decodes the RFC3339 timestamps the JSON API uses. A zero
// time means the field was absent or malformed.
func parseAPITime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
