package storage

import (
	"io"
	"time"
)

// BucketInfo describes a storage bucket.
type BucketInfo struct {
	// Name is the globally unique bucket name.
	Name string

	// Location is where the bucket's data is stored (e.g. "US").
	Location string

	// StorageClass is the bucket's default storage class.
	StorageClass string

	// CreatedAt is when the bucket was created.
	// May be zero if the backend does not expose creation time.
	CreatedAt time.Time
}

// ObjectInfo describes a single object stored in a bucket.
type ObjectInfo struct {
	// Key is the full object path within the bucket (e.g. "avatars/heidi/400x400.png").
	Key string

	// Size is the byte size of the object. -1 if unknown.
	Size int64

	// ContentType is the MIME type (e.g. "image/png").
	ContentType string

	// ETag is the object's entity tag, as returned by the backend.
	ETag string

	// MD5 is the base64-encoded MD5 of the content, when the backend
	// exposes it.
	MD5 string

	// Generation is the object's generation number. 0 if unknown.
	Generation int64

	// Metadata holds the object's custom "x-goog-meta-*" key/value pairs.
	Metadata map[string]string

	// LastModified is when the object was last written.
	LastModified time.Time

	// IsDir is true when the entry represents a virtual directory (prefix),
	// not an actual stored object.
	IsDir bool
}

// Object is a streaming handle to an object's content.
// The caller MUST call Close() after reading to avoid resource leaks.
type Object interface {
	io.ReadCloser

	// Info returns the metadata for this object.
	Info() *ObjectInfo
}

// ListOptions controls how ListObjects filters and paginates results.
type ListOptions struct {
	// Prefix restricts results to objects whose key starts with this string.
	// Use "" to list everything in the bucket.
	Prefix string

	// Recursive, when true, lists all objects under the prefix without
	// grouping by virtual directories. When false (default), common prefixes
	// (virtual "folders") are returned as IsDir entries.
	Recursive bool

	// Limit caps the number of results returned. 0 means use the backend default.
	Limit int

	// PageToken is the pagination cursor returned by a previous page.
	// Pass "" to start from the beginning.
	PageToken string
}

// PutOptions carries optional attributes for an object write.
type PutOptions struct {
	// ContentType is the MIME type to store. Empty means backend default.
	ContentType string

	// ACL applies a predefined ACL to the new object. Empty means the
	// bucket default.
	ACL ACL

	// Metadata sets custom "x-goog-meta-*" key/value pairs.
	Metadata map[string]string
}
