// Package signer constructs V2 query-string signed URLs for single objects.
//
// A signed URL authorizes one HTTP operation on one object until a stated
// expiration, without the holder authenticating to the storage service. The
// signature covers a canonical string form of the request; the URL carries
// the issuer identity (GoogleAccessId), the expiration, and the signature
// as query parameters.
//
// Usage:
//
//	cred, err := signer.CredentialsFromFile("keyfile.json")
//	if err != nil { ... }
//
//	s := signer.New(&signer.Config{Source: cred})
//	url, err := s.SignedURL(&signer.SignRequest{
//		Bucket:      "my-todo-app",
//		Object:      "avatars/heidi/400x400.png",
//		Method:      http.MethodPut,
//		ContentType: "image/png",
//		Expires:     5 * time.Minute,
//	})
package signer

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dshimy/gcstore/errs"
)

const (
	// DefaultHost is the public storage endpoint signed URLs point at.
	DefaultHost = "storage.googleapis.com"

	// DefaultExpiry is used when a SignRequest leaves Expires zero.
	DefaultExpiry = 5 * time.Minute
)

// Config holds the settings for a URLSigner.
type Config struct {
	// Scheme is the URL scheme. Defaults to "https".
	Scheme string

	// Host is the service host the URL targets. Defaults to DefaultHost.
	Host string

	// Source yields the ambient signing credential for requests that do
	// not carry an explicit key. May be nil when every request supplies
	// its own credential.
	Source CredentialSource
}

// URLSigner produces signed URLs. It holds no per-call state and is safe
// for concurrent use by multiple goroutines.
type URLSigner struct {
	scheme string
	host   string
	source CredentialSource
	now    func() time.Time
}

// New creates a URLSigner from cfg. A nil cfg signs for the public
// endpoint with no ambient credential.
func New(cfg *Config) *URLSigner {
	if cfg == nil {
		cfg = &Config{}
	}

	s := &URLSigner{
		scheme: cfg.Scheme,
		host:   cfg.Host,
		source: cfg.Source,
		now:    time.Now,
	}
	if s.scheme == "" {
		s.scheme = "https"
	}
	if s.host == "" {
		s.host = DefaultHost
	}
	return s
}

// SignRequest describes one object operation to authorize.
type SignRequest struct {
	// Bucket and Object name the target. Object may contain "/" and is
	// percent-escaped per path segment.
	Bucket string
	Object string

	// Method is the HTTP verb to authorize: GET, HEAD, PUT, POST or
	// DELETE. Defaults to GET.
	Method string

	// Expires is how long from now the URL stays valid. The contract is
	// relative: the signer adds Expires to its clock at call time.
	// Defaults to DefaultExpiry.
	Expires time.Duration

	// ContentMD5 and ContentType, when set, are signed into the URL and
	// must then be sent verbatim by whoever uses it.
	ContentMD5  string
	ContentType string

	// Headers contributes extension ("x-goog-*") headers to the
	// signature. Names outside the extension prefix are ignored.
	Headers map[string][]string

	// Query parameters are appended to the final URL verbatim. They are
	// NOT covered by the signature and carry no integrity protection.
	Query url.Values

	// GoogleAccessID and PrivateKey override the signer's ambient
	// credential. PrivateKey must already be parsed key material; use
	// ParseKey or CredentialsFromJSON at the boundary.
	GoogleAccessID string
	PrivateKey     *rsa.PrivateKey
}

// SignedURL builds the signed URL for req.
//
// Credential resolution order: an explicit req.PrivateKey, then the
// signer's Source (with req.GoogleAccessID overriding the issuer when
// set). When neither yields a usable credential the call fails with
// ErrKindSigningUnavailable before any other work.
//
// A URL whose expiration has already passed is not rejected locally; the
// remote service will refuse it. Only non-positive durations are errors.
func (s *URLSigner) SignedURL(req *SignRequest) (string, error) {
	if req == nil {
		return "", errs.New(errs.ErrKindInvalidInput, "nil sign request")
	}

	cred, err := s.resolveCredential(req)
	if err != nil {
		return "", err
	}

	if req.Bucket == "" {
		return "", errs.New(errs.ErrKindInvalidInput, "bucket name is required")
	}
	if req.Object == "" {
		return "", errs.New(errs.ErrKindInvalidInput, "object path is required")
	}

	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPost, http.MethodDelete:
	default:
		return "", errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("method %q cannot be authorized by a signed URL", req.Method))
	}

	expires := req.Expires
	if expires == 0 {
		expires = DefaultExpiry
	}
	if expires < 0 {
		return "", errs.New(errs.ErrKindInvalidInput, "expiration must be positive")
	}
	expiry := s.now().Add(expires).Unix()

	resource := "/" + req.Bucket + "/" + escapeObjectPath(req.Object)
	payload := canonicalString(
		method,
		req.ContentMD5,
		req.ContentType,
		expiry,
		canonicalExtensionHeaders(req.Headers),
		resource,
	)

	digest := sha256.Sum256([]byte(payload))
	signature, err := rsa.SignPKCS1v15(rand.Reader, cred.PrivateKey, crypto.SHA256, digest[:])
	if err != nil {
		return "", errs.Wrap(errs.ErrKindSigningUnavailable, "RSA signing failed", err)
	}
	encoded := base64.StdEncoding.EncodeToString(signature)

	var b strings.Builder
	b.WriteString(s.scheme)
	b.WriteString("://")
	b.WriteString(s.host)
	b.WriteString(resource)
	b.WriteString("?GoogleAccessId=")
	b.WriteString(url.QueryEscape(cred.GoogleAccessID))
	b.WriteString("&Expires=")
	b.WriteString(strconv.FormatInt(expiry, 10))
	b.WriteString("&Signature=")
	b.WriteString(url.QueryEscape(encoded))
	if len(req.Query) > 0 {
		b.WriteByte('&')
		b.WriteString(req.Query.Encode())
	}
	return b.String(), nil
}

// resolveCredential picks the signing credential for req, failing fast
// when none is usable.
func (s *URLSigner) resolveCredential(req *SignRequest) (*Credential, error) {
	if req.PrivateKey != nil {
		if req.GoogleAccessID == "" {
			return nil, errs.New(errs.ErrKindSigningUnavailable, "explicit private key supplied without a GoogleAccessId")
		}
		return &Credential{GoogleAccessID: req.GoogleAccessID, PrivateKey: req.PrivateKey}, nil
	}

	if s.source == nil {
		return nil, errs.New(errs.ErrKindSigningUnavailable, "no signing credential configured")
	}

	cred, err := s.source.SigningCredential()
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindSigningUnavailable, "ambient credential resolution failed", err)
	}
	if cred == nil || cred.PrivateKey == nil {
		return nil, errs.New(errs.ErrKindSigningUnavailable, "ambient credential has no private key")
	}

	if req.GoogleAccessID != "" && req.GoogleAccessID != cred.GoogleAccessID {
		return &Credential{GoogleAccessID: req.GoogleAccessID, PrivateKey: cred.PrivateKey}, nil
	}
	if cred.GoogleAccessID == "" {
		return nil, errs.New(errs.ErrKindSigningUnavailable, "ambient credential has no service account email")
	}
	return cred, nil
}
