package storage

import (
	"fmt"

	"github.com/dshimy/gcstore/errs"
)

// ACL is a predefined (canned) access control rule applied to a bucket or
// object as a whole, identified by the API's camelCase name.
type ACL string

const (
	ACLAuthenticatedRead      ACL = "authenticatedRead"
	ACLPrivate                ACL = "private"
	ACLProjectPrivate         ACL = "projectPrivate"
	ACLPublicRead             ACL = "publicRead"
	ACLPublicReadWrite        ACL = "publicReadWrite" // buckets only
	ACLBucketOwnerFullControl ACL = "bucketOwnerFullControl"
	ACLBucketOwnerRead        ACL = "bucketOwnerRead"
)

// aclAliases maps the shorthand spellings accepted at the API surface to
// their canonical predefined-ACL names.
var aclAliases = map[string]ACL{
	"auth":                   ACLAuthenticatedRead,
	"auth_read":              ACLAuthenticatedRead,
	"authenticated":          ACLAuthenticatedRead,
	"authenticated_read":     ACLAuthenticatedRead,
	"authenticatedRead":      ACLAuthenticatedRead,
	"private":                ACLPrivate,
	"project_private":        ACLProjectPrivate,
	"projectPrivate":         ACLProjectPrivate,
	"public":                 ACLPublicRead,
	"public_read":            ACLPublicRead,
	"publicRead":             ACLPublicRead,
	"public_write":           ACLPublicReadWrite,
	"public_read_write":      ACLPublicReadWrite,
	"publicReadWrite":        ACLPublicReadWrite,
	"owner_full":             ACLBucketOwnerFullControl,
	"bucketOwnerFullControl": ACLBucketOwnerFullControl,
	"owner_read":             ACLBucketOwnerRead,
	"bucketOwnerRead":        ACLBucketOwnerRead,
}

// ParseACL resolves s (canonical name or shorthand alias) into a predefined
// ACL. Unknown values return ErrKindInvalidInput.
func ParseACL(s string) (ACL, error) {
	if acl, ok := aclAliases[s]; ok {
		return acl, nil
	}
	return "", errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("unknown predefined ACL %q", s))
}

// String returns the API's camelCase name for the rule.
func (a ACL) String() string {
	return string(a)
}
