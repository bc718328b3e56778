package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshimy/gcstore/errs"
)

func TestParseACL(t *testing.T) {
	tests := []struct {
		in   string
		want ACL
	}{
		{"public", ACLPublicRead},
		{"public_read", ACLPublicRead},
		{"publicRead", ACLPublicRead},
		{"auth", ACLAuthenticatedRead},
		{"authenticated_read", ACLAuthenticatedRead},
		{"private", ACLPrivate},
		{"project_private", ACLProjectPrivate},
		{"public_write", ACLPublicReadWrite},
		{"owner_full", ACLBucketOwnerFullControl},
		{"owner_read", ACLBucketOwnerRead},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseACL(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseACL_Unknown(t *testing.T) {
	_, err := ParseACL("world-writable")
	require.Error(t, err)
	assert.True(t, errs.IsInvalidInput(err))
}
