package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "with cause",
			err:  Wrap(ErrKindConnectionFailed, "ping failed", cause),
			want: "[connection_failed] ping failed: connection refused",
		},
		{
			name: "without cause",
			err:  New(ErrKindSigningUnavailable, "no private key"),
			want: "[signing_unavailable] no private key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name string
		err  error
		pred func(error) bool
		want bool
	}{
		{"not found", New(ErrKindNotFound, "no such bucket"), IsNotFound, true},
		{"signing unavailable", New(ErrKindSigningUnavailable, "no key"), IsSigningUnavailable, true},
		{"invalid input", New(ErrKindInvalidInput, "bad verb"), IsInvalidInput, true},
		{"kind mismatch", New(ErrKindTimeout, "deadline"), IsNotFound, false},
		{"plain error", errors.New("boom"), IsRequestFailed, false},
		{"nil error", nil, IsNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pred(tt.err))
		})
	}
}

func TestPredicatesSeeThroughWrapping(t *testing.T) {
	inner := New(ErrKindPermissionDenied, "access denied")
	outer := fmt.Errorf("list buckets: %w", inner)

	assert.True(t, IsPermissionDenied(outer))
	assert.False(t, IsNotFound(outer))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("pem: no block")
	err := Wrap(ErrKindSigningUnavailable, "unparsable key", cause)

	assert.True(t, errors.Is(err, cause))
}
