package s3compat

import (
	"context"
	"errors"
	"net/http"
	"testing"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshimy/gcstore/errs"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errs.ErrKind
	}{
		{
			name: "status 404",
			err:  miniogo.ErrorResponse{StatusCode: http.StatusNotFound, Code: "NoSuchKey"},
			want: errs.ErrKindNotFound,
		},
		{
			name: "status 403",
			err:  miniogo.ErrorResponse{StatusCode: http.StatusForbidden, Code: "AccessDenied"},
			want: errs.ErrKindPermissionDenied,
		},
		{
			name: "code without status",
			err:  miniogo.ErrorResponse{Code: "SignatureDoesNotMatch"},
			want: errs.ErrKindPermissionDenied,
		},
		{
			name: "slow down",
			err:  miniogo.ErrorResponse{Code: "SlowDown"},
			want: errs.ErrKindTimeout,
		},
		{
			name: "unrecognized protocol error",
			err:  miniogo.ErrorResponse{StatusCode: http.StatusBadGateway, Code: "BadGateway"},
			want: errs.ErrKindRequestFailed,
		},
		{
			name: "context deadline",
			err:  context.DeadlineExceeded,
			want: errs.ErrKindTimeout,
		},
		{
			name: "plain transport error",
			err:  errors.New("dial tcp: connection refused"),
			want: errs.ErrKindConnectionFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err, "op failed")
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.Kind)
		})
	}
}

func TestMapError_Nil(t *testing.T) {
	assert.Nil(t, mapError(nil, "unused"))
}
