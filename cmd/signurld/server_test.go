package main

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshimy/gcstore/internal/logger"
	"github.com/dshimy/gcstore/storage/signer"
)

func newTestServer(t *testing.T, source signer.CredentialSource) *httptest.Server {
	t.Helper()

	s := newServer(
		signer.New(&signer.Config{Source: source}),
		time.Hour,
		logger.New(&logger.Config{Level: "error", Format: "json", Output: io.Discard}),
	)
	ts := httptest.NewServer(s.routes())
	t.Cleanup(ts.Close)
	return ts
}

func testCredential(t *testing.T) *signer.Credential {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return &signer.Credential{
		GoogleAccessID: "signer@my-todo-app.iam.gserviceaccount.com",
		PrivateKey:     key,
	}
}

func postSign(t *testing.T, ts *httptest.Server, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	res, err := http.Post(ts.URL+"/v1/sign", "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { res.Body.Close() })
	return res
}

func TestHandleSign(t *testing.T) {
	ts := newTestServer(t, testCredential(t))

	res := postSign(t, ts, signRequest{
		Bucket:      "my-todo-app",
		Object:      "avatars/heidi/400x400.png",
		Method:      http.MethodPut,
		ContentType: "image/png",
		Expires:     300,
	})
	require.Equal(t, http.StatusOK, res.StatusCode)

	var out signResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	assert.Equal(t, int64(300), out.ExpiresIn)

	u, err := url.Parse(out.URL)
	require.NoError(t, err)
	assert.Equal(t, "/my-todo-app/avatars/heidi/400x400.png", u.Path)
	assert.Equal(t, "signer@my-todo-app.iam.gserviceaccount.com", u.Query().Get("GoogleAccessId"))
	assert.NotEmpty(t, u.Query().Get("Expires"))
	assert.NotEmpty(t, u.Query().Get("Signature"))
}

func TestHandleSign_Errors(t *testing.T) {
	ts := newTestServer(t, testCredential(t))

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
	}{
		{
			name:       "missing bucket",
			body:       signRequest{Object: "a.txt"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unauthorized verb",
			body:       signRequest{Bucket: "b", Object: "a.txt", Method: "PATCH"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "expiry above maximum",
			body:       signRequest{Bucket: "b", Object: "a.txt", Expires: 7200},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := postSign(t, ts, tt.body)
			assert.Equal(t, tt.wantStatus, res.StatusCode)
		})
	}
}

func TestHandleSign_MalformedBody(t *testing.T) {
	ts := newTestServer(t, testCredential(t))

	res, err := http.Post(ts.URL+"/v1/sign", "application/json", strings.NewReader("{not json"))
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestHandleSign_NoCredential(t *testing.T) {
	ts := newTestServer(t, nil)

	res := postSign(t, ts, signRequest{Bucket: "b", Object: "a.txt"})
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)
}

func TestHandleHealth(t *testing.T) {
	ts := newTestServer(t, testCredential(t))

	res, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("SIGNURLD_CREDENTIALS_FILE", "/tmp/keyfile.json")

	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Listen)
	assert.Equal(t, "/tmp/keyfile.json", cfg.CredentialsFile)
	assert.Equal(t, 7*24*time.Hour, cfg.maxExpiry())
}

func TestLoadConfig_NoCredentials(t *testing.T) {
	t.Setenv("SIGNURLD_CREDENTIALS_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	_, err := loadConfig("")
	require.Error(t, err)
}
