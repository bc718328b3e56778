package signer

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshimy/gcstore/errs"
)

func pemPKCS8(t *testing.T) []byte {
	t.Helper()
	der, err := x509.MarshalPKCS8PrivateKey(testKey(t))
	require.NoError(t, err)
	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
}

func pemPKCS1(t *testing.T) []byte {
	t.Helper()
	der := x509.MarshalPKCS1PrivateKey(testKey(t))
	return pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: der})
}

func TestParseKey(t *testing.T) {
	want := testKey(t)

	tests := []struct {
		name string
		pem  []byte
	}{
		{"pkcs8", pemPKCS8(t)},
		{"pkcs1", pemPKCS1(t)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := ParseKey(tt.pem)
			require.NoError(t, err)
			assert.Zero(t, key.N.Cmp(want.N), "parsed key must match the encoded one")
		})
	}
}

func TestParseKey_CachesParsedKeys(t *testing.T) {
	pemData := pemPKCS8(t)

	first, err := ParseKey(pemData)
	require.NoError(t, err)
	second, err := ParseKey(pemData)
	require.NoError(t, err)

	assert.Same(t, first, second, "repeat parses of identical PEM bytes must hit the cache")
}

func TestParseKey_Errors(t *testing.T) {
	ecKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	ecDER, err := x509.MarshalPKCS8PrivateKey(ecKey)
	require.NoError(t, err)
	ecPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: ecDER})

	tests := []struct {
		name string
		pem  []byte
	}{
		{"not pem at all", []byte("this is not a key")},
		{"pem with garbage body", pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: []byte("junk")})},
		{"non-rsa key", ecPEM},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseKey(tt.pem)
			require.Error(t, err)
			assert.True(t, errs.IsSigningUnavailable(err), "got %v", err)
		})
	}
}

func serviceAccountJSON(t *testing.T, email string, keyPEM []byte) []byte {
	t.Helper()
	data, err := json.Marshal(map[string]string{
		"type":           "service_account",
		"project_id":     "my-todo-app",
		"private_key_id": "2f9a1b",
		"private_key":    string(keyPEM),
		"client_email":   email,
	})
	require.NoError(t, err)
	return data
}

func TestCredentialsFromJSON(t *testing.T) {
	data := serviceAccountJSON(t, testIssuer, pemPKCS8(t))

	cred, err := CredentialsFromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, testIssuer, cred.GoogleAccessID)
	assert.Zero(t, cred.PrivateKey.N.Cmp(testKey(t).N))
}

func TestCredentialsFromJSON_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"malformed json", []byte("{not json")},
		{"missing client_email", serviceAccountJSON(t, "", pemPKCS8(t))},
		{"missing private_key", serviceAccountJSON(t, testIssuer, nil)},
		{"unparsable private_key", serviceAccountJSON(t, testIssuer, []byte("garbage"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CredentialsFromJSON(tt.data)
			require.Error(t, err)
			assert.True(t, errs.IsSigningUnavailable(err), "got %v", err)
		})
	}
}

func TestCredentialsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keyfile.json")
	require.NoError(t, os.WriteFile(path, serviceAccountJSON(t, testIssuer, pemPKCS8(t)), 0o600))

	cred, err := CredentialsFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, testIssuer, cred.GoogleAccessID)
}

func TestCredentialsFromFile_Missing(t *testing.T) {
	_, err := CredentialsFromFile(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.True(t, errs.IsSigningUnavailable(err))
}

func TestCredential_SigningCredential(t *testing.T) {
	valid := &Credential{GoogleAccessID: testIssuer, PrivateKey: testKey(t)}
	got, err := valid.SigningCredential()
	require.NoError(t, err)
	assert.Same(t, valid, got)

	_, err = (&Credential{PrivateKey: testKey(t)}).SigningCredential()
	assert.True(t, errs.IsSigningUnavailable(err))

	_, err = (&Credential{GoogleAccessID: testIssuer}).SigningCredential()
	assert.True(t, errs.IsSigningUnavailable(err))
}
