package signer

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"os"
	"sync"

	"github.com/dshimy/gcstore/errs"
)

// Credential is the identity a signature is produced under: the service
// account email embedded in the URL as GoogleAccessId, and the RSA key
// whose public half the server verifies against.
type Credential struct {
	// GoogleAccessID is the service-account email (the "client_email"
	// field of the key file).
	GoogleAccessID string

	// PrivateKey is the parsed RSA signing key. Immutable after parsing
	// and safe for concurrent use.
	PrivateKey *rsa.PrivateKey
}

// SigningCredential returns the credential itself, so a *Credential can be
// used directly as a CredentialSource.
func (c *Credential) SigningCredential() (*Credential, error) {
	if c == nil || c.PrivateKey == nil {
		return nil, errs.New(errs.ErrKindSigningUnavailable, "credential has no private key")
	}
	if c.GoogleAccessID == "" {
		return nil, errs.New(errs.ErrKindSigningUnavailable, "credential has no service account email")
	}
	return c, nil
}

// CredentialSource yields the ambient signing credential when the caller
// supplies none. Implementations must be safe for concurrent use.
type CredentialSource interface {
	SigningCredential() (*Credential, error)
}

// --- Key parsing ---

// parsedKeyCache caches parsed private keys by their raw PEM bytes, since
// parsing is the most expensive step of a signing call. Entries are
// immutable once stored and safe to share across goroutines.
type parsedKeyCache struct {
	mu     sync.RWMutex
	values map[string]*rsa.PrivateKey
}

func (c *parsedKeyCache) get(pemData string) (*rsa.PrivateKey, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	key, ok := c.values[pemData]
	return key, ok
}

func (c *parsedKeyCache) set(pemData string, key *rsa.PrivateKey) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.values[pemData] = key
}

var keyCache = &parsedKeyCache{values: make(map[string]*rsa.PrivateKey)}

// ParseKey converts PEM-encoded key material (PKCS#8 or PKCS#1) into an
// RSA private key. This is the single conversion boundary: everything past
// it works with parsed key material only. Parsed keys are cached by their
// raw PEM bytes.
func ParseKey(pemData []byte) (*rsa.PrivateKey, error) {
	if key, ok := keyCache.get(string(pemData)); ok {
		return key, nil
	}

	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, errs.New(errs.ErrKindSigningUnavailable, "no PEM block found in key material")
	}

	var key *rsa.PrivateKey
	if parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		rsaKey, ok := parsed.(*rsa.PrivateKey)
		if !ok {
			return nil, errs.New(errs.ErrKindSigningUnavailable, "key material is not an RSA private key")
		}
		key = rsaKey
	} else if rsaKey, err1 := x509.ParsePKCS1PrivateKey(block.Bytes); err1 == nil {
		key = rsaKey
	} else {
		return nil, errs.Wrap(errs.ErrKindSigningUnavailable, "failed to parse private key", err)
	}

	keyCache.set(string(pemData), key)
	return key, nil
}

// --- Service-account key files ---

// serviceAccountKey mirrors the fields of a GCP service-account key file
// that signing needs.
type serviceAccountKey struct {
	Type         string `json:"type"`
	ProjectID    string `json:"project_id"`
	PrivateKeyID string `json:"private_key_id"`
	PrivateKey   string `json:"private_key"`
	ClientEmail  string `json:"client_email"`
}

// CredentialsFromJSON builds a Credential from the raw content of a
// service-account key file.
func CredentialsFromJSON(data []byte) (*Credential, error) {
	var sak serviceAccountKey
	if err := json.Unmarshal(data, &sak); err != nil {
		return nil, errs.Wrap(errs.ErrKindSigningUnavailable, "malformed service account key JSON", err)
	}
	if sak.ClientEmail == "" {
		return nil, errs.New(errs.ErrKindSigningUnavailable, "service account key has no client_email")
	}
	if sak.PrivateKey == "" {
		return nil, errs.New(errs.ErrKindSigningUnavailable, "service account key has no private_key")
	}

	key, err := ParseKey([]byte(sak.PrivateKey))
	if err != nil {
		return nil, err
	}

	return &Credential{GoogleAccessID: sak.ClientEmail, PrivateKey: key}, nil
}

// CredentialsFromFile builds a Credential from a service-account key file
// on disk.
func CredentialsFromFile(path string) (*Credential, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindSigningUnavailable, "cannot read credentials file", err)
	}
	return CredentialsFromJSON(data)
}
