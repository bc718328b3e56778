package storage

// Provider identifies the object storage backend.
type Provider string

const (
	// ProviderGCS talks to the Google Cloud Storage JSON API.
	ProviderGCS Provider = "gcs"

	// ProviderS3Compat talks to the S3-interoperability XML endpoint
	// using HMAC interop keys.
	ProviderS3Compat Provider = "s3compat"
)

// Config holds all settings needed to connect to an object storage backend.
type Config struct {
	// Provider selects the backend (ProviderGCS or ProviderS3Compat).
	Provider Provider

	// ProjectID is the project that owns the buckets.
	// Required for bucket-level operations on the JSON API.
	ProjectID string

	// Endpoint overrides the service host. Leave empty for the public
	// service ("storage.googleapis.com"); set to point at an emulator.
	Endpoint string

	// CredentialsFile is the path to a service-account key JSON file.
	// Used for API authentication and for URL signing.
	CredentialsFile string

	// CredentialsJSON is the raw content of a service-account key file.
	// Takes precedence over CredentialsFile when both are set.
	CredentialsJSON []byte

	// AccessKey is the HMAC interop access key (ProviderS3Compat only).
	AccessKey string

	// SecretKey is the HMAC interop secret key (ProviderS3Compat only).
	SecretKey string

	// UseSSL controls whether TLS is used for the connection.
	UseSSL bool

	// Region is used by region-aware backends. Leave empty for the
	// public endpoints.
	Region string

	// DefaultBucket is an optional default bucket name.
	// Callers may override it per-request.
	DefaultBucket string
}

// DefaultConfig returns a config for the public GCS endpoints with the
// given project and key file.
func DefaultConfig(projectID, credentialsFile string) *Config {
	return &Config{
		Provider:        ProviderGCS,
		ProjectID:       projectID,
		CredentialsFile: credentialsFile,
		UseSSL:          true,
	}
}
