package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.yaml.in/yaml/v3"

	"github.com/dshimy/gcstore/errs"
)

// config holds the signurld service settings, read from an optional YAML
// file with environment-variable overrides on top.
type config struct {
	// Listen is the host:port the HTTP server binds to.
	Listen string `yaml:"listen"`

	// CredentialsFile is the service-account key used for signing.
	CredentialsFile string `yaml:"credentials_file"`

	// Scheme and Host override the storage endpoint signed URLs point at.
	// Empty means the public service.
	Scheme string `yaml:"scheme"`
	Host   string `yaml:"host"`

	// MaxExpirySeconds caps the lifetime a caller may request for a URL.
	MaxExpirySeconds int64 `yaml:"max_expiry_seconds"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

// maxExpiry returns the cap as a duration.
func (c *config) maxExpiry() time.Duration {
	return time.Duration(c.MaxExpirySeconds) * time.Second
}

func defaultConfig() *config {
	cfg := &config{
		Listen:           ":8080",
		MaxExpirySeconds: 7 * 24 * 3600,
	}
	cfg.Log.Level = "info"
	cfg.Log.Format = "json"
	return cfg
}

// loadConfig reads path (when non-empty) over the defaults, then applies
// environment overrides. A .env file in the working directory is honored.
func loadConfig(path string) (*config, error) {
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errs.Wrap(errs.ErrKindInvalidInput, "cannot read config file", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errs.Wrap(errs.ErrKindInvalidInput, "malformed config file", err)
		}
	}

	if v := os.Getenv("SIGNURLD_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("SIGNURLD_CREDENTIALS_FILE"); v != "" {
		cfg.CredentialsFile = v
	}
	if cfg.CredentialsFile == "" {
		cfg.CredentialsFile = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	}
	if v := os.Getenv("SIGNURLD_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	if cfg.CredentialsFile == "" {
		return nil, errs.New(errs.ErrKindSigningUnavailable, "no credentials file configured")
	}

	return cfg, nil
}
