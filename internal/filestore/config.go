package filestore

import "fmt"

// Provider identifies the file storage backend.
type Provider string

const (
	ProviderMinIO Provider = "minio"
)

// Config holds the settings needed to reach an S3-compatible server.
type Config struct {
	Provider Provider `yaml:"provider"`

	// Endpoint is host:port, without scheme. Example: "localhost:9000".
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	UseSSL    bool   `yaml:"use_ssl"`

	// Region is used when creating buckets. Leave empty for MinIO.
	Region string `yaml:"region"`
}

// DefaultConfig returns a plain-HTTP MinIO config.
func DefaultConfig(endpoint, accessKey, secretKey string) *Config {
	return &Config{
		Provider:  ProviderMinIO,
		Endpoint:  endpoint,
		AccessKey: accessKey,
		SecretKey: secretKey,
	}
}

// Validate reports the first missing or unsupported field.
func (c *Config) Validate() error {
	if c.Provider != "" && c.Provider != ProviderMinIO {
		return fmt.Errorf("unsupported filestore provider %q", c.Provider)
	}
	if c.Endpoint == "" {
		return fmt.Errorf("filestore endpoint is required")
	}
	return nil
}
