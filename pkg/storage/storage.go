package storage

import (
	"context"
	"io"
	"time"
)

// Store is the object storage the Uploader writes to.
type Store interface {
	// Put writes body under key. size is sent as the content length.
	Put(ctx context.Context, key string, body io.ReadSeeker, size int64, contentType string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// URL returns a URL clients can fetch key from.
	URL(ctx context.Context, key string) (string, error)
}

// ACL is the canned access control applied to uploaded objects.
type ACL string

const (
	// ACLPrivate objects are served through signed URLs.
	ACLPrivate ACL = "private"

	// ACLPublicRead objects are served through plain public URLs.
	ACLPublicRead ACL = "public-read"
)

const (
	DefaultRegion    = "us-east-1"
	DefaultURLExpiry = 15 * time.Minute
)

// Config holds S3-compatible storage configuration.
type Config struct {
	Bucket    string `env:"STORAGE_BUCKET" yaml:"bucket"`
	AccessKey string `env:"STORAGE_ACCESS_KEY" yaml:"access_key"`
	SecretKey string `env:"STORAGE_SECRET_KEY" yaml:"secret_key"`

	// Endpoint is set for MinIO and other S3-compatible services.
	Endpoint string `env:"STORAGE_ENDPOINT" yaml:"endpoint"`
	Region   string `env:"STORAGE_REGION" envDefault:"us-east-1" yaml:"region"`

	// PublicURL is a CDN prefix used for public objects instead of the bucket URL.
	PublicURL string `env:"STORAGE_PUBLIC_URL" yaml:"public_url"`
	ACL       ACL    `env:"STORAGE_ACL" envDefault:"private" yaml:"acl"`

	// URLExpiry bounds the lifetime of signed URLs.
	URLExpiry time.Duration `env:"STORAGE_URL_EXPIRY" envDefault:"15m" yaml:"url_expiry"`

	// PathStyle is required by MinIO.
	PathStyle bool `env:"STORAGE_PATH_STYLE" envDefault:"false" yaml:"path_style"`
}

func (c *Config) applyDefaults() {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.ACL == "" {
		c.ACL = ACLPrivate
	}
	if c.URLExpiry <= 0 {
		c.URLExpiry = DefaultURLExpiry
	}
}

func (c *Config) validate() error {
	if c.Bucket == "" || c.AccessKey == "" || c.SecretKey == "" {
		return ErrInvalidConfig
	}
	if c.ACL != ACLPrivate && c.ACL != ACLPublicRead {
		return ErrInvalidConfig
	}
	return nil
}
