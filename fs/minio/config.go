// Package minio provides a MinIO/S3-backed implementation of core.FS.
//
// Directories are made real with zero-byte marker objects whose keys end in
// "/". A prefix that has objects below it but no marker also reads as a
// directory, so trees written by other tools stay visible.
//
// Rename is not atomic: objects are copied with server-side CopyObject and
// the originals removed afterwards. Directory renames copy through a bounded
// worker pool.
package minio

import (
	"fmt"

	"github.com/minio/minio-go/v7"
)

// Config holds MinIO filesystem configuration.
type Config struct {
	// Endpoint is the MinIO server address, such as "localhost:9000".
	Endpoint string

	// Bucket is the bucket holding the filesystem. It must already exist.
	Bucket string

	// AccessKey and SecretKey authenticate against Endpoint.
	AccessKey string
	SecretKey string

	// UseSSL enables HTTPS.
	UseSSL bool

	// Prefix roots the filesystem below a key prefix.
	Prefix string

	// Client is a pre-configured client. When set, Endpoint and the keys are
	// ignored.
	Client *minio.Client

	// MaxRenameConcurrency limits parallel copies during a directory rename.
	// Defaults to 10.
	MaxRenameConcurrency int
}

// validate checks that either Client or Endpoint with credentials is given.
func (c *Config) validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("bucket is required")
	}
	if c.MaxRenameConcurrency < 0 {
		return fmt.Errorf("max rename concurrency must not be negative")
	}
	if c.Client != nil {
		return nil
	}
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint is required when client is not provided")
	}
	if c.AccessKey == "" {
		return fmt.Errorf("access key is required when client is not provided")
	}
	if c.SecretKey == "" {
		return fmt.Errorf("secret key is required when client is not provided")
	}
	return nil
}
