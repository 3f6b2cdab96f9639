package config

import (
	stderrors "errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/jmgilman/storage/errors"
)

// EnvPrefix starts every environment variable the package reads.
const EnvPrefix = "STORAGE_"

// FromEnv builds a configuration from Default and STORAGE_* variables.
// The given dotenv files, or ".env" when none are named, are loaded first;
// missing files are skipped and variables already set are never replaced.
func FromEnv(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.WrapWithContext(err, errors.CodeInvalidConfig, "failed to load env file",
				map[string]interface{}{"path": file})
		}
	}

	cfg := Default()
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields with any STORAGE_* variables that are set.
func (c *Config) ApplyEnv() error {
	strs := map[string]*string{
		"LOG_LEVEL":             &c.LogLevel,
		"LOG_FORMAT":            &c.LogFormat,
		"ROOT":                  &c.Root,
		"RESERVED_CHARS":        &c.ReservedChars,
		"JOURNAL":               &c.Journal,
		"MINIO_ENDPOINT":        &c.MinIO.Endpoint,
		"MINIO_BUCKET":          &c.MinIO.Bucket,
		"MINIO_ACCESS_KEY":      &c.MinIO.AccessKey,
		"MINIO_SECRET_KEY":      &c.MinIO.SecretKey,
		"MINIO_PREFIX":          &c.MinIO.Prefix,
		"SFTP_ADDR":             &c.SFTP.Addr,
		"SFTP_USER":             &c.SFTP.User,
		"SFTP_PASSWORD":         &c.SFTP.Password,
		"SFTP_PRIVATE_KEY_FILE": &c.SFTP.PrivateKeyFile,
		"SFTP_HOST_KEY":         &c.SFTP.HostKey,
	}
	for name, field := range strs {
		if v, ok := lookup(name); ok {
			*field = v
		}
	}

	if v, ok := lookup("BACKEND"); ok {
		c.Backend = Backend(v)
	}

	bools := map[string]*bool{
		"CASE_INSENSITIVE":              &c.CaseInsensitive,
		"MINIO_USE_SSL":                 &c.MinIO.UseSSL,
		"SFTP_INSECURE_IGNORE_HOST_KEY": &c.SFTP.InsecureIgnoreHostKey,
	}
	for name, field := range bools {
		v, ok := lookup(name)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return envError(name, err)
		}
		*field = b
	}

	if v, ok := lookup("MINIO_MAX_RENAME_CONCURRENCY"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return envError("MINIO_MAX_RENAME_CONCURRENCY", err)
		}
		c.MinIO.MaxRenameConcurrency = n
	}

	if v, ok := lookup("SFTP_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return envError("SFTP_TIMEOUT", err)
		}
		c.SFTP.Timeout = d
	}

	return nil
}

func lookup(name string) (string, bool) {
	return os.LookupEnv(EnvPrefix + name)
}

func envError(name string, err error) error {
	return errors.WrapWithContext(err, errors.CodeInvalidConfig, "invalid environment variable",
		map[string]interface{}{"variable": EnvPrefix + name})
}
