// Package config loads storage settings and opens a ready Storage.
//
// Settings come from YAML, from STORAGE_* environment variables, or both:
//
//	cfg, err := config.Load("storage.yaml")
//	if err != nil {
//	    return err
//	}
//	if err := cfg.ApplyEnv(); err != nil {
//	    return err
//	}
//
//	session, err := config.Open(cfg)
//	if err != nil {
//	    return err
//	}
//	defer session.Close()
//
//	f, err := session.Storage.File("/reports/q1.txt")
//
// Every validation failure carries errors.CodeInvalidConfig.
package config

import (
	"bytes"
	stderrors "errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jmgilman/storage/errors"
)

// Backend names a storage backend.
type Backend string

const (
	BackendLocal  Backend = "local"
	BackendMemory Backend = "memory"
	BackendMinIO  Backend = "minio"
	BackendSFTP   Backend = "sftp"
)

// Log output formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config describes one storage session.
type Config struct {
	// Backend selects the filesystem. Defaults to local.
	Backend Backend `yaml:"backend"`

	// Root is the directory the local backend is rooted at, or the remote
	// directory for sftp.
	Root string `yaml:"root"`

	// CaseInsensitive declares that the backend folds case.
	CaseInsensitive bool `yaml:"case_insensitive"`

	// ReservedChars lists characters forbidden in item names.
	ReservedChars string `yaml:"reserved_chars"`

	// LogLevel is one of debug, info, warn or error. Defaults to info.
	LogLevel string `yaml:"log_level"`

	// LogFormat is text or json. Defaults to text.
	LogFormat string `yaml:"log_format"`

	// Journal is the SQLite file committed operations are recorded in.
	// Empty disables the journal.
	Journal string `yaml:"journal"`

	MinIO MinIOConfig `yaml:"minio"`
	SFTP  SFTPConfig  `yaml:"sftp"`
}

// MinIOConfig holds settings for the minio backend.
type MinIOConfig struct {
	Endpoint             string `yaml:"endpoint"`
	Bucket               string `yaml:"bucket"`
	AccessKey            string `yaml:"access_key"`
	SecretKey            string `yaml:"secret_key"`
	UseSSL               bool   `yaml:"use_ssl"`
	Prefix               string `yaml:"prefix"`
	MaxRenameConcurrency int    `yaml:"max_rename_concurrency"`
}

// SFTPConfig holds settings for the sftp backend.
type SFTPConfig struct {
	Addr                  string        `yaml:"addr"`
	User                  string        `yaml:"user"`
	Password              string        `yaml:"password"`
	PrivateKeyFile        string        `yaml:"private_key_file"`
	HostKey               string        `yaml:"host_key"`
	InsecureIgnoreHostKey bool          `yaml:"insecure_ignore_host_key"`
	Timeout               time.Duration `yaml:"timeout"`
}

// Default returns a configuration for a local backend with info logging.
func Default() *Config {
	return &Config{
		Backend:   BackendLocal,
		LogLevel:  "info",
		LogFormat: LogFormatText,
	}
}

// Load reads and validates the YAML file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeInvalidConfig, "failed to read config file",
			map[string]interface{}{"path": path})
	}
	return Parse(data)
}

// Parse decodes YAML on top of Default and validates the result. Unknown
// keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, errors.CodeInvalidConfig, "failed to parse config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func invalid(field, message string) error {
	return errors.WithContext(errors.New(errors.CodeInvalidConfig, message), "field", field)
}

// Validate checks the settings the selected backend needs.
func (c *Config) Validate() error {
	if _, err := c.level(); err != nil {
		return invalid("log_level", "unknown log level "+c.LogLevel)
	}
	switch c.LogFormat {
	case LogFormatText, LogFormatJSON:
	default:
		return invalid("log_format", "log format must be text or json")
	}
	if strings.ContainsAny(c.ReservedChars, "/") {
		return invalid("reserved_chars", "the path separator is always reserved")
	}

	switch c.Backend {
	case BackendLocal:
		if c.Root == "" {
			return invalid("root", "root is required for the local backend")
		}
	case BackendMemory:
	case BackendMinIO:
		return c.MinIO.validate()
	case BackendSFTP:
		return c.SFTP.validate()
	default:
		return invalid("backend", "unknown backend "+string(c.Backend))
	}
	return nil
}

func (c *MinIOConfig) validate() error {
	switch {
	case c.Endpoint == "":
		return invalid("minio.endpoint", "endpoint is required for the minio backend")
	case c.Bucket == "":
		return invalid("minio.bucket", "bucket is required for the minio backend")
	case c.AccessKey == "" || c.SecretKey == "":
		return invalid("minio.access_key", "access and secret keys are required for the minio backend")
	case c.MaxRenameConcurrency < 0:
		return invalid("minio.max_rename_concurrency", "max rename concurrency must not be negative")
	}
	return nil
}

func (c *SFTPConfig) validate() error {
	switch {
	case c.Addr == "":
		return invalid("sftp.addr", "addr is required for the sftp backend")
	case c.User == "":
		return invalid("sftp.user", "user is required for the sftp backend")
	case c.Password == "" && c.PrivateKeyFile == "":
		return invalid("sftp.password", "password or private key file is required for the sftp backend")
	case c.HostKey == "" && !c.InsecureIgnoreHostKey:
		return invalid("sftp.host_key", "host key is required unless host key checking is disabled")
	case c.Timeout < 0:
		return invalid("sftp.timeout", "timeout must not be negative")
	}
	return nil
}

func (c *Config) level() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	err := level.UnmarshalText([]byte(c.LogLevel))
	return level, err
}

// NewLogger builds the logger described by the configuration.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := c.level()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if c.LogFormat == LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
