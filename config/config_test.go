package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmgilman/storage/errors"
	"github.com/jmgilman/storage/journal"
	"github.com/jmgilman/storage/storage"
)

func assertInvalid(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidConfig, errors.GetCode(err))
}

func TestParse(t *testing.T) {
	data := []byte(`
backend: minio
case_insensitive: true
reserved_chars: '<>:"|?*'
log_level: debug
log_format: json
journal: /var/lib/storage/journal.db
minio:
  endpoint: localhost:9000
  bucket: files
  access_key: minioadmin
  secret_key: minioadmin
  prefix: tenant-a
  max_rename_concurrency: 4
`)

	cfg, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, BackendMinIO, cfg.Backend)
	assert.True(t, cfg.CaseInsensitive)
	assert.Equal(t, `<>:"|?*`, cfg.ReservedChars)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, LogFormatJSON, cfg.LogFormat)
	assert.Equal(t, "/var/lib/storage/journal.db", cfg.Journal)
	assert.Equal(t, MinIOConfig{
		Endpoint:             "localhost:9000",
		Bucket:               "files",
		AccessKey:            "minioadmin",
		SecretKey:            "minioadmin",
		Prefix:               "tenant-a",
		MaxRenameConcurrency: 4,
	}, cfg.MinIO)
}

func TestParseSFTP(t *testing.T) {
	cfg, err := Parse([]byte(`
backend: sftp
root: /srv/files
sftp:
  addr: files.example.com:22
  user: deploy
  password: hunter2
  insecure_ignore_host_key: true
  timeout: 30s
`))
	require.NoError(t, err)
	assert.Equal(t, BackendSFTP, cfg.Backend)
	assert.Equal(t, "/srv/files", cfg.Root)
	assert.Equal(t, 30*time.Second, cfg.SFTP.Timeout)
	assert.True(t, cfg.SFTP.InsecureIgnoreHostKey)
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte("root: /data\n"))
	require.NoError(t, err)
	assert.Equal(t, BackendLocal, cfg.Backend)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, LogFormatText, cfg.LogFormat)
	assert.Empty(t, cfg.Journal)
}

func TestParseErrors(t *testing.T) {
	t.Run("unknown key", func(t *testing.T) {
		_, err := Parse([]byte("backend: memory\nbogus: 1\n"))
		assertInvalid(t, err)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := Parse([]byte("backend: [memory"))
		assertInvalid(t, err)
	})

	t.Run("empty document fails validation", func(t *testing.T) {
		_, err := Parse(nil)
		assertInvalid(t, err)
	})
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: memory\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Backend)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assertInvalid(t, err)
}

func TestValidate(t *testing.T) {
	minio := MinIOConfig{Endpoint: "e", Bucket: "b", AccessKey: "a", SecretKey: "s"}
	sftp := SFTPConfig{Addr: "h:22", User: "u", Password: "p", HostKey: "ssh-ed25519 AAAA"}

	tests := []struct {
		name  string
		cfg   Config
		field string
	}{
		{"memory", Config{Backend: BackendMemory, LogFormat: LogFormatText}, ""},
		{"local", Config{Backend: BackendLocal, Root: "/data", LogFormat: LogFormatText}, ""},
		{"local without root", Config{Backend: BackendLocal, LogFormat: LogFormatText}, "root"},
		{"unknown backend", Config{Backend: "ftp", LogFormat: LogFormatText}, "backend"},
		{"bad level", Config{Backend: BackendMemory, LogLevel: "loud", LogFormat: LogFormatText}, "log_level"},
		{"bad format", Config{Backend: BackendMemory, LogFormat: "xml"}, "log_format"},
		{"separator reserved", Config{Backend: BackendMemory, LogFormat: LogFormatText, ReservedChars: "/"}, "reserved_chars"},
		{"minio", Config{Backend: BackendMinIO, LogFormat: LogFormatText, MinIO: minio}, ""},
		{"minio without bucket", Config{Backend: BackendMinIO, LogFormat: LogFormatText, MinIO: MinIOConfig{Endpoint: "e"}}, "minio.bucket"},
		{"minio without keys", Config{Backend: BackendMinIO, LogFormat: LogFormatText, MinIO: MinIOConfig{Endpoint: "e", Bucket: "b"}}, "minio.access_key"},
		{"sftp", Config{Backend: BackendSFTP, LogFormat: LogFormatText, SFTP: sftp}, ""},
		{"sftp without host key", Config{Backend: BackendSFTP, LogFormat: LogFormatText, SFTP: SFTPConfig{Addr: "h:22", User: "u", Password: "p"}}, "sftp.host_key"},
		{"sftp without auth", Config{Backend: BackendSFTP, LogFormat: LogFormatText, SFTP: SFTPConfig{Addr: "h:22", User: "u"}}, "sftp.password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			assertInvalid(t, err)
			pe, ok := err.(errors.PlatformError)
			require.True(t, ok)
			assert.Equal(t, tt.field, pe.Context()["field"])
		})
	}
}

// setEnv sets a STORAGE_ variable for the test only.
func setEnv(t *testing.T, name, value string) {
	t.Helper()
	t.Setenv(EnvPrefix+name, value)
}

// clearEnv unsets a variable and restores it when the test ends.
func clearEnv(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		t.Setenv(EnvPrefix+name, "")
		require.NoError(t, os.Unsetenv(EnvPrefix+name))
	}
}

func TestApplyEnv(t *testing.T) {
	setEnv(t, "BACKEND", "minio")
	setEnv(t, "CASE_INSENSITIVE", "true")
	setEnv(t, "MINIO_ENDPOINT", "localhost:9000")
	setEnv(t, "MINIO_BUCKET", "files")
	setEnv(t, "MINIO_ACCESS_KEY", "key")
	setEnv(t, "MINIO_SECRET_KEY", "secret")
	setEnv(t, "MINIO_USE_SSL", "1")
	setEnv(t, "MINIO_MAX_RENAME_CONCURRENCY", "8")
	setEnv(t, "SFTP_TIMEOUT", "5s")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, BackendMinIO, cfg.Backend)
	assert.True(t, cfg.CaseInsensitive)
	assert.True(t, cfg.MinIO.UseSSL)
	assert.Equal(t, 8, cfg.MinIO.MaxRenameConcurrency)
	assert.Equal(t, 5*time.Second, cfg.SFTP.Timeout)
	require.NoError(t, cfg.Validate())
}

func TestApplyEnvErrors(t *testing.T) {
	for name, value := range map[string]string{
		"CASE_INSENSITIVE":             "maybe",
		"MINIO_MAX_RENAME_CONCURRENCY": "many",
		"SFTP_TIMEOUT":                 "soon",
	} {
		t.Run(name, func(t *testing.T) {
			setEnv(t, name, value)
			err := Default().ApplyEnv()
			assertInvalid(t, err)
			pe, ok := err.(errors.PlatformError)
			require.True(t, ok)
			assert.Equal(t, EnvPrefix+name, pe.Context()["variable"])
		})
	}
}

func TestFromEnv(t *testing.T) {
	clearEnv(t, "BACKEND", "ROOT", "LOG_LEVEL")
	setEnv(t, "LOG_LEVEL", "warn")

	dir := t.TempDir()
	envFile := filepath.Join(dir, "storage.env")
	require.NoError(t, os.WriteFile(envFile, []byte(
		"STORAGE_BACKEND=local\nSTORAGE_ROOT="+dir+"\nSTORAGE_LOG_LEVEL=debug\n"), 0o644))

	cfg, err := FromEnv(envFile, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, BackendLocal, cfg.Backend)
	assert.Equal(t, dir, cfg.Root)
	// variables already set win over the file
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := &Config{LogLevel: "warn", LogFormat: LogFormatJSON}
	logger := cfg.NewLogger(&buf)

	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"k":"v"`)
}

func TestOpenMemory(t *testing.T) {
	cfg := &Config{Backend: BackendMemory, LogFormat: LogFormatText, CaseInsensitive: true, ReservedChars: "?"}

	var logs bytes.Buffer
	session, err := OpenWithLogger(cfg, (&Config{LogLevel: "debug", LogFormat: LogFormatJSON}).NewLogger(&logs))
	require.NoError(t, err)
	defer func() {
		require.NoError(t, session.Close())
	}()

	assert.Nil(t, session.Journal)
	assert.True(t, session.Storage.Provider().CaseInsensitive())

	f, err := session.Storage.CreateFile("/a.txt", []byte("a"), storage.FailIfExists)
	require.NoError(t, err)
	err = f.Rename("b?.txt", storage.FailIfExists)
	assert.Equal(t, errors.CodeInvalidArgument, errors.GetCode(err))

	assert.Contains(t, logs.String(), "storage session opened")
}

func TestOpenLocalWithJournal(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{
		Backend:   BackendLocal,
		Root:      filepath.Join(dir, "root"),
		LogFormat: LogFormatText,
		Journal:   filepath.Join(dir, "journal.db"),
	}

	session, err := OpenWithLogger(cfg, cfg.NewLogger(&bytes.Buffer{}))
	require.NoError(t, err)

	_, err = session.Storage.CreateFile("/docs/a.txt", []byte("a"), storage.FailIfExists)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "root", "docs", "a.txt"))

	events, err := session.Journal.List(context.Background(), journal.Filter{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "/docs/a.txt", events[0].Destination)

	require.NoError(t, session.Close())
	require.NoError(t, session.Close())
}

func TestOpenInvalid(t *testing.T) {
	_, err := Open(&Config{Backend: "ftp", LogFormat: LogFormatText})
	assertInvalid(t, err)

	cfg := &Config{
		Backend:   BackendSFTP,
		LogFormat: LogFormatText,
		SFTP: SFTPConfig{
			Addr:                  "127.0.0.1:1",
			User:                  "u",
			PrivateKeyFile:        filepath.Join(t.TempDir(), "missing_key"),
			InsecureIgnoreHostKey: true,
		},
	}
	_, err = Open(cfg)
	assertInvalid(t, err)
}
