package config

import (
	stderrors "errors"
	"log/slog"
	"os"

	"github.com/jmgilman/storage/errors"
	"github.com/jmgilman/storage/fs/billy"
	"github.com/jmgilman/storage/fs/core"
	miniofs "github.com/jmgilman/storage/fs/minio"
	sftpfs "github.com/jmgilman/storage/fs/sftp"
	"github.com/jmgilman/storage/journal"
	"github.com/jmgilman/storage/storage"
)

// Session is an opened Storage together with the resources behind it.
type Session struct {
	Storage *storage.Storage
	FS      core.FS
	Journal *journal.Journal
	Logger  *slog.Logger

	closers []func() error
}

// Close releases the journal and any remote connection, newest first.
func (s *Session) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return stderrors.Join(errs...)
}

// Open validates cfg and opens the backend, logger and journal it names.
// Logs go to stderr.
func Open(cfg *Config) (*Session, error) {
	return OpenWithLogger(cfg, cfg.NewLogger(os.Stderr))
}

// OpenWithLogger is Open with a caller supplied logger.
func OpenWithLogger(cfg *Config, logger *slog.Logger) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	session := &Session{Logger: logger}

	fsys, closer, err := openFS(cfg)
	if err != nil {
		return nil, err
	}
	session.FS = fsys
	if closer != nil {
		session.closers = append(session.closers, closer)
	}

	opts := []storage.Option{storage.WithLogger(logger)}
	if cfg.Journal != "" {
		j, err := journal.Open(cfg.Journal)
		if err != nil {
			_ = session.Close()
			return nil, err
		}
		session.Journal = j
		session.closers = append(session.closers, j.Close)
		opts = append(opts, storage.WithObserver(j))
	}

	provider := storage.NewFSProvider(fsys,
		storage.WithCaseInsensitive(cfg.CaseInsensitive),
		storage.WithReservedChars(cfg.ReservedChars),
	)
	session.Storage = storage.New(provider, opts...)

	logger.Debug("storage session opened",
		"backend", string(cfg.Backend),
		"fs_type", fsys.Type().String(),
		"journal", cfg.Journal != "",
	)
	return session, nil
}

func openFS(cfg *Config) (core.FS, func() error, error) {
	switch cfg.Backend {
	case BackendMemory:
		return billy.NewMemory(), nil, nil

	case BackendLocal:
		if err := os.MkdirAll(cfg.Root, 0o755); err != nil {
			return nil, nil, errors.WrapWithContext(err, errors.CodeInvalidConfig, "failed to create root",
				map[string]interface{}{"root": cfg.Root})
		}
		return billy.NewLocal(cfg.Root), nil, nil

	case BackendMinIO:
		fsys, err := miniofs.NewMinIO(miniofs.Config{
			Endpoint:             cfg.MinIO.Endpoint,
			Bucket:               cfg.MinIO.Bucket,
			AccessKey:            cfg.MinIO.AccessKey,
			SecretKey:            cfg.MinIO.SecretKey,
			UseSSL:               cfg.MinIO.UseSSL,
			Prefix:               cfg.MinIO.Prefix,
			MaxRenameConcurrency: cfg.MinIO.MaxRenameConcurrency,
		})
		if err != nil {
			return nil, nil, errors.Wrap(err, errors.CodeInvalidConfig, "failed to open minio backend")
		}
		return fsys, nil, nil

	case BackendSFTP:
		var key []byte
		if cfg.SFTP.PrivateKeyFile != "" {
			var err error
			key, err = os.ReadFile(cfg.SFTP.PrivateKeyFile)
			if err != nil {
				return nil, nil, errors.WrapWithContext(err, errors.CodeInvalidConfig, "failed to read private key",
					map[string]interface{}{"path": cfg.SFTP.PrivateKeyFile})
			}
		}
		fsys, err := sftpfs.Dial(sftpfs.Config{
			Addr:                  cfg.SFTP.Addr,
			User:                  cfg.SFTP.User,
			Password:              cfg.SFTP.Password,
			PrivateKey:            key,
			HostKey:               cfg.SFTP.HostKey,
			InsecureIgnoreHostKey: cfg.SFTP.InsecureIgnoreHostKey,
			Root:                  cfg.Root,
			Timeout:               cfg.SFTP.Timeout,
		})
		if err != nil {
			return nil, nil, errors.Wrap(err, errors.CodeProviderFailure, "failed to open sftp backend")
		}
		return fsys, fsys.Close, nil
	}

	return nil, nil, errors.New(errors.CodeInvalidConfig, "unknown backend "+string(cfg.Backend))
}
