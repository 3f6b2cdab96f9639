package storage

import (
	"io/fs"

	"github.com/jmgilman/storage/errors"
	"github.com/jmgilman/storage/fs/core"
)

// classify wraps a provider error with the matching storage error code. The
// provider error stays in the chain.
func classify(err error, message, path string) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(errors.PlatformError); ok {
		return err
	}

	code := errors.CodeProviderFailure
	switch {
	case errors.Is(err, fs.ErrNotExist):
		code = errors.CodeSourceNotFound
	case errors.Is(err, fs.ErrExist):
		code = errors.CodeAlreadyExists
	case errors.Is(err, fs.ErrInvalid):
		code = errors.CodeInvalidArgument
	}

	return errors.WrapWithContext(err, code, message, map[string]interface{}{
		"path": path,
	})
}

// fallbackAllowed reports whether a failed rename may be retried as copy and
// delete. Every failure qualifies except a collision, an invalid name or a
// vanished source.
func fallbackAllowed(err error) bool {
	if errors.Is(err, core.ErrCrossDevice) {
		return true
	}
	return !errors.Is(err, fs.ErrExist) &&
		!errors.Is(err, fs.ErrInvalid) &&
		!errors.Is(err, fs.ErrNotExist)
}
