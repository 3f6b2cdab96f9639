// Package errs translates MinIO errors into io/fs errors.
package errs

import (
	"fmt"
	"io/fs"

	"github.com/minio/minio-go/v7"
)

// Translate maps S3 error codes onto fs sentinels. The MinIO error stays in
// the chain.
func Translate(err error) error {
	if err == nil {
		return nil
	}

	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket", "NotFound":
		return fmt.Errorf("%w: %w", fs.ErrNotExist, err)
	case "AccessDenied":
		return fmt.Errorf("%w: %w", fs.ErrPermission, err)
	case "InvalidObjectName", "KeyTooLongError":
		return fmt.Errorf("%w: %w", fs.ErrInvalid, err)
	}
	return fmt.Errorf("minio: %w", err)
}

// PathError wraps err in a *fs.PathError. A nil err stays nil.
func PathError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &fs.PathError{Op: op, Path: path, Err: err}
}

// PathErrorf creates a *fs.PathError with a formatted cause.
func PathErrorf(op, path, format string, args ...interface{}) error {
	return &fs.PathError{Op: op, Path: path, Err: fmt.Errorf(format, args...)}
}
