package errors

import (
	"errors"
	"fmt"
)

// New creates a new PlatformError with the given code and message.
// The classification is the code's default.
//
// Example:
//
//	err := errors.New(errors.CodeAlreadyExists, "destination occupied")
func New(code ErrorCode, message string) PlatformError {
	return &platformError{
		code:           code,
		classification: getDefaultClassification(code),
		message:        message,
	}
}

// Newf creates a new PlatformError with a formatted message.
//
// Example:
//
//	err := errors.Newf(errors.CodeInvalidArgument, "name %q contains %q", name, ch)
func Newf(code ErrorCode, format string, args ...interface{}) PlatformError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps err with a code and message while preserving it in the chain.
// If err is already a PlatformError its classification is kept.
// Returns nil if err is nil.
//
// Example:
//
//	if err := provider.Rename(src, dst); err != nil {
//	    return errors.Wrap(err, errors.CodeProviderFailure, "rename failed")
//	}
func Wrap(err error, code ErrorCode, message string) PlatformError {
	return WrapWithContext(err, code, message, nil)
}

// Wrapf wraps an error with a formatted message.
// Returns nil if err is nil.
func Wrapf(err error, code ErrorCode, format string, args ...interface{}) PlatformError {
	if err == nil {
		return nil
	}
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// WrapWithContext wraps an error and attaches context metadata in one step.
// The context map is copied.
// Returns nil if err is nil.
//
// Example:
//
//	return errors.WrapWithContext(err, errors.CodeProviderFailure, "copy failed", map[string]interface{}{
//	    "source":      src,
//	    "destination": dst,
//	})
func WrapWithContext(err error, code ErrorCode, message string, ctx map[string]interface{}) PlatformError {
	if err == nil {
		return nil
	}

	classification := getDefaultClassification(code)
	var platformErr PlatformError
	if errors.As(err, &platformErr) {
		classification = platformErr.Classification()
	}

	return &platformError{
		code:           code,
		classification: classification,
		message:        message,
		context:        cloneContext(ctx),
		cause:          err,
	}
}
