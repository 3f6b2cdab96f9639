package errors

import (
	stderrors "errors"
)

// Is reports whether any error in err's chain matches target.
// It is a convenience wrapper around the standard library errors.Is.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// It is a convenience wrapper around the standard library errors.As.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// HasCode reports whether any PlatformError in err's chain carries code.
// Unlike GetCode, which reports only the outermost code, HasCode walks the
// whole chain.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		if pe, ok := err.(PlatformError); ok && pe.Code() == code {
			return true
		}
		err = stderrors.Unwrap(err)
	}
	return false
}

// GetCode extracts the ErrorCode of the outermost PlatformError in err's chain.
// Returns CodeUnknown if err is nil or carries no PlatformError.
//
// Example:
//
//	if errors.GetCode(err) == errors.CodeSourceEqualsDestination {
//	    // refuse the self-transfer
//	}
func GetCode(err error) ErrorCode {
	if err == nil {
		return CodeUnknown
	}

	var platformErr PlatformError
	if stderrors.As(err, &platformErr) {
		return platformErr.Code()
	}

	return CodeUnknown
}

// GetClassification extracts the classification of the outermost
// PlatformError. Returns ClassificationPermanent if err is nil or carries no
// PlatformError, which prevents inappropriate retries.
func GetClassification(err error) ErrorClassification {
	if err == nil {
		return ClassificationPermanent
	}

	var platformErr PlatformError
	if stderrors.As(err, &platformErr) {
		return platformErr.Classification()
	}

	return ClassificationPermanent
}

// IsRetryable returns true if the error is classified as retryable.
func IsRetryable(err error) bool {
	return GetClassification(err).IsRetryable()
}
