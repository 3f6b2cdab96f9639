package errors

import "errors"

// WithContext returns a copy of err with a single context field added.
// Existing fields are preserved.
//
// If err is not a PlatformError, it is converted to one with CodeUnknown.
// Returns nil if err is nil.
//
// Example:
//
//	err = errors.WithContext(err, "destination", "/backup/a.txt")
func WithContext(err error, key string, value interface{}) PlatformError {
	return WithContextMap(err, map[string]interface{}{key: value})
}

// WithContextMap returns a copy of err with the given fields merged into its
// context. New fields override existing ones with the same key.
//
// If err is not a PlatformError, it is converted to one with CodeUnknown.
// Returns nil if err is nil.
func WithContextMap(err error, ctx map[string]interface{}) PlatformError {
	if err == nil {
		return nil
	}

	pe := asPlatform(err)
	merged := make(map[string]interface{}, len(ctx))
	for k, v := range pe.Context() {
		merged[k] = v
	}
	for k, v := range ctx {
		merged[k] = v
	}

	return &platformError{
		code:           pe.Code(),
		classification: pe.Classification(),
		message:        pe.Message(),
		context:        merged,
		cause:          pe.Unwrap(),
	}
}

// WithClassification returns a copy of err with its classification replaced.
//
// If err is not a PlatformError, it is converted to one with CodeUnknown.
// Returns nil if err is nil.
//
// Example:
//
//	// A provider failure on a read-only device will never succeed.
//	err = errors.WithClassification(err, errors.ClassificationPermanent)
func WithClassification(err error, classification ErrorClassification) PlatformError {
	if err == nil {
		return nil
	}

	pe := asPlatform(err)
	return &platformError{
		code:           pe.Code(),
		classification: classification,
		message:        pe.Message(),
		context:        pe.Context(),
		cause:          pe.Unwrap(),
	}
}

// asPlatform returns the outermost PlatformError in err's chain, or wraps err
// as an unknown permanent error.
func asPlatform(err error) PlatformError {
	var pe PlatformError
	if errors.As(err, &pe) {
		return pe
	}
	return &platformError{
		code:           CodeUnknown,
		classification: ClassificationPermanent,
		message:        err.Error(),
		cause:          err,
	}
}
