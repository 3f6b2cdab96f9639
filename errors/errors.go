package errors

import (
	"fmt"
	"maps"
)

// PlatformError extends the standard error interface with structured information.
//
// PlatformError provides error codes for categorization, classification for
// retry logic, contextual metadata, and compatibility with standard library
// error handling (errors.Is, errors.As, errors.Unwrap).
type PlatformError interface {
	error

	// Code returns the error code identifying the type of error.
	Code() ErrorCode

	// Classification returns whether the error is retryable or permanent.
	Classification() ErrorClassification

	// Message returns the human-readable error message.
	Message() string

	// Context returns attached metadata as a read-only map.
	// Returns nil if no context has been attached.
	Context() map[string]interface{}

	// Unwrap returns the wrapped error, or nil.
	Unwrap() error
}

// platformError is the concrete implementation of PlatformError.
// It is private to enforce construction through package functions.
type platformError struct {
	code           ErrorCode
	classification ErrorClassification
	message        string
	context        map[string]interface{}
	cause          error
}

// Error returns "[CODE] message" or "[CODE] message: cause".
func (e *platformError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.code, e.message)
}

func (e *platformError) Code() ErrorCode { return e.code }

func (e *platformError) Classification() ErrorClassification { return e.classification }

func (e *platformError) Message() string { return e.message }

// Context returns a copy of the context map, or nil if none is attached.
func (e *platformError) Context() map[string]interface{} {
	return cloneContext(e.context)
}

func (e *platformError) Unwrap() error { return e.cause }

func cloneContext(ctx map[string]interface{}) map[string]interface{} {
	if ctx == nil {
		return nil
	}
	return maps.Clone(ctx)
}
