package errors

// ErrorCode represents a specific error condition.
// Error codes are string-based for debuggability and natural JSON serialization.
type ErrorCode string

const (
	// Validation errors.

	// CodeInvalidArgument indicates a blank destination or a name containing a
	// character the provider forbids in a single path segment.
	CodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"

	// CodeInvalidConfig indicates a configuration error prevents the operation.
	CodeInvalidConfig ErrorCode = "INVALID_CONFIGURATION"

	// Transfer errors.

	// CodeSourceNotFound indicates the item being copied, moved or renamed does
	// not exist at the moment of the operation.
	CodeSourceNotFound ErrorCode = "SOURCE_NOT_FOUND"

	// CodeAlreadyExists indicates the destination is occupied and the policy
	// forbids resolving the collision.
	CodeAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// CodeSourceEqualsDestination indicates the source and the resolved
	// destination refer to the same item.
	CodeSourceEqualsDestination ErrorCode = "SOURCE_EQUALS_DESTINATION"

	// Infrastructure errors.

	// CodeProviderFailure indicates the storage provider failed for a reason
	// unrelated to name collisions (permissions, device error, disk full).
	CodeProviderFailure ErrorCode = "PROVIDER_FAILURE"

	// CodeJournal indicates a committed operation could not be recorded.
	CodeJournal ErrorCode = "JOURNAL_FAILURE"

	// System errors.

	// CodeInternal indicates an internal invariant was violated.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeUnknown indicates an unknown or unclassified error occurred.
	CodeUnknown ErrorCode = "UNKNOWN"
)

// ErrorClassification indicates whether an error should trigger a retry.
type ErrorClassification string

const (
	// ClassificationRetryable indicates temporary failures that may succeed on retry.
	ClassificationRetryable ErrorClassification = "RETRYABLE"

	// ClassificationPermanent indicates failures that will not succeed on retry.
	ClassificationPermanent ErrorClassification = "PERMANENT"
)

// IsRetryable returns true if the classification indicates retry should be attempted.
func (c ErrorClassification) IsRetryable() bool {
	return c == ClassificationRetryable
}

var defaultClassifications = map[ErrorCode]ErrorClassification{
	CodeProviderFailure: ClassificationRetryable,
	CodeJournal:         ClassificationRetryable,

	CodeInvalidArgument:         ClassificationPermanent,
	CodeInvalidConfig:           ClassificationPermanent,
	CodeSourceNotFound:          ClassificationPermanent,
	CodeAlreadyExists:           ClassificationPermanent,
	CodeSourceEqualsDestination: ClassificationPermanent,
	CodeInternal:                ClassificationPermanent,
	CodeUnknown:                 ClassificationPermanent,
}

// getDefaultClassification returns the default classification for an error code.
// Unmapped codes are permanent.
func getDefaultClassification(code ErrorCode) ErrorClassification {
	if class, ok := defaultClassifications[code]; ok {
		return class
	}
	return ClassificationPermanent
}
