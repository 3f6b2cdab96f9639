// Package errors provides structured error handling for the storage engine.
//
// Every failure surfaced by the engine carries an ErrorCode naming its kind
// (invalid argument, missing source, collision, self-transfer, provider
// failure), a classification used for retry decisions, optional context
// metadata, and the wrapped cause. The package stays compatible with the
// standard library errors package (errors.Is, errors.As, errors.Unwrap), so a
// caller can still match the provider's original error:
//
//	err := file.Move("/archive/report.pdf", storage.FailIfExists)
//	switch errors.GetCode(err) {
//	case errors.CodeAlreadyExists:
//	    // destination occupied
//	case errors.CodeSourceNotFound:
//	    // the file vanished before the move
//	}
//	if errors.Is(err, fs.ErrPermission) {
//	    // underlying provider refused the operation
//	}
//
// # Error Codes
//
//   - CodeInvalidArgument: blank paths, names with reserved characters
//   - CodeSourceNotFound: the item being transferred does not exist
//   - CodeAlreadyExists: destination occupied under FailIfExists
//   - CodeSourceEqualsDestination: source and destination are the same item
//   - CodeProviderFailure: I/O failure unrelated to collisions
//   - CodeInvalidConfig, CodeJournal, CodeInternal, CodeUnknown
//
// # Classification
//
// Provider failures are retryable by default; every other code is permanent.
// The classification is preserved when wrapping and can be overridden with
// WithClassification.
package errors
