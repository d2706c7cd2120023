// Package errors provides standardized error handling for the telemetry
// ingestion core.
//
// # Overview
//
// The package implements a three-class error classification system:
// Transient (temporary, retryable), Invalid (bad input, non-retryable),
// and Fatal (unrecoverable, stop processing). Classification enables
// components to make retry and drop decisions without string matching.
//
// On top of the classes, two error shapes carry domain meaning:
//
//   - ValidationError names the payload field that failed normalization
//     (device_id, field_id, type, value), so ingestion handlers can report
//     precisely why a message was dropped.
//   - ErrUnknownDevice signals a status update against an unregistered
//     device; the ingestion handler decides between auto-registration and
//     drop-and-alert.
//
// # Error Wrapping Pattern
//
// All error wrapping follows the standardized format:
//
//	"component.method: action failed: %w"
//
// Three wrapper functions provide classification-aware wrapping:
//
//	errors.WrapTransient(err, "Client", "Connect", "dial broker")
//	errors.WrapInvalid(err, "Normalizer", "Normalize", "parse body")
//	errors.WrapFatal(err, "Config", "Load", "read file")
//
// The generic Wrap() preserves the original error's classification.
//
// # Integration with errors.As/Is
//
// All error types support standard library inspection:
//
//	if field, ok := errors.IsValidation(err); ok {
//	    log.Warn("dropping message", "field", field)
//	}
//
//	if errors.Is(err, errors.ErrUnknownDevice) {
//	    // auto-register or drop
//	}
//
// Classification is preserved through wrapping chains.
package errors
