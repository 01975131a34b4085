// Package errs provides the shared error types of the pattern factory service.
//
// Each type follows the same shape: a sentinel error variable, a struct with
// the details of the failure, constructors with and without a cause, and an
// Unwrap method returning the sentinel so callers can classify errors with
// errors.Is. The HTTP adapter relies on that classification to choose status
// codes.
package errs
