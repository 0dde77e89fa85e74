package executor

import (
	"errors"
	"fmt"
)

// ExecutionError reports a query that a backend refused or failed to run.
type ExecutionError struct {
	// Code identifies the error category.
	Code ExecutionErrorCode

	// Backend names the store the query was sent to.
	Backend string

	// Query is the query text or a compact stage rendering, for diagnostics.
	Query string

	// Err is the underlying driver error.
	Err error
}

// ExecutionErrorCode categorizes execution errors.
type ExecutionErrorCode string

const (
	// ErrCodeConnection indicates the backend could not be reached.
	ErrCodeConnection ExecutionErrorCode = "CONNECTION_FAILED"

	// ErrCodeQueryFailed indicates the backend rejected or aborted the query.
	ErrCodeQueryFailed ExecutionErrorCode = "QUERY_FAILED"

	// ErrCodeDecode indicates a result row could not be read back.
	ErrCodeDecode ExecutionErrorCode = "DECODE_FAILED"
)

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	if e.Query != "" {
		return fmt.Sprintf("%s: %s backend: %v (query=%s)", e.Code, e.Backend, e.Err, e.Query)
	}
	return fmt.Sprintf("%s: %s backend: %v", e.Code, e.Backend, e.Err)
}

// Unwrap exposes the driver error for errors.Is/As chains.
func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// IsExecutionError returns true if the error is an ExecutionError.
// Uses errors.As to handle wrapped errors.
func IsExecutionError(err error) bool {
	var ee *ExecutionError
	return errors.As(err, &ee)
}
