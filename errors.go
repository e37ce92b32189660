package flakewrap

import (
	"errors"
	"fmt"
)

// InternalError represents an unexpected error of flakewrap itself that
// should lead to exit code 1. Examples include configuration errors and
// a report that claims zero failures despite a non-zero exit code.
type InternalError struct {
	Err error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("internal error: %v", e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *InternalError) Unwrap() error {
	return e.Err
}

// NewInternalError creates a new InternalError
func NewInternalError(err error) *InternalError {
	return &InternalError{Err: err}
}

// IsInternalError checks if the error is or wraps an InternalError
func IsInternalError(err error) bool {
	var internalErr *InternalError
	return err != nil && errors.As(err, &internalErr)
}

// TestFailureError represents test cases that still failed after
// exhausting their retry budget (exit code 2)
type TestFailureError struct {
	Message string
}

func (e *TestFailureError) Error() string {
	return fmt.Sprintf("test failure: %s", e.Message)
}

// NewTestFailureError creates a new TestFailureError
func NewTestFailureError(message string) *TestFailureError {
	return &TestFailureError{Message: message}
}

// IsTestFailureError checks if the error is or wraps a TestFailureError
func IsTestFailureError(err error) bool {
	var testErr *TestFailureError
	return err != nil && errors.As(err, &testErr)
}

// CrashError represents abnormal termination of the test binary (exit
// code 3): a signal, a timeout, an unstartable binary, or a full run that
// repeatedly failed to produce a parsable report.
type CrashError struct {
	Err error
}

func (e *CrashError) Error() string {
	return fmt.Sprintf("test binary crashed: %v", e.Err)
}

// Unwrap implements the errors.Unwrap interface
func (e *CrashError) Unwrap() error {
	return e.Err
}

// NewCrashError creates a new CrashError
func NewCrashError(err error) *CrashError {
	return &CrashError{Err: err}
}

// IsCrashError checks if the error is or wraps a CrashError
func IsCrashError(err error) bool {
	var crashErr *CrashError
	return err != nil && errors.As(err, &crashErr)
}
