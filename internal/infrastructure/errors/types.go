package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode classifies window-command failures
type ErrorCode int

const (
	CodeUnknown ErrorCode = iota
	CodeNotFound
	CodeHostFailure
	CodeValidation
)

// String returns a string representation of the error code
func (e ErrorCode) String() string {
	switch e {
	case CodeNotFound:
		return "NOT_FOUND"
	case CodeHostFailure:
		return "HOST_FAILURE"
	case CodeValidation:
		return "VALIDATION"
	default:
		return "UNKNOWN"
	}
}

// WindowError represents a window-command failure with its classification.
// Callers distinguish the two interesting classes (label not found vs the
// host call itself failing) through the Code rather than string matching.
type WindowError struct {
	Op        string    // operation name, e.g. "close_session_window"
	Label     string    // window label the operation targeted, if any
	Code      ErrorCode // error classification
	Err       error     // underlying host error
	Timestamp time.Time // when the error occurred
}

func (e *WindowError) Error() string {
	// Guard against nil receiver
	if e == nil {
		return "window error"
	}

	var msg string
	switch {
	case e.Code == CodeNotFound:
		msg = fmt.Sprintf("window not found: %s", e.Label)
	case e.Err != nil:
		msg = e.Err.Error()
	default:
		msg = "window error"
	}

	if e.Op != "" {
		return fmt.Sprintf("%s [op=%s code=%s]", msg, e.Op, e.Code)
	}
	return msg
}

func (e *WindowError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is implements error matching for errors.Is
func (e *WindowError) Is(target error) bool {
	if e == nil {
		return false
	}
	if t, ok := target.(*WindowError); ok {
		return e.Code == t.Code
	}
	if e.Err != nil {
		return errors.Is(e.Err, target)
	}
	return false
}

// GetCode returns the error code as a string (for logging interface compatibility)
func (e *WindowError) GetCode() string {
	if e == nil {
		return CodeUnknown.String()
	}
	return e.Code.String()
}

// GetLabel returns the window label the failed operation targeted
func (e *WindowError) GetLabel() string {
	if e == nil {
		return ""
	}
	return e.Label
}

// GetTimestamp returns the error timestamp (for logging interface compatibility)
func (e *WindowError) GetTimestamp() time.Time {
	if e == nil {
		return time.Time{}
	}
	return e.Timestamp
}

// NewWindowError creates a new window error with the given parameters
func NewWindowError(op, label string, code ErrorCode, err error) *WindowError {
	return &WindowError{
		Op:        op,
		Label:     label,
		Code:      code,
		Err:       err,
		Timestamp: time.Now(),
	}
}

// NewNotFoundError reports that no window carries the given label
func NewNotFoundError(op, label string) *WindowError {
	return NewWindowError(op, label, CodeNotFound, nil)
}

// NewHostError wraps a failure of the underlying window manager call
func NewHostError(op, label string, err error) *WindowError {
	return NewWindowError(op, label, CodeHostFailure, err)
}

// NewValidationError reports malformed command input
func NewValidationError(op string, err error) *WindowError {
	return NewWindowError(op, "", CodeValidation, err)
}

// IsNotFound checks if the error is a "window not found" error
func IsNotFound(err error) bool {
	var winErr *WindowError
	if errors.As(err, &winErr) {
		return winErr.Code == CodeNotFound
	}
	return false
}

// IsHostFailure checks if the error came from the host window manager call
func IsHostFailure(err error) bool {
	var winErr *WindowError
	if errors.As(err, &winErr) {
		return winErr.Code == CodeHostFailure
	}
	return false
}

// IsValidation checks if the error is a validation error
func IsValidation(err error) bool {
	var winErr *WindowError
	if errors.As(err, &winErr) {
		return winErr.Code == CodeValidation
	}
	return false
}
