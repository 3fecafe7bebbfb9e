// Package errors provides the standardized error taxonomy for the card engine.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Entity resolution
	ErrCodePersonNotFound   ErrorCode = "PERSON_NOT_FOUND"
	ErrCodeRecordNotFound   ErrorCode = "RECORD_NOT_FOUND"
	ErrCodeVaccineNotFound  ErrorCode = "VACCINE_NOT_FOUND"
	ErrCodeResourceNotFound ErrorCode = "RESOURCE_NOT_FOUND"

	// Writes
	ErrCodeValidationRejected ErrorCode = "VALIDATION_REJECTED"

	// Transport / collaborator
	ErrCodeTransientFailure ErrorCode = "TRANSIENT_FAILURE"
	ErrCodeUnauthorized     ErrorCode = "UNAUTHORIZED"

	// Response integrity
	ErrCodeIntegrityViolation ErrorCode = "INTEGRITY_VIOLATION"

	// Local misuse
	ErrCodeInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrCodeActionInFlight ErrorCode = "ACTION_IN_FLIGHT"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// Constructors
// ==========================

// NewPersonNotFoundError creates a non-retryable lookup error.
func NewPersonNotFoundError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodePersonNotFound,
		Message:   "Person not found",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRecordNotFoundError creates a non-retryable record error.
func NewRecordNotFoundError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRecordNotFound,
		Message:   "Administration record not found",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewVaccineNotFoundError creates a non-retryable catalog error.
func NewVaccineNotFoundError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeVaccineNotFound,
		Message:   "Vaccine not found",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewValidationRejectedError creates a non-retryable write rejection. The
// collaborator's message is preserved so the modal can show it verbatim.
func NewValidationRejectedError(message, details string) *StandardError {
	if message == "" {
		message = "Request rejected by the record keeper"
	}
	return &StandardError{
		Code:      ErrCodeValidationRejected,
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewTransientFailureError creates a retryable transport or server error.
func NewTransientFailureError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTransientFailure,
		Message:   "Record keeper temporarily unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnauthorizedError creates a non-retryable credential error.
func NewUnauthorizedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnauthorized,
		Message:   "Authentication required",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewIntegrityViolationError flags a collaborator response that breaks the
// card invariants (e.g. a scheduled dose entry missing for a vaccine).
func NewIntegrityViolationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeIntegrityViolation,
		Message:   "Card response violates dose schedule invariants",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidInputError flags caller misuse before any request is issued.
func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Invalid input",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewActionInFlightError rejects re-entry while a request is outstanding.
func NewActionInFlightError(action string) *StandardError {
	return &StandardError{
		Code:      ErrCodeActionInFlight,
		Message:   "Another action is still in flight",
		Details:   fmt.Sprintf("action: %s", action),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// Utility functions
// ==========================

// AsStandardError normalizes any error into a StandardError; unknown errors
// become transient failures so callers always get the taxonomy.
func AsStandardError(err error) *StandardError {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return NewTransientFailureError(err)
}

// Code extracts the taxonomy code from an error, UNKNOWN_ERROR otherwise.
func Code(err error) ErrorCode {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Code
	}
	return "UNKNOWN_ERROR"
}

// NewResourceNotFoundError is the transport-level 404 before the caller
// attributes it to a concrete entity.
func NewResourceNotFoundError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeResourceNotFound,
		Message:   "Resource not found",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// IsNotFound reports whether the error is any of the not-found codes.
func IsNotFound(err error) bool {
	switch Code(err) {
	case ErrCodePersonNotFound, ErrCodeRecordNotFound, ErrCodeVaccineNotFound, ErrCodeResourceNotFound:
		return true
	}
	return false
}

// IsRetryable reports whether the caller may usefully retry.
func IsRetryable(err error) bool {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr.Retryable
	}
	return false
}
