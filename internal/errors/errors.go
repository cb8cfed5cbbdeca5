package errors

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Common error types that can be used across the application
var (
	ErrNotFound      = new(ErrCodeNotFound, "resource not found")
	ErrValidation    = new(ErrCodeValidation, "validation error")
	ErrUnprocessable = new(ErrCodeUnprocessable, "unprocessable request")
	ErrUnauthorized  = new(ErrCodeUnauthorized, "unauthorized")
	ErrConfiguration = new(ErrCodeConfiguration, "configuration error")
	ErrHTTPClient    = new(ErrCodeHTTPClient, "http client error")
	ErrIntegrity     = new(ErrCodeIntegrity, "data integrity error")
	ErrSystem        = new(ErrCodeSystemError, "system error")

	// maps errors to http status codes
	statusCodeMap = map[error]int{
		ErrNotFound:      http.StatusNotFound,
		ErrValidation:    http.StatusBadRequest,
		ErrUnprocessable: http.StatusUnprocessableEntity,
		ErrUnauthorized:  http.StatusUnauthorized,
		ErrConfiguration: http.StatusInternalServerError,
		ErrHTTPClient:    http.StatusInternalServerError,
		ErrIntegrity:     http.StatusInternalServerError,
		ErrSystem:        http.StatusInternalServerError,
	}
)

const (
	ErrCodeNotFound      = "not_found"
	ErrCodeValidation    = "validation_error"
	ErrCodeUnprocessable = "unprocessable"
	ErrCodeUnauthorized  = "unauthorized"
	ErrCodeConfiguration = "configuration_error"
	ErrCodeHTTPClient    = "http_client_error"
	ErrCodeIntegrity     = "data_integrity_error"
	ErrCodeSystemError   = "system_error"
)

// InternalError represents a domain error
type InternalError struct {
	Code    string // Machine-readable error code
	Message string // Human-readable error message
	Op      string // Logical operation name
	Err     error  // Underlying error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.DisplayError()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *InternalError) DisplayError() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Is implements error matching for wrapped errors
func (e *InternalError) Is(target error) bool {
	if target == nil {
		return false
	}

	t, ok := target.(*InternalError)
	if !ok {
		return errors.Is(e.Err, target)
	}

	return e.Code == t.Code
}

func new(code string, message string) *InternalError {
	return &InternalError{
		Code:    code,
		Message: message,
	}
}

// New creates a new InternalError with the given code and message
func New(code string, message string) *InternalError {
	return new(code, message)
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsUnprocessable checks if an error is an unprocessable request error
func IsUnprocessable(err error) bool {
	return errors.Is(err, ErrUnprocessable)
}

// IsUnauthorized checks if an error is an unauthorized error
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsConfiguration checks if an error is a configuration error
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrConfiguration)
}

// IsHTTPClient checks if an error is an http client error
func IsHTTPClient(err error) bool {
	return errors.Is(err, ErrHTTPClient)
}

// IsIntegrity checks if an error is a data integrity error
func IsIntegrity(err error) bool {
	return errors.Is(err, ErrIntegrity)
}

func HTTPStatusFromErr(err error) int {
	for e, status := range statusCodeMap {
		if errors.Is(err, e) {
			return status
		}
	}
	return http.StatusInternalServerError
}
