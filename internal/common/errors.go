package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Error taxonomy. Document-level errors fail the whole document before any
// attribute is attempted; attribute-level errors are recorded per attribute.
var (
	// Document-level (fatal to that document only).
	ErrDocumentRead      = errors.New("document read failed")
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrTextExtraction    = errors.New("text extraction failed")

	// Attribute-level, retryable.
	ErrProviderTimeout = errors.New("provider timeout")
	ErrProviderService = errors.New("provider service error")

	// Attribute-level, non-retryable.
	ErrValidation     = errors.New("validation failed")
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// Never propagated to callers; a broken cache degrades to a miss.
	ErrCache = errors.New("cache error")

	ErrConfiguration = errors.New("invalid configuration")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsRetryable reports whether err is a transient provider failure eligible
// for automatic re-attempt. Validation and configuration errors are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRetryExhausted) {
		return false
	}
	return errors.Is(err, ErrProviderTimeout) || errors.Is(err, ErrProviderService)
}

// IsDocumentFailure reports whether err fails the whole document
// (read, format or text extraction failure).
func IsDocumentFailure(err error) bool {
	return errors.Is(err, ErrDocumentRead) ||
		errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrTextExtraction)
}
