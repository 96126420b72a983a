package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError represents a structured engine error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an AppError carrying the same code.
// A target without a code matches nothing.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok || t.Code == "" {
		return false
	}
	return e.Code == t.Code
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new AppError with a formatted message
func Newf(code, format string, args ...interface{}) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an error with additional context, keeping the code of the cause
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// GetCode returns the code of the outermost AppError in the chain, otherwise "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// Error codes
const (
	CodeInvalidSpec          = "INVALID_SPEC"
	CodeNoUsableSamples      = "NO_USABLE_SAMPLES"
	CodeDataQuality          = "DATA_QUALITY"
	CodeInvalidConfig        = "INVALID_CONFIG"
	CodeUnsupportedOperation = "UNSUPPORTED_OPERATION"
	CodeNumericalFitFailure  = "NUMERICAL_FIT_FAILURE"
	CodeInternalError        = "INTERNAL_ERROR"
)

// Sentinels for errors.Is matching by code.
var (
	ErrInvalidSpec          = New(CodeInvalidSpec, "invalid lag specification")
	ErrNoUsableSamples      = New(CodeNoUsableSamples, "no unmasked samples")
	ErrDataQuality          = New(CodeDataQuality, "data quality error")
	ErrInvalidConfig        = New(CodeInvalidConfig, "invalid configuration")
	ErrUnsupportedOperation = New(CodeUnsupportedOperation, "unsupported operation")
	ErrNumericalFitFailure  = New(CodeNumericalFitFailure, "numerical fit failure")
)

func InvalidSpec(format string, args ...interface{}) *AppError {
	return Newf(CodeInvalidSpec, format, args...)
}

func NoUsableSamples(message string) *AppError {
	return New(CodeNoUsableSamples, message)
}

func DataQuality(format string, args ...interface{}) *AppError {
	return Newf(CodeDataQuality, format, args...)
}

func InvalidConfig(format string, args ...interface{}) *AppError {
	return Newf(CodeInvalidConfig, format, args...)
}

// Unsupported reports that measure does not define operation.
func Unsupported(operation, measure string) *AppError {
	return Newf(CodeUnsupportedOperation, "%s not implemented for %s", operation, measure)
}

func NumericalFitFailure(message string) *AppError {
	return New(CodeNumericalFitFailure, message)
}

func IsInvalidSpec(err error) bool          { return stderrors.Is(err, ErrInvalidSpec) }
func IsNoUsableSamples(err error) bool      { return stderrors.Is(err, ErrNoUsableSamples) }
func IsDataQuality(err error) bool          { return stderrors.Is(err, ErrDataQuality) }
func IsInvalidConfig(err error) bool        { return stderrors.Is(err, ErrInvalidConfig) }
func IsUnsupportedOperation(err error) bool { return stderrors.Is(err, ErrUnsupportedOperation) }
func IsNumericalFitFailure(err error) bool  { return stderrors.Is(err, ErrNumericalFitFailure) }
