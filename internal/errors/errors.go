package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Status  int // HTTP status reported by the backend, 0 when not applicable
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

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr, ok := asAppError(err); ok {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Status:  appErr.Status,
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
	if appErr, ok := asAppError(err); ok {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Status:  appErr.Status,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// GetCode returns the error code if it's an AppError, otherwise returns "UNKNOWN"
func GetCode(err error) string {
	if appErr, ok := asAppError(err); ok {
		return appErr.Code
	}
	return "UNKNOWN"
}

// GetStatus returns the HTTP status carried by an AppError, or 0.
func GetStatus(err error) int {
	if appErr, ok := asAppError(err); ok {
		return appErr.Status
	}
	return 0
}

// UserMessage returns the message that should be shown to a user: the
// innermost AppError message when there is one, the plain error text otherwise.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var msg string
	for cur := err; cur != nil; cur = stderrors.Unwrap(cur) {
		if appErr, ok := cur.(*AppError); ok {
			msg = appErr.Message
		}
	}
	if msg == "" {
		return err.Error()
	}
	return msg
}

func asAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Predefined error codes
const (
	CodeConfigInvalid   = "CONFIG_INVALID"
	CodeDatabaseError   = "DATABASE_ERROR"
	CodeValidationError = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeInternalError   = "INTERNAL_ERROR"
	CodeExternalService = "EXTERNAL_SERVICE_ERROR"
	CodeInvalidInput    = "INVALID_INPUT"
	CodeAPIError        = "API_ERROR"
	CodeNetworkError    = "NETWORK_ERROR"
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func ValidationError(message string) *AppError {
	return New(CodeValidationError, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

// APIError is a non-2xx answer from the prediction backend.
func APIError(status int, message string) *AppError {
	if message == "" {
		message = "API request failed"
	}
	return &AppError{
		Code:    CodeAPIError,
		Message: message,
		Status:  status,
	}
}

// NetworkError is a transport failure talking to the prediction backend.
func NetworkError(cause error) *AppError {
	return &AppError{
		Code:    CodeNetworkError,
		Message: "network error",
		Cause:   cause,
	}
}

// IsValidation reports whether err is a backend 422 answer.
func IsValidation(err error) bool {
	return GetCode(err) == CodeAPIError && GetStatus(err) == http.StatusUnprocessableEntity
}
