package types

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unified error code across the gateway.
type ErrorCode string

// Client input error codes
const (
	ErrInvalidBody      ErrorCode = "INVALID_BODY"
	ErrPromptRequired   ErrorCode = "PROMPT_REQUIRED"
	ErrModelRequired    ErrorCode = "MODEL_REQUIRED"
	ErrInvalidSize      ErrorCode = "INVALID_SIZE"
	ErrUnsupportedModel ErrorCode = "UNSUPPORTED_MODEL"
	ErrRateLimited      ErrorCode = "RATE_LIMITED"
	ErrMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"
)

// Configuration and upstream error codes
const (
	ErrAPIKeyNotConfigured ErrorCode = "API_KEY_NOT_CONFIGURED"
	ErrGenerationFailed    ErrorCode = "GENERATION_FAILED"
	ErrInternalError       ErrorCode = "INTERNAL_ERROR"
)

// ErrorCategory groups error codes by who can fix them.
type ErrorCategory string

const (
	CategoryClientInput   ErrorCategory = "client_input"
	CategoryConfiguration ErrorCategory = "configuration"
	CategoryUpstream      ErrorCategory = "upstream"
	CategoryInternal      ErrorCategory = "internal"
)

// Category 返回错误码所属的分类.
func (c ErrorCode) Category() ErrorCategory {
	switch c {
	case ErrInvalidBody, ErrPromptRequired, ErrModelRequired, ErrInvalidSize,
		ErrUnsupportedModel, ErrRateLimited, ErrMethodNotAllowed:
		return CategoryClientInput
	case ErrAPIKeyNotConfigured:
		return CategoryConfiguration
	case ErrGenerationFailed:
		return CategoryUpstream
	default:
		return CategoryInternal
	}
}

// DefaultHTTPStatus returns the status a code maps to when none was set explicitly.
func (c ErrorCode) DefaultHTTPStatus() int {
	switch c {
	case ErrRateLimited:
		return http.StatusTooManyRequests
	case ErrMethodNotAllowed:
		return http.StatusMethodNotAllowed
	}
	if c.Category() == CategoryClientInput {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Error represents a structured error with code, message, and metadata.
// It is created where a failure is detected and travels unchanged to the response.
type Error struct {
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	HTTPStatus int               `json:"http_status,omitempty"`
	Params     map[string]string `json:"params,omitempty"`
	Provider   string            `json:"provider,omitempty"`
	Cause      error             `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Status returns the HTTP status, falling back to the code default.
func (e *Error) Status() int {
	if e.HTTPStatus != 0 {
		return e.HTTPStatus
	}
	return e.Code.DefaultHTTPStatus()
}

// NewError creates a new Error with the given code and message.
// The HTTP status is preset from the code.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message, HTTPStatus: code.DefaultHTTPStatus()}
}

// WithCause adds a cause to the error.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithHTTPStatus sets the HTTP status code.
func (e *Error) WithHTTPStatus(status int) *Error {
	e.HTTPStatus = status
	return e
}

// WithParam attaches a string parameter.
func (e *Error) WithParam(key, value string) *Error {
	if e.Params == nil {
		e.Params = make(map[string]string)
	}
	e.Params[key] = value
	return e
}

// WithProvider sets the provider name.
func (e *Error) WithProvider(provider string) *Error {
	e.Provider = provider
	return e
}

// AsError extracts a *Error from an error chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// GetErrorCode extracts the error code from an error.
func GetErrorCode(err error) ErrorCode {
	if e, ok := AsError(err); ok {
		return e.Code
	}
	return ""
}
