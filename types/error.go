package types

import (
	"errors"
	"fmt"
	"time"
)

// ErrorCode represents a unified error code across videoflow.
type ErrorCode string

// Generation error codes
const (
	ErrInvalidRequest         ErrorCode = "INVALID_REQUEST"
	ErrMissingCredential      ErrorCode = "MISSING_CREDENTIAL"
	ErrSubmissionRejected     ErrorCode = "SUBMISSION_REJECTED"
	ErrInvalidOutputShape     ErrorCode = "INVALID_OUTPUT_SHAPE"
	ErrRemoteGenerationFailed ErrorCode = "REMOTE_GENERATION_FAILED"
	ErrPipelineStageFailed    ErrorCode = "PIPELINE_STAGE_FAILED"
	ErrUnsupportedModel       ErrorCode = "UNSUPPORTED_MODEL"
	ErrTransport              ErrorCode = "TRANSPORT_ERROR"
	ErrTimeout                ErrorCode = "TIMEOUT"
)

// API error codes
const (
	ErrAuthentication ErrorCode = "AUTHENTICATION"
	ErrUnauthorized   ErrorCode = "UNAUTHORIZED"
	ErrRateLimited    ErrorCode = "RATE_LIMITED"
	ErrBusy           ErrorCode = "BUSY"
	ErrInternalError  ErrorCode = "INTERNAL_ERROR"
)

// Pipeline stages reported by ErrPipelineStageFailed.
const (
	StageImage = "image"
	StageVideo = "video"
)

// Error represents a structured error with code, message, and metadata.
type Error struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	HTTPStatus int       `json:"http_status,omitempty"`
	Provider   string    `json:"provider,omitempty"`

	// Stage is set for ErrPipelineStageFailed.
	Stage string `json:"stage,omitempty"`
	// Detail carries the backend's own failure text for ErrRemoteGenerationFailed.
	Detail string `json:"detail,omitempty"`
	// UpstreamStatus and UpstreamBody are set for ErrSubmissionRejected.
	UpstreamStatus int    `json:"upstream_status,omitempty"`
	UpstreamBody   string `json:"upstream_body,omitempty"`

	Cause error `json:"-"`
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

// NewError creates a new Error with the given code and message.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
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

// WithProvider sets the provider name.
func (e *Error) WithProvider(provider string) *Error {
	e.Provider = provider
	return e
}

// AsError returns the outermost *Error in err's chain.
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

// =============================================================================
// Constructors for the generation failure taxonomy
// =============================================================================

// MissingCredential reports that no secret is configured for service.
func MissingCredential(provider, service string) *Error {
	return NewError(ErrMissingCredential,
		fmt.Sprintf("no credential configured for service %q", service)).
		WithProvider(provider)
}

// SubmissionRejected reports a non-success status from a remote call.
func SubmissionRejected(provider string, status int, body string) *Error {
	e := NewError(ErrSubmissionRejected,
		fmt.Sprintf("%s rejected the request with status %d", provider, status)).
		WithProvider(provider)
	e.UpstreamStatus = status
	e.UpstreamBody = body
	return e
}

// InvalidOutputShape reports a payload that carries no usable result URL.
func InvalidOutputShape(provider, detail string) *Error {
	return NewError(ErrInvalidOutputShape,
		fmt.Sprintf("%s returned an unexpected output shape: %s", provider, detail)).
		WithProvider(provider)
}

// RemoteGenerationFailed reports a job the backend itself marked failed.
func RemoteGenerationFailed(provider, detail string) *Error {
	if detail == "" {
		detail = "no failure detail provided"
	}
	e := NewError(ErrRemoteGenerationFailed,
		fmt.Sprintf("%s generation failed: %s", provider, detail)).
		WithProvider(provider)
	e.Detail = detail
	return e
}

// PipelineStageFailed wraps the failure of one pipeline stage.
func PipelineStageFailed(stage string, cause error) *Error {
	e := NewError(ErrPipelineStageFailed,
		fmt.Sprintf("pipeline %s stage failed", stage)).
		WithCause(cause)
	e.Stage = stage
	if inner, ok := AsError(cause); ok {
		e.Provider = inner.Provider
	}
	return e
}

// UnsupportedModel reports a model identifier with no registered route.
func UnsupportedModel(model string) *Error {
	return NewError(ErrUnsupportedModel, fmt.Sprintf("model %q is not supported", model))
}

// TransportError wraps a network-level failure.
func TransportError(provider string, cause error) *Error {
	return NewError(ErrTransport, fmt.Sprintf("%s request failed", provider)).
		WithProvider(provider).
		WithCause(cause)
}

// Timeout reports that a provider did not reach a terminal state in time.
func Timeout(provider string, after time.Duration) *Error {
	return NewError(ErrTimeout,
		fmt.Sprintf("%s did not finish within %s", provider, after)).
		WithProvider(provider)
}

// DisplayMessage renders err as a single line suitable for end users.
// Upstream bodies and causes are left out.
func DisplayMessage(err error) string {
	if err == nil {
		return ""
	}
	e, ok := AsError(err)
	if !ok {
		return "generation failed: " + err.Error()
	}
	switch e.Code {
	case ErrPipelineStageFailed:
		if inner, ok := AsError(e.Cause); ok && inner != e {
			return fmt.Sprintf("%s (%s)", e.Message, DisplayMessage(inner))
		}
		return e.Message
	case ErrTransport:
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
	}
	return e.Message
}
