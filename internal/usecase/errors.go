package usecase

import "fmt"

type ErrorCode string

const (
	ErrorInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrorUnavailable   ErrorCode = "UNAVAILABLE"
	ErrorRateLimited   ErrorCode = "RATE_LIMITED"
	ErrorUpstreamAuth  ErrorCode = "UPSTREAM_AUTH"
	ErrorUpstreamModel ErrorCode = "UPSTREAM_MODEL"
	ErrorUpstream      ErrorCode = "UPSTREAM_ERROR"
	ErrorInternal      ErrorCode = "INTERNAL_ERROR"
)

// Reasons attached to ErrorInvalidInput and ErrorUnavailable.
const (
	ReasonEmptyMessage    = "empty_message"
	ReasonMessageTooLong  = "message_too_long"
	ReasonClientNotReady  = "client_not_initialized"
	ReasonUpstreamFailure = "groq_error"
)

type Error struct {
	Code   ErrorCode
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("usecase: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Cause returns the text of the wrapped error, or "" when there is none.
func (e *Error) Cause() string {
	if e == nil || e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}
