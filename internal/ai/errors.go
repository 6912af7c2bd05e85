package ai

import (
	"errors"
	"fmt"
)

// Failure kinds. Every error returned by a Generator matches exactly one of
// these with errors.Is.
var (
	ErrCredentialMissing = errors.New("credential unavailable")
	ErrTransport         = errors.New("transport failure")
	ErrMalformedResponse = errors.New("no usable content")
	ErrEmptyInput        = errors.New("empty input")
)

// Error describes a failed generation request
type Error struct {
	Kind       error
	StatusCode int // HTTP status when the provider answered with a non-2xx
	Message    string
	Cause      error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

func credentialMissing(provider string) error {
	return &Error{Kind: ErrCredentialMissing, Message: provider + " API key is not configured"}
}

func transportError(msg string, cause error) error {
	return &Error{Kind: ErrTransport, Message: msg, Cause: cause}
}

func statusError(code int, body string) error {
	return &Error{Kind: ErrTransport, StatusCode: code, Message: body}
}

// invalidRequest is a request that cannot be sent as given
func invalidRequest(msg string, cause error) error {
	return &Error{Kind: ErrEmptyInput, Message: msg, Cause: cause}
}

func malformed(msg string, cause error) error {
	return &Error{Kind: ErrMalformedResponse, Message: msg, Cause: cause}
}

// StatusCode returns the HTTP status carried by err, or 0
func StatusCode(err error) int {
	var aiErr *Error
	if errors.As(err, &aiErr) {
		return aiErr.StatusCode
	}
	return 0
}

// KindOf names the failure kind of err for logging
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCredentialMissing):
		return "credential_missing"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed_response"
	case errors.Is(err, ErrEmptyInput):
		return "empty_input"
	case errors.Is(err, ErrTransport):
		return "transport_failure"
	default:
		return "unknown"
	}
}
