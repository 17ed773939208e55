package gameerrors

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Error is the domain error type with structured metadata.
type Error struct {
	Code     Code              // Machine-readable error code
	Status   int               // HTTP status, 0 for local and transport errors
	Message  string            // Internal message (for logs)
	Metadata map[string]string // Additional context
	Cause    error             // Wrapped underlying error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain traversal.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// Recovery returns the recovery for the error's code.
func (e *Error) Recovery() Recovery {
	return e.Code.Recovery()
}

// New creates a domain error with a code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates a domain error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// FromStatus classifies a non-2xx response. The body is inspected for a
// server message and, when present, an explicit error code.
func FromStatus(status int, body []byte) *Error {
	e := &Error{
		Code:    CodeForStatus(status),
		Status:  status,
		Message: fmt.Sprintf("server returned status %d", status),
	}

	var payload struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
		Error   string          `json:"error"`
		Code    string          `json:"code"`
	}
	if len(body) == 0 || json.Unmarshal(body, &payload) != nil {
		return e
	}

	switch {
	case payload.Message != "":
		e.Message = payload.Message
	case payload.Error != "":
		e.Message = payload.Error
	case len(payload.Detail) > 0:
		var detail string
		if json.Unmarshal(payload.Detail, &detail) == nil {
			e.Message = detail
		} else {
			e.Message = strings.TrimSpace(string(payload.Detail))
		}
	}

	if code := Code(strings.ToUpper(payload.Code)); code != "" && code.Recovery() != RecoveryNone && !code.IsLocal() {
		e.Code = code
	}
	if e.Message != "" {
		e.Metadata = map[string]string{"detail": e.Message}
	}
	return e
}

// As extracts a *Error from err. Anything else is reported as a transport
// failure wrapping err.
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(CodeTransport, "request failed", err)
}
