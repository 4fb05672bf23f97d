package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// Role errors (ROLE-001 to ROLE-099)
	ErrCodeRoleInvalidIdentity ErrorCode = "ROLE-001"
	ErrCodeRoleLookupFailed    ErrorCode = "ROLE-002"

	// Authentication errors (AUTH-001 to AUTH-099)
	ErrCodeAuthTokenInvalid        ErrorCode = "AUTH-001"
	ErrCodeAuthProviderUnavailable ErrorCode = "AUTH-002"

	// Backend errors (BACKEND-001 to BACKEND-099)
	ErrCodeBackendRequest    ErrorCode = "BACKEND-001"
	ErrCodeBackendStatus     ErrorCode = "BACKEND-002"
	ErrCodeBackendDecode     ErrorCode = "BACKEND-003"
	ErrCodeBackendNotSupport ErrorCode = "BACKEND-004"

	// Cron errors (CRON-001 to CRON-099)
	ErrCodeCronUnauthorized    ErrorCode = "CRON-001"
	ErrCodeCronProcedureFailed ErrorCode = "CRON-002"

	// Configuration errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigInvalid ErrorCode = "CONFIG-001"
	ErrCodeConfigRead    ErrorCode = "CONFIG-002"
)

// Error represents an enhanced error with code, suggestions, and documentation
type Error struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same code.
// This lets callers match on a code with errors.Is(err, errors.New(code, "")).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// New creates a new Error
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new Error wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *Error) WithSuggestion(suggestion string) *Error {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *Error) WithSuggestions(suggestions ...string) *Error {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *Error) WithDocs(url string) *Error {
	e.DocsURL = url
	return e
}

// CodeOf returns the code of the first *Error in err's chain, or "" if there is none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// HasCode reports whether err's chain contains an *Error with the given code.
func HasCode(err error, code ErrorCode) bool {
	return errors.Is(err, &Error{Code: code})
}

// Common error constructors for frequently used errors

// NewInvalidIdentityError creates an error for an empty or malformed user identifier
func NewInvalidIdentityError() *Error {
	return New(ErrCodeRoleInvalidIdentity, "user identifier is empty").
		WithSuggestion("Authenticate the request before classifying its role")
}

// NewLookupFailedError creates a role lookup failure error
func NewLookupFailedError(store string, cause error) *Error {
	return Wrap(ErrCodeRoleLookupFailed, fmt.Sprintf("role lookup failed against %s", store), cause).
		WithSuggestion("Check that the backend is reachable with 'pmos serve' readiness probe /health/ready").
		WithSuggestion("Verify SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY")
}

// NewProviderUnavailableError creates an identity provider unavailable error
func NewProviderUnavailableError(cause error) *Error {
	return Wrap(ErrCodeAuthProviderUnavailable, "identity provider unavailable", cause).
		WithSuggestion("Set SUPABASE_JWT_SECRET to verify session tokens locally").
		WithSuggestion("Check connectivity to the backend auth endpoint")
}

// NewBackendStatusError creates an unexpected status error
func NewBackendStatusError(operation string, status int, body string) *Error {
	msg := fmt.Sprintf("%s: unexpected status %d", operation, status)
	if body != "" {
		msg += fmt.Sprintf(" (%s)", body)
	}
	return New(ErrCodeBackendStatus, msg)
}

// NewConfigInvalidError creates a configuration validation error
func NewConfigInvalidError(details string) *Error {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", details)).
		WithSuggestion("Run 'pmos config show' to inspect the effective configuration").
		WithSuggestion("Set the missing value in pmos.yaml or through the environment")
}
