package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeRoleLookupFailed, "test error message")

	if err.Code != ErrCodeRoleLookupFailed {
		t.Errorf("expected code %s, got %s", ErrCodeRoleLookupFailed, err.Code)
	}

	if err.Message != "test error message" {
		t.Errorf("expected message 'test error message', got '%s'", err.Message)
	}

	if err.Cause != nil {
		t.Errorf("expected nil cause, got %v", err.Cause)
	}
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(ErrCodeBackendRequest, "request failed", cause)

	if err.Code != ErrCodeBackendRequest {
		t.Errorf("expected code %s, got %s", ErrCodeBackendRequest, err.Code)
	}

	if err.Cause != cause {
		t.Errorf("expected cause to be set")
	}

	if !errors.Is(err, cause) {
		t.Errorf("Wrap should support errors.Is")
	}
}

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		wantCode string
		wantMsg  string
	}{
		{
			name:     "simple error",
			err:      New(ErrCodeConfigInvalid, "missing url"),
			wantCode: "CONFIG-001",
			wantMsg:  "missing url",
		},
		{
			name:     "error with cause",
			err:      Wrap(ErrCodeBackendRequest, "lookup failed", fmt.Errorf("dial tcp: timeout")),
			wantCode: "BACKEND-001",
			wantMsg:  "dial tcp: timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errStr := tt.err.Error()

			if !strings.Contains(errStr, tt.wantCode) {
				t.Errorf("error string should contain code %s, got: %s", tt.wantCode, errStr)
			}

			if !strings.Contains(errStr, tt.wantMsg) {
				t.Errorf("error string should contain message '%s', got: %s", tt.wantMsg, errStr)
			}
		})
	}
}

func TestWithSuggestion(t *testing.T) {
	err := New(ErrCodeConfigInvalid, "bad config").
		WithSuggestion("Check pmos.yaml")

	if len(err.Suggestions) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(err.Suggestions))
	}

	errStr := err.Error()
	if !strings.Contains(errStr, "Suggestions:") {
		t.Errorf("error string should contain suggestions section")
	}
	if !strings.Contains(errStr, "Check pmos.yaml") {
		t.Errorf("error string should contain suggestion text")
	}
}

func TestWithSuggestionsAndDocs(t *testing.T) {
	docsURL := "https://github.com/felixgeelhaar/pmos#configuration"
	err := New(ErrCodeConfigInvalid, "bad config").
		WithSuggestions("one", "two").
		WithDocs(docsURL)

	if len(err.Suggestions) != 2 {
		t.Errorf("expected 2 suggestions, got %d", len(err.Suggestions))
	}

	errStr := err.Error()
	if !strings.Contains(errStr, "Documentation: "+docsURL) {
		t.Errorf("error string should contain docs URL, got: %s", errStr)
	}
}

func TestCodeMatching(t *testing.T) {
	inner := NewLookupFailedError("users", fmt.Errorf("timeout"))
	outer := fmt.Errorf("classify: %w", inner)

	if got := CodeOf(outer); got != ErrCodeRoleLookupFailed {
		t.Errorf("CodeOf: expected %s, got %s", ErrCodeRoleLookupFailed, got)
	}

	if !HasCode(outer, ErrCodeRoleLookupFailed) {
		t.Errorf("HasCode should find the wrapped code")
	}

	if HasCode(outer, ErrCodeAuthTokenInvalid) {
		t.Errorf("HasCode should not match a different code")
	}

	if !errors.Is(outer, New(ErrCodeRoleLookupFailed, "")) {
		t.Errorf("errors.Is should match on code")
	}

	if CodeOf(fmt.Errorf("plain")) != "" {
		t.Errorf("CodeOf should be empty for plain errors")
	}
}

func TestHasCodeNested(t *testing.T) {
	root := Wrap(ErrCodeBackendStatus, "status 500", nil)
	mid := Wrap(ErrCodeBackendRequest, "request", root)
	top := NewLookupFailedError("team_members", mid)

	for _, code := range []ErrorCode{ErrCodeRoleLookupFailed, ErrCodeBackendRequest, ErrCodeBackendStatus} {
		if !HasCode(top, code) {
			t.Errorf("expected chain to contain %s", code)
		}
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		wantCode ErrorCode
		contains string
	}{
		{"invalid identity", NewInvalidIdentityError(), ErrCodeRoleInvalidIdentity, "empty"},
		{"lookup failed", NewLookupFailedError("users", fmt.Errorf("boom")), ErrCodeRoleLookupFailed, "users"},
		{"provider unavailable", NewProviderUnavailableError(fmt.Errorf("boom")), ErrCodeAuthProviderUnavailable, "SUPABASE_JWT_SECRET"},
		{"backend status", NewBackendStatusError("exists users", 503, "down"), ErrCodeBackendStatus, "503"},
		{"config invalid", NewConfigInvalidError("backend.url is required"), ErrCodeConfigInvalid, "backend.url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, tt.err.Code)
			}
			if !strings.Contains(tt.err.Error(), tt.contains) {
				t.Errorf("expected %q in %q", tt.contains, tt.err.Error())
			}
		})
	}
}

func TestErrorCodes(t *testing.T) {
	codes := []ErrorCode{
		ErrCodeRoleInvalidIdentity,
		ErrCodeRoleLookupFailed,
		ErrCodeAuthTokenInvalid,
		ErrCodeAuthProviderUnavailable,
		ErrCodeBackendRequest,
		ErrCodeBackendStatus,
		ErrCodeBackendDecode,
		ErrCodeBackendNotSupport,
		ErrCodeCronUnauthorized,
		ErrCodeCronProcedureFailed,
		ErrCodeConfigInvalid,
		ErrCodeConfigRead,
	}

	for _, code := range codes {
		parts := strings.Split(string(code), "-")
		if len(parts) != 2 {
			t.Errorf("error code %s should have format CATEGORY-NNN", code)
			continue
		}
		if len(parts[1]) != 3 {
			t.Errorf("error code %s should have 3-digit number", code)
		}
	}
}
