package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "error with cause",
			err: Wrap(KindConfig, "load", "failed to load config",
				errors.New("file not found")),
			contains: []string{"[config:load]", "failed to load config", "file not found"},
		},
		{
			name:     "error without cause",
			err:      New(KindBusiness, "validate", "invalid input"),
			contains: []string{"[business:validate]", "invalid input"},
		},
		{
			name:     "remote error includes code",
			err:      NewRemote(KindBusiness, "devices.pay", "INSUFFICIENT_MONTHS", "months too low", "", 422),
			contains: []string{"[business:devices.pay]", "months too low", "INSUFFICIENT_MONTHS"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errStr := tt.err.Error()
			for _, substr := range tt.contains {
				if !strings.Contains(errStr, substr) {
					t.Errorf("error string %q does not contain %q", errStr, substr)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	originalErr := errors.New("original error")
	wrappedErr := Wrap(KindConfig, "test", "wrapped", originalErr)

	if !errors.Is(wrappedErr, originalErr) {
		t.Error("Unwrap should return the original error")
	}
}

func TestIsKind(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		kind     Kind
		expected bool
	}{
		{
			name:     "direct error kind match",
			err:      New(KindConfig, "test", "message"),
			kind:     KindConfig,
			expected: true,
		},
		{
			name:     "wrapped error kind match",
			err:      Wrap(KindAuth, "test", "message", errors.New("cause")),
			kind:     KindAuth,
			expected: true,
		},
		{
			name:     "error kind mismatch",
			err:      New(KindConfig, "test", "message"),
			kind:     KindBusiness,
			expected: false,
		},
		{
			name:     "non-typed error",
			err:      errors.New("plain error"),
			kind:     KindConfig,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsKind(tt.err, tt.kind)
			if result != tt.expected {
				t.Errorf("IsKind() = %v, expected %v", result, tt.expected)
			}
		})
	}
}

func TestCodeOf(t *testing.T) {
	err := NewRemote(KindStepUp, "auth.login", CodeOTPRequired, "OTP required", "", 401)
	if CodeOf(err) != CodeOTPRequired {
		t.Errorf("CodeOf() = %q, expected %q", CodeOf(err), CodeOTPRequired)
	}
	if CodeOf(errors.New("plain")) != "" {
		t.Error("CodeOf() should be empty for untyped errors")
	}
	if !IsStepUp(err) {
		t.Error("IsStepUp() should report true for step-up errors")
	}
}

func TestMessageOf(t *testing.T) {
	remote := NewRemote(KindBusiness, "auth.register", "EMAIL_EXISTS", "email already registered", "", 409)
	if MessageOf(remote) != "email already registered" {
		t.Errorf("MessageOf() = %q", MessageOf(remote))
	}
	plain := errors.New("boom")
	if MessageOf(plain) != "boom" {
		t.Errorf("MessageOf() = %q", MessageOf(plain))
	}
	if MessageOf(nil) != "" {
		t.Error("MessageOf(nil) should be empty")
	}
}
