package errors

import (
	"errors"
	"fmt"
	"testing"
)

type problemsError struct{ n int }

func (e *problemsError) Error() string { return fmt.Sprintf("%d problems", e.n) }
func (e *problemsError) Code() Code    { return ErrCodeValidation }

func TestNew(t *testing.T) {
	err := New(ErrCodeDecode, "unsupported relationship type: %q", "cousin")

	if err.Code != ErrCodeDecode {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeDecode)
	}

	if err.Message != `unsupported relationship type: "cousin"` {
		t.Errorf("Message = %v", err.Message)
	}

	expected := `DECODE_ERROR: unsupported relationship type: "cousin"`
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(ErrCodeStorage, cause, "can't write project file")

	if err.Code != ErrCodeStorage {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeStorage)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	if unwrapped := errors.Unwrap(err); unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeDecode, "test"),
			code:     ErrCodeDecode,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeDecode, "test"),
			code:     ErrCodeStorage,
			expected: false,
		},
		{
			name:     "outer code",
			err:      Wrap(ErrCodeStorage, New(ErrCodeDecode, "inner"), "outer"),
			code:     ErrCodeStorage,
			expected: true,
		},
		{
			name:     "inner code",
			err:      Wrap(ErrCodeStorage, New(ErrCodeDecode, "inner"), "outer"),
			code:     ErrCodeDecode,
			expected: true,
		},
		{
			name:     "coder in chain",
			err:      Wrap(ErrCodeStorage, &problemsError{n: 2}, "outer"),
			code:     ErrCodeValidation,
			expected: true,
		},
		{
			name:     "fmt wrapped",
			err:      fmt.Errorf("load: %w", New(ErrCodeStorage, "x")),
			code:     ErrCodeStorage,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{"Error type", New(ErrCodeNotFound, "test"), ErrCodeNotFound},
		{"coder", &problemsError{n: 1}, ErrCodeValidation},
		{"outermost wins", Wrap(ErrCodeStorage, &problemsError{}, "x"), ErrCodeStorage},
		{"plain error", errors.New("plain"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"Error type", New(ErrCodeInvalidInput, "friendly message"), "friendly message"},
		{"with cause", Wrap(ErrCodeStorage, errors.New("permission denied"), "can't read project file"), "can't read project file: permission denied"},
		{"plain error", errors.New("plain error"), "plain error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput,
		ErrCodeDecode,
		ErrCodeValidation,
		ErrCodeStorage,
		ErrCodeNotFound,
		ErrCodeInternal,
		ErrCodeUnsupported,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
