package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorClass_String(t *testing.T) {
	tests := []struct {
		class    ErrorClass
		expected string
	}{
		{ErrorTransient, "transient"},
		{ErrorInvalid, "invalid"},
		{ErrorFatal, "fatal"},
		{ErrorClass(999), "unknown"},
	}

	for _, test := range tests {
		t.Run(test.expected, func(t *testing.T) {
			result := test.class.String()
			if result != test.expected {
				t.Errorf("expected %s, got %s", test.expected, result)
			}
		})
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection timeout", ErrConnectionTimeout, true},
		{"connection lost", ErrConnectionLost, true},
		{"not connected", ErrNotConnected, true},
		{"context deadline exceeded", context.DeadlineExceeded, true},
		{"context canceled", context.Canceled, true},
		{"invalid data", ErrInvalidData, false},
		{"unknown device", ErrUnknownDevice, false},
		{"timeout in message", fmt.Errorf("operation timeout occurred"), true},
		{"network error", fmt.Errorf("network connection failed"), true},
		{"classified transient", &ClassifiedError{Class: ErrorTransient, Err: fmt.Errorf("test")}, true},
		{"classified fatal", &ClassifiedError{Class: ErrorFatal, Err: fmt.Errorf("test")}, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := IsTransient(test.err)
			if result != test.expected {
				t.Errorf("expected %v, got %v for error: %v", test.expected, result, test.err)
			}
		})
	}
}

func TestIsInvalid(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"invalid data", ErrInvalidData, true},
		{"malformed json", ErrMalformedJSON, true},
		{"parsing failed", ErrParsingFailed, true},
		{"unknown device", ErrUnknownDevice, true},
		{"validation error", NewValidation("device_id", "missing"), true},
		{"wrapped validation error", fmt.Errorf("handler: %w", NewValidation("value", "not numeric")), true},
		{"classified invalid", &ClassifiedError{Class: ErrorInvalid, Err: fmt.Errorf("test")}, true},
		{"connection timeout", ErrConnectionTimeout, false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := IsInvalid(test.err)
			if result != test.expected {
				t.Errorf("expected %v, got %v for error: %v", test.expected, result, test.err)
			}
		})
	}
}

func TestIsFatal(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"invalid config", ErrInvalidConfig, true},
		{"missing config", ErrMissingConfig, true},
		{"connection timeout", ErrConnectionTimeout, false},
		{"invalid data", ErrInvalidData, false},
		{"classified fatal", &ClassifiedError{Class: ErrorFatal, Err: fmt.Errorf("test")}, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := IsFatal(test.err)
			if result != test.expected {
				t.Errorf("expected %v, got %v for error: %v", test.expected, result, test.err)
			}
		})
	}
}

func TestValidationError_Field(t *testing.T) {
	err := NewValidation("device_id", "missing required field")

	field, ok := IsValidation(err)
	if !ok {
		t.Fatal("expected validation error to be detected")
	}
	if field != "device_id" {
		t.Errorf("expected field device_id, got %s", field)
	}
	if !strings.Contains(err.Error(), "device_id") {
		t.Errorf("error message should name the field: %s", err.Error())
	}
}

func TestValidationError_DistinctCauses(t *testing.T) {
	// Missing device_id and non-numeric value must never be conflated.
	missing := NewValidation("device_id", "missing required field")
	nonNumeric := NewValidation("value", "cannot coerce to float64")

	f1, _ := IsValidation(missing)
	f2, _ := IsValidation(nonNumeric)
	if f1 == f2 {
		t.Errorf("distinct validation causes must carry distinct fields: %s vs %s", f1, f2)
	}
}

func TestWrap(t *testing.T) {
	base := errors.New("socket closed")
	wrapped := Wrap(base, "Client", "Connect", "dial broker")

	expected := "Client.Connect: dial broker failed: socket closed"
	if wrapped.Error() != expected {
		t.Errorf("expected %q, got %q", expected, wrapped.Error())
	}
	if !errors.Is(wrapped, base) {
		t.Error("wrapped error should match base via errors.Is")
	}
	if Wrap(nil, "Client", "Connect", "dial") != nil {
		t.Error("wrapping nil should return nil")
	}
}

func TestWrapClassified(t *testing.T) {
	base := errors.New("boom")

	if !IsTransient(WrapTransient(base, "C", "M", "a")) {
		t.Error("WrapTransient should classify as transient")
	}
	if !IsInvalid(WrapInvalid(base, "C", "M", "a")) {
		t.Error("WrapInvalid should classify as invalid")
	}
	if !IsFatal(WrapFatal(base, "C", "M", "a")) {
		t.Error("WrapFatal should classify as fatal")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected ErrorClass
	}{
		{"transient", ErrConnectionLost, ErrorTransient},
		{"invalid", ErrMalformedJSON, ErrorInvalid},
		{"fatal", ErrInvalidConfig, ErrorFatal},
		{"validation", NewValidation("field_id", "missing"), ErrorInvalid},
		{"unknown defaults transient", errors.New("mystery"), ErrorTransient},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := Classify(test.err); got != test.expected {
				t.Errorf("expected %v, got %v", test.expected, got)
			}
		})
	}
}
