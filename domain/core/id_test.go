package core

import (
	"errors"
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestParseSessionID tests session cookie parsing
func TestParseSessionID(t *testing.T) {
	valid := NewSessionID()

	tests := []struct {
		input    string
		expected SessionID
		hasError bool
	}{
		{valid.String(), valid, false},
		{"", "", true},
		{"   ", "", true},
		{"not-a-uuid", "", true},
	}

	for _, test := range tests {
		result, err := ParseSessionID(test.input)
		if test.hasError && err == nil {
			t.Errorf("Expected error for input '%s', but got none", test.input)
		}
		if !test.hasError && err != nil {
			t.Errorf("Unexpected error for input '%s': %v", test.input, err)
		}
		if result != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, result)
		}
	}
}

// TestParseViewID tests fragment token parsing
func TestParseViewID(t *testing.T) {
	tests := []struct {
		input    string
		expected ViewID
		hasError bool
	}{
		{"overview", ViewID("overview"), false},
		{"#predict", ViewID("predict"), false},
		{" model ", ViewID("model"), false},
		{"", "", true},
		{"#", "", true},
		{"Bad View", "", true},
	}

	for _, test := range tests {
		result, err := ParseViewID(test.input)
		if test.hasError {
			if err == nil {
				t.Errorf("Expected error for input '%s', but got none", test.input)
			} else if !errors.Is(err, ErrInvalidViewID) {
				t.Errorf("Expected ErrInvalidViewID for '%s', got %v", test.input, err)
			}
		}
		if !test.hasError && err != nil {
			t.Errorf("Unexpected error for input '%s': %v", test.input, err)
		}
		if result != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, result)
		}
	}
}

func TestNotFoundHierarchy(t *testing.T) {
	if !IsNotFoundError(ErrViewNotFound) {
		t.Error("view not found should be a not-found error")
	}
	if !errors.Is(NewMissingElementError("view-title"), ErrElementMissing) {
		t.Error("missing element error should wrap ErrElementMissing")
	}
	if !errors.Is(NewDuplicateViewError("overview"), ErrDuplicateView) {
		t.Error("duplicate view error should wrap ErrDuplicateView")
	}
}
