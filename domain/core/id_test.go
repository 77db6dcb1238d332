package core

import (
	"testing"
	"time"
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
}

// TestParseRunID tests run ID parsing
func TestParseRunID(t *testing.T) {
	tests := []struct {
		input    string
		expected RunID
		hasError bool
	}{
		{"run-123", RunID("run-123"), false},
		{"", "", true},
		{"   ", "", true},
	}

	for _, test := range tests {
		result, err := ParseRunID(test.input)
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

func TestTimestampStampAndRoundTrip(t *testing.T) {
	ts := NewTimestamp(time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC))
	if got := ts.Stamp(); got != "2025_03_04_05_06_07" {
		t.Errorf("Stamp() = %s", got)
	}

	parsed, err := ParseTimestamp(ts.String())
	if err != nil {
		t.Fatalf("ParseTimestamp: %v", err)
	}
	if !parsed.Time().Equal(ts.Time()) {
		t.Errorf("round trip mismatch: %v vs %v", parsed.Time(), ts.Time())
	}
}

func TestComputeConfigHash_OrderIndependent(t *testing.T) {
	a := ComputeConfigHash(map[string]interface{}{"seed": 42, "split": 0.2})
	b := ComputeConfigHash(map[string]interface{}{"split": 0.2, "seed": 42})
	if a != b {
		t.Errorf("hash depends on map order: %s vs %s", a, b)
	}

	c := ComputeConfigHash(map[string]interface{}{"seed": 43, "split": 0.2})
	if a == c {
		t.Error("different settings produced the same hash")
	}
}
