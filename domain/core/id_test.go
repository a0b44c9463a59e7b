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
}

func TestPatientIDIsEmpty(t *testing.T) {
	if !PatientID("  ").IsEmpty() {
		t.Error("Expected whitespace patient ID to be empty")
	}
	if NewPatientID().IsEmpty() {
		t.Error("Expected generated patient ID to be non-empty")
	}
}

func TestParsePatientID(t *testing.T) {
	if _, err := ParsePatientID(""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
	id, err := ParsePatientID("P-001")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if id.String() != "P-001" {
		t.Errorf("Expected P-001, got %s", id)
	}
}

func TestErrorHelpers(t *testing.T) {
	if !IsInvalidK(NewInvalidKError(0, 10)) {
		t.Error("Expected invalid K error to match ErrInvalidK")
	}
	if !IsPersistenceError(NewPersistenceWriteError("k", errors.New("disk full"))) {
		t.Error("Expected write error to match ErrPersistence")
	}
	if !errors.Is(NewPersistenceReadError("k", errors.New("bad json")), ErrPersistenceRead) {
		t.Error("Expected read error to match ErrPersistenceRead")
	}
	if IsInvalidInput(NewInvalidKError(5, 2)) {
		t.Error("Invalid K must not match ErrInvalidInput")
	}
}
