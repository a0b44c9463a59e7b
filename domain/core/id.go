package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return strings.TrimSpace(string(id)) == ""
}

// PatientID identifies a patient inside the training population.
type PatientID ID

func (id PatientID) String() string { return ID(id).String() }

// IsEmpty checks if the patient ID is blank
func (id PatientID) IsEmpty() bool { return ID(id).IsEmpty() }

// NewPatientID generates an identifier for a patient submitted without one
func NewPatientID() PatientID {
	return PatientID(NewID())
}

// ParsePatientID parses a string into PatientID
func ParsePatientID(s string) (PatientID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("%w: patient ID cannot be empty", ErrInvalidInput)
	}
	return PatientID(s), nil
}
