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
	return id == ""
}

// RunnerID identifies one test runner instance in logs and records
type RunnerID ID

func (id RunnerID) String() string { return ID(id).String() }

// NewRunnerID creates a fresh runner identifier
func NewRunnerID() RunnerID {
	return RunnerID(NewID())
}

// ParseRunnerID parses a string into RunnerID
func ParseRunnerID(s string) (RunnerID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("runner ID cannot be empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("runner ID %q is not a UUID: %w", s, err)
	}
	return RunnerID(s), nil
}
