package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Validation errors
	ErrInvalidInput = errors.New("invalid input")
	ErrInvalidK     = errors.New("invalid cluster count")

	// Lifecycle errors. ErrNotClusteredYet never leaves the engine: callers
	// get a lazily computed clustering instead.
	ErrNotClusteredYet = errors.New("population has not been clustered yet")

	// Persistence errors
	ErrPersistence      = errors.New("persistence failure")
	ErrPersistenceRead  = fmt.Errorf("%w: read", ErrPersistence)
	ErrPersistenceWrite = fmt.Errorf("%w: write", ErrPersistence)
)

// Error constructors with context
func NewInvalidInputError(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, reason)
}

func NewInvalidKError(k, populationSize int) error {
	return fmt.Errorf("%w: k=%d must be between 1 and population size %d", ErrInvalidK, k, populationSize)
}

func NewPersistenceReadError(key string, err error) error {
	return fmt.Errorf("%w of %s: %v", ErrPersistenceRead, key, err)
}

func NewPersistenceWriteError(key string, err error) error {
	return fmt.Errorf("%w of %s: %v", ErrPersistenceWrite, key, err)
}

// Error checking helpers
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

func IsInvalidK(err error) bool {
	return errors.Is(err, ErrInvalidK)
}

func IsPersistenceError(err error) bool {
	return errors.Is(err, ErrPersistence)
}
