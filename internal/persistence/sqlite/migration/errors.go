package migration

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMigration indicates a malformed migration set (unordered,
	// duplicated, or zero versions).
	ErrInvalidMigration = errors.New("migration: invalid migration set")
)

// ApplyError wraps a statement failure with the migration it belonged to.
type ApplyError struct {
	Version int
	Name    string
	Err     error
}

// Error implements the error interface.
func (e *ApplyError) Error() string {
	return fmt.Sprintf("migration %d (%s) failed: %v", e.Version, e.Name, e.Err)
}

// Unwrap exposes the underlying failure.
func (e *ApplyError) Unwrap() error {
	return e.Err
}
