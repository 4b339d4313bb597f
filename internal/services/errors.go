package services

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when the targeted citizen does not exist.
	ErrNotFound = errors.New("citizen not found")
	// ErrDuplicateNCI is returned when another citizen already holds the NCI.
	ErrDuplicateNCI = errors.New("a citizen with this NCI already exists")
	// ErrMissingID is returned by Update when no id is given.
	ErrMissingID = errors.New("id is required for update")
)

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "invalid data: " + strings.Join(e.Errors, ", ")
}

// StoreError wraps an unexpected failure of the underlying store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func storeError(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}
