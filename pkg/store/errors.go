package store

import (
	"errors"
	"fmt"
)

// Sentinel errors matched with errors.Is.
var (
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("validation failed")
	ErrPersistence = errors.New("persistence failed")
)

// ValidationError reports input rejected before any state was touched.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid is shorthand for a *ValidationError.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports a goal or goal list id that is not in the collection.
type NotFoundError struct {
	Kind string // "goal" or "goal list"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// PersistenceError wraps a failed record store call.
type PersistenceError struct {
	Op    string
	Table string
	ID    string
	Err   error
}

func (e *PersistenceError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Table, e.Err)
	}
	return fmt.Sprintf("%s %s %s: %v", e.Op, e.Table, e.ID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }
