package db

import "fmt"

// ConflictError indicates a uniqueness race: another writer inserted the row
// first. Callers treat it as a signal to re-read, not as a failure.
type ConflictError struct {
	Key   string
	Cause error
}

func (e *ConflictError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("conflict on %s: %v", e.Key, e.Cause)
	}
	return fmt.Sprintf("conflict on %s", e.Key)
}

func (e *ConflictError) Unwrap() error {
	return e.Cause
}

// NotFoundError indicates a row lookup by id matched nothing.
type NotFoundError struct {
	Entity string
	ID     any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Entity, e.ID)
}
