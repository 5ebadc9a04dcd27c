package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", ConstraintName: "assessments_opportunity_id_kind_key"}
	assert.True(t, isUniqueViolation(unique))
	assert.True(t, isUniqueViolation(fmt.Errorf("insert failed: %w", unique)))

	notNull := &pgconn.PgError{Code: "23502"}
	assert.False(t, isUniqueViolation(notNull))
	assert.False(t, isUniqueViolation(errors.New("connection refused")))
	assert.False(t, isUniqueViolation(nil))
}

func TestConflictError(t *testing.T) {
	cause := &pgconn.PgError{Code: "23505"}
	err := &ConflictError{Key: "assessment (7, initial)", Cause: cause}

	assert.Contains(t, err.Error(), "assessment (7, initial)")
	assert.ErrorIs(t, err, cause)

	var conflict *ConflictError
	wrapped := fmt.Errorf("claim failed: %w", err)
	assert.True(t, errors.As(wrapped, &conflict))
}

func TestNotFoundError(t *testing.T) {
	err := &NotFoundError{Entity: "opportunity", ID: int64(42)}
	assert.Equal(t, "opportunity 42 not found", err.Error())

	var notFound *NotFoundError
	assert.True(t, errors.As(fmt.Errorf("lookup: %w", err), &notFound))
}
