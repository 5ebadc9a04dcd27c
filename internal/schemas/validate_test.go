package schemas

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_OpportunityValid(t *testing.T) {
	doc := []byte(`{"title": "Staff Engineer", "company": "Acme", "level": null, "min_salary": 150000, "max_salary": null}`)
	assert.NoError(t, Validate(OpportunitySchema, doc))
}

func TestValidate_OpportunityMissingRequired(t *testing.T) {
	doc := []byte(`{"title": "Staff Engineer"}`)

	err := Validate(OpportunitySchema, doc)
	require.Error(t, err)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.NotEmpty(t, ve.Errors)
	assert.Contains(t, err.Error(), "company")
}

func TestValidate_NegativeSalaryRejected(t *testing.T) {
	doc := []byte(`{"title": "Engineer", "company": "Acme", "min_salary": -1}`)

	err := Validate(OpportunitySchema, doc)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestValidate_NonIntegerSalaryRejected(t *testing.T) {
	doc := []byte(`{"title": "Engineer", "company": "Acme", "min_salary": "120k"}`)

	err := Validate(OpportunitySchema, doc)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestValidate_UnknownSchema(t *testing.T) {
	err := Validate("bogus", []byte(`{}`))
	require.Error(t, err)

	var ve *ValidationError
	assert.False(t, errors.As(err, &ve), "schema load failure is not a ValidationError")
	assert.Contains(t, err.Error(), "unknown schema")
}
