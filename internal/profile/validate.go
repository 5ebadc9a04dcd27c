package profile

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/opportunity-tracker/internal/types"
)

var entryValidator = newEntryValidator()

func newEntryValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// "isodate" backs the date tags on types.ProfileEntry.
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		return types.ValidISODate(fl.Field().String())
	})
	return v
}

// ValidateEntry checks one profile entry against its schema constraints:
// kind must be a known enum value, and dates, when present, must be
// ISO-8601 calendar dates.
func ValidateEntry(entry *types.ProfileEntry) error {
	if err := entryValidator.Struct(entry); err != nil {
		return fmt.Errorf("entry failed validation: %w", err)
	}
	return nil
}
