package types

import (
	"time"
)

// Profile entry kinds.
const (
	EntryExperience = "experience"
	EntryEducation  = "education"
	EntryPersonal   = "personal"
	EntryProject    = "project"
)

// EntryKinds lists every valid profile entry kind.
var EntryKinds = []string{EntryExperience, EntryEducation, EntryPersonal, EntryProject}

// ProfileEntry is one entry in a user's profile. Entries live inside their
// parent profile's JSON document; ID is an opaque identifier unique within
// that document. Dates are ISO-8601 calendar date strings (YYYY-MM-DD).
type ProfileEntry struct {
	ID           string   `json:"id"`
	Kind         string   `json:"kind" validate:"required,oneof=experience education personal project"`
	Title        *string  `json:"title,omitempty"`
	Organization *string  `json:"organization,omitempty"`
	StartDate    *string  `json:"start_date,omitempty" validate:"omitempty,isodate"`
	EndDate      *string  `json:"end_date,omitempty" validate:"omitempty,isodate"`
	Notes        []string `json:"notes"`
}

// Profile is a versioned, ordered collection of entries for one user
// identity. Version increments only when the entire collection is replaced
// atomically, never on single-entry edits.
type Profile struct {
	ID      int64          `json:"id"`
	UserID  string         `json:"user_id"`
	Version int            `json:"version"`
	Entries []ProfileEntry `json:"entries"`
}

// DefaultUserID is the single user identity in this deployment.
const DefaultUserID = "default"

// ValidISODate reports whether s parses as an ISO-8601 calendar date.
func ValidISODate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
