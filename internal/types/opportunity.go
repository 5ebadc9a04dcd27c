// Package types defines the domain records shared across the opportunity
// tracker: opportunities, assessments, and profile entries.
package types

import (
	"fmt"
	"time"
)

// Opportunity workflow statuses.
const (
	StatusToApply      = "To Apply"
	StatusApplied      = "Applied"
	StatusScreening    = "Screening"
	StatusInterviewing = "Interviewing"
	StatusRejected     = "Rejected"
	StatusDidNotApply  = "Did Not Apply"
)

// AllowedStatuses lists every valid opportunity workflow status.
var AllowedStatuses = []string{
	StatusApplied,
	StatusScreening,
	StatusRejected,
	StatusDidNotApply,
	StatusInterviewing,
	StatusToApply,
}

// OpportunityCreate holds the fields for creating an opportunity. Salary
// bounds are nullable non-negative integers; Level and PostingLink are
// nullable strings.
type OpportunityCreate struct {
	Title       string  `json:"title"`
	Company     string  `json:"company"`
	Level       *string `json:"level,omitempty"`
	MinSalary   *int    `json:"min_salary,omitempty"`
	MaxSalary   *int    `json:"max_salary,omitempty"`
	PostingLink *string `json:"posting_link,omitempty"`
	Status      string  `json:"status"`
}

// Validate checks field constraints not covered by JSON decoding.
func (o *OpportunityCreate) Validate() error {
	if o.Title == "" {
		return fmt.Errorf("title is required")
	}
	if o.Company == "" {
		return fmt.Errorf("company is required")
	}
	if o.MinSalary != nil && *o.MinSalary < 0 {
		return fmt.Errorf("min_salary must be non-negative")
	}
	if o.MaxSalary != nil && *o.MaxSalary < 0 {
		return fmt.Errorf("max_salary must be non-negative")
	}
	if o.Status != "" && !ValidStatus(o.Status) {
		return fmt.Errorf("invalid status: %s", o.Status)
	}
	return nil
}

// ValidStatus reports whether s is an allowed workflow status.
func ValidStatus(s string) bool {
	for _, allowed := range AllowedStatuses {
		if s == allowed {
			return true
		}
	}
	return false
}

// Opportunity is a persisted job opportunity, the subject entity that
// assessments are generated for.
type Opportunity struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Company     string    `json:"company"`
	Level       *string   `json:"level,omitempty"`
	MinSalary   *int      `json:"min_salary,omitempty"`
	MaxSalary   *int      `json:"max_salary,omitempty"`
	PostingLink *string   `json:"posting_link,omitempty"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
