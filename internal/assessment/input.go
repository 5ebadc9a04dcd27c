// Package assessment generates fit assessments for opportunities: a
// free-text initial assessment tracked through an async job state machine,
// and a structured scored assessment matched against the user's profile.
package assessment

import (
	"fmt"
	"strings"

	"github.com/jonathan/opportunity-tracker/internal/types"
)

// BuildInputText renders an opportunity as labeled lines for the model.
// Fields appear in a fixed order and absent fields are omitted entirely, so
// the same opportunity always produces the same input.
func BuildInputText(opp *types.Opportunity) string {
	var parts []string

	parts = append(parts, "Job Title: "+opp.Title)
	parts = append(parts, "Company: "+opp.Company)
	if opp.Level != nil && *opp.Level != "" {
		parts = append(parts, "Level: "+*opp.Level)
	}
	if salary := formatSalary(opp.MinSalary, opp.MaxSalary); salary != "" {
		parts = append(parts, "Salary: "+salary)
	}
	if opp.PostingLink != nil && *opp.PostingLink != "" {
		parts = append(parts, "Posting Link: "+*opp.PostingLink)
	}

	return strings.Join(parts, "\n\n")
}

func formatSalary(min, max *int) string {
	var bounds []string
	if min != nil {
		bounds = append(bounds, "$"+groupDigits(*min))
	}
	if max != nil {
		bounds = append(bounds, "$"+groupDigits(*max))
	}
	return strings.Join(bounds, " - ")
}

// groupDigits inserts comma thousands separators into a non-negative amount.
func groupDigits(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
