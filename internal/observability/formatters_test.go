package observability

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/opportunity-tracker/internal/types"
)

func TestPrintOpportunity(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	level := "Senior"
	minSalary, maxSalary := 120000, 150000
	link := "https://example.com/jobs/42"
	opp := &types.Opportunity{
		ID:          42,
		Title:       "Backend Engineer",
		Company:     "Acme Corp",
		Level:       &level,
		MinSalary:   &minSalary,
		MaxSalary:   &maxSalary,
		PostingLink: &link,
		Status:      types.StatusToApply,
	}

	p.PrintOpportunity(opp)
	output := buf.String()

	assert.Contains(t, output, "OPPORTUNITY")
	assert.Contains(t, output, "Backend Engineer")
	assert.Contains(t, output, "Acme Corp")
	assert.Contains(t, output, "Senior")
	assert.Contains(t, output, "$120000 - $150000")
	assert.Contains(t, output, types.StatusToApply)
}

func TestPrintOpportunity_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintOpportunity(nil)

	assert.Empty(t, buf.String())
}

func TestPrintParsed_OmitsAbsentFields(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintParsed(&types.OpportunityCreate{Title: "Engineer", Company: "Acme"})
	output := buf.String()

	assert.Contains(t, output, "PARSED JOB POSTING")
	assert.Contains(t, output, "Engineer")
	assert.NotContains(t, output, "Level:")
	assert.NotContains(t, output, "Salary:")
}

func TestPrintAssessment(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	summary := "Strong match for this role."
	p.PrintAssessment(&types.Assessment{
		Kind:    types.AssessmentKindInitial,
		Status:  types.AssessmentSucceeded,
		Summary: &summary,
	})
	output := buf.String()

	assert.Contains(t, output, "ASSESSMENT")
	assert.Contains(t, output, types.AssessmentSucceeded)
	assert.Contains(t, output, "Strong match")
}

func TestPrintFit(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintFit(&types.JobAssessment{
		FitScore:       5,
		ProfileVersion: 3,
		SummaryOfFit:   "Solid overlap with backend experience.",
		Recommendation: "Apply.",
	})
	output := buf.String()

	assert.Contains(t, output, "FIT ASSESSMENT")
	assert.Contains(t, output, "5/7")
	assert.Contains(t, output, "Profile Version: 3")
	assert.Contains(t, output, "Apply.")
}

func TestPrintProfileEntries(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	title := "Engineer"
	org := "Acme"
	entries := []types.ProfileEntry{
		{
			Kind:         types.EntryExperience,
			Title:        &title,
			Organization: &org,
			Notes:        []string{"one", "two", "three", "four", "five", "six", "seven"},
		},
	}

	p.PrintProfileEntries(entries, 2)
	output := buf.String()

	assert.Contains(t, output, "PROFILE")
	assert.Contains(t, output, "Version:  2")
	assert.Contains(t, output, "[experience] Engineer @ Acme")
	assert.Contains(t, output, "... and 2 more")
}
