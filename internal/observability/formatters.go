// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/opportunity-tracker/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxNotesToShow is the default number of notes to display per entry
	maxNotesToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintOpportunity outputs a human-readable summary of one opportunity.
func (p *Printer) PrintOpportunity(opp *types.Opportunity) {
	if opp == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Title:    %s\n", opp.Title))
	sb.WriteString(fmt.Sprintf("Company:  %s\n", opp.Company))
	if opp.Level != nil {
		sb.WriteString(fmt.Sprintf("Level:    %s\n", *opp.Level))
	}
	if salary := formatSalaryRange(opp.MinSalary, opp.MaxSalary); salary != "" {
		sb.WriteString(fmt.Sprintf("Salary:   %s\n", salary))
	}
	sb.WriteString(fmt.Sprintf("Status:   %s\n", opp.Status))
	if opp.PostingLink != nil {
		sb.WriteString(fmt.Sprintf("Link:     %s\n", *opp.PostingLink))
	}

	p.printBox("OPPORTUNITY", strings.TrimRight(sb.String(), "\n"))
}

// PrintParsed outputs the fields extracted from a job posting before they are
// saved anywhere.
func (p *Printer) PrintParsed(parsed *types.OpportunityCreate) {
	if parsed == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Title:    %s\n", parsed.Title))
	sb.WriteString(fmt.Sprintf("Company:  %s\n", parsed.Company))
	if parsed.Level != nil {
		sb.WriteString(fmt.Sprintf("Level:    %s\n", *parsed.Level))
	}
	if salary := formatSalaryRange(parsed.MinSalary, parsed.MaxSalary); salary != "" {
		sb.WriteString(fmt.Sprintf("Salary:   %s\n", salary))
	}

	p.printBox("PARSED JOB POSTING", strings.TrimRight(sb.String(), "\n"))
}

// PrintAssessment outputs an assessment's status and, when present, its
// summary text.
func (p *Printer) PrintAssessment(a *types.Assessment) {
	if a == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Kind:     %s\n", a.Kind))
	sb.WriteString(fmt.Sprintf("Status:   %s\n", a.Status))
	if a.Summary != nil && *a.Summary != "" {
		sb.WriteString("\n")
		sb.WriteString(*a.Summary)
	}

	p.printBox("ASSESSMENT", strings.TrimRight(sb.String(), "\n"))
}

// PrintFit outputs a scored assessment.
func (p *Printer) PrintFit(ja *types.JobAssessment) {
	if ja == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Fit Score:       %d/%d\n", ja.FitScore, types.MaxFitScore))
	sb.WriteString(fmt.Sprintf("Profile Version: %d\n", ja.ProfileVersion))
	if ja.SummaryOfFit != "" {
		sb.WriteString("\n")
		sb.WriteString(ja.SummaryOfFit)
		sb.WriteString("\n")
	}
	if ja.Recommendation != "" {
		sb.WriteString("\n")
		sb.WriteString("Recommendation: " + ja.Recommendation)
	}

	p.printBox("FIT ASSESSMENT", strings.TrimRight(sb.String(), "\n"))
}

// PrintProfileEntries outputs the profile entry collection grouped by kind.
func (p *Printer) PrintProfileEntries(entries []types.ProfileEntry, version int) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Entries:  %d\n", len(entries)))
	sb.WriteString(fmt.Sprintf("Version:  %d\n", version))

	for _, entry := range entries {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("[%s]", entry.Kind))
		if entry.Title != nil {
			sb.WriteString(" " + *entry.Title)
		}
		if entry.Organization != nil {
			sb.WriteString(" @ " + *entry.Organization)
		}
		sb.WriteString("\n")

		count := min(len(entry.Notes), maxNotesToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", entry.Notes[i]))
		}
		if len(entry.Notes) > maxNotesToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(entry.Notes)-maxNotesToShow))
		}
	}

	p.printBox("PROFILE", strings.TrimRight(sb.String(), "\n"))
}

func formatSalaryRange(minSalary, maxSalary *int) string {
	switch {
	case minSalary != nil && maxSalary != nil:
		return fmt.Sprintf("$%d - $%d", *minSalary, *maxSalary)
	case minSalary != nil:
		return fmt.Sprintf("$%d", *minSalary)
	case maxSalary != nil:
		return fmt.Sprintf("$%d", *maxSalary)
	default:
		return ""
	}
}
