package assessment

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/opportunity-tracker/internal/db"
	"github.com/jonathan/opportunity-tracker/internal/llm"
	"github.com/jonathan/opportunity-tracker/internal/prompts"
	"github.com/jonathan/opportunity-tracker/internal/types"
)

// Response section markers. The prompt demands this exact layout; parsing is
// tolerant of casing and surrounding whitespace.
var (
	summaryRe = regexp.MustCompile(`(?is)SUMMARY OF FIT:\s*(.+?)(?:FIT SCORE:|RECOMMENDATION:|$)`)
	scoreRe   = regexp.MustCompile(`(?i)FIT SCORE:\s*(\d+)`)
	recRe     = regexp.MustCompile(`(?is)RECOMMENDATION:\s*(.+)$`)
)

// Fallback values when the model fails or its response cannot be parsed.
const (
	fallbackSummary        = "Assessment could not be generated automatically. Manual review recommended."
	fallbackRecommendation = "Review this opportunity manually to determine fit."
	parseFailedSummary     = "Assessment parsing failed - manual review needed."
	parseFailedRec         = "Manual review recommended."
)

// fitResult holds the three parsed response sections.
type fitResult struct {
	Summary        string
	Score          int
	Recommendation string
}

// Scorer generates the structured scored assessment for an opportunity
// against the current profile.
type Scorer struct {
	store  Store
	client llm.Client
	logger *zap.Logger

	system string
	user   string
}

// NewScorer builds a scorer over the given store and model client.
func NewScorer(store Store, client llm.Client, logger *zap.Logger) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scorer{
		store:  store,
		client: client,
		logger: logger,
		system: prompts.MustGet("assessment.json", "scored-system"),
		user:   prompts.MustGet("assessment.json", "scored-user"),
	}
}

// Assess generates and stores the scored assessment for an opportunity. The
// single row per opportunity is overwritten on regeneration. Model failures
// degrade to a neutral fallback record rather than an error, so the stored
// row always reflects the latest attempt.
func (s *Scorer) Assess(ctx context.Context, opportunityID int64) (*types.JobAssessment, error) {
	opp, err := s.store.GetOpportunityByID(ctx, opportunityID)
	if err != nil {
		return nil, err
	}
	if opp == nil {
		return nil, &db.NotFoundError{Entity: "opportunity", ID: opportunityID}
	}

	profile, err := s.store.GetOrCreateDefaultProfile(ctx)
	if err != nil {
		return nil, err
	}

	result := s.generateFit(ctx, opp, profile)

	stored, err := s.store.UpsertJobAssessment(ctx, &types.JobAssessment{
		OpportunityID:  opportunityID,
		ProfileID:      profile.ID,
		ProfileVersion: profile.Version,
		SummaryOfFit:   result.Summary,
		FitScore:       result.Score,
		Recommendation: result.Recommendation,
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// Get returns the stored scored assessment, or nil when none exists.
func (s *Scorer) Get(ctx context.Context, opportunityID int64) (*types.JobAssessment, error) {
	return s.store.GetJobAssessment(ctx, opportunityID)
}

func (s *Scorer) generateFit(ctx context.Context, opp *types.Opportunity, profile *types.Profile) fitResult {
	userPrompt := prompts.Format(s.user, map[string]string{
		"Opportunity": formatOpportunitySection(opp),
		"Profile":     formatProfileSection(profile),
	})

	response, err := s.client.GenerateContent(ctx, s.system, userPrompt, llm.TierStandard)
	if err != nil {
		s.logger.Warn("fit assessment generation failed",
			zap.Int64("opportunity_id", opp.ID), zap.Error(err))
		return fitResult{
			Summary:        fallbackSummary,
			Score:          types.NeutralFitScore,
			Recommendation: fallbackRecommendation,
		}
	}

	return parseFitResponse(response)
}

// parseFitResponse extracts the three sections from the model's reply.
// Missing sections keep their neutral defaults; the score is clamped into
// the valid range.
func parseFitResponse(response string) fitResult {
	result := fitResult{
		Summary:        parseFailedSummary,
		Score:          types.NeutralFitScore,
		Recommendation: parseFailedRec,
	}

	if m := summaryRe.FindStringSubmatch(response); m != nil {
		result.Summary = strings.TrimSpace(m[1])
	}
	if m := scoreRe.FindStringSubmatch(response); m != nil {
		if score, err := strconv.Atoi(m[1]); err == nil {
			result.Score = types.ClampFitScore(score)
		}
	}
	if m := recRe.FindStringSubmatch(response); m != nil {
		result.Recommendation = strings.TrimSpace(m[1])
	}

	return result
}

func formatOpportunitySection(opp *types.Opportunity) string {
	return fmt.Sprintf("Title: %s\nCompany: %s\nLevel: %s\nSalary Range: %s - %s",
		opp.Title, opp.Company,
		orNotSpecified(opp.Level),
		orNotSpecifiedInt(opp.MinSalary),
		orNotSpecifiedInt(opp.MaxSalary))
}

// formatProfileSection renders the profile entries grouped by kind, in a
// stable order, so identical profiles always produce identical prompts.
func formatProfileSection(profile *types.Profile) string {
	var personal, experience, education, projects []types.ProfileEntry
	for _, entry := range profile.Entries {
		switch entry.Kind {
		case types.EntryPersonal:
			personal = append(personal, entry)
		case types.EntryExperience:
			experience = append(experience, entry)
		case types.EntryEducation:
			education = append(education, entry)
		case types.EntryProject:
			projects = append(projects, entry)
		}
	}

	var b strings.Builder

	b.WriteString("Personal Summary: ")
	for _, entry := range personal {
		b.WriteString(strings.Join(entry.Notes, " "))
	}
	b.WriteString("\n\nExperience:\n")
	for _, entry := range experience {
		writeDatedEntry(&b, entry)
	}
	b.WriteString("\nProjects:\n")
	for _, entry := range projects {
		writeDatedEntry(&b, entry)
	}
	b.WriteString("\nEducation:\n")
	for _, entry := range education {
		fmt.Fprintf(&b, "- %s from %s\n", deref(entry.Title), deref(entry.Organization))
	}

	return b.String()
}

func writeDatedEntry(b *strings.Builder, entry types.ProfileEntry) {
	fmt.Fprintf(b, "- %s at %s (%s to %s)\n",
		deref(entry.Title), deref(entry.Organization),
		deref(entry.StartDate), deref(entry.EndDate))
	for _, note := range entry.Notes {
		fmt.Fprintf(b, "  * %s\n", note)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orNotSpecified(s *string) string {
	if s == nil || *s == "" {
		return "Not specified"
	}
	return *s
}

func orNotSpecifiedInt(n *int) string {
	if n == nil {
		return "Not specified"
	}
	return strconv.Itoa(*n)
}
