package assessment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/opportunity-tracker/internal/db"
	"github.com/jonathan/opportunity-tracker/internal/llm"
	"github.com/jonathan/opportunity-tracker/internal/types"
)

const wellFormedResponse = `SUMMARY OF FIT:
Strong overlap with backend experience and the listed stack. Some gap on
infrastructure exposure.

FIT SCORE: 6

RECOMMENDATION:
Strong candidate - prioritize application.`

func TestParseFitResponse_WellFormed(t *testing.T) {
	got := parseFitResponse(wellFormedResponse)

	assert.Contains(t, got.Summary, "Strong overlap with backend experience")
	assert.NotContains(t, got.Summary, "FIT SCORE")
	assert.Equal(t, 6, got.Score)
	assert.Equal(t, "Strong candidate - prioritize application.", got.Recommendation)
}

func TestParseFitResponse_ScoreClamped(t *testing.T) {
	high := parseFitResponse("SUMMARY OF FIT:\nok\n\nFIT SCORE: 9\n\nRECOMMENDATION:\napply")
	assert.Equal(t, types.MaxFitScore, high.Score)

	low := parseFitResponse("SUMMARY OF FIT:\nok\n\nFIT SCORE: 0\n\nRECOMMENDATION:\nskip")
	assert.Equal(t, types.MinFitScore, low.Score)
}

func TestParseFitResponse_CaseInsensitive(t *testing.T) {
	got := parseFitResponse("summary of fit:\ndecent match\n\nfit score: 3\n\nrecommendation:\nmaybe")

	assert.Equal(t, "decent match", got.Summary)
	assert.Equal(t, 3, got.Score)
	assert.Equal(t, "maybe", got.Recommendation)
}

func TestParseFitResponse_Unstructured(t *testing.T) {
	got := parseFitResponse("The model ignored the format entirely.")

	assert.Equal(t, parseFailedSummary, got.Summary)
	assert.Equal(t, types.NeutralFitScore, got.Score)
	assert.Equal(t, parseFailedRec, got.Recommendation)
}

func TestParseFitResponse_MissingScoreKeepsNeutral(t *testing.T) {
	got := parseFitResponse("SUMMARY OF FIT:\ngood match\n\nRECOMMENDATION:\napply now")

	assert.Equal(t, "good match", got.Summary)
	assert.Equal(t, types.NeutralFitScore, got.Score)
	assert.Equal(t, "apply now", got.Recommendation)
}

func TestAssess_StoresParsedResult(t *testing.T) {
	store := newFakeStore()
	seedOpportunity(store, 1)
	store.profile.Version = 3
	client := &fakeLLM{response: wellFormedResponse}

	s := NewScorer(store, client, nil)
	ja, err := s.Assess(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, int64(1), ja.OpportunityID)
	assert.Equal(t, 6, ja.FitScore)
	assert.Equal(t, 3, ja.ProfileVersion)
	assert.Contains(t, ja.SummaryOfFit, "Strong overlap")

	stored, err := s.Get(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 6, stored.FitScore)
}

func TestAssess_ModelFailureFallsBackToNeutral(t *testing.T) {
	store := newFakeStore()
	seedOpportunity(store, 1)
	client := &fakeLLM{err: &llm.TransportError{Cause: errors.New("connection reset")}}

	s := NewScorer(store, client, nil)
	ja, err := s.Assess(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, types.NeutralFitScore, ja.FitScore)
	assert.Equal(t, fallbackSummary, ja.SummaryOfFit)
	assert.Equal(t, fallbackRecommendation, ja.Recommendation)
}

func TestAssess_RegenerationOverwrites(t *testing.T) {
	store := newFakeStore()
	seedOpportunity(store, 1)
	store.scored[1] = &types.JobAssessment{OpportunityID: 1, FitScore: 2, SummaryOfFit: "stale"}
	client := &fakeLLM{response: wellFormedResponse}

	s := NewScorer(store, client, nil)
	_, err := s.Assess(context.Background(), 1)
	require.NoError(t, err)

	stored, _ := s.Get(context.Background(), 1)
	assert.Equal(t, 6, stored.FitScore)
	assert.NotEqual(t, "stale", stored.SummaryOfFit)
	assert.Equal(t, 1, store.upsertCalls)
}

func TestAssess_UnknownOpportunity(t *testing.T) {
	store := newFakeStore()
	s := NewScorer(store, &fakeLLM{}, nil)

	_, err := s.Assess(context.Background(), 7)

	var notFound *db.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestFormatProfileSection_GroupsByKind(t *testing.T) {
	profile := &types.Profile{
		ID: 1, Version: 1,
		Entries: []types.ProfileEntry{
			{Kind: types.EntryEducation, Title: strPtr("BSc Computer Science"), Organization: strPtr("State University")},
			{Kind: types.EntryExperience, Title: strPtr("Engineer"), Organization: strPtr("Acme"),
				StartDate: strPtr("2020-01-01"), EndDate: strPtr("2023-06-30"),
				Notes: []string{"Built billing service"}},
			{Kind: types.EntryPersonal, Notes: []string{"Backend engineer seeking growth."}},
		},
	}

	got := formatProfileSection(profile)

	assert.Contains(t, got, "Personal Summary: Backend engineer seeking growth.")
	assert.Contains(t, got, "- Engineer at Acme (2020-01-01 to 2023-06-30)")
	assert.Contains(t, got, "* Built billing service")
	assert.Contains(t, got, "- BSc Computer Science from State University")
}
