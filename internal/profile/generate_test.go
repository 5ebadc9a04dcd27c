package profile

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jonathan/opportunity-tracker/internal/llm"
	"github.com/jonathan/opportunity-tracker/internal/types"
)

// fakeClient returns a canned tool call.
type fakeClient struct {
	call    *llm.ToolCall
	callErr error
}

func (f *fakeClient) GenerateContent(_ context.Context, _, _ string, _ llm.ModelTier) (string, error) {
	return "", nil
}

func (f *fakeClient) GenerateJSON(_ context.Context, _, _ string, _ llm.ModelTier) (string, error) {
	return "", nil
}

func (f *fakeClient) GenerateWithTool(_ context.Context, _, _ string, _ *genai.Tool, _ llm.ModelTier) (*llm.ToolCall, error) {
	return f.call, f.callErr
}

func (f *fakeClient) Close() error { return nil }

func toolCallWith(t *testing.T, entries []map[string]any) *llm.ToolCall {
	t.Helper()
	args, err := json.Marshal(map[string]any{"entries": entries})
	require.NoError(t, err)
	return &llm.ToolCall{Name: ToolName, Args: args}
}

func TestGenerateEntries_AllValid(t *testing.T) {
	client := &fakeClient{call: toolCallWith(t, []map[string]any{
		{"kind": "experience", "title": "Engineer", "organization": "Acme", "start_date": "2020-01-15", "notes": []string{"built the platform"}},
		{"kind": "education", "title": "BSc Computer Science", "organization": "State University"},
	})}

	outcome, err := GenerateEntries(context.Background(), client, zap.NewNop(), nil)
	require.NoError(t, err)
	require.Len(t, outcome.Entries, 2)
	assert.Equal(t, "0", outcome.Entries[0].ID)
	assert.Equal(t, "1", outcome.Entries[1].ID)
	assert.Equal(t, types.EntryExperience, outcome.Entries[0].Kind)
}

func TestGenerateEntries_PartialAcceptance(t *testing.T) {
	// Entries at positions 2 and 4 carry an invalid kind; the other three
	// must survive with dense zero-based ids in original relative order.
	client := &fakeClient{call: toolCallWith(t, []map[string]any{
		{"kind": "experience", "title": "First"},
		{"kind": "education", "title": "Second"},
		{"kind": "volunteering", "title": "Third"},
		{"kind": "project", "title": "Fourth"},
		{"kind": "hobby", "title": "Fifth"},
	})}

	core, observed := observer.New(zapcore.WarnLevel)
	outcome, err := GenerateEntries(context.Background(), client, zap.New(core), nil)
	require.NoError(t, err)

	require.Len(t, outcome.Entries, 3)
	assert.Equal(t, "0", outcome.Entries[0].ID)
	assert.Equal(t, "1", outcome.Entries[1].ID)
	assert.Equal(t, "2", outcome.Entries[2].ID)
	assert.Equal(t, "First", *outcome.Entries[0].Title)
	assert.Equal(t, "Second", *outcome.Entries[1].Title)
	assert.Equal(t, "Fourth", *outcome.Entries[2].Title)

	// Both drops were logged.
	assert.Equal(t, 2, len(observed.FilterMessage("dropping invalid profile entry").All()))
}

func TestGenerateEntries_InvalidDateRejectsEntry(t *testing.T) {
	client := &fakeClient{call: toolCallWith(t, []map[string]any{
		{"kind": "experience", "title": "Good", "start_date": "2021-03-01"},
		{"kind": "experience", "title": "Bad", "start_date": "March 2021"},
	})}

	outcome, err := GenerateEntries(context.Background(), client, zap.NewNop(), nil)
	require.NoError(t, err)
	require.Len(t, outcome.Entries, 1)
	assert.Equal(t, "Good", *outcome.Entries[0].Title)
}

func TestGenerateEntries_ModelAssignedIDsIgnored(t *testing.T) {
	client := &fakeClient{call: toolCallWith(t, []map[string]any{
		{"id": "999", "kind": "personal", "title": "Summary"},
	})}

	outcome, err := GenerateEntries(context.Background(), client, zap.NewNop(), nil)
	require.NoError(t, err)
	require.Len(t, outcome.Entries, 1)
	assert.Equal(t, "0", outcome.Entries[0].ID)
}

func TestGenerateEntries_NoToolCallIsSoftOutcome(t *testing.T) {
	client := &fakeClient{call: nil}

	outcome, err := GenerateEntries(context.Background(), client, zap.NewNop(), nil)
	require.NoError(t, err)
	assert.Empty(t, outcome.Entries)
	assert.Contains(t, outcome.Message, "no tool call")
}

func TestGenerateEntries_ModelErrorIsHardFailure(t *testing.T) {
	client := &fakeClient{callErr: &llm.TransportError{Cause: errors.New("connection reset")}}

	_, err := GenerateEntries(context.Background(), client, zap.NewNop(), nil)
	require.Error(t, err)

	var extractionErr *ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	var transportErr *llm.TransportError
	assert.ErrorAs(t, err, &transportErr)
}

func TestGenerateEntries_MalformedToolArguments(t *testing.T) {
	client := &fakeClient{call: &llm.ToolCall{Name: ToolName, Args: json.RawMessage(`{"entries": "oops"}`)}}

	_, err := GenerateEntries(context.Background(), client, zap.NewNop(), nil)
	require.Error(t, err)

	var extractionErr *ExtractionError
	assert.ErrorAs(t, err, &extractionErr)
}

func TestCombineSources_Labels(t *testing.T) {
	combined := combineSources([]Source{
		{Name: "https://github.com/acme/widget", Content: "repo text"},
		{Name: "resume.txt", Content: "resume text"},
	})

	assert.Contains(t, combined, "[SOURCE: https://github.com/acme/widget]\nrepo text")
	assert.Contains(t, combined, "[SOURCE: resume.txt]\nresume text")
}
