package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/opportunity-tracker/internal/llm"
	"github.com/jonathan/opportunity-tracker/internal/prompts"
	"github.com/jonathan/opportunity-tracker/internal/types"
)

// Outcome is the tagged result of a generation attempt. A model that
// declines to produce structured output is a valid, expected outcome:
// Entries is empty and Message carries the diagnostic, with no error.
type Outcome struct {
	Entries []types.ProfileEntry
	Message string
}

// ExtractionError represents malformed tool-call output from the model.
type ExtractionError struct {
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("extraction error: %s", e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// toolPayload mirrors the profile_create argument schema.
type toolPayload struct {
	Entries []types.ProfileEntry `json:"entries"`
}

// GenerateEntries asks the model to extract profile entries from the
// combined source contents. Entries are validated independently: an invalid
// entry is dropped with a logged reason, never failing the batch. Entry ids
// are assigned here as a dense zero-based sequence over the valid entries,
// in their original relative order; ids in the model output are ignored.
func GenerateEntries(ctx context.Context, client llm.Client, logger *zap.Logger, sources []Source) (*Outcome, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	systemPrompt := prompts.MustGet("profile.json", "generate-entries-system")
	userPrompt := prompts.Format(prompts.MustGet("profile.json", "generate-entries-user"), map[string]string{
		"Content": combineSources(sources),
	})

	call, err := client.GenerateWithTool(ctx, systemPrompt, userPrompt, profileCreateTool(), llm.TierAdvanced)
	if err != nil {
		return nil, &ExtractionError{Message: "model call failed", Cause: err}
	}
	if call == nil {
		logger.Warn("model produced no tool call for profile generation")
		return &Outcome{Message: "no tool call received from model"}, nil
	}

	var payload toolPayload
	if err := json.Unmarshal(call.Args, &payload); err != nil {
		return nil, &ExtractionError{Message: "failed to decode tool arguments", Cause: err}
	}

	valid := make([]types.ProfileEntry, 0, len(payload.Entries))
	for i := range payload.Entries {
		entry := payload.Entries[i]
		entry.ID = "" // never trust model-assigned ids
		if entry.Notes == nil {
			entry.Notes = []string{}
		}

		if err := ValidateEntry(&entry); err != nil {
			logger.Warn("dropping invalid profile entry",
				zap.Int("index", i),
				zap.String("kind", entry.Kind),
				zap.Error(err))
			continue
		}

		entry.ID = strconv.Itoa(len(valid))
		valid = append(valid, entry)
	}

	return &Outcome{
		Entries: valid,
		Message: fmt.Sprintf("generated %d of %d entries from model output", len(valid), len(payload.Entries)),
	}, nil
}

// combineSources joins source contents with labels so the model can
// attribute information to its origin.
func combineSources(sources []Source) string {
	parts := make([]string, 0, len(sources))
	for _, source := range sources {
		parts = append(parts, fmt.Sprintf("[SOURCE: %s]\n%s", source.Name, source.Content))
	}
	separator := "\n\n" + strings.Repeat("=", 50) + "\n\n"
	return strings.Join(parts, separator)
}
