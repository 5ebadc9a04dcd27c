package profile

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/opportunity-tracker/internal/llm"
	"github.com/jonathan/opportunity-tracker/internal/types"
)

// Store is the persistence surface regeneration needs: an atomic
// replace-everything operation on the default user's entry collection.
type Store interface {
	ReplaceAllEntries(ctx context.Context, entries []types.ProfileEntry) error
}

// Regenerate builds a new profile from the given sources and atomically
// replaces the stored entries. A generation that produces no entries leaves
// the existing profile untouched; a storage failure after generation is
// returned alongside the outcome so callers can report what was generated
// but not saved.
func Regenerate(ctx context.Context, client llm.Client, store Store, logger *zap.Logger, sources []Source) (*Outcome, error) {
	outcome, err := GenerateEntries(ctx, client, logger, sources)
	if err != nil {
		return nil, err
	}

	if len(outcome.Entries) == 0 {
		outcome.Message = "no profile entries generated; existing profile left unchanged"
		return outcome, nil
	}

	if err := store.ReplaceAllEntries(ctx, outcome.Entries); err != nil {
		return outcome, fmt.Errorf("generated %d entries but failed to save them: %w", len(outcome.Entries), err)
	}

	outcome.Message = fmt.Sprintf("replaced profile with %d generated entries", len(outcome.Entries))
	return outcome, nil
}
