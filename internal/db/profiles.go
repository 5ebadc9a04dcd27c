package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/opportunity-tracker/internal/types"
)

// -----------------------------------------------------------------------------
// Profile Methods
// -----------------------------------------------------------------------------

// replaceRetries bounds the optimistic-concurrency loop on full replacement.
const replaceRetries = 3

func scanProfile(row pgx.Row) (*types.Profile, error) {
	var p types.Profile
	var entriesJSON []byte
	if err := row.Scan(&p.ID, &p.UserID, &p.Version, &entriesJSON); err != nil {
		return nil, err
	}
	p.Entries = []types.ProfileEntry{}
	if len(entriesJSON) > 0 {
		if err := json.Unmarshal(entriesJSON, &p.Entries); err != nil {
			return nil, fmt.Errorf("failed to decode profile entries: %w", err)
		}
	}
	return &p, nil
}

// GetOrCreateDefaultProfile returns the default user's profile, creating an
// empty version-1 profile on first access. The insert race is resolved by
// re-reading when a concurrent writer got there first.
func (db *DB) GetOrCreateDefaultProfile(ctx context.Context) (*types.Profile, error) {
	p, err := db.getProfile(ctx, types.DefaultUserID)
	if err != nil {
		return nil, err
	}
	if p != nil {
		return p, nil
	}

	p, err = scanProfile(db.pool.QueryRow(ctx,
		`INSERT INTO profiles (user_id, version, entries)
		 VALUES ($1, 1, '[]'::jsonb)
		 RETURNING id, user_id, version, entries`,
		types.DefaultUserID))
	if err != nil {
		if isUniqueViolation(err) {
			return db.getProfile(ctx, types.DefaultUserID)
		}
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return p, nil
}

func (db *DB) getProfile(ctx context.Context, userID string) (*types.Profile, error) {
	p, err := scanProfile(db.pool.QueryRow(ctx,
		`SELECT id, user_id, version, entries FROM profiles WHERE user_id = $1`,
		userID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

// GetProfileEntries returns the current entry collection for the default
// profile.
func (db *DB) GetProfileEntries(ctx context.Context) ([]types.ProfileEntry, error) {
	p, err := db.GetOrCreateDefaultProfile(ctx)
	if err != nil {
		return nil, err
	}
	return p.Entries, nil
}

// CreateProfileEntry appends one entry to the profile under a fresh opaque
// id. Single-entry edits leave the profile version unchanged.
func (db *DB) CreateProfileEntry(ctx context.Context, entry types.ProfileEntry) (*types.ProfileEntry, error) {
	entry.ID = uuid.NewString()
	if entry.Notes == nil {
		entry.Notes = []string{}
	}

	err := db.mutateEntries(ctx, func(entries []types.ProfileEntry) ([]types.ProfileEntry, error) {
		return append(entries, entry), nil
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// UpdateProfileEntry replaces the entry with the given id in place.
func (db *DB) UpdateProfileEntry(ctx context.Context, id string, entry types.ProfileEntry) (*types.ProfileEntry, error) {
	entry.ID = id
	if entry.Notes == nil {
		entry.Notes = []string{}
	}

	err := db.mutateEntries(ctx, func(entries []types.ProfileEntry) ([]types.ProfileEntry, error) {
		for i := range entries {
			if entries[i].ID == id {
				entries[i] = entry
				return entries, nil
			}
		}
		return nil, &NotFoundError{Entity: "profile entry", ID: id}
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// DeleteProfileEntry removes the entry with the given id.
func (db *DB) DeleteProfileEntry(ctx context.Context, id string) error {
	return db.mutateEntries(ctx, func(entries []types.ProfileEntry) ([]types.ProfileEntry, error) {
		for i := range entries {
			if entries[i].ID == id {
				return append(entries[:i], entries[i+1:]...), nil
			}
		}
		return nil, &NotFoundError{Entity: "profile entry", ID: id}
	})
}

// DeleteAllProfileEntries clears the entry collection without bumping the
// profile version.
func (db *DB) DeleteAllProfileEntries(ctx context.Context) error {
	return db.mutateEntries(ctx, func([]types.ProfileEntry) ([]types.ProfileEntry, error) {
		return []types.ProfileEntry{}, nil
	})
}

// ReplaceAllEntries swaps the entire entry collection in one atomic write
// and increments the profile version. The version check makes the write
// optimistic: a concurrent replacement forces a retry against fresh state.
func (db *DB) ReplaceAllEntries(ctx context.Context, entries []types.ProfileEntry) error {
	if entries == nil {
		entries = []types.ProfileEntry{}
	}
	entriesJSON, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode profile entries: %w", err)
	}

	for attempt := 0; attempt < replaceRetries; attempt++ {
		p, err := db.GetOrCreateDefaultProfile(ctx)
		if err != nil {
			return err
		}

		tag, err := db.pool.Exec(ctx,
			`UPDATE profiles SET entries = $1, version = version + 1, updated_at = NOW()
			 WHERE id = $2 AND version = $3`,
			entriesJSON, p.ID, p.Version)
		if err != nil {
			return fmt.Errorf("failed to replace profile entries: %w", err)
		}
		if tag.RowsAffected() > 0 {
			return nil
		}
	}
	return &ConflictError{Key: fmt.Sprintf("profile %s", types.DefaultUserID)}
}

// mutateEntries applies fn to the current entry collection and writes the
// result back, preserving the profile version. The version column still
// guards the write so concurrent full replacements are not clobbered.
func (db *DB) mutateEntries(ctx context.Context, fn func([]types.ProfileEntry) ([]types.ProfileEntry, error)) error {
	for attempt := 0; attempt < replaceRetries; attempt++ {
		p, err := db.GetOrCreateDefaultProfile(ctx)
		if err != nil {
			return err
		}

		updated, err := fn(p.Entries)
		if err != nil {
			return err
		}
		entriesJSON, err := json.Marshal(updated)
		if err != nil {
			return fmt.Errorf("failed to encode profile entries: %w", err)
		}

		tag, err := db.pool.Exec(ctx,
			`UPDATE profiles SET entries = $1, updated_at = NOW()
			 WHERE id = $2 AND version = $3`,
			entriesJSON, p.ID, p.Version)
		if err != nil {
			return fmt.Errorf("failed to update profile entries: %w", err)
		}
		if tag.RowsAffected() > 0 {
			return nil
		}
	}
	return &ConflictError{Key: fmt.Sprintf("profile %s", types.DefaultUserID)}
}
