package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/opportunity-tracker/internal/types"
)

// -----------------------------------------------------------------------------
// Assessment Job Methods
// -----------------------------------------------------------------------------

const assessmentColumns = `id, opportunity_id, kind, status, summary, created_at, updated_at`

func scanAssessment(row pgx.Row) (*types.Assessment, error) {
	var a types.Assessment
	err := row.Scan(&a.ID, &a.OpportunityID, &a.Kind, &a.Status, &a.Summary,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// FindAssessment retrieves the assessment job for an (opportunity, kind)
// pair. Returns nil when no row exists.
func (db *DB) FindAssessment(ctx context.Context, opportunityID int64, kind string) (*types.Assessment, error) {
	a, err := scanAssessment(db.pool.QueryRow(ctx,
		`SELECT `+assessmentColumns+`
		 FROM assessments WHERE opportunity_id = $1 AND kind = $2`,
		opportunityID, kind))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find assessment: %w", err)
	}
	return a, nil
}

// InsertPendingAssessment creates a new pending job row for the pair. When a
// concurrent writer wins the insert race, the unique constraint fires and a
// ConflictError is returned so the caller can re-read the existing row.
func (db *DB) InsertPendingAssessment(ctx context.Context, opportunityID int64, kind string) (*types.Assessment, error) {
	a, err := scanAssessment(db.pool.QueryRow(ctx,
		`INSERT INTO assessments (opportunity_id, kind, status)
		 VALUES ($1, $2, $3)
		 RETURNING `+assessmentColumns,
		opportunityID, kind, types.AssessmentPending))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, &ConflictError{
				Key:   fmt.Sprintf("assessment (%d, %s)", opportunityID, kind),
				Cause: err,
			}
		}
		return nil, fmt.Errorf("failed to insert pending assessment: %w", err)
	}
	return a, nil
}

// ResetAssessmentPending returns a failed job to the pending state so it can
// be retried. Succeeded rows are left untouched.
func (db *DB) ResetAssessmentPending(ctx context.Context, id int64) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE assessments SET status = $1, summary = NULL, updated_at = NOW()
		 WHERE id = $2 AND status = $3`,
		types.AssessmentPending, id, types.AssessmentFailed)
	if err != nil {
		return fmt.Errorf("failed to reset assessment: %w", err)
	}
	return nil
}

// MarkAssessmentSucceeded stores the generated summary and moves the job to
// the succeeded state.
func (db *DB) MarkAssessmentSucceeded(ctx context.Context, id int64, summary string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE assessments SET status = $1, summary = $2, updated_at = NOW()
		 WHERE id = $3`,
		types.AssessmentSucceeded, summary, id)
	if err != nil {
		return fmt.Errorf("failed to mark assessment succeeded: %w", err)
	}
	return nil
}

// MarkAssessmentFailed records a failure message on the job. Rows that
// already succeeded are never overwritten.
func (db *DB) MarkAssessmentFailed(ctx context.Context, id int64, message string) error {
	summary := "Error: " + message
	_, err := db.pool.Exec(ctx,
		`UPDATE assessments SET status = $1, summary = $2, updated_at = NOW()
		 WHERE id = $3 AND status <> $4`,
		types.AssessmentFailed, summary, id, types.AssessmentSucceeded)
	if err != nil {
		return fmt.Errorf("failed to mark assessment failed: %w", err)
	}
	return nil
}
