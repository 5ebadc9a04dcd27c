package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/opportunity-tracker/internal/types"
)

// -----------------------------------------------------------------------------
// Scored Assessment Methods
// -----------------------------------------------------------------------------

const jobAssessmentColumns = `id, opportunity_id, profile_id, profile_version,
	        summary_of_fit, fit_score, recommendation, created_at, updated_at`

func scanJobAssessment(row pgx.Row) (*types.JobAssessment, error) {
	var ja types.JobAssessment
	err := row.Scan(&ja.ID, &ja.OpportunityID, &ja.ProfileID, &ja.ProfileVersion,
		&ja.SummaryOfFit, &ja.FitScore, &ja.Recommendation, &ja.CreatedAt, &ja.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &ja, nil
}

// GetJobAssessment retrieves the scored assessment for an opportunity.
// Returns nil when none has been generated yet.
func (db *DB) GetJobAssessment(ctx context.Context, opportunityID int64) (*types.JobAssessment, error) {
	ja, err := scanJobAssessment(db.pool.QueryRow(ctx,
		`SELECT `+jobAssessmentColumns+`
		 FROM job_assessments WHERE opportunity_id = $1`,
		opportunityID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get job assessment: %w", err)
	}
	return ja, nil
}

// CreateJobAssessmentIfAbsent inserts a scored assessment only when the
// opportunity has none yet. Returns true when a row was written.
func (db *DB) CreateJobAssessmentIfAbsent(ctx context.Context, ja *types.JobAssessment) (bool, error) {
	tag, err := db.pool.Exec(ctx,
		`INSERT INTO job_assessments
		        (opportunity_id, profile_id, profile_version, summary_of_fit, fit_score, recommendation)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (opportunity_id) DO NOTHING`,
		ja.OpportunityID, ja.ProfileID, ja.ProfileVersion,
		ja.SummaryOfFit, ja.FitScore, ja.Recommendation)
	if err != nil {
		return false, fmt.Errorf("failed to create job assessment: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// UpsertJobAssessment creates or replaces the single scored assessment row
// for an opportunity. Regeneration overwrites in place rather than keeping
// history.
func (db *DB) UpsertJobAssessment(ctx context.Context, ja *types.JobAssessment) (*types.JobAssessment, error) {
	stored, err := scanJobAssessment(db.pool.QueryRow(ctx,
		`INSERT INTO job_assessments
		        (opportunity_id, profile_id, profile_version, summary_of_fit, fit_score, recommendation)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (opportunity_id) DO UPDATE SET
		        profile_id = $2, profile_version = $3, summary_of_fit = $4,
		        fit_score = $5, recommendation = $6, updated_at = NOW()
		 RETURNING `+jobAssessmentColumns,
		ja.OpportunityID, ja.ProfileID, ja.ProfileVersion,
		ja.SummaryOfFit, ja.FitScore, ja.Recommendation))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert job assessment: %w", err)
	}
	return stored, nil
}
