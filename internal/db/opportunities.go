package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jonathan/opportunity-tracker/internal/types"
)

// -----------------------------------------------------------------------------
// Opportunity Methods
// -----------------------------------------------------------------------------

const opportunityColumns = `id, title, company, level, min_salary, max_salary,
	        posting_link, status, created_at, updated_at`

func scanOpportunity(row pgx.Row) (*types.Opportunity, error) {
	var o types.Opportunity
	err := row.Scan(&o.ID, &o.Title, &o.Company, &o.Level, &o.MinSalary,
		&o.MaxSalary, &o.PostingLink, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// CreateOpportunity inserts a new opportunity and returns the stored row.
func (db *DB) CreateOpportunity(ctx context.Context, input *types.OpportunityCreate) (*types.Opportunity, error) {
	status := input.Status
	if status == "" {
		status = types.StatusToApply
	}

	o, err := scanOpportunity(db.pool.QueryRow(ctx,
		`INSERT INTO opportunities (title, company, level, min_salary, max_salary, posting_link, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+opportunityColumns,
		input.Title, input.Company, input.Level, input.MinSalary,
		input.MaxSalary, input.PostingLink, status))
	if err != nil {
		return nil, fmt.Errorf("failed to create opportunity: %w", err)
	}
	return o, nil
}

// GetOpportunityByID retrieves an opportunity by its ID. Returns nil when no
// row matches.
func (db *DB) GetOpportunityByID(ctx context.Context, id int64) (*types.Opportunity, error) {
	o, err := scanOpportunity(db.pool.QueryRow(ctx,
		`SELECT `+opportunityColumns+` FROM opportunities WHERE id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get opportunity: %w", err)
	}
	return o, nil
}

// ListOpportunities returns all opportunities, newest first.
func (db *DB) ListOpportunities(ctx context.Context) ([]*types.Opportunity, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+opportunityColumns+` FROM opportunities ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list opportunities: %w", err)
	}
	defer rows.Close()

	var out []*types.Opportunity
	for rows.Next() {
		o, err := scanOpportunity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan opportunity: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list opportunities: %w", err)
	}
	return out, nil
}

// DeleteOpportunity removes an opportunity and, via cascade, its assessments.
func (db *DB) DeleteOpportunity(ctx context.Context, id int64) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM opportunities WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete opportunity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &NotFoundError{Entity: "opportunity", ID: id}
	}
	return nil
}

// UpdateOpportunityStatus sets a new workflow status on an opportunity.
func (db *DB) UpdateOpportunityStatus(ctx context.Context, id int64, status string) (*types.Opportunity, error) {
	if !types.ValidStatus(status) {
		return nil, fmt.Errorf("invalid status: %s", status)
	}

	o, err := scanOpportunity(db.pool.QueryRow(ctx,
		`UPDATE opportunities SET status = $1, updated_at = NOW()
		 WHERE id = $2
		 RETURNING `+opportunityColumns,
		status, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, &NotFoundError{Entity: "opportunity", ID: id}
		}
		return nil, fmt.Errorf("failed to update opportunity status: %w", err)
	}
	return o, nil
}
