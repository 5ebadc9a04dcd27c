package types

import "time"

// AssessmentKindInitial is the default assessment kind; the kind column
// namespaces multiple assessment types per opportunity.
const AssessmentKindInitial = "initial"

// Assessment job statuses.
const (
	AssessmentPending   = "pending"
	AssessmentSucceeded = "succeeded"
	AssessmentFailed    = "failed"
)

// Assessment is the background job row for one (opportunity, kind) pair.
// At most one row exists per pair, enforced by a uniqueness constraint.
// Summary carries the generated text once succeeded, or an error message
// after a failure.
type Assessment struct {
	ID            int64     `json:"id"`
	OpportunityID int64     `json:"opportunity_id"`
	Kind          string    `json:"kind"`
	Status        string    `json:"status"`
	Summary       *string   `json:"summary,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Terminal reports whether the assessment reached a final state.
func (a *Assessment) Terminal() bool {
	return a.Status == AssessmentSucceeded || a.Status == AssessmentFailed
}

// Fit score bounds for scored assessments.
const (
	MinFitScore     = 1
	MaxFitScore     = 7
	NeutralFitScore = 4
)

// JobAssessment is the scored assessment record: a single always-fresh row
// per opportunity, overwritten on regeneration rather than versioned.
type JobAssessment struct {
	ID             int64     `json:"id"`
	OpportunityID  int64     `json:"opportunity_id"`
	ProfileID      int64     `json:"profile_id"`
	ProfileVersion int       `json:"profile_version"`
	SummaryOfFit   string    `json:"summary_of_fit"`
	FitScore       int       `json:"fit_score"`
	Recommendation string    `json:"recommendation"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ClampFitScore forces a parsed score into the valid [MinFitScore, MaxFitScore] range.
func ClampFitScore(score int) int {
	if score < MinFitScore {
		return MinFitScore
	}
	if score > MaxFitScore {
		return MaxFitScore
	}
	return score
}
