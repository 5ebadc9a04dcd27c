package assessment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/opportunity-tracker/internal/db"
	"github.com/jonathan/opportunity-tracker/internal/llm"
	"github.com/jonathan/opportunity-tracker/internal/prompts"
	"github.com/jonathan/opportunity-tracker/internal/types"
)

// GenerationTimeout bounds one background generation run. The run carries
// its own deadline because the triggering request has already returned.
const GenerationTimeout = 3 * time.Minute

// terminalWriteTimeout bounds the failed-state write. The run's own context
// may already be past its deadline when the write happens.
const terminalWriteTimeout = 10 * time.Second

// Store is the persistence surface the controller needs. *db.DB satisfies
// it; tests substitute fakes.
type Store interface {
	GetOpportunityByID(ctx context.Context, id int64) (*types.Opportunity, error)

	FindAssessment(ctx context.Context, opportunityID int64, kind string) (*types.Assessment, error)
	InsertPendingAssessment(ctx context.Context, opportunityID int64, kind string) (*types.Assessment, error)
	ResetAssessmentPending(ctx context.Context, id int64) error
	MarkAssessmentSucceeded(ctx context.Context, id int64, summary string) error
	MarkAssessmentFailed(ctx context.Context, id int64, message string) error

	GetOrCreateDefaultProfile(ctx context.Context) (*types.Profile, error)
	CreateJobAssessmentIfAbsent(ctx context.Context, ja *types.JobAssessment) (bool, error)
	GetJobAssessment(ctx context.Context, opportunityID int64) (*types.JobAssessment, error)
	UpsertJobAssessment(ctx context.Context, ja *types.JobAssessment) (*types.JobAssessment, error)
}

// Controller owns the assessment job state machine: one job row per
// (opportunity, kind), claimed by a pending insert and driven to a terminal
// state by a background run.
type Controller struct {
	store  Store
	client llm.Client
	logger *zap.Logger

	initialSystem string
	initialUser   string

	timeout time.Duration

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewController builds a controller over the given store and model client.
func NewController(store Store, client llm.Client, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		store:         store,
		client:        client,
		logger:        logger,
		initialSystem: prompts.MustGet("assessment.json", "initial-system"),
		initialUser:   prompts.MustGet("assessment.json", "initial-user"),
		timeout:       GenerationTimeout,
		inflight:      make(map[string]struct{}),
	}
}

// Request triggers assessment generation for an opportunity and returns the
// current job row immediately. Succeeded jobs are returned as-is and never
// regenerated; failed jobs are reset to pending and retried; pending jobs
// are recomputed unless a run for the pair is already in flight in this
// process, so a row orphaned by a crash or a lost terminal write stays
// recoverable.
func (c *Controller) Request(ctx context.Context, opportunityID int64, kind string) (*types.Assessment, error) {
	opp, err := c.store.GetOpportunityByID(ctx, opportunityID)
	if err != nil {
		return nil, err
	}
	if opp == nil {
		return nil, &db.NotFoundError{Entity: "opportunity", ID: opportunityID}
	}

	a, runnable, err := c.claim(ctx, opportunityID, kind)
	if err != nil {
		return nil, err
	}
	if runnable && c.acquire(opportunityID, kind) {
		go c.run(a.ID, opportunityID, kind)
	}
	return a, nil
}

// Find returns the job row for an (opportunity, kind) pair, or nil when no
// assessment has been requested.
func (c *Controller) Find(ctx context.Context, opportunityID int64, kind string) (*types.Assessment, error) {
	return c.store.FindAssessment(ctx, opportunityID, kind)
}

// claim resolves the job row to act on and reports whether a generation run
// should be attempted for it. Insert-race losers re-read the winner's row;
// only succeeded rows are final.
func (c *Controller) claim(ctx context.Context, opportunityID int64, kind string) (*types.Assessment, bool, error) {
	a, err := c.store.FindAssessment(ctx, opportunityID, kind)
	if err != nil {
		return nil, false, err
	}

	if a == nil {
		a, err = c.store.InsertPendingAssessment(ctx, opportunityID, kind)
		if err == nil {
			return a, true, nil
		}
		var conflict *db.ConflictError
		if !errors.As(err, &conflict) {
			return nil, false, err
		}
		a, err = c.store.FindAssessment(ctx, opportunityID, kind)
		if err != nil {
			return nil, false, err
		}
		if a == nil {
			return nil, false, fmt.Errorf("assessment for opportunity %d vanished after conflict", opportunityID)
		}
	}

	switch a.Status {
	case types.AssessmentSucceeded:
		return a, false, nil
	case types.AssessmentFailed:
		if err := c.store.ResetAssessmentPending(ctx, a.ID); err != nil {
			return nil, false, err
		}
		a.Status = types.AssessmentPending
		a.Summary = nil
		return a, true, nil
	default:
		// A pending row may be an orphan: a run that crashed or lost its
		// terminal write. Recomputing is safe, the in-flight set suppresses
		// duplicates within this process and succeeded rows are never
		// demoted.
		return a, true, nil
	}
}

// acquire registers an in-flight run for the pair. It returns false when a
// run in this process already holds the pair.
func (c *Controller) acquire(opportunityID int64, kind string) bool {
	key := fmt.Sprintf("%d/%s", opportunityID, kind)
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, held := c.inflight[key]; held {
		return false
	}
	c.inflight[key] = struct{}{}
	return true
}

func (c *Controller) release(opportunityID int64, kind string) {
	key := fmt.Sprintf("%d/%s", opportunityID, kind)
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, key)
}

// run executes one generation attempt under its own deadline and drives the
// job to a terminal state. Failures writing the terminal state are logged
// only; there is nobody left to return them to.
func (c *Controller) run(assessmentID, opportunityID int64, kind string) {
	defer c.release(opportunityID, kind)

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	log := c.logger.With(
		zap.Int64("opportunity_id", opportunityID),
		zap.String("kind", kind),
	)

	summary, err := c.generate(ctx, opportunityID)
	if err != nil {
		log.Warn("assessment generation failed", zap.Error(err))
		// When the generation error is the run deadline itself, ctx is
		// already done; the write needs a fresh scope.
		markCtx, markCancel := context.WithTimeout(context.Background(), terminalWriteTimeout)
		defer markCancel()
		if markErr := c.store.MarkAssessmentFailed(markCtx, assessmentID, err.Error()); markErr != nil {
			log.Error("failed to record assessment failure", zap.Error(markErr))
		}
		return
	}

	if err := c.store.MarkAssessmentSucceeded(ctx, assessmentID, summary); err != nil {
		log.Error("failed to record assessment success", zap.Error(err))
		return
	}
	log.Info("assessment generated")

	c.seedScored(ctx, opportunityID, summary, log)
}

func (c *Controller) generate(ctx context.Context, opportunityID int64) (string, error) {
	opp, err := c.store.GetOpportunityByID(ctx, opportunityID)
	if err != nil {
		return "", err
	}
	if opp == nil {
		return "", fmt.Errorf("opportunity %d missing", opportunityID)
	}

	input := BuildInputText(opp)
	userPrompt := prompts.Format(c.initialUser, map[string]string{"Input": input})

	summary, err := c.client.GenerateContent(ctx, c.initialSystem, userPrompt, llm.TierStandard)
	if err != nil {
		return "", err
	}
	return summary, nil
}

// seedScored writes a neutral scored record alongside a fresh summary so the
// fit view is never empty. An existing scored assessment is left alone, and
// any failure here is advisory.
func (c *Controller) seedScored(ctx context.Context, opportunityID int64, summary string, log *zap.Logger) {
	profile, err := c.store.GetOrCreateDefaultProfile(ctx)
	if err != nil {
		log.Warn("failed to load profile for scored seed", zap.Error(err))
		return
	}

	created, err := c.store.CreateJobAssessmentIfAbsent(ctx, &types.JobAssessment{
		OpportunityID:  opportunityID,
		ProfileID:      profile.ID,
		ProfileVersion: profile.Version,
		SummaryOfFit:   summary,
		FitScore:       types.NeutralFitScore,
		Recommendation: "Initial assessment generated. Consider reviewing opportunity details and fit.",
	})
	if err != nil {
		log.Warn("failed to seed scored assessment", zap.Error(err))
		return
	}
	if created {
		log.Info("seeded scored assessment")
	}
}
