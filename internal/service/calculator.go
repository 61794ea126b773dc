package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mansoorceksport/ironrank/internal/domain"
	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"
)

// CalculatorInput is one manual calculator entry.
type CalculatorInput struct {
	ExerciseID string  `json:"exercise_id"`
	WeightKg   float64 `json:"weight_kg"`
	Reps       int     `json:"reps"`
}

// CalculatorOrchestrator drives the full ranking pipeline for both
// entry points: workout finalization over persisted sets and the manual
// calculator over a synthetic in-memory set.
type CalculatorOrchestrator struct {
	userRepo    domain.UserRepository
	bwRepo      domain.BodyweightRepository
	sessionRepo domain.WorkoutSessionRepository
	rankRepo    domain.UserRankRepository
	auditRepo   domain.CalculationAuditRepository
	catalog     ReferenceCatalog
	scorer      *Scorer
	prEvaluator *PREvaluator
	aggregator  *RankAggregator
}

func NewCalculatorOrchestrator(
	userRepo domain.UserRepository,
	bwRepo domain.BodyweightRepository,
	sessionRepo domain.WorkoutSessionRepository,
	rankRepo domain.UserRankRepository,
	auditRepo domain.CalculationAuditRepository,
	catalog ReferenceCatalog,
	scorer *Scorer,
	prEvaluator *PREvaluator,
	aggregator *RankAggregator,
) *CalculatorOrchestrator {
	return &CalculatorOrchestrator{
		userRepo:    userRepo,
		bwRepo:      bwRepo,
		sessionRepo: sessionRepo,
		rankRepo:    rankRepo,
		auditRepo:   auditRepo,
		catalog:     catalog,
		scorer:      scorer,
		prEvaluator: prEvaluator,
		aggregator:  aggregator,
	}
}

// Calculate runs the manual calculator. Non-premium users spend one
// calculator credit; the credit is refunded when the pipeline fails
// after the decrement. Every call leaves exactly one audit row. The
// synthetic set exists only in memory for the duration of the call.
func (o *CalculatorOrchestrator) Calculate(ctx context.Context, userID string, input CalculatorInput) (*domain.RankingResults, error) {
	if input.ExerciseID == "" || input.WeightKg <= 0 || input.Reps <= 0 {
		return nil, fmt.Errorf("%w: exercise id, weight and reps are required", domain.ErrInvalidInput)
	}

	user, err := o.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, err := o.catalog.ExerciseByID(ctx, input.ExerciseID); err != nil {
		return nil, err
	}

	balanceBefore := user.RankCalculatorBalance
	balanceAfter := balanceBefore
	charged := false
	if !user.Premium {
		balanceAfter, err = o.userRepo.DecrementCalculatorBalance(ctx, userID)
		if err != nil {
			return nil, err
		}
		balanceBefore = balanceAfter + 1
		charged = true
	}

	audit := &domain.CalculationAudit{
		ID:            ulid.Make().String(),
		UserID:        userID,
		ExerciseID:    input.ExerciseID,
		WeightKg:      input.WeightKg,
		Reps:          input.Reps,
		BalanceBefore: balanceBefore,
		BalanceAfter:  balanceAfter,
		Status:        domain.AuditStatusProcessing,
	}
	if err := o.auditRepo.Create(ctx, audit); err != nil {
		o.refund(ctx, userID, charged)
		return nil, err
	}

	now := time.Now()
	synthetic := &domain.SessionSet{
		ID:          ulid.Make().String(),
		Exercise:    domain.ExerciseRef{StandardID: input.ExerciseID},
		Reps:        input.Reps,
		WeightKg:    input.WeightKg,
		PerformedAt: now,
		Synthetic:   true,
	}

	results, err := o.runPipeline(ctx, user, []*domain.SessionSet{synthetic}, true)
	if err != nil {
		o.refund(ctx, userID, charged)
		o.markFailed(ctx, audit.ID, err)
		return nil, err
	}

	if err := o.auditRepo.MarkSuccess(ctx, audit.ID, results.Progressions); err != nil {
		log.Printf("Warning: failed to finalize audit %s: %v", audit.ID, err)
	}
	return results, nil
}

// FinalizeSession runs the pipeline over the persisted sets of one
// completed session and writes the derived 1RM/SWR back on each set.
func (o *CalculatorOrchestrator) FinalizeSession(ctx context.Context, userID, sessionID string) (*domain.RankingResults, error) {
	session, err := o.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, mapDeadline(err)
	}
	if session.UserID != userID {
		return nil, domain.ErrForbidden
	}

	user, err := o.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, mapDeadline(err)
	}
	sets, err := o.sessionRepo.GetSets(ctx, sessionID)
	if err != nil {
		return nil, mapDeadline(err)
	}
	if len(sets) == 0 {
		results := &domain.RankingResults{Payload: &domain.RankUpdatePayload{UserID: userID, Locked: true}}
		results.BuildSummary()
		return results, nil
	}

	return o.runPipeline(ctx, user, sets, false)
}

// runPipeline is the shared core: fan out the context reads, score the
// sets, evaluate PRs, aggregate ranks, apply the bulk write.
func (o *CalculatorOrchestrator) runPipeline(ctx context.Context, user *domain.User, sets []*domain.SessionSet, unlocked bool) (*domain.RankingResults, error) {
	var (
		bodyweight float64
		prior      domain.RankContext
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		// A user without a measurement cannot be scored; fail before any
		// write happens.
		entry, err := o.bwRepo.LatestByUser(gCtx, user.ID)
		if err != nil {
			return err
		}
		bodyweight = entry.WeightKg
		return nil
	})
	g.Go(func() error {
		var err error
		prior.ExerciseRanks, err = o.rankRepo.GetExerciseRanks(gCtx, user.ID)
		return err
	})
	g.Go(func() error {
		var err error
		prior.MuscleRanks, err = o.rankRepo.GetMuscleRanks(gCtx, user.ID)
		return err
	})
	g.Go(func() error {
		var err error
		prior.MuscleGroupRanks, err = o.rankRepo.GetMuscleGroupRanks(gCtx, user.ID)
		return err
	})
	g.Go(func() error {
		var err error
		prior.Overall, err = o.rankRepo.GetOverallRank(gCtx, user.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, mapDeadline(err)
	}

	scored := make([]ScoredSet, 0, len(sets))
	for _, set := range sets {
		var exercise *domain.Exercise
		if !set.Exercise.IsCustom() {
			var err error
			exercise, err = o.catalog.ExerciseByID(ctx, set.Exercise.StandardID)
			if err != nil {
				return nil, err
			}
		}
		scored = append(scored, o.scorer.ScoreSet(set, exercise, user.Gender, bodyweight))
	}

	newPRs, prHistory, err := o.prEvaluator.Evaluate(ctx, user, bodyweight, scored)
	if err != nil {
		return nil, mapDeadline(err)
	}
	stampPRs(newPRs, time.Now())

	payload, err := o.aggregator.Aggregate(ctx, user, scored, &prior, unlocked)
	if err != nil {
		return nil, mapDeadline(err)
	}
	payload.NewPRs = newPRs
	payload.PRHistory = prHistory

	// A cancelled request must not reach the bulk write.
	if err := ctx.Err(); err != nil {
		return nil, mapDeadline(err)
	}
	if err := o.rankRepo.ApplyUpdate(ctx, payload); err != nil {
		return nil, mapDeadline(err)
	}

	// Calc-value writeback only touches real persisted rows.
	for i := range scored {
		s := &scored[i]
		if s.Set.Synthetic {
			continue
		}
		if err := o.sessionRepo.UpdateCalcValues(ctx, s.Set.ID, s.OneRepMax, s.SWR); err != nil {
			log.Printf("Warning: failed to write calc values for set %s: %v", s.Set.ID, err)
		}
	}

	results := &domain.RankingResults{
		Payload:      payload,
		Progressions: Progressions(payload),
		NewPRs:       newPRs,
	}
	results.BuildSummary()
	return results, nil
}

func (o *CalculatorOrchestrator) refund(ctx context.Context, userID string, charged bool) {
	if !charged {
		return
	}
	if err := o.userRepo.CompensateCalculatorBalance(ctx, userID); err != nil {
		log.Printf("Warning: failed to compensate calculator balance for user %s: %v", userID, err)
	}
}

func (o *CalculatorOrchestrator) markFailed(ctx context.Context, auditID string, cause error) {
	// The failure transition must land even when the request context is
	// already dead, otherwise the row leaks into the sweeper's window.
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := o.auditRepo.MarkFailed(dctx, auditID, cause.Error()); err != nil {
		log.Printf("Warning: failed to mark audit %s failed: %v", auditID, err)
	}
}

// mapDeadline converts context expiry into the pipeline's typed error.
func mapDeadline(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", domain.ErrDeadline, err)
	}
	return err
}
