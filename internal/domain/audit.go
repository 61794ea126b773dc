package domain

import (
	"context"
	"time"
)

// Audit status constants. processing is the only non-terminal state;
// terminal rows are immutable.
const (
	AuditStatusProcessing = "processing"
	AuditStatusSuccess    = "success"
	AuditStatusFailed     = "failed"
)

// CalculationAudit records one manual-calculator call: the request, the
// quota movement and the outcome. Exactly one row per call.
type CalculationAudit struct {
	ID            string  `json:"id" bson:"_id,omitempty"`
	UserID        string  `json:"user_id" bson:"user_id"`
	ExerciseID    string  `json:"exercise_id" bson:"exercise_id"`
	WeightKg      float64 `json:"weight_kg" bson:"weight_kg"`
	Reps          int     `json:"reps" bson:"reps"`
	BalanceBefore int     `json:"balance_before" bson:"balance_before"`
	BalanceAfter  int     `json:"balance_after" bson:"balance_after"`
	Status        string  `json:"status" bson:"status"`
	// RankUps carries the progression payload on success.
	RankUps   []TierProgression `json:"rank_ups,omitempty" bson:"rank_ups,omitempty"`
	Error     string            `json:"error,omitempty" bson:"error,omitempty"`
	CreatedAt time.Time         `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time         `json:"updated_at" bson:"updated_at"`
}

// Terminal reports whether the audit reached a final state.
func (a *CalculationAudit) Terminal() bool {
	return a.Status == AuditStatusSuccess || a.Status == AuditStatusFailed
}

// CalculationAuditRepository persists audit rows. Transitions only
// match processing rows, so a terminal row can never change again.
type CalculationAuditRepository interface {
	Create(ctx context.Context, audit *CalculationAudit) error
	GetByID(ctx context.Context, id string) (*CalculationAudit, error)
	GetByUser(ctx context.Context, userID string) ([]*CalculationAudit, error)
	// MarkSuccess transitions processing -> success with the rank-up
	// payload. Returns ErrAuditTerminal if the row already terminated.
	MarkSuccess(ctx context.Context, id string, rankUps []TierProgression) error
	// MarkFailed transitions processing -> failed with a reason.
	MarkFailed(ctx context.Context, id string, reason string) error
	// SweepStale marks processing rows older than cutoff as failed and
	// returns how many rows it closed.
	SweepStale(ctx context.Context, cutoff time.Time) (int64, error)
}
