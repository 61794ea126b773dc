package domain

import (
	"context"
	"time"
)

// PR type constants. Each type orders candidates differently; a stored
// PR is replaced only on strict improvement.
const (
	PRTypeOneRepMax = "one_rep_max"
	PRTypeMaxReps   = "max_reps"
	PRTypeMaxSWR    = "max_swr"
)

// UserExercisePR is the stored personal record for one
// (user, exercise key, pr type). ExerciseKey distinguishes standard
// from custom exercises (see ExerciseRef.Key).
type UserExercisePR struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	UserID      string    `json:"user_id" bson:"user_id"`
	ExerciseKey string    `json:"exercise_key" bson:"exercise_key"`
	Type        string    `json:"pr_type" bson:"pr_type"`
	Value       float64   `json:"value" bson:"value"`
	// WeightKg is the load the record was achieved at. For max_reps a
	// new record only counts when achieved at or above this weight.
	WeightKg    float64   `json:"weight_kg" bson:"weight_kg"`
	Bodyweight  float64   `json:"bodyweight" bson:"bodyweight"`
	Gender      string    `json:"gender" bson:"gender"`
	SourceSetID string    `json:"source_set_id" bson:"source_set_id"`
	AchievedAt  time.Time `json:"achieved_at" bson:"achieved_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// BeatenBy reports whether candidate value v strictly improves on the
// stored record under the type's ordering.
func (pr *UserExercisePR) BeatenBy(v float64) bool {
	return v > pr.Value
}

// PRHistoryEntry is an append-only log row written whenever a PR is
// set or improved.
type PRHistoryEntry struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	UserID      string    `json:"user_id" bson:"user_id"`
	ExerciseKey string    `json:"exercise_key" bson:"exercise_key"`
	Type        string    `json:"pr_type" bson:"pr_type"`
	Value       float64   `json:"value" bson:"value"`
	Bodyweight  float64   `json:"bodyweight" bson:"bodyweight"`
	SourceSetID string    `json:"source_set_id" bson:"source_set_id"`
	AchievedAt  time.Time `json:"achieved_at" bson:"achieved_at"`
}

// PersonalRecordRepository is the read side for PRs. Writes ride the
// rank bulk update so PRs and ranks move together.
type PersonalRecordRepository interface {
	// GetByUserAndExercise returns the stored PRs for one exercise key,
	// keyed by pr type. Missing records are simply absent.
	GetByUserAndExercise(ctx context.Context, userID, exerciseKey string) (map[string]*UserExercisePR, error)
	GetByUser(ctx context.Context, userID string) ([]*UserExercisePR, error)
	GetHistory(ctx context.Context, userID, exerciseKey string) ([]*PRHistoryEntry, error)
}
