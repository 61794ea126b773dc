package domain

import (
	"context"
	"time"
)

// SessionSet is one performed set. Real sets are persisted with their
// session by the upstream session CRUD before finalization runs.
// Synthetic sets built by the manual calculator carry Synthetic=true
// and must never reach the datastore.
type SessionSet struct {
	ID          string      `json:"id" bson:"_id,omitempty"`
	SessionID   string      `json:"session_id" bson:"session_id"`
	Exercise    ExerciseRef `json:"exercise" bson:",inline"`
	SetOrder    int         `json:"set_order" bson:"set_order"` // 1-based
	Reps        int         `json:"reps" bson:"reps"`
	WeightKg    float64     `json:"weight_kg" bson:"weight_kg"`
	PerformedAt time.Time   `json:"performed_at" bson:"performed_at"`
	// Derived values written back during finalization.
	CalcOneRepMax float64 `json:"calc_1rm" bson:"calc_1rm"`
	CalcSWR       float64 `json:"calc_swr" bson:"calc_swr"`
	Synthetic     bool    `json:"-" bson:"-"`
}

// WorkoutSession groups the sets of one workout. Session lifecycle is
// owned upstream; the pipeline only reads finalized sessions.
type WorkoutSession struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	UserID      string    `json:"user_id" bson:"user_id"`
	StartedAt   time.Time `json:"started_at" bson:"started_at"`
	CompletedAt time.Time `json:"completed_at" bson:"completed_at"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// WorkoutSessionRepository is the read side used by finalization plus
// the calc-value writeback.
type WorkoutSessionRepository interface {
	GetByID(ctx context.Context, id string) (*WorkoutSession, error)
	GetSets(ctx context.Context, sessionID string) ([]*SessionSet, error)
	// UpdateCalcValues persists calc_1rm/calc_swr on a real set row.
	UpdateCalcValues(ctx context.Context, setID string, oneRepMax, swr float64) error
}
