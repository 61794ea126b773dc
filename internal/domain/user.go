package domain

import (
	"context"
	"time"
)

// User represents an account the ranking pipeline scores. Callers have
// already authenticated the user; the core only needs gender for
// benchmark selection, the premium flag and the calculator balance.
type User struct {
	ID                    string    `bson:"_id,omitempty" json:"id"`
	Email                 string    `bson:"email" json:"email"`
	Name                  string    `bson:"name" json:"name"`
	Gender                string    `bson:"gender" json:"gender"`
	Premium               bool      `bson:"premium" json:"premium"`
	RankCalculatorBalance int       `bson:"rank_calculator_balance" json:"rank_calculator_balance"`
	CreatedAt             time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt             time.Time `bson:"updated_at" json:"updated_at"`
}

// BodyweightEntry is one bodyweight measurement. The pipeline always
// uses the latest entry at calculation time.
type BodyweightEntry struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	UserID     string    `bson:"user_id" json:"user_id"`
	WeightKg   float64   `bson:"weight_kg" json:"weight_kg"`
	RecordedAt time.Time `bson:"recorded_at" json:"recorded_at"`
}

// UserRepository defines operations for user context and quota
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	// DecrementCalculatorBalance atomically takes one credit. It only
	// matches rows with balance > 0 and returns ErrInsufficientBalance
	// otherwise. The returned value is the balance after the decrement.
	DecrementCalculatorBalance(ctx context.Context, userID string) (int, error)
	// CompensateCalculatorBalance returns one credit after a failed
	// calculation whose decrement already went through.
	CompensateCalculatorBalance(ctx context.Context, userID string) error
}

// BodyweightRepository serves bodyweight measurements
type BodyweightRepository interface {
	Create(ctx context.Context, entry *BodyweightEntry) error
	// LatestByUser returns the most recent measurement or
	// ErrBodyweightNotFound when the user never recorded one.
	LatestByUser(ctx context.Context, userID string) (*BodyweightEntry, error)
}
