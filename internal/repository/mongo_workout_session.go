package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mansoorceksport/ironrank/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoWorkoutSessionRepository reads finalized sessions and their
// sets. Session CRUD itself is owned upstream; the pipeline only needs
// the read side plus the calc-value writeback.
type MongoWorkoutSessionRepository struct {
	sessions *mongo.Collection
	sets     *mongo.Collection
}

func NewMongoWorkoutSessionRepository(db *mongo.Database) *MongoWorkoutSessionRepository {
	return &MongoWorkoutSessionRepository{
		sessions: db.Collection("workout_sessions"),
		sets:     db.Collection("workout_session_sets"),
	}
}

func (r *MongoWorkoutSessionRepository) GetByID(ctx context.Context, id string) (*domain.WorkoutSession, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	var session domain.WorkoutSession
	err = r.sessions.FindOne(ctx, bson.M{"_id": oid}).Decode(&session)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (r *MongoWorkoutSessionRepository) GetSets(ctx context.Context, sessionID string) ([]*domain.SessionSet, error) {
	cursor, err := r.sets.Find(ctx, bson.M{"session_id": sessionID},
		options.Find().SetSort(bson.M{"set_order": 1}))
	if err != nil {
		return nil, fmt.Errorf("%w: session sets: %v", domain.ErrPersistence, err)
	}
	defer cursor.Close(ctx)

	var sets []*domain.SessionSet
	if err := cursor.All(ctx, &sets); err != nil {
		return nil, fmt.Errorf("%w: session sets: %v", domain.ErrPersistence, err)
	}
	return sets, nil
}

// UpdateCalcValues persists the derived 1RM/SWR on a real set row.
func (r *MongoWorkoutSessionRepository) UpdateCalcValues(ctx context.Context, setID string, oneRepMax, swr float64) error {
	oid, err := primitive.ObjectIDFromHex(setID)
	if err != nil {
		return domain.ErrInvalidID
	}

	result, err := r.sets.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{
		"$set": bson.M{
			"calc_1rm":   oneRepMax,
			"calc_swr":   swr,
			"updated_at": time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("%w: update calc values: %v", domain.ErrPersistence, err)
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
