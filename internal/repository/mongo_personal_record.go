package repository

import (
	"context"
	"fmt"

	"github.com/mansoorceksport/ironrank/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoPersonalRecordRepository is the read side for PRs. Writes ride
// the rank bulk update in MongoUserRankRepository so PRs and ranks
// land atomically.
type MongoPersonalRecordRepository struct {
	records *mongo.Collection
	history *mongo.Collection
}

func NewMongoPersonalRecordRepository(db *mongo.Database) *MongoPersonalRecordRepository {
	return &MongoPersonalRecordRepository{
		records: db.Collection(collPersonalRecords),
		history: db.Collection(collPRHistory),
	}
}

// GetByUserAndExercise returns the stored PRs for one exercise key,
// keyed by pr type.
func (r *MongoPersonalRecordRepository) GetByUserAndExercise(ctx context.Context, userID, exerciseKey string) (map[string]*domain.UserExercisePR, error) {
	cursor, err := r.records.Find(ctx, bson.M{"user_id": userID, "exercise_key": exerciseKey})
	if err != nil {
		return nil, fmt.Errorf("%w: personal records: %v", domain.ErrPersistence, err)
	}
	defer cursor.Close(ctx)

	var rows []*domain.UserExercisePR
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("%w: personal records: %v", domain.ErrPersistence, err)
	}
	out := make(map[string]*domain.UserExercisePR, len(rows))
	for _, row := range rows {
		out[row.Type] = row
	}
	return out, nil
}

func (r *MongoPersonalRecordRepository) GetByUser(ctx context.Context, userID string) ([]*domain.UserExercisePR, error) {
	cursor, err := r.records.Find(ctx, bson.M{"user_id": userID},
		options.Find().SetSort(bson.M{"exercise_key": 1}))
	if err != nil {
		return nil, fmt.Errorf("%w: personal records: %v", domain.ErrPersistence, err)
	}
	defer cursor.Close(ctx)

	var rows []*domain.UserExercisePR
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("%w: personal records: %v", domain.ErrPersistence, err)
	}
	return rows, nil
}

func (r *MongoPersonalRecordRepository) GetHistory(ctx context.Context, userID, exerciseKey string) ([]*domain.PRHistoryEntry, error) {
	cursor, err := r.history.Find(ctx,
		bson.M{"user_id": userID, "exercise_key": exerciseKey},
		options.Find().SetSort(bson.M{"achieved_at": -1}))
	if err != nil {
		return nil, fmt.Errorf("%w: pr history: %v", domain.ErrPersistence, err)
	}
	defer cursor.Close(ctx)

	var rows []*domain.PRHistoryEntry
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("%w: pr history: %v", domain.ErrPersistence, err)
	}
	return rows, nil
}
