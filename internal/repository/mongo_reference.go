package repository

import (
	"context"
	"fmt"

	"github.com/mansoorceksport/ironrank/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoReferenceRepository loads the immutable reference tables. Writes
// only happen through the seed command; the running service treats
// every collection here as read-only.
type MongoReferenceRepository struct {
	db *mongo.Database
}

func NewMongoReferenceRepository(db *mongo.Database) *MongoReferenceRepository {
	return &MongoReferenceRepository{db: db}
}

func (r *MongoReferenceRepository) ListExercises(ctx context.Context) ([]*domain.Exercise, error) {
	cursor, err := r.db.Collection("exercises").Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("%w: exercises: %v", domain.ErrReferenceData, err)
	}
	defer cursor.Close(ctx)

	var rows []*domain.Exercise
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("%w: exercises: %v", domain.ErrReferenceData, err)
	}
	return rows, nil
}

func (r *MongoReferenceRepository) ListExerciseMuscles(ctx context.Context) ([]*domain.ExerciseMuscle, error) {
	cursor, err := r.db.Collection("exercise_muscles").Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("%w: exercise_muscles: %v", domain.ErrReferenceData, err)
	}
	defer cursor.Close(ctx)

	var rows []*domain.ExerciseMuscle
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("%w: exercise_muscles: %v", domain.ErrReferenceData, err)
	}
	return rows, nil
}

func (r *MongoReferenceRepository) ListMuscles(ctx context.Context) ([]*domain.Muscle, error) {
	cursor, err := r.db.Collection("muscles").Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("%w: muscles: %v", domain.ErrReferenceData, err)
	}
	defer cursor.Close(ctx)

	var rows []*domain.Muscle
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("%w: muscles: %v", domain.ErrReferenceData, err)
	}
	return rows, nil
}

func (r *MongoReferenceRepository) ListMuscleGroups(ctx context.Context) ([]*domain.MuscleGroup, error) {
	cursor, err := r.db.Collection("muscle_groups").Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("%w: muscle_groups: %v", domain.ErrReferenceData, err)
	}
	defer cursor.Close(ctx)

	var rows []*domain.MuscleGroup
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("%w: muscle_groups: %v", domain.ErrReferenceData, err)
	}
	return rows, nil
}

func (r *MongoReferenceRepository) ListRanks(ctx context.Context) ([]*domain.Rank, error) {
	cursor, err := r.db.Collection("ranks").Find(ctx, bson.M{},
		options.Find().SetSort(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("%w: ranks: %v", domain.ErrReferenceData, err)
	}
	defer cursor.Close(ctx)

	var rows []*domain.Rank
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("%w: ranks: %v", domain.ErrReferenceData, err)
	}
	return rows, nil
}

func (r *MongoReferenceRepository) ListInterRanks(ctx context.Context) ([]*domain.InterRank, error) {
	cursor, err := r.db.Collection("inter_ranks").Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "rank_id", Value: 1}, {Key: "sort_order", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("%w: inter_ranks: %v", domain.ErrReferenceData, err)
	}
	defer cursor.Close(ctx)

	var rows []*domain.InterRank
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("%w: inter_ranks: %v", domain.ErrReferenceData, err)
	}
	return rows, nil
}

func (r *MongoReferenceRepository) ListLevelDefinitions(ctx context.Context) ([]*domain.LevelDefinition, error) {
	cursor, err := r.db.Collection("level_definitions").Find(ctx, bson.M{},
		options.Find().SetSort(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("%w: level_definitions: %v", domain.ErrReferenceData, err)
	}
	defer cursor.Close(ctx)

	var rows []*domain.LevelDefinition
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("%w: level_definitions: %v", domain.ErrReferenceData, err)
	}
	return rows, nil
}

// ListBenchmarks returns the threshold ladder for one (tier, gender),
// sorted descending so the first crossed threshold wins.
func (r *MongoReferenceRepository) ListBenchmarks(ctx context.Context, tier, gender string) ([]*domain.Benchmark, error) {
	cursor, err := r.db.Collection("benchmarks").Find(ctx,
		bson.M{"tier": tier, "gender": gender},
		options.Find().SetSort(bson.M{"min_threshold": -1}))
	if err != nil {
		return nil, fmt.Errorf("%w: benchmarks %s/%s: %v", domain.ErrReferenceData, tier, gender, err)
	}
	defer cursor.Close(ctx)

	var rows []*domain.Benchmark
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("%w: benchmarks %s/%s: %v", domain.ErrReferenceData, tier, gender, err)
	}
	return rows, nil
}

// InsertMany is the seed-side write used only by cmd/seed/reference.
func (r *MongoReferenceRepository) InsertMany(ctx context.Context, collection string, docs []interface{}) error {
	if len(docs) == 0 {
		return nil
	}
	_, err := r.db.Collection(collection).InsertMany(ctx, docs)
	return err
}
