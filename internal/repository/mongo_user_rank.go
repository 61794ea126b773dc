package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/mansoorceksport/ironrank/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collExerciseRanks    = "user_exercise_ranks"
	collMuscleRanks      = "user_muscle_ranks"
	collMuscleGroupRanks = "user_muscle_group_ranks"
	collOverallRanks     = "user_overall_ranks"
	collPersonalRecords  = "personal_records"
	collPRHistory        = "pr_history"
)

// MongoUserRankRepository is the persistence gateway for rank rows and
// PRs. ApplyUpdate runs every row of a payload inside one transaction,
// so the four tiers and the PR upserts move together or not at all.
type MongoUserRankRepository struct {
	db *mongo.Database
}

func NewMongoUserRankRepository(db *mongo.Database) *MongoUserRankRepository {
	return &MongoUserRankRepository{db: db}
}

func (r *MongoUserRankRepository) GetExerciseRanks(ctx context.Context, userID string) (map[string]*domain.UserExerciseRank, error) {
	cursor, err := r.db.Collection(collExerciseRanks).Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("%w: exercise ranks: %v", domain.ErrPersistence, err)
	}
	defer cursor.Close(ctx)

	var rows []*domain.UserExerciseRank
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("%w: exercise ranks: %v", domain.ErrPersistence, err)
	}
	out := make(map[string]*domain.UserExerciseRank, len(rows))
	for _, row := range rows {
		out[row.ExerciseID] = row
	}
	return out, nil
}

func (r *MongoUserRankRepository) GetMuscleRanks(ctx context.Context, userID string) (map[string]*domain.UserMuscleRank, error) {
	cursor, err := r.db.Collection(collMuscleRanks).Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("%w: muscle ranks: %v", domain.ErrPersistence, err)
	}
	defer cursor.Close(ctx)

	var rows []*domain.UserMuscleRank
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("%w: muscle ranks: %v", domain.ErrPersistence, err)
	}
	out := make(map[string]*domain.UserMuscleRank, len(rows))
	for _, row := range rows {
		out[row.MuscleID] = row
	}
	return out, nil
}

func (r *MongoUserRankRepository) GetMuscleGroupRanks(ctx context.Context, userID string) (map[string]*domain.UserMuscleGroupRank, error) {
	cursor, err := r.db.Collection(collMuscleGroupRanks).Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("%w: muscle group ranks: %v", domain.ErrPersistence, err)
	}
	defer cursor.Close(ctx)

	var rows []*domain.UserMuscleGroupRank
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("%w: muscle group ranks: %v", domain.ErrPersistence, err)
	}
	out := make(map[string]*domain.UserMuscleGroupRank, len(rows))
	for _, row := range rows {
		out[row.MuscleGroupID] = row
	}
	return out, nil
}

func (r *MongoUserRankRepository) GetOverallRank(ctx context.Context, userID string) (*domain.UserOverallRank, error) {
	var row domain.UserOverallRank
	err := r.db.Collection(collOverallRanks).FindOne(ctx, bson.M{"user_id": userID}).Decode(&row)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil // no rank yet
		}
		return nil, fmt.Errorf("%w: overall rank: %v", domain.ErrPersistence, err)
	}
	return &row, nil
}

// ApplyUpdate executes the whole payload transactionally. A no-op
// payload returns immediately without opening a session.
func (r *MongoUserRankRepository) ApplyUpdate(ctx context.Context, payload *domain.RankUpdatePayload) error {
	if payload == nil || payload.Empty() {
		return nil
	}

	session, err := r.db.Client().StartSession()
	if err != nil {
		return fmt.Errorf("%w: start session: %v", domain.ErrPersistence, err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		now := time.Now()

		if models := exerciseRankModels(payload, now); len(models) > 0 {
			if _, err := r.db.Collection(collExerciseRanks).BulkWrite(sc, models); err != nil {
				return nil, err
			}
		}
		if models := muscleRankModels(payload, now); len(models) > 0 {
			if _, err := r.db.Collection(collMuscleRanks).BulkWrite(sc, models); err != nil {
				return nil, err
			}
		}
		if models := muscleGroupRankModels(payload, now); len(models) > 0 {
			if _, err := r.db.Collection(collMuscleGroupRanks).BulkWrite(sc, models); err != nil {
				return nil, err
			}
		}
		if payload.OverallRank != nil {
			u := payload.OverallRank
			_, err := r.db.Collection(collOverallRanks).UpdateOne(sc,
				bson.M{"user_id": payload.UserID},
				bson.M{
					"$set": bson.M{
						"permanent_score":   u.NewScores.Permanent,
						"leaderboard_score": u.NewScores.Leaderboard,
						"rank_id":           u.NewRankID,
						"sub_rank_id":       u.NewSubRankID,
						"locked":            payload.Locked,
						"updated_at":        now,
					},
					"$setOnInsert": bson.M{"_id": payload.UserID},
				},
				options.Update().SetUpsert(true))
			if err != nil {
				return nil, err
			}
		}

		if models := personalRecordModels(payload, now); len(models) > 0 {
			if _, err := r.db.Collection(collPersonalRecords).BulkWrite(sc, models); err != nil {
				return nil, err
			}
		}
		if len(payload.PRHistory) > 0 {
			docs := make([]interface{}, len(payload.PRHistory))
			for i, entry := range payload.PRHistory {
				docs[i] = entry
			}
			if _, err := r.db.Collection(collPRHistory).InsertMany(sc, docs); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("%w: apply rank update: %v", domain.ErrPersistence, err)
	}
	return nil
}

// ResetLeaderboardScores zeroes the leaderboard channel on every rank
// row. Called once per leaderboard epoch by the admin surface.
func (r *MongoUserRankRepository) ResetLeaderboardScores(ctx context.Context) error {
	reset := bson.M{"$set": bson.M{"leaderboard_score": 0, "updated_at": time.Now()}}
	for _, coll := range []string{collExerciseRanks, collMuscleRanks, collMuscleGroupRanks, collOverallRanks} {
		if _, err := r.db.Collection(coll).UpdateMany(ctx, bson.M{}, reset); err != nil {
			return fmt.Errorf("%w: reset leaderboard scores: %v", domain.ErrPersistence, err)
		}
	}
	return nil
}

func exerciseRankModels(payload *domain.RankUpdatePayload, now time.Time) []mongo.WriteModel {
	models := make([]mongo.WriteModel, 0, len(payload.ExerciseRanks))
	for _, u := range payload.ExerciseRanks {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"user_id": payload.UserID, "exercise_id": u.TargetID}).
			SetUpdate(bson.M{
				"$set": bson.M{
					"permanent_score":             u.NewScores.Permanent,
					"leaderboard_score":           u.NewScores.Leaderboard,
					"rank_id":                     u.NewRankID,
					"sub_rank_id":                 u.NewSubRankID,
					"locked":                      payload.Locked,
					"contributing_session_set_id": u.ContributingSetID,
					"updated_at":                  now,
				},
				"$setOnInsert": bson.M{"_id": payload.UserID + ":" + u.TargetID},
			}).
			SetUpsert(true))
	}
	return models
}

func muscleRankModels(payload *domain.RankUpdatePayload, now time.Time) []mongo.WriteModel {
	models := make([]mongo.WriteModel, 0, len(payload.MuscleRanks))
	for _, u := range payload.MuscleRanks {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"user_id": payload.UserID, "muscle_id": u.TargetID}).
			SetUpdate(bson.M{
				"$set": bson.M{
					"permanent_score":   u.NewScores.Permanent,
					"leaderboard_score": u.NewScores.Leaderboard,
					"rank_id":           u.NewRankID,
					"sub_rank_id":       u.NewSubRankID,
					"locked":            payload.Locked,
					"updated_at":        now,
				},
				"$setOnInsert": bson.M{"_id": payload.UserID + ":" + u.TargetID},
			}).
			SetUpsert(true))
	}
	return models
}

func muscleGroupRankModels(payload *domain.RankUpdatePayload, now time.Time) []mongo.WriteModel {
	models := make([]mongo.WriteModel, 0, len(payload.MuscleGroupRanks))
	for _, u := range payload.MuscleGroupRanks {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"user_id": payload.UserID, "muscle_group_id": u.TargetID}).
			SetUpdate(bson.M{
				"$set": bson.M{
					"permanent_score":   u.NewScores.Permanent,
					"leaderboard_score": u.NewScores.Leaderboard,
					"rank_id":           u.NewRankID,
					"sub_rank_id":       u.NewSubRankID,
					"locked":            payload.Locked,
					"updated_at":        now,
				},
				"$setOnInsert": bson.M{"_id": payload.UserID + ":" + u.TargetID},
			}).
			SetUpsert(true))
	}
	return models
}

func personalRecordModels(payload *domain.RankUpdatePayload, now time.Time) []mongo.WriteModel {
	models := make([]mongo.WriteModel, 0, len(payload.NewPRs))
	for _, pr := range payload.NewPRs {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{
				"user_id":      pr.UserID,
				"exercise_key": pr.ExerciseKey,
				"pr_type":      pr.Type,
			}).
			SetUpdate(bson.M{
				"$set": bson.M{
					"value":         pr.Value,
					"weight_kg":     pr.WeightKg,
					"bodyweight":    pr.Bodyweight,
					"gender":        pr.Gender,
					"source_set_id": pr.SourceSetID,
					"achieved_at":   pr.AchievedAt,
					"updated_at":    now,
				},
				"$setOnInsert": bson.M{"_id": pr.UserID + ":" + pr.ExerciseKey + ":" + pr.Type},
			}).
			SetUpsert(true))
	}
	return models
}
