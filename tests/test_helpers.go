package tests

import (
	"context"
	"log"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mansoorceksport/ironrank/internal/domain"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SetupTestDB spins up a fresh MongoDB container and returns the database
// connection along with a cleanup function. The container runs as a
// single-node replica set because the rank bulk write needs transactions.
func SetupTestDB(t *testing.T) (*mongo.Database, func()) {
	ctx := context.Background()

	mongodbContainer, err := mongodb.Run(ctx, "mongo:7", mongodb.WithReplicaSet("rs0"))
	if err != nil {
		t.Fatalf("failed to start container: %s", err)
	}

	endpoint, err := mongodbContainer.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get connection string: %s", err)
	}

	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(endpoint))
	if err != nil {
		t.Fatalf("failed to connect to mongo: %v", err)
	}

	return mongoClient.Database("test_db"), func() {
		if err := mongoClient.Disconnect(ctx); err != nil {
			log.Printf("failed to disconnect mongo: %v", err)
		}
		if err := mongodbContainer.Terminate(ctx); err != nil {
			log.Printf("failed to terminate container: %v", err)
		}
	}
}

// SignTestToken issues an HS256 token the way the upstream auth service
// does, so requests pass VerifyIronRankToken.
func SignTestToken(t *testing.T, secret, userID string, premium, admin bool) string {
	t.Helper()

	claims := domain.IronRankClaims{
		UserID:  userID,
		Premium: premium,
		Admin:   admin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}
	return signed
}

// SeedReferenceData loads a minimal but complete reference set: one
// barbell exercise hitting three muscles across three groups, four
// ranks with two sub-rank bands each, and benchmark ladders for every
// tier and gender.
func SeedReferenceData(t *testing.T, db *mongo.Database) {
	t.Helper()
	ctx := context.Background()

	insert := func(collection string, docs []interface{}) {
		if _, err := db.Collection(collection).InsertMany(ctx, docs); err != nil {
			t.Fatalf("failed to seed %s: %v", collection, err)
		}
	}

	insert("ranks", []interface{}{
		&domain.Rank{ID: 1, Name: "F", MinScore: 0, MaxScore: 0.4},
		&domain.Rank{ID: 2, Name: "D", MinScore: 0.4, MaxScore: 0.8},
		&domain.Rank{ID: 3, Name: "B", MinScore: 0.8, MaxScore: 1.2},
		&domain.Rank{ID: 4, Name: "A", MinScore: 1.2, MaxScore: 99},
	})

	var interRanks []interface{}
	for _, r := range []struct {
		id       int
		min, max float64
	}{{1, 0, 0.4}, {2, 0.4, 0.8}, {3, 0.8, 1.2}, {4, 1.2, 99}} {
		mid := r.min + (r.max-r.min)/2
		interRanks = append(interRanks,
			&domain.InterRank{ID: r.id*10 + 1, RankID: r.id, MinScore: r.min, MaxScore: mid, SortOrder: 1},
			&domain.InterRank{ID: r.id*10 + 2, RankID: r.id, MinScore: mid, MaxScore: r.max, SortOrder: 2},
		)
	}
	insert("inter_ranks", interRanks)

	insert("muscle_groups", []interface{}{
		&domain.MuscleGroup{ID: "chest", Name: "Chest", OverallWeight: 0.5},
		&domain.MuscleGroup{ID: "shoulders", Name: "Shoulders", OverallWeight: 0.3},
		&domain.MuscleGroup{ID: "arms", Name: "Arms", OverallWeight: 0.2},
	})
	insert("muscles", []interface{}{
		&domain.Muscle{ID: "pectorals", Name: "Pectorals", MuscleGroupID: "chest", GroupWeight: 1.0},
		&domain.Muscle{ID: "delts", Name: "Deltoids", MuscleGroupID: "shoulders", GroupWeight: 1.0},
		&domain.Muscle{ID: "triceps", Name: "Triceps", MuscleGroupID: "arms", GroupWeight: 0.5},
	})
	insert("exercises", []interface{}{
		&domain.Exercise{ID: "bench", Name: "Barbell Bench Press", Type: domain.ExerciseTypeBarbell, Bilateral: true, EliteSWRMale: 1.5, EliteSWRFemale: 1.0},
	})
	insert("exercise_muscles", []interface{}{
		&domain.ExerciseMuscle{ID: "l1", ExerciseID: "bench", MuscleID: "pectorals", Intensity: domain.IntensityPrimary},
		&domain.ExerciseMuscle{ID: "l2", ExerciseID: "bench", MuscleID: "delts", Intensity: domain.IntensitySecondary},
		&domain.ExerciseMuscle{ID: "l3", ExerciseID: "bench", MuscleID: "triceps", Intensity: domain.IntensityAccessory},
	})

	targets := map[string][]string{
		domain.TierExercise:    {"bench"},
		domain.TierMuscle:      {"pectorals", "delts", "triceps"},
		domain.TierMuscleGroup: {"chest", "shoulders", "arms"},
		domain.TierOverall:     {""},
	}
	ladder := []struct {
		threshold float64
		rankID    int
	}{{1.2, 4}, {0.8, 3}, {0.4, 2}, {0, 1}}

	var benchmarks []interface{}
	for tier, ids := range targets {
		for _, gender := range []string{domain.GenderMale, domain.GenderFemale} {
			for _, targetID := range ids {
				for _, step := range ladder {
					benchmarks = append(benchmarks, &domain.Benchmark{
						Tier:         tier,
						Gender:       gender,
						TargetID:     targetID,
						MinThreshold: step.threshold,
						RankID:       step.rankID,
					})
				}
			}
		}
	}
	insert("benchmarks", benchmarks)
}
