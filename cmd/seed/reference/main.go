package main

import (
	"context"
	"log"
	"time"

	"github.com/mansoorceksport/ironrank/internal/config"
	"github.com/mansoorceksport/ironrank/internal/domain"
	"github.com/mansoorceksport/ironrank/internal/repository"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Seeds the full reference catalog: ranks, inter-ranks, muscle groups,
// muscles, exercises, exercise-muscle links, per-gender benchmark
// ladders at all four tiers and the level table.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoDB.URI))
	if err != nil {
		log.Fatalf("Failed to connect to Mongo: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database(cfg.MongoDB.Database)
	repo := repository.NewMongoReferenceRepository(db)

	ranks := []domain.Rank{
		{ID: 1, Name: "F", MinScore: 0, MaxScore: 0.3},
		{ID: 2, Name: "E", MinScore: 0.3, MaxScore: 0.6},
		{ID: 3, Name: "D", MinScore: 0.6, MaxScore: 0.9},
		{ID: 4, Name: "C", MinScore: 0.9, MaxScore: 1.2},
		{ID: 5, Name: "B", MinScore: 1.2, MaxScore: 1.5},
		{ID: 6, Name: "A", MinScore: 1.5, MaxScore: 1.8},
		{ID: 7, Name: "S", MinScore: 1.8, MaxScore: 2.2},
		{ID: 8, Name: "Elite", MinScore: 2.2, MaxScore: 99},
	}

	// Three bands per rank, III being the strongest.
	var interRanks []domain.InterRank
	for _, r := range ranks {
		span := (r.MaxScore - r.MinScore) / 3
		for i := 0; i < 3; i++ {
			interRanks = append(interRanks, domain.InterRank{
				ID:        r.ID*10 + i + 1,
				RankID:    r.ID,
				MinScore:  r.MinScore + span*float64(i),
				MaxScore:  r.MinScore + span*float64(i+1),
				SortOrder: i + 1,
			})
		}
	}

	muscleGroups := []domain.MuscleGroup{
		{ID: "legs", Name: "Legs", OverallWeight: 0.30},
		{ID: "back", Name: "Back", OverallWeight: 0.25},
		{ID: "chest", Name: "Chest", OverallWeight: 0.20},
		{ID: "shoulders", Name: "Shoulders", OverallWeight: 0.10},
		{ID: "arms", Name: "Arms", OverallWeight: 0.10},
		{ID: "core", Name: "Core", OverallWeight: 0.05},
	}

	muscles := []domain.Muscle{
		{ID: "quadriceps", Name: "Quadriceps", MuscleGroupID: "legs", GroupWeight: 0.4},
		{ID: "hamstrings", Name: "Hamstrings", MuscleGroupID: "legs", GroupWeight: 0.3},
		{ID: "glutes", Name: "Glutes", MuscleGroupID: "legs", GroupWeight: 0.3},
		{ID: "lats", Name: "Latissimus Dorsi", MuscleGroupID: "back", GroupWeight: 0.5},
		{ID: "traps", Name: "Trapezius", MuscleGroupID: "back", GroupWeight: 0.25},
		{ID: "erectors", Name: "Spinal Erectors", MuscleGroupID: "back", GroupWeight: 0.25},
		{ID: "pectorals", Name: "Pectorals", MuscleGroupID: "chest", GroupWeight: 1.0},
		{ID: "delts", Name: "Deltoids", MuscleGroupID: "shoulders", GroupWeight: 1.0},
		{ID: "biceps", Name: "Biceps", MuscleGroupID: "arms", GroupWeight: 0.5},
		{ID: "triceps", Name: "Triceps", MuscleGroupID: "arms", GroupWeight: 0.5},
		{ID: "abdominals", Name: "Abdominals", MuscleGroupID: "core", GroupWeight: 1.0},
	}

	exercises := []domain.Exercise{
		{ID: "barbell-bench-press", Name: "Barbell Bench Press", Type: domain.ExerciseTypeBarbell, Bilateral: true, EliteSWRMale: 1.5, EliteSWRFemale: 1.0},
		{ID: "barbell-squat", Name: "Barbell Squat", Type: domain.ExerciseTypeBarbell, Bilateral: true, EliteSWRMale: 2.0, EliteSWRFemale: 1.5},
		{ID: "deadlift", Name: "Deadlift", Type: domain.ExerciseTypeBarbell, Bilateral: true, EliteSWRMale: 2.5, EliteSWRFemale: 1.8},
		{ID: "overhead-press", Name: "Overhead Press", Type: domain.ExerciseTypeBarbell, Bilateral: true, EliteSWRMale: 1.0, EliteSWRFemale: 0.7},
		{ID: "pull-up", Name: "Pull Up", Type: domain.ExerciseTypeWeightedBW, Bilateral: true, EliteSWRMale: 1.5, EliteSWRFemale: 1.2},
		{ID: "dip", Name: "Dip", Type: domain.ExerciseTypeWeightedBW, Bilateral: true, EliteSWRMale: 1.6, EliteSWRFemale: 1.2},
		{ID: "dumbbell-curl", Name: "Dumbbell Curl", Type: domain.ExerciseTypeFreeWeights, Bilateral: false, EliteSWRMale: 0.4, EliteSWRFemale: 0.3},
		{ID: "leg-press", Name: "Leg Press", Type: domain.ExerciseTypeMachine, Bilateral: true, EliteOneRepMaxMale: 380, EliteOneRepMaxFemale: 270, EliteSWRMale: 2.0, EliteSWRFemale: 1.5},
		{ID: "lat-pulldown", Name: "Lat Pulldown", Type: domain.ExerciseTypeMachine, Bilateral: true, EliteOneRepMaxMale: 120, EliteOneRepMaxFemale: 75, EliteSWRMale: 1.3, EliteSWRFemale: 1.0},
		{ID: "plank", Name: "Plank", Type: domain.ExerciseTypeNA, Bilateral: true},
		{ID: "rowing-machine", Name: "Rowing Machine", Type: domain.ExerciseTypeCardio, Bilateral: true},
	}

	exerciseMuscles := []domain.ExerciseMuscle{
		{ID: "bench-pecs", ExerciseID: "barbell-bench-press", MuscleID: "pectorals", Intensity: domain.IntensityPrimary},
		{ID: "bench-delts", ExerciseID: "barbell-bench-press", MuscleID: "delts", Intensity: domain.IntensitySecondary},
		{ID: "bench-triceps", ExerciseID: "barbell-bench-press", MuscleID: "triceps", Intensity: domain.IntensitySecondary},
		{ID: "squat-quads", ExerciseID: "barbell-squat", MuscleID: "quadriceps", Intensity: domain.IntensityPrimary},
		{ID: "squat-glutes", ExerciseID: "barbell-squat", MuscleID: "glutes", Intensity: domain.IntensitySecondary},
		{ID: "squat-erectors", ExerciseID: "barbell-squat", MuscleID: "erectors", Intensity: domain.IntensityAccessory},
		{ID: "deadlift-hamstrings", ExerciseID: "deadlift", MuscleID: "hamstrings", Intensity: domain.IntensityPrimary},
		{ID: "deadlift-glutes", ExerciseID: "deadlift", MuscleID: "glutes", Intensity: domain.IntensityPrimary},
		{ID: "deadlift-erectors", ExerciseID: "deadlift", MuscleID: "erectors", Intensity: domain.IntensitySecondary},
		{ID: "deadlift-traps", ExerciseID: "deadlift", MuscleID: "traps", Intensity: domain.IntensityAccessory},
		{ID: "ohp-delts", ExerciseID: "overhead-press", MuscleID: "delts", Intensity: domain.IntensityPrimary},
		{ID: "ohp-triceps", ExerciseID: "overhead-press", MuscleID: "triceps", Intensity: domain.IntensitySecondary},
		{ID: "pullup-lats", ExerciseID: "pull-up", MuscleID: "lats", Intensity: domain.IntensityPrimary},
		{ID: "pullup-biceps", ExerciseID: "pull-up", MuscleID: "biceps", Intensity: domain.IntensitySecondary},
		{ID: "dip-triceps", ExerciseID: "dip", MuscleID: "triceps", Intensity: domain.IntensityPrimary},
		{ID: "dip-pecs", ExerciseID: "dip", MuscleID: "pectorals", Intensity: domain.IntensitySecondary},
		{ID: "curl-biceps", ExerciseID: "dumbbell-curl", MuscleID: "biceps", Intensity: domain.IntensityPrimary},
		{ID: "legpress-quads", ExerciseID: "leg-press", MuscleID: "quadriceps", Intensity: domain.IntensityPrimary},
		{ID: "legpress-glutes", ExerciseID: "leg-press", MuscleID: "glutes", Intensity: domain.IntensitySecondary},
		{ID: "pulldown-lats", ExerciseID: "lat-pulldown", MuscleID: "lats", Intensity: domain.IntensityPrimary},
		{ID: "pulldown-biceps", ExerciseID: "lat-pulldown", MuscleID: "biceps", Intensity: domain.IntensityAccessory},
		{ID: "plank-abs", ExerciseID: "plank", MuscleID: "abdominals", Intensity: domain.IntensityPrimary},
	}

	levels := []domain.LevelDefinition{
		{Level: 1, MinXP: 0},
		{Level: 2, MinXP: 100},
		{Level: 3, MinXP: 300},
		{Level: 4, MinXP: 700},
		{Level: 5, MinXP: 1500},
		{Level: 6, MinXP: 3100},
		{Level: 7, MinXP: 6300},
		{Level: 8, MinXP: 12700},
	}

	// Ladder fractions of the elite target per rank.
	fractions := map[int]float64{1: 0.10, 2: 0.25, 3: 0.40, 4: 0.55, 5: 0.70, 6: 0.85, 7: 0.95, 8: 1.0}

	var benchmarks []domain.Benchmark
	for _, gender := range []string{domain.GenderMale, domain.GenderFemale} {
		// Exercise tier: scaled to each exercise's elite SWR.
		for _, ex := range exercises {
			elite := ex.EliteSWRMale
			if gender == domain.GenderFemale {
				elite = ex.EliteSWRFemale
			}
			if elite <= 0 {
				continue // cardio and untyped exercises have no ladder
			}
			for _, r := range ranks {
				benchmarks = append(benchmarks, domain.Benchmark{
					Tier:         domain.TierExercise,
					Gender:       gender,
					TargetID:     ex.ID,
					MinThreshold: elite * fractions[r.ID],
					RankID:       r.ID,
				})
			}
		}
		// Muscle, group and overall tiers ride the global rank scale.
		for _, m := range muscles {
			for _, r := range ranks {
				benchmarks = append(benchmarks, domain.Benchmark{
					Tier:         domain.TierMuscle,
					Gender:       gender,
					TargetID:     m.ID,
					MinThreshold: r.MinScore,
					RankID:       r.ID,
				})
			}
		}
		for _, g := range muscleGroups {
			for _, r := range ranks {
				benchmarks = append(benchmarks, domain.Benchmark{
					Tier:         domain.TierMuscleGroup,
					Gender:       gender,
					TargetID:     g.ID,
					MinThreshold: r.MinScore,
					RankID:       r.ID,
				})
			}
		}
		for _, r := range ranks {
			benchmarks = append(benchmarks, domain.Benchmark{
				Tier:         domain.TierOverall,
				Gender:       gender,
				MinThreshold: r.MinScore,
				RankID:       r.ID,
			})
		}
	}

	seed := func(collection string, count int, docs []interface{}) {
		if err := repo.InsertMany(ctx, collection, docs); err != nil {
			log.Fatalf("Failed to seed %s: %v", collection, err)
		}
		log.Printf("✓ Seeded %d %s", count, collection)
	}

	now := time.Now()
	var exDocs, linkDocs, muscleDocs, groupDocs, rankDocs, interDocs, levelDocs, benchDocs []interface{}
	for i := range exercises {
		exercises[i].CreatedAt = now
		exercises[i].UpdatedAt = now
		exDocs = append(exDocs, exercises[i])
	}
	for _, row := range exerciseMuscles {
		linkDocs = append(linkDocs, row)
	}
	for _, row := range muscles {
		muscleDocs = append(muscleDocs, row)
	}
	for _, row := range muscleGroups {
		groupDocs = append(groupDocs, row)
	}
	for _, row := range ranks {
		rankDocs = append(rankDocs, row)
	}
	for _, row := range interRanks {
		interDocs = append(interDocs, row)
	}
	for _, row := range levels {
		levelDocs = append(levelDocs, row)
	}
	for _, row := range benchmarks {
		benchDocs = append(benchDocs, row)
	}

	seed("exercises", len(exDocs), exDocs)
	seed("exercise_muscles", len(linkDocs), linkDocs)
	seed("muscles", len(muscleDocs), muscleDocs)
	seed("muscle_groups", len(groupDocs), groupDocs)
	seed("ranks", len(rankDocs), rankDocs)
	seed("inter_ranks", len(interDocs), interDocs)
	seed("level_definitions", len(levelDocs), levelDocs)
	seed("benchmarks", len(benchDocs), benchDocs)

	log.Println("Reference catalog seeded.")
}
