package domain

import "context"

// Benchmark tier constants name the four levels the pipeline ranks.
const (
	TierExercise    = "exercise"
	TierMuscle      = "muscle"
	TierMuscleGroup = "muscle_group"
	TierOverall     = "overall"
)

// Gender constants used for benchmark selection
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// Rank is a discrete strength tier (F up to Elite). IDs strictly
// increase with strength so rank comparisons reduce to id comparisons.
type Rank struct {
	ID       int     `json:"id" bson:"_id"`
	Name     string  `json:"name" bson:"name"`
	MinScore float64 `json:"min_score" bson:"min_score"`
	MaxScore float64 `json:"max_score" bson:"max_score"`
}

// InterRank is an ordered subdivision of a rank. The bands of a rank
// form a disjoint cover of its score range; SortOrder increases with
// strength within the rank.
type InterRank struct {
	ID        int     `json:"id" bson:"_id"`
	RankID    int     `json:"rank_id" bson:"rank_id"`
	MinScore  float64 `json:"min_score" bson:"min_score"`
	MaxScore  float64 `json:"max_score" bson:"max_score"`
	SortOrder int     `json:"sort_order" bson:"sort_order"`
}

// Benchmark maps a score threshold to a rank for one (gender, target).
// For a given target the thresholds form a monotone ladder; the highest
// crossed threshold wins.
type Benchmark struct {
	ID           string  `json:"id" bson:"_id,omitempty"`
	Tier         string  `json:"tier" bson:"tier"`
	Gender       string  `json:"gender" bson:"gender"`
	TargetID     string  `json:"target_id" bson:"target_id"` // empty for the overall tier
	MinThreshold float64 `json:"min_threshold" bson:"min_threshold"`
	RankID       int     `json:"rank_id" bson:"rank_id"`
}

// LevelDefinition maps accumulated XP to a user level. XP awards are
// handled upstream; the catalog only serves the table.
type LevelDefinition struct {
	Level int   `json:"level" bson:"_id"`
	MinXP int64 `json:"min_xp" bson:"min_xp"`
}

// ReferenceRepository is the load side of the reference catalog. All
// tables are immutable at runtime; callers go through the catalog cache
// rather than hitting this directly.
type ReferenceRepository interface {
	ListExercises(ctx context.Context) ([]*Exercise, error)
	ListExerciseMuscles(ctx context.Context) ([]*ExerciseMuscle, error)
	ListMuscles(ctx context.Context) ([]*Muscle, error)
	ListMuscleGroups(ctx context.Context) ([]*MuscleGroup, error)
	ListRanks(ctx context.Context) ([]*Rank, error)
	ListInterRanks(ctx context.Context) ([]*InterRank, error)
	ListLevelDefinitions(ctx context.Context) ([]*LevelDefinition, error)
	ListBenchmarks(ctx context.Context, tier, gender string) ([]*Benchmark, error)
}
