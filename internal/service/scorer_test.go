package service

import (
	"math"
	"testing"

	"github.com/mansoorceksport/ironrank/internal/domain"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestEstimateOneRepMax(t *testing.T) {
	s := NewScorer()

	tests := []struct {
		name     string
		weightKg float64
		reps     int
		want     float64
	}{
		{name: "zero reps", weightKg: 100, reps: 0, want: 0},
		{name: "negative reps", weightKg: 100, reps: -3, want: 0},
		{name: "zero weight", weightKg: 0, reps: 5, want: 0},
		{name: "negative weight", weightKg: -10, reps: 5, want: 0},
		{name: "single rep is the lift itself", weightKg: 140, reps: 1, want: 140},
		{name: "epley five reps", weightKg: 60, reps: 5, want: 70},
		{name: "epley ten reps", weightKg: 100, reps: 10, want: 100 * (1 + 10.0/30)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.EstimateOneRepMax(tt.weightKg, tt.reps)
			if !almostEqual(got, tt.want) {
				t.Errorf("EstimateOneRepMax(%v, %d) = %v, want %v", tt.weightKg, tt.reps, got, tt.want)
			}
		})
	}
}

func TestStrengthToWeightRatio(t *testing.T) {
	s := NewScorer()

	tests := []struct {
		name       string
		oneRepMax  float64
		bodyweight float64
		want       float64
	}{
		{name: "normal", oneRepMax: 70, bodyweight: 80, want: 0.875},
		{name: "missing bodyweight", oneRepMax: 70, bodyweight: 0, want: 0},
		{name: "negative bodyweight", oneRepMax: 70, bodyweight: -1, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.StrengthToWeightRatio(tt.oneRepMax, tt.bodyweight)
			if !almostEqual(got, tt.want) {
				t.Errorf("StrengthToWeightRatio(%v, %v) = %v, want %v", tt.oneRepMax, tt.bodyweight, got, tt.want)
			}
		})
	}
}

func TestExerciseScore(t *testing.T) {
	s := NewScorer()

	barbell := &domain.Exercise{ID: "bench", Type: domain.ExerciseTypeBarbell, EliteSWRMale: 1.5}
	machine := &domain.Exercise{
		ID:                   "leg-press",
		Type:                 domain.ExerciseTypeMachine,
		EliteOneRepMaxMale:   380,
		EliteOneRepMaxFemale: 270,
		EliteSWRMale:         2.0,
		EliteSWRFemale:       1.5,
	}
	assisted := &domain.Exercise{
		ID:                 "assisted-pull-up",
		Type:               domain.ExerciseTypeAssistedBW,
		EliteOneRepMaxMale: 120,
		EliteSWRMale:       1.5,
	}
	cardio := &domain.Exercise{ID: "rowing", Type: domain.ExerciseTypeCardio}

	tests := []struct {
		name      string
		ex        *domain.Exercise
		gender    string
		oneRepMax float64
		swr       float64
		want      float64
	}{
		{name: "barbell uses swr", ex: barbell, gender: domain.GenderMale, oneRepMax: 70, swr: 0.875, want: 0.875},
		{name: "machine normalizes against elite target", ex: machine, gender: domain.GenderMale, oneRepMax: 190, swr: 0, want: (190.0 / 380.0) * 2.0},
		{name: "machine female targets", ex: machine, gender: domain.GenderFemale, oneRepMax: 135, swr: 0, want: (135.0 / 270.0) * 1.5},
		{name: "machine with zero 1rm", ex: machine, gender: domain.GenderMale, oneRepMax: 0, swr: 0, want: 0},
		{name: "assisted normalizes against elite target", ex: assisted, gender: domain.GenderMale, oneRepMax: 90, swr: 1.1, want: (90.0 / 120.0) * 1.5},
		{name: "cardio scores zero", ex: cardio, gender: domain.GenderMale, oneRepMax: 100, swr: 1.2, want: 0},
		{name: "nil exercise", ex: nil, gender: domain.GenderMale, oneRepMax: 100, swr: 1.2, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.ExerciseScore(tt.ex, tt.gender, tt.oneRepMax, tt.swr)
			if !almostEqual(got, tt.want) {
				t.Errorf("ExerciseScore() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLookupRank(t *testing.T) {
	s := NewScorer()

	ranks := []*domain.Rank{
		{ID: 1, Name: "F"},
		{ID: 2, Name: "D"},
		{ID: 3, Name: "B"},
	}
	// Descending ladder, the order ListBenchmarks returns.
	benchmarks := []*domain.Benchmark{
		{TargetID: "bench", MinThreshold: 0.8, RankID: 3},
		{TargetID: "bench", MinThreshold: 0.4, RankID: 2},
		{TargetID: "bench", MinThreshold: 0, RankID: 1},
	}

	tests := []struct {
		name     string
		targetID string
		score    float64
		want     int
	}{
		{name: "above top threshold", targetID: "bench", score: 1.0, want: 3},
		{name: "between thresholds", targetID: "bench", score: 0.5, want: 2},
		{name: "bottom of ladder", targetID: "bench", score: 0.1, want: 1},
		{name: "boundary tie promotes", targetID: "bench", score: 0.8, want: 3},
		{name: "tiny drift below boundary still promotes", targetID: "bench", score: 0.8 - 1e-12, want: 3},
		{name: "missing ladder falls to lowest rank", targetID: "unknown", score: 5.0, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.LookupRank(benchmarks, ranks, tt.targetID, tt.score)
			if got != tt.want {
				t.Errorf("LookupRank(%q, %v) = %d, want %d", tt.targetID, tt.score, got, tt.want)
			}
		})
	}
}

func TestLookupSubRank(t *testing.T) {
	s := NewScorer()

	interRanks := []*domain.InterRank{
		{ID: 31, RankID: 3, MinScore: 0.8, MaxScore: 0.95, SortOrder: 1},
		{ID: 32, RankID: 3, MinScore: 0.95, MaxScore: 1.1, SortOrder: 2},
		{ID: 33, RankID: 3, MinScore: 1.1, MaxScore: 1.2, SortOrder: 3},
	}

	tests := []struct {
		name   string
		rankID int
		score  float64
		want   int
	}{
		{name: "lowest band", rankID: 3, score: 0.85, want: 31},
		{name: "middle band", rankID: 3, score: 1.0, want: 32},
		{name: "top band", rankID: 3, score: 1.15, want: 33},
		{name: "band boundary resolves up", rankID: 3, score: 0.95, want: 32},
		{name: "below every band clamps to lowest", rankID: 3, score: 0.5, want: 31},
		{name: "no bands for rank", rankID: 9, score: 1.0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.LookupSubRank(interRanks, tt.rankID, tt.score)
			if got != tt.want {
				t.Errorf("LookupSubRank(%d, %v) = %d, want %d", tt.rankID, tt.score, got, tt.want)
			}
		})
	}
}

func TestScoreSetCustomExercise(t *testing.T) {
	s := NewScorer()

	set := &domain.SessionSet{
		Exercise: domain.ExerciseRef{CustomID: "my-move"},
		Reps:     5,
		WeightKg: 60,
	}
	scored := s.ScoreSet(set, nil, domain.GenderMale, 80)

	if !almostEqual(scored.OneRepMax, 70) {
		t.Errorf("OneRepMax = %v, want 70", scored.OneRepMax)
	}
	if !almostEqual(scored.SWR, 0.875) {
		t.Errorf("SWR = %v, want 0.875", scored.SWR)
	}
	if scored.Score != 0 {
		t.Errorf("custom exercise must not get a benchmark score, got %v", scored.Score)
	}
}
