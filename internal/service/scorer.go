package service

import (
	"github.com/mansoorceksport/ironrank/internal/domain"
)

// scoreEpsilon absorbs float drift at benchmark boundaries. A score
// exactly on a threshold belongs to the higher band.
const scoreEpsilon = 1e-9

// Scorer derives the per-set numbers: estimated 1RM, strength-to-weight
// ratio, the benchmark-comparable score and the rank/sub-rank lookup.
// All methods are pure; reference tables come in as arguments.
type Scorer struct{}

func NewScorer() *Scorer {
	return &Scorer{}
}

// EstimateOneRepMax applies the Epley formula. A single rep is the lift
// itself; non-positive inputs produce 0.
func (s *Scorer) EstimateOneRepMax(weightKg float64, reps int) float64 {
	if reps <= 0 || weightKg <= 0 {
		return 0
	}
	if reps == 1 {
		return weightKg
	}
	return weightKg * (1 + float64(reps)/30)
}

// StrengthToWeightRatio normalizes an estimated 1RM by bodyweight.
func (s *Scorer) StrengthToWeightRatio(oneRepMax, bodyweightKg float64) float64 {
	if bodyweightKg <= 0 {
		return 0
	}
	return oneRepMax / bodyweightKg
}

// ExerciseScore produces the benchmark-comparable score for one set.
// Bodyweight-scored exercise types use SWR directly. Machine and
// assisted exercises have no meaningful SWR, so the estimated 1RM is
// measured against the exercise's per-gender elite target and rescaled
// onto the elite SWR so both kinds of score share one benchmark
// ladder. Cardio and untyped exercises score 0.
func (s *Scorer) ExerciseScore(ex *domain.Exercise, gender string, oneRepMax, swr float64) float64 {
	if ex == nil {
		return 0
	}
	if ex.BodyweightScored() {
		return swr
	}
	switch ex.Type {
	case domain.ExerciseTypeMachine, domain.ExerciseTypeAssistedBW:
		elite := ex.EliteOneRepMax(gender)
		if elite <= 0 || oneRepMax <= 0 {
			return 0
		}
		return (oneRepMax / elite) * ex.EliteSWR(gender)
	}
	return 0
}

// LookupRank finds the rank for a score on a descending benchmark
// ladder restricted to targetID. The first crossed threshold wins;
// boundary ties promote. A missing ladder falls back to the lowest
// rank so reference gaps never fail a call.
func (s *Scorer) LookupRank(benchmarks []*domain.Benchmark, ranks []*domain.Rank, targetID string, score float64) int {
	for _, b := range benchmarks {
		if b.TargetID != targetID {
			continue
		}
		if score+scoreEpsilon >= b.MinThreshold {
			return b.RankID
		}
	}
	return lowestRankID(ranks)
}

// LookupSubRank finds the inter-rank band containing score within
// rankID. Ties on a band boundary resolve to the higher band. A score
// outside every band clamps to the nearest one.
func (s *Scorer) LookupSubRank(interRanks []*domain.InterRank, rankID int, score float64) int {
	var bands []*domain.InterRank
	for _, ir := range interRanks {
		if ir.RankID == rankID {
			bands = append(bands, ir)
		}
	}
	if len(bands) == 0 {
		return 0
	}

	// Bands arrive ordered by sort_order ascending; walk from the top
	// so a boundary tie lands in the higher band.
	for i := len(bands) - 1; i >= 0; i-- {
		if score+scoreEpsilon >= bands[i].MinScore {
			return bands[i].ID
		}
	}
	return bands[0].ID
}

func lowestRankID(ranks []*domain.Rank) int {
	if len(ranks) == 0 {
		return 0
	}
	lowest := ranks[0].ID
	for _, r := range ranks[1:] {
		if r.ID < lowest {
			lowest = r.ID
		}
	}
	return lowest
}

// ScoredSet is one set with its derived numbers, the scorer's output
// and the aggregator's input.
type ScoredSet struct {
	Set       *domain.SessionSet
	Exercise  *domain.Exercise
	OneRepMax float64
	SWR       float64
	Score     float64
}

// ScoreSet derives every number for one set in one pass. Custom
// exercises get their 1RM and SWR but no benchmark score.
func (s *Scorer) ScoreSet(set *domain.SessionSet, ex *domain.Exercise, gender string, bodyweightKg float64) ScoredSet {
	oneRM := s.EstimateOneRepMax(set.WeightKg, set.Reps)
	swr := s.StrengthToWeightRatio(oneRM, bodyweightKg)

	scored := ScoredSet{
		Set:       set,
		Exercise:  ex,
		OneRepMax: oneRM,
		SWR:       swr,
	}
	if !set.Exercise.IsCustom() {
		scored.Score = s.ExerciseScore(ex, gender, oneRM, swr)
	}
	return scored
}
