package service

import (
	"context"
	"time"

	"github.com/mansoorceksport/ironrank/internal/domain"
	"github.com/oklog/ulid/v2"
)

// PREvaluator compares scored sets against stored personal records.
// Custom exercises participate here even though ranking skips them.
type PREvaluator struct {
	prRepo domain.PersonalRecordRepository
}

func NewPREvaluator(prRepo domain.PersonalRecordRepository) *PREvaluator {
	return &PREvaluator{prRepo: prRepo}
}

// Evaluate walks the scored sets and returns the PR rows to upsert plus
// the history entries to append. Sets within one batch compete against
// each other as well as against stored records, so two improvements on
// the same exercise collapse to the best one with both logged in
// history.
func (e *PREvaluator) Evaluate(ctx context.Context, user *domain.User, bodyweight float64, sets []ScoredSet) ([]*domain.UserExercisePR, []*domain.PRHistoryEntry, error) {
	best := make(map[string]map[string]*domain.UserExercisePR)
	fresh := make(map[*domain.UserExercisePR]bool)
	var history []*domain.PRHistoryEntry

	for i := range sets {
		scored := &sets[i]
		set := scored.Set
		key := set.Exercise.Key()

		if _, ok := best[key]; !ok {
			stored, err := e.prRepo.GetByUserAndExercise(ctx, user.ID, key)
			if err != nil {
				return nil, nil, err
			}
			best[key] = stored
		}

		for _, cand := range candidates(scored) {
			prev := best[key][cand.prType]
			if prev != nil {
				if !prev.BeatenBy(cand.value) {
					continue
				}
				// max_reps only counts at or above the record's weight.
				if cand.prType == domain.PRTypeMaxReps && set.WeightKg < prev.WeightKg {
					continue
				}
			}

			record := &domain.UserExercisePR{
				UserID:      user.ID,
				ExerciseKey: key,
				Type:        cand.prType,
				Value:       cand.value,
				WeightKg:    set.WeightKg,
				Bodyweight:  bodyweight,
				Gender:      user.Gender,
				SourceSetID: set.ID,
				AchievedAt:  set.PerformedAt,
			}
			best[key][cand.prType] = record
			fresh[record] = true
			history = append(history, &domain.PRHistoryEntry{
				ID:          ulid.Make().String(),
				UserID:      user.ID,
				ExerciseKey: key,
				Type:        cand.prType,
				Value:       cand.value,
				Bodyweight:  bodyweight,
				SourceSetID: set.ID,
				AchievedAt:  set.PerformedAt,
			})
		}
	}

	// Only the final winner per (exercise, type) is upserted; superseded
	// in-batch records survive in history alone.
	var newPRs []*domain.UserExercisePR
	for _, byType := range best {
		for _, pr := range byType {
			if fresh[pr] {
				newPRs = append(newPRs, pr)
			}
		}
	}
	return newPRs, history, nil
}

type prCandidate struct {
	prType string
	value  float64
}

// candidates lists the record types one set can contend for. Zero
// values never set records.
func candidates(scored *ScoredSet) []prCandidate {
	var out []prCandidate
	if scored.OneRepMax > 0 {
		out = append(out, prCandidate{domain.PRTypeOneRepMax, scored.OneRepMax})
	}
	if scored.Set.Reps > 0 && scored.Set.WeightKg > 0 {
		out = append(out, prCandidate{domain.PRTypeMaxReps, float64(scored.Set.Reps)})
	}
	if scored.SWR > 0 {
		out = append(out, prCandidate{domain.PRTypeMaxSWR, scored.SWR})
	}
	return out
}

// stampPRs sets the bookkeeping time on freshly won records.
func stampPRs(prs []*domain.UserExercisePR, now time.Time) {
	for _, pr := range prs {
		pr.UpdatedAt = now
	}
}
