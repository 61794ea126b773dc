package service

import (
	"context"
	"testing"
	"time"

	"github.com/mansoorceksport/ironrank/internal/domain"
)

// fakePRRepo serves stored PRs from memory.
type fakePRRepo struct {
	records map[string]map[string]*domain.UserExercisePR // exerciseKey -> type -> pr
}

func newFakePRRepo() *fakePRRepo {
	return &fakePRRepo{records: make(map[string]map[string]*domain.UserExercisePR)}
}

func (f *fakePRRepo) put(pr *domain.UserExercisePR) {
	if f.records[pr.ExerciseKey] == nil {
		f.records[pr.ExerciseKey] = make(map[string]*domain.UserExercisePR)
	}
	f.records[pr.ExerciseKey][pr.Type] = pr
}

func (f *fakePRRepo) GetByUserAndExercise(ctx context.Context, userID, exerciseKey string) (map[string]*domain.UserExercisePR, error) {
	out := make(map[string]*domain.UserExercisePR)
	for prType, pr := range f.records[exerciseKey] {
		out[prType] = pr
	}
	return out, nil
}

func (f *fakePRRepo) GetByUser(ctx context.Context, userID string) ([]*domain.UserExercisePR, error) {
	var out []*domain.UserExercisePR
	for _, byType := range f.records {
		for _, pr := range byType {
			out = append(out, pr)
		}
	}
	return out, nil
}

func (f *fakePRRepo) GetHistory(ctx context.Context, userID, exerciseKey string) ([]*domain.PRHistoryEntry, error) {
	return nil, nil
}

func prByType(prs []*domain.UserExercisePR, prType string) *domain.UserExercisePR {
	for _, pr := range prs {
		if pr.Type == prType {
			return pr
		}
	}
	return nil
}

func TestEvaluateFirstSetSeedsAllRecords(t *testing.T) {
	repo := newFakePRRepo()
	eval := NewPREvaluator(repo)
	scorer := NewScorer()
	user := &domain.User{ID: "u1", Gender: domain.GenderMale}

	set := benchSet("set1", 60, 5)
	scored := []ScoredSet{scorer.ScoreSet(set, nil, user.Gender, 80)}

	newPRs, history, err := eval.Evaluate(context.Background(), user, 80, scored)
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}

	if len(newPRs) != 3 {
		t.Fatalf("newPRs = %d, want 3 (one per pr type)", len(newPRs))
	}
	if len(history) != 3 {
		t.Errorf("history = %d, want 3", len(history))
	}

	oneRM := prByType(newPRs, domain.PRTypeOneRepMax)
	if oneRM == nil || !almostEqual(oneRM.Value, 70) {
		t.Errorf("one_rep_max = %+v, want value 70", oneRM)
	}
	maxReps := prByType(newPRs, domain.PRTypeMaxReps)
	if maxReps == nil || !almostEqual(maxReps.Value, 5) {
		t.Errorf("max_reps = %+v, want value 5", maxReps)
	}
	swr := prByType(newPRs, domain.PRTypeMaxSWR)
	if swr == nil || !almostEqual(swr.Value, 0.875) {
		t.Errorf("max_swr = %+v, want value 0.875", swr)
	}
	if maxReps.WeightKg != 60 || maxReps.Bodyweight != 80 || maxReps.SourceSetID != "set1" {
		t.Errorf("record tuple incomplete: %+v", maxReps)
	}
}

func TestEvaluateStrictImprovementOnly(t *testing.T) {
	repo := newFakePRRepo()
	repo.put(&domain.UserExercisePR{
		UserID: "u1", ExerciseKey: "bench", Type: domain.PRTypeOneRepMax,
		Value: 70, WeightKg: 60, AchievedAt: time.Now().Add(-time.Hour),
	})
	eval := NewPREvaluator(repo)
	scorer := NewScorer()
	user := &domain.User{ID: "u1", Gender: domain.GenderMale}

	// Same e1RM as stored: not a new record.
	set := benchSet("set2", 60, 5)
	scored := []ScoredSet{scorer.ScoreSet(set, nil, user.Gender, 80)}

	newPRs, _, err := eval.Evaluate(context.Background(), user, 80, scored)
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if pr := prByType(newPRs, domain.PRTypeOneRepMax); pr != nil {
		t.Errorf("equal value must not replace a record, got %+v", pr)
	}
}

func TestEvaluateMaxRepsRequiresRecordWeight(t *testing.T) {
	repo := newFakePRRepo()
	repo.put(&domain.UserExercisePR{
		UserID: "u1", ExerciseKey: "bench", Type: domain.PRTypeMaxReps,
		Value: 8, WeightKg: 60,
	})
	eval := NewPREvaluator(repo)
	scorer := NewScorer()
	user := &domain.User{ID: "u1", Gender: domain.GenderMale}

	// 12 reps, but at a lighter load than the standing record.
	light := benchSet("light", 40, 12)
	scored := []ScoredSet{scorer.ScoreSet(light, nil, user.Gender, 80)}
	newPRs, _, err := eval.Evaluate(context.Background(), user, 80, scored)
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if pr := prByType(newPRs, domain.PRTypeMaxReps); pr != nil {
		t.Errorf("more reps at lighter weight must not count, got %+v", pr)
	}

	// 10 reps at the record's weight: counts.
	heavy := benchSet("heavy", 60, 10)
	scored = []ScoredSet{scorer.ScoreSet(heavy, nil, user.Gender, 80)}
	newPRs, _, err = eval.Evaluate(context.Background(), user, 80, scored)
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	pr := prByType(newPRs, domain.PRTypeMaxReps)
	if pr == nil || !almostEqual(pr.Value, 10) {
		t.Errorf("max_reps = %+v, want value 10", pr)
	}
}

func TestEvaluateBatchCollapsesToBest(t *testing.T) {
	repo := newFakePRRepo()
	eval := NewPREvaluator(repo)
	scorer := NewScorer()
	user := &domain.User{ID: "u1", Gender: domain.GenderMale}

	scored := []ScoredSet{
		scorer.ScoreSet(benchSet("first", 60, 5), nil, user.Gender, 80),
		scorer.ScoreSet(benchSet("second", 62.5, 5), nil, user.Gender, 80),
	}

	newPRs, history, err := eval.Evaluate(context.Background(), user, 80, scored)
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}

	// One winner per type, both improvements logged in history.
	oneRM := prByType(newPRs, domain.PRTypeOneRepMax)
	if oneRM == nil || oneRM.SourceSetID != "second" {
		t.Errorf("one_rep_max winner = %+v, want source set second", oneRM)
	}
	count := 0
	for _, pr := range newPRs {
		if pr.Type == domain.PRTypeOneRepMax {
			count++
		}
	}
	if count != 1 {
		t.Errorf("one_rep_max winners = %d, want 1", count)
	}

	oneRMHistory := 0
	for _, h := range history {
		if h.Type == domain.PRTypeOneRepMax {
			oneRMHistory++
		}
	}
	if oneRMHistory != 2 {
		t.Errorf("one_rep_max history rows = %d, want 2", oneRMHistory)
	}
}

func TestEvaluateCustomExerciseKeepsPRs(t *testing.T) {
	repo := newFakePRRepo()
	eval := NewPREvaluator(repo)
	scorer := NewScorer()
	user := &domain.User{ID: "u1", Gender: domain.GenderMale}

	set := &domain.SessionSet{
		ID:          "c1",
		Exercise:    domain.ExerciseRef{CustomID: "landmine-thing"},
		Reps:        8,
		WeightKg:    40,
		PerformedAt: time.Now(),
	}
	scored := []ScoredSet{scorer.ScoreSet(set, nil, user.Gender, 80)}

	newPRs, _, err := eval.Evaluate(context.Background(), user, 80, scored)
	if err != nil {
		t.Fatalf("Evaluate() error: %v", err)
	}
	if len(newPRs) == 0 {
		t.Fatal("custom exercises must still earn PRs")
	}
	for _, pr := range newPRs {
		if pr.ExerciseKey != "custom:landmine-thing" {
			t.Errorf("ExerciseKey = %q, want custom:landmine-thing", pr.ExerciseKey)
		}
	}
}
