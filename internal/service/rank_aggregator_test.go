package service

import (
	"context"
	"testing"
	"time"

	"github.com/mansoorceksport/ironrank/internal/domain"
)

// fakeCatalog serves a small fixed reference set: one barbell exercise
// hitting three muscles across three groups.
type fakeCatalog struct {
	exercises []*domain.Exercise
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		exercises: []*domain.Exercise{
			{ID: "bench", Name: "Barbell Bench Press", Type: domain.ExerciseTypeBarbell, EliteSWRMale: 1.5},
		},
	}
}

func (f *fakeCatalog) Exercises(ctx context.Context) ([]*domain.Exercise, error) {
	return f.exercises, nil
}

func (f *fakeCatalog) ExerciseByID(ctx context.Context, id string) (*domain.Exercise, error) {
	for _, ex := range f.exercises {
		if ex.ID == id {
			return ex, nil
		}
	}
	return nil, domain.ErrExerciseNotFound
}

func (f *fakeCatalog) ExerciseMuscles(ctx context.Context) ([]*domain.ExerciseMuscle, error) {
	return []*domain.ExerciseMuscle{
		{ID: "l1", ExerciseID: "bench", MuscleID: "pectorals", Intensity: domain.IntensityPrimary},
		{ID: "l2", ExerciseID: "bench", MuscleID: "delts", Intensity: domain.IntensitySecondary},
		{ID: "l3", ExerciseID: "bench", MuscleID: "triceps", Intensity: domain.IntensityAccessory},
	}, nil
}

func (f *fakeCatalog) Muscles(ctx context.Context) ([]*domain.Muscle, error) {
	return []*domain.Muscle{
		{ID: "pectorals", MuscleGroupID: "chest", GroupWeight: 1.0},
		{ID: "delts", MuscleGroupID: "shoulders", GroupWeight: 1.0},
		{ID: "triceps", MuscleGroupID: "arms", GroupWeight: 0.5},
	}, nil
}

func (f *fakeCatalog) MuscleGroups(ctx context.Context) ([]*domain.MuscleGroup, error) {
	return []*domain.MuscleGroup{
		{ID: "chest", OverallWeight: 0.5},
		{ID: "shoulders", OverallWeight: 0.3},
		{ID: "arms", OverallWeight: 0.2},
	}, nil
}

func (f *fakeCatalog) Ranks(ctx context.Context) ([]*domain.Rank, error) {
	return []*domain.Rank{
		{ID: 1, Name: "F", MinScore: 0, MaxScore: 0.4},
		{ID: 2, Name: "D", MinScore: 0.4, MaxScore: 0.8},
		{ID: 3, Name: "B", MinScore: 0.8, MaxScore: 1.2},
		{ID: 4, Name: "A", MinScore: 1.2, MaxScore: 99},
	}, nil
}

func (f *fakeCatalog) InterRanks(ctx context.Context) ([]*domain.InterRank, error) {
	var bands []*domain.InterRank
	ranks, _ := f.Ranks(ctx)
	for _, r := range ranks {
		span := (r.MaxScore - r.MinScore) / 2
		bands = append(bands,
			&domain.InterRank{ID: r.ID*10 + 1, RankID: r.ID, MinScore: r.MinScore, MaxScore: r.MinScore + span, SortOrder: 1},
			&domain.InterRank{ID: r.ID*10 + 2, RankID: r.ID, MinScore: r.MinScore + span, MaxScore: r.MaxScore, SortOrder: 2},
		)
	}
	return bands, nil
}

func (f *fakeCatalog) LevelDefinitions(ctx context.Context) ([]*domain.LevelDefinition, error) {
	return nil, nil
}

func (f *fakeCatalog) Benchmarks(ctx context.Context, tier, gender string) ([]*domain.Benchmark, error) {
	// Every target shares the global ladder in this fixture; the real
	// tables scale exercise ladders per elite target.
	ladder := func(targetID string) []*domain.Benchmark {
		return []*domain.Benchmark{
			{Tier: tier, Gender: gender, TargetID: targetID, MinThreshold: 1.2, RankID: 4},
			{Tier: tier, Gender: gender, TargetID: targetID, MinThreshold: 0.8, RankID: 3},
			{Tier: tier, Gender: gender, TargetID: targetID, MinThreshold: 0.4, RankID: 2},
			{Tier: tier, Gender: gender, TargetID: targetID, MinThreshold: 0, RankID: 1},
		}
	}

	var out []*domain.Benchmark
	switch tier {
	case domain.TierExercise:
		out = ladder("bench")
	case domain.TierMuscle:
		for _, m := range []string{"pectorals", "delts", "triceps"} {
			out = append(out, ladder(m)...)
		}
	case domain.TierMuscleGroup:
		for _, g := range []string{"chest", "shoulders", "arms"} {
			out = append(out, ladder(g)...)
		}
	case domain.TierOverall:
		out = ladder("")
	}
	return out, nil
}

func benchSet(id string, weightKg float64, reps int) *domain.SessionSet {
	return &domain.SessionSet{
		ID:          id,
		Exercise:    domain.ExerciseRef{StandardID: "bench"},
		Reps:        reps,
		WeightKg:    weightKg,
		PerformedAt: time.Now(),
	}
}

func scoreSets(t *testing.T, scorer *Scorer, catalog *fakeCatalog, user *domain.User, bodyweight float64, sets ...*domain.SessionSet) []ScoredSet {
	t.Helper()
	var scored []ScoredSet
	for _, set := range sets {
		ex, err := catalog.ExerciseByID(context.Background(), set.Exercise.StandardID)
		if err != nil {
			t.Fatalf("exercise lookup: %v", err)
		}
		scored = append(scored, scorer.ScoreSet(set, ex, user.Gender, bodyweight))
	}
	return scored
}

func findUpdate(updates []domain.RankUpdate, targetID string) *domain.RankUpdate {
	for i := range updates {
		if updates[i].TargetID == targetID {
			return &updates[i]
		}
	}
	return nil
}

func TestAggregateFirstCalculation(t *testing.T) {
	catalog := newFakeCatalog()
	scorer := NewScorer()
	agg := NewRankAggregator(catalog, scorer)
	user := &domain.User{ID: "u1", Gender: domain.GenderMale}

	// 60kg x 5 at 80kg bodyweight: e1RM 70, SWR 0.875.
	scored := scoreSets(t, scorer, catalog, user, 80, benchSet("set1", 60, 5))
	prior := &domain.RankContext{
		ExerciseRanks:    map[string]*domain.UserExerciseRank{},
		MuscleRanks:      map[string]*domain.UserMuscleRank{},
		MuscleGroupRanks: map[string]*domain.UserMuscleGroupRank{},
	}

	payload, err := agg.Aggregate(context.Background(), user, scored, prior, false)
	if err != nil {
		t.Fatalf("Aggregate() error: %v", err)
	}

	ex := findUpdate(payload.ExerciseRanks, "bench")
	if ex == nil {
		t.Fatal("expected an exercise rank update for bench")
	}
	if !almostEqual(ex.NewScore, 0.875) {
		t.Errorf("exercise NewScore = %v, want 0.875", ex.NewScore)
	}
	if ex.NewRankID != 3 {
		t.Errorf("exercise NewRankID = %d, want 3", ex.NewRankID)
	}
	if ex.ContributingSetID != "set1" {
		t.Errorf("ContributingSetID = %q, want set1", ex.ContributingSetID)
	}
	if !almostEqual(ex.NewScores.Leaderboard, 0.875) {
		t.Errorf("leaderboard channel = %v, want 0.875", ex.NewScores.Leaderboard)
	}

	// Intensity weights: pectorals 1.0, delts 0.5, triceps 0.25.
	pecs := findUpdate(payload.MuscleRanks, "pectorals")
	if pecs == nil || !almostEqual(pecs.NewScore, 0.875) {
		t.Fatalf("pectorals update = %+v, want score 0.875", pecs)
	}
	delts := findUpdate(payload.MuscleRanks, "delts")
	if delts == nil || !almostEqual(delts.NewScore, 0.4375) {
		t.Fatalf("delts update = %+v, want score 0.4375", delts)
	}
	triceps := findUpdate(payload.MuscleRanks, "triceps")
	if triceps == nil || !almostEqual(triceps.NewScore, 0.21875) {
		t.Fatalf("triceps update = %+v, want score 0.21875", triceps)
	}

	// Groups: chest 0.875, shoulders 0.4375, arms 0.21875*0.5.
	arms := findUpdate(payload.MuscleGroupRanks, "arms")
	if arms == nil || !almostEqual(arms.NewScore, 0.109375) {
		t.Fatalf("arms update = %+v, want score 0.109375", arms)
	}

	// Overall: 0.875*0.5 + 0.4375*0.3 + 0.109375*0.2 = 0.590625.
	if payload.OverallRank == nil {
		t.Fatal("expected an overall rank update")
	}
	if !almostEqual(payload.OverallRank.NewScore, 0.590625) {
		t.Errorf("overall NewScore = %v, want 0.590625", payload.OverallRank.NewScore)
	}
	if payload.OverallRank.NewRankID != 2 {
		t.Errorf("overall NewRankID = %d, want 2", payload.OverallRank.NewRankID)
	}
	if !payload.Locked {
		t.Error("finalization payload must write locked rows")
	}
}

func priorAfterFirstCalculation() *domain.RankContext {
	scores := func(v float64) domain.RankScores {
		return domain.RankScores{Permanent: v, Leaderboard: v}
	}
	return &domain.RankContext{
		ExerciseRanks: map[string]*domain.UserExerciseRank{
			"bench": {UserID: "u1", ExerciseID: "bench", Scores: scores(0.875), RankID: 3, SubRankID: 31},
		},
		MuscleRanks: map[string]*domain.UserMuscleRank{
			"pectorals": {UserID: "u1", MuscleID: "pectorals", Scores: scores(0.875), RankID: 3, SubRankID: 31},
			"delts":     {UserID: "u1", MuscleID: "delts", Scores: scores(0.4375), RankID: 2, SubRankID: 21},
			"triceps":   {UserID: "u1", MuscleID: "triceps", Scores: scores(0.21875), RankID: 1, SubRankID: 12},
		},
		MuscleGroupRanks: map[string]*domain.UserMuscleGroupRank{
			"chest":     {UserID: "u1", MuscleGroupID: "chest", Scores: scores(0.875), RankID: 3, SubRankID: 31},
			"shoulders": {UserID: "u1", MuscleGroupID: "shoulders", Scores: scores(0.4375), RankID: 2, SubRankID: 21},
			"arms":      {UserID: "u1", MuscleGroupID: "arms", Scores: scores(0.109375), RankID: 1, SubRankID: 11},
		},
		Overall: &domain.UserOverallRank{UserID: "u1", Scores: scores(0.590625), RankID: 2, SubRankID: 21},
	}
}

func TestAggregateImprovementCascades(t *testing.T) {
	catalog := newFakeCatalog()
	scorer := NewScorer()
	agg := NewRankAggregator(catalog, scorer)
	user := &domain.User{ID: "u1", Gender: domain.GenderMale}

	// 62.5kg x 5: e1RM 72.9167, SWR 0.9114583, a strict improvement.
	scored := scoreSets(t, scorer, catalog, user, 80, benchSet("set2", 62.5, 5))
	payload, err := agg.Aggregate(context.Background(), user, scored, priorAfterFirstCalculation(), false)
	if err != nil {
		t.Fatalf("Aggregate() error: %v", err)
	}

	ex := findUpdate(payload.ExerciseRanks, "bench")
	if ex == nil {
		t.Fatal("expected an exercise rank update")
	}
	want := 62.5 * (1 + 5.0/30) / 80
	if !almostEqual(ex.NewScore, want) {
		t.Errorf("exercise NewScore = %v, want %v", ex.NewScore, want)
	}
	if !almostEqual(ex.OldScore, 0.875) {
		t.Errorf("exercise OldScore = %v, want 0.875", ex.OldScore)
	}
	if ex.ContributingSetID != "set2" {
		t.Errorf("ContributingSetID = %q, want set2", ex.ContributingSetID)
	}

	// Every tier touched by the exercise moves with it.
	if len(payload.MuscleRanks) != 3 {
		t.Errorf("muscle updates = %d, want 3", len(payload.MuscleRanks))
	}
	if len(payload.MuscleGroupRanks) != 3 {
		t.Errorf("muscle group updates = %d, want 3", len(payload.MuscleGroupRanks))
	}
	if payload.OverallRank == nil {
		t.Fatal("expected an overall update")
	}
	wantOverall := want*0.5 + want*0.5*0.3 + want*0.25*0.5*0.2
	if !almostEqual(payload.OverallRank.NewScore, wantOverall) {
		t.Errorf("overall NewScore = %v, want %v", payload.OverallRank.NewScore, wantOverall)
	}
}

func TestAggregateWorseSetIsNoOp(t *testing.T) {
	catalog := newFakeCatalog()
	scorer := NewScorer()
	agg := NewRankAggregator(catalog, scorer)
	user := &domain.User{ID: "u1", Gender: domain.GenderMale}

	// 55kg x 5: SWR 0.802, below the stored 0.875 on both channels.
	scored := scoreSets(t, scorer, catalog, user, 80, benchSet("set3", 55, 5))
	payload, err := agg.Aggregate(context.Background(), user, scored, priorAfterFirstCalculation(), false)
	if err != nil {
		t.Fatalf("Aggregate() error: %v", err)
	}

	if !payload.Empty() {
		t.Errorf("expected an empty payload, got %+v", payload)
	}
}

func TestAggregateUnlockedAppliesWorseEntry(t *testing.T) {
	catalog := newFakeCatalog()
	scorer := NewScorer()
	agg := NewRankAggregator(catalog, scorer)
	user := &domain.User{ID: "u1", Gender: domain.GenderMale}

	scored := scoreSets(t, scorer, catalog, user, 80, benchSet("set3", 55, 5))
	payload, err := agg.Aggregate(context.Background(), user, scored, priorAfterFirstCalculation(), true)
	if err != nil {
		t.Fatalf("Aggregate() error: %v", err)
	}

	ex := findUpdate(payload.ExerciseRanks, "bench")
	if ex == nil {
		t.Fatal("expected an exercise rank update")
	}
	want := 55 * (1 + 5.0/30) / 80
	if !almostEqual(ex.NewScores.Permanent, want) {
		t.Errorf("unlocked permanent = %v, want %v", ex.NewScores.Permanent, want)
	}
	// Leaderboard never decreases within an epoch, even unlocked.
	if !almostEqual(ex.NewScores.Leaderboard, 0.875) {
		t.Errorf("leaderboard = %v, want 0.875", ex.NewScores.Leaderboard)
	}
	if payload.Locked {
		t.Error("manual calculator payload must write unlocked rows")
	}
}

func TestAggregateLeaderboardOnlyAfterEpochReset(t *testing.T) {
	catalog := newFakeCatalog()
	scorer := NewScorer()
	agg := NewRankAggregator(catalog, scorer)
	user := &domain.User{ID: "u1", Gender: domain.GenderMale}

	// After an epoch reset the leaderboard channel is zero while the
	// permanent channel keeps its best. A set below the permanent best
	// still raises the leaderboard score.
	prior := priorAfterFirstCalculation()
	for _, row := range prior.ExerciseRanks {
		row.Scores.Leaderboard = 0
	}
	for _, row := range prior.MuscleRanks {
		row.Scores.Leaderboard = 0
	}
	for _, row := range prior.MuscleGroupRanks {
		row.Scores.Leaderboard = 0
	}
	prior.Overall.Scores.Leaderboard = 0

	scored := scoreSets(t, scorer, catalog, user, 80, benchSet("set4", 55, 5))
	payload, err := agg.Aggregate(context.Background(), user, scored, prior, false)
	if err != nil {
		t.Fatalf("Aggregate() error: %v", err)
	}

	ex := findUpdate(payload.ExerciseRanks, "bench")
	if ex == nil {
		t.Fatal("expected an exercise rank update for the leaderboard channel")
	}
	if !almostEqual(ex.NewScores.Permanent, 0.875) {
		t.Errorf("permanent must not regress, got %v", ex.NewScores.Permanent)
	}
	want := 55 * (1 + 5.0/30) / 80
	if !almostEqual(ex.NewScores.Leaderboard, want) {
		t.Errorf("leaderboard = %v, want %v", ex.NewScores.Leaderboard, want)
	}
}

func TestAggregateBestSetWinsWithinBatch(t *testing.T) {
	catalog := newFakeCatalog()
	scorer := NewScorer()
	agg := NewRankAggregator(catalog, scorer)
	user := &domain.User{ID: "u1", Gender: domain.GenderMale}

	scored := scoreSets(t, scorer, catalog, user, 80,
		benchSet("weak", 50, 5),
		benchSet("strong", 62.5, 5),
		benchSet("middle", 60, 5),
	)
	prior := &domain.RankContext{
		ExerciseRanks:    map[string]*domain.UserExerciseRank{},
		MuscleRanks:      map[string]*domain.UserMuscleRank{},
		MuscleGroupRanks: map[string]*domain.UserMuscleGroupRank{},
	}

	payload, err := agg.Aggregate(context.Background(), user, scored, prior, false)
	if err != nil {
		t.Fatalf("Aggregate() error: %v", err)
	}

	if len(payload.ExerciseRanks) != 1 {
		t.Fatalf("exercise updates = %d, want 1", len(payload.ExerciseRanks))
	}
	ex := payload.ExerciseRanks[0]
	if ex.ContributingSetID != "strong" {
		t.Errorf("ContributingSetID = %q, want strong", ex.ContributingSetID)
	}
	want := 62.5 * (1 + 5.0/30) / 80
	if !almostEqual(ex.NewScore, want) {
		t.Errorf("NewScore = %v, want %v", ex.NewScore, want)
	}
}
