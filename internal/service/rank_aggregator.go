package service

import (
	"context"

	"github.com/mansoorceksport/ironrank/internal/domain"
	"golang.org/x/sync/errgroup"
)

// ReferenceCatalog is the read surface the pipeline needs from the
// cached reference tables.
type ReferenceCatalog interface {
	Exercises(ctx context.Context) ([]*domain.Exercise, error)
	ExerciseByID(ctx context.Context, id string) (*domain.Exercise, error)
	ExerciseMuscles(ctx context.Context) ([]*domain.ExerciseMuscle, error)
	Muscles(ctx context.Context) ([]*domain.Muscle, error)
	MuscleGroups(ctx context.Context) ([]*domain.MuscleGroup, error)
	Ranks(ctx context.Context) ([]*domain.Rank, error)
	InterRanks(ctx context.Context) ([]*domain.InterRank, error)
	Benchmarks(ctx context.Context, tier, gender string) ([]*domain.Benchmark, error)
}

// RankAggregator rolls per-set exercise scores up the four tiers:
// exercise, muscle, muscle group, overall. Muscles take the best
// contribution, groups and overall take weighted sums. Both score
// channels move through the same math with their own stored baselines.
type RankAggregator struct {
	catalog ReferenceCatalog
	scorer  *Scorer
}

func NewRankAggregator(catalog ReferenceCatalog, scorer *Scorer) *RankAggregator {
	return &RankAggregator{catalog: catalog, scorer: scorer}
}

// channelScore carries both score channels through the tier walk.
type channelScore struct {
	perm float64
	lb   float64
}

// refTables is one consistent snapshot of everything the walk needs.
type refTables struct {
	links      []*domain.ExerciseMuscle
	muscles    []*domain.Muscle
	groups     []*domain.MuscleGroup
	ranks      []*domain.Rank
	interRanks []*domain.InterRank
	benchmarks map[string][]*domain.Benchmark
}

func (a *RankAggregator) loadTables(ctx context.Context, gender string) (*refTables, error) {
	tables := &refTables{benchmarks: make(map[string][]*domain.Benchmark, 4)}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tables.links, err = a.catalog.ExerciseMuscles(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		tables.muscles, err = a.catalog.Muscles(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		tables.groups, err = a.catalog.MuscleGroups(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		tables.ranks, err = a.catalog.Ranks(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		tables.interRanks, err = a.catalog.InterRanks(gCtx)
		return err
	})

	benches := make([][]*domain.Benchmark, 4)
	tiers := []string{domain.TierExercise, domain.TierMuscle, domain.TierMuscleGroup, domain.TierOverall}
	for i, tier := range tiers {
		i, tier := i, tier
		g.Go(func() error {
			var err error
			benches[i], err = a.catalog.Benchmarks(gCtx, tier, gender)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for i, tier := range tiers {
		tables.benchmarks[tier] = benches[i]
	}
	return tables, nil
}

// Aggregate produces the rank update payload for one batch of scored
// sets against the user's prior rank rows. unlocked marks the
// manual-calculator flow, where the new entry applies even when worse
// than stored history; finalization only ever improves the permanent
// channel. The leaderboard channel never decreases within an epoch in
// either flow.
func (a *RankAggregator) Aggregate(ctx context.Context, user *domain.User, sets []ScoredSet, prior *domain.RankContext, unlocked bool) (*domain.RankUpdatePayload, error) {
	tables, err := a.loadTables(ctx, user.Gender)
	if err != nil {
		return nil, err
	}

	payload := &domain.RankUpdatePayload{
		UserID: user.ID,
		Locked: !unlocked,
	}

	// Step A: best new score per touched exercise. Custom exercises
	// have no benchmarks or muscle links and stay out of ranking.
	type exCandidate struct {
		score float64
		setID string
	}
	candidates := make(map[string]exCandidate)
	for i := range sets {
		s := &sets[i]
		if s.Set.Exercise.IsCustom() || s.Score <= 0 {
			continue
		}
		id := s.Set.Exercise.StandardID
		if cur, ok := candidates[id]; !ok || s.Score > cur.score {
			candidates[id] = exCandidate{score: s.Score, setID: s.Set.ID}
		}
	}

	exerciseScores := make(map[string]channelScore, len(candidates))
	for exerciseID, cand := range candidates {
		var stored channelScore
		var oldRankID, oldSubRankID int
		if row := prior.ExerciseRanks[exerciseID]; row != nil {
			stored = channelScore{perm: row.Scores.Permanent, lb: row.Scores.Leaderboard}
			oldRankID, oldSubRankID = row.RankID, row.SubRankID
		}

		next := advance(stored, cand.score, unlocked)
		exerciseScores[exerciseID] = next
		if next == stored {
			continue
		}

		update := a.rankRow(tables, domain.TierExercise, exerciseID, stored, next, oldRankID, oldSubRankID)
		update.ContributingSetID = cand.setID
		payload.ExerciseRanks = append(payload.ExerciseRanks, update)
	}

	// Step B: muscles take the best weighted contribution across the
	// batch, one stronger set superseding weaker ones.
	muscleCandidates := make(map[string]channelScore)
	for _, link := range tables.links {
		next, ok := exerciseScores[link.ExerciseID]
		if !ok {
			continue
		}
		w := link.EffectiveWeight()
		contrib := channelScore{perm: next.perm * w, lb: next.lb * w}
		if cur, seen := muscleCandidates[link.MuscleID]; !seen || contrib.perm > cur.perm || contrib.lb > cur.lb {
			muscleCandidates[link.MuscleID] = channelScore{
				perm: maxFloat(cur.perm, contrib.perm),
				lb:   maxFloat(cur.lb, contrib.lb),
			}
		}
	}

	muscleScores := make(map[string]channelScore, len(muscleCandidates))
	for muscleID, cand := range muscleCandidates {
		var stored channelScore
		var oldRankID, oldSubRankID int
		if row := prior.MuscleRanks[muscleID]; row != nil {
			stored = channelScore{perm: row.Scores.Permanent, lb: row.Scores.Leaderboard}
			oldRankID, oldSubRankID = row.RankID, row.SubRankID
		}

		next := channelScore{
			perm: resolvePermanent(stored.perm, cand.perm, unlocked),
			lb:   maxFloat(stored.lb, cand.lb),
		}
		muscleScores[muscleID] = next
		if next == stored {
			continue
		}
		payload.MuscleRanks = append(payload.MuscleRanks,
			a.rankRow(tables, domain.TierMuscle, muscleID, stored, next, oldRankID, oldSubRankID))
	}

	// Step C: groups sum the latest best per member muscle, stored
	// values standing in for untouched muscles.
	muscleGroup := make(map[string]string, len(tables.muscles))
	groupWeight := make(map[string]float64, len(tables.muscles))
	for _, m := range tables.muscles {
		muscleGroup[m.ID] = m.MuscleGroupID
		groupWeight[m.ID] = m.GroupWeight
	}

	touchedGroups := make(map[string]bool)
	for muscleID := range muscleScores {
		if g := muscleGroup[muscleID]; g != "" {
			touchedGroups[g] = true
		}
	}

	groupScores := make(map[string]channelScore, len(touchedGroups))
	for groupID := range touchedGroups {
		var cand channelScore
		for _, m := range tables.muscles {
			if m.MuscleGroupID != groupID {
				continue
			}
			score, ok := muscleScores[m.ID]
			if !ok {
				if row := prior.MuscleRanks[m.ID]; row != nil {
					score = channelScore{perm: row.Scores.Permanent, lb: row.Scores.Leaderboard}
				}
			}
			cand.perm += score.perm * m.GroupWeight
			cand.lb += score.lb * m.GroupWeight
		}

		var stored channelScore
		var oldRankID, oldSubRankID int
		if row := prior.MuscleGroupRanks[groupID]; row != nil {
			stored = channelScore{perm: row.Scores.Permanent, lb: row.Scores.Leaderboard}
			oldRankID, oldSubRankID = row.RankID, row.SubRankID
		}

		next := channelScore{
			perm: resolvePermanent(stored.perm, cand.perm, unlocked),
			lb:   maxFloat(stored.lb, cand.lb),
		}
		groupScores[groupID] = next
		if next == stored {
			continue
		}
		payload.MuscleGroupRanks = append(payload.MuscleGroupRanks,
			a.rankRow(tables, domain.TierMuscleGroup, groupID, stored, next, oldRankID, oldSubRankID))
	}

	// Step D: overall is the weighted sum over every group, post-Step-C
	// for touched groups and stored rows for the rest.
	if len(groupScores) > 0 {
		var cand channelScore
		for _, g := range tables.groups {
			score, ok := groupScores[g.ID]
			if !ok {
				if row := prior.MuscleGroupRanks[g.ID]; row != nil {
					score = channelScore{perm: row.Scores.Permanent, lb: row.Scores.Leaderboard}
				}
			}
			cand.perm += score.perm * g.OverallWeight
			cand.lb += score.lb * g.OverallWeight
		}

		var stored channelScore
		var oldRankID, oldSubRankID int
		if prior.Overall != nil {
			stored = channelScore{perm: prior.Overall.Scores.Permanent, lb: prior.Overall.Scores.Leaderboard}
			oldRankID, oldSubRankID = prior.Overall.RankID, prior.Overall.SubRankID
		}

		next := channelScore{
			perm: resolvePermanent(stored.perm, cand.perm, unlocked),
			lb:   maxFloat(stored.lb, cand.lb),
		}
		if next != stored {
			update := a.rankRow(tables, domain.TierOverall, "", stored, next, oldRankID, oldSubRankID)
			payload.OverallRank = &update
		}
	}

	return payload, nil
}

// rankRow builds one update row, looking up rank and sub-rank for the
// new permanent score on the tier's benchmark ladder.
func (a *RankAggregator) rankRow(tables *refTables, tier, targetID string, stored, next channelScore, oldRankID, oldSubRankID int) domain.RankUpdate {
	rankID := a.scorer.LookupRank(tables.benchmarks[tier], tables.ranks, targetID, next.perm)
	subRankID := a.scorer.LookupSubRank(tables.interRanks, rankID, next.perm)
	return domain.RankUpdate{
		Tier:         tier,
		TargetID:     targetID,
		OldScore:     stored.perm,
		NewScore:     next.perm,
		OldRankID:    oldRankID,
		NewRankID:    rankID,
		OldSubRankID: oldSubRankID,
		NewSubRankID: subRankID,
		NewScores:    domain.RankScores{Permanent: next.perm, Leaderboard: next.lb},
	}
}

// advance applies the channel policies to one candidate score.
func advance(stored channelScore, candidate float64, unlocked bool) channelScore {
	return channelScore{
		perm: resolvePermanent(stored.perm, candidate, unlocked),
		lb:   maxFloat(stored.lb, candidate),
	}
}

// resolvePermanent keeps the permanent channel monotone unless the
// caller asked for an unlocked recalculation.
func resolvePermanent(stored, candidate float64, unlocked bool) float64 {
	if unlocked {
		return candidate
	}
	return maxFloat(stored, candidate)
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// Progressions flattens a payload into the per-tier before/after tuples
// surfaced to the client.
func Progressions(payload *domain.RankUpdatePayload) []domain.TierProgression {
	var out []domain.TierProgression
	add := func(u *domain.RankUpdate) {
		out = append(out, domain.TierProgression{
			Tier:      u.Tier,
			TargetID:  u.TargetID,
			OldScore:  u.OldScore,
			NewScore:  u.NewScore,
			OldRankID: u.OldRankID,
			NewRankID: u.NewRankID,
			RankUp:    u.RankUp(),
		})
	}
	for i := range payload.ExerciseRanks {
		add(&payload.ExerciseRanks[i])
	}
	for i := range payload.MuscleRanks {
		add(&payload.MuscleRanks[i])
	}
	for i := range payload.MuscleGroupRanks {
		add(&payload.MuscleGroupRanks[i])
	}
	if payload.OverallRank != nil {
		add(payload.OverallRank)
	}
	return out
}
