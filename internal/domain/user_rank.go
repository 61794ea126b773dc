package domain

import (
	"context"
	"time"
)

// RankScores holds the two score channels every rank row carries.
// Permanent is the best-ever score backing the profile rank and never
// decreases. Leaderboard resets to zero at each leaderboard epoch and
// never decreases within an epoch.
type RankScores struct {
	Permanent   float64 `json:"permanent_score" bson:"permanent_score"`
	Leaderboard float64 `json:"leaderboard_score" bson:"leaderboard_score"`
}

// UserExerciseRank is the stored rank row for one (user, exercise).
type UserExerciseRank struct {
	ID         string     `json:"id" bson:"_id,omitempty"`
	UserID     string     `json:"user_id" bson:"user_id"`
	ExerciseID string     `json:"exercise_id" bson:"exercise_id"`
	Scores     RankScores `json:"scores" bson:",inline"`
	RankID     int        `json:"rank_id" bson:"rank_id"`
	SubRankID  int        `json:"sub_rank_id" bson:"sub_rank_id"`
	// Locked rows are never downgraded; the manual calculator clears
	// the flag so its entry applies even when worse than history.
	Locked            bool      `json:"locked" bson:"locked"`
	ContributingSetID string    `json:"contributing_session_set_id" bson:"contributing_session_set_id"`
	UpdatedAt         time.Time `json:"updated_at" bson:"updated_at"`
}

// UserMuscleRank is the stored rank row for one (user, muscle).
type UserMuscleRank struct {
	ID        string     `json:"id" bson:"_id,omitempty"`
	UserID    string     `json:"user_id" bson:"user_id"`
	MuscleID  string     `json:"muscle_id" bson:"muscle_id"`
	Scores    RankScores `json:"scores" bson:",inline"`
	RankID    int        `json:"rank_id" bson:"rank_id"`
	SubRankID int        `json:"sub_rank_id" bson:"sub_rank_id"`
	Locked    bool       `json:"locked" bson:"locked"`
	UpdatedAt time.Time  `json:"updated_at" bson:"updated_at"`
}

// UserMuscleGroupRank is the stored rank row for one (user, group).
type UserMuscleGroupRank struct {
	ID            string     `json:"id" bson:"_id,omitempty"`
	UserID        string     `json:"user_id" bson:"user_id"`
	MuscleGroupID string     `json:"muscle_group_id" bson:"muscle_group_id"`
	Scores        RankScores `json:"scores" bson:",inline"`
	RankID        int        `json:"rank_id" bson:"rank_id"`
	SubRankID     int        `json:"sub_rank_id" bson:"sub_rank_id"`
	Locked        bool       `json:"locked" bson:"locked"`
	UpdatedAt     time.Time  `json:"updated_at" bson:"updated_at"`
}

// UserOverallRank is the single overall rank row per user.
type UserOverallRank struct {
	ID        string     `json:"id" bson:"_id,omitempty"`
	UserID    string     `json:"user_id" bson:"user_id"`
	Scores    RankScores `json:"scores" bson:",inline"`
	RankID    int        `json:"rank_id" bson:"rank_id"`
	SubRankID int        `json:"sub_rank_id" bson:"sub_rank_id"`
	Locked    bool       `json:"locked" bson:"locked"`
	UpdatedAt time.Time  `json:"updated_at" bson:"updated_at"`
}

// RankUpdate is one changed row of the update payload, carrying both
// the new stored values and the before/after pair for UI feedback.
type RankUpdate struct {
	Tier              string     `json:"tier" bson:"tier"`
	TargetID          string     `json:"target_id" bson:"target_id"` // empty for overall
	OldScore          float64    `json:"old_score" bson:"old_score"`
	NewScore          float64    `json:"new_score" bson:"new_score"`
	OldRankID         int        `json:"old_rank_id" bson:"old_rank_id"`
	NewRankID         int        `json:"new_rank_id" bson:"new_rank_id"`
	OldSubRankID      int        `json:"old_sub_rank_id" bson:"old_sub_rank_id"`
	NewSubRankID      int        `json:"new_sub_rank_id" bson:"new_sub_rank_id"`
	NewScores         RankScores `json:"new_scores" bson:"new_scores"`
	ContributingSetID string     `json:"contributing_set_id,omitempty" bson:"contributing_set_id,omitempty"`
}

// RankUp reports whether the row crossed into a higher rank. Sub-rank
// moves within the same rank are recorded but are not rank-ups.
func (u *RankUpdate) RankUp() bool {
	return u.NewRankID > u.OldRankID
}

// RankUpdatePayload is the full output of one aggregation pass: every
// changed row across the four tiers plus the PR rows to upsert. The
// gateway applies the whole payload as one atomic operation.
type RankUpdatePayload struct {
	UserID string `json:"user_id" bson:"user_id"`
	// Locked is written onto every rank row of the batch. Finalization
	// writes locked rows; the manual calculator writes unlocked ones.
	Locked           bool              `json:"locked" bson:"locked"`
	ExerciseRanks    []RankUpdate      `json:"exercise_ranks" bson:"exercise_ranks"`
	MuscleRanks      []RankUpdate      `json:"muscle_ranks" bson:"muscle_ranks"`
	MuscleGroupRanks []RankUpdate      `json:"muscle_group_ranks" bson:"muscle_group_ranks"`
	OverallRank      *RankUpdate       `json:"overall_rank,omitempty" bson:"overall_rank,omitempty"`
	NewPRs           []*UserExercisePR `json:"new_prs" bson:"new_prs"`
	PRHistory        []*PRHistoryEntry `json:"pr_history" bson:"pr_history"`
}

// Empty reports whether the payload contains no writes at all.
func (p *RankUpdatePayload) Empty() bool {
	return len(p.ExerciseRanks) == 0 && len(p.MuscleRanks) == 0 &&
		len(p.MuscleGroupRanks) == 0 && p.OverallRank == nil &&
		len(p.NewPRs) == 0 && len(p.PRHistory) == 0
}

// RankContext is the prior state the aggregator needs for one user:
// stored rank rows at all tiers. Maps are keyed by target id.
type RankContext struct {
	ExerciseRanks    map[string]*UserExerciseRank
	MuscleRanks      map[string]*UserMuscleRank
	MuscleGroupRanks map[string]*UserMuscleGroupRank
	Overall          *UserOverallRank
}

// UserRankRepository is the persistence gateway for rank rows. Reads
// back the aggregator; ApplyUpdate is the single bulk write.
type UserRankRepository interface {
	GetExerciseRanks(ctx context.Context, userID string) (map[string]*UserExerciseRank, error)
	GetMuscleRanks(ctx context.Context, userID string) (map[string]*UserMuscleRank, error)
	GetMuscleGroupRanks(ctx context.Context, userID string) (map[string]*UserMuscleGroupRank, error)
	GetOverallRank(ctx context.Context, userID string) (*UserOverallRank, error)
	// ApplyUpdate executes every row of the payload in one transaction.
	// Either all rows land or none do.
	ApplyUpdate(ctx context.Context, payload *RankUpdatePayload) error
	// ResetLeaderboardScores zeroes the leaderboard channel on every
	// rank row. Called at each leaderboard epoch boundary.
	ResetLeaderboardScores(ctx context.Context) error
}
