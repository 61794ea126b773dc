package domain

// TierProgression is one human-facing before/after tuple for a tier
// that changed, intended for UI feedback.
type TierProgression struct {
	Tier      string  `json:"tier" bson:"tier"`
	TargetID  string  `json:"target_id,omitempty" bson:"target_id,omitempty"`
	OldScore  float64 `json:"old_score" bson:"old_score"`
	NewScore  float64 `json:"new_score" bson:"new_score"`
	OldRankID int     `json:"old_rank_id" bson:"old_rank_id"`
	NewRankID int     `json:"new_rank_id" bson:"new_rank_id"`
	RankUp    bool    `json:"rank_up" bson:"rank_up"`
}

// RankingSummary condenses a result for quick UI checks.
type RankingSummary struct {
	AnyRankUp              bool `json:"any_rank_up"`
	OverallRankUp          bool `json:"overall_rank_up"`
	MuscleGroupRankUpCount int  `json:"muscle_group_rank_up_count"`
	MuscleRankUpCount      int  `json:"muscle_rank_up_count"`
}

// RankingResults is the structured outcome of one orchestrator call,
// for both the finalization and the manual calculator flows.
type RankingResults struct {
	Payload      *RankUpdatePayload `json:"rank_update_payload"`
	Progressions []TierProgression  `json:"rank_up_data"`
	NewPRs       []*UserExercisePR  `json:"new_prs"`
	Summary      RankingSummary     `json:"summary"`
}

// BuildSummary derives the summary from the payload.
func (r *RankingResults) BuildSummary() {
	var s RankingSummary
	for _, u := range r.Payload.MuscleRanks {
		if u.RankUp() {
			s.MuscleRankUpCount++
		}
	}
	for _, u := range r.Payload.MuscleGroupRanks {
		if u.RankUp() {
			s.MuscleGroupRankUpCount++
		}
	}
	if r.Payload.OverallRank != nil && r.Payload.OverallRank.RankUp() {
		s.OverallRankUp = true
	}
	if s.OverallRankUp || s.MuscleRankUpCount > 0 || s.MuscleGroupRankUpCount > 0 {
		s.AnyRankUp = true
	}
	for _, u := range r.Payload.ExerciseRanks {
		if u.RankUp() {
			s.AnyRankUp = true
		}
	}
	r.Summary = s
}
