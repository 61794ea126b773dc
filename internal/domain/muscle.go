package domain

// Muscle represents a single trained muscle belonging to a muscle group.
// GroupWeight expresses how much the muscle contributes to its group's
// score; weights within a group need not sum to 1.
type Muscle struct {
	ID            string  `json:"id" bson:"_id,omitempty"`
	Name          string  `json:"name" bson:"name"`
	MuscleGroupID string  `json:"muscle_group_id" bson:"muscle_group_id"`
	GroupWeight   float64 `json:"group_weight" bson:"group_weight"` // (0,1]
}

// MuscleGroup represents a top-level body region. OverallWeight is the
// group's contribution to the user's overall strength score.
type MuscleGroup struct {
	ID            string  `json:"id" bson:"_id,omitempty"`
	Name          string  `json:"name" bson:"name"`
	OverallWeight float64 `json:"overall_weight" bson:"overall_weight"` // (0,1]
}
