package domain

import "time"

// Exercise type constants. The type decides how a raw set is normalized
// into a benchmark-comparable score.
const (
	ExerciseTypeBarbell      = "barbell"
	ExerciseTypeFreeWeights  = "free-weights"
	ExerciseTypeBodyWeight   = "body-weight"
	ExerciseTypeWeightedBW   = "weighted-bw"
	ExerciseTypeAssistedBW   = "assisted-bw"
	ExerciseTypeCalisthenics = "calisthenics"
	ExerciseTypeMachine      = "machine"
	ExerciseTypeCardio       = "cardio"
	ExerciseTypeNA           = "n/a"
)

// Exercise represents a move in the global library
type Exercise struct {
	ID        string `json:"id" bson:"_id,omitempty"`
	Name      string `json:"name" bson:"name"` // Unique Index
	Type      string `json:"type" bson:"type"`
	Bilateral bool   `json:"bilateral" bson:"bilateral"`
	// Elite one-rep-max targets in kg per gender, used to normalize
	// machine-style exercises onto the SWR benchmark ladder.
	EliteOneRepMaxMale   float64   `json:"elite_one_rep_max_male" bson:"elite_one_rep_max_male"`
	EliteOneRepMaxFemale float64   `json:"elite_one_rep_max_female" bson:"elite_one_rep_max_female"`
	EliteSWRMale         float64   `json:"elite_swr_male" bson:"elite_swr_male"`
	EliteSWRFemale       float64   `json:"elite_swr_female" bson:"elite_swr_female"`
	CreatedAt            time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt            time.Time `json:"updated_at" bson:"updated_at"`
}

// EliteOneRepMax returns the gender-matching elite 1RM target.
func (e *Exercise) EliteOneRepMax(gender string) float64 {
	if gender == GenderFemale {
		return e.EliteOneRepMaxFemale
	}
	return e.EliteOneRepMaxMale
}

// EliteSWR returns the gender-matching elite strength-to-weight ratio.
func (e *Exercise) EliteSWR(gender string) float64 {
	if gender == GenderFemale {
		return e.EliteSWRFemale
	}
	return e.EliteSWRMale
}

// BodyweightScored reports whether the exercise scores directly on SWR.
// Machine and assisted exercises normalize against elite targets
// instead; cardio never scores.
func (e *Exercise) BodyweightScored() bool {
	switch e.Type {
	case ExerciseTypeBarbell, ExerciseTypeFreeWeights, ExerciseTypeBodyWeight,
		ExerciseTypeWeightedBW, ExerciseTypeCalisthenics:
		return true
	}
	return false
}

// Muscle intensity constants for exercise-muscle links
const (
	IntensityPrimary   = "primary"
	IntensitySecondary = "secondary"
	IntensityAccessory = "accessory"
)

// ExerciseMuscle links an exercise to a muscle it trains, with a weight
// expressing how much of the exercise score transfers to the muscle.
type ExerciseMuscle struct {
	ID         string  `json:"id" bson:"_id,omitempty"`
	ExerciseID string  `json:"exercise_id" bson:"exercise_id"`
	MuscleID   string  `json:"muscle_id" bson:"muscle_id"`
	Intensity  string  `json:"intensity" bson:"intensity"`
	Weight     float64 `json:"weight" bson:"weight"`
}

// IntensityWeight returns the default score transfer for an intensity
// when the link row carries no explicit weight.
func IntensityWeight(intensity string) float64 {
	switch intensity {
	case IntensityPrimary:
		return 1.0
	case IntensitySecondary:
		return 0.5
	case IntensityAccessory:
		return 0.25
	}
	return 0
}

// EffectiveWeight returns the link's weight, falling back to the
// intensity default when unset.
func (em *ExerciseMuscle) EffectiveWeight() float64 {
	if em.Weight > 0 {
		return em.Weight
	}
	return IntensityWeight(em.Intensity)
}

// ExerciseRef identifies the exercise of a set: either a row from the
// global library or a user-defined custom exercise. Exactly one id is
// set. Custom exercises are excluded from ranking because they have no
// benchmark or muscle links.
type ExerciseRef struct {
	StandardID string `json:"exercise_id,omitempty" bson:"exercise_id,omitempty"`
	CustomID   string `json:"custom_exercise_id,omitempty" bson:"custom_exercise_id,omitempty"`
}

// IsCustom reports whether the reference points at a custom exercise.
func (r ExerciseRef) IsCustom() bool {
	return r.CustomID != "" && r.StandardID == ""
}

// Key returns the identity used for PR bookkeeping. Custom exercises
// keep PRs even though they are excluded from ranking.
func (r ExerciseRef) Key() string {
	if r.IsCustom() {
		return "custom:" + r.CustomID
	}
	return r.StandardID
}
