package models

import (
	"time"

	"github.com/google/uuid"
)

// CatalogExercise is an entry in the exercise catalog. The lastUsed fields
// feed progressive-overload defaults at session start and are written back
// when a session ends.
type CatalogExercise struct {
	ID                  uuid.UUID  `json:"id"`
	Name                string     `json:"name"`
	MuscleGroup         string     `json:"muscle_group,omitempty"`
	LastUsedWeight      *float64   `json:"last_used_weight,omitempty"`
	LastUsedReps        *int       `json:"last_used_reps,omitempty"`
	LastUsedSetCount    *int       `json:"last_used_set_count,omitempty"`
	LastUsedRestSeconds *int       `json:"last_used_rest_seconds,omitempty"`
	LastUsedAt          *time.Time `json:"last_used_at,omitempty"`
}

// WorkoutTemplate is the static blueprint a session is started from.
type WorkoutTemplate struct {
	ID        uuid.UUID          `json:"id"`
	Name      string             `json:"name"`
	Mode      WorkoutMode        `json:"mode"`
	Exercises []TemplateExercise `json:"exercises"`
	Groups    []TemplateGroup    `json:"groups,omitempty"`
}

// TemplateExercise is one exercise slot in a template. TargetWeight is
// optional; PerSetRestSeconds, when present, overrides RestSeconds
// positionally per set.
type TemplateExercise struct {
	ExerciseID        uuid.UUID `json:"exercise_id"`
	TargetSets        int       `json:"target_sets"`
	TargetReps        int       `json:"target_reps"`
	TargetWeight      *float64  `json:"target_weight,omitempty"`
	RestSeconds       int       `json:"rest_seconds"`
	PerSetRestSeconds []int     `json:"per_set_rest_seconds,omitempty"`
}

// TemplateGroup declares a superset/circuit over template exercises.
// Members are referenced by catalog exercise id.
type TemplateGroup struct {
	ExerciseIDs []uuid.UUID `json:"exercise_ids"`
	Rounds      int         `json:"rounds"`
	RestSeconds int         `json:"rest_seconds"`
}

// WarmupSet is one step of a warm-up ramp. Transient: produced by the
// warm-up calculator, never persisted as a session entity.
type WarmupSet struct {
	Weight     float64 `json:"weight"`
	Reps       int     `json:"reps"`
	Percentage float64 `json:"percentage"`
}
