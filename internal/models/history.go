package models

import (
	"time"

	"github.com/google/uuid"
)

// HistoryEntry is a summary of one terminated session. Counters are
// derived from the snapshot, never stored.
type HistoryEntry struct {
	ID            uuid.UUID    `json:"id"`
	WorkoutName   string       `json:"workout_name"`
	State         SessionState `json:"state"`
	StartedAt     time.Time    `json:"started_at"`
	EndedAt       *time.Time   `json:"ended_at,omitempty"`
	CompletedSets int          `json:"completed_sets"`
	TotalSets     int          `json:"total_sets"`
	TotalVolume   float64      `json:"total_volume"`
}

// HistorySummary builds the history entry for a session snapshot.
func HistorySummary(s *Session) HistoryEntry {
	return HistoryEntry{
		ID:            s.ID,
		WorkoutName:   s.WorkoutName,
		State:         s.State,
		StartedAt:     s.StartedAt,
		EndedAt:       s.EndedAt,
		CompletedSets: s.CompletedSets(),
		TotalSets:     s.TotalSets(),
		TotalVolume:   s.TotalVolume(),
	}
}

// VolumePeriod is aggregate training volume for one week.
type VolumePeriod struct {
	WeekStart   time.Time `json:"week_start"`
	Sessions    int       `json:"sessions"`
	TotalVolume float64   `json:"total_volume"`
}

// ExerciseBest is the heaviest completed set recorded for an exercise.
type ExerciseBest struct {
	ExerciseID uuid.UUID  `json:"exercise_id"`
	Weight     float64    `json:"weight"`
	Reps       int        `json:"reps"`
	SessionID  uuid.UUID  `json:"session_id"`
	AchievedAt *time.Time `json:"achieved_at,omitempty"`
}
