package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionState is the lifecycle state of a training session.
type SessionState string

const (
	SessionActive    SessionState = "active"
	SessionCompleted SessionState = "completed"
	SessionCancelled SessionState = "cancelled"
)

// WorkoutMode determines how exercises are sequenced during a session.
type WorkoutMode string

const (
	ModeStandard WorkoutMode = "standard"
	ModeSuperset WorkoutMode = "superset"
	ModeCircuit  WorkoutMode = "circuit"
)

// Session is one live (or terminated) execution of a workout template.
// Exercises and groups are owned collections; all mutation goes through
// id-based lookup on the pointers returned by Exercise/Group, never by
// replacing the slices wholesale.
type Session struct {
	ID              uuid.UUID         `json:"id"`
	WorkoutID       uuid.UUID         `json:"workout_id"`
	WorkoutName     string            `json:"workout_name"`
	StartedAt       time.Time         `json:"started_at"`
	EndedAt         *time.Time        `json:"ended_at,omitempty"`
	State           SessionState      `json:"state"`
	Mode            WorkoutMode       `json:"mode"`
	Exercises       []SessionExercise `json:"exercises"`
	Groups          []ExerciseGroup   `json:"groups,omitempty"`
	HealthSessionID string            `json:"health_session_id,omitempty"`
}

// SessionExercise is one exercise slot within a session. OrderIndex is the
// authoritative ordering; storage order of the Exercises slice is not.
type SessionExercise struct {
	ID          uuid.UUID    `json:"id"`
	ExerciseID  uuid.UUID    `json:"exercise_id"`
	Name        string       `json:"name"`
	Sets        []SessionSet `json:"sets"`
	OrderIndex  int          `json:"order_index"`
	IsFinished  bool         `json:"is_finished"`
	Notes       string       `json:"notes,omitempty"`
	RestSeconds int          `json:"rest_seconds"`
	GroupID     *uuid.UUID   `json:"group_id,omitempty"`
}

// SessionSet is one discrete unit of work (weight × reps) within an exercise.
type SessionSet struct {
	ID                  uuid.UUID  `json:"id"`
	Weight              float64    `json:"weight"`
	Reps                int        `json:"reps"`
	Completed           bool       `json:"completed"`
	CompletedAt         *time.Time `json:"completed_at,omitempty"`
	OrderIndex          int        `json:"order_index"`
	RestSecondsOverride *int       `json:"rest_seconds_override,omitempty"`
	IsWarmup            bool       `json:"is_warmup"`
}

// ExerciseGroup is a superset (2 members) or circuit (3+ members). The active
// set for round r of every member exercise is the set at index r-1; the group
// is complete once CurrentRound exceeds TotalRounds.
type ExerciseGroup struct {
	ID           uuid.UUID   `json:"id"`
	GroupIndex   int         `json:"group_index"`
	RestSeconds  int         `json:"rest_seconds"`
	ExerciseIDs  []uuid.UUID `json:"exercise_ids"`
	CurrentRound int         `json:"current_round"`
	TotalRounds  int         `json:"total_rounds"`
}

// Done reports whether every round of the group has been passed.
func (g *ExerciseGroup) Done() bool {
	return g.CurrentRound > g.TotalRounds
}

// Exercise returns a pointer to the session exercise with the given id,
// or nil if it is not part of the session.
func (s *Session) Exercise(id uuid.UUID) *SessionExercise {
	for i := range s.Exercises {
		if s.Exercises[i].ID == id {
			return &s.Exercises[i]
		}
	}
	return nil
}

// Group returns a pointer to the group with the given group index, or nil.
func (s *Session) Group(index int) *ExerciseGroup {
	for i := range s.Groups {
		if s.Groups[i].GroupIndex == index {
			return &s.Groups[i]
		}
	}
	return nil
}

// Set returns a pointer to the set with the given id, or nil.
func (e *SessionExercise) Set(id uuid.UUID) *SessionSet {
	for i := range e.Sets {
		if e.Sets[i].ID == id {
			return &e.Sets[i]
		}
	}
	return nil
}

// SetAt returns a pointer to the set with the given order index, or nil.
func (e *SessionExercise) SetAt(orderIndex int) *SessionSet {
	for i := range e.Sets {
		if e.Sets[i].OrderIndex == orderIndex {
			return &e.Sets[i]
		}
	}
	return nil
}

// AllSetsCompleted reports whether every set of the exercise is completed.
// An exercise always holds at least one set, so this is never vacuously
// true in practice.
func (e *SessionExercise) AllSetsCompleted() bool {
	for i := range e.Sets {
		if !e.Sets[i].Completed {
			return false
		}
	}
	return true
}

// CompletedSets counts completed sets across all exercises. Always derived,
// never stored.
func (s *Session) CompletedSets() int {
	n := 0
	for i := range s.Exercises {
		for j := range s.Exercises[i].Sets {
			if s.Exercises[i].Sets[j].Completed {
				n++
			}
		}
	}
	return n
}

// TotalSets counts all sets across all exercises.
func (s *Session) TotalSets() int {
	n := 0
	for i := range s.Exercises {
		n += len(s.Exercises[i].Sets)
	}
	return n
}

// TotalVolume sums weight × reps over completed sets.
func (s *Session) TotalVolume() float64 {
	var v float64
	for i := range s.Exercises {
		for j := range s.Exercises[i].Sets {
			set := &s.Exercises[i].Sets[j]
			if set.Completed {
				v += set.Weight * float64(set.Reps)
			}
		}
	}
	return v
}

// AllComplete reports whether the whole session is done: every standalone
// exercise finished and every group past its final round.
func (s *Session) AllComplete() bool {
	for i := range s.Exercises {
		if s.Exercises[i].GroupID == nil && !s.Exercises[i].IsFinished {
			return false
		}
	}
	for i := range s.Groups {
		if !s.Groups[i].Done() {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the session. Engine operations transform a
// clone and persist it, so a failed operation never leaves the caller's
// snapshot half-mutated.
func (s *Session) Clone() *Session {
	out := *s
	if s.EndedAt != nil {
		t := *s.EndedAt
		out.EndedAt = &t
	}
	out.Exercises = make([]SessionExercise, len(s.Exercises))
	for i := range s.Exercises {
		out.Exercises[i] = cloneExercise(&s.Exercises[i])
	}
	if s.Groups != nil {
		out.Groups = make([]ExerciseGroup, len(s.Groups))
		for i := range s.Groups {
			g := s.Groups[i]
			g.ExerciseIDs = append([]uuid.UUID(nil), s.Groups[i].ExerciseIDs...)
			out.Groups[i] = g
		}
	}
	return &out
}

func cloneExercise(e *SessionExercise) SessionExercise {
	out := *e
	if e.GroupID != nil {
		id := *e.GroupID
		out.GroupID = &id
	}
	out.Sets = make([]SessionSet, len(e.Sets))
	for i := range e.Sets {
		set := e.Sets[i]
		if set.CompletedAt != nil {
			t := *set.CompletedAt
			set.CompletedAt = &t
		}
		if set.RestSecondsOverride != nil {
			r := *set.RestSecondsOverride
			set.RestSecondsOverride = &r
		}
		out.Sets[i] = set
	}
	return out
}
