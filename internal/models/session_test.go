package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func sampleSession() *Session {
	now := time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)
	rest := 60
	gid := uuid.New()
	return &Session{
		ID:        uuid.New(),
		State:     SessionActive,
		Mode:      ModeSuperset,
		StartedAt: now,
		Exercises: []SessionExercise{
			{
				ID:         uuid.New(),
				Name:       "Bench Press",
				OrderIndex: 0,
				GroupID:    &gid,
				Sets: []SessionSet{
					{ID: uuid.New(), Weight: 80, Reps: 5, OrderIndex: 0, Completed: true, CompletedAt: &now},
					{ID: uuid.New(), Weight: 80, Reps: 5, OrderIndex: 1, RestSecondsOverride: &rest},
				},
			},
			{
				ID:         uuid.New(),
				Name:       "Row",
				OrderIndex: 1,
				Sets: []SessionSet{
					{ID: uuid.New(), Weight: 70, Reps: 8, OrderIndex: 0},
				},
			},
		},
		Groups: []ExerciseGroup{
			{ID: gid, GroupIndex: 0, CurrentRound: 1, TotalRounds: 3, ExerciseIDs: []uuid.UUID{gid}},
		},
	}
}

// TestDerivedCounters verifies the counters are computed from the sets
// collection.
func TestDerivedCounters(t *testing.T) {
	s := sampleSession()
	if got := s.TotalSets(); got != 3 {
		t.Errorf("TotalSets = %d, want 3", got)
	}
	if got := s.CompletedSets(); got != 1 {
		t.Errorf("CompletedSets = %d, want 1", got)
	}
	if got := s.TotalVolume(); got != 400 { // 80 × 5
		t.Errorf("TotalVolume = %.1f, want 400", got)
	}
}

// TestCloneIsDeep verifies mutating a clone never bleeds into the source,
// including through the pointer-valued fields.
func TestCloneIsDeep(t *testing.T) {
	s := sampleSession()
	c := s.Clone()

	c.Exercises[0].Sets[0].Completed = false
	c.Exercises[0].Sets[0].CompletedAt = nil
	*c.Exercises[0].Sets[1].RestSecondsOverride = 999
	c.Groups[0].CurrentRound = 99
	c.Exercises[0].Notes = "changed"

	if !s.Exercises[0].Sets[0].Completed || s.Exercises[0].Sets[0].CompletedAt == nil {
		t.Error("clone mutation reached source set completion state")
	}
	if *s.Exercises[0].Sets[1].RestSecondsOverride != 60 {
		t.Error("clone mutation reached source rest override")
	}
	if s.Groups[0].CurrentRound != 1 {
		t.Error("clone mutation reached source group")
	}
	if s.Exercises[0].Notes != "" {
		t.Error("clone mutation reached source exercise")
	}
}

// TestLookupHelpers verifies id-based lookups return pointers into the
// owned collections (the arena discipline relies on this).
func TestLookupHelpers(t *testing.T) {
	s := sampleSession()

	ex := s.Exercise(s.Exercises[1].ID)
	if ex == nil {
		t.Fatal("Exercise lookup failed")
	}
	ex.Notes = "written through pointer"
	if s.Exercises[1].Notes != "written through pointer" {
		t.Error("Exercise did not return a pointer into the session")
	}

	if s.Exercise(uuid.New()) != nil {
		t.Error("unknown exercise id should return nil")
	}
	if s.Exercises[0].Set(uuid.New()) != nil {
		t.Error("unknown set id should return nil")
	}
	if s.Group(5) != nil {
		t.Error("unknown group index should return nil")
	}
	if got := s.Exercises[0].SetAt(1); got == nil || got.OrderIndex != 1 {
		t.Error("SetAt by order index failed")
	}
}

// TestAllComplete verifies the session-level predicate is the conjunction
// of standalone finished flags and group completion.
func TestAllComplete(t *testing.T) {
	s := sampleSession()
	if s.AllComplete() {
		t.Fatal("fresh session should not be complete")
	}

	s.Exercises[1].IsFinished = true // the standalone exercise
	if s.AllComplete() {
		t.Error("group still mid-rounds, session must not be complete")
	}

	s.Groups[0].CurrentRound = s.Groups[0].TotalRounds + 1
	if !s.AllComplete() {
		t.Error("all standalone finished and group done, want complete")
	}
}
