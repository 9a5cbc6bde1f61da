package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/bnjkhr/GymBo-sub002/internal/models"
	"github.com/google/uuid"
)

// groupTemplate builds a single-group template with the given number of
// member stations and rounds. Two stations make a superset, three or more
// a circuit.
func groupTemplate(catalog *fakeCatalog, stations, rounds int) *models.WorkoutTemplate {
	mode := models.ModeSuperset
	if stations > 2 {
		mode = models.ModeCircuit
	}
	weight := 40.0
	tpl := &models.WorkoutTemplate{
		ID:   uuid.New(),
		Name: "Group Day",
		Mode: mode,
	}
	group := models.TemplateGroup{Rounds: rounds, RestSeconds: 180}
	for i := 0; i < stations; i++ {
		exerciseID := uuid.New()
		catalog.exercises[exerciseID] = &models.CatalogExercise{ID: exerciseID, Name: "Station"}
		tpl.Exercises = append(tpl.Exercises, models.TemplateExercise{
			ExerciseID:   exerciseID,
			TargetSets:   rounds,
			TargetReps:   10,
			TargetWeight: &weight,
			RestSeconds:  60,
		})
		group.ExerciseIDs = append(group.ExerciseIDs, exerciseID)
	}
	tpl.Groups = []models.TemplateGroup{group}
	return tpl
}

// completeRound completes the current-round set of every station, failing
// the test on error, and returns the updated session.
func completeRound(t *testing.T, e *Engine, s *models.Session) *models.Session {
	t.Helper()
	ctx := context.Background()
	group := s.Group(0)
	round := group.CurrentRound
	for i := range s.Exercises {
		ex := &s.Exercises[i]
		set := ex.SetAt(round - 1)
		var err error
		s, err = e.CompleteGroupSet(ctx, s.ID, 0, ex.ID, set.ID)
		if err != nil {
			t.Fatalf("completing station %d round %d: %v", i, round, err)
		}
	}
	return s
}

// TestGroupRoundAutoAdvance verifies a round advances only once every
// station's current-round set is completed: completing all but one station
// leaves currentRound unchanged.
func TestGroupRoundAutoAdvance(t *testing.T) {
	e, _, catalog, templates, _ := testEngine()
	s := startSession(t, e, templates, groupTemplate(catalog, 2, 3))
	ctx := context.Background()

	first := s.Exercises[0]
	s, err := e.CompleteGroupSet(ctx, s.ID, 0, first.ID, first.Sets[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Group(0).CurrentRound; got != 1 {
		t.Errorf("currentRound = %d after one of two stations, want 1", got)
	}

	second := s.Exercises[1]
	s, err = e.CompleteGroupSet(ctx, s.ID, 0, second.ID, second.Sets[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Group(0).CurrentRound; got != 2 {
		t.Errorf("currentRound = %d after full round, want 2", got)
	}
}

// TestCircuitFiveStations verifies the reference scenario: a 5-station
// circuit with 3 rounds holds at round 1 until the 5th completion.
func TestCircuitFiveStations(t *testing.T) {
	e, _, catalog, templates, _ := testEngine()
	s := startSession(t, e, templates, groupTemplate(catalog, 5, 3))
	ctx := context.Background()

	if s.Mode != models.ModeCircuit {
		t.Fatalf("mode = %q, want circuit", s.Mode)
	}

	for i := 0; i < 5; i++ {
		ex := &s.Exercises[i]
		var err error
		s, err = e.CompleteGroupSet(ctx, s.ID, 0, ex.ID, ex.Sets[0].ID)
		if err != nil {
			t.Fatal(err)
		}
		want := 1
		if i == 4 {
			want = 2
		}
		if got := s.Group(0).CurrentRound; got != want {
			t.Errorf("currentRound = %d after %d completions, want %d", got, i+1, want)
		}
	}
}

// TestGroupCompletion verifies that after all rounds the round counter sits
// one past totalRounds and the completion predicate holds.
func TestGroupCompletion(t *testing.T) {
	e, _, catalog, templates, _ := testEngine()
	s := startSession(t, e, templates, groupTemplate(catalog, 3, 2))

	for round := 0; round < 2; round++ {
		s = completeRound(t, e, s)
	}

	group := s.Group(0)
	if group.CurrentRound != group.TotalRounds+1 {
		t.Errorf("currentRound = %d, want %d", group.CurrentRound, group.TotalRounds+1)
	}
	if !group.Done() {
		t.Error("group completion predicate false after final round")
	}
	if !s.AllComplete() {
		t.Error("session not all-complete with its only group done")
	}
}

// TestCompleteGroupSetOutOfRound verifies completing a set outside the
// current round is rejected as a dedicated error, not silently accepted.
func TestCompleteGroupSetOutOfRound(t *testing.T) {
	e, _, catalog, templates, _ := testEngine()
	s := startSession(t, e, templates, groupTemplate(catalog, 2, 3))

	ex := s.Exercises[0]
	// Round 1 is active; the round-2 set is out of round.
	_, err := e.CompleteGroupSet(context.Background(), s.ID, 0, ex.ID, ex.Sets[1].ID)
	if !errors.Is(err, ErrInvalidGroupOp) {
		t.Fatalf("err = %v, want ErrInvalidGroupOp", err)
	}
}

// TestCompleteGroupSetNonMember verifies group operations reject exercises
// outside the group.
func TestCompleteGroupSetNonMember(t *testing.T) {
	e, _, catalog, templates, _ := testEngine()
	tpl := groupTemplate(catalog, 2, 3)
	// A standalone exercise alongside the group.
	loneID := uuid.New()
	catalog.exercises[loneID] = &models.CatalogExercise{ID: loneID, Name: "Plank"}
	tpl.Exercises = append(tpl.Exercises, models.TemplateExercise{
		ExerciseID: loneID, TargetSets: 1, TargetReps: 1, RestSeconds: 30,
	})
	s := startSession(t, e, templates, tpl)

	lone := s.Exercises[2]
	_, err := e.CompleteGroupSet(context.Background(), s.ID, 0, lone.ID, lone.Sets[0].ID)
	if !errors.Is(err, ErrInvalidGroupOp) {
		t.Fatalf("err = %v, want ErrInvalidGroupOp", err)
	}
}

// TestAdvanceRoundManually verifies the forced advance skips incomplete
// stations but cannot run past one beyond the final round.
func TestAdvanceRoundManually(t *testing.T) {
	e, _, catalog, templates, _ := testEngine()
	s := startSession(t, e, templates, groupTemplate(catalog, 3, 2))
	ctx := context.Background()

	var err error
	for round := 0; round < 2; round++ {
		s, err = e.AdvanceRound(ctx, s.ID, 0)
		if err != nil {
			t.Fatal(err)
		}
	}
	if got := s.Group(0).CurrentRound; got != 3 {
		t.Fatalf("currentRound = %d, want 3", got)
	}

	if _, err := e.AdvanceRound(ctx, s.ID, 0); !errors.Is(err, ErrInvalidGroupOp) {
		t.Fatalf("advance past completion: err = %v, want ErrInvalidGroupOp", err)
	}
}

// TestGroupRestSignals verifies stations signal exercise rest and a round
// boundary signals the group rest.
func TestGroupRestSignals(t *testing.T) {
	e, _, catalog, templates, timer := testEngine()
	s := startSession(t, e, templates, groupTemplate(catalog, 2, 3))
	ctx := context.Background()

	first := s.Exercises[0]
	s, err := e.CompleteGroupSet(ctx, s.ID, 0, first.ID, first.Sets[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(timer.starts) != 1 || timer.starts[0].Seconds() != 60 {
		t.Fatalf("timer starts = %v, want one 60s station rest", timer.starts)
	}

	second := s.Exercises[1]
	if _, err := e.CompleteGroupSet(ctx, s.ID, 0, second.ID, second.Sets[0].ID); err != nil {
		t.Fatal(err)
	}
	if len(timer.starts) != 2 || timer.starts[1].Seconds() != 180 {
		t.Fatalf("timer starts = %v, want 180s group rest after the round", timer.starts)
	}
}

// TestGroupGeometryNormalization verifies session start pads member set
// lists to the round count so every round has an active set.
func TestGroupGeometryNormalization(t *testing.T) {
	e, _, catalog, templates, _ := testEngine()
	tpl := groupTemplate(catalog, 2, 4)
	tpl.Exercises[1].TargetSets = 2 // shorter than the round count

	s := startSession(t, e, templates, tpl)

	for i, ex := range s.Exercises {
		if len(ex.Sets) != 4 {
			t.Errorf("exercise %d sets = %d, want padded to 4 rounds", i, len(ex.Sets))
		}
		for j, set := range ex.Sets {
			if set.OrderIndex != j {
				t.Errorf("exercise %d set %d orderIndex = %d", i, j, set.OrderIndex)
			}
		}
	}
}

// TestGroupGeometryLockedAgainstSetEdits verifies generic set add/remove
// and warm-up insertion are rejected for group members: member set lists
// are sized by the round count, and shrinking one station would leave a
// later round with no set to complete, wedging the round advance.
func TestGroupGeometryLockedAgainstSetEdits(t *testing.T) {
	e, _, catalog, templates, _ := testEngine()
	s := startSession(t, e, templates, groupTemplate(catalog, 2, 3))
	ctx := context.Background()

	ex := s.Exercises[0]
	if _, err := e.RemoveSet(ctx, s.ID, ex.ID, ex.Sets[2].ID); !errors.Is(err, ErrInvalidGroupOp) {
		t.Errorf("RemoveSet on a group member: err = %v, want ErrInvalidGroupOp", err)
	}
	if _, err := e.RemoveSet(ctx, s.ID, ex.ID, ex.Sets[1].ID); !errors.Is(err, ErrInvalidGroupOp) {
		t.Errorf("second RemoveSet on a group member: err = %v, want ErrInvalidGroupOp", err)
	}
	if _, err := e.AddSet(ctx, s.ID, ex.ID, 40, 10); !errors.Is(err, ErrInvalidGroupOp) {
		t.Errorf("AddSet on a group member: err = %v, want ErrInvalidGroupOp", err)
	}
	if _, err := e.AddWarmupSets(ctx, s.ID, ex.ID, WarmupStandard); !errors.Is(err, ErrInvalidGroupOp) {
		t.Errorf("AddWarmupSets on a group member: err = %v, want ErrInvalidGroupOp", err)
	}

	// Geometry intact: one set per round at every station, and the round
	// flow still runs to completion.
	s, err := e.SessionByID(ctx, s.ID)
	if err != nil {
		t.Fatal(err)
	}
	for i, ex := range s.Exercises {
		if len(ex.Sets) != 3 {
			t.Fatalf("exercise %d sets = %d, want 3 per the round count", i, len(ex.Sets))
		}
	}
	for round := 0; round < 3; round++ {
		s = completeRound(t, e, s)
	}
	if !s.Group(0).Done() {
		t.Error("group did not complete after all rounds")
	}
}

// TestToggleSetRejectsGroupMember verifies per-set toggling cannot bypass
// the round discipline: completing a group member's set goes through
// CompleteGroupSet only.
func TestToggleSetRejectsGroupMember(t *testing.T) {
	e, _, catalog, templates, _ := testEngine()
	s := startSession(t, e, templates, groupTemplate(catalog, 2, 3))

	ex := s.Exercises[0]
	// Round 1 is active; toggling the round-2 set directly would complete
	// it out of round.
	_, err := e.ToggleSet(context.Background(), s.ID, ex.ID, ex.Sets[1].ID)
	if !errors.Is(err, ErrInvalidGroupOp) {
		t.Fatalf("err = %v, want ErrInvalidGroupOp", err)
	}

	s, err = e.SessionByID(context.Background(), s.ID)
	if err != nil {
		t.Fatal(err)
	}
	if s.CompletedSets() != 0 {
		t.Errorf("completedSets = %d, rejected toggle must not complete anything", s.CompletedSets())
	}
}

// TestUpdateGroupSet verifies field updates scoped to group members.
func TestUpdateGroupSet(t *testing.T) {
	e, _, catalog, templates, _ := testEngine()
	s := startSession(t, e, templates, groupTemplate(catalog, 2, 3))

	ex := s.Exercises[0]
	s, err := e.UpdateGroupSet(context.Background(), s.ID, 0, ex.ID, ex.Sets[1].ID, floatPtr(45), intPtr(8))
	if err != nil {
		t.Fatal(err)
	}
	set := s.Exercise(ex.ID).Sets[1]
	if set.Weight != 45 || set.Reps != 8 {
		t.Errorf("set = %.1f x %d, want 45 x 8", set.Weight, set.Reps)
	}
}
