package engine

import (
	"context"
	"fmt"

	"github.com/bnjkhr/GymBo-sub002/internal/models"
	"github.com/google/uuid"
)

// Start begins a new session from a workout template. The single-active-
// session invariant is checked before the template lookup; an active
// session aborts with *ActiveSessionError. Template exercises become
// session exercises in template order, with starting values resolved
// through the progressive-overload chain (catalog last-used, then template
// target, then engine defaults). An exercise id missing from the catalog
// still produces a session exercise under a fallback name.
func (e *Engine) Start(ctx context.Context, workoutID uuid.UUID) (*models.Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	active, err := e.store.ActiveSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("checking for active session: %w", err)
	}
	if active != nil {
		return nil, &ActiveSessionError{ExistingID: active.ID}
	}

	tpl, err := e.templates.Template(ctx, workoutID)
	if err != nil {
		return nil, fmt.Errorf("resolving workout %s: %w", workoutID, err)
	}
	if tpl == nil {
		return nil, idErr(ErrWorkoutNotFound, workoutID)
	}

	session := &models.Session{
		ID:          e.newID(),
		WorkoutID:   workoutID,
		WorkoutName: tpl.Name,
		StartedAt:   e.now(),
		State:       models.SessionActive,
		Mode:        tpl.Mode,
		Exercises:   make([]models.SessionExercise, 0, len(tpl.Exercises)),
	}

	for i, tplEx := range tpl.Exercises {
		session.Exercises = append(session.Exercises, e.buildExercise(ctx, tplEx, i))
	}

	if err := e.buildGroups(session, tpl); err != nil {
		return nil, err
	}

	if err := e.store.SaveSession(ctx, session); err != nil {
		return nil, &SaveError{Err: err}
	}

	// A stale timer from a previous session must not fire into this one.
	if e.timer != nil {
		e.timer.CancelRest()
	}

	e.linkHealthSession(session)

	e.log.Info("session started",
		"session_id", session.ID,
		"workout", tpl.Name,
		"mode", tpl.Mode,
		"exercises", len(session.Exercises),
	)
	return session, nil
}

// buildExercise constructs one session exercise from its template slot.
func (e *Engine) buildExercise(ctx context.Context, tplEx models.TemplateExercise, orderIndex int) models.SessionExercise {
	cat, err := e.catalog.Exercise(ctx, tplEx.ExerciseID)
	if err != nil {
		e.log.Warn("catalog lookup failed", "exercise_id", tplEx.ExerciseID, "error", err)
		cat = nil
	}

	name := "Unknown Exercise"
	if cat != nil {
		name = cat.Name
	}

	v := resolveStart(cat, tplEx, e.defaults)

	ex := models.SessionExercise{
		ID:          e.newID(),
		ExerciseID:  tplEx.ExerciseID,
		Name:        name,
		OrderIndex:  orderIndex,
		RestSeconds: v.RestSeconds,
		Sets:        make([]models.SessionSet, 0, v.SetCount),
	}

	for i := 0; i < v.SetCount; i++ {
		set := models.SessionSet{
			ID:         e.newID(),
			Weight:     v.Weight,
			Reps:       v.Reps,
			OrderIndex: i,
		}
		if i < len(tplEx.PerSetRestSeconds) {
			r := tplEx.PerSetRestSeconds[i]
			set.RestSecondsOverride = &r
		}
		ex.Sets = append(ex.Sets, set)
	}
	return ex
}

// buildGroups materializes template groups and normalizes group geometry:
// every member of a group gets the same round count and its set list padded
// to match, which the progression engine relies on.
func (e *Engine) buildGroups(session *models.Session, tpl *models.WorkoutTemplate) error {
	if tpl.Mode == models.ModeStandard || len(tpl.Groups) == 0 {
		return nil
	}

	for gi, tplGroup := range tpl.Groups {
		if len(tplGroup.ExerciseIDs) < 2 {
			return fmt.Errorf("%w: group %d has %d members, need at least 2", ErrInvalidGroupOp, gi, len(tplGroup.ExerciseIDs))
		}

		group := models.ExerciseGroup{
			ID:           e.newID(),
			GroupIndex:   gi,
			RestSeconds:  tplGroup.RestSeconds,
			CurrentRound: 1,
			TotalRounds:  tplGroup.Rounds,
		}

		members := make([]*models.SessionExercise, 0, len(tplGroup.ExerciseIDs))
		for _, exerciseID := range tplGroup.ExerciseIDs {
			member := sessionExerciseByCatalogID(session, exerciseID)
			if member == nil {
				return fmt.Errorf("%w: group %d references exercise %s not in workout", ErrInvalidGroupOp, gi, exerciseID)
			}
			members = append(members, member)
		}

		// Round count defaults to the longest member set list.
		if group.TotalRounds <= 0 {
			for _, m := range members {
				if len(m.Sets) > group.TotalRounds {
					group.TotalRounds = len(m.Sets)
				}
			}
		}

		for _, m := range members {
			gid := group.ID
			m.GroupID = &gid
			e.padSets(m, group.TotalRounds)
		}

		session.Groups = append(session.Groups, group)
	}
	return nil
}

// padSets extends an exercise's set list to the given length by repeating
// its last set's weight/reps, keeping orderIndex contiguous.
func (e *Engine) padSets(ex *models.SessionExercise, want int) {
	for len(ex.Sets) < want {
		last := ex.Sets[len(ex.Sets)-1]
		ex.Sets = append(ex.Sets, models.SessionSet{
			ID:         e.newID(),
			Weight:     last.Weight,
			Reps:       last.Reps,
			OrderIndex: len(ex.Sets),
		})
	}
}

func sessionExerciseByCatalogID(s *models.Session, exerciseID uuid.UUID) *models.SessionExercise {
	for i := range s.Exercises {
		if s.Exercises[i].ExerciseID == exerciseID {
			return &s.Exercises[i]
		}
	}
	return nil
}

// End terminates a session: state becomes completed, the end time is
// stamped (re-ending a completed session just refreshes it), and each
// exercise's best completed non-warmup set feeds back into the catalog.
// Catalog failures are logged, never fatal.
func (e *Engine) End(ctx context.Context, sessionID uuid.UUID) (*models.Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	session, err := e.fetch(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.State == models.SessionCancelled {
		return nil, fmt.Errorf("%w: cannot end a cancelled session", ErrInvalidSessionState)
	}

	updated := session.Clone()
	updated.State = models.SessionCompleted
	endedAt := e.now()
	updated.EndedAt = &endedAt

	for i := range updated.Exercises {
		ex := &updated.Exercises[i]
		weight, reps, ok := bestCompletedSet(ex)
		if !ok {
			continue
		}
		if err := e.catalog.UpdateLastUsed(ctx, ex.ExerciseID, weight, reps); err != nil {
			e.log.Warn("catalog feedback failed", "exercise_id", ex.ExerciseID, "error", err)
		}
	}

	if err := e.store.UpdateSession(ctx, updated); err != nil {
		return nil, &UpdateError{Err: err}
	}

	e.unlinkHealthSession(updated)

	e.log.Info("session ended",
		"session_id", updated.ID,
		"completed_sets", updated.CompletedSets(),
		"total_volume", updated.TotalVolume(),
	)
	return updated, nil
}

// bestCompletedSet returns the max weight and max reps observed across an
// exercise's completed non-warmup sets. The two maxima are independent:
// they may come from different sets.
func bestCompletedSet(ex *models.SessionExercise) (weight float64, reps int, ok bool) {
	for i := range ex.Sets {
		set := &ex.Sets[i]
		if !set.Completed || set.IsWarmup {
			continue
		}
		ok = true
		if set.Weight > weight {
			weight = set.Weight
		}
		if set.Reps > reps {
			reps = set.Reps
		}
	}
	return weight, reps, ok
}

// Cancel terminates a session without catalog feedback. Cancelling a
// session that is no longer active is a caller error.
func (e *Engine) Cancel(ctx context.Context, sessionID uuid.UUID) (*models.Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	session, err := e.fetch(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.State != models.SessionActive {
		return nil, fmt.Errorf("%w: cannot cancel a %s session", ErrInvalidSessionState, session.State)
	}

	updated := session.Clone()
	updated.State = models.SessionCancelled
	endedAt := e.now()
	updated.EndedAt = &endedAt

	if err := e.store.UpdateSession(ctx, updated); err != nil {
		return nil, &UpdateError{Err: err}
	}

	e.unlinkHealthSession(updated)

	e.log.Info("session cancelled", "session_id", updated.ID)
	return updated, nil
}

// linkHealthSession starts the external health session in the background.
// The session row is updated with the external id on success; any failure
// goes to the failure hook only.
func (e *Engine) linkHealthSession(session *models.Session) {
	if e.health == nil {
		return
	}
	sessionID := session.ID
	go func() {
		ctx := context.Background()
		externalID, err := e.health.StartSession(ctx)
		if err != nil {
			e.onHealthErr("start", err)
			return
		}
		e.mu.Lock()
		defer e.mu.Unlock()
		current, err := e.store.SessionByID(ctx, sessionID)
		if err != nil || current == nil {
			e.onHealthErr("start", fmt.Errorf("recording external session id: session %s unavailable", sessionID))
			return
		}
		updated := current.Clone()
		updated.HealthSessionID = externalID
		if err := e.store.UpdateSession(ctx, updated); err != nil {
			e.onHealthErr("start", err)
		}
	}()
}

// unlinkHealthSession ends the external health session in the background.
func (e *Engine) unlinkHealthSession(session *models.Session) {
	if e.health == nil || session.HealthSessionID == "" {
		return
	}
	externalID := session.HealthSessionID
	go func() {
		if err := e.health.EndSession(context.Background(), externalID); err != nil {
			e.onHealthErr("end", err)
		}
	}()
}
