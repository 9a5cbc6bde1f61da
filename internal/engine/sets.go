package engine

import (
	"context"
	"fmt"

	"github.com/bnjkhr/GymBo-sub002/internal/models"
	"github.com/google/uuid"
)

// mutate runs the read-modify-write cycle shared by every set-level
// operation: fetch the persisted session, apply the transform to a deep
// copy, persist the full snapshot, return the copy. The transform never
// suspends, so no caller can observe a half-updated session.
func (e *Engine) mutate(ctx context.Context, sessionID uuid.UUID, transform func(*models.Session) error) (*models.Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	session, err := e.fetch(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	updated := session.Clone()
	if err := transform(updated); err != nil {
		return nil, err
	}

	if err := e.store.UpdateSession(ctx, updated); err != nil {
		return nil, &UpdateError{Err: err}
	}
	return updated, nil
}

// requireUngrouped rejects per-set operations on exercises that belong to
// a group. Member set lists are sized to the group's round count at session
// start and completion runs through the round flow; editing them directly
// would leave rounds without a set to complete.
func requireUngrouped(ex *models.SessionExercise) error {
	if ex.GroupID != nil {
		return fmt.Errorf("%w: exercise %s belongs to a group, use the group round operations", ErrInvalidGroupOp, ex.ID)
	}
	return nil
}

// resolveSet finds an exercise and one of its sets within a session.
func resolveSet(s *models.Session, exerciseID, setID uuid.UUID) (*models.SessionExercise, *models.SessionSet, error) {
	ex := s.Exercise(exerciseID)
	if ex == nil {
		return nil, nil, idErr(ErrExerciseNotFound, exerciseID)
	}
	set := ex.Set(setID)
	if set == nil {
		return nil, nil, idErr(ErrSetNotFound, setID)
	}
	return ex, set, nil
}

// ToggleSet flips a set's completed flag and stamps or clears its
// completion time. The owning exercise's finished state is re-derived from
// its sets afterwards: completing the last open set finishes the exercise,
// un-completing any set of a finished exercise unfinishes it. Completing a
// set signals the rest timer.
func (e *Engine) ToggleSet(ctx context.Context, sessionID, exerciseID, setID uuid.UUID) (*models.Session, error) {
	var restSeconds int
	session, err := e.mutate(ctx, sessionID, func(s *models.Session) error {
		ex, set, err := resolveSet(s, exerciseID, setID)
		if err != nil {
			return err
		}
		if err := requireUngrouped(ex); err != nil {
			return err
		}

		set.Completed = !set.Completed
		if set.Completed {
			now := e.now()
			set.CompletedAt = &now
			restSeconds = restAfterSet(ex, set)
		} else {
			set.CompletedAt = nil
		}

		ex.IsFinished = ex.AllSetsCompleted()
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.startRest(restSeconds)
	return session, nil
}

// restAfterSet picks the rest duration to apply after a completed set:
// the set's own override when present, the exercise rest otherwise.
func restAfterSet(ex *models.SessionExercise, set *models.SessionSet) int {
	if set.RestSecondsOverride != nil {
		return *set.RestSecondsOverride
	}
	return ex.RestSeconds
}

// UpdateSet changes a set's weight and/or reps in place. Nil means leave
// unchanged. Completion state is untouched.
func (e *Engine) UpdateSet(ctx context.Context, sessionID, exerciseID, setID uuid.UUID, weight *float64, reps *int) (*models.Session, error) {
	return e.mutate(ctx, sessionID, func(s *models.Session) error {
		_, set, err := resolveSet(s, exerciseID, setID)
		if err != nil {
			return err
		}
		if weight != nil {
			set.Weight = *weight
		}
		if reps != nil {
			set.Reps = *reps
		}
		return nil
	})
}

// UpdateAllRemainingSets applies weight and reps to every not-yet-completed
// set of an exercise.
func (e *Engine) UpdateAllRemainingSets(ctx context.Context, sessionID, exerciseID uuid.UUID, weight float64, reps int) (*models.Session, error) {
	return e.mutate(ctx, sessionID, func(s *models.Session) error {
		ex := s.Exercise(exerciseID)
		if ex == nil {
			return idErr(ErrExerciseNotFound, exerciseID)
		}
		for i := range ex.Sets {
			if ex.Sets[i].Completed {
				continue
			}
			ex.Sets[i].Weight = weight
			ex.Sets[i].Reps = reps
		}
		return nil
	})
}

// AddSet appends a new incomplete set with the next contiguous order index.
func (e *Engine) AddSet(ctx context.Context, sessionID, exerciseID uuid.UUID, weight float64, reps int) (*models.Session, error) {
	return e.mutate(ctx, sessionID, func(s *models.Session) error {
		ex := s.Exercise(exerciseID)
		if ex == nil {
			return idErr(ErrExerciseNotFound, exerciseID)
		}
		if err := requireUngrouped(ex); err != nil {
			return err
		}
		ex.Sets = append(ex.Sets, models.SessionSet{
			ID:         e.newID(),
			Weight:     weight,
			Reps:       reps,
			OrderIndex: len(ex.Sets),
		})
		// A finished exercise gains an open set again.
		ex.IsFinished = ex.AllSetsCompleted()
		return nil
	})
}

// RemoveSet deletes a set and renumbers the remainder contiguously. An
// exercise must always retain at least one set.
func (e *Engine) RemoveSet(ctx context.Context, sessionID, exerciseID, setID uuid.UUID) (*models.Session, error) {
	return e.mutate(ctx, sessionID, func(s *models.Session) error {
		ex, _, err := resolveSet(s, exerciseID, setID)
		if err != nil {
			return err
		}
		if err := requireUngrouped(ex); err != nil {
			return err
		}
		if len(ex.Sets) == 1 {
			return fmt.Errorf("%w: cannot remove the last set of an exercise", ErrInvalidGroupOp)
		}

		kept := ex.Sets[:0]
		for i := range ex.Sets {
			if ex.Sets[i].ID != setID {
				kept = append(kept, ex.Sets[i])
			}
		}
		ex.Sets = kept
		for i := range ex.Sets {
			ex.Sets[i].OrderIndex = i
		}
		ex.IsFinished = ex.AllSetsCompleted()
		return nil
	})
}

// ReorderExercises renumbers exercise order indexes to match the given
// permutation of exercise ids. Set membership and completion state are
// untouched. A list that is not a full permutation is rejected.
func (e *Engine) ReorderExercises(ctx context.Context, sessionID uuid.UUID, order []uuid.UUID) (*models.Session, error) {
	return e.mutate(ctx, sessionID, func(s *models.Session) error {
		if len(order) != len(s.Exercises) {
			return fmt.Errorf("%w: got %d ids, session has %d exercises", ErrInvalidExerciseOrder, len(order), len(s.Exercises))
		}
		seen := make(map[uuid.UUID]bool, len(order))
		for idx, exerciseID := range order {
			if seen[exerciseID] {
				return fmt.Errorf("%w: duplicate exercise id %s", ErrInvalidExerciseOrder, exerciseID)
			}
			seen[exerciseID] = true

			ex := s.Exercise(exerciseID)
			if ex == nil {
				return idErr(ErrExerciseNotFound, exerciseID)
			}
			ex.OrderIndex = idx
		}
		return nil
	})
}

// UpdateExerciseSettings changes the free-text note and/or the rest applied
// after an exercise's sets in a single persist. Nil means leave unchanged.
func (e *Engine) UpdateExerciseSettings(ctx context.Context, sessionID, exerciseID uuid.UUID, notes *string, restSeconds *int) (*models.Session, error) {
	return e.mutate(ctx, sessionID, func(s *models.Session) error {
		ex := s.Exercise(exerciseID)
		if ex == nil {
			return idErr(ErrExerciseNotFound, exerciseID)
		}
		if notes != nil {
			ex.Notes = *notes
		}
		if restSeconds != nil {
			ex.RestSeconds = *restSeconds
		}
		return nil
	})
}

// AddWarmupSets prepends a calculated warm-up ramp to an exercise. The
// working weight/reps are taken from the exercise's first non-warmup set;
// all order indexes are renumbered contiguously.
func (e *Engine) AddWarmupSets(ctx context.Context, sessionID, exerciseID uuid.UUID, strategy WarmupStrategy) (*models.Session, error) {
	return e.mutate(ctx, sessionID, func(s *models.Session) error {
		ex := s.Exercise(exerciseID)
		if ex == nil {
			return idErr(ErrExerciseNotFound, exerciseID)
		}
		if err := requireUngrouped(ex); err != nil {
			return err
		}

		var working *models.SessionSet
		for i := range ex.Sets {
			if !ex.Sets[i].IsWarmup {
				working = &ex.Sets[i]
				break
			}
		}
		if working == nil {
			return fmt.Errorf("%w: exercise has no working set", ErrSetNotFound)
		}

		ramp, err := CalculateWarmup(working.Weight, working.Reps, strategy, e.defaults.PlateIncrement)
		if err != nil {
			return err
		}

		warmups := make([]models.SessionSet, 0, len(ramp))
		for _, w := range ramp {
			warmups = append(warmups, models.SessionSet{
				ID:       e.newID(),
				Weight:   w.Weight,
				Reps:     w.Reps,
				IsWarmup: true,
			})
		}

		ex.Sets = append(warmups, ex.Sets...)
		for i := range ex.Sets {
			ex.Sets[i].OrderIndex = i
		}
		ex.IsFinished = ex.AllSetsCompleted()
		return nil
	})
}
