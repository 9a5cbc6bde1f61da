package engine

import (
	"context"
	"fmt"

	"github.com/bnjkhr/GymBo-sub002/internal/models"
	"github.com/google/uuid"
)

// resolveGroup finds a group by index and validates membership of the given
// exercise.
func resolveGroup(s *models.Session, groupIndex int, exerciseID uuid.UUID) (*models.ExerciseGroup, *models.SessionExercise, error) {
	group := s.Group(groupIndex)
	if group == nil {
		return nil, nil, fmt.Errorf("%w: no group with index %d", ErrInvalidGroupOp, groupIndex)
	}
	ex := s.Exercise(exerciseID)
	if ex == nil {
		return nil, nil, idErr(ErrExerciseNotFound, exerciseID)
	}
	if ex.GroupID == nil || *ex.GroupID != group.ID {
		return nil, nil, fmt.Errorf("%w: exercise %s is not a member of group %d", ErrInvalidGroupOp, exerciseID, groupIndex)
	}
	return group, ex, nil
}

// CompleteGroupSet marks the current-round set of one group member as
// completed. Completing a set outside the current round is a programming
// error and is rejected. When every member's current-round set is complete
// the round advances; the round-synchronized advance is what distinguishes
// group progression from plain per-exercise completion. Rest is signaled
// after every station, with the group's (longer) rest after a full round.
func (e *Engine) CompleteGroupSet(ctx context.Context, sessionID uuid.UUID, groupIndex int, exerciseID, setID uuid.UUID) (*models.Session, error) {
	var restSeconds int
	session, err := e.mutate(ctx, sessionID, func(s *models.Session) error {
		group, ex, err := resolveGroup(s, groupIndex, exerciseID)
		if err != nil {
			return err
		}
		if group.Done() {
			return fmt.Errorf("%w: group %d is already complete", ErrInvalidGroupOp, groupIndex)
		}

		set := ex.Set(setID)
		if set == nil {
			return idErr(ErrSetNotFound, setID)
		}
		active := ex.SetAt(group.CurrentRound - 1)
		if active == nil || active.ID != set.ID {
			return fmt.Errorf("%w: set %s is not the round-%d set of exercise %s", ErrInvalidGroupOp, setID, group.CurrentRound, exerciseID)
		}

		now := e.now()
		set.Completed = true
		set.CompletedAt = &now
		ex.IsFinished = ex.AllSetsCompleted()

		restSeconds = restAfterSet(ex, set)
		if e.roundComplete(s, group) {
			group.CurrentRound++
			if group.RestSeconds > 0 {
				restSeconds = group.RestSeconds
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.startRest(restSeconds)
	return session, nil
}

// roundComplete reports whether every member exercise has its current-round
// set completed.
func (e *Engine) roundComplete(s *models.Session, group *models.ExerciseGroup) bool {
	for i := range s.Exercises {
		ex := &s.Exercises[i]
		if ex.GroupID == nil || *ex.GroupID != group.ID {
			continue
		}
		set := ex.SetAt(group.CurrentRound - 1)
		if set == nil || !set.Completed {
			return false
		}
	}
	return true
}

// AdvanceRound force-advances a group's round even when stations are
// incomplete ("skip to next round"). Bounded at one past the final round.
func (e *Engine) AdvanceRound(ctx context.Context, sessionID uuid.UUID, groupIndex int) (*models.Session, error) {
	return e.mutate(ctx, sessionID, func(s *models.Session) error {
		group := s.Group(groupIndex)
		if group == nil {
			return fmt.Errorf("%w: no group with index %d", ErrInvalidGroupOp, groupIndex)
		}
		if group.Done() {
			return fmt.Errorf("%w: group %d is already complete", ErrInvalidGroupOp, groupIndex)
		}
		group.CurrentRound++
		return nil
	})
}

// UpdateGroupSet changes weight and/or reps on a group member's set, with
// the same semantics as UpdateSet but scoped to group membership.
func (e *Engine) UpdateGroupSet(ctx context.Context, sessionID uuid.UUID, groupIndex int, exerciseID, setID uuid.UUID, weight *float64, reps *int) (*models.Session, error) {
	return e.mutate(ctx, sessionID, func(s *models.Session) error {
		_, ex, err := resolveGroup(s, groupIndex, exerciseID)
		if err != nil {
			return err
		}
		set := ex.Set(setID)
		if set == nil {
			return idErr(ErrSetNotFound, setID)
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
