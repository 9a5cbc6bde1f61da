package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bnjkhr/GymBo-sub002/internal/models"
	"github.com/google/uuid"
)

// ListExercises returns the full catalog ordered by name.
func (s *Store) ListExercises(ctx context.Context) ([]models.CatalogExercise, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, muscle_group, last_used_weight, last_used_reps,
		 last_used_set_count, last_used_rest_seconds, last_used_at
		 FROM exercises ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	var result []models.CatalogExercise
	for rows.Next() {
		var e models.CatalogExercise
		var rawID string
		if err := rows.Scan(&rawID, &e.Name, &e.MuscleGroup, &e.LastUsedWeight,
			&e.LastUsedReps, &e.LastUsedSetCount, &e.LastUsedRestSeconds, &e.LastUsedAt); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		if e.ID, err = uuid.Parse(rawID); err != nil {
			return nil, fmt.Errorf("parsing exercise id: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// ListHistory returns terminated sessions newest-first, limited to the
// given count.
func (s *Store) ListHistory(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT snapshot FROM sessions
		 WHERE state != ?
		 ORDER BY started_at DESC
		 LIMIT ?`,
		string(models.SessionActive), limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var result []models.HistoryEntry
	for rows.Next() {
		session, err := scanRowsSnapshot(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, models.HistorySummary(session))
	}
	return result, rows.Err()
}

// WeeklyVolume aggregates completed-session volume per week over the given
// range. Weeks start on Monday, matching the Postgres date_trunc semantics.
func (s *Store) WeeklyVolume(ctx context.Context, start, end time.Time) ([]models.VolumePeriod, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT snapshot FROM sessions
		 WHERE state = ? AND started_at >= ? AND started_at < ?
		 ORDER BY started_at ASC`,
		string(models.SessionCompleted), start, end)
	if err != nil {
		return nil, fmt.Errorf("querying weekly volume: %w", err)
	}
	defer rows.Close()

	var result []models.VolumePeriod
	for rows.Next() {
		session, err := scanRowsSnapshot(rows)
		if err != nil {
			return nil, err
		}
		week := weekStart(session.StartedAt)
		if n := len(result); n > 0 && result[n-1].WeekStart.Equal(week) {
			result[n-1].Sessions++
			result[n-1].TotalVolume += session.TotalVolume()
		} else {
			result = append(result, models.VolumePeriod{
				WeekStart:   week,
				Sessions:    1,
				TotalVolume: session.TotalVolume(),
			})
		}
	}
	return result, rows.Err()
}

// BestSet scans completed sessions for the heaviest completed non-warmup
// set of a catalog exercise. Returns (nil, nil) when the exercise was never
// trained.
func (s *Store) BestSet(ctx context.Context, exerciseID uuid.UUID) (*models.ExerciseBest, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT snapshot FROM sessions WHERE state = ?`,
		string(models.SessionCompleted))
	if err != nil {
		return nil, fmt.Errorf("querying sessions for best set: %w", err)
	}
	defer rows.Close()

	var best *models.ExerciseBest
	for rows.Next() {
		session, err := scanRowsSnapshot(rows)
		if err != nil {
			return nil, err
		}
		for i := range session.Exercises {
			ex := &session.Exercises[i]
			if ex.ExerciseID != exerciseID {
				continue
			}
			for j := range ex.Sets {
				set := &ex.Sets[j]
				if !set.Completed || set.IsWarmup {
					continue
				}
				if best == nil || set.Weight > best.Weight {
					best = &models.ExerciseBest{
						ExerciseID: exerciseID,
						Weight:     set.Weight,
						Reps:       set.Reps,
						SessionID:  session.ID,
						AchievedAt: set.CompletedAt,
					}
				}
			}
		}
	}
	return best, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRowsSnapshot(row rowScanner) (*models.Session, error) {
	var snapshot string
	if err := row.Scan(&snapshot); err != nil {
		return nil, fmt.Errorf("scanning session snapshot: %w", err)
	}
	var session models.Session
	if err := json.Unmarshal([]byte(snapshot), &session); err != nil {
		return nil, fmt.Errorf("unmarshaling session snapshot: %w", err)
	}
	return &session, nil
}

// weekStart truncates a timestamp to midnight UTC of its Monday.
func weekStart(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return day.AddDate(0, 0, -offset)
}
