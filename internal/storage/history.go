package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bnjkhr/GymBo-sub002/internal/models"
	"github.com/google/uuid"
)

// ListHistory returns terminated sessions newest-first, limited to the
// given count.
func (db *DB) ListHistory(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT snapshot FROM sessions
		 WHERE state != $1
		 ORDER BY started_at DESC
		 LIMIT $2`,
		models.SessionActive, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var result []models.HistoryEntry
	for rows.Next() {
		var snapshot []byte
		if err := rows.Scan(&snapshot); err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}
		var s models.Session
		if err := json.Unmarshal(snapshot, &s); err != nil {
			return nil, fmt.Errorf("unmarshaling history snapshot: %w", err)
		}
		result = append(result, models.HistorySummary(&s))
	}
	return result, rows.Err()
}

// WeeklyVolume aggregates completed-session volume per ISO week over the
// given range.
func (db *DB) WeeklyVolume(ctx context.Context, start, end time.Time) ([]models.VolumePeriod, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT date_trunc('week', started_at) AS week, snapshot
		 FROM sessions
		 WHERE state = $1 AND started_at >= $2 AND started_at < $3
		 ORDER BY week ASC`,
		models.SessionCompleted, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying weekly volume: %w", err)
	}
	defer rows.Close()

	var result []models.VolumePeriod
	for rows.Next() {
		var week time.Time
		var snapshot []byte
		if err := rows.Scan(&week, &snapshot); err != nil {
			return nil, fmt.Errorf("scanning volume row: %w", err)
		}
		var s models.Session
		if err := json.Unmarshal(snapshot, &s); err != nil {
			return nil, fmt.Errorf("unmarshaling volume snapshot: %w", err)
		}

		if n := len(result); n > 0 && result[n-1].WeekStart.Equal(week) {
			result[n-1].Sessions++
			result[n-1].TotalVolume += s.TotalVolume()
		} else {
			result = append(result, models.VolumePeriod{
				WeekStart:   week,
				Sessions:    1,
				TotalVolume: s.TotalVolume(),
			})
		}
	}
	return result, rows.Err()
}

// BestSet scans completed sessions for the heaviest completed non-warmup
// set of a catalog exercise. Returns (nil, nil) when the exercise was never
// trained.
func (db *DB) BestSet(ctx context.Context, exerciseID uuid.UUID) (*models.ExerciseBest, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT snapshot FROM sessions WHERE state = $1`,
		models.SessionCompleted)
	if err != nil {
		return nil, fmt.Errorf("querying sessions for best set: %w", err)
	}
	defer rows.Close()

	var best *models.ExerciseBest
	for rows.Next() {
		var snapshot []byte
		if err := rows.Scan(&snapshot); err != nil {
			return nil, fmt.Errorf("scanning session for best set: %w", err)
		}
		var s models.Session
		if err := json.Unmarshal(snapshot, &s); err != nil {
			return nil, fmt.Errorf("unmarshaling session for best set: %w", err)
		}
		best = bestInSnapshot(best, &s, exerciseID)
	}
	return best, rows.Err()
}

func bestInSnapshot(best *models.ExerciseBest, s *models.Session, exerciseID uuid.UUID) *models.ExerciseBest {
	for i := range s.Exercises {
		ex := &s.Exercises[i]
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
					SessionID:  s.ID,
					AchievedAt: set.CompletedAt,
				}
			}
		}
	}
	return best
}
