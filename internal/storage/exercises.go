package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/bnjkhr/GymBo-sub002/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Exercise returns a catalog exercise by id, or (nil, nil) when unknown —
// the engine treats catalog misses as non-fatal.
func (db *DB) Exercise(ctx context.Context, id uuid.UUID) (*models.CatalogExercise, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT id, name, muscle_group, last_used_weight, last_used_reps,
		 last_used_set_count, last_used_rest_seconds, last_used_at
		 FROM exercises WHERE id = $1`, id)

	var e models.CatalogExercise
	err := row.Scan(&e.ID, &e.Name, &e.MuscleGroup, &e.LastUsedWeight, &e.LastUsedReps,
		&e.LastUsedSetCount, &e.LastUsedRestSeconds, &e.LastUsedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying exercise: %w", err)
	}
	return &e, nil
}

// ListExercises returns the whole catalog ordered by name.
func (db *DB) ListExercises(ctx context.Context) ([]models.CatalogExercise, error) {
	rows, err := db.Pool.Query(ctx,
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
		if err := rows.Scan(&e.ID, &e.Name, &e.MuscleGroup, &e.LastUsedWeight, &e.LastUsedReps,
			&e.LastUsedSetCount, &e.LastUsedRestSeconds, &e.LastUsedAt); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// UpdateLastUsed records the best weight and reps a finished session
// observed for an exercise. Feeds the progressive-overload defaults of the
// next session.
func (db *DB) UpdateLastUsed(ctx context.Context, id uuid.UUID, weight float64, reps int) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE exercises
		 SET last_used_weight = $2, last_used_reps = $3, last_used_at = NOW()
		 WHERE id = $1`,
		id, weight, reps)
	if err != nil {
		return fmt.Errorf("updating last used values: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("updating last used values: no exercise with id %s", id)
	}
	return nil
}

// UpsertExercise inserts or refreshes a catalog entry. Used by the seeder.
func (db *DB) UpsertExercise(ctx context.Context, e models.CatalogExercise) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO exercises (id, name, muscle_group)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET name = $2, muscle_group = $3`,
		e.ID, e.Name, e.MuscleGroup)
	if err != nil {
		return fmt.Errorf("upserting exercise: %w", err)
	}
	return nil
}
