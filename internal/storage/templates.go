package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bnjkhr/GymBo-sub002/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Template returns a workout template by id, or (nil, nil) when unknown.
// The exercise list and group layout live in the jsonb spec column.
func (db *DB) Template(ctx context.Context, id uuid.UUID) (*models.WorkoutTemplate, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT spec FROM workout_templates WHERE id = $1`, id)

	var spec []byte
	if err := row.Scan(&spec); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying template: %w", err)
	}

	var tpl models.WorkoutTemplate
	if err := json.Unmarshal(spec, &tpl); err != nil {
		return nil, fmt.Errorf("unmarshaling template: %w", err)
	}
	return &tpl, nil
}

// ListTemplates returns all workout templates ordered by name.
func (db *DB) ListTemplates(ctx context.Context) ([]models.WorkoutTemplate, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT spec FROM workout_templates ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying templates: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutTemplate
	for rows.Next() {
		var spec []byte
		if err := rows.Scan(&spec); err != nil {
			return nil, fmt.Errorf("scanning template: %w", err)
		}
		var tpl models.WorkoutTemplate
		if err := json.Unmarshal(spec, &tpl); err != nil {
			return nil, fmt.Errorf("unmarshaling template: %w", err)
		}
		result = append(result, tpl)
	}
	return result, rows.Err()
}

// UpsertTemplate inserts or replaces a workout template. Used by the seeder.
func (db *DB) UpsertTemplate(ctx context.Context, tpl models.WorkoutTemplate) error {
	spec, err := json.Marshal(tpl)
	if err != nil {
		return fmt.Errorf("marshaling template: %w", err)
	}
	_, err = db.Pool.Exec(ctx,
		`INSERT INTO workout_templates (id, name, mode, spec)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET name = $2, mode = $3, spec = $4`,
		tpl.ID, tpl.Name, tpl.Mode, spec)
	if err != nil {
		return fmt.Errorf("upserting template: %w", err)
	}
	return nil
}
