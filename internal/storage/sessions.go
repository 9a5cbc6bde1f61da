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

// Sessions are persisted as full snapshots: the engine's read-modify-write
// cycle always writes the whole session, so the row carries the jsonb
// snapshot plus the few columns queries filter on.

// ActiveSession returns the single active session, or (nil, nil) when none
// exists.
func (db *DB) ActiveSession(ctx context.Context) (*models.Session, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT snapshot FROM sessions WHERE state = $1 LIMIT 1`,
		models.SessionActive)
	return scanSessionSnapshot(row)
}

// SessionByID returns a session by id, or (nil, nil) when absent.
func (db *DB) SessionByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT snapshot FROM sessions WHERE id = $1`, id)
	return scanSessionSnapshot(row)
}

// SaveSession inserts a new session row.
func (db *DB) SaveSession(ctx context.Context, s *models.Session) error {
	snapshot, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}
	_, err = db.Pool.Exec(ctx,
		`INSERT INTO sessions (id, state, workout_id, workout_name, started_at, ended_at, snapshot)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		s.ID, s.State, s.WorkoutID, s.WorkoutName, s.StartedAt, s.EndedAt, snapshot)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

// UpdateSession replaces a session row's snapshot and filter columns.
func (db *DB) UpdateSession(ctx context.Context, s *models.Session) error {
	snapshot, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}
	tag, err := db.Pool.Exec(ctx,
		`UPDATE sessions SET state = $2, ended_at = $3, snapshot = $4 WHERE id = $1`,
		s.ID, s.State, s.EndedAt, snapshot)
	if err != nil {
		return fmt.Errorf("updating session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("updating session: no row with id %s", s.ID)
	}
	return nil
}

func scanSessionSnapshot(row pgx.Row) (*models.Session, error) {
	var snapshot []byte
	if err := row.Scan(&snapshot); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying session: %w", err)
	}
	var s models.Session
	if err := json.Unmarshal(snapshot, &s); err != nil {
		return nil, fmt.Errorf("unmarshaling session snapshot: %w", err)
	}
	return &s, nil
}
