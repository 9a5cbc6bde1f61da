// Package localstore is the SQLite-backed counterpart to internal/storage,
// used in single-user mode (database.driver: sqlite) where running Postgres
// would be overkill: a phone-companion deployment on one machine.
package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bnjkhr/GymBo-sub002/internal/models"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store provides the engine's store, catalog and template collaborators on
// a single SQLite file.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at dir/gymbo.db.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "gymbo.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening local db: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func createSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			id           TEXT PRIMARY KEY,
			state        TEXT NOT NULL,
			started_at   TIMESTAMP NOT NULL,
			snapshot     TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS exercises (
			id                     TEXT PRIMARY KEY,
			name                   TEXT NOT NULL,
			muscle_group           TEXT NOT NULL DEFAULT '',
			last_used_weight       REAL,
			last_used_reps         INTEGER,
			last_used_set_count    INTEGER,
			last_used_rest_seconds INTEGER,
			last_used_at           TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS workout_templates (
			id   TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			spec TEXT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// ActiveSession returns the active session, or (nil, nil) when none exists.
func (s *Store) ActiveSession(ctx context.Context) (*models.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT snapshot FROM sessions WHERE state = ? LIMIT 1`,
		string(models.SessionActive))
	return scanSnapshot(row)
}

// SessionByID returns a session by id, or (nil, nil) when absent.
func (s *Store) SessionByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT snapshot FROM sessions WHERE id = ?`, id.String())
	return scanSnapshot(row)
}

// SaveSession inserts a new session row.
func (s *Store) SaveSession(ctx context.Context, session *models.Session) error {
	snapshot, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, state, started_at, snapshot) VALUES (?, ?, ?, ?)`,
		session.ID.String(), string(session.State), session.StartedAt, string(snapshot))
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

// UpdateSession replaces a session row's snapshot.
func (s *Store) UpdateSession(ctx context.Context, session *models.Session) error {
	snapshot, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET state = ?, snapshot = ? WHERE id = ?`,
		string(session.State), string(snapshot), session.ID.String())
	if err != nil {
		return fmt.Errorf("updating session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("updating session: no row with id %s", session.ID)
	}
	return nil
}

func scanSnapshot(row *sql.Row) (*models.Session, error) {
	var snapshot string
	if err := row.Scan(&snapshot); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying session: %w", err)
	}
	var session models.Session
	if err := json.Unmarshal([]byte(snapshot), &session); err != nil {
		return nil, fmt.Errorf("unmarshaling session snapshot: %w", err)
	}
	return &session, nil
}

// Exercise returns a catalog exercise, or (nil, nil) when unknown.
func (s *Store) Exercise(ctx context.Context, id uuid.UUID) (*models.CatalogExercise, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, muscle_group, last_used_weight, last_used_reps,
		 last_used_set_count, last_used_rest_seconds, last_used_at
		 FROM exercises WHERE id = ?`, id.String())

	var e models.CatalogExercise
	var rawID string
	err := row.Scan(&rawID, &e.Name, &e.MuscleGroup, &e.LastUsedWeight, &e.LastUsedReps,
		&e.LastUsedSetCount, &e.LastUsedRestSeconds, &e.LastUsedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying exercise: %w", err)
	}
	e.ID, err = uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("parsing exercise id: %w", err)
	}
	return &e, nil
}

// UpdateLastUsed records last-used weight and reps for an exercise.
func (s *Store) UpdateLastUsed(ctx context.Context, id uuid.UUID, weight float64, reps int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE exercises
		 SET last_used_weight = ?, last_used_reps = ?, last_used_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		weight, reps, id.String())
	if err != nil {
		return fmt.Errorf("updating last used values: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("updating last used values: no exercise with id %s", id)
	}
	return nil
}

// UpsertExercise inserts or refreshes a catalog entry.
func (s *Store) UpsertExercise(ctx context.Context, e models.CatalogExercise) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO exercises (id, name, muscle_group) VALUES (?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET name = excluded.name, muscle_group = excluded.muscle_group`,
		e.ID.String(), e.Name, e.MuscleGroup)
	if err != nil {
		return fmt.Errorf("upserting exercise: %w", err)
	}
	return nil
}

// Template returns a workout template, or (nil, nil) when unknown.
func (s *Store) Template(ctx context.Context, id uuid.UUID) (*models.WorkoutTemplate, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT spec FROM workout_templates WHERE id = ?`, id.String())

	var spec string
	if err := row.Scan(&spec); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying template: %w", err)
	}
	var tpl models.WorkoutTemplate
	if err := json.Unmarshal([]byte(spec), &tpl); err != nil {
		return nil, fmt.Errorf("unmarshaling template: %w", err)
	}
	return &tpl, nil
}

// ListTemplates returns all templates ordered by name.
func (s *Store) ListTemplates(ctx context.Context) ([]models.WorkoutTemplate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT spec FROM workout_templates ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying templates: %w", err)
	}
	defer rows.Close()

	var result []models.WorkoutTemplate
	for rows.Next() {
		var spec string
		if err := rows.Scan(&spec); err != nil {
			return nil, fmt.Errorf("scanning template: %w", err)
		}
		var tpl models.WorkoutTemplate
		if err := json.Unmarshal([]byte(spec), &tpl); err != nil {
			return nil, fmt.Errorf("unmarshaling template: %w", err)
		}
		result = append(result, tpl)
	}
	return result, rows.Err()
}

// UpsertTemplate inserts or replaces a workout template.
func (s *Store) UpsertTemplate(ctx context.Context, tpl models.WorkoutTemplate) error {
	spec, err := json.Marshal(tpl)
	if err != nil {
		return fmt.Errorf("marshaling template: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO workout_templates (id, name, spec) VALUES (?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET name = excluded.name, spec = excluded.spec`,
		tpl.ID.String(), tpl.Name, string(spec))
	if err != nil {
		return fmt.Errorf("upserting template: %w", err)
	}
	return nil
}
