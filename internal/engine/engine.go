package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bnjkhr/GymBo-sub002/internal/models"
	"github.com/google/uuid"
)

// SessionStore is the sole durability boundary for sessions. ActiveSession
// returns (nil, nil) when no session is active.
type SessionStore interface {
	ActiveSession(ctx context.Context) (*models.Session, error)
	SessionByID(ctx context.Context, id uuid.UUID) (*models.Session, error)
	SaveSession(ctx context.Context, s *models.Session) error
	UpdateSession(ctx context.Context, s *models.Session) error
}

// ExerciseCatalog resolves catalog exercises and records last-used values.
// Exercise returns (nil, nil) when the id is unknown — a missing catalog
// entry is not a fatal condition at session start.
type ExerciseCatalog interface {
	Exercise(ctx context.Context, id uuid.UUID) (*models.CatalogExercise, error)
	UpdateLastUsed(ctx context.Context, id uuid.UUID, weight float64, reps int) error
}

// TemplateSource resolves workout templates. Template returns (nil, nil)
// when the id is unknown.
type TemplateSource interface {
	Template(ctx context.Context, id uuid.UUID) (*models.WorkoutTemplate, error)
}

// RestTimer receives one-way rest signals. The engine never blocks on timer
// state and never consumes its expiry.
type RestTimer interface {
	StartRest(d time.Duration)
	CancelRest()
}

// HealthLink mirrors sessions to an external health platform. Best-effort:
// failures are reported through the engine's failure hook, never returned
// to callers.
type HealthLink interface {
	StartSession(ctx context.Context) (string, error)
	EndSession(ctx context.Context, externalID string) error
}

// HealthFailureHook observes health-link failures. Replaceable in tests so
// the silent best-effort path stays inspectable.
type HealthFailureHook func(op string, err error)

// Defaults are the engine-level fallbacks used when neither the catalog's
// last-used values nor the template provide a starting point.
type Defaults struct {
	Reps           int
	Weight         float64
	SetCount       int
	RestSeconds    int
	PlateIncrement float64
}

// StandardDefaults mirror what the mobile app ships with.
var StandardDefaults = Defaults{
	Reps:           8,
	Weight:         0,
	SetCount:       3,
	RestSeconds:    90,
	PlateIncrement: 2.5,
}

// Engine is the active session engine: lifecycle, set completion, group
// progression and warm-up calculation over a single session at a time.
// Mutations are serialized by a mutex; each operation is a pure transform
// over a deep copy followed by a full-snapshot persist, so a failed
// operation never leaves a half-updated session behind.
type Engine struct {
	mu          sync.Mutex
	store       SessionStore
	catalog     ExerciseCatalog
	templates   TemplateSource
	timer       RestTimer
	health      HealthLink
	onHealthErr HealthFailureHook
	defaults    Defaults
	log         *slog.Logger
	now         func() time.Time
	newID       func() uuid.UUID
}

// New creates an Engine. timer and health may be nil, in which case the
// corresponding signals are skipped.
func New(store SessionStore, catalog ExerciseCatalog, templates TemplateSource, timer RestTimer, health HealthLink, log *slog.Logger) *Engine {
	e := &Engine{
		store:     store,
		catalog:   catalog,
		templates: templates,
		timer:     timer,
		health:    health,
		defaults:  StandardDefaults,
		log:       log,
		now:       time.Now,
		newID:     uuid.New,
	}
	e.onHealthErr = func(op string, err error) {
		e.log.Warn("health link failure", "op", op, "error", err)
	}
	return e
}

// SetDefaults overrides the engine-level fallback values.
func (e *Engine) SetDefaults(d Defaults) { e.defaults = d }

// SetHealthFailureHook replaces the health failure observer.
func (e *Engine) SetHealthFailureHook(h HealthFailureHook) { e.onHealthErr = h }

// ActiveSession returns the currently active session, or nil when none.
func (e *Engine) ActiveSession(ctx context.Context) (*models.Session, error) {
	return e.store.ActiveSession(ctx)
}

// SessionByID returns a session by id, failing with ErrSessionNotFound.
func (e *Engine) SessionByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	return e.fetch(ctx, id)
}

// fetch loads a session and normalizes a missing row to ErrSessionNotFound.
func (e *Engine) fetch(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	s, err := e.store.SessionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, idErr(ErrSessionNotFound, id)
	}
	return s, nil
}

// idErr wraps a sentinel with the offending identifier.
func idErr(sentinel error, id uuid.UUID) error {
	return fmt.Errorf("%w: %s", sentinel, id)
}

// startRest signals the rest timer. The signal is one-way: the collaborator
// must not block, and the engine never consumes its expiry.
func (e *Engine) startRest(seconds int) {
	if e.timer == nil || seconds <= 0 {
		return
	}
	e.timer.StartRest(time.Duration(seconds) * time.Second)
}
