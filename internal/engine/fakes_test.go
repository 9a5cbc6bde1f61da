package engine

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/bnjkhr/GymBo-sub002/internal/models"
	"github.com/google/uuid"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeStore is an in-memory SessionStore.
type fakeStore struct {
	mu        sync.Mutex
	sessions  map[uuid.UUID]*models.Session
	saveErr   error
	updateErr error
	saves     int
	updates   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{sessions: make(map[uuid.UUID]*models.Session)}
}

func (f *fakeStore) ActiveSession(ctx context.Context) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.sessions {
		if s.State == models.SessionActive {
			return s.Clone(), nil
		}
	}
	return nil, nil
}

func (f *fakeStore) SessionByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, nil
	}
	return s.Clone(), nil
}

func (f *fakeStore) SaveSession(ctx context.Context, s *models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	f.sessions[s.ID] = s.Clone()
	return nil
}

func (f *fakeStore) UpdateSession(ctx context.Context, s *models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates++
	f.sessions[s.ID] = s.Clone()
	return nil
}

// lastUsedUpdate records one catalog feedback call.
type lastUsedUpdate struct {
	ExerciseID uuid.UUID
	Weight     float64
	Reps       int
}

// fakeCatalog is an in-memory ExerciseCatalog.
type fakeCatalog struct {
	exercises map[uuid.UUID]*models.CatalogExercise
	updates   []lastUsedUpdate
	updateErr error
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{exercises: make(map[uuid.UUID]*models.CatalogExercise)}
}

func (f *fakeCatalog) Exercise(ctx context.Context, id uuid.UUID) (*models.CatalogExercise, error) {
	return f.exercises[id], nil
}

func (f *fakeCatalog) UpdateLastUsed(ctx context.Context, id uuid.UUID, weight float64, reps int) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, lastUsedUpdate{ExerciseID: id, Weight: weight, Reps: reps})
	return nil
}

// fakeTemplates is an in-memory TemplateSource that counts lookups.
type fakeTemplates struct {
	templates map[uuid.UUID]*models.WorkoutTemplate
	lookups   int
}

func newFakeTemplates() *fakeTemplates {
	return &fakeTemplates{templates: make(map[uuid.UUID]*models.WorkoutTemplate)}
}

func (f *fakeTemplates) Template(ctx context.Context, id uuid.UUID) (*models.WorkoutTemplate, error) {
	f.lookups++
	return f.templates[id], nil
}

// fakeTimer records rest signals.
type fakeTimer struct {
	starts  []time.Duration
	cancels int
}

func (f *fakeTimer) StartRest(d time.Duration) { f.starts = append(f.starts, d) }
func (f *fakeTimer) CancelRest()               { f.cancels++ }

// fakeHealth is a HealthLink whose failures are controllable.
type fakeHealth struct {
	externalID string
	startErr   error
	endErr     error
	ended      chan string
}

func (f *fakeHealth) StartSession(ctx context.Context) (string, error) {
	if f.startErr != nil {
		return "", f.startErr
	}
	return f.externalID, nil
}

func (f *fakeHealth) EndSession(ctx context.Context, externalID string) error {
	if f.ended != nil {
		f.ended <- externalID
	}
	return f.endErr
}

// testEngine wires an Engine with all fakes, a fixed clock and no health
// link (tests that need one swap it in).
func testEngine() (*Engine, *fakeStore, *fakeCatalog, *fakeTemplates, *fakeTimer) {
	store := newFakeStore()
	catalog := newFakeCatalog()
	templates := newFakeTemplates()
	timer := &fakeTimer{}
	log := discardLogger()
	e := New(store, catalog, templates, timer, nil, log)
	base := time.Date(2025, 6, 1, 17, 30, 0, 0, time.UTC)
	e.now = func() time.Time { return base }
	return e, store, catalog, templates, timer
}

// threeByThreeTemplate is the template from the reference scenario:
// 3 exercises, 3 sets each, 50 weight, 8 reps, no catalog history.
func threeByThreeTemplate(catalog *fakeCatalog) *models.WorkoutTemplate {
	weight := 50.0
	tpl := &models.WorkoutTemplate{
		ID:   uuid.New(),
		Name: "Push Day",
		Mode: models.ModeStandard,
	}
	names := []string{"Bench Press", "Overhead Press", "Dips"}
	for _, name := range names {
		exerciseID := uuid.New()
		catalog.exercises[exerciseID] = &models.CatalogExercise{ID: exerciseID, Name: name}
		tpl.Exercises = append(tpl.Exercises, models.TemplateExercise{
			ExerciseID:   exerciseID,
			TargetSets:   3,
			TargetReps:   8,
			TargetWeight: &weight,
			RestSeconds:  120,
		})
	}
	return tpl
}

// startSession starts a session from the given template and fails the test
// on error.
func startSession(t testingT, e *Engine, templates *fakeTemplates, tpl *models.WorkoutTemplate) *models.Session {
	t.Helper()
	templates.templates[tpl.ID] = tpl
	s, err := e.Start(context.Background(), tpl.ID)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	return s
}

// testingT is the subset of *testing.T the helpers need.
type testingT interface {
	Helper()
	Fatalf(format string, args ...any)
}
