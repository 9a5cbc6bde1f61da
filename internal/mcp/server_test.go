package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/bnjkhr/GymBo-sub002/internal/engine"
	"github.com/bnjkhr/GymBo-sub002/internal/models"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

type memStore struct {
	sessions map[uuid.UUID]*models.Session
}

func (m *memStore) ActiveSession(ctx context.Context) (*models.Session, error) {
	for _, s := range m.sessions {
		if s.State == models.SessionActive {
			return s.Clone(), nil
		}
	}
	return nil, nil
}

func (m *memStore) SessionByID(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return s.Clone(), nil
}

func (m *memStore) SaveSession(ctx context.Context, s *models.Session) error {
	m.sessions[s.ID] = s.Clone()
	return nil
}

func (m *memStore) UpdateSession(ctx context.Context, s *models.Session) error {
	if _, ok := m.sessions[s.ID]; !ok {
		return fmt.Errorf("no session %s", s.ID)
	}
	m.sessions[s.ID] = s.Clone()
	return nil
}

type memCatalog struct {
	exercises map[uuid.UUID]*models.CatalogExercise
}

func (m *memCatalog) Exercise(ctx context.Context, id uuid.UUID) (*models.CatalogExercise, error) {
	return m.exercises[id], nil
}

func (m *memCatalog) UpdateLastUsed(ctx context.Context, id uuid.UUID, weight float64, reps int) error {
	return nil
}

type memTemplates struct {
	templates map[uuid.UUID]*models.WorkoutTemplate
}

func (m *memTemplates) Template(ctx context.Context, id uuid.UUID) (*models.WorkoutTemplate, error) {
	return m.templates[id], nil
}

type stubDataSource struct {
	templates []models.WorkoutTemplate
	exercises []models.CatalogExercise
	history   []models.HistoryEntry
	best      *models.ExerciseBest
}

func (d *stubDataSource) ListTemplates(ctx context.Context) ([]models.WorkoutTemplate, error) {
	return d.templates, nil
}
func (d *stubDataSource) ListExercises(ctx context.Context) ([]models.CatalogExercise, error) {
	return d.exercises, nil
}
func (d *stubDataSource) ListHistory(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	return d.history, nil
}
func (d *stubDataSource) BestSet(ctx context.Context, exerciseID uuid.UUID) (*models.ExerciseBest, error) {
	return d.best, nil
}

// testHandlers wires tool handlers over a real engine with in-memory fakes
// and returns the template id sessions start from.
func testHandlers(t *testing.T) (*handlers, *stubDataSource, uuid.UUID) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	exerciseID := uuid.New()
	catalog := &memCatalog{exercises: map[uuid.UUID]*models.CatalogExercise{
		exerciseID: {ID: exerciseID, Name: "Deadlift"},
	}}
	tpl := &models.WorkoutTemplate{
		ID:   uuid.New(),
		Name: "Pull Day",
		Mode: models.ModeStandard,
		Exercises: []models.TemplateExercise{
			{ExerciseID: exerciseID, TargetSets: 3, TargetReps: 5, RestSeconds: 180},
		},
	}
	templates := &memTemplates{templates: map[uuid.UUID]*models.WorkoutTemplate{tpl.ID: tpl}}

	eng := engine.New(&memStore{sessions: make(map[uuid.UUID]*models.Session)}, catalog, templates, nil, nil, log)
	ds := &stubDataSource{}
	return &handlers{eng: eng, ds: ds, log: log}, ds, tpl.ID
}

func callReq(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("tool result has no content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("tool result content is %T, want TextContent", result.Content[0])
	}
	return text.Text
}

// TestStartSessionTool verifies the start tool creates a session and a
// second start reports the conflict as a tool error.
func TestStartSessionTool(t *testing.T) {
	h, _, tplID := testHandlers(t)
	ctx := context.Background()

	result, err := h.startSession(ctx, callReq(map[string]any{"workout_id": tplID.String()}))
	if err != nil {
		t.Fatalf("startSession: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, result))
	}
	var session models.Session
	if err := json.Unmarshal([]byte(resultText(t, result)), &session); err != nil {
		t.Fatalf("decoding session: %v", err)
	}
	if session.State != models.SessionActive {
		t.Errorf("state = %q, want active", session.State)
	}

	result, _ = h.startSession(ctx, callReq(map[string]any{"workout_id": tplID.String()}))
	if !result.IsError {
		t.Error("second start should report the active-session conflict")
	}
}

// TestStartSessionToolBadID verifies malformed ids become tool errors, not
// transport errors.
func TestStartSessionToolBadID(t *testing.T) {
	h, _, _ := testHandlers(t)

	result, err := h.startSession(context.Background(), callReq(map[string]any{"workout_id": "nope"}))
	if err != nil {
		t.Fatalf("startSession: %v", err)
	}
	if !result.IsError {
		t.Error("expected tool error for malformed workout_id")
	}
}

// TestGetActiveSessionToolNone verifies the no-session case is a plain text
// answer rather than an error.
func TestGetActiveSessionToolNone(t *testing.T) {
	h, _, _ := testHandlers(t)

	result, err := h.getActiveSession(context.Background(), callReq(nil))
	if err != nil {
		t.Fatalf("getActiveSession: %v", err)
	}
	if result.IsError {
		t.Fatal("no active session should not be a tool error")
	}
	if got := resultText(t, result); got != "no active session" {
		t.Errorf("text = %q", got)
	}
}

// TestCompleteSetToolDefaultsToActive verifies complete_set resolves the
// active session when session_id is omitted.
func TestCompleteSetToolDefaultsToActive(t *testing.T) {
	h, _, tplID := testHandlers(t)
	ctx := context.Background()

	result, _ := h.startSession(ctx, callReq(map[string]any{"workout_id": tplID.String()}))
	var session models.Session
	if err := json.Unmarshal([]byte(resultText(t, result)), &session); err != nil {
		t.Fatal(err)
	}
	ex := session.Exercises[0]

	result, err := h.completeSet(ctx, callReq(map[string]any{
		"exercise_id": ex.ID.String(),
		"set_id":      ex.Sets[0].ID.String(),
	}))
	if err != nil {
		t.Fatalf("completeSet: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, result))
	}
	var updated models.Session
	if err := json.Unmarshal([]byte(resultText(t, result)), &updated); err != nil {
		t.Fatal(err)
	}
	if !updated.Exercise(ex.ID).Set(ex.Sets[0].ID).Completed {
		t.Error("set not completed")
	}
}

// TestWarmupPlanTool verifies the calculator tool returns the standard ramp.
func TestWarmupPlanTool(t *testing.T) {
	h, _, _ := testHandlers(t)

	result, err := h.getWarmupPlan(context.Background(), callReq(map[string]any{
		"weight": 100.0,
		"reps":   8,
	}))
	if err != nil {
		t.Fatalf("getWarmupPlan: %v", err)
	}
	if result.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, result))
	}
	var sets []models.WarmupSet
	if err := json.Unmarshal([]byte(resultText(t, result)), &sets); err != nil {
		t.Fatal(err)
	}
	if len(sets) != 3 {
		t.Errorf("sets = %d, want 3", len(sets))
	}
}

// TestGetExerciseBestNeverTrained verifies the never-trained case is a
// plain text answer.
func TestGetExerciseBestNeverTrained(t *testing.T) {
	h, _, _ := testHandlers(t)

	result, err := h.getExerciseBest(context.Background(), callReq(map[string]any{
		"exercise_id": uuid.NewString(),
	}))
	if err != nil {
		t.Fatalf("getExerciseBest: %v", err)
	}
	if result.IsError {
		t.Fatal("never-trained should not be a tool error")
	}
	if got := resultText(t, result); got != "exercise never trained" {
		t.Errorf("text = %q", got)
	}
}

// TestGetHistoryTool verifies history passes through the data source.
func TestGetHistoryTool(t *testing.T) {
	h, ds, _ := testHandlers(t)
	ds.history = []models.HistoryEntry{{ID: uuid.New(), WorkoutName: "Leg Day"}}

	result, err := h.getHistory(context.Background(), callReq(nil))
	if err != nil {
		t.Fatalf("getHistory: %v", err)
	}
	var entries []models.HistoryEntry
	if err := json.Unmarshal([]byte(resultText(t, result)), &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].WorkoutName != "Leg Day" {
		t.Errorf("entries = %+v", entries)
	}
}
