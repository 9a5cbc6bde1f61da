package mcp

import (
	"context"
	"fmt"

	"github.com/bnjkhr/GymBo-sub002/internal/engine"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolStartSession = mcp.NewTool("start_session",
	mcp.WithDescription("Start a new training session from a workout template. Fails if another session is already active."),
	mcp.WithString("workout_id", mcp.Required(), mcp.Description("Workout template UUID (see list_templates)")),
)

var toolGetActiveSession = mcp.NewTool("get_active_session",
	mcp.WithDescription("Return the currently active training session with all exercises, sets and group state."),
)

var toolCompleteSet = mcp.NewTool("complete_set",
	mcp.WithDescription("Toggle completion of a set in the active session. Completing a set starts the rest timer; toggling again un-completes it."),
	mcp.WithString("exercise_id", mcp.Required(), mcp.Description("Session exercise UUID")),
	mcp.WithString("set_id", mcp.Required(), mcp.Description("Set UUID")),
	mcp.WithString("session_id", mcp.Description("Session UUID. Defaults to the active session.")),
)

var toolAddSet = mcp.NewTool("add_set",
	mcp.WithDescription("Append a set to an exercise in the active session."),
	mcp.WithString("exercise_id", mcp.Required(), mcp.Description("Session exercise UUID")),
	mcp.WithNumber("weight", mcp.Required(), mcp.Description("Weight in kg")),
	mcp.WithNumber("reps", mcp.Required(), mcp.Description("Target repetitions")),
	mcp.WithString("session_id", mcp.Description("Session UUID. Defaults to the active session.")),
)

var toolEndSession = mcp.NewTool("end_session",
	mcp.WithDescription("End the active session. Best completed sets feed back into the exercise catalog for progressive overload."),
	mcp.WithString("session_id", mcp.Description("Session UUID. Defaults to the active session.")),
)

var toolGetWarmupPlan = mcp.NewTool("get_warmup_plan",
	mcp.WithDescription("Compute a warm-up ramp for a working weight. Returns warm-up sets with weight, reps and intensity percentage."),
	mcp.WithNumber("weight", mcp.Required(), mcp.Description("Working weight in kg")),
	mcp.WithNumber("reps", mcp.Required(), mcp.Description("Working rep count")),
	mcp.WithString("strategy", mcp.Description("Ramp preset. Defaults to 'standard'."), mcp.Enum("standard", "conservative", "minimal")),
)

var toolListTemplates = mcp.NewTool("list_templates",
	mcp.WithDescription("List all workout templates with their exercise slots, targets and groups."),
)

var toolGetHistory = mcp.NewTool("get_history",
	mcp.WithDescription("List terminated sessions newest-first with completed-set counts and total volume."),
	mcp.WithNumber("limit", mcp.Description("Maximum entries to return. Defaults to 50.")),
)

var toolGetExerciseBest = mcp.NewTool("get_exercise_best",
	mcp.WithDescription("Return the heaviest completed set ever recorded for a catalog exercise."),
	mcp.WithString("exercise_id", mcp.Required(), mcp.Description("Catalog exercise UUID")),
)

// --- Tool handlers ---

// requireUUID extracts and parses a required UUID parameter.
func requireUUID(req mcp.CallToolRequest, name string) (uuid.UUID, error) {
	raw, err := req.RequireString(name)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s parameter is required", name)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s: %v", name, err)
	}
	return id, nil
}

// resolveSessionID returns the session_id parameter, falling back to the
// active session when absent.
func (h *handlers) resolveSessionID(ctx context.Context, req mcp.CallToolRequest) (uuid.UUID, error) {
	if raw := req.GetString("session_id", ""); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return uuid.Nil, fmt.Errorf("invalid session_id: %v", err)
		}
		return id, nil
	}
	active, err := h.eng.ActiveSession(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	if active == nil {
		return uuid.Nil, fmt.Errorf("no active session")
	}
	return active.ID, nil
}

func (h *handlers) startSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workoutID, err := requireUUID(req, "workout_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	session, err := h.eng.Start(ctx, workoutID)
	if err != nil {
		h.log.Error("mcp start_session", "error", err)
		return mcp.NewToolResultError("start failed: " + err.Error()), nil
	}
	return toolJSON(session)
}

func (h *handlers) getActiveSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	session, err := h.eng.ActiveSession(ctx)
	if err != nil {
		h.log.Error("mcp get_active_session", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if session == nil {
		return mcp.NewToolResultText("no active session"), nil
	}
	return toolJSON(session)
}

func (h *handlers) completeSet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exerciseID, err := requireUUID(req, "exercise_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	setID, err := requireUUID(req, "set_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sessionID, err := h.resolveSessionID(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	session, err := h.eng.ToggleSet(ctx, sessionID, exerciseID, setID)
	if err != nil {
		h.log.Error("mcp complete_set", "error", err)
		return mcp.NewToolResultError("toggle failed: " + err.Error()), nil
	}
	return toolJSON(session)
}

func (h *handlers) addSet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exerciseID, err := requireUUID(req, "exercise_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	weight, err := req.RequireFloat("weight")
	if err != nil {
		return mcp.NewToolResultError("weight parameter is required"), nil
	}
	reps, err := req.RequireInt("reps")
	if err != nil {
		return mcp.NewToolResultError("reps parameter is required"), nil
	}
	sessionID, err := h.resolveSessionID(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	session, err := h.eng.AddSet(ctx, sessionID, exerciseID, weight, reps)
	if err != nil {
		h.log.Error("mcp add_set", "error", err)
		return mcp.NewToolResultError("add failed: " + err.Error()), nil
	}
	return toolJSON(session)
}

func (h *handlers) endSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := h.resolveSessionID(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	session, err := h.eng.End(ctx, sessionID)
	if err != nil {
		h.log.Error("mcp end_session", "error", err)
		return mcp.NewToolResultError("end failed: " + err.Error()), nil
	}
	return toolJSON(session)
}

func (h *handlers) getWarmupPlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	weight, err := req.RequireFloat("weight")
	if err != nil {
		return mcp.NewToolResultError("weight parameter is required"), nil
	}
	reps, err := req.RequireInt("reps")
	if err != nil {
		return mcp.NewToolResultError("reps parameter is required"), nil
	}
	strategy, err := engine.ParseWarmupStrategy(req.GetString("strategy", string(engine.WarmupStandard)))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	sets, err := h.eng.WarmupPlan(weight, reps, strategy)
	if err != nil {
		return mcp.NewToolResultError("warmup calculation failed: " + err.Error()), nil
	}
	return toolJSON(sets)
}

func (h *handlers) listTemplates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	templates, err := h.ds.ListTemplates(ctx)
	if err != nil {
		h.log.Error("mcp list_templates", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolJSON(templates)
}

func (h *handlers) getHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 50)

	entries, err := h.ds.ListHistory(ctx, limit)
	if err != nil {
		h.log.Error("mcp get_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return toolJSON(entries)
}

func (h *handlers) getExerciseBest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exerciseID, err := requireUUID(req, "exercise_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	best, err := h.ds.BestSet(ctx, exerciseID)
	if err != nil {
		h.log.Error("mcp get_exercise_best", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if best == nil {
		return mcp.NewToolResultText("exercise never trained"), nil
	}
	return toolJSON(best)
}

func toolJSON(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
