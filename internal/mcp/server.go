// Package mcp exposes the session engine to AI assistants over the Model
// Context Protocol: a coaching agent can start a session, log sets and pull
// training history through the same engine the mobile client uses.
package mcp

import (
	"log/slog"

	"github.com/bnjkhr/GymBo-sub002/internal/engine"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(eng *engine.Engine, ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("GymBo", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("GymBo strength training companion. Start and run workout sessions, log sets, compute warm-up ramps, and query templates and training history. At most one session is active at a time."),
	)

	h := &handlers{eng: eng, ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolStartSession, Handler: h.startSession},
		server.ServerTool{Tool: toolGetActiveSession, Handler: h.getActiveSession},
		server.ServerTool{Tool: toolCompleteSet, Handler: h.completeSet},
		server.ServerTool{Tool: toolAddSet, Handler: h.addSet},
		server.ServerTool{Tool: toolEndSession, Handler: h.endSession},
		server.ServerTool{Tool: toolGetWarmupPlan, Handler: h.getWarmupPlan},
		server.ServerTool{Tool: toolListTemplates, Handler: h.listTemplates},
		server.ServerTool{Tool: toolGetHistory, Handler: h.getHistory},
		server.ServerTool{Tool: toolGetExerciseBest, Handler: h.getExerciseBest},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resActiveSession, Handler: h.activeSessionResource},
		server.ServerResource{Resource: resTemplateCatalog, Handler: h.templateCatalogResource},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	eng *engine.Engine
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resActiveSession = mcp.NewResource(
	"gymbo://active_session",
	"Active Session",
	mcp.WithResourceDescription("The currently running training session with all exercises, sets and group progression state"),
	mcp.WithMIMEType("application/json"),
)

var resTemplateCatalog = mcp.NewResource(
	"gymbo://template_catalog",
	"Template Catalog",
	mcp.WithResourceDescription("All workout templates with their exercise slots, targets and group declarations"),
	mcp.WithMIMEType("application/json"),
)
