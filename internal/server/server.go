// Package server exposes the session engine over HTTP for the mobile
// client. Mutating routes require an API key; read routes are open since
// tsnet gates network access in the usual deployment.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/bnjkhr/GymBo-sub002/internal/engine"
	"github.com/bnjkhr/GymBo-sub002/internal/localstore"
	"github.com/bnjkhr/GymBo-sub002/internal/models"
	"github.com/bnjkhr/GymBo-sub002/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// Directory is the read-only catalog and history surface, implemented by
// both store drivers.
type Directory interface {
	ListTemplates(ctx context.Context) ([]models.WorkoutTemplate, error)
	ListExercises(ctx context.Context) ([]models.CatalogExercise, error)
	ListHistory(ctx context.Context, limit int) ([]models.HistoryEntry, error)
	WeeklyVolume(ctx context.Context, start, end time.Time) ([]models.VolumePeriod, error)
	BestSet(ctx context.Context, exerciseID uuid.UUID) (*models.ExerciseBest, error)
}

var (
	_ Directory = (*storage.DB)(nil)
	_ Directory = (*localstore.Store)(nil)
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	engine *engine.Engine
	dir    Directory
	log    *slog.Logger
	apiKey string
	router chi.Router
}

// New creates a new Server with all routes configured. An empty apiKey
// disables auth on mutating routes (local development).
func New(eng *engine.Engine, dir Directory, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		engine: eng,
		dir:    dir,
		log:    log,
		apiKey: apiKey,
		router: chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Read surface
		r.Get("/sessions/active", s.handleActiveSession)
		r.Get("/sessions/{id}", s.handleGetSession)
		r.Get("/warmup", s.handleWarmupPlan)
		r.Get("/templates", s.handleListTemplates)
		r.Get("/exercises", s.handleListExercises)
		r.Get("/exercises/{id}/best", s.handleExerciseBest)
		r.Get("/history", s.handleHistory)
		r.Get("/history/volume", s.handleWeeklyVolume)

		// Mutating surface (API key required when configured)
		r.Group(func(r chi.Router) {
			if s.apiKey != "" {
				r.Use(APIKeyAuth(s.apiKey))
			}
			r.Post("/sessions", s.handleStartSession)
			r.Post("/sessions/{id}/end", s.handleEndSession)
			r.Post("/sessions/{id}/cancel", s.handleCancelSession)
			r.Put("/sessions/{id}/order", s.handleReorderExercises)
			r.Post("/sessions/{id}/sets/{setID}/toggle", s.handleToggleSet)
			r.Patch("/sessions/{id}/sets/{setID}", s.handleUpdateSet)
			r.Post("/sessions/{id}/exercises/{exID}/sets", s.handleAddSet)
			r.Delete("/sessions/{id}/exercises/{exID}/sets/{setID}", s.handleRemoveSet)
			r.Post("/sessions/{id}/exercises/{exID}/bulk", s.handleBulkUpdateSets)
			r.Post("/sessions/{id}/exercises/{exID}/warmup", s.handleAddWarmupSets)
			r.Patch("/sessions/{id}/exercises/{exID}", s.handlePatchExercise)
			r.Post("/sessions/{id}/groups/{idx}/complete", s.handleCompleteGroupSet)
			r.Post("/sessions/{id}/groups/{idx}/advance", s.handleAdvanceRound)
			r.Patch("/sessions/{id}/groups/{idx}/sets/{setID}", s.handleUpdateGroupSet)
		})
	})
}
