package mcp

import (
	"context"

	"github.com/bnjkhr/GymBo-sub002/internal/localstore"
	"github.com/bnjkhr/GymBo-sub002/internal/models"
	"github.com/bnjkhr/GymBo-sub002/internal/storage"
	"github.com/google/uuid"
)

// DataSource is the read-only surface MCP tools query directly, next to the
// engine which owns all mutation. Both store drivers satisfy it.
type DataSource interface {
	ListTemplates(ctx context.Context) ([]models.WorkoutTemplate, error)
	ListExercises(ctx context.Context) ([]models.CatalogExercise, error)
	ListHistory(ctx context.Context, limit int) ([]models.HistoryEntry, error)
	BestSet(ctx context.Context, exerciseID uuid.UUID) (*models.ExerciseBest, error)
}

var (
	_ DataSource = (*storage.DB)(nil)
	_ DataSource = (*localstore.Store)(nil)
)
