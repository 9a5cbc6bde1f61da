// gymbo-mcp serves the GymBo MCP surface over stdio, so an AI assistant can
// run training sessions against the same store the HTTP server uses. Logs go
// to stderr; stdout belongs to the protocol.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/bnjkhr/GymBo-sub002/internal/config"
	"github.com/bnjkhr/GymBo-sub002/internal/engine"
	"github.com/bnjkhr/GymBo-sub002/internal/healthlink"
	"github.com/bnjkhr/GymBo-sub002/internal/localstore"
	gymbomcp "github.com/bnjkhr/GymBo-sub002/internal/mcp"
	"github.com/bnjkhr/GymBo-sub002/internal/resttimer"
	"github.com/bnjkhr/GymBo-sub002/internal/storage"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	var (
		store     engine.SessionStore
		catalog   engine.ExerciseCatalog
		templates engine.TemplateSource
		ds        gymbomcp.DataSource
		closeFn   func()
	)

	switch cfg.Database.Driver {
	case "postgres":
		db, err := storage.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		store, catalog, templates, ds = db, db, db, db
		closeFn = db.Close
	case "sqlite":
		local, err := localstore.Open(cfg.Database.DataDir)
		if err != nil {
			log.Error("failed to open local store", "error", err)
			os.Exit(1)
		}
		store, catalog, templates, ds = local, local, local, local
		closeFn = func() { local.Close() }
	}
	defer closeFn()

	timer := resttimer.New(func(d time.Duration) {
		log.Info("rest over", "duration", d)
	}, log)

	var health engine.HealthLink
	if cfg.Health.BridgeURL != "" {
		health = healthlink.New(cfg.Health.BridgeURL, cfg.Health.APIKey)
	}

	eng := engine.New(store, catalog, templates, timer, health, log)

	s := gymbomcp.New(eng, ds, Version, log)
	log.Info("GymBo MCP server starting", "version", Version, "driver", cfg.Database.Driver)

	if err := server.ServeStdio(s); err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
