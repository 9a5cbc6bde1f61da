package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bnjkhr/GymBo-sub002/internal/config"
	"github.com/bnjkhr/GymBo-sub002/internal/engine"
	"github.com/bnjkhr/GymBo-sub002/internal/healthlink"
	"github.com/bnjkhr/GymBo-sub002/internal/localstore"
	"github.com/bnjkhr/GymBo-sub002/internal/resttimer"
	"github.com/bnjkhr/GymBo-sub002/internal/server"
	"github.com/bnjkhr/GymBo-sub002/internal/storage"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit (postgres only)")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("GymBo starting", "version", Version)

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
		dir       server.Directory
		closeFn   func()
	)

	switch cfg.Database.Driver {
	case "postgres":
		dsn := cfg.Database.DSN()
		if err := storage.RunMigrations(dsn, "migrations"); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		log.Info("migrations applied")
		if *migrateOnly {
			log.Info("migrate-only: exiting")
			return
		}

		db, err := storage.New(ctx, dsn)
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		store, catalog, templates, dir = db, db, db, db
		closeFn = db.Close
		log.Info("database connected", "driver", "postgres")

	case "sqlite":
		local, err := localstore.Open(cfg.Database.DataDir)
		if err != nil {
			log.Error("failed to open local store", "error", err)
			os.Exit(1)
		}
		store, catalog, templates, dir = local, local, local, local
		closeFn = func() { local.Close() }
		log.Info("database connected", "driver", "sqlite", "dir", cfg.Database.DataDir)
	}
	defer closeFn()

	timer := resttimer.New(func(d time.Duration) {
		log.Info("rest over", "duration", d)
	}, log)

	var health engine.HealthLink
	if cfg.Health.BridgeURL != "" {
		health = healthlink.New(cfg.Health.BridgeURL, cfg.Health.APIKey)
		log.Info("health bridge enabled", "url", cfg.Health.BridgeURL)
	}

	eng := engine.New(store, catalog, templates, timer, health, log)
	eng.SetDefaults(engineDefaults(cfg))

	srv := server.New(eng, dir, cfg.Auth.APIKey, log)

	// Start server: tsnet or plain HTTP
	var listener net.Listener

	if cfg.Tailscale.Enabled {
		tsServer := &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	timer.CancelRest()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	log.Info("server stopped")
}

// engineDefaults merges configured overrides onto the built-in fallbacks.
func engineDefaults(cfg *config.Config) engine.Defaults {
	d := engine.StandardDefaults
	if cfg.Engine.DefaultReps > 0 {
		d.Reps = cfg.Engine.DefaultReps
	}
	if cfg.Engine.DefaultSets > 0 {
		d.SetCount = cfg.Engine.DefaultSets
	}
	if cfg.Engine.DefaultRestSeconds > 0 {
		d.RestSeconds = cfg.Engine.DefaultRestSeconds
	}
	if cfg.Engine.PlateIncrement > 0 {
		d.PlateIncrement = cfg.Engine.PlateIncrement
	}
	return d
}
