// gymbo-seed loads an exercise catalog and workout template library from a
// YAML file into the configured store. Seeding is idempotent: entries are
// upserted by id, so re-running against an updated file refreshes names and
// template specs without touching session data.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/bnjkhr/GymBo-sub002/internal/config"
	"github.com/bnjkhr/GymBo-sub002/internal/localstore"
	"github.com/bnjkhr/GymBo-sub002/internal/models"
	"github.com/bnjkhr/GymBo-sub002/internal/storage"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Exercises []seedExercise `yaml:"exercises"`
	Templates []seedTemplate `yaml:"templates"`
}

type seedExercise struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	MuscleGroup string `yaml:"muscle_group"`
}

type seedTemplate struct {
	ID        string                 `yaml:"id"`
	Name      string                 `yaml:"name"`
	Mode      string                 `yaml:"mode"`
	Exercises []seedTemplateExercise `yaml:"exercises"`
	Groups    []seedGroup            `yaml:"groups"`
}

type seedTemplateExercise struct {
	Exercise          string   `yaml:"exercise"`
	TargetSets        int      `yaml:"target_sets"`
	TargetReps        int      `yaml:"target_reps"`
	TargetWeight      *float64 `yaml:"target_weight"`
	RestSeconds       int      `yaml:"rest_seconds"`
	PerSetRestSeconds []int    `yaml:"per_set_rest_seconds"`
}

type seedGroup struct {
	Exercises   []string `yaml:"exercises"`
	Rounds      int      `yaml:"rounds"`
	RestSeconds int      `yaml:"rest_seconds"`
}

// upserter is the write surface seeding needs, satisfied by both drivers.
type upserter interface {
	UpsertExercise(ctx context.Context, e models.CatalogExercise) error
	UpsertTemplate(ctx context.Context, tpl models.WorkoutTemplate) error
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	seedPath := flag.String("file", "", "path to seed YAML file (required)")
	dryRun := flag.Bool("dry-run", false, "validate and report without writing")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *seedPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: gymbo-seed -config config.yaml -file seed.yaml [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	seed, err := loadSeed(*seedPath)
	if err != nil {
		log.Error("failed to load seed file", "error", err)
		os.Exit(1)
	}

	exercises, templates, err := buildEntities(seed)
	if err != nil {
		log.Error("invalid seed file", "error", err)
		os.Exit(1)
	}
	log.Info("seed file parsed", "exercises", len(exercises), "templates", len(templates))

	if *dryRun {
		log.Info("dry run: nothing written")
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	var store upserter
	var closeFn func()

	switch cfg.Database.Driver {
	case "postgres":
		dsn := cfg.Database.DSN()
		if err := storage.RunMigrations(dsn, "migrations"); err != nil {
			log.Error("migration failed", "error", err)
			os.Exit(1)
		}
		db, err := storage.New(ctx, dsn)
		if err != nil {
			log.Error("failed to connect database", "error", err)
			os.Exit(1)
		}
		store = db
		closeFn = db.Close
	case "sqlite":
		local, err := localstore.Open(cfg.Database.DataDir)
		if err != nil {
			log.Error("failed to open local store", "error", err)
			os.Exit(1)
		}
		store = local
		closeFn = func() { local.Close() }
	}
	defer closeFn()

	for _, e := range exercises {
		if err := store.UpsertExercise(ctx, e); err != nil {
			log.Error("upserting exercise failed", "name", e.Name, "error", err)
			os.Exit(1)
		}
	}
	for _, tpl := range templates {
		if err := store.UpsertTemplate(ctx, tpl); err != nil {
			log.Error("upserting template failed", "name", tpl.Name, "error", err)
			os.Exit(1)
		}
	}
	log.Info("seeding complete", "exercises", len(exercises), "templates", len(templates))
}

func loadSeed(path string) (*seedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}
	return &seed, nil
}

// buildEntities resolves the name-keyed seed format into store entities.
// Template slots and groups reference exercises by name, which must be
// declared in the exercises section.
func buildEntities(seed *seedFile) ([]models.CatalogExercise, []models.WorkoutTemplate, error) {
	byName := make(map[string]uuid.UUID, len(seed.Exercises))
	exercises := make([]models.CatalogExercise, 0, len(seed.Exercises))

	for _, se := range seed.Exercises {
		if se.Name == "" {
			return nil, nil, fmt.Errorf("exercise with empty name")
		}
		if _, dup := byName[se.Name]; dup {
			return nil, nil, fmt.Errorf("duplicate exercise name %q", se.Name)
		}
		id, err := seedID(se.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("exercise %q: %w", se.Name, err)
		}
		byName[se.Name] = id
		exercises = append(exercises, models.CatalogExercise{
			ID:          id,
			Name:        se.Name,
			MuscleGroup: se.MuscleGroup,
		})
	}

	templates := make([]models.WorkoutTemplate, 0, len(seed.Templates))
	for _, st := range seed.Templates {
		id, err := seedID(st.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("template %q: %w", st.Name, err)
		}
		mode, err := parseMode(st.Mode)
		if err != nil {
			return nil, nil, fmt.Errorf("template %q: %w", st.Name, err)
		}

		tpl := models.WorkoutTemplate{ID: id, Name: st.Name, Mode: mode}
		for _, slot := range st.Exercises {
			exID, ok := byName[slot.Exercise]
			if !ok {
				return nil, nil, fmt.Errorf("template %q references unknown exercise %q", st.Name, slot.Exercise)
			}
			tpl.Exercises = append(tpl.Exercises, models.TemplateExercise{
				ExerciseID:        exID,
				TargetSets:        slot.TargetSets,
				TargetReps:        slot.TargetReps,
				TargetWeight:      slot.TargetWeight,
				RestSeconds:       slot.RestSeconds,
				PerSetRestSeconds: slot.PerSetRestSeconds,
			})
		}
		for gi, sg := range st.Groups {
			if len(sg.Exercises) < 2 {
				return nil, nil, fmt.Errorf("template %q group %d: need at least 2 members", st.Name, gi)
			}
			group := models.TemplateGroup{Rounds: sg.Rounds, RestSeconds: sg.RestSeconds}
			for _, name := range sg.Exercises {
				exID, ok := byName[name]
				if !ok {
					return nil, nil, fmt.Errorf("template %q group %d references unknown exercise %q", st.Name, gi, name)
				}
				group.ExerciseIDs = append(group.ExerciseIDs, exID)
			}
			tpl.Groups = append(tpl.Groups, group)
		}
		templates = append(templates, tpl)
	}
	return exercises, templates, nil
}

// seedID parses an explicit id or generates one. Explicit ids keep seeding
// idempotent across runs; generated ids are for throwaway setups.
func seedID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.New(), nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q: %w", raw, err)
	}
	return id, nil
}

func parseMode(raw string) (models.WorkoutMode, error) {
	switch models.WorkoutMode(raw) {
	case "", models.ModeStandard:
		return models.ModeStandard, nil
	case models.ModeSuperset, models.ModeCircuit:
		return models.WorkoutMode(raw), nil
	}
	return "", fmt.Errorf("unknown mode %q", raw)
}
