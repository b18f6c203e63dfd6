package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/AbdelazizMoustafa10m/critpath/internal/calendar"
	"github.com/AbdelazizMoustafa10m/critpath/internal/config"
	"github.com/AbdelazizMoustafa10m/critpath/internal/logging"
	"github.com/AbdelazizMoustafa10m/critpath/internal/project"
	"github.com/AbdelazizMoustafa10m/critpath/internal/schedule"
)

// loadConfig resolves the configuration from --config (or the nearest
// critpath.toml), the environment and overrides, then applies its [log]
// section. --verbose and --quiet still win over log.level.
func loadConfig(overrides *config.CLIOverrides) (*config.ResolvedConfig, *toml.MetaData, error) {
	rc, meta, err := config.Load(flagConfig, ".", os.LookupEnv, overrides)
	if err != nil {
		return nil, nil, err
	}
	setupLogging(rc.Config)
	return rc, meta, nil
}

func setupLogging(cfg *config.Config) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil || flagVerbose || flagQuiet {
		level = logging.LevelFor(flagVerbose, flagQuiet)
	}
	format, _ := logging.ParseFormat(cfg.Log.Format)
	logging.Setup(logging.Options{Level: level, Format: format, Timestamps: cfg.Log.Timestamps})
}

// workspace is the store and schedule registry built from the project
// files a configuration points at.
type workspace struct {
	cfg      *config.Config
	store    *project.Store
	registry *schedule.Registry
}

// openWorkspace loads every project matched by data.projects. Store edits
// are wired to the registry, so each loaded project starts out dirty.
func openWorkspace(cfg *config.Config, opts ...schedule.Option) (*workspace, error) {
	settings, err := cfg.ScheduleSettings()
	if err != nil {
		return nil, err
	}
	mode, err := cfg.CalendarMode()
	if err != nil {
		return nil, err
	}
	projects, err := project.LoadGlob(cfg.Data.Projects)
	if err != nil {
		return nil, err
	}

	store := project.NewStore(
		project.WithDefaultMode(mode),
		project.WithCalendarOptions(calendar.WithMaxGap(cfg.Calendar.MaxGapDays)),
	)
	registry := schedule.NewRegistry(store, append([]schedule.Option{schedule.WithSettings(settings)}, opts...)...)
	store.OnChange(registry.HandleChange)

	for _, p := range projects {
		if err := store.Put(p); err != nil {
			registry.Close()
			return nil, err
		}
	}
	logging.New("cli").Debug("workspace loaded", "pattern", cfg.Data.Projects, "projects", len(projects))
	return &workspace{cfg: cfg, store: store, registry: registry}, nil
}

// selectProjects returns ids, or every loaded project when ids is empty.
// Unknown IDs are an error.
func (w *workspace) selectProjects(ids []string) ([]string, error) {
	if len(ids) == 0 {
		all := w.store.IDs()
		if len(all) == 0 {
			return nil, fmt.Errorf("no project files match %q", w.cfg.Data.Projects)
		}
		return all, nil
	}
	for _, id := range ids {
		if _, err := w.store.Get(id); err != nil {
			return nil, fmt.Errorf("project %q: %w", id, err)
		}
	}
	return ids, nil
}

func (w *workspace) Close() {
	w.registry.Close()
}
