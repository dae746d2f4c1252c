// Package app wires the roster's services together: the application
// controller owns lifecycle, the tab controller owns navigation, and
// the services own one concern each. Nothing here imports the TUI; the
// view consumes the view-models this package builds.
package app

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/billie-coop/roster/internal/config"
	"github.com/billie-coop/roster/internal/events"
	"github.com/billie-coop/roster/internal/probe"
	"github.com/billie-coop/roster/internal/state"
	"github.com/billie-coop/roster/internal/storage"
)

// ErrNotInitialized is returned by operations that need Initialize to
// have run first.
var ErrNotInitialized = errors.New("application is not initialized")

// Destroyer is anything with teardown. Children that don't implement
// it are simply skipped.
type Destroyer interface {
	Destroy()
}

// App holds all the core services and business logic.
type App struct {
	// Core substrate
	Store    *state.Store
	Registry *events.Registry

	// Persistence
	Settings *config.Manager
	States   *storage.Store
	History  *storage.History

	// Services
	Roster  *RosterService
	Project *ProjectService
	Probes  *ProbeService
	Tabs    *TabController

	logger      *slog.Logger
	dataDir     string
	flusher     *storage.Flusher
	group       *events.Group
	children    []any
	initialized bool
}

// New creates the app with all services constructed but nothing
// loaded; Initialize does the loading. dataDir is where settings,
// state, and history live (normally ~/.roster).
func New(dataDir string, logger *slog.Logger) *App {
	store := state.NewWithTree(state.DefaultTree(), logger)
	registry := events.NewRegistry(logger)

	a := &App{
		Store:    store,
		Registry: registry,
		Settings: config.NewManager(dataDir),
		States:   storage.NewStore(filepath.Join(dataDir, "state.json"), logger),
		logger:   logger,
		dataDir:  dataDir,
	}

	a.Roster = NewRosterService(store, registry, logger)
	a.Project = NewProjectService(store, registry, a.Roster, logger)
	a.Tabs = NewTabController(store, registry, logger)

	prober := probe.NewProber(probe.NewClient(logger), logger)
	runner := probe.NewRunner(prober, store, logger)
	a.Probes = NewProbeService(prober, runner, a.Roster, registry, nil, logger)

	a.children = []any{a.Project, a.Tabs, a.Roster, a.Probes}
	return a
}

// Initialize loads everything in a fixed order: settings, persisted
// state, store seed, middleware, event groups, then the initialized
// flag. Calling it again is a logged no-op.
func (a *App) Initialize(ctx context.Context) error {
	if a.initialized {
		a.logger.Info("initialize called twice; ignoring")
		return nil
	}

	if err := a.Settings.Load(); err != nil {
		return err
	}
	a.Probes.SetParallelism(a.Settings.Get().ProbeParallelism)

	persisted, err := a.States.Load()
	if err != nil {
		return err
	}

	// Seed before middleware: loading saved state is not an edit.
	a.Store.BatchUpdate(map[state.Path]any{
		state.ConfigProviders: persisted.Providers,
		state.ConfigModels:    persisted.Models,
	}, state.WithSource("init"))

	a.Store.Use(state.LoggingMiddleware(a.logger))
	a.flusher = storage.NewFlusher(2*time.Second, a.saveState, a.logger)
	a.Store.Use(a.autosaveMiddleware())

	if history, err := storage.OpenHistory(filepath.Join(a.dataDir, "history.db")); err != nil {
		a.logger.Warn("probe history unavailable", "error", err)
	} else {
		a.History = history
		a.Probes.history = history
	}

	a.group = a.Registry.Group("app")
	a.bindEvents()

	if persisted.ProjectPath != "" {
		if err := a.Project.Open(persisted.ProjectPath); err != nil {
			// A project that moved or broke since last run is a
			// notification, not a startup failure.
			a.logger.Warn("could not reopen last project", "path", persisted.ProjectPath, "error", err)
		}
	}

	a.Store.Set(state.AppInitialized, true, state.WithSource("init"))
	a.initialized = true
	return nil
}

// Initialized reports whether Initialize has completed.
func (a *App) Initialized() bool { return a.initialized }

// autosaveMiddleware triggers a debounced state save on every write
// under config. It never vetoes; persistence problems surface from the
// flusher's own logging, not by blocking edits.
func (a *App) autosaveMiddleware() state.Middleware {
	return func(action *state.Action) *state.Action {
		if strings.HasPrefix(action.Path.String(), "config.") {
			a.flusher.Trigger()
		}
		return action
	}
}

// bindEvents registers the app controller's own listeners through its
// group so Destroy can drop them all at once.
func (a *App) bindEvents() {
	a.group.Add(events.Target("app.project"), events.ProjectModifiedEvent, func(e *events.Event) error {
		a.notify("Project config changed on disk. Reload or save to resolve.", "warning")
		return nil
	})
	a.group.Add(events.Target("app.roster"), events.ProviderTestedEvent, func(e *events.Event) error {
		payload, ok := e.Detail.(events.ProviderTestedPayload)
		if !ok {
			return nil
		}
		kind := "success"
		if !payload.Valid {
			kind = "error"
		}
		a.notify(payload.Message, kind)
		return nil
	})
}

// notify appends a notification for the status line.
func (a *App) notify(message, kind string) {
	existing, _ := a.Store.Get(state.UINotifications).([]Notification)
	a.Store.Set(state.UINotifications, append(existing, Notification{
		Message: message,
		Kind:    kind,
		At:      time.Now(),
	}), state.WithSource("app"))
}

// Notification is one status line entry.
type Notification struct {
	Message string
	Kind    string // "info", "warning", "error", "success"
	At      time.Time
}

// saveState snapshots the roster-relevant state into the state file.
func (a *App) saveState() error {
	persisted, err := a.States.Load()
	if err != nil {
		// A corrupt or future-versioned file on disk must not be
		// clobbered by autosave; give up loudly.
		return err
	}
	persisted.Providers = a.Roster.Providers()
	persisted.Models = a.Roster.Models()
	persisted.ProjectPath = a.Project.Path()
	if persisted.ProjectPath != "" {
		persisted.RememberProject(persisted.ProjectPath)
	}
	return a.States.Save(persisted)
}

// Destroy tears the app down: event group, children, flusher, history.
// A failing child is logged and skipped; teardown always finishes.
// After Destroy the app reports uninitialized and can be initialized
// again.
func (a *App) Destroy() {
	if a.group != nil {
		a.group.RemoveAll()
		a.group = nil
	}

	for _, child := range a.children {
		d, ok := child.(Destroyer)
		if !ok {
			continue
		}
		func() {
			defer func() {
				if r := recover(); r != nil {
					a.logger.Error("child destroy panicked", "panic", r)
				}
			}()
			d.Destroy()
		}()
	}

	if a.flusher != nil {
		a.flusher.Close()
		if err := a.saveState(); err != nil {
			a.logger.Error("final state save failed", "error", err)
		}
		a.flusher = nil
	}
	if a.History != nil {
		a.History.Close()
		a.History = nil
		a.Probes.history = nil
	}

	a.Store.Set(state.AppInitialized, false, state.WithSource("app"))
	a.initialized = false
}
