package app

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/atotto/clipboard"

	"github.com/billie-coop/roster/internal/events"
	"github.com/billie-coop/roster/internal/project"
	"github.com/billie-coop/roster/internal/state"
	"github.com/billie-coop/roster/internal/taskmaster"
)

// ProjectService connects the roster to a Task Master project on disk:
// open, load, save, and watch for edits made behind our back.
type ProjectService struct {
	store    *state.Store
	registry *events.Registry
	roster   *RosterService
	logger   *slog.Logger

	watcher *project.Watcher
}

// NewProjectService creates the service.
func NewProjectService(store *state.Store, registry *events.Registry, roster *RosterService, logger *slog.Logger) *ProjectService {
	return &ProjectService{
		store:    store,
		registry: registry,
		roster:   roster,
		logger:   logger,
	}
}

// Path returns the current project path, empty when none is open.
func (s *ProjectService) Path() string {
	v, _ := s.store.Get(state.AppProjectPath).(string)
	return v
}

// Open validates and switches to a project directory, loading its
// config into the roster and starting the external-edit watcher.
func (s *ProjectService) Open(path string) error {
	if err := project.Validate(path); err != nil {
		s.store.BatchUpdate(map[state.Path]any{
			state.AppProjectPath:  path,
			state.AppProjectValid: false,
		}, state.WithSource("project"))
		return err
	}

	s.stopWatcher()
	s.store.BatchUpdate(map[state.Path]any{
		state.AppProjectPath:  path,
		state.AppProjectValid: true,
	}, state.WithSource("project"))

	if err := s.Load(); err != nil {
		return err
	}

	w, err := project.Watch(path, s.onExternalEdit, s.logger)
	if err != nil {
		// The project still works without a watcher; external edits
		// just go unnoticed until the next load.
		s.logger.Warn("could not watch project config", "error", err)
	} else {
		s.watcher = w
	}

	s.registry.Dispatch(events.Target("app.project"), events.ProjectLoadedEvent, events.ProjectPayload{Path: path})
	return nil
}

// Load reads the project's config into the roster. Entries the
// document drops are reported as a notification, not an error.
func (s *ProjectService) Load() error {
	cfg, err := project.ReadConfig(s.Path())
	if err != nil {
		return fmt.Errorf("load project config: %w", err)
	}

	providers, models, report := taskmaster.FromConfig(cfg)
	s.roster.Replace(providers, models)
	s.store.Set(state.AppUnsaved, false, state.WithSource("project"))

	if !report.Empty() {
		s.logger.Warn("project config had problems", "count", len(report.Errors))
		s.store.Set(state.UIValidationErrors.Child("project"), report.Errors, state.WithSource("project"))
	} else {
		s.store.ResetPath(state.UIValidationErrors.Child("project"))
	}
	return nil
}

// Save writes the roster into the project's config.json, preserving
// everything in the file the roster does not model.
func (s *ProjectService) Save() error {
	path := s.Path()
	if path == "" {
		return fmt.Errorf("no project is open")
	}
	if valid, _ := s.store.Get(state.AppProjectValid).(bool); !valid {
		return fmt.Errorf("current project directory is not valid")
	}

	cfg := taskmaster.ToConfig(s.roster.Providers(), s.roster.Models())
	if err := project.WriteConfig(path, cfg); err != nil {
		return err
	}

	s.store.BatchUpdate(map[state.Path]any{
		state.AppUnsaved:      false,
		state.ConfigLastSaved: time.Now().Format(time.RFC3339),
	}, state.WithSource("project"))
	s.registry.Dispatch(events.Target("app.project"), events.ConfigChangedEvent, events.ConfigChangedPayload{
		Source:        "save",
		ProviderCount: len(s.roster.Providers()),
		ModelCount:    len(s.roster.Models()),
	})
	return nil
}

// RenderJSON returns the config document as indented JSON, for the
// save tab preview and the clipboard.
func (s *ProjectService) RenderJSON() (string, error) {
	cfg := taskmaster.ToConfig(s.roster.Providers(), s.roster.Models())
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("render config: %w", err)
	}
	return string(data), nil
}

// CopyToClipboard puts the rendered config on the system clipboard.
func (s *ProjectService) CopyToClipboard() error {
	rendered, err := s.RenderJSON()
	if err != nil {
		return err
	}
	if err := clipboard.WriteAll(rendered); err != nil {
		return fmt.Errorf("copy config to clipboard: %w", err)
	}
	return nil
}

// onExternalEdit runs on the watcher goroutine when config.json
// changes under us. The roster is not silently reloaded; the user
// decides whether to take the external version or overwrite it.
func (s *ProjectService) onExternalEdit() {
	s.logger.Info("project config changed externally", "path", s.Path())
	s.registry.Dispatch(events.Target("app.project"), events.ProjectModifiedEvent, events.ProjectPayload{Path: s.Path()})
}

func (s *ProjectService) stopWatcher() {
	if s.watcher != nil {
		s.watcher.Stop()
		s.watcher = nil
	}
}

// Destroy stops the watcher.
func (s *ProjectService) Destroy() {
	s.stopWatcher()
}
