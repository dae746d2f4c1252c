package app

import (
	"fmt"
	"log/slog"

	"github.com/billie-coop/roster/internal/catalog"
	"github.com/billie-coop/roster/internal/events"
	"github.com/billie-coop/roster/internal/state"
	"github.com/billie-coop/roster/internal/taskmaster"
)

// RosterService owns edits to the provider and model lists. All
// mutations go through the store; every successful edit marks the
// roster unsaved and dispatches config.changed.
type RosterService struct {
	store    *state.Store
	registry *events.Registry
	logger   *slog.Logger
}

// NewRosterService creates the service.
func NewRosterService(store *state.Store, registry *events.Registry, logger *slog.Logger) *RosterService {
	return &RosterService{store: store, registry: registry, logger: logger}
}

// Providers returns the current provider list.
func (s *RosterService) Providers() []catalog.Provider {
	if v, ok := s.store.Get(state.ConfigProviders).([]catalog.Provider); ok {
		return v
	}
	return nil
}

// Models returns the current model list.
func (s *RosterService) Models() []catalog.Model {
	if v, ok := s.store.Get(state.ConfigModels).([]catalog.Model); ok {
		return v
	}
	return nil
}

// AddProvider validates and appends a provider. An empty id gets a
// fresh one; a duplicate id is rejected.
func (s *RosterService) AddProvider(p catalog.Provider) (catalog.Provider, error) {
	if p.ID == "" {
		p.ID = catalog.NewID()
	}
	if res := catalog.ValidateProvider(p); !res.Valid {
		s.setValidationErrors("provider", res.Errors)
		return catalog.Provider{}, fmt.Errorf("provider is invalid: %s", res.Errors[0])
	}
	providers := s.Providers()
	if _, exists := catalog.ProviderByID(providers, p.ID); exists {
		return catalog.Provider{}, fmt.Errorf("provider id %q already exists", p.ID)
	}

	s.setProviders(append(providers, p))
	s.clearValidationErrors("provider")
	return p, nil
}

// UpdateProvider replaces the provider with the same id.
func (s *RosterService) UpdateProvider(p catalog.Provider) error {
	if res := catalog.ValidateProvider(p); !res.Valid {
		s.setValidationErrors("provider", res.Errors)
		return fmt.Errorf("provider is invalid: %s", res.Errors[0])
	}

	providers := s.Providers()
	for i, have := range providers {
		if have.ID == p.ID {
			out := make([]catalog.Provider, len(providers))
			copy(out, providers)
			out[i] = p
			s.setProviders(out)
			s.clearValidationErrors("provider")
			return nil
		}
	}
	return fmt.Errorf("provider %q not found", p.ID)
}

// DeleteProvider removes a provider. Models referencing it stay in the
// roster and show up as validation errors until repointed or deleted;
// silently cascading a delete loses more work than it saves.
func (s *RosterService) DeleteProvider(id string) error {
	providers := s.Providers()
	out := make([]catalog.Provider, 0, len(providers))
	for _, p := range providers {
		if p.ID != id {
			out = append(out, p)
		}
	}
	if len(out) == len(providers) {
		return fmt.Errorf("provider %q not found", id)
	}

	s.setProviders(out)
	s.store.ResetPath(state.TestingResult(id))
	return nil
}

// AddModel validates and appends a model, prefilling numbers from the
// builtin catalog when the model id is known there.
func (s *RosterService) AddModel(m catalog.Model) (catalog.Model, error) {
	if m.ID == "" {
		m.ID = catalog.NewID()
	}
	m = catalog.BuiltinCatalog().Prefill(m)
	if res := catalog.ValidateModel(m, s.Providers()); !res.Valid {
		s.setValidationErrors("model", res.Errors)
		return catalog.Model{}, fmt.Errorf("model is invalid: %s", res.Errors[0])
	}
	models := s.Models()
	if _, exists := catalog.ModelByID(models, m.ID); exists {
		return catalog.Model{}, fmt.Errorf("model id %q already exists", m.ID)
	}

	s.setModels(append(models, m))
	s.clearValidationErrors("model")
	return m, nil
}

// UpdateModel replaces the model with the same id.
func (s *RosterService) UpdateModel(m catalog.Model) error {
	if res := catalog.ValidateModel(m, s.Providers()); !res.Valid {
		s.setValidationErrors("model", res.Errors)
		return fmt.Errorf("model is invalid: %s", res.Errors[0])
	}

	models := s.Models()
	for i, have := range models {
		if have.ID == m.ID {
			out := make([]catalog.Model, len(models))
			copy(out, models)
			out[i] = m
			s.setModels(out)
			s.clearValidationErrors("model")
			return nil
		}
	}
	return fmt.Errorf("model %q not found", m.ID)
}

// DeleteModel removes a model.
func (s *RosterService) DeleteModel(id string) error {
	models := s.Models()
	out := make([]catalog.Model, 0, len(models))
	for _, m := range models {
		if m.ID != id {
			out = append(out, m)
		}
	}
	if len(out) == len(models) {
		return fmt.Errorf("model %q not found", id)
	}

	s.setModels(out)
	return nil
}

// Replace swaps in a whole new roster, used by project loads and YAML
// imports. The incoming lists are taken as-is; validation surfaces
// through Validate, not by refusing the load.
func (s *RosterService) Replace(providers []catalog.Provider, models []catalog.Model) {
	if providers == nil {
		providers = []catalog.Provider{}
	}
	if models == nil {
		models = []catalog.Model{}
	}
	s.store.BatchUpdate(map[state.Path]any{
		state.ConfigProviders: providers,
		state.ConfigModels:    models,
	}, state.WithSource("roster"))
	s.dispatchChanged()
}

// Validate checks the whole roster.
func (s *RosterService) Validate() catalog.ValidationResult {
	return taskmaster.ValidateRoster(s.Providers(), s.Models())
}

func (s *RosterService) setProviders(providers []catalog.Provider) {
	s.store.Set(state.ConfigProviders, providers, state.WithSource("roster"))
	s.dispatchChanged()
}

func (s *RosterService) setModels(models []catalog.Model) {
	s.store.Set(state.ConfigModels, models, state.WithSource("roster"))
	s.dispatchChanged()
}

func (s *RosterService) dispatchChanged() {
	s.store.Set(state.AppUnsaved, true, state.WithSource("roster"))
	s.registry.Dispatch(events.Target("app.roster"), events.ConfigChangedEvent, events.ConfigChangedPayload{
		Source:        "roster",
		ProviderCount: len(s.Providers()),
		ModelCount:    len(s.Models()),
	})
}

func (s *RosterService) setValidationErrors(field string, errs []string) {
	s.store.Set(state.UIValidationErrors.Child(field), errs, state.WithSource("roster"))
}

func (s *RosterService) clearValidationErrors(field string) {
	s.store.ResetPath(state.UIValidationErrors.Child(field))
}
