// Package taskmaster converts between the roster's provider/model
// representation and the Task Master project configuration document.
// The two directions are pure functions and together satisfy a
// round-trip law: transforming a consistent roster out and back yields
// the same providers and models, matched by id.
package taskmaster

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/billie-coop/roster/internal/catalog"
)

// Config is the roster-owned portion of .taskmaster/config.json. Field
// names are a contract with the Task Master tooling and must survive
// marshalling exactly as written here.
type Config struct {
	Models    RoleModels               `json:"models"`
	Providers map[string]ProviderCreds `json:"providers"`
}

// RoleModels indexes model entries by the role they may serve. A model
// allowed several roles appears once under each.
type RoleModels struct {
	Main     []ModelEntry `json:"main"`
	Fallback []ModelEntry `json:"fallback"`
	Research []ModelEntry `json:"research"`
}

// ForRole returns the entry list for a role.
func (rm *RoleModels) ForRole(r catalog.Role) []ModelEntry {
	switch r {
	case catalog.RoleMain:
		return rm.Main
	case catalog.RoleFallback:
		return rm.Fallback
	case catalog.RoleResearch:
		return rm.Research
	}
	return nil
}

func (rm *RoleModels) append(r catalog.Role, e ModelEntry) {
	switch r {
	case catalog.RoleMain:
		rm.Main = append(rm.Main, e)
	case catalog.RoleFallback:
		rm.Fallback = append(rm.Fallback, e)
	case catalog.RoleResearch:
		rm.Research = append(rm.Research, e)
	}
}

// ModelEntry is one model under one role.
type ModelEntry struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Provider  string      `json:"provider"`
	ModelID   string      `json:"modelId"`
	MaxTokens int64       `json:"maxTokens,omitempty"`
	SweScore  json.Number `json:"sweScore,omitempty"`
}

// ProviderCreds is the provider metadata stored alongside the model
// registry; it carries everything needed to rebuild the provider list
// with no out-of-band state.
type ProviderCreds struct {
	Name     string       `json:"name"`
	Endpoint string       `json:"endpoint"`
	Type     catalog.Kind `json:"type"`
	APIKey   string       `json:"apiKey"`
	IsValid  bool         `json:"isValid"`
}

// Report collects the entries a transform had to drop or flag. The
// transform itself never fails; callers inspect the report.
type Report struct {
	Errors []string
}

func (r *Report) addf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Empty reports whether the transform was clean.
func (r *Report) Empty() bool { return len(r.Errors) == 0 }

// ToConfig builds the Task Master document for a roster. Every model
// lands under each role in its AllowedRoles, in roster order; the
// provider section is keyed by provider id.
func ToConfig(providers []catalog.Provider, models []catalog.Model) *Config {
	cfg := &Config{
		Models: RoleModels{
			Main:     []ModelEntry{},
			Fallback: []ModelEntry{},
			Research: []ModelEntry{},
		},
		Providers: make(map[string]ProviderCreds, len(providers)),
	}

	for _, p := range providers {
		cfg.Providers[p.ID] = ProviderCreds{
			Name:     p.Name,
			Endpoint: p.Endpoint,
			Type:     p.Type,
			APIKey:   p.APIKey,
			IsValid:  p.IsValid,
		}
	}

	for _, m := range models {
		entry := ModelEntry{
			ID:        m.ID,
			Name:      m.Name,
			Provider:  m.ProviderID,
			ModelID:   m.ModelID,
			MaxTokens: m.MaxTokens,
			SweScore:  m.SweScore,
		}
		for _, role := range m.AllowedRoles {
			if role.Valid() {
				cfg.Models.append(role, entry)
			}
		}
	}

	return cfg
}

// FromConfig rebuilds the roster from a Task Master document: one
// provider per credential entry, one model per distinct entry id across
// all roles, with role membership collected from where the entries
// appear. Malformed entries are dropped and reported, never fabricated;
// numeric fields pass through untouched. A nil document yields an empty
// roster and a report entry.
func FromConfig(cfg *Config) ([]catalog.Provider, []catalog.Model, *Report) {
	report := &Report{}
	if cfg == nil {
		report.addf("configuration document is missing")
		return []catalog.Provider{}, []catalog.Model{}, report
	}

	providerIDs := make([]string, 0, len(cfg.Providers))
	for id := range cfg.Providers {
		providerIDs = append(providerIDs, id)
	}
	sort.Strings(providerIDs)

	providers := make([]catalog.Provider, 0, len(providerIDs))
	for _, id := range providerIDs {
		creds := cfg.Providers[id]
		providers = append(providers, catalog.Provider{
			ID:       id,
			Name:     creds.Name,
			Endpoint: creds.Endpoint,
			Type:     creds.Type,
			APIKey:   creds.APIKey,
			IsValid:  creds.IsValid,
		})
	}

	var models []catalog.Model
	index := map[string]int{}

	for _, role := range catalog.Roles() {
		for _, entry := range cfg.Models.ForRole(role) {
			id := entry.ID
			if id == "" {
				// Hand-edited documents often omit the internal id;
				// the upstream model id works as a stable stand-in.
				id = entry.ModelID
			}
			if entry.ModelID == "" {
				report.addf("dropped %s model entry with no model id", role)
				continue
			}
			if entry.Provider == "" {
				report.addf("dropped model %q with no provider reference", entry.ModelID)
				continue
			}
			if _, known := cfg.Providers[entry.Provider]; !known {
				report.addf("model %q references unknown provider %q", entry.ModelID, entry.Provider)
			}

			if i, seen := index[id]; seen {
				if !models[i].HasRole(role) {
					models[i].AllowedRoles = append(models[i].AllowedRoles, role)
				}
				continue
			}
			index[id] = len(models)
			models = append(models, catalog.Model{
				ID:           id,
				ModelID:      entry.ModelID,
				Name:         entry.Name,
				ProviderID:   entry.Provider,
				AllowedRoles: []catalog.Role{role},
				MaxTokens:    entry.MaxTokens,
				SweScore:     entry.SweScore,
			})
		}
	}

	if models == nil {
		models = []catalog.Model{}
	}
	return providers, models, report
}
