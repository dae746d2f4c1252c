package taskmaster

import (
	"sort"

	"github.com/billie-coop/roster/internal/catalog"
)

// ValidateRoster checks a whole roster: per-entity rules plus the
// cross-entity ones (unique ids, resolvable provider references). An
// empty roster is valid; there is nothing wrong with nothing. Nil
// slices are fine.
func ValidateRoster(providers []catalog.Provider, models []catalog.Model) catalog.ValidationResult {
	var res catalog.ValidationResult

	seenProviders := map[string]bool{}
	for _, p := range providers {
		if p.ID == "" {
			res.Errors = append(res.Errors, "provider with empty id")
		} else if seenProviders[p.ID] {
			res.Errors = append(res.Errors, "duplicate provider id "+p.ID)
		}
		seenProviders[p.ID] = true

		pr := catalog.ValidateProvider(p)
		res.Errors = append(res.Errors, pr.Errors...)
	}

	seenModels := map[string]bool{}
	for _, m := range models {
		if m.ID == "" {
			res.Errors = append(res.Errors, "model with empty id")
		} else if seenModels[m.ID] {
			res.Errors = append(res.Errors, "duplicate model id "+m.ID)
		}
		seenModels[m.ID] = true

		mr := catalog.ValidateModel(m, providers)
		res.Errors = append(res.Errors, mr.Errors...)
	}

	res.Valid = len(res.Errors) == 0
	return res
}

// ValidateConfig checks a Task Master document's shape: entries carry
// their identifying fields, references resolve, and the provider
// section is complete. It never panics, whatever the document looks
// like.
func ValidateConfig(cfg *Config) catalog.ValidationResult {
	var res catalog.ValidationResult
	if cfg == nil {
		res.Errors = append(res.Errors, "configuration document is missing")
		return res
	}

	ids := make([]string, 0, len(cfg.Providers))
	for id := range cfg.Providers {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		creds := cfg.Providers[id]
		if id == "" {
			res.Errors = append(res.Errors, "provider entry with empty id")
		}
		if creds.Name == "" {
			res.Errors = append(res.Errors, "provider "+id+" has no name")
		}
		if creds.Endpoint == "" {
			res.Errors = append(res.Errors, "provider "+id+" has no endpoint")
		}
		if creds.Type == "" {
			res.Errors = append(res.Errors, "provider "+id+" has no type")
		} else if !creds.Type.Valid() {
			res.Errors = append(res.Errors, "provider "+id+" has unknown type "+string(creds.Type))
		}
	}

	for _, role := range catalog.Roles() {
		for _, entry := range cfg.Models.ForRole(role) {
			if entry.ModelID == "" {
				res.Errors = append(res.Errors, "model entry under "+string(role)+" has no model id")
				continue
			}
			if entry.Provider == "" {
				res.Errors = append(res.Errors, "model "+entry.ModelID+" has no provider reference")
			} else if _, ok := cfg.Providers[entry.Provider]; !ok {
				res.Errors = append(res.Errors, "model "+entry.ModelID+" references unknown provider "+entry.Provider)
			}
		}
	}

	res.Valid = len(res.Errors) == 0
	return res
}
