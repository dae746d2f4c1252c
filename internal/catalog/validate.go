package catalog

import "fmt"

// ValidationResult reports the outcome of a static entity check.
// Errors are human-readable field messages; nothing here panics.
type ValidationResult struct {
	Valid  bool     `json:"isValid"`
	Errors []string `json:"errors"`
}

func (r *ValidationResult) addError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) finish() ValidationResult {
	r.Valid = len(r.Errors) == 0
	return *r
}

// ValidateProvider runs the static rule checks for a provider. It never
// performs network I/O; connectivity is the prober's job.
func ValidateProvider(p Provider) ValidationResult {
	var res ValidationResult
	if p.Name == "" {
		res.addError("provider name is required")
	}
	if p.Endpoint == "" {
		res.addError("provider endpoint is required")
	}
	if p.Type == "" {
		res.addError("provider type is required")
	} else if !p.Type.Valid() {
		res.addError("unknown provider type %q", p.Type)
	}
	if p.Type.RequiresAPIKey() && p.Type != "" && p.APIKey == "" {
		res.addError("API key is required for %s providers", p.Type)
	}
	return res.finish()
}

// ValidateModel runs the static rule checks for a model. The provider
// list is consulted for the providerId reference; referential integrity
// is advisory, so a dangling reference is an error message, not a panic.
func ValidateModel(m Model, providers []Provider) ValidationResult {
	var res ValidationResult
	if m.ModelID == "" {
		res.addError("model id is required")
	}
	if m.Name == "" {
		res.addError("model name is required")
	}
	if m.ProviderID == "" {
		res.addError("model provider is required")
	} else if _, ok := ProviderByID(providers, m.ProviderID); !ok {
		res.addError("model %q references unknown provider %q", m.ModelID, m.ProviderID)
	}
	if len(m.AllowedRoles) == 0 {
		res.addError("model %q has no allowed roles", m.ModelID)
	}
	for _, role := range m.AllowedRoles {
		if !role.Valid() {
			res.addError("model %q has unknown role %q", m.ModelID, role)
		}
	}
	return res.finish()
}
