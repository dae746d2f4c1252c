// Package catalog defines the provider and model entities the rest of
// the application works with, plus the builtin registry of known models.
package catalog

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Role is a task class a model may serve.
type Role string

const (
	RoleMain     Role = "main"
	RoleFallback Role = "fallback"
	RoleResearch Role = "research"
)

// Roles returns every role in canonical order.
func Roles() []Role {
	return []Role{RoleMain, RoleFallback, RoleResearch}
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleMain, RoleFallback, RoleResearch:
		return true
	}
	return false
}

// Kind identifies a provider's protocol family.
type Kind string

const (
	KindOpenAI    Kind = "openai-compatible"
	KindAnthropic Kind = "anthropic-compatible"
	KindGoogle    Kind = "google-compatible"
	KindCustom    Kind = "custom"
)

// Kinds returns every provider kind in canonical order.
func Kinds() []Kind {
	return []Kind{KindOpenAI, KindAnthropic, KindGoogle, KindCustom}
}

// Valid reports whether k is a known provider kind.
func (k Kind) Valid() bool {
	switch k {
	case KindOpenAI, KindAnthropic, KindGoogle, KindCustom:
		return true
	}
	return false
}

// RequiresAPIKey reports whether providers of this kind need a key
// before they can be considered valid. Custom endpoints are assumed
// unauthenticated until proven otherwise.
func (k Kind) RequiresAPIKey() bool {
	return k != KindCustom
}

// Provider is a named external AI API endpoint configuration.
type Provider struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Endpoint string `json:"endpoint"`
	Type     Kind   `json:"type"`
	APIKey   string `json:"apiKey"`
	IsValid  bool   `json:"isValid"`
}

// Model is a named AI model bound to a provider and tagged with the
// roles it may serve. SweScore stays a json.Number so the value written
// back out is the exact text that came in.
type Model struct {
	ID           string      `json:"id"`
	ModelID      string      `json:"modelId"`
	Name         string      `json:"name"`
	ProviderID   string      `json:"providerId"`
	AllowedRoles []Role      `json:"allowedRoles"`
	MaxTokens    int64       `json:"maxTokens,omitempty"`
	SweScore     json.Number `json:"sweScore,omitempty"`
}

// HasRole reports whether the model is allowed to serve r.
func (m Model) HasRole(r Role) bool {
	for _, have := range m.AllowedRoles {
		if have == r {
			return true
		}
	}
	return false
}

// NewID returns a fresh unique identifier for a provider or model.
func NewID() string {
	return uuid.New().String()
}

// ProviderByID finds a provider in the list by id.
func ProviderByID(providers []Provider, id string) (Provider, bool) {
	for _, p := range providers {
		if p.ID == id {
			return p, true
		}
	}
	return Provider{}, false
}

// ModelByID finds a model in the list by id.
func ModelByID(models []Model, id string) (Model, bool) {
	for _, m := range models {
		if m.ID == id {
			return m, true
		}
	}
	return Model{}, false
}
