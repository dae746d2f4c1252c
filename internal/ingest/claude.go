package ingest

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/billie-coop/roster/internal/catalog"
)

// ClaudeAdapter reads Claude's settings.json. The env block there can
// point the tool at an alternate Anthropic-compatible gateway; that
// pair of values is a ready-made provider.
type ClaudeAdapter struct {
	path string
}

// NewClaudeAdapter creates an adapter over the given settings file.
func NewClaudeAdapter(path string) *ClaudeAdapter {
	return &ClaudeAdapter{path: path}
}

// Name implements Adapter.
func (a *ClaudeAdapter) Name() string { return "claude" }

// Scan implements Adapter. A missing file means nothing to propose.
func (a *ClaudeAdapter) Scan() ([]Proposal, error) {
	data, err := os.ReadFile(a.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read claude settings: %w", err)
	}

	var settings struct {
		Env map[string]string `json:"env"`
	}
	if err := json.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parse claude settings: %w", err)
	}

	baseURL := settings.Env["ANTHROPIC_BASE_URL"]
	if baseURL == "" {
		return nil, nil
	}
	apiKey := settings.Env["ANTHROPIC_AUTH_TOKEN"]
	if apiKey == "" {
		apiKey = settings.Env["ANTHROPIC_API_KEY"]
	}

	return []Proposal{{
		Provider: catalog.Provider{
			ID:       catalog.NewID(),
			Name:     "Claude gateway",
			Endpoint: baseURL,
			Type:     catalog.KindAnthropic,
			APIKey:   apiKey,
		},
		Source: a.path,
	}}, nil
}
