package ingest

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/billie-coop/roster/internal/catalog"
)

// CodexAdapter reads Codex's config.toml. Its model_providers tables
// describe OpenAI-compatible endpoints with the API key named as an
// environment variable.
type CodexAdapter struct {
	path string
}

// NewCodexAdapter creates an adapter over the given config file.
func NewCodexAdapter(path string) *CodexAdapter {
	return &CodexAdapter{path: path}
}

// Name implements Adapter.
func (a *CodexAdapter) Name() string { return "codex" }

type codexProvider struct {
	Name    string `toml:"name"`
	BaseURL string `toml:"base_url"`
	EnvKey  string `toml:"env_key"`
}

// Scan implements Adapter. Providers without a base URL are skipped;
// an env_key that resolves to nothing still yields a keyless proposal
// the user can finish by hand.
func (a *CodexAdapter) Scan() ([]Proposal, error) {
	data, err := os.ReadFile(a.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read codex config: %w", err)
	}

	var cfg struct {
		ModelProviders map[string]codexProvider `toml:"model_providers"`
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse codex config: %w", err)
	}

	var out []Proposal
	for key, cp := range cfg.ModelProviders {
		if cp.BaseURL == "" {
			continue
		}
		name := cp.Name
		if name == "" {
			name = key
		}
		out = append(out, Proposal{
			Provider: catalog.Provider{
				ID:       catalog.NewID(),
				Name:     name,
				Endpoint: cp.BaseURL,
				Type:     catalog.KindOpenAI,
				APIKey:   os.Getenv(cp.EnvKey),
			},
			Source: a.path,
		})
	}
	return out, nil
}
