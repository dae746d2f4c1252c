package storage

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/billie-coop/roster/internal/catalog"
)

// exportDoc is the YAML shape used for sharing a roster between
// machines. It deliberately excludes API keys; secrets travel some
// other way.
type exportDoc struct {
	Providers []exportProvider `yaml:"providers"`
	Models    []catalog.Model  `yaml:"models"`
}

type exportProvider struct {
	ID       string       `yaml:"id"`
	Name     string       `yaml:"name"`
	Endpoint string       `yaml:"endpoint"`
	Type     catalog.Kind `yaml:"type"`
}

// ExportYAML writes the roster to path as YAML, with API keys
// stripped.
func ExportYAML(path string, providers []catalog.Provider, models []catalog.Model) error {
	doc := exportDoc{
		Providers: make([]exportProvider, 0, len(providers)),
		Models:    models,
	}
	for _, p := range providers {
		doc.Providers = append(doc.Providers, exportProvider{
			ID:       p.ID,
			Name:     p.Name,
			Endpoint: p.Endpoint,
			Type:     p.Type,
		})
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal roster export: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write roster export: %w", err)
	}
	return nil
}

// ImportYAML reads a roster export. Imported providers come back
// keyless and unvalidated; the user supplies credentials afterwards.
func ImportYAML(path string) ([]catalog.Provider, []catalog.Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read roster export: %w", err)
	}

	var doc exportDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("parse roster export: %w", err)
	}

	providers := make([]catalog.Provider, 0, len(doc.Providers))
	for _, p := range doc.Providers {
		providers = append(providers, catalog.Provider{
			ID:       p.ID,
			Name:     p.Name,
			Endpoint: p.Endpoint,
			Type:     p.Type,
		})
	}
	models := doc.Models
	if models == nil {
		models = []catalog.Model{}
	}
	return providers, models, nil
}
