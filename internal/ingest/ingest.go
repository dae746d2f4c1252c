// Package ingest proposes provider defaults scraped from agent config
// files already on the machine. Everything here is best-effort: an
// adapter that finds nothing, or a file it cannot read, yields no
// proposals and no error worth stopping for. Nothing in the
// application depends on ingest succeeding.
package ingest

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/billie-coop/roster/internal/catalog"
)

// Proposal is a provider suggestion with a note about where it came
// from. Proposals are unvalidated; the user confirms before anything
// lands in the roster.
type Proposal struct {
	Provider catalog.Provider
	Source   string
}

// Adapter scrapes one tool's config files.
type Adapter interface {
	// Name identifies the adapter in logs and the UI.
	Name() string
	// Scan returns whatever proposals the adapter could put together.
	Scan() ([]Proposal, error)
}

// ScanAll runs every adapter, logging failures and collecting whatever
// came back. A broken adapter never blocks the others.
func ScanAll(adapters []Adapter, logger *slog.Logger) []Proposal {
	var out []Proposal
	for _, a := range adapters {
		proposals, err := a.Scan()
		if err != nil {
			logger.Debug("ingest adapter failed", "adapter", a.Name(), "error", err)
			continue
		}
		out = append(out, proposals...)
	}
	return out
}

// DefaultAdapters returns the adapters for tools we know how to read,
// rooted at the user's home directory.
func DefaultAdapters() []Adapter {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return []Adapter{
		NewClaudeAdapter(filepath.Join(home, ".claude", "settings.json")),
		NewCodexAdapter(filepath.Join(home, ".codex", "config.toml")),
	}
}
