// Package storage persists the roster between runs: a versioned JSON
// state file with a linear migration chain, a SQLite history of
// connectivity probes, and YAML export/import of the roster itself.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/billie-coop/roster/internal/catalog"
)

// SchemaVersion is the state file format written by this build. Older
// files are migrated on load; newer files are rejected.
const SchemaVersion = 1

// ErrUnknownVersion means the state file was written by a newer build.
var ErrUnknownVersion = errors.New("state file version is newer than this build understands")

// StateFile is everything the roster remembers between runs.
type StateFile struct {
	Version        int                `json:"version"`
	Providers      []catalog.Provider `json:"providers"`
	Models         []catalog.Model    `json:"models"`
	ProjectPath    string             `json:"projectPath"`
	RecentProjects []string           `json:"recentProjects"`
	SavedAt        time.Time          `json:"savedAt"`
}

// DefaultState returns an empty state file at the current version.
func DefaultState() *StateFile {
	return &StateFile{
		Version:        SchemaVersion,
		Providers:      []catalog.Provider{},
		Models:         []catalog.Model{},
		RecentProjects: []string{},
	}
}

// maxRecentProjects caps the recent-projects list.
const maxRecentProjects = 10

// RememberProject puts path at the front of the recent list, dropping
// any earlier occurrence and trimming to the cap.
func (s *StateFile) RememberProject(path string) {
	if path == "" {
		return
	}
	out := make([]string, 0, len(s.RecentProjects)+1)
	out = append(out, path)
	for _, p := range s.RecentProjects {
		if p != path {
			out = append(out, p)
		}
	}
	if len(out) > maxRecentProjects {
		out = out[:maxRecentProjects]
	}
	s.RecentProjects = out
}

// Store reads and writes the state file. Writes are atomic: marshal to
// a temp file in the same directory, then rename over the target.
type Store struct {
	path   string
	logger *slog.Logger
}

// NewStore creates a store over the given file path.
func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Path returns the state file's location.
func (s *Store) Path() string { return s.path }

// Load reads the state file, migrating older versions up to the
// current schema. A missing file yields the default state; a corrupt
// file is an error, not silent data loss.
func (s *Store) Load() (*StateFile, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultState(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse state file: %w", err)
	}

	version := 0
	if v, ok := raw["version"]; ok {
		if err := json.Unmarshal(v, &version); err != nil {
			return nil, fmt.Errorf("parse state file version: %w", err)
		}
	}
	if version > SchemaVersion {
		return nil, fmt.Errorf("%w: file is v%d, this build reads up to v%d",
			ErrUnknownVersion, version, SchemaVersion)
	}

	for version < SchemaVersion {
		raw, err = migrations[version](raw)
		if err != nil {
			return nil, fmt.Errorf("migrate state file from v%d: %w", version, err)
		}
		version++
		s.logger.Info("migrated state file", "to", version)
	}

	migrated, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("remarshal migrated state: %w", err)
	}

	state := DefaultState()
	if err := json.Unmarshal(migrated, state); err != nil {
		return nil, fmt.Errorf("parse state file: %w", err)
	}
	state.Version = SchemaVersion
	if state.Providers == nil {
		state.Providers = []catalog.Provider{}
	}
	if state.Models == nil {
		state.Models = []catalog.Model{}
	}
	if state.RecentProjects == nil {
		state.RecentProjects = []string{}
	}
	return state, nil
}

// Save writes the state file atomically, stamping version and time.
func (s *Store) Save(state *StateFile) error {
	state.Version = SchemaVersion
	state.SavedAt = time.Now()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
