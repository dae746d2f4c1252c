// Package config handles the roster's own settings file, separate from
// the application state: theme, debug logging, probe parallelism.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Config represents the roster settings.
type Config struct {
	// UI preferences
	Theme string `json:"theme"`
	Debug bool   `json:"debug"`

	// Probe behavior
	ProbeParallelism int `json:"probe_parallelism"`

	// Default project to open when none is remembered
	DefaultProject string `json:"default_project"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Theme:            "roster",
		Debug:            false,
		ProbeParallelism: 4,
	}
}

// Manager handles settings loading and saving.
type Manager struct {
	configPath string
	config     *Config
}

// NewManager creates a settings manager over dir/settings.json.
func NewManager(dir string) *Manager {
	return &Manager{
		configPath: filepath.Join(dir, "settings.json"),
		config:     DefaultConfig(),
	}
}

// Load reads the settings from disk, creating defaults if needed.
func (m *Manager) Load() error {
	if err := os.MkdirAll(filepath.Dir(m.configPath), 0o755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	if _, err := os.Stat(m.configPath); os.IsNotExist(err) {
		return m.Save()
	}

	data, err := os.ReadFile(m.configPath)
	if err != nil {
		return fmt.Errorf("failed to read settings file: %w", err)
	}

	config := *DefaultConfig()
	if err := json.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("failed to parse settings JSON: %w", err)
	}

	config.Theme = expandString(config.Theme)
	config.DefaultProject = expandString(config.DefaultProject)
	if config.ProbeParallelism < 1 {
		config.ProbeParallelism = DefaultConfig().ProbeParallelism
	}

	m.config = &config
	return nil
}

// Save writes the current settings to disk.
func (m *Manager) Save() error {
	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.WriteFile(m.configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	return nil
}

// Get returns the current settings.
func (m *Manager) Get() *Config {
	return m.config
}

// Set updates a settings value by key and saves.
func (m *Manager) Set(key, value string) error {
	switch key {
	case "theme":
		m.config.Theme = value
	case "debug":
		m.config.Debug = value == "true"
	case "default_project":
		m.config.DefaultProject = value
	default:
		return fmt.Errorf("unknown settings key: %s", key)
	}

	return m.Save()
}

// envVarPattern matches $VAR and ${VAR}.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// expandString expands environment variables in a string. An unset
// variable leaves the reference as written.
func expandString(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		var varName string
		if strings.HasPrefix(match, "${") {
			varName = match[2 : len(match)-1]
		} else {
			varName = match[1:]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}
		return match
	})
}
