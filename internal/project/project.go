// Package project handles the Task Master project on disk: locating
// and validating the project directory, reading and writing the
// roster-owned sections of .taskmaster/config.json without disturbing
// anything else in the file, and watching for external edits.
package project

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/billie-coop/roster/internal/taskmaster"
)

// ConfigRelPath is where Task Master keeps its configuration inside a
// project.
const ConfigRelPath = ".taskmaster/config.json"

// ErrNotTaskMasterProject means the directory has no .taskmaster/
// directory and so is not a project we can sync with.
var ErrNotTaskMasterProject = errors.New("directory is not a Task Master project")

// Validate checks that path is a directory containing .taskmaster/.
// The config file itself may be absent; a fresh project gets one on
// first save.
func Validate(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("project path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("project path %q is not a directory", path)
	}

	tmDir := filepath.Join(path, ".taskmaster")
	info, err = os.Stat(tmDir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s has no .taskmaster directory", ErrNotTaskMasterProject, path)
	}
	return nil
}

// ConfigPath returns the config file location for a project.
func ConfigPath(projectPath string) string {
	return filepath.Join(projectPath, ConfigRelPath)
}

// ReadConfig loads the roster-owned sections from the project's
// config.json. A missing file yields an empty document, not an error;
// sections the roster does not model are left on disk untouched.
func ReadConfig(projectPath string) (*taskmaster.Config, error) {
	data, err := os.ReadFile(ConfigPath(projectPath))
	if errors.Is(err, os.ErrNotExist) {
		return taskmaster.ToConfig(nil, nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read project config: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("project config is not valid JSON")
	}

	cfg := taskmaster.ToConfig(nil, nil)
	if models := gjson.GetBytes(data, "models"); models.Exists() {
		var rm taskmaster.RoleModels
		if err := unmarshalNumeric([]byte(models.Raw), &rm); err != nil {
			return nil, fmt.Errorf("parse models section: %w", err)
		}
		cfg.Models = rm
	}
	if providers := gjson.GetBytes(data, "providers"); providers.Exists() {
		creds := map[string]taskmaster.ProviderCreds{}
		if err := unmarshalNumeric([]byte(providers.Raw), &creds); err != nil {
			return nil, fmt.Errorf("parse providers section: %w", err)
		}
		cfg.Providers = creds
	}
	return cfg, nil
}

// WriteConfig replaces the roster-owned sections of the project's
// config.json, preserving every other byte of the document. The
// previous file is backed up first, and the new content lands via
// temp-file rename so a crash never leaves a half-written config.
func WriteConfig(projectPath string, cfg *taskmaster.Config) error {
	path := ConfigPath(projectPath)

	existing, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		existing = []byte("{}\n")
	case err != nil:
		return fmt.Errorf("read project config: %w", err)
	default:
		if !gjson.ValidBytes(existing) {
			return fmt.Errorf("refusing to overwrite invalid JSON at %s; fix or remove it first", path)
		}
		if err := backup(path, existing); err != nil {
			return err
		}
	}

	modelsJSON, err := json.Marshal(cfg.Models)
	if err != nil {
		return fmt.Errorf("marshal models section: %w", err)
	}
	providersJSON, err := json.Marshal(cfg.Providers)
	if err != nil {
		return fmt.Errorf("marshal providers section: %w", err)
	}

	out, err := sjson.SetRawBytes(existing, "models", modelsJSON)
	if err != nil {
		return fmt.Errorf("set models section: %w", err)
	}
	out, err = sjson.SetRawBytes(out, "providers", providersJSON)
	if err != nil {
		return fmt.Errorf("set providers section: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create .taskmaster directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, out, 0o644); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace project config: %w", err)
	}
	return nil
}

// backup copies the current config aside with a timestamp suffix.
func backup(path string, content []byte) error {
	stamp := time.Now().Format("20060102-150405")
	backupPath := fmt.Sprintf("%s.backup-%s", path, stamp)
	if err := os.WriteFile(backupPath, content, 0o644); err != nil {
		return fmt.Errorf("back up project config: %w", err)
	}
	return nil
}

// unmarshalNumeric decodes JSON keeping numbers as json.Number, so
// scores and token limits survive a round trip bit-for-bit.
func unmarshalNumeric(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}
