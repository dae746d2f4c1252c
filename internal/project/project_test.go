package project

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/billie-coop/roster/internal/catalog"
	"github.com/billie-coop/roster/internal/taskmaster"
)

func newProjectDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".taskmaster"), 0o755); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestValidate(t *testing.T) {
	dir := newProjectDir(t)
	if err := Validate(dir); err != nil {
		t.Errorf("Validate(%q) = %v, want nil", dir, err)
	}

	bare := t.TempDir()
	if err := Validate(bare); !errors.Is(err, ErrNotTaskMasterProject) {
		t.Errorf("Validate(bare dir) = %v, want ErrNotTaskMasterProject", err)
	}

	if err := Validate(filepath.Join(bare, "missing")); err == nil {
		t.Error("Validate(missing dir) = nil, want error")
	}
}

func TestReadConfigMissingFile(t *testing.T) {
	dir := newProjectDir(t)
	cfg, err := ReadConfig(dir)
	if err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}
	if len(cfg.Providers) != 0 || len(cfg.Models.Main) != 0 {
		t.Errorf("missing file should read as empty document, got %+v", cfg)
	}
}

func TestWriteConfigPreservesUnknownSections(t *testing.T) {
	dir := newProjectDir(t)
	existing := `{
		"global": {"logLevel": "info", "projectName": "demo"},
		"models": {"main": [], "fallback": [], "research": []},
		"providers": {}
	}`
	if err := os.WriteFile(ConfigPath(dir), []byte(existing), 0o644); err != nil {
		t.Fatal(err)
	}

	providers := []catalog.Provider{{
		ID: "p1", Name: "Local", Endpoint: "http://localhost:1234",
		Type: catalog.KindCustom,
	}}
	models := []catalog.Model{{
		ID: "m1", ModelID: "llama", Name: "Llama", ProviderID: "p1",
		AllowedRoles: []catalog.Role{catalog.RoleMain},
		SweScore:     json.Number("33.7"),
	}}

	if err := WriteConfig(dir, taskmaster.ToConfig(providers, models)); err != nil {
		t.Fatalf("WriteConfig() error = %v", err)
	}

	data, err := os.ReadFile(ConfigPath(dir))
	if err != nil {
		t.Fatal(err)
	}
	if got := gjson.GetBytes(data, "global.logLevel").String(); got != "info" {
		t.Errorf("global.logLevel = %q; unmodeled section was not preserved", got)
	}
	if got := gjson.GetBytes(data, "models.main.0.modelId").String(); got != "llama" {
		t.Errorf("models.main[0].modelId = %q, want llama", got)
	}
	if got := gjson.GetBytes(data, "models.main.0.sweScore").Raw; got != "33.7" {
		t.Errorf("sweScore emitted as %s, want 33.7 byte-for-byte", got)
	}
	if got := gjson.GetBytes(data, "providers.p1.endpoint").String(); got != "http://localhost:1234" {
		t.Errorf("providers.p1.endpoint = %q", got)
	}
}

func TestWriteConfigBacksUpPrevious(t *testing.T) {
	dir := newProjectDir(t)
	if err := os.WriteFile(ConfigPath(dir), []byte(`{"keep":"me"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := WriteConfig(dir, taskmaster.ToConfig(nil, nil)); err != nil {
		t.Fatalf("WriteConfig() error = %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(dir, ".taskmaster"))
	if err != nil {
		t.Fatal(err)
	}
	var foundBackup bool
	for _, e := range entries {
		if strings.Contains(e.Name(), ".backup-") {
			foundBackup = true
		}
	}
	if !foundBackup {
		t.Error("no backup file written before overwriting config")
	}
}

func TestWriteConfigRefusesInvalidJSON(t *testing.T) {
	dir := newProjectDir(t)
	if err := os.WriteFile(ConfigPath(dir), []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := WriteConfig(dir, taskmaster.ToConfig(nil, nil)); err == nil {
		t.Error("WriteConfig() over invalid JSON succeeded; should refuse")
	}
}

func TestReadWriteRoundTrip(t *testing.T) {
	dir := newProjectDir(t)
	providers := []catalog.Provider{{
		ID: "p1", Name: "API", Endpoint: "https://api.example.com",
		Type: catalog.KindOpenAI, APIKey: "sk-1", IsValid: true,
	}}
	models := []catalog.Model{{
		ID: "m1", ModelID: "gpt", Name: "GPT", ProviderID: "p1",
		AllowedRoles: []catalog.Role{catalog.RoleMain, catalog.RoleResearch},
		MaxTokens:    128000,
		SweScore:     json.Number("54.6"),
	}}

	if err := WriteConfig(dir, taskmaster.ToConfig(providers, models)); err != nil {
		t.Fatalf("WriteConfig() error = %v", err)
	}
	cfg, err := ReadConfig(dir)
	if err != nil {
		t.Fatalf("ReadConfig() error = %v", err)
	}

	gotProviders, gotModels, report := taskmaster.FromConfig(cfg)
	if !report.Empty() {
		t.Errorf("round trip produced report entries: %v", report.Errors)
	}
	if len(gotProviders) != 1 || gotProviders[0].APIKey != "sk-1" {
		t.Errorf("providers = %+v, want the original back", gotProviders)
	}
	if len(gotModels) != 1 {
		t.Fatalf("models = %+v, want one model", gotModels)
	}
	m := gotModels[0]
	if m.SweScore != json.Number("54.6") || m.MaxTokens != 128000 {
		t.Errorf("numeric fields drifted: %+v", m)
	}
	if len(m.AllowedRoles) != 2 {
		t.Errorf("AllowedRoles = %v, want main and research", m.AllowedRoles)
	}
}
