package storage

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/billie-coop/roster/internal/catalog"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "state.json"), testLogger())

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Version != SchemaVersion {
		t.Errorf("Version = %d, want %d", got.Version, SchemaVersion)
	}
	if got.Providers == nil || got.Models == nil || got.RecentProjects == nil {
		t.Error("default state has nil collections")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "state.json"), testLogger())

	in := DefaultState()
	in.Providers = []catalog.Provider{{
		ID:       "p1",
		Name:     "Local",
		Endpoint: "http://localhost:1234",
		Type:     catalog.KindCustom,
	}}
	in.Models = []catalog.Model{{
		ID:           "m1",
		ModelID:      "test-model",
		Name:         "Test",
		ProviderID:   "p1",
		AllowedRoles: []catalog.Role{catalog.RoleMain},
		MaxTokens:    8192,
		SweScore:     json.Number("42.5"),
	}}
	in.ProjectPath = "/tmp/project"

	if err := s.Save(in); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	out, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(out.Providers) != 1 || out.Providers[0].ID != "p1" {
		t.Errorf("Providers = %+v, want the saved provider", out.Providers)
	}
	if len(out.Models) != 1 || out.Models[0].SweScore != json.Number("42.5") {
		t.Errorf("Models = %+v, want the saved model with exact score", out.Models)
	}
	if out.ProjectPath != "/tmp/project" {
		t.Errorf("ProjectPath = %q, want /tmp/project", out.ProjectPath)
	}
	if out.SavedAt.IsZero() {
		t.Error("SavedAt not stamped")
	}
}

func TestLoadMigratesLegacyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	legacy := `{
		"aiProviders": [{"id":"p1","name":"Old","endpoint":"https://x","type":"openai-compatible","apiKey":"k"}],
		"aiModels": [{"id":"m1","modelId":"gpt","name":"GPT","providerId":"p1","allowedRoles":["main"]}],
		"project_path": "/old/project"
	}`
	if err := os.WriteFile(path, []byte(legacy), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := NewStore(path, testLogger()).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Version != SchemaVersion {
		t.Errorf("Version = %d, want %d", got.Version, SchemaVersion)
	}
	if len(got.Providers) != 1 || got.Providers[0].Name != "Old" {
		t.Errorf("Providers = %+v, want the legacy provider carried forward", got.Providers)
	}
	if len(got.Models) != 1 || got.Models[0].ModelID != "gpt" {
		t.Errorf("Models = %+v, want the legacy model carried forward", got.Models)
	}
	if got.ProjectPath != "/old/project" {
		t.Errorf("ProjectPath = %q, want /old/project", got.ProjectPath)
	}
}

func TestLoadRejectsNewerVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte(`{"version": 99}`), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := NewStore(path, testLogger()).Load()
	if !errors.Is(err, ErrUnknownVersion) {
		t.Errorf("Load() error = %v, want ErrUnknownVersion", err)
	}
}

func TestLoadCorruptFileIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := NewStore(path, testLogger()).Load(); err == nil {
		t.Error("Load() of corrupt file succeeded; silent data loss")
	}
}

func TestRememberProject(t *testing.T) {
	s := DefaultState()
	s.RememberProject("/a")
	s.RememberProject("/b")
	s.RememberProject("/a")

	want := []string{"/a", "/b"}
	if len(s.RecentProjects) != len(want) {
		t.Fatalf("RecentProjects = %v, want %v", s.RecentProjects, want)
	}
	for i := range want {
		if s.RecentProjects[i] != want[i] {
			t.Errorf("RecentProjects[%d] = %q, want %q", i, s.RecentProjects[i], want[i])
		}
	}

	for i := 0; i < 20; i++ {
		s.RememberProject(filepath.Join("/proj", string(rune('a'+i))))
	}
	if len(s.RecentProjects) != maxRecentProjects {
		t.Errorf("recent list grew to %d, cap is %d", len(s.RecentProjects), maxRecentProjects)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.yaml")
	providers := []catalog.Provider{{
		ID: "p1", Name: "Named", Endpoint: "https://api.example.com",
		Type: catalog.KindOpenAI, APIKey: "secret",
	}}
	models := []catalog.Model{{
		ID: "m1", ModelID: "gpt", Name: "GPT", ProviderID: "p1",
		AllowedRoles: []catalog.Role{catalog.RoleMain, catalog.RoleFallback},
	}}

	if err := ExportYAML(path, providers, models); err != nil {
		t.Fatalf("ExportYAML() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) == 0 {
		t.Fatal("export wrote nothing")
	}
	if strings.Contains(string(data), "secret") {
		t.Error("export leaked an API key")
	}

	gotProviders, gotModels, err := ImportYAML(path)
	if err != nil {
		t.Fatalf("ImportYAML() error = %v", err)
	}
	if len(gotProviders) != 1 || gotProviders[0].APIKey != "" {
		t.Errorf("imported providers = %+v, want one keyless provider", gotProviders)
	}
	if len(gotModels) != 1 || len(gotModels[0].AllowedRoles) != 2 {
		t.Errorf("imported models = %+v, want roles preserved", gotModels)
	}
}
