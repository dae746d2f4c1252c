package ingest

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/billie-coop/roster/internal/catalog"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestClaudeAdapter(t *testing.T) {
	path := writeFile(t, "settings.json", `{
		"env": {
			"ANTHROPIC_BASE_URL": "https://gateway.example.com",
			"ANTHROPIC_AUTH_TOKEN": "tok-1"
		}
	}`)

	proposals, err := NewClaudeAdapter(path).Scan()
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(proposals) != 1 {
		t.Fatalf("got %d proposals, want 1", len(proposals))
	}
	p := proposals[0].Provider
	if p.Endpoint != "https://gateway.example.com" || p.APIKey != "tok-1" {
		t.Errorf("proposal = %+v", p)
	}
	if p.Type != catalog.KindAnthropic {
		t.Errorf("Type = %q, want anthropic-compatible", p.Type)
	}
}

func TestClaudeAdapterNoGateway(t *testing.T) {
	path := writeFile(t, "settings.json", `{"env": {"OTHER": "x"}}`)

	proposals, err := NewClaudeAdapter(path).Scan()
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(proposals) != 0 {
		t.Errorf("got %d proposals from a settings file with no gateway, want 0", len(proposals))
	}
}

func TestClaudeAdapterMissingFile(t *testing.T) {
	proposals, err := NewClaudeAdapter(filepath.Join(t.TempDir(), "nope.json")).Scan()
	if err != nil || len(proposals) != 0 {
		t.Errorf("missing file: proposals = %v, err = %v; want none, nil", proposals, err)
	}
}

func TestCodexAdapter(t *testing.T) {
	t.Setenv("ROSTER_TEST_CODEX_KEY", "ck-1")
	path := writeFile(t, "config.toml", `
[model_providers.local]
name = "Local Server"
base_url = "http://localhost:8080/v1"
env_key = "ROSTER_TEST_CODEX_KEY"

[model_providers.nameless]
base_url = "http://localhost:9090/v1"

[model_providers.broken]
env_key = "UNSET"
`)

	proposals, err := NewCodexAdapter(path).Scan()
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(proposals) != 2 {
		t.Fatalf("got %d proposals, want 2 (the one with no base_url is skipped)", len(proposals))
	}

	byName := map[string]catalog.Provider{}
	for _, p := range proposals {
		byName[p.Provider.Name] = p.Provider
	}
	local, ok := byName["Local Server"]
	if !ok || local.APIKey != "ck-1" || local.Type != catalog.KindOpenAI {
		t.Errorf("local proposal = %+v", local)
	}
	if _, ok := byName["nameless"]; !ok {
		t.Error("provider with no name should fall back to its table key")
	}
}

func TestScanAllToleratesFailingAdapter(t *testing.T) {
	good := writeFile(t, "settings.json", `{
		"env": {"ANTHROPIC_BASE_URL": "https://x.example.com"}
	}`)
	bad := writeFile(t, "config.toml", "= not toml at all")

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	proposals := ScanAll([]Adapter{
		NewCodexAdapter(bad),
		NewClaudeAdapter(good),
	}, logger)

	if len(proposals) != 1 {
		t.Errorf("got %d proposals, want 1; a failing adapter must not block the rest", len(proposals))
	}
}
