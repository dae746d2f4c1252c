package catalog

import "testing"

func TestBuiltinCatalogLoads(t *testing.T) {
	b := BuiltinCatalog()
	if b == nil {
		t.Fatal("BuiltinCatalog() = nil")
	}
	if len(b.Entries()) == 0 {
		t.Fatal("builtin catalog is empty")
	}
	for _, e := range b.Entries() {
		if e.ModelID == "" || e.Name == "" {
			t.Errorf("entry %+v missing id or name", e)
		}
		if !e.Kind.Valid() {
			t.Errorf("entry %s has unknown kind %q", e.ModelID, e.Kind)
		}
	}
}

func TestBuiltinLookup(t *testing.T) {
	b := BuiltinCatalog()
	e, ok := b.Lookup("gpt-4o")
	if !ok {
		t.Fatal("Lookup(gpt-4o) not found")
	}
	if e.Kind != KindOpenAI {
		t.Errorf("Kind = %q, want %q", e.Kind, KindOpenAI)
	}
	if _, ok := b.Lookup("no-such-model"); ok {
		t.Error("Lookup(no-such-model) found, want miss")
	}
}

func TestBuiltinEntriesSortedByScore(t *testing.T) {
	entries := BuiltinCatalog().Entries()
	for i := 1; i < len(entries); i++ {
		prev, _ := entries[i-1].SweScore.Float64()
		cur, _ := entries[i].SweScore.Float64()
		if cur > prev {
			t.Fatalf("entries not sorted: %s (%v) after %s (%v)",
				entries[i].ModelID, cur, entries[i-1].ModelID, prev)
		}
	}
}

func TestBuiltinSearch(t *testing.T) {
	b := BuiltinCatalog()

	results := b.Search("sonnet")
	if len(results) == 0 {
		t.Fatal("Search(sonnet) returned nothing")
	}
	for _, e := range results {
		if e.Kind != KindAnthropic {
			t.Errorf("Search(sonnet) returned %s of kind %q", e.ModelID, e.Kind)
		}
	}

	if got, want := len(b.Search("")), len(b.Entries()); got != want {
		t.Errorf("Search(\"\") returned %d entries, want %d", got, want)
	}
}

func TestBuiltinPrefill(t *testing.T) {
	b := BuiltinCatalog()

	m := b.Prefill(Model{ID: "m1", ModelID: "gemini-2.5-pro", ProviderID: "p1"})
	if m.Name == "" {
		t.Error("Prefill left Name empty for known model")
	}
	if m.MaxTokens == 0 {
		t.Error("Prefill left MaxTokens zero for known model")
	}
	if m.SweScore == "" {
		t.Error("Prefill left SweScore empty for known model")
	}

	// User-entered values win over catalog numbers.
	m = b.Prefill(Model{ModelID: "gemini-2.5-pro", Name: "My Gemini", MaxTokens: 1000})
	if m.Name != "My Gemini" {
		t.Errorf("Prefill overwrote Name: %q", m.Name)
	}
	if m.MaxTokens != 1000 {
		t.Errorf("Prefill overwrote MaxTokens: %d", m.MaxTokens)
	}

	// Unknown models pass through untouched.
	orig := Model{ModelID: "mystery"}
	if got := b.Prefill(orig); got.Name != "" || got.MaxTokens != 0 {
		t.Errorf("Prefill fabricated data for unknown model: %+v", got)
	}
}
