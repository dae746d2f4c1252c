package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/sahilm/fuzzy"
)

// Entry describes a known model in the builtin catalog: the upstream
// model identifier, a display name, the provider family it speaks, and
// the published numbers used to prefill new models.
type Entry struct {
	ModelID   string      `json:"modelId"`
	Name      string      `json:"name"`
	Kind      Kind        `json:"kind"`
	MaxTokens int64       `json:"maxTokens"`
	SweScore  json.Number `json:"sweScore"`
}

// Builtin is the catalog of models shipped with the binary.
type Builtin struct {
	entries []Entry
	byID    map[string]Entry
}

//go:embed models.json
var modelsJSON []byte

// builtin is loaded once at startup; the data is immutable.
var builtin *Builtin

func init() {
	var entries []Entry
	if err := json.Unmarshal(modelsJSON, &entries); err != nil {
		panic(fmt.Sprintf("failed to load builtin model catalog: %v", err))
	}
	byID := make(map[string]Entry, len(entries))
	for _, e := range entries {
		byID[e.ModelID] = e
	}
	builtin = &Builtin{entries: entries, byID: byID}
}

// BuiltinCatalog returns the catalog of known models.
func BuiltinCatalog() *Builtin {
	return builtin
}

// Lookup returns the catalog entry for a model identifier.
func (b *Builtin) Lookup(modelID string) (Entry, bool) {
	e, ok := b.byID[modelID]
	return e, ok
}

// Entries returns all catalog entries sorted by descending SWE score,
// ties broken by model id.
func (b *Builtin) Entries() []Entry {
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	sort.SliceStable(out, func(i, j int) bool {
		si, _ := out[i].SweScore.Float64()
		sj, _ := out[j].SweScore.Float64()
		if si != sj {
			return si > sj
		}
		return out[i].ModelID < out[j].ModelID
	})
	return out
}

// ForKind returns the entries whose provider family matches k, in the
// same order as Entries.
func (b *Builtin) ForKind(k Kind) []Entry {
	var out []Entry
	for _, e := range b.Entries() {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}

// searchSource adapts the entry list for fuzzy matching over both the
// model id and the display name.
type searchSource []Entry

func (s searchSource) String(i int) string { return s[i].ModelID + " " + s[i].Name }
func (s searchSource) Len() int            { return len(s) }

// Search returns catalog entries fuzzy-matched against query, best
// matches first. An empty query returns every entry.
func (b *Builtin) Search(query string) []Entry {
	if query == "" {
		return b.Entries()
	}
	matches := fuzzy.FindFrom(query, searchSource(b.entries))
	out := make([]Entry, 0, len(matches))
	for _, m := range matches {
		out = append(out, b.entries[m.Index])
	}
	return out
}

// Prefill copies catalog numbers into a model when the user picked a
// known model id and left the tuning fields empty.
func (b *Builtin) Prefill(m Model) Model {
	e, ok := b.Lookup(m.ModelID)
	if !ok {
		return m
	}
	if m.Name == "" {
		m.Name = e.Name
	}
	if m.MaxTokens == 0 {
		m.MaxTokens = e.MaxTokens
	}
	if m.SweScore == "" {
		m.SweScore = e.SweScore
	}
	return m
}
