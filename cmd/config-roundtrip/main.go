// Command config-roundtrip reads a Task Master config.json, runs it
// through FromConfig and back through ToConfig, and reports any drift
// between the two renderings. A clean run means the transformer can
// hold the file without losing information.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/tidwall/gjson"

	"github.com/billie-coop/roster/internal/taskmaster"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: config-roundtrip <config.json>")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	path := flag.Arg(0)
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var cfg taskmaster.Config
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "parse %s: %v\n", path, err)
		os.Exit(1)
	}

	if res := taskmaster.ValidateConfig(&cfg); !res.Valid {
		fmt.Printf("document has %d validation problem(s):\n", len(res.Errors))
		for _, e := range res.Errors {
			fmt.Println("  -", e)
		}
	}

	providers, models, report := taskmaster.FromConfig(&cfg)
	fmt.Printf("parsed %d provider(s), %d model(s)\n", len(providers), len(models))
	if !report.Empty() {
		fmt.Printf("dropped or flagged %d entr(ies):\n", len(report.Errors))
		for _, e := range report.Errors {
			fmt.Println("  -", e)
		}
	}

	rendered, err := json.MarshalIndent(taskmaster.ToConfig(providers, models), "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "render round-tripped config:", err)
		os.Exit(1)
	}

	drift := diffSections(data, rendered)
	if len(drift) == 0 {
		fmt.Println("round-trip is clean: no drift in roster-owned sections")
		return
	}
	fmt.Printf("drift in %d section(s):\n", len(drift))
	for _, d := range drift {
		fmt.Println("  -", d)
	}
	os.Exit(1)
}

// diffSections compares the roster-owned sections of the original and
// round-tripped documents, value-wise rather than byte-wise so key
// order and whitespace do not count as drift.
func diffSections(original, roundTripped []byte) []string {
	sections := []string{
		"models.main", "models.fallback", "models.research",
		"providers",
	}

	var drift []string
	for _, section := range sections {
		before := gjson.GetBytes(original, section)
		after := gjson.GetBytes(roundTripped, section)
		if !jsonEqual(before.Raw, after.Raw) {
			drift = append(drift, section)
		}
	}
	return drift
}

// jsonEqual compares two JSON fragments by decoded value, keeping
// numbers as their literal text so 33.70 and 33.7 stay distinct.
func jsonEqual(a, b string) bool {
	var av, bv any
	da := json.NewDecoder(bytes.NewReader([]byte(a)))
	da.UseNumber()
	db := json.NewDecoder(bytes.NewReader([]byte(b)))
	db.UseNumber()
	if err := da.Decode(&av); err != nil {
		return a == b
	}
	if err := db.Decode(&bv); err != nil {
		return a == b
	}
	return deepEqual(av, bv)
}

func deepEqual(a, b any) bool {
	switch av := a.(type) {
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			if !deepEqual(v, bv[k]) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !deepEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
