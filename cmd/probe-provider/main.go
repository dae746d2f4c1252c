// Command probe-provider runs a single connectivity probe from the
// command line and prints the result as JSON. Useful for checking a
// provider configuration without starting the TUI.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/billie-coop/roster/internal/catalog"
	"github.com/billie-coop/roster/internal/probe"
)

func main() {
	var (
		name     = flag.String("name", "cli-probe", "provider display name")
		endpoint = flag.String("endpoint", "", "provider base endpoint (required)")
		kind     = flag.String("type", string(catalog.KindOpenAI), "provider type: openai-compatible, anthropic-compatible, google-compatible, custom")
		apiKey   = flag.String("key", os.Getenv("PROBE_API_KEY"), "API key (defaults to $PROBE_API_KEY)")
		timeout  = flag.Duration("timeout", 30*time.Second, "overall probe timeout")
		verbose  = flag.Bool("v", false, "log request details to stderr")
	)
	flag.Parse()

	if *endpoint == "" {
		fmt.Fprintln(os.Stderr, "usage: probe-provider -endpoint URL [-type TYPE] [-key KEY]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	logOut := io.Discard
	if *verbose {
		logOut = os.Stderr
	}
	logger := slog.New(slog.NewTextHandler(logOut, nil))

	provider := catalog.Provider{
		ID:       catalog.NewID(),
		Name:     *name,
		Endpoint: *endpoint,
		Type:     catalog.Kind(*kind),
		APIKey:   *apiKey,
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	prober := probe.NewProber(probe.NewClient(logger), logger)
	result := prober.Test(ctx, provider)

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "encode result:", err)
		os.Exit(1)
	}
	fmt.Println(string(out))

	if !result.Valid {
		os.Exit(1)
	}
}
