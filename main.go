// Package main is the entry point for the roster application.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea/v2"

	"github.com/billie-coop/roster/internal/app"
	"github.com/billie-coop/roster/internal/config"
	"github.com/billie-coop/roster/internal/tui"
)

func main() {
	var (
		dataDir = flag.String("data-dir", "", "data directory (default ~/.roster)")
		project = flag.String("project", "", "Task Master project to open at startup")
		debug   = flag.Bool("debug", false, "write debug logs to <data-dir>/debug.log")
	)
	flag.Parse()

	if *dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "cannot determine home directory:", err)
			os.Exit(1)
		}
		*dataDir = filepath.Join(home, ".roster")
	}

	// Settings are read once up front for the logger and theme; the
	// app reloads them during Initialize.
	settings := config.NewManager(*dataDir)
	if err := settings.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "load settings:", err)
		os.Exit(1)
	}

	logger, closeLog, err := newLogger(*dataDir, *debug || settings.Get().Debug)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closeLog()

	application := app.New(*dataDir, logger)
	if err := application.Initialize(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "initialize:", err)
		os.Exit(1)
	}
	defer application.Destroy()

	// An explicit -project wins over the remembered one; the default
	// from settings fills in when nothing else is open.
	switch {
	case *project != "":
		if err := application.Project.Open(*project); err != nil {
			fmt.Fprintln(os.Stderr, "open project:", err)
			os.Exit(1)
		}
	case application.Project.Path() == "" && settings.Get().DefaultProject != "":
		if err := application.Project.Open(settings.Get().DefaultProject); err != nil {
			logger.Warn("could not open default project", "error", err)
		}
	}

	model := tui.New(application, settings.Get().Theme, logger)
	defer model.Destroy()

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// newLogger builds the process logger. The TUI owns the terminal, so
// logs go to a file when debugging and nowhere otherwise.
func newLogger(dataDir string, debug bool) (*slog.Logger, func(), error) {
	if !debug {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), func() {}, nil
	}

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create data directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dataDir, "debug.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open debug log: %w", err)
	}
	logger := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, func() { f.Close() }, nil
}
