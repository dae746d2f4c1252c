// Package config provides simple configuration management for roster.
//
// This package implements a minimal settings system stored in the
// user's roster directory, separate from the application state file:
// settings describe how the tool behaves, state describes what it
// manages.
//
// File layout:
//
//	~/.roster/
//	├── settings.json      # Tool settings (this package)
//	├── state.json         # Roster state (internal/storage)
//	├── history.db         # Probe history (internal/storage)
//	└── debug.log          # Debug log, when enabled
//
// The settings.json file contains simple key-value settings:
//
//	{
//	  "theme": "fire",
//	  "debug": false,
//	  "probe_parallelism": 4,
//	  "default_project": "${ROSTER_PROJECT}"
//	}
//
// Environment Variable Support:
//
// String values can reference environment variables using $VAR or
// ${VAR} syntax; unresolved references are left as written.
//
// Example usage:
//
//	manager := config.NewManager(rosterDir)
//	if err := manager.Load(); err != nil {
//		log.Fatal(err)
//	}
//
//	cfg := manager.Get()
//	fmt.Println("Theme:", cfg.Theme)
//
//	// Update a setting
//	manager.Set("theme", "dark")
package config
