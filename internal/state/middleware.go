package state

import (
	"log/slog"
	"time"
)

// ActionSetState is the action type carried by every store write.
const ActionSetState = "SET_STATE"

// Action describes one attempted state mutation as seen by middleware.
type Action struct {
	Type      string
	Path      Path
	Value     any
	OldValue  any
	Timestamp time.Time
	Meta      map[string]any
}

// Middleware inspects an action before it lands. Returning the action
// (modified or not) lets the write proceed; returning nil vetoes it, in
// which case nothing mutates and no subscriber fires. A middleware that
// panics is logged and skipped; it never blocks the write.
type Middleware func(*Action) *Action

// SetOption adjusts the action record built for a single write.
type SetOption func(*Action)

// WithMeta attaches an arbitrary key to the action's metadata, visible
// to middleware downstream.
func WithMeta(key string, value any) SetOption {
	return func(a *Action) {
		if a.Meta == nil {
			a.Meta = map[string]any{}
		}
		a.Meta[key] = value
	}
}

// WithSource tags the action with the component that initiated it.
func WithSource(source string) SetOption {
	return WithMeta("source", source)
}

// LoggingMiddleware records every action that reaches it at debug
// level. Register it first to see vetoes from later middleware.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	return func(a *Action) *Action {
		logger.Debug("state action",
			"type", a.Type,
			"path", a.Path.String(),
			"value", a.Value,
		)
		return a
	}
}
