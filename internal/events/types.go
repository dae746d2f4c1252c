package events

import "strings"

// EventType identifies the type of event
type EventType string

const (
	// Configuration events
	ConfigChangedEvent  EventType = "config.changed"
	ProviderTestedEvent EventType = "provider.tested"

	// Navigation events
	TabChangedEvent EventType = "tab.changed"

	// UI events
	StatusMessageEvent EventType = "ui.status"
	DialogOpenEvent    EventType = "ui.dialog.open"
	DialogCloseEvent   EventType = "ui.dialog.close"

	// Project events
	ProjectLoadedEvent   EventType = "project.loaded"
	ProjectModifiedEvent EventType = "project.modified"

	// Wildcard matches every event type at a target.
	AnyEvent EventType = "*"
)

// Target is the hierarchical address of a component, dot-delimited from
// the root outward, e.g. "app.tabs.providers.list.row".
type Target string

// Parent returns the target one level up, or the empty target at root.
func (t Target) Parent() Target {
	i := strings.LastIndexByte(string(t), '.')
	if i < 0 {
		return ""
	}
	return t[:i]
}

// Child returns the target extended by one segment.
func (t Target) Child(segment string) Target {
	if t == "" {
		return Target(segment)
	}
	return t + Target("."+segment)
}

// Contains reports whether other is t itself or a descendant of t.
func (t Target) Contains(other Target) bool {
	if t == other {
		return true
	}
	if t == "" {
		return other != ""
	}
	return strings.HasPrefix(string(other), string(t)+".")
}

// MatchesSelector reports whether the target's path ends with the
// selector's segment chain. A selector like "row" matches any target
// whose last segment is "row"; "list.row" requires both trailing
// segments.
func (t Target) MatchesSelector(selector string) bool {
	if selector == "" || t == "" {
		return false
	}
	if string(t) == selector {
		return true
	}
	return strings.HasSuffix(string(t), "."+selector)
}

// Event represents one dispatched occurrence. Listeners run from the
// target outward to the root while propagation is allowed.
type Event struct {
	Type EventType
	// Target is where the event was dispatched.
	Target Target
	// CurrentTarget is the node whose listener is running; for a
	// delegated listener it is the matched descendant.
	CurrentTarget Target
	// Detail carries the payload.
	Detail any

	bubbles          bool
	cancelable       bool
	stopped          bool
	defaultPrevented bool
}

// StopPropagation keeps the event from reaching listeners further up
// the target chain. Remaining listeners on the current node still run.
func (e *Event) StopPropagation() { e.stopped = true }

// PreventDefault marks a cancelable event as cancelled; the dispatcher
// learns this from Dispatch's return value.
func (e *Event) PreventDefault() {
	if e.cancelable {
		e.defaultPrevented = true
	}
}

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// Event payload types

type ConfigChangedPayload struct {
	Source        string
	ProviderCount int
	ModelCount    int
}

type TabChangedPayload struct {
	Tab      string
	Previous string
}

type StatusMessagePayload struct {
	Message string
	Type    string // "info", "warning", "error", "success"
}

type ProviderTestedPayload struct {
	ProviderID string
	Valid      bool
	Message    string
}

type ProjectPayload struct {
	Path string
}

type DialogPayload struct {
	DialogID string
	Data     any
}
