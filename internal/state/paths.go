package state

import "strings"

// Path is a dot-delimited address into the state tree. The constants
// below enumerate every path first-party code reads or writes; raw
// strings are still accepted at the API boundary so persisted trees and
// tests can address arbitrary nodes.
type Path string

// Known paths, grouped by namespace.
const (
	// app: top-level lifecycle and navigation.
	AppInitialized  Path = "app.initialized"
	AppCurrentTab   Path = "app.currentTab"
	AppUnsaved      Path = "app.hasUnsavedChanges"
	AppLoading      Path = "app.isLoading"
	AppProjectPath  Path = "app.projectPath"
	AppProjectValid Path = "app.projectValid"

	// config: the roster itself.
	ConfigProviders Path = "config.providers"
	ConfigModels    Path = "config.models"
	ConfigLastSaved Path = "config.lastSaved"

	// ui: transient view state.
	UIDialogs          Path = "ui.dialogs"
	UINotifications    Path = "ui.notifications"
	UISelectedProvider Path = "ui.selectedProvider"
	UISelectedModel    Path = "ui.selectedModel"
	UIValidationErrors Path = "ui.validationErrors"

	// testing: connectivity probe bookkeeping.
	TestingInProgress Path = "testing.inProgress"
	TestingCurrent    Path = "testing.currentTest"
	TestingResults    Path = "testing.results"
)

// TestingResult returns the path holding one provider's probe result.
func TestingResult(providerID string) Path {
	return TestingResults.Child(providerID)
}

// String returns the path as a plain string.
func (p Path) String() string { return string(p) }

// Child returns the path extended by one segment.
func (p Path) Child(segment string) Path {
	if p == "" {
		return Path(segment)
	}
	return p + Path("."+segment)
}

// Parent returns the path one level up, or the empty path at the root.
func (p Path) Parent() Path {
	i := strings.LastIndexByte(string(p), '.')
	if i < 0 {
		return ""
	}
	return p[:i]
}

// segments splits the path into its parts; the empty path has none.
func (p Path) segments() []string {
	if p == "" {
		return nil
	}
	return strings.Split(string(p), ".")
}

// ancestors returns the strict ancestors of p from nearest to root,
// ending with the empty path for whole-tree subscribers.
func (p Path) ancestors() []Path {
	var out []Path
	for cur := p.Parent(); cur != ""; cur = cur.Parent() {
		out = append(out, cur)
	}
	if p != "" {
		out = append(out, "")
	}
	return out
}

// DefaultTree builds the initial state tree. Every namespace exists up
// front so subscribers can bind before the first real write.
func DefaultTree() map[string]any {
	return map[string]any{
		"app": map[string]any{
			"initialized":       false,
			"currentTab":        "providers",
			"hasUnsavedChanges": false,
			"isLoading":         false,
			"projectPath":       "",
			"projectValid":      false,
		},
		"config": map[string]any{
			"providers": []any{},
			"models":    []any{},
			"lastSaved": "",
		},
		"ui": map[string]any{
			"dialogs":          []any{},
			"notifications":    []any{},
			"selectedProvider": "",
			"selectedModel":    "",
			"validationErrors": map[string]any{},
		},
		"testing": map[string]any{
			"inProgress":  false,
			"currentTest": "",
			"results":     map[string]any{},
		},
	}
}
