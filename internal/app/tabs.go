package app

import (
	"log/slog"

	"github.com/billie-coop/roster/internal/events"
	"github.com/billie-coop/roster/internal/state"
)

// Tab identifies one top-level view.
type Tab string

const (
	TabProviders Tab = "providers"
	TabModels    Tab = "models"
	TabSave      Tab = "save"
)

// Tabs returns every tab in display order.
func Tabs() []Tab {
	return []Tab{TabProviders, TabModels, TabSave}
}

// Title returns the tab's display name.
func (t Tab) Title() string {
	switch t {
	case TabProviders:
		return "Providers"
	case TabModels:
		return "Models"
	case TabSave:
		return "Save"
	}
	return string(t)
}

// TabController owns tab navigation. The active tab lives in the store
// at app.currentTab and is the single source of truth; the view is a
// projection of it. Focus is the controller's own cursor for keyboard
// navigation and only becomes the active tab on activation.
type TabController struct {
	store    *state.Store
	registry *events.Registry
	logger   *slog.Logger
	focused  Tab
}

// NewTabController creates a controller over the store and registry.
func NewTabController(store *state.Store, registry *events.Registry, logger *slog.Logger) *TabController {
	return &TabController{
		store:    store,
		registry: registry,
		logger:   logger,
		focused:  TabProviders,
	}
}

// Current returns the active tab from the store.
func (c *TabController) Current() Tab {
	if v, ok := c.store.Get(state.AppCurrentTab).(string); ok && v != "" {
		return Tab(v)
	}
	return TabProviders
}

// Focused returns the keyboard-focus cursor.
func (c *TabController) Focused() Tab { return c.focused }

// Activate commits a transition to the given tab. Switching to the
// already-active tab is a no-op; the store itself does not special-case
// identical values, the controller does. Every committed transition
// writes the store and dispatches tab.changed.
func (c *TabController) Activate(tab Tab) {
	if !validTab(tab) {
		c.logger.Warn("ignoring unknown tab", "tab", string(tab))
		return
	}
	previous := c.Current()
	if tab == previous {
		return
	}

	c.focused = tab
	c.store.Set(state.AppCurrentTab, string(tab), state.WithSource("tabs"))
	c.registry.Dispatch(events.Target("app.tabs"), events.TabChangedEvent, events.TabChangedPayload{
		Tab:      string(tab),
		Previous: string(previous),
	})
}

// FocusNext moves focus one tab right, wrapping at the end.
func (c *TabController) FocusNext() {
	c.focused = neighbor(c.focused, 1)
}

// FocusPrev moves focus one tab left, wrapping at the start.
func (c *TabController) FocusPrev() {
	c.focused = neighbor(c.focused, -1)
}

// FocusFirst jumps focus to the first tab.
func (c *TabController) FocusFirst() {
	c.focused = Tabs()[0]
}

// FocusLast jumps focus to the last tab.
func (c *TabController) FocusLast() {
	all := Tabs()
	c.focused = all[len(all)-1]
}

// ActivateFocused commits the focus cursor as the active tab.
func (c *TabController) ActivateFocused() {
	c.Activate(c.focused)
}

// HandleKey translates a navigation key into a controller action and
// reports whether the key was one of ours.
func (c *TabController) HandleKey(key string) bool {
	switch key {
	case "right", "l", "tab":
		c.FocusNext()
	case "left", "h", "shift+tab":
		c.FocusPrev()
	case "home":
		c.FocusFirst()
	case "end":
		c.FocusLast()
	case "enter", " ":
		c.ActivateFocused()
	default:
		return false
	}
	return true
}

func validTab(t Tab) bool {
	for _, tab := range Tabs() {
		if tab == t {
			return true
		}
	}
	return false
}

func neighbor(t Tab, delta int) Tab {
	all := Tabs()
	for i, tab := range all {
		if tab == t {
			return all[(i+delta+len(all))%len(all)]
		}
	}
	return all[0]
}
