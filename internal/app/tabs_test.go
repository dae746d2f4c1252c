package app

import (
	"io"
	"log/slog"
	"testing"

	"github.com/billie-coop/roster/internal/events"
	"github.com/billie-coop/roster/internal/state"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTabController(t *testing.T) (*TabController, *state.Store, *events.Registry) {
	t.Helper()
	store := state.New(testLogger())
	registry := events.NewRegistry(testLogger())
	return NewTabController(store, registry, testLogger()), store, registry
}

func TestActivateWritesStoreAndDispatches(t *testing.T) {
	c, store, registry := newTabController(t)

	var payloads []events.TabChangedPayload
	registry.AddListener(events.Target("app.tabs"), events.TabChangedEvent, func(e *events.Event) error {
		if p, ok := e.Detail.(events.TabChangedPayload); ok {
			payloads = append(payloads, p)
		}
		return nil
	})

	c.Activate(TabModels)

	if got := store.Get(state.AppCurrentTab); got != "models" {
		t.Errorf("app.currentTab = %v, want models", got)
	}
	if len(payloads) != 1 {
		t.Fatalf("got %d tab.changed events, want 1", len(payloads))
	}
	if payloads[0].Tab != "models" || payloads[0].Previous != "providers" {
		t.Errorf("payload = %+v", payloads[0])
	}
}

func TestActivateSameTabIsNoOp(t *testing.T) {
	c, store, _ := newTabController(t)

	var writes int
	store.Subscribe(state.AppCurrentTab, func(newValue, oldValue any, path state.Path) {
		writes++
	})

	c.Activate(TabModels)
	c.Activate(TabModels)

	if writes != 1 {
		t.Errorf("store wrote %d times, want 1; duplicate target must be a controller-level no-op", writes)
	}
}

func TestFocusCyclesWithWraparound(t *testing.T) {
	c, _, _ := newTabController(t)

	// Right from the last tab wraps to the first.
	c.FocusLast()
	c.FocusNext()
	if c.Focused() != TabProviders {
		t.Errorf("Focused() = %v after wrap right, want providers", c.Focused())
	}

	// Left from the first tab wraps to the last.
	c.FocusPrev()
	if c.Focused() != TabSave {
		t.Errorf("Focused() = %v after wrap left, want save", c.Focused())
	}
}

func TestHomeEndJumpFocus(t *testing.T) {
	c, _, _ := newTabController(t)

	if !c.HandleKey("end") {
		t.Fatal("HandleKey(end) = false")
	}
	if c.Focused() != TabSave {
		t.Errorf("Focused() = %v, want save", c.Focused())
	}
	if !c.HandleKey("home") {
		t.Fatal("HandleKey(home) = false")
	}
	if c.Focused() != TabProviders {
		t.Errorf("Focused() = %v, want providers", c.Focused())
	}
}

func TestEnterActivatesFocusedTab(t *testing.T) {
	c, store, _ := newTabController(t)

	c.HandleKey("right") // focus models
	if got := store.Get(state.AppCurrentTab); got != "providers" {
		t.Fatalf("focus moved the active tab: %v", got)
	}
	c.HandleKey("enter")
	if got := store.Get(state.AppCurrentTab); got != "models" {
		t.Errorf("app.currentTab = %v after enter, want models", got)
	}
}

func TestHandleKeyIgnoresUnknownKeys(t *testing.T) {
	c, _, _ := newTabController(t)
	if c.HandleKey("x") {
		t.Error("HandleKey(x) = true, want false")
	}
}

func TestActivateUnknownTabIgnored(t *testing.T) {
	c, store, _ := newTabController(t)
	c.Activate(Tab("bogus"))
	if got := store.Get(state.AppCurrentTab); got != "providers" {
		t.Errorf("app.currentTab = %v, want providers untouched", got)
	}
}
