package events

import (
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAddListenerAndDispatch(t *testing.T) {
	r := NewRegistry(testLogger())

	var got []string
	r.AddListener(Target("app.tabs"), TabChangedEvent, func(e *Event) error {
		payload := e.Detail.(TabChangedPayload)
		got = append(got, payload.Tab)
		return nil
	})

	r.Dispatch(Target("app.tabs"), TabChangedEvent, TabChangedPayload{Tab: "models"})

	want := []string{"models"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestDispatchBubblesToAncestors(t *testing.T) {
	r := NewRegistry(testLogger())
	r.RegisterTarget("app.tabs.providers.list")

	var order []string
	r.AddListener(Target("app.tabs.providers.list"), ConfigChangedEvent, func(e *Event) error {
		order = append(order, "list")
		return nil
	})
	r.AddListener(Target("app.tabs"), ConfigChangedEvent, func(e *Event) error {
		order = append(order, "tabs")
		if e.Target != "app.tabs.providers.list" {
			t.Errorf("Target = %q, want origin", e.Target)
		}
		if e.CurrentTarget != "app.tabs" {
			t.Errorf("CurrentTarget = %q, want app.tabs", e.CurrentTarget)
		}
		return nil
	})
	r.AddListener(Target(""), ConfigChangedEvent, func(e *Event) error {
		order = append(order, "root")
		return nil
	})

	r.Dispatch(Target("app.tabs.providers.list"), ConfigChangedEvent, nil)

	want := []string{"list", "tabs", "root"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestStopPropagation(t *testing.T) {
	r := NewRegistry(testLogger())

	var order []string
	r.AddListener(Target("app.form"), ConfigChangedEvent, func(e *Event) error {
		order = append(order, "form")
		e.StopPropagation()
		return nil
	})
	r.AddListener(Target("app"), ConfigChangedEvent, func(e *Event) error {
		order = append(order, "app")
		return nil
	})

	r.Dispatch(Target("app.form"), ConfigChangedEvent, nil)

	want := []string{"form"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestPreventDefault(t *testing.T) {
	r := NewRegistry(testLogger())

	r.AddListener(Target("app.save"), ConfigChangedEvent, func(e *Event) error {
		e.PreventDefault()
		return nil
	})

	if r.Dispatch(Target("app.save"), ConfigChangedEvent, nil) {
		t.Error("Dispatch = true, want false after PreventDefault")
	}

	// Not cancelable: PreventDefault is a no-op.
	if !r.Dispatch(Target("app.save"), ConfigChangedEvent, nil, NotCancelable()) {
		t.Error("Dispatch = false for non-cancelable event")
	}
}

func TestNoBubbleStaysOnTarget(t *testing.T) {
	r := NewRegistry(testLogger())

	calls := 0
	r.AddListener(Target("app"), ConfigChangedEvent, func(e *Event) error {
		calls++
		return nil
	})

	r.Dispatch(Target("app.form"), ConfigChangedEvent, nil, NoBubble())
	if calls != 0 {
		t.Errorf("ancestor fired %d times for non-bubbling event", calls)
	}
}

func TestUnresolvedTargetReturnsNoopRemover(t *testing.T) {
	r := NewRegistry(testLogger())

	remove := r.AddListener("no.such.selector", ConfigChangedEvent, func(e *Event) error {
		t.Error("handler bound to unresolved target fired")
		return nil
	})
	remove()
	remove()

	if n := r.ListenerCount(); n != 0 {
		t.Errorf("ListenerCount = %d, want 0", n)
	}
}

func TestSelectorResolution(t *testing.T) {
	r := NewRegistry(testLogger())
	r.RegisterTarget("app.tabs.providers.addButton")

	calls := 0
	r.AddListener("addButton", ConfigChangedEvent, func(e *Event) error {
		calls++
		return nil
	})

	r.Dispatch(Target("app.tabs.providers.addButton"), ConfigChangedEvent, nil)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRemoveListenerIsIdempotent(t *testing.T) {
	r := NewRegistry(testLogger())

	calls := 0
	remove := r.AddListener(Target("app"), ConfigChangedEvent, func(e *Event) error {
		calls++
		return nil
	})

	r.Dispatch(Target("app"), ConfigChangedEvent, nil)
	remove()
	remove()
	r.Dispatch(Target("app"), ConfigChangedEvent, nil)

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestHandlerErrorAndPanicAreContained(t *testing.T) {
	r := NewRegistry(testLogger())

	var order []string
	r.AddListener(Target("app"), ConfigChangedEvent, func(e *Event) error {
		order = append(order, "errors")
		return errors.New("handler failed")
	})
	r.AddListener(Target("app"), ConfigChangedEvent, func(e *Event) error {
		order = append(order, "panics")
		panic("boom")
	})
	r.AddListener(Target("app"), ConfigChangedEvent, func(e *Event) error {
		order = append(order, "survives")
		return nil
	})

	r.Dispatch(Target("app"), ConfigChangedEvent, nil)

	want := []string{"errors", "panics", "survives"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestOnceListenerFiresOnce(t *testing.T) {
	r := NewRegistry(testLogger())

	calls := 0
	r.AddListener(Target("app"), ConfigChangedEvent, func(e *Event) error {
		calls++
		return nil
	}, Once())

	r.Dispatch(Target("app"), ConfigChangedEvent, nil)
	r.Dispatch(Target("app"), ConfigChangedEvent, nil)

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if n := r.ListenerCount(); n != 0 {
		t.Errorf("ListenerCount = %d, want 0 after once fired", n)
	}
}

func TestDelegatedListenerMatchesNearestAncestor(t *testing.T) {
	r := NewRegistry(testLogger())
	r.RegisterTarget("app.providers.list.row.p1.deleteButton")

	var matched []Target
	r.AddDelegatedListener(Target("app.providers.list"), "row.p1", ConfigChangedEvent, func(e *Event) error {
		matched = append(matched, e.CurrentTarget)
		return nil
	})

	// Event on a node inside the matching row.
	r.Dispatch(Target("app.providers.list.row.p1.deleteButton"), ConfigChangedEvent, nil)

	want := []Target{"app.providers.list.row.p1"}
	if !reflect.DeepEqual(matched, want) {
		t.Errorf("matched = %v, want %v", matched, want)
	}
}

func TestDelegatedListenerIgnoresNonMatching(t *testing.T) {
	r := NewRegistry(testLogger())
	r.RegisterTarget("app.providers.list.header")

	calls := 0
	r.AddDelegatedListener(Target("app.providers.list"), "row", ConfigChangedEvent, func(e *Event) error {
		calls++
		return nil
	})

	r.Dispatch(Target("app.providers.list.header"), ConfigChangedEvent, nil)
	if calls != 0 {
		t.Errorf("calls = %d, want 0 for non-matching event", calls)
	}
}

func TestDelegatedMatchStopsAtContainer(t *testing.T) {
	r := NewRegistry(testLogger())
	r.RegisterTarget("app.row.outer")
	r.RegisterTarget("app.row.outer.panel.button")

	calls := 0
	// Container is inside app.row.outer; the only "row" segment sits
	// above the container, so nothing should match.
	r.AddDelegatedListener(Target("app.row.outer.panel"), "row", ConfigChangedEvent, func(e *Event) error {
		calls++
		return nil
	})

	r.Dispatch(Target("app.row.outer.panel.button"), ConfigChangedEvent, nil)
	if calls != 0 {
		t.Errorf("calls = %d, want 0; match escaped the container", calls)
	}
}

func TestGroupRemoveAllDetachesOnlyItsListeners(t *testing.T) {
	r := NewRegistry(testLogger())

	groupCalls, outsideCalls := 0, 0
	g := r.Group("providers-tab")
	g.Add(Target("app.list"), ConfigChangedEvent, func(e *Event) error {
		groupCalls++
		return nil
	})
	g.AddDelegated(Target("app.list"), "row", ConfigChangedEvent, func(e *Event) error {
		groupCalls++
		return nil
	})
	r.AddListener(Target("app.list"), ConfigChangedEvent, func(e *Event) error {
		outsideCalls++
		return nil
	})

	r.RegisterTarget("app.list.row")
	r.Dispatch(Target("app.list.row"), ConfigChangedEvent, nil)
	if groupCalls != 2 || outsideCalls != 1 {
		t.Fatalf("before RemoveAll: group=%d outside=%d, want 2 and 1", groupCalls, outsideCalls)
	}

	g.RemoveAll()
	g.RemoveAll() // idempotent

	r.Dispatch(Target("app.list.row"), ConfigChangedEvent, nil)
	if groupCalls != 2 {
		t.Errorf("group listener fired after RemoveAll: %d", groupCalls)
	}
	if outsideCalls != 2 {
		t.Errorf("outside listener stopped firing: %d", outsideCalls)
	}
}

func TestGroupReturnsSameHandleByName(t *testing.T) {
	r := NewRegistry(testLogger())
	if r.Group("x") != r.Group("x") {
		t.Error("same name produced different groups")
	}
	g := r.Group("x")
	g.RemoveAll()
	if r.Group("x") == g {
		t.Error("removed group handle was reused")
	}
}

func TestRemoveAllListeners(t *testing.T) {
	r := NewRegistry(testLogger())

	calls := 0
	r.AddListener(Target("app"), ConfigChangedEvent, func(e *Event) error {
		calls++
		return nil
	})
	g := r.Group("g")
	g.Add(Target("app"), ConfigChangedEvent, func(e *Event) error {
		calls++
		return nil
	})

	r.RemoveAllListeners()
	r.Dispatch(Target("app"), ConfigChangedEvent, nil)
	if calls != 0 {
		t.Errorf("calls = %d, want 0 after RemoveAllListeners", calls)
	}

	// The registry keeps working for new registrations.
	r.AddListener(Target("app"), ConfigChangedEvent, func(e *Event) error {
		calls++
		return nil
	})
	r.Dispatch(Target("app"), ConfigChangedEvent, nil)
	if calls != 1 {
		t.Errorf("calls = %d, want 1 after re-adding", calls)
	}
}

func TestUnregisterTargetPrunesSubtree(t *testing.T) {
	r := NewRegistry(testLogger())

	calls := 0
	r.AddListener(Target("app.dialog.form"), ConfigChangedEvent, func(e *Event) error {
		calls++
		return nil
	})
	r.UnregisterTarget("app.dialog")

	r.Dispatch(Target("app.dialog.form"), ConfigChangedEvent, nil)
	if calls != 0 {
		t.Errorf("calls = %d, want 0 after subtree unregister", calls)
	}
	if n := r.ListenerCount(); n != 0 {
		t.Errorf("ListenerCount = %d, want 0", n)
	}
}

func TestListenerAddedDuringDispatchMissesCurrentEvent(t *testing.T) {
	r := NewRegistry(testLogger())

	lateCalls := 0
	r.AddListener(Target("app"), ConfigChangedEvent, func(e *Event) error {
		r.AddListener(Target("app"), ConfigChangedEvent, func(e *Event) error {
			lateCalls++
			return nil
		})
		return nil
	})

	r.Dispatch(Target("app"), ConfigChangedEvent, nil)
	if lateCalls != 0 {
		t.Errorf("late listener saw the event that registered it")
	}
	r.Dispatch(Target("app"), ConfigChangedEvent, nil)
	if lateCalls != 1 {
		t.Errorf("late listener calls = %d, want 1", lateCalls)
	}
}

func TestTargetHelpers(t *testing.T) {
	if got := Target("a.b.c").Parent(); got != "a.b" {
		t.Errorf("Parent = %q", got)
	}
	if got := Target("a").Parent(); got != "" {
		t.Errorf("Parent = %q", got)
	}
	if !Target("a.b").Contains("a.b.c") {
		t.Error("Contains(descendant) = false")
	}
	if Target("a.b").Contains("a.bc") {
		t.Error("Contains matched a sibling prefix")
	}
	if !Target("a.b.row").MatchesSelector("row") {
		t.Error("MatchesSelector(row) = false")
	}
	if Target("a.b.rowx").MatchesSelector("row") {
		t.Error("MatchesSelector matched a partial segment")
	}
	if !Target("a.list.row").MatchesSelector("list.row") {
		t.Error("MatchesSelector(list.row) = false")
	}
}
