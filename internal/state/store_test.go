package state

import (
	"io"
	"log/slog"
	"reflect"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGetAfterSet(t *testing.T) {
	s := New(testLogger())

	tests := []struct {
		path  Path
		value any
	}{
		{AppCurrentTab, "models"},
		{AppLoading, true},
		{ConfigProviders, []any{map[string]any{"id": "p1"}}},
		{"deep.new.path", 42},
		{TestingResult("p1"), map[string]any{"isValid": true}},
	}

	for _, tt := range tests {
		if !s.Set(tt.path, tt.value) {
			t.Fatalf("Set(%q) vetoed unexpectedly", tt.path)
		}
		got := s.Get(tt.path)
		if !reflect.DeepEqual(got, tt.value) {
			t.Errorf("Get(%q) = %v, want %v", tt.path, got, tt.value)
		}
	}
}

func TestGetUnresolvedPath(t *testing.T) {
	s := New(testLogger())

	for _, p := range []Path{"nope", "app.nope", "app.currentTab.deeper", "a.b.c.d"} {
		if got := s.Get(p); got != nil {
			t.Errorf("Get(%q) = %v, want nil", p, got)
		}
	}
}

func TestGetEmptyPathReturnsTree(t *testing.T) {
	s := New(testLogger())
	tree, ok := s.Get("").(map[string]any)
	if !ok {
		t.Fatalf("Get(\"\") = %T, want map", s.Get(""))
	}
	if _, ok := tree["app"]; !ok {
		t.Error("tree missing app namespace")
	}
}

func TestSetCreatesIntermediateNodes(t *testing.T) {
	s := New(testLogger())
	s.Set("x.y.z", "deep")

	mid, ok := s.Get("x.y").(map[string]any)
	if !ok {
		t.Fatalf("intermediate node x.y = %T, want map", s.Get("x.y"))
	}
	if mid["z"] != "deep" {
		t.Errorf("x.y[z] = %v, want deep", mid["z"])
	}
}

func TestSubscribersFireInRegistrationOrder(t *testing.T) {
	s := New(testLogger())

	var calls []string
	s.Subscribe(AppCurrentTab, func(newValue, oldValue any, path Path) {
		calls = append(calls, "first")
		if newValue != "models" {
			t.Errorf("newValue = %v, want models", newValue)
		}
		if oldValue != "providers" {
			t.Errorf("oldValue = %v, want providers", oldValue)
		}
		if path != AppCurrentTab {
			t.Errorf("path = %q, want %q", path, AppCurrentTab)
		}
	})
	s.Subscribe(AppCurrentTab, func(newValue, oldValue any, path Path) {
		calls = append(calls, "second")
	})

	s.Set(AppCurrentTab, "models")

	want := []string{"first", "second"}
	if !reflect.DeepEqual(calls, want) {
		t.Errorf("calls = %v, want %v", calls, want)
	}
}

func TestAncestorNotificationCarriesAccurateValues(t *testing.T) {
	s := New(testLogger())

	var gotNew, gotOld any
	ancestorCalls := 0
	s.Subscribe("app", func(newValue, oldValue any, path Path) {
		ancestorCalls++
		gotNew, gotOld = newValue, oldValue
	})

	rootCalls := 0
	s.Subscribe("", func(newValue, oldValue any, path Path) {
		rootCalls++
	})

	s.Set(AppCurrentTab, "save")

	if ancestorCalls != 1 {
		t.Fatalf("ancestor subscriber fired %d times, want 1", ancestorCalls)
	}
	if rootCalls != 1 {
		t.Fatalf("root subscriber fired %d times, want 1", rootCalls)
	}
	newApp, ok := gotNew.(map[string]any)
	if !ok {
		t.Fatalf("ancestor newValue = %T, want map", gotNew)
	}
	if newApp["currentTab"] != "save" {
		t.Errorf("ancestor newValue currentTab = %v, want save", newApp["currentTab"])
	}
	oldApp, ok := gotOld.(map[string]any)
	if !ok {
		t.Fatalf("ancestor oldValue = %T, want map", gotOld)
	}
	if oldApp["currentTab"] != "providers" {
		t.Errorf("ancestor oldValue currentTab = %v, want providers", oldApp["currentTab"])
	}
}

func TestExactSubscribersFireBeforeAncestors(t *testing.T) {
	s := New(testLogger())

	var order []string
	s.Subscribe("app", func(any, any, Path) { order = append(order, "ancestor") })
	s.Subscribe(AppCurrentTab, func(any, any, Path) { order = append(order, "exact") })

	s.Set(AppCurrentTab, "models")

	want := []string{"exact", "ancestor"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	s := New(testLogger())

	calls := 0
	unsub := s.Subscribe(AppCurrentTab, func(any, any, Path) { calls++ })

	s.Set(AppCurrentTab, "models")
	unsub()
	unsub()
	s.Set(AppCurrentTab, "save")

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestMiddlewareVetoBlocksWriteAndNotifications(t *testing.T) {
	s := New(testLogger())
	s.Use(func(a *Action) *Action {
		if a.Path == AppCurrentTab {
			return nil
		}
		return a
	})

	calls := 0
	s.Subscribe(AppCurrentTab, func(any, any, Path) { calls++ })

	if s.Set(AppCurrentTab, "models") {
		t.Error("Set returned true for vetoed write")
	}
	if got := s.Get(AppCurrentTab); got != "providers" {
		t.Errorf("state changed despite veto: %v", got)
	}
	if calls != 0 {
		t.Errorf("subscribers fired %d times for vetoed write", calls)
	}

	// Other paths still flow.
	if !s.Set(AppLoading, true) {
		t.Error("unrelated write vetoed")
	}
}

func TestMiddlewareCanRewriteValue(t *testing.T) {
	s := New(testLogger())
	s.Use(func(a *Action) *Action {
		if a.Path == AppCurrentTab {
			a.Value = "clamped"
		}
		return a
	})

	s.Set(AppCurrentTab, "whatever")
	if got := s.Get(AppCurrentTab); got != "clamped" {
		t.Errorf("Get = %v, want clamped", got)
	}
}

func TestMiddlewareRunsInRegistrationOrder(t *testing.T) {
	s := New(testLogger())

	var order []string
	s.Use(func(a *Action) *Action { order = append(order, "one"); return a })
	s.Use(func(a *Action) *Action { order = append(order, "two"); return a })

	s.Set(AppLoading, true)

	want := []string{"one", "two"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestPanickingMiddlewareIsSkipped(t *testing.T) {
	s := New(testLogger())
	s.Use(func(a *Action) *Action { panic("boom") })

	calls := 0
	s.Subscribe(AppLoading, func(newValue, _ any, _ Path) {
		calls++
		if newValue != true {
			t.Errorf("newValue = %v, want true", newValue)
		}
	})

	if !s.Set(AppLoading, true) {
		t.Fatal("write blocked by panicking middleware")
	}
	if got := s.Get(AppLoading); got != true {
		t.Errorf("Get = %v, want true", got)
	}
	if calls != 1 {
		t.Errorf("subscriber fired %d times, want 1", calls)
	}
}

func TestBatchUpdateAppliesAllPairs(t *testing.T) {
	s := New(testLogger())

	applied := s.BatchUpdate(map[Path]any{
		AppCurrentTab: "save",
		AppLoading:    true,
		"x.y":         1,
	})

	if applied != 3 {
		t.Errorf("applied = %d, want 3", applied)
	}
	if got := s.Get(AppCurrentTab); got != "save" {
		t.Errorf("currentTab = %v", got)
	}
	if got := s.Get(AppLoading); got != true {
		t.Errorf("isLoading = %v", got)
	}
	if got := s.Get("x.y"); got != 1 {
		t.Errorf("x.y = %v", got)
	}
}

func TestBatchUpdateRunsMiddlewarePerPair(t *testing.T) {
	s := New(testLogger())

	seen := map[Path]bool{}
	s.Use(func(a *Action) *Action {
		seen[a.Path] = true
		if a.Meta["batch"] != true {
			t.Errorf("action on %q missing batch meta", a.Path)
		}
		if a.Path == AppLoading {
			return nil
		}
		return a
	})

	applied := s.BatchUpdate(map[Path]any{
		AppCurrentTab: "models",
		AppLoading:    true,
	})

	if applied != 1 {
		t.Errorf("applied = %d, want 1", applied)
	}
	if !seen[AppCurrentTab] || !seen[AppLoading] {
		t.Errorf("middleware saw %v, want both paths", seen)
	}
	if got := s.Get(AppLoading); got != false {
		t.Errorf("vetoed pair landed: %v", got)
	}
	if got := s.Get(AppCurrentTab); got != "models" {
		t.Errorf("accepted pair missing: %v", got)
	}
}

func TestBatchUpdateNotifiesEachAncestorOnce(t *testing.T) {
	s := New(testLogger())

	appCalls := 0
	s.Subscribe("app", func(newValue, oldValue any, _ Path) {
		appCalls++
		if m, ok := oldValue.(map[string]any); !ok || m["currentTab"] != "providers" {
			t.Errorf("ancestor oldValue = %v, want pre-batch app map", oldValue)
		}
		if m, ok := newValue.(map[string]any); !ok || m["currentTab"] != "save" || m["isLoading"] != true {
			t.Errorf("ancestor newValue = %v, want post-batch app map", newValue)
		}
	})

	s.BatchUpdate(map[Path]any{
		AppCurrentTab: "save",
		AppLoading:    true,
	})

	if appCalls != 1 {
		t.Errorf("ancestor fired %d times, want 1", appCalls)
	}
}

func TestResetRestoresDefaultsAndNotifiesEverySubscriber(t *testing.T) {
	s := New(testLogger())
	s.Set(AppCurrentTab, "save")
	s.Set(ConfigLastSaved, "2025-01-01T00:00:00Z")

	tabCalls, savedCalls := 0, 0
	s.Subscribe(AppCurrentTab, func(newValue, oldValue any, _ Path) {
		tabCalls++
		if newValue != "providers" || oldValue != "save" {
			t.Errorf("tab notification = (%v, %v), want (providers, save)", newValue, oldValue)
		}
	})
	s.Subscribe(ConfigLastSaved, func(any, any, Path) { savedCalls++ })

	s.Reset()

	if tabCalls != 1 || savedCalls != 1 {
		t.Errorf("calls = (%d, %d), want (1, 1)", tabCalls, savedCalls)
	}
	if got := s.Get(AppCurrentTab); got != "providers" {
		t.Errorf("currentTab after reset = %v", got)
	}
}

func TestResetPathNotifiesOnlyExactPath(t *testing.T) {
	s := New(testLogger())
	s.Set(TestingResult("p1"), map[string]any{"isValid": false})

	exactCalls, ancestorCalls := 0, 0
	s.Subscribe(TestingResult("p1"), func(newValue, oldValue any, _ Path) {
		exactCalls++
		if newValue != nil {
			t.Errorf("newValue = %v, want nil", newValue)
		}
		if oldValue == nil {
			t.Error("oldValue = nil, want previous result")
		}
	})
	s.Subscribe(TestingResults, func(any, any, Path) { ancestorCalls++ })

	s.ResetPath(TestingResult("p1"))

	if exactCalls != 1 {
		t.Errorf("exact calls = %d, want 1", exactCalls)
	}
	if ancestorCalls != 0 {
		t.Errorf("ancestor calls = %d, want 0", ancestorCalls)
	}
	if got := s.Get(TestingResult("p1")); got != nil {
		t.Errorf("value survived reset: %v", got)
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	s := New(testLogger())
	snap := s.Snapshot()

	app := snap["app"].(map[string]any)
	app["currentTab"] = "mutated"

	if got := s.Get(AppCurrentTab); got != "providers" {
		t.Errorf("mutating snapshot leaked into store: %v", got)
	}
}

func TestRestoreFromSnapshotFiresOnlyChangedPaths(t *testing.T) {
	s := New(testLogger())
	snap := s.Snapshot()
	s.Set(AppCurrentTab, "save")

	tabCalls, loadingCalls := 0, 0
	s.Subscribe(AppCurrentTab, func(newValue, oldValue any, _ Path) {
		tabCalls++
		if newValue != "providers" || oldValue != "save" {
			t.Errorf("notification = (%v, %v), want (providers, save)", newValue, oldValue)
		}
	})
	s.Subscribe(AppLoading, func(any, any, Path) { loadingCalls++ })

	s.RestoreFromSnapshot(snap)

	if tabCalls != 1 {
		t.Errorf("changed path fired %d times, want 1", tabCalls)
	}
	if loadingCalls != 0 {
		t.Errorf("unchanged path fired %d times, want 0", loadingCalls)
	}
}

func TestRestoreIdenticalSnapshotFiresNothing(t *testing.T) {
	s := New(testLogger())
	s.Set(AppCurrentTab, "models")

	calls := 0
	s.Subscribe(AppCurrentTab, func(any, any, Path) { calls++ })
	s.Subscribe("app", func(any, any, Path) { calls++ })
	s.Subscribe("", func(any, any, Path) { calls++ })

	s.RestoreFromSnapshot(s.Snapshot())

	if calls != 0 {
		t.Errorf("identical restore fired %d callbacks, want 0", calls)
	}
}

func TestCallbackMayReenterStore(t *testing.T) {
	s := New(testLogger())

	s.Subscribe(AppCurrentTab, func(newValue, _ any, _ Path) {
		if newValue == "models" {
			s.Set(AppUnsaved, true)
		}
	})

	s.Set(AppCurrentTab, "models")

	if got := s.Get(AppUnsaved); got != true {
		t.Errorf("re-entrant write missing: %v", got)
	}
}

func TestPathHelpers(t *testing.T) {
	tests := []struct {
		path   Path
		parent Path
	}{
		{"a.b.c", "a.b"},
		{"a.b", "a"},
		{"a", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := tt.path.Parent(); got != tt.parent {
			t.Errorf("Parent(%q) = %q, want %q", tt.path, got, tt.parent)
		}
	}

	if got := Path("a.b").Child("c"); got != "a.b.c" {
		t.Errorf("Child = %q, want a.b.c", got)
	}
	if got := Path("").Child("a"); got != "a" {
		t.Errorf("Child at root = %q, want a", got)
	}

	want := []Path{"a.b", "a", ""}
	if got := Path("a.b.c").ancestors(); !reflect.DeepEqual(got, want) {
		t.Errorf("ancestors = %v, want %v", got, want)
	}
}
