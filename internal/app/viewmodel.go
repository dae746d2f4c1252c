package app

import (
	"github.com/billie-coop/roster/internal/catalog"
	"github.com/billie-coop/roster/internal/probe"
	"github.com/billie-coop/roster/internal/state"
	"github.com/billie-coop/roster/internal/storage"
)

// View-models are pure projections of the state tree. The TUI renders
// them and nothing else; it never reads the store directly. Each
// builder takes the store because the store IS the state slice; none
// of them mutate anything.

// TabItem is one entry in the tab bar.
type TabItem struct {
	ID      Tab
	Title   string
	Active  bool
	Focused bool
}

// TabBarView is the tab bar.
type TabBarView struct {
	Tabs []TabItem
}

// BuildTabBar projects the tab state.
func BuildTabBar(tabs *TabController) TabBarView {
	current := tabs.Current()
	focused := tabs.Focused()
	items := make([]TabItem, 0, len(Tabs()))
	for _, t := range Tabs() {
		items = append(items, TabItem{
			ID:      t,
			Title:   t.Title(),
			Active:  t == current,
			Focused: t == focused,
		})
	}
	return TabBarView{Tabs: items}
}

// ProviderRow is one provider in the list, joined with its latest
// probe outcome.
type ProviderRow struct {
	Provider catalog.Provider
	Selected bool
	Tested   bool
	Probe    probe.Result
}

// ProviderListView is the providers tab.
type ProviderListView struct {
	Rows    []ProviderRow
	Testing bool
	Current string // provider name under test right now
}

// BuildProviderList projects the provider list with probe results.
func BuildProviderList(store *state.Store) ProviderListView {
	providers, _ := store.Get(state.ConfigProviders).([]catalog.Provider)
	selected, _ := store.Get(state.UISelectedProvider).(string)
	testing, _ := store.Get(state.TestingInProgress).(bool)
	current, _ := store.Get(state.TestingCurrent).(string)

	rows := make([]ProviderRow, 0, len(providers))
	for _, p := range providers {
		row := ProviderRow{Provider: p, Selected: p.ID == selected}
		if res, ok := store.Get(state.TestingResult(p.ID)).(probe.Result); ok {
			row.Tested = true
			row.Probe = res
		}
		rows = append(rows, row)
	}
	return ProviderListView{Rows: rows, Testing: testing, Current: current}
}

// ModelRow is one model in the list, joined with its provider's name.
type ModelRow struct {
	Model        catalog.Model
	ProviderName string
	Orphaned     bool // providerId no longer resolves
	Selected     bool
}

// ModelListView is the models tab.
type ModelListView struct {
	Rows []ModelRow
}

// BuildModelList projects the model list.
func BuildModelList(store *state.Store) ModelListView {
	providers, _ := store.Get(state.ConfigProviders).([]catalog.Provider)
	models, _ := store.Get(state.ConfigModels).([]catalog.Model)
	selected, _ := store.Get(state.UISelectedModel).(string)

	rows := make([]ModelRow, 0, len(models))
	for _, m := range models {
		row := ModelRow{Model: m, Selected: m.ID == selected}
		if p, ok := catalog.ProviderByID(providers, m.ProviderID); ok {
			row.ProviderName = p.Name
		} else {
			row.Orphaned = true
		}
		rows = append(rows, row)
	}
	return ModelListView{Rows: rows}
}

// SaveView is the save tab: where the config goes, whether it can go
// there, what it looks like, and how probes have been trending.
type SaveView struct {
	ProjectPath  string
	ProjectValid bool
	LastSaved    string
	Unsaved      bool
	Validation   catalog.ValidationResult
	Preview      string
	History      []storage.HistoryEntry
}

// BuildSaveView projects the save tab. preview and history come from
// the services since they involve rendering and the database; the
// builder stays pure by taking them as arguments.
func BuildSaveView(store *state.Store, validation catalog.ValidationResult, preview string, history []storage.HistoryEntry) SaveView {
	path, _ := store.Get(state.AppProjectPath).(string)
	valid, _ := store.Get(state.AppProjectValid).(bool)
	lastSaved, _ := store.Get(state.ConfigLastSaved).(string)
	unsaved, _ := store.Get(state.AppUnsaved).(bool)

	return SaveView{
		ProjectPath:  path,
		ProjectValid: valid,
		LastSaved:    lastSaved,
		Unsaved:      unsaved,
		Validation:   validation,
		Preview:      preview,
		History:      history,
	}
}

// StatusView is the bottom status line.
type StatusView struct {
	Loading      bool
	Unsaved      bool
	Testing      bool
	Notification *Notification // most recent, nil when none
}

// BuildStatus projects the status line.
func BuildStatus(store *state.Store) StatusView {
	loading, _ := store.Get(state.AppLoading).(bool)
	unsaved, _ := store.Get(state.AppUnsaved).(bool)
	testing, _ := store.Get(state.TestingInProgress).(bool)

	var latest *Notification
	if notes, ok := store.Get(state.UINotifications).([]Notification); ok && len(notes) > 0 {
		n := notes[len(notes)-1]
		latest = &n
	}
	return StatusView{
		Loading:      loading,
		Unsaved:      unsaved,
		Testing:      testing,
		Notification: latest,
	}
}
