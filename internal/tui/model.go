// Package tui is the Bubble Tea view layer. It renders the view-models
// the app package builds and translates key presses into controller
// calls; no business logic lives here.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/v2/key"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"github.com/billie-coop/roster/internal/app"
	"github.com/billie-coop/roster/internal/catalog"
	"github.com/billie-coop/roster/internal/events"
	"github.com/billie-coop/roster/internal/ingest"
	"github.com/billie-coop/roster/internal/probe"
	"github.com/billie-coop/roster/internal/state"
	"github.com/billie-coop/roster/internal/storage"
	"github.com/billie-coop/roster/internal/tui/styles"
)

// Model is the root TUI model.
type Model struct {
	width  int
	height int

	app    *app.App
	logger *slog.Logger
	keys   KeyMap

	// Components
	providers *providerList
	models    *modelList
	save      *saveTab
	status    *statusBar
	dialog    dialog

	// Bridge from the event registry onto the Bubble Tea loop.
	eventCh chan events.Event
	group   *events.Group
}

// Messages produced by async commands.
type (
	registryEventMsg struct{ event events.Event }
	probeDoneMsg     struct {
		name   string
		result probe.Result
		err    error
	}
	probesDoneMsg struct{ tested int }
	actionDoneMsg struct {
		message string
		kind    string
	}
)

// New creates the TUI over an initialized app. theme picks the color
// theme from settings; unknown names fall back to the default.
func New(appInstance *app.App, theme string, logger *slog.Logger) *Model {
	styles.SetDefaultManager(styles.NewManager(theme))

	keys := DefaultKeyMap()
	m := &Model{
		app:       appInstance,
		logger:    logger,
		keys:      keys,
		providers: newProviderList(keys),
		models:    newModelList(keys),
		save:      newSaveTab(),
		status:    newStatusBar(),
		eventCh:   make(chan events.Event, 64),
	}

	// One listener at the app root catches everything that bubbles;
	// the group makes teardown a single call.
	m.group = appInstance.Registry.Group("tui")
	m.group.Add(events.Target("app"), events.AnyEvent, func(e *events.Event) error {
		select {
		case m.eventCh <- *e:
		default:
			// The UI refreshes on the next event; dropping under
			// pressure is better than blocking a dispatcher.
		}
		return nil
	})

	return m
}

// Destroy detaches the TUI's listeners.
func (m *Model) Destroy() {
	m.group.RemoveAll()
}

// Init starts the event bridge and the status spinner.
func (m *Model) Init() tea.Cmd {
	m.sync()
	return tea.Batch(m.status.Init(), m.listenForEvents())
}

// listenForEvents forwards one registry event onto the tea loop.
func (m *Model) listenForEvents() tea.Cmd {
	return func() tea.Msg {
		return registryEventMsg{event: <-m.eventCh}
	}
}

// Update routes messages: dialogs get the keyboard first, then global
// bindings, then the active tab's component.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case registryEventMsg:
		cmds = append(cmds, m.handleEvent(msg.event), m.listenForEvents())
		m.sync()
		return m, tea.Batch(cmds...)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		contentHeight := m.height - tabBarHeight - statusHeight - 2
		cmds = append(cmds, m.providers.SetSize(m.width-4, contentHeight))
		cmds = append(cmds, m.models.SetSize(m.width-4, contentHeight))
		cmds = append(cmds, m.save.SetSize(m.width-4, contentHeight))
		cmds = append(cmds, m.status.SetSize(m.width, statusHeight))
		m.sync()
		return m, tea.Batch(cmds...)

	case probeDoneMsg:
		m.sync()
		if msg.err != nil {
			return m, m.status.Show(msg.err.Error(), "error")
		}
		if msg.result.Valid {
			return m, m.status.Show(fmt.Sprintf("%s is reachable", msg.name), "success")
		}
		return m, m.status.Show(fmt.Sprintf("%s: %s", msg.name, msg.result.Message), "error")

	case probesDoneMsg:
		m.sync()
		return m, m.status.Show(fmt.Sprintf("tested %d provider(s)", msg.tested), "info")

	case actionDoneMsg:
		m.sync()
		return m, m.status.Show(msg.message, msg.kind)

	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}

	// Everything else (spinner ticks, clear timers, mouse) goes to the
	// stateful components.
	statusModel, cmd := m.status.Update(msg)
	m.status = statusModel.(*statusBar)
	cmds = append(cmds, cmd)

	saveModel, cmd := m.save.Update(msg)
	m.save = saveModel.(*saveTab)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if m.dialog != nil {
		done, cmd := m.dialog.Update(msg)
		if done {
			m.closeDialog()
		}
		m.sync()
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.requestQuit()
	case key.Matches(msg, m.keys.Help):
		m.openDialog(newHelpDialog(m.width))
		return m, nil
	case key.Matches(msg, m.keys.Add):
		return m, m.addEntry()
	case key.Matches(msg, m.keys.Edit):
		return m, m.editEntry()
	case key.Matches(msg, m.keys.Delete):
		return m, m.deleteEntry()
	case key.Matches(msg, m.keys.Test):
		return m, m.testSelected()
	case key.Matches(msg, m.keys.TestAll):
		return m, m.testAll()
	case key.Matches(msg, m.keys.OpenProject):
		m.openDialog(newPromptDialog("open-project", "Open Task Master project",
			"/path/to/project", m.app.Project.Path(), m.openProjectCmd))
		return m, nil
	case key.Matches(msg, m.keys.Reload):
		return m, m.reloadProject()
	case key.Matches(msg, m.keys.Save):
		return m, m.saveProject()
	case key.Matches(msg, m.keys.Copy):
		return m, m.copyConfig()
	case key.Matches(msg, m.keys.Export):
		m.openDialog(newPromptDialog("export-yaml", "Export roster as YAML",
			"roster.yaml", "roster.yaml", m.exportCmd))
		return m, nil
	case key.Matches(msg, m.keys.Ingest):
		return m, m.scanLocalConfigs()
	}

	switch msg.String() {
	case "1":
		m.app.Tabs.Activate(app.TabProviders)
		m.sync()
		return m, nil
	case "2":
		m.app.Tabs.Activate(app.TabModels)
		m.sync()
		return m, nil
	case "3":
		m.app.Tabs.Activate(app.TabSave)
		m.sync()
		return m, nil
	}

	// Tab navigation owns its keys; everything left goes to the
	// active tab's component.
	if m.app.Tabs.HandleKey(msg.String()) {
		m.sync()
		return m, nil
	}

	var cmd tea.Cmd
	switch m.app.Tabs.Current() {
	case app.TabProviders:
		model, c := m.providers.Update(msg)
		m.providers = model.(*providerList)
		cmd = c
	case app.TabModels:
		model, c := m.models.Update(msg)
		m.models = model.(*modelList)
		cmd = c
	case app.TabSave:
		model, c := m.save.Update(msg)
		m.save = model.(*saveTab)
		cmd = c
	}
	m.sync()
	return m, cmd
}

// handleEvent surfaces registry events as status messages.
func (m *Model) handleEvent(e events.Event) tea.Cmd {
	switch e.Type {
	case events.ProjectModifiedEvent:
		return m.status.Show("config.json changed on disk; press r to reload or s to overwrite", "warning")
	case events.ProjectLoadedEvent:
		if payload, ok := e.Detail.(events.ProjectPayload); ok {
			return m.status.Show("opened "+payload.Path, "success")
		}
	case events.StatusMessageEvent:
		if payload, ok := e.Detail.(events.StatusMessagePayload); ok {
			return m.status.Show(payload.Message, payload.Type)
		}
	}
	return nil
}

// requestQuit quits immediately unless there are unsaved changes.
func (m *Model) requestQuit() (tea.Model, tea.Cmd) {
	if unsaved, _ := m.app.Store.Get(state.AppUnsaved).(bool); unsaved {
		m.openDialog(newConfirmDialog("quit", "Unsaved changes",
			"The roster has unsaved changes. Quit anyway?",
			func() tea.Cmd { return tea.Quit }))
		return m, nil
	}
	return m, tea.Quit
}

// --- entry editing ---

func (m *Model) addEntry() tea.Cmd {
	switch m.app.Tabs.Current() {
	case app.TabProviders:
		m.openDialog(newProviderForm(catalog.Provider{}, func(p catalog.Provider) (tea.Cmd, error) {
			added, err := m.app.Roster.AddProvider(p)
			if err != nil {
				return nil, err
			}
			return m.status.Show("added provider "+added.Name, "success"), nil
		}))
	case app.TabModels:
		providers := m.app.Roster.Providers()
		if len(providers) == 0 {
			return m.status.Show("add a provider before adding models", "warning")
		}
		m.openDialog(newModelForm(catalog.Model{}, providers, func(model catalog.Model) (tea.Cmd, error) {
			added, err := m.app.Roster.AddModel(model)
			if err != nil {
				return nil, err
			}
			return m.status.Show("added model "+added.Name, "success"), nil
		}))
	}
	return nil
}

func (m *Model) editEntry() tea.Cmd {
	switch m.app.Tabs.Current() {
	case app.TabProviders:
		p, ok := catalog.ProviderByID(m.app.Roster.Providers(), m.providers.SelectedID())
		if !ok {
			return nil
		}
		m.openDialog(newProviderForm(p, func(edited catalog.Provider) (tea.Cmd, error) {
			if err := m.app.Roster.UpdateProvider(edited); err != nil {
				return nil, err
			}
			return m.status.Show("updated provider "+edited.Name, "success"), nil
		}))
	case app.TabModels:
		model, ok := catalog.ModelByID(m.app.Roster.Models(), m.models.SelectedID())
		if !ok {
			return nil
		}
		m.openDialog(newModelForm(model, m.app.Roster.Providers(), func(edited catalog.Model) (tea.Cmd, error) {
			if err := m.app.Roster.UpdateModel(edited); err != nil {
				return nil, err
			}
			return m.status.Show("updated model "+edited.Name, "success"), nil
		}))
	}
	return nil
}

func (m *Model) deleteEntry() tea.Cmd {
	switch m.app.Tabs.Current() {
	case app.TabProviders:
		p, ok := catalog.ProviderByID(m.app.Roster.Providers(), m.providers.SelectedID())
		if !ok {
			return nil
		}
		m.openDialog(newConfirmDialog("delete-provider", "Delete provider",
			fmt.Sprintf("Delete %s? Its models stay and must be repointed.", p.Name),
			func() tea.Cmd {
				if err := m.app.Roster.DeleteProvider(p.ID); err != nil {
					return m.status.Show(err.Error(), "error")
				}
				return m.status.Show("deleted provider "+p.Name, "success")
			}))
	case app.TabModels:
		model, ok := catalog.ModelByID(m.app.Roster.Models(), m.models.SelectedID())
		if !ok {
			return nil
		}
		m.openDialog(newConfirmDialog("delete-model", "Delete model",
			fmt.Sprintf("Delete %s?", model.Name),
			func() tea.Cmd {
				if err := m.app.Roster.DeleteModel(model.ID); err != nil {
					return m.status.Show(err.Error(), "error")
				}
				return m.status.Show("deleted model "+model.Name, "success")
			}))
	}
	return nil
}

// --- probes ---

func (m *Model) testSelected() tea.Cmd {
	if m.app.Tabs.Current() != app.TabProviders {
		return nil
	}
	p, ok := catalog.ProviderByID(m.app.Roster.Providers(), m.providers.SelectedID())
	if !ok {
		return nil
	}
	return func() tea.Msg {
		res, err := m.app.Probes.TestProvider(context.Background(), p.ID)
		return probeDoneMsg{name: p.Name, result: res, err: err}
	}
}

func (m *Model) testAll() tea.Cmd {
	if len(m.app.Roster.Providers()) == 0 {
		return m.status.Show("nothing to test", "info")
	}
	return func() tea.Msg {
		results := m.app.Probes.TestAll(context.Background())
		return probesDoneMsg{tested: len(results)}
	}
}

// --- project actions ---

func (m *Model) openProjectCmd(path string) tea.Cmd {
	return func() tea.Msg {
		if err := m.app.Project.Open(path); err != nil {
			return actionDoneMsg{message: err.Error(), kind: "error"}
		}
		return actionDoneMsg{message: "loaded roster from " + path, kind: "success"}
	}
}

func (m *Model) reloadProject() tea.Cmd {
	if m.app.Project.Path() == "" {
		return m.status.Show("no project open", "warning")
	}
	return func() tea.Msg {
		if err := m.app.Project.Load(); err != nil {
			return actionDoneMsg{message: err.Error(), kind: "error"}
		}
		return actionDoneMsg{message: "reloaded roster from project", kind: "success"}
	}
}

func (m *Model) saveProject() tea.Cmd {
	return func() tea.Msg {
		if err := m.app.Project.Save(); err != nil {
			return actionDoneMsg{message: err.Error(), kind: "error"}
		}
		return actionDoneMsg{message: "wrote config.json", kind: "success"}
	}
}

func (m *Model) copyConfig() tea.Cmd {
	return func() tea.Msg {
		if err := m.app.Project.CopyToClipboard(); err != nil {
			return actionDoneMsg{message: err.Error(), kind: "error"}
		}
		return actionDoneMsg{message: "config copied to clipboard", kind: "success"}
	}
}

func (m *Model) exportCmd(path string) tea.Cmd {
	return func() tea.Msg {
		err := storage.ExportYAML(path, m.app.Roster.Providers(), m.app.Roster.Models())
		if err != nil {
			return actionDoneMsg{message: err.Error(), kind: "error"}
		}
		return actionDoneMsg{message: "exported roster to " + path, kind: "success"}
	}
}

// --- ingest ---

func (m *Model) scanLocalConfigs() tea.Cmd {
	proposals := ingest.ScanAll(ingest.DefaultAdapters(), m.logger)
	if len(proposals) == 0 {
		return m.status.Show("no provider configs found on this machine", "info")
	}
	m.openDialog(newIngestDialog(proposals, func(accepted []ingest.Proposal) tea.Cmd {
		added := 0
		for _, proposal := range accepted {
			if _, err := m.app.Roster.AddProvider(proposal.Provider); err != nil {
				m.logger.Warn("skipping ingest proposal", "provider", proposal.Provider.Name, "error", err)
				continue
			}
			added++
		}
		return m.status.Show(fmt.Sprintf("added %d provider(s)", added), "success")
	}))
	return nil
}

// --- dialog bookkeeping ---

func (m *Model) openDialog(d dialog) {
	m.dialog = d
	m.app.Store.Set(state.UIDialogs, []string{d.ID()}, state.WithSource("ui"))
	m.app.Registry.Dispatch(events.Target("app.ui"), events.DialogOpenEvent,
		events.DialogPayload{DialogID: d.ID()})
}

func (m *Model) closeDialog() {
	if m.dialog == nil {
		return
	}
	id := m.dialog.ID()
	m.dialog = nil
	m.app.Store.Set(state.UIDialogs, []string{}, state.WithSource("ui"))
	m.app.Registry.Dispatch(events.Target("app.ui"), events.DialogCloseEvent,
		events.DialogPayload{DialogID: id})
}

// sync rebuilds every view-model from the store and mirrors the list
// cursors into the ui selection paths.
func (m *Model) sync() {
	m.providers.SetView(app.BuildProviderList(m.app.Store))
	m.models.SetView(app.BuildModelList(m.app.Store))

	preview, err := m.app.Project.RenderJSON()
	if err != nil {
		preview = "could not render config: " + err.Error()
	}
	m.save.SetView(app.BuildSaveView(m.app.Store, m.app.Roster.Validate(), preview, m.app.Probes.RecentHistory(5)))
	m.status.SetView(app.BuildStatus(m.app.Store))

	if id, _ := m.app.Store.Get(state.UISelectedProvider).(string); id != m.providers.SelectedID() {
		m.app.Store.Set(state.UISelectedProvider, m.providers.SelectedID(), state.WithSource("ui"))
	}
	if id, _ := m.app.Store.Get(state.UISelectedModel).(string); id != m.models.SelectedID() {
		m.app.Store.Set(state.UISelectedModel, m.models.SelectedID(), state.WithSource("ui"))
	}
}

// --- rendering ---

const (
	tabBarHeight = 2
	statusHeight = 1
)

// View assembles the frame: tab bar, active tab content, status bar,
// with any open dialog centered on top.
func (m *Model) View() tea.View {
	if m.width == 0 || m.height == 0 {
		return tea.NewView("Initializing...")
	}

	theme := styles.CurrentTheme()

	var content string
	switch m.app.Tabs.Current() {
	case app.TabModels:
		content = m.models.View()
	case app.TabSave:
		content = m.save.View()
	default:
		content = m.providers.View()
	}

	contentStyle := lipgloss.NewStyle().
		Width(m.width - 2).
		Height(m.height - tabBarHeight - statusHeight - 2).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)

	base := lipgloss.JoinVertical(lipgloss.Left,
		m.renderTabBar(),
		contentStyle.Render(content),
		m.status.View(),
	)

	if m.dialog != nil {
		overlay := lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.dialog.View(m.width))
		return tea.NewView(overlay)
	}
	return tea.NewView(base)
}

// renderTabBar projects the tab controller state.
func (m *Model) renderTabBar() string {
	theme := styles.CurrentTheme()
	bar := app.BuildTabBar(m.app.Tabs)

	title := styles.RenderThemeGradient("roster", true)

	tabs := make([]string, 0, len(bar.Tabs))
	for i, item := range bar.Tabs {
		label := fmt.Sprintf("%d %s", i+1, item.Title)
		switch {
		case item.Active:
			tabs = append(tabs, theme.S().ButtonFocused.Render(label))
		case item.Focused:
			tabs = append(tabs, theme.S().Button.Foreground(theme.BorderFocus).Render(label))
		default:
			tabs = append(tabs, theme.S().Button.Render(label))
		}
	}

	return "  " + title + "  " + strings.Join(tabs, " ")
}
