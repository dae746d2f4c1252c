package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/bubbles/v2/key"
	"github.com/charmbracelet/lipgloss/v2"

	"github.com/billie-coop/roster/internal/app"
	"github.com/billie-coop/roster/internal/tui/styles"
)

// providerList renders the providers tab: one row per provider joined
// with its latest probe outcome.
type providerList struct {
	view   app.ProviderListView
	cursor int
	width  int
	height int
	keys   KeyMap
}

func newProviderList(keys KeyMap) *providerList {
	return &providerList{keys: keys}
}

// SetView swaps in a freshly built view-model, clamping the cursor.
func (l *providerList) SetView(view app.ProviderListView) {
	l.view = view
	if l.cursor >= len(view.Rows) {
		l.cursor = len(view.Rows) - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
}

// SetSize implements the sizeable contract.
func (l *providerList) SetSize(width, height int) tea.Cmd {
	l.width = width
	l.height = height
	return nil
}

// SelectedID returns the id of the provider under the cursor, empty
// when the list is empty.
func (l *providerList) SelectedID() string {
	if l.cursor < len(l.view.Rows) {
		return l.view.Rows[l.cursor].Provider.ID
	}
	return ""
}

// Update handles list navigation.
func (l *providerList) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch {
		case key.Matches(msg, l.keys.Down):
			if l.cursor < len(l.view.Rows)-1 {
				l.cursor++
			}
		case key.Matches(msg, l.keys.Up):
			if l.cursor > 0 {
				l.cursor--
			}
		case key.Matches(msg, l.keys.Top):
			l.cursor = 0
		case key.Matches(msg, l.keys.Bottom):
			if len(l.view.Rows) > 0 {
				l.cursor = len(l.view.Rows) - 1
			}
		}
	}
	return l, nil
}

func (l *providerList) Init() tea.Cmd { return nil }

// View renders the provider table.
func (l *providerList) View() string {
	theme := styles.CurrentTheme()

	if len(l.view.Rows) == 0 {
		empty := theme.S().Muted.Render("No providers yet. Press 'a' to add one or 'i' to scan local configs.")
		return lipgloss.NewStyle().Padding(1, 2).Render(empty)
	}

	nameW := 22
	typeW := 22
	statusW := 14
	endpointW := l.width - nameW - typeW - statusW - 8
	if endpointW < 12 {
		endpointW = 12
	}

	header := theme.S().Subtitle.Render(
		"  " + pad("Name", nameW) + pad("Type", typeW) + pad("Endpoint", endpointW) + "Status")

	rows := []string{header}
	for i, row := range l.view.Rows {
		marker := "  "
		line := pad(row.Provider.Name, nameW) +
			pad(string(row.Provider.Type), typeW) +
			pad(row.Provider.Endpoint, endpointW) +
			l.statusCell(row)

		style := theme.S().Text
		if i == l.cursor {
			marker = theme.S().Title.Render("› ")
			style = style.Foreground(theme.FgSelected).Background(theme.BgHighlight)
		}
		rows = append(rows, marker+style.Render(line))
	}

	if l.view.Testing && l.view.Current != "" {
		rows = append(rows, "")
		rows = append(rows, theme.S().Info.Render(fmt.Sprintf("%s testing %s", styles.LoadingIcon, l.view.Current)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// statusCell shows the latest probe outcome for the row.
func (l *providerList) statusCell(row app.ProviderRow) string {
	theme := styles.CurrentTheme()
	if !row.Tested {
		if row.Provider.IsValid {
			return theme.S().Success.Render(styles.CheckIcon + " valid")
		}
		return theme.S().Subtle.Render("untested")
	}
	if row.Probe.Valid {
		return theme.S().Success.Render(styles.CheckIcon + " reachable")
	}
	label := string(row.Probe.Details.ErrorType)
	if label == "" {
		label = "failed"
	}
	return theme.S().Error.Render(styles.ErrorIcon + " " + label)
}
