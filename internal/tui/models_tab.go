package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/bubbles/v2/key"
	"github.com/charmbracelet/lipgloss/v2"

	"github.com/billie-coop/roster/internal/app"
	"github.com/billie-coop/roster/internal/tui/styles"
)

// modelList renders the models tab: one row per model joined with its
// provider's name. Models whose provider was deleted are kept and
// flagged rather than hidden.
type modelList struct {
	view   app.ModelListView
	cursor int
	width  int
	height int
	keys   KeyMap
}

func newModelList(keys KeyMap) *modelList {
	return &modelList{keys: keys}
}

// SetView swaps in a freshly built view-model, clamping the cursor.
func (l *modelList) SetView(view app.ModelListView) {
	l.view = view
	if l.cursor >= len(view.Rows) {
		l.cursor = len(view.Rows) - 1
	}
	if l.cursor < 0 {
		l.cursor = 0
	}
}

// SetSize implements the sizeable contract.
func (l *modelList) SetSize(width, height int) tea.Cmd {
	l.width = width
	l.height = height
	return nil
}

// SelectedID returns the id of the model under the cursor, empty when
// the list is empty.
func (l *modelList) SelectedID() string {
	if l.cursor < len(l.view.Rows) {
		return l.view.Rows[l.cursor].Model.ID
	}
	return ""
}

// Update handles list navigation.
func (l *modelList) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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

func (l *modelList) Init() tea.Cmd { return nil }

// View renders the model table.
func (l *modelList) View() string {
	theme := styles.CurrentTheme()

	if len(l.view.Rows) == 0 {
		empty := theme.S().Muted.Render("No models yet. Press 'a' to add one.")
		return lipgloss.NewStyle().Padding(1, 2).Render(empty)
	}

	nameW := 22
	idW := 28
	providerW := 18
	rolesW := l.width - nameW - idW - providerW - 8
	if rolesW < 10 {
		rolesW = 10
	}

	header := theme.S().Subtitle.Render(
		"  " + pad("Name", nameW) + pad("Model ID", idW) + pad("Provider", providerW) + "Roles")

	rows := []string{header}
	for i, row := range l.view.Rows {
		provider := row.ProviderName
		if row.Orphaned {
			provider = styles.WarningIcon + " missing"
		}

		roles := make([]string, 0, len(row.Model.AllowedRoles))
		for _, r := range row.Model.AllowedRoles {
			roles = append(roles, string(r))
		}

		marker := "  "
		line := pad(row.Model.Name, nameW) +
			pad(row.Model.ModelID, idW) +
			pad(provider, providerW) +
			truncate(strings.Join(roles, ", "), rolesW)

		style := theme.S().Text
		if row.Orphaned {
			style = theme.S().Warning
		}
		if i == l.cursor {
			marker = theme.S().Title.Render("› ")
			style = style.Foreground(theme.FgSelected).Background(theme.BgHighlight)
		}
		rows = append(rows, marker+style.Render(line))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
