package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"github.com/billie-coop/roster/internal/app"
	"github.com/billie-coop/roster/internal/tui/styles"
)

// saveTab renders the save view: project status, validation, a
// highlighted preview of the config that would be written, and recent
// probe history.
type saveTab struct {
	view     app.SaveView
	viewport viewport.Model
	width    int
	height   int
	ready    bool
}

func newSaveTab() *saveTab {
	return &saveTab{viewport: viewport.New()}
}

// SetView swaps in a freshly built view-model and refreshes the
// preview content.
func (s *saveTab) SetView(view app.SaveView) {
	s.view = view
	s.viewport.SetContent(highlightJSON(view.Preview))
}

// SetSize implements the sizeable contract; the viewport gets the
// space left after the header and history sections.
func (s *saveTab) SetSize(width, height int) tea.Cmd {
	s.width = width
	s.height = height

	previewHeight := height - s.chromeHeight()
	if previewHeight < 3 {
		previewHeight = 3
	}
	s.viewport = viewport.New(
		viewport.WithWidth(width-4),
		viewport.WithHeight(previewHeight),
	)
	s.viewport.SetContent(highlightJSON(s.view.Preview))
	s.ready = true
	return nil
}

// chromeHeight is the vertical space the non-preview sections need.
func (s *saveTab) chromeHeight() int {
	h := 5 // project line, saved line, validation line, preview border
	if n := len(s.view.History); n > 0 {
		h += n + 2
	}
	return h
}

// Update scrolls the preview.
func (s *saveTab) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	s.viewport, cmd = s.viewport.Update(msg)
	return s, cmd
}

func (s *saveTab) Init() tea.Cmd { return nil }

// View renders the save tab.
func (s *saveTab) View() string {
	theme := styles.CurrentTheme()
	sections := []string{s.projectLine(), s.savedLine(), s.validationLine()}

	previewStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Width(s.width - 2)
	sections = append(sections, previewStyle.Render(s.viewport.View()))

	if len(s.view.History) > 0 {
		sections = append(sections, "", theme.S().Subtitle.Render("Recent probes"))
		for _, entry := range s.view.History {
			icon := theme.S().Success.Render(styles.CheckIcon)
			detail := entry.Message
			if !entry.Valid {
				icon = theme.S().Error.Render(styles.ErrorIcon)
				if entry.ErrorType != "" {
					detail = fmt.Sprintf("%s (%s)", entry.Message, entry.ErrorType)
				}
			}
			line := fmt.Sprintf("%s %s  %s  %s",
				icon,
				pad(entry.ProviderName, 20),
				entry.TestedAt.Format("15:04:05"),
				truncate(detail, s.width-36))
			sections = append(sections, theme.S().Muted.Render(line))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (s *saveTab) projectLine() string {
	theme := styles.CurrentTheme()
	if s.view.ProjectPath == "" {
		return theme.S().Muted.Render(styles.FolderIcon + " No project open. Press 'o' to open a Task Master project.")
	}
	if !s.view.ProjectValid {
		return theme.S().Error.Render(fmt.Sprintf("%s %s is not a Task Master project", styles.ErrorIcon, s.view.ProjectPath))
	}
	return theme.S().Text.Render(styles.FolderIcon + " " + s.view.ProjectPath)
}

func (s *saveTab) savedLine() string {
	theme := styles.CurrentTheme()
	switch {
	case s.view.Unsaved:
		return theme.S().Warning.Render(styles.WarningIcon + " Unsaved changes. Press 's' to write config.json.")
	case s.view.LastSaved != "":
		return theme.S().Muted.Render("Last saved " + s.view.LastSaved)
	default:
		return theme.S().Muted.Render("Nothing saved yet.")
	}
}

func (s *saveTab) validationLine() string {
	theme := styles.CurrentTheme()
	if s.view.Validation.Valid {
		return theme.S().Success.Render(styles.CheckIcon + " Roster is valid")
	}
	line := fmt.Sprintf("%s %d validation problem(s)", styles.ErrorIcon, len(s.view.Validation.Errors))
	if len(s.view.Validation.Errors) > 0 {
		line += ": " + truncate(s.view.Validation.Errors[0], s.width-len(line)-4)
	}
	return theme.S().Error.Render(line)
}
