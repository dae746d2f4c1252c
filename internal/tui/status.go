package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/v2/spinner"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"github.com/billie-coop/roster/internal/app"
	"github.com/billie-coop/roster/internal/tui/styles"
)

// statusBar shows the project summary on the left and transient
// notifications on the right. Messages clear themselves after a few
// seconds.
type statusBar struct {
	view    app.StatusView
	message *statusMessage
	spinner spinner.Model
	width   int

	clearAfter time.Duration
}

type statusMessage struct {
	content   string
	kind      string // "info", "warning", "error", "success"
	timestamp time.Time
}

// clearMessageMsg is sent when a status message should be cleared.
type clearMessageMsg struct {
	timestamp time.Time
}

func newStatusBar() *statusBar {
	s := spinner.New(spinner.WithSpinner(spinner.Dot))
	return &statusBar{
		spinner:    s,
		clearAfter: 5 * time.Second,
	}
}

// SetView swaps in the projected status state.
func (c *statusBar) SetView(view app.StatusView) {
	c.view = view
}

// Show sets a transient message and schedules its clear.
func (c *statusBar) Show(content, kind string) tea.Cmd {
	c.message = &statusMessage{
		content:   content,
		kind:      kind,
		timestamp: time.Now(),
	}
	stamp := c.message.timestamp
	return tea.Tick(c.clearAfter, func(time.Time) tea.Msg {
		return clearMessageMsg{timestamp: stamp}
	})
}

// SetSize implements the sizeable contract.
func (c *statusBar) SetSize(width, height int) tea.Cmd {
	c.width = width
	return nil
}

func (c *statusBar) Init() tea.Cmd {
	return c.spinner.Tick
}

// Update clears expired messages and advances the spinner.
func (c *statusBar) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case clearMessageMsg:
		// Only clear if this is for the current message.
		if c.message != nil && msg.timestamp.Equal(c.message.timestamp) {
			c.message = nil
		}
		return c, nil
	}

	var cmd tea.Cmd
	c.spinner, cmd = c.spinner.Update(msg)
	return c, cmd
}

// View renders the bar.
func (c *statusBar) View() string {
	if c.width == 0 {
		return ""
	}

	theme := styles.CurrentTheme()
	barStyle := lipgloss.NewStyle().
		Width(c.width).
		Background(theme.BgSubtle).
		Foreground(theme.FgBase).
		Padding(0, 1)

	left := c.leftContent()
	right := c.rightContent()

	available := c.width - 2
	if lipgloss.Width(left)+lipgloss.Width(right)+2 > available {
		right = truncate(right, available/2)
		left = truncate(left, available-lipgloss.Width(right)-2)
	}

	gap := available - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return barStyle.Render(left + lipgloss.NewStyle().Width(gap).Render("") + right)
}

func (c *statusBar) leftContent() string {
	theme := styles.CurrentTheme()
	var parts []string
	if c.view.Testing {
		parts = append(parts, c.spinner.View()+" testing")
	}
	if c.view.Loading {
		parts = append(parts, styles.LoadingIcon+" loading")
	}
	if c.view.Unsaved {
		parts = append(parts, theme.S().Warning.Render("● unsaved"))
	} else {
		parts = append(parts, theme.S().Success.Render("saved"))
	}

	out := ""
	for i, p := range parts {
		if i > 0 {
			out += "  "
		}
		out += p
	}
	return out
}

func (c *statusBar) rightContent() string {
	if c.message == nil {
		return "? help"
	}
	theme := styles.CurrentTheme()
	switch c.message.kind {
	case "success":
		return theme.S().Success.Render(styles.CheckIcon + " " + c.message.content)
	case "warning":
		return theme.S().Warning.Render(styles.WarningIcon + " " + c.message.content)
	case "error":
		return theme.S().Error.Render(styles.ErrorIcon + " " + c.message.content)
	default:
		return theme.S().Info.Render(c.message.content)
	}
}
