package tui

import (
	tea "github.com/charmbracelet/bubbletea/v2"

	"github.com/billie-coop/roster/internal/tui/styles"
)

const helpText = `# roster

Manage AI providers and models, then sync them into a Task Master
project's ` + "`.taskmaster/config.json`" + `.

## Navigation

| Key | Action |
| --- | --- |
| ←/→, h/l, tab | move between tabs |
| enter/space | activate the focused tab |
| 1/2/3 | jump straight to a tab |
| ↑/↓, j/k | move in lists |

## Editing

| Key | Action |
| --- | --- |
| a | add a provider or model |
| e | edit the selected entry |
| d | delete the selected entry |
| i | scan local agent configs for providers |

## Providers

| Key | Action |
| --- | --- |
| t | test the selected provider |
| T | test every provider |

## Project

| Key | Action |
| --- | --- |
| o | open a Task Master project |
| r | reload the roster from the project |
| s | save the roster to config.json |
| c | copy the rendered config |
| y | export the roster as YAML |

Press esc or ? to close this help.
`

// helpDialog renders the key reference as markdown.
type helpDialog struct {
	rendered string
}

func newHelpDialog(width int) *helpDialog {
	contentWidth := width - 12
	if contentWidth > 70 {
		contentWidth = 70
	}
	if contentWidth < 40 {
		contentWidth = 40
	}

	renderer := styles.GetMarkdownRenderer(contentWidth)
	rendered, err := renderer.Render(helpText)
	if err != nil {
		rendered = helpText
	}
	return &helpDialog{rendered: rendered}
}

func (d *helpDialog) ID() string { return "help" }

func (d *helpDialog) Update(msg tea.Msg) (bool, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return false, nil
	}
	switch keyMsg.String() {
	case "esc", "?", "q", "enter":
		return true, nil
	}
	return false, nil
}

func (d *helpDialog) View(width int) string {
	return dialogFrame("Help", d.rendered, width)
}
