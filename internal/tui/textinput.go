package tui

import (
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"github.com/billie-coop/roster/internal/tui/styles"
)

// textInput is a basic single-line input field for dialogs.
type textInput struct {
	value       string
	placeholder string
	focused     bool
	cursorPos   int
}

func newTextInput(placeholder string) *textInput {
	return &textInput{placeholder: placeholder}
}

// Value returns the current value.
func (t *textInput) Value() string {
	return t.value
}

// SetValue sets the value and moves the cursor to the end.
func (t *textInput) SetValue(value string) {
	t.value = value
	t.cursorPos = len(value)
}

// Focus focuses the input.
func (t *textInput) Focus() {
	t.focused = true
}

// Blur removes focus.
func (t *textInput) Blur() {
	t.focused = false
}

// Focused reports whether the input has focus.
func (t *textInput) Focused() bool {
	return t.focused
}

// Update handles key events. Unfocused inputs ignore everything.
func (t *textInput) Update(msg tea.Msg) tea.Cmd {
	if !t.focused {
		return nil
	}

	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "backspace":
			if t.cursorPos > 0 {
				t.value = t.value[:t.cursorPos-1] + t.value[t.cursorPos:]
				t.cursorPos--
			}
		case "delete":
			if t.cursorPos < len(t.value) {
				t.value = t.value[:t.cursorPos] + t.value[t.cursorPos+1:]
			}
		case "left":
			if t.cursorPos > 0 {
				t.cursorPos--
			}
		case "right":
			if t.cursorPos < len(t.value) {
				t.cursorPos++
			}
		case "home", "ctrl+a":
			t.cursorPos = 0
		case "end", "ctrl+e":
			t.cursorPos = len(t.value)
		case "ctrl+u":
			t.value = ""
			t.cursorPos = 0
		default:
			// Regular character input
			if len(msg.String()) == 1 {
				t.value = t.value[:t.cursorPos] + msg.String() + t.value[t.cursorPos:]
				t.cursorPos++
			}
		}
	}

	return nil
}

// View renders the input with a block cursor when focused.
func (t *textInput) View() string {
	theme := styles.CurrentTheme()
	style := theme.S().Text

	if !t.focused {
		if t.value == "" && t.placeholder != "" {
			return theme.S().Subtle.Render(t.placeholder)
		}
		return style.Render(t.value)
	}

	cursorStyle := lipgloss.NewStyle().
		Background(theme.Accent).
		Foreground(theme.FgInverted)

	display := t.value
	if t.cursorPos < len(display) {
		before := display[:t.cursorPos]
		after := display[t.cursorPos+1:]
		display = before + cursorStyle.Render(string(display[t.cursorPos])) + after
	} else {
		display += cursorStyle.Render(" ")
	}

	return style.Render(display)
}
