package styles

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/charmbracelet/glamour/v2/ansi"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"
)

// Theme is the color vocabulary the views draw from. Brand and surface
// colors vary per theme; status and syntax colors are shared so probe
// outcomes and highlighted JSON read the same everywhere.
type Theme struct {
	Name string

	// Brand colors
	Primary   color.Color
	Secondary color.Color
	Accent    color.Color

	// Surfaces
	BgSubtle    color.Color
	BgHighlight color.Color

	// Text
	FgBase     color.Color
	FgMuted    color.Color
	FgSubtle   color.Color
	FgSelected color.Color
	FgInverted color.Color

	// Borders
	Border      color.Color
	BorderFocus color.Color

	// Status colors
	Success color.Color
	Error   color.Color
	Warning color.Color
	Info    color.Color

	// Syntax colors
	Blue      color.Color
	BlueLight color.Color
	Green     color.Color
	Yellow    color.Color
	Purple    color.Color
	Pink      color.Color
	Orange    color.Color
	Cyan      color.Color

	styles *Styles
}

// Styles is the prebuilt style set. Only what the views render.
type Styles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Text     lipgloss.Style
	Muted    lipgloss.Style
	Subtle   lipgloss.Style

	Success lipgloss.Style
	Error   lipgloss.Style
	Warning lipgloss.Style
	Info    lipgloss.Style

	Button        lipgloss.Style
	ButtonFocused lipgloss.Style

	Markdown ansi.StyleConfig
}

func (t *Theme) S() *Styles {
	if t.styles == nil {
		t.styles = t.buildStyles()
	}
	return t.styles
}

func (t *Theme) buildStyles() *Styles {
	base := lipgloss.NewStyle().Foreground(t.FgBase)

	return &Styles{
		Title:    base.Foreground(t.Accent).Bold(true),
		Subtitle: base.Foreground(t.Secondary).Bold(true),
		Text:     base,
		Muted:    base.Foreground(t.FgMuted),
		Subtle:   base.Foreground(t.FgSubtle),

		Success: base.Foreground(t.Success),
		Error:   base.Foreground(t.Error),
		Warning: base.Foreground(t.Warning),
		Info:    base.Foreground(t.Info),

		Button: base.
			Background(t.BgSubtle).
			Padding(0, 2),
		ButtonFocused: base.
			Background(t.Primary).
			Foreground(t.FgInverted).
			Padding(0, 2),

		Markdown: t.buildMarkdownStyles(),
	}
}

func boolPtr(b bool) *bool       { return &b }
func stringPtr(s string) *string { return &s }

// buildMarkdownStyles covers the markdown the help screen emits:
// headings, paragraphs, inline code, and the key tables.
func (t *Theme) buildMarkdownStyles() ansi.StyleConfig {
	return ansi.StyleConfig{
		Document: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Color: stringPtr(colorToHex(t.FgBase)),
			},
		},
		Heading: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				BlockSuffix: "\n",
				Color:       stringPtr(colorToHex(t.Secondary)),
				Bold:        boolPtr(true),
			},
		},
		H1: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Prefix:          " ",
				Suffix:          " ",
				Color:           stringPtr(colorToHex(t.FgInverted)),
				BackgroundColor: stringPtr(colorToHex(t.Primary)),
				Bold:            boolPtr(true),
			},
		},
		H2: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Prefix: "## ",
				Color:  stringPtr(colorToHex(t.Accent)),
				Bold:   boolPtr(true),
			},
		},
		Text: ansi.StylePrimitive{
			Color: stringPtr(colorToHex(t.FgBase)),
		},
		Paragraph: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				BlockSuffix: "\n",
			},
		},
		Code: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{
				Color:           stringPtr(colorToHex(t.Accent)),
				BackgroundColor: stringPtr(colorToHex(t.BgSubtle)),
			},
		},
		Table: ansi.StyleTable{
			StyleBlock: ansi.StyleBlock{
				StylePrimitive: ansi.StylePrimitive{},
			},
			CenterSeparator: stringPtr("┼"),
			ColumnSeparator: stringPtr("│"),
			RowSeparator:    stringPtr("─"),
		},
	}
}

// Manager handles theme registration and switching.
type Manager struct {
	themes  map[string]*Theme
	current *Theme
}

var defaultManager *Manager

func SetDefaultManager(m *Manager) {
	defaultManager = m
}

func DefaultManager() *Manager {
	if defaultManager == nil {
		defaultManager = NewManager("roster")
	}
	return defaultManager
}

func CurrentTheme() *Theme {
	return DefaultManager().Current()
}

func NewManager(defaultTheme string) *Manager {
	m := &Manager{
		themes: make(map[string]*Theme),
	}

	m.Register(NewRosterTheme())
	m.Register(NewDarkTheme())
	m.Register(NewAuroraTheme())
	m.Register(NewSunsetTheme())
	m.Register(NewFireTheme())

	m.current = m.themes[defaultTheme]
	if m.current == nil {
		m.current = m.themes["roster"]
	}

	return m
}

func (m *Manager) Register(theme *Theme) {
	m.themes[theme.Name] = theme
}

func (m *Manager) Current() *Theme {
	return m.current
}

func (m *Manager) SetTheme(name string) error {
	if theme, ok := m.themes[name]; ok {
		m.current = theme
		return nil
	}
	return fmt.Errorf("theme %s not found", name)
}

func (m *Manager) List() []string {
	names := make([]string, 0, len(m.themes))
	for name := range m.themes {
		names = append(names, name)
	}
	return names
}

// Color utilities

// ParseHex converts a "#rrggbb" string to a color.
func ParseHex(hex string) color.Color {
	var r, g, b uint8
	fmt.Sscanf(hex, "#%02x%02x%02x", &r, &g, &b)
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// Blend mixes two colors in HCL space; t=0 gives a, t=1 gives b.
func Blend(a, b color.Color, t float64) color.Color {
	ca, _ := colorful.MakeColor(a)
	cb, _ := colorful.MakeColor(b)
	return ca.BlendHcl(cb, t)
}

// Darken makes a color darker by percentage (0-100).
func Darken(c color.Color, percent float64) color.Color {
	r, g, b, a := c.RGBA()
	factor := 1.0 - percent/100.0
	return color.RGBA{
		R: uint8(float64(r>>8) * factor),
		G: uint8(float64(g>>8) * factor),
		B: uint8(float64(b>>8) * factor),
		A: uint8(a >> 8),
	}
}

// Lighten makes a color lighter by percentage (0-100).
func Lighten(c color.Color, percent float64) color.Color {
	r, g, b, a := c.RGBA()
	factor := percent / 100.0
	return color.RGBA{
		R: uint8(min(255, float64(r>>8)+255*factor)),
		G: uint8(min(255, float64(g>>8)+255*factor)),
		B: uint8(min(255, float64(b>>8)+255*factor)),
		A: uint8(a >> 8),
	}
}

// ApplyGradient renders text with a horizontal gradient, one color
// step per grapheme cluster.
func ApplyGradient(text string, start, end color.Color, bold bool) string {
	if text == "" {
		return ""
	}

	var clusters []string
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		clusters = append(clusters, string(gr.Runes()))
	}

	var out strings.Builder
	steps := len(clusters)
	for i, cluster := range clusters {
		t := 0.0
		if steps > 1 {
			t = float64(i) / float64(steps-1)
		}
		style := lipgloss.NewStyle().Foreground(Blend(start, end, t)).Bold(bold)
		fmt.Fprint(&out, style.Render(cluster))
	}
	return out.String()
}

// colorToHex converts a color to its "rrggbb" text form.
func colorToHex(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("%02x%02x%02x", r>>8, g>>8, b>>8)
}
