package styles

// seed is the small set of colors a theme is built from. buildTheme
// derives the surfaces, borders, and muted text so every theme stays
// internally consistent.
type seed struct {
	name      string
	primary   string
	secondary string
	accent    string
	bg        string
	fg        string
}

// buildTheme derives a full theme from a seed. Surfaces step up from
// the base background by lightening; muted text blends toward the
// background so it dims without shifting hue.
func buildTheme(s seed) *Theme {
	bg := ParseHex(s.bg)
	fg := ParseHex(s.fg)

	return &Theme{
		Name:      s.name,
		Primary:   ParseHex(s.primary),
		Secondary: ParseHex(s.secondary),
		Accent:    ParseHex(s.accent),

		BgSubtle:    Lighten(bg, 8),
		BgHighlight: Lighten(bg, 20),

		FgBase:     fg,
		FgMuted:    Blend(fg, bg, 0.35),
		FgSubtle:   Blend(fg, bg, 0.55),
		FgSelected: Lighten(fg, 40),
		FgInverted: Darken(bg, 50),

		Border:      Lighten(bg, 18),
		BorderFocus: ParseHex(s.accent),

		Success: ParseHex("#27AE60"),
		Error:   ParseHex("#E74C3C"),
		Warning: ParseHex("#F39C12"),
		Info:    ParseHex("#3498DB"),

		Blue:      ParseHex("#3498DB"),
		BlueLight: ParseHex("#5DADE2"),
		Green:     ParseHex("#3DCC91"),
		Yellow:    ParseHex("#F4D03F"),
		Purple:    ParseHex("#8E44AD"),
		Pink:      ParseHex("#EC4899"),
		Orange:    ParseHex("#F97316"),
		Cyan:      ParseHex("#00CED1"),
	}
}

// NewRosterTheme is the default: ember brand colors on slate.
func NewRosterTheme() *Theme {
	return buildTheme(seed{
		name:      "roster",
		primary:   "#C0392B",
		secondary: "#F4D03F",
		accent:    "#F39C12",
		bg:        "#2C3E50",
		fg:        "#F5F6FA",
	})
}

// NewDarkTheme is a cool blue-violet palette on deep slate.
func NewDarkTheme() *Theme {
	return buildTheme(seed{
		name:      "dark",
		primary:   "#60A5FA",
		secondary: "#A78BFA",
		accent:    "#34D399",
		bg:        "#0F172A",
		fg:        "#F8FAFC",
	})
}

// NewAuroraTheme leans purple into blue on an indigo night sky.
func NewAuroraTheme() *Theme {
	return buildTheme(seed{
		name:      "aurora",
		primary:   "#7C3AED",
		secondary: "#60A5FA",
		accent:    "#A78BFA",
		bg:        "#1E1B4B",
		fg:        "#F5F3FF",
	})
}

// NewSunsetTheme runs warm orange into yellow over dusk gray.
func NewSunsetTheme() *Theme {
	return buildTheme(seed{
		name:      "sunset",
		primary:   "#D35400",
		secondary: "#F5B041",
		accent:    "#F4D03F",
		bg:        "#2E4053",
		fg:        "#FDFEFE",
	})
}

// NewFireTheme burns red into gold on charcoal.
func NewFireTheme() *Theme {
	return buildTheme(seed{
		name:      "fire",
		primary:   "#E74C3C",
		secondary: "#F1C40F",
		accent:    "#E67E22",
		bg:        "#3B3B3B",
		fg:        "#FFFFFF",
	})
}
