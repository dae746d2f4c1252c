package styles

import (
	"image/color"
	"testing"
)

func TestManagerFallsBackToDefault(t *testing.T) {
	m := NewManager("no-such-theme")
	if got := m.Current().Name; got != "roster" {
		t.Fatalf("Current().Name = %q, want %q", got, "roster")
	}
}

func TestManagerSetTheme(t *testing.T) {
	m := NewManager("roster")
	if err := m.SetTheme("aurora"); err != nil {
		t.Fatalf("SetTheme(aurora) = %v", err)
	}
	if got := m.Current().Name; got != "aurora" {
		t.Errorf("Current().Name = %q, want %q", got, "aurora")
	}
	if err := m.SetTheme("bogus"); err == nil {
		t.Error("SetTheme(bogus) = nil, want error")
	}
}

func TestBuildThemeDerivesSurfaces(t *testing.T) {
	theme := buildTheme(seed{
		name:      "probe",
		primary:   "#C0392B",
		secondary: "#F4D03F",
		accent:    "#F39C12",
		bg:        "#2C3E50",
		fg:        "#F5F6FA",
	})

	bg := ParseHex("#2C3E50")
	if lum(theme.BgHighlight) <= lum(bg) {
		t.Error("BgHighlight is not lighter than the base background")
	}
	if lum(theme.BgSubtle) <= lum(bg) {
		t.Error("BgSubtle is not lighter than the base background")
	}
	if lum(theme.FgMuted) >= lum(theme.FgBase) {
		t.Error("FgMuted is not dimmer than FgBase")
	}
	if lum(theme.FgSubtle) >= lum(theme.FgMuted) {
		t.Error("FgSubtle is not dimmer than FgMuted")
	}
	if lum(theme.FgInverted) >= lum(bg) {
		t.Error("FgInverted is not darker than the base background")
	}
}

func TestApplyGradientHandlesShortInput(t *testing.T) {
	start := ParseHex("#C0392B")
	end := ParseHex("#F4D03F")

	if got := ApplyGradient("", start, end, false); got != "" {
		t.Errorf("ApplyGradient(empty) = %q, want empty", got)
	}
	if got := ApplyGradient("x", start, end, true); got == "" {
		t.Error("ApplyGradient(single cluster) rendered nothing")
	}
}

func lum(c color.Color) uint32 {
	r, g, b, _ := c.RGBA()
	return r + g + b
}
