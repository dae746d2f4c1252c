package tui

import (
	"strings"

	"github.com/rivo/uniseg"
)

// truncate cuts s to at most width terminal cells, appending an
// ellipsis when anything was dropped. Grapheme clusters are never
// split.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if uniseg.StringWidth(s) <= width {
		return s
	}

	var b strings.Builder
	used := 0
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		w := gr.Width()
		if used+w > width-1 {
			break
		}
		b.WriteString(string(gr.Runes()))
		used += w
	}
	return b.String() + "…"
}

// pad right-pads s with spaces to the given cell width, truncating
// first when it is too long.
func pad(s string, width int) string {
	s = truncate(s, width)
	if gap := width - uniseg.StringWidth(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}
