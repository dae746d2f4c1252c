package tui

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"

	"github.com/billie-coop/roster/internal/tui/styles"
)

// highlightJSON renders a JSON document with syntax highlighting in the
// current theme's colors. On any failure it returns the source
// unchanged; a plain preview beats no preview.
func highlightJSON(src string) string {
	style, err := chroma.NewStyle("roster", styles.GetChromaTheme())
	if err != nil {
		return src
	}

	lexer := lexers.Get("json")
	if lexer == nil {
		return src
	}

	iterator, err := lexer.Tokenise(nil, src)
	if err != nil {
		return src
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		return src
	}

	var out strings.Builder
	if err := formatter.Format(&out, style, iterator); err != nil {
		return src
	}
	return out.String()
}
