package report

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// Terminal renders markdown for display in a terminal. When plain is set or
// rendering fails the markdown is returned unchanged.
func Terminal(markdown string, width int, plain bool) string {
	if plain {
		return markdown
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return markdown
	}
	out, err := r.Render(markdown)
	if err != nil {
		return markdown + fmt.Sprintf("\n<!-- render error: %v -->\n", err)
	}
	return out
}
