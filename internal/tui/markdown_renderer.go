package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/x/ansi"
)

// previewMaxLines caps how much of a card description the drag preview shows.
const previewMaxLines = 4

// markdownRenderer renders card descriptions for the drag preview. The glamour
// renderer is rebuilt only when the wrap width changes.
type markdownRenderer struct {
	width    int
	renderer *glamour.TermRenderer
}

// render converts markdown to ANSI text wrapped at width, dropping blank lines and
// keeping at most maxLines lines. Render failures fall back to the raw markdown.
func (r *markdownRenderer) render(markdown string, width, maxLines int) string {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return ""
	}

	wrapWidth := max(24, width)
	if r.renderer == nil || r.width != wrapWidth {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(wrapWidth),
		)
		if err != nil {
			return clipLines(markdown, maxLines)
		}
		r.renderer = renderer
		r.width = wrapWidth
	}

	rendered, err := r.renderer.Render(markdown)
	if err != nil {
		return clipLines(markdown, maxLines)
	}
	return clipLines(rendered, maxLines)
}

func clipLines(text string, maxLines int) string {
	out := make([]string, 0, maxLines)
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(ansi.Strip(line)) == "" {
			continue
		}
		if maxLines > 0 && len(out) == maxLines {
			break
		}
		out = append(out, strings.TrimRight(line, " "))
	}
	return strings.Join(out, "\n")
}
