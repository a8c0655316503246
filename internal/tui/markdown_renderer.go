package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// markdownRenderer renders card descriptions and recreates the glamour
// renderer when the wrap width or the light/dark style changes.
type markdownRenderer struct {
	width    int
	style    string
	renderer *glamour.TermRenderer
}

// glamourStyle picks the standard style that reads on the theme background.
func glamourStyle(background colorful.Color) string {
	if l, _, _ := background.Lab(); l > 0.6 {
		return "light"
	}
	return "dark"
}

// render converts markdown into ANSI-styled text wrapped at width.
func (r *markdownRenderer) render(markdown string, width int, style string) string {
	markdown = strings.TrimSpace(markdown)
	if markdown == "" {
		return ""
	}
	wrapWidth := max(width, 24)

	if r.renderer == nil || r.width != wrapWidth || r.style != style {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(wrapWidth),
		)
		if err != nil {
			return markdown
		}
		r.renderer = renderer
		r.width = wrapWidth
		r.style = style
	}

	rendered, err := r.renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.TrimRight(rendered, "\n")
}
