package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
)

// CommentIndent is the left margin of a rendered comment.
const CommentIndent = 4

// RenderMarkdown renders a comment as terminal markdown wrapped at width.
// The result ends with exactly one newline.
func RenderMarkdown(content string, width int) (string, error) {
	if width <= 0 {
		width = DefaultTermWidth
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(commentStyle(lipgloss.HasDarkBackground())),
		glamour.WithWordWrap(width),
		glamour.WithPreservedNewLines(),
	)
	if err != nil {
		return "", err
	}
	out, err := r.Render(content)
	if err != nil {
		return "", err
	}
	return strings.Trim(out, "\n") + "\n", nil
}

// commentStyle starts from glamour's stock theme and strips it down for
// short notes printed under an entry.
func commentStyle(dark bool) ansi.StyleConfig {
	style := styles.LightStyleConfig
	if dark {
		style = styles.DarkStyleConfig
	}

	margin := uint(CommentIndent)
	style.Document.Margin = &margin
	style.Document.BlockPrefix = ""
	style.Document.BlockSuffix = ""

	// Headings keep their markers and lose the banner background.
	style.H1 = style.H2
	if color, ok := AccentColor(); ok {
		c := color
		style.Heading.Color = &c
		style.Link.Color = &c
	}
	return style
}
