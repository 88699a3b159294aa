package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/abdidvp/dataval/internal/domain"
)

var sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)

// RenderDiffs lists issue ids that appeared or were resolved since the
// previous run of the same target.
func RenderDiffs(diffs []domain.FileDiff) string {
	if len(diffs) == 0 {
		return "  " + dimStyle.Render("No changes since the last run.") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	fmt.Fprintf(&b, "  %s %s\n", sectionHeaderStyle.Render("Changes since last run"), dimStyle.Render(fmt.Sprintf("(%d files)", len(diffs))))
	for _, d := range diffs {
		fmt.Fprintf(&b, "    %s\n", titleStyle.Render(shortenPath(d.File)))
		renderIDs(&b, failStyle.Render("+"), d.New)
		renderIDs(&b, passStyle.Render("-"), d.Resolved)
	}
	return b.String()
}

func renderIDs(b *strings.Builder, marker string, ids []string) {
	for _, id := range ids {
		fmt.Fprintf(b, "      %s %s\n", marker, faintStyle.Render(id))
	}
}
