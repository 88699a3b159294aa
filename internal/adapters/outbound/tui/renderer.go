package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/abdidvp/dataval/internal/domain"
	"github.com/abdidvp/dataval/internal/domain/summary"
)

// ── warm palette ──
var (
	accent  = lipgloss.Color("#D97706") // amber
	fg      = lipgloss.Color("#E8E6E3") // warm light gray
	dim     = lipgloss.Color("#6B7280") // muted gray
	faint   = lipgloss.Color("#3F3F46") // very dim
	success = lipgloss.Color("#22C55E") // green
	danger  = lipgloss.Color("#EF4444") // red
	warning = lipgloss.Color("#F59E0B") // amber-yellow
	info    = lipgloss.Color("#8B949E") // soft blue-gray
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68)

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	errorTagStyle = lipgloss.NewStyle().Foreground(danger).Bold(true)
	warnTagStyle  = lipgloss.NewStyle().Foreground(warning).Bold(true)
	infoTagStyle  = lipgloss.NewStyle().Foreground(info)
	pathStyle     = lipgloss.NewStyle().Foreground(accent)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	hintStyle     = lipgloss.NewStyle().Foreground(dim).Italic(true)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

// RenderRun formats the results of a validation run for the terminal.
// Issues are listed in detection order under each file.
func RenderRun(results []domain.Result) string {
	if len(results) == 0 {
		return "  " + dimStyle.Render("No supported files found.") + "\n"
	}

	var b strings.Builder

	failed := 0
	for _, r := range results {
		if !r.Report.Passed() {
			failed++
		}
	}
	title := headerStyle.Render("dataval")
	subtitle := dimStyle.Render("Validation Report")
	status := passStyle.Render(fmt.Sprintf("%d passed", len(results)-failed))
	if failed > 0 {
		status += dimStyle.Render("  ·  ") + failStyle.Render(fmt.Sprintf("%d failed", failed))
	}
	files := dimStyle.Render(fmt.Sprintf("%d files  ·  ", len(results)))
	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + files + status))
	b.WriteString("\n\n")

	for i, r := range results {
		renderReport(&b, r.Report)
		if i < len(results)-1 {
			b.WriteString("  " + separatorLine + "\n\n")
		}
	}
	return b.String()
}

func renderReport(b *strings.Builder, r *domain.Report) {
	icon := passStyle.Render("●")
	if !r.Passed() {
		icon = failStyle.Render("●")
	}
	fmt.Fprintf(b, "  %s %s  %s\n", icon, titleStyle.Render(shortenPath(r.File)), countTags(r))

	if len(r.Issues) == 0 {
		b.WriteString("    " + passStyle.Render("No issues found.") + "\n\n")
		return
	}
	b.WriteString("\n")
	for _, issue := range r.Issues {
		renderIssue(b, issue)
	}

	buckets := summary.Buckets(r)
	if len(buckets) > 1 {
		b.WriteString("\n    " + dimStyle.Render("By category:") + "\n")
		for _, bk := range buckets {
			fmt.Fprintf(b, "      %s %s\n", padRight(bk.Key, 22), dimStyle.Render(fmt.Sprintf("%d", len(bk.Issues))))
		}
	}
	b.WriteString("\n")
}

func countTags(r *domain.Report) string {
	var tags []string
	if n := r.ErrorCount(); n > 0 {
		tags = append(tags, errorTagStyle.Render(fmt.Sprintf("%d errors", n)))
	}
	if n := r.WarningCount(); n > 0 {
		tags = append(tags, warnTagStyle.Render(fmt.Sprintf("%d warnings", n)))
	}
	if n := r.InfoCount(); n > 0 {
		tags = append(tags, infoTagStyle.Render(fmt.Sprintf("%d info", n)))
	}
	return strings.Join(tags, "  ")
}

func renderIssue(b *strings.Builder, issue domain.Issue) {
	loc := issue.Path
	if issue.Line > 0 {
		loc += fmt.Sprintf(" (line %d)", issue.Line)
	}
	fmt.Fprintf(b, "    %s %s %s\n", severityTag(issue.Severity), pathStyle.Render(loc), faintStyle.Render(string(issue.Type)))
	fmt.Fprintf(b, "         %s\n", dimStyle.Render(issue.Message))
	if s := issue.Suggestion; s != nil {
		fmt.Fprintf(b, "         %s %s\n", passStyle.Render("→"), hintStyle.Render(s.Message))
		if s.Example != "" {
			fmt.Fprintf(b, "           %s\n", faintStyle.Render(s.Example))
		}
	}
}

func severityTag(severity domain.Severity) string {
	switch severity {
	case domain.SeverityError:
		return errorTagStyle.Render("error")
	case domain.SeverityWarning:
		return warnTagStyle.Render("warn ")
	default:
		return infoTagStyle.Render("info ")
	}
}

func shortenPath(path string) string {
	parts := strings.Split(filepath.ToSlash(path), "/")
	if len(parts) > 3 {
		return strings.Join(parts[len(parts)-3:], "/")
	}
	return path
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// RenderHistory formats recorded runs for terminal output.
func RenderHistory(entries []domain.RunEntry) string {
	if len(entries) == 0 {
		return "  " + dimStyle.Render("No run history found.") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render("Run History") + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 50)) + "\n\n")

	for i, e := range entries {
		hash := e.CommitHash
		if len(hash) > 7 {
			hash = hash[:7]
		}
		if hash == "" {
			hash = "·······"
		}
		ts := e.Timestamp
		if len(ts) > 10 {
			ts = ts[:10]
		}

		status := passStyle.Render("pass")
		if !e.Passed() {
			status = failStyle.Render("fail")
		}

		line := fmt.Sprintf("  %s  %s  %s  %s  %s",
			dimStyle.Render(ts),
			faintStyle.Render(hash),
			status,
			dimStyle.Render(fmt.Sprintf("%d files, %d issues", len(e.Files), e.IssueCount())),
			e.Target,
		)

		if i > 0 {
			diff := e.IssueCount() - entries[i-1].IssueCount()
			if diff < 0 {
				line += "  " + passStyle.Render(fmt.Sprintf("↓%d", -diff))
			} else if diff > 0 {
				line += "  " + failStyle.Render(fmt.Sprintf("↑%d", diff))
			}
		}

		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
