// Package render writes per-file validation reports as Markdown and HTML.
package render

import (
	"bytes"
	_ "embed"
	"fmt"
	htmltemplate "html/template"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/abdidvp/dataval/internal/domain"
	"github.com/abdidvp/dataval/internal/domain/summary"
)

//go:embed report.md.tmpl
var markdownTemplate string

//go:embed report.html.tmpl
var htmlTemplate string

var funcs = map[string]any{
	"inc": func(i int) int { return i + 1 },
}

var (
	mdTmpl   = template.Must(template.New("report.md").Funcs(funcs).Parse(markdownTemplate))
	htmlTmpl = htmltemplate.Must(htmltemplate.New("report.html").Funcs(funcs).Parse(htmlTemplate))
)

// view is the data both templates render.
type view struct {
	File         string
	Passed       bool
	ErrorCount   int
	WarningCount int
	Summary      string
	Issues       []domain.Issue
}

func newView(r *domain.Report) view {
	return view{
		File:         r.File,
		Passed:       r.Passed(),
		ErrorCount:   r.ErrorCount(),
		WarningCount: r.WarningCount(),
		Summary:      summary.Summarize(r),
		Issues:       r.Issues,
	}
}

// Markdown renders a report as Markdown.
func Markdown(r *domain.Report) (string, error) {
	var buf bytes.Buffer
	if err := mdTmpl.Execute(&buf, newView(r)); err != nil {
		return "", fmt.Errorf("rendering markdown report: %w", err)
	}
	return buf.String(), nil
}

// HTML renders a report as a standalone, escaped HTML page.
func HTML(r *domain.Report) (string, error) {
	var buf bytes.Buffer
	if err := htmlTmpl.Execute(&buf, newView(r)); err != nil {
		return "", fmt.Errorf("rendering html report: %w", err)
	}
	return buf.String(), nil
}

// FileName returns "<stem>_report.<ext>" for a validated file.
func FileName(file, ext string) string {
	base := filepath.Base(file)
	return strings.TrimSuffix(base, filepath.Ext(base)) + "_report." + ext
}

// Write renders r into dir as Markdown and, when withHTML is set, HTML.
// It returns the paths written.
func Write(dir string, r *domain.Report, withHTML bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating report dir: %w", err)
	}

	md, err := Markdown(r)
	if err != nil {
		return nil, err
	}
	mdPath := filepath.Join(dir, FileName(r.File, "md"))
	if err := os.WriteFile(mdPath, []byte(md), 0644); err != nil {
		return nil, err
	}
	written := []string{mdPath}

	if withHTML {
		page, err := HTML(r)
		if err != nil {
			return nil, err
		}
		htmlPath := filepath.Join(dir, FileName(r.File, "html"))
		if err := os.WriteFile(htmlPath, []byte(page), 0644); err != nil {
			return nil, err
		}
		written = append(written, htmlPath)
	}
	return written, nil
}
