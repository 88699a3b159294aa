package domain

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// Severity classifies how critical an issue is. Only SeverityError fails a file.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Rank orders severities for counting and sorting: error < warning < info.
func (s Severity) Rank() int {
	switch s {
	case SeverityError:
		return 0
	case SeverityWarning:
		return 1
	default:
		return 2
	}
}

// ParseSeverity maps a loose severity name to a Severity.
func ParseSeverity(s string) (Severity, error) {
	switch s {
	case "error", "fatal":
		return SeverityError, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "info":
		return SeverityInfo, nil
	default:
		return "", fmt.Errorf("unknown severity %q", s)
	}
}

// IssueType is the category tag of an issue.
type IssueType string

const (
	IssueWellFormedness IssueType = "well-formedness"
	IssueSchema         IssueType = "schema-violation"
	IssueSchematron     IssueType = "schematron-violation"
	IssueParse          IssueType = "parse-error"
	IssueIO             IssueType = "io-error"
	IssueMissingColumn  IssueType = "missing-column"
	IssueTypeMismatch   IssueType = "type-mismatch"
	IssueRuleViolation  IssueType = "rule-violation"
)

// Location sentinels used when no precise location is known.
const (
	RootPath  = "/"
	TablePath = "$"
)

// Suggestion is guidance for resolving an Issue. It is never modified after creation.
type Suggestion struct {
	Message string `json:"message"`
	Example string `json:"example,omitempty"`
}

// Issue is one normalized validation finding.
type Issue struct {
	ID         string            `json:"id"`
	Type       IssueType         `json:"issue_type"`
	Severity   Severity          `json:"severity"`
	Path       string            `json:"path"`
	Message    string            `json:"message"`
	Rule       string            `json:"rule,omitempty"`
	Line       int               `json:"line,omitempty"`
	Column     int               `json:"column,omitempty"`
	Context    map[string]string `json:"context,omitempty"`
	Suggestion *Suggestion       `json:"suggestion,omitempty"`
}

// NewIssue builds an error-severity issue with its deterministic id.
// Empty path and message are replaced so both fields are always set.
func NewIssue(typ IssueType, path, message string) Issue {
	if path == "" {
		path = RootPath
	}
	if message == "" {
		message = string(typ)
	}
	return Issue{
		ID:       IssueID(typ, path, message),
		Type:     typ,
		Severity: SeverityError,
		Path:     path,
		Message:  message,
	}
}

// WithRule returns a copy of the issue carrying the violated rule reference.
func (i Issue) WithRule(rule string) Issue {
	i.Rule = rule
	return i
}

// WithSeverity returns a copy of the issue with the given severity.
func (i Issue) WithSeverity(s Severity) Issue {
	i.Severity = s
	return i
}

// WithPosition returns a copy of the issue with a source position.
func (i Issue) WithPosition(line, column int) Issue {
	i.Line = line
	i.Column = column
	return i
}

// WithContext returns a copy of the issue with an extra context entry.
func (i Issue) WithContext(key, value string) Issue {
	ctx := make(map[string]string, len(i.Context)+1)
	for k, v := range i.Context {
		ctx[k] = v
	}
	ctx[key] = value
	i.Context = ctx
	return i
}

// IssueID derives a short stable identifier from category, location and message,
// so unchanged input produces the same ids run after run.
func IssueID(typ IssueType, path, message string) string {
	h := sha1.Sum([]byte(string(typ) + "|" + path + "|" + message))
	return hex.EncodeToString(h[:])[:8]
}
