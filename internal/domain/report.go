package domain

import "encoding/json"

// Report is the aggregate result for one validated file. Issues keep detection
// order; counts are derived on demand so they can never go stale.
type Report struct {
	File   string  `json:"file"`
	Issues []Issue `json:"issues"`
}

// NewReport wraps a validator's issues for a file. A nil slice becomes empty.
func NewReport(file string, issues []Issue) *Report {
	if issues == nil {
		issues = []Issue{}
	}
	return &Report{File: file, Issues: issues}
}

// ErrorCount returns the number of error-severity issues.
func (r *Report) ErrorCount() int { return r.count(SeverityError) }

// WarningCount returns the number of warning-severity issues.
func (r *Report) WarningCount() int { return r.count(SeverityWarning) }

// InfoCount returns the number of info-severity issues.
func (r *Report) InfoCount() int { return r.count(SeverityInfo) }

// Passed reports whether the file has no error-severity issues.
func (r *Report) Passed() bool { return r.ErrorCount() == 0 }

func (r *Report) count(s Severity) int {
	n := 0
	for _, i := range r.Issues {
		if i.Severity == s {
			n++
		}
	}
	return n
}

// IssueIDs returns the ids of all issues in detection order.
func (r *Report) IssueIDs() []string {
	ids := make([]string, 0, len(r.Issues))
	for _, i := range r.Issues {
		ids = append(ids, i.ID)
	}
	return ids
}

// MarshalJSON includes the derived counts alongside the stored fields.
func (r *Report) MarshalJSON() ([]byte, error) {
	issues := r.Issues
	if issues == nil {
		issues = []Issue{}
	}
	return json.Marshal(struct {
		File         string  `json:"file"`
		Passed       bool    `json:"passed"`
		ErrorCount   int     `json:"error_count"`
		WarningCount int     `json:"warning_count"`
		Issues       []Issue `json:"issues"`
	}{
		File:         r.File,
		Passed:       r.Passed(),
		ErrorCount:   r.ErrorCount(),
		WarningCount: r.WarningCount(),
		Issues:       issues,
	})
}

// Result pairs a processed file with its report.
type Result struct {
	File   string  `json:"file"`
	Report *Report `json:"report"`
}

// AnyFailed reports whether at least one result has errors.
func AnyFailed(results []Result) bool {
	return CountFailed(results) > 0
}

// CountFailed returns the number of results whose report has errors.
func CountFailed(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.Report.Passed() {
			n++
		}
	}
	return n
}
