// Package summary groups a report's issues into coarse buckets and renders
// a short narrative.
package summary

import (
	"fmt"
	"strings"

	"github.com/abdidvp/dataval/internal/domain"
)

// Bucket is a group of issues sharing a high-level cause.
type Bucket struct {
	Key    string         `json:"key"`
	Issues []domain.Issue `json:"issues"`
}

// Example returns the first issue in the bucket.
func (b Bucket) Example() domain.Issue { return b.Issues[0] }

// BucketKey classifies an issue. Checks run in order: a suggestion mentioning
// a namespace, then "required" and "type" in the message, else the issue type.
func BucketKey(i domain.Issue) string {
	switch {
	case i.Suggestion != nil && strings.Contains(strings.ToLower(i.Suggestion.Message), "namespace"):
		return "namespace"
	case strings.Contains(strings.ToLower(i.Message), "required"):
		return "required"
	case strings.Contains(strings.ToLower(i.Message), "type"):
		return "type"
	default:
		return string(i.Type)
	}
}

// Buckets groups the report's issues, ordered by first appearance.
func Buckets(r *domain.Report) []Bucket {
	var out []Bucket
	index := map[string]int{}
	for _, i := range r.Issues {
		key := BucketKey(i)
		pos, ok := index[key]
		if !ok {
			pos = len(out)
			index[key] = pos
			out = append(out, Bucket{Key: key})
		}
		out[pos].Issues = append(out[pos].Issues, i)
	}
	return out
}

// Summarize renders the header line followed by one line per bucket.
func Summarize(r *domain.Report) string {
	lines := []string{
		fmt.Sprintf("%s: %d error(s), %d warning(s).", r.File, r.ErrorCount(), r.WarningCount()),
	}
	for _, b := range Buckets(r) {
		ex := b.Example()
		lines = append(lines, fmt.Sprintf("- %s: %d issue(s). Example @ %s: %s", b.Key, len(b.Issues), ex.Path, ex.Message))
	}
	return strings.Join(lines, "\n")
}
