package summary_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdidvp/dataval/internal/domain"
	"github.com/abdidvp/dataval/internal/domain/summary"
)

func TestSummarize_EmptyReport(t *testing.T) {
	r := domain.NewReport("ok.json", nil)
	assert.Equal(t, "ok.json: 0 error(s), 0 warning(s).", summary.Summarize(r))
}

func TestSummarize_Buckets(t *testing.T) {
	ns := domain.NewIssue(domain.IssueSchema, "/", "'xmlns' is a required property")
	ns.Suggestion = &domain.Suggestion{Message: "Add the correct namespace declaration on the root element."}

	r := domain.NewReport("bad.json", []domain.Issue{
		domain.NewIssue(domain.IssueSchema, "/", "'title' is a required property"),
		ns,
		domain.NewIssue(domain.IssueSchema, "/count", `"3" is not of type 'integer'`),
		domain.NewIssue(domain.IssueSchema, "/", "'id' is a required property").WithSeverity(domain.SeverityWarning),
		domain.NewIssue(domain.IssueRuleViolation, "$.age", "Column 'age' has values below min 0"),
	})

	got := summary.Summarize(r)
	want := "bad.json: 4 error(s), 1 warning(s).\n" +
		"- required: 2 issue(s). Example @ /: 'title' is a required property\n" +
		"- namespace: 1 issue(s). Example @ /: 'xmlns' is a required property\n" +
		"- type: 1 issue(s). Example @ /count: \"3\" is not of type 'integer'\n" +
		"- rule-violation: 1 issue(s). Example @ $.age: Column 'age' has values below min 0"
	assert.Equal(t, want, got)
}

func TestBucketKey_CaseInsensitive(t *testing.T) {
	i := domain.NewIssue(domain.IssueSchema, "/", "Field REQUIRED here")
	assert.Equal(t, "required", summary.BucketKey(i))

	i = domain.NewIssue(domain.IssueTypeMismatch, "$.x", "Column 'x' expected Type integer")
	assert.Equal(t, "type", summary.BucketKey(i))

	i = domain.NewIssue(domain.IssueWellFormedness, "/", "Premature end of data")
	assert.Equal(t, "well-formedness", summary.BucketKey(i))
}

func TestBuckets_FirstSeenOrder(t *testing.T) {
	r := domain.NewReport("f.xml", []domain.Issue{
		domain.NewIssue(domain.IssueWellFormedness, "/", "a"),
		domain.NewIssue(domain.IssueSchema, "/", "x is required"),
		domain.NewIssue(domain.IssueWellFormedness, "/", "b"),
	})
	b := summary.Buckets(r)
	require.Len(t, b, 2)
	assert.Equal(t, "well-formedness", b[0].Key)
	assert.Len(t, b[0].Issues, 2)
	assert.Equal(t, "a", b[0].Example().Message)
	assert.Equal(t, "required", b[1].Key)
}
