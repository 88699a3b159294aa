package domain_test

import (
	"testing"

	"github.com/abdidvp/dataval/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueID_Deterministic(t *testing.T) {
	a := domain.IssueID(domain.IssueSchema, "/title", "'title' is a required property")
	b := domain.IssueID(domain.IssueSchema, "/title", "'title' is a required property")
	assert.Equal(t, a, b)
	assert.Len(t, a, 8)
}

func TestIssueID_DiffersByComponent(t *testing.T) {
	base := domain.IssueID(domain.IssueSchema, "/a", "msg")
	assert.NotEqual(t, base, domain.IssueID(domain.IssueParse, "/a", "msg"))
	assert.NotEqual(t, base, domain.IssueID(domain.IssueSchema, "/b", "msg"))
	assert.NotEqual(t, base, domain.IssueID(domain.IssueSchema, "/a", "other"))
}

func TestNewIssue_Defaults(t *testing.T) {
	i := domain.NewIssue(domain.IssueParse, "", "")
	assert.Equal(t, domain.RootPath, i.Path, "empty path falls back to the root sentinel")
	assert.NotEmpty(t, i.Message)
	assert.Equal(t, domain.SeverityError, i.Severity)
	assert.Nil(t, i.Suggestion)
	assert.Equal(t, domain.IssueID(i.Type, i.Path, i.Message), i.ID)
}

func TestIssue_WithHelpersCopy(t *testing.T) {
	orig := domain.NewIssue(domain.IssueSchematron, "/doc", "bad")
	changed := orig.
		WithRule("r1").
		WithSeverity(domain.SeverityWarning).
		WithPosition(3, 7).
		WithContext("near_match", "x")

	assert.Empty(t, orig.Rule)
	assert.Equal(t, domain.SeverityError, orig.Severity)
	assert.Nil(t, orig.Context)

	assert.Equal(t, "r1", changed.Rule)
	assert.Equal(t, domain.SeverityWarning, changed.Severity)
	assert.Equal(t, 3, changed.Line)
	assert.Equal(t, 7, changed.Column)
	assert.Equal(t, "x", changed.Context["near_match"])
	assert.Equal(t, orig.ID, changed.ID, "id depends only on type, path and message")
}

func TestSeverity_Rank(t *testing.T) {
	assert.Less(t, domain.SeverityError.Rank(), domain.SeverityWarning.Rank())
	assert.Less(t, domain.SeverityWarning.Rank(), domain.SeverityInfo.Rank())
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		in   string
		want domain.Severity
	}{
		{"error", domain.SeverityError},
		{"fatal", domain.SeverityError},
		{"warn", domain.SeverityWarning},
		{"warning", domain.SeverityWarning},
		{"info", domain.SeverityInfo},
	}
	for _, tt := range tests {
		got, err := domain.ParseSeverity(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := domain.ParseSeverity("loud")
	assert.Error(t, err)
}
