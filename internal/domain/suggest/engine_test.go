package suggest_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdidvp/dataval/internal/domain"
	"github.com/abdidvp/dataval/internal/domain/suggest"
)

type fakeHints struct {
	calls int
	err   error
}

func (f *fakeHints) Hint(_ context.Context, issue domain.Issue) (*domain.Suggestion, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Suggestion{Message: "hint for " + issue.Path}, nil
}

func schemaIssue(path, msg string) domain.Issue {
	return domain.NewIssue(domain.IssueSchema, path, msg)
}

func TestSuggest_DefaultRules(t *testing.T) {
	tests := []struct {
		name    string
		issue   domain.Issue
		contain string
	}{
		{"namespace", schemaIssue("/", "Namespace mismatch on root"), "namespace"},
		{"unit", schemaIssue("//value", "Element 'value', attribute 'unit': 'kg' is not a valid value of the atomic type 'unitType'."), "unit"},
		{"required json", schemaIssue("/", "'title' is a required property"), "required field"},
		{"required xml", schemaIssue("//Product", "Element 'Product': Missing child element(s). Expected is ( title )."), "required field"},
		{"missing column", domain.NewIssue(domain.IssueMissingColumn, "$", "Missing column: id"), "Add a 'id' column"},
		{"type json", schemaIssue("/count", `"3" is not of type 'integer'`), "expected type"},
		{"type csv", domain.NewIssue(domain.IssueTypeMismatch, "$.age", "Column 'age' expected integer"), "expected type"},
		{"empty", domain.NewIssue(domain.IssueRuleViolation, "$.name", "Column 'name' has empty values").WithRule("nonempty"), "missing values"},
		{"range csv", domain.NewIssue(domain.IssueRuleViolation, "$.age", "Column 'age' has values below min 0").WithRule("min"), "range"},
		{"range json", schemaIssue("/age", "must be >= 0 but found -1").WithRule("#/properties/age/minimum"), "range"},
		{"enum", schemaIssue("//color", "Element 'color': [facet 'enumeration'] The value 'pink' is not an element of the set {'red', 'blue'}."), "one of the values"},
		{"unexpected", schemaIssue("//extra", "Element 'extra': This element is not expected."), "unexpected"},
		{"pattern", schemaIssue("/id", "'abc' does not match pattern '^[0-9]+$'"), "pattern"},
		{"syntax", domain.NewIssue(domain.IssueWellFormedness, "/", "Premature end of data"), "syntax error"},
		{"parse", domain.NewIssue(domain.IssueParse, "$", "bare \" in non-quoted field"), "syntax error"},
	}

	e := suggest.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := e.Suggest(context.Background(), tt.issue)
			require.NotNil(t, s)
			assert.Contains(t, s.Message, tt.contain)
		})
	}
}

func TestSuggest_NamespaceBeatsRequired(t *testing.T) {
	s := suggest.New().Suggest(context.Background(), schemaIssue("/", "'xmlns' is a required property"))
	require.NotNil(t, s)
	assert.Contains(t, s.Message, "namespace")
}

func TestSuggest_UnitBeatsType(t *testing.T) {
	msg := "'kg' is not a valid value of the atomic type 'unitType'"
	s := suggest.New().Suggest(context.Background(), schemaIssue("//value", msg))
	require.NotNil(t, s)
	assert.Contains(t, s.Message, "unit")
}

func TestSuggest_RequiredExampleUsesPropertyName(t *testing.T) {
	s := suggest.New().Suggest(context.Background(), schemaIssue("/", "'mission' is a required property"))
	require.NotNil(t, s)
	assert.Contains(t, s.Example, `"mission"`)
}

func TestSuggest_MissingColumnNearMatch(t *testing.T) {
	issue := domain.NewIssue(domain.IssueMissingColumn, "$", "Missing column: user_id").
		WithContext("column", "user_id").
		WithContext("near_match", "UserID")
	s := suggest.New().Suggest(context.Background(), issue)
	require.NotNil(t, s)
	assert.Equal(t, "Rename header 'UserID' to 'user_id'.", s.Message)
}

func TestSuggest_NoMatchReturnsNil(t *testing.T) {
	issue := domain.NewIssue(domain.IssueIO, "/", "permission denied")
	assert.Nil(t, suggest.New().Suggest(context.Background(), issue))
}

func TestSuggest_DoesNotMutate(t *testing.T) {
	issue := schemaIssue("/", "'title' is a required property")
	_ = suggest.New().Suggest(context.Background(), issue)
	assert.Nil(t, issue.Suggestion)
}

func TestApply_Idempotent(t *testing.T) {
	issues := []domain.Issue{
		schemaIssue("/", "'title' is a required property"),
		domain.NewIssue(domain.IssueIO, "/", "permission denied"),
	}
	e := suggest.New()

	assert.Equal(t, 1, e.Apply(context.Background(), issues))
	first := issues[0].Suggestion
	require.NotNil(t, first)
	assert.Nil(t, issues[1].Suggestion)

	assert.Equal(t, 0, e.Apply(context.Background(), issues))
	assert.Same(t, first, issues[0].Suggestion, "existing suggestion is never replaced")
}

func TestApply_KeepsPresetSuggestion(t *testing.T) {
	preset := &domain.Suggestion{Message: "custom"}
	issues := []domain.Issue{schemaIssue("/", "'title' is a required property")}
	issues[0].Suggestion = preset

	assert.Equal(t, 0, suggest.New().Apply(context.Background(), issues))
	assert.Equal(t, "custom", issues[0].Suggestion.Message)
}

func TestApply_PreservesOrderAndLength(t *testing.T) {
	r := domain.NewReport("x.json", []domain.Issue{
		domain.NewIssue(domain.IssueIO, "/a", "one"),
		schemaIssue("/b", "'b' is a required property"),
		domain.NewIssue(domain.IssueIO, "/c", "three"),
	})
	suggest.New().ApplyReport(context.Background(), r)

	require.Len(t, r.Issues, 3)
	assert.Equal(t, "/a", r.Issues[0].Path)
	assert.Equal(t, "/b", r.Issues[1].Path)
	assert.Equal(t, "/c", r.Issues[2].Path)
}

func TestCustomRules_FirstMatchWins(t *testing.T) {
	always := func(domain.Issue) bool { return true }
	e := suggest.New(suggest.WithRules(
		suggest.Rule{Name: "a", Match: always, Build: func(domain.Issue) domain.Suggestion { return domain.Suggestion{Message: "a"} }},
		suggest.Rule{Name: "b", Match: always, Build: func(domain.Issue) domain.Suggestion { return domain.Suggestion{Message: "b"} }},
	))
	s := e.Suggest(context.Background(), schemaIssue("/", "x"))
	require.NotNil(t, s)
	assert.Equal(t, "a", s.Message)
}

func TestHints_DisabledNeverCalled(t *testing.T) {
	gen := &fakeHints{}
	e := suggest.New(suggest.WithHints(gen, false))
	assert.Nil(t, e.Suggest(context.Background(), domain.NewIssue(domain.IssueIO, "/x", "boom")))
	assert.Zero(t, gen.calls)
}

func TestHints_OnlyWhenNoRuleMatched(t *testing.T) {
	gen := &fakeHints{}
	e := suggest.New(suggest.WithHints(gen, true))

	s := e.Suggest(context.Background(), schemaIssue("/", "'title' is a required property"))
	require.NotNil(t, s)
	assert.Zero(t, gen.calls)

	s = e.Suggest(context.Background(), domain.NewIssue(domain.IssueIO, "/x", "boom"))
	require.NotNil(t, s)
	assert.Equal(t, "hint for /x", s.Message)
	assert.Equal(t, 1, gen.calls)
}

func TestHints_ErrorDegradesToNoSuggestion(t *testing.T) {
	gen := &fakeHints{err: errors.New("unreachable")}
	e := suggest.New(suggest.WithHints(gen, true))

	issues := []domain.Issue{domain.NewIssue(domain.IssueIO, "/x", "boom")}
	assert.Equal(t, 0, e.Apply(context.Background(), issues))
	assert.Nil(t, issues[0].Suggestion)
}
