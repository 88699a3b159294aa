package jsonval_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdidvp/dataval/internal/adapters/outbound/jsonval"
	"github.com/abdidvp/dataval/internal/domain"
)

func fixture(name string) string {
	return filepath.Join("testdata", name)
}

func newValidator(t *testing.T) *jsonval.Validator {
	t.Helper()
	v, err := jsonval.New(fixture("record.schema.json"))
	require.NoError(t, err)
	return v
}

func validateString(t *testing.T, v *jsonval.Validator, doc string) []domain.Issue {
	t.Helper()
	p := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, os.WriteFile(p, []byte(doc), 0644))
	return v.Validate(p)
}

func TestNew_Errors(t *testing.T) {
	_, err := jsonval.New(fixture("missing.schema.json"))
	assert.Error(t, err)

	_, err = jsonval.New(fixture("broken.schema.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "compiling json schema")
}

func TestValidate_Valid(t *testing.T) {
	v := newValidator(t)
	assert.Equal(t, domain.KindJSON, v.Kind())
	assert.Empty(t, v.Validate(fixture("good.json")))
}

func TestValidate_RequiredOnePerProperty(t *testing.T) {
	issues := newValidator(t).Validate(fixture("empty_object.json"))

	require.Len(t, issues, 2)
	var msgs []string
	for _, i := range issues {
		assert.Equal(t, domain.IssueSchema, i.Type)
		assert.Equal(t, "/", i.Path)
		assert.Equal(t, "#/required", i.Rule)
		msgs = append(msgs, i.Message)
	}
	assert.ElementsMatch(t, []string{
		"'title' is a required property",
		"'count' is a required property",
	}, msgs)
}

func TestValidate_TypeMismatch(t *testing.T) {
	issues := validateString(t, newValidator(t), `{"title": "x", "count": "3"}`)

	require.Len(t, issues, 1)
	assert.Equal(t, "/count", issues[0].Path)
	assert.Equal(t, `"3" is not of type 'integer'`, issues[0].Message)
	assert.Equal(t, "#/properties/count/type", issues[0].Rule)
}

func TestValidate_LongValueCutOnRuneBoundary(t *testing.T) {
	v := newValidator(t)
	issues := validateString(t, v, `{"title": "x", "count": "`+strings.Repeat("é", 70)+`"}`)

	require.Len(t, issues, 1)
	msg := issues[0].Message
	assert.True(t, utf8.ValidString(msg))
	assert.Equal(t, `"`+strings.Repeat("é", 59)+`… is not of type 'integer'`, msg)
}

func TestValidate_KeywordRules(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		path string
		rule string
	}{
		{"minimum", `{"title": "x", "count": -1}`, "/count", "#/properties/count/minimum"},
		{"enum", `{"title": "x", "count": 1, "color": "pink"}`, "/color", "#/properties/color/enum"},
		{"pattern", `{"title": "x", "count": 1, "id": "abc"}`, "/id", "#/properties/id/pattern"},
		{"escaped pointer", `{"title": "x", "count": 1, "a/b": "s"}`, "/a~1b", "#/properties/a~1b/type"},
		{"array index", `{"title": "x", "count": 1, "tags": [1]}`, "/tags/0", "#/properties/tags/items/type"},
		{"additional", `{"title": "x", "count": 1, "extra": true}`, "/", "#/additionalProperties"},
	}
	v := newValidator(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issues := validateString(t, v, tt.doc)
			require.Len(t, issues, 1)
			assert.Equal(t, domain.IssueSchema, issues[0].Type)
			assert.Equal(t, tt.path, issues[0].Path)
			assert.Equal(t, tt.rule, issues[0].Rule)
			assert.NotEmpty(t, issues[0].Message)
		})
	}
}

func TestValidate_ParseErrorIsDistinct(t *testing.T) {
	issues := newValidator(t).Validate(fixture("malformed.json"))

	require.Len(t, issues, 1)
	assert.Equal(t, domain.IssueParse, issues[0].Type)
	assert.Equal(t, "/", issues[0].Path)
	assert.True(t, strings.HasPrefix(issues[0].Message, "invalid JSON"))
	assert.Equal(t, 4, issues[0].Line)
}

func TestValidate_EmptyDocument(t *testing.T) {
	issues := newValidator(t).Validate(fixture("empty.json"))
	require.Len(t, issues, 1)
	assert.Equal(t, domain.IssueParse, issues[0].Type)
}

func TestValidate_TrailingData(t *testing.T) {
	issues := validateString(t, newValidator(t), `{"title": "x", "count": 1} {}`)
	require.Len(t, issues, 1)
	assert.Equal(t, domain.IssueParse, issues[0].Type)
}

func TestValidate_UnreadableFile(t *testing.T) {
	issues := newValidator(t).Validate(fixture("nope.json"))
	require.Len(t, issues, 1)
	assert.Equal(t, domain.IssueIO, issues[0].Type)
}

func TestPointer(t *testing.T) {
	assert.Equal(t, "/", jsonval.Pointer(nil))
	assert.Equal(t, "/a/0", jsonval.Pointer([]string{"a", "0"}))
	assert.Equal(t, "/a~0b/c~1d", jsonval.Pointer([]string{"a~b", "c/d"}))
}
