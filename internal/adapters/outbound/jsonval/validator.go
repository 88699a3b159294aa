// Package jsonval validates JSON documents against a JSON Schema.
package jsonval

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/abdidvp/dataval/internal/domain"
)

// Validator implements domain.Validator for JSON. The compiled schema is
// safe for concurrent use.
type Validator struct {
	schema  *jsonschema.Schema
	printer *message.Printer
}

// New compiles the schema at schemaPath. Schemas without $schema are treated
// as draft 2020-12.
func New(schemaPath string) (*Validator, error) {
	c := jsonschema.NewCompiler()
	c.DefaultDraft(jsonschema.Draft2020)
	sch, err := c.Compile(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("compiling json schema %s: %w", schemaPath, err)
	}
	return &Validator{
		schema:  sch,
		printer: message.NewPrinter(language.English),
	}, nil
}

func (v *Validator) Kind() domain.Kind { return domain.KindJSON }

// Validate reads and parses the file, then checks it against the schema.
// Read and parse failures yield a single issue.
func (v *Validator) Validate(path string) []domain.Issue {
	data, err := os.ReadFile(path)
	if err != nil {
		return []domain.Issue{domain.NewIssue(domain.IssueIO, domain.RootPath, err.Error())}
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return []domain.Issue{parseIssue(data, err)}
	}

	err = v.schema.Validate(inst)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []domain.Issue{domain.NewIssue(domain.IssueSchema, domain.RootPath, err.Error())}
	}

	var issues []domain.Issue
	for _, leaf := range leaves(ve) {
		issues = append(issues, v.leafIssues(leaf, inst)...)
	}
	return issues
}

// leaves collects the validation errors that have no causes.
func leaves(ve *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*jsonschema.ValidationError{ve}
	}
	var out []*jsonschema.ValidationError
	for _, c := range ve.Causes {
		out = append(out, leaves(c)...)
	}
	return out
}

func (v *Validator) leafIssues(ve *jsonschema.ValidationError, inst any) []domain.Issue {
	path := Pointer(ve.InstanceLocation)
	rule := ruleRef(ve)

	switch k := ve.ErrorKind.(type) {
	case *kind.Required:
		issues := make([]domain.Issue, 0, len(k.Missing))
		for _, prop := range k.Missing {
			msg := fmt.Sprintf("'%s' is a required property", prop)
			issues = append(issues, domain.NewIssue(domain.IssueSchema, path, msg).WithRule(rule))
		}
		return issues
	case *kind.Type:
		want := make([]string, len(k.Want))
		for i, w := range k.Want {
			want[i] = "'" + w + "'"
		}
		msg := fmt.Sprintf("%s is not of type %s", render(lookup(inst, ve.InstanceLocation)), strings.Join(want, ", "))
		return []domain.Issue{domain.NewIssue(domain.IssueSchema, path, msg).WithRule(rule)}
	}

	msg := ve.ErrorKind.LocalizedString(v.printer)
	return []domain.Issue{domain.NewIssue(domain.IssueSchema, path, msg).WithRule(rule)}
}

// ruleRef joins the failing sub-schema location with the keyword path,
// e.g. "#/properties/age/minimum".
func ruleRef(ve *jsonschema.ValidationError) string {
	frag := "#"
	if i := strings.Index(ve.SchemaURL, "#"); i >= 0 {
		frag = ve.SchemaURL[i:]
	}
	kw := ve.ErrorKind.KeywordPath()
	if len(kw) == 0 {
		return frag
	}
	return strings.TrimSuffix(frag, "/") + "/" + strings.Join(kw, "/")
}

// Pointer renders an instance location as a JSON pointer, escaping "~" and
// "/" inside tokens. The empty location is the root sentinel "/".
func Pointer(loc []string) string {
	if len(loc) == 0 {
		return domain.RootPath
	}
	var b strings.Builder
	for _, tok := range loc {
		b.WriteByte('/')
		tok = strings.ReplaceAll(tok, "~", "~0")
		b.WriteString(strings.ReplaceAll(tok, "/", "~1"))
	}
	return b.String()
}

func lookup(inst any, loc []string) any {
	cur := inst
	for _, tok := range loc {
		switch c := cur.(type) {
		case map[string]any:
			cur = c[tok]
		case []any:
			i, err := strconv.Atoi(tok)
			if err != nil || i < 0 || i >= len(c) {
				return nil
			}
			cur = c[i]
		default:
			return nil
		}
	}
	return cur
}

// render shows a value as JSON, cut to 60 runes.
func render(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	const limit = 60
	if utf8.RuneCount(data) > limit {
		return string([]rune(string(data))[:limit]) + "…"
	}
	return string(data)
}

func parseIssue(data []byte, err error) domain.Issue {
	if errors.Is(err, io.EOF) {
		return domain.NewIssue(domain.IssueParse, domain.RootPath, "invalid JSON: document is empty")
	}
	issue := domain.NewIssue(domain.IssueParse, domain.RootPath, "invalid JSON: "+err.Error())
	var syn *json.SyntaxError
	if errors.As(err, &syn) {
		line, col := position(data, syn.Offset)
		issue = issue.WithPosition(line, col)
	}
	return issue
}

// position converts a byte offset into a 1-based line and column.
func position(data []byte, offset int64) (int, int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	before := data[:offset]
	line := bytes.Count(before, []byte("\n")) + 1
	col := int(offset) - bytes.LastIndexByte(before, '\n')
	return line, col
}
