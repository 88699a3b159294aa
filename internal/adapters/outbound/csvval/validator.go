// Package csvval validates delimited tables against a column rule spec.
package csvval

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/fatih/camelcase"
	"gopkg.in/yaml.v3"

	"github.com/abdidvp/dataval/internal/domain"
)

// missingValues are cell values treated as absent, in addition to blanks.
var missingValues = map[string]bool{
	"NA": true, "N/A": true, "n/a": true, "NaN": true, "nan": true,
	"null": true, "NULL": true, "None": true, "<NA>": true, "#N/A": true,
}

// IsMissing reports whether a cell counts as a missing value.
func IsMissing(cell string) bool {
	s := strings.TrimSpace(cell)
	return s == "" || missingValues[s]
}

// Validator implements domain.Validator for CSV files.
type Validator struct {
	spec  domain.CSVSpec
	types map[string]domain.ColumnType
	order []string
}

// New builds a validator from a rule spec, rejecting invalid specs.
func New(spec domain.CSVSpec) (*Validator, error) {
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid csv rules: %w", err)
	}
	v := &Validator{spec: spec, types: make(map[string]domain.ColumnType, len(spec.Types))}
	for col, t := range spec.Types {
		ct, _ := domain.ParseColumnType(t)
		v.types[col] = ct
	}
	v.order = sortedKeys(spec.Types)
	return v, nil
}

// NewFromFile loads a YAML rule spec and builds a validator from it.
func NewFromFile(path string) (*Validator, error) {
	spec, err := LoadSpec(path)
	if err != nil {
		return nil, err
	}
	return New(spec)
}

// LoadSpec reads a YAML rule spec with required_columns, types and rules.
func LoadSpec(path string) (domain.CSVSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.CSVSpec{}, fmt.Errorf("reading csv rules: %w", err)
	}
	var spec domain.CSVSpec
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&spec); err != nil && !errors.Is(err, io.EOF) {
		return domain.CSVSpec{}, fmt.Errorf("parsing csv rules %s: %w", path, err)
	}
	if err := spec.Validate(); err != nil {
		return domain.CSVSpec{}, fmt.Errorf("invalid csv rules %s: %w", path, err)
	}
	return spec, nil
}

func (v *Validator) Kind() domain.Kind { return domain.KindCSV }

// table is a parsed file: header names and columns of cells.
type table struct {
	header  []string
	columns map[string][]string
}

// Validate parses the file, then runs the column presence, type and rule
// phases independently of each other.
func (v *Validator) Validate(path string) []domain.Issue {
	f, err := os.Open(path)
	if err != nil {
		return []domain.Issue{domain.NewIssue(domain.IssueIO, domain.TablePath, err.Error())}
	}
	defer f.Close()

	t, issue := parse(f)
	if issue != nil {
		return []domain.Issue{*issue}
	}

	var issues []domain.Issue
	issues = append(issues, v.checkColumns(t)...)
	issues = append(issues, v.checkTypes(t)...)
	issues = append(issues, v.checkRules(t)...)
	return issues
}

func parse(r io.Reader) (*table, *domain.Issue) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		issue := domain.NewIssue(domain.IssueParse, domain.TablePath, "No columns to parse from file")
		return nil, &issue
	}
	if err != nil {
		return nil, parseError(err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	header = dedupeHeader(header)

	t := &table{header: header, columns: make(map[string][]string, len(header))}
	for _, name := range header {
		t.columns[name] = []string{}
	}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, parseError(err)
		}
		if len(rec) > len(header) {
			line, _ := cr.FieldPos(0)
			msg := fmt.Sprintf("Error tokenizing data: expected %d fields in line %d, saw %d", len(header), line, len(rec))
			issue := domain.NewIssue(domain.IssueParse, domain.TablePath, msg).WithPosition(line, 0)
			return nil, &issue
		}
		for i, name := range header {
			cell := ""
			if i < len(rec) {
				cell = rec[i]
			}
			t.columns[name] = append(t.columns[name], cell)
		}
	}
	return t, nil
}

// dedupeHeader renames repeated column names to name.1, name.2, ... so every
// column owns its own cells. The first occurrence keeps its name.
func dedupeHeader(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]bool, len(header))
	counts := make(map[string]int)
	for i, h := range header {
		name := h
		for used[name] {
			counts[h]++
			name = fmt.Sprintf("%s.%d", h, counts[h])
		}
		used[name] = true
		out[i] = name
	}
	return out
}

func parseError(err error) *domain.Issue {
	issue := domain.NewIssue(domain.IssueParse, domain.TablePath, err.Error())
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		issue = issue.WithPosition(pe.Line, pe.Column)
	}
	return &issue
}

func (v *Validator) checkColumns(t *table) []domain.Issue {
	var issues []domain.Issue
	for _, col := range v.spec.RequiredColumns {
		if _, ok := t.columns[col]; ok {
			continue
		}
		issue := domain.NewIssue(domain.IssueMissingColumn, domain.TablePath, "Missing column: "+col).
			WithContext("column", col)
		if near := nearMatch(col, t.header); near != "" {
			issue = issue.WithContext("near_match", near)
		}
		issues = append(issues, issue)
	}
	return issues
}

func (v *Validator) checkTypes(t *table) []domain.Issue {
	var issues []domain.Issue
	for _, col := range v.order {
		cells, ok := t.columns[col]
		if !ok {
			continue
		}
		want := v.types[col]
		if conforms(cells, want) {
			continue
		}
		msg := fmt.Sprintf("Column '%s' expected type %s", col, want)
		issues = append(issues, domain.NewIssue(domain.IssueTypeMismatch, columnPath(col), msg).
			WithRule("types."+col).
			WithContext("column", col))
	}
	return issues
}

func (v *Validator) checkRules(t *table) []domain.Issue {
	var issues []domain.Issue
	for _, r := range v.spec.Rules {
		cells, ok := t.columns[r.Column]
		if !ok {
			continue
		}
		var msg string
		switch r.Kind {
		case domain.RuleNonEmpty:
			if anyCell(cells, IsMissing) {
				msg = fmt.Sprintf("Empty values in %s", r.Column)
			}
		case domain.RuleMin:
			if anyNumber(cells, func(f float64) bool { return f < *r.Value }) {
				msg = fmt.Sprintf("%s below %s", r.Column, formatFloat(*r.Value))
			}
		case domain.RuleMax:
			if anyNumber(cells, func(f float64) bool { return f > *r.Value }) {
				msg = fmt.Sprintf("%s above %s", r.Column, formatFloat(*r.Value))
			}
		}
		if msg != "" {
			issues = append(issues, domain.NewIssue(domain.IssueRuleViolation, columnPath(r.Column), msg).
				WithRule(string(r.Kind)).
				WithContext("column", r.Column))
		}
	}
	return issues
}

// conforms reports whether every non-missing cell parses as the column type.
// Integer columns require whole numbers; float columns accept integers.
func conforms(cells []string, want domain.ColumnType) bool {
	for _, c := range cells {
		if IsMissing(c) {
			continue
		}
		s := strings.TrimSpace(c)
		switch want {
		case domain.ColumnInteger:
			if _, err := strconv.ParseInt(s, 10, 64); err != nil {
				return false
			}
		case domain.ColumnFloat:
			if _, err := strconv.ParseFloat(s, 64); err != nil {
				return false
			}
		}
	}
	return true
}

func anyCell(cells []string, pred func(string) bool) bool {
	for _, c := range cells {
		if pred(c) {
			return true
		}
	}
	return false
}

// anyNumber applies pred to cells that parse as numbers; others are ignored.
func anyNumber(cells []string, pred func(float64) bool) bool {
	for _, c := range cells {
		if IsMissing(c) {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(c), 64)
		if err == nil && pred(f) {
			return true
		}
	}
	return false
}

// nearMatch finds a header that differs from col only in case, separators or
// camel-casing, e.g. "UserID" for "user_id".
func nearMatch(col string, header []string) string {
	want := normalize(col)
	for _, h := range header {
		if h != col && normalize(h) == want {
			return h
		}
	}
	return ""
}

func normalize(name string) string {
	var b strings.Builder
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, p := range parts {
		for _, w := range camelcase.Split(p) {
			b.WriteString(strings.ToLower(w))
		}
	}
	return b.String()
}

func columnPath(col string) string {
	return domain.TablePath + "." + col
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
