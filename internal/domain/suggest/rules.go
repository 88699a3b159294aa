package suggest

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/abdidvp/dataval/internal/domain"
)

// Rule pairs a predicate with the suggestion it produces.
type Rule struct {
	Name  string
	Match func(domain.Issue) bool
	Build func(domain.Issue) domain.Suggestion
}

var quotedName = regexp.MustCompile(`'([^']+)'`)

// DefaultRules returns the built-in rules in evaluation order. Order is
// significant: the first matching rule wins.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name: "namespace",
			Match: func(i domain.Issue) bool {
				return containsAny(i.Message, "namespace", "xmlns")
			},
			Build: func(domain.Issue) domain.Suggestion {
				return domain.Suggestion{
					Message: "Add the correct namespace declaration on the root element.",
					Example: `<Product_Observational xmlns="http://pds.nasa.gov/pds4/pds/v1">…</Product_Observational>`,
				}
			},
		},
		{
			Name: "unit",
			Match: func(i domain.Issue) bool {
				return containsAll(i.Message, "is not a valid value", "unit")
			},
			Build: func(domain.Issue) domain.Suggestion {
				return domain.Suggestion{
					Message: "Replace with a valid unit from the units of measure dictionary.",
					Example: `<value unit="K">120.3</value>`,
				}
			},
		},
		{
			Name: "required",
			Match: func(i domain.Issue) bool {
				return containsAny(i.Message, "is a required property", "missing child element")
			},
			Build: func(i domain.Issue) domain.Suggestion {
				example := `… "title": "Mars image 123" …`
				if strings.Contains(i.Message, "is a required property") {
					if name := firstQuoted(i.Message); name != "" {
						example = fmt.Sprintf(`… "%s": … …`, name)
					}
				}
				return domain.Suggestion{
					Message: "Add the required field/element according to the schema.",
					Example: example,
				}
			},
		},
		{
			Name: "missing-column",
			Match: func(i domain.Issue) bool {
				return i.Type == domain.IssueMissingColumn
			},
			Build: func(i domain.Issue) domain.Suggestion {
				col := i.Context["column"]
				if col == "" {
					col = strings.TrimSpace(strings.TrimPrefix(i.Message, "Missing column:"))
				}
				if near := i.Context["near_match"]; near != "" {
					return domain.Suggestion{
						Message: fmt.Sprintf("Rename header '%s' to '%s'.", near, col),
						Example: col,
					}
				}
				return domain.Suggestion{
					Message: fmt.Sprintf("Add a '%s' column to the header row.", col),
					Example: col + ",…",
				}
			},
		},
		{
			Name: "type",
			Match: func(i domain.Issue) bool {
				return i.Type == domain.IssueTypeMismatch ||
					containsAny(i.Message, "is not of type", "is not a valid value of the atomic type")
			},
			Build: func(domain.Issue) domain.Suggestion {
				return domain.Suggestion{
					Message: "Convert the value to the expected type, or correct the declared type if the data is right.",
					Example: `"count": 3   (not "3")`,
				}
			},
		},
		{
			Name: "empty",
			Match: func(i domain.Issue) bool {
				return i.Rule == string(domain.RuleNonEmpty) ||
					containsAny(i.Message, "empty value", "must not be empty")
			},
			Build: func(domain.Issue) domain.Suggestion {
				return domain.Suggestion{
					Message: "Fill in the missing values; placeholders such as NA or null count as empty.",
				}
			},
		},
		{
			Name: "range",
			Match: func(i domain.Issue) bool {
				return i.Rule == string(domain.RuleMin) || i.Rule == string(domain.RuleMax) ||
					hasKeyword(i.Rule, "minimum", "maximum", "exclusiveMinimum", "exclusiveMaximum") ||
					containsAny(i.Message, "facet 'mininclusive'", "facet 'maxinclusive'",
						"facet 'minexclusive'", "facet 'maxexclusive'")
			},
			Build: func(domain.Issue) domain.Suggestion {
				return domain.Suggestion{
					Message: "Bring the value within the allowed range, or widen the bound if the data is valid.",
				}
			},
		},
		{
			Name: "enumeration",
			Match: func(i domain.Issue) bool {
				return hasKeyword(i.Rule, "enum", "const") ||
					containsAny(i.Message, "facet 'enumeration'", "must be one of")
			},
			Build: func(domain.Issue) domain.Suggestion {
				return domain.Suggestion{
					Message: "Use one of the values listed by the schema.",
				}
			},
		},
		{
			Name: "unexpected",
			Match: func(i domain.Issue) bool {
				return hasKeyword(i.Rule, "additionalProperties") ||
					containsAny(i.Message, "this element is not expected", "additional properties")
			},
			Build: func(domain.Issue) domain.Suggestion {
				return domain.Suggestion{
					Message: "Remove the unexpected element/property or check its spelling and position against the schema.",
				}
			},
		},
		{
			Name: "pattern",
			Match: func(i domain.Issue) bool {
				return hasKeyword(i.Rule, "pattern") ||
					containsAny(i.Message, "facet 'pattern'", "does not match pattern")
			},
			Build: func(domain.Issue) domain.Suggestion {
				return domain.Suggestion{
					Message: "Reformat the value so it matches the pattern required by the schema.",
				}
			},
		},
		{
			Name: "syntax",
			Match: func(i domain.Issue) bool {
				return i.Type == domain.IssueWellFormedness || i.Type == domain.IssueParse
			},
			Build: func(i domain.Issue) domain.Suggestion {
				s := domain.Suggestion{
					Message: "Fix the syntax error reported by the parser, then validate again.",
				}
				if i.Line > 0 {
					s.Message = fmt.Sprintf("Fix the syntax error near line %d, then validate again.", i.Line)
				}
				return s
			},
		},
	}
}

func containsAny(s string, subs ...string) bool {
	s = strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(s, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}

func containsAll(s string, subs ...string) bool {
	s = strings.ToLower(s)
	for _, sub := range subs {
		if !strings.Contains(s, strings.ToLower(sub)) {
			return false
		}
	}
	return true
}

// hasKeyword reports whether a JSON Schema rule reference ends in one of the
// given keywords, e.g. "#/properties/age/minimum".
func hasKeyword(rule string, keywords ...string) bool {
	if rule == "" {
		return false
	}
	last := rule[strings.LastIndex(rule, "/")+1:]
	for _, k := range keywords {
		if last == k {
			return true
		}
	}
	return false
}

func firstQuoted(s string) string {
	m := quotedName.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return m[1]
}
