// Package xmlval validates XML documents against an XSD and an optional
// Schematron ruleset using libxml2.
package xmlval

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/lestrrat-go/libxml2"
	"github.com/lestrrat-go/libxml2/parser"
	"github.com/lestrrat-go/libxml2/types"
	"github.com/lestrrat-go/libxml2/xsd"
	"github.com/sirupsen/logrus"

	"github.com/abdidvp/dataval/internal/domain"
)

// Validator implements domain.Validator for XML. The compiled schema is
// shared read-only between concurrent Validate calls.
type Validator struct {
	schema     *xsd.Schema
	schematron *Schematron
	log        *logrus.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithSchematron adds a co-constraint ruleset evaluated after the XSD.
func WithSchematron(s *Schematron) Option {
	return func(v *Validator) { v.schematron = s }
}

// WithLogger sets the logger.
func WithLogger(log *logrus.Logger) Option {
	return func(v *Validator) { v.log = log }
}

// New compiles the XSD at xsdPath, which must be a local file.
func New(xsdPath string, opts ...Option) (*Validator, error) {
	schema, err := xsd.ParseFromFile(xsdPath)
	if err != nil {
		return nil, fmt.Errorf("compiling xsd %s: %w", xsdPath, err)
	}
	v := &Validator{schema: schema}
	for _, opt := range opts {
		opt(v)
	}
	if v.log == nil {
		v.log = logrus.New()
		v.log.SetOutput(io.Discard)
	}
	return v, nil
}

func (v *Validator) Kind() domain.Kind { return domain.KindXML }

// Close releases the compiled schema.
func (v *Validator) Close() {
	if v.schema != nil {
		v.schema.Free()
		v.schema = nil
	}
}

// Validate runs the parse, XSD and Schematron phases. A parse failure yields a
// single well-formedness issue and stops; the other two phases always both run.
func (v *Validator) Validate(path string) []domain.Issue {
	data, err := os.ReadFile(path)
	if err != nil {
		return []domain.Issue{domain.NewIssue(domain.IssueIO, domain.RootPath, err.Error())}
	}

	doc, err := libxml2.Parse(data, parser.XMLParseNoNet)
	if err != nil {
		return []domain.Issue{domain.NewIssue(domain.IssueWellFormedness, domain.RootPath, parseErrMessage(err))}
	}
	defer doc.Free()

	issues := v.schemaIssues(doc)
	if v.schematron != nil {
		found, err := v.schematron.Evaluate(doc)
		if err != nil {
			v.log.WithError(err).WithField("file", path).Warn("schematron evaluation failed")
			found = []domain.Issue{domain.NewIssue(domain.IssueSchematron, domain.RootPath, err.Error())}
		}
		issues = append(issues, found...)
	}
	return issues
}

func (v *Validator) schemaIssues(doc types.Document) []domain.Issue {
	err := v.schema.Validate(doc)
	if err == nil {
		return nil
	}

	var multi interface{ Errors() []error }
	if !errors.As(err, &multi) || len(multi.Errors()) == 0 {
		msg := strings.TrimSpace(err.Error())
		return []domain.Issue{domain.NewIssue(domain.IssueSchema, elementPath(msg), msg)}
	}

	var issues []domain.Issue
	for _, e := range multi.Errors() {
		msg := strings.TrimSpace(e.Error())
		issues = append(issues, domain.NewIssue(domain.IssueSchema, elementPath(msg), msg))
	}
	return issues
}

var (
	elementRef   = regexp.MustCompile(`Element '([^']+)'(?:, attribute '([^']+)')?`)
	namespaceRef = regexp.MustCompile(`^\{[^}]*\}`)
)

// elementPath turns libxml2's "Element '{ns}name', attribute 'a'" prefix into
// //name/@a, or the root sentinel when no element is named.
func elementPath(msg string) string {
	m := elementRef.FindStringSubmatch(msg)
	if m == nil {
		return domain.RootPath
	}
	p := "//" + namespaceRef.ReplaceAllString(m[1], "")
	if m[2] != "" {
		p += "/@" + namespaceRef.ReplaceAllString(m[2], "")
	}
	return p
}

func parseErrMessage(err error) string {
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		return "document is not well-formed"
	}
	return msg
}
