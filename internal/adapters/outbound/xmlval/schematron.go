package xmlval

import (
	"fmt"
	"math"
	"strings"

	"github.com/beevik/etree"
	"github.com/lestrrat-go/libxml2/clib"
	"github.com/lestrrat-go/libxml2/types"
	"github.com/lestrrat-go/libxml2/xpath"

	"github.com/abdidvp/dataval/internal/domain"
)

// Schematron is a compiled ISO Schematron ruleset. It is immutable after
// loading and safe for concurrent evaluation.
type Schematron struct {
	source     string
	namespaces []namespace
	patterns   []pattern
}

type namespace struct{ prefix, uri string }

type pattern struct {
	id    string
	rules []rule
}

type rule struct {
	id      string
	context string
	checks  []check
}

type check struct {
	report  bool
	id      string
	test    string
	role    string
	message []messagePart
}

// messagePart is literal text, or an XPath to evaluate when select is set,
// or the context node name when name is set.
type messagePart struct {
	text   string
	sel    string
	isName bool
}

// LoadSchematron reads an ISO Schematron file.
func LoadSchematron(path string) (*Schematron, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("reading schematron %s: %w", path, err)
	}
	return parseSchematron(doc, path)
}

// ParseSchematron compiles a ruleset from memory.
func ParseSchematron(data []byte) (*Schematron, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parsing schematron: %w", err)
	}
	return parseSchematron(doc, "")
}

func parseSchematron(doc *etree.Document, source string) (*Schematron, error) {
	root := doc.Root()
	if root == nil || root.Tag != "schema" {
		return nil, fmt.Errorf("schematron %s: root element must be schema", source)
	}

	s := &Schematron{source: source}
	nrules := 0
	for _, el := range root.ChildElements() {
		switch el.Tag {
		case "ns":
			s.namespaces = append(s.namespaces, namespace{
				prefix: el.SelectAttrValue("prefix", ""),
				uri:    el.SelectAttrValue("uri", ""),
			})
		case "pattern":
			if el.SelectAttrValue("abstract", "") == "true" {
				continue
			}
			p := pattern{id: el.SelectAttrValue("id", "")}
			for _, r := range el.ChildElements() {
				if r.Tag != "rule" || r.SelectAttrValue("abstract", "") == "true" {
					continue
				}
				compiled, err := parseRule(r)
				if err != nil {
					return nil, fmt.Errorf("schematron %s: %w", source, err)
				}
				p.rules = append(p.rules, compiled)
				nrules++
			}
			s.patterns = append(s.patterns, p)
		}
	}
	if nrules == 0 {
		return nil, fmt.Errorf("schematron %s: no rules found", source)
	}
	return s, nil
}

func parseRule(el *etree.Element) (rule, error) {
	r := rule{
		id:      el.SelectAttrValue("id", ""),
		context: el.SelectAttrValue("context", ""),
	}
	if r.context == "" {
		return rule{}, fmt.Errorf("rule %q has no context", r.id)
	}
	// Unanchored contexts match anywhere, like an XSLT match pattern.
	if !strings.HasPrefix(r.context, "/") {
		r.context = "//" + r.context
	}
	for _, c := range el.ChildElements() {
		if c.Tag != "assert" && c.Tag != "report" {
			continue
		}
		test := c.SelectAttrValue("test", "")
		if test == "" {
			return rule{}, fmt.Errorf("%s in rule %q has no test", c.Tag, r.context)
		}
		r.checks = append(r.checks, check{
			report:  c.Tag == "report",
			id:      c.SelectAttrValue("id", ""),
			test:    test,
			role:    strings.ToLower(c.SelectAttrValue("role", "")),
			message: parseMessage(c),
		})
	}
	return r, nil
}

func parseMessage(el *etree.Element) []messagePart {
	var parts []messagePart
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			parts = append(parts, messagePart{text: t.Data})
		case *etree.Element:
			switch t.Tag {
			case "value-of":
				parts = append(parts, messagePart{sel: t.SelectAttrValue("select", ".")})
			case "name":
				if p := t.SelectAttrValue("path", ""); p != "" {
					parts = append(parts, messagePart{sel: "name(" + p + ")"})
				} else {
					parts = append(parts, messagePart{isName: true})
				}
			default:
				parts = append(parts, messagePart{text: t.Text()})
			}
		}
	}
	return parts
}

// RuleCount returns the number of compiled rules.
func (s *Schematron) RuleCount() int {
	n := 0
	for _, p := range s.patterns {
		n += len(p.rules)
	}
	return n
}

// Evaluate runs every pattern against doc. Within a pattern a node is only
// checked by the first rule whose context matches it.
func (s *Schematron) Evaluate(doc types.Document) ([]domain.Issue, error) {
	ctx, err := xpath.NewContext(doc)
	if err != nil {
		return nil, fmt.Errorf("creating xpath context: %w", err)
	}
	defer ctx.Free()
	for _, ns := range s.namespaces {
		if err := ctx.RegisterNS(ns.prefix, ns.uri); err != nil {
			return nil, fmt.Errorf("registering namespace %s: %w", ns.prefix, err)
		}
	}

	var issues []domain.Issue
	for _, p := range s.patterns {
		fired := map[uintptr]bool{}
		for _, r := range p.rules {
			if err := ctx.SetContextNode(doc); err != nil {
				return nil, err
			}
			nodes, err := findNodes(ctx, r.context)
			if err != nil {
				return nil, fmt.Errorf("rule context %q: %w", r.context, err)
			}
			for _, n := range nodes {
				if fired[n.Pointer()] {
					continue
				}
				fired[n.Pointer()] = true
				found, err := s.checkNode(ctx, r, n)
				if err != nil {
					return nil, err
				}
				issues = append(issues, found...)
			}
		}
	}
	return issues, nil
}

func (s *Schematron) checkNode(ctx *xpath.Context, r rule, n types.Node) ([]domain.Issue, error) {
	var issues []domain.Issue
	for _, c := range r.checks {
		if err := ctx.SetContextNode(n); err != nil {
			return nil, err
		}
		ok, err := evalBool(ctx, c.test)
		if err != nil {
			return nil, fmt.Errorf("test %q: %w", c.test, err)
		}
		// An assert fails when false; a report fires when true.
		if ok != c.report {
			continue
		}

		msg, err := s.renderMessage(ctx, c, n)
		if err != nil {
			return nil, err
		}
		id := c.id
		if id == "" {
			id = r.id
		}
		issue := domain.NewIssue(domain.IssueSchematron, nodePath(n), msg).
			WithRule(id).
			WithSeverity(roleSeverity(c.role)).
			WithContext("test", c.test)
		issues = append(issues, issue)
	}
	return issues, nil
}

func (s *Schematron) renderMessage(ctx *xpath.Context, c check, n types.Node) (string, error) {
	var b strings.Builder
	for _, part := range c.message {
		switch {
		case part.isName:
			b.WriteString(n.NodeName())
		case part.sel != "":
			if err := ctx.SetContextNode(n); err != nil {
				return "", err
			}
			b.WriteString(evalString(ctx, part.sel))
		default:
			b.WriteString(part.text)
		}
	}
	msg := strings.Join(strings.Fields(b.String()), " ")
	if msg != "" {
		return msg, nil
	}
	if c.report {
		return fmt.Sprintf("report fired: %s", c.test), nil
	}
	return fmt.Sprintf("assertion failed: %s", c.test), nil
}

func roleSeverity(role string) domain.Severity {
	switch role {
	case "warning", "warn":
		return domain.SeverityWarning
	case "info", "information":
		return domain.SeverityInfo
	default:
		return domain.SeverityError
	}
}

func findNodes(ctx *xpath.Context, expr string) ([]types.Node, error) {
	res, err := ctx.Find(expr)
	if err != nil {
		return nil, err
	}
	defer res.Free()
	if res.Type() != xpath.NodeSetType {
		return nil, nil
	}
	return res.NodeList(), nil
}

func evalBool(ctx *xpath.Context, expr string) (bool, error) {
	res, err := ctx.Find(expr)
	if err != nil {
		return false, err
	}
	defer res.Free()
	switch res.Type() {
	case xpath.NodeSetType:
		return len(res.NodeList()) > 0, nil
	case xpath.StringType:
		return res.String() != "", nil
	case xpath.NumberType:
		f := res.Number()
		return f != 0 && !math.IsNaN(f), nil
	default:
		return res.Bool(), nil
	}
}

func evalString(ctx *xpath.Context, expr string) string {
	res, err := ctx.Find(expr)
	if err != nil {
		return ""
	}
	defer res.Free()
	if res.Type() == xpath.NodeSetType {
		nodes := res.NodeList()
		if len(nodes) == 0 {
			return ""
		}
		return nodes[0].TextContent()
	}
	return res.String()
}

// nodePath builds a /a/b/c location for an element or attribute node.
func nodePath(n types.Node) string {
	var segs []string
	for cur := n; cur != nil; {
		switch cur.NodeType() {
		case clib.ElementNode:
			segs = append(segs, cur.NodeName())
		case clib.AttributeNode:
			segs = append(segs, "@"+cur.NodeName())
		default:
			cur = nil
			continue
		}
		parent, err := cur.ParentNode()
		if err != nil {
			break
		}
		cur = parent
	}
	if len(segs) == 0 {
		return domain.RootPath
	}
	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
	return "/" + strings.Join(segs, "/")
}
