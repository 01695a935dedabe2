package extract

import (
	"regexp"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"faturas/internal/acquire"
)

// NFeNamespace is the namespace of Brazilian electronic invoices.
const NFeNamespace = "http://www.portalfiscal.inf.br/nfe"

var namespaces = map[string]string{"nfe": NFeNamespace}

// Candidate is one way of locating a field value in a document.
type Candidate interface {
	// Match returns the raw value and true on success. An empty value is
	// never a match.
	Match(src *acquire.Source) (string, bool)
	String() string
}

// patternCandidate searches the flattened text.
type patternCandidate struct {
	re *regexp.Regexp
}

// Pattern matches expr against the flattened text and yields capture group 1,
// or the whole match when expr has no groups.
func Pattern(expr string) Candidate {
	return &patternCandidate{re: regexp.MustCompile(expr)}
}

func (c *patternCandidate) Match(src *acquire.Source) (string, bool) {
	return firstGroup(c.re, src.Text)
}

func (c *patternCandidate) String() string { return "pattern " + c.re.String() }

func firstGroup(re *regexp.Regexp, s string) (string, bool) {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	v := m[0]
	if len(m) > 1 {
		v = m[1]
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// PathOption adjusts a Path candidate.
type PathOption func(*pathCandidate)

// DateOnly keeps the part of an ISO timestamp before 'T'.
func DateOnly() PathOption {
	return func(c *pathCandidate) {
		c.transforms = append(c.transforms, func(s string) string {
			date, _, _ := strings.Cut(s, "T")
			return date
		})
	}
}

// Token splits the value on single spaces and keeps token n (zero-based).
func Token(n int) PathOption {
	return func(c *pathCandidate) {
		c.transforms = append(c.transforms, func(s string) string {
			parts := strings.Split(s, " ")
			if n < 0 || n >= len(parts) {
				return ""
			}
			return parts[n]
		})
	}
}

// Accept rejects values that do not fully match expr.
func Accept(expr string) PathOption {
	return func(c *pathCandidate) {
		c.accept = regexp.MustCompile(expr)
	}
}

// pathCandidate reads the text of the first node selected by an XPath.
type pathCandidate struct {
	raw        string
	expr       *xpath.Expr
	transforms []func(string) string
	accept     *regexp.Regexp
}

// Path selects the first node matching expr. The "nfe" prefix is bound to
// NFeNamespace.
func Path(expr string, opts ...PathOption) Candidate {
	c := &pathCandidate{raw: expr, expr: compile(expr)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *pathCandidate) Match(src *acquire.Source) (string, bool) {
	node := selectNode(src, c.expr)
	if node == nil {
		return "", false
	}
	v := strings.TrimSpace(node.InnerText())
	for _, t := range c.transforms {
		v = t(v)
	}
	if v == "" {
		return "", false
	}
	if c.accept != nil && !c.accept.MatchString(v) {
		return "", false
	}
	return v, true
}

func (c *pathCandidate) String() string { return "path " + c.raw }

// pathPatternCandidate runs a regex over the text of a selected node.
type pathPatternCandidate struct {
	raw  string
	expr *xpath.Expr
	re   *regexp.Regexp
}

// PathPattern matches pattern against the text of the first node selected
// by expr, typically a free-text block.
func PathPattern(expr, pattern string) Candidate {
	return &pathPatternCandidate{raw: expr, expr: compile(expr), re: regexp.MustCompile(pattern)}
}

func (c *pathPatternCandidate) Match(src *acquire.Source) (string, bool) {
	node := selectNode(src, c.expr)
	if node == nil {
		return "", false
	}
	return firstGroup(c.re, node.InnerText())
}

func (c *pathPatternCandidate) String() string {
	return "path " + c.raw + " pattern " + c.re.String()
}

// subtreeMarkerCandidate looks for a marked element inside a subtree.
type subtreeMarkerCandidate struct {
	raw    string
	expr   *xpath.Expr
	marker string
	re     *regexp.Regexp
}

// SubtreeMarker selects the subtree at expr and yields the text of the first
// element, itself included, whose name contains marker. An element whose
// text contains marker yields the first match of pattern in that text.
func SubtreeMarker(expr, marker, pattern string) Candidate {
	return &subtreeMarkerCandidate{raw: expr, expr: compile(expr), marker: marker, re: regexp.MustCompile(pattern)}
}

func (c *subtreeMarkerCandidate) Match(src *acquire.Source) (string, bool) {
	root := selectNode(src, c.expr)
	if root == nil {
		return "", false
	}
	var (
		value string
		ok    bool
	)
	acquire.Walk(root, func(n *xmlquery.Node) bool {
		if n.Type != xmlquery.ElementNode {
			return true
		}
		text := acquire.OwnText(n)
		if strings.Contains(n.Data, c.marker) {
			value = strings.TrimSpace(text)
			ok = value != ""
			return !ok
		}
		if strings.Contains(text, c.marker) {
			value, ok = firstGroup(c.re, text)
			return !ok
		}
		return true
	})
	return value, ok
}

func (c *subtreeMarkerCandidate) String() string {
	return "subtree " + c.raw + " marker " + c.marker + " pattern " + c.re.String()
}

// treeScanCandidate scans every element of the document.
type treeScanCandidate struct {
	marker string
	re     *regexp.Regexp
}

// TreeScan walks the whole tree and, for each element whose own text contains
// marker, tries pattern on that text. The first hit wins.
func TreeScan(marker, pattern string) Candidate {
	return &treeScanCandidate{marker: marker, re: regexp.MustCompile(pattern)}
}

func (c *treeScanCandidate) Match(src *acquire.Source) (string, bool) {
	if src.Tree == nil {
		return "", false
	}
	var (
		value string
		ok    bool
	)
	acquire.Walk(src.Tree, func(n *xmlquery.Node) bool {
		if n.Type != xmlquery.ElementNode {
			return true
		}
		text := acquire.OwnText(n)
		if !strings.Contains(text, c.marker) {
			return true
		}
		value, ok = firstGroup(c.re, text)
		return !ok
	})
	return value, ok
}

func (c *treeScanCandidate) String() string {
	return "scan " + c.marker + " pattern " + c.re.String()
}

func compile(expr string) *xpath.Expr {
	e, err := xpath.CompileWithNS(expr, namespaces)
	if err != nil {
		panic("extract: invalid xpath " + expr + ": " + err.Error())
	}
	return e
}

func selectNode(src *acquire.Source, expr *xpath.Expr) *xmlquery.Node {
	if src.Tree == nil {
		return nil
	}
	return xmlquery.QuerySelector(src.Tree, expr)
}
