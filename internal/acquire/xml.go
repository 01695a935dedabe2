package acquire

import (
	"fmt"
	"os"
	"strings"

	"github.com/antchfx/xmlquery"

	"faturas/internal/domain"
)

// ReadXML parses path into a tree and flattens its text.
func ReadXML(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &domain.AcquisitionError{Path: path, Err: err}
	}
	defer f.Close()

	doc, err := xmlquery.Parse(f)
	if err != nil {
		return nil, &domain.AcquisitionError{Path: path, Err: fmt.Errorf("parsing xml: %w", err)}
	}

	text := NormalizeText(Flatten(doc))
	if text == "" {
		return nil, &domain.AcquisitionError{Path: path, Err: domain.ErrNoText}
	}
	return &Source{Path: path, Format: domain.SourceFormatXML, Text: text, Tree: doc}, nil
}

// Flatten concatenates the text of every node under n, depth-first.
func Flatten(n *xmlquery.Node) string {
	var b strings.Builder
	Walk(n, func(node *xmlquery.Node) bool {
		if node.Type == xmlquery.TextNode || node.Type == xmlquery.CharDataNode {
			b.WriteString(node.Data)
		}
		return true
	})
	return b.String()
}

// Walk visits n and its descendants in document order until fn returns false.
func Walk(n *xmlquery.Node, fn func(*xmlquery.Node) bool) bool {
	if n == nil {
		return true
	}
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !Walk(c, fn) {
			return false
		}
	}
	return true
}

// OwnText returns the text directly under n, excluding child elements.
func OwnText(n *xmlquery.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.TextNode || c.Type == xmlquery.CharDataNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}
