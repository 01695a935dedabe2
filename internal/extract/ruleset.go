// Package extract locates raw invoice field values in acquired documents
// using ordered, named rule sets.
package extract

import (
	"fmt"

	"github.com/antchfx/xpath"

	"faturas/internal/acquire"
	"faturas/internal/domain"
	"faturas/internal/normalize"
)

// FieldRule lists the candidates tried, in order, for one field.
type FieldRule struct {
	Field      domain.Field
	Candidates []Candidate
	// Numbers overrides the rule set's number format for this field.
	Numbers *normalize.NumberFormat
}

// RuleSet is a named, versioned table of extraction rules for one document
// layout.
type RuleSet struct {
	Name        string
	Description string
	Format      domain.SourceFormat
	Numbers     normalize.NumberFormat
	Rules       []FieldRule
	// Root, when set, must select a node for the document to be considered
	// this layout at all.
	Root *xpath.Expr
}

// Extract applies every rule to src. Candidates are tried in order and the
// first match wins; fields without a match are left out.
func (rs *RuleSet) Extract(src *acquire.Source) domain.Fields {
	out := make(domain.Fields, len(rs.Rules))
	for _, rule := range rs.Rules {
		for _, c := range rule.Candidates {
			if v, ok := c.Match(src); ok {
				out[rule.Field] = v
				break
			}
		}
	}
	return out
}

// Trace reports which candidate matched each field, for debug logging.
func (rs *RuleSet) Trace(src *acquire.Source) map[domain.Field]string {
	out := make(map[domain.Field]string, len(rs.Rules))
	for _, rule := range rs.Rules {
		for _, c := range rule.Candidates {
			if _, ok := c.Match(src); ok {
				out[rule.Field] = c.String()
				break
			}
		}
	}
	return out
}

// Check fails when src is not a document of this layout.
func (rs *RuleSet) Check(src *acquire.Source) error {
	if rs.Root == nil {
		return nil
	}
	if selectNode(src, rs.Root) == nil {
		return domain.ErrNotFiscalDocument
	}
	return nil
}

// NumberFormat returns the format used to read field.
func (rs *RuleSet) NumberFormat(field domain.Field) normalize.NumberFormat {
	for i := range rs.Rules {
		if rs.Rules[i].Field == field && rs.Rules[i].Numbers != nil {
			return *rs.Rules[i].Numbers
		}
	}
	return rs.Numbers
}

func (rs *RuleSet) String() string {
	return fmt.Sprintf("%s (%s)", rs.Name, rs.Format)
}
