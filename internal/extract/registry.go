package extract

import (
	"fmt"
	"sort"
)

// Registry maps variant names to rule sets.
type Registry struct {
	sets map[string]*RuleSet
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{sets: make(map[string]*RuleSet)}
}

// DefaultRegistry returns a Registry holding every built-in layout.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(CegasPDF())
	r.Register(CegasPDFLegacy())
	r.Register(NFeXML())
	r.Register(NFeXMLText())
	return r
}

// Register adds a rule set, replacing any set with the same name.
func (r *Registry) Register(rs *RuleSet) {
	r.sets[rs.Name] = rs
}

// Get returns the rule set for name, or nil if not found.
func (r *Registry) Get(name string) *RuleSet {
	return r.sets[name]
}

// Lookup is Get with an error for unknown names.
func (r *Registry) Lookup(name string) (*RuleSet, error) {
	rs := r.sets[name]
	if rs == nil {
		return nil, fmt.Errorf("unknown rule set %q (known: %v)", name, r.Names())
	}
	return rs, nil
}

// Names lists registered variants in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.sets))
	for name := range r.sets {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
