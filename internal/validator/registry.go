package validator

import "faturas/internal/validator/invoice"

// Registry maps rule keys to Validator implementations, remembering the
// order in which they were registered.
type Registry struct {
	validators map[string]Validator
	order      []string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{validators: make(map[string]Validator)}
}

// DefaultRegistry returns a Registry holding every built-in invoice check.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, v := range invoice.AllBuiltinValidators() {
		r.Register(v)
	}
	return r
}

// Register adds a validator to the registry.
func (r *Registry) Register(v Validator) {
	if _, ok := r.validators[v.RuleKey()]; !ok {
		r.order = append(r.order, v.RuleKey())
	}
	r.validators[v.RuleKey()] = v
}

// Get returns the validator for a given rule key, or nil if not found.
func (r *Registry) Get(key string) Validator {
	return r.validators[key]
}

// All returns all registered validators in registration order.
func (r *Registry) All() []Validator {
	out := make([]Validator, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.validators[key])
	}
	return out
}
