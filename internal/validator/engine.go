package validator

import (
	"context"

	"go.uber.org/zap"

	"faturas/internal/domain"
	"faturas/internal/logger"
	"faturas/internal/validator/invoice"
)

// Finding is a failed check with its rule metadata.
type Finding struct {
	RuleKey  string
	Severity domain.ValidationSeverity
	Result   invoice.ValidationResult
}

// Report is the outcome of validating one document's fields.
type Report struct {
	// Missing lists absent required fields in ledger column order.
	Missing  []domain.Field
	Findings []Finding
}

// Err returns a CompletenessError when required fields are missing.
func (r *Report) Err() error {
	if len(r.Missing) == 0 {
		return nil
	}
	return &domain.CompletenessError{Missing: r.Missing}
}

// Warnings returns the non-blocking findings.
func (r *Report) Warnings() []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Severity == domain.ValidationSeverityWarning {
			out = append(out, f)
		}
	}
	return out
}

// Engine runs every registered check. Only failed required-field checks
// block a record; every other failure is reported as a finding.
type Engine struct {
	registry *Registry
	log      *zap.Logger
}

// NewEngine creates a new validation engine.
func NewEngine(registry *Registry, log *zap.Logger) *Engine {
	return &Engine{registry: registry, log: logger.OrNop(log)}
}

// Validate checks fields and reports what is missing or suspicious.
func (e *Engine) Validate(ctx context.Context, fields domain.Fields) *Report {
	report := &Report{}
	for _, v := range e.registry.All() {
		for _, res := range v.Validate(ctx, fields) {
			if res.Passed {
				continue
			}
			if v.RuleType() == domain.ValidationRuleRequired && v.Severity() == domain.ValidationSeverityError {
				report.Missing = append(report.Missing, res.Field)
			}
			report.Findings = append(report.Findings, Finding{
				RuleKey:  v.RuleKey(),
				Severity: v.Severity(),
				Result:   res,
			})
			e.log.Debug("validation check failed",
				zap.String("rule", v.RuleKey()),
				zap.String("field", string(res.Field)),
				zap.String("message", res.Message))
		}
	}
	return report
}
