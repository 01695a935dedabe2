package invoice

import (
	"context"
	"fmt"

	"faturas/internal/domain"
)

// logicalValidator checks relationships between fields.
type logicalValidator struct {
	ruleKey  string
	ruleName string
	severity domain.ValidationSeverity
	validate func(domain.Fields) []ValidationResult
}

func (v *logicalValidator) RuleKey() string                     { return v.ruleKey }
func (v *logicalValidator) RuleName() string                    { return v.ruleName }
func (v *logicalValidator) RuleType() domain.ValidationRuleType { return domain.ValidationRuleLogical }
func (v *logicalValidator) Severity() domain.ValidationSeverity { return v.severity }

func (v *logicalValidator) Validate(_ context.Context, fields domain.Fields) []ValidationResult {
	return v.validate(fields)
}

// LogicalValidators returns all logical validators.
func LogicalValidators() []*logicalValidator {
	return []*logicalValidator{
		{
			ruleKey: "logic.period.ordered", ruleName: "Logical: Billing Period Order",
			severity: domain.ValidationSeverityWarning,
			validate: func(f domain.Fields) []ValidationResult {
				start, errS := ParseDate(f[domain.FieldPeriodStart])
				end, errE := ParseDate(f[domain.FieldPeriodEnd])
				if errS != nil || errE != nil {
					return []ValidationResult{skipped(domain.FieldPeriodEnd, "period end on or after start", "Logical: Billing Period Order")}
				}
				passed := !end.Before(start)
				msg := "Logical: Billing Period Order: period end is on or after start"
				if !passed {
					msg = fmt.Sprintf("Logical: Billing Period Order: period end %s precedes start %s",
						f[domain.FieldPeriodEnd], f[domain.FieldPeriodStart])
				}
				return []ValidationResult{{
					Passed: passed, Field: domain.FieldPeriodEnd,
					ExpectedValue: "on or after " + f[domain.FieldPeriodStart],
					ActualValue:   f[domain.FieldPeriodEnd], Message: msg,
				}}
			},
		},
		{
			ruleKey: "logic.issue.after_start", ruleName: "Logical: Issued After Period Start",
			severity: domain.ValidationSeverityWarning,
			validate: func(f domain.Fields) []ValidationResult {
				start, errS := ParseDate(f[domain.FieldPeriodStart])
				issued, errI := ParseDate(f[domain.FieldIssueDate])
				if errS != nil || errI != nil {
					return []ValidationResult{skipped(domain.FieldIssueDate, "issued on or after period start", "Logical: Issued After Period Start")}
				}
				passed := !issued.Before(start)
				msg := "Logical: Issued After Period Start: issue date is on or after period start"
				if !passed {
					msg = fmt.Sprintf("Logical: Issued After Period Start: issue date %s precedes period start %s",
						f[domain.FieldIssueDate], f[domain.FieldPeriodStart])
				}
				return []ValidationResult{{
					Passed: passed, Field: domain.FieldIssueDate,
					ExpectedValue: "on or after " + f[domain.FieldPeriodStart],
					ActualValue:   f[domain.FieldIssueDate], Message: msg,
				}}
			},
		},
	}
}
