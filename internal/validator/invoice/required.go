package invoice

import (
	"context"
	"fmt"

	"faturas/internal/domain"
)

// requiredFieldValidator checks that a required field is present and non-empty.
type requiredFieldValidator struct {
	ruleKey  string
	ruleName string
	field    domain.Field
	severity domain.ValidationSeverity
}

func (v *requiredFieldValidator) RuleKey() string  { return v.ruleKey }
func (v *requiredFieldValidator) RuleName() string { return v.ruleName }
func (v *requiredFieldValidator) RuleType() domain.ValidationRuleType {
	return domain.ValidationRuleRequired
}
func (v *requiredFieldValidator) Severity() domain.ValidationSeverity { return v.severity }

func (v *requiredFieldValidator) Validate(_ context.Context, fields domain.Fields) []ValidationResult {
	val := fields[v.field]
	passed := fields.Has(v.field)
	return []ValidationResult{{
		Passed:        passed,
		Field:         v.field,
		ExpectedValue: "non-empty value",
		ActualValue:   val,
		Message:       fieldMessage(passed, v.ruleName, v.field),
	}}
}

func fieldMessage(passed bool, ruleName string, field domain.Field) string {
	if passed {
		return fmt.Sprintf("%s: %s is present", ruleName, field)
	}
	return fmt.Sprintf("%s: %s is missing or empty", ruleName, field)
}

var requiredNames = map[domain.Field]string{
	domain.FieldTaxID:            "Tax ID",
	domain.FieldTotalAmount:      "Total Amount",
	domain.FieldTotalVolume:      "Total Volume",
	domain.FieldIssueDate:        "Issue Date",
	domain.FieldPeriodStart:      "Period Start",
	domain.FieldPeriodEnd:        "Period End",
	domain.FieldInvoiceNumber:    "Invoice Number",
	domain.FieldTaxAmount:        "Tax Amount",
	domain.FieldCorrectionFactor: "Correction Factor",
}

// RequiredFieldValidators returns one error-severity validator per required
// field, in ledger column order.
func RequiredFieldValidators() []*requiredFieldValidator {
	out := make([]*requiredFieldValidator, 0, len(domain.RequiredFields))
	for _, f := range domain.RequiredFields {
		out = append(out, &requiredFieldValidator{
			ruleKey:  "req." + string(f),
			ruleName: "Required: " + requiredNames[f],
			field:    f,
			severity: domain.ValidationSeverityError,
		})
	}
	return out
}
