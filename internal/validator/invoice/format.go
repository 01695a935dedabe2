package invoice

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"faturas/internal/domain"
)

var (
	cnpjPattern   = regexp.MustCompile(`^\d{2}\.?\d{3}\.?\d{3}/?\d{4}-?\s?\d{2}$`)
	nonDigit      = regexp.MustCompile(`\D`)
	invoiceNumber = regexp.MustCompile(`^\d[\d.]*$`)
)

// formatValidator checks a field against a shape rule.
type formatValidator struct {
	ruleKey  string
	ruleName string
	severity domain.ValidationSeverity
	validate func(domain.Fields) []ValidationResult
}

func (v *formatValidator) RuleKey() string                     { return v.ruleKey }
func (v *formatValidator) RuleName() string                    { return v.ruleName }
func (v *formatValidator) RuleType() domain.ValidationRuleType { return domain.ValidationRuleRegex }
func (v *formatValidator) Severity() domain.ValidationSeverity { return v.severity }

func (v *formatValidator) Validate(_ context.Context, fields domain.Fields) []ValidationResult {
	return v.validate(fields)
}

func skipped(field domain.Field, expected, ruleName string) ValidationResult {
	return ValidationResult{
		Passed: true, Field: field, ExpectedValue: expected,
		Message: fmt.Sprintf("%s: field is empty, skipping check", ruleName),
	}
}

func regexCheck(field domain.Field, value, ruleName string, re *regexp.Regexp) ValidationResult {
	if value == "" {
		return skipped(field, re.String(), ruleName)
	}
	passed := re.MatchString(value)
	msg := fmt.Sprintf("%s: %s matches expected format", ruleName, field)
	if !passed {
		msg = fmt.Sprintf("%s: %s does not match expected format", ruleName, field)
	}
	return ValidationResult{
		Passed: passed, Field: field,
		ExpectedValue: re.String(), ActualValue: value, Message: msg,
	}
}

func dateCheck(field domain.Field, value, ruleName string) ValidationResult {
	if value == "" {
		return skipped(field, "parseable date", ruleName)
	}
	_, err := ParseDate(value)
	passed := err == nil
	msg := fmt.Sprintf("%s: %s is a valid date", ruleName, field)
	if !passed {
		msg = fmt.Sprintf("%s: %s is not a parseable date", ruleName, field)
	}
	return ValidationResult{
		Passed: passed, Field: field,
		ExpectedValue: "parseable date", ActualValue: value, Message: msg,
	}
}

func cnpjCheck(value, ruleName string) ValidationResult {
	const expected = "CNPJ with valid check digits"
	if value == "" {
		return skipped(domain.FieldTaxID, expected, ruleName)
	}
	passed := ValidCNPJ(value)
	msg := fmt.Sprintf("%s: %s check digits are valid", ruleName, domain.FieldTaxID)
	if !passed {
		msg = fmt.Sprintf("%s: %s check digits do not match", ruleName, domain.FieldTaxID)
	}
	return ValidationResult{
		Passed: passed, Field: domain.FieldTaxID,
		ExpectedValue: expected, ActualValue: value, Message: msg,
	}
}

// ValidCNPJ verifies the two mod-11 check digits of a CNPJ, ignoring
// punctuation.
func ValidCNPJ(s string) bool {
	digits := nonDigit.ReplaceAllString(s, "")
	if len(digits) != 14 || strings.Count(digits, digits[:1]) == 14 {
		return false
	}
	first := cnpjDigit(digits[:12], []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2})
	second := cnpjDigit(digits[:12]+string(rune('0'+first)), []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2})
	return int(digits[12]-'0') == first && int(digits[13]-'0') == second
}

func cnpjDigit(base string, weights []int) int {
	sum := 0
	for i, w := range weights {
		sum += int(base[i]-'0') * w
	}
	if r := sum % 11; r >= 2 {
		return 11 - r
	}
	return 0
}

// ParseDate accepts the date layouts seen on printed and electronic invoices.
func ParseDate(s string) (time.Time, error) {
	formats := []string{
		"02/01/2006",
		"02.01.2006",
		"2006-01-02",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, strings.TrimSpace(s)); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date: %s", s)
}

// FormatValidators returns all format validators.
func FormatValidators() []*formatValidator {
	return []*formatValidator{
		{
			ruleKey: "fmt.tax_id.shape", ruleName: "Format: Tax ID",
			severity: domain.ValidationSeverityWarning,
			validate: func(f domain.Fields) []ValidationResult {
				return []ValidationResult{regexCheck(domain.FieldTaxID, f[domain.FieldTaxID], "Format: Tax ID", cnpjPattern)}
			},
		},
		{
			ruleKey: "fmt.tax_id.check_digits", ruleName: "Format: Tax ID Check Digits",
			severity: domain.ValidationSeverityWarning,
			validate: func(f domain.Fields) []ValidationResult {
				return []ValidationResult{cnpjCheck(f[domain.FieldTaxID], "Format: Tax ID Check Digits")}
			},
		},
		{
			ruleKey: "fmt.invoice_number", ruleName: "Format: Invoice Number",
			severity: domain.ValidationSeverityWarning,
			validate: func(f domain.Fields) []ValidationResult {
				return []ValidationResult{regexCheck(domain.FieldInvoiceNumber, f[domain.FieldInvoiceNumber], "Format: Invoice Number", invoiceNumber)}
			},
		},
		{
			ruleKey: "fmt.dates", ruleName: "Format: Dates",
			severity: domain.ValidationSeverityWarning,
			validate: func(f domain.Fields) []ValidationResult {
				return []ValidationResult{
					dateCheck(domain.FieldIssueDate, f[domain.FieldIssueDate], "Format: Issue Date"),
					dateCheck(domain.FieldPeriodStart, f[domain.FieldPeriodStart], "Format: Period Start"),
					dateCheck(domain.FieldPeriodEnd, f[domain.FieldPeriodEnd], "Format: Period End"),
				}
			},
		},
	}
}
