package validator

import (
	"context"

	"faturas/internal/domain"
	"faturas/internal/validator/invoice"
)

// Validator is the interface for a single built-in validation rule.
type Validator interface {
	Validate(ctx context.Context, fields domain.Fields) []invoice.ValidationResult
	RuleKey() string
	RuleName() string
	RuleType() domain.ValidationRuleType
	Severity() domain.ValidationSeverity
}
