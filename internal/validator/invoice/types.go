package invoice

import "faturas/internal/domain"

// ValidationResult is the outcome of one check against one field.
type ValidationResult struct {
	Passed        bool
	Field         domain.Field
	ExpectedValue string
	ActualValue   string
	Message       string
}
