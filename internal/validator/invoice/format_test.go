package invoice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faturas/internal/domain"
)

func TestValidCNPJ(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"12.345.678/0001-95", true},
		{"12345678000195", true},
		{"12.345.678/0001-90", false},
		{"11.111.111/1111-11", false},
		{"1234", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidCNPJ(tt.in))
		})
	}
}

func TestParseDate(t *testing.T) {
	for _, s := range []string{"29/02/2024", "29.02.2024", "2024-02-29"} {
		d, err := ParseDate(s)
		require.NoError(t, err, s)
		assert.Equal(t, 29, d.Day())
	}
	_, err := ParseDate("31/02/2024")
	assert.Error(t, err)
}

func TestRequiredFieldValidators(t *testing.T) {
	vals := RequiredFieldValidators()
	require.Len(t, vals, len(domain.RequiredFields))

	res := vals[0].Validate(context.Background(), domain.Fields{domain.FieldTaxID: ""})
	require.Len(t, res, 1)
	assert.False(t, res[0].Passed)
	assert.Equal(t, domain.FieldTaxID, res[0].Field)
	assert.Equal(t, "Required: Tax ID: tax_id is missing or empty", res[0].Message)
}

func TestFormatValidators_SkipEmpty(t *testing.T) {
	for _, v := range FormatValidators() {
		for _, r := range v.Validate(context.Background(), domain.Fields{}) {
			assert.True(t, r.Passed, v.RuleKey())
		}
	}
}
