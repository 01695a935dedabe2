// Package normalize coerces raw extracted strings into typed values.
package normalize

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// NumberFormat describes how a document writes decimal numbers.
type NumberFormat struct {
	Thousands string
	Decimal   string
}

var (
	// BrazilianNumbers reads "1.234,56".
	BrazilianNumbers = NumberFormat{Thousands: ".", Decimal: ","}
	// CanonicalNumbers reads "1234.56" as used by NF-e XML.
	CanonicalNumbers = NumberFormat{Thousands: "", Decimal: "."}
)

var errEmpty = errors.New("empty value")

// ParseDecimal strips the thousands separator, maps the decimal separator to
// '.', and parses the result.
func (nf NumberFormat) ParseDecimal(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, errEmpty
	}
	if nf.Thousands != "" {
		s = strings.ReplaceAll(s, nf.Thousands, "")
	}
	if nf.Decimal != "" && nf.Decimal != "." {
		s = strings.ReplaceAll(s, nf.Decimal, ".")
	}
	return decimal.NewFromString(s)
}
