package normalize

import (
	"errors"

	"github.com/shopspring/decimal"

	"faturas/internal/domain"
)

// DefaultPCSDivisor converts a raw calorific reading into the correction factor.
const DefaultPCSDivisor = 9400

// FactorPlaces is the fixed precision of the correction factor.
const FactorPlaces = 4

// FormatFor picks the number format used to read a field.
type FormatFor func(domain.Field) NumberFormat

// Normalizer turns extracted raw strings into typed values.
type Normalizer struct {
	divisor decimal.Decimal
}

// NewNormalizer creates a Normalizer dividing PCS readings by divisor.
// A non-positive divisor falls back to DefaultPCSDivisor.
func NewNormalizer(divisor int64) *Normalizer {
	if divisor <= 0 {
		divisor = DefaultPCSDivisor
	}
	return &Normalizer{divisor: decimal.NewFromInt(divisor)}
}

// Result holds the outcome of normalizing one document's fields.
type Result struct {
	// Values holds every field still present after normalization. Decimal
	// fields are rewritten in canonical form.
	Values domain.Fields
	// Amounts holds the parsed decimal fields, keyed like Values.
	Amounts map[domain.Field]decimal.Decimal
	// Errors lists field-local failures; those fields are absent from Values.
	Errors []*domain.NormalizationError
}

// Normalize coerces fields. A field that fails to parse is dropped from the
// result so the completeness check reports it as missing.
func (n *Normalizer) Normalize(fields domain.Fields, formatFor FormatFor) *Result {
	res := &Result{
		Values:  make(domain.Fields, len(fields)),
		Amounts: make(map[domain.Field]decimal.Decimal),
	}

	for _, field := range domain.RequiredFields {
		raw, ok := fields[field]
		if !ok {
			continue
		}
		switch {
		case field == domain.FieldCorrectionFactor:
			factor, err := n.CorrectionFactor(raw, formatFor(field))
			if err != nil {
				res.fail(field, raw, err)
				continue
			}
			res.Amounts[field] = factor
			res.Values[field] = factor.StringFixed(FactorPlaces)
		case domain.DecimalFields[field]:
			d, err := formatFor(field).ParseDecimal(raw)
			if err != nil {
				res.fail(field, raw, err)
				continue
			}
			res.Amounts[field] = d
			res.Values[field] = d.String()
		default:
			res.Values[field] = raw
		}
	}
	return res
}

// CorrectionFactor divides the raw reading by the divisor and rounds to four
// decimal places.
func (n *Normalizer) CorrectionFactor(raw string, nf NumberFormat) (decimal.Decimal, error) {
	d, err := nf.ParseDecimal(raw)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, errors.New("negative reading")
	}
	return d.DivRound(n.divisor, FactorPlaces), nil
}

func (r *Result) fail(field domain.Field, raw string, err error) {
	r.Errors = append(r.Errors, &domain.NormalizationError{Field: field, Raw: raw, Err: err})
}

// Record builds the ledger row from a complete result.
func (r *Result) Record(distributor, sourceFilename string) *domain.InvoiceRecord {
	return &domain.InvoiceRecord{
		TaxID:            r.Values[domain.FieldTaxID],
		TotalAmount:      r.Amounts[domain.FieldTotalAmount],
		TotalVolume:      r.Amounts[domain.FieldTotalVolume],
		IssueDate:        r.Values[domain.FieldIssueDate],
		PeriodStart:      r.Values[domain.FieldPeriodStart],
		PeriodEnd:        r.Values[domain.FieldPeriodEnd],
		InvoiceNumber:    r.Values[domain.FieldInvoiceNumber],
		TaxAmount:        r.Amounts[domain.FieldTaxAmount],
		CorrectionFactor: r.Amounts[domain.FieldCorrectionFactor],
		Distributor:      distributor,
		SourceFilename:   sourceFilename,
	}
}
