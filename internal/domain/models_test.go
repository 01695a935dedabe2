package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"faturas/internal/domain"
)

func TestLedgerKey_IgnoresInvoiceNumber(t *testing.T) {
	a := &domain.InvoiceRecord{
		TaxID:         "12.345.678/0001-90",
		PeriodStart:   "01/02/2024",
		PeriodEnd:     "29/02/2024",
		TotalAmount:   decimal.RequireFromString("1234.56"),
		InvoiceNumber: "1.234.567",
	}
	b := *a
	b.InvoiceNumber = "7.654.321"

	assert.True(t, a.Key().Matches(b.Key()))
}

func TestLedgerKey_TotalComparedByValue(t *testing.T) {
	a := domain.LedgerKey{TaxID: "x", TotalAmount: decimal.RequireFromString("10.50")}
	b := domain.LedgerKey{TaxID: "x", TotalAmount: decimal.RequireFromString("10.5")}
	assert.True(t, a.Matches(b))

	b.PeriodEnd = "31/01/2024"
	assert.False(t, a.Matches(b))
}

func TestBatchSummary_Counts(t *testing.T) {
	s := domain.NewBatchSummary("/in")
	s.Add(domain.DocumentResult{Outcome: domain.OutcomeInserted, ArchivedTo: "/out/a.pdf"})
	s.Add(domain.DocumentResult{Outcome: domain.OutcomeDuplicate})
	s.Add(domain.DocumentResult{Outcome: domain.OutcomeDuplicate})

	counts := s.Counts()
	assert.Equal(t, 1, counts[domain.OutcomeInserted])
	assert.Equal(t, 2, counts[domain.OutcomeDuplicate])
	assert.Equal(t, 0, counts[domain.OutcomeReadError])
	assert.Len(t, s.LeftInPlace(), 2)
}

func TestCompletenessError_Message(t *testing.T) {
	err := &domain.CompletenessError{Missing: []domain.Field{domain.FieldInvoiceNumber, domain.FieldTaxAmount}}
	assert.Equal(t, "missing required fields: invoice_number, tax_amount", err.Error())
}

func TestIsLedgerIO(t *testing.T) {
	base := &domain.LedgerIOError{Path: "l.xlsx", Op: "load", Err: errors.New("boom")}
	assert.True(t, domain.IsLedgerIO(fmt.Errorf("wrapped: %w", base)))
	assert.False(t, domain.IsLedgerIO(errors.New("other")))
}
