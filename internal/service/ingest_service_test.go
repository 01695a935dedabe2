package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"faturas/internal/domain"
	"faturas/internal/service"
	"faturas/mocks"
)

var cegas = service.IngestConfig{Distributor: "Cegás"}

func TestProcessDocument_InsertedAndArchived(t *testing.T) {
	path := writeDoc(t, t.TempDir(), "nota.xml", nfe("4521", "4321.09"))
	ledger := new(mocks.MockLedger)
	archiver := new(mocks.MockDocumentArchiver)

	ledger.On("Append", mock.Anything, mock.MatchedBy(func(r *domain.InvoiceRecord) bool {
		return r.TaxID == "07012345000190" &&
			r.TotalAmount.Equal(decimal.RequireFromString("4321.09")) &&
			r.CorrectionFactor.Equal(decimal.RequireFromString("5")) &&
			r.InvoiceNumber == "4521" &&
			r.IssueDate == "2024-03-05" &&
			r.Distributor == "Cegás" &&
			r.SourceFilename == "nota.xml"
	})).Return(true, nil)
	archiver.On("Archive", mock.Anything, path).Return("/arquivo/nota.xml", nil)

	res, err := newService(t, ledger, archiver, cegas).ProcessDocument(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeInserted, res.Outcome)
	assert.Equal(t, domain.SourceFormatXML, res.Format)
	assert.Equal(t, "/arquivo/nota.xml", res.ArchivedTo)
	ledger.AssertExpectations(t)
	archiver.AssertExpectations(t)
}

func TestProcessDocument_DuplicateLeftInPlace(t *testing.T) {
	path := writeDoc(t, t.TempDir(), "nota.xml", nfe("4521", "4321.09"))
	ledger := new(mocks.MockLedger)
	archiver := new(mocks.MockDocumentArchiver)
	ledger.On("Append", mock.Anything, mock.Anything).Return(false, nil)

	res, err := newService(t, ledger, archiver, cegas).ProcessDocument(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeDuplicate, res.Outcome)
	assert.Empty(t, res.ArchivedTo)
	archiver.AssertNotCalled(t, "Archive", mock.Anything, mock.Anything)
}

func TestProcessDocument_MissingOnlyInvoiceNumber(t *testing.T) {
	path := writeDoc(t, t.TempDir(), "nota.xml", nfe("", "4321.09"))
	ledger := new(mocks.MockLedger)
	archiver := new(mocks.MockDocumentArchiver)

	res, err := newService(t, ledger, archiver, cegas).ProcessDocument(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeMissingFields, res.Outcome)
	assert.Equal(t, []domain.Field{domain.FieldInvoiceNumber}, res.Missing)
	ledger.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	archiver.AssertNotCalled(t, "Archive", mock.Anything, mock.Anything)
}

func TestProcessDocument_UnparseableAmountIsMissing(t *testing.T) {
	path := writeDoc(t, t.TempDir(), "nota.xml", nfe("4521", "quatro mil"))

	res, err := newService(t, new(mocks.MockLedger), new(mocks.MockDocumentArchiver), cegas).
		ProcessDocument(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeMissingFields, res.Outcome)
	assert.Equal(t, []domain.Field{domain.FieldTotalAmount}, res.Missing)
}

func TestProcessDocument_ReadErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"malformed xml", "quebrada.xml", "<nfeProc><NFe>"},
		{"not an nf-e", "pedido.xml", "<pedido><numero>1</numero></pedido>"},
		{"not a pdf", "fatura.pdf", "plain text"},
		{"unsupported extension", "notas.txt", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeDoc(t, dir, tt.file, tt.content)
			ledger := new(mocks.MockLedger)

			res, err := newService(t, ledger, new(mocks.MockDocumentArchiver), cegas).
				ProcessDocument(context.Background(), path)

			require.NoError(t, err)
			assert.Equal(t, domain.OutcomeReadError, res.Outcome)
			assert.NotEmpty(t, res.Err)
			ledger.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
		})
	}
}

func TestProcessDocument_PDFMissingFields(t *testing.T) {
	res, err := newService(t, new(mocks.MockLedger), new(mocks.MockDocumentArchiver), cegas).
		ProcessDocument(context.Background(), filepath.Join("testdata", "fatura.pdf"))

	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeMissingFields, res.Outcome)
	assert.Contains(t, res.Missing, domain.FieldTaxID)
}

func TestProcessDocument_PDFInserted(t *testing.T) {
	path := filepath.Join("testdata", "fatura_cegas.pdf")
	ledger := new(mocks.MockLedger)
	archiver := new(mocks.MockDocumentArchiver)

	ledger.On("Append", mock.Anything, mock.MatchedBy(func(r *domain.InvoiceRecord) bool {
		return r.TaxID == "12.345.678/0001-95" &&
			r.TotalAmount.Equal(decimal.RequireFromString("4321.09")) &&
			r.TotalVolume.Equal(decimal.RequireFromString("1234.567")) &&
			r.IssueDate == "05/03/2024" &&
			r.PeriodStart == "01/02/2024" &&
			r.PeriodEnd == "29/02/2024" &&
			r.InvoiceNumber == "1.234.567" &&
			r.TaxAmount.Equal(decimal.RequireFromString("777.78")) &&
			r.CorrectionFactor.Equal(decimal.RequireFromString("5")) &&
			r.SourceFilename == "fatura_cegas.pdf"
	})).Return(true, nil)
	archiver.On("Archive", mock.Anything, mock.Anything).Return("/arquivo/fatura_cegas.pdf", nil)

	res, err := newService(t, ledger, archiver, cegas).ProcessDocument(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeInserted, res.Outcome)
	assert.Empty(t, res.Missing)
	ledger.AssertExpectations(t)
	archiver.AssertExpectations(t)
}

func TestProcessDocument_LedgerFailureIsReturned(t *testing.T) {
	path := writeDoc(t, t.TempDir(), "nota.xml", nfe("4521", "4321.09"))
	ledger := new(mocks.MockLedger)
	archiver := new(mocks.MockDocumentArchiver)
	ledger.On("Append", mock.Anything, mock.Anything).
		Return(false, &domain.LedgerIOError{Path: "l.xlsx", Op: "write", Err: errors.New("disk full")})

	_, err := newService(t, ledger, archiver, cegas).ProcessDocument(context.Background(), path)

	assert.True(t, domain.IsLedgerIO(err))
	archiver.AssertNotCalled(t, "Archive", mock.Anything, mock.Anything)
}

func TestProcessDocument_RelocationFailureKeepsRecord(t *testing.T) {
	path := writeDoc(t, t.TempDir(), "nota.xml", nfe("4521", "4321.09"))
	ledger := new(mocks.MockLedger)
	archiver := new(mocks.MockDocumentArchiver)
	ledger.On("Append", mock.Anything, mock.Anything).Return(true, nil)
	archiver.On("Archive", mock.Anything, path).Return("", domain.ErrArchiveUnavailable)

	res, err := newService(t, ledger, archiver, cegas).ProcessDocument(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeInserted, res.Outcome)
	assert.Empty(t, res.ArchivedTo)
	assert.Contains(t, res.RelocateErr, "archive location")
}

func TestProcessDocument_DistributorFromFilename(t *testing.T) {
	path := writeDoc(t, t.TempDir(), "2024_GN_POTIGÁS_0001.xml", nfe("4521", "4321.09"))
	ledger := new(mocks.MockLedger)
	archiver := new(mocks.MockDocumentArchiver)
	ledger.On("Append", mock.Anything, mock.MatchedBy(func(r *domain.InvoiceRecord) bool {
		return r.Distributor == "POTIGÁS"
	})).Return(true, nil)
	archiver.On("Archive", mock.Anything, path).Return("/arquivo/x.xml", nil)

	cfg := service.IngestConfig{Distributor: "Cegás", DistributorFromFilename: true}
	res, err := newService(t, ledger, archiver, cfg).ProcessDocument(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeInserted, res.Outcome)
	ledger.AssertExpectations(t)
}
