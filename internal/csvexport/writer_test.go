package csvexport

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faturas/internal/domain"
)

func TestWriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	w.Flush()
	require.NoError(t, w.Error())

	row, err := csv.NewReader(&buf).Read()
	require.NoError(t, err)

	assert.Len(t, row, 11)
	assert.Equal(t, "CNPJ", row[0])
	assert.Equal(t, "Correção PCS", row[8])
	assert.Equal(t, "Nome do Arquivo", row[10])
}

func TestWriteRecords_Formatting(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteRecords([]domain.InvoiceRecord{{
		TaxID:            "07.012.345/0001-90",
		TotalAmount:      decimal.RequireFromString("4321.1"),
		TotalVolume:      decimal.RequireFromString("1234.567"),
		IssueDate:        "05/03/2024",
		PeriodStart:      "01/02/2024",
		PeriodEnd:        "29/02/2024",
		InvoiceNumber:    "1.234.567",
		TaxAmount:        decimal.RequireFromString("777.78"),
		CorrectionFactor: decimal.RequireFromString("5"),
		Distributor:      "Cegás",
		SourceFilename:   "fatura, março.pdf",
	}}))
	w.Flush()
	require.NoError(t, w.Error())

	row, err := csv.NewReader(&buf).Read()
	require.NoError(t, err)

	assert.Equal(t, "4321.10", row[1])
	assert.Equal(t, "1234.567", row[2])
	assert.Equal(t, "5.0000", row[8])
	assert.Equal(t, "fatura, março.pdf", row[10])
}

func TestExport_StartsWithBOM(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Export(&buf, nil))

	assert.True(t, bytes.HasPrefix(buf.Bytes(), BOM))
	rows, err := csv.NewReader(bytes.NewReader(buf.Bytes()[len(BOM):])).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "Faturas Cegas", "Faturas_Cegas"},
		{"special chars", "Faturas 2024 / Q1 (Jan–Mar)", "Faturas_2024_Q1_Jan_Mar"},
		{"accents dropped", "Cegás Março", "Ceg_s_Mar_o"},
		{"hyphens and underscores preserved", "dados-faturas_2024", "dados-faturas_2024"},
		{"consecutive underscores collapsed", "dados___faturas", "dados_faturas"},
		{"leading/trailing cleaned", "  ledger  ", "ledger"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeFilename(tt.input))
		})
	}
}

func TestBuildFilename(t *testing.T) {
	filename := BuildFilename("dados faturas")
	today := time.Now().Format("2006-01-02")
	assert.Equal(t, "dados_faturas_"+today+".csv", filename)
}
