package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"faturas/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns mirrors the ledger header.
var columns = []string{
	"CNPJ",
	"Valor Total",
	"Volume Total",
	"Data Emissão",
	"Data Início",
	"Data Fim",
	"Número Fatura",
	"Valor ICMS",
	"Correção PCS",
	"Distribuidora",
	"Nome do Arquivo",
}

// Writer wraps csv.Writer for exporting ledger records as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteRecords converts ledger records to CSV rows and writes them.
func (w *Writer) WriteRecords(records []domain.InvoiceRecord) error {
	for i := range records {
		if err := w.csv.Write(recordToRow(&records[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// Export writes the BOM, header and every record to out.
func Export(out io.Writer, records []domain.InvoiceRecord) error {
	if _, err := out.Write(BOM); err != nil {
		return fmt.Errorf("writing BOM: %w", err)
	}
	w := NewWriter(out)
	if err := w.WriteHeader(); err != nil {
		return err
	}
	if err := w.WriteRecords(records); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func recordToRow(r *domain.InvoiceRecord) []string {
	return []string{
		r.TaxID,
		r.TotalAmount.StringFixed(2),
		r.TotalVolume.String(),
		r.IssueDate,
		r.PeriodStart,
		r.PeriodEnd,
		r.InvoiceNumber,
		r.TaxAmount.StringFixed(2),
		r.CorrectionFactor.StringFixed(4),
		r.Distributor,
		r.SourceFilename,
	}
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename replaces non-alphanumeric chars (except - _) with _,
// collapses consecutive underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns {sanitized_name}_{YYYY-MM-DD}.csv.
func BuildFilename(name string) string {
	return fmt.Sprintf("%s_%s.csv", SanitizeFilename(name), time.Now().Format("2006-01-02"))
}
