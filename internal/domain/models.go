package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Fields maps each extracted field to its raw string value.
// A field with no successful match has no key.
type Fields map[Field]string

// Has reports whether f is present with a non-blank value.
func (f Fields) Has(field Field) bool {
	v, ok := f[field]
	return ok && v != ""
}

// Clone returns an independent copy of f.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// InvoiceRecord is one row of the ledger.
type InvoiceRecord struct {
	TaxID            string          `db:"tax_id" json:"tax_id"`
	TotalAmount      decimal.Decimal `db:"total_amount" json:"total_amount"`
	TotalVolume      decimal.Decimal `db:"total_volume" json:"total_volume"`
	IssueDate        string          `db:"issue_date" json:"issue_date"`
	PeriodStart      string          `db:"period_start" json:"period_start"`
	PeriodEnd        string          `db:"period_end" json:"period_end"`
	InvoiceNumber    string          `db:"invoice_number" json:"invoice_number"`
	TaxAmount        decimal.Decimal `db:"tax_amount" json:"tax_amount"`
	CorrectionFactor decimal.Decimal `db:"correction_factor" json:"correction_factor"`
	Distributor      string          `db:"distributor" json:"distributor"`
	SourceFilename   string          `db:"source_filename" json:"source_filename"`
}

// Key returns the deduplication identity of the record.
func (r *InvoiceRecord) Key() LedgerKey {
	return LedgerKey{
		TaxID:       r.TaxID,
		PeriodStart: r.PeriodStart,
		PeriodEnd:   r.PeriodEnd,
		TotalAmount: r.TotalAmount,
	}
}

// LedgerKey is the composite identity of a ledger row. The invoice number is
// deliberately not part of it.
type LedgerKey struct {
	TaxID       string
	PeriodStart string
	PeriodEnd   string
	TotalAmount decimal.Decimal
}

// Matches compares strings byte-for-byte and the total by decimal value.
func (k LedgerKey) Matches(other LedgerKey) bool {
	return k.TaxID == other.TaxID &&
		k.PeriodStart == other.PeriodStart &&
		k.PeriodEnd == other.PeriodEnd &&
		k.TotalAmount.Equal(other.TotalAmount)
}

// DocumentResult is the terminal status of one processed document.
type DocumentResult struct {
	Path        string         `json:"path"`
	Format      SourceFormat   `json:"format"`
	Outcome     Outcome        `json:"outcome"`
	Missing     []Field        `json:"missing,omitempty"`
	Record      *InvoiceRecord `json:"record,omitempty"`
	ArchivedTo  string         `json:"archived_to,omitempty"`
	RelocateErr string         `json:"relocate_error,omitempty"`
	Err         string         `json:"error,omitempty"`
}

// BatchSummary aggregates the results of one batch run.
type BatchSummary struct {
	RunID      uuid.UUID        `json:"run_id"`
	InboundDir string           `json:"inbound_dir"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Results    []DocumentResult `json:"results"`
}

// NewBatchSummary starts a summary for a run over dir.
func NewBatchSummary(dir string) *BatchSummary {
	return &BatchSummary{
		RunID:      uuid.New(),
		InboundDir: dir,
		StartedAt:  time.Now().UTC(),
	}
}

// Add records a document result.
func (s *BatchSummary) Add(r DocumentResult) {
	s.Results = append(s.Results, r)
}

// Counts tallies results by outcome.
func (s *BatchSummary) Counts() map[Outcome]int {
	counts := make(map[Outcome]int, len(Outcomes))
	for _, o := range Outcomes {
		counts[o] = 0
	}
	for i := range s.Results {
		counts[s.Results[i].Outcome]++
	}
	return counts
}

// LeftInPlace returns the results whose documents were not archived.
func (s *BatchSummary) LeftInPlace() []DocumentResult {
	var out []DocumentResult
	for i := range s.Results {
		if s.Results[i].ArchivedTo == "" {
			out = append(out, s.Results[i])
		}
	}
	return out
}

// Duration returns the wall time of the run.
func (s *BatchSummary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}
