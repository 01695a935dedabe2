package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"faturas/internal/domain"
	"faturas/internal/port"
)

const ledgerColumns = `tax_id, total_amount, total_volume, issue_date, period_start, period_end,
	invoice_number, tax_amount, correction_factor, distributor, source_filename`

type invoiceLedgerRepo struct {
	db *sqlx.DB
}

// NewInvoiceLedgerRepo creates a PostgreSQL-backed Ledger. Deduplication is
// enforced by the unique index on the ledger key.
func NewInvoiceLedgerRepo(db *sqlx.DB) port.Ledger {
	return &invoiceLedgerRepo{db: db}
}

func (r *invoiceLedgerRepo) Load(ctx context.Context) ([]domain.InvoiceRecord, error) {
	var records []domain.InvoiceRecord
	err := r.db.SelectContext(ctx, &records,
		`SELECT `+ledgerColumns+` FROM invoice_ledger ORDER BY id`)
	if err != nil {
		return nil, r.ioErr("load", fmt.Errorf("invoiceLedgerRepo.Load: %w", err))
	}
	return records, nil
}

func (r *invoiceLedgerRepo) Contains(ctx context.Context, key domain.LedgerKey) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (
			SELECT 1 FROM invoice_ledger
			WHERE tax_id = $1 AND period_start = $2 AND period_end = $3 AND total_amount = $4)`,
		key.TaxID, key.PeriodStart, key.PeriodEnd, key.TotalAmount)
	if err != nil {
		return false, r.ioErr("load", fmt.Errorf("invoiceLedgerRepo.Contains: %w", err))
	}
	return exists, nil
}

func (r *invoiceLedgerRepo) Append(ctx context.Context, rec *domain.InvoiceRecord) (bool, error) {
	query := `INSERT INTO invoice_ledger (` + ledgerColumns + `)
		VALUES (:tax_id, :total_amount, :total_volume, :issue_date, :period_start, :period_end,
			:invoice_number, :tax_amount, :correction_factor, :distributor, :source_filename)
		ON CONFLICT (tax_id, period_start, period_end, total_amount) DO NOTHING`

	result, err := r.db.NamedExecContext(ctx, query, rec)
	if err != nil {
		return false, r.ioErr("write", fmt.Errorf("invoiceLedgerRepo.Append: %w", err))
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, r.ioErr("write", fmt.Errorf("invoiceLedgerRepo.Append rows affected: %w", err))
	}
	return rows == 1, nil
}

func (r *invoiceLedgerRepo) ioErr(op string, err error) error {
	return &domain.LedgerIOError{Path: "postgres:invoice_ledger", Op: op, Err: err}
}
