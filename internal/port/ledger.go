package port

import (
	"context"

	"faturas/internal/domain"
)

// Ledger is the persisted, append-only table of ingested invoices.
// Implementations are single-writer.
type Ledger interface {
	// Load returns every row currently stored. An absent store is created
	// empty and yields no rows.
	Load(ctx context.Context) ([]domain.InvoiceRecord, error)
	// Contains reports whether a row with the same composite key exists.
	Contains(ctx context.Context, key domain.LedgerKey) (bool, error)
	// Append stores rec unless its key is already present. It returns
	// false for a duplicate.
	Append(ctx context.Context, rec *domain.InvoiceRecord) (bool, error)
}
