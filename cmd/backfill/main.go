// Command backfill copies an existing XLSX ledger into the PostgreSQL ledger.
// Rows whose key is already present are skipped.
// Usage: go run ./cmd/backfill [--from dados_faturas.xlsx] [--sheet Sheet1]
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/pflag"

	"faturas/internal/config"
	"faturas/internal/domain"
	"faturas/internal/ledger/xlsx"
	"faturas/internal/repository/postgres"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	from := pflag.String("from", cfg.Ledger.Path, "XLSX ledger to copy")
	sheet := pflag.String("sheet", cfg.Ledger.Sheet, "sheet holding the ledger")
	pflag.Parse()

	ctx := context.Background()
	records, err := readSource(ctx, *from, *sheet)
	if err != nil {
		return err
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	target := postgres.NewInvoiceLedgerRepo(db)
	inserted, skipped := 0, 0
	for i := range records {
		ok, err := target.Append(ctx, &records[i])
		if err != nil {
			return fmt.Errorf("row %d (%s): %w", i+2, records[i].SourceFilename, err)
		}
		if ok {
			inserted++
		} else {
			skipped++
		}
	}

	log.Printf("backfill complete: %d rows inserted, %d already present", inserted, skipped)
	return nil
}

// readSource loads the rows of an existing workbook. Loading an absent path
// would create an empty ledger there, so it is rejected first.
func readSource(ctx context.Context, path, sheet string) ([]domain.InvoiceRecord, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	records, err := xlsx.NewLedger(path, sheet, nil).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return records, nil
}
