// Package xlsx stores the invoice ledger as a single-sheet Excel workbook.
package xlsx

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"faturas/internal/domain"
	"faturas/internal/logger"
	"faturas/internal/port"
)

// DefaultSheet is the sheet name used for new workbooks.
const DefaultSheet = "Sheet1"

// Columns is the fixed header row of the ledger.
var Columns = []string{
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

const (
	colTaxID = iota
	colTotal
	colVolume
	colIssue
	colStart
	colEnd
	colNumber
	colTax
	colFactor
	colDistributor
	colFilename
)

type ledger struct {
	path  string
	sheet string
	log   *zap.Logger
}

// NewLedger creates an xlsx-backed Ledger at path. The whole workbook is read
// before every check and rewritten on every insert.
func NewLedger(path, sheet string, log *zap.Logger) port.Ledger {
	if sheet == "" {
		sheet = DefaultSheet
	}
	return &ledger{path: path, sheet: sheet, log: logger.OrNop(log)}
}

func (l *ledger) Load(ctx context.Context) ([]domain.InvoiceRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, rows, created, err := l.open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	if created {
		if err := l.save(f); err != nil {
			return nil, err
		}
		l.log.Info("ledger created", zap.String("path", l.path))
	}
	return l.parse(rows)
}

func (l *ledger) Contains(ctx context.Context, key domain.LedgerKey) (bool, error) {
	records, err := l.Load(ctx)
	if err != nil {
		return false, err
	}
	return containsKey(records, key), nil
}

func (l *ledger) Append(ctx context.Context, rec *domain.InvoiceRecord) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	f, rows, _, err := l.open()
	if err != nil {
		return false, err
	}
	defer func() { _ = f.Close() }()

	records, err := l.parse(rows)
	if err != nil {
		return false, err
	}
	if containsKey(records, rec.Key()) {
		return false, nil
	}

	cell, err := excelize.CoordinatesToCellName(1, len(rows)+1)
	if err != nil {
		return false, l.ioErr("write", err)
	}
	if err := f.SetSheetRow(l.sheet, cell, &[]interface{}{
		rec.TaxID,
		rec.TotalAmount.InexactFloat64(),
		rec.TotalVolume.InexactFloat64(),
		rec.IssueDate,
		rec.PeriodStart,
		rec.PeriodEnd,
		rec.InvoiceNumber,
		rec.TaxAmount.InexactFloat64(),
		rec.CorrectionFactor.InexactFloat64(),
		rec.Distributor,
		rec.SourceFilename,
	}); err != nil {
		return false, l.ioErr("write", err)
	}
	// The factor keeps its four decimal places in the stored value.
	factorCell, _ := excelize.CoordinatesToCellName(colFactor+1, len(rows)+1)
	if err := f.SetCellFloat(l.sheet, factorCell, rec.CorrectionFactor.InexactFloat64(), 4, 64); err != nil {
		return false, l.ioErr("write", err)
	}

	if err := l.save(f); err != nil {
		return false, err
	}
	return true, nil
}

// open returns the workbook and its rows. An absent file yields a new
// in-memory workbook holding only the header.
func (l *ledger) open() (*excelize.File, [][]string, bool, error) {
	if _, err := os.Stat(l.path); errors.Is(err, fs.ErrNotExist) {
		f := excelize.NewFile()
		if l.sheet != DefaultSheet {
			if err := f.SetSheetName(DefaultSheet, l.sheet); err != nil {
				_ = f.Close()
				return nil, nil, false, l.ioErr("create", err)
			}
		}
		if err := f.SetSheetRow(l.sheet, "A1", &Columns); err != nil {
			_ = f.Close()
			return nil, nil, false, l.ioErr("create", err)
		}
		return f, [][]string{Columns}, true, nil
	} else if err != nil {
		return nil, nil, false, l.ioErr("load", err)
	}

	f, err := excelize.OpenFile(l.path)
	if err != nil {
		return nil, nil, false, l.ioErr("load", err)
	}
	if idx, err := f.GetSheetIndex(l.sheet); err != nil || idx < 0 {
		_ = f.Close()
		return nil, nil, false, l.ioErr("load", fmt.Errorf("sheet %q not found", l.sheet))
	}
	rows, err := f.GetRows(l.sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		_ = f.Close()
		return nil, nil, false, l.ioErr("load", err)
	}
	if len(rows) == 0 {
		if err := f.SetSheetRow(l.sheet, "A1", &Columns); err != nil {
			_ = f.Close()
			return nil, nil, false, l.ioErr("load", err)
		}
		rows = [][]string{Columns}
	}
	return f, rows, false, nil
}

func (l *ledger) parse(rows [][]string) ([]domain.InvoiceRecord, error) {
	if err := checkHeader(rows[0]); err != nil {
		return nil, l.ioErr("load", err)
	}

	records := make([]domain.InvoiceRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		rowNum := i + 2
		total, err := decimal.NewFromString(strings.TrimSpace(cell(row, colTotal)))
		if err != nil {
			return nil, l.ioErr("load", fmt.Errorf("row %d: %s %q: %w", rowNum, Columns[colTotal], cell(row, colTotal), err))
		}
		records = append(records, domain.InvoiceRecord{
			TaxID:            cell(row, colTaxID),
			TotalAmount:      total,
			TotalVolume:      l.optionalDecimal(row, colVolume, rowNum),
			IssueDate:        cell(row, colIssue),
			PeriodStart:      cell(row, colStart),
			PeriodEnd:        cell(row, colEnd),
			InvoiceNumber:    cell(row, colNumber),
			TaxAmount:        l.optionalDecimal(row, colTax, rowNum),
			CorrectionFactor: l.optionalDecimal(row, colFactor, rowNum),
			Distributor:      cell(row, colDistributor),
			SourceFilename:   cell(row, colFilename),
		})
	}
	return records, nil
}

// optionalDecimal reads a non-key amount. Bad values only affect reporting,
// since rows are never rewritten from parsed data.
func (l *ledger) optionalDecimal(row []string, col, rowNum int) decimal.Decimal {
	raw := strings.TrimSpace(cell(row, col))
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		l.log.Warn("ledger cell is not a number",
			zap.Int("row", rowNum), zap.String("column", Columns[col]), zap.String("value", raw))
		return decimal.Zero
	}
	return d
}

// save writes the workbook beside the ledger and renames it into place, so a
// failed write leaves the previous file intact.
func (l *ledger) save(f *excelize.File) error {
	dir := filepath.Dir(l.path)
	tmp, err := os.CreateTemp(dir, ".ledger-*.xlsx")
	if err != nil {
		return l.ioErr("write", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := f.WriteTo(tmp); err != nil {
		_ = tmp.Close()
		cleanup()
		return l.ioErr("write", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return l.ioErr("write", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return l.ioErr("write", err)
	}
	if err := os.Rename(tmpName, l.path); err != nil {
		cleanup()
		return l.ioErr("write", err)
	}
	return nil
}

func (l *ledger) ioErr(op string, err error) error {
	return &domain.LedgerIOError{Path: l.path, Op: op, Err: err}
}

func checkHeader(header []string) error {
	for len(header) > 0 && strings.TrimSpace(header[len(header)-1]) == "" {
		header = header[:len(header)-1]
	}
	if len(header) != len(Columns) {
		return fmt.Errorf("%w: got %d columns, want %d", domain.ErrLedgerHeader, len(header), len(Columns))
	}
	for i, name := range Columns {
		if strings.TrimSpace(header[i]) != name {
			return fmt.Errorf("%w: column %d is %q, want %q", domain.ErrLedgerHeader, i+1, header[i], name)
		}
	}
	return nil
}

func containsKey(records []domain.InvoiceRecord, key domain.LedgerKey) bool {
	for i := range records {
		if records[i].Key().Matches(key) {
			return true
		}
	}
	return false
}

func cell(row []string, col int) string {
	if col < len(row) {
		return row[col]
	}
	return ""
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
