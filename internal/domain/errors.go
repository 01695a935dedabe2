package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrNoText              = errors.New("document yielded no text")
	ErrNotFiscalDocument   = errors.New("xml is not an electronic fiscal document")
	ErrLedgerHeader        = errors.New("ledger header does not match expected columns")
	ErrArchiveUnavailable  = errors.New("archive location is not available")
)

// AcquisitionError reports a document that could not be opened or parsed.
type AcquisitionError struct {
	Path string
	Err  error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Path, e.Err)
}

func (e *AcquisitionError) Unwrap() error { return e.Err }

// NormalizationError reports a field whose raw value could not be coerced.
// The field is treated as absent afterwards.
type NormalizationError struct {
	Field Field
	Raw   string
	Err   error
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalizing %s %q: %v", e.Field, e.Raw, e.Err)
}

func (e *NormalizationError) Unwrap() error { return e.Err }

// CompletenessError lists required fields missing from a record, in ledger column order.
type CompletenessError struct {
	Missing []Field
}

func (e *CompletenessError) Error() string {
	names := make([]string, len(e.Missing))
	for i, f := range e.Missing {
		names[i] = string(f)
	}
	return "missing required fields: " + strings.Join(names, ", ")
}

// LedgerIOError reports a ledger that exists but cannot be read or written.
// It aborts the whole batch.
type LedgerIOError struct {
	Path string
	Op   string
	Err  error
}

func (e *LedgerIOError) Error() string {
	return fmt.Sprintf("ledger %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *LedgerIOError) Unwrap() error { return e.Err }

// IsLedgerIO reports whether err carries a LedgerIOError.
func IsLedgerIO(err error) bool {
	var lerr *LedgerIOError
	return errors.As(err, &lerr)
}
