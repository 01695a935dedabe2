package service

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"faturas/internal/acquire"
	"faturas/internal/domain"
	"faturas/internal/extract"
	"faturas/internal/logger"
	"faturas/internal/normalize"
	"faturas/internal/port"
	"faturas/internal/validator"
)

// IngestConfig holds the labels stamped on inserted records.
type IngestConfig struct {
	Distributor             string
	DistributorFromFilename bool
}

// IngestService runs inbound documents through the pipeline and records
// the terminal status of each.
type IngestService interface {
	// ProcessDocument handles one file. The returned error is non-nil only
	// when the ledger failed, which must abort the batch.
	ProcessDocument(ctx context.Context, path string) (domain.DocumentResult, error)
	// RunBatch processes every supported file directly inside dir.
	RunBatch(ctx context.Context, dir string) (*domain.BatchSummary, error)
}

type ingestService struct {
	rules      map[domain.SourceFormat]*extract.RuleSet
	normalizer *normalize.Normalizer
	engine     *validator.Engine
	ledger     port.Ledger
	archiver   port.DocumentArchiver
	cfg        IngestConfig
	log        *zap.Logger
}

// NewIngestService creates an IngestService. Each rule set serves the
// source format it declares; a later rule set for the same format wins.
func NewIngestService(
	rules []*extract.RuleSet,
	normalizer *normalize.Normalizer,
	engine *validator.Engine,
	ledger port.Ledger,
	archiver port.DocumentArchiver,
	cfg IngestConfig,
	log *zap.Logger,
) IngestService {
	byFormat := make(map[domain.SourceFormat]*extract.RuleSet, len(rules))
	for _, rs := range rules {
		byFormat[rs.Format] = rs
	}
	return &ingestService{
		rules:      byFormat,
		normalizer: normalizer,
		engine:     engine,
		ledger:     ledger,
		archiver:   archiver,
		cfg:        cfg,
		log:        logger.OrNop(log),
	}
}

func (s *ingestService) ProcessDocument(ctx context.Context, path string) (domain.DocumentResult, error) {
	res := domain.DocumentResult{Path: path}
	log := s.log.With(zap.String("file", filepath.Base(path)))

	format, err := acquire.FormatOf(path)
	if err != nil {
		return s.readError(log, res, &domain.AcquisitionError{Path: path, Err: err}), nil
	}
	res.Format = format

	rs, ok := s.rules[format]
	if !ok {
		return s.readError(log, res, fmt.Errorf("no rule set for %s documents", format)), nil
	}

	src, err := acquire.Read(path)
	if err != nil {
		return s.readError(log, res, err), nil
	}
	if err := rs.Check(src); err != nil {
		return s.readError(log, res, &domain.AcquisitionError{Path: path, Err: err}), nil
	}

	fields := rs.Extract(src)
	if ce := log.Check(zap.DebugLevel, "fields extracted"); ce != nil {
		ce.Write(zap.String("rule_set", rs.Name), zap.Any("matched", rs.Trace(src)))
	}

	norm := s.normalizer.Normalize(fields, rs.NumberFormat)
	for _, nerr := range norm.Errors {
		log.Warn("field dropped", zap.String("field", string(nerr.Field)), zap.Error(nerr))
	}

	report := s.engine.Validate(ctx, norm.Values)
	for _, f := range report.Warnings() {
		log.Warn("suspicious field value",
			zap.String("rule", f.RuleKey), zap.String("message", f.Result.Message))
	}
	if err := report.Err(); err != nil {
		res.Outcome = domain.OutcomeMissingFields
		res.Missing = report.Missing
		res.Err = err.Error()
		log.Info("document rejected", zap.Error(err))
		return res, nil
	}

	rec := norm.Record(s.distributorFor(path), filepath.Base(path))
	res.Record = rec

	inserted, err := s.ledger.Append(ctx, rec)
	if err != nil {
		res.Err = err.Error()
		return res, fmt.Errorf("appending %s: %w", filepath.Base(path), err)
	}
	if !inserted {
		res.Outcome = domain.OutcomeDuplicate
		log.Info("duplicate invoice left in place",
			zap.String("tax_id", rec.TaxID),
			zap.String("period_start", rec.PeriodStart),
			zap.String("period_end", rec.PeriodEnd),
			zap.String("total_amount", rec.TotalAmount.String()))
		return res, nil
	}

	res.Outcome = domain.OutcomeInserted
	dest, err := s.archiver.Archive(ctx, path)
	if err != nil {
		// The record stays in the ledger; the document stays inbound.
		res.RelocateErr = err.Error()
		log.Error("invoice recorded but not archived", zap.Error(err))
		return res, nil
	}
	res.ArchivedTo = dest
	log.Info("invoice recorded",
		zap.String("invoice_number", rec.InvoiceNumber),
		zap.String("archived_to", dest))
	return res, nil
}

func (s *ingestService) readError(log *zap.Logger, res domain.DocumentResult, err error) domain.DocumentResult {
	res.Outcome = domain.OutcomeReadError
	res.Err = err.Error()
	log.Warn("document unreadable", zap.Error(err))
	return res
}

func (s *ingestService) distributorFor(path string) string {
	if s.cfg.DistributorFromFilename {
		if tag, ok := extract.DistributorTag(filepath.Base(path)); ok {
			return tag
		}
	}
	return s.cfg.Distributor
}
