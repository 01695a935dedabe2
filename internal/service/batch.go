package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"faturas/internal/acquire"
	"faturas/internal/domain"
)

func (s *ingestService) RunBatch(ctx context.Context, dir string) (*domain.BatchSummary, error) {
	summary := domain.NewBatchSummary(dir)
	log := s.log.With(zap.String("run_id", summary.RunID.String()))

	entries, err := os.ReadDir(dir)
	if err != nil {
		return summary, fmt.Errorf("listing %s: %w", dir, err)
	}

	// The ledger is read up front so a corrupt one stops the run before any
	// document is touched.
	if _, err := s.ledger.Load(ctx); err != nil {
		return summary, err
	}

	log.Info("batch started", zap.String("dir", dir), zap.Int("entries", len(entries)))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if _, err := acquire.FormatOf(path); err != nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			summary.FinishedAt = time.Now().UTC()
			return summary, err
		}

		res, err := s.ProcessDocument(ctx, path)
		if err != nil {
			summary.FinishedAt = time.Now().UTC()
			log.Error("batch aborted", zap.Error(err))
			return summary, err
		}
		summary.Add(res)
	}
	summary.FinishedAt = time.Now().UTC()

	counts := summary.Counts()
	log.Info("batch finished",
		zap.Int(string(domain.OutcomeInserted), counts[domain.OutcomeInserted]),
		zap.Int(string(domain.OutcomeDuplicate), counts[domain.OutcomeDuplicate]),
		zap.Int(string(domain.OutcomeMissingFields), counts[domain.OutcomeMissingFields]),
		zap.Int(string(domain.OutcomeReadError), counts[domain.OutcomeReadError]),
		zap.Duration("duration", summary.Duration()))
	return summary, nil
}
