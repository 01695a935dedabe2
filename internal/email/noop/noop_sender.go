package noop

import (
	"context"

	"go.uber.org/zap"

	"faturas/internal/domain"
	"faturas/internal/email"
	"faturas/internal/logger"
	"faturas/internal/port"
)

type noopSender struct {
	log *zap.Logger
}

// NewNoopSender creates a ReportSender that only logs the report subject.
func NewNoopSender(log *zap.Logger) port.ReportSender {
	return &noopSender{log: logger.OrNop(log)}
}

func (s *noopSender) SendBatchReport(_ context.Context, summary *domain.BatchSummary) error {
	report := email.RenderReport(summary)
	s.log.Info("batch report not sent (noop provider)",
		zap.String("run_id", summary.RunID.String()),
		zap.String("subject", report.Subject))
	return nil
}
