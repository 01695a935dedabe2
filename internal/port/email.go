package port

import (
	"context"

	"faturas/internal/domain"
)

// ReportSender delivers the summary of a finished batch.
type ReportSender interface {
	SendBatchReport(ctx context.Context, summary *domain.BatchSummary) error
}
