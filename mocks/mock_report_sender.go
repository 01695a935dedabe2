package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"faturas/internal/domain"
)

// MockReportSender is a mock implementation of port.ReportSender.
type MockReportSender struct {
	mock.Mock
}

func (m *MockReportSender) SendBatchReport(ctx context.Context, summary *domain.BatchSummary) error {
	args := m.Called(ctx, summary)
	return args.Error(0)
}
