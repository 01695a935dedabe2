package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"faturas/internal/domain"
)

// MockIngestService is a mock implementation of service.IngestService.
type MockIngestService struct {
	mock.Mock
}

func (m *MockIngestService) ProcessDocument(ctx context.Context, path string) (domain.DocumentResult, error) {
	args := m.Called(ctx, path)
	return args.Get(0).(domain.DocumentResult), args.Error(1)
}

func (m *MockIngestService) RunBatch(ctx context.Context, dir string) (*domain.BatchSummary, error) {
	args := m.Called(ctx, dir)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BatchSummary), args.Error(1)
}
