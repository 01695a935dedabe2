package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"faturas/internal/domain"
)

// MockLedger is a mock implementation of port.Ledger.
type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) Load(ctx context.Context) ([]domain.InvoiceRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.InvoiceRecord), args.Error(1)
}

func (m *MockLedger) Contains(ctx context.Context, key domain.LedgerKey) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedger) Append(ctx context.Context, rec *domain.InvoiceRecord) (bool, error) {
	args := m.Called(ctx, rec)
	return args.Bool(0), args.Error(1)
}
