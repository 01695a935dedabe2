package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockDocumentArchiver is a mock implementation of port.DocumentArchiver.
type MockDocumentArchiver struct {
	mock.Mock
}

func (m *MockDocumentArchiver) Archive(ctx context.Context, path string) (string, error) {
	args := m.Called(ctx, path)
	return args.String(0), args.Error(1)
}
