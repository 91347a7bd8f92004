package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/takei-shg/word-anki/internal/models"
)

// MockBackendClient is a mock implementation of backend.Client
type MockBackendClient struct {
	mock.Mock
}

func (m *MockBackendClient) UploadTextSource(ctx context.Context, src models.TextSource) (*models.TextSource, error) {
	args := m.Called(ctx, src)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TextSource), args.Error(1)
}

func (m *MockBackendClient) FetchWordTests(ctx context.Context, sourceID, difficulty string) ([]models.WordTest, error) {
	args := m.Called(ctx, sourceID, difficulty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.WordTest), args.Error(1)
}

func (m *MockBackendClient) SyncProgress(ctx context.Context, records []models.LearningRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

func (m *MockBackendClient) DeleteTextSource(ctx context.Context, sourceID string) error {
	args := m.Called(ctx, sourceID)
	return args.Error(0)
}
