package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/takei-shg/word-anki/internal/models"
)

// MockEnqueuer is a mock implementation of syncq.Enqueuer
type MockEnqueuer struct {
	mock.Mock
}

func (m *MockEnqueuer) EnqueueProgressSync(ctx context.Context, record models.LearningRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockEnqueuer) EnqueueSourceUpload(ctx context.Context, src models.TextSource) error {
	args := m.Called(ctx, src)
	return args.Error(0)
}

func (m *MockEnqueuer) EnqueueSourceDeletion(ctx context.Context, sourceID string) error {
	args := m.Called(ctx, sourceID)
	return args.Error(0)
}
