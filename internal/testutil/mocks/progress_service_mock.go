package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/takei-shg/word-anki/internal/models"
)

// MockProgressService is a mock implementation of services.ProgressService
type MockProgressService struct {
	mock.Mock
}

func (m *MockProgressService) RecordResponse(ctx context.Context, wordID string, memorized bool) (*models.LearningRecord, error) {
	args := m.Called(ctx, wordID, memorized)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LearningRecord), args.Error(1)
}

func (m *MockProgressService) GetByWord(ctx context.Context, wordID string) (*models.LearningRecord, error) {
	args := m.Called(ctx, wordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LearningRecord), args.Error(1)
}

func (m *MockProgressService) GetAll(ctx context.Context) ([]models.LearningRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LearningRecord), args.Error(1)
}

func (m *MockProgressService) GetUnsynced(ctx context.Context) ([]models.LearningRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LearningRecord), args.Error(1)
}

func (m *MockProgressService) MarkSynced(ctx context.Context, wordIDs []string) error {
	args := m.Called(ctx, wordIDs)
	return args.Error(0)
}

func (m *MockProgressService) GetStatistics(ctx context.Context) (*models.ProgressStatistics, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProgressStatistics), args.Error(1)
}

func (m *MockProgressService) DeleteByWords(ctx context.Context, wordIDs []string) error {
	args := m.Called(ctx, wordIDs)
	return args.Error(0)
}
