package services

import (
	"context"
	"sync"
	"time"

	"github.com/takei-shg/word-anki/internal/errors"
	"github.com/takei-shg/word-anki/internal/logger"
	"github.com/takei-shg/word-anki/internal/models"
	"github.com/takei-shg/word-anki/internal/repository"
	"github.com/takei-shg/word-anki/internal/syncq"
)

// ProgressService is the durable home for per-word learning state. Recording a
// response is the single write path: it persists the record and appends a
// progress-sync operation to the queue in one call, whether online or not.
type ProgressService interface {
	RecordResponse(ctx context.Context, wordID string, memorized bool) (*models.LearningRecord, error)
	GetByWord(ctx context.Context, wordID string) (*models.LearningRecord, error)
	GetAll(ctx context.Context) ([]models.LearningRecord, error)
	GetUnsynced(ctx context.Context) ([]models.LearningRecord, error)
	MarkSynced(ctx context.Context, wordIDs []string) error
	GetStatistics(ctx context.Context) (*models.ProgressStatistics, error)
	DeleteByWords(ctx context.Context, wordIDs []string) error
}

type progressService struct {
	records repository.LearningRecordRepository
	queue   syncq.Enqueuer

	// Serializes RecordResponse so concurrent responses for the same word
	// (rapid double-tap, queue retry racing a session) cannot lose a
	// review_count increment.
	mu sync.Mutex
}

// NewProgressService creates a new ProgressService
func NewProgressService(records repository.LearningRecordRepository, queue syncq.Enqueuer) ProgressService {
	return &progressService{records: records, queue: queue}
}

func (s *progressService) RecordResponse(ctx context.Context, wordID string, memorized bool) (*models.LearningRecord, error) {
	log := logger.FromContext(ctx)

	if wordID == "" {
		return nil, errors.NewValidationError("wordId", "must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	log.Debug("recording response: word_id=%s, memorized=%v", wordID, memorized)
	rec, err := s.records.Upsert(ctx, wordID, memorized, time.Now().UTC())
	if err != nil {
		log.Error("failed to record response: %v", err)
		return nil, errors.NewStorageFailure("record response", err)
	}

	if err := s.queue.EnqueueProgressSync(ctx, *rec); err != nil {
		// The record is already durable; a failed enqueue loses only this
		// delivery attempt, and the unsynced flag still covers the word.
		log.Warn("failed to enqueue progress sync for word %s: %v", wordID, err)
	}

	log.Debug("response recorded: word_id=%s, review_count=%d", rec.WordID, rec.ReviewCount)
	return rec, nil
}

func (s *progressService) GetByWord(ctx context.Context, wordID string) (*models.LearningRecord, error) {
	rec, err := s.records.Get(ctx, wordID)
	if err != nil {
		return nil, errors.NewStorageFailure("get record", err)
	}
	return rec, nil
}

func (s *progressService) GetAll(ctx context.Context) ([]models.LearningRecord, error) {
	records, err := s.records.List(ctx)
	if err != nil {
		return nil, errors.NewStorageFailure("list records", err)
	}
	return records, nil
}

func (s *progressService) GetUnsynced(ctx context.Context) ([]models.LearningRecord, error) {
	records, err := s.records.ListUnsynced(ctx)
	if err != nil {
		return nil, errors.NewStorageFailure("list unsynced records", err)
	}
	return records, nil
}

func (s *progressService) MarkSynced(ctx context.Context, wordIDs []string) error {
	if err := s.records.MarkSynced(ctx, wordIDs); err != nil {
		return errors.NewStorageFailure("mark synced", err)
	}
	return nil
}

func (s *progressService) GetStatistics(ctx context.Context) (*models.ProgressStatistics, error) {
	stats, err := s.records.Statistics(ctx)
	if err != nil {
		return nil, errors.NewStorageFailure("statistics", err)
	}
	return stats, nil
}

func (s *progressService) DeleteByWords(ctx context.Context, wordIDs []string) error {
	if err := s.records.DeleteByWords(ctx, wordIDs); err != nil {
		return errors.NewStorageFailure("delete records", err)
	}
	return nil
}
