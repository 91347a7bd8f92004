package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/takei-shg/word-anki/internal/backend"
	"github.com/takei-shg/word-anki/internal/errors"
	"github.com/takei-shg/word-anki/internal/logger"
	"github.com/takei-shg/word-anki/internal/models"
	"github.com/takei-shg/word-anki/internal/repository"
	"github.com/takei-shg/word-anki/internal/syncq"
)

// SourceService manages text sources: local persistence first, backend
// delivery through the sync queue.
type SourceService interface {
	UploadSource(ctx context.Context, title, content string) (*models.TextSource, error)
	GetSource(ctx context.Context, id string) (*models.TextSource, error)
	ListSources(ctx context.Context) ([]models.TextSource, error)
	DeleteSource(ctx context.Context, id string) error
	FetchWords(ctx context.Context, sourceID, difficulty string) ([]models.WordTest, error)
}

type sourceService struct {
	sources repository.TextSourceRepository
	words   repository.WordTestRepository
	records repository.LearningRecordRepository
	queue   syncq.Enqueuer
	client  backend.Client
}

// NewSourceService creates a new SourceService
func NewSourceService(
	sources repository.TextSourceRepository,
	words repository.WordTestRepository,
	records repository.LearningRecordRepository,
	queue syncq.Enqueuer,
	client backend.Client,
) SourceService {
	return &sourceService{
		sources: sources,
		words:   words,
		records: records,
		queue:   queue,
		client:  client,
	}
}

func (s *sourceService) UploadSource(ctx context.Context, title, content string) (*models.TextSource, error) {
	log := logger.FromContext(ctx)

	if strings.TrimSpace(title) == "" {
		return nil, errors.NewValidationError("title", "must not be empty")
	}
	if strings.TrimSpace(content) == "" {
		return nil, errors.NewValidationError("content", "must not be empty")
	}

	src := models.TextSource{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}

	// Persist locally first, then let the queue carry the upload; the caller
	// returns immediately regardless of connectivity.
	if err := s.sources.Insert(ctx, src); err != nil {
		log.Error("failed to store text source: %v", err)
		return nil, errors.NewStorageFailure("insert source", err)
	}
	if err := s.queue.EnqueueSourceUpload(ctx, src); err != nil {
		log.Warn("failed to enqueue source upload for %s: %v", src.ID, err)
	}

	log.Info("text source stored: id=%s, title=%s", src.ID, src.Title)
	return &src, nil
}

func (s *sourceService) GetSource(ctx context.Context, id string) (*models.TextSource, error) {
	src, err := s.sources.Get(ctx, id)
	if err != nil {
		return nil, errors.NewStorageFailure("get source", err)
	}
	if src == nil {
		return nil, errors.NewNotFoundError("text source", id)
	}
	return src, nil
}

func (s *sourceService) ListSources(ctx context.Context) ([]models.TextSource, error) {
	sources, err := s.sources.List(ctx)
	if err != nil {
		return nil, errors.NewStorageFailure("list sources", err)
	}
	return sources, nil
}

// DeleteSource removes a source, its cached word tests, and their learning
// records, then queues the deletion for the backend.
func (s *sourceService) DeleteSource(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)

	src, err := s.sources.Get(ctx, id)
	if err != nil {
		return errors.NewStorageFailure("get source", err)
	}
	if src == nil {
		return errors.NewNotFoundError("text source", id)
	}

	wordIDs, err := s.words.IDsBySource(ctx, id)
	if err != nil {
		return errors.NewStorageFailure("list word ids", err)
	}
	if err := s.records.DeleteByWords(ctx, wordIDs); err != nil {
		return errors.NewStorageFailure("delete records", err)
	}
	if err := s.words.DeleteBySource(ctx, id); err != nil {
		return errors.NewStorageFailure("delete word tests", err)
	}
	if err := s.sources.Delete(ctx, id); err != nil {
		return errors.NewStorageFailure("delete source", err)
	}

	if err := s.queue.EnqueueSourceDeletion(ctx, id); err != nil {
		log.Warn("failed to enqueue source deletion for %s: %v", id, err)
	}

	log.Info("text source deleted: id=%s, cascaded %d words", id, len(wordIDs))
	return nil
}

// FetchWords returns word tests for a source, refreshing the local cache from
// the backend when reachable and serving the cache when not.
func (s *sourceService) FetchWords(ctx context.Context, sourceID, difficulty string) ([]models.WordTest, error) {
	log := logger.FromContext(ctx)

	fetched, err := s.client.FetchWordTests(ctx, sourceID, difficulty)
	if err != nil {
		log.Warn("backend unreachable, serving cached word tests for source %s: %v", sourceID, err)
		cached, cacheErr := s.words.List(ctx, models.WordTestFilter{SourceID: sourceID, Difficulty: difficulty})
		if cacheErr != nil {
			return nil, errors.NewStorageFailure("list cached word tests", cacheErr)
		}
		return cached, nil
	}

	if err := s.words.UpsertBatch(ctx, fetched); err != nil {
		log.Warn("failed to cache %d word tests: %v", len(fetched), err)
	}
	return fetched, nil
}
