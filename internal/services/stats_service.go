package services

import (
	"context"

	"github.com/takei-shg/word-anki/internal/errors"
	"github.com/takei-shg/word-anki/internal/logger"
	"github.com/takei-shg/word-anki/internal/models"
	"github.com/takei-shg/word-anki/internal/repository"
)

// StatsService derives progress statistics by joining cached word metadata
// against learning records. Read-only; it never touches the sync queue.
type StatsService interface {
	SourceProgress(ctx context.Context, sourceID string) (*models.GroupProgress, error)
	DifficultyProgress(ctx context.Context, difficulty string) (*models.GroupProgress, error)
	OverallProgress(ctx context.Context) (*models.OverallProgress, error)
}

type statsService struct {
	words   repository.WordTestRepository
	records repository.LearningRecordRepository
}

// NewStatsService creates a new StatsService
func NewStatsService(words repository.WordTestRepository, records repository.LearningRecordRepository) StatsService {
	return &statsService{words: words, records: records}
}

func (s *statsService) SourceProgress(ctx context.Context, sourceID string) (*models.GroupProgress, error) {
	return s.groupProgress(ctx, models.WordTestFilter{SourceID: sourceID})
}

func (s *statsService) DifficultyProgress(ctx context.Context, difficulty string) (*models.GroupProgress, error) {
	return s.groupProgress(ctx, models.WordTestFilter{Difficulty: difficulty})
}

func (s *statsService) groupProgress(ctx context.Context, filter models.WordTestFilter) (*models.GroupProgress, error) {
	log := logger.FromContext(ctx)

	words, err := s.words.List(ctx, filter)
	if err != nil {
		return nil, errors.NewStorageFailure("list word tests", err)
	}

	progress := &models.GroupProgress{TotalWords: len(words)}
	for _, w := range words {
		rec, err := s.records.Get(ctx, w.ID)
		if err != nil {
			return nil, errors.NewStorageFailure("get record", err)
		}
		if rec == nil {
			// Only words with an existing record count as studied.
			continue
		}
		progress.StudiedWords++
		progress.TotalReviews += rec.ReviewCount
		if rec.IsMemorized {
			progress.MemorizedWords++
		} else {
			progress.NotMemorizedWords++
		}
	}

	progress.CompletionRate = rate(progress.StudiedWords, progress.TotalWords)
	progress.MemorizationRate = rate(progress.MemorizedWords, progress.StudiedWords)

	log.Debug("group progress: total=%d, studied=%d, memorized=%d",
		progress.TotalWords, progress.StudiedWords, progress.MemorizedWords)
	return progress, nil
}

func (s *statsService) OverallProgress(ctx context.Context) (*models.OverallProgress, error) {
	stats, err := s.records.Statistics(ctx)
	if err != nil {
		return nil, errors.NewStorageFailure("statistics", err)
	}
	sources, err := s.words.CountDistinctSources(ctx)
	if err != nil {
		return nil, errors.NewStorageFailure("count sources", err)
	}

	return &models.OverallProgress{
		TotalWordsStudied:   stats.TotalWords,
		TotalWordsMemorized: stats.MemorizedWords,
		TotalSources:        sources,
		MemorizationRate:    rate(stats.MemorizedWords, stats.TotalWords),
	}, nil
}

// rate guards all derived percentages against a zero denominator.
func rate(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
