package repository

import (
	"context"
	"time"

	"github.com/takei-shg/word-anki/internal/models"
)

// LearningRecordRepository handles per-word learning state access
type LearningRecordRepository interface {
	Get(ctx context.Context, wordID string) (*models.LearningRecord, error)
	Upsert(ctx context.Context, wordID string, isMemorized bool, reviewedAt time.Time) (*models.LearningRecord, error)
	List(ctx context.Context) ([]models.LearningRecord, error)
	ListUnsynced(ctx context.Context) ([]models.LearningRecord, error)
	MarkSynced(ctx context.Context, wordIDs []string) error
	Statistics(ctx context.Context) (*models.ProgressStatistics, error)
	DeleteByWords(ctx context.Context, wordIDs []string) error
}

// SyncOperationRepository handles the durable queue of pending remote mutations
type SyncOperationRepository interface {
	Insert(ctx context.Context, op models.SyncOperation) error
	Get(ctx context.Context, id string) (*models.SyncOperation, error)
	List(ctx context.Context) ([]models.SyncOperation, error)
	DrainCandidates(ctx context.Context, maxRetries int) ([]models.SyncOperation, error)
	ListExhausted(ctx context.Context, maxRetries int) ([]models.SyncOperation, error)
	MarkProcessed(ctx context.Context, id string, at time.Time) error
	MarkFailed(ctx context.Context, id string, at time.Time) error
	CountPending(ctx context.Context, maxRetries int) (int, error)
	CountExhausted(ctx context.Context, maxRetries int) (int, error)
	DeleteProcessedBefore(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteAll(ctx context.Context) error
}

// WordTestRepository handles the local cache of backend word metadata
type WordTestRepository interface {
	Get(ctx context.Context, id string) (*models.WordTest, error)
	UpsertBatch(ctx context.Context, tests []models.WordTest) error
	List(ctx context.Context, filter models.WordTestFilter) ([]models.WordTest, error)
	IDsBySource(ctx context.Context, sourceID string) ([]string, error)
	CountDistinctSources(ctx context.Context) (int, error)
	DeleteBySource(ctx context.Context, sourceID string) error
}

// TextSourceRepository handles locally stored text sources
type TextSourceRepository interface {
	Insert(ctx context.Context, src models.TextSource) error
	Get(ctx context.Context, id string) (*models.TextSource, error)
	List(ctx context.Context) ([]models.TextSource, error)
	MarkUploaded(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}
