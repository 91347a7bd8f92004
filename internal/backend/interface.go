package backend

import (
	"context"

	"github.com/takei-shg/word-anki/internal/models"
)

// Client is the remote word-test backend. The sync queue only distinguishes
// "succeeded" from "failed"; timeout and transport policy live here.
type Client interface {
	UploadTextSource(ctx context.Context, src models.TextSource) (*models.TextSource, error)
	FetchWordTests(ctx context.Context, sourceID, difficulty string) ([]models.WordTest, error)
	SyncProgress(ctx context.Context, records []models.LearningRecord) error
	DeleteTextSource(ctx context.Context, sourceID string) error
}
