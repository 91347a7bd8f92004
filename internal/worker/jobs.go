package worker

import (
	"context"

	"github.com/takei-shg/word-anki/internal/logger"
	"github.com/takei-shg/word-anki/internal/syncq"
)

// DrainJob replays the pending sync queue against the backend.
type DrainJob struct {
	Queue *syncq.Queue
}

func (j *DrainJob) Name() string { return "sync-drain" }

func (j *DrainJob) Run(ctx context.Context) error {
	res, err := j.Queue.Drain(ctx)
	if err != nil {
		return err
	}
	if res.Skipped {
		logger.FromContext(ctx).Debug("drain skipped")
	}
	return nil
}

// CleanupJob deletes processed sync operations past the retention window.
type CleanupJob struct {
	Queue         *syncq.Queue
	RetentionDays int
}

func (j *CleanupJob) Name() string { return "sync-cleanup" }

func (j *CleanupJob) Run(ctx context.Context) error {
	n, err := j.Queue.Cleanup(ctx, j.RetentionDays)
	if err != nil {
		return err
	}
	if n > 0 {
		logger.FromContext(ctx).Info("cleanup removed %d processed operations", n)
	}
	return nil
}
