package syncq

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/takei-shg/word-anki/internal/backend"
	"github.com/takei-shg/word-anki/internal/logger"
	"github.com/takei-shg/word-anki/internal/models"
	"github.com/takei-shg/word-anki/internal/repository"
)

var errUnknownKind = errors.New("unknown sync operation kind")

// Enqueuer is the write side of the queue. Every locally-originated mutation
// goes through it, online or not; enqueue never touches the network.
type Enqueuer interface {
	EnqueueProgressSync(ctx context.Context, record models.LearningRecord) error
	EnqueueSourceUpload(ctx context.Context, src models.TextSource) error
	EnqueueSourceDeletion(ctx context.Context, sourceID string) error
}

// DrainResult summarizes one drain pass.
type DrainResult struct {
	Attempted int  `json:"attempted"`
	Succeeded int  `json:"succeeded"`
	Failed    int  `json:"failed"`
	Skipped   bool `json:"skipped"`
}

// Queue is the durable sync queue: it appends pending operations while
// offline-tolerant behavior is desired and replays them against the backend
// with retry bookkeeping. Operations that hit the retry ceiling are excluded
// from drains but retained for inspection.
type Queue struct {
	ops        repository.SyncOperationRepository
	records    repository.LearningRecordRepository
	sources    repository.TextSourceRepository
	client     backend.Client
	maxRetries int
	log        *logger.Logger

	drainMu sync.Mutex // makes a concurrent Drain a no-op, never a double-process

	stateMu     sync.Mutex
	online      bool
	lastDrainAt *time.Time
}

// New creates a Queue. The process starts assuming connectivity; the UI feeds
// connectivity changes through SetOnline.
func New(ops repository.SyncOperationRepository, records repository.LearningRecordRepository, sources repository.TextSourceRepository, client backend.Client, maxRetries int) *Queue {
	if maxRetries <= 0 {
		maxRetries = models.DefaultMaxRetries
	}
	return &Queue{
		ops:        ops,
		records:    records,
		sources:    sources,
		client:     client,
		maxRetries: maxRetries,
		online:     true,
		log:        logger.Default().WithPrefix("syncq"),
	}
}

func (q *Queue) EnqueueProgressSync(ctx context.Context, record models.LearningRecord) error {
	return q.enqueue(ctx, models.OpProgressSync, record.WordID, record)
}

func (q *Queue) EnqueueSourceUpload(ctx context.Context, src models.TextSource) error {
	return q.enqueue(ctx, models.OpSourceUpload, src.ID, src)
}

func (q *Queue) EnqueueSourceDeletion(ctx context.Context, sourceID string) error {
	return q.enqueue(ctx, models.OpSourceDeletion, sourceID, struct {
		SourceID string `json:"sourceId"`
	}{SourceID: sourceID})
}

func (q *Queue) enqueue(ctx context.Context, kind, relatedID string, payload any) error {
	log := logger.FromContext(ctx).WithPrefix("syncq")

	// Snapshot the payload now: the referenced entity may change again before
	// this entry is drained.
	buf, err := json.Marshal(payload)
	if err != nil {
		log.Error("failed to snapshot %s payload: %v", kind, err)
		return err
	}

	op := models.SyncOperation{
		ID:        uuid.NewString(),
		Kind:      kind,
		Payload:   buf,
		RelatedID: relatedID,
		CreatedAt: time.Now().UTC(),
	}
	if err := q.ops.Insert(ctx, op); err != nil {
		return err
	}
	log.Debug("enqueued %s operation: id=%s, related_id=%s", kind, op.ID, relatedID)
	return nil
}

// Drain attempts every unprocessed operation below the retry ceiling, oldest
// first. A failure moves on to the next operation; partial progress is
// expected. A drain already in progress, or an offline queue, skips.
func (q *Queue) Drain(ctx context.Context) (DrainResult, error) {
	log := logger.FromContext(ctx).WithPrefix("syncq")

	if !q.Online() {
		log.Debug("drain skipped: offline")
		return DrainResult{Skipped: true}, nil
	}
	if !q.drainMu.TryLock() {
		log.Debug("drain skipped: already in progress")
		return DrainResult{Skipped: true}, nil
	}
	defer q.drainMu.Unlock()

	candidates, err := q.ops.DrainCandidates(ctx, q.maxRetries)
	if err != nil {
		return DrainResult{}, err
	}
	if len(candidates) == 0 {
		log.Debug("drain: nothing pending")
		q.recordDrain()
		return DrainResult{}, nil
	}

	log.Info("draining %d pending operations", len(candidates))
	var res DrainResult
	for _, op := range candidates {
		res.Attempted++
		if err := q.attempt(ctx, op); err != nil {
			// Failures are swallowed here and surfaced only in aggregate;
			// the user is never blocked by a sync failure.
			log.Warn("operation failed (retry %d/%d): id=%s, kind=%s: %v",
				op.RetryCount+1, q.maxRetries, op.ID, op.Kind, err)
			res.Failed++
			now := time.Now().UTC()
			if markErr := q.ops.MarkFailed(ctx, op.ID, now); markErr != nil {
				log.Error("failed to record retry for operation %s: %v", op.ID, markErr)
			}
			op.RetryCount++
			if op.Exhausted(q.maxRetries) {
				log.Warn("operation retired at retry ceiling: id=%s, kind=%s", op.ID, op.Kind)
			}
			continue
		}
		res.Succeeded++
		now := time.Now().UTC()
		if markErr := q.ops.MarkProcessed(ctx, op.ID, now); markErr != nil {
			log.Error("failed to mark operation processed: id=%s: %v", op.ID, markErr)
		}
	}

	q.recordDrain()
	log.Info("drain finished: attempted=%d, succeeded=%d, failed=%d", res.Attempted, res.Succeeded, res.Failed)
	return res, nil
}

func (q *Queue) attempt(ctx context.Context, op models.SyncOperation) error {
	switch op.Kind {
	case models.OpProgressSync:
		var rec models.LearningRecord
		if err := json.Unmarshal(op.Payload, &rec); err != nil {
			return err
		}
		if err := q.client.SyncProgress(ctx, []models.LearningRecord{rec}); err != nil {
			return err
		}
		// The store-level synced flag is the source of truth for "is this
		// word's current state on the server."
		return q.records.MarkSynced(ctx, []string{rec.WordID})

	case models.OpSourceUpload:
		var src models.TextSource
		if err := json.Unmarshal(op.Payload, &src); err != nil {
			return err
		}
		if _, err := q.client.UploadTextSource(ctx, src); err != nil {
			return err
		}
		return q.sources.MarkUploaded(ctx, src.ID)

	case models.OpSourceDeletion:
		return q.client.DeleteTextSource(ctx, op.RelatedID)

	default:
		q.log.Error("unknown operation kind %q: id=%s", op.Kind, op.ID)
		// Unknown kinds count as failures so they age out at the retry
		// ceiling instead of blocking the queue forever.
		return errUnknownKind
	}
}

func (q *Queue) recordDrain() {
	now := time.Now().UTC()
	q.stateMu.Lock()
	q.lastDrainAt = &now
	q.stateMu.Unlock()
}

// SetOnline records connectivity as reported by the caller. A transition from
// offline to online drains immediately.
func (q *Queue) SetOnline(ctx context.Context, online bool) {
	q.stateMu.Lock()
	was := q.online
	q.online = online
	q.stateMu.Unlock()

	q.log.Info("connectivity changed: online=%v", online)
	if online && !was {
		if _, err := q.Drain(ctx); err != nil {
			q.log.Error("drain after reconnect failed: %v", err)
		}
	}
}

// Online reports the last connectivity state fed through SetOnline.
func (q *Queue) Online() bool {
	q.stateMu.Lock()
	defer q.stateMu.Unlock()
	return q.online
}

// PendingCount returns the number of operations still awaiting delivery.
func (q *Queue) PendingCount(ctx context.Context) (int, error) {
	return q.ops.CountPending(ctx, q.maxRetries)
}

// ListAll returns every queue entry, processed and exhausted included.
func (q *Queue) ListAll(ctx context.Context) ([]models.SyncOperation, error) {
	return q.ops.List(ctx)
}

// ListExhausted returns operations that hit the retry ceiling, for manual
// intervention.
func (q *Queue) ListExhausted(ctx context.Context) ([]models.SyncOperation, error) {
	return q.ops.ListExhausted(ctx, q.maxRetries)
}

// Status returns the queue's observable state.
func (q *Queue) Status(ctx context.Context) (*models.SyncStatus, error) {
	pending, err := q.ops.CountPending(ctx, q.maxRetries)
	if err != nil {
		return nil, err
	}
	exhausted, err := q.ops.CountExhausted(ctx, q.maxRetries)
	if err != nil {
		return nil, err
	}

	draining := !q.drainMu.TryLock()
	if !draining {
		q.drainMu.Unlock()
	}

	q.stateMu.Lock()
	defer q.stateMu.Unlock()
	return &models.SyncStatus{
		Online:         q.online,
		PendingCount:   pending,
		ExhaustedCount: exhausted,
		Draining:       draining,
		LastDrainAt:    q.lastDrainAt,
	}, nil
}

// Cleanup permanently deletes processed operations older than the retention
// window.
func (q *Queue) Cleanup(ctx context.Context, olderThanDays int) (int64, error) {
	if olderThanDays <= 0 {
		olderThanDays = 7
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -olderThanDays)
	return q.ops.DeleteProcessedBefore(ctx, cutoff)
}

// Clear permanently deletes every operation. Hard resets and tests only.
func (q *Queue) Clear(ctx context.Context) error {
	return q.ops.DeleteAll(ctx)
}
