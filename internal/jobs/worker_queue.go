package jobs

import (
	"github.com/takei-shg/word-anki/internal/syncq"
	"github.com/takei-shg/word-anki/internal/worker"
)

// WorkerQueue implements JobQueue using the worker pool
type WorkerQueue struct {
	pool          *worker.Pool
	queue         *syncq.Queue
	retentionDays int
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(pool *worker.Pool, queue *syncq.Queue, retentionDays int) JobQueue {
	return &WorkerQueue{
		pool:          pool,
		queue:         queue,
		retentionDays: retentionDays,
	}
}

func (q *WorkerQueue) EnqueueDrain() error {
	return q.pool.Submit(&worker.DrainJob{Queue: q.queue})
}

func (q *WorkerQueue) EnqueueCleanup() error {
	return q.pool.Submit(&worker.CleanupJob{Queue: q.queue, RetentionDays: q.retentionDays})
}
