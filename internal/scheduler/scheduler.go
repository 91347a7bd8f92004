package scheduler

import (
	"time"

	"github.com/go-co-op/gocron"
	"github.com/takei-shg/word-anki/internal/jobs"
	"github.com/takei-shg/word-anki/internal/logger"
)

// Scheduler runs periodic background maintenance: automatic queue drains while
// the app is open, and a daily sweep of processed sync operations.
type Scheduler struct {
	scheduler *gocron.Scheduler
	jobs      jobs.JobQueue
	log       *logger.Logger

	drainInterval time.Duration
}

// New creates a scheduler around the job queue.
func New(jobQueue jobs.JobQueue, drainInterval time.Duration) *Scheduler {
	if drainInterval <= 0 {
		drainInterval = 15 * time.Minute
	}
	return &Scheduler{
		scheduler:     gocron.NewScheduler(time.UTC),
		jobs:          jobQueue,
		drainInterval: drainInterval,
		log:           logger.Default().WithPrefix("scheduler"),
	}
}

// Start registers the periodic tasks and runs them asynchronously.
func (s *Scheduler) Start() {
	if _, err := s.scheduler.Every(s.drainInterval).Do(s.enqueueDrain); err != nil {
		s.log.Error("failed to schedule drain task: %v", err)
	}
	if _, err := s.scheduler.Every(1).Day().At("03:00").Do(s.enqueueCleanup); err != nil {
		s.log.Error("failed to schedule cleanup task: %v", err)
	}

	s.scheduler.StartAsync()
	s.log.Info("scheduler started: drain every %v, cleanup daily", s.drainInterval)
}

// Stop terminates all scheduled tasks.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) enqueueDrain() {
	if err := s.jobs.EnqueueDrain(); err != nil {
		s.log.Warn("failed to enqueue drain: %v", err)
	}
}

func (s *Scheduler) enqueueCleanup() {
	if err := s.jobs.EnqueueCleanup(); err != nil {
		s.log.Warn("failed to enqueue cleanup: %v", err)
	}
}
