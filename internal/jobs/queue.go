package jobs

// JobQueue provides an abstraction for enqueueing background work
type JobQueue interface {
	EnqueueDrain() error
	EnqueueCleanup() error
}
