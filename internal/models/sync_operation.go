package models

import (
	"encoding/json"
	"time"
)

// Operation kinds replayed against the backend.
const (
	OpProgressSync   = "progress_sync"
	OpSourceUpload   = "source_upload"
	OpSourceDeletion = "source_deletion"
)

// DefaultMaxRetries is the retry ceiling after which an operation is excluded
// from drains but retained for inspection.
const DefaultMaxRetries = 3

// SyncOperation is one durable queue entry representing a pending remote
// mutation. Payload is a snapshot taken at enqueue time, not a live reference:
// the underlying record may change again before the queue drains, and each
// enqueue is a distinct historical fact.
type SyncOperation struct {
	ID          string          `json:"id"`
	Kind        string          `json:"kind"`
	Payload     json.RawMessage `json:"payload"`
	RelatedID   string          `json:"relatedId"`
	CreatedAt   time.Time       `json:"createdAt"`
	RetryCount  int             `json:"retryCount"`
	Processed   bool            `json:"processed"`
	ProcessedAt *time.Time      `json:"processedAt,omitempty"`
	LastRetryAt *time.Time      `json:"lastRetryAt,omitempty"`
}

// Exhausted reports whether the operation has hit the retry ceiling and is no
// longer a drain candidate.
func (op SyncOperation) Exhausted(maxRetries int) bool {
	return op.RetryCount >= maxRetries
}
