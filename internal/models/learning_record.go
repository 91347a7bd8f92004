package models

import "time"

// LearningRecord is the durable per-word memorization state. At most one record
// exists per word id; every recorded response updates the same row.
type LearningRecord struct {
	WordID       string    `json:"wordId"`
	IsMemorized  bool      `json:"isMemorized"`
	ReviewCount  int       `json:"reviewCount"`
	LastReviewed time.Time `json:"lastReviewed"`
	Synced       bool      `json:"synced"`
}

// ProgressStatistics is a consistent snapshot of aggregate learning state.
type ProgressStatistics struct {
	TotalWords        int `json:"totalWords"`
	MemorizedWords    int `json:"memorizedWords"`
	NotMemorizedWords int `json:"notMemorizedWords"`
	TotalReviews      int `json:"totalReviews"`
}
