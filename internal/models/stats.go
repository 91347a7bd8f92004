package models

import "time"

// GroupProgress is the studied/memorized breakdown for one group of words,
// either a text source or a difficulty level.
type GroupProgress struct {
	TotalWords        int     `json:"totalWords"`
	StudiedWords      int     `json:"studiedWords"`
	MemorizedWords    int     `json:"memorizedWords"`
	NotMemorizedWords int     `json:"notMemorizedWords"`
	TotalReviews      int     `json:"totalReviews"`
	CompletionRate    float64 `json:"completionRate"`
	MemorizationRate  float64 `json:"memorizationRate"`
}

// OverallProgress summarizes learning state across all sources.
type OverallProgress struct {
	TotalWordsStudied   int     `json:"totalWordsStudied"`
	TotalWordsMemorized int     `json:"totalWordsMemorized"`
	TotalSources        int     `json:"totalSources"`
	MemorizationRate    float64 `json:"memorizationRate"`
}

// SyncStatus is the queue's observable state, exposed to the UI instead of
// individual sync failures.
type SyncStatus struct {
	Online         bool       `json:"online"`
	PendingCount   int        `json:"pendingCount"`
	ExhaustedCount int        `json:"exhaustedCount"`
	Draining       bool       `json:"draining"`
	LastDrainAt    *time.Time `json:"lastDrainAt,omitempty"`
}
