package models

import "time"

// Difficulty levels assigned by the backend's classification pipeline.
const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// WordTest is one word quiz item extracted from a text source. The backend owns
// this data; we cache it locally so sessions work offline.
type WordTest struct {
	ID         string    `json:"id"`
	SourceID   string    `json:"sourceId"`
	Word       string    `json:"word"`
	Meaning    string    `json:"meaning"`
	Example    string    `json:"example,omitempty"`
	Difficulty string    `json:"difficulty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// WordTestFilter narrows word test listings.
type WordTestFilter struct {
	SourceID   string
	Difficulty string
}

// TextSource is a user-uploaded text from which the backend extracts word tests.
type TextSource struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Uploaded  bool      `json:"uploaded"`
	CreatedAt time.Time `json:"createdAt"`
}
