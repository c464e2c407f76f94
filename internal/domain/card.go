package domain

import "time"

// Defaults applied when a card is created without explicit labels.
const (
	DefaultTopic      = "General"
	DefaultDifficulty = "medium"

	// InitialEase is the ease factor assigned to every new card.
	InitialEase = 2.5
)

// Flashcard is a single question/answer pair together with its
// spaced-repetition state. Interval is measured in fractional days so
// sub-day steps (minutes, hours) are representable.
type Flashcard struct {
	ID          int64     `json:"id"`
	Question    string    `json:"question"`
	Answer      string    `json:"answer"`
	Topic       string    `json:"topic"`
	Difficulty  string    `json:"difficulty"`
	EaseFactor  float64   `json:"ease_factor"`
	Repetitions int       `json:"repetitions"`
	Interval    float64   `json:"interval"`
	NextReview  time.Time `json:"next_review"`

	// Hash identifies the card content for import deduplication.
	// Empty for manually created cards.
	Hash string `json:"hash,omitempty"`
}

// NewFlashcard builds a card that is due immediately. Scheduling state is
// only advanced afterwards through the scheduler.
func NewFlashcard(id int64, question, answer, topic string, now time.Time) Flashcard {
	if topic == "" {
		topic = DefaultTopic
	}
	return Flashcard{
		ID:          id,
		Question:    question,
		Answer:      answer,
		Topic:       topic,
		Difficulty:  DefaultDifficulty,
		EaseFactor:  InitialEase,
		Repetitions: 0,
		NextReview:  now,
	}
}

// Due reports whether the card's scheduled review instant has passed.
func (c Flashcard) Due(now time.Time) bool {
	return !c.NextReview.After(now)
}
