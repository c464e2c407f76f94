package scheduler

import (
	"fmt"
	"time"

	"github.com/declanmoran/studydeck/internal/domain"
)

// Outcome is the user's self-reported recall quality for a review.
type Outcome int

const (
	Forgot Outcome = 0
	Hard   Outcome = 1
	Good   Outcome = 2
	Easy   Outcome = 3
)

// String returns the lowercase name of the outcome.
func (o Outcome) String() string {
	switch o {
	case Forgot:
		return "forgot"
	case Hard:
		return "hard"
	case Good:
		return "good"
	case Easy:
		return "easy"
	}
	return fmt.Sprintf("outcome(%d)", int(o))
}

// ParseOutcome converts a numeric grade (0-3) into an Outcome.
func ParseOutcome(grade int) (Outcome, error) {
	if grade < int(Forgot) || grade > int(Easy) {
		return 0, fmt.Errorf("invalid outcome grade %d", grade)
	}
	return Outcome(grade), nil
}

// Scheduling policy constants. Intervals are in fractional days.
const (
	minEase = 1.3
	maxEase = 2.5

	relearnInterval  = 0.0001 // due again almost immediately after a lapse
	firstInterval    = 0.0021 // ~3 minutes
	secondInterval   = 0.0104 // ~15 minutes
	thirdEasyDays    = 4
	maxIntervalDays  = 365
	easePenaltyLapse = 0.2
	easePenaltyHard  = 0.15
	easeBonusEasy    = 0.15
)

// Advance computes the card state after a single review. It is a pure
// function of (card, outcome, now): no I/O, no clock reads, and the input
// card is not modified. Persisting the result is the caller's job.
func Advance(card domain.Flashcard, outcome Outcome, now time.Time) domain.Flashcard {
	if outcome == Forgot {
		card.Repetitions = 0
		card.EaseFactor = max(minEase, card.EaseFactor-easePenaltyLapse)
		card.Interval = relearnInterval
		card.NextReview = addDays(now, card.Interval)
		return card
	}

	card.Repetitions++

	switch outcome {
	case Hard:
		card.EaseFactor = max(minEase, card.EaseFactor-easePenaltyHard)
	case Easy:
		card.EaseFactor = min(maxEase, card.EaseFactor+easeBonusEasy)
	}

	// The first two successful reviews use fixed sub-day steps. An Easy on
	// the third review jumps straight to four days; otherwise the interval
	// grows by the ease factor.
	switch {
	case card.Repetitions == 1:
		card.Interval = firstInterval
	case card.Repetitions == 2:
		card.Interval = secondInterval
	case card.Repetitions == 3 && outcome == Easy:
		card.Interval = thirdEasyDays
	default:
		card.Interval = card.Interval * card.EaseFactor
	}

	card.Interval = min(card.Interval, maxIntervalDays)
	card.NextReview = addDays(now, card.Interval)
	return card
}

// addDays offsets t by a fractional number of days.
func addDays(t time.Time, days float64) time.Time {
	return t.Add(time.Duration(days * float64(24*time.Hour)))
}
