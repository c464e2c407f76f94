// Package session assembles study sessions and multiple-choice practice
// questions from a card collection.
package session

import (
	"errors"
	"math/rand/v2"

	"github.com/declanmoran/studydeck/internal/domain"
)

// ErrInsufficientCards is returned when the collection is too small to
// build the requested number of distractors.
var ErrInsufficientCards = errors.New("session: not enough cards for distractors")

// DefaultDistractors is the number of wrong answers in a practice question.
const DefaultDistractors = 3

// Study orders the due queue for presentation. The current policy is a
// plain pass-through of the manager's stable ordering; this is the spot
// where a prioritization policy would slot in.
func Study(due []domain.Flashcard) []domain.Flashcard {
	out := make([]domain.Flashcard, len(due))
	copy(out, due)
	return out
}

// Distractors samples k answers from cards other than the target. It
// fails when the collection holds fewer than k other cards.
func Distractors(cards []domain.Flashcard, target domain.Flashcard, k int) ([]string, error) {
	if len(cards)-1 < k {
		return nil, ErrInsufficientCards
	}

	others := make([]domain.Flashcard, 0, len(cards)-1)
	for _, c := range cards {
		if c.ID != target.ID {
			others = append(others, c)
		}
	}
	if len(others) < k {
		return nil, ErrInsufficientCards
	}

	rand.Shuffle(len(others), func(i, j int) {
		others[i], others[j] = others[j], others[i]
	})

	answers := make([]string, 0, k)
	for _, c := range others[:k] {
		answers = append(answers, c.Answer)
	}
	return answers, nil
}

// Question is a single multiple-choice practice item.
type Question struct {
	CardID  int64
	Prompt  string
	Options []string
	Answer  string
}

// MultipleChoice builds a practice question for the target card: its
// answer shuffled in among k distractors drawn from the rest of the
// collection.
func MultipleChoice(cards []domain.Flashcard, target domain.Flashcard, k int) (Question, error) {
	wrong, err := Distractors(cards, target, k)
	if err != nil {
		return Question{}, err
	}

	options := append(wrong, target.Answer)
	rand.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	return Question{
		CardID:  target.ID,
		Prompt:  target.Question,
		Options: options,
		Answer:  target.Answer,
	}, nil
}
