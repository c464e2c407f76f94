// Package deck owns a user's in-memory flashcard collection. Every
// mutation validates first, then applies, then writes the whole
// collection through to the store before returning.
package deck

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/declanmoran/studydeck/internal/domain"
	"github.com/declanmoran/studydeck/internal/scheduler"
	"github.com/declanmoran/studydeck/internal/store"
)

var (
	// ErrNotFound is returned when an operation references an unknown card id.
	ErrNotFound = errors.New("deck: card not found")
	// ErrEmptyCard is returned when a card is created with a blank question or answer.
	ErrEmptyCard = errors.New("deck: question and answer must be non-empty")
)

// Manager holds one user's cards for the lifetime of a session. The store
// remains the source of truth across restarts; the manager is the single
// writer while it is open.
type Manager struct {
	userKey string
	st      store.Store

	cards  []domain.Flashcard
	index  map[int64]int // id -> position in cards
	lastID int64
}

// Open loads the user's collection. When the load fails the manager still
// opens with an empty collection, and the error is returned so the caller
// can warn about possible data loss.
func Open(st store.Store, userKey string) (*Manager, error) {
	m := &Manager{
		userKey: userKey,
		st:      st,
		index:   make(map[int64]int),
	}

	cards, err := st.LoadCards(userKey)
	if err != nil {
		return m, fmt.Errorf("loading collection for %s: %w", userKey, err)
	}
	m.cards = cards
	for i, c := range cards {
		m.index[c.ID] = i
		if c.ID > m.lastID {
			m.lastID = c.ID
		}
	}
	return m, nil
}

// UserKey returns the key selecting this manager's persistence partition.
func (m *Manager) UserKey() string { return m.userKey }

// Len returns the number of cards in the collection.
func (m *Manager) Len() int { return len(m.cards) }

// Cards returns a copy of the collection in insertion order.
func (m *Manager) Cards() []domain.Flashcard {
	out := make([]domain.Flashcard, len(m.cards))
	copy(out, m.cards)
	return out
}

// Get returns the card with the given id.
func (m *Manager) Get(id int64) (domain.Flashcard, bool) {
	i, ok := m.index[id]
	if !ok {
		return domain.Flashcard{}, false
	}
	return m.cards[i], true
}

// Create validates and adds a new card, due immediately, and persists the
// collection. An empty topic falls back to the default.
func (m *Manager) Create(question, answer, topic string, now time.Time) (domain.Flashcard, error) {
	if strings.TrimSpace(question) == "" || strings.TrimSpace(answer) == "" {
		return domain.Flashcard{}, ErrEmptyCard
	}

	card := domain.NewFlashcard(m.nextID(now), question, answer, topic, now)
	m.cards = append(m.cards, card)
	m.index[card.ID] = len(m.cards) - 1

	if err := m.persist(); err != nil {
		return card, err
	}
	return card, nil
}

// CreateImported behaves like Create but records the content hash of an
// ingested card so re-imports can be skipped.
func (m *Manager) CreateImported(question, answer, topic, hash string, now time.Time) (domain.Flashcard, error) {
	if strings.TrimSpace(question) == "" || strings.TrimSpace(answer) == "" {
		return domain.Flashcard{}, ErrEmptyCard
	}

	card := domain.NewFlashcard(m.nextID(now), question, answer, topic, now)
	card.Hash = hash
	m.cards = append(m.cards, card)
	m.index[card.ID] = len(m.cards) - 1

	if err := m.persist(); err != nil {
		return card, err
	}
	return card, nil
}

// FieldEdit carries optional content changes for UpdateFields. Nil fields
// are left untouched.
type FieldEdit struct {
	Question *string
	Answer   *string
	Topic    *string
}

// UpdateFields edits a card's content without touching its scheduling
// state.
func (m *Manager) UpdateFields(id int64, edit FieldEdit) error {
	i, ok := m.index[id]
	if !ok {
		return ErrNotFound
	}

	if edit.Question != nil {
		if strings.TrimSpace(*edit.Question) == "" {
			return ErrEmptyCard
		}
	}
	if edit.Answer != nil {
		if strings.TrimSpace(*edit.Answer) == "" {
			return ErrEmptyCard
		}
	}

	if edit.Question != nil {
		m.cards[i].Question = *edit.Question
	}
	if edit.Answer != nil {
		m.cards[i].Answer = *edit.Answer
	}
	if edit.Topic != nil {
		m.cards[i].Topic = *edit.Topic
	}
	return m.persist()
}

// Delete removes a card from the collection. Mind map nodes referencing
// the id simply hold a dangling reference afterwards, which card-set
// resolution treats as absent.
func (m *Manager) Delete(id int64) error {
	i, ok := m.index[id]
	if !ok {
		return ErrNotFound
	}

	m.cards = append(m.cards[:i], m.cards[i+1:]...)
	delete(m.index, id)
	for j := i; j < len(m.cards); j++ {
		m.index[m.cards[j].ID] = j
	}
	return m.persist()
}

// Review applies a single review outcome to a card and persists the
// result. It returns the updated card.
func (m *Manager) Review(id int64, outcome scheduler.Outcome, now time.Time) (domain.Flashcard, error) {
	i, ok := m.index[id]
	if !ok {
		return domain.Flashcard{}, ErrNotFound
	}

	m.cards[i] = scheduler.Advance(m.cards[i], outcome, now)
	card := m.cards[i]
	if err := m.persist(); err != nil {
		return card, err
	}
	return card, nil
}

// Due returns all cards whose review instant has passed, in insertion
// order. Callers needing a different presentation order sort explicitly.
func (m *Manager) Due(now time.Time) []domain.Flashcard {
	var due []domain.Flashcard
	for _, c := range m.cards {
		if c.Due(now) {
			due = append(due, c)
		}
	}
	return due
}

// ImportedHashes returns the content hashes of all previously imported
// cards, for deduplication during source sync.
func (m *Manager) ImportedHashes() map[string]bool {
	out := make(map[string]bool)
	for _, c := range m.cards {
		if c.Hash != "" {
			out[c.Hash] = true
		}
	}
	return out
}

// Flush re-saves the collection. Useful for retrying after a failed
// write-through: the in-memory state is kept even when a save fails.
func (m *Manager) Flush() error {
	return m.persist()
}

func (m *Manager) persist() error {
	if err := m.st.SaveCards(m.userKey, m.cards); err != nil {
		return fmt.Errorf("saving collection for %s: %w", m.userKey, err)
	}
	return nil
}

// nextID allocates a millisecond-timestamp id, nudged forward when two
// cards are created within the same millisecond.
func (m *Manager) nextID(now time.Time) int64 {
	id := now.UnixMilli()
	if id <= m.lastID {
		id = m.lastID + 1
	}
	m.lastID = id
	return id
}
