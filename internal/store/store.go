// Package store persists flashcard collections and mind maps, one
// partition per user key. A missing user is an empty collection, never an
// error. Saves replace the whole partition atomically: either through a
// SQLite transaction or through a temp-file rename, a crash mid-save
// never exposes a half-written state.
package store

import (
	"github.com/declanmoran/studydeck/internal/domain"
	"github.com/declanmoran/studydeck/internal/mindmap"
)

// Store is the persistence contract. When a load fails, implementations
// return an empty result together with the error so the caller can keep
// working while warning the user about possible data loss.
type Store interface {
	LoadCards(userKey string) ([]domain.Flashcard, error)
	SaveCards(userKey string, cards []domain.Flashcard) error

	LoadTree(userKey string) ([]mindmap.NodeRecord, error)
	SaveTree(userKey string, records []mindmap.NodeRecord) error

	Close() error
}
