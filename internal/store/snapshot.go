package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/declanmoran/studydeck/internal/domain"
	"github.com/declanmoran/studydeck/internal/mindmap"
)

const (
	cardsFile = "flashcards.json"
	treesFile = "mindmaps.json"
)

// Snapshot is a Store that keeps one JSON file per data set inside a
// directory, each file a map from user key to records. Writes go to a
// temp file, fsync, then rename, so a crash mid-save leaves the previous
// snapshot intact.
type Snapshot struct {
	dir string
}

// OpenSnapshot prepares a snapshot store rooted at dir, creating the
// directory if needed.
func OpenSnapshot(dir string) (*Snapshot, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory %s: %w", dir, err)
	}
	return &Snapshot{dir: dir}, nil
}

// Close is a no-op; snapshot files hold no open handles between calls.
func (s *Snapshot) Close() error { return nil }

// LoadCards returns the persisted collection for a user, or an empty one
// when the user has never saved.
func (s *Snapshot) LoadCards(userKey string) ([]domain.Flashcard, error) {
	all := make(map[string][]domain.Flashcard)
	if err := s.readFile(cardsFile, &all); err != nil {
		return nil, err
	}
	return all[userKey], nil
}

// SaveCards replaces the user's collection, leaving other users' data
// untouched.
func (s *Snapshot) SaveCards(userKey string, cards []domain.Flashcard) error {
	all := make(map[string][]domain.Flashcard)
	if err := s.readFile(cardsFile, &all); err != nil {
		return err
	}
	if cards == nil {
		cards = []domain.Flashcard{}
	}
	all[userKey] = cards
	return s.writeFile(cardsFile, all)
}

// LoadTree returns the user's persisted mind map records, or nil when the
// user has no tree.
func (s *Snapshot) LoadTree(userKey string) ([]mindmap.NodeRecord, error) {
	all := make(map[string][]mindmap.NodeRecord)
	if err := s.readFile(treesFile, &all); err != nil {
		return nil, err
	}
	return all[userKey], nil
}

// SaveTree replaces the user's mind map records.
func (s *Snapshot) SaveTree(userKey string, records []mindmap.NodeRecord) error {
	all := make(map[string][]mindmap.NodeRecord)
	if err := s.readFile(treesFile, &all); err != nil {
		return err
	}
	if records == nil {
		records = []mindmap.NodeRecord{}
	}
	all[userKey] = records
	return s.writeFile(treesFile, all)
}

func (s *Snapshot) readFile(name string, out any) error {
	path := filepath.Join(s.dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // No snapshot yet: empty, not an error.
		}
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

func (s *Snapshot) writeFile(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}

	path := filepath.Join(s.dir, name)
	tmpPath := path + ".tmp"
	tmpFile, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}
	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write %s: %w", tmpPath, err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync %s: %w", tmpPath, err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
