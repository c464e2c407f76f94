package syncer

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/declanmoran/studydeck/internal/deck"
	"github.com/declanmoran/studydeck/internal/store"
)

func writeDeck(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write deck file: %v", err)
	}
}

func openManager(t *testing.T) *deck.Manager {
	t.Helper()
	st, err := store.OpenSnapshot(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open snapshot store: %v", err)
	}
	m, err := deck.Open(st, "alice")
	if err != nil {
		t.Fatalf("Open returned an unexpected error: %v", err)
	}
	return m
}

func TestRunImportsNewCards(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	srcDir := t.TempDir()
	writeDeck(t, srcDir, "go.md", `
Q: What is a channel?
A: A typed conduit between goroutines.
T: Go

Q: What does defer do?
A: Schedules a call to run when the function returns.
T: Go
`)
	writeDeck(t, srcDir, "notes.txt", "Q: What is OCR?\nA: Optical character recognition.")
	writeDeck(t, srcDir, "ignored.pdf", "Q: not scanned\nA: wrong extension")

	mgr := openManager(t)
	res := Run(mgr, []string{srcDir}, t.TempDir(), now)

	if len(res.Errors) != 0 {
		t.Fatalf("Run reported unexpected errors: %v", res.Errors)
	}
	if res.Imported != 3 {
		t.Errorf("Expected 3 imported cards, but got %d", res.Imported)
	}
	if mgr.Len() != 3 {
		t.Errorf("Expected 3 cards in the collection, but got %d", mgr.Len())
	}

	topics := make(map[string]int)
	for _, c := range mgr.Cards() {
		topics[c.Topic]++
		if c.Hash == "" {
			t.Errorf("Expected imported card %d to carry a content hash", c.ID)
		}
		if !c.Due(now) {
			t.Errorf("Expected imported card %d to be due immediately", c.ID)
		}
	}
	if topics["Go"] != 2 || topics["General"] != 1 {
		t.Errorf("Unexpected topic distribution: %v", topics)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	srcDir := t.TempDir()
	writeDeck(t, srcDir, "deck.md", "Q: Once\nA: Only")

	mgr := openManager(t)

	first := Run(mgr, []string{srcDir}, t.TempDir(), now)
	if first.Imported != 1 {
		t.Fatalf("Expected 1 imported card, but got %d", first.Imported)
	}

	second := Run(mgr, []string{srcDir}, t.TempDir(), now)
	if second.Imported != 0 || second.Skipped != 1 {
		t.Errorf("Expected the re-import to be skipped, but got %+v", second)
	}
	if mgr.Len() != 1 {
		t.Errorf("Expected the collection to stay at 1 card, but got %d", mgr.Len())
	}
}

func TestRunKeepsCardsRemovedFromSource(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	srcDir := t.TempDir()
	writeDeck(t, srcDir, "deck.md", "Q: Keep me\nA: Forever")

	mgr := openManager(t)
	Run(mgr, []string{srcDir}, t.TempDir(), now)

	if err := os.Remove(filepath.Join(srcDir, "deck.md")); err != nil {
		t.Fatalf("Failed to remove deck file: %v", err)
	}
	Run(mgr, []string{srcDir}, t.TempDir(), now)

	if mgr.Len() != 1 {
		t.Errorf("Expected the imported card to survive source removal, but got %d cards", mgr.Len())
	}
}

func TestRunReportsMissingSource(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mgr := openManager(t)

	res := Run(mgr, []string{filepath.Join(t.TempDir(), "does-not-exist")}, t.TempDir(), now)
	if len(res.Errors) == 0 {
		t.Error("Expected a walk error for a missing source directory")
	}
	if mgr.Len() != 0 {
		t.Errorf("Expected no cards, but got %d", mgr.Len())
	}
}
