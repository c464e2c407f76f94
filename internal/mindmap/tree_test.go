package mindmap

import (
	"testing"
	"time"

	"github.com/declanmoran/studydeck/internal/domain"
)

func testCards(ids ...int64) []domain.Flashcard {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cards := make([]domain.Flashcard, 0, len(ids))
	for _, id := range ids {
		cards = append(cards, domain.NewFlashcard(id, "Q", "A", "General", now))
	}
	return cards
}

func idsOf(cards []domain.Flashcard) []int64 {
	out := make([]int64, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.ID)
	}
	return out
}

func TestCreateRootReplaces(t *testing.T) {
	tree := NewTree()

	first := tree.CreateRoot("Biology")
	tree.AddChild(first, "Cells")

	second := tree.CreateRoot("Chemistry")
	if tree.Root() != second {
		t.Fatal("Expected the new root to replace the old one")
	}
	if len(tree.Root().Children()) != 0 {
		t.Error("Expected the replacement root to start without children")
	}
	if first.ID() == second.ID() {
		t.Error("Expected distinct ids for successive roots")
	}
}

func TestTagCardIdempotent(t *testing.T) {
	tree := NewTree()
	root := tree.CreateRoot("Root")

	tree.TagCard(root, 42)
	tree.TagCard(root, 42)
	tree.TagCard(root, 7)

	got := root.TaggedCardIDs()
	if len(got) != 2 || got[0] != 42 || got[1] != 7 {
		t.Errorf("Expected tagged ids [42 7], but got %v", got)
	}
}

func TestUntagCard(t *testing.T) {
	tree := NewTree()
	root := tree.CreateRoot("Root")

	tree.TagCard(root, 1)
	tree.TagCard(root, 2)
	tree.UntagCard(root, 1)
	tree.UntagCard(root, 99) // absent, no-op

	if got := root.TaggedCardIDs(); len(got) != 1 || got[0] != 2 {
		t.Errorf("Expected tagged ids [2], but got %v", got)
	}
}

func TestEffectiveCards(t *testing.T) {
	tree := NewTree()
	root := tree.CreateRoot("Root")
	left := tree.AddChild(root, "Left")
	right := tree.AddChild(root, "Right")
	leaf := tree.AddChild(left, "Leaf")

	tree.TagCard(root, 1)
	tree.TagCard(left, 2)
	tree.TagCard(right, 3)
	tree.TagCard(leaf, 4)
	// Same card under two siblings must not produce duplicates at the ancestor.
	tree.TagCard(left, 5)
	tree.TagCard(right, 5)

	t.Run("leaf equals own tags", func(t *testing.T) {
		got := EffectiveCards(leaf)
		if len(got) != 1 || !got[4] {
			t.Errorf("Expected leaf set {4}, but got %v", got)
		}
	})

	t.Run("ancestor union is deduplicated", func(t *testing.T) {
		got := EffectiveCards(root)
		want := []int64{1, 2, 3, 4, 5}
		if len(got) != len(want) {
			t.Fatalf("Expected %d distinct ids, but got %d: %v", len(want), len(got), got)
		}
		for _, id := range want {
			if !got[id] {
				t.Errorf("Expected id %d in effective set", id)
			}
		}
	})
}

func TestTaggedCardVisibleAtAncestor(t *testing.T) {
	tree := NewTree()
	rootA := tree.CreateRoot("A")
	leafB := tree.AddChild(rootA, "B")
	cards := testCards(100, 200)

	tree.TagCard(leafB, 100)

	if !EffectiveCards(rootA)[100] {
		t.Error("Expected card tagged on a child to appear in the root's effective set")
	}
	for _, node := range []*Node{rootA, leafB} {
		for _, card := range AvailableForTagging(node, cards) {
			if card.ID == 100 {
				t.Errorf("Expected card 100 to be excluded from tagging at %q", node.Title())
			}
		}
	}
}

func TestStudyAndTaggingAreComplements(t *testing.T) {
	tree := NewTree()
	root := tree.CreateRoot("Root")
	child := tree.AddChild(root, "Child")
	cards := testCards(1, 2, 3, 4)

	tree.TagCard(root, 1)
	tree.TagCard(child, 3)
	tree.TagCard(child, 999) // dangling: no such card in the collection

	study := idsOf(CardsForStudy(root, cards))
	avail := idsOf(AvailableForTagging(root, cards))

	if len(study)+len(avail) != len(cards) {
		t.Fatalf("Expected complements to cover the collection: study=%v avail=%v", study, avail)
	}
	seen := make(map[int64]bool)
	for _, id := range append(append([]int64{}, study...), avail...) {
		if seen[id] {
			t.Errorf("Expected disjoint sets, but id %d appears in both", id)
		}
		seen[id] = true
	}
	for _, id := range study {
		if id == 999 {
			t.Error("Expected the dangling id to be silently skipped")
		}
	}
}

func TestDeleteNode(t *testing.T) {
	tree := NewTree()
	root := tree.CreateRoot("Root")
	branch := tree.AddChild(root, "Branch")
	leaf := tree.AddChild(branch, "Leaf")

	if err := tree.DeleteNode(branch); err != ErrNotLeaf {
		t.Errorf("Expected ErrNotLeaf for a node with children, but got %v", err)
	}

	if err := tree.DeleteNode(leaf); err != nil {
		t.Fatalf("DeleteNode returned an unexpected error: %v", err)
	}
	if len(branch.Children()) != 0 {
		t.Error("Expected the leaf to be removed from its parent")
	}

	if err := tree.DeleteNode(branch); err != nil {
		t.Fatalf("DeleteNode returned an unexpected error: %v", err)
	}
	if err := tree.DeleteNode(root); err != nil {
		t.Fatalf("DeleteNode on a childless root returned an unexpected error: %v", err)
	}
	if tree.Root() != nil {
		t.Error("Expected deleting the root to empty the tree")
	}
}

func TestReparent(t *testing.T) {
	tree := NewTree()
	root := tree.CreateRoot("Root")
	a := tree.AddChild(root, "A")
	b := tree.AddChild(root, "B")
	aChild := tree.AddChild(a, "AChild")

	if err := tree.Reparent(root, a); err != ErrIsRoot {
		t.Errorf("Expected ErrIsRoot when moving the root, but got %v", err)
	}
	if err := tree.Reparent(a, aChild); err != ErrWouldCycle {
		t.Errorf("Expected ErrWouldCycle when moving under a descendant, but got %v", err)
	}
	if err := tree.Reparent(a, a); err != ErrWouldCycle {
		t.Errorf("Expected ErrWouldCycle when moving under itself, but got %v", err)
	}

	if err := tree.Reparent(aChild, b); err != nil {
		t.Fatalf("Reparent returned an unexpected error: %v", err)
	}
	if aChild.Parent() != b {
		t.Error("Expected the moved node's parent to be updated")
	}
	if len(a.Children()) != 0 {
		t.Error("Expected the node to be removed from its old parent")
	}
	if got := b.Children(); len(got) != 1 || got[0] != aChild {
		t.Errorf("Expected B to own the moved node, but got %v", got)
	}
}

func TestRecordsRoundTrip(t *testing.T) {
	tree := NewTree()
	root := tree.CreateRoot("Root")
	left := tree.AddChild(root, "Left")
	tree.AddChild(root, "Right")
	leaf := tree.AddChild(left, "Leaf")
	tree.TagCard(root, 1)
	tree.TagCard(leaf, 2)
	tree.TagCard(leaf, 3)

	records := tree.Records()
	rebuilt, err := FromRecords(records)
	if err != nil {
		t.Fatalf("FromRecords returned an unexpected error: %v", err)
	}

	got := rebuilt.Records()
	if len(got) != len(records) {
		t.Fatalf("Expected %d records after round trip, but got %d", len(records), len(got))
	}
	for i := range records {
		if got[i].ID != records[i].ID || got[i].ParentID != records[i].ParentID || got[i].Title != records[i].Title {
			t.Errorf("Record %d changed in round trip: %+v vs %+v", i, records[i], got[i])
		}
	}

	node := rebuilt.FindNode(leaf.ID())
	if node == nil {
		t.Fatal("Expected to find the leaf in the rebuilt tree")
	}
	if tags := node.TaggedCardIDs(); len(tags) != 2 || tags[0] != 2 || tags[1] != 3 {
		t.Errorf("Expected leaf tags [2 3], but got %v", tags)
	}

	// New ids in the rebuilt tree must not collide with restored ones.
	fresh := rebuilt.AddChild(rebuilt.Root(), "Fresh")
	if rebuilt.FindNode(fresh.ID()) != fresh {
		t.Error("Expected the fresh node to be reachable by its id")
	}
	for _, rec := range records {
		if rec.ID == fresh.ID() {
			t.Error("Expected the fresh node id to differ from all restored ids")
		}
	}
}

func TestFromRecordsRejectsMalformed(t *testing.T) {
	testCases := []struct {
		name    string
		records []NodeRecord
	}{
		{
			name: "unknown parent",
			records: []NodeRecord{
				{ID: 1, ParentID: 0, Title: "Root"},
				{ID: 2, ParentID: 99, Title: "Orphan"},
			},
		},
		{
			name: "two roots",
			records: []NodeRecord{
				{ID: 1, ParentID: 0, Title: "Root"},
				{ID: 2, ParentID: 0, Title: "Other"},
			},
		},
		{
			name: "no root",
			records: []NodeRecord{
				{ID: 2, ParentID: 1, Title: "Child"},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := FromRecords(tc.records); err == nil {
				t.Error("Expected an error for malformed records")
			}
		})
	}
}
