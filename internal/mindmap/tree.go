package mindmap

import (
	"errors"
	"time"

	"github.com/declanmoran/studydeck/internal/domain"
)

var (
	// ErrNotLeaf is returned when deleting a node that still has children.
	ErrNotLeaf = errors.New("mindmap: node has children")
	// ErrWouldCycle is returned when reparenting a node under its own subtree.
	ErrWouldCycle = errors.New("mindmap: new parent is a descendant of the node")
	// ErrIsRoot is returned for operations that do not apply to the root.
	ErrIsRoot = errors.New("mindmap: node is the root")
)

// Node is a single topic in the concept tree. A node owns its children;
// the parent pointer is a non-owning back-reference for navigation.
type Node struct {
	id       int64
	title    string
	parent   *Node
	children []*Node
	cardIDs  []int64
}

// ID returns the node's identifier, unique within its tree.
func (n *Node) ID() int64 { return n.id }

// Title returns the node's label.
func (n *Node) Title() string { return n.title }

// Parent returns the owning node, or nil for the root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the node's children in insertion order.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// TaggedCardIDs returns the card ids tagged directly on this node,
// not including descendants.
func (n *Node) TaggedCardIDs() []int64 {
	out := make([]int64, len(n.cardIDs))
	copy(out, n.cardIDs)
	return out
}

// Tree is a hierarchy of topic nodes, each tagging a subset of a card
// collection by id. The tree never owns card data.
type Tree struct {
	root   *Node
	lastID int64
}

// NewTree returns an empty tree with no root.
func NewTree() *Tree {
	return &Tree{}
}

// Root returns the tree root, or nil if none has been created.
func (t *Tree) Root() *Node { return t.root }

// CreateRoot establishes the tree root. Any existing root, along with its
// whole subtree, is replaced.
func (t *Tree) CreateRoot(title string) *Node {
	t.root = &Node{id: t.nextID(), title: title}
	return t.root
}

// AddChild allocates a new node owned by parent.
func (t *Tree) AddChild(parent *Node, title string) *Node {
	child := &Node{id: t.nextID(), title: title, parent: parent}
	parent.children = append(parent.children, child)
	return child
}

// TagCard associates a card id with the node. Adding an id that is already
// present is a no-op.
func (t *Tree) TagCard(node *Node, cardID int64) {
	for _, id := range node.cardIDs {
		if id == cardID {
			return
		}
	}
	node.cardIDs = append(node.cardIDs, cardID)
}

// UntagCard removes a card id tagged directly on the node. Removing an
// absent id is a no-op.
func (t *Tree) UntagCard(node *Node, cardID int64) {
	for i, id := range node.cardIDs {
		if id == cardID {
			node.cardIDs = append(node.cardIDs[:i], node.cardIDs[i+1:]...)
			return
		}
	}
}

// DeleteNode removes a leaf node from the tree. Nodes with children cannot
// be deleted.
func (t *Tree) DeleteNode(node *Node) error {
	if len(node.children) > 0 {
		return ErrNotLeaf
	}
	if node == t.root {
		t.root = nil
		return nil
	}
	parent := node.parent
	for i, child := range parent.children {
		if child == node {
			parent.children = append(parent.children[:i], parent.children[i+1:]...)
			break
		}
	}
	node.parent = nil
	return nil
}

// Reparent moves a node under a new parent, keeping its subtree intact.
// The root cannot be moved, and the new parent must not be the node itself
// or one of its descendants.
func (t *Tree) Reparent(node, newParent *Node) error {
	if node == t.root {
		return ErrIsRoot
	}
	for p := newParent; p != nil; p = p.parent {
		if p == node {
			return ErrWouldCycle
		}
	}
	old := node.parent
	for i, child := range old.children {
		if child == node {
			old.children = append(old.children[:i], old.children[i+1:]...)
			break
		}
	}
	node.parent = newParent
	newParent.children = append(newParent.children, node)
	return nil
}

// FindNode locates a node by id anywhere in the tree, or returns nil.
func (t *Tree) FindNode(id int64) *Node {
	if t.root == nil {
		return nil
	}
	return findNode(t.root, id)
}

func findNode(n *Node, id int64) *Node {
	if n.id == id {
		return n
	}
	for _, child := range n.children {
		if found := findNode(child, id); found != nil {
			return found
		}
	}
	return nil
}

// EffectiveCards returns the deduplicated union of the node's own tagged
// card ids and those of its entire subtree.
func EffectiveCards(node *Node) map[int64]bool {
	out := make(map[int64]bool)
	collect(node, out)
	return out
}

func collect(n *Node, out map[int64]bool) {
	for _, id := range n.cardIDs {
		out[id] = true
	}
	for _, child := range n.children {
		collect(child, out)
	}
}

// AvailableForTagging returns the cards in the collection not yet present
// anywhere in the node's subtree, in collection order.
func AvailableForTagging(node *Node, cards []domain.Flashcard) []domain.Flashcard {
	tagged := EffectiveCards(node)
	var out []domain.Flashcard
	for _, card := range cards {
		if !tagged[card.ID] {
			out = append(out, card)
		}
	}
	return out
}

// CardsForStudy returns the cards in the collection that are tagged in the
// node's subtree, in collection order. Tagged ids with no matching card
// (deleted cards) are skipped.
func CardsForStudy(node *Node, cards []domain.Flashcard) []domain.Flashcard {
	tagged := EffectiveCards(node)
	var out []domain.Flashcard
	for _, card := range cards {
		if tagged[card.ID] {
			out = append(out, card)
		}
	}
	return out
}

// nextID allocates a millisecond-timestamp id, nudged forward when two
// nodes are created within the same millisecond.
func (t *Tree) nextID() int64 {
	id := time.Now().UnixMilli()
	if id <= t.lastID {
		id = t.lastID + 1
	}
	t.lastID = id
	return id
}
