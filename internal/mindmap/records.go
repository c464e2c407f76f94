package mindmap

import "fmt"

// NodeRecord is the flat, storable form of a node. ParentID is zero for
// the root. Records are ordered parent-before-child so a tree can be
// rebuilt in a single pass.
type NodeRecord struct {
	ID       int64   `json:"id"`
	ParentID int64   `json:"parent_id"`
	Title    string  `json:"title"`
	CardIDs  []int64 `json:"card_ids,omitempty"`
}

// Records flattens the tree depth-first, parents before children. An empty
// tree yields nil.
func (t *Tree) Records() []NodeRecord {
	if t.root == nil {
		return nil
	}
	var out []NodeRecord
	var walk func(n *Node, parentID int64)
	walk = func(n *Node, parentID int64) {
		out = append(out, NodeRecord{
			ID:       n.id,
			ParentID: parentID,
			Title:    n.title,
			CardIDs:  n.TaggedCardIDs(),
		})
		for _, child := range n.children {
			walk(child, n.id)
		}
	}
	walk(t.root, 0)
	return out
}

// FromRecords rebuilds a tree from its flattened form. The first record
// with a zero ParentID becomes the root; every other record must name an
// already-seen parent.
func FromRecords(records []NodeRecord) (*Tree, error) {
	t := NewTree()
	if len(records) == 0 {
		return t, nil
	}

	byID := make(map[int64]*Node, len(records))
	for _, rec := range records {
		node := &Node{id: rec.ID, title: rec.Title}
		node.cardIDs = append(node.cardIDs, rec.CardIDs...)

		if rec.ParentID == 0 {
			if t.root != nil {
				return nil, fmt.Errorf("mindmap: multiple roots in records (%d and %d)", t.root.id, rec.ID)
			}
			t.root = node
		} else {
			parent, ok := byID[rec.ParentID]
			if !ok {
				return nil, fmt.Errorf("mindmap: node %d references unknown parent %d", rec.ID, rec.ParentID)
			}
			node.parent = parent
			parent.children = append(parent.children, node)
		}

		byID[rec.ID] = node
		if rec.ID > t.lastID {
			t.lastID = rec.ID
		}
	}
	if t.root == nil {
		return nil, fmt.Errorf("mindmap: records contain no root")
	}
	return t, nil
}
