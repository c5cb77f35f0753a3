package graph

import (
	"fmt"

	"github.com/ivanbatic/electric/schema"
)

// Walker performs the BFS scope-root search the graph contract's
// ScopeID operation describes.
type Walker interface {
	ScopeID(fk FKGraph, scopeRelation, relation schema.Relation, id RowID) ([]ScopeRoot, error)
}

// DefaultWalker is a BFS reference resolver with a depth cutoff, so a
// cyclic foreign-key graph cannot spin forever.
type DefaultWalker struct {
	MaxDepth int
}

// NewDefaultWalker returns a DefaultWalker with the given max depth. A
// non-positive depth falls back to 10.
func NewDefaultWalker(maxDepth int) *DefaultWalker {
	if maxDepth <= 0 {
		maxDepth = 10
	}

	return &DefaultWalker{MaxDepth: maxDepth}
}

type walkNode struct {
	relation schema.Relation
	id       RowID
	depth    int
	path     []string
}

func nodeKey(relation schema.Relation, id RowID) string {
	return fmt.Sprintf("%s:%v", relation, id)
}

// ScopeID walks fk breadth-first from (relation, id) looking for rows in
// scopeRelation. A row already in scopeRelation is its own root at
// depth zero, so a grant scoped to the same table it guards still
// resolves without a traversal.
func (w *DefaultWalker) ScopeID(fk FKGraph, scopeRelation, relation schema.Relation, id RowID) ([]ScopeRoot, error) {
	queue := []walkNode{{relation: relation, id: id, path: []string{nodeKey(relation, id)}}}
	visited := make(map[string]struct{})

	var roots []ScopeRoot

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		if node.depth > w.MaxDepth {
			return nil, ErrScopeDepthExceeded
		}

		key := nodeKey(node.relation, node.id)
		if _, seen := visited[key]; seen {
			continue
		}
		visited[key] = struct{}{}

		if node.relation.Equal(scopeRelation) {
			roots = append(roots, ScopeRoot{ID: node.id, Path: node.path})
			continue
		}

		edges, err := fk.ParentEdges(node.relation, node.id)
		if err != nil {
			return nil, fmt.Errorf("parent edges for %s: %w", key, err)
		}

		for _, e := range edges {
			queue = append(queue, walkNode{
				relation: e.Relation,
				id:       e.ID,
				depth:    node.depth + 1,
				path:     append(append([]string{}, node.path...), nodeKey(e.Relation, e.ID)),
			})
		}
	}

	return roots, nil
}
