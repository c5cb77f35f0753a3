// Package memtest is an in-memory reference graph.Graph, built from
// plain Go maps behind a sync.RWMutex. It backs engine tests and
// subpackage tests that need a graph without a real schema loader or
// database behind it.
package memtest

import (
	"fmt"
	"sync"

	"github.com/ivanbatic/electric/graph"
	"github.com/ivanbatic/electric/schema"
)

// Graph is an in-memory graph.Graph and graph.FKGraph. Foreign keys are
// declared with RegisterFK; baseline rows are inserted with Seed;
// pending writes are layered in an overlay by ApplyChange and folded
// into the baseline by Commit.
type Graph struct {
	mu      sync.RWMutex
	walker  *graph.DefaultWalker
	fks     map[string]map[string]schema.Relation
	rows    map[string]map[string]any
	overlay map[string]map[string]any
}

// New returns an empty in-memory graph with a depth-10 walker.
func New() *Graph {
	return &Graph{
		walker:  graph.NewDefaultWalker(10),
		fks:     make(map[string]map[string]schema.Relation),
		rows:    make(map[string]map[string]any),
		overlay: make(map[string]map[string]any),
	}
}

func relKey(r schema.Relation) string { return r.Schema + "." + r.Name }

func rowKey(r schema.Relation, id graph.RowID) string {
	return fmt.Sprintf("%s#%v", relKey(r), id)
}

func copyRecord(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}

	return out
}

// RegisterFK declares that column on relation is a foreign key into
// parentRelation, so the walker can follow it toward scope roots.
func (g *Graph) RegisterFK(relation schema.Relation, column string, parentRelation schema.Relation) {
	g.mu.Lock()
	defer g.mu.Unlock()

	k := relKey(relation)
	if g.fks[k] == nil {
		g.fks[k] = make(map[string]schema.Relation)
	}

	g.fks[k][column] = parentRelation
}

// Seed inserts a baseline row directly, bypassing ApplyChange, for
// fixtures representing rows that already exist upstream.
func (g *Graph) Seed(relation schema.Relation, id graph.RowID, record map[string]any) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.rows[rowKey(relation, id)] = copyRecord(record)
}

func (g *Graph) record(relation schema.Relation, id graph.RowID) (map[string]any, bool) {
	k := rowKey(relation, id)

	if rec, ok := g.overlay[k]; ok {
		if rec == nil {
			return nil, false
		}

		return rec, true
	}

	rec, ok := g.rows[k]

	return rec, ok
}

// ParentEdges implements graph.FKGraph.
func (g *Graph) ParentEdges(relation schema.Relation, id graph.RowID) ([]graph.Edge, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	rec, ok := g.record(relation, id)
	if !ok {
		return nil, nil
	}

	cols := g.fks[relKey(relation)]

	var edges []graph.Edge

	for col, parentRel := range cols {
		parentID, ok := rec[col]
		if !ok || parentID == nil {
			continue
		}

		edges = append(edges, graph.Edge{Column: col, Relation: parentRel, ID: parentID})
	}

	return edges, nil
}

// ScopeID implements graph.Graph.
func (g *Graph) ScopeID(scopeRelation schema.Relation, change graph.Change) ([]graph.ScopeRoot, error) {
	return g.walker.ScopeID(g, scopeRelation, change.Relation, change.ID)
}

// ModifiedFKs implements graph.Graph.
func (g *Graph) ModifiedFKs(scopeRelation schema.Relation, change graph.Change) ([]string, error) {
	if change.Kind != graph.UpdatedRecord {
		return nil, nil
	}

	g.mu.RLock()
	fkCols := g.fks[relKey(change.Relation)]
	g.mu.RUnlock()

	var modified []string

	for _, col := range change.Columns {
		parentRel, isFK := fkCols[col]
		if !isFK {
			continue
		}

		if parentRel.Equal(scopeRelation) {
			modified = append(modified, col)
			continue
		}

		parentID := change.Column(col)
		if parentID == nil {
			continue
		}

		roots, err := g.walker.ScopeID(g, scopeRelation, parentRel, parentID)
		if err != nil {
			return nil, err
		}

		if len(roots) > 0 {
			modified = append(modified, col)
		}
	}

	return modified, nil
}

// ApplyChange implements graph.Graph, layering change into the overlay.
func (g *Graph) ApplyChange(_ []schema.Relation, change graph.Change) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	k := rowKey(change.Relation, change.ID)

	switch change.Kind {
	case graph.DeletedRecord:
		g.overlay[k] = nil
	case graph.NewRecord:
		g.overlay[k] = copyRecord(change.Record)
	case graph.UpdatedRecord, graph.ScopeMove:
		base, _ := g.record(change.Relation, change.ID)
		merged := copyRecord(base)

		for col, v := range change.Record {
			merged[col] = v
		}

		g.overlay[k] = merged
	}

	return nil
}

// Commit folds the overlay into the baseline and clears it. Mirrors a
// transaction reappearing from upstream and being absorbed.
func (g *Graph) Commit() {
	g.mu.Lock()
	defer g.mu.Unlock()

	for k, rec := range g.overlay {
		if rec == nil {
			delete(g.rows, k)
			continue
		}

		g.rows[k] = rec
	}

	g.overlay = make(map[string]map[string]any)
}
