package graph

import "github.com/ivanbatic/electric/schema"

// ScopeRoot is one scope instance a change is reachable from.
type ScopeRoot struct {
	ID   RowID
	Path []string
}

// Graph is the scope-resolution contract the decision engine consumes
// as a collaborator, never as part of itself. One instance backs reads,
// a different one (typically a WriteBuffer over the same upstream)
// backs writes within a transaction.
type Graph interface {
	// ScopeID returns the scope roots reachable from change via foreign
	// key parents in scopeRelation. A change may belong to several
	// scope instances at once if the schema allows it.
	ScopeID(scopeRelation schema.Relation, change Change) ([]ScopeRoot, error)

	// ModifiedFKs returns the foreign key columns change modifies that
	// participate in the path to scopeRelation.
	ModifiedFKs(scopeRelation schema.Relation, change Change) ([]string, error)

	// ApplyChange layers change into the graph's view, so later
	// ScopeID/ModifiedFKs calls observe it. A read graph, which never
	// sees pending writes, may treat this as a no-op.
	ApplyChange(scopeRelations []schema.Relation, change Change) error
}

// Edge is one foreign-key parent edge discovered while walking from a
// row toward a candidate scope root.
type Edge struct {
	Column   string
	Relation schema.Relation
	ID       RowID
}

// FKGraph supplies the raw foreign-key edges a Walker traverses. A
// schema-backed Graph implementation usually embeds one of these
// rather than re-implementing BFS itself.
type FKGraph interface {
	// ParentEdges returns the foreign-key edges leading away from
	// (relation, id) toward its parent rows.
	ParentEdges(relation schema.Relation, id RowID) ([]Edge, error)
}
