// Package graph defines the change representation and the scope-graph
// contract the decision engine treats as a black box.
package graph

import "github.com/ivanbatic/electric/schema"

// Kind identifies the shape of one change within a transaction.
type Kind int

const (
	NewRecord Kind = iota
	UpdatedRecord
	DeletedRecord
	// ScopeMove is synthetic: produced only by scope-move expansion,
	// never present in an inbound or outbound transaction as received.
	ScopeMove
)

func (k Kind) String() string {
	switch k {
	case NewRecord:
		return "insert"
	case UpdatedRecord:
		return "update"
	case DeletedRecord:
		return "delete"
	case ScopeMove:
		return "scope_move"
	default:
		return "unknown"
	}
}

// RequiredPrivilege returns the privilege a change of this kind demands.
func (k Kind) RequiredPrivilege() schema.Privilege {
	switch k {
	case NewRecord:
		return schema.Insert
	case UpdatedRecord, ScopeMove:
		return schema.Update
	case DeletedRecord:
		return schema.Delete
	default:
		return schema.Select
	}
}

// RowID is a row's primary key value. Its concrete type is opaque to
// the core: only ever compared and printed.
type RowID any

// Change is one row mutation, inbound on the write path or outbound on
// the read path.
type Change struct {
	Kind     Kind
	Relation schema.Relation
	ID       RowID

	// Record holds current column values: the full row for NewRecord
	// and ScopeMove, the post-image for UpdatedRecord, nil for
	// DeletedRecord.
	Record map[string]any

	// OldRecord holds the pre-image for UpdatedRecord; nil otherwise.
	OldRecord map[string]any

	// Columns lists the columns this change touches: every key of
	// Record for NewRecord, the changed subset for UpdatedRecord.
	Columns []string
}

// Column returns a column's current value, falling back to the
// pre-image so a CHECK predicate can still inspect a deleted row.
func (c Change) Column(name string) any {
	if c.Record != nil {
		if v, ok := c.Record[name]; ok {
			return v
		}
	}

	if c.OldRecord != nil {
		if v, ok := c.OldRecord[name]; ok {
			return v
		}
	}

	return nil
}

// Transaction is an ordered sequence of changes validated or filtered
// as a unit.
type Transaction struct {
	Changes []Change
	LSN     int64
}
