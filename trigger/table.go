package trigger

import (
	"github.com/ivanbatic/electric/graph"
	"github.com/ivanbatic/electric/rules"
	"github.com/ivanbatic/electric/schema"
)

// Table dispatches a change on an ASSIGN table to the AssignSpecs that
// watch it, so the write buffer does not have to scan every spec on
// every change.
type Table struct {
	byRelation map[string][]rules.AssignSpec
}

func relKey(r schema.Relation) string { return r.Schema + "." + r.Name }

// Compile builds a Table from the ASSIGN statements in effect.
func Compile(specs []rules.AssignSpec) *Table {
	t := &Table{byRelation: make(map[string][]rules.AssignSpec)}

	for _, s := range specs {
		t.byRelation[relKey(s.Table)] = append(t.byRelation[relKey(s.Table)], s)
	}

	return t
}

// Fire runs every AssignSpec watching change.Relation and returns the
// union of Events they produce for userID.
func (t *Table) Fire(change graph.Change, userID string) []Event {
	specs := t.byRelation[relKey(change.Relation)]
	if len(specs) == 0 {
		return nil
	}

	var events []Event

	for _, spec := range specs {
		events = append(events, Fire(spec, change, userID)...)
	}

	return events
}
