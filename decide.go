package electric

import (
	"fmt"

	"github.com/ivanbatic/electric/grant"
	"github.com/ivanbatic/electric/graph"
	"github.com/ivanbatic/electric/id"
	"github.com/ivanbatic/electric/schema"
)

// decide runs the candidate stream for one change against one
// privilege: unscoped RoleGrants first, then scoped ones whose scope
// contains the change, then any transient-permission RoleGrants the
// engine's transient store reports. It returns the first accepting
// RoleGrant, or nil if none accepts. A non-nil error means a CHECK
// predicate failed to evaluate (an *EvaluationError), or the graph or
// the transient store failed, not that the change was denied.
func (e *Engine) decide(perms Permissions, g graph.Graph, change graph.Change, privilege schema.Privilege, lsn int64, checkColumns bool) (*grant.RoleGrant, error) {
	tp := schema.TablePermission{Relation: change.Relation, Privilege: privilege}

	bucket, ok := perms.roles[tp.Key()]
	if !ok {
		return nil, nil
	}

	if checkColumns && perms.WriteBuffer != nil {
		bucket = perms.WriteBuffer.TransientRoles(bucket, tp)
	}

	columns := columnsForChange(change, checkColumns)
	scopeCache := make(map[string][]graph.ScopeRoot)

	for _, rg := range bucket.Unscoped {
		accept, err := acceptsChange(rg.Grant, change, columns, checkColumns)
		if err != nil {
			return nil, NewEvaluationError(change.Relation, privilege, err)
		}

		if accept {
			return &rg, nil
		}
	}

	for _, rg := range bucket.Scoped {
		roots, err := scopeRoots(g, scopeCache, rg.Role.Scope.Relation, change)
		if err != nil {
			return nil, err
		}

		if !containsRootID(roots, rg.Role.Scope.ID) {
			continue
		}

		accept, err := acceptsChange(rg.Grant, change, columns, checkColumns)
		if err != nil {
			return nil, NewEvaluationError(change.Relation, privilege, err)
		}

		if accept {
			return &rg, nil
		}
	}

	if e.transientStore == nil {
		return nil, nil
	}

	all := make([]grant.RoleGrant, 0, len(bucket.Unscoped)+len(bucket.Scoped))
	all = append(all, bucket.Unscoped...)
	all = append(all, bucket.Scoped...)

	matches, err := e.transientStore.ForRoles(all, lsn)
	if err != nil {
		return nil, fmt.Errorf("query transient store: %w", err)
	}

	for _, m := range matches {
		roots, err := scopeRoots(g, scopeCache, m.Transient.TargetRelation, change)
		if err != nil {
			return nil, err
		}

		if !containsRootID(roots, m.Transient.TargetID) {
			continue
		}

		accept, err := acceptsChange(m.RoleGrant.Grant, change, columns, checkColumns)
		if err != nil {
			return nil, NewEvaluationError(change.Relation, privilege, err)
		}

		if accept {
			rg := m.RoleGrant

			return &rg, nil
		}
	}

	return nil, nil
}

func scopeRoots(g graph.Graph, cache map[string][]graph.ScopeRoot, scopeRelation schema.Relation, change graph.Change) ([]graph.ScopeRoot, error) {
	key := scopeRelation.String()
	if roots, ok := cache[key]; ok {
		return roots, nil
	}

	roots, err := g.ScopeID(scopeRelation, change)
	if err != nil {
		return nil, fmt.Errorf("scope id for %s: %w", scopeRelation, err)
	}

	cache[key] = roots

	return roots, nil
}

func containsRootID(roots []graph.ScopeRoot, target any) bool {
	for _, root := range roots {
		if equalRowID(root.ID, target) {
			return true
		}
	}

	return false
}

func equalRowID(a, b any) bool {
	return fmt.Sprint(a) == fmt.Sprint(b)
}

// columnsForChange computes the column set the column rule tests: an
// insert's record keys, an update's changed columns, or nothing for a
// delete (which has no column rule) and for the read path (which skips
// it entirely).
func columnsForChange(change graph.Change, checkColumns bool) []string {
	if !checkColumns {
		return nil
	}

	switch change.Kind {
	case graph.NewRecord:
		cols := make([]string, 0, len(change.Record))
		for k := range change.Record {
			cols = append(cols, k)
		}

		return cols
	case graph.UpdatedRecord, graph.ScopeMove:
		return change.Columns
	default:
		return nil
	}
}

func acceptsChange(g grant.Grant, change graph.Change, columns []string, checkColumns bool) (bool, error) {
	if checkColumns && !g.AcceptsColumns(columns) {
		return false, nil
	}

	if g.Check == nil {
		return true, nil
	}

	return g.Check.Evaluate(change)
}

// expandScopeMove implements the scope-move expansion rule: an update
// that touches a foreign key participating in any scope produces the
// original update plus a synthetic ScopeMove carrying the post-update
// row, so both the old and new scope get their own authorization
// check. Expansion is never recursive.
func expandScopeMove(perms Permissions, g graph.Graph, change graph.Change) []graph.Change {
	if change.Kind != graph.UpdatedRecord {
		return []graph.Change{change}
	}

	for _, scopeRel := range perms.scopes {
		fks, err := g.ModifiedFKs(scopeRel, change)
		if err != nil || len(fks) == 0 {
			continue
		}

		move := graph.Change{
			Kind:      graph.ScopeMove,
			Relation:  change.Relation,
			ID:        change.ID,
			Record:    mergeRecords(change.OldRecord, change.Record),
			OldRecord: change.OldRecord,
			Columns:   change.Columns,
		}

		return []graph.Change{change, move}
	}

	return []graph.Change{change}
}

func mergeRecords(old, new map[string]any) map[string]any {
	out := make(map[string]any, len(old)+len(new))
	for k, v := range old {
		out[k] = v
	}

	for k, v := range new {
		out[k] = v
	}

	return out
}

func newDecisionLogID() id.DecisionLogID { return id.NewDecisionLogID() }
