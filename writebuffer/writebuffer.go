// Package writebuffer decorates a graph.Graph for the current
// transaction: it hands the pending, not yet committed changes to the
// upstream graph, which keeps them in its own overlay, and tracks the
// transient roles those changes to ASSIGN tables materialize or
// dematerialize for the remainder of that same transaction.
package writebuffer

import (
	"github.com/ivanbatic/electric/grant"
	"github.com/ivanbatic/electric/graph"
	"github.com/ivanbatic/electric/schema"
	"github.com/ivanbatic/electric/trigger"
)

// WriteBuffer overlays an upstream graph.Graph. It implements
// graph.Graph itself so the decision engine can walk it exactly like
// any other graph, oblivious to the overlay underneath.
type WriteBuffer struct {
	upstream  graph.Graph
	transient map[string][]grant.RoleGrant
}

// New returns an empty WriteBuffer with no upstream graph attached.
func New() *WriteBuffer {
	return &WriteBuffer{transient: make(map[string][]grant.RoleGrant)}
}

// WithUpstream returns a copy of wb backed by upstream.
func (wb *WriteBuffer) WithUpstream(upstream graph.Graph) *WriteBuffer {
	out := &WriteBuffer{upstream: upstream, transient: wb.transient}

	return out
}

// ApplyChange delegates to the upstream graph, which is expected to
// hold its own pending-write overlay (see graph/memtest for a
// reference implementation of that overlay).
func (wb *WriteBuffer) ApplyChange(scopeRelations []schema.Relation, change graph.Change) error {
	return wb.upstream.ApplyChange(scopeRelations, change)
}

// ScopeID delegates to the upstream graph.
func (wb *WriteBuffer) ScopeID(scopeRelation schema.Relation, change graph.Change) ([]graph.ScopeRoot, error) {
	return wb.upstream.ScopeID(scopeRelation, change)
}

// ModifiedFKs delegates to the upstream graph.
func (wb *WriteBuffer) ModifiedFKs(scopeRelation schema.Relation, change graph.Change) ([]string, error) {
	return wb.upstream.ModifiedFKs(scopeRelation, change)
}

// TransientRoles folds any buffered transient RoleGrants for tp into
// bucket, so the decision engine sees them alongside the roles the
// compiled Permissions value already carries.
func (wb *WriteBuffer) TransientRoles(bucket grant.AssignedRoles, tp schema.TablePermission) grant.AssignedRoles {
	pending := wb.transient[tp.Key()]
	if len(pending) == 0 {
		return bucket
	}

	return bucket.Extend(pending)
}

// UpdateTransientRoles matches each trigger Event's role against every
// grant in effect, and buffers the resulting RoleGrants under the
// TablePermission key the decision engine looks them up by when it
// later evaluates a write to that grant's table.
func (wb *WriteBuffer) UpdateTransientRoles(events []trigger.Event, allGrants []grant.Grant) *WriteBuffer {
	out := &WriteBuffer{upstream: wb.upstream, transient: copyTransient(wb.transient)}

	for _, ev := range events {
		for _, g := range allGrants {
			if !grant.Matches(ev.Role, g) {
				continue
			}

			key := schema.TablePermission{Relation: g.Table, Privilege: g.Privilege}.Key()
			rg := grant.RoleGrant{Role: ev.Role, Grant: g}

			if ev.Insert {
				out.transient[key] = append(out.transient[key], rg)
			} else {
				out.transient[key] = removeRoleGrant(out.transient[key], rg)
			}
		}
	}

	return out
}

// ReceiveTransaction stabilizes the write buffer once its transaction
// has committed upstream. The overlay of pending row changes lives in
// the upstream graph, not here, so this only exists to give callers a
// single, symmetric point to drop a transaction's transient roles once
// they have been folded into a freshly compiled Permissions value.
func (wb *WriteBuffer) ReceiveTransaction(_ graph.Transaction) *WriteBuffer {
	return New().WithUpstream(wb.upstream)
}

func copyTransient(m map[string][]grant.RoleGrant) map[string][]grant.RoleGrant {
	out := make(map[string][]grant.RoleGrant, len(m))
	for k, v := range m {
		out[k] = append([]grant.RoleGrant{}, v...)
	}

	return out
}

func removeRoleGrant(rgs []grant.RoleGrant, target grant.RoleGrant) []grant.RoleGrant {
	out := make([]grant.RoleGrant, 0, len(rgs))

	for _, rg := range rgs {
		if rg.Role.Key() == target.Role.Key() && rg.Grant.Table.Equal(target.Grant.Table) &&
			rg.Grant.Privilege == target.Grant.Privilege {
			continue
		}

		out = append(out, rg)
	}

	return out
}
