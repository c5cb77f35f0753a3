// Package trigger implements the transient-role event table: given a
// write to an ASSIGN table and the user id the permission check is
// running for, it decides which role the write materializes or
// dematerializes for the remainder of the transaction.
package trigger

import (
	"github.com/ivanbatic/electric/graph"
	"github.com/ivanbatic/electric/role"
	"github.com/ivanbatic/electric/rules"
)

// Event is one transient role change a write produces. Insert true
// means the role should be added to the write buffer's candidate set;
// false means it should be removed.
type Event struct {
	Insert bool
	Role   role.Role
}

// Fire computes the Events a change to an ASSIGN-table row produces for
// the given AssignSpec, relative to the user id the check is running
// for. At most two events result from a single change: an update that
// moves a row's user column can both drop the old user's role and grant
// the new user's role, but since each permission check only cares
// about one user id, at most one of those two is ever relevant.
func Fire(spec rules.AssignSpec, change graph.Change, userID string) []Event {
	if !spec.Table.Equal(change.Relation) {
		return nil
	}

	switch change.Kind {
	case graph.NewRecord:
		if rowUser(change.Record, spec.UserColumn) != userID {
			return nil
		}

		return []Event{{Insert: true, Role: roleFor(spec, change.Record, userID)}}

	case graph.DeletedRecord:
		if rowUser(change.OldRecord, spec.UserColumn) != userID {
			return nil
		}

		return []Event{{Insert: false, Role: roleFor(spec, change.OldRecord, userID)}}

	case graph.UpdatedRecord:
		merged := mergeRecord(change.OldRecord, change.Record)

		oldUser := rowUser(change.OldRecord, spec.UserColumn)
		newUser := rowUser(merged, spec.UserColumn)

		switch {
		case oldUser == userID && newUser == userID:
			return []Event{
				{Insert: false, Role: roleFor(spec, change.OldRecord, userID)},
				{Insert: true, Role: roleFor(spec, merged, userID)},
			}
		case oldUser == userID && newUser != userID:
			return []Event{{Insert: false, Role: roleFor(spec, change.OldRecord, userID)}}
		case oldUser != userID && newUser == userID:
			return []Event{{Insert: true, Role: roleFor(spec, merged, userID)}}
		default:
			return nil
		}
	}

	return nil
}

func rowUser(record map[string]any, userColumn string) string {
	if record == nil {
		return ""
	}

	v, ok := record[userColumn]
	if !ok {
		return ""
	}

	s, _ := v.(string)

	return s
}

func mergeRecord(old, new map[string]any) map[string]any {
	out := make(map[string]any, len(old)+len(new))
	for k, v := range old {
		out[k] = v
	}

	for k, v := range new {
		out[k] = v
	}

	return out
}

func roleScope(spec rules.AssignSpec, record map[string]any) *role.Scope {
	if spec.Scope == nil {
		return nil
	}

	return &role.Scope{Relation: *spec.Scope, ID: record[spec.ScopeColumn]}
}

func roleFor(spec rules.AssignSpec, record map[string]any, userID string) role.Role {
	roleName := spec.RoleNameFor(record)

	if scope := roleScope(spec, record); scope != nil {
		return role.ScopedRole(spec.ID, userID, roleName, *scope)
	}

	return role.UnscopedRole(spec.ID, userID, roleName)
}
