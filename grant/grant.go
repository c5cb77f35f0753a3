// Package grant defines the compiled Grant/RoleGrant/AssignedRoles
// types, the matchable units the decision engine tests changes
// against.
package grant

import (
	"github.com/ivanbatic/electric/check"
	"github.com/ivanbatic/electric/role"
	"github.com/ivanbatic/electric/schema"
)

// ColumnSet is an efficient membership test over a GRANT's column list.
// A nil *ColumnSet means the grant carries no column restriction.
type ColumnSet struct {
	members map[string]struct{}
}

// NewColumnSet builds a ColumnSet from a column list.
func NewColumnSet(columns ...string) *ColumnSet {
	cs := &ColumnSet{members: make(map[string]struct{}, len(columns))}
	for _, c := range columns {
		cs.members[c] = struct{}{}
	}

	return cs
}

// Contains reports whether column is in the set.
func (cs *ColumnSet) Contains(column string) bool {
	if cs == nil {
		return false
	}

	_, ok := cs.members[column]

	return ok
}

// ContainsAll reports whether every column is in the set. A nil set
// never contains all of a non-empty list, unlike the grant rule that
// an unrestricted grant (nil Columns) accepts anything; callers should
// check for nil *ColumnSet before calling ContainsAll to get that
// "accept anything" behavior.
func (cs *ColumnSet) ContainsAll(columns []string) bool {
	if cs == nil {
		return len(columns) == 0
	}

	for _, c := range columns {
		if _, ok := cs.members[c]; !ok {
			return false
		}
	}

	return true
}

// Grant is compiled from a DDLX GRANT statement.
type Grant struct {
	Table         schema.Relation
	Privilege     schema.Privilege
	RoleName      string
	Columns       *ColumnSet
	Check         check.Predicate
	ScopeRelation *schema.Relation
}

// Matches reports whether r satisfies g: the role's name equals the
// grant's role name and, when the grant carries a scope relation, the
// role is scoped and agrees on it.
func Matches(r role.Role, g Grant) bool {
	if r.Name() != g.RoleName {
		return false
	}

	if g.ScopeRelation != nil {
		return r.Kind == role.Scoped && r.Scope.Relation.Equal(*g.ScopeRelation)
	}

	return true
}

// RoleGrant is a matched pair: a role the user holds, and a grant it
// satisfies. The primary matchable unit the decision engine tests.
type RoleGrant struct {
	Role  role.Role
	Grant Grant
}

// AssignedRoles buckets the RoleGrants matching one TablePermission into
// two disjoint lists so the decision engine can test the cheap,
// graph-free unscoped candidates before walking the graph for the
// scoped ones.
type AssignedRoles struct {
	Scoped   []RoleGrant
	Unscoped []RoleGrant
}

// Extend returns a copy of a with more RoleGrants appended to the
// matching bucket.
func (a AssignedRoles) Extend(roleGrants []RoleGrant) AssignedRoles {
	out := AssignedRoles{
		Scoped:   append([]RoleGrant{}, a.Scoped...),
		Unscoped: append([]RoleGrant{}, a.Unscoped...),
	}

	for _, rg := range roleGrants {
		if rg.Role.HasScope() {
			out.Scoped = append(out.Scoped, rg)
		} else {
			out.Unscoped = append(out.Unscoped, rg)
		}
	}

	return out
}

// AcceptsColumns applies the column rule: a grant with a defined column
// list accepts only when every provided column is in that list.
func (g Grant) AcceptsColumns(columns []string) bool {
	if g.Columns == nil {
		return true
	}

	return g.Columns.ContainsAll(columns)
}
