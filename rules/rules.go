// Package rules defines the raw, uncompiled rule records the rules
// compiler consumes: GRANT and ASSIGN statements already parsed by an
// external DDLX compiler, plus the materialized assignment rows an
// external query layer produces from them.
package rules

import (
	"github.com/ivanbatic/electric/check"
	"github.com/ivanbatic/electric/id"
	"github.com/ivanbatic/electric/role"
	"github.com/ivanbatic/electric/schema"
)

// GrantSpec is one parsed GRANT statement, prior to compiling its CHECK
// expression and column list.
type GrantSpec struct {
	Table     schema.Relation
	Privilege schema.Privilege
	RoleName  string
	Columns   []string
	Check     []check.Condition
	Scope     *schema.Relation
}

// AssignSpec is one parsed ASSIGN statement: it computes, from rows in
// Table, which role a user holds.
type AssignSpec struct {
	ID id.AssignID

	Table      schema.Relation
	UserColumn string

	// Exactly one of RoleName or RoleColumn is set: a literal role name,
	// or the name of a column holding it.
	RoleName   string
	RoleColumn string

	Scope       *schema.Relation
	ScopeColumn string
	If          []check.Condition
}

// RoleNameFor resolves the role name an assign row of this spec
// carries, given the row's column values. The trigger engine calls
// this when computing the role a materialized write binds or
// unbinds.
func (a AssignSpec) RoleNameFor(record map[string]any) string {
	if a.RoleColumn == "" {
		return a.RoleName
	}

	if v, ok := record[a.RoleColumn]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}

	return ""
}

// RoleRow is one materialized assignment row: the result of an
// external query layer evaluating an AssignSpec against live data.
type RoleRow struct {
	AssignID id.AssignID
	UserID   string
	RoleName string
	Scope    *role.Scope
}

// Role converts a materialized row into the Role value the compiler
// injects into a Permissions value's candidate set.
func (r RoleRow) Role() role.Role {
	if r.Scope != nil {
		return role.ScopedRole(r.AssignID, r.UserID, r.RoleName, *r.Scope)
	}

	return role.UnscopedRole(r.AssignID, r.UserID, r.RoleName)
}

// Auth identifies the session a Permissions value is compiled for.
type Auth struct {
	UserID *string
	Claims map[string]any
}

// Authenticated reports whether this session carries a known user id.
func (a Auth) Authenticated() bool { return a.UserID != nil && *a.UserID != "" }

// Rules is the full compiled-rules input: every GRANT and ASSIGN
// statement in effect.
type Rules struct {
	Grants  []GrantSpec
	Assigns []AssignSpec
}
