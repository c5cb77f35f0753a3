// Package role defines the tagged Role union: the four ways a request
// can carry authority, per the DDLX permissions model.
package role

import (
	"fmt"

	"github.com/ivanbatic/electric/id"
	"github.com/ivanbatic/electric/schema"
)

// Kind discriminates the four Role variants. Implementations should
// treat this as a closed tagged union and switch over it rather than
// modeling the variants as a type hierarchy.
type Kind int

const (
	// Anyone matches every request, authenticated or not.
	Anyone Kind = iota
	// Authenticated matches any request whose auth identifies a user.
	Authenticated
	// Scoped is granted by an ASSIGN rooted at a specific row.
	Scoped
	// Unscoped is granted by an ASSIGN that carries no scope root.
	Unscoped
)

func (k Kind) String() string {
	switch k {
	case Anyone:
		return "anyone"
	case Authenticated:
		return "authenticated"
	case Scoped:
		return "scoped"
	case Unscoped:
		return "unscoped"
	default:
		return "unknown"
	}
}

// Scope is a row that is the root of a subtree of related rows within
// which a scoped role applies.
type Scope struct {
	Relation schema.Relation
	ID       any
}

// Role is a tagged value carrying authority. Only the fields relevant
// to Kind are populated; AssignID is zero for the two synthetic
// variants since they originate from no ASSIGN statement.
type Role struct {
	Kind     Kind
	AssignID id.AssignID
	UserID   string
	RoleName string
	Scope    Scope
}

// AnyoneRole returns the synthetic role injected into every compiled
// Permissions value.
func AnyoneRole() Role { return Role{Kind: Anyone} }

// AuthenticatedRole returns the synthetic role injected when auth
// identifies a user.
func AuthenticatedRole(userID string) Role {
	return Role{Kind: Authenticated, UserID: userID}
}

// ScopedRole returns a role granted by an ASSIGN rooted at scope.
func ScopedRole(assignID id.AssignID, userID, roleName string, scope Scope) Role {
	return Role{Kind: Scoped, AssignID: assignID, UserID: userID, RoleName: roleName, Scope: scope}
}

// UnscopedRole returns a role granted by an ASSIGN carrying no scope root.
func UnscopedRole(assignID id.AssignID, userID, roleName string) Role {
	return Role{Kind: Unscoped, AssignID: assignID, UserID: userID, RoleName: roleName}
}

// HasScope is a trivial variant test, not a derived computation.
func (r Role) HasScope() bool { return r.Kind == Scoped }

// Name returns the name grants match against: the literal role name
// for Scoped/Unscoped, and the fixed synthetic names for the other two.
func (r Role) Name() string {
	switch r.Kind {
	case Anyone:
		return "anyone"
	case Authenticated:
		return "authenticated"
	default:
		return r.RoleName
	}
}

// Key returns a value identifying this exact role instance, used to
// deduplicate and to remove a previously materialized transient role.
func (r Role) Key() string {
	switch r.Kind {
	case Anyone:
		return "anyone"
	case Authenticated:
		return "authenticated:" + r.UserID
	case Scoped:
		return r.AssignID.String() + ":" + r.UserID + ":" + r.RoleName + ":" + r.Scope.Relation.String() + ":" + fmt.Sprint(r.Scope.ID)
	default:
		return r.AssignID.String() + ":" + r.UserID + ":" + r.RoleName
	}
}
