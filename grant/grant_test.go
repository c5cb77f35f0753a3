package grant

import (
	"testing"

	"github.com/ivanbatic/electric/id"
	"github.com/ivanbatic/electric/role"
	"github.com/ivanbatic/electric/schema"
)

func TestColumnSetContains(t *testing.T) {
	cs := NewColumnSet("title", "body")

	if !cs.Contains("title") {
		t.Error("expected set to contain title")
	}
	if cs.Contains("priority") {
		t.Error("expected set to not contain priority")
	}

	var nilSet *ColumnSet
	if nilSet.Contains("title") {
		t.Error("expected nil set to contain nothing")
	}
}

func TestColumnSetContainsAll(t *testing.T) {
	cs := NewColumnSet("title", "body")

	if !cs.ContainsAll([]string{"title", "body"}) {
		t.Error("expected set to contain all of its own members")
	}
	if cs.ContainsAll([]string{"title", "priority"}) {
		t.Error("expected set to reject an unknown column")
	}

	var nilSet *ColumnSet
	if !nilSet.ContainsAll(nil) {
		t.Error("expected nil set to contain an empty list")
	}
	if nilSet.ContainsAll([]string{"title"}) {
		t.Error("expected nil set to reject a non-empty list")
	}
}

func TestGrantAcceptsColumns(t *testing.T) {
	unrestricted := Grant{}
	if !unrestricted.AcceptsColumns([]string{"anything"}) {
		t.Error("expected a grant with no column list to accept any columns")
	}

	restricted := Grant{Columns: NewColumnSet("title")}
	if !restricted.AcceptsColumns([]string{"title"}) {
		t.Error("expected restricted grant to accept its own column")
	}
	if restricted.AcceptsColumns([]string{"title", "priority"}) {
		t.Error("expected restricted grant to reject an extra column")
	}
}

func issuesRel() schema.Relation   { return schema.Relation{Schema: "public", Name: "issues"} }
func projectsRel() schema.Relation { return schema.Relation{Schema: "public", Name: "projects"} }

func TestMatchesUnscopedGrant(t *testing.T) {
	g := Grant{RoleName: "admin"}

	assignID := id.NewAssignID()

	if !Matches(role.UnscopedRole(assignID, "u1", "admin"), g) {
		t.Error("expected matching role name to satisfy an unscoped grant")
	}
	if Matches(role.UnscopedRole(assignID, "u1", "member"), g) {
		t.Error("expected mismatched role name to not satisfy the grant")
	}
}

func TestMatchesScopedGrant(t *testing.T) {
	scope := issuesRel()
	g := Grant{RoleName: "member", ScopeRelation: &scope}

	assignID := id.NewAssignID()

	scopedRole := role.ScopedRole(assignID, "u1", "member", role.Scope{Relation: scope, ID: 7})
	if !Matches(scopedRole, g) {
		t.Error("expected a scoped role agreeing on the scope relation to match")
	}

	wrongScope := role.ScopedRole(assignID, "u1", "member", role.Scope{Relation: projectsRel(), ID: 7})
	if Matches(wrongScope, g) {
		t.Error("expected a scoped role on a different relation to not match")
	}

	unscoped := role.UnscopedRole(assignID, "u1", "member")
	if Matches(unscoped, g) {
		t.Error("expected an unscoped role to not satisfy a scope-relation grant")
	}
}

func TestAssignedRolesExtendBucketsByScope(t *testing.T) {
	var a AssignedRoles

	scoped := RoleGrant{Role: role.ScopedRole(id.NewAssignID(), "u1", "member", role.Scope{Relation: issuesRel(), ID: 1})}
	unscoped := RoleGrant{Role: role.UnscopedRole(id.NewAssignID(), "u1", "admin")}

	out := a.Extend([]RoleGrant{scoped, unscoped})

	if len(out.Scoped) != 1 || len(out.Unscoped) != 1 {
		t.Fatalf("expected one scoped and one unscoped entry, got %d/%d", len(out.Scoped), len(out.Unscoped))
	}

	// Extend must not mutate the receiver.
	if len(a.Scoped) != 0 || len(a.Unscoped) != 0 {
		t.Error("expected Extend to leave the original AssignedRoles untouched")
	}
}
