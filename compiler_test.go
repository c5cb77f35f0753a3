package electric

import (
	"testing"

	"github.com/ivanbatic/electric/check"
	"github.com/ivanbatic/electric/id"
	"github.com/ivanbatic/electric/role"
	"github.com/ivanbatic/electric/rules"
	"github.com/ivanbatic/electric/schema"
)

func TestPruneAndInjectDropsStaleAssigns(t *testing.T) {
	userID := "user_A"
	auth := rules.Auth{UserID: &userID}

	liveAssignID := id.NewAssignID()
	staleAssignID := id.NewAssignID()

	roleRows := []rules.RoleRow{
		{AssignID: liveAssignID, UserID: userID, RoleName: "admin"},
		{AssignID: staleAssignID, UserID: userID, RoleName: "ghost"},
	}

	candidates := pruneAndInject(auth, roleRows, map[string]struct{}{liveAssignID.String(): {}})

	var names []string
	for _, c := range candidates {
		names = append(names, c.Name())
	}

	found := false
	for _, n := range names {
		if n == "ghost" {
			t.Errorf("expected the stale role to be pruned, got candidates %v", names)
		}
		if n == "admin" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected the live role to survive pruning, got %v", names)
	}
}

func TestPruneAndInjectAddsSyntheticRoles(t *testing.T) {
	anon := pruneAndInject(rules.Auth{}, nil, nil)
	if len(anon) != 1 || anon[0].Kind != role.Anyone {
		t.Fatalf("expected only the Anyone role for an unauthenticated session, got %+v", anon)
	}

	userID := "user_A"
	authed := pruneAndInject(rules.Auth{UserID: &userID}, nil, nil)
	if len(authed) != 2 {
		t.Fatalf("expected Anyone+Authenticated for an authenticated session, got %+v", authed)
	}
}

func TestCompileBucketsByTablePermission(t *testing.T) {
	userID := "user_A"
	auth := rules.Auth{UserID: &userID}
	assignID := id.NewAssignID()

	r := rules.Rules{
		Grants: []rules.GrantSpec{
			{Table: schema.Relation{Schema: "public", Name: "issues"}, Privilege: schema.Select, RoleName: "admin"},
		},
		Assigns: []rules.AssignSpec{
			{ID: assignID, Table: schema.Relation{Schema: "public", Name: "project_members"}, UserColumn: "user_id", RoleName: "admin"},
		},
	}

	roleRows := []rules.RoleRow{{AssignID: assignID, UserID: userID, RoleName: "admin"}}

	perms := compile(auth, r, roleRows, check.DefaultCompiler())

	tp := schema.TablePermission{Relation: schema.Relation{Schema: "public", Name: "issues"}, Privilege: schema.Select}
	bucket, ok := perms.roles[tp.Key()]
	if !ok || len(bucket.Unscoped) != 1 {
		t.Fatalf("expected one unscoped RoleGrant for the admin bucket, got %+v (ok=%v)", bucket, ok)
	}

	if perms.triggers == nil {
		t.Error("expected the compiler to build a trigger table")
	}
}

func TestCompileGroupsScopedRolesByScopeRelation(t *testing.T) {
	userID := "user_A"
	auth := rules.Auth{UserID: &userID}
	assignID := id.NewAssignID()
	scope := schema.Relation{Schema: "public", Name: "projects"}

	roleRows := []rules.RoleRow{
		{AssignID: assignID, UserID: userID, RoleName: "member", Scope: &role.Scope{Relation: scope, ID: 7}},
	}

	r := rules.Rules{Assigns: []rules.AssignSpec{{ID: assignID, Table: scope, UserColumn: "user_id", RoleName: "member"}}}

	perms := compile(auth, r, roleRows, check.DefaultCompiler())

	if len(perms.scopes) != 1 || !perms.scopes[0].Equal(scope) {
		t.Fatalf("expected the scope relation to be recorded, got %+v", perms.scopes)
	}
}
