package writebuffer

import (
	"testing"

	"github.com/ivanbatic/electric/grant"
	"github.com/ivanbatic/electric/graph"
	"github.com/ivanbatic/electric/graph/memtest"
	"github.com/ivanbatic/electric/id"
	"github.com/ivanbatic/electric/role"
	"github.com/ivanbatic/electric/schema"
	"github.com/ivanbatic/electric/trigger"
)

func issuesRel() schema.Relation { return schema.Relation{Schema: "public", Name: "issues"} }

func tpSelect() schema.TablePermission {
	return schema.TablePermission{Relation: issuesRel(), Privilege: schema.Select}
}

func TestTransientRolesExtendsBucket(t *testing.T) {
	wb := New()
	assignID := id.NewAssignID()
	rg := role.UnscopedRole(assignID, "u1", "member")

	g := grant.Grant{Table: issuesRel(), Privilege: schema.Select, RoleName: "member"}
	wb = wb.UpdateTransientRoles([]trigger.Event{{Insert: true, Role: rg}}, []grant.Grant{g})

	bucket := wb.TransientRoles(grant.AssignedRoles{}, tpSelect())
	if len(bucket.Unscoped) != 1 {
		t.Fatalf("expected one transient unscoped RoleGrant, got %+v", bucket)
	}
}

func TestUpdateTransientRolesRemovesOnDematerialize(t *testing.T) {
	wb := New()
	assignID := id.NewAssignID()
	rl := role.UnscopedRole(assignID, "u1", "member")
	g := grant.Grant{Table: issuesRel(), Privilege: schema.Select, RoleName: "member"}

	wb = wb.UpdateTransientRoles([]trigger.Event{{Insert: true, Role: rl}}, []grant.Grant{g})
	wb = wb.UpdateTransientRoles([]trigger.Event{{Insert: false, Role: rl}}, []grant.Grant{g})

	bucket := wb.TransientRoles(grant.AssignedRoles{}, tpSelect())
	if len(bucket.Unscoped) != 0 {
		t.Fatalf("expected the transient grant to be removed, got %+v", bucket)
	}
}

func TestUpdateTransientRolesIgnoresNonMatchingGrants(t *testing.T) {
	wb := New()
	rl := role.UnscopedRole(id.NewAssignID(), "u1", "admin")
	g := grant.Grant{Table: issuesRel(), Privilege: schema.Select, RoleName: "member"}

	wb = wb.UpdateTransientRoles([]trigger.Event{{Insert: true, Role: rl}}, []grant.Grant{g})

	bucket := wb.TransientRoles(grant.AssignedRoles{}, tpSelect())
	if len(bucket.Unscoped) != 0 {
		t.Errorf("expected no transient grant for a role name mismatch, got %+v", bucket)
	}
}

func TestApplyChangeDelegatesToUpstream(t *testing.T) {
	upstream := memtest.New()
	wb := New().WithUpstream(upstream)

	change := graph.Change{Kind: graph.NewRecord, Relation: issuesRel(), ID: 1, Record: map[string]any{"id": 1}}
	if err := wb.ApplyChange(nil, change); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	roots, err := wb.ScopeID(issuesRel(), graph.Change{Relation: issuesRel(), ID: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(roots) != 1 || roots[0].ID != 1 {
		t.Fatalf("expected the applied change to be visible through the write buffer, got %+v", roots)
	}
}

func TestReceiveTransactionResetsTransientRoles(t *testing.T) {
	upstream := memtest.New()
	wb := New().WithUpstream(upstream)

	rl := role.UnscopedRole(id.NewAssignID(), "u1", "member")
	g := grant.Grant{Table: issuesRel(), Privilege: schema.Select, RoleName: "member"}
	wb = wb.UpdateTransientRoles([]trigger.Event{{Insert: true, Role: rl}}, []grant.Grant{g})

	next := wb.ReceiveTransaction(graph.Transaction{})

	bucket := next.TransientRoles(grant.AssignedRoles{}, tpSelect())
	if len(bucket.Unscoped) != 0 {
		t.Errorf("expected ReceiveTransaction to drop buffered transient roles, got %+v", bucket)
	}
}
