package rules

import (
	"testing"

	"github.com/ivanbatic/electric/id"
	"github.com/ivanbatic/electric/role"
	"github.com/ivanbatic/electric/schema"
)

func TestAuthAuthenticated(t *testing.T) {
	anon := Auth{}
	if anon.Authenticated() {
		t.Error("expected an empty Auth to be unauthenticated")
	}

	empty := ""
	emptyUser := Auth{UserID: &empty}
	if emptyUser.Authenticated() {
		t.Error("expected an empty user id to be unauthenticated")
	}

	userID := "user_A"
	auth := Auth{UserID: &userID}
	if !auth.Authenticated() {
		t.Error("expected a non-empty user id to be authenticated")
	}
}

func TestRoleNameForLiteralAndColumn(t *testing.T) {
	literal := AssignSpec{RoleName: "admin"}
	if got := literal.RoleNameFor(map[string]any{}); got != "admin" {
		t.Errorf("RoleNameFor() = %q, want %q", got, "admin")
	}

	byColumn := AssignSpec{RoleColumn: "role"}
	if got := byColumn.RoleNameFor(map[string]any{"role": "editor"}); got != "editor" {
		t.Errorf("RoleNameFor() = %q, want %q", got, "editor")
	}

	if got := byColumn.RoleNameFor(map[string]any{}); got != "" {
		t.Errorf("RoleNameFor() with missing column = %q, want empty", got)
	}
}

func TestRoleRowRole(t *testing.T) {
	assignID := id.NewAssignID()

	unscopedRow := RoleRow{AssignID: assignID, UserID: "u1", RoleName: "admin"}
	if got := unscopedRow.Role(); got.Kind != role.Unscoped {
		t.Errorf("expected an unscoped RoleRow to convert to an Unscoped role, got %v", got.Kind)
	}

	scope := role.Scope{Relation: schema.Relation{Schema: "public", Name: "projects"}, ID: 7}
	scopedRow := RoleRow{AssignID: assignID, UserID: "u1", RoleName: "member", Scope: &scope}

	got := scopedRow.Role()
	if got.Kind != role.Scoped {
		t.Errorf("expected a scoped RoleRow to convert to a Scoped role, got %v", got.Kind)
	}
	if got.Scope.ID != 7 {
		t.Errorf("expected the converted role to carry the row's scope id, got %v", got.Scope.ID)
	}
}
