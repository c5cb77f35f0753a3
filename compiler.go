package electric

import (
	"github.com/ivanbatic/electric/check"
	"github.com/ivanbatic/electric/grant"
	"github.com/ivanbatic/electric/role"
	"github.com/ivanbatic/electric/rules"
	"github.com/ivanbatic/electric/schema"
	"github.com/ivanbatic/electric/trigger"
)

// compile runs the rules compiler: prune stale roles, inject the
// synthetic Anyone/Authenticated roles, compile each grant's CHECK
// expression and column list, match roles to grants, invert and
// classify the result into the engine's lookup tables, and compile the
// assign triggers.
func compile(auth rules.Auth, r rules.Rules, roleRows []rules.RoleRow, compiler check.PredicateCompiler) Permissions {
	liveAssigns := make(map[string]struct{}, len(r.Assigns))
	for _, a := range r.Assigns {
		liveAssigns[a.ID.String()] = struct{}{}
	}

	candidates := pruneAndInject(auth, roleRows, liveAssigns)

	compiledGrants := make([]grant.Grant, 0, len(r.Grants))
	for _, gs := range r.Grants {
		compiledGrants = append(compiledGrants, compileGrant(gs, compiler))
	}

	buckets := make(map[string]grant.AssignedRoles)
	scopedRoles := make(map[string][]role.Role)
	scopeSet := make(map[string]schema.Relation)

	for _, rl := range candidates {
		for _, g := range compiledGrants {
			if !grant.Matches(rl, g) {
				continue
			}

			tp := schema.TablePermission{Relation: g.Table, Privilege: g.Privilege}
			buckets[tp.Key()] = buckets[tp.Key()].Extend([]grant.RoleGrant{{Role: rl, Grant: g}})
		}

		if rl.HasScope() {
			key := relKey(rl.Scope.Relation)
			scopedRoles[key] = append(scopedRoles[key], rl)
			scopeSet[key] = rl.Scope.Relation
		}
	}

	scopes := make([]schema.Relation, 0, len(scopeSet))
	for _, rel := range scopeSet {
		scopes = append(scopes, rel)
	}

	return Permissions{
		Auth:        auth,
		Source:      r,
		roles:       buckets,
		grants:      compiledGrants,
		scopedRoles: scopedRoles,
		scopes:      scopes,
		triggers:    trigger.Compile(r.Assigns),
	}
}

func relKey(r schema.Relation) string { return r.Schema + "." + r.Name }

// pruneAndInject drops any materialized role whose assign_id no longer
// names a live ASSIGN statement, then adds the two synthetic roles
// every Permissions value carries.
func pruneAndInject(auth rules.Auth, roleRows []rules.RoleRow, liveAssigns map[string]struct{}) []role.Role {
	candidates := make([]role.Role, 0, len(roleRows)+2)

	candidates = append(candidates, role.AnyoneRole())
	if auth.Authenticated() {
		candidates = append(candidates, role.AuthenticatedRole(*auth.UserID))
	}

	for _, rr := range roleRows {
		if _, ok := liveAssigns[rr.AssignID.String()]; !ok {
			continue
		}

		candidates = append(candidates, rr.Role())
	}

	return candidates
}

func compileGrant(gs rules.GrantSpec, compiler check.PredicateCompiler) grant.Grant {
	g := grant.Grant{
		Table:         gs.Table,
		Privilege:     gs.Privilege,
		RoleName:      gs.RoleName,
		ScopeRelation: gs.Scope,
	}

	if gs.Columns != nil {
		g.Columns = grant.NewColumnSet(gs.Columns...)
	}

	if len(gs.Check) > 0 {
		pred, err := compiler.Compile(gs.Check)
		if err == nil {
			g.Check = pred
		}
	}

	return g
}
