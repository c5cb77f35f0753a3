// Package electric implements the permissions core of a bidirectional
// replication system: a DDLX-dialect GRANT/ASSIGN decision engine that
// validates inbound writes and filters outbound reads against
// row-level, possibly scoped, role-based grants.
//
//	perms := electric.New(rules.Auth{UserID: &userID})
//	perms = electric.Update(perms, electric.UpdateInput{Rules: compiledRules, Roles: roleRows})
//
//	eng := electric.NewEngine()
//	perms, err := eng.ValidateWrite(ctx, perms, writeGraph, tx)
package electric

import (
	"github.com/ivanbatic/electric/check"
	"github.com/ivanbatic/electric/grant"
	"github.com/ivanbatic/electric/role"
	"github.com/ivanbatic/electric/rules"
	"github.com/ivanbatic/electric/schema"
	"github.com/ivanbatic/electric/transient"
	"github.com/ivanbatic/electric/trigger"
	"github.com/ivanbatic/electric/writebuffer"
)

// Permissions is the immutable-after-build lookup value the decision
// engine tests changes against. Every field but WriteBuffer is
// replaced wholesale on update, never mutated in place.
type Permissions struct {
	Auth   rules.Auth
	Source rules.Rules

	roles       map[string]grant.AssignedRoles
	grants      []grant.Grant
	scopedRoles map[string][]role.Role
	scopes      []schema.Relation
	triggers    *trigger.Table

	WriteBuffer  *writebuffer.WriteBuffer
	TransientLUT transient.Store
}

// New returns an empty Permissions for auth, not yet compiled. Call
// Update to populate its lookup tables before using it with the
// engine.
func New(auth rules.Auth) Permissions {
	return Permissions{
		Auth:        auth,
		roles:       make(map[string]grant.AssignedRoles),
		scopedRoles: make(map[string][]role.Role),
		WriteBuffer: writebuffer.New(),
	}
}

// UpdateInput carries the inputs a rebuild may refresh. A nil Rules
// keeps the current rules. Roles is always used as given: Permissions
// does not retain earlier role rows, so a nil Roles compiles with no
// materialized roles. PredicateCompiler overrides how GRANT CHECK
// conditions compile into predicates; nil falls back to
// check.DefaultCompiler.
type UpdateInput struct {
	Rules             *rules.Rules
	Roles             []rules.RoleRow
	PredicateCompiler check.PredicateCompiler
}

// Update recompiles perms against any inputs UpdateInput supplies,
// keeping the others as they were. It never mutates perms; it returns
// a new value.
func Update(perms Permissions, in UpdateInput) Permissions {
	r := perms.Source
	if in.Rules != nil {
		r = *in.Rules
	}

	roleRows := in.Roles

	compiler := in.PredicateCompiler
	if compiler == nil {
		compiler = check.DefaultCompiler()
	}

	compiled := compile(perms.Auth, r, roleRows, compiler)
	compiled.WriteBuffer = perms.WriteBuffer
	compiled.TransientLUT = perms.TransientLUT

	return compiled
}

// Recompile is Update, using the Engine's configured PredicateCompiler
// instead of the default one. Use this when the engine was built with
// WithPredicateCompiler so a host application's GRANT CHECK compiler
// also governs recompilation.
func (e *Engine) Recompile(perms Permissions, in UpdateInput) Permissions {
	if in.PredicateCompiler == nil {
		in.PredicateCompiler = e.predicateCompiler
	}

	return Update(perms, in)
}

// AssignedRoles returns every Role a Permissions value currently
// recognizes as a candidate, scoped and unscoped alike, deduplicated by
// Role.Key.
func AssignedRoles(perms Permissions) []role.Role {
	seen := make(map[string]struct{})

	var out []role.Role

	add := func(r role.Role) {
		if _, ok := seen[r.Key()]; ok {
			return
		}

		seen[r.Key()] = struct{}{}
		out = append(out, r)
	}

	for _, bucket := range perms.roles {
		for _, rg := range bucket.Unscoped {
			add(rg.Role)
		}

		for _, rg := range bucket.Scoped {
			add(rg.Role)
		}
	}

	return out
}

// Stats summarizes a Permissions value's compiled tables, for
// diagnostics and tests.
type Stats struct {
	Buckets int
	Grants  int
	Scopes  int
}

// Stats reports the size of perms's compiled lookup tables.
func (perms Permissions) Stats() Stats {
	return Stats{
		Buckets: len(perms.roles),
		Grants:  len(perms.grants),
		Scopes:  len(perms.scopes),
	}
}
