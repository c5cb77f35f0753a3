// Package plugin defines the lifecycle hook system. Plugins are
// notified as the decision engine runs (a write is about to be
// validated, a role materializes, a read is about to be filtered) and
// can react: logging, metrics, tracing. Each lifecycle hook is a
// separate interface so a plugin opts in only to the events it cares
// about.
package plugin

import (
	"context"

	"github.com/ivanbatic/electric/grant"
	"github.com/ivanbatic/electric/graph"
	"github.com/ivanbatic/electric/role"
)

// Plugin is the base interface all plugins must implement.
type Plugin interface {
	// Name returns a unique human-readable name for the plugin.
	Name() string
}

// BeforeValidate is called before a change is tested against the
// decision engine's write rules.
type BeforeValidate interface {
	OnBeforeValidate(ctx context.Context, change graph.Change) error
}

// AfterValidate is called after a change has been allowed or denied.
// denyReason is empty when the change was allowed.
type AfterValidate interface {
	OnAfterValidate(ctx context.Context, change graph.Change, allowed bool, denyReason string) error
}

// RoleMaterialized is called when a write to an ASSIGN table grants a
// user a role for the remainder of the current transaction.
type RoleMaterialized interface {
	OnRoleMaterialized(ctx context.Context, r role.Role) error
}

// RoleDematerialized is called when a write to an ASSIGN table revokes
// a previously materialized role within the current transaction.
type RoleDematerialized interface {
	OnRoleDematerialized(ctx context.Context, r role.Role) error
}

// BeforeFilterRead is called before an incoming transaction is
// filtered for a read subscription.
type BeforeFilterRead interface {
	OnBeforeFilterRead(ctx context.Context, tx graph.Transaction) error
}

// AfterFilterRead is called after a transaction has been filtered,
// with the RoleGrant that admitted each surviving change.
type AfterFilterRead interface {
	OnAfterFilterRead(ctx context.Context, kept []graph.Change, admittedBy []grant.RoleGrant) error
}

// Shutdown is called during graceful shutdown.
type Shutdown interface {
	OnShutdown(ctx context.Context) error
}
