package plugin

import (
	"context"
	"log/slog"

	"github.com/ivanbatic/electric/grant"
	"github.com/ivanbatic/electric/graph"
	"github.com/ivanbatic/electric/role"
)

type beforeValidateEntry struct {
	name string
	hook BeforeValidate
}
type afterValidateEntry struct {
	name string
	hook AfterValidate
}
type roleMaterializedEntry struct {
	name string
	hook RoleMaterialized
}
type roleDematerializedEntry struct {
	name string
	hook RoleDematerialized
}
type beforeFilterReadEntry struct {
	name string
	hook BeforeFilterRead
}
type afterFilterReadEntry struct {
	name string
	hook AfterFilterRead
}
type shutdownEntry struct {
	name string
	hook Shutdown
}

// Registry holds registered plugins and dispatches lifecycle events.
// It type-caches plugins at registration time so emit calls iterate
// only over plugins implementing the relevant hook.
type Registry struct {
	plugins []Plugin
	logger  *slog.Logger

	beforeValidate     []beforeValidateEntry
	afterValidate      []afterValidateEntry
	roleMaterialized   []roleMaterializedEntry
	roleDematerialized []roleDematerializedEntry
	beforeFilterRead   []beforeFilterReadEntry
	afterFilterRead    []afterFilterReadEntry
	shutdown           []shutdownEntry
}

// NewRegistry creates a plugin registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{logger: logger}
}

// Register adds a plugin and type-asserts it into all applicable hook
// caches. Plugins are notified in registration order.
func (r *Registry) Register(p Plugin) {
	r.plugins = append(r.plugins, p)
	name := p.Name()

	if h, ok := p.(BeforeValidate); ok {
		r.beforeValidate = append(r.beforeValidate, beforeValidateEntry{name, h})
	}
	if h, ok := p.(AfterValidate); ok {
		r.afterValidate = append(r.afterValidate, afterValidateEntry{name, h})
	}
	if h, ok := p.(RoleMaterialized); ok {
		r.roleMaterialized = append(r.roleMaterialized, roleMaterializedEntry{name, h})
	}
	if h, ok := p.(RoleDematerialized); ok {
		r.roleDematerialized = append(r.roleDematerialized, roleDematerializedEntry{name, h})
	}
	if h, ok := p.(BeforeFilterRead); ok {
		r.beforeFilterRead = append(r.beforeFilterRead, beforeFilterReadEntry{name, h})
	}
	if h, ok := p.(AfterFilterRead); ok {
		r.afterFilterRead = append(r.afterFilterRead, afterFilterReadEntry{name, h})
	}
	if h, ok := p.(Shutdown); ok {
		r.shutdown = append(r.shutdown, shutdownEntry{name, h})
	}
}

// Plugins returns all registered plugins.
func (r *Registry) Plugins() []Plugin { return r.plugins }

// EmitBeforeValidate notifies all plugins that implement BeforeValidate.
func (r *Registry) EmitBeforeValidate(ctx context.Context, change graph.Change) {
	for _, e := range r.beforeValidate {
		if err := e.hook.OnBeforeValidate(ctx, change); err != nil {
			r.logHookError("OnBeforeValidate", e.name, err)
		}
	}
}

// EmitAfterValidate notifies all plugins that implement AfterValidate.
func (r *Registry) EmitAfterValidate(ctx context.Context, change graph.Change, allowed bool, denyReason string) {
	for _, e := range r.afterValidate {
		if err := e.hook.OnAfterValidate(ctx, change, allowed, denyReason); err != nil {
			r.logHookError("OnAfterValidate", e.name, err)
		}
	}
}

// EmitRoleMaterialized notifies all plugins that implement RoleMaterialized.
func (r *Registry) EmitRoleMaterialized(ctx context.Context, rl role.Role) {
	for _, e := range r.roleMaterialized {
		if err := e.hook.OnRoleMaterialized(ctx, rl); err != nil {
			r.logHookError("OnRoleMaterialized", e.name, err)
		}
	}
}

// EmitRoleDematerialized notifies all plugins that implement RoleDematerialized.
func (r *Registry) EmitRoleDematerialized(ctx context.Context, rl role.Role) {
	for _, e := range r.roleDematerialized {
		if err := e.hook.OnRoleDematerialized(ctx, rl); err != nil {
			r.logHookError("OnRoleDematerialized", e.name, err)
		}
	}
}

// EmitBeforeFilterRead notifies all plugins that implement BeforeFilterRead.
func (r *Registry) EmitBeforeFilterRead(ctx context.Context, tx graph.Transaction) {
	for _, e := range r.beforeFilterRead {
		if err := e.hook.OnBeforeFilterRead(ctx, tx); err != nil {
			r.logHookError("OnBeforeFilterRead", e.name, err)
		}
	}
}

// EmitAfterFilterRead notifies all plugins that implement AfterFilterRead.
func (r *Registry) EmitAfterFilterRead(ctx context.Context, kept []graph.Change, admittedBy []grant.RoleGrant) {
	for _, e := range r.afterFilterRead {
		if err := e.hook.OnAfterFilterRead(ctx, kept, admittedBy); err != nil {
			r.logHookError("OnAfterFilterRead", e.name, err)
		}
	}
}

// EmitShutdown notifies all plugins that implement Shutdown.
func (r *Registry) EmitShutdown(ctx context.Context) {
	for _, e := range r.shutdown {
		if err := e.hook.OnShutdown(ctx); err != nil {
			r.logHookError("OnShutdown", e.name, err)
		}
	}
}

// logHookError logs a warning when a lifecycle hook returns an error.
// Errors from hooks are never propagated; they must not block the pipeline.
func (r *Registry) logHookError(hook, pluginName string, err error) {
	r.logger.Warn("plugin hook error",
		slog.String("hook", hook),
		slog.String("plugin", pluginName),
		slog.String("error", err.Error()),
	)
}
