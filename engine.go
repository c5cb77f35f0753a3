package electric

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ivanbatic/electric/check"
	"github.com/ivanbatic/electric/decisionlog"
	"github.com/ivanbatic/electric/grant"
	"github.com/ivanbatic/electric/graph"
	"github.com/ivanbatic/electric/plugin"
	"github.com/ivanbatic/electric/schema"
	"github.com/ivanbatic/electric/transient"
	"github.com/ivanbatic/electric/trigger"
)

// Engine runs the decision procedure: ValidateWrite for inbound
// changes, FilterRead for outbound ones. It carries no per-transaction
// state; everything mutable lives in the Permissions value passed in
// and returned.
type Engine struct {
	config Config
	logger *slog.Logger

	plugins           *plugin.Registry
	decisionLog       decisionlog.Sink
	transientStore    transient.Store
	predicateCompiler check.PredicateCompiler
}

// NewEngine builds an Engine, applying opts over sensible defaults.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		config:            DefaultConfig(),
		logger:            slog.Default(),
		predicateCompiler: check.DefaultCompiler(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// MoveOut is a change that was readable before it happened and is not
// readable after; the caller hands these to the shapes subsystem so
// it can issue a local delete on the client.
type MoveOut struct {
	Change    graph.Change
	ScopePath []string
	Relation  schema.Relation
	ID        graph.RowID
}

// ValidateWrite validates every change in tx, in order, against the
// current write buffer layered over writeGraph. On the first
// denial it halts and returns the error, leaving perms unchanged. On
// success it returns a new Permissions whose write buffer reflects
// every change and every transient role those changes materialized.
func (e *Engine) ValidateWrite(ctx context.Context, perms Permissions, writeGraph graph.Graph, tx graph.Transaction) (Permissions, error) {
	current := perms
	current.WriteBuffer = perms.WriteBuffer.WithUpstream(writeGraph)

	userID := ""
	if current.Auth.UserID != nil {
		userID = *current.Auth.UserID
	}

	for _, change := range tx.Changes {
		for _, c := range expandScopeMove(current, current.WriteBuffer, change) {
			privilege := c.Kind.RequiredPrivilege()

			e.emitBeforeValidate(ctx, c)

			start := time.Now()
			rg, err := e.decide(current, current.WriteBuffer, c, privilege, tx.LSN, true)
			evalTime := time.Since(start).Nanoseconds()

			if err != nil {
				e.emitAfterValidate(ctx, c, false, err.Error())
				e.logDecision(ctx, c, privilege, nil, decisionlog.Deny, err.Error(), tx.LSN, evalTime)

				return perms, err
			}

			if rg == nil {
				denial := NewDenialError(c.Relation, privilege)
				e.emitAfterValidate(ctx, c, false, denial.Error())
				e.logDecision(ctx, c, privilege, nil, decisionlog.Deny, denial.Error(), tx.LSN, evalTime)

				return perms, denial
			}

			e.emitAfterValidate(ctx, c, true, "")
			e.logDecision(ctx, c, privilege, rg, decisionlog.Allow, "", tx.LSN, evalTime)
		}

		if err := current.WriteBuffer.ApplyChange(current.scopes, change); err != nil {
			return perms, fmt.Errorf("apply change to write buffer: %w", err)
		}

		events := current.triggers.Fire(change, userID)
		for _, ev := range events {
			if ev.Insert {
				e.emitRoleMaterialized(ctx, ev)
			} else {
				e.emitRoleDematerialized(ctx, ev)
			}
		}

		current.WriteBuffer = current.WriteBuffer.UpdateTransientRoles(events, current.grants)
	}

	return current, nil
}

// FilterRead tests every change in tx against the read graph and
// drops the ones the session may not see. An update that was readable
// before itself but not after is dropped and reported as a MoveOut
// instead of silently disappearing.
func (e *Engine) FilterRead(ctx context.Context, perms Permissions, readGraph graph.Graph, tx graph.Transaction) (graph.Transaction, []MoveOut) {
	e.emitBeforeFilterRead(ctx, tx)

	kept := make([]graph.Change, 0, len(tx.Changes))
	admittedBy := make([]grant.RoleGrant, 0, len(tx.Changes))

	var moveOuts []MoveOut

	for _, change := range tx.Changes {
		start := time.Now()
		rgAfter, err := e.decide(perms, readGraph, change, schema.Select, tx.LSN, false)
		evalTime := time.Since(start).Nanoseconds()
		allowedAfter := err == nil && rgAfter != nil

		switch {
		case allowedAfter:
			e.logDecision(ctx, change, schema.Select, rgAfter, decisionlog.Allow, "", tx.LSN, evalTime)
		case err != nil:
			e.logDecision(ctx, change, schema.Select, nil, decisionlog.Deny, err.Error(), tx.LSN, evalTime)
		default:
			e.logDecision(ctx, change, schema.Select, nil, decisionlog.Deny, NewDenialError(change.Relation, schema.Select).Error(), tx.LSN, evalTime)
		}

		if change.Kind == graph.UpdatedRecord {
			before := graph.Change{Kind: graph.UpdatedRecord, Relation: change.Relation, ID: change.ID, Record: change.OldRecord, Columns: change.Columns}

			rgBefore, err := e.decide(perms, readGraph, before, schema.Select, tx.LSN, false)
			allowedBefore := err == nil && rgBefore != nil

			if allowedBefore && !allowedAfter {
				moveOuts = append(moveOuts, MoveOut{
					Change:    change,
					ScopePath: scopePathFor(readGraph, rgBefore, before),
					Relation:  change.Relation,
					ID:        change.ID,
				})

				continue
			}
		}

		if !allowedAfter {
			continue
		}

		if e.config.columnProjectionOnReadEnabled() {
			change = projectColumns(change, rgAfter.Grant)
		}

		kept = append(kept, change)
		admittedBy = append(admittedBy, *rgAfter)
	}

	e.emitAfterFilterRead(ctx, kept, admittedBy)

	return graph.Transaction{Changes: kept, LSN: tx.LSN}, moveOuts
}

// ReceiveTransaction folds a committed transaction back into perms:
// the write buffer's pending-write overlay is redundant now that the
// upstream graph reflects it, and its transient roles stabilize.
func ReceiveTransaction(perms Permissions, tx graph.Transaction) Permissions {
	out := perms
	out.WriteBuffer = perms.WriteBuffer.ReceiveTransaction(tx)

	return out
}

func projectColumns(change graph.Change, g grant.Grant) graph.Change {
	if g.Columns == nil || change.Record == nil {
		return change
	}

	projected := make(map[string]any, len(change.Record))

	for col, v := range change.Record {
		if g.Columns.Contains(col) {
			projected[col] = v
		}
	}

	change.Record = projected

	return change
}

func scopePathFor(g graph.Graph, rg *grant.RoleGrant, change graph.Change) []string {
	if rg == nil || !rg.Role.HasScope() {
		return nil
	}

	roots, err := g.ScopeID(rg.Role.Scope.Relation, change)
	if err != nil {
		return nil
	}

	for _, root := range roots {
		if equalRowID(root.ID, rg.Role.Scope.ID) {
			return root.Path
		}
	}

	return nil
}

func (e *Engine) emitBeforeValidate(ctx context.Context, c graph.Change) {
	if e.plugins != nil {
		e.plugins.EmitBeforeValidate(ctx, c)
	}
}

func (e *Engine) emitAfterValidate(ctx context.Context, c graph.Change, allowed bool, reason string) {
	if e.plugins != nil {
		e.plugins.EmitAfterValidate(ctx, c, allowed, reason)
	}
}

func (e *Engine) emitBeforeFilterRead(ctx context.Context, tx graph.Transaction) {
	if e.plugins != nil {
		e.plugins.EmitBeforeFilterRead(ctx, tx)
	}
}

func (e *Engine) emitAfterFilterRead(ctx context.Context, kept []graph.Change, admittedBy []grant.RoleGrant) {
	if e.plugins != nil {
		e.plugins.EmitAfterFilterRead(ctx, kept, admittedBy)
	}
}

func (e *Engine) emitRoleMaterialized(ctx context.Context, r trigger.Event) {
	if e.plugins != nil {
		e.plugins.EmitRoleMaterialized(ctx, r.Role)
	}
}

func (e *Engine) emitRoleDematerialized(ctx context.Context, r trigger.Event) {
	if e.plugins != nil {
		e.plugins.EmitRoleDematerialized(ctx, r.Role)
	}
}

func (e *Engine) logDecision(ctx context.Context, c graph.Change, privilege schema.Privilege, rg *grant.RoleGrant, decision decisionlog.Decision, reason string, lsn int64, evalTimeNs int64) {
	if !e.config.decisionLogEnabled() || e.decisionLog == nil {
		return
	}

	entry := decisionlog.Entry{
		ID:         newDecisionLogID(),
		Relation:   c.Relation,
		Privilege:  privilege,
		Decision:   decision,
		Reason:     reason,
		RoleGrant:  rg,
		LSN:        lsn,
		EvalTimeNs: evalTimeNs,
		RequestID:  requestIDFromContext(ctx),
	}

	e.decisionLog.Record(ctx, entry)
}
