package electric

import (
	"errors"
	"fmt"

	"github.com/ivanbatic/electric/graph"
	"github.com/ivanbatic/electric/schema"
)

var (
	// ErrNoGrantsForAction names the case where a TablePermission has no
	// bucket at all. The engine reports that case as a plain DenialError,
	// which does not wrap this sentinel.
	ErrNoGrantsForAction = errors.New("electric: no grants for action")

	// ErrScopeDepthExceeded mirrors graph.ErrScopeDepthExceeded for
	// callers that only import the root package.
	ErrScopeDepthExceeded = graph.ErrScopeDepthExceeded

	// ErrUnknownAssign names an event whose originating assign cannot be
	// resolved. WriteBuffer.UpdateTransientRoles returns no error and
	// does not produce it.
	ErrUnknownAssign = errors.New("electric: unknown assign")
)

// DenialError reports that a change was tested against every candidate
// RoleGrant and none accepted it. Its Error text is the exact
// "permissions: user does not have permission to <VERB> <relation>"
// string external callers match on.
type DenialError struct {
	Relation  schema.Relation
	Privilege schema.Privilege
}

func (e *DenialError) Error() string {
	return fmt.Sprintf("permissions: user does not have permission to %s%s", e.Privilege.Verb(), e.Relation.String())
}

// NewDenialError builds the formatted denial for relation/privilege.
func NewDenialError(relation schema.Relation, privilege schema.Privilege) *DenialError {
	return &DenialError{Relation: relation, Privilege: privilege}
}

// EvaluationError reports that a CHECK predicate could not be
// evaluated against a change, e.g. a missing column or a shape mismatch.
// The source treats this as an ingest-time bug; ValidateWrite surfaces
// it as its own kind rather than silently denying, so callers can
// distinguish "this user may not do this" from "this change is
// malformed". FilterRead returns no error: it drops a change whose
// CHECK cannot be evaluated.
type EvaluationError struct {
	Relation  schema.Relation
	Privilege schema.Privilege
	Err       error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("permissions: error evaluating check for %s on %s: %v", e.Privilege, e.Relation, e.Err)
}

func (e *EvaluationError) Unwrap() error { return e.Err }

// NewEvaluationError wraps err as an EvaluationError for relation/privilege.
func NewEvaluationError(relation schema.Relation, privilege schema.Privilege, err error) *EvaluationError {
	return &EvaluationError{Relation: relation, Privilege: privilege, Err: err}
}
