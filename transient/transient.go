// Package transient tracks permissions materialized by transactions
// that have already committed upstream but are not yet reflected in a
// session's compiled Permissions value, the process-wide counterpart
// to the write buffer's own same-transaction transient roles.
package transient

import (
	"github.com/ivanbatic/electric/grant"
	"github.com/ivanbatic/electric/schema"
)

// Transient names the row a RoleGrant is temporarily valid for, and the
// LSN up to which that validity holds.
type Transient struct {
	TargetRelation schema.Relation
	TargetID       any
	ValidToLSN     int64
}

// Match pairs a candidate RoleGrant with the Transient record backing
// it.
type Match struct {
	RoleGrant grant.RoleGrant
	Transient Transient
}

// Store looks up the Transient records backing a set of candidate
// RoleGrants as of a given LSN.
type Store interface {
	ForRoles(roleGrants []grant.RoleGrant, lsn int64) ([]Match, error)
}
