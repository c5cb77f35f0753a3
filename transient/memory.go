package transient

import (
	"sync"

	"github.com/ivanbatic/electric/grant"
	"github.com/ivanbatic/electric/role"
	"github.com/ivanbatic/electric/schema"
)

// MemoryLUT is an in-memory Store, keyed by the role key a RoleGrant's
// Role carries. An adjacent subsystem (a trigger processor running
// ahead of the session compiling Permissions) Inserts and Removes
// entries as the transactions producing them commit.
type MemoryLUT struct {
	mu      sync.RWMutex
	entries map[string]Transient
}

// NewMemoryLUT returns an empty MemoryLUT.
func NewMemoryLUT() *MemoryLUT {
	return &MemoryLUT{entries: make(map[string]Transient)}
}

// Insert records that r's role is transiently valid for target, up to
// validToLSN. A zero validToLSN means unbounded.
func (m *MemoryLUT) Insert(r role.Role, target schema.Relation, targetID any, validToLSN int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[r.Key()] = Transient{
		TargetRelation: target,
		TargetID:       targetID,
		ValidToLSN:     validToLSN,
	}
}

// Remove drops any transient record for r's role.
func (m *MemoryLUT) Remove(r role.Role) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, r.Key())
}

// ForRoles implements Store: it returns a Match for every candidate
// whose Transient record is still valid at lsn.
func (m *MemoryLUT) ForRoles(roleGrants []grant.RoleGrant, lsn int64) ([]Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var matches []Match

	for _, rg := range roleGrants {
		t, ok := m.entries[rg.Role.Key()]
		if !ok {
			continue
		}

		if t.ValidToLSN != 0 && lsn > t.ValidToLSN {
			continue
		}

		matches = append(matches, Match{RoleGrant: rg, Transient: t})
	}

	return matches, nil
}
