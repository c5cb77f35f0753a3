// Package decisionlog provides an optional audit trail of every
// permission decision the engine makes. It is pure ambient
// observability: no component of the decision path depends on it, and
// a nil Sink disables it entirely.
package decisionlog

import (
	"context"
	"sync"

	"github.com/ivanbatic/electric/grant"
	"github.com/ivanbatic/electric/id"
	"github.com/ivanbatic/electric/schema"
)

// Decision is the outcome an Entry records.
type Decision string

const (
	Allow Decision = "allow"
	Deny  Decision = "deny"
)

// Entry is one decision audit record.
type Entry struct {
	ID         id.DecisionLogID
	Relation   schema.Relation
	Privilege  schema.Privilege
	Decision   Decision
	Reason     string
	RoleGrant  *grant.RoleGrant
	LSN        int64
	EvalTimeNs int64
	RequestID  string
}

// Sink receives decision entries as the engine produces them. Record
// must not block the decision path; implementations expected to do
// slow I/O should buffer internally.
type Sink interface {
	Record(ctx context.Context, entry Entry)
}

// MemorySink is an in-memory Sink for tests and standalone use.
type MemorySink struct {
	mu      sync.Mutex
	entries []Entry
}

// NewMemorySink returns an empty MemorySink.
func NewMemorySink() *MemorySink { return &MemorySink{} }

func (s *MemorySink) Record(_ context.Context, entry Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, entry)
}

// Entries returns a copy of every entry recorded so far.
func (s *MemorySink) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Entry{}, s.entries...)
}

// Since returns every recorded entry minted after marker, using the
// DecisionLogID's own K-sortable ordering rather than a separate
// timestamp column. Passing the zero id.DecisionLogID returns every
// entry.
func (s *MemorySink) Since(marker id.DecisionLogID) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if marker.IsNil() || marker.Before(e.ID) {
			out = append(out, e)
		}
	}

	return out
}
