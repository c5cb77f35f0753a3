// Package id defines TypeID-based identity types for the entities this
// permissions core itself mints identifiers for.
//
// Most of the module's domain objects (grants, roles, scopes) arrive
// already identified by an external ingest pipeline: a compiled rules
// record, a materialized assignment row. The handful of entities the
// core generates on its own (compiled ASSIGN triggers, decision log
// entries) use a single ID struct with a prefix that identifies the
// entity type. IDs are K-sortable (UUIDv7-based), globally unique, and
// URL-safe in the format "prefix_suffix".
//
// Unlike a bare TypeID, a Prefix here must be registered before it can
// be minted: New and ParseWithPrefix both reject a prefix this package
// doesn't know about, so a typo in a caller's prefix constant fails
// fast instead of silently producing a well-formed but meaningless ID.
package id

import (
	"database/sql/driver"
	"fmt"

	"go.jetify.com/typeid/v2"
)

// Prefix identifies the entity type encoded in a TypeID.
type Prefix string

// Prefix constants for entity types this core generates IDs for.
const (
	PrefixAssign   Prefix = "asgn"
	PrefixGrant    Prefix = "grant"
	PrefixDecision Prefix = "dlog"
)

var registered = map[Prefix]struct{}{
	PrefixAssign:   {},
	PrefixGrant:    {},
	PrefixDecision: {},
}

// Registered reports whether p is a prefix this package mints IDs
// for. New and ParseWithPrefix use this to reject foreign prefixes
// before they ever reach the TypeID layer.
func (p Prefix) Registered() bool {
	_, ok := registered[p]
	return ok
}

// ID is the primary identifier type for entities minted by this core.
//
//nolint:recvcheck // Value receivers for read-only methods, pointer receivers for UnmarshalText/Scan.
type ID struct {
	inner typeid.TypeID
	valid bool
}

// Nil is the zero-value ID.
var Nil ID

// New generates a new globally unique ID with the given prefix. It
// panics if prefix is not registered with this package, or if the
// underlying TypeID library rejects it (both are programming errors:
// no caller should be minting an ID with a prefix this core doesn't
// own).
func New(prefix Prefix) ID {
	if !prefix.Registered() {
		panic(fmt.Sprintf("id: prefix %q is not registered with this module", prefix))
	}

	tid, err := typeid.Generate(string(prefix))
	if err != nil {
		panic(fmt.Sprintf("id: invalid prefix %q: %v", prefix, err))
	}

	return ID{inner: tid, valid: true}
}

// Parse parses a TypeID string (e.g., "grant_01h2xcejqtf2nbrexx3vqjhp41")
// into an ID. Returns an error if the string is not valid. Unlike New,
// Parse accepts any well-formed prefix: it has to handle IDs minted by
// a different version of this package that registered a prefix this
// build doesn't know about yet.
func Parse(s string) (ID, error) {
	if s == "" {
		return Nil, fmt.Errorf("id: parse %q: empty string", s)
	}

	tid, err := typeid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("id: parse %q: %w", s, err)
	}

	return ID{inner: tid, valid: true}, nil
}

// ParseWithPrefix parses a TypeID string and validates that its prefix
// matches the expected value. expected must itself be registered.
func ParseWithPrefix(s string, expected Prefix) (ID, error) {
	if !expected.Registered() {
		return Nil, fmt.Errorf("id: prefix %q is not registered with this module", expected)
	}

	parsed, err := Parse(s)
	if err != nil {
		return Nil, err
	}

	if parsed.Prefix() != expected {
		return Nil, fmt.Errorf("id: expected prefix %q, got %q", expected, parsed.Prefix())
	}

	return parsed, nil
}

// MustParse is like Parse but panics on error. Use for hardcoded ID values.
func MustParse(s string) ID {
	parsed, err := Parse(s)
	if err != nil {
		panic(fmt.Sprintf("id: must parse %q: %v", s, err))
	}

	return parsed
}

// ──────────────────────────────────────────────────
// Type aliases
// ──────────────────────────────────────────────────

// AssignID identifies a compiled ASSIGN trigger (prefix: "asgn").
type AssignID = ID

// GrantID identifies a compiled GRANT, used for trigger-bucket keys and
// logging (prefix: "grant").
type GrantID = ID

// DecisionLogID identifies a decision audit log entry (prefix: "dlog").
type DecisionLogID = ID

// ──────────────────────────────────────────────────
// Convenience constructors and parsers
// ──────────────────────────────────────────────────

// NewAssignID generates a new unique assign-trigger ID.
func NewAssignID() ID { return New(PrefixAssign) }

// NewGrantID generates a new unique grant ID.
func NewGrantID() ID { return New(PrefixGrant) }

// NewDecisionLogID generates a new unique decision log entry ID.
func NewDecisionLogID() ID { return New(PrefixDecision) }

// ParseAssignID parses a string and validates the "asgn" prefix.
func ParseAssignID(s string) (ID, error) { return ParseWithPrefix(s, PrefixAssign) }

// ParseGrantID parses a string and validates the "grant" prefix.
func ParseGrantID(s string) (ID, error) { return ParseWithPrefix(s, PrefixGrant) }

// ParseDecisionLogID parses a string and validates the "dlog" prefix.
func ParseDecisionLogID(s string) (ID, error) { return ParseWithPrefix(s, PrefixDecision) }

// ParseAny parses a string into an ID without type checking the prefix.
func ParseAny(s string) (ID, error) { return Parse(s) }

// ──────────────────────────────────────────────────
// ID methods
// ──────────────────────────────────────────────────

// String returns the full TypeID string representation (prefix_suffix).
// Returns an empty string for the Nil ID.
func (i ID) String() string {
	if !i.valid {
		return ""
	}

	return i.inner.String()
}

// Prefix returns the prefix component of this ID.
func (i ID) Prefix() Prefix {
	if !i.valid {
		return ""
	}

	return Prefix(i.inner.Prefix())
}

// IsNil reports whether this ID is the zero value.
func (i ID) IsNil() bool {
	return !i.valid
}

// Before reports whether i was minted strictly earlier than other,
// using the K-sortable ordering the TypeID's UUIDv7 suffix provides.
// Only meaningful for two IDs of the same Prefix; a nil receiver or
// argument is never before anything.
func (i ID) Before(other ID) bool {
	if !i.valid || !other.valid {
		return false
	}

	return i.inner.String() < other.inner.String()
}

// MarshalText implements encoding.TextMarshaler.
func (i ID) MarshalText() ([]byte, error) {
	if !i.valid {
		return []byte{}, nil
	}

	return []byte(i.inner.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *ID) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*i = Nil

		return nil
	}

	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}

	*i = parsed

	return nil
}

// Value implements driver.Valuer, for callers that persist decision log
// entries in their own store.
func (i ID) Value() (driver.Value, error) {
	if !i.valid {
		return nil, nil //nolint:nilnil // nil is the canonical NULL for driver.Valuer
	}

	return i.inner.String(), nil
}

// Scan implements sql.Scanner.
func (i *ID) Scan(src any) error {
	if src == nil {
		*i = Nil

		return nil
	}

	switch v := src.(type) {
	case string:
		if v == "" {
			*i = Nil

			return nil
		}

		return i.UnmarshalText([]byte(v))
	case []byte:
		if len(v) == 0 {
			*i = Nil

			return nil
		}

		return i.UnmarshalText(v)
	default:
		return fmt.Errorf("id: cannot scan %T into ID", src)
	}
}
