// Package schema defines the relation and privilege vocabulary that
// grants, roles, and changes are all expressed over. Schema metadata
// itself (column lists, foreign key structure) is loaded by an
// external schema loader and passed through this package's types as
// opaque data; this package does not read a database.
package schema

import "fmt"

// Relation is a qualified table name.
type Relation struct {
	Schema string `json:"schema"`
	Name   string `json:"name"`
}

// String renders the relation the way a denial message quotes it:
// "schema"."name".
func (r Relation) String() string {
	return fmt.Sprintf("%q.%q", r.Schema, r.Name)
}

// Equal reports whether two relations name the same table.
func (r Relation) Equal(other Relation) bool {
	return r.Schema == other.Schema && r.Name == other.Name
}

// key returns a value usable as a map key.
func (r Relation) key() string { return r.Schema + "." + r.Name }

// Privilege is one of the four DDLX-grantable privileges.
type Privilege string

const (
	Insert Privilege = "INSERT"
	Update Privilege = "UPDATE"
	Delete Privilege = "DELETE"
	Select Privilege = "SELECT"
)

// Verb returns the phrase a denial message uses for this privilege, per
// the exact error string format: "INSERT INTO ", "UPDATE ", "DELETE FROM ".
func (p Privilege) Verb() string {
	switch p {
	case Insert:
		return "INSERT INTO "
	case Update:
		return "UPDATE "
	case Delete:
		return "DELETE FROM "
	case Select:
		return "SELECT FROM "
	default:
		return string(p) + " "
	}
}

// TablePermission is the key of the main roles lookup table: a
// privilege required on a specific relation.
type TablePermission struct {
	Relation  Relation
	Privilege Privilege
}

// Key returns a comparable identifier for use as a map key.
func (tp TablePermission) Key() string {
	return tp.Relation.key() + "#" + string(tp.Privilege)
}
