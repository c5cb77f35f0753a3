package electric

import "github.com/ivanbatic/electric/id"

// ID is the primary identifier type for entities this core mints.
type ID = id.ID

// Prefix identifies the entity type encoded in a TypeID.
type Prefix = id.Prefix
