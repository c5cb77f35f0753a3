package graph

import "errors"

// ErrScopeDepthExceeded is returned by a Walker when a foreign-key walk
// exceeds its configured depth, guarding against a cyclic schema.
var ErrScopeDepthExceeded = errors.New("graph: scope depth exceeded")
