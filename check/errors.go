package check

import "errors"

// ErrInvalidCondition is returned when a CHECK condition is malformed:
// an unknown operator or an unparsable literal.
var ErrInvalidCondition = errors.New("check: invalid condition")
