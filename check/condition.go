// Package check compiles and evaluates GRANT CHECK expressions. The
// core never parses CHECK syntax itself; a DDLX compiler upstream is
// expected to produce a []Condition (or any other Predicate) for each
// grant; this package only supplies the reference evaluator.
package check

import (
	"fmt"
	"net"
	"regexp"
	"strings"
	"time"

	"github.com/ivanbatic/electric/graph"
)

// Operator is a comparison operator usable in a condition.
type Operator string

const (
	OpEquals      Operator = "eq"
	OpNotEquals   Operator = "neq"
	OpIn          Operator = "in"
	OpNotIn       Operator = "not_in"
	OpContains    Operator = "contains"
	OpStartsWith  Operator = "starts_with"
	OpEndsWith    Operator = "ends_with"
	OpGreaterThan Operator = "gt"
	OpLessThan    Operator = "lt"
	OpGTE         Operator = "gte"
	OpLTE         Operator = "lte"
	OpExists      Operator = "exists"
	OpNotExists   Operator = "not_exists"
	OpIPInCIDR    Operator = "ip_in_cidr"
	OpTimeAfter   Operator = "time_after"
	OpTimeBefore  Operator = "time_before"
	OpRegex       Operator = "regex"
)

// Condition is a single predicate term evaluated against one column of
// a change's row data.
type Condition struct {
	Column   string `json:"column"`
	Operator Operator `json:"operator"`
	Value    any    `json:"value"`
}

// Predicate is a compiled CHECK expression: a deterministic function
// from a change to a boolean. How it is produced (this package's
// condition list, an AST interpreter, a WASM sandbox) is out of scope
// for the core; it only ever calls Evaluate.
type Predicate interface {
	Evaluate(change graph.Change) (bool, error)
}

// PredicateCompiler turns a raw list of conditions into an invocable
// Predicate, the seam an external DDLX compiler plugs into.
type PredicateCompiler interface {
	Compile(conditions []Condition) (Predicate, error)
}

// DefaultCompiler returns the built-in condition-list compiler.
func DefaultCompiler() PredicateCompiler { return conditionCompiler{} }

type conditionCompiler struct{}

func (conditionCompiler) Compile(conditions []Condition) (Predicate, error) {
	return ConditionPredicate{conditions: conditions}, nil
}

// ConditionPredicate is the reference Predicate: every condition must
// hold against the change for the predicate to accept (AND semantics).
type ConditionPredicate struct {
	conditions []Condition
}

// NewConditionPredicate builds a ConditionPredicate directly, bypassing
// the compiler seam.
func NewConditionPredicate(conditions ...Condition) ConditionPredicate {
	return ConditionPredicate{conditions: conditions}
}

func (p ConditionPredicate) Evaluate(change graph.Change) (bool, error) {
	for _, c := range p.conditions {
		val := change.Column(c.Column)

		ok, err := evaluateCondition(c.Operator, val, c.Value)
		if err != nil {
			return false, fmt.Errorf("evaluate condition on %q: %w", c.Column, err)
		}
		if !ok {
			return false, nil
		}
	}

	return true, nil
}

func evaluateCondition(op Operator, actual, expected any) (bool, error) {
	switch op {
	case OpEquals:
		return fmt.Sprint(actual) == fmt.Sprint(expected), nil
	case OpNotEquals:
		return fmt.Sprint(actual) != fmt.Sprint(expected), nil
	case OpIn:
		return inSlice(actual, expected), nil
	case OpNotIn:
		return !inSlice(actual, expected), nil
	case OpContains:
		return strings.Contains(fmt.Sprint(actual), fmt.Sprint(expected)), nil
	case OpStartsWith:
		return strings.HasPrefix(fmt.Sprint(actual), fmt.Sprint(expected)), nil
	case OpEndsWith:
		return strings.HasSuffix(fmt.Sprint(actual), fmt.Sprint(expected)), nil
	case OpGreaterThan:
		return compareNumbers(actual, expected) > 0, nil
	case OpLessThan:
		return compareNumbers(actual, expected) < 0, nil
	case OpGTE:
		return compareNumbers(actual, expected) >= 0, nil
	case OpLTE:
		return compareNumbers(actual, expected) <= 0, nil
	case OpExists:
		return actual != nil, nil
	case OpNotExists:
		return actual == nil, nil
	case OpIPInCIDR:
		return ipInCIDR(fmt.Sprint(actual), expected)
	case OpTimeAfter:
		return timeCompare(actual, expected, true)
	case OpTimeBefore:
		return timeCompare(actual, expected, false)
	case OpRegex:
		re, err := regexp.Compile(fmt.Sprint(expected))
		if err != nil {
			return false, fmt.Errorf("%w: invalid regex %q: %w", ErrInvalidCondition, expected, err)
		}

		return re.MatchString(fmt.Sprint(actual)), nil
	default:
		return false, fmt.Errorf("%w: unknown operator %q", ErrInvalidCondition, op)
	}
}

func inSlice(actual, expected any) bool {
	s := fmt.Sprint(actual)

	switch v := expected.(type) {
	case []string:
		for _, item := range v {
			if item == s {
				return true
			}
		}
	case []any:
		for _, item := range v {
			if fmt.Sprint(item) == s {
				return true
			}
		}
	}

	return false
}

func compareNumbers(a, b any) int {
	fa := toFloat64(a)
	fb := toFloat64(b)

	if fa < fb {
		return -1
	}
	if fa > fb {
		return 1
	}

	return 0
}

func toFloat64(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case float64:
		return n
	case float32:
		return float64(n)
	case string:
		var f float64
		if _, err := fmt.Sscanf(n, "%f", &f); err != nil {
			return 0
		}

		return f
	default:
		return 0
	}
}

func ipInCIDR(ipStr string, cidrVal any) (bool, error) {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false, nil
	}

	var cidrs []string

	switch v := cidrVal.(type) {
	case string:
		cidrs = []string{v}
	case []string:
		cidrs = v
	case []any:
		for _, item := range v {
			cidrs = append(cidrs, fmt.Sprint(item))
		}
	default:
		return false, nil
	}

	for _, cidr := range cidrs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			continue
		}
		if network.Contains(ip) {
			return true, nil
		}
	}

	return false, nil
}

func timeCompare(actual, expected any, after bool) (bool, error) {
	at, ok := parseTime(actual)
	if !ok {
		return false, nil
	}

	et, ok := parseTime(expected)
	if !ok {
		return false, nil
	}

	if after {
		return at.After(et), nil
	}

	return at.Before(et), nil
}

func parseTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return time.Time{}, false
		}

		return parsed, true
	default:
		return time.Time{}, false
	}
}
