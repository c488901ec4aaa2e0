// Package validation checks bound call arguments against their declared
// refined types and aggregates the violations of one call.
package validation

import (
	"reflect"

	"github.com/funvibe/refined/pkg/predicates"
)

// Applicable reports whether pred may run against value. Matching is exact:
// an int predicate does not apply to a bool, an int64 or a named int type,
// and container shapes only compare the outer kind. A nil value matches
// nothing.
func Applicable(pred predicates.Predicate, value any) bool {
	bound := pred.Bound()
	if bound == nil || value == nil {
		return false
	}
	return bound.Matches(reflect.TypeOf(value))
}
