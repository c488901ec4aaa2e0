package predicates

import (
	"reflect"

	"github.com/funvibe/refined/internal/typesystem"
)

func equal(value any, aux ...any) bool {
	if len(aux) < 1 {
		return false
	}
	return reflect.DeepEqual(value, aux[0])
}

// Equal holds when the value is structurally equal to other.
func Equal[T any](other T) Predicate {
	return New("Equal", typesystem.Of[T](), equal, other)
}

// EqualTo is Equal bound to the dynamic type of other.
func EqualTo(other any) Predicate {
	return New("Equal", typesystem.FromReflect(reflect.TypeOf(other)), equal, other)
}
