package predicates

import (
	"reflect"

	"github.com/funvibe/refined/internal/typesystem"
)

// length returns the number of elements of strings, slices, arrays, maps and
// channels. A nil interface has no length.
func length(value any) (int, bool) {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map, reflect.Chan:
		return rv.Len(), true
	}
	return 0, false
}

func empty(value any, _ ...any) bool {
	n, ok := length(value)
	return ok && n == 0
}

func nonEmpty(value any, _ ...any) bool {
	n, ok := length(value)
	return ok && n > 0
}

func lengthBetween(value any, aux ...any) bool {
	if len(aux) < 2 {
		return false
	}
	n, ok := length(value)
	if !ok {
		return false
	}
	lo, lok := aux[0].(int)
	hi, hok := aux[1].(int)
	return lok && hok && lo <= n && n <= hi
}

// Empty holds for collections of length 0.
func Empty[T any]() Predicate {
	return New("Empty", typesystem.Of[T](), empty)
}

// NonEmpty holds for collections of length > 0.
func NonEmpty[T any]() Predicate {
	return New("NonEmpty", typesystem.Of[T](), nonEmpty)
}

// EmptyShape is Empty bound to a container shape such as typesystem.ListOf(T).
func EmptyShape(shape typesystem.Type) Predicate {
	return New("Empty", shape, empty)
}

// NonEmptyShape is NonEmpty bound to a container shape.
func NonEmptyShape(shape typesystem.Type) Predicate {
	return New("NonEmpty", shape, nonEmpty)
}

// LengthBetween holds when min <= len(value) <= max.
func LengthBetween[T any](min, max int) Predicate {
	return New("LengthBetween", typesystem.Of[T](), lengthBetween, min, max)
}
