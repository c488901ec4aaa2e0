package predicates

import (
	"reflect"

	"github.com/funvibe/refined/internal/typesystem"
)

// valueRange checks lower <= e <= upper for every element of a slice or array.
// An empty collection holds vacuously.
func valueRange(value any, aux ...any) bool {
	if len(aux) < 2 {
		return false
	}
	lower, ok := toNumber(aux[0])
	if !ok {
		return false
	}
	upper, ok := toNumber(aux[1])
	if !ok {
		return false
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return false
	}
	for i := 0; i < rv.Len(); i++ {
		e, ok := toNumber(rv.Index(i).Interface())
		if !ok {
			return false
		}
		lo, ok := compareNumbers(lower, e)
		if !ok || lo > 0 {
			return false
		}
		hi, ok := compareNumbers(e, upper)
		if !ok || hi > 0 {
			return false
		}
	}
	return true
}

// ValueRange holds when every element of a collection of reals lies in
// [lower, upper].
func ValueRange[S ~[]E, E Number](lower, upper E) Predicate {
	return New("ValueRange", typesystem.Of[S](), valueRange, lower, upper)
}
