// Package predicates provides the refinement predicates: named, stateless
// boolean conditions over a value of a declared bound type.
//
// Auxiliary arguments (thresholds, separators, comparison values) are fixed
// when the predicate is constructed. Evaluate never panics and never returns
// an error: malformed input, parse failures and values of the wrong dynamic
// type all evaluate to false.
package predicates

import (
	"fmt"
	"strings"

	"github.com/funvibe/refined/internal/typesystem"
)

// EvalFunc is the condition behind a predicate. It receives the checked value
// followed by the predicate's auxiliary arguments in their documented order.
type EvalFunc func(value any, aux ...any) bool

// Predicate is a named condition bound to a runtime type.
type Predicate struct {
	name  string
	bound typesystem.Type
	aux   []any
	eval  EvalFunc
}

// New creates a predicate from its parts. This is the authoring interface:
// any predicate built here is treated exactly like the catalog ones.
func New(name string, bound typesystem.Type, fn EvalFunc, aux ...any) Predicate {
	return Predicate{name: name, bound: bound, aux: aux, eval: fn}
}

// Typed creates a predicate bound to exactly T. Values of any other dynamic
// type evaluate to false.
func Typed[T any](name string, fn func(value T, aux ...any) bool, aux ...any) Predicate {
	return New(name, typesystem.Of[T](), func(value any, aux ...any) bool {
		v, ok := value.(T)
		if !ok {
			return false
		}
		return fn(v, aux...)
	}, aux...)
}

func (p Predicate) Name() string { return p.name }

// Bound is the runtime type this predicate declares itself applicable to.
func (p Predicate) Bound() typesystem.Type { return p.bound }

// Aux returns a copy of the auxiliary arguments.
func (p Predicate) Aux() []any {
	return append([]any(nil), p.aux...)
}

// Evaluate runs the condition. A panic inside the condition is reported as a
// failed condition so one malformed value never aborts a validation pass.
func (p Predicate) Evaluate(value any) (ok bool) {
	if p.eval == nil {
		return false
	}
	defer func() {
		if r := recover(); r != nil {
			ok = false
		}
	}()
	return p.eval(value, p.aux...)
}

// String renders the predicate as Name[bound](aux...), e.g. Greater[int](10).
func (p Predicate) String() string {
	var sb strings.Builder
	sb.WriteString(p.name)
	if p.bound != nil {
		sb.WriteString("[")
		sb.WriteString(p.bound.String())
		sb.WriteString("]")
	}
	if len(p.aux) > 0 {
		args := make([]string, len(p.aux))
		for i, a := range p.aux {
			args[i] = fmt.Sprintf("%#v", a)
		}
		sb.WriteString("(")
		sb.WriteString(strings.Join(args, ", "))
		sb.WriteString(")")
	}
	return sb.String()
}
