// Package refinement holds the declared shape of a parameter: a plain type,
// a type annotated with predicates, or a named reference to a registered
// alias.
package refinement

import (
	"strings"

	"github.com/funvibe/refined/internal/typesystem"
	"github.com/funvibe/refined/pkg/predicates"
)

// Descriptor is the declared type of a parameter.
type Descriptor interface {
	// Type is the nominal base type, with every annotation layer removed.
	Type() typesystem.Type
	String() string
	descriptor()
}

// Plain is a type with no refinement. It never carries predicates.
type Plain struct {
	T typesystem.Type
}

func (p Plain) Type() typesystem.Type { return p.T }
func (p Plain) String() string {
	if p.T == nil {
		return "<nil>"
	}
	return p.T.String()
}
func (Plain) descriptor() {}

// Annotated is a base descriptor narrowed by ordered predicates.
type Annotated struct {
	Base       Descriptor
	Predicates []predicates.Predicate
}

func (a Annotated) Type() typesystem.Type {
	if a.Base == nil {
		return nil
	}
	return a.Base.Type()
}

func (a Annotated) String() string {
	parts := make([]string, 0, len(a.Predicates)+1)
	if a.Base != nil {
		parts = append(parts, a.Base.String())
	}
	for _, p := range a.Predicates {
		parts = append(parts, p.String())
	}
	return "Annotated[" + strings.Join(parts, ", ") + "]"
}

func (Annotated) descriptor() {}

// Ref is a deferred reference to an alias in a Registry. It has no type of its
// own until it is resolved.
type Ref struct {
	Name string
}

func (Ref) Type() typesystem.Type { return nil }
func (r Ref) String() string { return r.Name }
func (Ref) descriptor() {}

// PlainOf returns the Plain descriptor for t.
func PlainOf(t typesystem.Type) Plain {
	return Plain{T: t}
}

// Refine narrows base with preds. Constructing a refined type validates
// nothing; the predicates only run when a parameter declared with it is
// checked.
func Refine(base Descriptor, preds ...predicates.Predicate) Annotated {
	return Annotated{Base: base, Predicates: append([]predicates.Predicate(nil), preds...)}
}

// Flatten lists the predicates of d in evaluation order: those of inner
// annotations come before the outer ones.
func Flatten(d Descriptor) []predicates.Predicate {
	a, ok := d.(Annotated)
	if !ok {
		return nil
	}
	inner := Flatten(a.Base)
	return append(inner, a.Predicates...)
}

// IsRefined reports whether d carries at least one predicate.
func IsRefined(d Descriptor) bool {
	return len(Flatten(d)) > 0
}

// Display renders the base type the way diagnostics show it, e.g. <int>.
func Display(d Descriptor) string {
	if d == nil {
		return "<nil>"
	}
	if t := d.Type(); t != nil {
		return "<" + t.String() + ">"
	}
	return "<" + d.String() + ">"
}
