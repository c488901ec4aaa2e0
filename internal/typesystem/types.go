// Package typesystem models the runtime types a refinement predicate can be
// bound to.
//
// Three shapes exist:
//   - TCon: one concrete Go type, matched by exact identity.
//   - TApp: a container shape (slice, map, ...) whose arguments are informative
//     only; matching looks at the container kind and never at elements.
//   - TVar: a type variable that matches any value.
package typesystem

import (
	"reflect"
	"strings"
)

// Type is the interface for all bound types.
type Type interface {
	String() string
	// Matches reports whether a runtime type satisfies this bound.
	Matches(rt reflect.Type) bool
}

// TCon represents a single concrete Go type (e.g. int, string, decimal.Decimal).
type TCon struct {
	Name    string
	Reflect reflect.Type
}

// Of returns the TCon for T.
func Of[T any]() TCon {
	return FromReflect(reflect.TypeOf((*T)(nil)).Elem())
}

// FromReflect returns the TCon for an already known runtime type.
func FromReflect(rt reflect.Type) TCon {
	if rt == nil {
		return TCon{Name: "nil"}
	}
	return TCon{Name: rt.String(), Reflect: rt}
}

func (t TCon) String() string {
	return t.Name
}

// Matches is exact identity: no widening from bool to int, from int to int64,
// or from a named type to its underlying type.
func (t TCon) Matches(rt reflect.Type) bool {
	return t.Reflect != nil && rt == t.Reflect
}

// Constructor names a container shape.
type Constructor string

const (
	List  Constructor = "List"  // slices
	Array Constructor = "Array" // fixed-size arrays
	Map   Constructor = "Map"
	Set   Constructor = "Set" // map[E]struct{} and map[E]bool
	Ptr   Constructor = "Ptr"
	Chan  Constructor = "Chan"
)

// TApp represents a container shape applied to element types, e.g. List<T>.
type TApp struct {
	Constructor Constructor
	Args        []Type
}

// ListOf returns the List shape over elem.
func ListOf(elem Type) TApp {
	return TApp{Constructor: List, Args: []Type{elem}}
}

// MapOf returns the Map shape over key and value.
func MapOf(key, value Type) TApp {
	return TApp{Constructor: Map, Args: []Type{key, value}}
}

// SetOf returns the Set shape over elem.
func SetOf(elem Type) TApp {
	return TApp{Constructor: Set, Args: []Type{elem}}
}

func (t TApp) String() string {
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		if a == nil {
			args[i] = "?"
			continue
		}
		args[i] = a.String()
	}
	switch t.Constructor {
	case List:
		if len(args) == 1 {
			return "[]" + args[0]
		}
	case Map:
		if len(args) == 2 {
			return "map[" + args[0] + "]" + args[1]
		}
	case Ptr:
		if len(args) == 1 {
			return "*" + args[0]
		}
	}
	return string(t.Constructor) + "<" + strings.Join(args, ", ") + ">"
}

// Matches compares only the outer container kind.
func (t TApp) Matches(rt reflect.Type) bool {
	if rt == nil {
		return false
	}
	switch t.Constructor {
	case List:
		return rt.Kind() == reflect.Slice
	case Array:
		return rt.Kind() == reflect.Array
	case Map:
		return rt.Kind() == reflect.Map
	case Set:
		if rt.Kind() != reflect.Map {
			return false
		}
		v := rt.Elem()
		return v.Kind() == reflect.Bool || (v.Kind() == reflect.Struct && v.NumField() == 0)
	case Ptr:
		return rt.Kind() == reflect.Pointer
	case Chan:
		return rt.Kind() == reflect.Chan
	}
	return false
}

// TVar represents a type variable (e.g. 'T'). It matches any non-nil value.
type TVar struct {
	Name string
}

func (t TVar) String() string {
	return t.Name
}

func (t TVar) Matches(rt reflect.Type) bool {
	return rt != nil
}

// AnyOf matches a runtime type when any of its alternatives does. Numeric
// predicates use it to bind to "some integer or float kind".
type AnyOf struct {
	Name         string
	Alternatives []Type
}

func (t AnyOf) String() string {
	if t.Name != "" {
		return t.Name
	}
	parts := make([]string, len(t.Alternatives))
	for i, a := range t.Alternatives {
		parts[i] = a.String()
	}
	return strings.Join(parts, " | ")
}

func (t AnyOf) Matches(rt reflect.Type) bool {
	for _, a := range t.Alternatives {
		if a.Matches(rt) {
			return true
		}
	}
	return false
}

// Exact reports whether t names exactly one runtime type, and returns it.
func Exact(t Type) (reflect.Type, bool) {
	if c, ok := t.(TCon); ok && c.Reflect != nil {
		return c.Reflect, true
	}
	return nil, false
}
