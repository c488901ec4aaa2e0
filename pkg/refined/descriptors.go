package refined

import (
	"fmt"

	"github.com/funvibe/refined/internal/config"
	"github.com/funvibe/refined/internal/refinement"
	"github.com/funvibe/refined/internal/typesystem"
	"github.com/funvibe/refined/pkg/predicates"
)

// Plain is the unrefined descriptor of T.
func Plain[T any]() Descriptor {
	return refinement.PlainOf(typesystem.Of[T]())
}

// Refine narrows base with preds. It validates nothing by itself.
func Refine(base Descriptor, preds ...Predicate) Descriptor {
	return refinement.Refine(base, preds...)
}

// RefineOf is Refine over Plain[T].
func RefineOf[T any](preds ...Predicate) Descriptor {
	return refinement.Refine(Plain[T](), preds...)
}

// Ref names a registered refined type; it is resolved when a function is
// wrapped.
func Ref(name string) Descriptor {
	return refinement.Ref{Name: name}
}

// Positive is a T greater than zero.
func Positive[T predicates.Number]() Descriptor {
	return RefineOf[T](predicates.Positive[T]())
}

// Negative is a T less than zero.
func Negative[T predicates.Number]() Descriptor {
	return RefineOf[T](predicates.Negative[T]())
}

// ValidInt is a string holding a base-10 integer.
func ValidInt() Descriptor {
	return RefineOf[string](predicates.ValidInt())
}

// ValidFloat is a string holding a floating-point number.
func ValidFloat() Descriptor {
	return RefineOf[string](predicates.ValidFloat())
}

// Empty is a T of length zero.
func Empty[T any]() Descriptor {
	return RefineOf[T](predicates.Empty[T]())
}

// NonEmpty is a T of non-zero length.
func NonEmpty[T any]() Descriptor {
	return RefineOf[T](predicates.NonEmpty[T]())
}

func NonEmptyString() Descriptor { return NonEmpty[string]() }

func NonEmptyList[E any]() Descriptor { return NonEmpty[[]E]() }

// NonEmptySet is declared over map[E]struct{}. Use Ref("NonEmptySet") for a
// set of any element type, including map[E]bool.
func NonEmptySet[E comparable]() Descriptor { return NonEmpty[map[E]struct{}]() }

func NonEmptyDict[K comparable, V any]() Descriptor { return NonEmpty[map[K]V]() }

var defaultRegistry = refinement.DefaultRegistry()

// NewRegistry returns a registry holding only the built-in aliases.
func NewRegistry() *Registry {
	return refinement.DefaultRegistry()
}

// Define registers a refined type in the registry used when no WithRegistry
// option is given.
func Define(name string, d Descriptor) error {
	return defaultRegistry.Define(name, d)
}

// Lookup finds a refined type in the default registry.
func Lookup(name string) (Descriptor, bool) {
	return defaultRegistry.Lookup(name)
}

// LoadTypes reads a refined.yaml file and defines its types in r, or in the
// default registry when r is nil.
func LoadTypes(path string, r *Registry) error {
	if r == nil {
		r = defaultRegistry
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return err
	}
	if err := cfg.Apply(r); err != nil {
		return fmt.Errorf("loading refined types: %w", err)
	}
	return nil
}
