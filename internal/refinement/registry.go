package refinement

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/funvibe/refined/internal/typesystem"
	"github.com/funvibe/refined/pkg/predicates"
)

var (
	ErrUndefined = errors.New("undefined refined type")
	ErrDuplicate = errors.New("refined type already defined")
)

// Registry maps alias names to descriptors. The zero value is an empty
// registry ready to use.
type Registry struct {
	mu      sync.RWMutex
	aliases map[string]Descriptor
}

func NewRegistry() *Registry {
	return &Registry{aliases: make(map[string]Descriptor)}
}

// DefaultRegistry returns a fresh registry holding the built-in aliases.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for name, d := range builtinAliases() {
		r.aliases[name] = d
	}
	return r
}

// Define registers d under name. Redefining a name is an error; use Replace
// to overwrite deliberately.
func (r *Registry) Define(name string, d Descriptor) error {
	if name == "" {
		return fmt.Errorf("refined type name is required")
	}
	if _, ok := d.(Ref); ok {
		return fmt.Errorf("%s: an alias cannot point at another alias", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.aliases[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, name)
	}
	r.set(name, d)
	return nil
}

// Replace registers d under name, overwriting any previous definition.
func (r *Registry) Replace(name string, d Descriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.set(name, d)
}

// set requires r.mu to be held for writing.
func (r *Registry) set(name string, d Descriptor) {
	if r.aliases == nil {
		r.aliases = make(map[string]Descriptor)
	}
	r.aliases[name] = d
}

func (r *Registry) Lookup(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.aliases[name]
	return d, ok
}

// Resolve follows a Ref to its definition. Other descriptors are returned as
// they are; annotated bases are resolved recursively.
func (r *Registry) Resolve(d Descriptor) (Descriptor, error) {
	switch desc := d.(type) {
	case Ref:
		found, ok := r.Lookup(desc.Name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUndefined, desc.Name)
		}
		return found, nil
	case Annotated:
		base, err := r.Resolve(desc.Base)
		if err != nil {
			return nil, err
		}
		desc.Base = base
		return desc, nil
	}
	return d, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.aliases))
	for n := range r.aliases {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func builtinAliases() map[string]Descriptor {
	str := PlainOf(typesystem.Of[string]())
	anyList := typesystem.ListOf(typesystem.TVar{Name: "T"})
	anySet := typesystem.SetOf(typesystem.TVar{Name: "T"})
	anyMap := typesystem.MapOf(typesystem.TVar{Name: "K"}, typesystem.TVar{Name: "V"})

	return map[string]Descriptor{
		"PositiveInt":    Refine(PlainOf(typesystem.Of[int]()), predicates.Positive[int]()),
		"NegativeInt":    Refine(PlainOf(typesystem.Of[int]()), predicates.Negative[int]()),
		"PositiveFloat":  Refine(PlainOf(typesystem.Of[float64]()), predicates.Positive[float64]()),
		"NegativeFloat":  Refine(PlainOf(typesystem.Of[float64]()), predicates.Negative[float64]()),
		"NonNanFloat":    Refine(PlainOf(typesystem.Of[float64]()), predicates.NonNan[float64]()),
		"ValidInt":       Refine(str, predicates.ValidInt()),
		"ValidFloat":     Refine(str, predicates.ValidFloat()),
		"TrimmedString":  Refine(str, predicates.Trimmed()),
		"XmlString":      Refine(str, predicates.Xml()),
		"CsvString":      Refine(str, predicates.Csv()),
		"IPv4String":     Refine(str, predicates.IPv4()),
		"IPv6String":     Refine(str, predicates.IPv6()),
		"UUIDString":     Refine(str, predicates.UUID()),
		"NonEmptyString": Refine(str, predicates.NonEmpty[string]()),
		"NonEmptyList":   Refine(PlainOf(anyList), predicates.NonEmptyShape(anyList)),
		"NonEmptySet":    Refine(PlainOf(anySet), predicates.NonEmptyShape(anySet)),
		"NonEmptyDict":   Refine(PlainOf(anyMap), predicates.NonEmptyShape(anyMap)),
		"EmptyList":      Refine(PlainOf(anyList), predicates.EmptyShape(anyList)),
		"EmptySet":       Refine(PlainOf(anySet), predicates.EmptyShape(anySet)),
		"EmptyDict":      Refine(PlainOf(anyMap), predicates.EmptyShape(anyMap)),
		"ProtoWireBytes": Refine(PlainOf(typesystem.Of[[]byte]()), predicates.ProtoWire()),
	}
}
