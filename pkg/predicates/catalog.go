package predicates

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/funvibe/refined/internal/typesystem"
)

var (
	ErrUnknownPredicate = errors.New("unknown predicate")
	ErrBadArguments     = errors.New("bad predicate arguments")
	ErrBoundMismatch    = errors.New("predicate not applicable to type")
)

// Factory builds a predicate bound to bound from configuration arguments.
type Factory func(bound typesystem.Type, args ...any) (Predicate, error)

var (
	catalogMu sync.RWMutex
	catalog   = map[string]Factory{
		// numeric
		"Positive":  numericFactory("Positive", 0, positive),
		"Negative":  numericFactory("Negative", 0, negative),
		"Greater":   numericFactory("Greater", 1, greater),
		"Less":      numericFactory("Less", 1, less),
		"Modulo":    numericFactory("Modulo", 1, modulo),
		"Divisible": numericFactory("Divisible", 1, modulo),
		"NonNan":    numericFactory("NonNan", 0, nonNaN),
		"Even":      numericFactory("Even", 0, even),
		"Odd":       numericFactory("Odd", 0, odd),

		// string
		"Trimmed":    stringFactory(Trimmed),
		"ValidInt":   stringFactory(ValidInt),
		"ValidFloat": stringFactory(ValidFloat),
		"Xml":        stringFactory(Xml),
		"IPv4":       stringFactory(IPv4),
		"IPv6":       stringFactory(IPv6),
		"UUID":       stringFactory(UUID),
		"Email":      stringFactory(Email),
		"URL":        stringFactory(URL),
		"Tag":        tagFactory,
		"Csv":        csvFactory,
		"Matches":    matchesFactory,

		// collection
		"Empty":         collectionFactory("Empty", empty),
		"NonEmpty":      collectionFactory("NonEmpty", nonEmpty),
		"LengthBetween": lengthBetweenFactory,

		// generic and common
		"Equal":      equalFactory,
		"ValueRange": valueRangeFactory,

		// encoding
		"ProtoWire":    protoWireFactory,
		"ProtoMessage": protoMessageFactory,
	}
)

// Lookup returns the factory registered under name.
func Lookup(name string) (Factory, bool) {
	catalogMu.RLock()
	defer catalogMu.RUnlock()
	f, ok := catalog[name]
	return f, ok
}

// Register adds or replaces a factory so configuration files can refer to a
// custom predicate by name.
func Register(name string, f Factory) {
	catalogMu.Lock()
	defer catalogMu.Unlock()
	catalog[name] = f
}

// Names lists the registered factory names in sorted order.
func Names() []string {
	catalogMu.RLock()
	defer catalogMu.RUnlock()
	names := make([]string, 0, len(catalog))
	for n := range catalog {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Build looks up name and applies its factory.
func Build(name string, bound typesystem.Type, args ...any) (Predicate, error) {
	f, ok := Lookup(name)
	if !ok {
		return Predicate{}, fmt.Errorf("%w: %s", ErrUnknownPredicate, name)
	}
	return f(bound, args...)
}

func expectArgs(name string, args []any, min, max int) error {
	if len(args) < min || len(args) > max {
		if min == max {
			return fmt.Errorf("%w: %s takes %d argument(s), got %d", ErrBadArguments, name, min, len(args))
		}
		return fmt.Errorf("%w: %s takes %d to %d arguments, got %d", ErrBadArguments, name, min, max, len(args))
	}
	return nil
}

func mismatch(name string, bound typesystem.Type) error {
	return fmt.Errorf("%w: %s cannot be bound to %s", ErrBoundMismatch, name, bound)
}

func isNumericBound(bound typesystem.Type) bool {
	if rt, ok := typesystem.Exact(bound); ok {
		return typesystem.Number.Matches(rt)
	}
	set, ok := bound.(typesystem.AnyOf)
	return ok && set.Name == typesystem.Number.Name
}

func numericFactory(name string, arity int, fn EvalFunc) Factory {
	return func(bound typesystem.Type, args ...any) (Predicate, error) {
		if err := expectArgs(name, args, arity, arity); err != nil {
			return Predicate{}, err
		}
		if !isNumericBound(bound) {
			return Predicate{}, mismatch(name, bound)
		}
		for _, a := range args {
			if _, ok := toNumber(a); !ok {
				return Predicate{}, fmt.Errorf("%w: %s expects a number, got %T", ErrBadArguments, name, a)
			}
		}
		return New(name, bound, fn, args...), nil
	}
}

func isStringBound(bound typesystem.Type) bool {
	rt, ok := typesystem.Exact(bound)
	return ok && rt == reflect.TypeOf("")
}

func stringFactory(ctor func() Predicate) Factory {
	return func(bound typesystem.Type, args ...any) (Predicate, error) {
		p := ctor()
		if err := expectArgs(p.Name(), args, 0, 0); err != nil {
			return Predicate{}, err
		}
		if !isStringBound(bound) {
			return Predicate{}, mismatch(p.Name(), bound)
		}
		return p, nil
	}
}

func csvFactory(bound typesystem.Type, args ...any) (Predicate, error) {
	if err := expectArgs("Csv", args, 0, 1); err != nil {
		return Predicate{}, err
	}
	if !isStringBound(bound) {
		return Predicate{}, mismatch("Csv", bound)
	}
	if len(args) == 0 {
		return Csv(), nil
	}
	sep, ok := args[0].(string)
	if !ok {
		return Predicate{}, fmt.Errorf("%w: Csv separator must be a string, got %T", ErrBadArguments, args[0])
	}
	return Csv(sep), nil
}

func matchesFactory(bound typesystem.Type, args ...any) (Predicate, error) {
	if err := expectArgs("Matches", args, 1, 1); err != nil {
		return Predicate{}, err
	}
	if !isStringBound(bound) {
		return Predicate{}, mismatch("Matches", bound)
	}
	pattern, ok := args[0].(string)
	if !ok {
		return Predicate{}, fmt.Errorf("%w: Matches pattern must be a string, got %T", ErrBadArguments, args[0])
	}
	return Matches(pattern), nil
}

// tagFactory accepts any bound; validator decides per tag which kinds it
// can check.
func tagFactory(bound typesystem.Type, args ...any) (Predicate, error) {
	if err := expectArgs("Tag", args, 1, 1); err != nil {
		return Predicate{}, err
	}
	tag, ok := args[0].(string)
	if !ok || tag == "" {
		return Predicate{}, fmt.Errorf("%w: Tag expects a validator tag string, got %#v", ErrBadArguments, args[0])
	}
	return New("Tag", bound, satisfiesTag, tag), nil
}

func isCollectionBound(bound typesystem.Type) bool {
	if _, ok := bound.(typesystem.TApp); ok {
		return true
	}
	rt, ok := typesystem.Exact(bound)
	if !ok {
		return false
	}
	switch rt.Kind() {
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map, reflect.Chan:
		return true
	}
	return false
}

func collectionFactory(name string, fn EvalFunc) Factory {
	return func(bound typesystem.Type, args ...any) (Predicate, error) {
		if err := expectArgs(name, args, 0, 0); err != nil {
			return Predicate{}, err
		}
		if !isCollectionBound(bound) {
			return Predicate{}, mismatch(name, bound)
		}
		return New(name, bound, fn), nil
	}
}

func lengthBetweenFactory(bound typesystem.Type, args ...any) (Predicate, error) {
	if err := expectArgs("LengthBetween", args, 2, 2); err != nil {
		return Predicate{}, err
	}
	if !isCollectionBound(bound) {
		return Predicate{}, mismatch("LengthBetween", bound)
	}
	bounds := make([]any, 2)
	for i, a := range args {
		n, ok := toInt(a)
		if !ok {
			return Predicate{}, fmt.Errorf("%w: LengthBetween expects integers, got %T", ErrBadArguments, a)
		}
		bounds[i] = n
	}
	return New("LengthBetween", bound, lengthBetween, bounds...), nil
}

func toInt(v any) (int, bool) {
	n, ok := toNumber(v)
	if !ok || !n.finite || !n.d.IsInteger() {
		return 0, false
	}
	return int(n.d.IntPart()), true
}

// equalFactory converts the comparison value to the bound type when possible,
// so a YAML integer can be compared with an int64 parameter.
func equalFactory(bound typesystem.Type, args ...any) (Predicate, error) {
	if err := expectArgs("Equal", args, 1, 1); err != nil {
		return Predicate{}, err
	}
	other := args[0]
	if rt, ok := typesystem.Exact(bound); ok && other != nil {
		ov := reflect.ValueOf(other)
		switch {
		case ov.Type() == rt:
		case ov.Type().ConvertibleTo(rt) && convertibleScalar(ov.Kind(), rt.Kind()):
			other = ov.Convert(rt).Interface()
		default:
			return Predicate{}, fmt.Errorf("%w: Equal value %v is not a %s", ErrBadArguments, other, rt)
		}
	}
	return New("Equal", bound, equal, other), nil
}

// convertibleScalar rejects conversions that change meaning, such as int to
// string.
func convertibleScalar(from, to reflect.Kind) bool {
	numeric := func(k reflect.Kind) bool {
		return (k >= reflect.Int && k <= reflect.Uintptr) || k == reflect.Float32 || k == reflect.Float64
	}
	if numeric(from) && numeric(to) {
		return true
	}
	return from == to
}

func valueRangeFactory(bound typesystem.Type, args ...any) (Predicate, error) {
	if err := expectArgs("ValueRange", args, 2, 2); err != nil {
		return Predicate{}, err
	}
	ok := false
	if rt, exact := typesystem.Exact(bound); exact {
		k := rt.Kind()
		ok = (k == reflect.Slice || k == reflect.Array) && typesystem.Number.Matches(rt.Elem())
	} else if app, isApp := bound.(typesystem.TApp); isApp {
		ok = app.Constructor == typesystem.List || app.Constructor == typesystem.Array
	}
	if !ok {
		return Predicate{}, mismatch("ValueRange", bound)
	}
	for _, a := range args {
		if _, isNum := toNumber(a); !isNum {
			return Predicate{}, fmt.Errorf("%w: ValueRange expects numbers, got %T", ErrBadArguments, a)
		}
	}
	return New("ValueRange", bound, valueRange, args...), nil
}

func isBytesBound(bound typesystem.Type) bool {
	rt, ok := typesystem.Exact(bound)
	return ok && rt == reflect.TypeOf([]byte(nil))
}

func protoWireFactory(bound typesystem.Type, args ...any) (Predicate, error) {
	if err := expectArgs("ProtoWire", args, 0, 0); err != nil {
		return Predicate{}, err
	}
	if !isBytesBound(bound) {
		return Predicate{}, mismatch("ProtoWire", bound)
	}
	return ProtoWire(), nil
}

func protoMessageFactory(bound typesystem.Type, args ...any) (Predicate, error) {
	if err := expectArgs("ProtoMessage", args, 2, 2); err != nil {
		return Predicate{}, err
	}
	if !isBytesBound(bound) {
		return Predicate{}, mismatch("ProtoMessage", bound)
	}
	schema, ok1 := args[0].(string)
	message, ok2 := args[1].(string)
	if !ok1 || !ok2 {
		return Predicate{}, fmt.Errorf("%w: ProtoMessage expects (schema, message) strings", ErrBadArguments)
	}
	return ProtoMessage(schema, message)
}
