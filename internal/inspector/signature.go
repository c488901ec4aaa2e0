// Package inspector turns a Go function plus its refinement declarations into
// the ordered parameter specs the validation engine works from.
package inspector

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/funvibe/refined/internal/refinement"
	"github.com/funvibe/refined/internal/typesystem"
)

// ErrSignature is matched by every SignatureResolutionError.
var ErrSignature = errors.New("signature resolution failed")

// SignatureResolutionError reports a declaration that cannot be resolved
// against the function it describes. It is a configuration error raised when
// the function is wrapped, never during a call.
type SignatureResolutionError struct {
	Function  string
	Parameter string
	Reason    string
	Err       error
}

func (e *SignatureResolutionError) Error() string {
	msg := "cannot resolve signature of " + e.Function
	if e.Parameter != "" {
		msg += ", parameter " + e.Parameter
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SignatureResolutionError) Unwrap() error { return e.Err }

func (e *SignatureResolutionError) Is(target error) bool { return target == ErrSignature }

// Declaration is what a caller states about one parameter.
type Declaration struct {
	Name       string
	Type       refinement.Descriptor // nil means "no refinement"
	Default    any
	HasDefault bool
}

// ParameterSpec is one resolved parameter, in declaration order.
type ParameterSpec struct {
	Name       string
	Declared   refinement.Descriptor
	Position   int
	GoType     reflect.Type // for a variadic parameter, the slice type
	Variadic   bool
	// PerElement is set when a variadic parameter is declared with its
	// element type; each element is then checked on its own.
	PerElement bool
	Default    reflect.Value
	HasDefault bool
}

// Refined reports whether the parameter has at least one predicate.
func (p ParameterSpec) Refined() bool {
	return refinement.IsRefined(p.Declared)
}

// PositionalName names the parameter at index i when no name is known.
func PositionalName(i int) string {
	return fmt.Sprintf("arg%d", i)
}

// Unannotated declares every parameter of fnType as unrefined, named by
// PositionalName.
func Unannotated(fnType reflect.Type) []Declaration {
	if fnType.Kind() != reflect.Func {
		return nil
	}
	decls := make([]Declaration, fnType.NumIn())
	for i := range decls {
		decls[i] = Declaration{Name: PositionalName(i)}
	}
	return decls
}

// Resolver resolves deferred references. *refinement.Registry implements it.
type Resolver interface {
	Resolve(d refinement.Descriptor) (refinement.Descriptor, error)
}

// Inspect resolves decls against fnType. There must be exactly one declaration
// per parameter, with unique non-empty names.
func Inspect(name string, fnType reflect.Type, decls []Declaration, resolver Resolver) ([]ParameterSpec, error) {
	fail := func(param, reason string, err error) error {
		return &SignatureResolutionError{Function: name, Parameter: param, Reason: reason, Err: err}
	}

	if fnType == nil || fnType.Kind() != reflect.Func {
		return nil, fail("", fmt.Sprintf("%v is not a function", fnType), nil)
	}
	if len(decls) != fnType.NumIn() {
		return nil, fail("", fmt.Sprintf("%d parameters declared, function takes %d", len(decls), fnType.NumIn()), nil)
	}

	seen := make(map[string]bool, len(decls))
	specs := make([]ParameterSpec, len(decls))
	for i, decl := range decls {
		if decl.Name == "" {
			return nil, fail(fmt.Sprintf("#%d", i), "parameter name is required", nil)
		}
		if seen[decl.Name] {
			return nil, fail(decl.Name, "duplicate parameter name", nil)
		}
		seen[decl.Name] = true

		goType := fnType.In(i)
		variadic := fnType.IsVariadic() && i == fnType.NumIn()-1

		declared := decl.Type
		if declared == nil {
			declared = refinement.PlainOf(typesystem.FromReflect(goType))
		}
		if resolver != nil {
			resolved, err := resolver.Resolve(declared)
			if err != nil {
				return nil, fail(decl.Name, "unresolved type "+declared.String(), err)
			}
			declared = resolved
		} else if hasRef(declared) {
			return nil, fail(decl.Name, "unresolved type "+declared.String()+" (no registry)", nil)
		}

		if err := checkBase(declared, goType, variadic); err != nil {
			return nil, fail(decl.Name, err.Error(), nil)
		}

		spec := ParameterSpec{
			Name:     decl.Name,
			Declared: declared,
			Position: i,
			GoType:   goType,
			Variadic: variadic,
		}
		if variadic {
			spec.PerElement = declaredForElement(declared.Type(), goType)
		}
		if decl.HasDefault {
			dv, err := defaultValue(decl.Default, goType)
			if err != nil {
				return nil, fail(decl.Name, err.Error(), nil)
			}
			spec.Default, spec.HasDefault = dv, true
		}
		specs[i] = spec
	}
	return specs, nil
}

func hasRef(d refinement.Descriptor) bool {
	switch desc := d.(type) {
	case refinement.Ref:
		return true
	case refinement.Annotated:
		return hasRef(desc.Base)
	}
	return false
}

// checkBase verifies that a concrete declared base type is the parameter's Go
// type. A variadic parameter may be declared either as the slice or as its
// element type. Shapes and type variables are accepted as declared.
func checkBase(d refinement.Descriptor, goType reflect.Type, variadic bool) error {
	base := d.Type()
	if base == nil {
		return fmt.Errorf("declared type %s has no base type", d)
	}
	rt, exact := typesystem.Exact(base)
	if !exact {
		if !base.Matches(goType) && !(variadic && base.Matches(goType.Elem())) && goType.Kind() != reflect.Interface {
			return fmt.Errorf("declared type %s does not fit Go type %s", base, goType)
		}
		return nil
	}
	if rt == goType || (variadic && rt == goType.Elem()) {
		return nil
	}
	// an interface parameter can receive the declared type at runtime
	if goType.Kind() == reflect.Interface && rt.Implements(goType) {
		return nil
	}
	return fmt.Errorf("declared type %s does not match Go type %s", rt, goType)
}

func declaredForElement(base typesystem.Type, sliceType reflect.Type) bool {
	if rt, ok := typesystem.Exact(base); ok {
		return rt == sliceType.Elem()
	}
	return !base.Matches(sliceType)
}

func defaultValue(v any, goType reflect.Type) (reflect.Value, error) {
	if v == nil {
		switch goType.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
			return reflect.Zero(goType), nil
		}
		return reflect.Value{}, fmt.Errorf("nil default for non-nillable %s", goType)
	}
	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(goType) {
		return reflect.Value{}, fmt.Errorf("default %v (%T) is not assignable to %s", v, v, goType)
	}
	return rv, nil
}
