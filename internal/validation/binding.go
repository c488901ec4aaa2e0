package validation

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/funvibe/refined/internal/inspector"
)

// Argument is one value to check, paired with the parameter it was bound to.
// A variadic parameter declared per element yields one Argument per element,
// named like "xs[1]".
type Argument struct {
	Name      string
	Spec      *inspector.ParameterSpec
	Value     any
	Defaulted bool
}

// Binding is the result of matching call arguments to parameters.
type Binding struct {
	Arguments []Argument
	// In holds one value per parameter, ready for reflect.Value.CallSlice.
	In []reflect.Value
}

// Bind matches positional args and named kwargs to specs. Positional
// arguments fill parameters in declaration order; once the fixed parameters
// are used up the rest go to a trailing variadic parameter. A parameter left
// unbound takes its default value, which is never checked.
func Bind(function string, specs []inspector.ParameterSpec, args []any, kwargs map[string]any) (*Binding, error) {
	fail := func(param, format string, a ...any) error {
		return &BindingError{Function: function, Parameter: param, Reason: fmt.Sprintf(format, a...)}
	}

	n := len(specs)
	variadic := n > 0 && specs[n-1].Variadic
	fixed := n
	if variadic {
		fixed = n - 1
	}
	if !variadic && len(args) > n {
		return nil, fail("", "takes %d argument(s), got %d", n, len(args))
	}

	in := make([]reflect.Value, n)
	set := make([]bool, n)
	defaulted := make([]bool, n)

	for i, a := range args {
		if i >= fixed {
			break
		}
		v, err := valueFor(&specs[i], a)
		if err != nil {
			return nil, fail(specs[i].Name, "%v", err)
		}
		in[i], set[i] = v, true
	}
	if variadic && len(args) > fixed {
		spec := &specs[n-1]
		slice := reflect.MakeSlice(spec.GoType, 0, len(args)-fixed)
		for _, a := range args[fixed:] {
			v, err := elemValueFor(spec, a)
			if err != nil {
				return nil, fail(spec.Name, "%v", err)
			}
			slice = reflect.Append(slice, v)
		}
		in[n-1], set[n-1] = slice, true
	}

	names := make([]string, 0, len(kwargs))
	for name := range kwargs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		i := indexOf(specs, name)
		if i < 0 {
			return nil, fail(name, "unexpected keyword argument")
		}
		if set[i] {
			return nil, fail(name, "got multiple values")
		}
		v, err := valueFor(&specs[i], kwargs[name])
		if err != nil {
			return nil, fail(name, "%v", err)
		}
		in[i], set[i] = v, true
	}

	for i := range specs {
		if set[i] {
			continue
		}
		switch {
		case specs[i].HasDefault:
			in[i], defaulted[i] = specs[i].Default, true
		case specs[i].Variadic:
			in[i] = reflect.MakeSlice(specs[i].GoType, 0, 0)
		default:
			return nil, fail(specs[i].Name, "missing argument")
		}
	}

	return &Binding{Arguments: arguments(specs, in, defaulted), In: in}, nil
}

// BindValues pairs already converted call values, as received by a function
// built with reflect.MakeFunc, with specs. The variadic parameter, if any,
// arrives as a slice.
func BindValues(specs []inspector.ParameterSpec, in []reflect.Value) *Binding {
	return &Binding{Arguments: arguments(specs, in, make([]bool, len(specs))), In: in}
}

func arguments(specs []inspector.ParameterSpec, in []reflect.Value, defaulted []bool) []Argument {
	out := make([]Argument, 0, len(specs))
	for i := range specs {
		spec := &specs[i]
		if spec.PerElement && !defaulted[i] {
			for j := 0; j < in[i].Len(); j++ {
				out = append(out, Argument{
					Name:  fmt.Sprintf("%s[%d]", spec.Name, j),
					Spec:  spec,
					Value: in[i].Index(j).Interface(),
				})
			}
			continue
		}
		out = append(out, Argument{
			Name:      spec.Name,
			Spec:      spec,
			Value:     in[i].Interface(),
			Defaulted: defaulted[i],
		})
	}
	return out
}

func indexOf(specs []inspector.ParameterSpec, name string) int {
	for i := range specs {
		if specs[i].Name == name {
			return i
		}
	}
	return -1
}

func valueFor(spec *inspector.ParameterSpec, a any) (reflect.Value, error) {
	return assignable(a, spec.GoType)
}

func elemValueFor(spec *inspector.ParameterSpec, a any) (reflect.Value, error) {
	return assignable(a, spec.GoType.Elem())
}

// assignable never converts: passing an int where an int64 is expected is a
// binding error rather than a silent conversion.
func assignable(a any, t reflect.Type) (reflect.Value, error) {
	if a == nil {
		switch t.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("nil is not a valid %s", t)
	}
	v := reflect.ValueOf(a)
	if !v.Type().AssignableTo(t) {
		return reflect.Value{}, fmt.Errorf("cannot use %v (%T) as %s", a, a, t)
	}
	return v, nil
}
