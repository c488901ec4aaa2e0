// Package refined validates function arguments against refined types: a Go
// type narrowed by ordered predicates.
//
//	plus1, err := refined.Wrap(func(x int) int { return x + 1 },
//		refined.Param("x", refined.Positive[int]()))
//
// A call through the wrapper checks every refined argument before the
// function runs. When any argument violates its type, the function is not
// called and a single *RefinementTypeError lists every violating parameter.
package refined

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
	"strings"

	"github.com/funvibe/refined/internal/inspector"
	"github.com/funvibe/refined/internal/validation"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Func is a validated function called with dynamically typed arguments.
// It is safe for concurrent use.
type Func struct {
	name   string
	fn     reflect.Value
	specs  []inspector.ParameterSpec
	engine *validation.Engine
}

// New inspects fn and its parameter declarations. When any Parameter is
// given there must be one per parameter of fn, in order; with none, every
// parameter is unrefined and named arg0, arg1 and so on. Declaration problems
// are reported here as a *SignatureResolutionError, never at call time.
func New(fn any, opts ...Setting) (*Func, error) {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func || fv.IsNil() {
		return nil, &SignatureResolutionError{
			Function: fmt.Sprintf("%T", fn),
			Reason:   "not a function",
		}
	}

	s := collect(opts)
	if s.name == "" {
		s.name = funcName(fv)
	}
	var resolver inspector.Resolver
	if s.registry != nil {
		resolver = s.registry
	}
	if s.decls == nil {
		s.decls = inspector.Unannotated(fv.Type())
	}
	specs, err := inspector.Inspect(s.name, fv.Type(), s.decls, resolver)
	if err != nil {
		return nil, err
	}
	return &Func{
		name:   s.name,
		fn:     fv,
		specs:  specs,
		engine: validation.NewEngine(s.engine...),
	}, nil
}

func collect(list []Setting) *settings {
	s := &settings{registry: defaultRegistry}
	for _, item := range list {
		if item != nil {
			item.apply(s)
		}
	}
	return s
}

// funcName derives a short name such as "main.plus1" from the function's
// symbol.
func funcName(fv reflect.Value) string {
	rf := runtime.FuncForPC(fv.Pointer())
	if rf == nil {
		return fv.Type().String()
	}
	name := rf.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}

func (f *Func) Name() string { return f.name }

// Params returns the resolved parameters in declaration order.
func (f *Func) Params() []ParameterSpec {
	return append([]ParameterSpec(nil), f.specs...)
}

// Call calls the function with positional arguments.
func (f *Func) Call(args ...any) ([]any, error) {
	return f.CallContext(context.Background(), args, nil)
}

// CallNamed calls the function with positional arguments followed by named
// ones. A parameter bound by both is an error.
func (f *Func) CallNamed(args []any, kwargs map[string]any) ([]any, error) {
	return f.CallContext(context.Background(), args, kwargs)
}

// CallContext is CallNamed with a context that parents the validation span.
// The returned error is a *BindingError or a *RefinementTypeError; errors
// returned by the function itself are part of the results.
func (f *Func) CallContext(ctx context.Context, args []any, kwargs map[string]any) ([]any, error) {
	b, err := f.check(ctx, args, kwargs)
	if err != nil {
		return nil, err
	}
	out := f.invoke(b.In)
	results := make([]any, len(out))
	for i, v := range out {
		results[i] = v.Interface()
	}
	return results, nil
}

// Check binds and validates the arguments without calling the function.
func (f *Func) Check(args []any, kwargs map[string]any) error {
	_, err := f.check(context.Background(), args, kwargs)
	return err
}

func (f *Func) check(ctx context.Context, args []any, kwargs map[string]any) (*validation.Binding, error) {
	b, err := validation.Bind(f.name, f.specs, args, kwargs)
	if err != nil {
		f.engine.Unbound(f.name, err)
		return nil, err
	}
	if err := f.engine.Check(ctx, f.name, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (f *Func) invoke(in []reflect.Value) []reflect.Value {
	if f.fn.Type().IsVariadic() {
		return f.fn.CallSlice(in)
	}
	return f.fn.Call(in)
}

// Wrap returns a function of the same type as fn that validates its
// arguments before calling fn. When validation fails and the last result of
// fn is an error, the wrapper returns zero values with the
// *RefinementTypeError in that slot; otherwise it panics with it.
//
// Wrapping an already wrapped function checks the arguments again with the
// same outcome.
func Wrap[F any](fn F, opts ...Setting) (F, error) {
	var zero F
	f, err := New(fn, opts...)
	if err != nil {
		return zero, err
	}

	ft := f.fn.Type()
	returnsError := ft.NumOut() > 0 && ft.Out(ft.NumOut()-1) == errorType

	wrapped := reflect.MakeFunc(ft, func(in []reflect.Value) []reflect.Value {
		b := validation.BindValues(f.specs, in)
		if err := f.engine.Check(context.Background(), f.name, b); err != nil {
			if !returnsError {
				panic(err)
			}
			return failedResults(ft, err)
		}
		return f.invoke(in)
	})
	return wrapped.Interface().(F), nil
}

// MustWrap is Wrap that panics when the declarations do not fit fn.
func MustWrap[F any](fn F, opts ...Setting) F {
	wrapped, err := Wrap(fn, opts...)
	if err != nil {
		panic(err)
	}
	return wrapped
}

func failedResults(ft reflect.Type, err error) []reflect.Value {
	out := make([]reflect.Value, ft.NumOut())
	for i := range out {
		out[i] = reflect.Zero(ft.Out(i))
	}
	ev := reflect.New(errorType).Elem()
	ev.Set(reflect.ValueOf(err))
	out[len(out)-1] = ev
	return out
}
