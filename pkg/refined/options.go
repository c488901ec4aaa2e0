package refined

import (
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/funvibe/refined/internal/inspector"
	"github.com/funvibe/refined/internal/validation"
)

// Setting is accepted by Wrap and New. It is either a Parameter or an Option.
type Setting interface {
	apply(*settings)
}

type settings struct {
	name     string
	registry *Registry
	decls    []inspector.Declaration
	engine   []validation.Option
}

// Parameter declares one parameter of a wrapped function. Parameters are
// matched to the function's parameters by position.
type Parameter struct {
	decl inspector.Declaration
}

// Param declares the parameter name with the refined type d. A nil d leaves
// the parameter unrefined.
func Param(name string, d Descriptor) Parameter {
	return Parameter{decl: inspector.Declaration{Name: name, Type: d}}
}

// Arg declares an unrefined parameter.
func Arg(name string) Parameter {
	return Param(name, nil)
}

// Default sets the value used when a call leaves the parameter unbound.
// Default values are not validated.
func (p Parameter) Default(v any) Parameter {
	p.decl.Default, p.decl.HasDefault = v, true
	return p
}

func (p Parameter) Name() string { return p.decl.Name }

func (p Parameter) apply(s *settings) {
	s.decls = append(s.decls, p.decl)
}

// Option configures the wrapper rather than a parameter.
type Option func(*settings)

func (o Option) apply(s *settings) { o(s) }

// WithName sets the function name used in logs, spans and metrics.
func WithName(name string) Option {
	return func(s *settings) { s.name = name }
}

// WithRegistry resolves Ref descriptors against r instead of the default
// registry.
func WithRegistry(r *Registry) Option {
	return func(s *settings) { s.registry = r }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *settings) { s.engine = append(s.engine, validation.WithLogger(l)) }
}

func WithTracer(t trace.Tracer) Option {
	return func(s *settings) { s.engine = append(s.engine, validation.WithTracer(t)) }
}

// WithObserver adds an observer notified after every call, e.g. *Metrics.
func WithObserver(o Observer) Option {
	return func(s *settings) { s.engine = append(s.engine, validation.WithObserver(o)) }
}
