package validation

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/funvibe/refined/internal/config"
	"github.com/funvibe/refined/internal/refinement"
)

// Report describes the validation of one call.
type Report struct {
	Function string
	Outcome  string // a config.Outcome* value
	Failures []ValidationFailure
	Duration time.Duration
}

// Observer is notified after every validated or unbindable call.
type Observer interface {
	Observe(Report)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Report)

func (f ObserverFunc) Observe(r Report) { f(r) }

// Engine validates bound arguments. It is stateless apart from its
// collaborators and safe for concurrent use.
type Engine struct {
	logger    *zap.Logger
	tracer    trace.Tracer
	observers []Observer
}

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		if t != nil {
			e.tracer = t
		}
	}
}

func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observers = append(e.observers, o)
		}
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		logger: zap.NewNop(),
		tracer: otel.Tracer(config.TracerName),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Validate checks every argument in order and returns one failure per
// violating argument. Defaulted arguments and plain declarations are skipped.
// Within an annotated declaration predicates run innermost first; those not
// applicable to the argument's runtime type are skipped, and the first one
// that does not hold is the one reported.
func Validate(args []Argument) []ValidationFailure {
	var failures []ValidationFailure
	for _, arg := range args {
		if arg.Defaulted || arg.Spec == nil {
			continue
		}
		for _, pred := range refinement.Flatten(arg.Spec.Declared) {
			if !Applicable(pred, arg.Value) {
				continue
			}
			if !pred.Evaluate(arg.Value) {
				failures = append(failures, ValidationFailure{
					Parameter: arg.Name,
					Declared:  arg.Spec.Declared,
					Value:     arg.Value,
					Predicate: pred.String(),
				})
				break
			}
		}
	}
	return failures
}

// Check validates b for function and returns a *RefinementTypeError when any
// argument is rejected.
func (e *Engine) Check(ctx context.Context, function string, b *Binding) error {
	start := time.Now()
	_, span := e.tracer.Start(ctx, config.ValidateSpan, trace.WithAttributes(
		attribute.String("refined.function", function),
		attribute.Int("refined.arguments", len(b.Arguments)),
	))
	defer span.End()

	failures := Validate(b.Arguments)
	report := Report{Function: function, Failures: failures, Outcome: config.OutcomePassed}
	span.SetAttributes(attribute.Int("refined.failures", len(failures)))

	var err error
	if len(failures) > 0 {
		report.Outcome = config.OutcomeRejected
		err = &RefinementTypeError{Function: function, Failures: failures}
		span.SetStatus(codes.Error, "refinement violated")
		for _, f := range failures {
			e.logger.Debug("refinement violated",
				zap.String("function", function),
				zap.String("parameter", f.Parameter),
				zap.String("predicate", f.Predicate),
				zap.Any("value", f.Value),
			)
		}
	}

	report.Duration = time.Since(start)
	e.notify(report)
	return err
}

// Unbound reports a call whose arguments could not be bound.
func (e *Engine) Unbound(function string, err error) {
	e.logger.Debug("cannot bind arguments", zap.String("function", function), zap.Error(err))
	e.notify(Report{Function: function, Outcome: config.OutcomeUnbound})
}

func (e *Engine) notify(r Report) {
	for _, o := range e.observers {
		o.Observe(r)
	}
}
