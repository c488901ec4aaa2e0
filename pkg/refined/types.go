package refined

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/funvibe/refined/internal/config"
	"github.com/funvibe/refined/internal/inspector"
	"github.com/funvibe/refined/internal/metrics"
	"github.com/funvibe/refined/internal/refinement"
	"github.com/funvibe/refined/internal/validation"
	"github.com/funvibe/refined/pkg/predicates"
)

// Declared types
type Descriptor = refinement.Descriptor
type PlainType = refinement.Plain
type AnnotatedType = refinement.Annotated
type RefType = refinement.Ref
type Predicate = predicates.Predicate
type Registry = refinement.Registry

// Validation results
type ParameterSpec = inspector.ParameterSpec
type ValidationFailure = validation.ValidationFailure
type RefinementTypeError = validation.RefinementTypeError
type BindingError = validation.BindingError
type SignatureResolutionError = inspector.SignatureResolutionError

// Observation
type Report = validation.Report
type Observer = validation.Observer
type ObserverFunc = validation.ObserverFunc
type Metrics = metrics.Metrics

var (
	ErrRefinement = validation.ErrRefinement
	ErrSignature  = inspector.ErrSignature
	ErrBinding    = validation.ErrBinding
)

// Call outcomes seen by observers
const (
	OutcomePassed   = config.OutcomePassed
	OutcomeRejected = config.OutcomeRejected
	OutcomeUnbound  = config.OutcomeUnbound
)

// NewMetrics registers the Prometheus collectors with reg (the default
// registerer when nil). Pass the result to WithObserver.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return metrics.New(reg)
}
