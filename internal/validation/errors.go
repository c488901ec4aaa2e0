package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/funvibe/refined/internal/config"
	"github.com/funvibe/refined/internal/refinement"
)

var (
	ErrRefinement = errors.New("refinement type violation")
	ErrBinding    = errors.New("cannot bind arguments")
)

// ValidationFailure records the first predicate one argument violated.
type ValidationFailure struct {
	Parameter string
	Declared  refinement.Descriptor
	Value     any
	Predicate string
}

// Line renders the failure as one diagnostic line.
func (f ValidationFailure) Line() string {
	return fmt.Sprintf(config.DiagnosticTemplate, f.Parameter, refinement.Display(f.Declared), f.Value)
}

// RefinementTypeError is returned for a call in which at least one argument
// violated its refined type. It lists every violating parameter in
// declaration order.
type RefinementTypeError struct {
	Function string
	Failures []ValidationFailure
}

func (e *RefinementTypeError) Error() string {
	lines := make([]string, 0, len(e.Failures)+1)
	lines = append(lines, config.DiagnosticHeader)
	for _, f := range e.Failures {
		lines = append(lines, f.Line())
	}
	return strings.Join(lines, config.LineSeparator)
}

func (e *RefinementTypeError) Is(target error) bool { return target == ErrRefinement }

// Parameters lists the names of the violating parameters.
func (e *RefinementTypeError) Parameters() []string {
	names := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		names[i] = f.Parameter
	}
	return names
}

// BindingError reports arguments that cannot be matched to parameters: too
// many, an unknown or repeated name, or a missing parameter without default.
type BindingError struct {
	Function  string
	Parameter string
	Reason    string
}

func (e *BindingError) Error() string {
	if e.Parameter == "" {
		return fmt.Sprintf("%s: %s", e.Function, e.Reason)
	}
	return fmt.Sprintf("%s: parameter %s: %s", e.Function, e.Parameter, e.Reason)
}

func (e *BindingError) Is(target error) bool { return target == ErrBinding }
