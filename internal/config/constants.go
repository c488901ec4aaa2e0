package config

import "runtime"

// Diagnostic text of a failed call.
const (
	DiagnosticHeader = "Conditions do not hold for the following parameters:"
	// parameter name, declared base type, offending value
	DiagnosticTemplate = "For parameter %s with refined type %s, %v is not a valid value"
)

// LineSeparator joins diagnostic lines.
var LineSeparator = lineSeparatorFor(runtime.GOOS)

func lineSeparatorFor(goos string) string {
	if goos == "windows" {
		return "\r\n"
	}
	return "\n"
}

// ConfigFileNames are the file names FindConfig looks for, in order.
var ConfigFileNames = []string{"refined.yaml", "refined.yml"}

// Tracing and metrics names
const (
	TracerName      = "github.com/funvibe/refined"
	ValidateSpan    = "refined.validate"
	MetricNamespace = "refined"
)

// Call outcomes reported to observers.
const (
	OutcomePassed   = "passed"
	OutcomeRejected = "rejected"
	OutcomeUnbound  = "unbound"
)
