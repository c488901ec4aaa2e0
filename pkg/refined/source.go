package refined

import (
	"fmt"
	"sort"

	"github.com/funvibe/refined/internal/inspector"
)

// ParamsFromSource reads the parameter names of funcName from the Go package
// matching pattern in dir and returns one Parameter per parameter, refined
// with the descriptor given for its name. Names absent from types stay
// unrefined; a name in types that the function does not have is an error.
//
// It loads and type-checks the package with the go command, so it belongs in
// start-up code or generators rather than hot paths.
func ParamsFromSource(dir, pattern, funcName string, types map[string]Descriptor) ([]Setting, error) {
	src, err := inspector.LoadFunc(dir, pattern, funcName)
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(src.Params))
	params := make([]Setting, 0, len(src.Params))
	for _, p := range src.Params {
		known[p.Name] = true
		params = append(params, Param(p.Name, types[p.Name]))
	}

	var unknown []string
	for name := range types {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, &SignatureResolutionError{
			Function:  src.Package + "." + funcName,
			Parameter: unknown[0],
			Reason:    fmt.Sprintf("no such parameter (function has %v)", src.Names()),
		}
	}
	return params, nil
}
