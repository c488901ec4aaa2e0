package inspector

import (
	"fmt"
	"go/types"
	"os"
	"strings"

	"golang.org/x/tools/go/packages"
)

// SourceParam is one parameter as written in Go source.
type SourceParam struct {
	Name     string
	Type     string // element type for a variadic parameter
	Variadic bool
}

// SourceFunc is the signature of a function found in Go source.
type SourceFunc struct {
	Package string
	Name    string
	Params  []SourceParam
}

// Names returns the parameter names in order.
func (f *SourceFunc) Names() []string {
	names := make([]string, len(f.Params))
	for i, p := range f.Params {
		names[i] = p.Name
	}
	return names
}

// LoadFunc loads the package matching pattern from dir and extracts the
// signature of funcName. A method is named as "Type.Method"; its receiver is
// not part of the returned parameters.
func LoadFunc(dir, pattern, funcName string) (*SourceFunc, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName |
			packages.NeedTypes |
			packages.NeedTypesInfo |
			packages.NeedSyntax,
		Dir: dir,
		Env: append(os.Environ(), "GOWORK=off"),
	}

	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		return nil, fmt.Errorf("loading packages: %w", err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no package matches %q", pattern)
	}

	var errs []string
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, fmt.Sprintf("%s: %s", pkg.PkgPath, e.Msg))
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors:\n  %s", strings.Join(errs, "\n  "))
	}

	pkg := pkgs[0]
	sig, err := lookupSignature(pkg, funcName)
	if err != nil {
		return nil, err
	}
	if tparams := sig.TypeParams(); tparams != nil && tparams.Len() > 0 {
		return nil, fmt.Errorf("%s: generic functions cannot be wrapped directly, instantiate them first", funcName)
	}

	return &SourceFunc{
		Package: pkg.PkgPath,
		Name:    funcName,
		Params:  extractParams(sig),
	}, nil
}

func lookupSignature(pkg *packages.Package, funcName string) (*types.Signature, error) {
	scope := pkg.Types.Scope()

	typeName, method, isMethod := strings.Cut(funcName, ".")
	if !isMethod {
		obj := scope.Lookup(funcName)
		if obj == nil {
			return nil, fmt.Errorf("function %q not found in package %s", funcName, pkg.PkgPath)
		}
		fn, ok := obj.(*types.Func)
		if !ok {
			return nil, fmt.Errorf("%q is not a function in package %s", funcName, pkg.PkgPath)
		}
		return fn.Type().(*types.Signature), nil
	}

	obj := scope.Lookup(typeName)
	if obj == nil {
		return nil, fmt.Errorf("type %q not found in package %s", typeName, pkg.PkgPath)
	}
	// a method set of *T includes the methods declared on T
	mset := types.NewMethodSet(types.NewPointer(obj.Type()))
	for i := 0; i < mset.Len(); i++ {
		if fn := mset.At(i).Obj(); fn.Name() == method {
			return fn.Type().(*types.Signature), nil
		}
	}
	return nil, fmt.Errorf("method %q not found on %s in package %s", method, typeName, pkg.PkgPath)
}

func extractParams(sig *types.Signature) []SourceParam {
	params := sig.Params()
	out := make([]SourceParam, 0, params.Len())
	for i := 0; i < params.Len(); i++ {
		param := params.At(i)
		sp := SourceParam{
			Name: param.Name(),
			Type: types.TypeString(param.Type(), shortQualifier),
		}
		if sig.Variadic() && i == params.Len()-1 {
			sp.Variadic = true
			if slice, ok := param.Type().(*types.Slice); ok {
				sp.Type = types.TypeString(slice.Elem(), shortQualifier)
			}
		}
		// unnamed and blank parameters still need a unique name for binding
		if sp.Name == "" || sp.Name == "_" {
			sp.Name = PositionalName(i)
		}
		out = append(out, sp)
	}
	return out
}

// shortQualifier renders package-qualified types the way reflect does, by
// package name rather than import path.
func shortQualifier(p *types.Package) string {
	return p.Name()
}
