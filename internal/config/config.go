// Package config holds the diagnostic constants and the refined.yaml loader,
// which declares named refined types without writing Go code.
//
// A refined.yaml looks like:
//
//	types:
//	  - name: Port
//	    base: int
//	    predicates:
//	      - name: Greater
//	        args: [0]
//	      - name: Less
//	        args: [65536]
//	  - name: Header
//	    base: "[]string"
//	    predicates:
//	      - name: NonEmpty
//
// A base may also name a type declared earlier in the file or a built-in
// alias; the new predicates then run after the inherited ones.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/refined/internal/refinement"
	"github.com/funvibe/refined/internal/typesystem"
	"github.com/funvibe/refined/pkg/predicates"
)

// Config represents the top-level refined.yaml configuration.
type Config struct {
	Types []TypeSpec `yaml:"types"`

	path string
}

// TypeSpec declares one named refined type.
type TypeSpec struct {
	// Name is the alias name used with refined.Ref.
	Name string `yaml:"name"`

	// Base is a Go type expression ("int", "[]string", "map[string]int",
	// "set[int]") or the name of another refined type.
	Base string `yaml:"base"`

	// Doc is shown by the CLI.
	Doc string `yaml:"doc,omitempty"`

	Predicates []PredicateSpec `yaml:"predicates,omitempty"`
}

// PredicateSpec names a catalog predicate and its auxiliary arguments.
type PredicateSpec struct {
	Name string `yaml:"name"`
	Args []any  `yaml:"args,omitempty"`
}

// LoadConfig reads and parses a refined.yaml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses refined.yaml content from bytes.
// The path argument is used only for error messages.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.path = path
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FindConfig searches for refined.yaml starting from dir and walking up
// to parent directories. It returns an empty path and nil error when no
// file is found.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// validate checks the configuration for errors that do not depend on a
// registry: missing names, duplicates and unknown predicates.
func (c *Config) validate(path string) error {
	if len(c.Types) == 0 {
		return fmt.Errorf("%s: no types defined", path)
	}

	seen := make(map[string]int)
	for i, ts := range c.Types {
		if ts.Name == "" {
			return fmt.Errorf("%s: types[%d]: name is required", path, i)
		}
		if prev, ok := seen[ts.Name]; ok {
			return fmt.Errorf("%s: types[%d] (%s): already declared at types[%d]", path, i, ts.Name, prev)
		}
		seen[ts.Name] = i

		if ts.Base == "" {
			return fmt.Errorf("%s: types[%d] (%s): base is required", path, i, ts.Name)
		}
		for j, ps := range ts.Predicates {
			if ps.Name == "" {
				return fmt.Errorf("%s: types[%d].predicates[%d] (%s): name is required", path, i, j, ts.Name)
			}
			if _, ok := predicates.Lookup(ps.Name); !ok {
				return fmt.Errorf("%s: types[%d].predicates[%d] (%s): %w: %s",
					path, i, j, ts.Name, predicates.ErrUnknownPredicate, ps.Name)
			}
		}
	}
	return nil
}

// Descriptors builds every declared type in file order. A base that is not a
// Go type expression is looked up among the types already built and then in
// registry, which may be nil.
func (c *Config) Descriptors(registry *refinement.Registry) ([]Declared, error) {
	built := make(map[string]refinement.Descriptor, len(c.Types))
	out := make([]Declared, 0, len(c.Types))

	for i, ts := range c.Types {
		base, err := c.resolveBase(ts.Base, built, registry)
		if err != nil {
			return nil, fmt.Errorf("%s: types[%d] (%s): %w", c.path, i, ts.Name, err)
		}

		bound := base.Type()
		preds := make([]predicates.Predicate, 0, len(ts.Predicates))
		for j, ps := range ts.Predicates {
			p, err := predicates.Build(ps.Name, bound, ps.Args...)
			if err != nil {
				return nil, fmt.Errorf("%s: types[%d].predicates[%d] (%s): %w", c.path, i, j, ts.Name, err)
			}
			preds = append(preds, p)
		}

		var d refinement.Descriptor = base
		if len(preds) > 0 {
			d = refinement.Refine(base, preds...)
		}
		built[ts.Name] = d
		out = append(out, Declared{Name: ts.Name, Doc: ts.Doc, Descriptor: d})
	}
	return out, nil
}

// Declared is a refined type built from the configuration.
type Declared struct {
	Name       string
	Doc        string
	Descriptor refinement.Descriptor
}

func (c *Config) resolveBase(expr string, built map[string]refinement.Descriptor, registry *refinement.Registry) (refinement.Descriptor, error) {
	if d, ok := built[expr]; ok {
		return d, nil
	}
	t, err := typesystem.Parse(expr)
	if err == nil {
		return refinement.PlainOf(t), nil
	}
	if registry != nil {
		if d, ok := registry.Lookup(expr); ok {
			return d, nil
		}
	}
	return nil, fmt.Errorf("base %q: %w", expr, err)
}

// Apply defines every declared type in registry. A name that is already
// defined is an error.
func (c *Config) Apply(registry *refinement.Registry) error {
	decls, err := c.Descriptors(registry)
	if err != nil {
		return err
	}
	for _, d := range decls {
		if _, exists := registry.Lookup(d.Name); exists {
			return fmt.Errorf("%s: %w: %s", c.path, refinement.ErrDuplicate, d.Name)
		}
	}
	for _, d := range decls {
		if err := registry.Define(d.Name, d.Descriptor); err != nil {
			return fmt.Errorf("%s: %w", c.path, err)
		}
	}
	return nil
}

// Path is the file the configuration was read from.
func (c *Config) Path() string { return c.path }
