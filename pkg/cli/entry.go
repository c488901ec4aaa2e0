// Package cli implements the refined command: it checks refined.yaml files,
// lists the known refined types, validates single values from the command
// line and shows the parameters of Go functions.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/funvibe/refined/internal/config"
	"github.com/funvibe/refined/internal/inspector"
	"github.com/funvibe/refined/internal/refinement"
	"github.com/funvibe/refined/internal/typesystem"
	"github.com/funvibe/refined/pkg/refined"
)

// Version is set at build time using: -ldflags "-X github.com/funvibe/refined/pkg/cli.Version=..."
var Version = "dev"

const usage = `Usage: refined <command> [flags]

Commands:
  check     [--config FILE]             validate refined.yaml
  types     [--config FILE]             list built-in and configured types
  validate  [--config FILE] TYPE VALUE  check one value against a type
  inspect   [--dir DIR] PATTERN FUNC    show the parameters of a Go function
  version                               print the version

Flags:
  -v        debug logging
`

// errUsage makes Run exit with status 2.
var errUsage = errors.New("usage")

// Run executes the command line args (without the program name) and returns
// the process exit status.
func Run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	c := &command{stdout: stdout, stderr: stderr, ui: newTheme(stdout)}
	var err error
	switch args[0] {
	case "check":
		err = c.check(args[1:])
	case "types":
		err = c.types(args[1:])
	case "validate":
		err = c.validate(args[1:])
	case "inspect":
		err = c.inspect(args[1:])
	case "version":
		fmt.Fprintf(stdout, "refined %s\n", Version)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", args[0])
		fmt.Fprintln(stderr, "Available: check, inspect, types, validate, version")
		return 2
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		fmt.Fprint(stderr, usage)
		return 2
	case errors.Is(err, errRejected):
		return 1
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
}

type command struct {
	stdout io.Writer
	stderr io.Writer
	ui     theme
	logger *zap.Logger
}

type commonFlags struct {
	configPath string
	verbose    bool
}

func (c *command) flags(name string, extra func(*flag.FlagSet)) (*flag.FlagSet, *commonFlags) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	cf := &commonFlags{}
	fs.StringVar(&cf.configPath, "config", "", "path to refined.yaml")
	fs.BoolVar(&cf.verbose, "v", false, "debug logging")
	if extra != nil {
		extra(fs)
	}
	return fs, cf
}

func (c *command) parse(fs *flag.FlagSet, cf *commonFlags, args []string) error {
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	c.logger = zap.NewNop()
	if cf.verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		c.logger = l
	}
	return nil
}

// loadRegistry returns the built-in registry extended with the configuration
// at path, or with the refined.yaml found from the working directory. A
// missing file is an error only when required is set.
func (c *command) loadRegistry(path string, required bool) (*refinement.Registry, *config.Config, error) {
	registry := refinement.DefaultRegistry()
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, nil, fmt.Errorf("cannot determine working directory: %w", err)
		}
		found, err := config.FindConfig(cwd)
		if err != nil {
			return nil, nil, err
		}
		if found == "" {
			if required {
				return nil, nil, fmt.Errorf("refined.yaml not found (or use --config)")
			}
			return registry, nil, nil
		}
		path = found
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Apply(registry); err != nil {
		return nil, nil, err
	}
	c.logger.Debug("loaded refined types", zap.String("config", path), zap.Int("types", len(cfg.Types)))
	return registry, cfg, nil
}

func (c *command) check(args []string) error {
	fs, cf := c.flags("check", nil)
	if err := c.parse(fs, cf, args); err != nil {
		return err
	}
	registry, cfg, err := c.loadRegistry(cf.configPath, true)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.stdout, "Config: %s %s\n", cfg.Path(), c.ui.ok("✓"))
	fmt.Fprintf(c.stdout, "Types: %d\n", len(cfg.Types))
	for _, ts := range cfg.Types {
		d, _ := registry.Lookup(ts.Name)
		fmt.Fprintf(c.stdout, "  %s %s %s\n", c.ui.name(ts.Name), refinement.Display(d), predicateList(d))
	}
	fmt.Fprintf(c.stdout, "\nAll checks passed %s\n", c.ui.ok("✓"))
	return nil
}

func (c *command) types(args []string) error {
	fs, cf := c.flags("types", nil)
	if err := c.parse(fs, cf, args); err != nil {
		return err
	}
	registry, _, err := c.loadRegistry(cf.configPath, false)
	if err != nil {
		return err
	}

	names := registry.Names()
	width := 0
	for _, n := range names {
		width = max(width, len(n))
	}
	for _, n := range names {
		d, _ := registry.Lookup(n)
		pad := strings.Repeat(" ", width-len(n))
		fmt.Fprintf(c.stdout, "%s%s  %s %s\n", c.ui.name(n), pad, refinement.Display(d), predicateList(d))
	}
	return nil
}

// errRejected is returned after the diagnostic of a rejected value has been
// printed.
var errRejected = errors.New("value rejected")

func (c *command) validate(args []string) error {
	fs, cf := c.flags("validate", nil)
	if err := c.parse(fs, cf, args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return errUsage
	}
	typeName, raw := fs.Arg(0), fs.Arg(1)

	registry, _, err := c.loadRegistry(cf.configPath, false)
	if err != nil {
		return err
	}
	d, ok := registry.Lookup(typeName)
	if !ok {
		return fmt.Errorf("%w: %s", refinement.ErrUndefined, typeName)
	}

	goType := valueType(d.Type())
	value, err := decodeValue(raw, goType)
	if err != nil {
		return fmt.Errorf("%s is not a %s: %w", raw, goType, err)
	}

	// a no-op function taking one value of the base type
	probe := reflect.MakeFunc(reflect.FuncOf([]reflect.Type{goType}, nil, false),
		func([]reflect.Value) []reflect.Value { return nil })
	f, err := refined.New(probe.Interface(),
		refined.Param("value", refined.Ref(typeName)),
		refined.WithName(typeName),
		refined.WithRegistry(registry),
		refined.WithLogger(c.logger),
	)
	if err != nil {
		return err
	}

	if err := f.Check([]any{value}, nil); err != nil {
		var rte *refined.RefinementTypeError
		if !errors.As(err, &rte) {
			return err
		}
		fmt.Fprintf(c.stdout, "%s %s\n", c.ui.fail("✗"), config.DiagnosticHeader)
		for _, failure := range rte.Failures {
			fmt.Fprintf(c.stdout, "  %s\n", failure.Line())
			fmt.Fprintf(c.stdout, "  violated: %s\n", failure.Predicate)
		}
		return errRejected
	}
	fmt.Fprintf(c.stdout, "%s %s is a valid %s\n", c.ui.ok("✓"), raw, typeName)
	return nil
}

func (c *command) inspect(args []string) error {
	var dir string
	fs, cf := c.flags("inspect", func(fs *flag.FlagSet) {
		fs.StringVar(&dir, "dir", ".", "directory to load the package from")
	})
	if err := c.parse(fs, cf, args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return errUsage
	}

	fn, err := inspector.LoadFunc(dir, fs.Arg(0), fs.Arg(1))
	if err != nil {
		return err
	}
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		t := p.Type
		if p.Variadic {
			t = "..." + t
		}
		params[i] = p.Name + " " + t
	}
	fmt.Fprintf(c.stdout, "func %s.%s(%s)\n", fn.Package, fn.Name, strings.Join(params, ", "))
	for i, p := range fn.Params {
		fmt.Fprintf(c.stdout, "  %d  %s\n", i, c.ui.name(p.Name))
	}
	return nil
}

func predicateList(d refinement.Descriptor) string {
	preds := refinement.Flatten(d)
	if len(preds) == 0 {
		return "(plain)"
	}
	parts := make([]string, len(preds))
	for i, p := range preds {
		parts[i] = p.String()
	}
	return strings.Join(parts, ", ")
}

// valueType picks the Go type a command line value is decoded into. Shapes
// decode into their generic form.
func valueType(base typesystem.Type) reflect.Type {
	if rt, ok := typesystem.Exact(base); ok {
		return rt
	}
	if app, ok := base.(typesystem.TApp); ok {
		switch app.Constructor {
		case typesystem.List:
			return reflect.TypeOf([]any(nil))
		case typesystem.Map:
			return reflect.TypeOf(map[string]any(nil))
		case typesystem.Set:
			return reflect.TypeOf(map[string]bool(nil))
		}
	}
	return reflect.TypeOf((*any)(nil)).Elem()
}

// decodeValue reads raw as YAML into a value of type t. Strings are taken
// verbatim.
func decodeValue(raw string, t reflect.Type) (any, error) {
	if t.Kind() == reflect.String {
		return reflect.ValueOf(raw).Convert(t).Interface(), nil
	}
	ptr := reflect.New(t)
	if err := yaml.Unmarshal([]byte(raw), ptr.Interface()); err != nil {
		return nil, err
	}
	return ptr.Elem().Interface(), nil
}

// theme styles terminal output. Colors are disabled for non-terminals, for
// TERM=dumb and when NO_COLOR is set.
type theme struct {
	okStyle   lipgloss.Style
	failStyle lipgloss.Style
	nameStyle lipgloss.Style
}

func newTheme(w io.Writer) theme {
	r := lipgloss.NewRenderer(w)
	if !colorEnabled(w) {
		r.SetColorProfile(termenv.Ascii)
	}
	return theme{
		okStyle:   r.NewStyle().Foreground(lipgloss.Color("#3FB950")),
		failStyle: r.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true),
		nameStyle: r.NewStyle().Foreground(lipgloss.Color("#5B8DEF")),
	}
}

func (t theme) ok(s string) string   { return t.okStyle.Render(s) }
func (t theme) fail(s string) string { return t.failStyle.Render(s) }
func (t theme) name(s string) string { return t.nameStyle.Render(s) }

func colorEnabled(w io.Writer) bool {
	// NO_COLOR convention: https://no-color.org/
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
