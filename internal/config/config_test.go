package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/funvibe/refined/internal/refinement"
	"github.com/funvibe/refined/pkg/predicates"
)

const portsYAML = `
types:
  - name: Port
    base: int
    doc: TCP port
    predicates:
      - name: Greater
        args: [0]
      - name: Less
        args: [65536]
  - name: EvenPort
    base: Port
    predicates:
      - name: Even
  - name: Tags
    base: "[]string"
    predicates:
      - name: NonEmpty
  - name: Row
    base: string
    predicates:
      - name: Csv
        args: [";"]
`

func TestParseConfig_Valid(t *testing.T) {
	cfg, err := ParseConfig([]byte(portsYAML), "refined.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Types) != 4 {
		t.Fatalf("expected 4 types, got %d", len(cfg.Types))
	}
	port := cfg.Types[0]
	if port.Name != "Port" || port.Base != "int" || port.Doc != "TCP port" {
		t.Errorf("unexpected first type: %+v", port)
	}
	if len(port.Predicates) != 2 || port.Predicates[1].Name != "Less" {
		t.Fatalf("unexpected predicates: %+v", port.Predicates)
	}
	if got := port.Predicates[1].Args[0]; got != 65536 {
		t.Errorf("Less arg = %#v, want 65536", got)
	}
	if cfg.Path() != "refined.yaml" {
		t.Errorf("path = %q", cfg.Path())
	}
}

func TestParseConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"no types", "types: []", "no types defined"},
		{"missing name", "types:\n  - base: int", "name is required"},
		{"missing base", "types:\n  - name: A", "base is required"},
		{"duplicate", "types:\n  - name: A\n    base: int\n  - name: A\n    base: int", "already declared"},
		{"unknown predicate", "types:\n  - name: A\n    base: int\n    predicates:\n      - name: Huge", "unknown predicate"},
		{"predicate without name", "types:\n  - name: A\n    base: int\n    predicates:\n      - args: [1]", "name is required"},
		{"bad yaml", "types: [", "parsing"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tc.yaml), "refined.yaml")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error = %q, want it to contain %q", err, tc.want)
			}
		})
	}
}

func TestApply(t *testing.T) {
	cfg, err := ParseConfig([]byte(portsYAML), "refined.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	registry := refinement.NewRegistry()
	if err := cfg.Apply(registry); err != nil {
		t.Fatalf("apply: %v", err)
	}

	port, ok := registry.Lookup("Port")
	if !ok {
		t.Fatal("Port not defined")
	}
	preds := refinement.Flatten(port)
	if len(preds) != 2 {
		t.Fatalf("Port has %d predicates, want 2", len(preds))
	}
	if !preds[0].Evaluate(80) || preds[0].Evaluate(0) {
		t.Error("Greater(0) misbehaves")
	}
	if preds[1].Evaluate(70000) {
		t.Error("Less(65536) accepted 70000")
	}

	even, _ := registry.Lookup("EvenPort")
	names := []string{}
	for _, p := range refinement.Flatten(even) {
		names = append(names, p.Name())
	}
	if strings.Join(names, ",") != "Greater,Less,Even" {
		t.Errorf("EvenPort predicates = %v, want inherited ones first", names)
	}
	if got := refinement.Display(even); got != "<int>" {
		t.Errorf("Display(EvenPort) = %q, want <int>", got)
	}

	row, _ := registry.Lookup("Row")
	if !refinement.Flatten(row)[0].Evaluate("a;b\nc;d") {
		t.Error("Row rejected semicolon CSV")
	}

	if err := cfg.Apply(registry); !errors.Is(err, refinement.ErrDuplicate) {
		t.Errorf("second apply error = %v, want ErrDuplicate", err)
	}
}

func TestApply_BuiltinBase(t *testing.T) {
	yaml := `
types:
  - name: SmallPositive
    base: PositiveInt
    predicates:
      - name: Less
        args: [10]
`
	cfg, err := ParseConfig([]byte(yaml), "refined.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	registry := refinement.DefaultRegistry()
	if err := cfg.Apply(registry); err != nil {
		t.Fatalf("apply: %v", err)
	}
	d, _ := registry.Lookup("SmallPositive")
	if n := len(refinement.Flatten(d)); n != 2 {
		t.Errorf("SmallPositive has %d predicates, want 2", n)
	}
}

func TestApply_BuildErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{"unknown base", "types:\n  - name: A\n    base: complex128", nil},
		{"predicate on wrong base", "types:\n  - name: A\n    base: string\n    predicates:\n      - name: Positive", predicates.ErrBoundMismatch},
		{"wrong arity", "types:\n  - name: A\n    base: int\n    predicates:\n      - name: Greater", predicates.ErrBadArguments},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := ParseConfig([]byte(tc.yaml), "refined.yaml")
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			err = cfg.Apply(refinement.NewRegistry())
			if err == nil {
				t.Fatal("expected error")
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Errorf("error = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestFindConfig(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	path, err := FindConfig(nested)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "" && strings.HasPrefix(path, root) {
		t.Errorf("found unexpected config %s", path)
	}

	want := filepath.Join(root, "a", "refined.yml")
	if err := os.WriteFile(want, []byte(portsYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	path, err = FindConfig(nested)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != want {
		t.Errorf("FindConfig = %q, want %q", path, want)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Types) != 4 {
		t.Errorf("loaded %d types", len(cfg.Types))
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error")
	}
}

func TestLineSeparator(t *testing.T) {
	if got := lineSeparatorFor("windows"); got != "\r\n" {
		t.Errorf("windows separator = %q", got)
	}
	if got := lineSeparatorFor("linux"); got != "\n" {
		t.Errorf("linux separator = %q", got)
	}
}
