package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/funvibe/refined/internal/typesystem"
)

const testConfig = `
types:
  - name: Port
    base: int
    predicates:
      - name: Greater
        args: [0]
      - name: Less
        args: [65536]
  - name: Hosts
    base: "[]string"
    predicates:
      - name: NonEmpty
`

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "refined.yaml")
	if err := os.WriteFile(path, []byte(testConfig), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := Run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Usage(t *testing.T) {
	if code, _, stderr := run(); code != 2 || !strings.Contains(stderr, "Usage:") {
		t.Errorf("no args: code=%d stderr=%q", code, stderr)
	}
	if code, _, stderr := run("frobnicate"); code != 2 || !strings.Contains(stderr, "Unknown command: frobnicate") {
		t.Errorf("unknown: code=%d stderr=%q", code, stderr)
	}
	if code, stdout, _ := run("version"); code != 0 || stdout != "refined dev\n" {
		t.Errorf("version: code=%d stdout=%q", code, stdout)
	}
	if code, _, _ := run("validate", "PositiveInt"); code != 2 {
		t.Errorf("validate with one arg: code=%d, want 2", code)
	}
	if code, _, _ := run("check", "--nope"); code != 2 {
		t.Errorf("bad flag: code=%d, want 2", code)
	}
}

func TestRun_Check(t *testing.T) {
	path := writeConfig(t)
	code, stdout, stderr := run("check", "--config", path)
	if code != 0 {
		t.Fatalf("code=%d stderr=%q", code, stderr)
	}
	for _, want := range []string{
		"Config: " + path + " ✓",
		"Types: 2",
		"Port <int> Greater[int](0), Less[int](65536)",
		"Hosts <[]string> NonEmpty[[]string]",
		"All checks passed ✓",
	} {
		if !strings.Contains(stdout, want) {
			t.Errorf("output missing %q:\n%s", want, stdout)
		}
	}
}

func TestRun_CheckErrors(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "refined.yaml")
	if err := os.WriteFile(bad, []byte("types:\n  - name: A\n    base: string\n    predicates:\n      - name: Positive\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	code, _, stderr := run("check", "--config", bad)
	if code != 1 || !strings.HasPrefix(stderr, "Error: ") {
		t.Errorf("code=%d stderr=%q", code, stderr)
	}

	code, _, stderr = run("check", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	if code != 1 || !strings.Contains(stderr, "reading config") {
		t.Errorf("code=%d stderr=%q", code, stderr)
	}
}

func TestRun_Types(t *testing.T) {
	code, stdout, _ := run("types", "--config", writeConfig(t))
	if code != 0 {
		t.Fatalf("code=%d", code)
	}
	for _, want := range []string{"PositiveInt", "CsvString", "Port", "Hosts"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("types output missing %s", want)
		}
	}
}

func TestRun_Validate(t *testing.T) {
	path := writeConfig(t)
	tests := []struct {
		name string
		args []string
		code int
		want string
	}{
		{"valid port", []string{"Port", "8080"}, 0, "✓ 8080 is a valid Port"},
		{"port too large", []string{"Port", "70000"}, 1, "For parameter value with refined type <int>, 70000 is not a valid value"},
		{"violated predicate shown", []string{"Port", "0"}, 1, "violated: Greater[int](0)"},
		{"list", []string{"Hosts", "[a, b]"}, 0, "is a valid Hosts"},
		{"empty list", []string{"Hosts", "[]"}, 1, "[] is not a valid value"},
		{"builtin", []string{"IPv4String", "10.0.0.1"}, 0, "is a valid IPv4String"},
		{"negative number", []string{"PositiveInt", "-1"}, 1, "-1 is not a valid value"},
		{"shape", []string{"NonEmptyList", "[1]"}, 0, "is a valid NonEmptyList"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			args := append([]string{"validate", "--config", path}, tc.args...)
			code, stdout, stderr := run(args...)
			if code != tc.code {
				t.Fatalf("code=%d, want %d (stdout=%q stderr=%q)", code, tc.code, stdout, stderr)
			}
			if !strings.Contains(stdout, tc.want) {
				t.Errorf("stdout=%q, want it to contain %q", stdout, tc.want)
			}
		})
	}

	code, _, stderr := run("validate", "--config", path, "Port", "eighty")
	if code != 1 || !strings.Contains(stderr, "eighty is not a int") {
		t.Errorf("undecodable value: code=%d stderr=%q", code, stderr)
	}
	code, _, stderr = run("validate", "--config", path, "Nope", "1")
	if code != 1 || !strings.Contains(stderr, "undefined refined type: Nope") {
		t.Errorf("unknown type: code=%d stderr=%q", code, stderr)
	}
}

func TestRun_Inspect(t *testing.T) {
	if testing.Short() {
		t.Skip("loads packages with the go command")
	}
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/p\n\ngo 1.21\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	src := "package p\n\nfunc Join(sep string, parts ...string) string { return sep }\n"
	if err := os.WriteFile(filepath.Join(dir, "p.go"), []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	code, stdout, stderr := run("inspect", "--dir", dir, ".", "Join")
	if code != 0 {
		t.Fatalf("code=%d stderr=%q", code, stderr)
	}
	if !strings.Contains(stdout, "func example.com/p.Join(sep string, parts ...string)") {
		t.Errorf("stdout=%q", stdout)
	}
}

func TestValueType(t *testing.T) {
	tests := []struct {
		expr string
		want reflect.Type
	}{
		{"int", reflect.TypeOf(0)},
		{"[]T", reflect.TypeOf([]any(nil))},
		{"map[K]V", reflect.TypeOf(map[string]any(nil))},
		{"set[T]", reflect.TypeOf(map[string]bool(nil))},
		{"T", reflect.TypeOf((*any)(nil)).Elem()},
	}
	for _, tc := range tests {
		base, err := typesystem.Parse(tc.expr)
		if err != nil {
			t.Fatalf("parse %s: %v", tc.expr, err)
		}
		if got := valueType(base); got != tc.want {
			t.Errorf("valueType(%s) = %v, want %v", tc.expr, got, tc.want)
		}
	}
}

func TestColorDisabledForBuffers(t *testing.T) {
	if colorEnabled(&bytes.Buffer{}) {
		t.Error("colors enabled for a buffer")
	}
	t.Setenv("NO_COLOR", "1")
	if colorEnabled(os.Stdout) {
		t.Error("colors enabled despite NO_COLOR")
	}
}
