package typesystem

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

type age int

func TestTConMatchesExactly(t *testing.T) {
	intType := Of[int]()

	tests := []struct {
		name string
		rt   reflect.Type
		want bool
	}{
		{"int", reflect.TypeOf(1), true},
		{"bool", reflect.TypeOf(true), false},
		{"float64", reflect.TypeOf(1.0), false},
		{"int64", reflect.TypeOf(int64(1)), false},
		{"named int", reflect.TypeOf(age(1)), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := intType.Matches(tt.rt); got != tt.want {
				t.Errorf("Matches(%v) = %v, want %v", tt.rt, got, tt.want)
			}
		})
	}
}

func TestTAppMatchesShapeOnly(t *testing.T) {
	list := ListOf(TVar{Name: "T"})
	if !list.Matches(reflect.TypeOf([]string{})) {
		t.Error("List<T> should match []string")
	}
	if !list.Matches(reflect.TypeOf([]int{})) {
		t.Error("List<T> should match []int regardless of elements")
	}
	if list.Matches(reflect.TypeOf([2]int{})) {
		t.Error("List<T> should not match an array")
	}
	if list.Matches(reflect.TypeOf("abc")) {
		t.Error("List<T> should not match a string")
	}

	set := SetOf(TVar{Name: "T"})
	if !set.Matches(reflect.TypeOf(map[string]struct{}{})) {
		t.Error("Set<T> should match map[string]struct{}")
	}
	if !set.Matches(reflect.TypeOf(map[int]bool{})) {
		t.Error("Set<T> should match map[int]bool")
	}
	if set.Matches(reflect.TypeOf(map[int]string{})) {
		t.Error("Set<T> should not match map[int]string")
	}
}

func TestTypeStrings(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{Of[int](), "int"},
		{Of[[]string](), "[]string"},
		{ListOf(TVar{Name: "T"}), "[]T"},
		{MapOf(TVar{Name: "K"}, TVar{Name: "V"}), "map[K]V"},
		{SetOf(Of[string]()), "Set<string>"},
		{Number, "number"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		expr  string
		match reflect.Type
		want  string
	}{
		{"int", reflect.TypeOf(0), "int"},
		{"decimal", reflect.TypeOf(decimal.Decimal{}), "decimal.Decimal"},
		{"[]string", reflect.TypeOf([]string{}), "[]string"},
		{"[]T", reflect.TypeOf([]float64{}), "[]T"},
		{"map[string]int", reflect.TypeOf(map[string]int{}), "map[string]int"},
		{"map[K]V", reflect.TypeOf(map[int]bool{}), "map[K]V"},
		{"set[string]", reflect.TypeOf(map[string]struct{}{}), "map[string]struct {}"},
		{"*int", reflect.TypeOf(new(int)), "*int"},
		{"number", reflect.TypeOf(uint16(3)), "number"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			typ, err := Parse(tt.expr)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.expr, err)
			}
			if typ.String() != tt.want {
				t.Errorf("String() = %q, want %q", typ.String(), tt.want)
			}
			if !typ.Matches(tt.match) {
				t.Errorf("%s should match %v", tt.expr, tt.match)
			}
		})
	}
}

func TestParseUnknown(t *testing.T) {
	for _, expr := range []string{"", "complex", "map[string", "[]nope", "map[[]int]string"} {
		_, err := Parse(expr)
		if err == nil {
			t.Errorf("Parse(%q) should fail", expr)
			continue
		}
		if _, ok := err.(*UnknownTypeError); !ok {
			t.Errorf("Parse(%q) error = %T, want *UnknownTypeError", expr, err)
		}
	}
}
