package typesystem

import (
	"reflect"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

var basicTypes = map[string]reflect.Type{
	"bool":    reflect.TypeOf(false),
	"int":     reflect.TypeOf(int(0)),
	"int8":    reflect.TypeOf(int8(0)),
	"int16":   reflect.TypeOf(int16(0)),
	"int32":   reflect.TypeOf(int32(0)),
	"int64":   reflect.TypeOf(int64(0)),
	"uint":    reflect.TypeOf(uint(0)),
	"uint8":   reflect.TypeOf(uint8(0)),
	"uint16":  reflect.TypeOf(uint16(0)),
	"uint32":  reflect.TypeOf(uint32(0)),
	"uint64":  reflect.TypeOf(uint64(0)),
	"float32": reflect.TypeOf(float32(0)),
	"float64": reflect.TypeOf(float64(0)),
	"string":  reflect.TypeOf(""),
	"byte":    reflect.TypeOf(byte(0)),
	"rune":    reflect.TypeOf(rune(0)),
	"decimal": reflect.TypeOf(decimal.Decimal{}),
	"any":     reflect.TypeOf((*any)(nil)).Elem(),
}

// Number matches every built-in integer and float kind plus decimal.Decimal.
var Number = AnyOf{Name: "number", Alternatives: numberAlternatives()}

func numberAlternatives() []Type {
	names := []string{
		"int", "int8", "int16", "int32", "int64",
		"uint", "uint8", "uint16", "uint32", "uint64",
		"float32", "float64", "decimal",
	}
	alts := make([]Type, len(names))
	for i, n := range names {
		alts[i] = FromReflect(basicTypes[n])
	}
	return alts
}

// Parse resolves a Go-like type expression used in configuration files:
//
//	int, string, decimal, number
//	[]T, []string, map[string]int, set[string], *int
//
// A single upper-case identifier (T, K, V, ...) is a type variable, which
// turns the enclosing container into a shape (TApp) instead of a TCon.
func Parse(expr string) (Type, error) {
	s := strings.TrimSpace(expr)
	if s == "" {
		return nil, NewUnknownTypeError(expr)
	}

	if s == "number" {
		return Number, nil
	}
	if rt, ok := basicTypes[s]; ok {
		return FromReflect(rt), nil
	}
	if isTypeVar(s) {
		return TVar{Name: s}, nil
	}

	switch {
	case strings.HasPrefix(s, "[]"):
		elem, err := Parse(s[2:])
		if err != nil {
			return nil, err
		}
		if rt, ok := Exact(elem); ok {
			return FromReflect(reflect.SliceOf(rt)), nil
		}
		return ListOf(elem), nil

	case strings.HasPrefix(s, "*"):
		elem, err := Parse(s[1:])
		if err != nil {
			return nil, err
		}
		if rt, ok := Exact(elem); ok {
			return FromReflect(reflect.PointerTo(rt)), nil
		}
		return TApp{Constructor: Ptr, Args: []Type{elem}}, nil

	case strings.HasPrefix(s, "map["):
		end := matchingBracket(s, len("map"))
		if end < 0 || end == len(s)-1 {
			return nil, NewUnknownTypeError(expr)
		}
		key, err := Parse(s[len("map["):end])
		if err != nil {
			return nil, err
		}
		value, err := Parse(s[end+1:])
		if err != nil {
			return nil, err
		}
		kt, kok := Exact(key)
		vt, vok := Exact(value)
		if kok && vok {
			if !kt.Comparable() {
				return nil, NewUnknownTypeError(expr)
			}
			return FromReflect(reflect.MapOf(kt, vt)), nil
		}
		return MapOf(key, value), nil

	case strings.HasPrefix(s, "set[") && strings.HasSuffix(s, "]"):
		elem, err := Parse(s[len("set[") : len(s)-1])
		if err != nil {
			return nil, err
		}
		if rt, ok := Exact(elem); ok && rt.Comparable() {
			return FromReflect(reflect.MapOf(rt, reflect.TypeOf(struct{}{}))), nil
		}
		return SetOf(elem), nil
	}

	return nil, NewUnknownTypeError(expr)
}

// matchingBracket returns the index of the ']' closing the '[' at open.
func matchingBracket(s string, open int) int {
	if open >= len(s) || s[open] != '[' {
		return -1
	}
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func isTypeVar(s string) bool {
	if len(s) > 2 {
		return false
	}
	for i, r := range s {
		if i == 0 && !unicode.IsUpper(r) {
			return false
		}
		if i > 0 && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
