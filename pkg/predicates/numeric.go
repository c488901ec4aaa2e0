package predicates

import (
	"math"
	"math/big"
	"reflect"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/constraints"

	"github.com/funvibe/refined/internal/typesystem"
)

// Number is the set of types numeric predicates can be bound to.
type Number interface {
	constraints.Integer | constraints.Float | decimal.Decimal
}

// number is a numeric value normalised for comparison. Finite values carry an
// exact decimal; NaN and the infinities only carry their float64.
type number struct {
	d      decimal.Decimal
	f      float64
	finite bool
}

func toNumber(v any) (number, bool) {
	if d, ok := v.(decimal.Decimal); ok {
		return number{d: d, f: d.InexactFloat64(), finite: true}, true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i := rv.Int()
		return number{d: decimal.NewFromInt(i), f: float64(i), finite: true}, true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		return number{d: decimal.NewFromBigInt(new(big.Int).SetUint64(u), 0), f: float64(u), finite: true}, true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return number{f: f}, true
		}
		if rv.Kind() == reflect.Float32 {
			return number{d: decimal.NewFromFloat32(float32(f)), f: f, finite: true}, true
		}
		return number{d: decimal.NewFromFloat(f), f: f, finite: true}, true
	}
	return number{}, false
}

func (n number) isNaN() bool {
	return !n.finite && math.IsNaN(n.f)
}

// compareNumbers orders a and b. NaN is unordered.
func compareNumbers(a, b number) (int, bool) {
	if a.finite && b.finite {
		return a.d.Cmp(b.d), true
	}
	if a.isNaN() || b.isNaN() {
		return 0, false
	}
	switch {
	case a.f < b.f:
		return -1, true
	case a.f > b.f:
		return 1, true
	}
	return 0, true
}

func compareAny(value, other any) (int, bool) {
	a, ok := toNumber(value)
	if !ok {
		return 0, false
	}
	b, ok := toNumber(other)
	if !ok {
		return 0, false
	}
	return compareNumbers(a, b)
}

func greater(value any, aux ...any) bool {
	if len(aux) < 1 {
		return false
	}
	c, ok := compareAny(value, aux[0])
	return ok && c > 0
}

func positive(value any, _ ...any) bool {
	return greater(value, 0)
}

func negative(value any, _ ...any) bool {
	return less(value, 0)
}

func less(value any, aux ...any) bool {
	if len(aux) < 1 {
		return false
	}
	c, ok := compareAny(value, aux[0])
	return ok && c < 0
}

// remainder computes value % divisor. A zero divisor or a non-finite operand
// has no remainder.
func remainder(value, divisor any) (decimal.Decimal, bool) {
	v, ok := toNumber(value)
	if !ok || !v.finite {
		return decimal.Zero, false
	}
	d, ok := toNumber(divisor)
	if !ok || !d.finite || d.d.IsZero() {
		return decimal.Zero, false
	}
	return v.d.Mod(d.d), true
}

func modulo(value any, aux ...any) bool {
	if len(aux) < 1 {
		return false
	}
	r, ok := remainder(value, aux[0])
	return ok && r.IsZero()
}

func even(value any, _ ...any) bool {
	return modulo(value, 2)
}

func odd(value any, _ ...any) bool {
	r, ok := remainder(value, 2)
	return ok && !r.IsZero()
}

func nonNaN(value any, _ ...any) bool {
	n, ok := toNumber(value)
	return ok && !n.isNaN()
}

// Positive holds for values > 0.
func Positive[T Number]() Predicate {
	return New("Positive", typesystem.Of[T](), positive)
}

// Negative holds for values < 0.
func Negative[T Number]() Predicate {
	return New("Negative", typesystem.Of[T](), negative)
}

// Greater holds for values > threshold.
func Greater[T Number](threshold T) Predicate {
	return New("Greater", typesystem.Of[T](), greater, threshold)
}

// Less holds for values < threshold.
func Less[T Number](threshold T) Predicate {
	return New("Less", typesystem.Of[T](), less, threshold)
}

// Modulo holds when value % divisor == 0. A zero divisor never holds.
func Modulo[T Number](divisor T) Predicate {
	return New("Modulo", typesystem.Of[T](), modulo, divisor)
}

// Divisible is Modulo under the name used for divisibility checks.
func Divisible[T Number](divisor T) Predicate {
	return New("Divisible", typesystem.Of[T](), modulo, divisor)
}

// NonNan holds for every value except NaN.
func NonNan[T Number]() Predicate {
	return New("NonNan", typesystem.Of[T](), nonNaN)
}

// Even holds when value % 2 == 0.
func Even[T Number]() Predicate {
	return New("Even", typesystem.Of[T](), even)
}

// Odd holds when value % 2 != 0.
func Odd[T Number]() Predicate {
	return New("Odd", typesystem.Of[T](), odd)
}
