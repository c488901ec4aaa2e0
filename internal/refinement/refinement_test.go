package refinement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/refined/internal/typesystem"
	"github.com/funvibe/refined/pkg/predicates"
)

func TestPlainNeverCarriesPredicates(t *testing.T) {
	d := PlainOf(typesystem.Of[int]())
	assert.False(t, IsRefined(d))
	assert.Empty(t, Flatten(d))
	assert.Equal(t, "<int>", Display(d))
}

func TestRefineKeepsOrderAndNesting(t *testing.T) {
	inner := Refine(PlainOf(typesystem.Of[int]()), predicates.Positive[int]())
	outer := Refine(inner, predicates.Less(100), predicates.Even[int]())

	names := []string{}
	for _, p := range Flatten(outer) {
		names = append(names, p.Name())
	}
	assert.Equal(t, []string{"Positive", "Less", "Even"}, names)
	assert.Equal(t, "int", outer.Type().String())
	assert.Equal(t, "<int>", Display(outer))
	assert.Equal(t, "Annotated[Annotated[int, Positive[int]], Less[int](100), Even[int]]", outer.String())
}

func TestRefineCopiesPredicates(t *testing.T) {
	preds := []predicates.Predicate{predicates.Positive[int]()}
	d := Refine(PlainOf(typesystem.Of[int]()), preds...)
	preds[0] = predicates.Negative[int]()
	assert.Equal(t, "Positive", d.Predicates[0].Name())
}

func TestRegistryDefineAndResolve(t *testing.T) {
	r := NewRegistry()
	port := Refine(PlainOf(typesystem.Of[int]()), predicates.Greater(0), predicates.Less(65536))
	require.NoError(t, r.Define("Port", port))

	err := r.Define("Port", port)
	assert.ErrorIs(t, err, ErrDuplicate)

	resolved, err := r.Resolve(Ref{Name: "Port"})
	require.NoError(t, err)
	assert.Equal(t, "<int>", Display(resolved))

	_, err = r.Resolve(Ref{Name: "Missing"})
	assert.ErrorIs(t, err, ErrUndefined)

	nested, err := r.Resolve(Refine(Ref{Name: "Port"}, predicates.Even[int]()))
	require.NoError(t, err)
	assert.Len(t, Flatten(nested), 3)

	assert.Error(t, r.Define("Alias", Ref{Name: "Port"}))
	assert.Error(t, r.Define("", port))
}

func TestZeroRegistryIsUsable(t *testing.T) {
	var r Registry
	_, ok := r.Lookup("Port")
	assert.False(t, ok)
	assert.Empty(t, r.Names())

	require.NoError(t, r.Define("Port", PlainOf(typesystem.Of[int]())))
	_, ok = r.Lookup("Port")
	assert.True(t, ok)

	var replaced Registry
	replaced.Replace("Port", PlainOf(typesystem.Of[int]()))
	assert.Equal(t, []string{"Port"}, replaced.Names())
}

func TestEmptyShapeAliases(t *testing.T) {
	r := DefaultRegistry()
	cases := []struct {
		alias string
		empty any
		full  any
	}{
		{"EmptyList", []int{}, []int{1}},
		{"EmptySet", map[string]struct{}{}, map[string]struct{}{"a": {}}},
		{"EmptyDict", map[string]int{}, map[string]int{"a": 1}},
	}
	for _, tc := range cases {
		d, ok := r.Lookup(tc.alias)
		require.True(t, ok, tc.alias)
		preds := Flatten(d)
		require.Len(t, preds, 1)
		assert.Equal(t, "Empty", preds[0].Name())
		assert.True(t, preds[0].Evaluate(tc.empty), tc.alias)
		assert.False(t, preds[0].Evaluate(tc.full), tc.alias)
	}
}

func TestDefaultRegistryBuiltins(t *testing.T) {
	r := DefaultRegistry()
	for _, name := range []string{"PositiveInt", "ValidInt", "NonEmptyList", "NonEmptyString"} {
		_, ok := r.Lookup(name)
		assert.True(t, ok, name)
	}
	assert.Equal(t, r.Names()[0], "CsvString")

	// registries are independent
	other := DefaultRegistry()
	r.Replace("PositiveInt", PlainOf(typesystem.Of[int]()))
	d, _ := other.Lookup("PositiveInt")
	assert.True(t, IsRefined(d))
}
