package batch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type weights struct {
	Values []float64
}

func TestArgsEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Args
		want bool
	}{
		{"both empty", Args{}, Args{Positional: []any{}, Keyword: map[string]any{}}, true},
		{"same positional", Positional(1, "x"), Positional(1, "x"), true},
		{"different positional", Positional(1), Positional(2), false},
		{"different arity", Positional(1), Positional(1, 1), false},
		{"same keyword", NoArgs.With("extra_arg", 1), NoArgs.With("extra_arg", 1), true},
		{"different keyword", NoArgs.With("extra_arg", 1), NoArgs.With("extra_arg", 2), false},
		{"different keyword name", NoArgs.With("a", 1), NoArgs.With("b", 1), false},
		{
			"slices compare by value",
			Positional([]float64{0.5, 0.5}),
			Positional([]float64{0.5, 0.5}),
			true,
		},
		{
			"structs compare by value",
			Positional(&weights{Values: []float64{1, 2}}),
			Positional(&weights{Values: []float64{1, 2}}),
			true,
		},
		{
			"struct contents differ",
			Positional(&weights{Values: []float64{1, 2}}),
			Positional(&weights{Values: []float64{1, 3}}),
			false,
		},
		{"int vs float", Positional(1), Positional(1.0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
			assert.Equal(t, tt.want, tt.b.Equal(tt.a))
		})
	}
}

func TestArgsWithDoesNotMutate(t *testing.T) {
	base := NoArgs.With("a", 1)
	_ = base.With("b", 2)
	assert.Len(t, base.Keyword, 1)
	assert.Equal(t, 1, base.Kwarg("a", 0))
	assert.Equal(t, 7, base.Kwarg("missing", 7))
	assert.Nil(t, base.Arg(0))
}
