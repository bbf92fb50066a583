package operator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckChain_Transitions(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		name  string
		chain []string // outermost-first
		base  Rank
		want  Rank
	}{
		{"gradient of scalar", []string{"gradient"}, RankScalar, RankVector},
		{"divergence of vector", []string{"divergence"}, RankVector, RankScalar},
		{"curl of vector", []string{"curl"}, RankVector, RankVector},
		{"laplacian of scalar", []string{"laplacian"}, RankScalar, RankScalar},
		{"time derivative preserves scalar", []string{"time_derivative"}, RankScalar, RankScalar},
		{"time derivative preserves vector", []string{"time_derivative"}, RankVector, RankVector},
		{"div grad", []string{"divergence", "gradient"}, RankScalar, RankScalar},
		{"grad div", []string{"gradient", "divergence"}, RankVector, RankVector},
		{"curl curl", []string{"curl", "curl"}, RankVector, RankVector},
		{"second time derivative", []string{"time_derivative", "time_derivative"}, RankVector, RankVector},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.CheckChain(tt.chain, tt.base)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckChain_InvalidInput(t *testing.T) {
	r := DefaultRegistry()

	// Gradient strictly requires scalar input.
	_, err := r.CheckChain([]string{"gradient"}, RankVector)
	var rerr *RankError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, InvalidOperatorInput, rerr.Kind)
	assert.Equal(t, "gradient", rerr.Operator)

	_, err = r.CheckChain([]string{"divergence"}, RankScalar)
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, InvalidOperatorInput, rerr.Kind)
}

func TestCheckChain_ScalarizedBeforeVectorOp(t *testing.T) {
	r := DefaultRegistry()

	// Any vector-consuming operator after a scalarizing one must fail with
	// the dedicated kind, not a plain input mismatch.
	scalarizing := []string{"divergence", "laplacian", "magnitude"}
	vectorOps := []string{"divergence", "curl", "magnitude"}

	for _, inner := range scalarizing {
		for _, outer := range vectorOps {
			op, _ := r.Get(inner)
			base := op.InputRank
			chain := []string{outer, inner}
			_, err := r.CheckChain(chain, base)
			var rerr *RankError
			require.ErrorAs(t, err, &rerr, "chain %v", chain)
			assert.Equal(t, ScalarizedBeforeVectorOp, rerr.Kind, "chain %v", chain)
			assert.Equal(t, outer, rerr.Operator)
		}
	}
}

func TestCheckChain_GradientAfterScalarizingIsLegal(t *testing.T) {
	r := DefaultRegistry()

	// Gradient consumes a scalar, so it may follow divergence.
	got, err := r.CheckChain([]string{"gradient", "divergence"}, RankVector)
	require.NoError(t, err)
	assert.Equal(t, RankVector, got)
}

func TestCheckChain_UnknownOperator(t *testing.T) {
	r := DefaultRegistry()

	_, err := r.CheckChain([]string{"transmogrify"}, RankScalar)
	var rerr *RankError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, UnknownOperator, rerr.Kind)
}

func TestParseChain(t *testing.T) {
	r := DefaultRegistry()

	chain, base := r.ParseChain("gradient_of_electron_temperature")
	assert.Equal(t, []string{"gradient"}, chain)
	assert.Equal(t, "electron_temperature", base)

	chain, base = r.ParseChain("divergence_of_gradient_of_electron_temperature")
	assert.Equal(t, []string{"divergence", "gradient"}, chain)
	assert.Equal(t, "electron_temperature", base)

	// Composite ids expand into primitives, longest prefix first.
	chain, base = r.ParseChain("second_time_derivative_of_plasma_current")
	assert.Equal(t, []string{"time_derivative", "time_derivative"}, chain)
	assert.Equal(t, "plasma_current", base)

	chain, base = r.ParseChain("electron_temperature")
	assert.Empty(t, chain)
	assert.Equal(t, "electron_temperature", base)
}

func TestLoadRegistry(t *testing.T) {
	doc := `
operators:
  - id: gradient
    input_rank: scalar
    output_rank: vector
  - id: divergence
    input_rank: vector
    output_rank: scalar
    scalarizing: true
  - id: time_derivative
    preserving: true
composites:
  second_time_derivative: [time_derivative, time_derivative]
`
	r, err := LoadRegistry(strings.NewReader(doc))
	require.NoError(t, err)

	op, ok := r.Get("divergence")
	require.True(t, ok)
	assert.True(t, op.Scalarizing)

	chain, ok := r.Expand("second_time_derivative")
	require.True(t, ok)
	assert.Len(t, chain, 2)

	_, err = LoadRegistry(strings.NewReader("operators:\n  - id: bad\n    input_rank: tensor\n"))
	assert.Error(t, err)
}

func TestMagnitudeNaming(t *testing.T) {
	assert.Equal(t, "magnitude_of_magnetic_field", MagnitudePrefixNaming.Render("magnetic_field"))
	assert.Equal(t, "magnetic_field_magnitude", MagnitudeSuffixNaming.Render("magnetic_field"))

	base, ok := MagnitudePrefixNaming.Match("magnitude_of_magnetic_field")
	assert.True(t, ok)
	assert.Equal(t, "magnetic_field", base)

	// The legacy suffix form is rejected under the canonical policy.
	_, ok = MagnitudePrefixNaming.Match("magnetic_field_magnitude")
	assert.False(t, ok)
}

func TestReductions_MatchPrefix(t *testing.T) {
	r := DefaultReductions()

	red, base, ok := r.MatchPrefix("time_average_of_electron_density")
	require.True(t, ok)
	assert.Equal(t, "mean", red.ID)
	assert.Equal(t, "time", red.Domain)
	assert.Equal(t, "electron_density", base)

	red, base, ok = r.MatchPrefix("magnitude_of_magnetic_field")
	require.True(t, ok)
	assert.Equal(t, "magnitude", red.ID)
	assert.True(t, red.RequiresVector)
	assert.Equal(t, "magnetic_field", base)

	_, _, ok = r.MatchPrefix("electron_density")
	assert.False(t, ok)
}
