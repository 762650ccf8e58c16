package voting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphmesh/meshalign/pkg/mapping"
	"github.com/graphmesh/meshalign/pkg/voting"
)

func TestPairwiseAgreement(t *testing.T) {
	fused := []mapping.Fused{
		fusedWith("S1", "O1", []string{"m1", "m2"}, []float64{0.9, 0.8}), // both
		fusedWith("S2", "O2", []string{"m1"}, []float64{0.9}),            // m1 only
		fusedWith("S3", "O3", []string{"m2"}, []float64{0.8}),            // m2 only
	}

	scores := voting.PairwiseAgreement(fused)
	require.Len(t, scores, 1)

	// both=1, either=3 -> 1/3
	assert.InDelta(t, 1.0/3.0, scores[voting.NewPair("m1", "m2")], 1e-9)
}

func TestPairwiseAgreementCanonicalOrder(t *testing.T) {
	p := voting.NewPair("zeta", "alpha")
	assert.Equal(t, "alpha", p.A)
	assert.Equal(t, "zeta", p.B)
}

func TestPairwiseAgreementEmpty(t *testing.T) {
	assert.Empty(t, voting.PairwiseAgreement(nil))
}

func TestSuggestWeightsWithReference(t *testing.T) {
	fused := []mapping.Fused{
		fusedWith("S1", "O1", []string{"m1", "m2"}, []float64{0.9, 0.8}),
		fusedWith("S2", "O2", []string{"m2"}, []float64{0.7}),
	}
	// Reference contains only the S1 key: m1 precision 1/1, m2
	// precision 1/2.
	reference := []mapping.Fused{
		fusedWith("S1", "O1", []string{"ref"}, []float64{1.0}),
	}

	weights := voting.SuggestWeights(fused, reference)
	require.Len(t, weights, 2)

	// Raw scores 1.0 and 0.5 normalize to 2/3 and 1/3.
	assert.InDelta(t, 2.0/3.0, weights["m1"], 1e-9)
	assert.InDelta(t, 1.0/3.0, weights["m2"], 1e-9)

	sum := weights["m1"] + weights["m2"]
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestSuggestWeightsFromAgreement(t *testing.T) {
	fused := []mapping.Fused{
		fusedWith("S1", "O1", []string{"m1", "m2"}, []float64{0.9, 0.8}),
		fusedWith("S2", "O2", []string{"m1", "m3"}, []float64{0.9, 0.7}),
		fusedWith("S3", "O3", []string{"m2"}, []float64{0.8}),
	}

	weights := voting.SuggestWeights(fused, nil)
	require.Len(t, weights, 3)

	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)

	// m1 agrees with both others at least once, so it should carry
	// the largest weight.
	assert.GreaterOrEqual(t, weights["m1"], weights["m2"])
	assert.GreaterOrEqual(t, weights["m1"], weights["m3"])
}

func TestSuggestWeightsUniformFallback(t *testing.T) {
	// Two matchers that never co-support anything have zero agreement
	// everywhere; weights fall back to uniform.
	fused := []mapping.Fused{
		fusedWith("S1", "O1", []string{"m1"}, []float64{0.9}),
		fusedWith("S2", "O2", []string{"m2"}, []float64{0.8}),
	}

	weights := voting.SuggestWeights(fused, nil)
	require.Len(t, weights, 2)
	assert.InDelta(t, 0.5, weights["m1"], 1e-9)
	assert.InDelta(t, 0.5, weights["m2"], 1e-9)
}

func TestSuggestWeightsEmpty(t *testing.T) {
	assert.Empty(t, voting.SuggestWeights(nil, nil))
}
