package quality_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/graphmesh/meshalign/pkg/mapping"
	"github.com/graphmesh/meshalign/pkg/quality"
)

func TestCompareIdenticalSets(t *testing.T) {
	fused := []mapping.Fused{
		fusedRecord("S1", "O1", "skos:closeMatch", 0.9, "m1"),
		fusedRecord("S2", "O2", "skos:closeMatch", 0.8, "m2"),
	}

	result := quality.Compare(fused, fused)
	assert.Equal(t, 1.0, result.Precision)
	assert.Equal(t, 1.0, result.Recall)
	assert.Equal(t, 1.0, result.F1)
	assert.Equal(t, 2, result.TruePositives)
	assert.Zero(t, result.FalsePositives)
	assert.Zero(t, result.FalseNegatives)
}

func TestCompareDisjointSets(t *testing.T) {
	fused := []mapping.Fused{fusedRecord("S1", "O1", "skos:closeMatch", 0.9, "m1")}
	reference := []mapping.Fused{fusedRecord("S2", "O2", "skos:closeMatch", 0.9, "ref")}

	result := quality.Compare(fused, reference)
	assert.Zero(t, result.Precision)
	assert.Zero(t, result.Recall)
	assert.Zero(t, result.F1)
	assert.Equal(t, 1, result.FalsePositives)
	assert.Equal(t, 1, result.FalseNegatives)
}

func TestComparePartialOverlap(t *testing.T) {
	// One fused mapping matching a two-element reference gives perfect
	// precision and half recall.
	fused := []mapping.Fused{
		fusedRecord("S1", "O1", "skos:closeMatch", 0.9, "m1"),
	}
	reference := []mapping.Fused{
		fusedRecord("S1", "O1", "skos:closeMatch", 1.0, "ref"),
		fusedRecord("S2", "O2", "skos:closeMatch", 1.0, "ref"),
	}

	result := quality.Compare(fused, reference)
	assert.Equal(t, 1.0, result.Precision)
	assert.Equal(t, 0.5, result.Recall)
	assert.InDelta(t, 2.0/3.0, result.F1, 1e-9)
	assert.Equal(t, 1, result.TruePositives)
	assert.Zero(t, result.FalsePositives)
	assert.Equal(t, 1, result.FalseNegatives)
}

func TestComparePredicateIsPartOfKey(t *testing.T) {
	fused := []mapping.Fused{fusedRecord("S1", "O1", "skos:closeMatch", 0.9, "m1")}
	reference := []mapping.Fused{fusedRecord("S1", "O1", "owl:equivalentClass", 0.9, "ref")}

	result := quality.Compare(fused, reference)
	assert.Zero(t, result.TruePositives)
	assert.Zero(t, result.Precision)
}

func TestCompareEmptySets(t *testing.T) {
	result := quality.Compare(nil, nil)
	assert.Zero(t, result.Precision)
	assert.Zero(t, result.Recall)
	assert.Zero(t, result.F1)
}
