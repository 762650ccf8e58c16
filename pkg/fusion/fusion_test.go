package fusion_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphmesh/meshalign/pkg/fusion"
	"github.com/graphmesh/meshalign/pkg/mapping"
)

func newMapping(subject, object, predicate string, confidence float64, matcher string) mapping.Mapping {
	return mapping.Mapping{
		SubjectID:   subject,
		ObjectID:    object,
		PredicateID: predicate,
		Confidence:  confidence,
		Matcher:     matcher,
	}
}

func TestFuseThreeMatchersOneKey(t *testing.T) {
	sources := map[string][]mapping.Mapping{
		"m1": {newMapping("S1", "O1", "owl:equivalentClass", 0.9, "m1")},
		"m2": {newMapping("S1", "O1", "owl:equivalentClass", 0.8, "m2")},
		"m3": {newMapping("S1", "O1", "owl:equivalentClass", 0.95, "m3")},
	}

	fused := fusion.Fuse(sources, 0.0)
	require.Len(t, fused, 1)

	f := fused[0]
	assert.Equal(t, 3, f.SupportCount())
	assert.Len(t, f.Confidences, 3)
	assert.Len(t, f.SupportingMatchers, 3)
	assert.InDelta(t, (0.9+0.8+0.95)/3, f.ConsensusConfidence, 1e-9)
}

func TestFuseMinConfidenceFilter(t *testing.T) {
	sources := map[string][]mapping.Mapping{
		"m1": {
			newMapping("S1", "O1", "skos:closeMatch", 0.9, "m1"),
			newMapping("S2", "O2", "skos:closeMatch", 0.3, "m1"),
		},
	}

	fused := fusion.Fuse(sources, 0.5)
	require.Len(t, fused, 1)
	assert.Equal(t, "S1", fused[0].SubjectID)
}

func TestFuseDuplicateClaimCollapsing(t *testing.T) {
	// One matcher claims the same correspondence twice; only the
	// highest confidence survives and it counts as one supporter.
	sources := map[string][]mapping.Mapping{
		"m1": {
			newMapping("S1", "O1", "skos:closeMatch", 0.6, "m1"),
			newMapping("S1", "O1", "skos:closeMatch", 0.8, "m1"),
			newMapping("S1", "O1", "skos:closeMatch", 0.7, "m1"),
		},
	}

	fused := fusion.Fuse(sources, 0.0)
	require.Len(t, fused, 1)
	assert.Equal(t, 1, fused[0].SupportCount())
	assert.InDelta(t, 0.8, fused[0].Confidences["m1"], 1e-9)
	assert.InDelta(t, 0.8, fused[0].ConsensusConfidence, 1e-9)
}

func TestFuseSupportInvariant(t *testing.T) {
	sources := map[string][]mapping.Mapping{
		"m1": {
			newMapping("S1", "O1", "skos:closeMatch", 0.9, "m1"),
			newMapping("S2", "O2", "skos:closeMatch", 0.7, "m1"),
		},
		"m2": {newMapping("S1", "O1", "skos:closeMatch", 0.8, "m2")},
	}

	for _, f := range fusion.Fuse(sources, 0.0) {
		assert.Equal(t, f.SupportCount(), len(f.Confidences))
		assert.Equal(t, f.SupportCount(), len(f.SupportingMatchers))

		sum := 0.0
		for _, c := range f.Confidences {
			sum += c
		}
		assert.InDelta(t, sum/float64(len(f.Confidences)), f.ConsensusConfidence, 1e-9)
	}
}

func TestFusePermutationInvariance(t *testing.T) {
	a := []mapping.Mapping{
		newMapping("S1", "O1", "skos:closeMatch", 0.9, "m1"),
		newMapping("S2", "O2", "skos:closeMatch", 0.7, "m1"),
	}
	b := []mapping.Mapping{
		newMapping("S1", "O1", "skos:closeMatch", 0.8, "m2"),
	}

	fused1 := fusion.Fuse(map[string][]mapping.Mapping{"m1": a, "m2": b}, 0.0)
	reversed := []mapping.Mapping{a[1], a[0]}
	fused2 := fusion.Fuse(map[string][]mapping.Mapping{"m2": b, "m1": reversed}, 0.0)

	require.Equal(t, len(fused1), len(fused2))

	byKey := make(map[mapping.Key]mapping.Fused)
	for _, f := range fused2 {
		byKey[f.Key()] = f
	}
	for _, f1 := range fused1 {
		f2, ok := byKey[f1.Key()]
		require.True(t, ok, "key %v missing after permutation", f1.Key())
		assert.Equal(t, f1.Confidences, f2.Confidences)
		assert.Equal(t, f1.SupportCount(), f2.SupportCount())
		assert.InDelta(t, f1.ConsensusConfidence, f2.ConsensusConfidence, 1e-9)
	}
}

func TestFuseJustifications(t *testing.T) {
	m1 := newMapping("S1", "O1", "skos:closeMatch", 0.9, "m1")
	m1.Justification = "lexical match"
	m2 := newMapping("S1", "O1", "skos:closeMatch", 0.8, "m2")
	m2.Justification = "structural match"
	m3 := newMapping("S1", "O1", "skos:closeMatch", 0.7, "m3")
	m3.Justification = "lexical match" // duplicate, kept once

	fused := fusion.Fuse(map[string][]mapping.Mapping{
		"m1": {m1}, "m2": {m2}, "m3": {m3},
	}, 0.0)
	require.Len(t, fused, 1)
	assert.Equal(t, "lexical match; structural match", fused[0].Justification)
}

func TestFuseNoJustification(t *testing.T) {
	fused := fusion.Fuse(map[string][]mapping.Mapping{
		"m1": {newMapping("S1", "O1", "skos:closeMatch", 0.9, "m1")},
	}, 0.0)
	require.Len(t, fused, 1)
	assert.Empty(t, fused[0].Justification)
}

func TestFuseEmptyInput(t *testing.T) {
	assert.Empty(t, fusion.Fuse(nil, 0.0))
	assert.Empty(t, fusion.Fuse(map[string][]mapping.Mapping{}, 0.0))
	assert.Empty(t, fusion.Fuse(map[string][]mapping.Mapping{"m1": nil}, 0.0))
}

func TestFilterBySupport(t *testing.T) {
	sources := map[string][]mapping.Mapping{
		"m1": {
			newMapping("S1", "O1", "skos:closeMatch", 0.9, "m1"),
			newMapping("S2", "O2", "skos:closeMatch", 0.7, "m1"),
		},
		"m2": {newMapping("S1", "O1", "skos:closeMatch", 0.8, "m2")},
	}
	fused := fusion.Fuse(sources, 0.0)

	filtered := fusion.FilterBySupport(fused, 2)
	require.Len(t, filtered, 1)
	assert.Equal(t, "S1", filtered[0].SubjectID)
}

func TestFilterByConfidence(t *testing.T) {
	sources := map[string][]mapping.Mapping{
		"m1": {
			newMapping("S1", "O1", "skos:closeMatch", 0.9, "m1"),
			newMapping("S2", "O2", "skos:closeMatch", 0.4, "m1"),
		},
	}
	fused := fusion.Fuse(sources, 0.0)

	filtered := fusion.FilterByConfidence(fused, 0.5)
	require.Len(t, filtered, 1)
	assert.Equal(t, "S1", filtered[0].SubjectID)
}
