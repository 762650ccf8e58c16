package conflict_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphmesh/meshalign/pkg/conflict"
	"github.com/graphmesh/meshalign/pkg/mapping"
)

func fusedRecord(subject, object, predicate string, confidence float64, matchers ...string) mapping.Fused {
	confs := make(map[string]float64, len(matchers))
	for _, m := range matchers {
		confs[m] = confidence
	}
	return mapping.Fused{
		SubjectID:           subject,
		ObjectID:            object,
		PredicateID:         predicate,
		Confidences:         confs,
		SupportingMatchers:  matchers,
		ConsensusConfidence: confidence,
	}
}

func TestIdentifyNoConflicts(t *testing.T) {
	fused := []mapping.Fused{
		fusedRecord("S1", "O1", "skos:closeMatch", 0.9, "m1"),
		fusedRecord("S2", "O2", "skos:closeMatch", 0.8, "m1"),
	}

	assert.Empty(t, conflict.Identify(fused))
}

func TestIdentifySamePairTwicePredicatesDiffer(t *testing.T) {
	// Same subject and object under two predicates is not a conflict:
	// the object set has one element.
	fused := []mapping.Fused{
		fusedRecord("S1", "O1", "skos:closeMatch", 0.9, "m1"),
		fusedRecord("S1", "O1", "owl:equivalentClass", 0.8, "m2"),
	}

	assert.Empty(t, conflict.Identify(fused))
}

func TestIdentifyConflict(t *testing.T) {
	fused := []mapping.Fused{
		fusedRecord("S1", "O1", "skos:closeMatch", 0.9, "m1"),
		fusedRecord("S1", "O2", "skos:closeMatch", 0.8, "m2"),
	}

	conflicts := conflict.Identify(fused)
	require.Len(t, conflicts, 1)
	assert.Len(t, conflicts["S1"], 2)
}

func TestResolveByConfidence(t *testing.T) {
	// M1 maps S2 to O2 at 0.6, M2 maps S2 to O3 at 0.7: the O3 record
	// wins.
	fused := []mapping.Fused{
		fusedRecord("S2", "O2", "skos:closeMatch", 0.6, "m1"),
		fusedRecord("S2", "O3", "skos:closeMatch", 0.7, "m2"),
	}

	report := conflict.Resolve(fused, conflict.StrategyConfidence)
	assert.Equal(t, 1, report.TotalConflicts)
	assert.Equal(t, []string{"S2"}, report.ConflictingSubjects)
	require.Len(t, report.Resolved, 1)
	assert.Equal(t, "O3", report.Resolved[0].ObjectID)
}

func TestResolveBySupportWithConfidenceTieBreak(t *testing.T) {
	moreSupport := fusedRecord("S1", "O1", "skos:closeMatch", 0.5, "m1", "m2", "m3")
	higherConfidence := fusedRecord("S1", "O2", "skos:closeMatch", 0.9, "m1")

	report := conflict.Resolve([]mapping.Fused{moreSupport, higherConfidence}, conflict.StrategySupport)
	require.Len(t, report.Resolved, 1)
	assert.Equal(t, "O1", report.Resolved[0].ObjectID)

	// Equal support falls back to confidence.
	a := fusedRecord("S2", "OA", "skos:closeMatch", 0.6, "m1")
	b := fusedRecord("S2", "OB", "skos:closeMatch", 0.8, "m2")
	report = conflict.Resolve([]mapping.Fused{a, b}, conflict.StrategySupport)
	require.Len(t, report.Resolved, 1)
	assert.Equal(t, "OB", report.Resolved[0].ObjectID)
}

func TestResolveBySpecificity(t *testing.T) {
	related := fusedRecord("S1", "O1", "skos:relatedMatch", 0.95, "m1")
	equivalent := fusedRecord("S1", "O2", "owl:equivalentClass", 0.6, "m2")
	unknown := fusedRecord("S1", "O3", "custom:predicate", 0.99, "m3")

	report := conflict.Resolve([]mapping.Fused{related, equivalent, unknown}, conflict.StrategySpecificity)
	require.Len(t, report.Resolved, 1)
	assert.Equal(t, "O2", report.Resolved[0].ObjectID)
}

func TestResolveKeepAll(t *testing.T) {
	fused := []mapping.Fused{
		fusedRecord("S1", "O1", "skos:closeMatch", 0.9, "m1"),
		fusedRecord("S1", "O2", "skos:closeMatch", 0.8, "m2"),
		fusedRecord("S2", "O3", "skos:closeMatch", 0.7, "m1"),
	}

	report := conflict.Resolve(fused, conflict.StrategyKeepAll)
	assert.Equal(t, 1, report.TotalConflicts)
	// Non-conflicting S2 plus both S1 records.
	assert.Len(t, report.Resolved, 3)
}

func TestResolveUnknownStrategyFallsBack(t *testing.T) {
	fused := []mapping.Fused{
		fusedRecord("S1", "O1", "skos:closeMatch", 0.9, "m1"),
		fusedRecord("S1", "O2", "skos:closeMatch", 0.5, "m2"),
	}

	report := conflict.Resolve(fused, "coin_flip")
	assert.Equal(t, "coin_flip", report.Strategy)
	require.Len(t, report.Resolved, 1)
	assert.Equal(t, "O1", report.Resolved[0].ObjectID)
}

func TestResolveKeepsNonConflictingUntouched(t *testing.T) {
	clean := fusedRecord("S9", "O9", "skos:closeMatch", 0.4, "m1")
	a := fusedRecord("S1", "O1", "skos:closeMatch", 0.9, "m1")
	b := fusedRecord("S1", "O2", "skos:closeMatch", 0.8, "m2")

	report := conflict.Resolve([]mapping.Fused{clean, a, b}, conflict.StrategyConfidence)
	require.Len(t, report.Resolved, 2)

	subjects := map[string]string{}
	for _, f := range report.Resolved {
		subjects[f.SubjectID] = f.ObjectID
	}
	assert.Equal(t, "O9", subjects["S9"])
	assert.Equal(t, "O1", subjects["S1"])
}

func TestResolveNoConflictsReturnsInput(t *testing.T) {
	fused := []mapping.Fused{
		fusedRecord("S1", "O1", "skos:closeMatch", 0.9, "m1"),
	}

	report := conflict.Resolve(fused, conflict.StrategyConfidence)
	assert.Zero(t, report.TotalConflicts)
	assert.Empty(t, report.ConflictingSubjects)
	assert.Equal(t, fused, report.Resolved)
}

func TestResolveEmptyInput(t *testing.T) {
	report := conflict.Resolve(nil, conflict.StrategyConfidence)
	assert.Zero(t, report.TotalConflicts)
	assert.Empty(t, report.Resolved)
}
