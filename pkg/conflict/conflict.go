// Package conflict detects and resolves cases where one subject entity
// is fused to more than one distinct object entity, applying a
// per-subject resolution policy to keep a single representative.
package conflict

import (
	"sort"

	"github.com/graphmesh/meshalign/pkg/logging"
	"github.com/graphmesh/meshalign/pkg/mapping"
)

// Resolution strategy names. Unlike voting, an unknown name degrades
// to StrategyConfidence rather than failing: conflict resolution
// always needs some answer to keep a pipeline moving.
const (
	StrategyConfidence  = "confidence"
	StrategySupport     = "support"
	StrategySpecificity = "specificity"
	StrategyKeepAll     = "keep_all"
)

// predicateRank orders predicates by specificity; higher is more
// specific. Unknown predicates rank 0.
var predicateRank = map[string]int{
	"owl:equivalentClass": 3,
	"skos:exactMatch":     3,
	"skos:closeMatch":     2,
	"skos:relatedMatch":   1,
	"skos:broadMatch":     1,
	"skos:narrowMatch":    1,
}

// Report describes detected conflicts and the outcome of resolution.
type Report struct {
	// TotalConflicts counts distinct subjects with two or more
	// distinct objects, not conflicting records.
	TotalConflicts int

	// ConflictingSubjects lists the conflicting subject IDs, sorted.
	ConflictingSubjects []string

	// Details maps each conflicting subject to its fused records.
	Details map[string][]mapping.Fused

	// Strategy is the resolution strategy that was applied.
	Strategy string

	// Resolved holds every non-conflicting record unchanged plus one
	// representative per conflicting subject (or all of them under
	// keep_all).
	Resolved []mapping.Fused
}

// Identify groups fused mappings by subject and returns the subjects
// mapped to more than one distinct object. Subjects with a single
// object never appear in the result.
func Identify(fused []mapping.Fused) map[string][]mapping.Fused {
	bySubject := make(map[string][]mapping.Fused)
	for _, f := range fused {
		bySubject[f.SubjectID] = append(bySubject[f.SubjectID], f)
	}

	conflicts := make(map[string][]mapping.Fused)
	for subject, records := range bySubject {
		objects := make(map[string]struct{}, len(records))
		for _, f := range records {
			objects[f.ObjectID] = struct{}{}
		}
		if len(objects) > 1 {
			conflicts[subject] = records
		}
	}

	if len(conflicts) > 0 {
		logging.Warn().Int("subjects", len(conflicts)).Msg("Found subjects with conflicting mappings")
	} else {
		logging.Info().Msg("No conflicts detected")
	}
	return conflicts
}

// Resolve detects conflicts in the fused set and resolves them with
// the named strategy. Unknown strategy names fall back to confidence
// resolution with a warning.
func Resolve(fused []mapping.Fused, strategy string) *Report {
	logging.Info().Str("strategy", strategy).Msg("Resolving conflicts")

	conflicts := Identify(fused)
	if len(conflicts) == 0 {
		return &Report{
			TotalConflicts:      0,
			ConflictingSubjects: []string{},
			Details:             map[string][]mapping.Fused{},
			Strategy:            strategy,
			Resolved:            fused,
		}
	}

	var resolved []mapping.Fused
	switch strategy {
	case StrategyConfidence:
		resolved = resolveByConfidence(conflicts)
	case StrategySupport:
		resolved = resolveBySupport(conflicts)
	case StrategySpecificity:
		resolved = resolveBySpecificity(conflicts)
	case StrategyKeepAll:
		resolved = resolveKeepAll(conflicts)
	default:
		logging.Warn().Str("strategy", strategy).Msg("Unknown resolution strategy, using confidence")
		resolved = resolveByConfidence(conflicts)
	}

	subjects := make([]string, 0, len(conflicts))
	for subject := range conflicts {
		subjects = append(subjects, subject)
	}
	sort.Strings(subjects)

	// Non-conflicting records pass through untouched.
	all := make([]mapping.Fused, 0, len(fused))
	for _, f := range fused {
		if _, ok := conflicts[f.SubjectID]; !ok {
			all = append(all, f)
		}
	}
	all = append(all, resolved...)

	return &Report{
		TotalConflicts:      len(conflicts),
		ConflictingSubjects: subjects,
		Details:             conflicts,
		Strategy:            strategy,
		Resolved:            all,
	}
}

// resolveByConfidence keeps the record with the highest consensus
// confidence for each conflicting subject.
func resolveByConfidence(conflicts map[string][]mapping.Fused) []mapping.Fused {
	resolved := make([]mapping.Fused, 0, len(conflicts))
	for subject, records := range conflicts {
		best := records[0]
		for _, f := range records[1:] {
			if f.ConsensusConfidence > best.ConsensusConfidence {
				best = f
			}
		}
		resolved = append(resolved, best)
		logging.Debug().
			Str("subject", subject).
			Str("object", best.ObjectID).
			Float64("confidence", best.ConsensusConfidence).
			Msg("Resolved conflict by confidence")
	}

	logging.Info().Int("resolved", len(resolved)).Msg("Resolved conflicts by confidence")
	return resolved
}

// resolveBySupport keeps the record with the most supporting matchers;
// consensus confidence breaks ties.
func resolveBySupport(conflicts map[string][]mapping.Fused) []mapping.Fused {
	resolved := make([]mapping.Fused, 0, len(conflicts))
	for subject, records := range conflicts {
		sorted := append([]mapping.Fused(nil), records...)
		sort.SliceStable(sorted, func(i, j int) bool {
			if sorted[i].SupportCount() != sorted[j].SupportCount() {
				return sorted[i].SupportCount() > sorted[j].SupportCount()
			}
			return sorted[i].ConsensusConfidence > sorted[j].ConsensusConfidence
		})
		best := sorted[0]
		resolved = append(resolved, best)
		logging.Debug().
			Str("subject", subject).
			Str("object", best.ObjectID).
			Int("support", best.SupportCount()).
			Msg("Resolved conflict by support")
	}

	logging.Info().Int("resolved", len(resolved)).Msg("Resolved conflicts by support count")
	return resolved
}

// resolveBySpecificity prefers more specific predicates
// (equivalence > close match > related/broad/narrow), with consensus
// confidence as tie-break.
func resolveBySpecificity(conflicts map[string][]mapping.Fused) []mapping.Fused {
	resolved := make([]mapping.Fused, 0, len(conflicts))
	for subject, records := range conflicts {
		sorted := append([]mapping.Fused(nil), records...)
		sort.SliceStable(sorted, func(i, j int) bool {
			ri, rj := predicateRank[sorted[i].PredicateID], predicateRank[sorted[j].PredicateID]
			if ri != rj {
				return ri > rj
			}
			return sorted[i].ConsensusConfidence > sorted[j].ConsensusConfidence
		})
		best := sorted[0]
		resolved = append(resolved, best)
		logging.Debug().
			Str("subject", subject).
			Str("object", best.ObjectID).
			Str("predicate", best.PredicateID).
			Msg("Resolved conflict by predicate specificity")
	}

	logging.Info().Int("resolved", len(resolved)).Msg("Resolved conflicts by predicate specificity")
	return resolved
}

// resolveKeepAll emits every conflicting record unchanged.
func resolveKeepAll(conflicts map[string][]mapping.Fused) []mapping.Fused {
	var all []mapping.Fused
	for _, records := range conflicts {
		all = append(all, records...)
	}

	logging.Info().Int("kept", len(all)).Msg("Kept all conflicting mappings")
	return all
}
