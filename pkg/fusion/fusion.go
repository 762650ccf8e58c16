// Package fusion combines correspondence claims from multiple matchers
// into consensus records. Mappings sharing an identity key are grouped,
// duplicate claims from the same matcher are collapsed to the highest
// confidence, and the consensus confidence is the plain mean of the
// per-matcher values.
package fusion

import (
	"sort"
	"strings"

	"github.com/graphmesh/meshalign/pkg/logging"
	"github.com/graphmesh/meshalign/pkg/mapping"
)

// Fuse merges per-matcher mapping lists into one fused record per
// identity key. Mappings below minConfidence are dropped before
// grouping. The result is sorted by key so repeated runs over the same
// input produce identical output; supporting-matcher order within each
// record follows first encounter, with matchers visited in sorted name
// order.
func Fuse(sources map[string][]mapping.Mapping, minConfidence float64) []mapping.Fused {
	logging.Info().
		Int("matchers", len(sources)).
		Float64("min_confidence", minConfidence).
		Msg("Fusing mappings")

	// Stable matcher visit order keeps SupportingMatchers deterministic.
	matchers := make([]string, 0, len(sources))
	for name := range sources {
		matchers = append(matchers, name)
	}
	sort.Strings(matchers)

	type group struct {
		key            mapping.Key
		confidences    map[string]float64
		order          []string
		justifications []string
		seenJust       map[string]struct{}
	}

	groups := make(map[mapping.Key]*group)
	var keys []mapping.Key
	total := 0

	for _, name := range matchers {
		for _, m := range sources[name] {
			if m.Confidence < minConfidence {
				continue
			}
			total++
			k := m.Key()
			g, ok := groups[k]
			if !ok {
				g = &group{
					key:         k,
					confidences: make(map[string]float64),
					seenJust:    make(map[string]struct{}),
				}
				groups[k] = g
				keys = append(keys, k)
			}
			if _, ok := g.confidences[m.Matcher]; !ok {
				g.order = append(g.order, m.Matcher)
				g.confidences[m.Matcher] = m.Confidence
			} else if m.Confidence > g.confidences[m.Matcher] {
				// Keep the highest confidence when one matcher claims
				// the same correspondence more than once.
				g.confidences[m.Matcher] = m.Confidence
			}
			if m.Justification != "" {
				if _, ok := g.seenJust[m.Justification]; !ok {
					g.seenJust[m.Justification] = struct{}{}
					g.justifications = append(g.justifications, m.Justification)
				}
			}
		}
	}

	logging.Debug().Int("mappings", total).Msg("Mappings retained after confidence filter")

	sort.Slice(keys, func(i, j int) bool { return lessKey(keys[i], keys[j]) })

	fused := make([]mapping.Fused, 0, len(keys))
	for _, k := range keys {
		g := groups[k]
		sum := 0.0
		for _, c := range g.confidences {
			sum += c
		}
		fused = append(fused, mapping.Fused{
			SubjectID:           k.SubjectID,
			ObjectID:            k.ObjectID,
			PredicateID:         k.PredicateID,
			Confidences:         g.confidences,
			SupportingMatchers:  g.order,
			ConsensusConfidence: sum / float64(len(g.confidences)),
			Justification:       strings.Join(g.justifications, "; "),
		})
	}

	logging.Info().Int("fused", len(fused)).Msg("Created fused mappings")
	return fused
}

// FilterBySupport keeps fused mappings backed by at least minSupport
// matchers.
func FilterBySupport(fused []mapping.Fused, minSupport int) []mapping.Fused {
	filtered := make([]mapping.Fused, 0, len(fused))
	for _, f := range fused {
		if f.SupportCount() >= minSupport {
			filtered = append(filtered, f)
		}
	}
	logging.Info().
		Int("min_support", minSupport).
		Int("retained", len(filtered)).
		Int("total", len(fused)).
		Msg("Filtered by support")
	return filtered
}

// FilterByConfidence keeps fused mappings whose consensus confidence
// meets the threshold.
func FilterByConfidence(fused []mapping.Fused, minConfidence float64) []mapping.Fused {
	filtered := make([]mapping.Fused, 0, len(fused))
	for _, f := range fused {
		if f.ConsensusConfidence >= minConfidence {
			filtered = append(filtered, f)
		}
	}
	logging.Info().
		Float64("min_confidence", minConfidence).
		Int("retained", len(filtered)).
		Int("total", len(fused)).
		Msg("Filtered by consensus confidence")
	return filtered
}

func lessKey(a, b mapping.Key) bool {
	if a.SubjectID != b.SubjectID {
		return a.SubjectID < b.SubjectID
	}
	if a.ObjectID != b.ObjectID {
		return a.ObjectID < b.ObjectID
	}
	return a.PredicateID < b.PredicateID
}
