package voting

import (
	"sort"

	"github.com/graphmesh/meshalign/pkg/logging"
	"github.com/graphmesh/meshalign/pkg/mapping"
)

// Pair is an unordered pair of matcher names, stored with A < B.
type Pair struct {
	A string
	B string
}

// NewPair builds a Pair with its members in canonical order.
func NewPair(a, b string) Pair {
	if b < a {
		a, b = b, a
	}
	return Pair{A: a, B: b}
}

// PairwiseAgreement computes the Jaccard-style overlap between every
// pair of matchers appearing in the fused set: the number of fused
// keys both support divided by the number either supports. A pair
// supporting nothing has agreement 0.
func PairwiseAgreement(fused []mapping.Fused) map[Pair]float64 {
	matchers := mapping.Matchers(fused)

	scores := make(map[Pair]float64)
	for i, m1 := range matchers {
		for _, m2 := range matchers[i+1:] {
			bothAgree := 0
			eitherSupports := 0
			for _, f := range fused {
				s1, s2 := f.Supports(m1), f.Supports(m2)
				if s1 && s2 {
					bothAgree++
				}
				if s1 || s2 {
					eitherSupports++
				}
			}

			agreement := 0.0
			if eitherSupports > 0 {
				agreement = float64(bothAgree) / float64(eitherSupports)
			}
			scores[NewPair(m1, m2)] = agreement
		}
	}

	return scores
}

// SuggestWeights proposes a relative trust weight for each matcher in
// the fused set. With a reference set, each matcher's weight is its
// precision: the fraction of its own fused keys that appear in the
// reference. Without one, it is the mean of the matcher's pairwise
// agreement scores. Weights are normalized to sum to 1; when every raw
// score is zero the weights fall back to uniform.
func SuggestWeights(fused []mapping.Fused, reference []mapping.Fused) map[string]float64 {
	matchers := mapping.Matchers(fused)
	if len(matchers) == 0 {
		return map[string]float64{}
	}

	scores := make(map[string]float64, len(matchers))

	if len(reference) > 0 {
		referenceKeys := mapping.KeySet(reference)
		for _, m := range matchers {
			claimed := 0
			hits := 0
			for _, f := range fused {
				if !f.Supports(m) {
					continue
				}
				claimed++
				if _, ok := referenceKeys[f.Key()]; ok {
					hits++
				}
			}
			if claimed > 0 {
				scores[m] = float64(hits) / float64(claimed)
			} else {
				scores[m] = 0.0
			}
		}
	} else {
		agreement := PairwiseAgreement(fused)
		for _, m := range matchers {
			sum := 0.0
			n := 0
			for pair, score := range agreement {
				if pair.A == m || pair.B == m {
					sum += score
					n++
				}
			}
			if n > 0 {
				scores[m] = sum / float64(n)
			} else {
				scores[m] = 0.0
			}
		}
	}

	total := 0.0
	for _, s := range scores {
		total += s
	}

	weights := make(map[string]float64, len(matchers))
	if total > 0 {
		for m, s := range scores {
			weights[m] = s / total
		}
	} else {
		// No signal at all, fall back to uniform weights.
		for _, m := range matchers {
			weights[m] = 1.0 / float64(len(matchers))
		}
	}

	logSuggestedWeights(weights)
	return weights
}

func logSuggestedWeights(weights map[string]float64) {
	names := make([]string, 0, len(weights))
	for m := range weights {
		names = append(names, m)
	}
	sort.Slice(names, func(i, j int) bool { return weights[names[i]] > weights[names[j]] })

	ev := logging.Info()
	for _, m := range names {
		ev = ev.Float64(m, weights[m])
	}
	ev.Msg("Suggested matcher weights")
}
