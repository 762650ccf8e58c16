// Package quality computes descriptive statistics over fused mapping
// sets, renders human-readable quality reports, and evaluates fused
// sets against gold-standard references.
package quality

import (
	"github.com/graphmesh/meshalign/pkg/logging"
	"github.com/graphmesh/meshalign/pkg/mapping"
)

// Metrics holds descriptive statistics for a fused mapping set.
// Metrics are computed fresh on each Analyze call and never cached.
type Metrics struct {
	TotalMappings  int `json:"total_mappings" yaml:"total_mappings"`
	UniqueSubjects int `json:"unique_subjects" yaml:"unique_subjects"`
	UniqueObjects  int `json:"unique_objects" yaml:"unique_objects"`

	AvgConfidence float64 `json:"avg_confidence" yaml:"avg_confidence"`
	MinConfidence float64 `json:"min_confidence" yaml:"min_confidence"`
	MaxConfidence float64 `json:"max_confidence" yaml:"max_confidence"`

	AvgSupportCount float64 `json:"avg_support_count" yaml:"avg_support_count"`
	MinSupportCount int     `json:"min_support_count" yaml:"min_support_count"`
	MaxSupportCount int     `json:"max_support_count" yaml:"max_support_count"`

	// ConfidenceDistribution buckets consensus confidence into the
	// fixed half-open bins 0.0-0.2 .. 0.6-0.8 plus the closed bin
	// 0.8-1.0.
	ConfidenceDistribution map[string]int `json:"confidence_distribution" yaml:"confidence_distribution"`

	// SupportDistribution maps each observed support count to how many
	// mappings carry it. Unseen counts do not appear.
	SupportDistribution map[int]int `json:"support_distribution" yaml:"support_distribution"`

	// PredicateDistribution maps each observed predicate to its
	// mapping count.
	PredicateDistribution map[string]int `json:"predicate_distribution" yaml:"predicate_distribution"`
}

// Confidence histogram bin labels, in ascending order.
var confidenceBins = []string{"0.0-0.2", "0.2-0.4", "0.4-0.6", "0.6-0.8", "0.8-1.0"}

// Analyze computes quality metrics for a fused mapping set. An empty
// set produces all-zero metrics, not an error.
func Analyze(fused []mapping.Fused) Metrics {
	if len(fused) == 0 {
		logging.Warn().Msg("No mappings provided for quality calculation")
		return Metrics{
			ConfidenceDistribution: map[string]int{},
			SupportDistribution:    map[int]int{},
			PredicateDistribution:  map[string]int{},
		}
	}

	subjects := make(map[string]struct{})
	objects := make(map[string]struct{})

	confSum, confMin, confMax := 0.0, fused[0].ConsensusConfidence, fused[0].ConsensusConfidence
	supSum, supMin, supMax := 0, fused[0].SupportCount(), fused[0].SupportCount()

	confidenceDist := map[string]int{
		"0.0-0.2": 0,
		"0.2-0.4": 0,
		"0.4-0.6": 0,
		"0.6-0.8": 0,
		"0.8-1.0": 0,
	}
	supportDist := make(map[int]int)
	predicateDist := make(map[string]int)

	for _, f := range fused {
		subjects[f.SubjectID] = struct{}{}
		objects[f.ObjectID] = struct{}{}

		c := f.ConsensusConfidence
		confSum += c
		if c < confMin {
			confMin = c
		}
		if c > confMax {
			confMax = c
		}
		if bin := confidenceBin(c); bin != "" {
			confidenceDist[bin]++
		}

		s := f.SupportCount()
		supSum += s
		if s < supMin {
			supMin = s
		}
		if s > supMax {
			supMax = s
		}
		supportDist[s]++

		predicateDist[f.PredicateID]++
	}

	metrics := Metrics{
		TotalMappings:          len(fused),
		UniqueSubjects:         len(subjects),
		UniqueObjects:          len(objects),
		AvgConfidence:          confSum / float64(len(fused)),
		MinConfidence:          confMin,
		MaxConfidence:          confMax,
		AvgSupportCount:        float64(supSum) / float64(len(fused)),
		MinSupportCount:        supMin,
		MaxSupportCount:        supMax,
		ConfidenceDistribution: confidenceDist,
		SupportDistribution:    supportDist,
		PredicateDistribution:  predicateDist,
	}

	logging.Info().Int("mappings", metrics.TotalMappings).Msg("Quality metrics calculated")
	return metrics
}

// confidenceBin returns the histogram bin for a confidence value.
// Bins are half-open except the last, which is closed on both ends.
// Values outside [0, 1] fall in no bin.
func confidenceBin(c float64) string {
	switch {
	case c >= 0.0 && c < 0.2:
		return confidenceBins[0]
	case c >= 0.2 && c < 0.4:
		return confidenceBins[1]
	case c >= 0.4 && c < 0.6:
		return confidenceBins[2]
	case c >= 0.6 && c < 0.8:
		return confidenceBins[3]
	case c >= 0.8 && c <= 1.0:
		return confidenceBins[4]
	}
	return ""
}
