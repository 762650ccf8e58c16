package quality

import (
	"github.com/graphmesh/meshalign/pkg/logging"
	"github.com/graphmesh/meshalign/pkg/mapping"
)

// Comparison holds precision/recall figures for a fused set evaluated
// against a gold-standard reference, computed over identity keys.
type Comparison struct {
	Precision      float64 `json:"precision" yaml:"precision"`
	Recall         float64 `json:"recall" yaml:"recall"`
	F1             float64 `json:"f1_score" yaml:"f1_score"`
	TruePositives  int     `json:"true_positives" yaml:"true_positives"`
	FalsePositives int     `json:"false_positives" yaml:"false_positives"`
	FalseNegatives int     `json:"false_negatives" yaml:"false_negatives"`
}

// Compare evaluates fused mappings against a reference set. Precision
// and recall are defined as 0 when their denominator is 0; F1 is the
// harmonic mean, also 0 when both are 0.
func Compare(fused []mapping.Fused, reference []mapping.Fused) Comparison {
	fusedKeys := mapping.KeySet(fused)
	referenceKeys := mapping.KeySet(reference)

	truePositives := 0
	for k := range fusedKeys {
		if _, ok := referenceKeys[k]; ok {
			truePositives++
		}
	}
	falsePositives := len(fusedKeys) - truePositives
	falseNegatives := len(referenceKeys) - truePositives

	precision := 0.0
	if truePositives+falsePositives > 0 {
		precision = float64(truePositives) / float64(truePositives+falsePositives)
	}
	recall := 0.0
	if truePositives+falseNegatives > 0 {
		recall = float64(truePositives) / float64(truePositives+falseNegatives)
	}
	f1 := 0.0
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}

	logging.Info().
		Float64("precision", precision).
		Float64("recall", recall).
		Float64("f1", f1).
		Msg("Comparison with reference")

	return Comparison{
		Precision:      precision,
		Recall:         recall,
		F1:             f1,
		TruePositives:  truePositives,
		FalsePositives: falsePositives,
		FalseNegatives: falseNegatives,
	}
}
