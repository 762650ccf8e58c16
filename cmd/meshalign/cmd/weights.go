package cmd

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/graphmesh/meshalign/internal/cmd/globals"
	"github.com/graphmesh/meshalign/internal/cmd/output"
	"github.com/graphmesh/meshalign/pkg/mapping"
	"github.com/graphmesh/meshalign/pkg/sssom"
	"github.com/graphmesh/meshalign/pkg/voting"
)

var (
	weightsFlags     *globals.FusionFlags
	weightsReference string
)

// matcherWeight is one row of the suggested-weights output.
type matcherWeight struct {
	Matcher string  `json:"matcher" yaml:"matcher"`
	Weight  float64 `json:"weight" yaml:"weight"`
}

// pairAgreement is one row of the pairwise-agreement output.
type pairAgreement struct {
	MatcherA  string  `json:"matcher_a" yaml:"matcher_a"`
	MatcherB  string  `json:"matcher_b" yaml:"matcher_b"`
	Agreement float64 `json:"agreement" yaml:"agreement"`
}

// weightsReport combines agreement and suggested weights.
type weightsReport struct {
	Agreement []pairAgreement `json:"agreement" yaml:"agreement"`
	Weights   []matcherWeight `json:"weights" yaml:"weights"`
}

// weightsCmd represents the weights command.
var weightsCmd = &cobra.Command{
	Use:   "weights",
	Short: "Compute inter-matcher agreement and suggest trust weights",
	Long: `Weights fuses the matcher inputs and reports the pairwise Jaccard
agreement between matchers together with suggested relative trust
weights. With --reference, weights are each matcher's precision against
the gold standard; without one, they derive from mutual agreement.

Examples:
  meshalign weights -i logmap=a.tsv -i aml=b.tsv -i bertmap=c.tsv
  meshalign weights -i logmap=a.tsv -i aml=b.tsv --reference gold.tsv`,
	RunE: runWeights,
}

func init() {
	rootCmd.AddCommand(weightsCmd)

	weightsFlags = globals.AddFusionFlags(weightsCmd)
	weightsCmd.Flags().StringVar(&weightsReference, "reference", "",
		"Gold standard SSSOM file for precision-based weights")
}

func runWeights(cmd *cobra.Command, _ []string) error {
	fused, _, err := fuseInputs(cmd.Context(), weightsFlags)
	if err != nil {
		return err
	}

	var reference []mapping.Fused
	if weightsReference != "" {
		reference, err = loadReference(weightsReference)
		if err != nil {
			return err
		}
	}

	agreement := voting.PairwiseAgreement(fused)
	weights := voting.SuggestWeights(fused, reference)

	report := weightsReport{}

	pairs := make([]voting.Pair, 0, len(agreement))
	for p := range agreement {
		pairs = append(pairs, p)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})
	for _, p := range pairs {
		report.Agreement = append(report.Agreement, pairAgreement{
			MatcherA:  p.A,
			MatcherB:  p.B,
			Agreement: agreement[p],
		})
	}

	names := make([]string, 0, len(weights))
	for m := range weights {
		names = append(names, m)
	}
	sort.Slice(names, func(i, j int) bool {
		if weights[names[i]] != weights[names[j]] {
			return weights[names[i]] > weights[names[j]]
		}
		return names[i] < names[j]
	})
	for _, m := range names {
		report.Weights = append(report.Weights, matcherWeight{Matcher: m, Weight: weights[m]})
	}

	if output.DetectFormat(globalFlags.Output) == output.FormatTable {
		// Two separate tables read better than one nested struct.
		if err := writeOutput(report.Agreement); err != nil {
			return err
		}
		return writeOutput(report.Weights)
	}
	return writeOutput(report)
}

// loadReference reads a gold-standard SSSOM file and lifts each record
// into a single-matcher fused record so key-set comparisons apply.
func loadReference(path string) ([]mapping.Fused, error) {
	mappings, err := sssom.ReadFile(path, "reference")
	if err != nil {
		return nil, err
	}

	fused := make([]mapping.Fused, 0, len(mappings))
	seen := make(map[mapping.Key]struct{}, len(mappings))
	for _, m := range mappings {
		if _, ok := seen[m.Key()]; ok {
			continue
		}
		seen[m.Key()] = struct{}{}
		fused = append(fused, mapping.Fused{
			SubjectID:           m.SubjectID,
			ObjectID:            m.ObjectID,
			PredicateID:         m.PredicateID,
			Confidences:         map[string]float64{m.Matcher: m.Confidence},
			SupportingMatchers:  []string{m.Matcher},
			ConsensusConfidence: m.Confidence,
		})
	}
	return fused, nil
}
