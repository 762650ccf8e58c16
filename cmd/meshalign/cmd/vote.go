package cmd

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/graphmesh/meshalign/internal/cmd/globals"
	"github.com/graphmesh/meshalign/pkg/logging"
	"github.com/graphmesh/meshalign/pkg/sssom"
	"github.com/graphmesh/meshalign/pkg/voting"
)

var (
	voteFlags         *globals.FusionFlags
	voteStrategy      string
	voteOut           string
	voteRejectedOut   string
	voteMinSupport    int
	voteSupportRatio  float64
	voteMinConfidence float64
)

// voteSummary is the accept/reject overview printed after voting.
type voteSummary struct {
	Strategy      string  `json:"strategy" yaml:"strategy"`
	TotalMatchers int     `json:"total_matchers" yaml:"total_matchers"`
	Accepted      int     `json:"accepted" yaml:"accepted"`
	Rejected      int     `json:"rejected" yaml:"rejected"`
	AcceptRate    float64 `json:"accept_rate" yaml:"accept_rate"`
}

// voteCmd represents the vote command.
var voteCmd = &cobra.Command{
	Use:   "vote",
	Short: "Apply an ensemble voting strategy to fused mappings",
	Long: `Vote fuses the matcher inputs and partitions the consensus set into
accepted and rejected mappings under the selected strategy.

Strategies: majority, unanimous, weighted, confidence_weighted, threshold.
Weighted strategies take matcher weights from the ensemble descriptor.

Examples:
  meshalign vote -i logmap=a.tsv -i aml=b.tsv --strategy majority --out accepted.tsv
  meshalign vote -i logmap=a.tsv -i aml=b.tsv -e ensemble.yaml --strategy weighted`,
	RunE: runVote,
}

func init() {
	rootCmd.AddCommand(voteCmd)

	voteFlags = globals.AddFusionFlags(voteCmd)
	voteCmd.Flags().StringVarP(&voteStrategy, "strategy", "s", string(voting.Majority),
		"Voting strategy")
	voteCmd.Flags().StringVar(&voteOut, "out", "", "Accepted mappings TSV path (default stdout)")
	voteCmd.Flags().StringVar(&voteRejectedOut, "rejected-out", "",
		"Optional TSV path for rejected mappings")
	voteCmd.Flags().IntVar(&voteMinSupport, "min-support-count", 2,
		"Minimum supporting matchers for threshold voting")
	voteCmd.Flags().Float64Var(&voteSupportRatio, "min-support-ratio", 0.5,
		"Support ratio for threshold voting, or acceptance threshold for weighted voting")
	voteCmd.Flags().Float64Var(&voteMinConfidence, "vote-min-confidence", 0.0,
		"Drop fused mappings below this consensus confidence before voting")

	_ = viper.BindPFlag("vote.strategy", voteCmd.Flags().Lookup("strategy"))
	_ = viper.BindPFlag("vote.min_support_ratio", voteCmd.Flags().Lookup("min-support-ratio"))
}

// resolveVoteConfig builds the voting configuration. Strategy and
// support ratio go through viper so config-file and MESHALIGN_* env
// values apply when the flags are left at their defaults.
func resolveVoteConfig(weights map[string]float64) (voting.Config, error) {
	strategy, err := voting.ParseStrategy(viper.GetString("vote.strategy"))
	if err != nil {
		return voting.Config{}, err
	}

	return voting.Config{
		Strategy:        strategy,
		MinSupportCount: voteMinSupport,
		MinSupportRatio: viper.GetFloat64("vote.min_support_ratio"),
		MinConfidence:   voteMinConfidence,
		MatcherWeights:  weights,
	}, nil
}

func runVote(cmd *cobra.Command, _ []string) error {
	runID := uuid.NewString()
	ctx := logging.WithRunID(cmd.Context(), runID)

	fused, ens, err := fuseInputs(ctx, voteFlags)
	if err != nil {
		return err
	}

	cfg, err := resolveVoteConfig(ens.Weights())
	if err != nil {
		return err
	}
	ctx = logging.WithStrategy(ctx, cfg.Strategy.String())

	result, err := voting.Vote(fused, cfg, ens.Size())
	if err != nil {
		return err
	}

	if err := writeFusedOrPrint(voteOut, result.Accepted, sssom.WriteOptions{
		IncludeMetadata: true,
		RunID:           runID,
	}); err != nil {
		return err
	}

	logging.Ctx(ctx).Info().
		Int("accepted", len(result.Accepted)).
		Int("rejected", len(result.Rejected)).
		Msg("Voting run complete")

	if voteRejectedOut != "" {
		if err := sssom.WriteFile(voteRejectedOut, result.Rejected, sssom.WriteOptions{}); err != nil {
			return err
		}
	}

	// The TSV already went to stdout when no --out was given; the
	// summary would corrupt it.
	if voteOut == "" {
		return nil
	}

	total := len(result.Accepted) + len(result.Rejected)
	rate := 0.0
	if total > 0 {
		rate = float64(len(result.Accepted)) / float64(total)
	}
	return writeOutput(voteSummary{
		Strategy:      result.Strategy.String(),
		TotalMatchers: result.TotalMatchers,
		Accepted:      len(result.Accepted),
		Rejected:      len(result.Rejected),
		AcceptRate:    rate,
	})
}
