package cmd

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/graphmesh/meshalign/internal/cmd/globals"
	"github.com/graphmesh/meshalign/pkg/conflict"
	"github.com/graphmesh/meshalign/pkg/logging"
	"github.com/graphmesh/meshalign/pkg/sssom"
)

var (
	resolveFlags    *globals.FusionFlags
	resolveStrategy string
	resolveOut      string
)

// resolveSummary is the conflict overview printed after resolution.
type resolveSummary struct {
	Strategy            string `json:"strategy" yaml:"strategy"`
	TotalConflicts      int    `json:"total_conflicts" yaml:"total_conflicts"`
	ConflictingSubjects int    `json:"conflicting_subjects" yaml:"conflicting_subjects"`
	ResolvedMappings    int    `json:"resolved_mappings" yaml:"resolved_mappings"`
}

// resolveCmd represents the resolve command.
var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Resolve subjects fused to multiple distinct objects",
	Long: `Resolve fuses the matcher inputs, finds subjects mapped to more than
one distinct object, and keeps a single representative per subject.

Strategies: confidence (default), support, specificity, keep_all.
An unknown strategy falls back to confidence.

Example:
  meshalign resolve -i logmap=a.tsv -i aml=b.tsv --strategy support --out resolved.tsv`,
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveFlags = globals.AddFusionFlags(resolveCmd)
	resolveCmd.Flags().StringVarP(&resolveStrategy, "strategy", "s", conflict.StrategyConfidence,
		"Resolution strategy")
	resolveCmd.Flags().StringVar(&resolveOut, "out", "", "Resolved mappings TSV path (default stdout)")
}

func runResolve(cmd *cobra.Command, _ []string) error {
	runID := uuid.NewString()
	ctx := logging.WithStrategy(logging.WithRunID(cmd.Context(), runID), resolveStrategy)

	fused, _, err := fuseInputs(ctx, resolveFlags)
	if err != nil {
		return err
	}

	report := conflict.Resolve(fused, resolveStrategy)

	if err := writeFusedOrPrint(resolveOut, report.Resolved, sssom.WriteOptions{
		IncludeMetadata: true,
		RunID:           runID,
	}); err != nil {
		return err
	}

	logging.Ctx(ctx).Info().
		Int("conflicts", report.TotalConflicts).
		Int("resolved", len(report.Resolved)).
		Msg("Conflict resolution run complete")

	if resolveOut == "" {
		return nil
	}

	return writeOutput(resolveSummary{
		Strategy:            report.Strategy,
		TotalConflicts:      report.TotalConflicts,
		ConflictingSubjects: len(report.ConflictingSubjects),
		ResolvedMappings:    len(report.Resolved),
	})
}
