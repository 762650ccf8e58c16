package cmd

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/graphmesh/meshalign/internal/cmd/globals"
	"github.com/graphmesh/meshalign/pkg/fusion"
	"github.com/graphmesh/meshalign/pkg/logging"
	"github.com/graphmesh/meshalign/pkg/sssom"
)

var (
	fuseFlags      *globals.FusionFlags
	fuseOut        string
	fuseMinSupport int
	fuseNoMetadata bool
)

// fuseCmd represents the fuse command.
var fuseCmd = &cobra.Command{
	Use:   "fuse",
	Short: "Fuse per-matcher mapping files into a consensus set",
	Long: `Fuse reads SSSOM mapping files produced by independent matchers,
groups claims about the same subject/object/predicate triple, and
exports one consensus record per triple with supporting-matcher
provenance and a mean consensus confidence.

Examples:
  meshalign fuse -i logmap=logmap.tsv -i aml=aml.tsv --out fused.tsv
  meshalign fuse -i logmap=logmap.tsv -i aml=aml.tsv --min-support 2`,
	RunE: runFuse,
}

func init() {
	rootCmd.AddCommand(fuseCmd)

	fuseFlags = globals.AddFusionFlags(fuseCmd)
	fuseCmd.Flags().StringVar(&fuseOut, "out", "", "Output TSV path (default stdout)")
	fuseCmd.Flags().IntVar(&fuseMinSupport, "min-support", 0,
		"Keep only mappings with at least this many supporting matchers")
	fuseCmd.Flags().BoolVar(&fuseNoMetadata, "no-metadata", false,
		"Omit the commented metadata header")
}

func runFuse(cmd *cobra.Command, _ []string) error {
	runID := uuid.NewString()
	ctx := logging.WithRunID(cmd.Context(), runID)

	fused, _, err := fuseInputs(ctx, fuseFlags)
	if err != nil {
		return err
	}

	if fuseMinSupport > 0 {
		fused = fusion.FilterBySupport(fused, fuseMinSupport)
	}

	if err := writeFusedOrPrint(fuseOut, fused, sssom.WriteOptions{
		IncludeMetadata: !fuseNoMetadata,
		RunID:           runID,
	}); err != nil {
		return err
	}

	logging.Ctx(ctx).Info().Int("mappings", len(fused)).Msg("Fusion run complete")
	return nil
}
