package cmd

import (
	"github.com/spf13/cobra"

	"github.com/graphmesh/meshalign/internal/cmd/globals"
	"github.com/graphmesh/meshalign/pkg/errors"
	"github.com/graphmesh/meshalign/pkg/quality"
)

var (
	compareFlags     *globals.FusionFlags
	compareReference string
)

// compareCmd represents the compare command.
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Evaluate the fused set against a gold standard",
	Long: `Compare fuses the matcher inputs and scores the result against a
reference alignment: precision, recall, and F1 over identity keys.

Example:
  meshalign compare -i logmap=a.tsv -i aml=b.tsv --reference gold.tsv`,
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	compareFlags = globals.AddFusionFlags(compareCmd)
	compareCmd.Flags().StringVar(&compareReference, "reference", "",
		"Gold standard SSSOM file (required)")
}

func runCompare(cmd *cobra.Command, _ []string) error {
	if compareReference == "" {
		return errors.NewValidationError("reference", "", "a --reference file is required")
	}

	fused, _, err := fuseInputs(cmd.Context(), compareFlags)
	if err != nil {
		return err
	}

	reference, err := loadReference(compareReference)
	if err != nil {
		return err
	}

	return writeOutput(quality.Compare(fused, reference))
}
