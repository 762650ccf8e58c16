package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/graphmesh/meshalign/internal/cmd/globals"
	"github.com/graphmesh/meshalign/pkg/conflict"
	"github.com/graphmesh/meshalign/pkg/quality"
)

var (
	reportFlags    *globals.FusionFlags
	reportOut      string
	reportConflict string
)

// reportCmd represents the report command.
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a quality report for the fused mapping set",
	Long: `Report fuses the matcher inputs and renders a fixed-width quality
report: mapping counts, confidence and support statistics with
distributions, and the predicate breakdown. With --resolve, conflicts
are resolved first and a conflict section is included.

Examples:
  meshalign report -i logmap=a.tsv -i aml=b.tsv
  meshalign report -i logmap=a.tsv -i aml=b.tsv --resolve confidence --out quality.txt`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportFlags = globals.AddFusionFlags(reportCmd)
	reportCmd.Flags().StringVar(&reportOut, "out", "", "Report file path (default stdout)")
	reportCmd.Flags().StringVar(&reportConflict, "resolve", "",
		"Resolve conflicts with this strategy and include a conflict section")
}

func runReport(cmd *cobra.Command, _ []string) error {
	fused, _, err := fuseInputs(cmd.Context(), reportFlags)
	if err != nil {
		return err
	}

	var conflicts *conflict.Report
	if reportConflict != "" {
		conflicts = conflict.Resolve(fused, reportConflict)
		fused = conflicts.Resolved
	}

	if reportOut == "" {
		return quality.WriteReport(os.Stdout, fused, conflicts)
	}
	return quality.WriteReportFile(reportOut, fused, conflicts)
}
