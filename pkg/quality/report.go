package quality

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/graphmesh/meshalign/pkg/conflict"
	"github.com/graphmesh/meshalign/pkg/errors"
	"github.com/graphmesh/meshalign/pkg/logging"
	"github.com/graphmesh/meshalign/pkg/mapping"
)

const reportWidth = 80

// WriteReport renders a fixed-width plain-text quality report for the
// fused set. A conflict report, when supplied, adds a resolution
// section with up to ten example conflicting subjects.
func WriteReport(w io.Writer, fused []mapping.Fused, conflicts *conflict.Report) error {
	metrics := Analyze(fused)

	rule := strings.Repeat("=", reportWidth)
	section := strings.Repeat("-", reportWidth)

	var b strings.Builder
	b.WriteString(rule + "\n")
	b.WriteString("MAPPING QUALITY REPORT\n")
	b.WriteString(rule + "\n\n")

	b.WriteString("OVERVIEW\n")
	b.WriteString(section + "\n")
	fmt.Fprintf(&b, "Total Mappings:       %d\n", metrics.TotalMappings)
	fmt.Fprintf(&b, "Unique Subjects:      %d\n", metrics.UniqueSubjects)
	fmt.Fprintf(&b, "Unique Objects:       %d\n", metrics.UniqueObjects)
	subjects := metrics.UniqueSubjects
	if subjects < 1 {
		subjects = 1
	}
	coverage := float64(metrics.TotalMappings) / float64(subjects)
	fmt.Fprintf(&b, "Coverage Ratio:       %.2f\n\n", coverage)

	b.WriteString("CONFIDENCE STATISTICS\n")
	b.WriteString(section + "\n")
	fmt.Fprintf(&b, "Average Confidence:   %.3f\n", metrics.AvgConfidence)
	fmt.Fprintf(&b, "Min Confidence:       %.3f\n", metrics.MinConfidence)
	fmt.Fprintf(&b, "Max Confidence:       %.3f\n\n", metrics.MaxConfidence)

	b.WriteString("Confidence Distribution:\n")
	// An empty fused set has an empty distribution, so no bin rows.
	if metrics.TotalMappings > 0 {
		for _, bin := range confidenceBins {
			count := metrics.ConfidenceDistribution[bin]
			fmt.Fprintf(&b, "  %s: %5d (%5.1f%%)\n", bin, count, percent(count, metrics.TotalMappings))
		}
	}
	b.WriteString("\n")

	b.WriteString("SUPPORT STATISTICS\n")
	b.WriteString(section + "\n")
	fmt.Fprintf(&b, "Average Support:      %.2f\n", metrics.AvgSupportCount)
	fmt.Fprintf(&b, "Min Support:          %d\n", metrics.MinSupportCount)
	fmt.Fprintf(&b, "Max Support:          %d\n\n", metrics.MaxSupportCount)

	b.WriteString("Support Distribution:\n")
	supports := make([]int, 0, len(metrics.SupportDistribution))
	for s := range metrics.SupportDistribution {
		supports = append(supports, s)
	}
	sort.Ints(supports)
	for _, s := range supports {
		count := metrics.SupportDistribution[s]
		fmt.Fprintf(&b, "  %d matchers: %5d (%5.1f%%)\n", s, count, percent(count, metrics.TotalMappings))
	}
	b.WriteString("\n")

	b.WriteString("PREDICATE DISTRIBUTION\n")
	b.WriteString(section + "\n")
	predicates := make([]string, 0, len(metrics.PredicateDistribution))
	for p := range metrics.PredicateDistribution {
		predicates = append(predicates, p)
	}
	// Most common predicates first; name breaks ties for stable output.
	sort.Slice(predicates, func(i, j int) bool {
		ci, cj := metrics.PredicateDistribution[predicates[i]], metrics.PredicateDistribution[predicates[j]]
		if ci != cj {
			return ci > cj
		}
		return predicates[i] < predicates[j]
	})
	for _, p := range predicates {
		count := metrics.PredicateDistribution[p]
		fmt.Fprintf(&b, "  %s: %5d (%5.1f%%)\n", p, count, percent(count, metrics.TotalMappings))
	}
	b.WriteString("\n")

	if conflicts != nil {
		b.WriteString("CONFLICT RESOLUTION\n")
		b.WriteString(section + "\n")
		fmt.Fprintf(&b, "Total Conflicts:      %d\n", conflicts.TotalConflicts)
		fmt.Fprintf(&b, "Resolution Strategy:  %s\n", conflicts.Strategy)
		fmt.Fprintf(&b, "Resolved Mappings:    %d\n\n", len(conflicts.Resolved))

		if len(conflicts.ConflictingSubjects) > 0 {
			b.WriteString("Sample Conflicting Subjects (first 10):\n")
			sample := conflicts.ConflictingSubjects
			if len(sample) > 10 {
				sample = sample[:10]
			}
			for _, subject := range sample {
				fmt.Fprintf(&b, "  - %s\n", subject)
			}
			if rest := len(conflicts.ConflictingSubjects) - 10; rest > 0 {
				fmt.Fprintf(&b, "  ... and %d more\n", rest)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString(rule + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteReportFile writes the quality report to a file, creating parent
// directories as needed.
func WriteReportFile(path string, fused []mapping.Fused, conflicts *conflict.Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WrapIO("create", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	defer f.Close()

	if err := WriteReport(f, fused, conflicts); err != nil {
		return errors.WrapIO("write", path, err)
	}
	logging.Info().Str("path", path).Msg("Quality report generated")
	return nil
}

func percent(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}
