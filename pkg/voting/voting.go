// Package voting applies ensemble decision policies to fused mappings,
// partitioning them into accepted and rejected sets. It also computes
// pairwise inter-matcher agreement and suggests relative trust weights.
package voting

import (
	"fmt"

	"github.com/graphmesh/meshalign/pkg/errors"
	"github.com/graphmesh/meshalign/pkg/logging"
	"github.com/graphmesh/meshalign/pkg/mapping"
)

// Strategy selects how fused mappings are accepted or rejected.
type Strategy string

// Available voting strategies.
const (
	// Majority accepts a mapping when more than half the ensemble
	// supports it.
	Majority Strategy = "majority"
	// Unanimous accepts a mapping only when every matcher supports it.
	Unanimous Strategy = "unanimous"
	// Weighted accepts a mapping when the summed matcher weights of
	// its supporters reach the configured threshold.
	Weighted Strategy = "weighted"
	// ConfidenceWeighted accepts a mapping when the weight-scaled
	// confidence sum of its supporters reaches the threshold.
	ConfidenceWeighted Strategy = "confidence_weighted"
	// Threshold accepts a mapping when its support count reaches both
	// the absolute and ratio-derived thresholds.
	Threshold Strategy = "threshold"
)

// Valid reports whether s is one of the enumerated strategies.
func (s Strategy) Valid() bool {
	switch s {
	case Majority, Unanimous, Weighted, ConfidenceWeighted, Threshold:
		return true
	}
	return false
}

// String returns the strategy name.
func (s Strategy) String() string { return string(s) }

// ParseStrategy converts a strategy name to a Strategy, failing on
// anything outside the enumerated set.
func ParseStrategy(name string) (Strategy, error) {
	s := Strategy(name)
	if !s.Valid() {
		return "", errors.NewStrategyError(name)
	}
	return s, nil
}

// Config holds the voting parameters. A Config value is never mutated
// by Vote; callers may share one across concurrent calls.
type Config struct {
	Strategy        Strategy           `yaml:"strategy" json:"strategy"`
	MinSupportCount int                `yaml:"min_support_count" json:"min_support_count"`
	MinSupportRatio float64            `yaml:"min_support_ratio" json:"min_support_ratio"`
	MinConfidence   float64            `yaml:"min_confidence" json:"min_confidence"`
	MatcherWeights  map[string]float64 `yaml:"matcher_weights,omitempty" json:"matcher_weights,omitempty"`
}

// DefaultConfig returns a Config with majority voting and the standard
// thresholds.
func DefaultConfig() Config {
	return Config{
		Strategy:        Majority,
		MinSupportCount: 2,
		MinSupportRatio: 0.5,
		MinConfidence:   0.0,
	}
}

// Result partitions the pre-filtered fused set: every record that
// survives the confidence pre-filter appears in exactly one of
// Accepted or Rejected.
type Result struct {
	Accepted      []mapping.Fused
	Rejected      []mapping.Fused
	TotalMatchers int
	Strategy      Strategy
}

// Vote applies the configured strategy to the fused mappings.
// totalMatchers is the size of the candidate ensemble, which may
// exceed the number of matchers that produced any record.
// An unrecognized strategy is a hard error.
func Vote(fused []mapping.Fused, cfg Config, totalMatchers int) (*Result, error) {
	logging.Info().
		Str("strategy", cfg.Strategy.String()).
		Int("total_matchers", totalMatchers).
		Msg("Applying voting strategy")

	if cfg.MinConfidence > 0 {
		preFiltered := make([]mapping.Fused, 0, len(fused))
		for _, f := range fused {
			if f.ConsensusConfidence >= cfg.MinConfidence {
				preFiltered = append(preFiltered, f)
			}
		}
		logging.Info().
			Float64("min_confidence", cfg.MinConfidence).
			Int("retained", len(preFiltered)).
			Int("total", len(fused)).
			Msg("Pre-filtered by consensus confidence")
		fused = preFiltered
	}

	var accepted []mapping.Fused
	switch cfg.Strategy {
	case Majority:
		accepted = applyMajority(fused, totalMatchers)
	case Unanimous:
		accepted = applyUnanimous(fused, totalMatchers)
	case Weighted:
		weights := cfg.MatcherWeights
		if len(weights) == 0 {
			weights = uniformWeights(totalMatchers)
		}
		accepted = applyWeighted(fused, weights, cfg.MinSupportRatio)
	case ConfidenceWeighted:
		weights := cfg.MatcherWeights
		if len(weights) == 0 {
			weights = uniformWeights(totalMatchers)
		}
		accepted = applyConfidenceWeighted(fused, weights, cfg.MinSupportRatio)
	case Threshold:
		accepted = applyThreshold(fused, cfg.MinSupportCount, cfg.MinSupportRatio, totalMatchers)
	default:
		return nil, errors.NewStrategyError(cfg.Strategy.String())
	}

	acceptedKeys := mapping.KeySet(accepted)
	rejected := make([]mapping.Fused, 0, len(fused)-len(accepted))
	for _, f := range fused {
		if _, ok := acceptedKeys[f.Key()]; !ok {
			rejected = append(rejected, f)
		}
	}

	return &Result{
		Accepted:      accepted,
		Rejected:      rejected,
		TotalMatchers: totalMatchers,
		Strategy:      cfg.Strategy,
	}, nil
}

// applyMajority accepts mappings supported by strictly more than half
// the ensemble. The real-valued threshold makes odd ensemble sizes
// round correctly without an explicit ceil.
func applyMajority(fused []mapping.Fused, totalMatchers int) []mapping.Fused {
	threshold := float64(totalMatchers)/2.0 + 0.5

	accepted := make([]mapping.Fused, 0, len(fused))
	for _, f := range fused {
		if float64(f.SupportCount()) >= threshold {
			accepted = append(accepted, f)
		}
	}

	logging.Info().
		Float64("threshold", threshold).
		Int("accepted", len(accepted)).
		Int("total", len(fused)).
		Msg("Majority voting")
	return accepted
}

// applyUnanimous accepts only mappings supported by every matcher.
func applyUnanimous(fused []mapping.Fused, totalMatchers int) []mapping.Fused {
	accepted := make([]mapping.Fused, 0, len(fused))
	for _, f := range fused {
		if f.SupportCount() == totalMatchers {
			accepted = append(accepted, f)
		}
	}

	logging.Info().
		Int("total_matchers", totalMatchers).
		Int("accepted", len(accepted)).
		Int("total", len(fused)).
		Msg("Unanimous voting")
	return accepted
}

// applyWeighted accepts mappings whose summed supporter weights reach
// the threshold. Matchers without a weight contribute 0.
func applyWeighted(fused []mapping.Fused, weights map[string]float64, threshold float64) []mapping.Fused {
	accepted := make([]mapping.Fused, 0, len(fused))
	for _, f := range fused {
		vote := 0.0
		for _, m := range f.SupportingMatchers {
			vote += weights[m]
		}
		if vote >= threshold {
			accepted = append(accepted, f)
		}
	}

	logging.Info().
		Float64("threshold", threshold).
		Int("accepted", len(accepted)).
		Int("total", len(fused)).
		Msg("Weighted voting")
	return accepted
}

// applyConfidenceWeighted accepts mappings whose weight-scaled
// confidence sum reaches the threshold.
func applyConfidenceWeighted(fused []mapping.Fused, weights map[string]float64, threshold float64) []mapping.Fused {
	accepted := make([]mapping.Fused, 0, len(fused))
	for _, f := range fused {
		weighted := 0.0
		for _, m := range f.SupportingMatchers {
			weighted += weights[m] * f.Confidences[m]
		}
		if weighted >= threshold {
			accepted = append(accepted, f)
		}
	}

	logging.Info().
		Float64("threshold", threshold).
		Int("accepted", len(accepted)).
		Int("total", len(fused)).
		Msg("Confidence-weighted voting")
	return accepted
}

// applyThreshold accepts mappings whose support count reaches both the
// absolute minimum and the ratio-derived minimum. The ratio-derived
// count truncates toward zero.
func applyThreshold(fused []mapping.Fused, minSupportCount int, minSupportRatio float64, totalMatchers int) []mapping.Fused {
	minCountFromRatio := int(minSupportRatio * float64(totalMatchers))
	effective := minSupportCount
	if minCountFromRatio > effective {
		effective = minCountFromRatio
	}

	accepted := make([]mapping.Fused, 0, len(fused))
	for _, f := range fused {
		if f.SupportCount() >= effective {
			accepted = append(accepted, f)
		}
	}

	logging.Info().
		Int("threshold", effective).
		Int("total_matchers", totalMatchers).
		Int("accepted", len(accepted)).
		Int("total", len(fused)).
		Msg("Threshold voting")
	return accepted
}

// uniformWeights synthesizes equal weights keyed by positional
// placeholder names. The placeholders almost never match real matcher
// names, which makes unweighted weighted voting degenerate; callers of
// Weighted or ConfidenceWeighted should supply explicit weights.
// The synthesized map is local to the call and never written back to
// the caller's Config.
func uniformWeights(totalMatchers int) map[string]float64 {
	logging.Warn().
		Int("total_matchers", totalMatchers).
		Msg("No matcher weights provided, synthesizing uniform placeholder weights; supply explicit weights for weighted strategies")

	weights := make(map[string]float64, totalMatchers)
	for i := 0; i < totalMatchers; i++ {
		weights[fmt.Sprintf("matcher_%d", i)] = 1.0 / float64(totalMatchers)
	}
	return weights
}
