package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/graphmesh/meshalign/internal/cmd/globals"
	"github.com/graphmesh/meshalign/internal/cmd/output"
	"github.com/graphmesh/meshalign/pkg/ensemble"
	"github.com/graphmesh/meshalign/pkg/errors"
	"github.com/graphmesh/meshalign/pkg/fusion"
	"github.com/graphmesh/meshalign/pkg/logging"
	"github.com/graphmesh/meshalign/pkg/mapping"
	"github.com/graphmesh/meshalign/pkg/sssom"
)

// parseInputs reads the repeatable --input name=path flags into
// per-matcher mapping lists.
func parseInputs(ctx context.Context, inputs []string) (map[string][]mapping.Mapping, error) {
	if len(inputs) == 0 {
		return nil, errors.NewValidationError("input", nil, "at least one --input name=path is required")
	}

	sources := make(map[string][]mapping.Mapping, len(inputs))
	for _, in := range inputs {
		name, path, ok := strings.Cut(in, "=")
		if !ok || name == "" || path == "" {
			return nil, errors.NewValidationError("input", in, "expected matcher=path")
		}
		if _, exists := sources[name]; exists {
			return nil, errors.NewValidationError("input", name, "duplicate matcher name")
		}

		logging.Ctx(logging.WithMatcher(ctx, name)).Debug().
			Str("path", path).
			Msg("Reading matcher mappings")

		mappings, err := sssom.ReadFile(path, name)
		if err != nil {
			return nil, err
		}
		sources[name] = mappings
	}
	return sources, nil
}

// loadEnsemble resolves the ensemble descriptor: an explicit YAML file
// when given, otherwise one synthesized from the input matcher names.
func loadEnsemble(flags *globals.FusionFlags, sources map[string][]mapping.Mapping) (*ensemble.Ensemble, error) {
	if flags.Ensemble != "" {
		return ensemble.Load(flags.Ensemble)
	}

	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	e := ensemble.New(names...)
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// fuseInputs runs the whole ingest-and-fuse front half shared by every
// subcommand: parse inputs, resolve the ensemble, fuse.
func fuseInputs(ctx context.Context, flags *globals.FusionFlags) ([]mapping.Fused, *ensemble.Ensemble, error) {
	sources, err := parseInputs(ctx, flags.Inputs)
	if err != nil {
		return nil, nil, err
	}

	ens, err := loadEnsemble(flags, sources)
	if err != nil {
		return nil, nil, err
	}

	fused := fusion.Fuse(sources, flags.MinConfidence)
	return fused, ens, nil
}

// writeOutput renders data to stdout with the globally selected format.
func writeOutput(data any) error {
	format := output.DetectFormat(globalFlags.Output)
	if _, err := output.ParseFormat(string(format)); err != nil {
		return err
	}
	return output.NewFormatter(format).Format(os.Stdout, data)
}

// writeFusedOrPrint exports fused mappings to a file when path is set,
// otherwise writes TSV to stdout.
func writeFusedOrPrint(path string, fused []mapping.Fused, opts sssom.WriteOptions) error {
	if path == "" {
		return sssom.Write(os.Stdout, fused, opts)
	}
	if err := sssom.WriteFile(path, fused, opts); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Wrote %d mappings to %s\n", len(fused), path)
	return nil
}
