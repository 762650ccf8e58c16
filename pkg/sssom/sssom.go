// Package sssom reads and writes correspondence records in the SSSOM
// tab-separated format that the matching engines emit and downstream
// tooling consumes. Reading tolerates the common column aliases
// (subject vs subject_id, similarity vs confidence); writing flattens
// fused records back to one row per correspondence with support
// provenance in the comment column.
package sssom

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/graphmesh/meshalign/pkg/errors"
	"github.com/graphmesh/meshalign/pkg/logging"
	"github.com/graphmesh/meshalign/pkg/mapping"
)

// DefaultTool names this system in the mapping_tool column of exports.
const DefaultTool = "meshalign-fusion"

// Read parses SSSOM TSV rows into mappings attributed to the named
// matcher. Lines beginning with '#' are ignored. Rows without a
// subject or object are skipped; a missing predicate defaults to
// skos:closeMatch and a missing confidence to 1.0.
func Read(r io.Reader, matcher string) ([]mapping.Mapping, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewParseError("sssom", "", "reading header", err)
	}

	cols := columnIndex(header)
	subjectCol := cols.first("subject_id", "subject")
	objectCol := cols.first("object_id", "object")
	if subjectCol < 0 || objectCol < 0 {
		return nil, errors.NewParseError("sssom", "", "missing subject or object column", nil)
	}
	predicateCol := cols.first("predicate_id", "predicate")
	confidenceCol := cols.first("confidence", "similarity")
	justificationCol := cols.first("mapping_justification")

	var mappings []mapping.Mapping
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewParseError("sssom", "", fmt.Sprintf("reading row %d", line), err)
		}
		line++

		subject := field(record, subjectCol)
		object := field(record, objectCol)
		if subject == "" || object == "" {
			continue
		}

		predicate := field(record, predicateCol)
		if predicate == "" {
			predicate = mapping.DefaultPredicate
		}

		confidence := 1.0
		if raw := field(record, confidenceCol); raw != "" {
			confidence, err = strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, errors.NewParseError("sssom", "", fmt.Sprintf("row %d: invalid confidence %q", line, raw), err)
			}
		}

		mappings = append(mappings, mapping.Mapping{
			SubjectID:     subject,
			ObjectID:      object,
			PredicateID:   predicate,
			Confidence:    confidence,
			Matcher:       matcher,
			Justification: field(record, justificationCol),
		})
	}

	logging.Info().Str("matcher", matcher).Int("mappings", len(mappings)).Msg("Loaded mappings")
	return mappings, nil
}

// ReadFile reads an SSSOM TSV file attributed to the named matcher.
func ReadFile(path, matcher string) ([]mapping.Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer f.Close()

	mappings, err := Read(f, matcher)
	if err != nil {
		if pe, ok := err.(*errors.ParseError); ok {
			pe.File = path
		}
		return nil, err
	}
	return mappings, nil
}

// WriteOptions controls fused-set export.
type WriteOptions struct {
	// IncludeMetadata emits a commented header with the mapping count,
	// fusion method label, and run ID.
	IncludeMetadata bool

	// Tool fills the mapping_tool column; defaults to DefaultTool.
	Tool string

	// RunID identifies the fusion run in the metadata header.
	RunID string
}

// Write exports fused mappings as SSSOM TSV. The consensus confidence
// becomes the confidence column and the comment column records the
// support count and supporting matchers.
func Write(w io.Writer, fused []mapping.Fused, opts WriteOptions) error {
	tool := opts.Tool
	if tool == "" {
		tool = DefaultTool
	}

	if opts.IncludeMetadata {
		var header strings.Builder
		header.WriteString("# Fused mapping set from multiple ontology matchers\n")
		fmt.Fprintf(&header, "# Total mappings: %d\n", len(fused))
		header.WriteString("# Fusion method: ensemble consensus\n")
		if opts.RunID != "" {
			fmt.Fprintf(&header, "# Run ID: %s\n", opts.RunID)
		}
		header.WriteString("#\n")
		if _, err := io.WriteString(w, header.String()); err != nil {
			return err
		}
	}

	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	if err := cw.Write([]string{
		"subject_id", "predicate_id", "object_id", "confidence",
		"mapping_tool", "mapping_justification", "comment",
	}); err != nil {
		return err
	}

	for _, f := range fused {
		justification := f.Justification
		if justification == "" {
			justification = "ensemble_fusion"
		}
		comment := fmt.Sprintf("Support: %d matchers: %s",
			f.SupportCount(), strings.Join(f.SupportingMatchers, ", "))

		if err := cw.Write([]string{
			f.SubjectID,
			f.PredicateID,
			f.ObjectID,
			strconv.FormatFloat(f.ConsensusConfidence, 'f', -1, 64),
			tool,
			justification,
			comment,
		}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile exports fused mappings to a TSV file, creating parent
// directories as needed.
func WriteFile(path string, fused []mapping.Fused, opts WriteOptions) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WrapIO("create", filepath.Dir(path), err)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	defer f.Close()

	if err := Write(f, fused, opts); err != nil {
		return errors.WrapIO("write", path, err)
	}

	logging.Info().Str("path", path).Int("mappings", len(fused)).Msg("Exported fused mappings")
	return nil
}

// columns maps lower-cased header names to positions.
type columns map[string]int

func columnIndex(header []string) columns {
	cols := make(columns, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return cols
}

// first returns the position of the first present alias, or -1.
func (c columns) first(names ...string) int {
	for _, name := range names {
		if i, ok := c[name]; ok {
			return i
		}
	}
	return -1
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
