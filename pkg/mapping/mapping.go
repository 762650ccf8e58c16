// Package mapping defines the correspondence model shared by every
// meshalign component: the raw per-matcher Mapping and the Fused
// consensus record produced by ensemble fusion.
package mapping

import "sort"

// DefaultPredicate is assumed when an upstream matcher omits the
// relation between subject and object.
const DefaultPredicate = "skos:closeMatch"

// Key identifies a logical correspondence. Two mappings with the same
// key are claims about the same subject/object/predicate triple,
// regardless of which matcher produced them.
type Key struct {
	SubjectID   string
	ObjectID    string
	PredicateID string
}

// String renders the key in subject predicate object order.
func (k Key) String() string {
	return k.SubjectID + " " + k.PredicateID + " " + k.ObjectID
}

// Mapping is a single matcher's claim that two entities correspond.
// Instances are immutable once parsed and are discarded after fusion.
type Mapping struct {
	SubjectID     string  `json:"subject_id" yaml:"subject_id"`
	ObjectID      string  `json:"object_id" yaml:"object_id"`
	PredicateID   string  `json:"predicate_id" yaml:"predicate_id"`
	Confidence    float64 `json:"confidence" yaml:"confidence"`
	Matcher       string  `json:"matcher" yaml:"matcher"`
	Justification string  `json:"mapping_justification,omitempty" yaml:"mapping_justification,omitempty"`
}

// Key returns the identity key for this mapping.
func (m Mapping) Key() Key {
	return Key{SubjectID: m.SubjectID, ObjectID: m.ObjectID, PredicateID: m.PredicateID}
}

// Fused is the consensus view of one identity key, aggregated from
// every matcher that claimed it. Fused values are created once by the
// fusion engine and never mutated afterwards.
type Fused struct {
	SubjectID   string `json:"subject_id" yaml:"subject_id"`
	ObjectID    string `json:"object_id" yaml:"object_id"`
	PredicateID string `json:"predicate_id" yaml:"predicate_id"`

	// Confidences maps each supporting matcher to the confidence it
	// reported, after duplicate-claim collapsing.
	Confidences map[string]float64 `json:"confidences" yaml:"confidences"`

	// SupportingMatchers lists the distinct matchers backing this
	// correspondence, in the order they were first encountered.
	SupportingMatchers []string `json:"supporting_matchers" yaml:"supporting_matchers"`

	// ConsensusConfidence is the arithmetic mean of Confidences.
	ConsensusConfidence float64 `json:"consensus_confidence" yaml:"consensus_confidence"`

	// Justification joins the distinct non-empty justifications
	// supplied by contributing mappings; empty when none were given.
	Justification string `json:"mapping_justification,omitempty" yaml:"mapping_justification,omitempty"`
}

// Key returns the identity key for this fused correspondence.
func (f Fused) Key() Key {
	return Key{SubjectID: f.SubjectID, ObjectID: f.ObjectID, PredicateID: f.PredicateID}
}

// SupportCount is the number of distinct matchers backing this
// correspondence. It always equals len(Confidences) and
// len(SupportingMatchers).
func (f Fused) SupportCount() int {
	return len(f.SupportingMatchers)
}

// Supports reports whether the named matcher backs this correspondence.
func (f Fused) Supports(matcher string) bool {
	_, ok := f.Confidences[matcher]
	return ok
}

// KeySet collects the identity keys of a fused set.
func KeySet(fused []Fused) map[Key]struct{} {
	keys := make(map[Key]struct{}, len(fused))
	for _, f := range fused {
		keys[f.Key()] = struct{}{}
	}
	return keys
}

// Matchers returns the sorted distinct matcher names appearing in any
// SupportingMatchers list across the fused set.
func Matchers(fused []Fused) []string {
	seen := make(map[string]struct{})
	for _, f := range fused {
		for _, m := range f.SupportingMatchers {
			seen[m] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for m := range seen {
		names = append(names, m)
	}
	sort.Strings(names)
	return names
}
