// Package ensemble describes the set of matchers participating in a
// fusion run. The descriptor is supplied by the caller (or loaded from
// YAML) rather than kept as a package-level default, so the ensemble
// size and matcher weights are always explicit inputs.
package ensemble

import (
	"os"

	"github.com/goccy/go-yaml"

	"github.com/graphmesh/meshalign/pkg/errors"
)

// Matcher describes one matching engine in the ensemble.
type Matcher struct {
	// Name must match the matcher attribution on its mapping records.
	Name string `yaml:"name" json:"name"`

	// Weight is an optional relative trust weight for weighted voting.
	Weight float64 `yaml:"weight,omitempty" json:"weight,omitempty"`

	// Notes is free-form operator documentation.
	Notes string `yaml:"notes,omitempty" json:"notes,omitempty"`
}

// Ensemble is an ordered list of matchers.
type Ensemble struct {
	Matchers []Matcher `yaml:"matchers" json:"matchers"`
}

// New builds an ensemble from matcher names.
func New(names ...string) *Ensemble {
	e := &Ensemble{Matchers: make([]Matcher, 0, len(names))}
	for _, name := range names {
		e.Matchers = append(e.Matchers, Matcher{Name: name})
	}
	return e
}

// Load reads an ensemble descriptor from a YAML file.
func Load(path string) (*Ensemble, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}

	var e Ensemble
	if err := yaml.Unmarshal(data, &e); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return &e, nil
}

// Validate checks that the ensemble has at least one matcher, that
// names are non-empty and distinct, and that weights are not negative.
func (e *Ensemble) Validate() error {
	if len(e.Matchers) == 0 {
		return errors.ErrEmptyEnsemble
	}

	seen := make(map[string]struct{}, len(e.Matchers))
	for _, m := range e.Matchers {
		if m.Name == "" {
			return errors.NewValidationError("name", m.Name, "matcher name must not be empty")
		}
		if _, ok := seen[m.Name]; ok {
			return errors.NewValidationError("name", m.Name, "duplicate matcher name")
		}
		seen[m.Name] = struct{}{}
		if m.Weight < 0 {
			return errors.NewValidationError("weight", m.Weight, "matcher weight must not be negative")
		}
	}
	return nil
}

// Size returns the number of matchers in the ensemble. This is the
// total_matchers context for voting and may exceed the number of
// matchers that produced records for any given key.
func (e *Ensemble) Size() int {
	return len(e.Matchers)
}

// Names returns the matcher names in descriptor order.
func (e *Ensemble) Names() []string {
	names := make([]string, 0, len(e.Matchers))
	for _, m := range e.Matchers {
		names = append(names, m.Name)
	}
	return names
}

// Weights returns the explicitly configured matcher weights, or nil
// when no matcher carries one.
func (e *Ensemble) Weights() map[string]float64 {
	weights := make(map[string]float64)
	for _, m := range e.Matchers {
		if m.Weight > 0 {
			weights[m.Name] = m.Weight
		}
	}
	if len(weights) == 0 {
		return nil
	}
	return weights
}
