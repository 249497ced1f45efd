// Package study describes one clinical study deployment: its feature
// registry, risk thresholds, adverse-outcome label, reported model quality
// and the reference cases shown alongside the form.
package study

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"prognosis/internal/prediction"
	"prognosis/internal/schema"
)

// Study is the YAML-decoded study definition.
type Study struct {
	Name         string        `yaml:"name"`
	Version      string        `yaml:"version"`
	Outcome      string        `yaml:"outcome"`
	AdverseLabel string        `yaml:"adverse_label"`
	Thresholds   Thresholds    `yaml:"thresholds"`
	Features     []Feature     `yaml:"features"`
	Metrics      []Metric      `yaml:"metrics"`
	Cases        []TypicalCase `yaml:"cases"`
	Disclaimer   string        `yaml:"disclaimer"`
}

// Thresholds are the tier bounds in percent.
type Thresholds struct {
	LowMax      float64 `yaml:"low_max"`
	ModerateMax float64 `yaml:"moderate_max"`
}

// Feature is the YAML form of schema.FeatureSpec.
type Feature struct {
	Name        string   `yaml:"name"`
	Kind        string   `yaml:"kind"`
	Min         float64  `yaml:"min"`
	Max         float64  `yaml:"max"`
	Step        float64  `yaml:"step"`
	Default     float64  `yaml:"default"`
	Options     []Option `yaml:"options"`
	Unit        string   `yaml:"unit"`
	Description string   `yaml:"description"`
}

type Option struct {
	Value float64 `yaml:"value"`
	Label string  `yaml:"label"`
}

// Metric is a reported test-set quality figure, display only.
type Metric struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// TypicalCase is a reference patient. Inputs omitted here take the registry
// defaults when the case is evaluated.
type TypicalCase struct {
	Name   string             `yaml:"name"`
	Inputs map[string]float64 `yaml:"inputs"`
	// Reported is the survival figure published with the study, display only.
	Reported string `yaml:"reported"`
}

// Load reads a study definition from a YAML file and validates it.
func Load(path string) (*Study, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read study %s: %w", path, err)
	}
	var s Study
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal study %s: %w", path, err)
	}
	if s.Thresholds == (Thresholds{}) {
		d := prediction.DefaultThresholds()
		s.Thresholds = Thresholds{LowMax: d.LowMax, ModerateMax: d.ModerateMax}
	}
	if _, err := s.Registry(); err != nil {
		return nil, fmt.Errorf("study %s: %w", path, err)
	}
	if err := s.RiskThresholds().Validate(); err != nil {
		return nil, fmt.Errorf("study %s: %w", path, err)
	}
	return &s, nil
}

// Registry builds the feature registry in the study's declaration order.
func (s *Study) Registry() (*schema.Registry, error) {
	if len(s.Features) == 0 {
		return nil, errors.New("study declares no features")
	}
	specs := make([]schema.FeatureSpec, len(s.Features))
	for i, f := range s.Features {
		opts := make([]schema.Option, len(f.Options))
		for j, o := range f.Options {
			opts[j] = schema.Option{Value: o.Value, Label: o.Label}
		}
		specs[i] = schema.FeatureSpec{
			Name:        f.Name,
			Kind:        schema.Kind(f.Kind),
			Min:         f.Min,
			Max:         f.Max,
			Step:        f.Step,
			Default:     f.Default,
			Options:     opts,
			Unit:        f.Unit,
			Description: f.Description,
		}
	}
	return schema.NewRegistry(specs...)
}

// RiskThresholds converts the study bounds for the prediction invoker.
func (s *Study) RiskThresholds() prediction.Thresholds {
	return prediction.Thresholds{LowMax: s.Thresholds.LowMax, ModerateMax: s.Thresholds.ModerateMax}
}
