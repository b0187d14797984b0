// Package model implements TGenModel: resolving a tree position to a
// straight-line program, training feature counters against labeled
// samples, and scoring/predicting/evaluating labels from those counters.
//
// Grounded on original_source/phog/model/model.h/.cpp and evaluate.cpp.
package model

import (
	"io"

	yaml "github.com/itchyny/go-yaml"

	"github.com/tgenlab/tgen/feature"
)

// Metric is one of the three evaluation metrics (§4.I, §6.5).
type Metric int

const (
	Entropy Metric = iota
	ErrorRate
	Confidence50
)

// ParseMetric parses the §6.5 metric-selection strings.
func ParseMetric(s string) (Metric, bool) {
	switch s {
	case "entropy":
		return Entropy, true
	case "errorrate":
		return ErrorRate, true
	case "confidence50":
		return Confidence50, true
	default:
		return 0, false
	}
}

// Config is the model's immutable process configuration, read once at
// construction instead of kept as module-level mutable flags (§9 "Global
// configuration flags"). Grounded on schemaexec's SchemaExecOptions shape
// (SPEC_FULL.md §10.3).
type Config struct {
	Smoothing       feature.Mode
	KneserNeyDelta  *float64
	BeamSize        int
	EnableTEq       bool
	DefaultMetric   Metric
	NumTrainingASTs int
	NumEvalASTs     int
	MaxTreeSize     int
}

// DefaultConfig returns the §6.3/§6.4 documented defaults.
func DefaultConfig() Config {
	return Config{
		Smoothing:       feature.WittenBell,
		BeamSize:        4,
		EnableTEq:       true,
		DefaultMetric:   Entropy,
		NumTrainingASTs: 100000,
		NumEvalASTs:     50000,
		MaxTreeSize:     30000,
	}
}

// configOverride mirrors Config's YAML-overridable fields; zero/absent
// fields in the document leave base unchanged. Smoothing and DefaultMetric
// are read as the §6.3/§6.5 selector strings, not as the underlying enums.
type configOverride struct {
	Smoothing       *string  `yaml:"smoothing"`
	KneserNeyDelta  *float64 `yaml:"kneser_ney_delta"`
	BeamSize        *int     `yaml:"beam_size"`
	EnableTEq       *bool    `yaml:"enable_teq"`
	DefaultMetric   *string  `yaml:"default_metric"`
	NumTrainingASTs *int     `yaml:"num_training_asts"`
	NumEvalASTs     *int     `yaml:"num_eval_asts"`
	MaxTreeSize     *int     `yaml:"max_tree_size"`
}

// LoadConfigOverride reads an optional YAML config file (§10.3) and applies
// any fields it sets on top of base, leaving base's fields untouched where
// the document is silent. cmd/tgen-eval layers command-line flags on top of
// this result, so flags always win over the file.
func LoadConfigOverride(r io.Reader, base Config) (Config, error) {
	var ov configOverride
	if err := yaml.NewDecoder(r).Decode(&ov); err != nil {
		if err == io.EOF {
			return base, nil
		}
		return Config{}, err
	}

	cfg := base
	if ov.Smoothing != nil {
		switch *ov.Smoothing {
		case "wittenbell":
			cfg.Smoothing = feature.WittenBell
		case "kneserney":
			cfg.Smoothing = feature.KneserNey
		case "laplace":
			cfg.Smoothing = feature.Laplace
		}
	}
	if ov.KneserNeyDelta != nil {
		cfg.KneserNeyDelta = ov.KneserNeyDelta
	}
	if ov.BeamSize != nil {
		cfg.BeamSize = *ov.BeamSize
	}
	if ov.EnableTEq != nil {
		cfg.EnableTEq = *ov.EnableTEq
	}
	if ov.DefaultMetric != nil {
		if m, ok := ParseMetric(*ov.DefaultMetric); ok {
			cfg.DefaultMetric = m
		}
	}
	if ov.NumTrainingASTs != nil {
		cfg.NumTrainingASTs = *ov.NumTrainingASTs
	}
	if ov.NumEvalASTs != nil {
		cfg.NumEvalASTs = *ov.NumEvalASTs
	}
	if ov.MaxTreeSize != nil {
		cfg.MaxTreeSize = *ov.MaxTreeSize
	}
	return cfg, nil
}
