package util

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PipelineConfig holds the tunable pieces of the pipeline. Anything that
// changes the feature schema (expressions, extra features) lives here so a
// config change shows up as a schema hash change and invalidates stale
// artifacts.
type PipelineConfig struct {
	Features FeaturesConfig `yaml:"features"`
	Trainer  TrainerConfig  `yaml:"trainer"`
}

type FeaturesConfig struct {
	FormWindow int `yaml:"formWindow"`
	// Expressions are extra features evaluated with goval against the form
	// metric functions, e.g. "winRate(5) * 0.6 + winRate(20) * 0.4".
	Expressions map[string]string `yaml:"expressions"`
	// Priors are the sentinel values used when a runner has no history.
	Priors PriorsConfig `yaml:"priors"`
}

type PriorsConfig struct {
	WinRate     float64 `yaml:"winRate"`
	PlaceRate   float64 `yaml:"placeRate"`
	FinishPos   float64 `yaml:"finishPos"`
	SpeedRating float64 `yaml:"speedRating"`
}

type TrainerConfig struct {
	MinSettledRaces int     `yaml:"minSettledRaces"`
	Steps           int     `yaml:"steps"`
	LearningRate    float64 `yaml:"learningRate"`
}

func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Features: FeaturesConfig{
			FormWindow:  10,
			Expressions: map[string]string{},
			Priors: PriorsConfig{
				WinRate:     0.08,
				PlaceRate:   0.25,
				FinishPos:   5.5,
				SpeedRating: 50,
			},
		},
		Trainer: TrainerConfig{
			MinSettledRaces: 25,
			Steps:           800,
			LearningRate:    0.05,
		},
	}
}

func LoadPipelineConfig(path string) (PipelineConfig, error) {
	cfg := DefaultPipelineConfig()
	f, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("could not open %s: %w", path, err)
	}

	err = yaml.Unmarshal(f, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return cfg, nil
}
