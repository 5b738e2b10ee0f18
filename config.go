package grantlens

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/poiesic/grantlens/ai"
	"github.com/poiesic/grantlens/classify"
	"github.com/poiesic/grantlens/similarity"
	"github.com/poiesic/grantlens/taxonomy"
	"github.com/poiesic/grantlens/textproc"
)

// Config is the full analysis configuration document. The taxonomy and
// all tuning knobs live in one YAML file so non-engineers can edit them
// without touching code. Omitted sections keep their defaults.
type Config struct {
	Taxonomy   taxonomy.Spec         `yaml:"taxonomy"`
	Processing textproc.Config       `yaml:"processing"`
	Thresholds similarity.Thresholds `yaml:"similarity_thresholds"`
	Weights    classify.Weights      `yaml:"confidence_weights"`
	AI         *ai.Config            `yaml:"ai"`
}

// DefaultConfig returns a configuration with every tunable at its
// default. The taxonomy is empty and must come from the config file.
func DefaultConfig() *Config {
	return &Config{
		Processing: textproc.DefaultConfig(),
		Thresholds: similarity.DefaultThresholds(),
		Weights:    classify.DefaultWeights(),
		AI:         ai.DefaultConfig(),
	}
}

// ParseConfig parses a YAML configuration document. Fields absent from
// the document keep their defaults.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig reads and parses a YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data)
}

// Validate checks the tuning sections. The taxonomy itself is validated
// when it is compiled by taxonomy.New.
func (c *Config) Validate() error {
	if err := c.Processing.Validate(); err != nil {
		return err
	}
	if err := c.Thresholds.Validate(); err != nil {
		return err
	}
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	if c.AI != nil {
		c.AI.Normalize()
		if err := c.AI.Validate(); err != nil {
			return err
		}
	}
	return nil
}
