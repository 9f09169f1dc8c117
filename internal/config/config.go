package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultModel     = "pincell"
	DefaultEngine    = "sampler"
	DefaultInactive  = 10
	DefaultActive    = 40
	DefaultParticles = 10000
	DefaultPitch     = 1.26
)

// Config is the yaml run configuration for the mcell CLI.
type Config struct {
	Model             string  `yaml:"model"`
	Engine            string  `yaml:"engine"`
	Workers           int     `yaml:"workers"`
	InactiveBatches   int     `yaml:"inactive_batches"`
	ActiveBatches     int     `yaml:"active_batches"`
	ParticlesPerBatch int     `yaml:"particles_per_batch"`
	Seed              int64   `yaml:"seed"`
	Lattice           Lattice `yaml:"lattice"`
}

// Lattice holds parameters for the lattice model family.
type Lattice struct {
	Pitch float64 `yaml:"pitch"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:             DefaultModel,
		Engine:            DefaultEngine,
		InactiveBatches:   DefaultInactive,
		ActiveBatches:     DefaultActive,
		ParticlesPerBatch: DefaultParticles,
		Lattice:           Lattice{Pitch: DefaultPitch},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate catches configurations that cannot start a run.
func (c *Config) Validate() error {
	if c.Model == "" {
		return fmt.Errorf("config: model required")
	}
	if c.ParticlesPerBatch <= 0 {
		return fmt.Errorf("config: particles_per_batch must be positive, got %d", c.ParticlesPerBatch)
	}
	if c.InactiveBatches < 0 || c.ActiveBatches < 0 {
		return fmt.Errorf("config: batch counts must not be negative")
	}
	return nil
}
