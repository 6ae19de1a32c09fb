package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/rdsim/internal/dynamo"
	"github.com/san-kum/rdsim/internal/reaction"
	"github.com/san-kum/rdsim/internal/sim"
)

const (
	DefaultN             = 300
	DefaultStepsPerFrame = 40
	DefaultFrames        = 500
	DefaultFPS           = 60
	DefaultScale         = 2
	DefaultFormat        = "gif"
	DefaultDataDir       = ".rdsim"
)

type Config struct {
	Preset        string       `yaml:"preset,omitempty"`
	N             int          `yaml:"n"`
	StepsPerFrame int          `yaml:"steps_per_frame"`
	Frames        int          `yaml:"frames"`
	Workers       int          `yaml:"workers"`
	ValidateState bool         `yaml:"validate_state"`
	Params        ParamsConfig `yaml:"params"`
	Output        OutputConfig `yaml:"output"`
}

type ParamsConfig struct {
	Du      float64 `yaml:"du"`
	Dv      float64 `yaml:"dv"`
	F       float64 `yaml:"f"`
	K       float64 `yaml:"k"`
	Spacing float64 `yaml:"spacing,omitempty"`
}

type OutputConfig struct {
	Dir     string `yaml:"dir"`
	Format  string `yaml:"format"`
	FPS     int    `yaml:"fps"`
	Scale   int    `yaml:"scale"`
	Palette string `yaml:"palette"`
}

func DefaultConfig() *Config {
	p := reaction.DefaultParams()
	return &Config{
		Preset:        "default",
		N:             DefaultN,
		StepsPerFrame: DefaultStepsPerFrame,
		Frames:        DefaultFrames,
		Workers:       1,
		Params: ParamsConfig{
			Du: p.Du,
			Dv: p.Dv,
			F:  p.F,
			K:  p.K,
		},
		Output: OutputConfig{
			Dir:     DefaultDataDir,
			Format:  DefaultFormat,
			FPS:     DefaultFPS,
			Scale:   DefaultScale,
			Palette: "gray",
		},
	}
}

// Load reads a YAML file on top of base. A nil base starts from DefaultConfig.
func Load(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if base != nil {
		c := *base
		cfg = &c
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
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

func (c *Config) ReactionParams() reaction.Params {
	return reaction.Params{
		Du:      c.Params.Du,
		Dv:      c.Params.Dv,
		F:       c.Params.F,
		K:       c.Params.K,
		Spacing: c.Params.Spacing,
	}
}

func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		StepsPerFrame: c.StepsPerFrame,
		Frames:        c.Frames,
		Workers:       c.Workers,
		ValidateState: c.ValidateState,
	}
}

// ApplyPreset overwrites the reaction rates with the named preset's.
func (c *Config) ApplyPreset(name string) error {
	p, ok := Presets[name]
	if !ok {
		return dynamo.Invalid("unknown preset %q", name)
	}
	c.Preset = name
	c.Params.F = p.F
	c.Params.K = p.K
	c.Params.Du = p.Du
	c.Params.Dv = p.Dv
	return nil
}

func (c *Config) Validate() error {
	if c.N < 1 {
		return dynamo.Invalid("grid size must be >= 1, got %d", c.N)
	}
	if err := c.ReactionParams().Validate(); err != nil {
		return err
	}
	if err := c.SimConfig().Validate(); err != nil {
		return err
	}
	if c.Output.FPS < 1 {
		return dynamo.Invalid("fps must be >= 1, got %d", c.Output.FPS)
	}
	if c.Output.Scale < 1 {
		return dynamo.Invalid("scale must be >= 1, got %d", c.Output.Scale)
	}
	return nil
}
