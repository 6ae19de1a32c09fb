// Package automation runs scripted sequences of simulations from YAML.
package automation

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/rdsim/internal/config"
	"github.com/san-kum/rdsim/internal/experiment"
	"github.com/san-kum/rdsim/internal/export"
	"github.com/san-kum/rdsim/internal/sim"
	"github.com/san-kum/rdsim/internal/storage"
)

// Scenario is a named list of runs executed in order.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep overrides the base config for one run. Zero values keep
// the base setting.
type ScenarioStep struct {
	Name          string             `yaml:"name"`
	Preset        string             `yaml:"preset"`
	N             int                `yaml:"n"`
	StepsPerFrame int                `yaml:"steps_per_frame"`
	Frames        int                `yaml:"frames"`
	Params        map[string]float64 `yaml:"params"`
	Render        string             `yaml:"render"`
}

type StepResult struct {
	Name    string
	RunID   string
	Outcome *experiment.Outcome
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}
	return &scenario, nil
}

// Build resolves a step against base without mutating it.
func (s ScenarioStep) Build(base *config.Config) (*config.Config, error) {
	c := *base
	cfg := &c
	if s.Preset != "" {
		if err := cfg.ApplyPreset(s.Preset); err != nil {
			return nil, err
		}
	}
	if s.N != 0 {
		cfg.N = s.N
	}
	if s.StepsPerFrame != 0 {
		cfg.StepsPerFrame = s.StepsPerFrame
	}
	if s.Frames != 0 {
		cfg.Frames = s.Frames
	}
	if len(s.Params) > 0 {
		p := cfg.ReactionParams()
		for k, v := range s.Params {
			if err := p.SetParam(k, v); err != nil {
				return nil, err
			}
		}
		cfg.Params = config.ParamsConfig{Du: p.Du, Dv: p.Dv, F: p.F, K: p.K, Spacing: p.Spacing}
	}
	return cfg, cfg.Validate()
}

// RunScenario executes every step, stores each run and stops at the first
// failure.
func RunScenario(ctx context.Context, scenario *Scenario, base *config.Config, st *storage.Store, logger *log.Logger) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))
	registry := experiment.NewRegistry()

	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step-%d", i+1)
		}
		logger.Info("scenario step", "n", fmt.Sprintf("%d/%d", i+1, len(scenario.Steps)), "name", name)

		cfg, err := step.Build(base)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp := experiment.New(cfg)
		if err := exp.Setup(registry.DefaultMetrics()); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		var rec *recorder
		if step.Render != "" {
			opts := export.DefaultOptions()
			opts.FPS, opts.Scale, opts.Palette = cfg.Output.FPS, cfg.Output.Scale, cfg.Output.Palette
			enc, err := export.Create(cfg.Output.Format, step.Render, cfg.N, opts)
			if err != nil {
				return results, fmt.Errorf("step %d render: %w", i+1, err)
			}
			rec = &recorder{enc: enc}
			exp.Simulator().AddObserver(rec)
		}

		out, err := exp.Run(ctx)
		if rec != nil {
			if cerr := rec.enc.Close(); rec.err == nil {
				rec.err = cerr
			}
		}
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}
		if rec != nil && rec.err != nil {
			return results, fmt.Errorf("step %d render: %w", i+1, rec.err)
		}

		runID, err := st.Save(out.Metadata(cfg), out.Stats, out.Result.Last().Data)
		if err != nil {
			return results, fmt.Errorf("step %d save: %w", i+1, err)
		}
		results = append(results, StepResult{Name: name, RunID: runID, Outcome: out})
	}

	return results, nil
}

// recorder encodes frames as they are produced.
type recorder struct {
	enc export.Encoder
	err error
}

func (r *recorder) OnStep(int) {}

func (r *recorder) OnFrame(f *sim.Frame) {
	if r.err == nil {
		r.err = r.enc.Encode(f)
	}
}
