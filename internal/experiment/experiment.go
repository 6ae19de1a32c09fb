package experiment

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/rdsim/internal/analysis"
	"github.com/san-kum/rdsim/internal/config"
	"github.com/san-kum/rdsim/internal/sim"
	"github.com/san-kum/rdsim/internal/storage"
)

// Outcome is everything a finished run produces that is worth keeping.
type Outcome struct {
	Result     *sim.Result
	Stats      []analysis.FrameStats
	Wavelength float64
	Elapsed    time.Duration
}

// Experiment binds one config to one simulator.
type Experiment struct {
	cfg       *config.Config
	simulator *sim.Simulator
	stats     *statsRecorder
	keep      bool
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg}
}

// KeepFrames retains every frame in the result. Off by default so sweeps
// and long runs only hold statistics.
func (e *Experiment) KeepFrames(keep bool) *Experiment {
	e.keep = keep
	return e
}

func (e *Experiment) Setup(metrics []sim.Metric, observers ...sim.Observer) error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	s, err := sim.NewSeeded(e.cfg.N, e.cfg.ReactionParams(), e.cfg.SimConfig())
	if err != nil {
		return err
	}
	for _, m := range metrics {
		s.AddMetric(m)
	}
	e.stats = &statsRecorder{}
	s.AddObserver(e.stats)
	for _, o := range observers {
		s.AddObserver(o)
	}
	e.simulator = s
	return nil
}

// Run drives the simulator to the end. Frames other than the last are
// dropped unless KeepFrames was set.
func (e *Experiment) Run(ctx context.Context) (*Outcome, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	start := time.Now()
	res := &sim.Result{Metrics: map[string]float64{}}
	var last *sim.Frame
	err := e.simulator.RunWithCallback(ctx, func(f *sim.Frame) bool {
		last = f
		if e.keep {
			res.Frames = append(res.Frames, f)
		}
		return true
	})
	res.Steps = e.simulator.Steps()
	out := &Outcome{Result: res, Stats: e.stats.stats, Elapsed: time.Since(start)}
	if err != nil {
		return out, err
	}

	if !e.keep && last != nil {
		res.Frames = append(res.Frames, last)
	}
	for name, v := range e.simulator.MetricValues() {
		res.Metrics[name] = v
	}
	if last != nil {
		wl, _, err := analysis.DominantWavelength(last.Data)
		if err != nil {
			return out, err
		}
		out.Wavelength = wl
	}
	return out, nil
}

func (e *Experiment) Simulator() *sim.Simulator {
	return e.simulator
}

func (e *Experiment) Config() *config.Config {
	return e.cfg
}

type statsRecorder struct {
	stats []analysis.FrameStats
}

func (r *statsRecorder) OnStep(int) {}

func (r *statsRecorder) OnFrame(f *sim.Frame) {
	r.stats = append(r.stats, analysis.Summarize(f))
}

// Metadata describes the finished run for the run catalog.
func (o *Outcome) Metadata(cfg *config.Config) storage.RunMetadata {
	return storage.RunMetadata{
		Preset:        cfg.Preset,
		N:             cfg.N,
		Du:            cfg.Params.Du,
		Dv:            cfg.Params.Dv,
		F:             cfg.Params.F,
		K:             cfg.Params.K,
		Spacing:       cfg.Params.Spacing,
		StepsPerFrame: cfg.StepsPerFrame,
		Frames:        cfg.Frames,
		Steps:         o.Result.Steps,
		Workers:       cfg.Workers,
		Elapsed:       o.Elapsed,
		Wavelength:    o.Wavelength,
		Metrics:       o.Result.Metrics,
	}
}
