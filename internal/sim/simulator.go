package sim

import (
	"context"
	"fmt"
	"iter"

	"github.com/san-kum/rdsim/internal/dynamo"
	"github.com/san-kum/rdsim/internal/grid"
	"github.com/san-kum/rdsim/internal/reaction"
)

// Simulator drives one Gray-Scott run. The fields are mutated in place, so
// a Simulator yields its frames once; start over from reaction.Init to
// replay.
type Simulator struct {
	u, v      *grid.Field
	stepper   *reaction.GrayScott
	cfg       Config
	metrics   []Metric
	observers []Observer
	consumed  bool
	steps     int
}

// New checks every precondition before anything is stepped.
func New(u, v *grid.Field, p reaction.Params, cfg Config) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if u == nil || v == nil {
		return nil, dynamo.Invalid("U and V fields are required")
	}
	if !grid.SameShape(u, v) {
		return nil, fmt.Errorf("%w: U is %d, V is %d", dynamo.ErrDimensionMismatch, u.N(), v.N())
	}
	stepper, err := reaction.New(p)
	if err != nil {
		return nil, err
	}
	stepper.WithWorkers(cfg.Workers)

	return &Simulator{
		u:         u,
		v:         v,
		stepper:   stepper,
		cfg:       cfg,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}, nil
}

// NewSeeded allocates seeded fields of resolution n and wraps them.
func NewSeeded(n int, p reaction.Params, cfg Config) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	u, v, err := reaction.Init(n)
	if err != nil {
		return nil, err
	}
	return New(u, v, p, cfg)
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Steps returns how many Step calls have run so far.
func (s *Simulator) Steps() int { return s.steps }

func (s *Simulator) Config() Config { return s.cfg }

func (s *Simulator) Params() reaction.Params { return s.stepper.Params() }

// Fields exposes the live U and V grids. They keep changing while frames are drawn.
func (s *Simulator) Fields() (u, v *grid.Field) { return s.u, s.v }

// Frames returns the run as a lazy sequence. Each frame is produced after
// StepsPerFrame rounds of (synchronize, step). Iterating a second time
// yields a single ErrConsumed. Breaking out early ends the run; the
// remaining frames are never computed.
func (s *Simulator) Frames(ctx context.Context) iter.Seq2[*Frame, error] {
	return func(yield func(*Frame, error) bool) {
		if s.consumed {
			yield(nil, dynamo.ErrConsumed)
			return
		}
		s.consumed = true

		for _, m := range s.metrics {
			m.Reset()
		}

		for fi := 0; fi < s.cfg.Frames; fi++ {
			for k := 0; k < s.cfg.StepsPerFrame; k++ {
				select {
				case <-ctx.Done():
					yield(nil, &SimError{Step: s.steps, Frame: fi, Wrapped: fmt.Errorf("%w: %w", dynamo.ErrContextCanceled, ctx.Err())})
					return
				default:
				}

				if err := s.stepper.Advance(s.u, s.v); err != nil {
					yield(nil, &SimError{Step: s.steps, Frame: fi, Wrapped: err})
					return
				}
				s.steps++
				for _, obs := range s.observers {
					obs.OnStep(s.steps)
				}
			}

			frame := &Frame{Index: fi, Step: s.steps, Data: s.v.Interior()}
			if s.cfg.ValidateState && !frame.IsFinite() {
				yield(nil, &SimError{Step: s.steps, Frame: fi, Wrapped: dynamo.ErrUnstable})
				return
			}

			for _, m := range s.metrics {
				m.Observe(frame)
			}
			for _, obs := range s.observers {
				obs.OnFrame(frame)
			}

			if !yield(frame, nil) {
				return
			}
		}
	}
}

// Run drains the whole sequence. On error the frames produced so far are
// returned alongside it.
func (s *Simulator) Run(ctx context.Context) (*Result, error) {
	result := &Result{
		Frames:  make([]*Frame, 0, s.cfg.Frames),
		Metrics: make(map[string]float64),
	}

	for frame, err := range s.Frames(ctx) {
		if err != nil {
			result.Steps = s.steps
			return result, err
		}
		result.Frames = append(result.Frames, frame)
	}

	result.Steps = s.steps
	result.Metrics = s.MetricValues()
	return result, nil
}

// RunWithCallback streams frames to fn until it returns false or the run ends.
func (s *Simulator) RunWithCallback(ctx context.Context, fn func(*Frame) bool) error {
	for frame, err := range s.Frames(ctx) {
		if err != nil {
			return err
		}
		if !fn(frame) {
			return nil
		}
	}
	return nil
}

// SimError is dynamo.SimulationError under the driver's name.
type SimError = dynamo.SimulationError

// MetricValues reads every attached metric.
func (s *Simulator) MetricValues() map[string]float64 {
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}
