package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/rdsim/internal/metrics"
	"github.com/san-kum/rdsim/internal/sim"
)

// Registry maps metric names to constructors so the CLI can pick them by flag.
type Registry struct {
	metrics map[string]func() sim.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		metrics: make(map[string]func() sim.Metric),
	}

	r.metrics["mean_v"] = func() sim.Metric { return metrics.NewMeanV() }
	r.metrics["coverage"] = func() sim.Metric { return metrics.NewCoverage(metrics.DefaultCoverageThreshold) }
	r.metrics["contrast"] = func() sim.Metric { return metrics.NewContrast() }
	r.metrics["finite"] = func() sim.Metric { return metrics.NewFinite() }

	return r
}

func (r *Registry) GetMetric(name string) (sim.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListMetrics() []string {
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics returns a fresh instance of every registered metric.
func (r *Registry) DefaultMetrics() []sim.Metric {
	out := make([]sim.Metric, 0, len(r.metrics))
	for _, name := range r.ListMetrics() {
		out = append(out, r.metrics[name]())
	}
	return out
}
