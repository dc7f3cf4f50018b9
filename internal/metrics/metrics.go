// Package metrics exposes Prometheus counters for lineage searches.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the search metrics on a private registry.
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	SearchCalls      prometheus.Counter
	TreesEnumerated  prometheus.Counter
	TreesRejected    prometheus.Counter
	SearchTruncated  prometheus.Counter
	RepairIterations prometheus.Counter
	BestTreeError    prometheus.Histogram
}

// NewCollector creates and registers the metrics under namespace
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		SearchCalls: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_calls_total",
			Help:      "Recursive grow steps performed by the tree enumerator",
		}),
		TreesEnumerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trees_enumerated_total",
			Help:      "Spanning trees produced by the enumerator",
		}),
		TreesRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trees_rejected_total",
			Help:      "Spanning trees rejected by the AAF-sum constraint",
		}),
		SearchTruncated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_truncated_total",
			Help:      "Searches stopped by the tree or call budget",
		}),
		RepairIterations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "repair_iterations_total",
			Help:      "Network rebuilds after removing a non-robust group",
		}),
		BestTreeError: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "best_tree_error",
			Help:      "Error score of the best tree of each run",
			Buckets:   []float64{0, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5, 1},
		}),
	}

	registry.MustRegister(
		c.SearchCalls,
		c.TreesEnumerated,
		c.TreesRejected,
		c.SearchTruncated,
		c.RepairIterations,
		c.BestTreeError,
	)
	return c
}

// Registry returns the registry the metrics are registered on
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// ObserveSearch records one enumeration
func (c *Collector) ObserveSearch(calls, trees, rejected int, truncated bool) {
	if c == nil {
		return
	}
	c.SearchCalls.Add(float64(calls))
	c.TreesEnumerated.Add(float64(trees))
	c.TreesRejected.Add(float64(rejected))
	if truncated {
		c.SearchTruncated.Inc()
	}
}

// ObserveRepair records one network rebuild
func (c *Collector) ObserveRepair() {
	if c == nil {
		return
	}
	c.RepairIterations.Inc()
}

// ObserveBest records the best tree's error score
func (c *Collector) ObserveBest(score float64) {
	if c == nil {
		return
	}
	c.BestTreeError.Observe(score)
}

// Snapshot returns counter values and histogram sums/counts keyed by metric name
func (c *Collector) Snapshot() (map[string]float64, error) {
	out := make(map[string]float64)
	if c == nil {
		return out, nil
	}
	families, err := c.registry.Gather()
	if err != nil {
		return nil, err
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				out[mf.GetName()] += m.GetCounter().GetValue()
			case m.GetHistogram() != nil:
				out[mf.GetName()+"_sum"] += m.GetHistogram().GetSampleSum()
				out[mf.GetName()+"_count"] += float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return out, nil
}
