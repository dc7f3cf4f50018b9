package lineage

import (
	"go.uber.org/zap"

	"lichee/lineage/internal/metrics"
)

// Search is the outcome of enumerating and ranking the trees of one network
type Search struct {
	Trees    []*Tree
	Stats    SearchStats
	Rejected int
}

// Result is the outcome of a full run, including network repairs
type Result struct {
	Network    *Network
	Trees      []*Tree
	Removed    []*SNVGroup // groups dropped by repair, in removal order
	Iterations int
	Enumerated int
	Rejected   int
	Calls      int
	Truncated  bool
}

// Best returns the lowest-error tree, or nil
func (r *Result) Best() *Tree {
	if len(r.Trees) == 0 {
		return nil
	}
	return r.Trees[0]
}

// Pipeline wires builder, enumerator and ranker together
type Pipeline struct {
	cfg     Config
	builder *Builder
	ranker  *Ranker
	logger  *zap.Logger
	metrics *metrics.Collector
}

// NewPipeline creates a pipeline. logger and collector may be nil.
func NewPipeline(cfg Config, logger *zap.Logger, collector *metrics.Collector) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		cfg:     cfg,
		builder: NewBuilder(cfg, logger),
		ranker:  NewRanker(cfg),
		logger:  logger,
		metrics: collector,
	}
}

// WithSampleNames returns a pipeline whose networks label leaves by name
func (p *Pipeline) WithSampleNames(names []string) *Pipeline {
	np := *p
	np.builder = p.builder.WithSampleNames(names)
	return &np
}

// Builder returns the pipeline's network builder
func (p *Pipeline) Builder() *Builder { return p.builder }

// BuildNetwork builds the constraint network for groups
func (p *Pipeline) BuildNetwork(groups []*SNVGroup, numSamples int) (*Network, error) {
	return p.builder.Build(groups, numSamples)
}

// LineageTrees enumerates the spanning trees of net, keeps those satisfying the
// AAF-sum constraint and returns them best first.
func (p *Pipeline) LineageTrees(net *Network) *Search {
	var kept []*Tree
	rejected := 0
	stats := NewEnumerator(net, p.cfg).Enumerate(func(t *Tree) bool {
		if p.ranker.Admit(t) {
			kept = append(kept, t)
		} else {
			rejected++
		}
		return true
	})
	p.ranker.Sort(kept)

	p.metrics.ObserveSearch(stats.Calls, stats.Trees, rejected, stats.Truncated)
	fields := []zap.Field{
		zap.Int("enumerated", stats.Trees),
		zap.Int("admitted", len(kept)),
		zap.Int("calls", stats.Calls),
	}
	if stats.Truncated {
		p.logger.Warn("tree search truncated by budget", append(fields,
			zap.Int("max_trees", p.cfg.MaxTrees),
			zap.Int("max_search_calls", p.cfg.MaxSearchCalls))...)
	} else {
		p.logger.Debug("tree search finished", fields...)
	}
	return &Search{Trees: kept, Stats: stats, Rejected: rejected}
}

// FixNetwork removes the least-supported non-robust group and rebuilds
func (p *Pipeline) FixNetwork(net *Network) (*Network, *SNVGroup, error) {
	return p.builder.Fix(net)
}

// Run builds the network and searches it, repairing the network while no
// tree satisfies the constraints. An empty Trees list with a nil error means
// no consistent lineage exists for the remaining groups.
func (p *Pipeline) Run(groups []*SNVGroup, numSamples int) (*Result, error) {
	net, err := p.builder.Build(groups, numSamples)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	for {
		search := p.LineageTrees(net)
		res.Enumerated += search.Stats.Trees
		res.Rejected += search.Rejected
		res.Calls += search.Stats.Calls
		res.Truncated = res.Truncated || search.Stats.Truncated
		res.Network = net
		res.Trees = search.Trees
		if len(search.Trees) > 0 {
			break
		}
		if p.cfg.MaxRepairIterations > 0 && res.Iterations >= p.cfg.MaxRepairIterations {
			break
		}

		fixed, removed, err := p.builder.Fix(net)
		if err != nil {
			return nil, err
		}
		if removed == nil || fixed.NumNodes() >= net.NumNodes() {
			break
		}
		res.Iterations++
		res.Removed = append(res.Removed, removed)
		p.metrics.ObserveRepair()
		net = fixed
	}

	if best := res.Best(); best != nil {
		p.metrics.ObserveBest(best.ErrorScore())
		p.logger.Info("lineage trees found",
			zap.Int("trees", len(res.Trees)),
			zap.Float64("best_error", best.ErrorScore()),
			zap.Int("repairs", res.Iterations))
	} else {
		p.logger.Warn("no consistent lineage found",
			zap.Int("repairs", res.Iterations),
			zap.Int("enumerated", res.Enumerated))
	}
	return res, nil
}
