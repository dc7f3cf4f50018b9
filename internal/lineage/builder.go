package lineage

import (
	"fmt"
	"math"

	"go.uber.org/zap"
)

// Builder constructs constraint networks from SNV groups
type Builder struct {
	cfg         Config
	logger      *zap.Logger
	sampleNames []string
}

// NewBuilder creates a builder. A nil logger disables logging.
func NewBuilder(cfg Config, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{cfg: cfg, logger: logger}
}

// WithSampleNames returns a builder that labels leaves with the given names
func (b *Builder) WithSampleNames(names []string) *Builder {
	nb := *b
	nb.sampleNames = names
	return &nb
}

// BuildNetwork builds a network with a default-logging builder
func BuildNetwork(groups []*SNVGroup, numSamples int, cfg Config) (*Network, error) {
	return NewBuilder(cfg, nil).Build(groups, numSamples)
}

// Build creates one node per root/cluster/sample, links them by the dominance
// test level by level, and repairs nodes left without a parent.
func (b *Builder) Build(groups []*SNVGroup, numSamples int) (*Network, error) {
	if numSamples <= 0 {
		return nil, ErrNoSamples
	}
	if len(groups) == 0 {
		return nil, ErrNoGroups
	}
	for _, g := range groups {
		if len(g.Tag) != numSamples {
			return nil, fmt.Errorf("group %q has %d positions, want %d: %w", g.Tag, len(g.Tag), numSamples, ErrTagLength)
		}
	}
	if b.sampleNames != nil && len(b.sampleNames) != numSamples {
		return nil, fmt.Errorf("%d sample names for %d samples", len(b.sampleNames), numSamples)
	}

	net := newNetwork(b.cfg, groups, numSamples, b.sampleNames)

	// 1. Root
	net.addNode(&Node{Kind: KindRoot, Level: numSamples + 1, maxAAF: b.cfg.MaxAAF})

	// 2. One node per cluster; sub-populations of a group are tested against each other
	tags := make(map[string]int, len(groups))
	for _, g := range groups {
		tags[g.Tag]++
	}
	for gi, g := range groups {
		first := NodeID(len(net.nodes))
		for i := range g.Clusters {
			n := &Node{Kind: KindInternal, Level: g.NumSamples(), Group: g, Cluster: i}
			// Repeated tags carry the group position
			if tags[g.Tag] > 1 {
				n.name = fmt.Sprintf("%s.%d_%d", g.Tag, gi, i)
			}
			net.addNode(n)
		}
		last := NodeID(len(net.nodes))
		for i := first; i < last; i++ {
			for j := i + 1; j < last; j++ {
				b.checkAndAddEdge(net, i, j)
			}
		}
	}

	// 3. Sample leaves
	for s := 0; s < numSamples; s++ {
		leaf := &Node{Kind: KindLeaf, Level: 0, Sample: s}
		if b.sampleNames != nil {
			leaf.name = b.sampleNames[s]
		}
		net.addNode(leaf)
	}

	// 4. Adjacent non-empty levels, top down
	levels := net.Levels()
	for i := 0; i+1 < len(levels); i++ {
		for _, n1 := range net.NodesAt(levels[i]) {
			for _, n2 := range net.NodesAt(levels[i+1]) {
				b.checkAndAddEdge(net, n1, n2)
			}
		}
	}

	// 5. Connectivity repair
	b.connect(net, levels)

	b.logger.Debug("network built",
		zap.Int("nodes", net.NumNodes()),
		zap.Int("edges", net.NumEdges()),
		zap.Int("levels", len(levels)),
		zap.Int("groups", len(groups)))
	return net, nil
}

// checkAndAddEdge runs the dominance test between two nodes and adds at most one
// edge. n1 must not be on a lower level than n2. Edges between different levels
// always point down; only same-level pairs may be oriented either way.
func (b *Builder) checkAndAddEdge(net *Network, id1, id2 NodeID) (Edge, bool) {
	n1, n2 := net.nodes[id1], net.nodes[id2]
	if n2.IsLeaf() {
		if !n1.IsLeaf() && n1.AAF(n2.Sample) > 0 {
			return Edge{id1, id2}, net.addEdge(id1, id2)
		}
		return Edge{}, false
	}

	fwd := b.covers(net, n1, n2)
	rev := n1.Level == n2.Level && b.covers(net, n2, n1)

	var e Edge
	switch {
	case fwd && rev:
		if b.deviation(net, n1, n2) <= b.deviation(net, n2, n1) {
			e = Edge{id1, id2}
		} else {
			e = Edge{id2, id1}
		}
	case fwd:
		e = Edge{id1, id2}
	case rev:
		e = Edge{id2, id1}
	default:
		return Edge{}, false
	}

	// Same-level edges could close a cycle among sibling clusters
	if n1.Level == n2.Level && net.reaches(e.To, e.From) {
		return Edge{}, false
	}
	return e, net.addEdge(e.From, e.To)
}

// dominates is the one-directional form of the dominance test used by repair
func (b *Builder) dominates(net *Network, parent, child *Node) bool {
	if child.IsLeaf() {
		return !parent.IsLeaf() && parent.AAF(child.Sample) > 0
	}
	return b.covers(net, parent, child)
}

// covers reports whether parent's AAF is at least child's, within the margin, in every sample
func (b *Builder) covers(net *Network, parent, child *Node) bool {
	for s := 0; s < net.numSamples; s++ {
		pa, ca := parent.AAF(s), child.AAF(s)
		if pa == 0 && ca > 0 {
			return false
		}
		if pa < ca-Margin(b.cfg, parent, child, s) {
			return false
		}
	}
	return true
}

// deviation is the total amount by which child exceeds parent across samples
func (b *Builder) deviation(net *Network, parent, child *Node) float64 {
	total := 0.0
	for s := 0; s < net.numSamples; s++ {
		total += math.Max(0, child.AAF(s)-parent.AAF(s))
	}
	return total
}

// connect gives every parentless non-root node a parent: the closest node above
// it that passes the dominance test, or the root.
func (b *Builder) connect(net *Network, levels []int) {
	hasParent := make([]bool, len(net.nodes))
	for _, e := range net.Edges() {
		hasParent[e.To] = true
	}
	root := net.Root().ID

	for li, level := range levels {
		for _, id := range net.NodesAt(level) {
			if id == root || hasParent[id] {
				continue
			}
			node := net.nodes[id]
			parent := NoNode
			for k := li - 1; k >= 0 && parent == NoNode; k-- {
				for _, cand := range net.NodesAt(levels[k]) {
					if b.dominates(net, net.nodes[cand], node) {
						parent = cand
						break
					}
				}
			}
			if parent == NoNode {
				parent = root
			}
			net.addEdge(parent, id)
			hasParent[id] = true
			b.logger.Debug("connected orphan node",
				zap.String("node", node.Label()),
				zap.String("parent", net.nodes[parent].Label()))
		}
	}
}
