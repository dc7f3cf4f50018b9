package lineage

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// Edge is a directed network edge: From happened before To
type Edge struct {
	From NodeID
	To   NodeID
}

// Network is the constraint graph over root, cluster and sample nodes.
// Nodes live in an arena owned by the network; a rebuild creates a new one.
type Network struct {
	cfg         Config
	numSamples  int
	sampleNames []string
	groups      []*SNVGroup

	nodes    []*Node
	levels   map[int][]NodeID
	children [][]NodeID
	parents  [][]NodeID
	edgeSet  map[Edge]struct{}
}

func newNetwork(cfg Config, groups []*SNVGroup, numSamples int, sampleNames []string) *Network {
	return &Network{
		cfg:         cfg,
		numSamples:  numSamples,
		sampleNames: sampleNames,
		groups:      groups,
		levels:      make(map[int][]NodeID),
		edgeSet:     make(map[Edge]struct{}),
	}
}

func (net *Network) addNode(n *Node) NodeID {
	n.ID = NodeID(len(net.nodes))
	net.nodes = append(net.nodes, n)
	net.children = append(net.children, nil)
	net.parents = append(net.parents, nil)
	net.levels[n.Level] = append(net.levels[n.Level], n.ID)
	return n.ID
}

// addEdge inserts from->to, ignoring duplicates. Returns true if the edge is new.
func (net *Network) addEdge(from, to NodeID) bool {
	e := Edge{from, to}
	if _, ok := net.edgeSet[e]; ok {
		return false
	}
	net.edgeSet[e] = struct{}{}
	net.children[from] = append(net.children[from], to)
	net.parents[to] = append(net.parents[to], from)
	return true
}

// reaches reports whether to is reachable from from along network edges
func (net *Network) reaches(from, to NodeID) bool {
	seen := make([]bool, len(net.nodes))
	stack := []NodeID{from}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == to {
			return true
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		stack = append(stack, net.children[id]...)
	}
	return false
}

func (net *Network) Config() Config        { return net.cfg }
func (net *Network) NumSamples() int       { return net.numSamples }
func (net *Network) NumNodes() int         { return len(net.nodes) }
func (net *Network) NumEdges() int         { return len(net.edgeSet) }
func (net *Network) Groups() []*SNVGroup   { return net.groups }
func (net *Network) Node(id NodeID) *Node  { return net.nodes[id] }
func (net *Network) Nodes() []*Node        { return net.nodes }
func (net *Network) Root() *Node           { return net.nodes[0] }
func (net *Network) SampleNames() []string { return net.sampleNames }

// Children returns the down-neighbors of id in insertion order
func (net *Network) Children(id NodeID) []NodeID { return net.children[id] }

// Parents returns the up-neighbors of id in insertion order
func (net *Network) Parents(id NodeID) []NodeID { return net.parents[id] }

func (net *Network) HasEdge(from, to NodeID) bool {
	_, ok := net.edgeSet[Edge{from, to}]
	return ok
}

// Levels returns the non-empty levels, highest (root) first
func (net *Network) Levels() []int {
	levels := make([]int, 0, len(net.levels))
	for l, ids := range net.levels {
		if len(ids) > 0 {
			levels = append(levels, l)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(levels)))
	return levels
}

// NodesAt returns the nodes on a level in creation order
func (net *Network) NodesAt(level int) []NodeID { return net.levels[level] }

// Edges returns every edge ordered by source then insertion order
func (net *Network) Edges() []Edge {
	edges := make([]Edge, 0, len(net.edgeSet))
	for from, kids := range net.children {
		for _, to := range kids {
			edges = append(edges, Edge{NodeID(from), to})
		}
	}
	return edges
}

// Leaf returns the node for sample s
func (net *Network) Leaf(s int) (*Node, bool) {
	for _, id := range net.levels[0] {
		if n := net.nodes[id]; n.Sample == s {
			return n, true
		}
	}
	return nil, false
}

// SampleByName resolves a sample name or "S<i>" label to its id
func (net *Network) SampleByName(name string) (int, bool) {
	for _, id := range net.levels[0] {
		if n := net.nodes[id]; n.Label() == name {
			return n.Sample, true
		}
	}
	return 0, false
}

// CheckAcyclic verifies the DAG invariant and returns a topological order of the nodes
func (net *Network) CheckAcyclic() ([]NodeID, error) {
	g := simple.NewDirectedGraph()
	for _, n := range net.nodes {
		g.AddNode(simple.Node(n.ID))
	}
	for _, e := range net.Edges() {
		g.SetEdge(simple.Edge{F: simple.Node(e.From), T: simple.Node(e.To)})
	}
	sorted, err := topo.Sort(g)
	if err != nil {
		return nil, fmt.Errorf("constraint network is not a DAG: %w", err)
	}
	order := make([]NodeID, len(sorted))
	for i, n := range sorted {
		order[i] = NodeID(n.ID())
	}
	return order, nil
}
