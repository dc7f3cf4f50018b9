package lineage

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

// group builds a single-or-multi cluster group from centroids
func group(t *testing.T, tag string, robust bool, members int, centroids ...[]float64) *SNVGroup {
	t.Helper()
	clusters := make([]Cluster, len(centroids))
	for i, c := range centroids {
		clusters[i] = Cluster{Centroid: c, Members: members}
	}
	g, err := NewSNVGroup(tag, robust, clusters)
	require.NoError(t, err)
	return g
}

// fixedMarginConfig disables the statistical margin and budgets
func fixedMarginConfig() Config {
	cfg := DefaultConfig()
	cfg.UseClusterStats = false
	cfg.MaxTrees = 0
	cfg.MaxSearchCalls = 0
	return cfg
}

// threeGroupNetwork is the two-sample network root -> 11 -> {10, 01} -> leaves
func threeGroupNetwork(t *testing.T) *Network {
	t.Helper()
	groups := []*SNVGroup{
		group(t, "11", false, 10, []float64{0.5, 0.5}),
		group(t, "10", false, 10, []float64{0.3}),
		group(t, "01", false, 10, []float64{0.2}),
	}
	net, err := BuildNetwork(groups, 2, fixedMarginConfig())
	require.NoError(t, err)
	return net
}

// findNode returns the node with the given label
func findNode(t *testing.T, net *Network, label string) NodeID {
	t.Helper()
	for _, n := range net.Nodes() {
		if n.Label() == label {
			return n.ID
		}
	}
	t.Fatalf("no node labelled %s", label)
	return NoNode
}

// randomDAG builds a structural network of n nodes where every edge points
// from a lower to a higher id and every non-root node has at least one parent
func randomDAG(rng *rand.Rand, n int, density float64) *Network {
	net := newNetwork(fixedMarginConfig(), nil, n, nil)
	net.addNode(&Node{Kind: KindRoot, Level: n})
	for i := 1; i < n; i++ {
		net.addNode(&Node{Kind: KindLeaf, Level: n - i, Sample: i})
	}
	for j := 1; j < n; j++ {
		net.addEdge(NodeID(rng.Intn(j)), NodeID(j))
		for i := 0; i < j; i++ {
			if rng.Float64() < density {
				net.addEdge(NodeID(i), NodeID(j))
			}
		}
	}
	return net
}

// parentKey encodes a tree's parent array for set comparisons
func parentKey(t *Tree) string {
	b := make([]byte, 0, len(t.parent))
	for _, p := range t.parent {
		b = append(b, byte(p+1))
	}
	return string(b)
}

// bruteForceTrees lists every parent assignment of a DAG network; in a DAG
// each choice of one parent per non-root node is a spanning tree
func bruteForceTrees(net *Network) map[string]bool {
	n := net.NumNodes()
	out := make(map[string]bool)
	parent := make([]NodeID, n)
	parent[0] = NoNode
	var rec func(i int)
	rec = func(i int) {
		if i == n {
			b := make([]byte, n)
			for k, p := range parent {
				b[k] = byte(p + 1)
			}
			out[string(b)] = true
			return
		}
		for _, p := range net.Parents(NodeID(i)) {
			parent[i] = p
			rec(i + 1)
		}
	}
	rec(1)
	return out
}
