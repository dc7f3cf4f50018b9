package lineage

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twinNetwork has one group with two 0.4 clusters in one sample: as siblings
// under the 0.5 root they overflow it, chained they fit
func twinNetwork(t *testing.T) *Network {
	t.Helper()
	g := group(t, "1", false, 10, []float64{0.4}, []float64{0.4})
	net, err := BuildNetwork([]*SNVGroup{g}, 1, fixedMarginConfig())
	require.NoError(t, err)
	return net
}

func TestRanker_RejectsOverflowingSiblings(t *testing.T) {
	net := twinNetwork(t)
	trees, _ := NewEnumerator(net, fixedMarginConfig()).All()
	require.Len(t, trees, 4)

	r := NewRanker(fixedMarginConfig())
	root := net.Root().ID
	for _, tr := range trees {
		siblings := len(tr.Children(root)) == 2
		assert.Equal(t, !siblings, r.Admit(tr), "tree:\n%s", tr)
	}

	kept, rejected := r.Rank(trees)
	assert.Len(t, kept, 2)
	assert.Equal(t, 2, rejected)
	for _, tr := range kept {
		assert.Zero(t, tr.ErrorScore())
	}
}

func TestRanker_LeavesDoNotCount(t *testing.T) {
	// A cluster with several sample leaves under it is never over capacity
	g := group(t, "111", false, 10, []float64{0.45, 0.45, 0.45})
	net, err := BuildNetwork([]*SNVGroup{g}, 3, fixedMarginConfig())
	require.NoError(t, err)

	trees, _ := NewEnumerator(net, fixedMarginConfig()).All()
	require.Len(t, trees, 1)
	assert.True(t, NewRanker(fixedMarginConfig()).Admit(trees[0]))
	assert.Zero(t, trees[0].ErrorScore())
}

func TestRanker_SortsByErrorScore(t *testing.T) {
	net := twinNetwork(t)
	trees, _ := NewEnumerator(net, fixedMarginConfig()).All()

	NewRanker(fixedMarginConfig()).Sort(trees)
	for i := 1; i < len(trees); i++ {
		assert.LessOrEqual(t, trees[i-1].ErrorScore(), trees[i].ErrorScore())
	}
	// Siblings under the root overflow it by 0.3
	assert.InDelta(t, 0.3, trees[len(trees)-1].ErrorScore(), 1e-9)
}

func TestTree_ErrorScoreIsMemoized(t *testing.T) {
	net := twinNetwork(t)
	trees, _ := NewEnumerator(net, fixedMarginConfig()).All()
	tr := trees[0]

	first := tr.ErrorScore()
	assert.Equal(t, first, tr.score)
	assert.Equal(t, first, tr.ErrorScore())
}

func TestTree_IsDescendant(t *testing.T) {
	net := threeGroupNetwork(t)
	trees, _ := NewEnumerator(net, fixedMarginConfig()).All()
	require.Len(t, trees, 1)
	tr := trees[0]

	root := net.Root().ID
	g11 := findNode(t, net, "11_0")
	s0 := findNode(t, net, "S0")
	assert.True(t, tr.IsDescendant(root, s0))
	assert.True(t, tr.IsDescendant(g11, s0))
	assert.False(t, tr.IsDescendant(s0, g11))
	assert.False(t, tr.IsDescendant(s0, s0))
	assert.Equal(t, NoNode, tr.Parent(root))
	assert.Equal(t, g11, tr.Parent(findNode(t, net, "10_0")))
}

func TestTree_ValidateRejectsForeignEdge(t *testing.T) {
	net := threeGroupNetwork(t)
	parent := make([]NodeID, net.NumNodes())
	members := make([]NodeID, 0, net.NumNodes())
	for i := range parent {
		parent[i] = net.Root().ID
		members = append(members, NodeID(i))
	}
	parent[net.Root().ID] = NoNode

	err := newTree(net, members, parent).Validate()
	assert.Error(t, err)
}

func TestTree_Lineage(t *testing.T) {
	net := threeGroupNetwork(t)
	trees, _ := NewEnumerator(net, fixedMarginConfig()).All()
	require.Len(t, trees, 1)

	text, err := trees[0].Lineage(0)
	require.NoError(t, err)
	assert.Equal(t, "S0:\n"+
		"GL  0.500\n"+
		"  11_0  0.500 (sd 0.000, 10 snvs)\n"+
		"    10_0  0.300 (sd 0.000, 10 snvs)\n"+
		"      S0\n", text)

	_, err = trees[0].Lineage(5)
	assert.Error(t, err)
}

func TestTree_String(t *testing.T) {
	net := threeGroupNetwork(t)
	trees, _ := NewEnumerator(net, fixedMarginConfig()).All()
	require.Len(t, trees, 1)

	assert.Equal(t, "GL -> 11_0\n11_0 -> 01_0 10_0\n01_0 -> S1\n10_0 -> S0\n", trees[0].String())
}

// randomGroups draws multi-cluster groups with reported stddev over numSamples samples
func randomGroups(t *testing.T, rng *rand.Rand, numSamples int) []*SNVGroup {
	t.Helper()
	groups := make([]*SNVGroup, 2+rng.Intn(3))
	for g := range groups {
		tag := make([]byte, numSamples)
		for {
			for s := range tag {
				tag[s] = "01"[rng.Intn(2)]
			}
			if string(tag) != strings.Repeat("0", numSamples) {
				break
			}
		}
		covered := strings.Count(string(tag), "1")
		clusters := make([]Cluster, 1+rng.Intn(2))
		for i := range clusters {
			c := Cluster{Centroid: make([]float64, covered), StdDev: make([]float64, covered), Members: 1 + rng.Intn(20)}
			for k := 0; k < covered; k++ {
				c.Centroid[k] = 0.02 + 0.48*rng.Float64()
				c.StdDev[k] = 0.08 * rng.Float64()
			}
			clusters[i] = c
		}
		sg, err := NewSNVGroup(string(tag), rng.Intn(2) == 0, clusters)
		require.NoError(t, err)
		groups[g] = sg
	}
	return groups
}

// withinCapacity recomputes the sibling capacity check for every parent of tr
func withinCapacity(cfg Config, tr *Tree) bool {
	net := tr.Network()
	for _, parent := range tr.Nodes() {
		for s := 0; s < net.NumSamples(); s++ {
			var sum, margin float64
			for _, c := range tr.Children(parent.ID) {
				child := net.Node(c)
				if child.IsLeaf() {
					continue
				}
				sum += child.AAF(s)
				margin += Margin(cfg, parent, child, s)
			}
			if sum > parent.AAF(s)+margin {
				return false
			}
		}
	}
	return true
}

func TestRanker_StatisticalMarginRandomNetworks(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	cfg := DefaultConfig()
	cfg.UseClusterStats = true
	cfg.MaxTrees = 400
	cfg.MaxSearchCalls = 0

	var admitted, rejected int
	for round := 0; round < 40; round++ {
		numSamples := 1 + rng.Intn(3)
		net, err := BuildNetwork(randomGroups(t, rng, numSamples), numSamples, cfg)
		require.NoError(t, err)

		trees, _ := NewEnumerator(net, cfg).All()
		r := NewRanker(cfg)
		for _, tr := range trees {
			assert.Equal(t, withinCapacity(cfg, tr), r.Admit(tr), "round %d tree:\n%s", round, tr)
		}

		kept, n := r.Rank(trees)
		assert.Equal(t, len(trees), len(kept)+n, "round %d", round)
		for i, tr := range kept {
			assert.True(t, withinCapacity(cfg, tr), "round %d: ranked tree over capacity:\n%s", round, tr)
			if i > 0 {
				assert.LessOrEqual(t, kept[i-1].ErrorScore(), tr.ErrorScore(), "round %d: rank %d", round, i)
			}
		}
		admitted += len(kept)
		rejected += n
	}
	assert.Positive(t, admitted)
	assert.Positive(t, rejected)
}
