package lineage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statsNode(t *testing.T, centroid, sd float64, members int) *Node {
	t.Helper()
	g, err := NewSNVGroup("1", false, []Cluster{{
		Centroid: []float64{centroid},
		StdDev:   []float64{sd},
		Members:  members,
	}})
	require.NoError(t, err)
	return &Node{Kind: KindInternal, Level: 1, Group: g}
}

func TestMargin_Fixed(t *testing.T) {
	cfg := DefaultConfig()
	cfg.UseClusterStats = false
	a := statsNode(t, 0.4, 0.1, 4)
	b := statsNode(t, 0.3, 0.1, 4)
	assert.Equal(t, cfg.AAFErrorMargin, Margin(cfg, a, b, 0))
}

func TestMargin_StandardError(t *testing.T) {
	cfg := DefaultConfig()
	a := statsNode(t, 0.4, 0.1, 4) // 1.96 * 0.1 / 2 = 0.098
	b := statsNode(t, 0.3, 0.1, 4)
	root := &Node{Kind: KindRoot, maxAAF: cfg.MaxAAF}

	assert.InDelta(t, 0.196, Margin(cfg, a, b, 0), 1e-9)
	assert.InDelta(t, 0.098, Margin(cfg, root, a, 0), 1e-9)
}

func TestMargin_FloorsAtFixedMargin(t *testing.T) {
	cfg := DefaultConfig()
	a := statsNode(t, 0.4, 0.01, 4)
	b := statsNode(t, 0.3, 0.01, 4)
	assert.Equal(t, cfg.AAFErrorMargin, Margin(cfg, a, b, 0))
}

func TestMargin_NoStatsUsesFixed(t *testing.T) {
	cfg := DefaultConfig()
	root := &Node{Kind: KindRoot, maxAAF: cfg.MaxAAF}
	leaf := &Node{Kind: KindLeaf}
	assert.Equal(t, cfg.AAFErrorMargin, Margin(cfg, root, leaf, 0))
}

func TestMargin_WidensDominanceTest(t *testing.T) {
	// Parent 0.2 vs child 0.35 in sample 0: outside the fixed margin, inside the statistical one
	parent := group(t, "11", false, 4, []float64{0.2, 0.4})
	parent.Clusters[0].StdDev = []float64{0.1, 0.1}
	child := group(t, "10", false, 4, []float64{0.35})
	child.Clusters[0].StdDev = []float64{0.1}

	net, err := BuildNetwork([]*SNVGroup{parent, child}, 2, fixedMarginConfig())
	require.NoError(t, err)
	assert.False(t, net.HasEdge(findNode(t, net, "11_0"), findNode(t, net, "10_0")))
	assert.True(t, net.HasEdge(net.Root().ID, findNode(t, net, "10_0")))

	loose := fixedMarginConfig()
	loose.UseClusterStats = true
	net, err = BuildNetwork([]*SNVGroup{parent, child}, 2, loose)
	require.NoError(t, err)
	assert.True(t, net.HasEdge(findNode(t, net, "11_0"), findNode(t, net, "10_0")))
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.MaxAAF = 0
	cfg.MaxTrees = -1
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maxaaf must be > 0")
	assert.Contains(t, err.Error(), "maxtrees must be >= 0")
}
