package lineage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSNVGroup_SampleMapping(t *testing.T) {
	g, err := NewSNVGroup("0101", true, []Cluster{{Centroid: []float64{0.2, 0.4}, Members: 7}})
	require.NoError(t, err)

	assert.Equal(t, 2, g.NumSamples())
	assert.Equal(t, []int{1, 3}, g.Samples())
	assert.True(t, g.Covers(1))
	assert.False(t, g.Covers(0))
	assert.False(t, g.Covers(9))
	assert.Equal(t, 1, g.SampleIndex(3))
	assert.Equal(t, -1, g.SampleIndex(2))
	assert.Equal(t, -1, g.SampleIndex(-1))
}

func TestNewSNVGroup_Errors(t *testing.T) {
	tests := []struct {
		name     string
		tag      string
		clusters []Cluster
		want     error
	}{
		{"bad character", "1x", []Cluster{{Centroid: []float64{0.1}}}, ErrBadTag},
		{"all zero", "00", []Cluster{{Centroid: []float64{}}}, ErrBadTag},
		{"no clusters", "10", nil, ErrEmptyGroup},
		{"short centroid", "11", []Cluster{{Centroid: []float64{0.1}}}, ErrClusterShape},
		{"long stddev", "10", []Cluster{{Centroid: []float64{0.1}, StdDev: []float64{0.01, 0.02}}}, ErrClusterShape},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSNVGroup(tt.tag, false, tt.clusters)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSNVGroup_Size(t *testing.T) {
	g, err := NewSNVGroup("1", false, []Cluster{
		{Centroid: []float64{0.3}, Members: 4},
		{Centroid: []float64{0.1}, Members: 6},
	})
	require.NoError(t, err)
	assert.Equal(t, 10, g.Size())
	assert.Equal(t, "1 (2 clusters, 10 snvs)", g.String())
}

func TestNode_AAFAndStats(t *testing.T) {
	g, err := NewSNVGroup("101", false, []Cluster{
		{Centroid: []float64{0.25, 0.4}, StdDev: []float64{0.02, 0.03}, Members: 12},
	})
	require.NoError(t, err)
	n := &Node{Kind: KindInternal, Level: 2, Group: g}

	assert.Equal(t, 0.25, n.AAF(0))
	assert.Equal(t, 0.0, n.AAF(1))
	assert.Equal(t, 0.4, n.AAF(2))
	assert.Equal(t, 0.03, n.StdDev(2))
	assert.Equal(t, 0.0, n.StdDev(1))
	assert.True(t, n.HasStats())
	assert.Equal(t, 12, n.Members())
	assert.Equal(t, "101_0", n.Label())

	root := &Node{Kind: KindRoot, maxAAF: 0.5}
	assert.Equal(t, 0.5, root.AAF(1))
	assert.Equal(t, "GL", root.Label())
	assert.False(t, root.HasStats())

	leaf := &Node{Kind: KindLeaf, Sample: 2}
	assert.Equal(t, 0.0, leaf.AAF(2))
	assert.Equal(t, "S2", leaf.Label())
	leaf.name = "met1"
	assert.Equal(t, "met1", leaf.Label())
}

func TestNode_NoStatsWithoutMembers(t *testing.T) {
	g, err := NewSNVGroup("1", false, []Cluster{{Centroid: []float64{0.3}, StdDev: []float64{0.05}}})
	require.NoError(t, err)
	n := &Node{Kind: KindInternal, Group: g}
	assert.False(t, n.HasStats())
}

func TestNodeKind_String(t *testing.T) {
	assert.Equal(t, "root", KindRoot.String())
	assert.Equal(t, "internal", KindInternal.String())
	assert.Equal(t, "leaf", KindLeaf.String())
	assert.Equal(t, "unknown", NodeKind(9).String())
}
