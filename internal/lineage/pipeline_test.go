package lineage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"lichee/lineage/internal/metrics"
)

// conflictingGroups are two same-level groups that cannot nest and together
// overflow the root in sample 0
func conflictingGroups(t *testing.T, robust bool) []*SNVGroup {
	t.Helper()
	return []*SNVGroup{
		group(t, "11", robust, 50, []float64{0.45, 0.30}),
		group(t, "11", robust, 5, []float64{0.30, 0.45}),
	}
}

func TestPipeline_ThreeGroups(t *testing.T) {
	groups := []*SNVGroup{
		group(t, "11", false, 10, []float64{0.5, 0.5}),
		group(t, "10", false, 10, []float64{0.3}),
		group(t, "01", false, 10, []float64{0.2}),
	}
	p := NewPipeline(fixedMarginConfig(), zap.NewNop(), nil)
	res, err := p.Run(groups, 2)
	require.NoError(t, err)

	require.Len(t, res.Trees, 1)
	best := res.Best()
	assert.Zero(t, best.ErrorScore())
	assert.Zero(t, res.Iterations)
	assert.Empty(t, res.Removed)
	assert.Equal(t, 1, res.Enumerated)

	net := res.Network
	assert.Equal(t, findNode(t, net, "11_0"), best.Parent(findNode(t, net, "10_0")))
	assert.Equal(t, findNode(t, net, "11_0"), best.Parent(findNode(t, net, "01_0")))
	assert.Equal(t, net.Root().ID, best.Parent(findNode(t, net, "11_0")))
}

func TestPipeline_LineageTreesCountsRejections(t *testing.T) {
	p := NewPipeline(fixedMarginConfig(), nil, nil)
	search := p.LineageTrees(twinNetwork(t))

	assert.Len(t, search.Trees, 2)
	assert.Equal(t, 2, search.Rejected)
	assert.Equal(t, 4, search.Stats.Trees)
}

func TestPipeline_RepairRemovesWeakestGroup(t *testing.T) {
	groups := conflictingGroups(t, false)
	collector := metrics.NewCollector("test")
	p := NewPipeline(fixedMarginConfig(), nil, collector)

	// Before repair nothing fits
	net, err := p.BuildNetwork(groups, 2)
	require.NoError(t, err)
	assert.Empty(t, p.LineageTrees(net).Trees)

	res, err := p.Run(groups, 2)
	require.NoError(t, err)
	require.NotEmpty(t, res.Trees)
	assert.Equal(t, 1, res.Iterations)
	require.Len(t, res.Removed, 1)
	assert.Same(t, groups[1], res.Removed[0])
	assert.Len(t, res.Network.Groups(), 1)

	snap, err := collector.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 1.0, snap["test_repair_iterations_total"])
	assert.Equal(t, 1.0, snap["test_best_tree_error_count"])
}

func TestPipeline_RobustGroupsAreKept(t *testing.T) {
	p := NewPipeline(fixedMarginConfig(), nil, nil)
	res, err := p.Run(conflictingGroups(t, true), 2)
	require.NoError(t, err)

	assert.Empty(t, res.Trees)
	assert.Nil(t, res.Best())
	assert.Zero(t, res.Iterations)
	assert.Greater(t, res.Rejected, 0)
}

func TestPipeline_MaxRepairIterations(t *testing.T) {
	groups := append(conflictingGroups(t, false),
		group(t, "11", false, 20, []float64{0.05, 0.45}))

	cfg := fixedMarginConfig()
	cfg.MaxRepairIterations = 1
	res, err := NewPipeline(cfg, nil, nil).Run(groups, 2)
	require.NoError(t, err)

	// Dropping the 5-snv group still leaves two groups overflowing sample 1
	assert.Equal(t, 1, res.Iterations)
	assert.Empty(t, res.Trees)
	require.Len(t, res.Removed, 1)
	assert.Same(t, groups[1], res.Removed[0])
}

func TestPipeline_RunInputError(t *testing.T) {
	_, err := NewPipeline(DefaultConfig(), nil, nil).Run(nil, 2)
	assert.ErrorIs(t, err, ErrNoGroups)
}

func TestPipeline_TruncationIsReported(t *testing.T) {
	g := group(t, "111", false, 10,
		[]float64{0.1, 0.1, 0.1}, []float64{0.1, 0.1, 0.1},
		[]float64{0.1, 0.1, 0.1}, []float64{0.1, 0.1, 0.1})
	cfg := fixedMarginConfig()
	cfg.MaxTrees = 2

	res, err := NewPipeline(cfg, nil, nil).Run([]*SNVGroup{g}, 3)
	require.NoError(t, err)
	assert.True(t, res.Truncated)
	assert.Equal(t, 2, res.Enumerated)
}

func TestFix_WeakestGroup(t *testing.T) {
	groups := []*SNVGroup{
		group(t, "11", true, 1, []float64{0.4, 0.4}),
		group(t, "10", false, 8, []float64{0.2}),
		group(t, "01", false, 3, []float64{0.2}),
		group(t, "01", false, 3, []float64{0.1}),
	}
	assert.Equal(t, 2, weakestGroup(groups))
	assert.Equal(t, -1, weakestGroup(groups[:1]))

	b := NewBuilder(fixedMarginConfig(), nil)
	net, err := b.Build(groups, 2)
	require.NoError(t, err)

	fixed, removed, err := b.Fix(net)
	require.NoError(t, err)
	assert.Same(t, groups[2], removed)
	assert.Less(t, fixed.NumNodes(), net.NumNodes())
	assert.Len(t, fixed.Groups(), 3)
}

func TestFix_KeepsLastGroup(t *testing.T) {
	b := NewBuilder(fixedMarginConfig(), nil)
	net, err := b.Build([]*SNVGroup{group(t, "1", false, 2, []float64{0.3})}, 1)
	require.NoError(t, err)

	same, removed, err := b.Fix(net)
	require.NoError(t, err)
	assert.Nil(t, removed)
	assert.Same(t, net, same)
}

func TestFix_PreservesSampleNames(t *testing.T) {
	groups := []*SNVGroup{
		group(t, "11", false, 9, []float64{0.4, 0.4}),
		group(t, "10", false, 1, []float64{0.2}),
	}
	b := NewBuilder(fixedMarginConfig(), nil).WithSampleNames([]string{"p", "m"})
	net, err := b.Build(groups, 2)
	require.NoError(t, err)

	fixed, _, err := b.Fix(net)
	require.NoError(t, err)
	assert.Equal(t, []string{"p", "m"}, fixed.SampleNames())
	_, ok := fixed.SampleByName("m")
	assert.True(t, ok)
}
