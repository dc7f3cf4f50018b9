package lineage

import "go.uber.org/zap"

// weakestGroup returns the index of the non-robust group with the fewest
// mutations, first in group order on ties, or -1 if every group is robust.
func weakestGroup(groups []*SNVGroup) int {
	best := -1
	for i, g := range groups {
		if g.Robust {
			continue
		}
		if best < 0 || g.Size() < groups[best].Size() {
			best = i
		}
	}
	return best
}

// Fix drops the least-supported non-robust group and rebuilds the network from
// the remaining groups. It returns the removed group, or nil (and the original
// network) when no group can be removed.
func (b *Builder) Fix(net *Network) (*Network, *SNVGroup, error) {
	groups := net.Groups()
	idx := weakestGroup(groups)
	if idx < 0 || len(groups) == 1 {
		return net, nil, nil
	}
	removed := groups[idx]

	remaining := make([]*SNVGroup, 0, len(groups)-1)
	remaining = append(remaining, groups[:idx]...)
	remaining = append(remaining, groups[idx+1:]...)

	rebuilt, err := b.WithSampleNames(net.SampleNames()).Build(remaining, net.NumSamples())
	if err != nil {
		return nil, nil, err
	}
	b.logger.Info("removed group from network",
		zap.String("tag", removed.Tag),
		zap.Int("snvs", removed.Size()),
		zap.Int("nodes_before", net.NumNodes()),
		zap.Int("nodes_after", rebuilt.NumNodes()))
	return rebuilt, removed, nil
}
