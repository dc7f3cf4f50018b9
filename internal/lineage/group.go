package lineage

import (
	"fmt"
	"strings"
)

// Cluster is one sub-population of a group as estimated by the clustering step.
// Centroid and StdDev are indexed by the group's own sample order (see SNVGroup.SampleIndex).
type Cluster struct {
	Centroid []float64
	StdDev   []float64 // nil when the clustering did not report one
	Members  int
}

// SNVGroup is the set of mutations sharing one presence profile
type SNVGroup struct {
	Tag      string
	Robust   bool
	Clusters []Cluster

	samples   []int // covered sample ids, ascending
	sampleIdx []int // sample id -> position in cluster vectors, -1 if absent
}

// NewSNVGroup validates the cluster shapes against the tag and builds the sample mapping
func NewSNVGroup(tag string, robust bool, clusters []Cluster) (*SNVGroup, error) {
	g := &SNVGroup{Tag: tag, Robust: robust, Clusters: clusters}
	g.sampleIdx = make([]int, len(tag))
	for i, c := range tag {
		switch c {
		case '1':
			g.sampleIdx[i] = len(g.samples)
			g.samples = append(g.samples, i)
		case '0':
			g.sampleIdx[i] = -1
		default:
			return nil, fmt.Errorf("group %q: %w", tag, ErrBadTag)
		}
	}
	if len(g.samples) == 0 {
		return nil, fmt.Errorf("group %q: %w", tag, ErrBadTag)
	}
	if len(clusters) == 0 {
		return nil, fmt.Errorf("group %q: %w", tag, ErrEmptyGroup)
	}
	for i, c := range clusters {
		if len(c.Centroid) != len(g.samples) {
			return nil, fmt.Errorf("group %q cluster %d: centroid has %d values, want %d: %w",
				tag, i, len(c.Centroid), len(g.samples), ErrClusterShape)
		}
		if c.StdDev != nil && len(c.StdDev) != len(g.samples) {
			return nil, fmt.Errorf("group %q cluster %d: stddev has %d values, want %d: %w",
				tag, i, len(c.StdDev), len(g.samples), ErrClusterShape)
		}
	}
	return g, nil
}

// NumSamples returns the number of samples the profile covers
func (g *SNVGroup) NumSamples() int { return len(g.samples) }

// Samples returns the covered sample ids in ascending order
func (g *SNVGroup) Samples() []int { return g.samples }

// Covers reports whether the group's mutations are present in sample s
func (g *SNVGroup) Covers(s int) bool {
	return s >= 0 && s < len(g.sampleIdx) && g.sampleIdx[s] >= 0
}

// SampleIndex maps a sample id to the position in the cluster vectors, or -1
func (g *SNVGroup) SampleIndex(s int) int {
	if s < 0 || s >= len(g.sampleIdx) {
		return -1
	}
	return g.sampleIdx[s]
}

// Size is the number of mutations in the group (sum of cluster members)
func (g *SNVGroup) Size() int {
	n := 0
	for _, c := range g.Clusters {
		n += c.Members
	}
	return n
}

func (g *SNVGroup) String() string {
	var b strings.Builder
	b.WriteString(g.Tag)
	if g.Robust {
		b.WriteString("*")
	}
	fmt.Fprintf(&b, " (%d clusters, %d snvs)", len(g.Clusters), g.Size())
	return b.String()
}
