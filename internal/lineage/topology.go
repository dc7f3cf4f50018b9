package lineage

import "sort"

// LevelSummary counts the nodes on one network level
type LevelSummary struct {
	Level int `json:"level"`
	Nodes int `json:"nodes"`
}

// HubNode is a node with many possible children
type HubNode struct {
	Label     string `json:"label"`
	Level     int    `json:"level"`
	InDegree  int    `json:"in_degree"`
	OutDegree int    `json:"out_degree"`
}

// DegreeBucket is one bucket in the out-degree histogram
type DegreeBucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// TopologyReport summarizes the shape of a constraint network
type TopologyReport struct {
	TotalNodes      int            `json:"total_nodes"`
	TotalEdges      int            `json:"total_edges"`
	Samples         int            `json:"samples"`
	Groups          int            `json:"groups"`
	Levels          []LevelSummary `json:"levels"`
	NumComponents   int            `json:"num_components"`
	Orphans         []string       `json:"orphans"`
	DegreeHistogram []DegreeBucket `json:"degree_histogram"`
	Hubs            []HubNode      `json:"hubs"`
	Acyclic         bool           `json:"acyclic"`
}

// ComputeTopology analyzes a network: level sizes, weak components, nodes
// without a parent, out-degree distribution and the topN highest out-degree nodes
func ComputeTopology(net *Network, topN int) *TopologyReport {
	r := &TopologyReport{
		TotalNodes:      net.NumNodes(),
		TotalEdges:      net.NumEdges(),
		Samples:         net.NumSamples(),
		Groups:          len(net.Groups()),
		DegreeHistogram: defaultHistogram(),
	}
	for _, l := range net.Levels() {
		r.Levels = append(r.Levels, LevelSummary{Level: l, Nodes: len(net.NodesAt(l))})
	}

	uf := NewUnionFind(net.NumNodes())
	for _, e := range net.Edges() {
		uf.Union(e.From, e.To)
	}
	r.NumComponents = len(uf.Components())

	root := net.Root().ID
	var hubs []HubNode
	for _, n := range net.Nodes() {
		out := len(net.Children(n.ID))
		if n.ID != root && len(net.Parents(n.ID)) == 0 {
			r.Orphans = append(r.Orphans, n.Label())
		}
		r.DegreeHistogram[degreeBucket(out)].Count++
		if out > 1 && !n.IsRoot() {
			hubs = append(hubs, HubNode{
				Label:     n.Label(),
				Level:     n.Level,
				InDegree:  len(net.Parents(n.ID)),
				OutDegree: out,
			})
		}
	}
	sort.SliceStable(hubs, func(i, j int) bool { return hubs[i].OutDegree > hubs[j].OutDegree })
	if len(hubs) > topN {
		hubs = hubs[:topN]
	}
	r.Hubs = hubs

	_, err := net.CheckAcyclic()
	r.Acyclic = err == nil
	return r
}

func defaultHistogram() []DegreeBucket {
	return []DegreeBucket{
		{Label: "0"}, {Label: "1"}, {Label: "2-3"},
		{Label: "4-7"}, {Label: "8-15"}, {Label: "16-31"}, {Label: "32+"},
	}
}

func degreeBucket(degree int) int {
	switch {
	case degree == 0:
		return 0
	case degree == 1:
		return 1
	case degree <= 3:
		return 2
	case degree <= 7:
		return 3
	case degree <= 15:
		return 4
	case degree <= 31:
		return 5
	default:
		return 6
	}
}
