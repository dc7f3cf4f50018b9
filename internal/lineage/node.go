package lineage

import "fmt"

// NodeID indexes a node inside the arena of one Network
type NodeID int

// NoNode marks a missing parent
const NoNode NodeID = -1

// NodeKind discriminates the three node variants
type NodeKind int

const (
	KindRoot NodeKind = iota
	KindInternal
	KindLeaf
)

func (k NodeKind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindInternal:
		return "internal"
	case KindLeaf:
		return "leaf"
	default:
		return "unknown"
	}
}

// Node is a vertex of the constraint network. It is immutable once the network is built.
type Node struct {
	ID    NodeID
	Kind  NodeKind
	Level int

	// Internal nodes
	Group   *SNVGroup
	Cluster int

	// Leaf nodes
	Sample int

	maxAAF float64
	name   string
}

func (n *Node) IsRoot() bool     { return n.Kind == KindRoot }
func (n *Node) IsLeaf() bool     { return n.Kind == KindLeaf }
func (n *Node) IsInternal() bool { return n.Kind == KindInternal }

// AAF returns the node's allele frequency in sample s
func (n *Node) AAF(s int) float64 {
	switch n.Kind {
	case KindRoot:
		return n.maxAAF
	case KindInternal:
		idx := n.Group.SampleIndex(s)
		if idx < 0 {
			return 0
		}
		return n.Group.Clusters[n.Cluster].Centroid[idx]
	default:
		return 0
	}
}

// StdDev returns the cluster standard deviation in sample s, 0 when unknown
func (n *Node) StdDev(s int) float64 {
	if n.Kind != KindInternal {
		return 0
	}
	c := n.Group.Clusters[n.Cluster]
	idx := n.Group.SampleIndex(s)
	if idx < 0 || c.StdDev == nil {
		return 0
	}
	return c.StdDev[idx]
}

// HasStats reports whether the node carries per-sample cluster statistics
func (n *Node) HasStats() bool {
	return n.Kind == KindInternal && n.Group.Clusters[n.Cluster].StdDev != nil && n.Members() > 0
}

// Members returns the number of mutations in the node's cluster
func (n *Node) Members() int {
	if n.Kind != KindInternal {
		return 0
	}
	return n.Group.Clusters[n.Cluster].Members
}

// Label is a short human-readable name, e.g. "GL", "0110_1" or the sample name.
// Clusters of groups that share a tag are labelled "<tag>.<group>_<cluster>".
func (n *Node) Label() string {
	if n.name != "" {
		return n.name
	}
	switch n.Kind {
	case KindRoot:
		return "GL"
	case KindLeaf:
		return fmt.Sprintf("S%d", n.Sample)
	default:
		return fmt.Sprintf("%s_%d", n.Group.Tag, n.Cluster)
	}
}

func (n *Node) String() string {
	return fmt.Sprintf("%d:%s", n.ID, n.Label())
}
