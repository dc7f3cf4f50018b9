package lineage

import (
	"fmt"
	"math"
	"strings"
)

const scoreNotComputed = -1.0

// Tree is a spanning tree of a Network rooted at the network root
type Tree struct {
	net      *Network
	members  []NodeID   // insertion order, root first
	parent   []NodeID   // by NodeID, NoNode for the root and non-members
	children [][]NodeID // by NodeID
	score    float64
}

// newTree snapshots a parent array. members must list the root first.
func newTree(net *Network, members []NodeID, parent []NodeID) *Tree {
	t := &Tree{
		net:      net,
		members:  append([]NodeID(nil), members...),
		parent:   append([]NodeID(nil), parent...),
		children: make([][]NodeID, len(parent)),
		score:    scoreNotComputed,
	}
	for _, id := range t.members {
		if p := t.parent[id]; p != NoNode {
			t.children[p] = append(t.children[p], id)
		}
	}
	return t
}

// Network returns the network the tree spans
func (t *Tree) Network() *Network { return t.net }

// Nodes returns the member nodes in the order they joined the tree
func (t *Tree) Nodes() []*Node {
	nodes := make([]*Node, len(t.members))
	for i, id := range t.members {
		nodes[i] = t.net.nodes[id]
	}
	return nodes
}

// Edges returns parent->child pairs in member order
func (t *Tree) Edges() []Edge {
	edges := make([]Edge, 0, len(t.members))
	for _, id := range t.members {
		if p := t.parent[id]; p != NoNode {
			edges = append(edges, Edge{p, id})
		}
	}
	return edges
}

// Parent returns the parent of id, or NoNode for the root
func (t *Tree) Parent(id NodeID) NodeID { return t.parent[id] }

// Children returns the children of id
func (t *Tree) Children(id NodeID) []NodeID { return t.children[id] }

// IsDescendant reports whether node lies strictly below ancestor
func (t *Tree) IsDescendant(ancestor, node NodeID) bool {
	return descends(t.parent, ancestor, node)
}

func descends(parent []NodeID, ancestor, node NodeID) bool {
	for p := parent[node]; p != NoNode; p = parent[p] {
		if p == ancestor {
			return true
		}
	}
	return false
}

// ErrorScore is the root of the summed squared excess of children's AAF over
// their parent's, across all parents and samples. Lower is a better fit.
func (t *Tree) ErrorScore() float64 {
	if t.score != scoreNotComputed {
		return t.score
	}
	total := 0.0
	for _, id := range t.members {
		kids := t.children[id]
		if len(kids) == 0 {
			continue
		}
		n := t.net.nodes[id]
		for s := 0; s < t.net.numSamples; s++ {
			sum := 0.0
			for _, c := range kids {
				sum += t.net.nodes[c].AAF(s)
			}
			excess := math.Max(0, sum-n.AAF(s))
			total += excess * excess
		}
	}
	t.score = math.Sqrt(total)
	return t.score
}

// Validate checks the spanning-tree invariant: every network node is a member
// and every non-root member has exactly one parent joined by a network edge.
func (t *Tree) Validate() error {
	n := t.net.NumNodes()
	if len(t.members) != n {
		return fmt.Errorf("tree has %d members, network has %d nodes", len(t.members), n)
	}
	seen := make([]bool, n)
	for _, id := range t.members {
		if seen[id] {
			return fmt.Errorf("node %s listed twice", t.net.nodes[id])
		}
		seen[id] = true
	}
	incoming := make([]int, n)
	for id := range t.children {
		for _, c := range t.children[id] {
			incoming[c]++
			if !t.net.HasEdge(NodeID(id), c) {
				return fmt.Errorf("tree edge %s -> %s is not in the network", t.net.nodes[id], t.net.nodes[c])
			}
		}
	}
	root := t.net.Root().ID
	for id, count := range incoming {
		switch {
		case NodeID(id) == root && count != 0:
			return fmt.Errorf("root has %d parents", count)
		case NodeID(id) != root && count != 1:
			return fmt.Errorf("node %s has %d parents", t.net.nodes[id], count)
		}
	}
	return nil
}

// Lineage renders the ancestry of a sample from the root down, one level per
// line, with the AAF and standard deviation of each ancestor in that sample.
func (t *Tree) Lineage(sample int) (string, error) {
	leaf, ok := t.net.Leaf(sample)
	if !ok {
		return "", fmt.Errorf("unknown sample %d", sample)
	}
	var chain []NodeID
	for id := leaf.ID; id != NoNode; id = t.parent[id] {
		chain = append(chain, id)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s:\n", leaf.Label())
	for depth := 0; depth < len(chain); depth++ {
		n := t.net.nodes[chain[len(chain)-1-depth]]
		indent := strings.Repeat("  ", depth)
		switch n.Kind {
		case KindLeaf:
			fmt.Fprintf(&b, "%s%s\n", indent, n.Label())
		case KindRoot:
			fmt.Fprintf(&b, "%s%s  %.3f\n", indent, n.Label(), n.AAF(sample))
		default:
			fmt.Fprintf(&b, "%s%s  %.3f (sd %.3f, %d snvs)\n", indent, n.Label(), n.AAF(sample), n.StdDev(sample), n.Members())
		}
	}
	return b.String(), nil
}

// String lists each parent with its children, one per line
func (t *Tree) String() string {
	var b strings.Builder
	for _, id := range t.members {
		kids := t.children[id]
		if len(kids) == 0 {
			continue
		}
		labels := make([]string, len(kids))
		for i, c := range kids {
			labels[i] = t.net.nodes[c].Label()
		}
		fmt.Fprintf(&b, "%s -> %s\n", t.net.nodes[id].Label(), strings.Join(labels, " "))
	}
	return b.String()
}
