package lineage

import (
	"fmt"
	"strings"

	"github.com/evolbioinfo/gotree/tree"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"
)

var newickReplacer = strings.NewReplacer(
	" ", "_", "(", "_", ")", "_", ",", "_", ":", "_", ";", "_", "[", "_", "]", "_", "'", "_",
)

// Newick renders the tree in Newick format, naming every node by its label
func (t *Tree) Newick() (string, error) {
	gt := tree.NewTree()
	nodes := make(map[NodeID]*tree.Node, len(t.members))
	for _, id := range t.members {
		n := gt.NewNode()
		n.SetName(newickReplacer.Replace(t.net.nodes[id].Label()))
		nodes[id] = n
	}
	gt.SetRoot(nodes[t.net.Root().ID])
	for _, e := range t.Edges() {
		gt.ConnectNodes(nodes[e.From], nodes[e.To])
	}
	if err := gt.UpdateTipIndex(); err != nil {
		return "", fmt.Errorf("indexing tree tips: %w", err)
	}
	return gt.Newick(), nil
}

type dotNode struct {
	id    int64
	name  string
	label string
}

func (n dotNode) ID() int64     { return n.id }
func (n dotNode) DOTID() string { return n.name }
func (n dotNode) Attributes() []encoding.Attribute {
	return []encoding.Attribute{{Key: "label", Value: `"` + strings.ReplaceAll(n.label, `"`, `'`) + `"`}}
}

// DOT renders the tree as a Graphviz digraph. Internal nodes are labelled
// with their AAF in every sample.
func (t *Tree) DOT(name string) (string, error) {
	g := simple.NewDirectedGraph()
	nodes := make(map[NodeID]dotNode, len(t.members))
	for _, id := range t.members {
		n := t.net.nodes[id]
		label := n.Label()
		if n.IsInternal() {
			aafs := make([]string, 0, t.net.numSamples)
			for s := 0; s < t.net.numSamples; s++ {
				aafs = append(aafs, fmt.Sprintf("%.2f", n.AAF(s)))
			}
			label += `\n` + strings.Join(aafs, " ")
		}
		dn := dotNode{id: int64(id), name: fmt.Sprintf("n%d", id), label: label}
		nodes[id] = dn
		g.AddNode(dn)
	}
	for _, e := range t.Edges() {
		g.SetEdge(simple.Edge{F: nodes[e.From], T: nodes[e.To]})
	}
	b, err := dot.Marshal(g, name, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding dot: %w", err)
	}
	return string(b), nil
}
