package lineage

import "sort"

// Ranker filters spanning trees by the AAF-sum constraint and orders the
// survivors by error score
type Ranker struct {
	cfg Config
}

func NewRanker(cfg Config) *Ranker {
	return &Ranker{cfg: cfg}
}

// Admit checks that, for every parent and sample, the children's AAFs sum to
// no more than the parent's AAF plus the children's summed margins. Sample
// leaves carry no AAF and contribute no margin.
func (r *Ranker) Admit(t *Tree) bool {
	net := t.net
	for _, id := range t.members {
		kids := t.children[id]
		if len(kids) == 0 {
			continue
		}
		n := net.nodes[id]
		for s := 0; s < net.numSamples; s++ {
			sum, margin := 0.0, 0.0
			for _, c := range kids {
				child := net.nodes[c]
				if child.IsLeaf() {
					continue
				}
				sum += child.AAF(s)
				margin += Margin(r.cfg, n, child, s)
			}
			if sum > n.AAF(s)+margin {
				return false
			}
		}
	}
	return true
}

// Score is the tree's error score
func (r *Ranker) Score(t *Tree) float64 { return t.ErrorScore() }

// Sort orders trees by ascending error score in place. The relative order of
// trees with equal scores is unspecified.
func (r *Ranker) Sort(trees []*Tree) {
	sort.SliceStable(trees, func(i, j int) bool {
		return trees[i].ErrorScore() < trees[j].ErrorScore()
	})
}

// Rank returns the admitted trees, best first, and the number rejected
func (r *Ranker) Rank(trees []*Tree) ([]*Tree, int) {
	kept := make([]*Tree, 0, len(trees))
	for _, t := range trees {
		if r.Admit(t) {
			kept = append(kept, t)
		}
	}
	r.Sort(kept)
	return kept, len(trees) - len(kept)
}
