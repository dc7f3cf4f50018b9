package lineage

// SearchStats summarizes one enumeration
type SearchStats struct {
	Trees     int  `json:"trees"`
	Calls     int  `json:"calls"`
	Truncated bool `json:"truncated"` // a MaxTrees or MaxSearchCalls budget was hit
	Stopped   bool `json:"stopped"`   // the visitor asked to stop
}

// Enumerator lists every spanning tree of a network rooted at its root, using
// the grow/backtrack scheme of Gabow and Myers. Each tree is produced once.
//
// State during the search:
//   - the partial tree T (inTree, parent, members)
//   - the frontier F of edges from T to nodes outside it
//   - the residual graph G, the network edges not yet excluded at this point of the search
//   - the last completed tree L, consulted by the bridge test
//
// An Enumerator is not safe for concurrent use.
type Enumerator struct {
	net *Network
	cfg Config
	n   int

	g       []bool // residual edge presence, n*n
	f       frontier
	inTree  []bool
	parent  []NodeID
	members []NodeID
	last    []NodeID

	visit   func(*Tree) bool
	stats   SearchStats
	stopped bool
}

// NewEnumerator prepares a search over net honoring the budgets in cfg
func NewEnumerator(net *Network, cfg Config) *Enumerator {
	return &Enumerator{net: net, cfg: cfg, n: net.NumNodes()}
}

func (en *Enumerator) reset() {
	n := en.n
	en.g = make([]bool, n*n)
	for _, e := range en.net.Edges() {
		en.g[en.key(e)] = true
	}
	en.f = frontier{}
	en.inTree = make([]bool, n)
	en.parent = make([]NodeID, n)
	en.last = make([]NodeID, n)
	for i := range en.parent {
		en.parent[i] = NoNode
		en.last[i] = NoNode
	}
	en.members = en.members[:0]
	en.stats = SearchStats{}
	en.stopped = false
}

func (en *Enumerator) key(e Edge) int { return int(e.From)*en.n + int(e.To) }

// Enumerate calls visit for each spanning tree until visit returns false or a
// budget is exhausted. Trees passed to visit are independent snapshots.
func (en *Enumerator) Enumerate(visit func(*Tree) bool) SearchStats {
	en.reset()
	en.visit = visit
	if en.n == 0 {
		return en.stats
	}

	root := en.net.Root().ID
	en.inTree[root] = true
	en.members = append(en.members, root)
	for _, c := range en.net.Children(root) {
		en.f.push(Edge{root, c})
	}

	en.grow()

	en.visit = nil
	return en.stats
}

// All collects every spanning tree
func (en *Enumerator) All() ([]*Tree, SearchStats) {
	var trees []*Tree
	stats := en.Enumerate(func(t *Tree) bool {
		trees = append(trees, t)
		return true
	})
	return trees, stats
}

func (en *Enumerator) grow() {
	en.stats.Calls++
	if en.cfg.MaxSearchCalls > 0 && en.stats.Calls > en.cfg.MaxSearchCalls {
		en.stopped = true
		en.stats.Truncated = true
		return
	}

	if len(en.members) == en.n {
		// Budget spent and a further tree exists
		if en.cfg.MaxTrees > 0 && en.stats.Trees >= en.cfg.MaxTrees {
			en.stopped = true
			en.stats.Truncated = true
			return
		}
		copy(en.last, en.parent)
		en.stats.Trees++
		if en.visit != nil && !en.visit(newTree(en.net, en.members, en.parent)) {
			en.stopped = true
			en.stats.Stopped = true
		}
		return
	}

	var explored []Edge
	for en.f.len() > 0 {
		e := en.f.pop()
		v := e.To

		// Claim v through e
		en.inTree[v] = true
		en.parent[v] = e.From
		en.members = append(en.members, v)

		// Edges out of v become reachable
		mark := en.f.len()
		for _, w := range en.net.Children(v) {
			if !en.inTree[w] && en.g[en.key(Edge{v, w})] {
				en.f.push(Edge{v, w})
			}
		}
		// No other parent may claim v below this point
		removed := en.f.removeInto(v)

		en.grow()

		en.f.restore(removed)
		en.f.truncate(mark)

		en.members = en.members[:len(en.members)-1]
		en.parent[v] = NoNode
		en.inTree[v] = false

		// e is exhausted at this position
		en.g[en.key(e)] = false
		explored = append(explored, e)

		if en.stopped || en.isBridge(v) {
			break
		}
	}

	for i := len(explored) - 1; i >= 0; i-- {
		e := explored[i]
		en.g[en.key(e)] = true
		en.f.push(e)
	}
}

// isBridge reports whether no tree extending the current partial tree can
// still reach v: every remaining edge (w,v) comes from a descendant of v in
// the last completed tree.
func (en *Enumerator) isBridge(v NodeID) bool {
	for _, w := range en.net.Parents(v) {
		if en.g[en.key(Edge{w, v})] && !descends(en.last, v, w) {
			return false
		}
	}
	return true
}

// restored reports whether the search state is back to its initial form
func (en *Enumerator) restored() bool {
	for _, e := range en.net.Edges() {
		if !en.g[en.key(e)] {
			return false
		}
	}
	count := 0
	for _, present := range en.g {
		if present {
			count++
		}
	}
	if count != en.net.NumEdges() {
		return false
	}
	root := en.net.Root().ID
	kids := en.net.Children(root)
	if en.f.len() != len(kids) {
		return false
	}
	for i, c := range kids {
		if en.f.edges[i] != (Edge{root, c}) {
			return false
		}
	}
	return len(en.members) == 1
}
