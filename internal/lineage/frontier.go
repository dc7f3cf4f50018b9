package lineage

// frontier is the stack of edges leaving the partial tree. Removals are
// returned as an undo log so backtracking can put every edge back at its
// original position.
type frontier struct {
	edges []Edge
}

type removal struct {
	index int
	edge  Edge
}

func (f *frontier) len() int { return len(f.edges) }

func (f *frontier) push(e Edge) { f.edges = append(f.edges, e) }

func (f *frontier) pop() Edge {
	e := f.edges[len(f.edges)-1]
	f.edges = f.edges[:len(f.edges)-1]
	return e
}

// truncate drops everything pushed after the stack had length n
func (f *frontier) truncate(n int) { f.edges = f.edges[:n] }

// removeInto deletes every edge entering v. The log is ordered by index.
func (f *frontier) removeInto(v NodeID) []removal {
	var log []removal
	kept := f.edges[:0]
	for i, e := range f.edges {
		if e.To == v {
			log = append(log, removal{index: i, edge: e})
			continue
		}
		kept = append(kept, e)
	}
	f.edges = kept
	return log
}

// restore undoes removeInto. The stack must be in the state removeInto left it.
func (f *frontier) restore(log []removal) {
	for _, r := range log {
		f.edges = append(f.edges, Edge{})
		copy(f.edges[r.index+1:], f.edges[r.index:])
		f.edges[r.index] = r.edge
	}
}
