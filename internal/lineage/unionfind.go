package lineage

// UnionFind implements union-find over node ids with path compression and union by rank
type UnionFind struct {
	parent []NodeID
	rank   []int
	size   []int
}

// NewUnionFind creates a UnionFind where each of the n nodes is its own component
func NewUnionFind(n int) *UnionFind {
	uf := &UnionFind{
		parent: make([]NodeID, n),
		rank:   make([]int, n),
		size:   make([]int, n),
	}
	for i := range uf.parent {
		uf.parent[i] = NodeID(i)
		uf.size[i] = 1
	}
	return uf
}

// Find returns the representative of id's component, with path compression
func (uf *UnionFind) Find(id NodeID) NodeID {
	if p := uf.parent[id]; p != id {
		root := uf.Find(p)
		uf.parent[id] = root
		return root
	}
	return id
}

// Union merges the components containing a and b. Returns true if they were separate.
func (uf *UnionFind) Union(a, b NodeID) bool {
	rootA := uf.Find(a)
	rootB := uf.Find(b)
	if rootA == rootB {
		return false
	}

	switch {
	case uf.rank[rootA] < uf.rank[rootB]:
		uf.parent[rootA] = rootB
		uf.size[rootB] += uf.size[rootA]
	case uf.rank[rootA] > uf.rank[rootB]:
		uf.parent[rootB] = rootA
		uf.size[rootA] += uf.size[rootB]
	default:
		uf.parent[rootB] = rootA
		uf.size[rootA] += uf.size[rootB]
		uf.rank[rootA]++
	}
	return true
}

// Size returns the number of nodes in id's component
func (uf *UnionFind) Size(id NodeID) int {
	return uf.size[uf.Find(id)]
}

// Components returns every component as a list of node ids, ordered by smallest member
func (uf *UnionFind) Components() [][]NodeID {
	index := make(map[NodeID]int)
	var result [][]NodeID
	for i := range uf.parent {
		root := uf.Find(NodeID(i))
		k, ok := index[root]
		if !ok {
			k = len(result)
			index[root] = k
			result = append(result, nil)
		}
		result[k] = append(result[k], NodeID(i))
	}
	return result
}
