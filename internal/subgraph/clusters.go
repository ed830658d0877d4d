package subgraph

import "github.com/born-ml/fusion/internal/ir"

// clusters is a union-find over predicate-satisfying operators. Operators
// are addressed by their topological index, so in an acyclic graph every
// edge runs from a lower index to a higher one.
type clusters struct {
	ops    []*ir.Operator
	succ   [][]int // distinct successors per operator
	parent []int   // -1 for non-members

	// Per root: highest member index and successors that may lie outside
	// the cluster. out is compacted lazily by the cycle check.
	maxIdx []int
	out    [][]int

	// BFS scratch space, reused across cycle checks.
	mark  []int
	epoch int
	queue []int
}

func newClusters(g *ir.Graph, order []*ir.Operator) *clusters {
	n := len(order)
	index := make(map[*ir.Operator]int, n)
	for i, op := range order {
		index[op] = i
	}

	c := &clusters{
		ops:    order,
		succ:   make([][]int, n),
		parent: make([]int, n),
		maxIdx: make([]int, n),
		out:    make([][]int, n),
		mark:   make([]int, n),
	}
	for i, op := range order {
		c.parent[i] = -1
		for _, s := range g.Successors(op) {
			if j, ok := index[s]; ok {
				c.succ[i] = append(c.succ[i], j)
			}
		}
	}
	return c
}

func (c *clusters) add(i int) {
	c.parent[i] = i
	c.maxIdx[i] = i
	c.out[i] = append([]int(nil), c.succ[i]...)
}

func (c *clusters) contains(i int) bool {
	return c.parent[i] >= 0
}

func (c *clusters) find(i int) int {
	root := i
	for c.parent[root] != root {
		root = c.parent[root]
	}
	// Path compression.
	for i != root {
		next := c.parent[i]
		c.parent[i] = root
		i = next
	}
	return root
}

// tryMerge joins the clusters of a and b unless doing so would create a
// cycle. It reports whether the clusters are joined afterwards.
func (c *clusters) tryMerge(a, b int) bool {
	ra, rb := c.find(a), c.find(b)
	if ra == rb {
		return true
	}
	if c.createsCycle(ra, rb) {
		return false
	}
	// The root with the smaller index survives.
	if rb < ra {
		ra, rb = rb, ra
	}
	c.parent[rb] = ra
	c.maxIdx[ra] = max(c.maxIdx[ra], c.maxIdx[rb])
	if len(c.out[ra]) < len(c.out[rb]) {
		c.out[ra], c.out[rb] = c.out[rb], c.out[ra]
	}
	c.out[ra] = append(c.out[ra], c.out[rb]...)
	c.out[rb] = nil
	return true
}

// createsCycle reports whether some path leaves the union of the two
// clusters through an outside operator and comes back into it. Such a path
// ends at a member, so it never visits an index above the union's highest
// member index; the search is cut off there.
func (c *clusters) createsCycle(ra, rb int) bool {
	limit := max(c.maxIdx[ra], c.maxIdx[rb])
	inUnion := func(i int) bool {
		if !c.contains(i) {
			return false
		}
		r := c.find(i)
		return r == ra || r == rb
	}

	c.epoch++
	c.queue = c.queue[:0]
	for _, r := range [2]int{ra, rb} {
		kept := c.out[r][:0]
		for _, s := range c.out[r] {
			if c.contains(s) && c.find(s) == r {
				continue
			}
			kept = append(kept, s)
			if s < limit && !inUnion(s) && c.mark[s] != c.epoch {
				c.mark[s] = c.epoch
				c.queue = append(c.queue, s)
			}
		}
		c.out[r] = kept
	}

	for head := 0; head < len(c.queue); head++ {
		for _, s := range c.succ[c.queue[head]] {
			if s > limit {
				continue
			}
			if inUnion(s) {
				return true
			}
			if c.mark[s] != c.epoch {
				c.mark[s] = c.epoch
				c.queue = append(c.queue, s)
			}
		}
	}
	return false
}
