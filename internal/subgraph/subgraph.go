// Package subgraph extracts maximal connected groups of operators that
// satisfy a predicate.
//
// The extractor is category-agnostic: a fusion pass supplies the predicate
// that decides membership, and the extractor decides connectivity. Two
// satisfying operators are adjacent when a variable produced by one is
// consumed by the other. Operators failing the predicate are never members,
// so they always split a chain.
//
// Groups are safe to fuse: the extractor never merges two groups if some
// path between them passes through an operator outside the merged group,
// since fusing them would introduce a cycle.
//
// Output is deterministic. Operators are visited in the graph's topological
// order, members of a group keep that order, and groups are ordered by the
// position of their first member.
package subgraph

import "github.com/born-ml/fusion/internal/ir"

// Predicate decides whether an operator may join a group.
type Predicate func(op *ir.Operator) bool

// Group is an ordered, non-empty set of operators.
type Group []*ir.Operator

// Names returns the names of the group's operators.
func (g Group) Names() []string {
	names := make([]string, len(g))
	for i, op := range g {
		names[i] = op.Name()
	}
	return names
}

// Extractor turns a predicate into maximal groups.
type Extractor interface {
	Extract(g *ir.Graph, pred Predicate) []Group
}

// Options configures a Detector.
type Options struct {
	// MinGroupSize drops groups with fewer members. Values below 1 are
	// treated as 1, which reports singleton groups.
	MinGroupSize int
}

// DefaultOptions returns the default extraction policy: groups of at least
// two operators, since a single operator gains nothing from fusion.
func DefaultOptions() Options {
	return Options{MinGroupSize: 2}
}

// Detector is the default Extractor.
type Detector struct {
	opts Options
}

// New creates a Detector.
func New(opts Options) *Detector {
	if opts.MinGroupSize < 1 {
		opts.MinGroupSize = 1
	}
	return &Detector{opts: opts}
}

// MinGroupSize returns the effective minimum group size.
func (d *Detector) MinGroupSize() int {
	return d.opts.MinGroupSize
}

// Extract returns the maximal groups of operators satisfying pred.
// The predicate is evaluated once per operator.
func (d *Detector) Extract(g *ir.Graph, pred Predicate) []Group {
	order := g.TopologicalOperators()

	c := newClusters(g, order)
	for i, op := range order {
		if pred(op) {
			c.add(i)
		}
	}

	for i := range order {
		if !c.contains(i) {
			continue
		}
		for _, s := range c.succ[i] {
			if c.contains(s) {
				c.tryMerge(i, s)
			}
		}
	}

	var groups []Group
	index := make(map[int]int)
	for i, op := range order {
		if !c.contains(i) {
			continue
		}
		root := c.find(i)
		k, ok := index[root]
		if !ok {
			k = len(groups)
			index[root] = k
			groups = append(groups, nil)
		}
		groups[k] = append(groups[k], op)
	}

	result := groups[:0]
	for _, grp := range groups {
		if len(grp) >= d.opts.MinGroupSize {
			result = append(result, grp)
		}
	}
	return result
}
