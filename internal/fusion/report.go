package fusion

import (
	"github.com/born-ml/fusion/internal/ir"
)

// Report summarizes one detection run over a graph.
type Report struct {
	Graph     string     `yaml:"graph"`
	Operators int        `yaml:"operators"`
	Groups    [][]string `yaml:"groups"`
	Fused     int        `yaml:"fused"`
	Rejected  []Verdict  `yaml:"rejected,omitempty"`
}

// Analyze runs Detect on g and collects the result. With explain set the
// report also lists every rejected operator in topological order.
func (d *ElementwiseGroupDetector) Analyze(g *ir.Graph, explain bool) Report {
	groups := d.Detect(g)

	r := Report{
		Graph:     g.Name,
		Operators: len(g.Operators()),
		Groups:    make([][]string, 0, len(groups)),
	}
	for _, grp := range groups {
		r.Groups = append(r.Groups, grp.Names())
		r.Fused += len(grp)
	}
	if explain {
		for _, op := range g.TopologicalOperators() {
			if v := d.Explain(op); !v.Accepted() {
				r.Rejected = append(r.Rejected, v)
			}
		}
	}
	return r
}
