package fusion

import (
	"fmt"
	"testing"

	"github.com/born-ml/fusion/internal/ir"
	"github.com/stretchr/testify/require"
)

// singleOp builds a graph holding one operator whose inputs and outputs are
// described by ins and outs. A nil description yields a metadata-less variable.
func singleOp(t *testing.T, opType string, ins, outs []*ir.VarDesc) *ir.Operator {
	t.Helper()
	g := ir.NewGraph("single")

	declare := func(prefix string, descs []*ir.VarDesc) []ir.Node {
		nodes := make([]ir.Node, len(descs))
		for i, d := range descs {
			v, err := g.AddVariable(fmt.Sprintf("%s%d", prefix, i), d)
			require.NoError(t, err)
			nodes[i] = v
		}
		return nodes
	}

	return g.AddOperator("op", &ir.OpDesc{Type: opType}, declare("x", ins), declare("y", outs))
}

func descs(d ...*ir.VarDesc) []*ir.VarDesc { return d }
