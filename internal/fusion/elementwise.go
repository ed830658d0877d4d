package fusion

import (
	"github.com/born-ml/fusion/internal/ir"
	"github.com/born-ml/fusion/internal/registry"
)

// ElementwiseClassifier decides whether an operator computes each output
// element from input elements at the same index.
type ElementwiseClassifier struct {
	types registry.TypeSet
}

// NewElementwiseClassifier creates a classifier over a resolved set of
// elementwise operator types, usually registry.Find(registry.Elementwise).
func NewElementwiseClassifier(types registry.TypeSet) *ElementwiseClassifier {
	return &ElementwiseClassifier{types: types}
}

// Types returns the elementwise operator types the classifier accepts.
func (c *ElementwiseClassifier) Types() registry.TypeSet {
	return c.types
}

// IsElementwiseOp reports whether n is a registered elementwise operator
// whose inputs all have the same known shape. Broadcasting between inputs is
// not supported. Output shapes are not inspected.
func (c *ElementwiseClassifier) IsElementwiseOp(n ir.Node) bool {
	return c.check(n) == Accepted
}

func (c *ElementwiseClassifier) check(n ir.Node) Reason {
	op, reason := operatorOf(n)
	if reason != Accepted {
		return reason
	}
	if len(op.Outputs()) == 0 {
		return ReasonNoOutputs
	}
	opType, _ := op.Type()
	if !c.types.Contains(opType) {
		return ReasonNotElementwise
	}

	var first ir.Shape
	for i, in := range op.Inputs() {
		desc, ok := ir.VarDescOf(in)
		if !ok {
			return ReasonMissingMetadata
		}
		if desc.Shape.IsEmpty() {
			return ReasonUnknownShape
		}
		if i == 0 {
			first = desc.Shape
		} else if !first.Equal(desc.Shape) {
			return ReasonShapeMismatch
		}
	}
	return Accepted
}
