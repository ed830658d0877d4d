package fusion

import "github.com/born-ml/fusion/internal/ir"

// IsFusionGroupOp reports whether n is an operator a fused kernel can be
// generated for, regardless of its category: all inputs and outputs are
// dense tensors, the inputs share one floating type and the outputs share
// one floating type. Input and output types may differ.
//
// An operator without inputs is decided by its outputs alone. Missing
// metadata anywhere makes the operator ineligible.
func IsFusionGroupOp(n ir.Node) bool {
	return checkEligible(n) == Accepted
}

func checkEligible(n ir.Node) Reason {
	op, reason := operatorOf(n)
	if reason != Accepted {
		return reason
	}
	if len(op.Outputs()) == 0 {
		return ReasonNoOutputs
	}

	inType, reason := commonDenseType(op.Inputs(), ReasonMixedInputTypes)
	if reason != Accepted {
		return reason
	}
	outType, reason := commonDenseType(op.Outputs(), ReasonMixedOutputTypes)
	if reason != Accepted {
		return reason
	}

	// No inputs leaves nothing to check on that side.
	if len(op.Inputs()) > 0 && !inType.IsFloat() {
		return ReasonNonFloat
	}
	if !outType.IsFloat() {
		return ReasonNonFloat
	}
	return Accepted
}

// operatorOf returns n as a metadata-bearing operator.
func operatorOf(n ir.Node) (*ir.Operator, Reason) {
	if n == nil || n.Kind() != ir.NodeOperator {
		return nil, ReasonNotOperator
	}
	op, ok := ir.AsOperator(n)
	if !ok {
		return nil, ReasonMissingMetadata
	}
	return op, Accepted
}

// commonDenseType checks that every node is a dense tensor variable and that
// they all share one element type, which it returns.
func commonDenseType(nodes []ir.Node, mixed Reason) (ir.DataType, Reason) {
	dtype := ir.Unknown
	for i, n := range nodes {
		desc, ok := ir.VarDescOf(n)
		if !ok {
			return ir.Unknown, ReasonMissingMetadata
		}
		if desc.Kind != ir.DenseTensor {
			return ir.Unknown, ReasonNotDense
		}
		if i == 0 {
			dtype = desc.DType
		} else if desc.DType != dtype {
			return ir.Unknown, mixed
		}
	}
	return dtype, Accepted
}
