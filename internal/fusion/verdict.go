package fusion

import (
	"fmt"

	"github.com/born-ml/fusion/internal/ir"
)

// Reason explains why an operator was kept out of a fusion group.
// The empty Reason means the operator was accepted.
type Reason string

// Rejection reasons, in the order the checks run.
const (
	Accepted               Reason = ""
	ReasonNotOperator      Reason = "not_operator"
	ReasonMissingMetadata  Reason = "missing_metadata"
	ReasonNoOutputs        Reason = "no_outputs"
	ReasonNotDense         Reason = "not_dense"
	ReasonMixedInputTypes  Reason = "mixed_input_types"
	ReasonMixedOutputTypes Reason = "mixed_output_types"
	ReasonNonFloat         Reason = "non_float"
	ReasonNotElementwise   Reason = "not_elementwise"
	ReasonUnknownShape     Reason = "unknown_shape"
	ReasonShapeMismatch    Reason = "shape_mismatch"
	ReasonGradOp           Reason = "grad_op"
)

// Verdict is the outcome of classifying one node.
type Verdict struct {
	Node   string `yaml:"node"`
	Type   string `yaml:"type"`
	Reason Reason `yaml:"reason"`
}

// Accepted reports whether the node may join a fusion group.
func (v Verdict) Accepted() bool {
	return v.Reason == Accepted
}

// String formats the verdict for diagnostics.
func (v Verdict) String() string {
	if v.Accepted() {
		return fmt.Sprintf("%s (%s): accepted", v.Node, v.Type)
	}
	return fmt.Sprintf("%s (%s): rejected: %s", v.Node, v.Type, v.Reason)
}

func newVerdict(n ir.Node, reason Reason) Verdict {
	v := Verdict{Reason: reason}
	switch node := n.(type) {
	case *ir.Operator:
		if node != nil {
			v.Node = node.Name()
			v.Type, _ = node.Type()
		}
	case *ir.Variable:
		if node != nil {
			v.Node = node.Name()
		}
	}
	return v
}
