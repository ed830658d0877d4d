package fusion

import (
	"strings"

	"github.com/born-ml/fusion/internal/ir"
	"github.com/born-ml/fusion/internal/registry"
	"github.com/pkg/errors"
)

// ErrNotOperator is returned when an operator without metadata is passed
// where an operator type is required.
var ErrNotOperator = errors.New("not an operator node")

// HasGradSuffix reports whether opType names a backward operator.
// The match is case-sensitive and only the "_grad" suffix is recognized.
func HasGradSuffix(opType string) bool {
	return strings.HasSuffix(opType, registry.GradSuffix)
}

// IsGradOp reports whether op is a backward operator. A nil operator or one
// without metadata yields an error wrapping ErrNotOperator.
func IsGradOp(op *ir.Operator) (bool, error) {
	if op == nil {
		return false, errors.Wrap(ErrNotOperator, "nil operator")
	}
	opType, ok := op.Type()
	if !ok {
		return false, errors.Wrapf(ErrNotOperator, "operator %s has no metadata", op.Name())
	}
	return HasGradSuffix(opType), nil
}
