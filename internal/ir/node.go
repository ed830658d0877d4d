package ir

// NodeKind distinguishes operator nodes from variable nodes.
type NodeKind int

// Node kinds.
const (
	NodeOperator NodeKind = iota
	NodeVariable
)

// String returns the kind name.
func (k NodeKind) String() string {
	if k == NodeOperator {
		return "operator"
	}
	return "variable"
}

// Node is a vertex of a Graph: either an *Operator or a *Variable.
type Node interface {
	ID() int
	Name() string
	Kind() NodeKind
}

// OpDesc holds operator metadata.
type OpDesc struct {
	Type  string            // Operator type (e.g., "elementwise_add", "Relu")
	Attrs map[string]string // Free-form attributes, informational only
}

// VarDesc holds variable metadata.
type VarDesc struct {
	Kind        TensorKind
	DType       DataType
	Shape       Shape
	Persistable bool // Weights and other long-lived state
}

// Operator is a computation node. Its inputs and outputs are variables in
// well-formed graphs; consumers must still tolerate nil or non-variable
// entries when reading graphs produced elsewhere.
type Operator struct {
	id      int
	name    string
	desc    *OpDesc
	inputs  []Node
	outputs []Node
}

// ID returns the node's position in its graph.
func (o *Operator) ID() int { return o.id }

// Name returns the node name.
func (o *Operator) Name() string { return o.name }

// Kind returns NodeOperator.
func (o *Operator) Kind() NodeKind { return NodeOperator }

// Desc returns the operator metadata, or nil when it is missing.
func (o *Operator) Desc() *OpDesc { return o.desc }

// Type returns the operator type. ok is false when metadata is missing.
func (o *Operator) Type() (string, bool) {
	if o == nil || o.desc == nil {
		return "", false
	}
	return o.desc.Type, true
}

// Inputs returns the ordered input nodes.
func (o *Operator) Inputs() []Node { return o.inputs }

// Outputs returns the ordered output nodes.
func (o *Operator) Outputs() []Node { return o.outputs }

// Variable is a tensor value flowing between operators.
type Variable struct {
	id        int
	name      string
	desc      *VarDesc
	producers []*Operator
	consumers []*Operator
}

// ID returns the node's position in its graph.
func (v *Variable) ID() int { return v.id }

// Name returns the variable name.
func (v *Variable) Name() string { return v.name }

// Kind returns NodeVariable.
func (v *Variable) Kind() NodeKind { return NodeVariable }

// Desc returns the variable metadata, or nil when it is missing.
func (v *Variable) Desc() *VarDesc { return v.desc }

// Producers returns the operators writing this variable, in insertion order.
func (v *Variable) Producers() []*Operator { return v.producers }

// Consumers returns the operators reading this variable, in insertion order.
func (v *Variable) Consumers() []*Operator { return v.consumers }

// VarDescOf returns the metadata of n when n is a variable that carries it.
// ok is false for nil nodes, operators and metadata-less variables.
func VarDescOf(n Node) (*VarDesc, bool) {
	v, isVar := n.(*Variable)
	if !isVar || v == nil || v.desc == nil {
		return nil, false
	}
	return v.desc, true
}

// AsOperator returns n as an *Operator carrying metadata.
func AsOperator(n Node) (*Operator, bool) {
	op, isOp := n.(*Operator)
	if !isOp || op == nil || op.desc == nil {
		return nil, false
	}
	return op, true
}
