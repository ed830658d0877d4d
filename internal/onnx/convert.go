package onnx

import (
	"fmt"

	"github.com/born-ml/fusion/internal/ir"
	"github.com/pkg/errors"
)

// LoadGraph parses an ONNX file and converts its graph to the IR.
func LoadGraph(path string) (*ir.Graph, error) {
	model, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	g, err := ToGraph(model)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to convert %s", path)
	}
	return g, nil
}

// ToGraph converts a parsed model into an ir.Graph.
//
// Values with type information become variables with metadata: graph
// inputs, initializers, value_info entries and graph outputs, in that
// order, first declaration wins. Values referenced by nodes without any
// type information become variables without metadata. Symbolic or missing
// dimensions become -1.
func ToGraph(model *ModelProto) (*ir.Graph, error) {
	if model == nil || model.Graph == nil {
		return nil, errors.New("model has no graph")
	}
	src := model.Graph
	g := ir.NewGraph(src.Name)

	declare := func(name string, desc *ir.VarDesc) error {
		if name == "" {
			return nil
		}
		if _, exists := g.Variable(name); exists {
			return nil
		}
		_, err := g.AddVariable(name, desc)
		return err
	}

	for i := range src.Inputs {
		if err := declare(src.Inputs[i].Name, valueInfoDesc(&src.Inputs[i])); err != nil {
			return nil, err
		}
	}
	for i := range src.Initializers {
		if err := declare(src.Initializers[i].Name, initializerDesc(&src.Initializers[i])); err != nil {
			return nil, err
		}
	}
	for i := range src.ValueInfo {
		if err := declare(src.ValueInfo[i].Name, valueInfoDesc(&src.ValueInfo[i])); err != nil {
			return nil, err
		}
	}
	for i := range src.Outputs {
		if err := declare(src.Outputs[i].Name, valueInfoDesc(&src.Outputs[i])); err != nil {
			return nil, err
		}
	}

	for i := range src.Nodes {
		node := &src.Nodes[i]
		if node.OpType == "" {
			return nil, errors.Errorf("node %d (%s) has no op_type", i, node.Name)
		}
		inputs, err := resolveValues(g, node.Inputs)
		if err != nil {
			return nil, err
		}
		outputs, err := resolveValues(g, node.Outputs)
		if err != nil {
			return nil, err
		}
		name := node.Name
		if name == "" {
			name = fmt.Sprintf("%s_%d", node.OpType, i)
		}
		g.AddOperator(name, &ir.OpDesc{Type: node.OpType, Attrs: domainAttrs(node)}, inputs, outputs)
	}
	return g, nil
}

// resolveValues maps value names to variables, creating metadata-less
// variables for names never declared. Omitted optional inputs are dropped.
func resolveValues(g *ir.Graph, names []string) ([]ir.Node, error) {
	nodes := make([]ir.Node, 0, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		v, ok := g.Variable(name)
		if !ok {
			var err error
			if v, err = g.AddVariable(name, nil); err != nil {
				return nil, err
			}
		}
		nodes = append(nodes, v)
	}
	return nodes, nil
}

func domainAttrs(node *NodeProto) map[string]string {
	if node.Domain == "" {
		return nil
	}
	return map[string]string{"domain": node.Domain}
}

func initializerDesc(t *TensorProto) *ir.VarDesc {
	return &ir.VarDesc{
		Kind:        ir.DenseTensor,
		DType:       protoTypeToDataType(t.DataType),
		Shape:       ir.Shape(append([]int64(nil), t.Dims...)),
		Persistable: true,
	}
}

// valueInfoDesc returns nil when the value carries no type information.
func valueInfoDesc(vi *ValueInfoProto) *ir.VarDesc {
	if vi.Type == nil {
		return nil
	}
	switch {
	case vi.Type.TensorType != nil:
		return tensorTypeDesc(ir.DenseTensor, vi.Type.TensorType)
	case vi.Type.SparseTensorType != nil:
		return tensorTypeDesc(ir.SparseTensor, vi.Type.SparseTensorType)
	case vi.Type.SequenceType != nil:
		return &ir.VarDesc{Kind: ir.TensorArray, DType: ir.Unknown}
	default:
		return &ir.VarDesc{Kind: ir.OtherKind, DType: ir.Unknown}
	}
}

func tensorTypeDesc(kind ir.TensorKind, tt *TensorTypeProto) *ir.VarDesc {
	desc := &ir.VarDesc{Kind: kind, DType: protoTypeToDataType(tt.ElemType)}
	if tt.Shape == nil {
		return desc
	}
	desc.Shape = make(ir.Shape, len(tt.Shape.Dims))
	for i, d := range tt.Shape.Dims {
		if d.HasValue && d.DimParam == "" {
			desc.Shape[i] = d.DimValue
		} else {
			desc.Shape[i] = -1
		}
	}
	return desc
}

// protoTypeToDataType converts ONNX data type to ir.DataType.
func protoTypeToDataType(onnxType int32) ir.DataType {
	switch onnxType {
	case TensorProtoFloat:
		return ir.Float32
	case TensorProtoFloat16:
		return ir.Float16
	case TensorProtoDouble:
		return ir.Float64
	case TensorProtoBfloat16:
		return ir.BFloat16
	case TensorProtoInt8:
		return ir.Int8
	case TensorProtoInt16:
		return ir.Int16
	case TensorProtoInt32:
		return ir.Int32
	case TensorProtoInt64:
		return ir.Int64
	case TensorProtoUint8:
		return ir.Uint8
	case TensorProtoBool:
		return ir.Bool
	default:
		return ir.Unknown
	}
}
