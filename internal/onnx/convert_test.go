package onnx

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/born-ml/fusion/internal/ir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildMLPBlock creates Y = Sigmoid(Relu(MatMul(X, W) + B)) with typed
// intermediate values.
func buildMLPBlock() []byte {
	g := &testGraph{
		name: "mlp",
		nodes: [][]byte{
			buildNode("matmul", "MatMul", []string{"X", "W"}, []string{"h0"}),
			buildNode("add", "Add", []string{"h0", "B"}, []string{"h1"}),
			buildNode("", "Relu", []string{"h1"}, []string{"h2"}),
			buildNode("sigmoid", "Sigmoid", []string{"h2"}, []string{"Y"}),
		},
		inits: [][]byte{
			buildTensorProto("W", TensorProtoFloat, []int64{784, 128}, true),
			buildTensorProto("B", TensorProtoFloat, []int64{1, 128}, false),
		},
		inputs:  [][]byte{buildValueInfo("X", TensorProtoFloat, []int64{1, 784})},
		outputs: [][]byte{buildValueInfo("Y", TensorProtoFloat, []int64{1, 128})},
		valueInfo: [][]byte{
			buildValueInfo("h0", TensorProtoFloat, []int64{1, 128}),
			buildValueInfo("h1", TensorProtoFloat, []int64{1, 128}),
			buildValueInfo("h2", TensorProtoFloat, []int64{1, 128}),
		},
	}
	return buildModel(g.bytes())
}

func TestToGraph(t *testing.T) {
	model, err := Parse(buildMLPBlock())
	require.NoError(t, err)

	g, err := ToGraph(model)
	require.NoError(t, err)

	assert.Equal(t, "mlp", g.Name)
	require.Len(t, g.Operators(), 4)

	ops := g.Operators()
	assert.Equal(t, "matmul", ops[0].Name())
	assert.Equal(t, "Relu_2", ops[2].Name(), "unnamed nodes are named after type and index")

	opType, ok := ops[1].Type()
	require.True(t, ok)
	assert.Equal(t, "Add", opType)
	assert.Len(t, ops[1].Inputs(), 2)

	w, ok := g.Variable("W")
	require.True(t, ok)
	require.NotNil(t, w.Desc())
	assert.True(t, w.Desc().Persistable)
	assert.Equal(t, ir.Shape{784, 128}, w.Desc().Shape)
	assert.Equal(t, ir.Float32, w.Desc().DType)

	h1, ok := g.Variable("h1")
	require.True(t, ok)
	require.NotNil(t, h1.Desc())
	assert.Equal(t, ir.DenseTensor, h1.Desc().Kind)
	assert.Equal(t, []string{"add"}, []string{h1.Producers()[0].Name()})
	assert.Equal(t, "Relu_2", h1.Consumers()[0].Name())
}

func TestToGraphMissingTypeInfo(t *testing.T) {
	g := &testGraph{
		name: "untyped",
		nodes: [][]byte{
			buildNode("a", "Relu", []string{"X"}, []string{"t"}),
			buildNode("b", "Relu", []string{"t"}, []string{"Y"}),
		},
		inputs:  [][]byte{buildValueInfo("X", TensorProtoFloat, []int64{2})},
		outputs: [][]byte{buildUntypedValueInfo("Y")},
	}
	model, err := Parse(buildModel(g.bytes()))
	require.NoError(t, err)

	graph, err := ToGraph(model)
	require.NoError(t, err)

	tv, ok := graph.Variable("t")
	require.True(t, ok)
	assert.Nil(t, tv.Desc(), "values never typed have no metadata")

	y, ok := graph.Variable("Y")
	require.True(t, ok)
	assert.Nil(t, y.Desc())
}

func TestToGraphTypeMapping(t *testing.T) {
	g := &testGraph{
		name: "types",
		inputs: [][]byte{
			buildValueInfo("half", TensorProtoFloat16, []int64{2, -1}),
			buildValueInfo("double", TensorProtoDouble, nil),
			buildValueInfo("bf", TensorProtoBfloat16, []int64{2}),
			buildValueInfo("idx", TensorProtoInt64, []int64{2}),
			buildValueInfoWithType("sparse", 8, buildTensorType(TensorProtoFloat, []int64{4})),
			buildValueInfoWithType("seq", 4, []byte{}),
		},
	}
	model, err := Parse(buildModel(g.bytes()))
	require.NoError(t, err)
	graph, err := ToGraph(model)
	require.NoError(t, err)

	desc := func(name string) *ir.VarDesc {
		v, ok := graph.Variable(name)
		require.True(t, ok, name)
		require.NotNil(t, v.Desc(), name)
		return v.Desc()
	}

	assert.Equal(t, ir.Float16, desc("half").DType)
	assert.Equal(t, ir.Shape{2, -1}, desc("half").Shape)
	assert.Equal(t, ir.Float64, desc("double").DType)
	assert.True(t, desc("double").Shape.IsEmpty(), "missing shape means unknown rank")
	assert.Equal(t, ir.BFloat16, desc("bf").DType)
	assert.Equal(t, ir.Int64, desc("idx").DType)
	assert.Equal(t, ir.SparseTensor, desc("sparse").Kind)
	assert.Equal(t, ir.Float32, desc("sparse").DType)
	assert.Equal(t, ir.TensorArray, desc("seq").Kind)
}

func TestToGraphFirstDeclarationWins(t *testing.T) {
	g := &testGraph{
		name:      "dup",
		inputs:    [][]byte{buildValueInfo("X", TensorProtoFloat, []int64{3})},
		valueInfo: [][]byte{buildValueInfo("X", TensorProtoDouble, []int64{5})},
	}
	model, err := Parse(buildModel(g.bytes()))
	require.NoError(t, err)
	graph, err := ToGraph(model)
	require.NoError(t, err)

	x, _ := graph.Variable("X")
	assert.Equal(t, ir.Float32, x.Desc().DType)
	assert.Len(t, graph.Variables(), 1)
}

func TestToGraphOmittedOptionalInput(t *testing.T) {
	g := &testGraph{
		name:  "optional",
		nodes: [][]byte{buildNode("clip", "Clip", []string{"X", "", "max"}, []string{"Y"})},
	}
	model, err := Parse(buildModel(g.bytes()))
	require.NoError(t, err)
	graph, err := ToGraph(model)
	require.NoError(t, err)

	assert.Len(t, graph.Operators()[0].Inputs(), 2)
}

func TestToGraphErrors(t *testing.T) {
	_, err := ToGraph(nil)
	assert.Error(t, err)

	_, err = ToGraph(&ModelProto{})
	assert.Error(t, err)

	g := &testGraph{name: "bad", nodes: [][]byte{buildNode("n", "", []string{"X"}, []string{"Y"})}}
	model, err := Parse(buildModel(g.bytes()))
	require.NoError(t, err)
	_, err = ToGraph(model)
	assert.Error(t, err)
}

func TestLoadGraph(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mlp.onnx")
	require.NoError(t, os.WriteFile(path, buildMLPBlock(), 0o600))

	g, err := LoadGraph(path)
	require.NoError(t, err)
	assert.Len(t, g.Operators(), 4)

	_, err = LoadGraph(filepath.Join(t.TempDir(), "missing.onnx"))
	assert.Error(t, err)
}
