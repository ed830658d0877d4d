package onnx

import "google.golang.org/protobuf/encoding/protowire"

// protoBuilder helps construct protobuf messages.
type protoBuilder struct {
	data []byte
}

func (b *protoBuilder) writeTag(fieldNum int, wireType protowire.Type) {
	b.data = protowire.AppendTag(b.data, protowire.Number(fieldNum), wireType)
}

func (b *protoBuilder) writeVarint(v int64) {
	b.data = protowire.AppendVarint(b.data, uint64(v))
}

func (b *protoBuilder) writeString(fieldNum int, s string) {
	b.writeTag(fieldNum, protowire.BytesType)
	b.data = protowire.AppendString(b.data, s)
}

func (b *protoBuilder) writeMessage(fieldNum int, msg []byte) {
	b.writeTag(fieldNum, protowire.BytesType)
	b.data = protowire.AppendBytes(b.data, msg)
}

func (b *protoBuilder) writeInt(fieldNum int, v int64) {
	b.writeTag(fieldNum, protowire.VarintType)
	b.writeVarint(v)
}

// testGraph lists the messages of a GraphProto under construction.
type testGraph struct {
	name      string
	nodes     [][]byte
	inputs    [][]byte
	outputs   [][]byte
	valueInfo [][]byte
	inits     [][]byte
}

func (g *testGraph) bytes() []byte {
	b := &protoBuilder{}
	b.writeString(2, g.name)
	for _, n := range g.nodes {
		b.writeMessage(1, n)
	}
	for _, t := range g.inits {
		b.writeMessage(5, t)
	}
	for _, vi := range g.inputs {
		b.writeMessage(11, vi)
	}
	for _, vi := range g.outputs {
		b.writeMessage(12, vi)
	}
	for _, vi := range g.valueInfo {
		b.writeMessage(13, vi)
	}
	return b.data
}

// buildModel wraps a graph into a ModelProto with IR version 7 and opset 13.
func buildModel(graph []byte) []byte {
	opset := &protoBuilder{}
	opset.writeString(1, "")
	opset.writeInt(2, 13)

	b := &protoBuilder{}
	b.writeInt(1, 7)
	b.writeString(2, "born-test")
	b.writeMessage(8, opset.data)
	b.writeMessage(7, graph)
	return b.data
}

func buildNode(name, opType string, inputs, outputs []string) []byte {
	b := &protoBuilder{}
	for _, in := range inputs {
		b.writeString(1, in)
	}
	for _, out := range outputs {
		b.writeString(2, out)
	}
	if name != "" {
		b.writeString(3, name)
	}
	b.writeString(4, opType)
	return b.data
}

// buildTensorType creates a TensorTypeProto. Non-positive dims become a
// symbolic "batch" dimension; a nil shape omits the shape entirely.
func buildTensorType(dtype int32, shape []int64) []byte {
	b := &protoBuilder{}
	b.writeInt(1, int64(dtype))
	if shape != nil {
		s := &protoBuilder{}
		for _, dim := range shape {
			d := &protoBuilder{}
			if dim > 0 {
				d.writeInt(1, dim)
			} else {
				d.writeString(2, "batch")
			}
			s.writeMessage(1, d.data)
		}
		b.writeMessage(2, s.data)
	}
	return b.data
}

// buildValueInfo creates a ValueInfoProto holding a dense tensor type.
func buildValueInfo(name string, dtype int32, shape []int64) []byte {
	return buildValueInfoWithType(name, 1, buildTensorType(dtype, shape))
}

// buildValueInfoWithType creates a ValueInfoProto whose TypeProto sets
// typeField (1 tensor, 4 sequence, 8 sparse tensor) to typeMsg.
func buildValueInfoWithType(name string, typeField int, typeMsg []byte) []byte {
	t := &protoBuilder{}
	t.writeMessage(typeField, typeMsg)

	b := &protoBuilder{}
	b.writeString(1, name)
	b.writeMessage(2, t.data)
	return b.data
}

// buildUntypedValueInfo creates a ValueInfoProto without a type.
func buildUntypedValueInfo(name string) []byte {
	b := &protoBuilder{}
	b.writeString(1, name)
	return b.data
}

// buildTensorProto creates an initializer. Dims are packed when packed is set.
func buildTensorProto(name string, dtype int32, dims []int64, packed bool) []byte {
	b := &protoBuilder{}
	if packed {
		p := &protoBuilder{}
		for _, d := range dims {
			p.writeVarint(d)
		}
		b.writeMessage(1, p.data)
	} else {
		for _, d := range dims {
			b.writeInt(1, d)
		}
	}
	b.writeInt(2, int64(dtype))
	b.writeString(8, name)
	// raw_data is skipped by the reader.
	b.writeMessage(9, make([]byte, 16))
	return b.data
}
