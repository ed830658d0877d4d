package onnx

import (
	"os"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protowire"
)

// ParseFile parses an ONNX model from file.
//
//nolint:gosec // G304: Path is provided by user, file inclusion is intentional for ONNX model loading
func ParseFile(path string) (*ModelProto, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return Parse(data)
}

// Parse parses an ONNX model from bytes.
func Parse(data []byte) (*ModelProto, error) {
	if len(data) == 0 {
		return nil, errors.New("failed to parse model: empty input")
	}
	model := &ModelProto{}
	if err := decodeModel(data, model); err != nil {
		return nil, errors.Wrap(err, "failed to parse model")
	}
	return model, nil
}

// parser walks protobuf wire data. The wire primitives come from protowire;
// message layout is decoded by hand, so no generated ONNX bindings are needed.
type parser struct {
	data []byte
	pos  int
}

// fieldFunc decodes one field of a message. It returns false for fields it
// does not know, which are then skipped.
type fieldFunc func(p *parser, num protowire.Number, typ protowire.Type) (bool, error)

// walk decodes every field of a message.
func walk(data []byte, fn fieldFunc) error {
	p := &parser{data: data}
	for p.pos < len(p.data) {
		num, typ, err := p.readTag()
		if err != nil {
			return err
		}
		known, err := fn(p, num, typ)
		if err != nil {
			return errors.Wrapf(err, "field %d", num)
		}
		if !known {
			if err := p.skipField(num, typ); err != nil {
				return err
			}
		}
	}
	return nil
}

func decodeModel(data []byte, m *ModelProto) error {
	return walk(data, func(p *parser, fieldNum protowire.Number, _ protowire.Type) (bool, error) {
		var err error
		switch fieldNum {
		case 1: // ir_version
			m.IRVersion, err = p.readVarint()
		case 2: // producer_name
			m.ProducerName, err = p.readString()
		case 3: // producer_version
			m.ProducerVersion, err = p.readString()
		case 4: // domain
			m.Domain, err = p.readString()
		case 7: // graph
			m.Graph = &GraphProto{}
			err = p.readMessage(func(b []byte) error { return decodeGraph(b, m.Graph) })
		case 8: // opset_import
			var opset OperatorSetID
			err = p.readMessage(func(b []byte) error { return decodeOperatorSetID(b, &opset) })
			m.OpsetImport = append(m.OpsetImport, opset)
		default:
			return false, nil
		}
		return true, err
	})
}

func decodeGraph(data []byte, m *GraphProto) error {
	return walk(data, func(p *parser, fieldNum protowire.Number, _ protowire.Type) (bool, error) {
		var err error
		switch fieldNum {
		case 1: // node
			var node NodeProto
			err = p.readMessage(func(b []byte) error { return decodeNode(b, &node) })
			m.Nodes = append(m.Nodes, node)
		case 2: // name
			m.Name, err = p.readString()
		case 5: // initializer
			var t TensorProto
			err = p.readMessage(func(b []byte) error { return decodeTensor(b, &t) })
			m.Initializers = append(m.Initializers, t)
		case 11, 12, 13: // input, output, value_info
			var vi ValueInfoProto
			err = p.readMessage(func(b []byte) error { return decodeValueInfo(b, &vi) })
			switch fieldNum {
			case 11:
				m.Inputs = append(m.Inputs, vi)
			case 12:
				m.Outputs = append(m.Outputs, vi)
			default:
				m.ValueInfo = append(m.ValueInfo, vi)
			}
		default:
			return false, nil
		}
		return true, err
	})
}

func decodeNode(data []byte, m *NodeProto) error {
	return walk(data, func(p *parser, fieldNum protowire.Number, _ protowire.Type) (bool, error) {
		var (
			s   string
			err error
		)
		switch fieldNum {
		case 1: // input
			s, err = p.readString()
			m.Inputs = append(m.Inputs, s)
		case 2: // output
			s, err = p.readString()
			m.Outputs = append(m.Outputs, s)
		case 3: // name
			m.Name, err = p.readString()
		case 4: // op_type
			m.OpType, err = p.readString()
		case 7: // domain
			m.Domain, err = p.readString()
		default:
			return false, nil
		}
		return true, err
	})
}

func decodeTensor(data []byte, m *TensorProto) error {
	return walk(data, func(p *parser, fieldNum protowire.Number, wireType protowire.Type) (bool, error) {
		var err error
		switch fieldNum {
		case 1: // dims (repeated int64, packed or not)
			m.Dims, err = p.readRepeatedVarint(wireType, m.Dims)
		case 2: // data_type
			m.DataType, err = p.readInt32()
		case 8: // name
			m.Name, err = p.readString()
		default:
			return false, nil
		}
		return true, err
	})
}

func decodeValueInfo(data []byte, m *ValueInfoProto) error {
	return walk(data, func(p *parser, fieldNum protowire.Number, _ protowire.Type) (bool, error) {
		var err error
		switch fieldNum {
		case 1: // name
			m.Name, err = p.readString()
		case 2: // type
			m.Type = &TypeProto{}
			err = p.readMessage(func(b []byte) error { return decodeType(b, m.Type) })
		default:
			return false, nil
		}
		return true, err
	})
}

func decodeType(data []byte, m *TypeProto) error {
	return walk(data, func(p *parser, fieldNum protowire.Number, _ protowire.Type) (bool, error) {
		var err error
		switch fieldNum {
		case 1: // tensor_type
			m.TensorType = &TensorTypeProto{}
			err = p.readMessage(func(b []byte) error { return decodeTensorType(b, m.TensorType) })
		case 4: // sequence_type
			m.SequenceType = &SequenceProto{}
			err = p.readMessage(func(b []byte) error { return decodeSequence(b, m.SequenceType) })
		case 8: // sparse_tensor_type
			m.SparseTensorType = &TensorTypeProto{}
			err = p.readMessage(func(b []byte) error { return decodeTensorType(b, m.SparseTensorType) })
		default:
			return false, nil
		}
		return true, err
	})
}

func decodeSequence(data []byte, m *SequenceProto) error {
	return walk(data, func(p *parser, fieldNum protowire.Number, _ protowire.Type) (bool, error) {
		if fieldNum != 1 { // elem_type
			return false, nil
		}
		m.ElemType = &TypeProto{}
		return true, p.readMessage(func(b []byte) error { return decodeType(b, m.ElemType) })
	})
}

func decodeTensorType(data []byte, m *TensorTypeProto) error {
	return walk(data, func(p *parser, fieldNum protowire.Number, _ protowire.Type) (bool, error) {
		var err error
		switch fieldNum {
		case 1: // elem_type
			m.ElemType, err = p.readInt32()
		case 2: // shape
			m.Shape = &TensorShapeProto{}
			err = p.readMessage(func(b []byte) error { return decodeShape(b, m.Shape) })
		default:
			return false, nil
		}
		return true, err
	})
}

func decodeShape(data []byte, m *TensorShapeProto) error {
	return walk(data, func(p *parser, fieldNum protowire.Number, _ protowire.Type) (bool, error) {
		if fieldNum != 1 { // dim
			return false, nil
		}
		var dim DimensionProto
		err := p.readMessage(func(b []byte) error { return decodeDimension(b, &dim) })
		m.Dims = append(m.Dims, dim)
		return true, err
	})
}

func decodeDimension(data []byte, m *DimensionProto) error {
	return walk(data, func(p *parser, fieldNum protowire.Number, _ protowire.Type) (bool, error) {
		var err error
		switch fieldNum {
		case 1: // dim_value
			m.DimValue, err = p.readVarint()
			m.HasValue = true
		case 2: // dim_param
			m.DimParam, err = p.readString()
		default:
			return false, nil
		}
		return true, err
	})
}

func decodeOperatorSetID(data []byte, m *OperatorSetID) error {
	return walk(data, func(p *parser, fieldNum protowire.Number, _ protowire.Type) (bool, error) {
		var err error
		switch fieldNum {
		case 1: // domain
			m.Domain, err = p.readString()
		case 2: // version
			m.Version, err = p.readVarint()
		default:
			return false, nil
		}
		return true, err
	})
}

// consumed advances past n bytes, or converts a negative n from protowire
// into an error.
func (p *parser) consumed(n int) error {
	if n < 0 {
		return protowire.ParseError(n)
	}
	p.pos += n
	return nil
}

// readTag reads a protobuf field tag.
func (p *parser) readTag() (protowire.Number, protowire.Type, error) {
	num, typ, n := protowire.ConsumeTag(p.data[p.pos:])
	if err := p.consumed(n); err != nil {
		return 0, 0, err
	}
	return num, typ, nil
}

// readVarint reads a varint-encoded int64.
func (p *parser) readVarint() (int64, error) {
	v, n := protowire.ConsumeVarint(p.data[p.pos:])
	if err := p.consumed(n); err != nil {
		return 0, err
	}
	return int64(v), nil //nolint:gosec // G115: Protobuf varint fits in int64.
}

// readInt32 reads a varint-encoded int32.
func (p *parser) readInt32() (int32, error) {
	v, err := p.readVarint()
	if err != nil {
		return 0, err
	}
	return int32(v), nil //nolint:gosec // G115: Protobuf varint fits in int32.
}

// readBytes reads a length-delimited byte slice.
func (p *parser) readBytes() ([]byte, error) {
	b, n := protowire.ConsumeBytes(p.data[p.pos:])
	if err := p.consumed(n); err != nil {
		return nil, err
	}
	return b, nil
}

// readString reads a length-delimited string.
func (p *parser) readString() (string, error) {
	b, err := p.readBytes()
	return string(b), err
}

// readMessage reads a length-delimited embedded message and hands its bytes to decode.
func (p *parser) readMessage(decode func([]byte) error) error {
	b, err := p.readBytes()
	if err != nil {
		return err
	}
	return decode(b)
}

// readRepeatedVarint appends one unpacked value or a packed run of values to dst.
func (p *parser) readRepeatedVarint(typ protowire.Type, dst []int64) ([]int64, error) {
	if typ != protowire.BytesType {
		v, err := p.readVarint()
		return append(dst, v), err
	}
	data, err := p.readBytes()
	if err != nil {
		return dst, err
	}
	for len(data) > 0 {
		v, n := protowire.ConsumeVarint(data)
		if n < 0 {
			return dst, protowire.ParseError(n)
		}
		dst = append(dst, int64(v)) //nolint:gosec // G115: Protobuf varint fits in int64.
		data = data[n:]
	}
	return dst, nil
}

// skipField skips a field based on wire type.
func (p *parser) skipField(num protowire.Number, typ protowire.Type) error {
	switch typ {
	case protowire.VarintType, protowire.Fixed64Type, protowire.BytesType,
		protowire.StartGroupType, protowire.Fixed32Type:
		return p.consumed(protowire.ConsumeFieldValue(num, typ, p.data[p.pos:]))
	default:
		return errors.Errorf("unknown wire type: %d", typ)
	}
}
