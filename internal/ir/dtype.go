// Package ir provides the dataflow graph representation consumed by the fusion passes.
package ir

import "github.com/pkg/errors"

// DataType represents the element type of a tensor variable.
type DataType int

// Supported element types.
const (
	Unknown DataType = iota
	Float16
	BFloat16
	Float32
	Float64
	Int8
	Int16
	Int32
	Int64
	Uint8
	Bool
)

var dataTypeNames = map[DataType]string{
	Unknown:  "unknown",
	Float16:  "float16",
	BFloat16: "bfloat16",
	Float32:  "float32",
	Float64:  "float64",
	Int8:     "int8",
	Int16:    "int16",
	Int32:    "int32",
	Int64:    "int64",
	Uint8:    "uint8",
	Bool:     "bool",
}

// Aliases accepted by ParseDataType in addition to the canonical names.
var dataTypeAliases = map[string]DataType{
	"fp16": Float16,
	"bf16": BFloat16,
	"fp32": Float32,
	"fp64": Float64,
}

// IsFloat reports whether dt is one of the floating types a fused kernel can
// be generated for: float16, float32 or float64.
func (dt DataType) IsFloat() bool {
	switch dt {
	case Float16, Float32, Float64:
		return true
	default:
		return false
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	if name, ok := dataTypeNames[dt]; ok {
		return name
	}
	return "unknown"
}

// ParseDataType converts a name such as "float32" or "fp16" into a DataType.
func ParseDataType(name string) (DataType, error) {
	for dt, n := range dataTypeNames {
		if n == name {
			return dt, nil
		}
	}
	if dt, ok := dataTypeAliases[name]; ok {
		return dt, nil
	}
	return Unknown, errors.Errorf("unknown data type %q", name)
}

// TensorKind describes how a variable's tensor is stored.
type TensorKind int

// Tensor kinds.
const (
	DenseTensor TensorKind = iota
	SparseTensor
	TensorArray
	OtherKind
)

// String returns a human-readable name for the tensor kind.
func (k TensorKind) String() string {
	switch k {
	case DenseTensor:
		return "dense"
	case SparseTensor:
		return "sparse"
	case TensorArray:
		return "array"
	default:
		return "other"
	}
}

// ParseTensorKind converts a name such as "dense" into a TensorKind.
func ParseTensorKind(name string) (TensorKind, error) {
	switch name {
	case "dense", "lod_tensor":
		return DenseTensor, nil
	case "sparse", "selected_rows":
		return SparseTensor, nil
	case "array", "lod_tensor_array":
		return TensorArray, nil
	case "other":
		return OtherKind, nil
	default:
		return OtherKind, errors.Errorf("unknown tensor kind %q", name)
	}
}
