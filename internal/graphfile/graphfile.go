// Package graphfile reads dataflow graphs described in YAML.
//
// The format mirrors a program dump: variables carry their tensor kind,
// element type and shape, and operators reference variables by name.
//
//	name: fc_block
//	variables:
//	  - {name: x, dtype: float32, shape: [16, 32]}
//	  - {name: w, dtype: float32, shape: [32, 32], persistable: true}
//	  - {name: y, dtype: float32, shape: [16, 32]}
//	  - {name: z, dtype: float32, shape: [16, 32]}
//	operators:
//	  - {name: fc, type: mul, inputs: [x, w], outputs: [y]}
//	  - {name: act, type: relu, inputs: [y], outputs: [z]}
//
// kind defaults to "dense". Names used by operators but not declared become
// variables without metadata. An operator without a type has no metadata.
package graphfile

import (
	"io"
	"os"

	"github.com/born-ml/fusion/internal/ir"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// File is the YAML document layout.
type File struct {
	Name      string     `yaml:"name"`
	Variables []Variable `yaml:"variables"`
	Operators []Operator `yaml:"operators"`
}

// Variable describes one variable.
type Variable struct {
	Name        string  `yaml:"name"`
	Kind        string  `yaml:"kind,omitempty"`
	DType       string  `yaml:"dtype,omitempty"`
	Shape       []int64 `yaml:"shape,omitempty"`
	Persistable bool    `yaml:"persistable,omitempty"`
	// NoMetadata declares the variable without any metadata.
	NoMetadata bool `yaml:"no_metadata,omitempty"`
}

// Operator describes one operator.
type Operator struct {
	Name    string   `yaml:"name"`
	Type    string   `yaml:"type"`
	Inputs  []string `yaml:"inputs"`
	Outputs []string `yaml:"outputs"`
}

// Decode reads a YAML graph description and builds the graph.
func Decode(r io.Reader) (*ir.Graph, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, errors.Wrap(err, "failed to decode graph")
	}
	return f.Build()
}

// ReadFile reads a YAML graph description from disk.
func ReadFile(path string) (*ir.Graph, error) {
	fh, err := os.Open(path) //nolint:gosec // G304: graph path is provided by the user
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer fh.Close()

	g, err := Decode(fh)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return g, nil
}

// Build converts the document into a graph.
func (f *File) Build() (*ir.Graph, error) {
	b := ir.NewBuilder(f.Name)
	for i := range f.Variables {
		v := &f.Variables[i]
		if v.Name == "" {
			return nil, errors.Errorf("variable %d has no name", i)
		}
		desc, err := v.desc()
		if err != nil {
			return nil, errors.Wrapf(err, "variable %s", v.Name)
		}
		b.Var(v.Name, desc)
	}
	for i := range f.Operators {
		op := &f.Operators[i]
		if op.Name == "" {
			return nil, errors.Errorf("operator %d has no name", i)
		}
		b.Op(op.Name, op.Type, op.Inputs, op.Outputs)
	}
	return b.Graph()
}

func (v *Variable) desc() (*ir.VarDesc, error) {
	if v.NoMetadata {
		return nil, nil
	}
	kind := ir.DenseTensor
	if v.Kind != "" {
		var err error
		if kind, err = ir.ParseTensorKind(v.Kind); err != nil {
			return nil, err
		}
	}
	dtype := ir.Unknown
	if v.DType != "" {
		var err error
		if dtype, err = ir.ParseDataType(v.DType); err != nil {
			return nil, err
		}
	}
	return &ir.VarDesc{
		Kind:        kind,
		DType:       dtype,
		Shape:       ir.Shape(v.Shape),
		Persistable: v.Persistable,
	}, nil
}
