// Package registry maps operator types to operation categories.
//
// The fusion passes ask the registry which operator types belong to a
// category (for example "elementwise") and resolve the answer once, when
// the pass is constructed.
package registry

import (
	"bytes"
	_ "embed"
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Category groups operator types by how a fusion pass may treat them.
type Category string

// Known categories.
const (
	Elementwise Category = "elementwise"
	Reduction   Category = "reduction"
	Other       Category = "other"
)

// GradSuffix is appended to a forward operator type to name its backward operator.
const GradSuffix = "_grad"

//go:embed operations.yaml
var builtinOperations []byte

// Operation describes one registered operator type.
type Operation struct {
	Type        string
	Category    Category
	NumOperands int // 0 when the operator is variadic or unspecified
}

// Registry maps operator types to operations.
type Registry struct {
	ops map[string]Operation
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{ops: make(map[string]Operation)}
}

// Default creates a registry populated with the built-in operation table.
func Default() *Registry {
	r := New()
	if err := r.Load(bytes.NewReader(builtinOperations)); err != nil {
		panic(errors.Wrap(err, "built-in operation table"))
	}
	return r
}

// Register adds an operation. Registering the same type twice is an error.
func (r *Registry) Register(op Operation) error {
	if err := r.check(op); err != nil {
		return err
	}
	r.ops[op.Type] = op
	return nil
}

func (r *Registry) check(op Operation) error {
	if op.Type == "" {
		return errors.New("operation type must not be empty")
	}
	if op.Category == "" {
		return errors.Errorf("operation %s: category must not be empty", op.Type)
	}
	if _, exists := r.ops[op.Type]; exists {
		return errors.Errorf("operation %s already registered", op.Type)
	}
	return nil
}

// Get returns the operation registered for an operator type.
func (r *Registry) Get(opType string) (Operation, bool) {
	op, ok := r.ops[opType]
	return op, ok
}

// Find returns the operator types belonging to a category.
// The returned set is a snapshot; later registrations do not affect it.
func (r *Registry) Find(category Category) TypeSet {
	var types []string
	for t, op := range r.ops {
		if op.Category == category {
			types = append(types, t)
		}
	}
	return NewTypeSet(types...)
}

// Categories returns the categories that have at least one operation, sorted.
func (r *Registry) Categories() []Category {
	seen := make(map[Category]bool)
	var cats []Category
	for _, op := range r.ops {
		if !seen[op.Category] {
			seen[op.Category] = true
			cats = append(cats, op.Category)
		}
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i] < cats[j] })
	return cats
}

// Len returns the number of registered operations.
func (r *Registry) Len() int {
	return len(r.ops)
}

type operationTable struct {
	Operations []operationEntry `yaml:"operations"`
}

type operationEntry struct {
	Type     string `yaml:"type"`
	Category string `yaml:"category"`
	Operands int    `yaml:"operands"`
	Grad     bool   `yaml:"grad"`
}

// Load registers every operation of a YAML operation table. The table is
// applied entirely or not at all.
//
// Example table:
//
//	operations:
//	  - {type: relu, category: elementwise, operands: 1, grad: true}
//	  - {type: elementwise_add, category: elementwise, operands: 2}
func (r *Registry) Load(rd io.Reader) error {
	var table operationTable
	dec := yaml.NewDecoder(rd)
	dec.KnownFields(true)
	if err := dec.Decode(&table); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return errors.Wrap(err, "failed to decode operation table")
	}

	// Validate the whole table before committing any of it.
	staged := New()
	var order []Operation
	stage := func(op Operation) error {
		if err := r.check(op); err != nil {
			return err
		}
		if err := staged.Register(op); err != nil {
			return err
		}
		order = append(order, op)
		return nil
	}
	for _, e := range table.Operations {
		op := Operation{Type: e.Type, Category: Category(e.Category), NumOperands: e.Operands}
		if err := stage(op); err != nil {
			return err
		}
		if e.Grad {
			if err := stage(Operation{Type: e.Type + GradSuffix, Category: op.Category}); err != nil {
				return err
			}
		}
	}

	for _, op := range order {
		r.ops[op.Type] = op
	}
	return nil
}

// LoadFile registers the operations of a YAML operation table on disk.
func (r *Registry) LoadFile(path string) error {
	f, err := os.Open(path) //nolint:gosec // G304: table path is provided by the user
	if err != nil {
		return errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()

	if err := r.Load(f); err != nil {
		return errors.Wrapf(err, "failed to load %s", path)
	}
	return nil
}
