package ir

// Builder assembles a Graph by variable name. Names referenced by an
// operator before being declared become variables without metadata.
// The first error is kept and reported by Graph.
type Builder struct {
	g   *Graph
	err error
}

// NewBuilder starts a new graph.
func NewBuilder(name string) *Builder {
	return &Builder{g: NewGraph(name)}
}

// Dense returns metadata for a dense tensor of the given type and shape.
func Dense(dt DataType, dims ...int64) *VarDesc {
	return &VarDesc{Kind: DenseTensor, DType: dt, Shape: Shape(dims)}
}

// Var declares a variable. desc may be nil.
func (b *Builder) Var(name string, desc *VarDesc) *Builder {
	if b.err != nil {
		return b
	}
	_, b.err = b.g.AddVariable(name, desc)
	return b
}

// Op adds an operator reading and writing the named variables.
// A nil desc is produced when opType is empty.
func (b *Builder) Op(name, opType string, inputs, outputs []string) *Builder {
	if b.err != nil {
		return b
	}
	var desc *OpDesc
	if opType != "" {
		desc = &OpDesc{Type: opType}
	}
	ins, err := b.resolve(inputs)
	if err != nil {
		b.err = err
		return b
	}
	outs, err := b.resolve(outputs)
	if err != nil {
		b.err = err
		return b
	}
	b.g.AddOperator(name, desc, ins, outs)
	return b
}

// Graph returns the assembled graph or the first error encountered.
func (b *Builder) Graph() (*Graph, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.g, nil
}

// MustGraph is like Graph but panics on error. Intended for tests and
// static graph literals.
func (b *Builder) MustGraph() *Graph {
	g, err := b.Graph()
	if err != nil {
		panic(err)
	}
	return g
}

func (b *Builder) resolve(names []string) ([]Node, error) {
	nodes := make([]Node, 0, len(names))
	for _, name := range names {
		v, ok := b.g.Variable(name)
		if !ok {
			var err error
			v, err = b.g.AddVariable(name, nil)
			if err != nil {
				return nil, err
			}
		}
		nodes = append(nodes, v)
	}
	return nodes, nil
}
