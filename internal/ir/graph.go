package ir

import "github.com/pkg/errors"

// Graph owns a set of operator and variable nodes connected by dataflow edges.
// Edges run from a producing operator to a variable and from a variable to
// each consuming operator. Node order is insertion order, which keeps every
// traversal over the graph deterministic.
type Graph struct {
	Name string

	nodes     []Node
	operators []*Operator
	variables []*Variable
	byName    map[string]*Variable
}

// NewGraph creates an empty graph.
func NewGraph(name string) *Graph {
	return &Graph{
		Name:   name,
		byName: make(map[string]*Variable),
	}
}

// AddVariable adds a variable node. desc may be nil to model a variable
// whose metadata is missing. Variable names must be unique.
func (g *Graph) AddVariable(name string, desc *VarDesc) (*Variable, error) {
	if _, exists := g.byName[name]; exists {
		return nil, errors.Errorf("variable %q already defined", name)
	}
	v := &Variable{id: len(g.nodes), name: name, desc: desc}
	g.nodes = append(g.nodes, v)
	g.variables = append(g.variables, v)
	g.byName[name] = v
	return v, nil
}

// AddOperator adds an operator node and wires it to its input and output
// variables. desc may be nil to model an operator without metadata.
func (g *Graph) AddOperator(name string, desc *OpDesc, inputs, outputs []Node) *Operator {
	op := &Operator{
		id:      len(g.nodes),
		name:    name,
		desc:    desc,
		inputs:  inputs,
		outputs: outputs,
	}
	g.nodes = append(g.nodes, op)
	g.operators = append(g.operators, op)

	for _, in := range inputs {
		if v, ok := in.(*Variable); ok && v != nil {
			v.consumers = append(v.consumers, op)
		}
	}
	for _, out := range outputs {
		if v, ok := out.(*Variable); ok && v != nil {
			v.producers = append(v.producers, op)
		}
	}
	return op
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []Node { return g.nodes }

// Operators returns all operator nodes in insertion order.
func (g *Graph) Operators() []*Operator { return g.operators }

// Variables returns all variable nodes in insertion order.
func (g *Graph) Variables() []*Variable { return g.variables }

// Variable looks up a variable by name.
func (g *Graph) Variable(name string) (*Variable, bool) {
	v, ok := g.byName[name]
	return v, ok
}

// Successors returns the distinct operators consuming any output of op,
// in first-seen order.
func (g *Graph) Successors(op *Operator) []*Operator {
	var result []*Operator
	seen := make(map[*Operator]bool)
	for _, out := range op.outputs {
		v, ok := out.(*Variable)
		if !ok || v == nil {
			continue
		}
		for _, c := range v.consumers {
			if !seen[c] {
				seen[c] = true
				result = append(result, c)
			}
		}
	}
	return result
}

// Predecessors returns the distinct operators producing any input of op,
// in first-seen order.
func (g *Graph) Predecessors(op *Operator) []*Operator {
	var result []*Operator
	seen := make(map[*Operator]bool)
	for _, in := range op.inputs {
		v, ok := in.(*Variable)
		if !ok || v == nil {
			continue
		}
		for _, p := range v.producers {
			if !seen[p] {
				seen[p] = true
				result = append(result, p)
			}
		}
	}
	return result
}

// TopologicalOperators returns the operators in execution order.
// Producers are visited before their consumers; ties are broken by
// insertion order. The walk uses an explicit stack, so chain length is not
// limited by goroutine stack depth. Cyclic graphs still terminate; the
// first operator of a cycle reached is emitted last.
func (g *Graph) TopologicalOperators() []*Operator {
	type frame struct {
		op   *Operator
		deps []*Operator
		next int
	}

	visited := make(map[*Operator]bool, len(g.operators))
	result := make([]*Operator, 0, len(g.operators))
	var stack []frame

	for _, root := range g.operators {
		if visited[root] {
			continue
		}
		visited[root] = true
		stack = append(stack, frame{op: root, deps: g.Predecessors(root)})

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next < len(top.deps) {
				// Visit dependencies first
				dep := top.deps[top.next]
				top.next++
				if !visited[dep] {
					visited[dep] = true
					stack = append(stack, frame{op: dep, deps: g.Predecessors(dep)})
				}
				continue
			}
			result = append(result, top.op)
			stack = stack[:len(stack)-1]
		}
	}
	return result
}
