// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package fusion

import (
	"path/filepath"
	"strings"

	"github.com/born-ml/fusion/internal/fusion"
	"github.com/born-ml/fusion/internal/graphfile"
	"github.com/born-ml/fusion/internal/ir"
	"github.com/born-ml/fusion/internal/onnx"
	"github.com/born-ml/fusion/internal/registry"
	"github.com/born-ml/fusion/internal/subgraph"
	"github.com/pkg/errors"
)

// Graph is a dataflow graph of operators and variables.
type Graph = ir.Graph

// Node is an operator or a variable.
type Node = ir.Node

// Operator is an operator node.
type Operator = ir.Operator

// Variable is a variable node.
type Variable = ir.Variable

// VarDesc is the tensor metadata of a variable.
type VarDesc = ir.VarDesc

// DataType is a tensor element type.
type DataType = ir.DataType

// Element types.
const (
	Float16 = ir.Float16
	Float32 = ir.Float32
	Float64 = ir.Float64
	Int32   = ir.Int32
	Int64   = ir.Int64
)

// Builder assembles graphs by name.
type Builder = ir.Builder

// Registry maps operator types to categories.
type Registry = registry.Registry

// Operation is one registry entry.
type Operation = registry.Operation

// Group is one fusion group, in topological order.
type Group = subgraph.Group

// Detector finds elementwise fusion groups.
type Detector = fusion.ElementwiseGroupDetector

// Option configures a Detector.
type Option = fusion.Option

// Verdict explains why an operator was accepted or rejected.
type Verdict = fusion.Verdict

// Report summarizes one detection run.
type Report = fusion.Report

// Metrics holds the detector's Prometheus collectors.
type Metrics = fusion.Metrics

// ErrNotOperator is returned by IsGradOp for nodes that are not operators.
var ErrNotOperator = fusion.ErrNotOperator

// Detector options and metrics.
var (
	WithMinGroupSize = fusion.WithMinGroupSize
	WithExcludeGrad  = fusion.WithExcludeGrad
	WithExtractor    = fusion.WithExtractor
	WithLogger       = fusion.WithLogger
	WithMetrics      = fusion.WithMetrics
	NewMetrics       = fusion.NewMetrics
)

// NewBuilder starts a graph named name.
func NewBuilder(name string) *Builder {
	return ir.NewBuilder(name)
}

// Dense describes a dense tensor of element type dt.
func Dense(dt DataType, dims ...int64) *VarDesc {
	return ir.Dense(dt, dims...)
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return registry.New()
}

// DefaultRegistry returns a registry holding the built-in operator table.
func DefaultRegistry() *Registry {
	return registry.Default()
}

// NewDetector creates an elementwise group detector over reg.
func NewDetector(reg *Registry, opts ...Option) *Detector {
	return fusion.NewElementwiseGroupDetector(reg, opts...)
}

// Detect runs a detector over the default registry on g.
func Detect(g *Graph, opts ...Option) []Group {
	return NewDetector(DefaultRegistry(), opts...).Detect(g)
}

// IsFusionGroupOp reports whether n is an operator whose dense inputs and
// outputs each share one floating point element type.
func IsFusionGroupOp(n Node) bool {
	return fusion.IsFusionGroupOp(n)
}

// IsGradOp reports whether op is a backward operator.
func IsGradOp(op *Operator) (bool, error) {
	return fusion.IsGradOp(op)
}

// LoadONNX reads an ONNX model file into a graph.
func LoadONNX(path string) (*Graph, error) {
	return onnx.LoadGraph(path)
}

// LoadYAML reads a YAML graph description.
func LoadYAML(path string) (*Graph, error) {
	return graphfile.ReadFile(path)
}

// Load reads a graph file, choosing the format from its extension:
// .onnx for ONNX models, .yaml or .yml for graph descriptions.
func Load(path string) (*Graph, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".onnx":
		return LoadONNX(path)
	case ".yaml", ".yml":
		return LoadYAML(path)
	default:
		return nil, errors.Errorf("unsupported graph file %q: expected .onnx, .yaml or .yml", path)
	}
}
