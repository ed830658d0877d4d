// Package onnx imports ONNX computation graphs into the fusion IR.
//
// The package reads .onnx files with a hand-written message decoder on top
// of protowire, so no generated ONNX bindings are needed. Only graph
// structure and type information are decoded; tensor contents and
// attributes are skipped.
//
// Key components:
//   - ModelProto: Top-level ONNX model structure with metadata and graph
//   - GraphProto: Nodes, inputs, outputs, initializers and value_info
//   - NodeProto: Single operation in the graph (e.g., Add, Relu)
//   - ValueInfoProto: Type and shape of a named value
//
// Type mapping:
//   - tensor_type → dense variable, sparse_tensor_type → sparse variable,
//     sequence_type → tensor array variable
//   - values without type information → variable without metadata
//   - symbolic dimensions (dim_param) → -1
//
// Example usage:
//
//	g, err := onnx.LoadGraph("resnet50.onnx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	groups := detector.Detect(g)
package onnx
