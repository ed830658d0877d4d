// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package fusion finds groups of adjacent elementwise operators in a
// dataflow graph that can be compiled into a single fused kernel.
//
// Graphs can be read from ONNX models or from YAML graph descriptions,
// or built in code with NewBuilder.
//
// # Example Usage
//
//	g, err := fusion.LoadONNX("model.onnx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	detector := fusion.NewDetector(fusion.DefaultRegistry())
//	for _, group := range detector.Detect(g) {
//	    fmt.Println(group.Names())
//	}
//
// An operator joins a group only if its inputs and outputs are dense
// floating point tensors of one element type, its type is registered as
// elementwise, and all of its inputs have the same known shape. Use
// Detector.Explain to see which check rejected an operator.
package fusion
