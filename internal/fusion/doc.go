// Package fusion detects groups of elementwise operators that can be
// compiled into a single fused kernel.
//
// Three predicates decide membership:
//   - IsFusionGroupOp: dense tensor inputs and outputs with one floating
//     element type on each side (float16, float32 or float64)
//   - ElementwiseClassifier.IsElementwiseOp: the operator type is in the
//     registry's elementwise category and all inputs share one known shape
//   - IsGradOp: the operator type ends with "_grad" (optional)
//
// ElementwiseGroupDetector composes them and delegates connectivity to a
// subgraph.Extractor.
//
// Example usage:
//
//	detector := fusion.NewElementwiseGroupDetector(registry.Default())
//	for _, group := range detector.Detect(graph) {
//	    fmt.Println(group.Names())
//	}
//
// Classification failures are ordinary negative results. Use
// ElementwiseGroupDetector.Explain to see why an operator was rejected.
package fusion
