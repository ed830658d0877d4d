package fusion

import (
	"github.com/born-ml/fusion/internal/ir"
	"github.com/born-ml/fusion/internal/registry"
	"github.com/born-ml/fusion/internal/subgraph"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("pkg", "fusion")

// Options configures an ElementwiseGroupDetector.
type Options struct {
	extractor    subgraph.Extractor
	minGroupSize int
	excludeGrad  bool
	log          *logrus.Entry
	metrics      *Metrics
}

// Option mutates Options.
type Option func(*Options)

// WithExtractor replaces the default subgraph extractor.
// WithMinGroupSize has no effect on a custom extractor.
func WithExtractor(e subgraph.Extractor) Option {
	return func(o *Options) {
		o.extractor = e
	}
}

// WithMinGroupSize sets the smallest group the default extractor reports.
func WithMinGroupSize(n int) Option {
	return func(o *Options) {
		o.minGroupSize = n
	}
}

// WithExcludeGrad keeps backward ("_grad") operators out of every group.
func WithExcludeGrad(exclude bool) Option {
	return func(o *Options) {
		o.excludeGrad = exclude
	}
}

// WithLogger sets the logger used for per-node and per-graph diagnostics.
func WithLogger(l *logrus.Entry) Option {
	return func(o *Options) {
		o.log = l
	}
}

// WithMetrics records classification outcomes in m.
func WithMetrics(m *Metrics) Option {
	return func(o *Options) {
		o.metrics = m
	}
}

// ElementwiseGroupDetector finds maximal groups of adjacent elementwise
// operators that can be compiled into one fused kernel.
//
// The elementwise operator types are resolved from the registry once, when
// the detector is created. Registry changes made afterwards are not seen;
// create a new detector to pick them up. A detector holds no other state and
// never modifies the graphs it inspects.
type ElementwiseGroupDetector struct {
	classifier  *ElementwiseClassifier
	extractor   subgraph.Extractor
	excludeGrad bool
	log         *logrus.Entry
	metrics     *Metrics
}

// NewElementwiseGroupDetector creates a detector over the elementwise
// category of reg.
func NewElementwiseGroupDetector(reg *registry.Registry, opts ...Option) *ElementwiseGroupDetector {
	o := Options{
		minGroupSize: subgraph.DefaultOptions().MinGroupSize,
		log:          log.WithField("pass", "elementwise"),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.extractor == nil {
		o.extractor = subgraph.New(subgraph.Options{MinGroupSize: o.minGroupSize})
	}
	if o.log == nil {
		o.log = log
	}

	return &ElementwiseGroupDetector{
		classifier:  NewElementwiseClassifier(reg.Find(registry.Elementwise)),
		extractor:   o.extractor,
		excludeGrad: o.excludeGrad,
		log:         o.log,
		metrics:     o.metrics,
	}
}

// Classifier returns the detector's elementwise classifier.
func (d *ElementwiseGroupDetector) Classifier() *ElementwiseClassifier {
	return d.classifier
}

// Explain classifies n and reports the first check it fails.
func (d *ElementwiseGroupDetector) Explain(n ir.Node) Verdict {
	if reason := checkEligible(n); reason != Accepted {
		return newVerdict(n, reason)
	}
	if reason := d.classifier.check(n); reason != Accepted {
		return newVerdict(n, reason)
	}
	if d.excludeGrad {
		// Both checks above guarantee a metadata-bearing operator.
		if isGrad, _ := IsGradOp(n.(*ir.Operator)); isGrad {
			return newVerdict(n, ReasonGradOp)
		}
	}
	return newVerdict(n, Accepted)
}

// Predicate returns the membership test handed to the extractor:
// eligible for fusion and elementwise, and not a backward operator when
// WithExcludeGrad is set.
func (d *ElementwiseGroupDetector) Predicate() subgraph.Predicate {
	return func(op *ir.Operator) bool {
		v := d.Explain(op)
		d.metrics.observeVerdict(v)
		if !v.Accepted() {
			d.log.WithFields(logrus.Fields{
				"node":   v.Node,
				"type":   v.Type,
				"reason": v.Reason,
			}).Debug("operator not fusible")
		}
		return v.Accepted()
	}
}

// Detect returns the elementwise fusion groups of g, as ordered by the
// extractor.
func (d *ElementwiseGroupDetector) Detect(g *ir.Graph) []subgraph.Group {
	groups := d.extractor.Extract(g, d.Predicate())
	d.metrics.observeGroups(groups)

	fused := 0
	for _, grp := range groups {
		fused += len(grp)
	}
	d.log.WithFields(logrus.Fields{
		"graph":     g.Name,
		"operators": len(g.Operators()),
		"groups":    len(groups),
		"fused":     fused,
	}).Info("elementwise groups detected")
	return groups
}
