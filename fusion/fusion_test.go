package fusion_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/born-ml/fusion/fusion"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const residualBlock = `
name: residual
variables:
  - {name: x, dtype: float32, shape: [8, 64]}
  - {name: w, dtype: float32, shape: [64, 64], persistable: true}
  - {name: h, dtype: float32, shape: [8, 64]}
  - {name: s, dtype: float32, shape: [8, 64]}
  - {name: a, dtype: float32, shape: [8, 64]}
  - {name: y, dtype: float32, shape: [8, 64]}
operators:
  - {name: fc, type: mul, inputs: [x, w], outputs: [h]}
  - {name: add, type: elementwise_add, inputs: [h, x], outputs: [s]}
  - {name: act, type: relu, inputs: [s], outputs: [a]}
  - {name: out, type: scale, inputs: [a], outputs: [y]}
`

func quiet() fusion.Option {
	l, _ := test.NewNullLogger()
	return fusion.WithLogger(logrus.NewEntry(l))
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAndDetect(t *testing.T) {
	for _, ext := range []string{"graph.yaml", "graph.YML"} {
		g, err := fusion.Load(writeFile(t, ext, residualBlock))
		require.NoError(t, err, ext)

		groups := fusion.Detect(g, quiet())
		require.Len(t, groups, 1)
		assert.Equal(t, []string{"add", "act", "out"}, groups[0].Names())
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	_, err := fusion.Load(writeFile(t, "graph.json", "{}"))
	assert.Error(t, err)
}

func TestLoadONNXMissingFile(t *testing.T) {
	_, err := fusion.Load(filepath.Join(t.TempDir(), "missing.onnx"))
	assert.Error(t, err)
}

func TestBuilderDetect(t *testing.T) {
	g := fusion.NewBuilder("pair").
		Var("x", fusion.Dense(fusion.Float64, 3)).
		Var("y", fusion.Dense(fusion.Float64, 3)).
		Var("z", fusion.Dense(fusion.Float64, 3)).
		Op("a", "exp", []string{"x"}, []string{"y"}).
		Op("b", "log", []string{"y"}, []string{"z"}).
		MustGraph()

	d := fusion.NewDetector(fusion.DefaultRegistry(), fusion.WithMinGroupSize(3), quiet())
	assert.Empty(t, d.Detect(g))

	d = fusion.NewDetector(fusion.DefaultRegistry(), quiet())
	groups := d.Detect(g)
	require.Len(t, groups, 1)
	assert.Equal(t, []string{"a", "b"}, groups[0].Names())

	assert.True(t, fusion.IsFusionGroupOp(g.Operators()[0]))
	assert.True(t, d.Explain(g.Operators()[1]).Accepted())
}

func TestIsGradOp(t *testing.T) {
	_, err := fusion.IsGradOp(nil)
	assert.True(t, errors.Is(err, fusion.ErrNotOperator))
}
