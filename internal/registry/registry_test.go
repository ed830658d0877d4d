package registry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	r := Default()

	elementwise := r.Find(Elementwise)
	for _, op := range []string{
		"elementwise_add", "elementwise_mul", "relu", "sigmoid", "tanh",
		"relu_grad", "elementwise_add_grad",
		"Add", "Relu", "Sigmoid",
	} {
		assert.True(t, elementwise.Contains(op), "expected %s to be elementwise", op)
	}

	for _, op := range []string{"conv2d", "matmul", "reduce_sum", "MatMul", "scale_grad"} {
		assert.False(t, elementwise.Contains(op), "expected %s not to be elementwise", op)
	}

	assert.Equal(t, []Category{Elementwise, Other, Reduction}, r.Categories())
}

func TestRegistryGet(t *testing.T) {
	r := Default()

	op, ok := r.Get("elementwise_add")
	require.True(t, ok)
	assert.Equal(t, Elementwise, op.Category)
	assert.Equal(t, 2, op.NumOperands)

	grad, ok := r.Get("elementwise_add_grad")
	require.True(t, ok)
	assert.Equal(t, Elementwise, grad.Category)
	assert.Equal(t, 0, grad.NumOperands)

	_, ok = r.Get("UnknownOp")
	assert.False(t, ok)
}

func TestRegisterDuplicate(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(Operation{Type: "my_op", Category: Elementwise, NumOperands: 1}))
	err := r.Register(Operation{Type: "my_op", Category: Other})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestRegisterInvalid(t *testing.T) {
	r := New()
	assert.Error(t, r.Register(Operation{Category: Elementwise}))
	assert.Error(t, r.Register(Operation{Type: "x"}))
	assert.Equal(t, 0, r.Len())
}

func TestFindIsSnapshot(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(Operation{Type: "a", Category: Elementwise}))

	set := r.Find(Elementwise)
	require.NoError(t, r.Register(Operation{Type: "b", Category: Elementwise}))

	assert.Equal(t, []string{"a"}, set.Sorted())
	assert.Equal(t, []string{"a", "b"}, r.Find(Elementwise).Sorted())
}

func TestLoad(t *testing.T) {
	table := `
operations:
  - {type: gelu, category: elementwise, operands: 1, grad: true}
  - {type: layer_norm, category: other}
`
	r := New()
	require.NoError(t, r.Load(strings.NewReader(table)))

	assert.Equal(t, 3, r.Len())
	assert.Equal(t, []string{"gelu", "gelu_grad"}, r.Find(Elementwise).Sorted())
}

func TestLoadEmpty(t *testing.T) {
	r := New()
	require.NoError(t, r.Load(strings.NewReader("")))
	assert.Equal(t, 0, r.Len())
}

func TestLoadIsAllOrNothing(t *testing.T) {
	tests := map[string]string{
		"duplicate in table":      "operations:\n  - {type: a, category: elementwise}\n  - {type: b, category: other}\n  - {type: a, category: other}\n",
		"clashes with registered": "operations:\n  - {type: a, category: elementwise}\n  - {type: existing, category: other}\n",
		"grad clashes":            "operations:\n  - {type: a, category: elementwise, grad: true}\n  - {type: a_grad, category: elementwise}\n",
		"missing category":        "operations:\n  - {type: a, category: elementwise}\n  - {type: b}\n",
	}
	for name, table := range tests {
		t.Run(name, func(t *testing.T) {
			r := New()
			require.NoError(t, r.Register(Operation{Type: "existing", Category: Elementwise}))

			assert.Error(t, r.Load(strings.NewReader(table)))
			assert.Equal(t, 1, r.Len())
			_, ok := r.Get("a")
			assert.False(t, ok)
		})
	}
}

func TestLoadUnknownField(t *testing.T) {
	r := New()
	err := r.Load(strings.NewReader("operations:\n  - {type: a, category: elementwise, kind: x}\n"))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ops.yaml")
	require.NoError(t, os.WriteFile(path, []byte("operations:\n  - {type: a, category: elementwise}\n"), 0o600))

	r := New()
	require.NoError(t, r.LoadFile(path))
	assert.True(t, r.Find(Elementwise).Contains("a"))

	err := r.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestTypeSet(t *testing.T) {
	s := NewTypeSet("b", "a", "b")
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Contains("a"))
	assert.False(t, s.Contains("c"))
	assert.Equal(t, []string{"a", "b"}, s.Sorted())

	var zero TypeSet
	assert.False(t, zero.Contains("a"))
	assert.Equal(t, 0, zero.Len())
}
