package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/resnet/internal/tensor"
)

func TestAdd_SameShape(t *testing.T) {
	backend := New()
	a := rawFrom(t, []float32{1, 2, 3, 4}, 2, 2)
	b := rawFrom(t, []float32{10, 20, 30, 40}, 2, 2)

	out := backend.Add(a, b)

	assert.Equal(t, []float32{11, 22, 33, 44}, out.AsFloat32())
	// Inputs are untouched.
	assert.Equal(t, []float32{1, 2, 3, 4}, a.AsFloat32())
}

func TestAdd_ChannelBroadcast(t *testing.T) {
	backend := New()
	x := rawFrom(t, make([]float32, 2*3*2*2), 2, 3, 2, 2)
	bias := rawFrom(t, []float32{1, 2, 3}, 1, 3, 1, 1)

	out := backend.Add(x, bias)

	require.True(t, out.Shape().Equal(tensor.Shape{2, 3, 2, 2}))
	data := out.AsFloat32()
	for n := 0; n < 2; n++ {
		for c := 0; c < 3; c++ {
			for i := 0; i < 4; i++ {
				assert.Equal(t, float32(c+1), data[(n*3+c)*4+i])
			}
		}
	}
}

func TestMul_Broadcast(t *testing.T) {
	backend := New()
	x := rawFrom(t, []float32{1, 2, 3, 4, 5, 6}, 2, 3)
	s := rawFrom(t, []float32{2, 0, -1}, 1, 3)

	out := backend.Mul(x, s)

	assert.Equal(t, []float32{2, 0, -3, 8, 0, -6}, out.AsFloat32())
}

func TestAdd_IncompatiblePanics(t *testing.T) {
	backend := New()
	a := rawFrom(t, make([]float32, 6), 2, 3)
	b := rawFrom(t, make([]float32, 4), 2, 2)

	assert.Panics(t, func() { backend.Add(a, b) })
}

func TestReshape_View(t *testing.T) {
	backend := New()
	x := rawFrom(t, seq(6), 2, 3)

	out := backend.Reshape(x, tensor.Shape{3, 2})

	assert.True(t, out.Shape().Equal(tensor.Shape{3, 2}))
	assert.Equal(t, seq(6), out.AsFloat32())
	assert.Panics(t, func() { backend.Reshape(x, tensor.Shape{4, 2}) })
}

func TestTranspose(t *testing.T) {
	backend := New()
	x := rawFrom(t, seq(6), 2, 3)

	out := backend.Transpose(x)

	require.True(t, out.Shape().Equal(tensor.Shape{3, 2}))
	assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, out.AsFloat32())
}

func TestTranspose_Axes(t *testing.T) {
	backend := New()
	x := rawFrom(t, seq(24), 2, 3, 4)

	out := backend.Transpose(x, 2, 0, 1)

	require.True(t, out.Shape().Equal(tensor.Shape{4, 2, 3}))
	// out[k, i, j] == x[i, j, k]
	assert.Equal(t, float32(1+1*12+2*4+3), out.AsFloat32()[3*6+1*3+2])
}

func TestMatMul(t *testing.T) {
	backend := New()
	a := rawFrom(t, []float32{1, 2, 3, 4, 5, 6}, 2, 3)
	b := rawFrom(t, []float32{7, 8, 9, 10, 11, 12}, 3, 2)

	out := backend.MatMul(a, b)

	require.True(t, out.Shape().Equal(tensor.Shape{2, 2}))
	assert.Equal(t, []float32{58, 64, 139, 154}, out.AsFloat32())
}

func TestMatMul_ShapeMismatchPanics(t *testing.T) {
	backend := New()
	a := rawFrom(t, make([]float32, 6), 2, 3)
	b := rawFrom(t, make([]float32, 4), 2, 2)

	assert.Panics(t, func() { backend.MatMul(a, b) })
}
