package tensor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/resnet/internal/backend/cpu"
	"github.com/born-ml/resnet/internal/tensor"
)

func TestShape_NumElements(t *testing.T) {
	assert.Equal(t, 1, tensor.Shape{}.NumElements())
	assert.Equal(t, 6, tensor.Shape{2, 3}.NumElements())
	assert.Equal(t, 3072, tensor.Shape{1, 3, 32, 32}.NumElements())
}

func TestShape_Validate(t *testing.T) {
	require.NoError(t, tensor.Shape{1, 3, 32, 32}.Validate())
	assert.Error(t, tensor.Shape{2, 0}.Validate())
	assert.Error(t, tensor.Shape{-1}.Validate())
}

func TestShape_String(t *testing.T) {
	assert.Equal(t, "(10000,)", tensor.Shape{10000}.String())
	assert.Equal(t, "(1, 3, 32, 32)", tensor.Shape{1, 3, 32, 32}.String())
	assert.Equal(t, "()", tensor.Shape{}.String())
}

func TestShape_ComputeStrides(t *testing.T) {
	assert.Equal(t, []int{3072, 1024, 32, 1}, tensor.Shape{2, 3, 32, 32}.ComputeStrides())
	assert.Empty(t, tensor.Shape{}.ComputeStrides())
}

func TestShape_Clone(t *testing.T) {
	s := tensor.Shape{2, 3}
	c := s.Clone()
	c[0] = 7
	assert.Equal(t, 2, s[0])
}

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		name      string
		a, b      tensor.Shape
		want      tensor.Shape
		broadcast bool
		wantErr   bool
	}{
		{"same", tensor.Shape{2, 3}, tensor.Shape{2, 3}, tensor.Shape{2, 3}, false, false},
		{"channel bias", tensor.Shape{8, 16, 4, 4}, tensor.Shape{1, 16, 1, 1}, tensor.Shape{8, 16, 4, 4}, true, false},
		{"rank differs", tensor.Shape{2, 3}, tensor.Shape{3}, tensor.Shape{2, 3}, true, false},
		{"incompatible", tensor.Shape{8, 16, 4, 4}, tensor.Shape{8, 32, 2, 2}, nil, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, broadcast, err := tensor.BroadcastShapes(tt.a, tt.b)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.broadcast, broadcast)
		})
	}
}

func TestRawTensor(t *testing.T) {
	raw, err := tensor.FromFloat32([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, tensor.CPU)
	require.NoError(t, err)
	assert.Equal(t, tensor.Float32, raw.DType())
	assert.Equal(t, 24, raw.ByteSize())
	assert.Equal(t, []int{3, 1}, raw.Strides())

	view, err := raw.WithShape(tensor.Shape{3, 2})
	require.NoError(t, err)
	view.AsFloat32()[0] = 9
	assert.Equal(t, float32(9), raw.AsFloat32()[0], "WithShape shares the buffer")

	clone := raw.Clone()
	clone.AsFloat32()[1] = 42
	assert.Equal(t, float32(2), raw.AsFloat32()[1], "Clone copies the buffer")

	_, err = raw.WithShape(tensor.Shape{4})
	assert.Error(t, err)
	_, err = tensor.FromFloat32([]float32{1}, tensor.Shape{2}, tensor.CPU)
	assert.Error(t, err)

	assert.Panics(t, func() { raw.AsInt32() })
}

func TestDataType(t *testing.T) {
	for _, dt := range []tensor.DataType{tensor.Float32, tensor.Int32, tensor.Uint8} {
		parsed, ok := tensor.ParseDataType(dt.String())
		require.True(t, ok)
		assert.Equal(t, dt, parsed)
	}
	_, ok := tensor.ParseDataType("float16")
	assert.False(t, ok)
	assert.Equal(t, 1, tensor.Uint8.Size())
}

func TestTensor_CreationAndIndexing(t *testing.T) {
	backend := cpu.New()

	z := tensor.Zeros[float32](tensor.Shape{2, 2}, backend)
	assert.Equal(t, []float32{0, 0, 0, 0}, z.Data())

	f := tensor.Full[int32](tensor.Shape{3}, 7, backend)
	assert.Equal(t, []int32{7, 7, 7}, f.Data())
	assert.Equal(t, tensor.Int32, f.DType())

	x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, backend)
	require.NoError(t, err)
	assert.Equal(t, float32(6), x.At(1, 2))
	x.Set(-1, 0, 1)
	assert.Equal(t, float32(-1), x.Data()[1])
	assert.Equal(t, "Tensor[float32](2, 3) on CPU", x.String())

	assert.Panics(t, func() { x.At(2, 0) })
	assert.Panics(t, func() { x.At(0) })

	_, err = tensor.FromSlice([]float32{1, 2}, tensor.Shape{3}, backend)
	assert.Error(t, err)
}

func TestTensor_Ops(t *testing.T) {
	backend := cpu.New()

	x, err := tensor.FromSlice([]float32{-1, 2, 3, -4}, tensor.Shape{2, 2}, backend)
	require.NoError(t, err)

	assert.Equal(t, []float32{0, 2, 3, 0}, x.ReLU().Data())
	assert.Equal(t, []float32{-2, 4, 6, -8}, x.Add(x).Data())
	assert.Equal(t, []float32{1, 4, 9, 16}, x.Mul(x).Data())
	assert.Equal(t, []float32{-1, 3, 2, -4}, x.Transpose().Data())
	assert.Equal(t, tensor.Shape{4}, x.Reshape(4).Shape())
	assert.Equal(t, []float32{0.5, -0.5}, x.MeanDim(1, false).Data())
	assert.Equal(t, []int32{1, 0}, x.Argmax(1).Data())

	probs := x.Softmax(1).Data()
	assert.InDelta(t, 1.0, float64(probs[0]+probs[1]), 1e-6)
	assert.Equal(t, []float32{-1, 2, 3, -4}, x.Data(), "operations leave the receiver alone")
}
