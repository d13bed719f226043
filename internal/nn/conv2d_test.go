package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/resnet/internal/backend/cpu"
	"github.com/born-ml/resnet/internal/tensor"
)

func TestConv2D_Creation(t *testing.T) {
	backend := cpu.New()

	conv := NewConv2D(3, 16, 3, 3, 1, 1, false, HeNormal{Gain: RectifierGain, Src: NewSource(1)}, backend)

	assert.Equal(t, 3, conv.InChannels())
	assert.Equal(t, 16, conv.OutChannels())
	assert.Equal(t, [2]int{3, 3}, conv.KernelSize())
	assert.True(t, conv.Weight().Shape().Equal(tensor.Shape{16, 3, 3, 3}))
	assert.Nil(t, conv.Bias())
	assert.Len(t, conv.Parameters(), 1)
}

func TestConv2D_OutputShape(t *testing.T) {
	backend := cpu.New()

	tests := []struct {
		name    string
		conv    *Conv2D[Backend]
		input   tensor.Shape
		want    tensor.Shape
		wantErr bool
	}{
		{"same 3x3", NewConv2D(16, 16, 3, 3, 1, 1, false, Constant(0), backend), tensor.Shape{2, 16, 32, 32}, tensor.Shape{2, 16, 32, 32}, false},
		{"strided 3x3", NewConv2D(16, 32, 3, 3, 2, 1, false, Constant(0), backend), tensor.Shape{2, 16, 32, 32}, tensor.Shape{2, 32, 16, 16}, false},
		{"projection 1x1", NewConv2D(32, 64, 1, 1, 2, 0, false, Constant(0), backend), tensor.Shape{1, 32, 16, 16}, tensor.Shape{1, 64, 8, 8}, false},
		{"wrong channels", NewConv2D(16, 16, 3, 3, 1, 1, false, Constant(0), backend), tensor.Shape{2, 8, 32, 32}, nil, true},
		{"not 4D", NewConv2D(16, 16, 3, 3, 1, 1, false, Constant(0), backend), tensor.Shape{16, 32, 32}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.conv.OutputShape(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v want %v", got, tt.want)
		})
	}
}

func TestConv2D_ForwardValues(t *testing.T) {
	backend := cpu.New()

	conv := NewConv2D(1, 1, 2, 2, 1, 0, true, Constant(0), backend)
	copy(conv.Weight().Tensor().Data(), []float32{1, 2, 3, 4})
	conv.Bias().Tensor().Data()[0] = 0.5

	input := fromSlice(t, backend, []float32{1, 2, 3, 4, 5, 6, 7, 8, 9}, 1, 1, 3, 3)
	output := conv.Forward(input)

	assert.True(t, output.Shape().Equal(tensor.Shape{1, 1, 2, 2}))
	assert.Equal(t, []float32{37.5, 47.5, 67.5, 77.5}, output.Data())
}

func TestConv2D_ForwardWrongChannelsPanics(t *testing.T) {
	backend := cpu.New()
	conv := NewConv2D(3, 4, 3, 3, 1, 1, false, Constant(0), backend)
	input := tensor.Zeros[float32](tensor.Shape{1, 2, 4, 4}, backend)

	assert.Panics(t, func() { conv.Forward(input) })
}

func TestConv2D_InvalidArgsPanic(t *testing.T) {
	backend := cpu.New()
	assert.Panics(t, func() { NewConv2D(0, 4, 3, 3, 1, 1, false, Constant(0), backend) })
	assert.Panics(t, func() { NewConv2D(3, 4, 3, 3, 0, 1, false, Constant(0), backend) })
	assert.Panics(t, func() { NewConv2D(3, 4, 3, 3, 1, -1, false, Constant(0), backend) })
}
