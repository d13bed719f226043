package nn

import (
	"fmt"

	"github.com/born-ml/resnet/internal/tensor"
)

// BatchNorm2D normalizes each channel with stored statistics.
//
// Formula: y = (x - mean) * inv_std * gamma + beta
//
// Where, per channel c:
//   - mean and inv_std = 1 / sqrt(var + eps) are the population statistics
//   - gamma and beta are the learned scale and shift
//
// Only the inference form is implemented; statistics are never updated.
// Parameters are exposed in the order beta, gamma, mean, inv_std.
//
// Input and output shape: [batch, channels, height, width].
type BatchNorm2D[B tensor.Backend] struct {
	channels int

	beta   *Parameter[B] // [channels], zeros
	gamma  *Parameter[B] // [channels], ones
	mean   *Parameter[B] // [channels], zeros
	invStd *Parameter[B] // [channels], ones

	backend B
}

// NewBatchNorm2D creates a batch-norm layer in its identity state.
func NewBatchNorm2D[B tensor.Backend](channels int, backend B) *BatchNorm2D[B] {
	if channels <= 0 {
		panic(fmt.Sprintf("batchnorm2d: invalid channels %d", channels))
	}
	shape := tensor.Shape{channels}
	return &BatchNorm2D[B]{
		channels: channels,
		beta:     NewParameter("beta", tensor.Zeros[float32](shape, backend)),
		gamma:    NewParameter("gamma", tensor.Ones[float32](shape, backend)),
		mean:     NewParameter("mean", tensor.Zeros[float32](shape, backend)),
		invStd:   NewParameter("inv_std", tensor.Ones[float32](shape, backend)),
		backend:  backend,
	}
}

// Forward applies the per-channel affine transform.
//
// The four parameter vectors fold into one scale and one shift per channel,
// which are then broadcast over [N, C, H, W].
func (bn *BatchNorm2D[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if _, err := bn.OutputShape(input.Shape()); err != nil {
		panic(err.Error())
	}

	beta := bn.beta.Tensor().Data()
	gamma := bn.gamma.Tensor().Data()
	mean := bn.mean.Tensor().Data()
	invStd := bn.invStd.Tensor().Data()

	scale := make([]float32, bn.channels)
	shift := make([]float32, bn.channels)
	for c := range scale {
		scale[c] = gamma[c] * invStd[c]
		shift[c] = beta[c] - mean[c]*scale[c]
	}

	shape := tensor.Shape{1, bn.channels, 1, 1}
	scaleT, err := tensor.FromSlice(scale, shape, bn.backend)
	if err != nil {
		panic(err.Error())
	}
	shiftT, err := tensor.FromSlice(shift, shape, bn.backend)
	if err != nil {
		panic(err.Error())
	}

	return input.Mul(scaleT).Add(shiftT)
}

// OutputShape implements Module.
func (bn *BatchNorm2D[B]) OutputShape(input tensor.Shape) (tensor.Shape, error) {
	if len(input) != 4 {
		return nil, fmt.Errorf("batchnorm2d: expected 4D input [N,C,H,W], got %dD", len(input))
	}
	if input[1] != bn.channels {
		return nil, fmt.Errorf("batchnorm2d: input channels %d != expected %d", input[1], bn.channels)
	}
	return input.Clone(), nil
}

// Parameters returns [beta, gamma, mean, inv_std].
func (bn *BatchNorm2D[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{bn.beta, bn.gamma, bn.mean, bn.invStd}
}

// Channels returns the number of normalized channels.
func (bn *BatchNorm2D[B]) Channels() int {
	return bn.channels
}

// String returns a string representation of the layer.
func (bn *BatchNorm2D[B]) String() string {
	return fmt.Sprintf("BatchNorm2D(channels=%d)", bn.channels)
}
