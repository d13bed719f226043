// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"golang.org/x/exp/rand"

	"github.com/born-ml/resnet/internal/nn"
	"github.com/born-ml/resnet/internal/tensor"
)

// Module interface defines the common interface for all layers.
type Module[B tensor.Backend] = nn.Module[B]

// Parameter is a named weight, bias or batch-norm statistic.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter creates a new parameter with the given name and tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// Initializers

// Init fills freshly allocated weights.
type Init = nn.Init

// HeNormal draws from N(0, (Gain/sqrt(fan_in))^2).
type HeNormal = nn.HeNormal

// GlorotUniform draws from U(-b, b), b = Gain*sqrt(6/(fan_in+fan_out)).
type GlorotUniform = nn.GlorotUniform

// Constant fills every element with one value.
type Constant = nn.Constant

// RectifierGain is the He gain for layers followed by ReLU.
const RectifierGain = nn.RectifierGain

// NewSource returns a deterministic random source for initializers.
func NewSource(seed uint64) rand.Source {
	return nn.NewSource(seed)
}

// Layers

// Conv2D represents a 2D convolutional layer.
type Conv2D[B tensor.Backend] = nn.Conv2D[B]

// NewConv2D creates a new 2D convolutional layer.
//
// Example:
//
//	conv := nn.NewConv2D(16, 32, 1, 1, 2, 0, false, nn.GlorotUniform{Src: src}, backend) // 1x1 stride-2 projection
func NewConv2D[B tensor.Backend](
	inChannels, outChannels int,
	kernelH, kernelW int,
	stride, padding int,
	useBias bool,
	init Init,
	backend B,
) *Conv2D[B] {
	return nn.NewConv2D(inChannels, outChannels, kernelH, kernelW, stride, padding, useBias, init, backend)
}

// BatchNorm2D is inference-mode batch normalization.
type BatchNorm2D[B tensor.Backend] = nn.BatchNorm2D[B]

// NewBatchNorm2D creates a batch-norm layer in its identity state.
func NewBatchNorm2D[B tensor.Backend](channels int, backend B) *BatchNorm2D[B] {
	return nn.NewBatchNorm2D(channels, backend)
}

// Linear represents a fully connected (dense) layer.
type Linear[B tensor.Backend] = nn.Linear[B]

// NewLinear creates a new linear layer.
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, init Init, backend B) *Linear[B] {
	return nn.NewLinear(inFeatures, outFeatures, init, backend)
}

// ReLU is the rectified linear activation.
type ReLU[B tensor.Backend] = nn.ReLU[B]

// NewReLU creates a ReLU module.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return nn.NewReLU[B]()
}

// Softmax normalizes scores along one dimension.
type Softmax[B tensor.Backend] = nn.Softmax[B]

// NewSoftmax creates a softmax over dim.
func NewSoftmax[B tensor.Backend](dim int) *Softmax[B] {
	return nn.NewSoftmax[B](dim)
}

// GlobalAvgPool2D averages each channel over its spatial extent.
type GlobalAvgPool2D[B tensor.Backend] = nn.GlobalAvgPool2D[B]

// NewGlobalAvgPool2D creates a global average pooling layer.
func NewGlobalAvgPool2D[B tensor.Backend]() *GlobalAvgPool2D[B] {
	return nn.NewGlobalAvgPool2D[B]()
}

// Sequential chains modules.
type Sequential[B tensor.Backend] = nn.Sequential[B]

// NewSequential creates a Sequential container.
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	return nn.NewSequential(modules...)
}

// BindParameters copies arrays into params positionally after checking
// count, dtype and shape of every slot.
func BindParameters[B tensor.Backend](params []*Parameter[B], arrays []*tensor.RawTensor) error {
	return nn.BindParameters(params, arrays)
}

// CountParameters returns the number of scalar values in params.
func CountParameters[B tensor.Backend](params []*Parameter[B]) int {
	return nn.CountParameters(params)
}
