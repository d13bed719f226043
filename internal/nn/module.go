// Package nn implements the inference-time layers a pre-activation ResNet is
// assembled from.
//
// This package provides:
//   - Module interface: Base interface for all layers
//   - Parameter: Named parameter tensors, bound positionally from checkpoints
//   - Conv2D, BatchNorm2D, Linear: Layers with parameters
//   - ReLU, Softmax, GlobalAvgPool2D: Parameter-free layers
//   - Sequential: Container for stacking layers
//   - Init: Seeded weight initializers (He-normal, Glorot-uniform)
package nn

import (
	"github.com/born-ml/resnet/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Modules can be composed to build larger graphs:
//
//	head := nn.NewSequential[Backend](
//	    nn.NewGlobalAvgPool2D[Backend](),
//	    nn.NewLinear(64, 10, nn.HeNormal{Gain: 1, Src: src}, backend),
//	    nn.NewSoftmax[Backend](1),
//	)
//
// Type parameter B must satisfy the tensor.Backend interface.
type Module[B tensor.Backend] interface {
	// Forward computes the output of the module given an input tensor.
	//
	// Forward panics when the input shape violates the module's contract;
	// OutputShape reports the same violations as errors.
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Parameters returns the module's parameter tensors in binding order.
	//
	// Returns an empty slice for modules without parameters
	// (e.g., activation functions).
	Parameters() []*Parameter[B]

	// OutputShape returns the shape Forward would produce for an input of
	// the given shape, without computing anything.
	OutputShape(input tensor.Shape) (tensor.Shape, error)

	// String describes the module and its hyperparameters.
	String() string
}
