package nn

import (
	"fmt"

	"github.com/born-ml/resnet/internal/tensor"
)

// ReLU is a Rectified Linear Unit activation module.
//
// Applies the element-wise function: f(x) = max(0, x)
type ReLU[B tensor.Backend] struct{}

// NewReLU creates a new ReLU activation module.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return &ReLU[B]{}
}

// Forward applies ReLU activation: f(x) = max(0, x).
func (r *ReLU[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return input.ReLU()
}

// OutputShape implements Module.
func (r *ReLU[B]) OutputShape(input tensor.Shape) (tensor.Shape, error) {
	return input.Clone(), nil
}

// Parameters returns nil (ReLU has no parameters).
func (r *ReLU[B]) Parameters() []*Parameter[B] {
	return nil
}

func (r *ReLU[B]) String() string {
	return "ReLU()"
}

// Softmax turns scores into a probability distribution along one dimension.
type Softmax[B tensor.Backend] struct {
	dim int
}

// NewSoftmax creates a softmax over dim (1 for [batch, classes] scores).
func NewSoftmax[B tensor.Backend](dim int) *Softmax[B] {
	return &Softmax[B]{dim: dim}
}

// Forward applies softmax along the configured dimension.
func (s *Softmax[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return input.Softmax(s.dim)
}

// OutputShape implements Module.
func (s *Softmax[B]) OutputShape(input tensor.Shape) (tensor.Shape, error) {
	dim := s.dim
	if dim < 0 {
		dim += len(input)
	}
	if dim < 0 || dim >= len(input) {
		return nil, fmt.Errorf("softmax: dimension %d out of range for %dD input", s.dim, len(input))
	}
	return input.Clone(), nil
}

// Parameters returns nil (Softmax has no parameters).
func (s *Softmax[B]) Parameters() []*Parameter[B] {
	return nil
}

func (s *Softmax[B]) String() string {
	return fmt.Sprintf("Softmax(dim=%d)", s.dim)
}
