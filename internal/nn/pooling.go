package nn

import (
	"fmt"

	"github.com/born-ml/resnet/internal/tensor"
)

// GlobalAvgPool2D averages every channel over its full spatial extent.
//
// Input shape:  [batch, channels, height, width]
// Output shape: [batch, channels]
type GlobalAvgPool2D[B tensor.Backend] struct{}

// NewGlobalAvgPool2D creates a global average pooling layer.
func NewGlobalAvgPool2D[B tensor.Backend]() *GlobalAvgPool2D[B] {
	return &GlobalAvgPool2D[B]{}
}

// Forward flattens the spatial dimensions and averages them.
func (g *GlobalAvgPool2D[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if _, err := g.OutputShape(input.Shape()); err != nil {
		panic(err.Error())
	}
	s := input.Shape()
	return input.Reshape(s[0], s[1], s[2]*s[3]).MeanDim(2, false)
}

// OutputShape implements Module.
func (g *GlobalAvgPool2D[B]) OutputShape(input tensor.Shape) (tensor.Shape, error) {
	if len(input) != 4 {
		return nil, fmt.Errorf("globalavgpool2d: expected 4D input [N,C,H,W], got %dD", len(input))
	}
	return tensor.Shape{input[0], input[1]}, nil
}

// Parameters returns nil (pooling has no parameters).
func (g *GlobalAvgPool2D[B]) Parameters() []*Parameter[B] {
	return nil
}

func (g *GlobalAvgPool2D[B]) String() string {
	return "GlobalAvgPool2D()"
}
