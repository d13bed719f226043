package nn

import (
	"fmt"

	"github.com/born-ml/resnet/internal/tensor"
)

// Linear is a dense layer, y = x W^T + b, with W stored [out, in].
//
//	fc := nn.NewLinear(64, 10, nn.HeNormal{Gain: 1, Src: src}, backend)
//	scores := fc.Forward(pooled) // (N, 64) -> (N, 10)
type Linear[B tensor.Backend] struct {
	in, out int
	weight  *Parameter[B] // [out, in]
	bias    *Parameter[B] // [out]
	backend B
}

// NewLinear draws the weight from init and zeroes the bias. It panics on
// non-positive sizes.
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, init Init, backend B) *Linear[B] {
	if inFeatures < 1 || outFeatures < 1 {
		panic(fmt.Sprintf("linear: features must be positive, got %d -> %d", inFeatures, outFeatures))
	}
	return &Linear[B]{
		in:      inFeatures,
		out:     outFeatures,
		weight:  NewParameter("weight", initTensor(init, inFeatures, outFeatures, tensor.Shape{outFeatures, inFeatures}, backend)),
		bias:    NewParameter("bias", tensor.Zeros[float32](tensor.Shape{outFeatures}, backend)),
		backend: backend,
	}
}

// Forward maps (N, in) to (N, out). It panics if OutputShape rejects the input.
func (l *Linear[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if _, err := l.OutputShape(input.Shape()); err != nil {
		panic(err.Error())
	}
	return input.MatMul(l.weight.Tensor().Transpose()).Add(l.bias.Tensor().Reshape(1, l.out))
}

// OutputShape implements Module.
func (l *Linear[B]) OutputShape(input tensor.Shape) (tensor.Shape, error) {
	switch {
	case len(input) != 2:
		return nil, fmt.Errorf("linear: want (N, features) input, got %v", input)
	case input[1] != l.in:
		return nil, fmt.Errorf("linear: input has %d features, want %d", input[1], l.in)
	}
	return tensor.Shape{input[0], l.out}, nil
}

// Parameters returns the weight then the bias.
func (l *Linear[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{l.weight, l.bias}
}

func (l *Linear[B]) String() string {
	return fmt.Sprintf("Linear(%d -> %d)", l.in, l.out)
}

func (l *Linear[B]) Weight() *Parameter[B] { return l.weight }
func (l *Linear[B]) Bias() *Parameter[B] { return l.bias }
func (l *Linear[B]) InFeatures() int { return l.in }
func (l *Linear[B]) OutFeatures() int { return l.out }
