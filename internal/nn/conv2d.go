package nn

import (
	"fmt"

	"github.com/born-ml/resnet/internal/tensor"
)

// Conv2D convolves NCHW input with a bank of [out, in, kh, kw] filters and
// optionally adds a per-channel bias. Padding is zero and symmetric, so a
// 3x3 kernel with padding 1 keeps the spatial size at stride 1 and halves
// it at stride 2:
//
//	conv := nn.NewConv2D(16, 32, 3, 3, 2, 1, false, nn.HeNormal{Gain: nn.RectifierGain, Src: src}, backend)
//	y := conv.Forward(x) // (N, 16, 32, 32) -> (N, 32, 16, 16)
type Conv2D[B tensor.Backend] struct {
	in, out int
	kernel  [2]int
	stride  int
	padding int

	weight *Parameter[B]
	bias   *Parameter[B] // nil without bias

	backend B
}

// NewConv2D allocates a convolution and fills its weight with init. The
// bias, when requested, starts at zero. It panics on non-positive channels,
// kernel or stride and on negative padding.
func NewConv2D[B tensor.Backend](
	inChannels, outChannels int,
	kernelH, kernelW int,
	stride, padding int,
	useBias bool,
	init Init,
	backend B,
) *Conv2D[B] {
	switch {
	case inChannels < 1 || outChannels < 1:
		panic(fmt.Sprintf("conv2d: channels must be positive, got %d -> %d", inChannels, outChannels))
	case kernelH < 1 || kernelW < 1:
		panic(fmt.Sprintf("conv2d: kernel must be positive, got %dx%d", kernelH, kernelW))
	case stride < 1:
		panic(fmt.Sprintf("conv2d: stride must be positive, got %d", stride))
	case padding < 0:
		panic(fmt.Sprintf("conv2d: padding must not be negative, got %d", padding))
	}

	area := kernelH * kernelW
	c := &Conv2D[B]{
		in:      inChannels,
		out:     outChannels,
		kernel:  [2]int{kernelH, kernelW},
		stride:  stride,
		padding: padding,
		backend: backend,
	}
	c.weight = NewParameter("weight", initTensor(init, inChannels*area, outChannels*area,
		tensor.Shape{outChannels, inChannels, kernelH, kernelW}, backend))
	if useBias {
		c.bias = NewParameter("bias", tensor.Zeros[float32](tensor.Shape{outChannels}, backend))
	}
	return c
}

// Forward convolves input. It panics if OutputShape rejects the input.
func (c *Conv2D[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if _, err := c.OutputShape(input.Shape()); err != nil {
		panic(err.Error())
	}
	y := tensor.New[float32](c.backend.Conv2D(input.Raw(), c.weight.Tensor().Raw(), c.stride, c.padding), c.backend)
	if c.bias != nil {
		y = y.Add(c.bias.Tensor().Reshape(1, c.out, 1, 1))
	}
	return y
}

// OutputShape implements Module.
func (c *Conv2D[B]) OutputShape(input tensor.Shape) (tensor.Shape, error) {
	if len(input) != 4 {
		return nil, fmt.Errorf("conv2d: want (N, C, H, W) input, got %v", input)
	}
	if input[1] != c.in {
		return nil, fmt.Errorf("conv2d: input has %d channels, want %d", input[1], c.in)
	}
	h, w := c.spatial(input[2], c.kernel[0]), c.spatial(input[3], c.kernel[1])
	if h < 1 || w < 1 {
		return nil, fmt.Errorf("conv2d: %dx%d input is smaller than the %dx%d kernel", input[2], input[3], c.kernel[0], c.kernel[1])
	}
	return tensor.Shape{input[0], c.out, h, w}, nil
}

func (c *Conv2D[B]) spatial(size, kernel int) int {
	return (size+2*c.padding-kernel)/c.stride + 1
}

// Parameters returns the weight, followed by the bias if there is one.
func (c *Conv2D[B]) Parameters() []*Parameter[B] {
	if c.bias == nil {
		return []*Parameter[B]{c.weight}
	}
	return []*Parameter[B]{c.weight, c.bias}
}

func (c *Conv2D[B]) String() string {
	return fmt.Sprintf("Conv2D(%d -> %d, kernel=%dx%d, stride=%d, padding=%d, bias=%t)",
		c.in, c.out, c.kernel[0], c.kernel[1], c.stride, c.padding, c.bias != nil)
}

// Accessors.

func (c *Conv2D[B]) Weight() *Parameter[B] { return c.weight }
func (c *Conv2D[B]) Bias() *Parameter[B] { return c.bias }
func (c *Conv2D[B]) InChannels() int { return c.in }
func (c *Conv2D[B]) OutChannels() int { return c.out }
func (c *Conv2D[B]) KernelSize() [2]int { return c.kernel }
func (c *Conv2D[B]) Stride() int { return c.stride }
func (c *Conv2D[B]) Padding() int { return c.padding }
