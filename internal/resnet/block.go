package resnet

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/born-ml/resnet/internal/nn"
	"github.com/born-ml/resnet/internal/tensor"
)

// Block is a full pre-activation residual block.
//
//	x ──[BN → ReLU]──► main path ──► (+) ──► out
//	 └──────────── shortcut ────────┘
//
// The main path is conv3x3 → BN → ReLU → conv3x3 for Basic blocks and
// conv1x1 → BN → ReLU → conv3x3 → BN → ReLU → conv1x1 for Bottleneck blocks.
// The shortcut is the identity, or a 1x1 strided projection when the block
// changes width or resolution. The projection reads the block input before
// pre-activation.
type Block[B tensor.Backend] struct {
	variant     Variant
	inChannels  int
	outChannels int
	stride      int

	preact   *stack[B] // empty when pre-activation is skipped
	main     *stack[B]
	shortcut *nn.Conv2D[B] // nil for the identity shortcut
}

// blockSpec describes one block to build.
type blockSpec struct {
	variant       Variant
	inChannels    int
	outChannels   int
	stride        int
	preActivation bool
	inputSize     int
}

// newBlock builds a block and checks that its main path and shortcut agree
// on the output shape for a [1, in, inputSize, inputSize] input.
func newBlock[B tensor.Backend](spec blockSpec, src rand.Source, backend B) (*Block[B], error) {
	he := nn.HeNormal{Gain: nn.RectifierGain, Src: src}

	b := &Block[B]{
		variant:     spec.variant,
		inChannels:  spec.inChannels,
		outChannels: spec.outChannels,
		stride:      spec.stride,
		preact:      newStack[B](),
		main:        newStack[B](),
	}

	if spec.preActivation {
		b.preact.add("preact_bn", nn.NewBatchNorm2D(spec.inChannels, backend))
		b.preact.add("preact_relu", nn.NewReLU[B]())
	}

	switch spec.variant {
	case Basic:
		c := spec.outChannels
		b.main.add("conv1", nn.NewConv2D(spec.inChannels, c, 3, 3, spec.stride, 1, false, he, backend))
		b.main.add("bn1", nn.NewBatchNorm2D(c, backend))
		b.main.add("relu1", nn.NewReLU[B]())
		b.main.add("conv2", nn.NewConv2D(c, c, 3, 3, 1, 1, true, he, backend))
	case Bottleneck:
		mid := spec.outChannels / 4
		b.main.add("conv1", nn.NewConv2D(spec.inChannels, mid, 1, 1, spec.stride, 0, false, he, backend))
		b.main.add("bn1", nn.NewBatchNorm2D(mid, backend))
		b.main.add("relu1", nn.NewReLU[B]())
		b.main.add("conv2", nn.NewConv2D(mid, mid, 3, 3, 1, 1, false, he, backend))
		b.main.add("bn2", nn.NewBatchNorm2D(mid, backend))
		b.main.add("relu2", nn.NewReLU[B]())
		b.main.add("conv3", nn.NewConv2D(mid, spec.outChannels, 1, 1, 1, 0, true, he, backend))
	default:
		return nil, fmt.Errorf("%w: unknown variant %v", ErrInvalidConfig, spec.variant)
	}

	if spec.stride != 1 || spec.inChannels != spec.outChannels {
		glorot := nn.GlorotUniform{Src: src}
		b.shortcut = nn.NewConv2D(spec.inChannels, spec.outChannels, 1, 1, spec.stride, 0, false, glorot, backend)
		nn.PrefixParameters("projection", b.shortcut.Parameters())
	}

	if _, err := b.OutputShape(tensor.Shape{1, spec.inChannels, spec.inputSize, spec.inputSize}); err != nil {
		return nil, err
	}
	return b, nil
}

// Forward computes main(preact(x)) + shortcut(x).
func (b *Block[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	h := b.preact.seq.Forward(input)
	out := b.main.seq.Forward(h)

	residual := input
	if b.shortcut != nil {
		residual = b.shortcut.Forward(input)
	}
	return out.Add(residual)
}

// OutputShape implements nn.Module. It fails when the main path and the
// shortcut would produce different shapes.
func (b *Block[B]) OutputShape(input tensor.Shape) (tensor.Shape, error) {
	h, err := b.preact.seq.OutputShape(input)
	if err != nil {
		return nil, fmt.Errorf("resnet block: pre-activation: %w", err)
	}
	mainShape, err := b.main.seq.OutputShape(h)
	if err != nil {
		return nil, fmt.Errorf("resnet block: main path: %w", err)
	}

	shortcutShape := input
	if b.shortcut != nil {
		if shortcutShape, err = b.shortcut.OutputShape(input); err != nil {
			return nil, fmt.Errorf("resnet block: shortcut: %w", err)
		}
	}

	if !mainShape.Equal(shortcutShape) {
		return nil, fmt.Errorf("resnet block: main path shape %v != shortcut shape %v", mainShape, shortcutShape)
	}
	return mainShape, nil
}

// Parameters returns the pre-activation BN parameters, the main-path
// parameters and the projection weight, in that order.
func (b *Block[B]) Parameters() []*nn.Parameter[B] {
	params := b.preact.seq.Parameters()
	params = append(params, b.main.seq.Parameters()...)
	if b.shortcut != nil {
		params = append(params, b.shortcut.Parameters()...)
	}
	return params
}

// describe lists the block's layers, ending with the element-wise sum.
func (b *Block[B]) describe(prefix string, in tensor.Shape, out []LayerInfo) ([]LayerInfo, tensor.Shape, error) {
	out, h, err := b.preact.describe(prefix, in, out)
	if err != nil {
		return nil, nil, err
	}
	out, mainShape, err := b.main.describe(prefix, h, out)
	if err != nil {
		return nil, nil, err
	}
	shortcutShape := in
	if b.shortcut != nil {
		if shortcutShape, err = b.shortcut.OutputShape(in); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", joinName(prefix, "projection"), err)
		}
		out = append(out, LayerInfo{
			Name:        joinName(prefix, "projection"),
			Kind:        kindOf(b.shortcut),
			OutputShape: shortcutShape,
			Params:      nn.CountParameters(b.shortcut.Parameters()),
		})
	}
	if !mainShape.Equal(shortcutShape) {
		return nil, nil, fmt.Errorf("%s: main path shape %v != shortcut shape %v", prefix, mainShape, shortcutShape)
	}
	out = append(out, LayerInfo{Name: joinName(prefix, "sum"), Kind: "ElemwiseSum", OutputShape: mainShape})
	return out, mainShape, nil
}

// Variant returns the block form.
func (b *Block[B]) Variant() Variant {
	return b.variant
}

// InChannels returns the input width.
func (b *Block[B]) InChannels() int {
	return b.inChannels
}

// OutChannels returns the output width.
func (b *Block[B]) OutChannels() int {
	return b.outChannels
}

// Stride returns the stride of the first main-path convolution.
func (b *Block[B]) Stride() int {
	return b.stride
}

// HasPreActivation reports whether the block starts with BN → ReLU.
func (b *Block[B]) HasPreActivation() bool {
	return !b.preact.empty()
}

// Projection returns the projection shortcut, or nil for the identity.
func (b *Block[B]) Projection() *nn.Conv2D[B] {
	return b.shortcut
}

// Convolutions returns the main-path convolutions in order.
func (b *Block[B]) Convolutions() []*nn.Conv2D[B] {
	var convs []*nn.Conv2D[B]
	for i := 0; i < b.main.seq.Len(); i++ {
		if c, ok := b.main.seq.Module(i).(*nn.Conv2D[B]); ok {
			convs = append(convs, c)
		}
	}
	return convs
}

func (b *Block[B]) String() string {
	shortcut := "identity"
	if b.shortcut != nil {
		shortcut = "projection"
	}
	return fmt.Sprintf("ResidualBlock(%s, %d->%d, stride=%d, preact=%v, shortcut=%s)",
		b.variant, b.inChannels, b.outChannels, b.stride, b.HasPreActivation(), shortcut)
}
