// Package resnet builds full pre-activation residual networks for small
// fixed-size images.
//
// The network is a stem convolution, three stages of N residual blocks and a
// BN → ReLU → global average pool → dense softmax head:
//
//	stem:    conv3x3(C) → BN → ReLU                    [N, C, S, S]
//	stage 1: N blocks, width C                         [N, C, S, S]
//	stage 2: N blocks, width 2C, first block stride 2  [N, 2C, S/2, S/2]
//	stage 3: N blocks, width 4C, first block stride 2  [N, 4C, S/4, S/4]
//	head:    BN → ReLU → GlobalAvgPool → Linear → Softmax
//
// He et al., "Identity Mappings in Deep Residual Networks" (2016).
package resnet

import (
	"fmt"

	"github.com/born-ml/resnet/internal/nn"
	"github.com/born-ml/resnet/internal/tensor"
)

// NumStages is the number of resolution stages.
const NumStages = 3

// LayerInfo describes one node of the network graph.
type LayerInfo struct {
	Name        string       `json:"name"`
	Kind        string       `json:"kind"`
	OutputShape tensor.Shape `json:"output_shape"`
	Params      int          `json:"params"`
}

// Network is a full pre-activation ResNet classifier.
//
// Example:
//
//	cfg := resnet.DefaultConfig(resnet.Basic)
//	cfg.N = 3 // ResNet-20
//	net, err := resnet.New(cfg, cpu.New())
//	if err != nil { ... }
//	probs := net.Forward(images) // [batch, 10]
type Network[B tensor.Backend] struct {
	cfg    Config
	stem   *stack[B]
	stages [NumStages][]*Block[B]
	head   *stack[B]
	params []*nn.Parameter[B]
}

// New builds a network for cfg. Weights are initialized from cfg.Seed:
// He-normal (gain sqrt(2)) for the stem and main-path convolutions,
// Glorot-uniform for projection shortcuts, He-normal (gain 1) for the dense
// head. Biases start at zero and batch-norm layers at the identity.
func New[B tensor.Backend](cfg Config, backend B) (*Network[B], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	src := nn.NewSource(cfg.Seed)
	he := nn.HeNormal{Gain: nn.RectifierGain, Src: src}
	widths := cfg.StageChannels()

	net := &Network[B]{
		cfg:  cfg,
		stem: newStack[B](),
		head: newStack[B](),
	}

	net.stem.add("stem.conv", nn.NewConv2D(cfg.InputChannels, cfg.StemChannels, 3, 3, 1, 1, false, he, backend))
	net.stem.add("stem.bn", nn.NewBatchNorm2D(cfg.StemChannels, backend))
	net.stem.add("stem.relu", nn.NewReLU[B]())

	in := cfg.StemChannels
	size := cfg.ImageSize
	for s := 0; s < NumStages; s++ {
		for i := 0; i < cfg.N; i++ {
			stride := 1
			if s > 0 && i == 0 {
				stride = 2
			}
			preact := true
			if s == 0 && (i == 0 || cfg.SkipStageOnePreActivation) {
				preact = false
			}

			block, err := newBlock(blockSpec{
				variant:       cfg.Variant,
				inChannels:    in,
				outChannels:   widths[s],
				stride:        stride,
				preActivation: preact,
				inputSize:     size,
			}, src, backend)
			if err != nil {
				return nil, fmt.Errorf("resnet: stage %d block %d: %w", s+1, i, err)
			}
			nn.PrefixParameters(blockName(s, i), block.Parameters())
			net.stages[s] = append(net.stages[s], block)

			in = widths[s]
			size /= stride
		}
	}

	net.head.add("head.bn", nn.NewBatchNorm2D(in, backend))
	net.head.add("head.relu", nn.NewReLU[B]())
	net.head.add("head.pool", nn.NewGlobalAvgPool2D[B]())
	net.head.add("head.fc", nn.NewLinear(in, cfg.NumClasses, nn.HeNormal{Gain: 1, Src: src}, backend))
	net.head.add("head.softmax", nn.NewSoftmax[B](1))

	net.params = net.collectParameters()
	return net, nil
}

func blockName(stage, index int) string {
	return fmt.Sprintf("stage%d.block%d", stage+1, index)
}

func (n *Network[B]) collectParameters() []*nn.Parameter[B] {
	params := n.stem.seq.Parameters()
	for _, blocks := range n.stages {
		for _, b := range blocks {
			params = append(params, b.Parameters()...)
		}
	}
	return append(params, n.head.seq.Parameters()...)
}

// Forward returns class probabilities [batch, NumClasses] for images
// [batch, InputChannels, ImageSize, ImageSize].
//
// Panics if the input shape does not fit the network; check it with
// OutputShape first when it comes from outside.
func (n *Network[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	x := n.stem.seq.Forward(input)
	for _, blocks := range n.stages {
		for _, b := range blocks {
			x = b.Forward(x)
		}
	}
	return n.head.seq.Forward(x)
}

// Predict returns the most probable class of every image in input.
func (n *Network[B]) Predict(input *tensor.Tensor[float32, B]) []int32 {
	labels := n.Forward(input).Argmax(1)
	return append([]int32(nil), labels.Data()...)
}

// OutputShape implements nn.Module.
func (n *Network[B]) OutputShape(input tensor.Shape) (tensor.Shape, error) {
	_, shape, err := n.describe(input)
	return shape, err
}

// Parameters returns every learnable parameter in binding order: stem,
// blocks stage by stage, head. Names are hierarchical, for example
// "stage2.block0.conv1.weight".
func (n *Network[B]) Parameters() []*nn.Parameter[B] {
	return n.params
}

// NumParameters returns the total number of scalar parameters.
func (n *Network[B]) NumParameters() int {
	return nn.CountParameters(n.params)
}

// Layers lists every node of the graph with its output shape for a single
// image. Networks built from equal configs return equal lists.
func (n *Network[B]) Layers() []LayerInfo {
	c := n.cfg
	layers, _, err := n.describe(tensor.Shape{1, c.InputChannels, c.ImageSize, c.ImageSize})
	if err != nil {
		// Every block was checked against this shape in New.
		panic(fmt.Sprintf("resnet: inconsistent network: %v", err))
	}
	return layers
}

func (n *Network[B]) describe(input tensor.Shape) ([]LayerInfo, tensor.Shape, error) {
	layers, shape, err := n.stem.describe("", input, nil)
	if err != nil {
		return nil, nil, err
	}
	for s, blocks := range n.stages {
		for i, b := range blocks {
			if layers, shape, err = b.describe(blockName(s, i), shape, layers); err != nil {
				return nil, nil, err
			}
		}
	}
	return n.head.describe("", shape, layers)
}

// Blocks returns the blocks of stage s (0-based).
func (n *Network[B]) Blocks(s int) []*Block[B] {
	return n.stages[s]
}

// Config returns the configuration the network was built from.
func (n *Network[B]) Config() Config {
	return n.cfg
}

// Depth returns the number of weight layers, 6n+2 or 9n+2.
func (n *Network[B]) Depth() int {
	return n.cfg.Depth()
}

func (n *Network[B]) String() string {
	return n.cfg.String()
}
