package resnet

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/resnet/internal/backend/cpu"
	"github.com/born-ml/resnet/internal/nn"
	"github.com/born-ml/resnet/internal/tensor"
)

type Backend = *cpu.CPUBackend

func smallConfig(variant Variant, n int) Config {
	cfg := DefaultConfig(variant)
	cfg.N = n
	cfg.Seed = 42
	return cfg
}

func build(t *testing.T, cfg Config) *Network[Backend] {
	t.Helper()
	net, err := New(cfg, cpu.New())
	require.NoError(t, err)
	return net
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := smallConfig(Basic, 0)
	_, err := New(cfg, cpu.New())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNew_StageLayout(t *testing.T) {
	for _, variant := range []Variant{Basic, Bottleneck} {
		t.Run(variant.String(), func(t *testing.T) {
			cfg := smallConfig(variant, 2)
			net := build(t, cfg)
			widths := cfg.StageChannels()

			for s := 0; s < NumStages; s++ {
				blocks := net.Blocks(s)
				require.Len(t, blocks, cfg.N)

				for i, b := range blocks {
					assert.Equal(t, widths[s], b.OutChannels())
					if s > 0 && i == 0 {
						assert.Equal(t, 2, b.Stride())
						assert.Equal(t, widths[s-1], b.InChannels())
						require.NotNil(t, b.Projection(), "stage %d block %d", s+1, i)
						assert.Equal(t, [2]int{1, 1}, b.Projection().KernelSize())
						assert.Equal(t, 2, b.Projection().Stride())
						assert.Nil(t, b.Projection().Bias())
						assert.Equal(t, 2, b.Convolutions()[0].Stride())
					} else {
						assert.Equal(t, 1, b.Stride())
						assert.Nil(t, b.Projection(), "stage %d block %d", s+1, i)
					}
				}
			}
		})
	}
}

func TestNew_PreActivation(t *testing.T) {
	net := build(t, smallConfig(Basic, 3))

	assert.False(t, net.Blocks(0)[0].HasPreActivation())
	assert.True(t, net.Blocks(0)[1].HasPreActivation())
	assert.True(t, net.Blocks(0)[2].HasPreActivation())
	for s := 1; s < NumStages; s++ {
		for _, b := range net.Blocks(s) {
			assert.True(t, b.HasPreActivation())
		}
	}

	cfg := smallConfig(Basic, 3)
	cfg.SkipStageOnePreActivation = true
	skipped := build(t, cfg)
	for _, b := range skipped.Blocks(0) {
		assert.False(t, b.HasPreActivation())
	}
	assert.True(t, skipped.Blocks(1)[0].HasPreActivation())
	assert.Less(t, len(skipped.Parameters()), len(net.Parameters()))
}

func TestNew_BlockConvolutions(t *testing.T) {
	basic := build(t, smallConfig(Basic, 1))
	for s := 0; s < NumStages; s++ {
		convs := basic.Blocks(s)[0].Convolutions()
		require.Len(t, convs, 2)
		assert.Equal(t, [2]int{3, 3}, convs[0].KernelSize())
		assert.Nil(t, convs[0].Bias())
		assert.NotNil(t, convs[1].Bias())
	}

	bottleneck := build(t, smallConfig(Bottleneck, 1))
	for s := 0; s < NumStages; s++ {
		b := bottleneck.Blocks(s)[0]
		convs := b.Convolutions()
		require.Len(t, convs, 3)
		assert.Equal(t, [2]int{1, 1}, convs[0].KernelSize())
		assert.Equal(t, 0, convs[0].Padding())
		assert.Equal(t, b.OutChannels()/4, convs[0].OutChannels())
		assert.Equal(t, [2]int{3, 3}, convs[1].KernelSize())
		assert.Equal(t, 1, convs[1].Padding())
		assert.Equal(t, b.OutChannels()/4, convs[1].OutChannels())
		assert.Equal(t, b.OutChannels(), convs[2].OutChannels())
		assert.NotNil(t, convs[2].Bias())
	}
}

func TestNetwork_DepthMatchesWeightLayers(t *testing.T) {
	for _, variant := range []Variant{Basic, Bottleneck} {
		net := build(t, smallConfig(variant, 2))

		weightLayers := 0
		for _, l := range net.Layers() {
			if (l.Kind == "Conv2D" && !strings.HasSuffix(l.Name, "projection")) || l.Kind == "Linear" {
				weightLayers++
			}
		}
		assert.Equal(t, net.Depth(), weightLayers, variant.String())
	}
}

func TestNetwork_Parameters(t *testing.T) {
	net := build(t, smallConfig(Basic, 1))
	params := net.Parameters()

	require.Len(t, params, 42)
	assert.Equal(t, 78442, net.NumParameters())

	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name()
	}
	assert.Equal(t, []string{
		"stem.conv.weight",
		"stem.bn.beta", "stem.bn.gamma", "stem.bn.mean", "stem.bn.inv_std",
		"stage1.block0.conv1.weight",
	}, names[:6])
	assert.Equal(t, []string{
		"stage2.block0.preact_bn.beta", "stage2.block0.preact_bn.gamma",
		"stage2.block0.preact_bn.mean", "stage2.block0.preact_bn.inv_std",
		"stage2.block0.conv1.weight",
		"stage2.block0.bn1.beta", "stage2.block0.bn1.gamma",
		"stage2.block0.bn1.mean", "stage2.block0.bn1.inv_std",
		"stage2.block0.conv2.weight", "stage2.block0.conv2.bias",
		"stage2.block0.projection.weight",
	}, names[12:24])
	assert.Equal(t, "head.fc.bias", names[len(names)-1])
	assert.True(t, params[len(params)-2].Shape().Equal(tensor.Shape{10, 64}))
}

func TestNetwork_InitialValues(t *testing.T) {
	net := build(t, smallConfig(Basic, 1))

	for _, p := range net.Parameters() {
		data := p.Tensor().Data()
		switch {
		case strings.HasSuffix(p.Name(), ".bias"), strings.HasSuffix(p.Name(), ".beta"),
			strings.HasSuffix(p.Name(), ".mean"):
			assert.Equal(t, make([]float32, len(data)), data, p.Name())
		case strings.HasSuffix(p.Name(), ".gamma"), strings.HasSuffix(p.Name(), ".inv_std"):
			for _, v := range data {
				assert.Equal(t, float32(1), v, p.Name())
			}
		default:
			nonZero := 0
			for _, v := range data {
				if v != 0 {
					nonZero++
				}
			}
			assert.Positive(t, nonZero, p.Name())
		}
	}
}

func TestNetwork_Deterministic(t *testing.T) {
	cfg := smallConfig(Bottleneck, 1)
	a := build(t, cfg)
	b := build(t, cfg)

	assert.Equal(t, a.Layers(), b.Layers())
	pa, pb := a.Parameters(), b.Parameters()
	require.Len(t, pb, len(pa))
	for i := range pa {
		assert.Equal(t, pa[i].Tensor().Data(), pb[i].Tensor().Data(), pa[i].Name())
	}

	cfg.Seed = 43
	c := build(t, cfg)
	assert.Equal(t, a.Layers(), c.Layers())
	assert.NotEqual(t, pa[0].Tensor().Data(), c.Parameters()[0].Tensor().Data())
}

func TestNetwork_Layers(t *testing.T) {
	net := build(t, smallConfig(Basic, 2))
	layers := net.Layers()

	sums := 0
	for _, l := range layers {
		if l.Kind == "ElemwiseSum" {
			sums++
		}
	}
	assert.Equal(t, 3*2, sums)

	byName := make(map[string]LayerInfo, len(layers))
	for _, l := range layers {
		byName[l.Name] = l
	}
	assert.Equal(t, tensor.Shape{1, 16, 32, 32}, byName["stem.relu"].OutputShape)
	assert.Equal(t, tensor.Shape{1, 16, 32, 32}, byName["stage1.block1.sum"].OutputShape)
	assert.Equal(t, tensor.Shape{1, 32, 16, 16}, byName["stage2.block0.projection"].OutputShape)
	assert.Equal(t, tensor.Shape{1, 64, 8, 8}, byName["stage3.block1.sum"].OutputShape)
	assert.Equal(t, tensor.Shape{1, 64}, byName["head.pool"].OutputShape)

	last := layers[len(layers)-1]
	assert.Equal(t, "head.softmax", last.Name)
	assert.Equal(t, tensor.Shape{1, 10}, last.OutputShape)
}

func TestNetwork_OutputShape(t *testing.T) {
	net := build(t, smallConfig(Bottleneck, 1))

	shape, err := net.OutputShape(tensor.Shape{8, 3, 32, 32})
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{8, 10}, shape)

	_, err = net.OutputShape(tensor.Shape{8, 1, 32, 32})
	assert.Error(t, err)
}

func TestNetwork_Forward(t *testing.T) {
	cfg := smallConfig(Basic, 1)
	cfg.ImageSize = 8
	net := build(t, cfg)
	backend := cpu.New()

	input := tensor.Zeros[float32](tensor.Shape{2, 3, 8, 8}, backend)
	data := input.Data()
	for i := range data {
		data[i] = float32(i%7) * 0.1
	}

	probs := net.Forward(input)
	require.Equal(t, tensor.Shape{2, 10}, probs.Shape())
	for row := 0; row < 2; row++ {
		sum := float32(0)
		for c := 0; c < 10; c++ {
			v := probs.At(row, c)
			assert.GreaterOrEqual(t, v, float32(0))
			sum += v
		}
		assert.InDelta(t, 1.0, sum, 1e-5)
	}

	labels := net.Predict(input)
	require.Len(t, labels, 2)
	for _, l := range labels {
		assert.GreaterOrEqual(t, l, int32(0))
		assert.Less(t, l, int32(10))
	}
}

func TestNetwork_ForwardAfterBind(t *testing.T) {
	cfg := smallConfig(Basic, 1)
	cfg.ImageSize = 4
	net := build(t, cfg)

	// Zero every weight and give class 3 the largest head bias.
	arrays := make([]*tensor.RawTensor, 0, len(net.Parameters()))
	for _, p := range net.Parameters() {
		values := make([]float32, p.Shape().NumElements())
		switch {
		case strings.HasSuffix(p.Name(), ".gamma"), strings.HasSuffix(p.Name(), ".inv_std"):
			for i := range values {
				values[i] = 1
			}
		case p.Name() == "head.fc.bias":
			values[3] = 5
		}
		raw, err := tensor.FromFloat32(values, p.Shape(), tensor.CPU)
		require.NoError(t, err)
		arrays = append(arrays, raw)
	}
	require.NoError(t, nn.BindParameters(net.Parameters(), arrays))

	input := tensor.Ones[float32](tensor.Shape{3, 3, 4, 4}, cpu.New())
	assert.Equal(t, []int32{3, 3, 3}, net.Predict(input))
}

func TestWriteSummary(t *testing.T) {
	net := build(t, smallConfig(Basic, 1))

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, net))

	out := buf.String()
	assert.Contains(t, out, "ResNet-8 (basic, n=1)")
	assert.Contains(t, out, "stage3.block0.sum")
	assert.Contains(t, out, "(1, 64, 8, 8)")
	assert.Contains(t, out, "weight layers: 8")
	assert.Contains(t, out, "parameters: 78442")
}
