package nn

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/born-ml/resnet/internal/tensor"
)

// RectifierGain is the He gain for layers followed by ReLU, sqrt(2).
const RectifierGain = math.Sqrt2

// Init fills a freshly allocated weight tensor.
//
// fanIn and fanOut follow the usual convolution convention:
// fan_in = in_channels * k_h * k_w, fan_out = out_channels * k_h * k_w.
type Init interface {
	Fill(data []float32, fanIn, fanOut int)
}

// HeNormal draws from N(0, (Gain / sqrt(fanIn))^2).
//
// He et al., "Delving Deep into Rectifiers" (2015).
type HeNormal struct {
	Gain float64
	Src  rand.Source
}

// Fill implements Init.
func (h HeNormal) Fill(data []float32, fanIn, _ int) {
	dist := distuv.Normal{
		Mu:    0,
		Sigma: h.Gain * math.Sqrt(1/float64(fanIn)),
		Src:   h.Src,
	}
	for i := range data {
		data[i] = float32(dist.Rand())
	}
}

// GlorotUniform draws from U(-b, b) with b = Gain * sqrt(6 / (fanIn + fanOut)).
// A zero Gain means 1.
type GlorotUniform struct {
	Gain float64
	Src  rand.Source
}

// Fill implements Init.
func (g GlorotUniform) Fill(data []float32, fanIn, fanOut int) {
	gain := g.Gain
	if gain == 0 {
		gain = 1
	}
	bound := gain * math.Sqrt(6/float64(fanIn+fanOut))
	dist := distuv.Uniform{Min: -bound, Max: bound, Src: g.Src}
	for i := range data {
		data[i] = float32(dist.Rand())
	}
}

// Constant fills every element with the same value.
type Constant float32

// Fill implements Init.
func (c Constant) Fill(data []float32, _, _ int) {
	for i := range data {
		data[i] = float32(c)
	}
}

// NewSource returns a deterministic random source for the given seed.
func NewSource(seed uint64) rand.Source {
	return rand.NewSource(seed)
}

// initTensor allocates a tensor of the given shape and fills it with init.
func initTensor[B tensor.Backend](init Init, fanIn, fanOut int, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	t := tensor.Zeros[float32](shape, backend)
	init.Fill(t.Data(), fanIn, fanOut)
	return t
}
