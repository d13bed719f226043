package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/born-ml/resnet/internal/parallel"
	"github.com/born-ml/resnet/internal/tensor"
)

// Conv2D performs 2D convolution using the im2col algorithm.
//
// Input shape: [batch, in_channels, height, width]
// Kernel shape: [out_channels, in_channels, kernel_h, kernel_w]
// Output shape: [batch, out_channels, out_h, out_w]
//
// For each batch item:
//  1. Unfold the padded input into a column matrix [C_in*K_h*K_w, H_out*W_out]
//  2. SGEMM: kernel [C_out, C_in*K_h*K_w] @ col -> [C_out, H_out*W_out]
//
// The GEMM result for item n is already the NCHW slab output[n], so no
// rearrangement pass is needed. Batch items run concurrently.
//
// Reference: "High Performance Convolutional Neural Networks for Document Processing"
// (Chellapilla et al., 2006).
func (cpu *CPUBackend) Conv2D(input, kernel *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	inputShape := input.Shape()
	kernelShape := kernel.Shape()

	if len(inputShape) != 4 {
		panic(fmt.Sprintf("conv2d: input must be 4D [N,C,H,W], got %dD", len(inputShape)))
	}
	if len(kernelShape) != 4 {
		panic(fmt.Sprintf("conv2d: kernel must be 4D [C_out,C_in,K_h,K_w], got %dD", len(kernelShape)))
	}
	if input.DType() != tensor.Float32 || kernel.DType() != tensor.Float32 {
		panic(fmt.Sprintf("conv2d: unsupported dtype %s (only float32 supported)", input.DType()))
	}
	if stride <= 0 || padding < 0 {
		panic(fmt.Sprintf("conv2d: invalid stride=%d padding=%d", stride, padding))
	}

	N, CIn, H, W := inputShape[0], inputShape[1], inputShape[2], inputShape[3]
	COut, CInK, KH, KW := kernelShape[0], kernelShape[1], kernelShape[2], kernelShape[3]

	if CIn != CInK {
		panic(fmt.Sprintf("conv2d: input channels %d != kernel channels %d", CIn, CInK))
	}

	HOut, WOut := ConvOutputSize(H, W, KH, KW, stride, padding)
	if HOut <= 0 || WOut <= 0 {
		panic(fmt.Sprintf("conv2d: invalid output dimensions: out_h=%d, out_w=%d (check stride/padding)", HOut, WOut))
	}

	output, err := tensor.NewRaw(tensor.Shape{N, COut, HOut, WOut}, tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("conv2d: failed to create output tensor: %v", err))
	}

	g := convGeometry{
		cIn: CIn, h: H, w: W,
		cOut: COut, kh: KH, kw: KW,
		hOut: HOut, wOut: WOut,
		stride: stride, padding: padding,
	}
	conv2dFloat32(output.AsFloat32(), input.AsFloat32(), kernel.AsFloat32(), N, g, cpu.par)

	return output
}

// ConvOutputSize returns the spatial output size of a convolution:
//
//	out = (in + 2*padding - kernel) / stride + 1
func ConvOutputSize(h, w, kh, kw, stride, padding int) (int, int) {
	return (h+2*padding-kh)/stride + 1, (w+2*padding-kw)/stride + 1
}

type convGeometry struct {
	cIn, h, w       int
	cOut, kh, kw    int
	hOut, wOut      int
	stride, padding int
}

func conv2dFloat32(out, in, kernel []float32, n int, g convGeometry, cfg parallel.Config) {
	k := g.cIn * g.kh * g.kw
	spatial := g.hOut * g.wOut
	inSize := g.cIn * g.h * g.w
	outSize := g.cOut * spatial

	weights := blas32.General{Rows: g.cOut, Cols: k, Stride: k, Data: kernel}

	parallel.For(n, func(b int) {
		col := make([]float32, k*spatial)
		im2colFloat32(col, in[b*inSize:(b+1)*inSize], g)

		blas32.Gemm(blas.NoTrans, blas.NoTrans, 1,
			weights,
			blas32.General{Rows: k, Cols: spatial, Stride: spatial, Data: col},
			0,
			blas32.General{Rows: g.cOut, Cols: spatial, Stride: spatial, Data: out[b*outSize : (b+1)*outSize]},
		)
	}, cfg)
}

// im2colFloat32 unfolds one [C, H, W] image into col [C*K_h*K_w, H_out*W_out].
//
// Row r = (c, kh, kw) holds, for every output position, the input pixel that
// kernel tap meets there; taps that land in the zero padding stay 0.
func im2colFloat32(col, img []float32, g convGeometry) {
	spatial := g.hOut * g.wOut
	row := 0
	for c := 0; c < g.cIn; c++ {
		plane := img[c*g.h*g.w : (c+1)*g.h*g.w]
		for kh := 0; kh < g.kh; kh++ {
			for kw := 0; kw < g.kw; kw++ {
				dst := col[row*spatial : (row+1)*spatial]
				for oh := 0; oh < g.hOut; oh++ {
					h := oh*g.stride - g.padding + kh
					if h < 0 || h >= g.h {
						continue
					}
					for ow := 0; ow < g.wOut; ow++ {
						w := ow*g.stride - g.padding + kw
						if w >= 0 && w < g.w {
							dst[oh*g.wOut+ow] = plane[h*g.w+w]
						}
					}
				}
				row++
			}
		}
	}
}
