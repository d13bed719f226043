package cpu

import (
	"fmt"
	"math"

	"github.com/born-ml/resnet/internal/tensor"
)

// ReLU computes max(0, x) element-wise.
func (cpu *CPUBackend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	if x.DType() != tensor.Float32 {
		panic(fmt.Sprintf("relu: unsupported dtype %s (only float32 supported)", x.DType()))
	}

	result, err := tensor.NewRaw(x.Shape(), tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("relu: %v", err))
	}

	dst := result.AsFloat32()
	for i, v := range x.AsFloat32() {
		if v > 0 {
			dst[i] = v
		}
	}
	return result
}

// Softmax computes softmax along the specified dimension.
// Softmax(x_i) = exp(x_i - max) / sum(exp(x_j - max)) for all j in dimension.
func (cpu *CPUBackend) Softmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	if x.DType() != tensor.Float32 {
		panic(fmt.Sprintf("softmax: unsupported dtype %s (only float32 supported)", x.DType()))
	}

	shape := x.Shape()
	dim = normalizeDim("softmax", dim, len(shape))

	result, err := tensor.NewRaw(shape, tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("softmax: %v", err))
	}

	src, dst := x.AsFloat32(), result.AsFloat32()
	outer, inner := splitAt(shape, dim)
	size := shape[dim]

	for o := 0; o < outer; o++ {
		for in := 0; in < inner; in++ {
			base := o*size*inner + in

			maxVal := src[base]
			for i := 1; i < size; i++ {
				maxVal = max(maxVal, src[base+i*inner])
			}

			var sum float64
			for i := 0; i < size; i++ {
				e := math.Exp(float64(src[base+i*inner] - maxVal))
				dst[base+i*inner] = float32(e)
				sum += e
			}

			for i := 0; i < size; i++ {
				dst[base+i*inner] = float32(float64(dst[base+i*inner]) / sum)
			}
		}
	}

	return result
}
