package cpu

import (
	"fmt"

	"github.com/born-ml/resnet/internal/tensor"
)

// MeanDim averages along dim. With keepDim the reduced dimension stays as size 1.
func (cpu *CPUBackend) MeanDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	if x.DType() != tensor.Float32 {
		panic(fmt.Sprintf("meandim: unsupported dtype %s (only float32 supported)", x.DType()))
	}

	shape := x.Shape()
	dim = normalizeDim("meandim", dim, len(shape))

	result, err := tensor.NewRaw(reducedShape(shape, dim, keepDim), tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("meandim: %v", err))
	}

	src, dst := x.AsFloat32(), result.AsFloat32()
	outer, inner := splitAt(shape, dim)
	size := shape[dim]

	for o := 0; o < outer; o++ {
		for in := 0; in < inner; in++ {
			base := o*size*inner + in
			var sum float64
			for i := 0; i < size; i++ {
				sum += float64(src[base+i*inner])
			}
			dst[o*inner+in] = float32(sum / float64(size))
		}
	}

	return result
}

// Argmax returns the index of the maximum value along dim as an int32 tensor.
// Ties resolve to the lowest index.
func (cpu *CPUBackend) Argmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	if x.DType() != tensor.Float32 {
		panic(fmt.Sprintf("argmax: unsupported dtype %s (only float32 supported)", x.DType()))
	}

	shape := x.Shape()
	dim = normalizeDim("argmax", dim, len(shape))

	result, err := tensor.NewRaw(reducedShape(shape, dim, false), tensor.Int32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("argmax: %v", err))
	}

	src, dst := x.AsFloat32(), result.AsInt32()
	outer, inner := splitAt(shape, dim)
	size := shape[dim]

	for o := 0; o < outer; o++ {
		for in := 0; in < inner; in++ {
			base := o*size*inner + in
			best, bestIdx := src[base], 0
			for i := 1; i < size; i++ {
				if v := src[base+i*inner]; v > best {
					best, bestIdx = v, i
				}
			}
			//nolint:gosec // G115: dimension size < 2^31
			dst[o*inner+in] = int32(bestIdx)
		}
	}

	return result
}

// reducedShape drops dim from shape, or sets it to 1 with keepDim.
// Reducing a 1D tensor without keepDim yields shape [1].
func reducedShape(shape tensor.Shape, dim int, keepDim bool) tensor.Shape {
	out := make(tensor.Shape, 0, len(shape))
	for i, d := range shape {
		switch {
		case i != dim:
			out = append(out, d)
		case keepDim:
			out = append(out, 1)
		}
	}
	if len(out) == 0 {
		out = append(out, 1)
	}
	return out
}
