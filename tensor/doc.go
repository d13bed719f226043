// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor is the public tensor API of the resnet module.
//
// # Overview
//
// Tensors carry the images, activations and weights of a network:
//   - Tensor[T, B]: typed tensor bound to a compute backend
//   - RawTensor: contiguous row-major buffer with shape and dtype
//   - Backend: the operations the layers need (convolution, matmul,
//     broadcasting add/mul, ReLU, softmax, mean, argmax)
//   - Shape, DataType, Device: core type definitions
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/resnet/backend/cpu"
//	    "github.com/born-ml/resnet/tensor"
//	)
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{1, 3, 32, 32}, backend)
//	y := x.Add(tensor.Ones[float32](tensor.Shape{1, 3, 1, 1}, backend)) // broadcast
//
// Only float32 tensors take part in arithmetic. int32 tensors hold argmax
// results and uint8 tensors raw pixel data.
package tensor
