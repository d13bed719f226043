// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "github.com/born-ml/resnet/internal/tensor"

// Backend defines the interface that compute backends implement.
//
// Implementations:
//   - backend/cpu: pure Go, im2col + SGEMM convolutions
type Backend interface {
	Add(a, b *RawTensor) *RawTensor // Element-wise addition with broadcasting.
	Mul(a, b *RawTensor) *RawTensor // Element-wise multiplication with broadcasting.

	MatMul(a, b *RawTensor) *RawTensor                               // [M, K] @ [K, N].
	Conv2D(input, kernel *RawTensor, stride, padding int) *RawTensor // NCHW convolution.

	Reshape(t *RawTensor, newShape Shape) *RawTensor // Reshape tensor.
	Transpose(t *RawTensor, axes ...int) *RawTensor  // Permute dimensions.

	ReLU(x *RawTensor) *RawTensor             // max(0, x).
	Softmax(x *RawTensor, dim int) *RawTensor // Softmax along dimension.

	MeanDim(x *RawTensor, dim int, keepDim bool) *RawTensor // Mean along dimension.
	Argmax(x *RawTensor, dim int) *RawTensor                // int32 index of the maximum.

	Name() string   // Backend name.
	Device() Device // Device type.
}

// Compile-time check that internal Backend implements public Backend.
var _ Backend = tensor.Backend(nil)
