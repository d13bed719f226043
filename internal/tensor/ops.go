package tensor

// Operations dispatch to the tensor's backend and return new tensors; the
// receiver is never modified.

func (t *Tensor[T, B]) wrap(raw *RawTensor) *Tensor[T, B] {
	return New[T](raw, t.backend)
}

// Add adds other element-wise, broadcasting as needed.
//
//	x := tensor.Ones[float32](Shape{2, 16, 8, 8}, backend)
//	b := tensor.Ones[float32](Shape{1, 16, 1, 1}, backend)
//	y := x.Add(b) // (2, 16, 8, 8)
func (t *Tensor[T, B]) Add(other *Tensor[T, B]) *Tensor[T, B] {
	return t.wrap(t.backend.Add(t.raw, other.raw))
}

// Mul multiplies by other element-wise, broadcasting as needed.
func (t *Tensor[T, B]) Mul(other *Tensor[T, B]) *Tensor[T, B] {
	return t.wrap(t.backend.Mul(t.raw, other.raw))
}

// MatMul computes t @ other for [M, K] and [K, N] operands.
func (t *Tensor[T, B]) MatMul(other *Tensor[T, B]) *Tensor[T, B] {
	return t.wrap(t.backend.MatMul(t.raw, other.raw))
}

// Reshape views the elements under a new shape of equal size.
func (t *Tensor[T, B]) Reshape(dims ...int) *Tensor[T, B] {
	return t.wrap(t.backend.Reshape(t.raw, Shape(dims)))
}

// Transpose permutes dimensions; with no axes it reverses them.
func (t *Tensor[T, B]) Transpose(axes ...int) *Tensor[T, B] {
	return t.wrap(t.backend.Transpose(t.raw, axes...))
}

// ReLU clamps negative elements to zero.
func (t *Tensor[T, B]) ReLU() *Tensor[T, B] {
	return t.wrap(t.backend.ReLU(t.raw))
}

// Softmax exponentiates and normalizes every slice along dim to sum to 1.
func (t *Tensor[T, B]) Softmax(dim int) *Tensor[T, B] {
	return t.wrap(t.backend.Softmax(t.raw, dim))
}

// MeanDim averages over dim, keeping it as size 1 when keepDim is set.
func (t *Tensor[T, B]) MeanDim(dim int, keepDim bool) *Tensor[T, B] {
	return t.wrap(t.backend.MeanDim(t.raw, dim, keepDim))
}

// Argmax returns the position of the largest element along dim. Ties go
// to the first.
//
//	probs := model.Forward(x) // (N, 10)
//	labels := probs.Argmax(1) // (N,) int32
func (t *Tensor[T, B]) Argmax(dim int) *Tensor[int32, B] {
	return New[int32](t.backend.Argmax(t.raw, dim), t.backend)
}
