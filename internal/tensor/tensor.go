package tensor

import "fmt"

// Tensor is a RawTensor viewed as elements of type T, with the backend that
// runs its operations.
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](Shape{1, 3, 32, 32}, backend)
//	y := x.Add(x)
type Tensor[T DType, B Backend] struct {
	raw     *RawTensor
	backend B
}

// New wraps raw. The dtype of raw must match T.
func New[T DType, B Backend](raw *RawTensor, b B) *Tensor[T, B] {
	return &Tensor[T, B]{raw: raw, backend: b}
}

// Shape returns the dimensions of t.
func (t *Tensor[T, B]) Shape() Shape { return t.raw.Shape() }

// DType returns the runtime element type.
func (t *Tensor[T, B]) DType() DataType { return t.raw.DType() }

// NumElements returns the number of elements.
func (t *Tensor[T, B]) NumElements() int { return t.raw.NumElements() }

// Raw returns the untyped storage.
func (t *Tensor[T, B]) Raw() *RawTensor { return t.raw }

// Backend returns the backend that runs operations on t.
func (t *Tensor[T, B]) Backend() B { return t.backend }

// Clone returns a deep copy of t.
func (t *Tensor[T, B]) Clone() *Tensor[T, B] { return New[T](t.raw.Clone(), t.backend) }

// Data returns the elements in row-major order. The slice aliases the
// tensor's buffer.
func (t *Tensor[T, B]) Data() []T {
	switch dataTypeOf[T]() {
	case Float32:
		return any(t.raw.AsFloat32()).([]T)
	case Int32:
		return any(t.raw.AsInt32()).([]T)
	default:
		return any(t.raw.AsUint8()).([]T)
	}
}

// At returns the element at idx, one index per dimension.
func (t *Tensor[T, B]) At(idx ...int) T {
	return t.Data()[t.flatIndex(idx)]
}

// Set stores value at idx.
func (t *Tensor[T, B]) Set(value T, idx ...int) {
	t.Data()[t.flatIndex(idx)] = value
}

func (t *Tensor[T, B]) flatIndex(idx []int) int {
	shape := t.Shape()
	if len(idx) != len(shape) {
		panic(fmt.Sprintf("tensor: %d indices for shape %v", len(idx), shape))
	}
	flat := 0
	for i, stride := range t.raw.Strides() {
		if idx[i] < 0 || idx[i] >= shape[i] {
			panic(fmt.Sprintf("tensor: index %v out of range for shape %v", idx, shape))
		}
		flat += idx[i] * stride
	}
	return flat
}

// String describes the tensor without its values, e.g. "Tensor[float32](2, 10) on CPU".
func (t *Tensor[T, B]) String() string {
	return fmt.Sprintf("Tensor[%s]%v on %s", t.raw.DType(), t.raw.Shape(), t.raw.Device())
}
