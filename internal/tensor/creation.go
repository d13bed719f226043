package tensor

import "fmt"

// Zeros allocates a zero-filled tensor on b.
//
// Example:
//
//	gamma := tensor.Zeros[float32](Shape{16}, backend)
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	raw, err := NewRaw(shape, dataTypeOf[T](), b.Device())
	if err != nil {
		panic(fmt.Sprintf("tensor: zeros %v: %v", shape, err))
	}
	return New[T](raw, b)
}

// Ones allocates a tensor of ones on b.
func Ones[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return Full(shape, T(1), b)
}

// Full allocates a tensor on b with every element set to value.
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	t := Zeros[T](shape, b)
	if value != 0 {
		data := t.Data()
		for i := range data {
			data[i] = value
		}
	}
	return t
}

// FromSlice copies data into a new tensor of the given shape.
func FromSlice[T DType, B Backend](data []T, shape Shape, b B) (*Tensor[T, B], error) {
	if n := shape.NumElements(); n != len(data) {
		return nil, fmt.Errorf("tensor: shape %v holds %d values, got %d", shape, n, len(data))
	}
	raw, err := NewRaw(shape, dataTypeOf[T](), b.Device())
	if err != nil {
		return nil, err
	}
	t := New[T](raw, b)
	copy(t.Data(), data)
	return t, nil
}
