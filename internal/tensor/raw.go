package tensor

import (
	"fmt"
	"unsafe"
)

// Device identifies where a tensor's buffer lives.
type Device int

// CPU is host memory, the only device.
const CPU Device = 0

// String returns the device name.
func (d Device) String() string {
	if d == CPU {
		return "CPU"
	}
	return fmt.Sprintf("Device(%d)", int(d))
}

// RawTensor is untyped tensor storage: a contiguous row-major byte buffer
// with its shape, strides and element type. Typed access goes through
// Tensor or the As* views.
type RawTensor struct {
	data    []byte
	shape   Shape
	strides []int
	dtype   DataType
	device  Device
}

// NewRaw allocates a zeroed buffer for shape.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	return newRaw(make([]byte, shape.NumElements()*dtype.Size()), shape, dtype, device), nil
}

func newRaw(data []byte, shape Shape, dtype DataType, device Device) *RawTensor {
	return &RawTensor{
		data:    data,
		shape:   shape.Clone(),
		strides: shape.ComputeStrides(),
		dtype:   dtype,
		device:  device,
	}
}

// FromFloat32 copies data into a new float32 RawTensor.
func FromFloat32(data []float32, shape Shape, device Device) (*RawTensor, error) {
	if n := shape.NumElements(); n != len(data) {
		return nil, fmt.Errorf("shape %v holds %d values, got %d", shape, n, len(data))
	}
	r, err := NewRaw(shape, Float32, device)
	if err != nil {
		return nil, err
	}
	copy(r.AsFloat32(), data)
	return r, nil
}

// Shape returns the dimensions. Callers must not modify it.
func (r *RawTensor) Shape() Shape { return r.shape }

// Strides returns the row-major element strides.
func (r *RawTensor) Strides() []int { return r.strides }

// DType returns the element type.
func (r *RawTensor) DType() DataType { return r.dtype }

// Device returns where the buffer lives.
func (r *RawTensor) Device() Device { return r.device }

// NumElements returns the number of elements.
func (r *RawTensor) NumElements() int { return r.shape.NumElements() }

// ByteSize returns the buffer length in bytes.
func (r *RawTensor) ByteSize() int { return len(r.data) }

// Data returns the underlying buffer.
func (r *RawTensor) Data() []byte { return r.data }

// AsFloat32 views the buffer as float32 values. It panics for other dtypes.
func (r *RawTensor) AsFloat32() []float32 {
	r.mustBe(Float32)
	return view[float32](r.data, r.NumElements())
}

// AsInt32 views the buffer as int32 values. It panics for other dtypes.
func (r *RawTensor) AsInt32() []int32 {
	r.mustBe(Int32)
	return view[int32](r.data, r.NumElements())
}

// AsUint8 returns the buffer of a uint8 tensor. It panics for other dtypes.
func (r *RawTensor) AsUint8() []uint8 {
	r.mustBe(Uint8)
	return r.data
}

func (r *RawTensor) mustBe(dtype DataType) {
	if r.dtype != dtype {
		panic(fmt.Sprintf("tensor: dtype is %s, not %s", r.dtype, dtype))
	}
}

func view[T float32 | int32](data []byte, n int) []T {
	if n == 0 {
		return nil
	}
	//nolint:gosec // length bounded by the allocation in NewRaw
	return unsafe.Slice((*T)(unsafe.Pointer(&data[0])), n)
}

// WithShape returns a RawTensor sharing r's buffer under shape, which must
// have the same number of elements.
func (r *RawTensor) WithShape(shape Shape) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if shape.NumElements() != r.NumElements() {
		return nil, fmt.Errorf("cannot view %v as %v: element count differs", r.shape, shape)
	}
	return newRaw(r.data, shape, r.dtype, r.device), nil
}

// Clone returns a deep copy of r.
func (r *RawTensor) Clone() *RawTensor {
	data := make([]byte, len(r.data))
	copy(data, r.data)
	return newRaw(data, r.shape, r.dtype, r.device)
}
