package nn

import (
	"fmt"

	"github.com/born-ml/resnet/internal/tensor"
)

// Parameter is a named tensor owned by a layer: a weight, a bias or a
// batch-norm statistic.
type Parameter[B tensor.Backend] struct {
	name   string
	tensor *tensor.Tensor[float32, B]
}

// NewParameter creates a new parameter.
//
// Parameters:
//   - name: Descriptive name (e.g., "weight"); containers may prefix it later
//   - tensor: The initialized parameter tensor
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return &Parameter[B]{
		name:   name,
		tensor: t,
	}
}

// Name returns the parameter name.
func (p *Parameter[B]) Name() string {
	return p.name
}

// SetName replaces the parameter name.
func (p *Parameter[B]) SetName(name string) {
	p.name = name
}

// Tensor returns the parameter tensor.
func (p *Parameter[B]) Tensor() *tensor.Tensor[float32, B] {
	return p.tensor
}

// Shape returns the parameter shape.
func (p *Parameter[B]) Shape() tensor.Shape {
	return p.tensor.Shape()
}

// Load copies raw into the parameter after checking dtype and shape.
func (p *Parameter[B]) Load(raw *tensor.RawTensor) error {
	if raw.DType() != tensor.Float32 {
		return fmt.Errorf("%s: dtype mismatch: expected float32, got %v", p.name, raw.DType())
	}
	if !raw.Shape().Equal(p.Shape()) {
		return fmt.Errorf("%s: shape mismatch: expected %v, got %v", p.name, p.Shape(), raw.Shape())
	}
	copy(p.tensor.Data(), raw.AsFloat32())
	return nil
}

// PrefixParameters prepends prefix+"." to the name of each parameter and
// returns params. Containers call it once, at construction.
func PrefixParameters[B tensor.Backend](prefix string, params []*Parameter[B]) []*Parameter[B] {
	for _, p := range params {
		p.SetName(prefix + "." + p.Name())
	}
	return params
}
