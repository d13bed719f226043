package nn

import (
	"fmt"
	"strings"

	"github.com/born-ml/resnet/internal/tensor"
)

// Sequential is a container module that chains multiple modules together.
//
// Each module's output becomes the next module's input.
//
// Example:
//
//	preact := nn.NewSequential[Backend](
//	    nn.NewBatchNorm2D(16, backend),
//	    nn.NewReLU[Backend](),
//	)
//	output := preact.Forward(input)
type Sequential[B tensor.Backend] struct {
	modules []Module[B]
}

// NewSequential creates a new Sequential container.
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	return &Sequential[B]{
		modules: modules,
	}
}

// Forward applies all modules in sequence.
func (s *Sequential[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	output := input
	for _, module := range s.modules {
		output = module.Forward(output)
	}
	return output
}

// OutputShape threads the shape through every module, failing at the first
// module whose contract the shape violates.
func (s *Sequential[B]) OutputShape(input tensor.Shape) (tensor.Shape, error) {
	shape := input
	for i, module := range s.modules {
		next, err := module.OutputShape(shape)
		if err != nil {
			return nil, fmt.Errorf("module %d (%s): %w", i, module, err)
		}
		shape = next
	}
	return shape, nil
}

// Parameters returns all parameters from all modules, in module order.
func (s *Sequential[B]) Parameters() []*Parameter[B] {
	var params []*Parameter[B]
	for _, module := range s.modules {
		params = append(params, module.Parameters()...)
	}
	return params
}

// Add appends a module to the sequence.
func (s *Sequential[B]) Add(module Module[B]) {
	s.modules = append(s.modules, module)
}

// Len returns the number of modules in the sequence.
func (s *Sequential[B]) Len() int {
	return len(s.modules)
}

// Module returns the module at the given index.
//
// Panics if index is out of bounds.
func (s *Sequential[B]) Module(index int) Module[B] {
	if index < 0 || index >= len(s.modules) {
		panic("Sequential.Module: index out of bounds")
	}
	return s.modules[index]
}

// String lists the contained modules one per line.
func (s *Sequential[B]) String() string {
	var sb strings.Builder
	sb.WriteString("Sequential(\n")
	for i, m := range s.modules {
		fmt.Fprintf(&sb, "  (%d): %s\n", i, m)
	}
	sb.WriteString(")")
	return sb.String()
}
