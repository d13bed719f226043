package resnet

import (
	"fmt"
	"strings"

	"github.com/born-ml/resnet/internal/nn"
	"github.com/born-ml/resnet/internal/tensor"
)

// stack is an nn.Sequential whose modules carry names for parameter
// naming and for the layer summary.
type stack[B tensor.Backend] struct {
	seq   *nn.Sequential[B]
	names []string
}

func newStack[B tensor.Backend]() *stack[B] {
	return &stack[B]{seq: nn.NewSequential[B]()}
}

// add appends m under name and prefixes its parameters with name.
func (s *stack[B]) add(name string, m nn.Module[B]) {
	nn.PrefixParameters(name, m.Parameters())
	s.seq.Add(m)
	s.names = append(s.names, name)
}

func (s *stack[B]) empty() bool {
	return s.seq.Len() == 0
}

// describe appends one LayerInfo per module, threading the shape.
func (s *stack[B]) describe(prefix string, in tensor.Shape, out []LayerInfo) ([]LayerInfo, tensor.Shape, error) {
	shape := in
	for i, name := range s.names {
		m := s.seq.Module(i)
		next, err := m.OutputShape(shape)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", joinName(prefix, name), err)
		}
		out = append(out, LayerInfo{
			Name:        joinName(prefix, name),
			Kind:        kindOf(m),
			OutputShape: next,
			Params:      nn.CountParameters(m.Parameters()),
		})
		shape = next
	}
	return out, shape, nil
}

func kindOf(m fmt.Stringer) string {
	kind, _, _ := strings.Cut(m.String(), "(")
	return kind
}

func joinName(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
