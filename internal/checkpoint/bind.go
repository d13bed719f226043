package checkpoint

import (
	"fmt"

	"github.com/born-ml/resnet/internal/nn"
	"github.com/born-ml/resnet/internal/tensor"
)

// Bind copies the arrays of f into the parameters of model, positionally.
// The array count must equal the parameter count and every array must have
// its slot's shape; nothing is copied otherwise.
func Bind[B tensor.Backend](model nn.Module[B], f *File) error {
	if err := nn.BindParameters(model.Parameters(), f.Tensors); err != nil {
		return fmt.Errorf("checkpoint: bind %s: %w", f.Header.Model, err)
	}
	return nil
}
