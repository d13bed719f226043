package nn

import (
	"fmt"

	"github.com/born-ml/resnet/internal/tensor"
)

// BindParameters copies arrays into params positionally: arrays[i] goes to
// params[i]. The counts must match exactly and every array must have its
// slot's dtype and shape. Nothing is copied unless every slot validates.
func BindParameters[B tensor.Backend](params []*Parameter[B], arrays []*tensor.RawTensor) error {
	if len(params) != len(arrays) {
		return fmt.Errorf("parameter count mismatch: model has %d, got %d arrays", len(params), len(arrays))
	}

	for i, p := range params {
		raw := arrays[i]
		if raw.DType() != tensor.Float32 {
			return fmt.Errorf("slot %d (%s): dtype mismatch: expected float32, got %v", i, p.Name(), raw.DType())
		}
		if !raw.Shape().Equal(p.Shape()) {
			return fmt.Errorf("slot %d (%s): shape mismatch: expected %v, got %v", i, p.Name(), p.Shape(), raw.Shape())
		}
	}

	for i, p := range params {
		if err := p.Load(arrays[i]); err != nil {
			return fmt.Errorf("slot %d: %w", i, err)
		}
	}
	return nil
}

// CountParameters returns the total number of scalar values across params.
func CountParameters[B tensor.Backend](params []*Parameter[B]) int {
	total := 0
	for _, p := range params {
		total += p.Shape().NumElements()
	}
	return total
}
