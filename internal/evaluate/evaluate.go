// Package evaluate runs a classifier over a labelled dataset and scores the
// predictions.
package evaluate

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/born-ml/resnet/internal/dataset"
	"github.com/born-ml/resnet/internal/tensor"
)

// DefaultBatchSize is the number of images per forward pass.
const DefaultBatchSize = 1

// Classifier maps a batch of images to class indices.
type Classifier[B tensor.Backend] interface {
	Predict(input *tensor.Tensor[float32, B]) []int32
	OutputShape(input tensor.Shape) (tensor.Shape, error)
}

// Options controls an evaluation run.
type Options struct {
	// BatchSize is the number of images per forward pass (0 = DefaultBatchSize).
	BatchSize int

	// NumClasses sizes the confusion matrix (0 = dataset.DefaultNumClasses).
	NumClasses int

	// Progress, if set, is called after every batch.
	Progress func(done, total int)
}

// Run predicts every image of d in consecutive batches and compares the
// predictions with the labels. Any shape disagreement between the dataset
// and the model is returned as an error before inference starts.
func Run[B tensor.Backend](model Classifier[B], d *dataset.Dataset, backend B, opts Options) (*Result, error) {
	if opts.BatchSize == 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.NumClasses == 0 {
		opts.NumClasses = dataset.DefaultNumClasses
	}
	if d.Len() == 0 {
		return nil, fmt.Errorf("evaluate: empty dataset")
	}

	batches, err := d.Batches(opts.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("evaluate: %w", err)
	}

	out, err := model.OutputShape(batches[0].Shape)
	if err != nil {
		return nil, fmt.Errorf("evaluate: model rejects input %v: %w", batches[0].Shape, err)
	}
	if len(out) != 2 || out[1] != opts.NumClasses {
		return nil, fmt.Errorf("evaluate: model output %v does not score %d classes", out, opts.NumClasses)
	}

	start := time.Now()
	predictions := make([]int32, 0, d.Len())
	for i, batch := range batches {
		x, err := dataset.Tensor(batch, backend)
		if err != nil {
			return nil, fmt.Errorf("evaluate: batch %d: %w", i, err)
		}
		labels := model.Predict(x)
		if len(labels) != len(batch.Labels) {
			return nil, fmt.Errorf("evaluate: batch %d: %d predictions for %d images", i, len(labels), len(batch.Labels))
		}
		predictions = append(predictions, labels...)
		if opts.Progress != nil {
			opts.Progress(len(predictions), d.Len())
		}
	}

	res, err := Score(predictions, d.Labels, opts.NumClasses)
	if err != nil {
		return nil, err
	}
	res.RunID = uuid.New()
	res.BatchSize = opts.BatchSize
	res.Duration = time.Since(start)
	return res, nil
}
