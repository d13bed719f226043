// Package dataset loads labelled image sets for evaluation.
//
// Images are stored NCHW as float32 in [0, 1], optionally with a
// per-channel mean subtracted. Labels are class indices.
package dataset

import (
	"fmt"

	"github.com/born-ml/resnet/internal/tensor"
)

// Defaults for CIFAR-10 style data.
const (
	DefaultImageSize  = 32
	DefaultNumClasses = 10
	DefaultChannels   = 3
)

// Options controls loading and preprocessing.
type Options struct {
	// ImageSize is the side of the square images produced. Image folders
	// are rescaled to it; CIFAR-10 files must already match it.
	ImageSize int

	// NumClasses bounds the labels: every label must be in [0, NumClasses).
	NumClasses int

	// Mean is subtracted from each channel after scaling to [0, 1].
	// Nil leaves pixels in [0, 1].
	Mean []float32

	// MaxSamples truncates the dataset (0 = load all).
	MaxSamples int
}

func (o Options) withDefaults() Options {
	if o.ImageSize == 0 {
		o.ImageSize = DefaultImageSize
	}
	if o.NumClasses == 0 {
		o.NumClasses = DefaultNumClasses
	}
	return o
}

func (o Options) validate() error {
	if o.ImageSize < 1 {
		return fmt.Errorf("dataset: invalid image size %d", o.ImageSize)
	}
	if o.NumClasses < 1 || o.NumClasses > 256 {
		return fmt.Errorf("dataset: invalid number of classes %d", o.NumClasses)
	}
	if o.Mean != nil && len(o.Mean) != DefaultChannels {
		return fmt.Errorf("dataset: mean needs %d channels, got %d", DefaultChannels, len(o.Mean))
	}
	if o.MaxSamples < 0 {
		return fmt.Errorf("dataset: invalid max samples %d", o.MaxSamples)
	}
	return nil
}

// Dataset holds images [N, C, H, W] and their labels.
type Dataset struct {
	Images   []float32 // N*C*H*W, row-major
	Labels   []int32   // N
	Channels int
	Height   int
	Width    int
}

// Len returns the number of samples.
func (d *Dataset) Len() int {
	return len(d.Labels)
}

// SampleSize returns C*H*W.
func (d *Dataset) SampleSize() int {
	return d.Channels * d.Height * d.Width
}

// Shape returns [N, C, H, W].
func (d *Dataset) Shape() tensor.Shape {
	return tensor.Shape{d.Len(), d.Channels, d.Height, d.Width}
}

// ChannelMean returns the mean of every channel over the whole dataset.
func (d *Dataset) ChannelMean() []float32 {
	mean := make([]float64, d.Channels)
	plane := d.Height * d.Width
	for i := 0; i < d.Len(); i++ {
		sample := d.Images[i*d.SampleSize() : (i+1)*d.SampleSize()]
		for c := 0; c < d.Channels; c++ {
			for _, v := range sample[c*plane : (c+1)*plane] {
				mean[c] += float64(v)
			}
		}
	}
	out := make([]float32, d.Channels)
	count := float64(d.Len() * plane)
	for c := range mean {
		if count > 0 {
			out[c] = float32(mean[c] / count)
		}
	}
	return out
}

// SubtractMean subtracts mean[c] from every pixel of channel c.
func (d *Dataset) SubtractMean(mean []float32) error {
	if len(mean) != d.Channels {
		return fmt.Errorf("dataset: mean needs %d channels, got %d", d.Channels, len(mean))
	}
	plane := d.Height * d.Width
	for i := range d.Images {
		d.Images[i] -= mean[(i/plane)%d.Channels]
	}
	return nil
}

// Batch is a consecutive run of samples.
type Batch struct {
	Start  int // index of the first sample in the dataset
	Images []float32
	Labels []int32
	Shape  tensor.Shape // [n, C, H, W]
}

// Batches splits the dataset into consecutive batches of size samples.
// The last batch holds the remainder and may be shorter. Batches share
// memory with the dataset.
func (d *Dataset) Batches(size int) ([]Batch, error) {
	if size < 1 {
		return nil, fmt.Errorf("dataset: invalid batch size %d", size)
	}
	n := d.Len()
	sample := d.SampleSize()
	batches := make([]Batch, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		end := min(start+size, n)
		batches = append(batches, Batch{
			Start:  start,
			Images: d.Images[start*sample : end*sample],
			Labels: d.Labels[start:end],
			Shape:  tensor.Shape{end - start, d.Channels, d.Height, d.Width},
		})
	}
	return batches, nil
}

// Tensor copies the batch images into a tensor on backend.
func Tensor[B tensor.Backend](b Batch, backend B) (*tensor.Tensor[float32, B], error) {
	return tensor.FromSlice(b.Images, b.Shape, backend)
}

// normalize maps a byte pixel of channel c to [0, 1] minus the mean.
func (o Options) normalize(v uint8, c int) float32 {
	x := float32(v) / 255
	if o.Mean != nil {
		x -= o.Mean[c]
	}
	return x
}

func truncate(d *Dataset, maxSamples int) *Dataset {
	if maxSamples > 0 && d.Len() > maxSamples {
		d.Labels = d.Labels[:maxSamples]
		d.Images = d.Images[:maxSamples*d.SampleSize()]
	}
	return d
}
