package resnet

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfig is returned (wrapped) when a Config cannot describe a
// valid network.
var ErrInvalidConfig = errors.New("resnet: invalid config")

// Variant selects the residual block form.
type Variant int

const (
	// Basic blocks stack two 3x3 convolutions. Depth is 6n+2.
	Basic Variant = iota
	// Bottleneck blocks stack 1x1, 3x3, 1x1 convolutions with the middle
	// one at a quarter of the block width. Depth is 9n+2.
	Bottleneck
)

// String returns "basic" or "bottleneck".
func (v Variant) String() string {
	switch v {
	case Basic:
		return "basic"
	case Bottleneck:
		return "bottleneck"
	default:
		return fmt.Sprintf("Variant(%d)", int(v))
	}
}

// ParseVariant parses the name produced by Variant.String.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "basic":
		return Basic, nil
	case "bottleneck":
		return Bottleneck, nil
	default:
		return 0, fmt.Errorf("resnet: unknown variant %q (want basic or bottleneck)", s)
	}
}

// Config describes a pre-activation residual network.
type Config struct {
	// N is the number of residual blocks per stage.
	N int

	// Variant is the block form.
	Variant Variant

	// NumClasses is the width of the softmax head.
	NumClasses int

	// InputChannels and ImageSize describe the [C, S, S] input images.
	InputChannels int
	ImageSize     int

	// StemChannels is the width of the stem convolution and of stage 1.
	// Stages 2 and 3 use twice and four times this width.
	StemChannels int

	// Seed drives weight initialization. Two networks built from equal
	// configs hold identical weights.
	Seed uint64

	// SkipStageOnePreActivation drops the BN/ReLU pre-activation from
	// every stage-1 block instead of only the first one.
	SkipStageOnePreActivation bool
}

// DefaultConfig returns the CIFAR-10 configuration for variant with n = 18
// (ResNet-110 for Basic, ResNet-164 for Bottleneck).
func DefaultConfig(variant Variant) Config {
	stem := 16
	if variant == Bottleneck {
		stem = 64
	}
	return Config{
		N:             18,
		Variant:       variant,
		NumClasses:    10,
		InputChannels: 3,
		ImageSize:     32,
		StemChannels:  stem,
	}
}

// Validate reports whether c describes a buildable network.
func (c Config) Validate() error {
	switch {
	case c.Variant != Basic && c.Variant != Bottleneck:
		return fmt.Errorf("%w: unknown variant %v", ErrInvalidConfig, c.Variant)
	case c.N < 1:
		return fmt.Errorf("%w: n must be >= 1, got %d", ErrInvalidConfig, c.N)
	case c.NumClasses < 1:
		return fmt.Errorf("%w: num classes must be >= 1, got %d", ErrInvalidConfig, c.NumClasses)
	case c.InputChannels < 1:
		return fmt.Errorf("%w: input channels must be >= 1, got %d", ErrInvalidConfig, c.InputChannels)
	case c.ImageSize < 4 || c.ImageSize%4 != 0:
		return fmt.Errorf("%w: image size must be a positive multiple of 4, got %d", ErrInvalidConfig, c.ImageSize)
	case c.StemChannels < 1:
		return fmt.Errorf("%w: stem channels must be >= 1, got %d", ErrInvalidConfig, c.StemChannels)
	case c.Variant == Bottleneck && c.StemChannels%4 != 0:
		return fmt.Errorf("%w: bottleneck stem channels must be divisible by 4, got %d", ErrInvalidConfig, c.StemChannels)
	}
	return nil
}

// Depth returns the number of weight layers: 6n+2 or 9n+2.
func (c Config) Depth() int {
	if c.Variant == Bottleneck {
		return 9*c.N + 2
	}
	return 6*c.N + 2
}

// StageChannels returns the output width of each of the three stages.
func (c Config) StageChannels() [3]int {
	return [3]int{c.StemChannels, 2 * c.StemChannels, 4 * c.StemChannels}
}

func (c Config) String() string {
	return fmt.Sprintf("ResNet-%d (%s, n=%d)", c.Depth(), c.Variant, c.N)
}
