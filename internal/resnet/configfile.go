package resnet

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML form of Config. Zero fields keep the defaults of
// the chosen variant.
type fileConfig struct {
	Variant                   Variant `yaml:"variant"`
	N                         int     `yaml:"n"`
	NumClasses                int     `yaml:"num_classes"`
	InputChannels             int     `yaml:"input_channels"`
	ImageSize                 int     `yaml:"image_size"`
	StemChannels              int     `yaml:"stem_channels"`
	Seed                      uint64  `yaml:"seed"`
	SkipStageOnePreActivation bool    `yaml:"skip_stage_one_preactivation"`
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *Variant) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseVariant(s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (v Variant) MarshalYAML() (any, error) {
	return v.String(), nil
}

// ParseConfig decodes a YAML model description such as
//
//	variant: bottleneck
//	n: 18
//	seed: 1
//
// Fields left out take the values of DefaultConfig(variant). The result is
// validated.
func ParseConfig(data []byte) (Config, error) {
	return parseConfig(data, nil)
}

// ParseConfigAs is ParseConfig with the variant forced to variant. Fields
// the file leaves out, the stem width included, take the defaults of
// variant rather than of the variant the file names.
func ParseConfigAs(data []byte, variant Variant) (Config, error) {
	return parseConfig(data, &variant)
}

func parseConfig(data []byte, variant *Variant) (Config, error) {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return Config{}, fmt.Errorf("resnet: parse config: %w", err)
	}
	if variant != nil {
		fc.Variant = *variant
	}

	cfg := DefaultConfig(fc.Variant)
	if fc.N != 0 {
		cfg.N = fc.N
	}
	if fc.NumClasses != 0 {
		cfg.NumClasses = fc.NumClasses
	}
	if fc.InputChannels != 0 {
		cfg.InputChannels = fc.InputChannels
	}
	if fc.ImageSize != 0 {
		cfg.ImageSize = fc.ImageSize
	}
	if fc.StemChannels != 0 {
		cfg.StemChannels = fc.StemChannels
	}
	cfg.Seed = fc.Seed
	cfg.SkipStageOnePreActivation = fc.SkipStageOnePreActivation

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads a YAML model description from path.
func LoadConfig(path string) (Config, error) {
	data, err := readConfig(path)
	if err != nil {
		return Config{}, err
	}
	return ParseConfig(data)
}

// LoadConfigAs reads path with ParseConfigAs.
func LoadConfigAs(path string, variant Variant) (Config, error) {
	data, err := readConfig(path)
	if err != nil {
		return Config{}, err
	}
	return ParseConfigAs(data, variant)
}

func readConfig(path string) ([]byte, error) {
	//nolint:gosec // G304: path comes from the command line.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("resnet: %w", err)
	}
	return data, nil
}

// MarshalConfig encodes cfg as YAML.
func MarshalConfig(cfg Config) ([]byte, error) {
	return yaml.Marshal(fileConfig{
		Variant:                   cfg.Variant,
		N:                         cfg.N,
		NumClasses:                cfg.NumClasses,
		InputChannels:             cfg.InputChannels,
		ImageSize:                 cfg.ImageSize,
		StemChannels:              cfg.StemChannels,
		Seed:                      cfg.Seed,
		SkipStageOnePreActivation: cfg.SkipStageOnePreActivation,
	})
}
