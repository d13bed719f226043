package resnet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte("variant: bottleneck\nn: 2\nseed: 9\n"))
	require.NoError(t, err)

	assert.Equal(t, Bottleneck, cfg.Variant)
	assert.Equal(t, 2, cfg.N)
	assert.Equal(t, uint64(9), cfg.Seed)
	assert.Equal(t, 64, cfg.StemChannels)
	assert.Equal(t, 32, cfg.ImageSize)
	assert.Equal(t, 20, cfg.Depth())
}

func TestParseConfigAs(t *testing.T) {
	// Stem width left out: it follows the forced variant.
	cfg, err := ParseConfigAs([]byte("variant: bottleneck\nn: 2\n"), Basic)
	require.NoError(t, err)
	assert.Equal(t, Basic, cfg.Variant)
	assert.Equal(t, 2, cfg.N)
	assert.Equal(t, 16, cfg.StemChannels)

	// Stem width given: it is kept.
	cfg, err = ParseConfigAs([]byte("variant: basic\nstem_channels: 32\n"), Bottleneck)
	require.NoError(t, err)
	assert.Equal(t, Bottleneck, cfg.Variant)
	assert.Equal(t, 32, cfg.StemChannels)
}

func TestParseConfig_Errors(t *testing.T) {
	_, err := ParseConfig([]byte("variant: wide\n"))
	assert.ErrorContains(t, err, "unknown variant")

	_, err = ParseConfig([]byte("variant: basic\nimage_size: 30\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = ParseConfig([]byte("n: [1, 2]\n"))
	assert.Error(t, err)
}

func TestConfigFile_RoundTrip(t *testing.T) {
	cfg := DefaultConfig(Basic)
	cfg.N = 5
	cfg.Seed = 3
	cfg.SkipStageOnePreActivation = true

	data, err := MarshalConfig(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), "variant: basic")

	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
