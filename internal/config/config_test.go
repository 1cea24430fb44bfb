package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n7cdr/pocketwave/internal/config"
)

func TestBuildStoreAppliesDefaults(t *testing.T) {
	store := config.BuildStore(config.Overrides{})
	assert.Equal(t, 88.3e6, store.Numeric("sdr_cf").Get())
	assert.Equal(t, -20.0, store.Numeric("sdr_squelch").Get())
	assert.Equal(t, 100.0, store.Numeric("spkr_volume").Get())
}

func TestBuildStoreAppliesOverrides(t *testing.T) {
	store := config.BuildStore(config.Overrides{Params: map[string]float64{"sdr_cf": 133.2e6}})
	assert.Equal(t, 133.2e6, store.Numeric("sdr_cf").Get())
}

func TestLoadOverridesParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overrides.yaml")
	require.NoError(t, os.WriteFile(path, []byte("params:\n  sdr_cf: 133200000\n"), 0o600))

	ov, err := config.LoadOverrides(path)
	require.NoError(t, err)
	assert.Equal(t, 133.2e6, ov.Params["sdr_cf"])
}

func TestLoadOverridesEmptyPathIsNoop(t *testing.T) {
	ov, err := config.LoadOverrides("")
	require.NoError(t, err)
	assert.Empty(t, ov.Params)
}

func TestParseFlagsDefaults(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags, err := config.ParseFlags(fs, nil)
	require.NoError(t, err)
	assert.Equal(t, "info", flags.LogLevel)
	assert.Equal(t, "pocketwave-ui", flags.UIBinary)
}

func TestParseFlagsOverridesLogLevel(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags, err := config.ParseFlags(fs, []string{"--log-level", "debug"})
	require.NoError(t, err)
	assert.Equal(t, "debug", flags.LogLevel)
}
