// Package config builds the process-wide param.Store from the default
// parameter set, a YAML overrides file, and a handful of startup-only CLI
// flags. Bad input here is always a configuration error: fatal at
// startup, never recovered mid-run.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/n7cdr/pocketwave/internal/param"
)

// numericDefault is one row of the default parameter table.
type numericDefault struct {
	name  string
	init  float64
	min   float64
	max   float64
	steps []float64
}

// defaults is the default parameter set table: name, initial value,
// clamp bounds, and step ladder. sdr_fs/sdr_chunk_sz/spkr_chunk_sz/
// spkr_fs have no user-facing step ladder (no screen cycles them), so
// each gets the single-entry ladder {1} per the table.
var defaults = []numericDefault{
	{"sdr_cf", 88.3e6, 30e6, 1766e6, []float64{1e2, 1e3, 1e4, 1e5, 1e6, 1e7, 1e8, 1e9}},
	{"sdr_fs", 0.25e6, 0, 2e9, []float64{1}},
	{"sdr_dig_bw", 20e3, 1e3, 250e3, []float64{10, 100, 1e3, 1e4, 1e5}},
	{"sdr_squelch", -20, -40, 2, []float64{0.01, 0.1, 1, 10}},
	{"sdr_chunk_sz", 16384, 1, 1 << 31, []float64{1}},
	{"spkr_volume", 100, 0, 100, []float64{1, 10}},
	{"spkr_chunk_sz", 4096, 1, 1 << 31, []float64{1}},
	{"spkr_fs", 44100, 1, 1 << 31, []float64{1}},
}

// Overrides is the shape of the optional YAML config file: a sparse map
// of parameter name to initial value, applied over the default table.
type Overrides struct {
	Params map[string]float64 `yaml:"params"`
}

// Flags are the startup-only settings that never live in the param.Store,
// since nothing on any screen mutates them after launch.
type Flags struct {
	Device     string
	UIBinary   string
	ConfigPath string
	LogLevel   string
}

// ParseFlags registers and parses the startup flags against fs, returning
// the resolved values. Callers pass pflag.CommandLine in cmd/main.go and a
// fresh pflag.NewFlagSet in tests, since pflag.CommandLine can only be
// parsed once per process.
func ParseFlags(fs *pflag.FlagSet, args []string) (Flags, error) {
	device := fs.StringP("device", "d", "/dev/ttyUSB0", "SDR control device path")
	uiBinary := fs.String("ui-binary", "pocketwave-ui", "path to the UI subprocess binary")
	configPath := fs.StringP("config", "c", "", "YAML config file of parameter overrides")
	logLevel := fs.String("log-level", "info", "log level (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return Flags{}, fmt.Errorf("config: parsing flags: %w", err)
	}
	return Flags{
		Device:     *device,
		UIBinary:   *uiBinary,
		ConfigPath: *configPath,
		LogLevel:   *logLevel,
	}, nil
}

// LoadOverrides reads and parses a YAML overrides file. An empty path
// returns an empty Overrides with no error, since the file is optional.
func LoadOverrides(path string) (Overrides, error) {
	if path == "" {
		return Overrides{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Overrides{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var ov Overrides
	if err := yaml.Unmarshal(raw, &ov); err != nil {
		return Overrides{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return ov, nil
}

// BuildStore constructs a param.Store from the default table with ov's
// overrides applied to each Numeric cell's initial value. Devices (the SDR
// tuner and the demod manager) are registered separately by the caller
// once they exist, since building them requires opening hardware.
func BuildStore(ov Overrides) *param.Store {
	store := param.NewStore()
	for _, d := range defaults {
		init := d.init
		if v, ok := ov.Params[d.name]; ok {
			init = v
		}
		store.Register(d.name, param.NewNumeric(init, d.min, d.max, d.steps))
	}
	return store
}
