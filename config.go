package flakewrap

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/flakewrap/flakewrap/flags"
	"github.com/flakewrap/flakewrap/runner"
)

// Config holds the application configuration
type Config struct {
	TestArgs     []string      // Test binary and its arguments
	TestBasename string        // Basename of the test binary, names the report file
	LogDir       string        // Directory for XML logs and artifacts
	MaxRepeats   int           // Retry budget per failing case
	PassesNeeded int           // Passes required to declare a flaky pass
	Timeout      time.Duration // Timeout per test execution
	ParseXML     string        // Pre-existing report to parse instead of running
	NoExtraArgs  bool          // Suppress all argument augmentation

	MonitoringEnabled bool // Expose metrics/healthz endpoints while running

	Log log.Logger
}

// Preset overrides a subset of the configuration. Presets model
// external-tool special cases (like a self-test suite that cannot emit
// an XML log) in the CLI layer, keeping the orchestration core generic.
type Preset struct {
	NoExtraArgs  *bool `yaml:"no_extra_args"`
	MaxRepeats   *int  `yaml:"max_repeats"`
	PassesNeeded *int  `yaml:"passes_needed"`
}

var (
	boolTrue = true
	zero     = 0

	// builtinPresets ships the presets that need no config file.
	builtinPresets = map[string]Preset{
		// The qtestlib selftests use an external test library and cannot
		// generate an XML log, so neither report parsing nor per-case
		// repetition is possible for them.
		"selftests": {NoExtraArgs: &boolTrue, MaxRepeats: &zero},
	}

	// autoPresets maps test basenames to presets applied automatically.
	autoPresets = map[string]string{
		"tst_selftests": "selftests",
	}
)

// NewConfig creates a new Config from cli context
func NewConfig(ctx *cli.Context, log log.Logger) (*Config, error) {
	testArgs := ctx.Args().Slice()
	if len(testArgs) == 0 {
		return nil, errors.New("test executable and arguments are required after --")
	}

	basename := filepath.Base(testArgs[0])
	basename = strings.TrimSuffix(basename, ".exe")

	logDir, err := filepath.Abs(ctx.String(flags.LogDir.Name))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for log directory: %w", err)
	}

	cfg := &Config{
		TestArgs:          testArgs,
		TestBasename:      basename,
		LogDir:            logDir,
		MaxRepeats:        ctx.Int(flags.MaxRepeats.Name),
		PassesNeeded:      ctx.Int(flags.PassesNeeded.Name),
		Timeout:           ctx.Duration(flags.Timeout.Name),
		ParseXML:          ctx.String(flags.ParseXMLTestlog.Name),
		NoExtraArgs:       ctx.Bool(flags.NoExtraArgs.Name),
		MonitoringEnabled: ctx.Bool(flags.MonitoringEnabled.Name),
		Log:               log,
	}

	presets, err := loadPresets(ctx.String(flags.PresetsFile.Name))
	if err != nil {
		return nil, err
	}

	presetName := ctx.String(flags.Preset.Name)
	if presetName == "" {
		presetName = autoPresets[basename]
		if presetName != "" {
			log.Info("Detected special test, applying configuration preset",
				"test", basename, "preset", presetName)
		}
	}
	if presetName != "" {
		preset, ok := presets[presetName]
		if !ok {
			return nil, fmt.Errorf("unknown preset %q", presetName)
		}
		cfg.apply(preset)
	}

	// Reject an inconsistent retry policy before any execution begins.
	if err := cfg.Policy().Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Policy derives the immutable retry policy of this session.
func (c *Config) Policy() runner.RetryPolicy {
	return runner.RetryPolicy{
		MaxRepeats:   c.MaxRepeats,
		PassesNeeded: c.PassesNeeded,
		Timeout:      c.Timeout,
		NoExtraArgs:  c.NoExtraArgs,
	}
}

func (c *Config) apply(p Preset) {
	if p.NoExtraArgs != nil {
		c.NoExtraArgs = *p.NoExtraArgs
	}
	if p.MaxRepeats != nil {
		c.MaxRepeats = *p.MaxRepeats
	}
	if p.PassesNeeded != nil {
		c.PassesNeeded = *p.PassesNeeded
	}
}

// loadPresets merges the presets of an optional YAML file over the
// built-in ones. A file entry with a built-in name wins.
func loadPresets(path string) (map[string]Preset, error) {
	presets := make(map[string]Preset, len(builtinPresets))
	for name, p := range builtinPresets {
		presets[name] = p
	}
	if path == "" {
		return presets, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read presets file: %w", err)
	}
	var fromFile map[string]Preset
	if err := yaml.Unmarshal(data, &fromFile); err != nil {
		return nil, fmt.Errorf("failed to parse presets file %s: %w", path, err)
	}
	for name, p := range fromFile {
		presets[name] = p
	}
	return presets, nil
}
