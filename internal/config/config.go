// Package config loads wasm-inspect settings from a YAML file and the
// environment.
package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/wasm-inspect/errors"
	"github.com/wippyai/wasm-inspect/wasm"
)

// DefaultPath is read when no explicit config path is given. It may be absent.
const DefaultPath = ".wasm-inspect.yaml"

// Environment variables that override the file.
const (
	EnvLogLevel  = "WASM_INSPECT_LOG_LEVEL"
	EnvLogFormat = "WASM_INSPECT_LOG_FORMAT"
)

// Log formats.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config is the top-level configuration.
type Config struct {
	Log        LogConfig      `yaml:"log"`
	Validation ValidateConfig `yaml:"validate"`
}

// LogConfig selects the zap level and encoder.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ValidateConfig tunes the validate command.
type ValidateConfig struct {
	// Disable lists rule names to skip.
	Disable []string `yaml:"disable,omitempty"`
	// Reference also compiles the module with wazero.
	Reference bool `yaml:"reference"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "warn", Format: FormatConsole},
	}
}

// Load reads the file at path over the defaults, applies environment
// overrides and validates the result. An empty path means DefaultPath,
// which is allowed to be missing.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := cfg.parse(data); err != nil {
			return nil, errors.WithPath(err, path)
		}
	case !explicit && stderrors.Is(err, fs.ErrNotExist):
	default:
		return nil, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
			Path(path).
			Detail("read config").
			Cause(err).
			Build()
	}

	cfg.applyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates it. Unknown keys are
// rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := cfg.parse(data); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) parse(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !stderrors.Is(err, io.EOF) {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "parse yaml")
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		c.Log.Format = v
	}
}

// Validate checks the level, the format and every disabled rule name.
func (c *Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return errors.New(errors.PhaseConfig, errors.KindInvalidData).
			Path("log", "level").
			Value(c.Log.Level).
			Detail("unknown log level %q", c.Log.Level).
			Build()
	}
	if c.Log.Format != FormatConsole && c.Log.Format != FormatJSON {
		return errors.New(errors.PhaseConfig, errors.KindInvalidData).
			Path("log", "format").
			Value(c.Log.Format).
			Detail("unknown log format %q, want %s or %s", c.Log.Format, FormatConsole, FormatJSON).
			Build()
	}
	known := wasm.RuleNames()
	for i, name := range c.Validation.Disable {
		if !slices.Contains(known, name) {
			return errors.New(errors.PhaseConfig, errors.KindInvalidData).
				Path("validate", "disable", fmt.Sprint(i)).
				Value(name).
				Detail("unknown rule %q, known rules: %s", name, strings.Join(known, ", ")).
				Build()
		}
	}
	return nil
}

// Logger builds a zap logger writing to stderr.
func (c *Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "log level")
	}

	var zc zap.Config
	if c.Log.Format == FormatJSON {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	zc.DisableStacktrace = true

	return zc.Build()
}

// Rules returns the default validation rules minus the disabled ones.
func (c *Config) Rules() []wasm.Rule {
	return wasm.WithoutRules(c.Validation.Disable...)
}
