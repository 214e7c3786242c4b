package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/wasm-inspect/errors"
	"github.com/wippyai/wasm-inspect/internal/config"
	"github.com/wippyai/wasm-inspect/wasm"
)

// app carries state shared by every subcommand once flags are parsed.
type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	configPath string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:           "wasm-inspect",
		Short:         "Decode, validate and browse WebAssembly 1.0 binary modules",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.setup()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default "+config.DefaultPath+" if present)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.StringVar(&a.logFormat, "log-format", "", "log format: console or json")

	cmd.AddCommand(
		newDumpCmd(a),
		newValidateCmd(a),
		newNamesCmd(a),
		newBrowseCmd(a),
	)
	return cmd
}

// setup loads the config, lets flags override it and installs the logger.
func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Log.Format = a.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := cfg.Logger()
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	wasm.SetLogger(logger.Named("wasm"))
	return nil
}

// openModule decodes path through a file-backed reader.
func (a *app) openModule(path string) (*wasm.Module, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Load("open "+path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, errors.Load("stat "+path, err)
	}

	a.logger.Debug("decoding", zap.String("path", path), zap.Int64("size", info.Size()))
	m, err := wasm.DecodeModuleFrom(f, info.Size())
	if err != nil {
		return nil, err
	}
	return m, nil
}
