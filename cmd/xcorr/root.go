package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cwbudde/algo-xcorr/dsp/conv"
	"github.com/cwbudde/algo-xcorr/host"
)

var errUnknownFormat = errors.New("unknown output format")

// app carries the state shared by all subcommands.
type app struct {
	verbose   bool
	maxOutput int
	format    string

	logger *zap.Logger
	reg    *host.Registry
}

func newRootCmd() *cobra.Command {
	return newRootCmdWithLogger(nil)
}

// newRootCmdWithLogger builds the command tree. A nil logger is replaced by
// one built from the --verbose flag.
func newRootCmdWithLogger(logger *zap.Logger) *cobra.Command {
	a := &app{logger: logger}

	root := &cobra.Command{
		Use:   "xcorr",
		Short: "Valid-mode sliding dot products of numeric vectors",
		Long: `xcorr slides a kernel across a signal and reports the dot product at every
position where the kernel fully overlaps the signal. The kernel is not
reversed, so the result has len(signal)-len(kernel)+1 samples.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
	}

	flags := root.PersistentFlags()
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log every entry point call to stderr")
	flags.IntVar(&a.maxOutput, "max-output", conv.DefaultMaxOutputLen, "largest output length accepted (<= 0 disables the limit)")
	flags.StringVarP(&a.format, "format", "o", "text", "output format: text, json or yaml")

	root.AddCommand(
		newConvolveCmd(a),
		newAddCmd(a),
		newHelloCmd(a),
		newDeviceInfoCmd(a),
		newEntriesCmd(a),
		newBatchCmd(a),
	)
	return root
}

func (a *app) setup() error {
	switch a.format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("%w: %q", errUnknownFormat, a.format)
	}

	if a.logger == nil {
		logger, err := newLogger(a.verbose)
		if err != nil {
			return fmt.Errorf("logger: %w", err)
		}
		a.logger = logger
	}

	reg, err := host.Default(
		host.WithLogger(a.logger),
		host.WithLimits(conv.NewLimits(conv.WithMaxOutputLen(a.maxOutput))),
	)
	if err != nil {
		return err
	}
	a.reg = reg
	return nil
}

// newLogger returns a console logger on stderr. Verbose mode logs at debug
// level; otherwise only warnings and errors are shown.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		cfg.DisableCaller = true
	}
	return cfg.Build()
}
